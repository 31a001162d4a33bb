package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/ByLCY/chordbook/config"
	"github.com/ByLCY/chordbook/htmlbook"
	"github.com/ByLCY/chordbook/layout"
	"github.com/ByLCY/chordbook/library"
	"github.com/ByLCY/chordbook/renderer"
	canvasrenderer "github.com/ByLCY/chordbook/renderer/canvas"
	fpdfrenderer "github.com/ByLCY/chordbook/renderer/fpdf"
)

func makePDF(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	if cmd.NArg() < 1 {
		return fmt.Errorf("missing SOURCE directory")
	}
	name := cmd.String("renderer")
	if name == "" {
		name = e.cfg.Book.Renderer
	}
	out := destination(cmd, e.cfg.Book.Title, ".pdf")
	if err := buildPDF(e, cmd.Args().Get(0), out, name, cmd.String("layout-json")); err != nil {
		return err
	}
	e.log.Info("Songbook written", zap.String("file", out))
	return nil
}

func makeHTML(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	if cmd.NArg() < 1 {
		return fmt.Errorf("missing SOURCE directory")
	}
	out := destination(cmd, e.cfg.HTML.Title, ".html")
	if err := buildHTML(e, cmd.Args().Get(0), out); err != nil {
		return err
	}
	e.log.Info("Website written", zap.String("file", out))
	return nil
}

func importSongs(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	if cmd.NArg() != 2 {
		return fmt.Errorf("expected SOURCE and DESTINATION directories")
	}
	n, err := library.Import(cmd.Args().Get(0), cmd.Args().Get(1), e.log)
	e.log.Info("Songs imported", zap.Int("count", n))
	return err
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	if cmd.Args().Len() > 1 {
		e.log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var (
		data  []byte
		err   error
		state string
	)
	if cmd.Bool("default") {
		state = "default"
		data = config.DefaultConfig
	} else {
		state = "actual"
		if data, err = config.Dump(e.cfg); err != nil {
			return fmt.Errorf("unable to get configuration: %w", err)
		}
	}

	fname := cmd.Args().Get(0)
	if len(fname) == 0 {
		_, err = os.Stdout.Write(data)
		return err
	}
	e.log.Info("Outputing configuration", zap.String("state", state), zap.String("file", fname))
	return writeFile(fname, data)
}

// destination 返回第二个参数，缺省时用标题生成文件名。
func destination(cmd *cli.Command, title, ext string) string {
	if out := cmd.Args().Get(1); out != "" {
		return out
	}
	if title == "" {
		title = "songbook"
	}
	return title + ext
}

func newBackend(name string, assets renderer.Assets) (renderer.Backend, error) {
	switch name {
	case "", "fpdf":
		return fpdfrenderer.New(assets), nil
	case "canvas":
		return canvasrenderer.New(assets), nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", name)
	}
}

// buildPDF 串联读取、布局与渲染；文档完整生成后才一次性写入文件。
func buildPDF(e *env, src, out, backendName, layoutJSON string) error {
	songs, err := library.Load(src, library.Options{
		IndexFile: e.cfg.Library.IndexFile,
		Numbering: library.Numbering(e.cfg.Library.Numbering),
		Logger:    e.log,
	})
	if err != nil {
		return fmt.Errorf("读取歌曲失败: %w", err)
	}

	backend, err := newBackend(backendName, renderer.Assets{BaseDir: e.baseDir})
	if err != nil {
		return err
	}
	opts, err := e.cfg.BuildOptions(backend, e.log)
	if err != nil {
		return err
	}
	result, err := layout.BuildBook(songs, opts)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if layoutJSON != "" {
		if err := writeDebug(result, layoutJSON); err != nil {
			return err
		}
	}

	pdfBytes, err := backend.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	return writeFile(out, pdfBytes)
}

func buildHTML(e *env, src, out string) error {
	songs, err := library.Load(src, library.Options{
		IndexFile: e.cfg.Library.IndexFile,
		Numbering: library.Numbering(e.cfg.Library.Numbering),
		Logger:    e.log,
	})
	if err != nil {
		return fmt.Errorf("读取歌曲失败: %w", err)
	}
	var buf bytes.Buffer
	if err := htmlbook.Write(&buf, songs, htmlbook.Options{Title: e.cfg.HTML.Title, Stylesheet: e.cfg.HTML.Stylesheet}); err != nil {
		return err
	}
	return writeFile(out, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件 %s 失败: %w", path, err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	var buf bytes.Buffer
	if err := layout.EncodeDebug(&buf, result); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return writeFile(debugPath, buf.Bytes())
}
