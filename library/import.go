package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ByLCY/chordbook/dsl"
	"github.com/ByLCY/chordbook/openlyrics"
)

// Import 把 src 中的 OpenLyrics 文件转换为和弦文本，写入 dst/<标题>.txt，返回转换的歌曲数。
// 单个文件失败不会中断其余文件，所有错误合并返回。
func Import(src, dst string, log *zap.Logger) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, fmt.Errorf("读取目录 %s 失败: %w", src, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), openLyricsExt) {
			names = append(names, e.Name())
		}
	}
	sort.Sort(natural.StringSlice(names))

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return 0, fmt.Errorf("创建目录 %s 失败: %w", dst, err)
	}

	var (
		count int
		errs  error
	)
	for _, name := range names {
		sg, err := openlyrics.ReadFile(filepath.Join(src, name))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		var b strings.Builder
		if err := dsl.Format(&b, sg); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		out := filepath.Join(dst, sg.Title+sheetExt)
		if err := os.WriteFile(out, []byte(b.String()), 0o644); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		log.Debug("Song imported", zap.String("from", name), zap.String("to", out))
		count++
	}
	return count, errs
}
