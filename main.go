package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ByLCY/chordbook/config"
)

type env struct {
	cfg     *config.Config
	log     *zap.Logger
	baseDir string
}

type envKey struct{}

func envFromContext(ctx context.Context) *env {
	if e, ok := ctx.Value(envKey{}).(*env); ok {
		return e
	}
	return &env{log: zap.NewNop()}
}

// initializeAppContext 在解析命令行之后、执行子命令之前加载配置并准备日志。
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	e := envFromContext(ctx)

	configFile := cmd.String("config")
	cfg, err := config.LoadConfiguration(configFile)
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		cfg.Logging.ConsoleLogger.Level = "debug"
	}
	if e.log, err = cfg.Logging.Prepare(); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	e.cfg = cfg
	if len(configFile) > 0 {
		// 配置中的相对路径（字体、图片）相对配置文件所在目录
		e.baseDir = filepath.Dir(configFile)
	} else {
		e.log.Debug("Using defaults (no configuration file)")
	}
	e.log.Debug("Program started", zap.Strings("args", os.Args), zap.String("runtime", runtime.Version()))
	return ctx, nil
}

func destroyAppContext(ctx context.Context, _ *cli.Command) (err error) {
	e := envFromContext(ctx)
	e.log.Debug("Program ended")
	if er := e.log.Sync(); er != nil && !isStdSyncError(er) {
		err = multierr.Append(err, fmt.Errorf("unable to flush logs: %w", er))
	}
	return
}

// isStdSyncError 忽略对终端调用 fsync 时的错误。
func isStdSyncError(err error) bool {
	for _, e := range multierr.Errors(err) {
		if !os.IsPermission(e) && !isInvalidArg(e) {
			return false
		}
	}
	return true
}

func isInvalidArg(err error) bool {
	pe, ok := err.(*os.PathError)
	return ok && pe.Err == syscall.EINVAL
}

var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	e := envFromContext(ctx)
	if e.cfg != nil {
		e.log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.WithValue(context.Background(), envKey{}, &env{log: zap.NewNop()}), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            "chordbook",
		Usage:           "typesets chord sheets into a paginated songbook",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log debug messages to console"},
		},
		Commands: []*cli.Command{
			{
				Name:      "pdf",
				Usage:     "Typesets all songs of a directory into a PDF songbook",
				Action:    makePDF,
				ArgsUsage: "SOURCE [DESTINATION]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "renderer", Usage: "override the configured renderer (`NAME`: fpdf or canvas)"},
					&cli.StringFlag{Name: "layout-json", Usage: "write computed layout to `FILE` for troubleshooting"},
				},
			},
			{
				Name:      "html",
				Usage:     "Exports all songs of a directory as a single HTML page",
				Action:    makeHTML,
				ArgsUsage: "SOURCE [DESTINATION]",
			},
			{
				Name:      "import",
				Usage:     "Converts OpenLyrics XML files to chord sheets",
				Action:    importSongs,
				ArgsUsage: "SOURCE DESTINATION",
			},
			{
				Name:  "config",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				Action:    outputConfiguration,
				ArgsUsage: "[DESTINATION]",
			},
		},
	}

	var err error
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
