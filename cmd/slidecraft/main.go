package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"slidecraft/internal/config"
	"slidecraft/internal/server"
	"slidecraft/internal/util"
)

type flags struct {
	port      int
	devMode   bool
	dataDir   string
	noBrowser bool
	jsonLog   bool
}

func main() {
	var f flags

	rootCmd := &cobra.Command{
		Use:           "slidecraft",
		Short:         "SlideCraft - 月度进展演示文稿向导",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}

	rootCmd.Flags().IntVar(&f.port, "port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	rootCmd.Flags().BoolVar(&f.devMode, "dev", false, "开发模式")
	rootCmd.Flags().StringVar(&f.dataDir, "data-dir", "", "数据目录 (覆盖配置文件)")
	rootCmd.Flags().BoolVar(&f.noBrowser, "no-browser", false, "启动后不自动打开浏览器")
	rootCmd.Flags().BoolVar(&f.jsonLog, "json-log", false, "以 JSON 输出日志")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(jsonLog, dev bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}
	if jsonLog {
		return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	}
	out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func run(ctx context.Context, f flags) error {
	// .env 可选：放在可执行文件旁，用于提供远程服务令牌等
	if exeDir, err := config.GetExeDir(); err == nil {
		_ = godotenv.Load(filepath.Join(exeDir, ".env"))
	}

	cfg, info, err := config.LoadConfigWithInfo()
	logger := newLogger(f.jsonLog, f.devMode)
	if err != nil {
		logger.Warn().Err(err).Msg("加载配置失败，使用默认配置")
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if f.port > 0 && !info.PortSpecified {
		cfg.Server.Port = f.port
	}
	if f.devMode {
		cfg.Server.DevMode = true
	}
	if f.dataDir != "" {
		cfg.Data.DataDir = f.dataDir
	}
	logger = newLogger(f.jsonLog, cfg.Server.DevMode)

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		return err
	}

	url := util.LocalURL(cfg.Server.Port)
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Run(fmt.Sprintf(":%d", cfg.Server.Port))
	}()

	if cfg.Server.DevMode {
		logger.Info().Str("url", url).Msg("开发模式")
	} else if !f.noBrowser {
		if err := util.OpenBrowser(url); err != nil {
			logger.Warn().Err(err).Str("url", url).Msg("无法自动打开浏览器，请手动访问")
		}
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case runErr = <-serverErrors:
		logger.Error().Err(runErr).Msg("服务异常退出")
	case <-shutdown:
		logger.Info().Msg("正在关闭服务")
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(stopCtx); err != nil {
		logger.Error().Err(err).Msg("退出前保存失败")
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}
