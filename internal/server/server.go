package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	v1 "slidecraft/internal/api/v1"
	"slidecraft/internal/config"
	"slidecraft/internal/exporter"
	"slidecraft/internal/service/session"
	"slidecraft/internal/service/templates"
	"slidecraft/internal/store"
)

const devFrontend = "http://localhost:5173"

// Server HTTP服务器
type Server struct {
	router   *gin.Engine
	http     *http.Server
	store    *store.Store
	sessions *session.Manager
	api      *v1.Handler
	logger   zerolog.Logger
}

// NewServer 创建服务器：初始化 SQLite、会话管理器、导出器与路由
func NewServer(cfg *config.AppConfig, logger zerolog.Logger) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}

	sqliteStore, err := store.New(filepath.Join(dataDir, "slidecraft.db"))
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	var repo session.Repository
	if cfg.Data.Autosave {
		repo = sqliteStore
	}
	sessions, err := session.NewManager(repo, logger)
	if err != nil {
		_ = sqliteStore.Close()
		return nil, err
	}

	defaultFormat, err := exporter.ParseFormat(cfg.Export.DefaultFormat)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid default export format, using pptx")
		defaultFormat = exporter.FormatPPTX
	}

	registry := templates.Default()
	remote := exporter.NewHTTPRemoteSink(cfg.Remote.Endpoint, cfg.Remote.Token, cfg.RemoteTimeout())
	exp := exporter.New(
		registry,
		exporter.DefaultSerializers(),
		exporter.NewFileSink(filepath.Join(dataDir, "exports")),
		remote,
	)

	s := &Server{
		router:   gin.New(),
		store:    sqliteStore,
		sessions: sessions,
		logger:   logger,
		api: v1.NewHandler(v1.Options{
			Sessions:      sessions,
			Templates:     registry,
			Exporter:      exp,
			Store:         sqliteStore,
			DownloadTTL:   cfg.DownloadTTL(),
			DefaultFormat: defaultFormat,
		}),
	}
	s.setupRoutes(devMode)

	logger.Info().
		Str("data_dir", dataDir).
		Bool("autosave", cfg.Data.Autosave).
		Bool("remote", remote.Enabled()).
		Msg("server initialized")
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger(s.logger))
	s.router.Use(cors())

	api := s.router.Group("/api")
	{
		s.api.RegisterRoutes(api)
	}

	s.router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "接口不存在"})
			return
		}
		if devMode {
			// 开发模式：转到前端开发服务器
			c.Redirect(http.StatusTemporaryRedirect, devFrontend+c.Request.URL.Path)
			return
		}
		c.JSON(http.StatusOK, gin.H{"service": "slidecraft", "api": "/api/status"})
	})
}

// Handler 返回 http.Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，阻塞直到 Shutdown
func (s *Server) Run(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info().Str("addr", addr).Msg("starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 停止接收请求，保存会话并关闭数据库
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.sessions.Close(); err != nil {
		errs = append(errs, fmt.Errorf("save sessions: %w", err))
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SaveNow 立即持久化所有已修改的会话
func (s *Server) SaveNow() error {
	return s.sessions.SaveNow()
}
