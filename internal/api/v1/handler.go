package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"slidecraft/internal/exporter"
	"slidecraft/internal/importer"
	"slidecraft/internal/service/assembler"
	"slidecraft/internal/service/session"
	contentstore "slidecraft/internal/service/store"
	"slidecraft/internal/service/templates"
	"slidecraft/internal/store"
)

const defaultDownloadTTL = 10 * time.Minute

// Options 处理器依赖
type Options struct {
	Sessions      *session.Manager
	Templates     *templates.Registry
	Exporter      *exporter.Exporter
	Store         *store.Store // 可为 nil：不记录导出日志
	DownloadTTL   time.Duration
	DefaultFormat exporter.Format
}

// Handler API 处理器
type Handler struct {
	sessions      *session.Manager
	templates     *templates.Registry
	exporter      *exporter.Exporter
	store         *store.Store
	downloads     *exportDownloadStore
	downloadTTL   time.Duration
	defaultFormat exporter.Format
}

// NewHandler 创建 API 处理器
func NewHandler(opts Options) *Handler {
	ttl := opts.DownloadTTL
	if ttl <= 0 {
		ttl = defaultDownloadTTL
	}
	format := opts.DefaultFormat
	if format == "" {
		format = exporter.FormatPPTX
	}
	return &Handler{
		sessions:      opts.Sessions,
		templates:     opts.Templates,
		exporter:      opts.Exporter,
		store:         opts.Store,
		downloads:     newExportDownloadStore(),
		downloadTTL:   ttl,
		defaultFormat: format,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	router.GET("/templates", h.ListTemplates)

	// 会话
	router.GET("/sessions", h.ListSessions)
	router.POST("/sessions", h.CreateSession)
	router.GET("/sessions/:id", h.GetSession)
	router.PATCH("/sessions/:id", h.RenameSession)
	router.DELETE("/sessions/:id", h.DeleteSession)

	// 项目设置
	router.GET("/sessions/:id/project", h.GetProject)
	router.PATCH("/sessions/:id/project", h.UpdateProject)

	// 向导
	router.GET("/sessions/:id/wizard", h.GetWizard)
	router.POST("/sessions/:id/wizard/next", h.WizardNext)
	router.POST("/sessions/:id/wizard/previous", h.WizardPrevious)
	router.POST("/sessions/:id/wizard/goto", h.WizardGoTo)
	router.POST("/sessions/:id/wizard/start-new", h.StartNew)

	// 内容条目
	router.GET("/sessions/:id/products", h.ListProducts)
	router.POST("/sessions/:id/products", h.AppendProduct)
	router.POST("/sessions/:id/products/move", h.MoveProduct)
	router.PUT("/sessions/:id/products/:pos", h.UpdateProduct)
	router.DELETE("/sessions/:id/products/:pos", h.RemoveProduct)

	// 规划条目
	router.GET("/sessions/:id/pipeline", h.ListPipeline)
	router.POST("/sessions/:id/pipeline", h.AppendPipeline)
	router.POST("/sessions/:id/pipeline/move", h.MovePipeline)
	router.PUT("/sessions/:id/pipeline/visibility", h.SetPipelineVisibility)
	router.PUT("/sessions/:id/pipeline/:pos", h.UpdatePipeline)
	router.DELETE("/sessions/:id/pipeline/:pos", h.RemovePipeline)

	// 批量导入
	router.POST("/sessions/:id/import", h.Import)
	router.GET("/sessions/:id/imports", h.ListImports)

	// 预览与导出
	router.GET("/sessions/:id/preview", h.Preview)
	router.POST("/sessions/:id/export", h.Export)
	router.POST("/sessions/:id/export/stream", h.ExportStream)
	router.GET("/sessions/:id/exports", h.ListExports)
	router.POST("/sessions/:id/publish", h.Publish)
	router.GET("/export/download/:token", h.DownloadExport)
}

// session 按路径参数取会话，失败时已写入响应
func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return s, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// statusFor 错误到 HTTP 状态码的映射
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case assembler.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, exporter.ErrExportInProgress):
		return http.StatusConflict
	case errors.Is(err, exporter.ErrRemoteDisabled):
		return http.StatusServiceUnavailable
	case exporter.IsSinkError(err):
		return http.StatusBadGateway
	case errors.Is(err, contentstore.ErrPositionOutOfRange),
		errors.Is(err, exporter.ErrUnknownFormat),
		errors.Is(err, importer.ErrNoContentSheet):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
