package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"slidecraft/internal/exporter"
	"slidecraft/internal/model"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	SessionCount      int               `json:"sessionCount"`      // 会话数
	LastActiveSession string            `json:"lastActiveSession"` // 最近使用的会话
	Formats           []exporter.Format `json:"formats"`           // 可用导出格式
	DefaultFormat     exporter.Format   `json:"defaultFormat"`     // 默认导出格式
	Steps             []string          `json:"steps"`             // 向导步骤
	Persistent        bool              `json:"persistent"`        // 是否持久化
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	steps := make([]string, 0, model.StepCount)
	for _, s := range model.Steps() {
		steps = append(steps, s.String())
	}

	resp := StatusResponse{
		SessionCount:  len(h.sessions.List()),
		Formats:       h.exporter.Formats(),
		DefaultFormat: h.defaultFormat,
		Steps:         steps,
		Persistent:    h.store != nil,
	}
	if h.store != nil {
		resp.LastActiveSession = h.store.GetLastActiveSession()
	}
	c.JSON(http.StatusOK, resp)
}

// ListTemplates 模板列表
// GET /api/templates
func (h *Handler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.templates.List()})
}
