package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"slidecraft/internal/model"
	"slidecraft/internal/service/session"
	"slidecraft/internal/service/wizard"
)

// SessionDetail 会话完整状态
type SessionDetail struct {
	session.Summary
	Project      model.ProjectSettings `json:"project"`
	Template     model.TemplateStyle   `json:"template"`
	Wizard       wizard.State          `json:"wizard"`
	Products     []model.ProductData   `json:"products"`
	Pipeline     []model.SlideEntry    `json:"pipeline"`
	ShowPipeline bool                  `json:"showPipeline"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type gotoRequest struct {
	Index *int `json:"index"`
}

func (h *Handler) detail(s *session.Session) SessionDetail {
	snap := s.Snapshot()
	return SessionDetail{
		Summary:      s.Summary(),
		Project:      snap.Settings,
		Template:     h.templates.Resolve(snap.Settings.TemplateID),
		Wizard:       s.Wizard(),
		Products:     snap.Products,
		Pipeline:     snap.Pipeline,
		ShowPipeline: snap.ShowPipeline,
	}
}

// touch 记录最近使用的会话（用于下次启动恢复）
func (h *Handler) touch(c *gin.Context, id string) {
	if h.store == nil {
		return
	}
	if err := h.store.SetLastActiveSession(id); err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("record last active session")
	}
}

// ListSessions 会话列表（最近修改在前）
// GET /api/sessions
func (h *Handler) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.sessions.List()})
}

// CreateSession 新建会话
// POST /api/sessions
func (h *Handler) CreateSession(c *gin.Context) {
	var req nameRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "请求格式错误")
			return
		}
	}

	s, err := h.sessions.Create(req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	h.touch(c, s.ID())
	c.JSON(http.StatusCreated, h.detail(s))
}

// GetSession 会话详情
// GET /api/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.touch(c, s.ID())
	c.JSON(http.StatusOK, h.detail(s))
}

// RenameSession 重命名
// PATCH /api/sessions/:id
func (h *Handler) RenameSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求格式错误")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		badRequest(c, "name 不能为空")
		return
	}
	s.Rename(name)
	c.JSON(http.StatusOK, s.Summary())
}

// DeleteSession 删除会话
// DELETE /api/sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProject 项目设置
// GET /api/sessions/:id/project
func (h *Handler) GetProject(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Project())
}

// UpdateProject 部分更新项目设置（未提供的字段保持不变）
// PATCH /api/sessions/:id/project
func (h *Handler) UpdateProject(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var patch model.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "请求格式错误")
		return
	}
	if patch.IsEmpty() {
		c.JSON(http.StatusOK, s.Project())
		return
	}
	c.JSON(http.StatusOK, s.UpdateProject(patch))
}

// GetWizard 向导状态
// GET /api/sessions/:id/wizard
func (h *Handler) GetWizard(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Wizard())
}

// WizardNext 下一步
// POST /api/sessions/:id/wizard/next
func (h *Handler) WizardNext(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Next())
}

// WizardPrevious 上一步
// POST /api/sessions/:id/wizard/previous
func (h *Handler) WizardPrevious(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Previous())
}

// WizardGoTo 跳转（越界时钳制）
// POST /api/sessions/:id/wizard/goto
func (h *Handler) WizardGoTo(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req gotoRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		badRequest(c, "index 必填")
		return
	}
	c.JSON(http.StatusOK, s.GoTo(*req.Index))
}

// StartNew 新建演示文稿：回到第一步并清空全部内容
// POST /api/sessions/:id/wizard/start-new
func (h *Handler) StartNew(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.StartNew()
	c.JSON(http.StatusOK, h.detail(s))
}
