package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"slidecraft/internal/model"
)

type moveRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

type visibilityRequest struct {
	Show *bool `json:"show"`
}

func positionParam(c *gin.Context) (int, bool) {
	pos, err := strconv.Atoi(c.Param("pos"))
	if err != nil {
		badRequest(c, "无效的位置参数")
		return 0, false
	}
	return pos, true
}

func bindMove(c *gin.Context) (from, to int, ok bool) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.From == nil || req.To == nil {
		badRequest(c, "from 与 to 必填")
		return 0, 0, false
	}
	return *req.From, *req.To, true
}

// ---- 内容条目 ----

// ListProducts GET /api/sessions/:id/products
func (h *Handler) ListProducts(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": s.Products()})
}

// AppendProduct POST /api/sessions/:id/products
func (h *Handler) AppendProduct(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var p model.ProductData
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "请求格式错误")
		return
	}
	pos := s.AppendProduct(p)
	c.JSON(http.StatusCreated, gin.H{"position": pos, "products": s.Products()})
}

// UpdateProduct PUT /api/sessions/:id/products/:pos
func (h *Handler) UpdateProduct(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	pos, ok := positionParam(c)
	if !ok {
		return
	}
	var p model.ProductData
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "请求格式错误")
		return
	}
	if err := s.UpdateProduct(pos, p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": s.Products()})
}

// RemoveProduct DELETE /api/sessions/:id/products/:pos
func (h *Handler) RemoveProduct(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	pos, ok := positionParam(c)
	if !ok {
		return
	}
	if err := s.RemoveProduct(pos); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": s.Products()})
}

// MoveProduct POST /api/sessions/:id/products/move
func (h *Handler) MoveProduct(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	from, to, ok := bindMove(c)
	if !ok {
		return
	}
	if err := s.MoveProduct(from, to); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": s.Products()})
}

// ---- 规划条目 ----

// ListPipeline GET /api/sessions/:id/pipeline
func (h *Handler) ListPipeline(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"pipeline": s.Pipeline(), "showPipeline": s.ShowPipeline()})
}

// AppendPipeline POST /api/sessions/:id/pipeline
func (h *Handler) AppendPipeline(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var e model.SlideEntry
	if err := c.ShouldBindJSON(&e); err != nil {
		badRequest(c, "请求格式错误")
		return
	}
	pos := s.AppendPipeline(e)
	c.JSON(http.StatusCreated, gin.H{"position": pos, "pipeline": s.Pipeline()})
}

// UpdatePipeline PUT /api/sessions/:id/pipeline/:pos
func (h *Handler) UpdatePipeline(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	pos, ok := positionParam(c)
	if !ok {
		return
	}
	var e model.SlideEntry
	if err := c.ShouldBindJSON(&e); err != nil {
		badRequest(c, "请求格式错误")
		return
	}
	if err := s.UpdatePipeline(pos, e); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pipeline": s.Pipeline()})
}

// RemovePipeline DELETE /api/sessions/:id/pipeline/:pos
func (h *Handler) RemovePipeline(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	pos, ok := positionParam(c)
	if !ok {
		return
	}
	if err := s.RemovePipeline(pos); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pipeline": s.Pipeline()})
}

// MovePipeline POST /api/sessions/:id/pipeline/move
func (h *Handler) MovePipeline(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	from, to, ok := bindMove(c)
	if !ok {
		return
	}
	if err := s.MovePipeline(from, to); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pipeline": s.Pipeline()})
}

// SetPipelineVisibility 规划页是否出现在导出中
// PUT /api/sessions/:id/pipeline/visibility
func (h *Handler) SetPipelineVisibility(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Show == nil {
		badRequest(c, "show 必填")
		return
	}
	s.SetShowPipeline(*req.Show)
	c.JSON(http.StatusOK, gin.H{"showPipeline": s.ShowPipeline()})
}
