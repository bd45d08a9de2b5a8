package v1

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"slidecraft/internal/importer"
	"slidecraft/internal/service/session"
	"slidecraft/internal/store"
)

const maxImportSize = 16 << 20

// ImportResponse 导入结果
type ImportResponse struct {
	Mode          session.ImportMode `json:"mode"`
	Products      int                `json:"products"`
	Pipeline      int                `json:"pipeline"`
	SkippedRows   int                `json:"skippedRows"`
	Warnings      []string           `json:"warnings,omitempty"`
	ProductTotal  int                `json:"productTotal"`
	PipelineTotal int                `json:"pipelineTotal"`
}

// Import 从 xlsx 批量导入内容与规划条目
// POST /api/sessions/:id/import  (multipart: file, mode=append|replace)
func (h *Handler) Import(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "未找到上传文件")
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		badRequest(c, "仅支持 .xlsx 文件")
		return
	}
	if fh.Size > maxImportSize {
		badRequest(c, "文件过大")
		return
	}

	mode := session.ImportMode(strings.ToLower(c.DefaultPostForm("mode", string(session.ImportAppend))))
	if mode != session.ImportAppend && mode != session.ImportReplace {
		badRequest(c, "mode 仅支持 append 或 replace")
		return
	}

	f, err := fh.Open()
	if err != nil {
		badRequest(c, "读取上传文件失败")
		return
	}
	defer f.Close()

	res, err := importer.ImportWorkbook(f)
	if err != nil {
		h.recordImport(c, store.ImportLog{
			SessionID:    s.ID(),
			Filename:     fh.Filename,
			FileSize:     fh.Size,
			Mode:         string(mode),
			Status:       store.ImportStatusFailed,
			ErrorMessage: err.Error(),
		})
		if errors.Is(err, importer.ErrNoContentSheet) {
			respondError(c, err)
			return
		}
		badRequest(c, "无法解析工作簿: "+err.Error())
		return
	}

	s.ImportContent(res.Products, res.Pipeline, mode)
	h.recordImport(c, store.ImportLog{
		SessionID:   s.ID(),
		Filename:    fh.Filename,
		FileSize:    fh.Size,
		Mode:        string(mode),
		Products:    len(res.Products),
		Pipeline:    len(res.Pipeline),
		SkippedRows: res.SkippedRows,
		Status:      store.ImportStatusSuccess,
	})

	zerolog.Ctx(c.Request.Context()).Info().
		Str("session", s.ID()).
		Str("file", fh.Filename).
		Int("products", len(res.Products)).
		Int("pipeline", len(res.Pipeline)).
		Msg("workbook imported")

	sum := s.Summary()
	c.JSON(http.StatusOK, ImportResponse{
		Mode:          mode,
		Products:      len(res.Products),
		Pipeline:      len(res.Pipeline),
		SkippedRows:   res.SkippedRows,
		Warnings:      res.Warnings,
		ProductTotal:  sum.ProductCount,
		PipelineTotal: sum.PipelineCount,
	})
}

// ListImports 导入历史
// GET /api/sessions/:id/imports?limit=20
func (h *Handler) ListImports(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"imports": []store.ImportLog{}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	logs, err := h.store.ListImportLogs(s.ID(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imports": logs})
}

func (h *Handler) recordImport(c *gin.Context, entry store.ImportLog) {
	if h.store == nil {
		return
	}
	if _, err := h.store.CreateImportLog(entry); err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("write import log")
	}
}
