package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"slidecraft/internal/exporter"
	"slidecraft/internal/service/session"
	"slidecraft/internal/store"
)

type exportRequest struct {
	Format string `json:"format"`
}

// ExportResponse 导出结果
type ExportResponse struct {
	*exporter.ExportResult
	DownloadURL string `json:"downloadUrl"`
	ExpiresIn   int    `json:"expiresIn"` // 秒
}

type exportProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// bindFormat 读取导出格式：JSON body 或 ?format=，都没有时用默认格式
func (h *Handler) bindFormat(c *gin.Context) (exporter.Format, bool) {
	raw := c.Query("format")
	if raw == "" && c.Request.ContentLength > 0 {
		var req exportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "请求格式错误")
			return "", false
		}
		raw = req.Format
	}
	if raw == "" {
		return h.defaultFormat, true
	}
	f, err := exporter.ParseFormat(raw)
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return f, true
}

// Preview 组装预览（不落地）
// GET /api/sessions/:id/preview
func (h *Handler) Preview(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	doc, err := h.exporter.Preview(s)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Export 导出文件，返回一次性下载地址
// POST /api/sessions/:id/export
func (h *Handler) Export(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	format, ok := h.bindFormat(c)
	if !ok {
		return
	}

	res, err := h.exporter.Export(c.Request.Context(), s, exporter.ExportOptions{Format: format})
	h.recordExport(c, s, "file", format, res, err)
	if err != nil {
		respondError(c, err)
		return
	}

	token := h.downloads.put(res.Delivery, h.downloadTTL)
	c.JSON(http.StatusOK, ExportResponse{
		ExportResult: res,
		DownloadURL:  downloadURL(token),
		ExpiresIn:    int(h.downloadTTL / time.Second),
	})
}

// ExportStream 导出（SSE 进度 + 完成后提供下载地址）
// POST /api/sessions/:id/export/stream
func (h *Handler) ExportStream(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	format, ok := h.bindFormat(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	send := func(event exportProgressEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	send(exportProgressEvent{
		Type:    "start",
		Message: "开始导出",
		Data: map[string]any{
			"session": s.ID(),
			"format":  format,
		},
		Timestamp: time.Now(),
	})

	lastPercent := -1
	progressFn := func(p exporter.ProgressEvent) {
		if p.Percent == lastPercent {
			return
		}
		lastPercent = p.Percent
		send(exportProgressEvent{
			Type:      "progress",
			Message:   p.Stage,
			Data:      map[string]any{"percent": p.Percent},
			Timestamp: time.Now(),
		})
	}

	res, err := h.exporter.Export(c.Request.Context(), s, exporter.ExportOptions{
		Format:   format,
		Progress: progressFn,
	})
	h.recordExport(c, s, "file", format, res, err)
	if err != nil {
		send(exportProgressEvent{
			Type:      "error",
			Message:   "导出失败: " + err.Error(),
			Data:      map[string]any{"status": statusFor(err)},
			Timestamp: time.Now(),
		})
		return
	}

	token := h.downloads.put(res.Delivery, h.downloadTTL)
	send(exportProgressEvent{
		Type:    "done",
		Message: "导出完成",
		Data: map[string]any{
			"percent":     100,
			"downloadUrl": downloadURL(token),
			"fileName":    res.Delivery.FileName,
			"slideCount":  res.SlideCount,
		},
		Timestamp: time.Now(),
	})
}

// DownloadExport 下载导出文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		badRequest(c, "缺少 token")
		return
	}

	item, ok := h.downloads.take(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}
	if _, err := os.Stat(item.Path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "导出文件不存在"})
		return
	}

	c.Header("Content-Disposition", buildContentDisposition(item.FileName))
	c.Header("Content-Type", item.ContentType)
	c.File(item.Path)

	if err := exporter.RemoveDelivered(item.Path); err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Str("file", item.FileName).Msg("remove downloaded export failed")
	}
}

// Publish 发布到远程幻灯片服务
// POST /api/sessions/:id/publish
func (h *Handler) Publish(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	res, err := h.exporter.Publish(c.Request.Context(), s)
	if h.store != nil {
		entry := store.ExportLog{SessionID: s.ID(), Sink: "remote", Status: store.ExportStatusSuccess}
		if err != nil {
			entry.Status = store.ExportStatusFailed
			entry.ErrorMessage = err.Error()
		} else {
			entry.SlideCount = res.SlideCount
			entry.FileName = res.Receipt.URL
		}
		h.writeExportLog(c, entry)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListExports 导出历史
// GET /api/sessions/:id/exports?limit=20
func (h *Handler) ListExports(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"exports": []store.ExportLog{}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	logs, err := h.store.ListExportLogs(s.ID(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exports": logs})
}

func (h *Handler) recordExport(c *gin.Context, s *session.Session, sink string, format exporter.Format, res *exporter.ExportResult, err error) {
	if h.store == nil {
		return
	}
	entry := store.ExportLog{
		SessionID: s.ID(),
		Sink:      sink,
		Format:    string(format),
		Status:    store.ExportStatusSuccess,
	}
	if err != nil {
		entry.Status = store.ExportStatusFailed
		entry.ErrorMessage = err.Error()
	} else {
		entry.FileName = res.Delivery.FileName
		entry.FileSize = res.Delivery.Size
		entry.SlideCount = res.SlideCount
	}
	h.writeExportLog(c, entry)
}

func (h *Handler) writeExportLog(c *gin.Context, entry store.ExportLog) {
	if _, err := h.store.CreateExportLog(entry); err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("write export log")
	}
}

func downloadURL(token string) string {
	return "/api/export/download/" + token
}
