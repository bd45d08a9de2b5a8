package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"slidecraft/internal/model"
)

// ErrRemoteDisabled 未配置远程服务地址
var ErrRemoteDisabled = errors.New("remote publishing is not configured")

// RemotePayload 远程服务自行排版，因此只接收原始输入而非组装后的文档
type RemotePayload struct {
	SessionID    string                `json:"sessionId"`
	Settings     model.ProjectSettings `json:"settings"`
	Products     []model.ProductData   `json:"products"`
	Pipeline     []model.SlideEntry    `json:"pipeline"`
	ShowPipeline bool                  `json:"showPipeline"`
	Template     model.TemplateStyle   `json:"template"`
}

// RemoteReceipt 远程服务回执
type RemoteReceipt struct {
	ID     string `json:"id,omitempty"`
	URL    string `json:"url,omitempty"`
	Status int    `json:"status"`
}

// RemoteSink 远程幻灯片服务
type RemoteSink interface {
	Publish(ctx context.Context, payload RemotePayload) (RemoteReceipt, error)
}

// HTTPRemoteSink 以 JSON POST 发布到配置的地址
type HTTPRemoteSink struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewHTTPRemoteSink endpoint 为空时 Publish 返回 ErrRemoteDisabled
func NewHTTPRemoteSink(endpoint, token string, timeout time.Duration) *HTTPRemoteSink {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPRemoteSink{
		endpoint: strings.TrimSpace(endpoint),
		token:    strings.TrimSpace(token),
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled 是否已配置
func (s *HTTPRemoteSink) Enabled() bool {
	return s != nil && s.endpoint != ""
}

func (s *HTTPRemoteSink) Publish(ctx context.Context, payload RemotePayload) (RemoteReceipt, error) {
	if !s.Enabled() {
		return RemoteReceipt{}, ErrRemoteDisabled
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return RemoteReceipt{}, fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return RemoteReceipt{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return RemoteReceipt{}, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := truncateRunes(strings.TrimSpace(string(raw)), 200)
		return RemoteReceipt{Status: resp.StatusCode}, fmt.Errorf("remote responded %d: %s", resp.StatusCode, msg)
	}

	receipt := RemoteReceipt{Status: resp.StatusCode}
	if len(bytes.TrimSpace(raw)) > 0 {
		// 回执字段可选，解析失败不影响发布结果
		_ = json.Unmarshal(raw, &receipt)
		receipt.Status = resp.StatusCode
	}
	return receipt, nil
}

// truncateRunes 按字符截断，避免切断多字节字符
func truncateRunes(s string, n int) string {
	r := []rune(strings.ToValidUTF8(s, ""))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}
