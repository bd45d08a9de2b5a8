package v1

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// buildContentDisposition 同时给出 ASCII 回退名与 RFC 5987 的 UTF-8 文件名
func buildContentDisposition(fileName string) string {
	ext := filepath.Ext(fileName)
	fallback := asciiFileName(strings.TrimSuffix(fileName, ext))
	if fallback == "" {
		fallback = "presentation"
	}
	encoded := strings.ReplaceAll(url.QueryEscape(fileName), "+", "%20")
	return fmt.Sprintf("attachment; filename=\"%s%s\"; filename*=UTF-8''%s", fallback, asciiFileName(ext), encoded)
}

func asciiFileName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		}
	}
	return b.String()
}
