package exporter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Artifact 序列化完成、等待落地的导出物
type Artifact struct {
	SessionID   string
	FileName    string
	ContentType string
	Data        []byte
}

// Delivery 落地结果
type Delivery struct {
	Path        string `json:"-"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Sink 导出物的消费方
type Sink interface {
	Write(ctx context.Context, a Artifact) (Delivery, error)
}

// SinkError 下载或远程服务失败；会话状态不受影响
type SinkError struct {
	Sink string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("%s sink: %v", e.Sink, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// IsSinkError 判断是否为投递阶段的失败
func IsSinkError(err error) bool {
	var se *SinkError
	return errors.As(err, &se)
}

// FileSink 写入 <root>/<sessionID>/<exportID>/<fileName>，先写临时文件再 rename，失败时不会留下半截文件。
// 每次导出独占一个目录，同名导出互不覆盖。
type FileSink struct {
	root string
}

// NewFileSink 创建文件落地器，root 通常是 <dataDir>/exports
func NewFileSink(root string) *FileSink {
	return &FileSink{root: root}
}

// Root 返回导出根目录
func (s *FileSink) Root() string { return s.root }

func (s *FileSink) Write(_ context.Context, a Artifact) (Delivery, error) {
	name := filepath.Base(strings.TrimSpace(a.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return Delivery{}, errors.New("empty file name")
	}
	sub := filepath.Base(strings.TrimSpace(a.SessionID))
	if sub == "" || sub == "." || sub == string(filepath.Separator) {
		sub = "shared"
	}

	path := filepath.Join(s.root, sub, uuid.NewString(), name)
	if err := writeBytesAtomic(path, a.Data); err != nil {
		return Delivery{}, err
	}
	return Delivery{
		Path:        path,
		FileName:    name,
		ContentType: a.ContentType,
		Size:        int64(len(a.Data)),
	}, nil
}

// RemoveDelivered 删除已下载的导出文件及其导出目录
func RemoveDelivered(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	// 目录非空时忽略
	_ = os.Remove(filepath.Dir(path))
	return nil
}

func writeBytesAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
