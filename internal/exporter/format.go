package exporter

import (
	"errors"
	"fmt"
	"strings"

	"slidecraft/internal/model"
)

// Format 导出格式
type Format string

const (
	FormatPPTX Format = "pptx"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ErrUnknownFormat 不支持的导出格式
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat 解析格式名（大小写不敏感，空串视为 pptx）
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPPTX, nil
	case FormatPPTX, FormatPDF, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
	}
}

// Serializer 把组装好的文档序列化为某种文件格式。
// 同样的文档应当得到同样的内容（不写入时间戳等易变字段）。
type Serializer interface {
	Format() Format
	ContentType() string
	Extension() string
	Serialize(doc *model.AssembledDocument) ([]byte, error)
}

// Serializers 按格式索引的序列化器集合
type Serializers map[Format]Serializer

// NewSerializers 由序列化器列表构造集合
func NewSerializers(list ...Serializer) Serializers {
	out := make(Serializers, len(list))
	for _, s := range list {
		out[s.Format()] = s
	}
	return out
}

// DefaultSerializers 内置的 pptx / pdf / xlsx 序列化器
func DefaultSerializers() Serializers {
	return NewSerializers(NewPPTXSerializer(), NewPDFSerializer(), NewXLSXSerializer())
}

// Get 获取某格式的序列化器
func (s Serializers) Get(f Format) (Serializer, error) {
	ser, ok := s[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
	return ser, nil
}
