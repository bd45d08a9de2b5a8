package exporter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"slidecraft/internal/model"
	"slidecraft/internal/service/assembler"
)

// ErrExportInProgress 同一会话已有导出在进行
var ErrExportInProgress = errors.New("an export is already in progress for this session")

// Source 可导出的会话。导出器只读快照，从不回写。
type Source interface {
	ID() string
	Snapshot() model.SessionSnapshot
	AcquireExport() (release func(), ok bool)
}

// TemplateResolver 模板解析（未知 id 回退到默认模板）
type TemplateResolver interface {
	Resolve(id string) model.TemplateStyle
}

// ExportOptions 导出选项
type ExportOptions struct {
	Format   Format
	Progress func(ProgressEvent)
}

// ExportResult 导出结果
type ExportResult struct {
	Delivery   Delivery `json:"delivery"`
	Format     Format   `json:"format"`
	SlideCount int      `json:"slideCount"`
	Title      string   `json:"title"`
}

// PublishResult 远程发布结果
type PublishResult struct {
	Receipt    RemoteReceipt `json:"receipt"`
	SlideCount int           `json:"slideCount"`
}

// Exporter 串起 快照 → 组装 → 序列化 → 落地
type Exporter struct {
	templates   TemplateResolver
	serializers Serializers
	files       Sink
	remote      RemoteSink
}

// New 创建导出器；remote 可以为 nil（Publish 返回 ErrRemoteDisabled）
func New(templates TemplateResolver, serializers Serializers, files Sink, remote RemoteSink) *Exporter {
	if serializers == nil {
		serializers = DefaultSerializers()
	}
	return &Exporter{
		templates:   templates,
		serializers: serializers,
		files:       files,
		remote:      remote,
	}
}

// Formats 可用的导出格式
func (e *Exporter) Formats() []Format {
	out := make([]Format, 0, len(e.serializers))
	for _, f := range []Format{FormatPPTX, FormatPDF, FormatXLSX} {
		if _, ok := e.serializers[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Preview 基于当前快照组装文档，不落地
func (e *Exporter) Preview(src Source) (*model.AssembledDocument, error) {
	snap := src.Snapshot()
	return assembler.Assemble(assembler.FromSnapshot(snap, e.templates.Resolve(snap.Settings.TemplateID)))
}

// Export 导出到文件。快照在任何耗时步骤之前取出，导出期间会话上的修改不影响本次结果。
func (e *Exporter) Export(ctx context.Context, src Source, opts ExportOptions) (*ExportResult, error) {
	format := opts.Format
	if format == "" {
		format = FormatPPTX
	}
	ser, err := e.serializers.Get(format)
	if err != nil {
		return nil, err
	}
	if e.files == nil {
		return nil, &SinkError{Sink: "file", Err: errors.New("no file sink configured")}
	}

	release, ok := src.AcquireExport()
	if !ok {
		return nil, ErrExportInProgress
	}
	defer release()

	logger := zerolog.Ctx(ctx).With().Str("session", src.ID()).Str("format", string(format)).Logger()

	reportProgress(opts.Progress, 5, StageSnapshot)
	snap := src.Snapshot()

	reportProgress(opts.Progress, 20, StageAssemble)
	doc, err := assembler.Assemble(assembler.FromSnapshot(snap, e.templates.Resolve(snap.Settings.TemplateID)))
	if err != nil {
		logger.Warn().Err(err).Msg("assemble rejected")
		return nil, err
	}

	reportProgress(opts.Progress, 50, StageSerialize)
	data, err := ser.Serialize(doc)
	if err != nil {
		logger.Error().Err(err).Msg("serialize failed")
		return nil, fmt.Errorf("serialize %s: %w", format, err)
	}

	reportProgress(opts.Progress, 80, StageWrite)
	delivery, err := e.files.Write(ctx, Artifact{
		SessionID:   src.ID(),
		FileName:    buildFileName(snap.Settings, ser.Extension()),
		ContentType: ser.ContentType(),
		Data:        data,
	})
	if err != nil {
		logger.Error().Err(err).Msg("file sink failed")
		return nil, &SinkError{Sink: "file", Err: err}
	}

	reportProgress(opts.Progress, 100, StageDone)
	logger.Info().Str("file", delivery.FileName).Int64("size", delivery.Size).Int("slides", len(doc.Slides)).Msg("export finished")

	return &ExportResult{
		Delivery:   delivery,
		Format:     format,
		SlideCount: len(doc.Slides),
		Title:      doc.Title,
	}, nil
}

// Publish 把原始输入交给远程服务。组装仅用于校验，远程服务自行排版。
func (e *Exporter) Publish(ctx context.Context, src Source) (*PublishResult, error) {
	if e.remote == nil {
		return nil, ErrRemoteDisabled
	}

	release, ok := src.AcquireExport()
	if !ok {
		return nil, ErrExportInProgress
	}
	defer release()

	snap := src.Snapshot()
	tpl := e.templates.Resolve(snap.Settings.TemplateID)
	doc, err := assembler.Assemble(assembler.FromSnapshot(snap, tpl))
	if err != nil {
		return nil, err
	}

	receipt, err := e.remote.Publish(ctx, RemotePayload{
		SessionID:    src.ID(),
		Settings:     snap.Settings,
		Products:     snap.Products,
		Pipeline:     snap.Pipeline,
		ShowPipeline: snap.ShowPipeline,
		Template:     tpl,
	})
	if err != nil {
		if errors.Is(err, ErrRemoteDisabled) {
			return nil, err
		}
		zerolog.Ctx(ctx).Error().Err(err).Str("session", src.ID()).Msg("remote publish failed")
		return nil, &SinkError{Sink: "remote", Err: err}
	}
	return &PublishResult{Receipt: receipt, SlideCount: len(doc.Slides)}, nil
}

// buildFileName 标题 + 期间 生成文件名，如 monthly-progress-report-may-2025.pptx
func buildFileName(s model.ProjectSettings, ext string) string {
	base := slugify(strings.TrimSpace(s.Title + " " + s.Period()))
	if base == "" {
		base = "presentation"
	}
	return base + "." + ext
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
