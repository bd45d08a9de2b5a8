// Package assembler 把会话快照转换为与格式无关的幻灯片序列。
//
// Assemble 是纯函数：不写入任何 sink，不修改输入，同样的输入总是得到结构相同的输出。
// 字节级序列化由 exporter 负责。
package assembler

import (
	"fmt"
	"strings"

	"slidecraft/internal/model"
)

// Input 组装输入（全部按值传入）
type Input struct {
	Settings     model.ProjectSettings
	Products     []model.ProductData
	Pipeline     []model.SlideEntry
	ShowPipeline bool
	Template     model.TemplateStyle
}

// FromSnapshot 由会话快照与已解析模板构造输入
func FromSnapshot(snap model.SessionSnapshot, tpl model.TemplateStyle) Input {
	return Input{
		Settings:     snap.Settings,
		Products:     snap.Products,
		Pipeline:     snap.Pipeline,
		ShowPipeline: snap.ShowPipeline,
		Template:     tpl,
	}
}

// Assemble 组装文档：封面 + 每个内容条目一页 + （开启时）每个规划条目一页
func Assemble(in Input) (*model.AssembledDocument, error) {
	title := strings.TrimSpace(in.Settings.Title)
	if title == "" {
		return nil, &AssemblyError{Field: "title", Err: ErrMissingTitle}
	}

	period := in.Settings.Period()

	capacity := 1 + len(in.Products)
	if in.ShowPipeline {
		capacity += len(in.Pipeline)
	}
	slides := make([]model.Slide, 0, capacity)

	slides = append(slides, model.Slide{
		Kind:       model.SlideTitle,
		Heading:    title,
		Subheading: period,
		Footer:     in.Template.Name,
	})

	for i, p := range in.Products {
		slides = append(slides, productSlide(i, p, period))
	}

	if in.ShowPipeline {
		for i, e := range in.Pipeline {
			slides = append(slides, pipelineSlide(i, e, period))
		}
	}

	for i := range slides {
		slides[i].Index = i
	}

	return &model.AssembledDocument{
		Title:    title,
		Subtitle: period,
		Template: in.Template,
		Slides:   slides,
	}, nil
}

func productSlide(pos int, p model.ProductData, period string) model.Slide {
	heading := strings.TrimSpace(p.Name)
	if heading == "" {
		heading = fmt.Sprintf("Product %d", pos+1)
	}

	var body []string
	if s := strings.TrimSpace(p.Summary); s != "" {
		body = append(body, s)
	}
	body = append(body, nonBlank(p.Highlights)...)

	var metrics []model.Metric
	for _, m := range p.Metrics {
		if strings.TrimSpace(m.Label) == "" && strings.TrimSpace(m.Value) == "" {
			continue
		}
		metrics = append(metrics, m)
	}

	return model.Slide{
		Kind:       model.SlideProduct,
		Heading:    heading,
		Subheading: strings.TrimSpace(p.Category),
		Status:     strings.TrimSpace(p.Status),
		Body:       body,
		Metrics:    metrics,
		Footer:     period,
	}
}

func pipelineSlide(pos int, e model.SlideEntry, period string) model.Slide {
	heading := strings.TrimSpace(e.Title)
	if heading == "" {
		heading = fmt.Sprintf("Pipeline %d", pos+1)
	}

	var metrics []model.Metric
	if v := strings.TrimSpace(e.Owner); v != "" {
		metrics = append(metrics, model.Metric{Label: "Owner", Value: v})
	}
	if v := strings.TrimSpace(e.TargetDate); v != "" {
		metrics = append(metrics, model.Metric{Label: "Target", Value: v})
	}

	return model.Slide{
		Kind:       model.SlidePipeline,
		Heading:    heading,
		Subheading: strings.TrimSpace(e.Subtitle),
		Status:     strings.TrimSpace(e.Status),
		Body:       nonBlank(e.Bullets),
		Metrics:    metrics,
		Footer:     period,
	}
}

func nonBlank(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
