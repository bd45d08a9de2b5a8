package exporter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"slidecraft/internal/model"
)

// PDFSerializer 使用 maroto 生成讲义版 PDF：每页幻灯片一个区块
type PDFSerializer struct{}

// NewPDFSerializer 创建 pdf 序列化器
func NewPDFSerializer() *PDFSerializer {
	return &PDFSerializer{}
}

func (s *PDFSerializer) Format() Format      { return FormatPDF }
func (s *PDFSerializer) Extension() string   { return "pdf" }
func (s *PDFSerializer) ContentType() string { return "application/pdf" }

func (s *PDFSerializer) Serialize(doc *model.AssembledDocument) ([]byte, error) {
	if doc == nil || len(doc.Slides) == 0 {
		return nil, errors.New("pdf: empty document")
	}

	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithDefaultFont(&props.Font{Family: fontfamily.Arial, Size: 10}).
		Build()

	m := maroto.New(cfg)
	c := newPalette(doc.Template.Primary, doc.Template.Secondary, doc.Template.Accent)

	for _, sd := range doc.Slides {
		if sd.Kind == model.SlideTitle {
			s.addCover(m, sd, c)
			continue
		}
		s.addSection(m, sd, c)
	}

	document, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate: %w", err)
	}
	return document.GetBytes(), nil
}

func propsColor(c rgb) *props.Color {
	return &props.Color{Red: c.R, Green: c.G, Blue: c.B}
}

func (s *PDFSerializer) addCover(m core.Maroto, sd model.Slide, c palette) {
	m.AddRow(20,
		col.New(12).Add(
			text.New(sd.Heading, props.Text{
				Family: fontfamily.Arial,
				Size:   22,
				Style:  fontstyle.Bold,
				Align:  align.Center,
				Color:  propsColor(c.primary),
			}),
		),
	)
	if sd.Subheading != "" {
		m.AddRow(10,
			col.New(12).Add(
				text.New(sd.Subheading, props.Text{
					Family: fontfamily.Arial,
					Size:   13,
					Align:  align.Center,
					Color:  propsColor(c.secondary),
				}),
			),
		)
	}
	if sd.Footer != "" {
		m.AddRow(8,
			col.New(12).Add(
				text.New(sd.Footer, props.Text{
					Family: fontfamily.Arial,
					Size:   9,
					Align:  align.Center,
					Color:  &props.Color{Red: 100, Green: 116, Blue: 139},
				}),
			),
		)
	}
	m.AddRow(10)
}

func (s *PDFSerializer) addSection(m core.Maroto, sd model.Slide, c palette) {
	heading := fmt.Sprintf("%d. %s", sd.Index, sd.Heading)
	headColor := c.primary
	if sd.Kind == model.SlidePipeline {
		headColor = c.secondary
	}
	m.AddRow(10,
		col.New(9).Add(
			text.New(heading, props.Text{
				Family: fontfamily.Arial,
				Size:   14,
				Style:  fontstyle.Bold,
				Color:  propsColor(headColor),
			}),
		),
		col.New(3).Add(
			text.New(strings.ToUpper(sd.Status), props.Text{
				Family: fontfamily.Arial,
				Size:   9,
				Style:  fontstyle.Bold,
				Align:  align.Right,
				Color:  propsColor(c.accent),
			}),
		),
	)

	if sd.Subheading != "" {
		m.AddRow(7,
			col.New(12).Add(
				text.New(sd.Subheading, props.Text{
					Family: fontfamily.Arial,
					Size:   10,
					Style:  fontstyle.Italic,
					Color:  &props.Color{Red: 100, Green: 116, Blue: 139},
				}),
			),
		)
	}

	for _, line := range sd.Body {
		m.AddRow(6,
			col.New(12).Add(
				text.New("- "+line, props.Text{
					Family: fontfamily.Arial,
					Size:   10,
				}),
			),
		)
	}

	// 指标两列排布
	for i := 0; i < len(sd.Metrics); i += 2 {
		cols := []core.Col{metricCol(sd.Metrics[i])}
		if i+1 < len(sd.Metrics) {
			cols = append(cols, metricCol(sd.Metrics[i+1]))
		} else {
			cols = append(cols, col.New(6))
		}
		m.AddRow(7, cols...)
	}

	if sd.Footer != "" {
		m.AddRow(6,
			col.New(12).Add(
				text.New(sd.Footer, props.Text{
					Family: fontfamily.Arial,
					Size:   8,
					Align:  align.Right,
					Color:  &props.Color{Red: 148, Green: 163, Blue: 184},
				}),
			),
		)
	}
	m.AddRow(6)
}

func metricCol(mt model.Metric) core.Col {
	return col.New(6).Add(
		text.New(fmt.Sprintf("%s: %s", mt.Label, mt.Value), props.Text{
			Family: fontfamily.Arial,
			Size:   9,
			Style:  fontstyle.Bold,
		}),
	)
}
