package exporter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	ppt "github.com/VantageDataChat/GoPPT"

	"slidecraft/internal/model"
)

// 16:9 宽屏布局
const (
	emuPerInch = 914400

	slideWidth    = int64(10.0 * emuPerInch)
	marginLeft    = int64(0.5 * emuPerInch)
	contentWidth  = int64(9.0 * emuPerInch)
	bodyTop       = int64(1.45 * emuPerInch)
	metricsTop    = int64(4.0 * emuPerInch)
	metricsHeight = int64(0.85 * emuPerInch)
	footerTop     = int64(5.2 * emuPerInch)

	fontCover    = 40
	fontCoverSub = 20
	fontHeading  = 28
	fontSubhead  = 16
	fontBody     = 14
	fontMetric   = 22
	fontSmall    = 11
	fontFooter   = 9

	maxBodyLines = 8
	maxMetrics   = 4
)

const (
	colorWhite = "FFFFFFFF"
	colorMuted = "FF64748B"
	colorPanel = "FFF8FAFC"
	colorText  = "FF1E293B"
)

// PPTXSerializer 使用 GoPPT 生成 PowerPoint 文件
type PPTXSerializer struct{}

// NewPPTXSerializer 创建 pptx 序列化器
func NewPPTXSerializer() *PPTXSerializer {
	return &PPTXSerializer{}
}

func (s *PPTXSerializer) Format() Format      { return FormatPPTX }
func (s *PPTXSerializer) Extension() string   { return "pptx" }
func (s *PPTXSerializer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
}

// Serialize 每个 Slide 对应一页
func (s *PPTXSerializer) Serialize(doc *model.AssembledDocument) ([]byte, error) {
	if doc == nil || len(doc.Slides) == 0 {
		return nil, errors.New("pptx: empty document")
	}

	p := ppt.New()
	p.GetDocumentProperties().Title = doc.Title
	p.GetDocumentProperties().Creator = "SlideCraft"

	colors := newPalette(doc.Template.Primary, doc.Template.Secondary, doc.Template.Accent)
	total := len(doc.Slides)

	for i, sd := range doc.Slides {
		var slide *ppt.Slide
		if i == 0 {
			slide = p.GetActiveSlide()
		} else {
			slide = p.CreateSlide()
		}

		if sd.Kind == model.SlideTitle {
			s.drawCover(slide, sd, colors)
			continue
		}
		s.drawContent(slide, sd, colors, total)
	}

	w, err := ppt.NewWriter(p, ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, fmt.Errorf("pptx: create writer: %w", err)
	}
	pw, ok := w.(*ppt.PPTXWriter)
	if !ok {
		return nil, errors.New("pptx: unexpected writer type")
	}

	var buf bytes.Buffer
	if err := pw.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("pptx: write: %w", err)
	}
	return buf.Bytes(), nil
}

func pptFill(argb string) *ppt.Fill {
	return ppt.NewFill().SetSolid(ppt.NewColor(argb))
}

func pptCenter(p *ppt.Paragraph) {
	p.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
}

func pptRight(p *ppt.Paragraph) {
	p.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalRight))
}

// drawCover 封面：主色满版底色 + 居中标题
func (s *PPTXSerializer) drawCover(slide *ppt.Slide, sd model.Slide, c palette) {
	bg := slide.CreateRichTextShape()
	bg.SetOffsetX(0).SetOffsetY(0)
	bg.SetWidth(slideWidth).SetHeight(int64(5.625 * emuPerInch))
	bg.SetFill(pptFill(c.primary.argb()))

	band := slide.CreateRichTextShape()
	band.SetOffsetX(0).SetOffsetY(int64(4.2 * emuPerInch))
	band.SetWidth(slideWidth).SetHeight(int64(0.12 * emuPerInch))
	band.SetFill(pptFill(c.accent.argb()))

	title := slide.CreateRichTextShape()
	title.SetOffsetX(marginLeft).SetOffsetY(int64(1.7 * emuPerInch))
	title.SetWidth(contentWidth).SetHeight(int64(1.2 * emuPerInch))
	tr := title.CreateTextRun(sd.Heading)
	tr.GetFont().SetSize(fontCover).SetBold(true).SetColor(ppt.NewColor(colorWhite))
	pptCenter(title.GetActiveParagraph())

	if sd.Subheading != "" {
		sub := slide.CreateRichTextShape()
		sub.SetOffsetX(marginLeft).SetOffsetY(int64(2.9 * emuPerInch))
		sub.SetWidth(contentWidth).SetHeight(int64(0.6 * emuPerInch))
		str := sub.CreateTextRun(sd.Subheading)
		str.GetFont().SetSize(fontCoverSub).SetColor(ppt.NewColor(colorWhite))
		pptCenter(sub.GetActiveParagraph())
	}

	if sd.Footer != "" {
		ft := slide.CreateRichTextShape()
		ft.SetOffsetX(marginLeft).SetOffsetY(int64(4.6 * emuPerInch))
		ft.SetWidth(contentWidth).SetHeight(int64(0.4 * emuPerInch))
		ftr := ft.CreateTextRun(sd.Footer)
		ftr.GetFont().SetSize(fontSmall).SetColor(ppt.NewColor(c.accent.argb()))
		pptCenter(ft.GetActiveParagraph())
	}
}

// drawContent 内容页与规划页：顶部色条、标题、状态、正文、指标卡片、页脚
func (s *PPTXSerializer) drawContent(slide *ppt.Slide, sd model.Slide, c palette, total int) {
	bar := slide.CreateRichTextShape()
	bar.SetOffsetX(0).SetOffsetY(0)
	bar.SetWidth(slideWidth).SetHeight(int64(0.1 * emuPerInch))
	barColor := c.primary
	if sd.Kind == model.SlidePipeline {
		barColor = c.secondary
	}
	bar.SetFill(pptFill(barColor.argb()))

	heading := slide.CreateRichTextShape()
	heading.SetOffsetX(marginLeft).SetOffsetY(int64(0.3 * emuPerInch))
	heading.SetWidth(int64(7.0 * emuPerInch)).SetHeight(int64(0.6 * emuPerInch))
	htr := heading.CreateTextRun(sd.Heading)
	htr.GetFont().SetSize(fontHeading).SetBold(true).SetColor(ppt.NewColor(c.primary.argb()))

	if sd.Subheading != "" {
		sub := slide.CreateRichTextShape()
		sub.SetOffsetX(marginLeft).SetOffsetY(int64(0.9 * emuPerInch))
		sub.SetWidth(int64(7.0 * emuPerInch)).SetHeight(int64(0.4 * emuPerInch))
		str := sub.CreateTextRun(sd.Subheading)
		str.GetFont().SetSize(fontSubhead).SetColor(ppt.NewColor(c.secondary.argb()))
	}

	tag := strings.ToUpper(sd.Status)
	if sd.Kind == model.SlidePipeline {
		tag = strings.TrimSpace("PIPELINE " + tag)
	}
	if tag != "" {
		badge := slide.CreateRichTextShape()
		badge.SetOffsetX(int64(7.6 * emuPerInch)).SetOffsetY(int64(0.35 * emuPerInch))
		badge.SetWidth(int64(1.9 * emuPerInch)).SetHeight(int64(0.4 * emuPerInch))
		badge.SetFill(pptFill(c.accent.argb()))
		btr := badge.CreateTextRun(tag)
		btr.GetFont().SetSize(fontSmall).SetBold(true).SetColor(ppt.NewColor(colorWhite))
		pptCenter(badge.GetActiveParagraph())
	}

	if len(sd.Body) > 0 {
		body := slide.CreateRichTextShape()
		body.SetOffsetX(marginLeft).SetOffsetY(bodyTop)
		body.SetWidth(contentWidth).SetHeight(int64(2.4 * emuPerInch))

		lines := sd.Body
		if len(lines) > maxBodyLines {
			lines = append(lines[:maxBodyLines-1:maxBodyLines-1], fmt.Sprintf("… %d more", len(sd.Body)-maxBodyLines+1))
		}
		for i, line := range lines {
			if i > 0 {
				body.CreateParagraph()
			}
			tr := body.CreateTextRun("• " + line)
			tr.GetFont().SetSize(fontBody).SetColor(ppt.NewColor(colorText))
		}
	}

	s.drawMetrics(slide, sd.Metrics, c)

	footer := slide.CreateRichTextShape()
	footer.SetOffsetX(marginLeft).SetOffsetY(footerTop)
	footer.SetWidth(contentWidth).SetHeight(int64(0.3 * emuPerInch))
	ftr := footer.CreateTextRun(fmt.Sprintf("%s    %d / %d", sd.Footer, sd.Index+1, total))
	ftr.GetFont().SetSize(fontFooter).SetColor(ppt.NewColor(colorMuted))
	pptRight(footer.GetActiveParagraph())
}

func (s *PPTXSerializer) drawMetrics(slide *ppt.Slide, metrics []model.Metric, c palette) {
	if len(metrics) == 0 {
		return
	}
	if len(metrics) > maxMetrics {
		metrics = metrics[:maxMetrics]
	}

	const spacing = 0.15
	boxWidth := (9.0 - float64(len(metrics)-1)*spacing) / float64(len(metrics))

	for i, m := range metrics {
		x := 0.5 + float64(i)*(boxWidth+spacing)

		box := slide.CreateRichTextShape()
		box.SetOffsetX(int64(x * emuPerInch)).SetOffsetY(metricsTop)
		box.SetWidth(int64(boxWidth * emuPerInch)).SetHeight(metricsHeight)
		box.SetFill(pptFill(colorPanel))

		vtr := box.CreateTextRun(m.Value)
		vtr.GetFont().SetSize(fontMetric).SetBold(true).SetColor(ppt.NewColor(c.primary.argb()))
		pptCenter(box.GetActiveParagraph())

		box.CreateParagraph()
		ltr := box.CreateTextRun(m.Label)
		ltr.GetFont().SetSize(fontSmall).SetColor(ppt.NewColor(colorMuted))
		pptCenter(box.GetActiveParagraph())
	}
}
