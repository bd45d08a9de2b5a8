package exporter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"slidecraft/internal/model"
)

const (
	sheetSlides  = "Slides"
	sheetMetrics = "Metrics"
)

var (
	slideHeaders  = []string{"#", "Kind", "Heading", "Subheading", "Status", "Body", "Footer"}
	metricHeaders = []string{"#", "Heading", "Label", "Value"}
)

// XLSXSerializer 把组装后的文档平铺成工作簿，便于二次加工
type XLSXSerializer struct{}

// NewXLSXSerializer 创建 xlsx 序列化器
func NewXLSXSerializer() *XLSXSerializer {
	return &XLSXSerializer{}
}

func (s *XLSXSerializer) Format() Format    { return FormatXLSX }
func (s *XLSXSerializer) Extension() string { return "xlsx" }
func (s *XLSXSerializer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (s *XLSXSerializer) Serialize(doc *model.AssembledDocument) ([]byte, error) {
	if doc == nil || len(doc.Slides) == 0 {
		return nil, errors.New("xlsx: empty document")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSlides); err != nil {
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetMetrics); err != nil {
		return nil, fmt.Errorf("xlsx: create sheet: %w", err)
	}

	c := newPalette(doc.Template.Primary, doc.Template.Secondary, doc.Template.Accent)
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{c.primary.hex()}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: header style: %w", err)
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: body style: %w", err)
	}

	if err := writeHeader(f, sheetSlides, slideHeaders, headerStyle); err != nil {
		return nil, err
	}
	if err := writeHeader(f, sheetMetrics, metricHeaders, headerStyle); err != nil {
		return nil, err
	}

	metricRow := 2
	for i, sd := range doc.Slides {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []interface{}{
			sd.Index, string(sd.Kind), sd.Heading, sd.Subheading, sd.Status,
			strings.Join(sd.Body, "\n"), sd.Footer,
		}
		if err := f.SetSheetRow(sheetSlides, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx: write slide %d: %w", sd.Index, err)
		}
		last, _ := excelize.CoordinatesToCellName(len(values), row)
		_ = f.SetCellStyle(sheetSlides, cell, last, bodyStyle)

		for _, m := range sd.Metrics {
			mc, _ := excelize.CoordinatesToCellName(1, metricRow)
			mv := []interface{}{sd.Index, sd.Heading, m.Label, m.Value}
			if err := f.SetSheetRow(sheetMetrics, mc, &mv); err != nil {
				return nil, fmt.Errorf("xlsx: write metric: %w", err)
			}
			metricRow++
		}
	}

	_ = f.SetColWidth(sheetSlides, "A", "B", 10)
	_ = f.SetColWidth(sheetSlides, "C", "D", 28)
	_ = f.SetColWidth(sheetSlides, "F", "F", 60)
	_ = f.SetColWidth(sheetMetrics, "B", "D", 24)
	_ = f.SetPanes(sheetSlides, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	_ = f.SetDocProps(&excelize.DocProperties{
		Creator:     "SlideCraft",
		Title:       doc.Title,
		Subject:     doc.Subtitle,
		Description: "template: " + doc.Template.Name,
	})

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("xlsx: header %s: %w", sheet, err)
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, first, last, style)
}
