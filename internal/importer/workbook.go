// Package importer 从上传的 xlsx 工作簿读取内容条目与规划条目。
//
// 工作簿约定：
//   - "Products" 表：name, category, status, summary, highlights（; 分隔）, metrics（label=value; ...）
//   - "Pipeline" 表（可选）：title, subtitle, owner, targetDate, status, bullets（; 分隔）
//
// 表头按名称匹配（大小写不敏感，支持中文别名），名称/标题为空的行会被跳过。
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"slidecraft/internal/model"
)

// ErrNoContentSheet 工作簿中既没有内容表也没有规划表
var ErrNoContentSheet = errors.New("workbook has no Products or Pipeline sheet")

// Result 导入结果
type Result struct {
	Products    []model.ProductData `json:"products"`
	Pipeline    []model.SlideEntry  `json:"pipeline"`
	SkippedRows int                 `json:"skippedRows"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// ImportWorkbook 解析工作簿
func ImportWorkbook(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	productSheet := findSheet(f.GetSheetList(), productSheetNames)
	pipelineSheet := findSheet(f.GetSheetList(), pipelineSheetNames)
	if productSheet == "" && pipelineSheet == "" {
		return nil, ErrNoContentSheet
	}

	res := &Result{
		Products: []model.ProductData{},
		Pipeline: []model.SlideEntry{},
	}

	if productSheet != "" {
		rows, err := f.GetRows(productSheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", productSheet, err)
		}
		parseProducts(productSheet, rows, res)
	}
	if pipelineSheet != "" {
		rows, err := f.GetRows(pipelineSheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", pipelineSheet, err)
		}
		parsePipeline(pipelineSheet, rows, res)
	}
	return res, nil
}

func findSheet(sheets []string, names []string) string {
	for _, want := range names {
		for _, s := range sheets {
			if normalizeHeader(s) == want {
				return s
			}
		}
	}
	return ""
}

func parseProducts(sheet string, rows [][]string, res *Result) {
	if len(rows) == 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: empty sheet", sheet))
		return
	}
	cols := mapColumns(rows[0], productAliases)
	if _, ok := cols["name"]; !ok {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: missing name column", sheet))
		return
	}

	for i, row := range rows[1:] {
		name := cell(row, cols, "name")
		if name == "" {
			if !blankRow(row) {
				res.SkippedRows++
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s row %d: empty name", sheet, i+2))
			}
			continue
		}
		metrics, bad := parseMetrics(cell(row, cols, "metrics"))
		for _, b := range bad {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s row %d: ignored metric %q", sheet, i+2, b))
		}
		res.Products = append(res.Products, model.ProductData{
			Name:       name,
			Category:   cell(row, cols, "category"),
			Status:     cell(row, cols, "status"),
			Summary:    cell(row, cols, "summary"),
			Highlights: splitList(cell(row, cols, "highlights")),
			Metrics:    metrics,
		})
	}
}

func parsePipeline(sheet string, rows [][]string, res *Result) {
	if len(rows) == 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: empty sheet", sheet))
		return
	}
	cols := mapColumns(rows[0], pipelineAliases)
	if _, ok := cols["title"]; !ok {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: missing title column", sheet))
		return
	}

	for i, row := range rows[1:] {
		title := cell(row, cols, "title")
		if title == "" {
			if !blankRow(row) {
				res.SkippedRows++
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s row %d: empty title", sheet, i+2))
			}
			continue
		}
		res.Pipeline = append(res.Pipeline, model.SlideEntry{
			Title:      title,
			Subtitle:   cell(row, cols, "subtitle"),
			Owner:      cell(row, cols, "owner"),
			TargetDate: cell(row, cols, "targetdate"),
			Status:     cell(row, cols, "status"),
			Bullets:    splitList(cell(row, cols, "bullets")),
		})
	}
}

// parseMetrics 解析 "label=value; ..."，也接受 "label:value"
func parseMetrics(s string) (metrics []model.Metric, bad []string) {
	for _, item := range splitList(s) {
		sep := strings.IndexAny(item, "=:：")
		if sep <= 0 {
			bad = append(bad, item)
			continue
		}
		label := strings.TrimSpace(item[:sep])
		_, size := utf8.DecodeRuneInString(item[sep:])
		value := strings.TrimSpace(item[sep+size:])
		if label == "" || value == "" {
			bad = append(bad, item)
			continue
		}
		metrics = append(metrics, model.Metric{Label: label, Value: value})
	}
	return metrics, bad
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
