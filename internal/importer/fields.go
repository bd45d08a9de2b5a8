package importer

import (
	"regexp"
	"strings"
)

var spaceRe = regexp.MustCompile(`\s+`)

// normalizeHeader 去空白、转小写，"Target Date" / "target_date" / "目标 日期" 归一
func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = spaceRe.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, "-", "")
	return name
}

// 字段别名（已归一化）
var productAliases = map[string][]string{
	"name":       {"name", "product", "productname", "名称", "产品", "产品名称"},
	"category":   {"category", "type", "类别", "分类"},
	"status":     {"status", "state", "状态"},
	"summary":    {"summary", "description", "desc", "摘要", "简介", "描述"},
	"highlights": {"highlights", "highlight", "亮点", "要点"},
	"metrics":    {"metrics", "kpi", "kpis", "指标"},
}

var pipelineAliases = map[string][]string{
	"title":      {"title", "name", "标题", "名称"},
	"subtitle":   {"subtitle", "副标题"},
	"owner":      {"owner", "负责人"},
	"targetdate": {"targetdate", "target", "due", "duedate", "目标日期", "计划日期", "截止日期"},
	"status":     {"status", "state", "状态"},
	"bullets":    {"bullets", "notes", "items", "要点", "事项"},
}

var (
	productSheetNames  = []string{"products", "product", "产品", "成果"}
	pipelineSheetNames = []string{"pipeline", "roadmap", "规划", "计划"}
)

// mapColumns 表头 → 字段名到列下标的映射；同名字段取第一列
func mapColumns(header []string, aliases map[string][]string) map[string]int {
	lookup := make(map[string]string)
	for field, names := range aliases {
		for _, n := range names {
			lookup[n] = field
		}
	}

	out := make(map[string]int)
	for idx, h := range header {
		field, ok := lookup[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, seen := out[field]; !seen {
			out[field] = idx
		}
	}
	return out
}

// splitList 按 ; ； 或换行拆分，丢弃空项
func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == '；' || r == '\n'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// cell 安全取值
func cell(row []string, cols map[string]int, field string) string {
	idx, ok := cols[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
