package model

import "strings"

// ProjectSettings 项目设置：标题、报告周期与所选模板
type ProjectSettings struct {
	Month      string `json:"month"`      // 报告月份，如 "May"
	Year       string `json:"year"`       // 报告年份，如 "2025"
	Title      string `json:"title"`      // 演示文稿标题
	TemplateID string `json:"templateId"` // 模板 ID（弱引用，按 ID 解析）
}

// ProjectPatch 项目设置的部分更新，nil 字段保留原值
type ProjectPatch struct {
	Month      *string `json:"month,omitempty"`
	Year       *string `json:"year,omitempty"`
	Title      *string `json:"title,omitempty"`
	TemplateID *string `json:"templateId,omitempty"`
}

// DefaultProjectSettings 新会话的默认项目设置
func DefaultProjectSettings() ProjectSettings {
	return ProjectSettings{
		Month:      "May",
		Year:       "2025",
		Title:      "Monthly Progress Report",
		TemplateID: "corporate",
	}
}

// Apply 浅合并：仅覆盖 patch 中非 nil 的字段
func (s ProjectSettings) Apply(p ProjectPatch) ProjectSettings {
	if p.Month != nil {
		s.Month = *p.Month
	}
	if p.Year != nil {
		s.Year = *p.Year
	}
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.TemplateID != nil {
		s.TemplateID = *p.TemplateID
	}
	return s
}

// Period 报告周期文本，如 "May 2025"
func (s ProjectSettings) Period() string {
	return strings.TrimSpace(strings.TrimSpace(s.Month) + " " + strings.TrimSpace(s.Year))
}

// IsEmpty patch 是否未携带任何字段
func (p ProjectPatch) IsEmpty() bool {
	return p.Month == nil && p.Year == nil && p.Title == nil && p.TemplateID == nil
}
