package model

// TemplateStyle 模板样式（纯视觉定义，只读）
type TemplateStyle struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Primary   string `json:"primary"`   // 主色，#RRGGBB
	Secondary string `json:"secondary"` // 辅色
	Accent    string `json:"accent"`    // 强调色
	Gradient  string `json:"gradient"`  // CSS 渐变（仅供前端展示）
	BgPattern string `json:"bgPattern"` // 背景图案标签
}
