package session

import "time"

// Summary 会话概要（用于会话列表）
type Summary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Title         string    `json:"title"`
	TemplateID    string    `json:"templateId"`
	Step          int       `json:"step"`
	StepName      string    `json:"stepName"`
	ProductCount  int       `json:"productCount"`
	PipelineCount int       `json:"pipelineCount"`
	ShowPipeline  bool      `json:"showPipeline"`
	Exporting     bool      `json:"exporting"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ImportMode 批量导入方式
type ImportMode string

const (
	ImportAppend  ImportMode = "append"  // 追加到现有条目之后
	ImportReplace ImportMode = "replace" // 替换现有条目
)
