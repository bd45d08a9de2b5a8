package model

// SlideKind 幻灯片类型
type SlideKind string

const (
	SlideTitle    SlideKind = "title"    // 封面
	SlideProduct  SlideKind = "product"  // 内容条目
	SlidePipeline SlideKind = "pipeline" // 规划条目
)

// Slide 与格式无关的幻灯片描述
type Slide struct {
	Index      int       `json:"index"`
	Kind       SlideKind `json:"kind"`
	Heading    string    `json:"heading"`
	Subheading string    `json:"subheading,omitempty"`
	Status     string    `json:"status,omitempty"`
	Body       []string  `json:"body,omitempty"`
	Metrics    []Metric  `json:"metrics,omitempty"`
	Footer     string    `json:"footer,omitempty"`
}

// AssembledDocument 组装后的文档（派生数据，不缓存、不持久化）
type AssembledDocument struct {
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle"`
	Template TemplateStyle `json:"template"`
	Slides   []Slide       `json:"slides"`
}

// CountKind 统计某类幻灯片数量
func (d *AssembledDocument) CountKind(kind SlideKind) int {
	n := 0
	for _, s := range d.Slides {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

// SessionSnapshot 会话状态快照（深拷贝），导出与持久化的基本单位
type SessionSnapshot struct {
	Settings     ProjectSettings `json:"settings"`
	Products     []ProductData   `json:"products"`
	Pipeline     []SlideEntry    `json:"pipeline"`
	ShowPipeline bool            `json:"showPipeline"`
	Step         int             `json:"step"`
}

// Clone 深拷贝
func (s SessionSnapshot) Clone() SessionSnapshot {
	s.Products = CloneProducts(s.Products)
	s.Pipeline = ClonePipeline(s.Pipeline)
	return s
}
