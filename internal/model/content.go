package model

// Metric 指标（标签 + 值）
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ProductData 内容条目：一个已完成的汇报项
type ProductData struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Status     string   `json:"status"`
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
	Metrics    []Metric `json:"metrics"`
}

// SlideEntry 规划（pipeline）条目：一个面向未来的事项
type SlideEntry struct {
	Title      string   `json:"title"`
	Subtitle   string   `json:"subtitle"`
	Owner      string   `json:"owner"`
	TargetDate string   `json:"targetDate"`
	Status     string   `json:"status"`
	Bullets    []string `json:"bullets"`
}

// Clone 深拷贝
func (p ProductData) Clone() ProductData {
	p.Highlights = cloneStrings(p.Highlights)
	p.Metrics = cloneMetrics(p.Metrics)
	return p
}

// Clone 深拷贝
func (e SlideEntry) Clone() SlideEntry {
	e.Bullets = cloneStrings(e.Bullets)
	return e
}

// CloneProducts 深拷贝内容列表（nil 返回空切片）
func CloneProducts(items []ProductData) []ProductData {
	out := make([]ProductData, len(items))
	for i, p := range items {
		out[i] = p.Clone()
	}
	return out
}

// ClonePipeline 深拷贝规划列表（nil 返回空切片）
func ClonePipeline(items []SlideEntry) []SlideEntry {
	out := make([]SlideEntry, len(items))
	for i, e := range items {
		out[i] = e.Clone()
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneMetrics(in []Metric) []Metric {
	if in == nil {
		return nil
	}
	out := make([]Metric, len(in))
	copy(out, in)
	return out
}
