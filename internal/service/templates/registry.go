package templates

import (
	"errors"
	"fmt"
	"strings"

	"slidecraft/internal/model"
)

// Registry 模板注册表：进程生命周期内不可变
type Registry struct {
	items []model.TemplateStyle
	byID  map[string]int
}

// NewRegistry 创建注册表；列表为空或 ID 重复时返回错误
func NewRegistry(items []model.TemplateStyle) (*Registry, error) {
	if len(items) == 0 {
		return nil, errors.New("template registry requires at least one template")
	}

	r := &Registry{
		items: make([]model.TemplateStyle, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for i, t := range items {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			return nil, fmt.Errorf("template #%d has empty id", i)
		}
		if _, dup := r.byID[id]; dup {
			return nil, fmt.Errorf("duplicate template id: %s", id)
		}
		t.ID = id
		r.items[i] = t
		r.byID[id] = i
	}
	return r, nil
}

// Default 内置模板注册表
func Default() *Registry {
	r, err := NewRegistry(seed)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve 按 ID 解析模板；未命中时回退到第一个模板
func (r *Registry) Resolve(id string) model.TemplateStyle {
	if t, ok := r.Lookup(id); ok {
		return t
	}
	return r.items[0]
}

// Lookup 按 ID 精确查找
func (r *Registry) Lookup(id string) (model.TemplateStyle, bool) {
	i, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return model.TemplateStyle{}, false
	}
	return r.items[i], true
}

// List 按注册顺序返回全部模板（副本）
func (r *Registry) List() []model.TemplateStyle {
	out := make([]model.TemplateStyle, len(r.items))
	copy(out, r.items)
	return out
}

// Len 模板数量
func (r *Registry) Len() int {
	return len(r.items)
}
