// Package wizard 向导导航：在固定步骤序列中移动，所有移动都钳制在合法范围内。
// 不做步骤完成度校验，用户可以自由跳转。
package wizard

import "slidecraft/internal/model"

// Navigator 当前步骤索引；非并发安全，由持有者（session）加锁
type Navigator struct {
	current int
}

// StepState 单个步骤的展示状态（用于步骤指示器）
type StepState struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	Completed bool   `json:"completed"`
}

// State 导航状态
type State struct {
	Current     int         `json:"current"`
	CurrentName string      `json:"currentName"`
	StepCount   int         `json:"stepCount"`
	CanGoBack   bool        `json:"canGoBack"`
	IsLast      bool        `json:"isLast"`
	Steps       []StepState `json:"steps"`
}

// NewNavigator 创建导航器（从第 0 步开始）
func NewNavigator() *Navigator {
	return &Navigator{}
}

// Clamp 将索引钳制到 [0, StepCount-1]
func Clamp(index int) int {
	if index < 0 {
		return 0
	}
	if index > model.StepCount-1 {
		return model.StepCount - 1
	}
	return index
}

// Index 当前步骤索引
func (n *Navigator) Index() int {
	return n.current
}

// Current 当前步骤
func (n *Navigator) Current() model.WizardStep {
	return model.WizardStep(n.current)
}

// GoTo 跳转到指定步骤（越界时钳制）
func (n *Navigator) GoTo(index int) model.WizardStep {
	n.current = Clamp(index)
	return n.Current()
}

// Next 前进一步
func (n *Navigator) Next() model.WizardStep {
	return n.GoTo(n.current + 1)
}

// Previous 后退一步
func (n *Navigator) Previous() model.WizardStep {
	return n.GoTo(n.current - 1)
}

// Reset 回到第一步
func (n *Navigator) Reset() {
	n.current = 0
}

// IsFirst 是否第一步（前端据此禁用 Previous）
func (n *Navigator) IsFirst() bool {
	return n.current == 0
}

// IsLast 是否最后一步（前端据此把 Continue 换成 "Create New Presentation"）
func (n *Navigator) IsLast() bool {
	return n.current == model.StepCount-1
}

// State 导出当前导航状态
func (n *Navigator) State() State {
	steps := make([]StepState, 0, model.StepCount)
	for _, s := range model.Steps() {
		i := int(s)
		steps = append(steps, StepState{
			Index:     i,
			Name:      s.String(),
			Active:    i == n.current,
			Completed: i < n.current,
		})
	}
	return State{
		Current:     n.current,
		CurrentName: n.Current().String(),
		StepCount:   model.StepCount,
		CanGoBack:   !n.IsFirst(),
		IsLast:      n.IsLast(),
		Steps:       steps,
	}
}
