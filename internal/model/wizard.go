package model

// WizardStep 向导步骤（固定顺序）
type WizardStep int

const (
	StepTemplate WizardStep = iota // 选择模板
	StepSetup                      // 项目设置
	StepContent                    // 内容编辑
	StepPreview                    // 预览
	StepExport                     // 导出

	StepCount = 5
)

var stepNames = [StepCount]string{"Template", "Setup", "Content", "Preview", "Export"}

// String 步骤名称
func (s WizardStep) String() string {
	if s < 0 || int(s) >= StepCount {
		return "Unknown"
	}
	return stepNames[s]
}

// Steps 全部步骤（按顺序）
func Steps() []WizardStep {
	out := make([]WizardStep, StepCount)
	for i := range out {
		out[i] = WizardStep(i)
	}
	return out
}
