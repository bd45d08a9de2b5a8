package assembler

import (
	"errors"
	"fmt"
)

// ErrMissingTitle 项目标题为空
var ErrMissingTitle = errors.New("project title is required")

// AssemblyError 组装失败（校验错误）：阻止导出，不修改任何状态
type AssemblyError struct {
	Field string
	Err   error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assemble document: %s: %v", e.Field, e.Err)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}

// IsValidation 判断是否为组装阶段的校验错误
func IsValidation(err error) bool {
	var ae *AssemblyError
	return errors.As(err, &ae)
}
