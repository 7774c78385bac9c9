package fieldlen

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrFieldAccess 字段无法通过反射读取（未导出等可见性限制），属于调用方的配置错误
	ErrFieldAccess = errors.New("fieldlen: field is not readable")

	// ErrNotCollection 批量校验的入参不是切片或数组
	ErrNotCollection = errors.New("fieldlen: batch input must be a slice or array")
)

// FieldAccessError 字段读取失败的配置错误
// 与校验失败（FieldViolation）严格区分：校验失败是数据，读取失败是错误
type FieldAccessError struct {
	// Type 声明该字段的结构体类型名
	Type string
	// Field 字段名
	Field string
	// Err 底层原因
	Err error
}

func newFieldAccessError(owner reflect.Type, field string, cause error) *FieldAccessError {
	name := ""
	if owner != nil {
		name = owner.String()
	}
	return &FieldAccessError{Type: name, Field: field, Err: cause}
}

// Error 实现 error 接口
func (e *FieldAccessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fieldlen: cannot read field %s.%s for validation: %v", e.Type, e.Field, e.Err)
	}
	return fmt.Sprintf("fieldlen: cannot read field %s.%s for validation", e.Type, e.Field)
}

// Unwrap 返回底层原因
func (e *FieldAccessError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrFieldAccess) 成立
func (e *FieldAccessError) Is(target error) bool {
	return target == ErrFieldAccess
}

// FieldViolation 单个字段超长的校验结果，构造后不再修改
type FieldViolation struct {
	// Field 结构体字段名
	Field string `json:"field"`
	// Label 提示中使用的字段名称
	Label string `json:"label"`
	// Limit 允许的最大长度
	Limit int `json:"limit"`
	// Actual 实际长度
	Actual int `json:"actual"`
	// Message 渲染后的提示
	Message string `json:"message"`
}

// String 返回提示文案
func (v FieldViolation) String() string {
	return v.Message
}

// RowViolation 批量校验中带行号（从 1 开始）的字段校验结果
type RowViolation struct {
	Row int `json:"row"`
	FieldViolation
}

// String 返回 "Row <行号> <提示>"
func (v RowViolation) String() string {
	return fmt.Sprintf("Row %d %s", v.Row, v.Message)
}

// Messages 提取提示文案
func Messages(violations []FieldViolation) []string {
	if len(violations) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Message)
	}
	return out
}

// RowMessages 按 "Row <行号> <提示>" 格式渲染
func RowMessages(violations []RowViolation) []string {
	if len(violations) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.String())
	}
	return out
}

// Report 批量校验结果的汇总视图，便于直接序列化返回给调用方
type Report struct {
	Total      int            `json:"total"`
	Violations []RowViolation `json:"violations,omitempty"`
}

// NewReport 创建汇总视图
func NewReport(total int, violations []RowViolation) *Report {
	return &Report{Total: total, Violations: violations}
}

// HasViolations 是否存在超长字段
func (r *Report) HasViolations() bool {
	return r != nil && len(r.Violations) > 0
}

// Rows 返回存在超长字段的行号（去重，保持出现顺序）
func (r *Report) Rows() []int {
	if r == nil {
		return nil
	}
	var rows []int
	last := 0
	for _, v := range r.Violations {
		if v.Row != last {
			rows = append(rows, v.Row)
			last = v.Row
		}
	}
	return rows
}

// Error 汇总为单个错误文本，调用方判定为致命时可直接使用
func (r *Report) Error() string {
	if !r.HasViolations() {
		return "fieldlen: no violations"
	}
	var builder strings.Builder
	for i, v := range r.Violations {
		if i > 0 {
			builder.WriteString("; ")
		}
		builder.WriteString(v.String())
	}
	return builder.String()
}

// ToJSON 转换为 JSON 格式
func (r *Report) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}
