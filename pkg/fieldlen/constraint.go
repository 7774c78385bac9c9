package fieldlen

import (
	"strconv"
	"strings"
)

// 字段元数据使用的 struct tag 名称
const (
	// TagMaxLength 最大长度，如 `maxlen:"64"`
	TagMaxLength = "maxlen"
	// TagLabel 提示中使用的字段名称，如 `label:"用户名"`
	TagLabel = "label"
	// TagMessage 自定义提示模板，按顺序接收 label、limit、actual 三个参数
	TagMessage = "lenmsg"
	// TagHeaders Excel 表头别名，多个表头用逗号分隔，如 `excel:"名称,标题"`
	TagHeaders = "excel"
)

// Constraint 单个字段的长度约束
// 在类型定义时声明，校验期间只读
type Constraint struct {
	// MaxLength 允许的最大长度，<= 0 表示此处未声明
	MaxLength int
	// Label 字段的人类可读名称，为空时取表头别名或字段名
	Label string
	// Message 自定义提示模板，为空时使用默认模板
	Message string
}

// Active 约束是否声明了有效的最大长度
func (c *Constraint) Active() bool {
	return c != nil && c.MaxLength > 0
}

// ConstraintProvider 约束提供者接口 - 由记录类型以显式表格声明字段约束
// 优先级高于 struct tag，key 为结构体字段名
//
// 示例：
//
//	func (UserRow) FieldLengthConstraints() map[string]fieldlen.Constraint {
//	    return map[string]fieldlen.Constraint{
//	        "Name": {MaxLength: 32, Label: "用户名"},
//	    }
//	}
//
// 方法会在该类型的零值上调用一次，结果随类型信息缓存
type ConstraintProvider interface {
	FieldLengthConstraints() map[string]Constraint
}

// HeaderProvider 表头别名提供者接口，优先级高于 excel tag
type HeaderProvider interface {
	ExcelHeaders() map[string][]string
}

// parseTagConstraint 从 struct tag 解析约束，三个 tag 均未出现时返回 nil
func parseTagConstraint(get func(string) (string, bool)) *Constraint {
	rawMax, hasMax := get(TagMaxLength)
	label, hasLabel := get(TagLabel)
	message, hasMessage := get(TagMessage)
	if !hasMax && !hasLabel && !hasMessage {
		return nil
	}

	c := &Constraint{Label: label, Message: message}
	if hasMax {
		// 无法解析的值按未声明处理
		if n, err := strconv.Atoi(strings.TrimSpace(rawMax)); err == nil {
			c.MaxLength = n
		}
	}
	return c
}

// parseHeaders 解析逗号分隔的表头，去掉首尾空白并丢弃空白项
func parseHeaders(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	headers := make([]string, 0, len(parts))
	for _, p := range parts {
		if isBlank(p) {
			continue
		}
		headers = append(headers, strings.TrimSpace(p))
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// nonBlank 过滤空白项
func nonBlank(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !isBlank(v) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
