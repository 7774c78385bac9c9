package fieldlen

import "fmt"

// DefaultMessageTemplate 默认提示模板，依次接收 label、limit、actual
const DefaultMessageTemplate = "Field [%s] must not exceed %d characters, current length is %d"

// Limits 外部长度限制配置
// key 支持字段名、约束中声明的 Label 以及 Excel 表头，value 为最大长度
type Limits map[string]int

// Merge 合并配置并返回新 map，已有的 key 优先
func (l Limits) Merge(other Limits) Limits {
	out := make(Limits, len(l)+len(other))
	for k, v := range other {
		out[k] = v
	}
	for k, v := range l {
		out[k] = v
	}
	return out
}

// ResolveLimit 解析字段的最大长度
//  1. 约束声明了有效最大长度时直接返回，声明优先于外部配置
//  2. 外部配置为空时返回 false
//  3. 按候选 key 顺序查找外部配置，返回第一个 > 0 的值
func ResolveLimit(fd FieldDescriptor, limits Limits) (int, bool) {
	limit, _, ok := resolveLimitKey(fd, limits)
	return limit, ok
}

// resolveLimitKey 同 ResolveLimit，额外返回命中的外部配置 key（来自约束时为空）
func resolveLimitKey(fd FieldDescriptor, limits Limits) (int, string, bool) {
	if fd.Constraint.Active() {
		return fd.Constraint.MaxLength, "", true
	}
	if len(limits) == 0 {
		return 0, "", false
	}
	for _, key := range CandidateKeys(fd) {
		if n, ok := limits[key]; ok && n > 0 {
			return n, key, true
		}
	}
	return 0, "", false
}

// CandidateKeys 构建字段在外部配置中的候选 key，按优先级排列且去重：
// 字段名、约束 Label、各个 Excel 表头
func CandidateKeys(fd FieldDescriptor) []string {
	keys := make([]string, 0, 2+len(fd.Headers))
	seen := make(map[string]struct{}, cap(keys))
	add := func(key string) {
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	add(fd.Name)
	if fd.Constraint != nil && !isBlank(fd.Constraint.Label) {
		add(fd.Constraint.Label)
	}
	for _, header := range fd.Headers {
		if !isBlank(header) {
			add(header)
		}
	}
	return keys
}

// ResolveLabel 解析提示中使用的字段名称：约束 Label > 第一个 Excel 表头 > 字段名
// 与最大长度来自约束还是外部配置无关
func ResolveLabel(fd FieldDescriptor) string {
	if fd.Constraint != nil && !isBlank(fd.Constraint.Label) {
		return fd.Constraint.Label
	}
	for _, header := range fd.Headers {
		if !isBlank(header) {
			return header
		}
	}
	return fd.Name
}

// resolveLabelFor 在 ResolveLabel 的基础上，若外部配置通过某个 Excel 表头命中，
// 且约束未声明 Label，则使用命中的表头作为名称
func resolveLabelFor(fd FieldDescriptor, matchedKey string) string {
	if fd.Constraint != nil && !isBlank(fd.Constraint.Label) {
		return fd.Constraint.Label
	}
	if matchedKey != "" && matchedKey != fd.Name {
		for _, header := range fd.Headers {
			if header == matchedKey {
				return header
			}
		}
	}
	return ResolveLabel(fd)
}

// BuildMessage 渲染提示
// 约束声明了模板时按 label、limit、actual 的顺序格式化并原样返回，
// 占位符数量不匹配由调用方负责，结果即 fmt 的输出
func BuildMessage(c *Constraint, label string, limit, actual int) string {
	if c != nil && !isBlank(c.Message) {
		return fmt.Sprintf(c.Message, label, limit, actual)
	}
	return fmt.Sprintf(DefaultMessageTemplate, label, limit, actual)
}
