package fieldlen

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// ShadowPolicy 嵌入层级中同名字段的处理策略
type ShadowPolicy int

const (
	// ShadowVisitAll 所有层级的同名字段都会被校验（默认）
	ShadowVisitAll ShadowPolicy = iota
	// ShadowOuterWins 只校验最外层（层级最浅）的同名字段
	ShadowOuterWins
)

// String 返回策略名称
func (p ShadowPolicy) String() string {
	switch p {
	case ShadowOuterWins:
		return "outer"
	default:
		return "all"
	}
}

// ParseShadowPolicy 按名称解析策略，未知名称返回 false
func ParseShadowPolicy(name string) (ShadowPolicy, bool) {
	switch name {
	case "", "all":
		return ShadowVisitAll, true
	case "outer":
		return ShadowOuterWins, true
	default:
		return ShadowVisitAll, false
	}
}

// Validator 字段长度校验器
// 无可变共享状态（字段描述缓存除外，使用 sync.Map），可在多个 goroutine 中并发使用
type Validator struct {
	accessor  FieldAccessor
	logger    *zap.Logger
	policy    ShadowPolicy
	normalize bool
	// base 基础外部配置，调用时传入的配置优先
	base Limits
}

// Option 校验器配置项
type Option func(*Validator)

// WithLogger 设置日志记录器，nil 时忽略
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithShadowPolicy 设置同名字段策略
func WithShadowPolicy(policy ShadowPolicy) Option {
	return func(v *Validator) {
		v.policy = policy
	}
}

// WithNormalization 计算字符串长度前是否先做 Unicode NFC 规范化
func WithNormalization(enabled bool) Option {
	return func(v *Validator) {
		v.normalize = enabled
	}
}

// WithAccessor 替换字段访问器，nil 时忽略
func WithAccessor(accessor FieldAccessor) Option {
	return func(v *Validator) {
		if accessor != nil {
			v.accessor = accessor
		}
	}
}

// WithUnexportedFields 使用可读取未导出字段的反射访问器
// 未开启时，命中长度限制的未导出字段会中止校验并返回 *FieldAccessError。
func WithUnexportedFields(enabled bool) Option {
	return func(v *Validator) {
		v.accessor = &ReflectAccessor{ReadUnexported: enabled}
	}
}

// WithLimits 设置基础外部配置
func WithLimits(limits Limits) Option {
	return func(v *Validator) {
		v.base = limits.Merge(nil)
	}
}

var (
	// defaultValidator 默认校验器实例，全局单例
	defaultValidator *Validator
	once             sync.Once
)

// Default 获取默认校验器实例
func Default() *Validator {
	once.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

// New 创建校验器
func New(opts ...Option) *Validator {
	v := &Validator{
		accessor: NewReflectAccessor(),
		logger:   zap.NewNop(),
		policy:   ShadowVisitAll,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateRecord 使用默认校验器校验单个记录
func ValidateRecord(record any, limits Limits) ([]FieldViolation, error) {
	return Default().ValidateRecord(record, limits)
}

// Validate 使用默认校验器校验单个记录，只返回提示文案
func Validate(record any, limits Limits) ([]string, error) {
	return Default().Validate(record, limits)
}

// ValidateBatch 使用默认校验器批量校验
func ValidateBatch(records any, limits Limits) ([]RowViolation, error) {
	return Default().ValidateBatch(records, limits)
}

// ValidateBatchMessages 使用默认校验器批量校验，返回 "Row <行号> <提示>" 列表
func ValidateBatchMessages(records any, limits Limits) ([]string, error) {
	return Default().ValidateBatchMessages(records, limits)
}

// ClearTypeCache 清除默认校验器的字段描述缓存
func ClearTypeCache() {
	Default().ClearTypeCache()
}

// ClearTypeCache 清除字段描述缓存，访问器不支持缓存时无操作
func (v *Validator) ClearTypeCache() {
	if c, ok := v.accessor.(interface{ ClearCache() }); ok {
		c.ClearCache()
	}
}

// Validate 校验单个记录，只返回提示文案
func (v *Validator) Validate(record any, limits Limits) ([]string, error) {
	violations, err := v.ValidateRecord(record, limits)
	if err != nil {
		return nil, err
	}
	return Messages(violations), nil
}

// ValidateRecord 校验单个记录的字段长度
//
// 流程（逐字段，按字段枚举顺序）：
//  1. 解析最大长度，无法解析或 <= 0 时跳过
//  2. 读取字段当前值，值缺失时跳过
//  3. 计算实际长度，未超过最大长度时跳过
//  4. 解析字段名称并渲染提示
//
// record 为 nil、nil 指针或非结构体时返回空结果。
// 字段无法读取时返回 *FieldAccessError（errors.Is(err, ErrFieldAccess)）。
func (v *Validator) ValidateRecord(record any, limits Limits) ([]FieldViolation, error) {
	return v.validateRecord(record, v.limits(limits))
}

func (v *Validator) validateRecord(record any, config Limits) ([]FieldViolation, error) {
	rv, ok := indirect(reflect.ValueOf(record))
	if !ok || rv.Kind() != reflect.Struct {
		return []FieldViolation{}, nil
	}

	fields := applyShadowPolicy(v.accessor.Fields(rv.Type()), v.policy)
	violations := make([]FieldViolation, 0)

	for _, fd := range fields {
		limit, matchedKey, ok := resolveLimitKey(fd, config)
		if !ok || limit <= 0 {
			continue
		}

		value, err := v.accessor.Value(rv, fd)
		if err != nil {
			v.logger.Warn("field length validation aborted",
				zap.String("type", rv.Type().String()),
				zap.String("field", fd.Name),
				zap.Error(err),
			)
			return nil, err
		}
		if isAbsent(value) {
			continue
		}

		actual := lengthOf(value, v.normalize)
		if actual <= limit {
			continue
		}

		label := resolveLabelFor(fd, matchedKey)
		violation := FieldViolation{
			Field:   fd.Name,
			Label:   label,
			Limit:   limit,
			Actual:  actual,
			Message: BuildMessage(fd.Constraint, label, limit, actual),
		}
		v.logger.Debug("field length exceeded",
			zap.String("field", fd.Name),
			zap.String("label", label),
			zap.Int("limit", limit),
			zap.Int("actual", actual),
		)
		violations = append(violations, violation)
	}
	return violations, nil
}

// ValidateBatch 批量校验切片或数组中的每一个记录
// 行号从 1 开始，与输入顺序一致；收集全部记录的全部问题后返回。
// records 为 nil 或空时返回空结果；非切片/数组返回 ErrNotCollection。
// 任一记录出现字段读取错误时立即返回，错误中包含行号。
func (v *Validator) ValidateBatch(records any, limits Limits) ([]RowViolation, error) {
	rows := make([]RowViolation, 0)
	if records == nil {
		return rows, nil
	}

	rv := reflect.ValueOf(records)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Kind() == reflect.Array {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNotCollection, records)
	}

	config := v.limits(limits)
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i)
		var record any
		if item.CanInterface() {
			record = item.Interface()
		}
		violations, err := v.validateRecord(record, config)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		for _, fv := range violations {
			rows = append(rows, RowViolation{Row: i + 1, FieldViolation: fv})
		}
	}
	return rows, nil
}

// ValidateBatchMessages 批量校验，返回 "Row <行号> <提示>" 列表
func (v *Validator) ValidateBatchMessages(records any, limits Limits) ([]string, error) {
	rows, err := v.ValidateBatch(records, limits)
	if err != nil {
		return nil, err
	}
	return RowMessages(rows), nil
}

// ValidateReport 批量校验并返回汇总视图
func (v *Validator) ValidateReport(records any, limits Limits) (*Report, error) {
	rows, err := v.ValidateBatch(records, limits)
	if err != nil {
		return nil, err
	}
	total := 0
	if rv := reflect.ValueOf(records); rv.IsValid() {
		if rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		total = rv.Len()
	}
	return NewReport(total, rows), nil
}

// limits 合并基础配置与调用时传入的配置，未设置基础配置时直接使用传入值
func (v *Validator) limits(limits Limits) Limits {
	if len(v.base) == 0 {
		return limits
	}
	if len(limits) == 0 {
		return v.base
	}
	return limits.Merge(v.base)
}
