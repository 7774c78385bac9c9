package fieldlen

import (
	"errors"
	"reflect"
	"sync"
)

const (
	// maxEmbedDepth 最大嵌入层级，防止异常类型导致无限展开
	maxEmbedDepth = 100
)

var (
	errUnexported   = errors.New("unexported field")
	errTypeMismatch = errors.New("record does not match field descriptor")

	constraintProviderType = reflect.TypeOf((*ConstraintProvider)(nil)).Elem()
	headerProviderType     = reflect.TypeOf((*HeaderProvider)(nil)).Elem()
)


// FieldDescriptor 待校验字段的描述信息
type FieldDescriptor struct {
	// Name 结构体字段名
	Name string
	// Index 从记录类型出发的字段索引路径（经过嵌入结构体）
	Index []int
	// Depth 嵌入层级，0 表示记录类型自身声明的字段
	Depth int
	// Owner 声明该字段的结构体类型
	Owner reflect.Type
	// Type 字段类型
	Type reflect.Type
	// Exported 字段是否导出
	Exported bool
	// Constraint 声明的长度约束，可能为 nil
	Constraint *Constraint
	// Headers Excel 表头别名
	Headers []string
}

// FieldAccessor 字段访问能力抽象
//   - Fields：列出类型（含所有嵌入层级）的全部实例字段
//   - Value：读取记录上某个字段的当前值，返回无效的 reflect.Value 表示值缺失
type FieldAccessor interface {
	Fields(t reflect.Type) []FieldDescriptor
	Value(record reflect.Value, fd FieldDescriptor) (reflect.Value, error)
}

// ReflectAccessor 基于反射的字段访问器，按类型缓存字段描述，零值可用
type ReflectAccessor struct {
	// ReadUnexported 允许读取未导出字段，默认读取未导出字段返回 *FieldAccessError
	ReadUnexported bool

	// cache key: reflect.Type, value: []FieldDescriptor
	cache sync.Map
}

// NewReflectAccessor 创建反射字段访问器
func NewReflectAccessor() *ReflectAccessor {
	return &ReflectAccessor{}
}

// Fields 实现 FieldAccessor 接口
// 顺序：记录类型自身的字段（声明顺序），然后按广度优先逐层展开嵌入的结构体。
// 嵌入结构体本身不作为字段；不同层级的同名字段全部保留。
func (a *ReflectAccessor) Fields(t reflect.Type) []FieldDescriptor {
	if t == nil {
		return nil
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	if cached, ok := a.cache.Load(t); ok {
		return cached.([]FieldDescriptor)
	}

	actual, _ := a.cache.LoadOrStore(t, enumerateFields(t))
	return actual.([]FieldDescriptor)
}

// Value 实现 FieldAccessor 接口
func (a *ReflectAccessor) Value(record reflect.Value, fd FieldDescriptor) (reflect.Value, error) {
	v, ok := indirect(record)
	if !ok {
		return reflect.Value{}, nil
	}

	for _, idx := range fd.Index {
		// 嵌入的指针为 nil 时，该层级的字段都视为缺失
		if v, ok = indirect(v); !ok {
			return reflect.Value{}, nil
		}
		if v.Kind() != reflect.Struct || idx >= v.NumField() {
			return reflect.Value{}, newFieldAccessError(fd.Owner, fd.Name, errTypeMismatch)
		}
		v = v.Field(idx)
	}

	// 未导出字段的值只能通过 Kind 相关方法读取，不能 Interface()
	if !a.ReadUnexported && (!fd.Exported || !v.CanInterface()) {
		return reflect.Value{}, newFieldAccessError(fd.Owner, fd.Name, errUnexported)
	}
	return v, nil
}

// ClearCache 清空字段描述缓存
func (a *ReflectAccessor) ClearCache() {
	a.cache.Range(func(key, _ any) bool {
		a.cache.Delete(key)
		return true
	})
}

// CacheStats 返回已缓存的类型数量
func (a *ReflectAccessor) CacheStats() int {
	count := 0
	a.cache.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// level 待展开的一个类型层级
type level struct {
	typ   reflect.Type
	index []int
	depth int
	// path 从记录类型到当前层级经过的类型，用于切断指针嵌入形成的环
	path []reflect.Type
}

func enumerateFields(root reflect.Type) []FieldDescriptor {
	var fields []FieldDescriptor
	queue := []level{{typ: root, path: []reflect.Type{root}}}

	for len(queue) > 0 {
		lv := queue[0]
		queue = queue[1:]

		constraints, headers := typeMetadata(lv.typ)
		var embedded []level
		for i := 0; i < lv.typ.NumField(); i++ {
			sf := lv.typ.Field(i)
			if sf.Name == "_" {
				continue
			}
			index := make([]int, len(lv.index)+1)
			copy(index, lv.index)
			index[len(lv.index)] = i

			if sf.Anonymous {
				if et, ok := embeddedStruct(sf.Type); ok {
					if lv.depth+1 > maxEmbedDepth || onPath(lv.path, et) {
						continue
					}
					path := make([]reflect.Type, len(lv.path)+1)
					copy(path, lv.path)
					path[len(lv.path)] = et
					embedded = append(embedded, level{typ: et, index: index, depth: lv.depth + 1, path: path})
					continue
				}
			}

			fd := FieldDescriptor{
				Name:     sf.Name,
				Index:    index,
				Depth:    lv.depth,
				Owner:    lv.typ,
				Type:     sf.Type,
				Exported: sf.IsExported(),
			}
			if c, ok := constraints[sf.Name]; ok {
				c := c
				fd.Constraint = &c
			} else {
				fd.Constraint = parseTagConstraint(sf.Tag.Lookup)
			}
			if h, ok := headers[sf.Name]; ok {
				fd.Headers = nonBlank(h)
			} else {
				fd.Headers = parseHeaders(sf.Tag.Get(TagHeaders))
			}
			fields = append(fields, fd)
		}
		queue = append(queue, embedded...)
	}
	return fields
}

// typeMetadata 读取类型通过接口声明的约束与表头
// 只采用类型自身声明的方法：从嵌入字段提升上来的方法与嵌入类型返回相同的表，
// 此时表属于嵌入层级，在展开该层级时再生效。
func typeMetadata(t reflect.Type) (map[string]Constraint, map[string][]string) {
	ptr := reflect.PointerTo(t)
	if !ptr.Implements(constraintProviderType) && !ptr.Implements(headerProviderType) {
		return nil, nil
	}

	constraints, headers, ok := providedTables(t)
	if !ok {
		return nil, nil
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.Anonymous {
			continue
		}
		et := sf.Type
		if et.Kind() == reflect.Ptr {
			et = et.Elem()
		}
		if et.Kind() == reflect.Interface {
			continue
		}
		ec, eh, ok := providedTables(et)
		if !ok {
			continue
		}
		if constraints != nil && reflect.DeepEqual(constraints, ec) {
			constraints = nil
		}
		if headers != nil && reflect.DeepEqual(headers, eh) {
			headers = nil
		}
	}
	return constraints, headers
}

// providedTables 在类型的零值上调用约束与表头接口
// 提升方法经过 nil 嵌入指针或 nil 嵌入接口时会 panic，此时视为未提供。
func providedTables(t reflect.Type) (constraints map[string]Constraint, headers map[string][]string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			constraints, headers, ok = nil, nil, false
		}
	}()

	zero := reflect.New(t).Interface()
	if p, is := zero.(ConstraintProvider); is {
		constraints = p.FieldLengthConstraints()
	}
	if p, is := zero.(HeaderProvider); is {
		headers = p.ExcelHeaders()
	}
	return constraints, headers, true
}

func embeddedStruct(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t, t.Kind() == reflect.Struct
}

func onPath(path []reflect.Type, t reflect.Type) bool {
	for _, p := range path {
		if p == t {
			return true
		}
	}
	return false
}

// indirect 解开指针与接口，遇到 nil 时返回 false
func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

// applyShadowPolicy 按策略处理不同层级的同名字段
func applyShadowPolicy(fields []FieldDescriptor, policy ShadowPolicy) []FieldDescriptor {
	if policy != ShadowOuterWins {
		return fields
	}
	seen := make(map[string]int, len(fields))
	out := make([]FieldDescriptor, 0, len(fields))
	for _, fd := range fields {
		if depth, ok := seen[fd.Name]; ok && depth < fd.Depth {
			continue
		}
		if _, ok := seen[fd.Name]; !ok {
			seen[fd.Name] = fd.Depth
		}
		out = append(out, fd)
	}
	return out
}
