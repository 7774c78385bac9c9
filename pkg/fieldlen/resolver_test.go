package fieldlen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidateKeys(t *testing.T) {
	tests := []struct {
		name string
		fd   FieldDescriptor
		want []string
	}{
		{
			name: "只有字段名",
			fd:   FieldDescriptor{Name: "Title"},
			want: []string{"Title"},
		},
		{
			name: "字段名、Label、表头依次排列",
			fd: FieldDescriptor{
				Name:       "Title",
				Constraint: &Constraint{Label: "标题"},
				Headers:    []string{"H1", "H2"},
			},
			want: []string{"Title", "标题", "H1", "H2"},
		},
		{
			name: "重复项只保留第一次出现",
			fd: FieldDescriptor{
				Name:       "Title",
				Constraint: &Constraint{Label: "Title"},
				Headers:    []string{"H1", "Title", "H1"},
			},
			want: []string{"Title", "H1"},
		},
		{
			name: "空白 Label 与表头被忽略",
			fd: FieldDescriptor{
				Name:       "Title",
				Constraint: &Constraint{Label: "  "},
				Headers:    []string{"", "H1"},
			},
			want: []string{"Title", "H1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CandidateKeys(tt.fd))
		})
	}
}

func TestResolveLimit(t *testing.T) {
	tests := []struct {
		name   string
		fd     FieldDescriptor
		limits Limits
		want   int
		wantOK bool
	}{
		{
			name:   "声明优先于外部配置",
			fd:     FieldDescriptor{Name: "Title", Constraint: &Constraint{MaxLength: 5}},
			limits: Limits{"Title": 10},
			want:   5,
			wantOK: true,
		},
		{
			name:   "无声明且外部配置为空",
			fd:     FieldDescriptor{Name: "Title"},
			limits: nil,
			wantOK: false,
		},
		{
			name:   "声明为 0 时使用外部配置",
			fd:     FieldDescriptor{Name: "Title", Constraint: &Constraint{MaxLength: 0, Label: "标题"}},
			limits: Limits{"标题": 8},
			want:   8,
			wantOK: true,
		},
		{
			name:   "负数声明按未声明处理",
			fd:     FieldDescriptor{Name: "Title", Constraint: &Constraint{MaxLength: -1}},
			limits: Limits{"Other": 8},
			wantOK: false,
		},
		{
			name:   "跳过 <= 0 的配置值继续尝试下一个候选",
			fd:     FieldDescriptor{Name: "Title", Headers: []string{"H1"}},
			limits: Limits{"Title": 0, "H1": 4},
			want:   4,
			wantOK: true,
		},
		{
			name:   "没有匹配的候选 key",
			fd:     FieldDescriptor{Name: "Title", Headers: []string{"H1"}},
			limits: Limits{"Other": 4},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveLimit(tt.fd, tt.limits)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveLabel(t *testing.T) {
	assert.Equal(t, "标题", ResolveLabel(FieldDescriptor{
		Name:       "Title",
		Constraint: &Constraint{Label: "标题"},
		Headers:    []string{"H1"},
	}))
	assert.Equal(t, "H1", ResolveLabel(FieldDescriptor{Name: "Title", Headers: []string{" ", "H1", "H2"}}))
	assert.Equal(t, "Title", ResolveLabel(FieldDescriptor{Name: "Title"}))

	// 通过表头命中外部配置时，命中的表头作为名称
	fd := FieldDescriptor{Name: "Title", Headers: []string{"H1", "H2"}}
	assert.Equal(t, "H2", resolveLabelFor(fd, "H2"))
	assert.Equal(t, "H1", resolveLabelFor(fd, "Title"))
	assert.Equal(t, "H1", resolveLabelFor(fd, ""))
}

func TestBuildMessage(t *testing.T) {
	t.Run("默认模板", func(t *testing.T) {
		assert.Equal(t,
			"Field [用户名] must not exceed 5 characters, current length is 6",
			BuildMessage(nil, "用户名", 5, 6))
	})

	t.Run("自定义模板", func(t *testing.T) {
		c := &Constraint{MaxLength: 5, Message: "Field: %s, Limit: %d, Actual: %d"}
		assert.Equal(t, "Field: X, Limit: 5, Actual: 6", BuildMessage(c, "X", 5, 6))
	})

	t.Run("空白模板使用默认模板", func(t *testing.T) {
		c := &Constraint{Message: " "}
		assert.Equal(t,
			"Field [X] must not exceed 5 characters, current length is 6",
			BuildMessage(c, "X", 5, 6))
	})

	t.Run("占位符不足时原样输出 fmt 结果", func(t *testing.T) {
		c := &Constraint{Message: "%s 超长"}
		assert.Equal(t, "X 超长%!(EXTRA int=5, int=6)", BuildMessage(c, "X", 5, 6))
	})
}

func TestLimits_Merge(t *testing.T) {
	base := Limits{"Title": 10, "Name": 5}
	merged := Limits{"Title": 2}.Merge(base)

	assert.Equal(t, Limits{"Title": 2, "Name": 5}, merged)
	assert.Equal(t, 10, base["Title"], "原配置不应被修改")
}
