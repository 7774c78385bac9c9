// Package gormsize 从 gorm 模型的列定义推导字段长度限制
//
// 导入记录通常与数据库字段长度保持一致，可以直接复用模型上的 `gorm:"size:64"`，
// 无需连接数据库：
//
//	limits, err := gormsize.Limits(&model.User{})
//	rows, err := fieldlen.ValidateBatch(importRows, limits)
package gormsize

import (
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm/schema"

	"katydid-common-excel/pkg/fieldlen"
)

var (
	// ErrUnsupportedModel 无法解析的模型
	ErrUnsupportedModel = errors.New("gormsize: unsupported model")

	// schemaCache 默认命名策略下的解析缓存
	// gorm 只按模型类型缓存，自定义 Namer 不能共用
	schemaCache = &sync.Map{}
)

// Options 推导选项
type Options struct {
	// Namer 列名命名策略，默认 schema.NamingStrategy{}
	Namer schema.Namer
	// IncludeColumns 是否同时以列名作为 key
	IncludeColumns bool
}

// Limits 使用默认选项推导，key 为 Go 字段名与列名
func Limits(model any) (fieldlen.Limits, error) {
	return LimitsWith(model, Options{IncludeColumns: true})
}

// LimitsWith 按选项推导，只收录声明了 size 的字符串列
func LimitsWith(model any, opts Options) (fieldlen.Limits, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: model is nil", ErrUnsupportedModel)
	}
	namer, cache := opts.Namer, schemaCache
	if namer == nil {
		namer = schema.NamingStrategy{}
	} else {
		cache = &sync.Map{}
	}

	s, err := schema.Parse(model, cache, namer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedModel, err)
	}

	limits := make(fieldlen.Limits, len(s.Fields))
	for _, field := range s.Fields {
		if field.Size <= 0 || field.DataType != schema.String {
			continue
		}
		limits[field.Name] = field.Size
		if opts.IncludeColumns && field.DBName != "" {
			if _, ok := limits[field.DBName]; !ok {
				limits[field.DBName] = field.Size
			}
		}
	}
	return limits, nil
}
