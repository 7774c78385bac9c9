package fieldlen

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Length 计算值的长度，nil 返回 0
// 判定顺序（命中即返回）：
//  1. 字符串：字符（rune）个数
//  2. 数值：十进制字符串形式的字符个数（含符号，无分组）
//  3. 数组：元素个数
//  4. 切片：元素个数
//  5. map：键值对个数
//  6. 其他：默认字符串形式的字符个数
//
// 浮点数使用不带指数的最短十进制形式：1.0 计为 1，1e20 计为 21 位。
// 这与 "1.0"、"1.0E20" 一类保留小数位或科学计数法的表示不同。
func Length(value any) int {
	return lengthOf(reflect.ValueOf(value), false)
}

// lengthOf 计算反射值的长度，normalize 为 true 时先做 NFC 规范化再计数
func lengthOf(v reflect.Value, normalize bool) int {
	v, ok := indirectValue(v)
	if !ok {
		return 0
	}

	if v.CanInterface() {
		switch x := v.Interface().(type) {
		case strings.Builder:
			return countChars(x.String(), normalize)
		case bytes.Buffer:
			return countChars(x.String(), normalize)
		case big.Int:
			return len(x.String())
		case big.Float:
			return len(x.Text('f', -1))
		case big.Rat:
			return len(x.RatString())
		}
	}

	switch v.Kind() {
	case reflect.String:
		return countChars(v.String(), normalize)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return len(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return len(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32:
		return len(strconv.FormatFloat(v.Float(), 'f', -1, 32))
	case reflect.Float64:
		return len(strconv.FormatFloat(v.Float(), 'f', -1, 64))
	case reflect.Complex64:
		return len(strconv.FormatComplex(v.Complex(), 'f', -1, 64))
	case reflect.Complex128:
		return len(strconv.FormatComplex(v.Complex(), 'f', -1, 128))
	case reflect.Array, reflect.Slice, reflect.Map:
		return v.Len()
	}

	if v.CanInterface() {
		return countChars(fmt.Sprint(v.Interface()), normalize)
	}
	return countChars(fmt.Sprint(v), normalize)
}

// isAbsent 值是否缺失（nil 指针、nil 接口、nil 切片、nil map）
func isAbsent(v reflect.Value) bool {
	_, ok := indirectValue(v)
	return !ok
}

// indirectValue 与 indirect 相同，额外把 nil 切片与 nil map 视为缺失
func indirectValue(v reflect.Value) (reflect.Value, bool) {
	v, ok := indirect(v)
	if !ok {
		return v, false
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		if v.IsNil() {
			return reflect.Value{}, false
		}
	}
	return v, true
}

func countChars(s string, normalize bool) int {
	if normalize && !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	return utf8.RuneCountInString(s)
}
