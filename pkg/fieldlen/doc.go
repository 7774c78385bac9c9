// Package fieldlen 导入记录的字段长度校验
//
// 对任意结构体记录（或记录切片）逐字段确定最大长度，计算实际长度，
// 以数据形式返回所有超长字段。校验器只产出结果，是否视为致命由调用方决定。
//
// 最大长度来源（优先级从高到低）：
//   - ConstraintProvider 接口声明的约束表
//   - struct tag：`maxlen:"32" label:"用户名" lenmsg:"%s 超长：%d/%d"`
//   - 调用时传入的外部配置 Limits，key 依次尝试字段名、Label、Excel 表头（`excel:"名称,标题"`）
//
// 长度计算规则见 Length；字段枚举包含所有嵌入的结构体，顺序为外层到内层。
//
// 使用示例：
//
//	type UserRow struct {
//	    Name  string `maxlen:"32" label:"用户名"`
//	    Title string `excel:"标题"`
//	}
//
//	rows, err := fieldlen.ValidateBatch(users, fieldlen.Limits{"标题": 64})
//	if err != nil {
//	    // 字段不可读等配置错误
//	}
//	for _, row := range rows {
//	    fmt.Println(row) // Row 2 Field [用户名] must not exceed 32 characters, current length is 40
//	}
package fieldlen
