package discovery

import (
	"fmt"
	"reflect"
	"strings"
)

// Wildcard 过滤器通配值：只要求键存在，不约束具体值
const Wildcard = "*"

// Filter 结构化过滤器
//
// 每个条目都必须与记录的对应字段或元数据条目精确匹配。
// "name"、"type"、"registration"、"status" 匹配记录字段，
// 其余键匹配 Metadata 中的同名条目。
//
// 状态过滤有特殊的默认值：过滤器不含 "status" 键时只匹配 UP 状态
// 的记录；显式给出 "status"（包括通配值 "*"）则覆盖该默认行为。
//
// nil 或空过滤器匹配所有 UP 状态的记录。
type Filter map[string]any

// Match 判断记录是否满足过滤器
func (f Filter) Match(r Record) bool {
	statusChecked := false

	for key, want := range f {
		switch key {
		case "name":
			if !matchValue(want, r.Name) {
				return false
			}
		case "type":
			if !matchValue(want, r.Type) {
				return false
			}
		case "registration":
			if !matchValue(want, r.Registration) {
				return false
			}
		case "status":
			statusChecked = true
			if want == Wildcard {
				continue
			}
			if ParseStatus(fmt.Sprint(want)) != r.Status {
				return false
			}
		default:
			got, ok := r.Metadata[key]
			if !ok {
				// 通配值也要求键存在
				return false
			}
			if want == Wildcard {
				continue
			}
			if !matchValue(want, got) {
				return false
			}
		}
	}

	if !statusChecked && r.Status != StatusUp {
		return false
	}
	return true
}

// matchValue 比较过滤值与记录值
//
// 通配值匹配任意已存在的值；其余情况先做结构相等比较，
// 再退化为字符串形式比较，方便 "8080" 匹配数字 8080 这类场景。
func matchValue(want, got any) bool {
	if want == Wildcard {
		return true
	}
	if reflect.DeepEqual(want, got) {
		return true
	}
	return fmt.Sprint(want) == fmt.Sprint(got)
}

// String 返回过滤器的可读形式，用于日志
func (f Filter) String() string {
	if len(f) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
