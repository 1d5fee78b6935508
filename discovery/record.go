package discovery

import "strings"

// Status 记录状态
type Status string

const (
	// StatusUnknown 初始状态，尚未发布
	StatusUnknown Status = "UNKNOWN"
	// StatusUp 服务可用
	StatusUp Status = "UP"
	// StatusDown 服务不可用
	StatusDown Status = "DOWN"
	// StatusOutOfService 服务暂停对外提供
	StatusOutOfService Status = "OUT_OF_SERVICE"
)

// ParseStatus 将字符串解析为 Status（大小写不敏感）
//
// 无法识别的值返回 StatusUnknown。
func ParseStatus(s string) Status {
	switch strings.ToUpper(s) {
	case "UP":
		return StatusUp
	case "DOWN":
		return StatusDown
	case "OUT_OF_SERVICE":
		return StatusOutOfService
	default:
		return StatusUnknown
	}
}

// Record 描述一个可发现的资源
//
// Record 是发布方与消费方之间唯一共享的对象。Location 的结构由
// Type 决定，Metadata 则完全自由。Registration 由存储在首次发布时
// 分配，此后不可变更。
//
// Record 按"读时复制"处理：所有跨越组件边界的 Record 都是独立副本，
// 调用方的修改不会影响存储中的数据。
type Record struct {
	Registration string         `json:"registration" msgpack:"registration"` // 存储分配的唯一标识
	Name         string         `json:"name" msgpack:"name"`                 // 服务名称（不要求唯一）
	Type         string         `json:"type" msgpack:"type"`                 // 服务类型标签
	Status       Status         `json:"status" msgpack:"status"`             // 当前状态
	Location     map[string]any `json:"location" msgpack:"location"`         // 位置信息，结构由 Type 定义
	Metadata     map[string]any `json:"metadata" msgpack:"metadata"`         // 任意元数据
}

// NewRecord 创建一条未发布的记录
//
// 状态初始为 UNKNOWN，成功发布后由 Publish 置为 UP。
func NewRecord(name, typeTag string, location, metadata map[string]any) Record {
	return Record{
		Name:     name,
		Type:     typeTag,
		Status:   StatusUnknown,
		Location: location,
		Metadata: metadata,
	}
}

// Clone 返回记录的深拷贝
func (r Record) Clone() Record {
	c := r
	c.Location = deepCopyMap(r.Location)
	c.Metadata = deepCopyMap(r.Metadata)
	return c
}

// deepCopyMap 递归拷贝 map[string]any，兼容嵌套 map 与切片
func deepCopyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = deepCopyValue(v)
	}
	return dst
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}
