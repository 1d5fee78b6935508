package discovery

// EventKind 事件类型
type EventKind string

const (
	// EventPublished 记录已发布（状态事件）
	EventPublished EventKind = "PUBLISHED"
	// EventWithdrawn 记录已撤销（状态事件）
	EventWithdrawn EventKind = "WITHDRAWN"
	// EventBind 引用获取了服务对象（使用事件）
	EventBind EventKind = "BIND"
	// EventRelease 引用释放了服务对象（使用事件）
	EventRelease EventKind = "RELEASE"
)

// Event 状态/使用事件
//
// 事件是临时消息，不做持久化：晚于事件启动的监听者永远看不到它。
// 同一会话内事件顺序与产生它们的操作调用顺序一致；跨会话不保证
// 全局顺序。
type Event struct {
	Kind   EventKind `json:"type" msgpack:"type"`     // 事件类型
	Record Record    `json:"record" msgpack:"record"` // 关联的记录快照
	Origin string    `json:"id" msgpack:"id"`         // 产生事件的会话标识
}
