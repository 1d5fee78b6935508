// Package discovery 提供运行时服务发现组件。
//
// discovery 是 Beacon 的服务注册与发现核心：服务提供方把描述自身的
// Record 发布到共享存储，消费方按条件查询记录并通过 Reference 获取
// 可用的服务对象。记录存储、服务类型、事件广播三者全部可插拔：
//   - 存储后端：内置进程内实现，backend 包提供 Etcd/Redis 实现；
//   - 服务类型：svctype 包内置 HTTP/gRPC/NATS/Redis 四种，实现 Type
//     接口即可扩展；
//   - 事件广播：基于 eventbus 组件，local 驱动进程内分发，nats 驱动
//     跨节点分发。
//
// 基本使用：
//
//	disc, _ := discovery.New(nil)
//	defer disc.Close(ctx)
//
//	record, _ := disc.Publish(ctx, svctype.HTTPRecord("users", "api.local", 8080, "/", nil))
//
//	ref, _ := disc.GetReference(record)
//	obj, _ := ref.Get(ctx)
//	defer ref.Release()
package discovery

import (
	"context"

	"github.com/ceyewan/beacon/clog"
	"github.com/ceyewan/beacon/eventbus"
)

// ServiceDiscovery 定义了服务发现会话的核心能力
//
// 所有方法并发安全。一个进程可以持有多个互不相关的会话，各自拥有
// 独立的引用缓存与桥接器集合；共享同一后端的会话看到同一批记录。
type ServiceDiscovery interface {
	// Publish 发布记录
	//
	// 记录没有 registration 时由后端分配；状态为 UNKNOWN 时置为 UP。
	// 成功后广播 PUBLISHED 事件，返回含最终标识的副本。
	Publish(ctx context.Context, record Record) (Record, error)

	// Update 原地更新既有记录
	//
	// 记录必须携带 registration，否则返回 ErrMissingRegistration。
	// 成功后广播 PUBLISHED 事件。
	Update(ctx context.Context, record Record) (Record, error)

	// Unpublish 按 registration 撤销记录
	//
	// 成功后广播 WITHDRAWN 事件，事件中的记录状态为 DOWN。
	Unpublish(ctx context.Context, registration string) error

	// GetRecord 返回第一条匹配的记录
	//
	// 无匹配时返回 ErrRecordNotFound。匹配多条时返回哪一条不作保证。
	GetRecord(ctx context.Context, filter Filter) (Record, error)

	// GetRecords 返回所有匹配的记录
	//
	// filter 为 nil 时等价于空筛选器：只返回 UP 状态的记录。
	GetRecords(ctx context.Context, filter Filter) ([]Record, error)

	// GetRecordsWhere 用自定义谓词筛选记录
	//
	// includeOutOfService 为 false 时只考虑 UP 状态的记录；为 true 时
	// 所有状态的记录都交给谓词判断。
	GetRecordsWhere(ctx context.Context, match func(Record) bool, includeOutOfService bool) ([]Record, error)

	// GetReference 为记录创建引用
	//
	// 同一 registration 的无配置引用在会话内复用同一实例。
	GetReference(record Record) (Reference, error)

	// GetReferenceWithConfig 为记录创建携带绑定期配置的引用
	//
	// 带配置的引用不参与缓存复用，每次调用返回新实例。
	GetReferenceWithConfig(record Record, config map[string]any) (Reference, error)

	// RegisterType 注册服务类型工厂
	//
	// 标签重复时返回 ErrDuplicateType。
	RegisterType(t Type) error

	// RegisterBridge 注册并启动桥接器
	//
	// 阻塞等待桥接器完成启动；启动失败时返回 ErrBridgeStartFailed，
	// 桥接器回到未注册状态且不产生任何记录。
	RegisterBridge(ctx context.Context, bridge Bridge, config map[string]any) error

	// Close 关闭会话
	//
	// 依次停止所有桥接器、强制释放所有未释放的引用、释放自有资源。
	// 中途的失败会被收集，不会中断后续步骤。关闭后所有操作返回
	// ErrDiscoveryClosed。Close 不会删除任何已发布的记录。
	Close(ctx context.Context) error
}

// New 创建服务发现会话
//
// cfg 为 nil 时使用 DefaultConfig。未注入后端/总线时创建进程内
// 实现并在 Close 时一并释放；注入的后端/总线由调用方负责关闭。
func New(cfg *Config, opts ...Option) (ServiceDiscovery, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg.setDefaults()
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}
	if opt.Logger == nil {
		opt.Logger = clog.Discard()
	}

	codec, err := eventbus.NewCodec(cfg.Codec)
	if err != nil {
		return nil, err
	}

	d := &serviceDiscovery{
		cfg:    cfg,
		logger: opt.Logger,
		codec:  codec,
		types:  newTypeRegistry(),
		refs:   make(map[string]Reference),
	}

	if opt.Backend != nil {
		d.backend = opt.Backend
	} else {
		d.backend = NewLocalBackend()
		d.ownBackend = true
	}

	if opt.Bus != nil {
		d.bus = opt.Bus
	} else {
		bus, err := eventbus.New(&eventbus.Config{Driver: eventbus.DriverLocal})
		if err != nil {
			return nil, err
		}
		d.bus = bus
		d.ownBus = true
	}

	d.bridges = newBridgeManager(&restrictedPublisher{d: d}, opt.Logger)

	for _, t := range opt.Types {
		if err := d.types.register(t); err != nil {
			return nil, err
		}
	}

	d.logger.Info("service discovery created",
		clog.String("name", cfg.Name),
		clog.String("backend", d.backend.Name()))
	return d, nil
}
