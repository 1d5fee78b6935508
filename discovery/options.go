package discovery

import (
	"github.com/ceyewan/beacon/clog"
	"github.com/ceyewan/beacon/eventbus"
)

// Option 发现会话选项
type Option func(*options)

type options struct {
	Logger  clog.Logger
	Backend Backend
	Bus     eventbus.Bus
	Types   []Type
}

// WithLogger 注入日志器，自动添加 "discovery" 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.Logger = logger.WithNamespace("discovery")
		}
	}
}

// WithBackend 注入记录存储后端
//
// 后端由调用方负责关闭；未注入时会话创建并持有进程内后端。
func WithBackend(backend Backend) Option {
	return func(o *options) {
		o.Backend = backend
	}
}

// WithBus 注入事件总线
//
// 总线由调用方负责关闭；未注入时会话创建并持有进程内总线。
func WithBus(bus eventbus.Bus) Option {
	return func(o *options) {
		o.Bus = bus
	}
}

// WithTypes 注册服务类型工厂
//
// 与 ServiceDiscovery.RegisterType 等价，只是在创建期完成。
func WithTypes(types ...Type) Option {
	return func(o *options) {
		o.Types = append(o.Types, types...)
	}
}
