// Package eventbus 提供事件广播组件，支持进程内与 NATS 两种驱动。
//
// eventbus 是 Beacon 的事件分发抽象层，提供统一的"尽力而为"广播语义：
// 无确认、无重放、无持久化，订阅者只能收到订阅之后发布的事件。
//
// 两种驱动：
//   - local：进程内观察者列表，适合单进程部署和测试；
//   - nats：基于 NATS Core 的发布订阅，多个节点订阅同一地址即可收到
//     彼此的事件。
//
// 基本使用：
//
//	bus, _ := eventbus.New(&eventbus.Config{Driver: eventbus.DriverLocal})
//	defer bus.Close()
//
//	sub, _ := bus.Subscribe(ctx, "beacon.discovery.announce", func(ctx context.Context, data []byte) error {
//	    ...
//	    return nil
//	})
//	defer sub.Unsubscribe()
//
//	_ = bus.Publish(ctx, "beacon.discovery.announce", payload)
package eventbus

import (
	"context"

	"github.com/ceyewan/beacon/clog"
)

// Handler 事件处理函数
type Handler func(ctx context.Context, data []byte) error

// Subscription 订阅句柄，用于管理订阅的生命周期
type Subscription interface {
	// Unsubscribe 取消订阅
	Unsubscribe() error

	// IsValid 检查订阅是否有效
	IsValid() bool
}

// Bus 定义了事件广播组件的核心能力
type Bus interface {
	// Publish 向指定地址广播事件
	//
	// 广播是尽力而为的：没有订阅者时发布成功但无人接收。
	Publish(ctx context.Context, address string, data []byte) error

	// Subscribe 订阅指定地址的事件
	//
	// 同一地址的所有订阅者都会收到消息。
	Subscribe(ctx context.Context, address string, handler Handler) (Subscription, error)

	// Close 关闭总线，取消所有本地订阅
	Close() error
}

// New 创建事件总线
//
// 如果 Driver 为 local 或为空，创建进程内总线；
// 如果 Driver 为 nats，需要通过 WithNATSConnector 注入 NATS 连接器。
func New(cfg *Config, opts ...Option) (Bus, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}
	if opt.Logger == nil {
		opt.Logger = clog.Discard()
	}

	switch cfg.Driver {
	case DriverLocal, "":
		return newLocalBus(opt.Logger), nil
	case DriverNATS:
		if opt.NATSConn == nil {
			return nil, ErrConnectorRequired
		}
		return newNATSBus(opt.NATSConn, opt.Logger)
	default:
		return nil, ErrUnsupportedDriver
	}
}
