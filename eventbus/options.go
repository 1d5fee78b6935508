package eventbus

import (
	"github.com/ceyewan/beacon/clog"
	"github.com/ceyewan/beacon/connector"
)

type options struct {
	Logger   clog.Logger
	NATSConn connector.NATSConnector
}

// Option 组件初始化选项函数
type Option func(*options)

// WithLogger 注入日志记录器
// 组件内部会自动追加 "eventbus" namespace
func WithLogger(l clog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.Logger = l.WithNamespace("eventbus")
		}
	}
}

// WithNATSConnector 注入 NATS 连接器（nats 驱动必需）
//
// 总线仅借用连接器，不负责其生命周期。
func WithNATSConnector(conn connector.NATSConnector) Option {
	return func(o *options) {
		o.NATSConn = conn
	}
}
