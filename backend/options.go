package backend

import "github.com/ceyewan/beacon/clog"

// Option 后端选项
type Option func(*options)

type options struct {
	Logger clog.Logger
}

// WithLogger 注入日志器，自动添加 "backend" 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.Logger = logger.WithNamespace("backend")
		}
	}
}

func applyOptions(opts []Option) options {
	opt := options{}
	for _, o := range opts {
		o(&opt)
	}
	if opt.Logger == nil {
		opt.Logger = clog.Discard()
	}
	return opt
}
