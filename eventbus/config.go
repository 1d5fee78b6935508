package eventbus

// DriverType 驱动类型
type DriverType string

const (
	// DriverLocal 进程内观察者列表
	DriverLocal DriverType = "local"
	// DriverNATS 基于 NATS Core 的发布订阅
	DriverNATS DriverType = "nats"
)

// Config eventbus 组件配置
type Config struct {
	// Driver 指定底层驱动: local | nats（默认 local）
	Driver DriverType `json:"driver" yaml:"driver" mapstructure:"driver"`
}

// validate 验证配置
func (c *Config) validate() error {
	switch c.Driver {
	case DriverLocal, DriverNATS, "":
		return nil
	default:
		return ErrUnsupportedDriver
	}
}
