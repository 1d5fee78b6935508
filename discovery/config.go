package discovery

import (
	"os"

	"github.com/spf13/viper"

	"github.com/ceyewan/beacon/xerrors"
)

// AddressNone 禁用某一类事件广播的地址哨兵值
const AddressNone = "-"

// Config 发现会话配置
type Config struct {
	// Name 会话标识，用于标记事件来源，默认取主机名
	Name string `mapstructure:"name" json:"name"`
	// AnnounceAddress 状态事件（PUBLISHED/WITHDRAWN）的广播地址
	//
	// 设为 AddressNone 时禁用状态事件广播。
	AnnounceAddress string `mapstructure:"announceAddress" json:"announceAddress"`
	// UsageAddress 使用事件（BIND/RELEASE）的广播地址
	//
	// 设为 AddressNone 时禁用使用事件广播。
	UsageAddress string `mapstructure:"usageAddress" json:"usageAddress"`
	// Codec 事件编码，"json" 或 "msgpack"，默认 json
	Codec string `mapstructure:"codec" json:"codec"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		if host, err := os.Hostname(); err == nil && host != "" {
			c.Name = host
		} else {
			c.Name = "beacon"
		}
	}
	if c.AnnounceAddress == "" {
		c.AnnounceAddress = "beacon.discovery.announce"
	}
	if c.UsageAddress == "" {
		c.UsageAddress = "beacon.discovery.usage"
	}
	if c.Codec == "" {
		c.Codec = "json"
	}
}

// LoadConfig 从配置文件读取会话配置
//
// 支持 viper 能识别的全部格式（yaml/json/toml 等），缺省字段按
// DefaultConfig 填充。
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, xerrors.Wrap(err, "read discovery config")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, xerrors.Wrap(err, "unmarshal discovery config")
	}
	cfg.setDefaults()
	return cfg, nil
}
