// Package backend 提供基于 Etcd 与 Redis 的服务发现存储后端。
//
// 两种实现都满足 discovery.Backend 契约，把记录以 JSON 形式持久化到
// 共享存储，使多个节点的发现会话看到同一批记录。跨节点传播是最终
// 一致的：写入方总能立即读到自己的写入，其他节点存在传播延迟。
//
// 后端遵循借用模型：连接器由应用层创建并持有，后端只借用客户端，
// Close() 不会断开连接。
//
// 基本使用：
//
//	conn, _ := connector.NewEtcd(&connector.EtcdConfig{
//		Endpoints: []string{"127.0.0.1:2379"},
//	})
//	_ = conn.Connect(ctx)
//	defer conn.Close()
//
//	store, _ := backend.NewEtcd(conn, &backend.Config{Namespace: "beacon"})
//	disc, _ := discovery.New(nil, discovery.WithBackend(store))
package backend

import (
	"github.com/ceyewan/beacon/xerrors"
)

// Config 存储后端配置
type Config struct {
	// Namespace 键前缀，隔离同一存储上的多套部署，默认 "beacon/discovery"
	Namespace string `mapstructure:"namespace" json:"namespace"`
}

func (c *Config) setDefaults() {
	if c.Namespace == "" {
		c.Namespace = "beacon/discovery"
	}
}

var (
	// ErrConnectorRequired 缺少连接器
	ErrConnectorRequired = xerrors.New("backend: connector is required")

	// ErrDecodeRecord 存储中的记录无法解码
	ErrDecodeRecord = xerrors.New("backend: malformed record in store")
)
