package svctype

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/ceyewan/beacon/discovery"
)

// RedisRecord 构造一条 Redis 数据源记录
func RedisRecord(name, addr string, db int, metadata map[string]any) discovery.Record {
	return discovery.NewRecord(name, TypeRedisDataSource, map[string]any{
		"addr": addr,
		"db":   db,
	}, metadata)
}

// redisDataSource Redis 数据源类型，服务对象是 *redis.Client
//
// 与消息源不同，客户端按引用创建并归引用所有，计数归零时关闭。
type redisDataSource struct{}

// NewRedisDataSource 创建 Redis 数据源类型
func NewRedisDataSource() discovery.Type {
	return redisDataSource{}
}

func (redisDataSource) Name() string { return TypeRedisDataSource }

// NewReference 为 Redis 数据源记录创建引用
//
// 绑定期配置支持 "password"，覆盖记录中未携带的认证信息。
func (redisDataSource) NewReference(disc discovery.ServiceDiscovery, record discovery.Record, config map[string]any) (discovery.Reference, error) {
	fetch := func(ctx context.Context) (any, error) {
		addr, err := locationString(record.Location, "addr")
		if err != nil {
			return nil, err
		}
		db := 0
		if _, ok := record.Location["db"]; ok {
			if db, err = locationInt(record.Location, "db"); err != nil {
				return nil, err
			}
		}

		opts := &redis.Options{Addr: addr, DB: db}
		if password, ok := config["password"].(string); ok {
			opts.Password = password
		}

		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, err
		}
		return client, nil
	}

	close := func(obj any) error {
		if client, ok := obj.(*redis.Client); ok {
			return client.Close()
		}
		return nil
	}

	return discovery.NewBaseReference(disc, record, fetch, close), nil
}
