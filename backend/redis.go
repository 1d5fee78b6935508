package backend

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ceyewan/beacon/clog"
	"github.com/ceyewan/beacon/connector"
	"github.com/ceyewan/beacon/discovery"
	"github.com/ceyewan/beacon/xerrors"
)

// redisBackend 基于 Redis 的记录存储
//
// 全部记录放在一个哈希里：键是 namespace，字段是 registration，
// 值是记录的 JSON。删除通过 Lua 脚本取回旧值并移除，保证原子性。
type redisBackend struct {
	conn      connector.RedisConnector
	namespace string
	logger    clog.Logger
}

// removeScript 原子地取回并删除哈希字段
var removeScript = redis.NewScript(`
local v = redis.call('HGET', KEYS[1], ARGV[1])
if v then
  redis.call('HDEL', KEYS[1], ARGV[1])
end
return v
`)

// NewRedis 创建 Redis 存储后端
//
// 连接器由调用方负责 Connect 与 Close，后端只借用客户端。
func NewRedis(conn connector.RedisConnector, cfg *Config, opts ...Option) (discovery.Backend, error) {
	if conn == nil {
		return nil, ErrConnectorRequired
	}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.setDefaults()

	opt := applyOptions(opts)
	return &redisBackend{
		conn:      conn,
		namespace: cfg.Namespace,
		logger:    opt.Logger,
	}, nil
}

func (b *redisBackend) client() (*redis.Client, error) {
	client := b.conn.GetClient()
	if client == nil {
		return nil, xerrors.Join(discovery.ErrStoreUnavailable, connector.ErrNotConnected)
	}
	return client, nil
}

func (b *redisBackend) Store(ctx context.Context, record discovery.Record) (discovery.Record, error) {
	client, err := b.client()
	if err != nil {
		return discovery.Record{}, err
	}

	r := record.Clone()
	if r.Registration == "" {
		r.Registration = uuid.NewString()
	}

	data, err := json.Marshal(r)
	if err != nil {
		return discovery.Record{}, xerrors.Wrap(err, "encode record")
	}

	if err := client.HSet(ctx, b.namespace, r.Registration, data).Err(); err != nil {
		return discovery.Record{}, xerrors.Join(discovery.ErrStoreUnavailable, err)
	}
	return r, nil
}

func (b *redisBackend) Remove(ctx context.Context, registration string) (discovery.Record, error) {
	client, err := b.client()
	if err != nil {
		return discovery.Record{}, err
	}

	val, err := removeScript.Run(ctx, client, []string{b.namespace}, registration).Text()
	if err != nil {
		if err == redis.Nil {
			return discovery.Record{}, discovery.ErrRecordNotFound
		}
		return discovery.Record{}, xerrors.Join(discovery.ErrStoreUnavailable, err)
	}
	return decodeRecord([]byte(val))
}

func (b *redisBackend) Get(ctx context.Context, registration string) (discovery.Record, error) {
	client, err := b.client()
	if err != nil {
		return discovery.Record{}, err
	}

	val, err := client.HGet(ctx, b.namespace, registration).Bytes()
	if err != nil {
		if err == redis.Nil {
			return discovery.Record{}, discovery.ErrRecordNotFound
		}
		return discovery.Record{}, xerrors.Join(discovery.ErrStoreUnavailable, err)
	}
	return decodeRecord(val)
}

func (b *redisBackend) Query(ctx context.Context, match func(discovery.Record) bool) ([]discovery.Record, error) {
	client, err := b.client()
	if err != nil {
		return nil, err
	}

	entries, err := client.HGetAll(ctx, b.namespace).Result()
	if err != nil {
		return nil, xerrors.Join(discovery.ErrStoreUnavailable, err)
	}

	var out []discovery.Record
	for field, val := range entries {
		r, err := decodeRecord([]byte(val))
		if err != nil {
			b.logger.Warn("skip malformed record", clog.String("field", field), clog.Error(err))
			continue
		}
		if match == nil || match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (b *redisBackend) Name() string {
	return "redis"
}

// Close 借用模型下是空操作，连接由应用层关闭
func (b *redisBackend) Close() error {
	return nil
}
