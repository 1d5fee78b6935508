package backend

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/ceyewan/beacon/clog"
	"github.com/ceyewan/beacon/connector"
	"github.com/ceyewan/beacon/discovery"
	"github.com/ceyewan/beacon/xerrors"
)

// etcdBackend 基于 Etcd 的记录存储
//
// 每条记录一个键：<namespace>/<registration>，值是记录的 JSON。
// 并发安全由 Etcd 保证，删除用事务做存在性检查。
type etcdBackend struct {
	conn      connector.EtcdConnector
	namespace string
	logger    clog.Logger
}

// NewEtcd 创建 Etcd 存储后端
//
// 连接器由调用方负责 Connect 与 Close，后端只借用客户端。
func NewEtcd(conn connector.EtcdConnector, cfg *Config, opts ...Option) (discovery.Backend, error) {
	if conn == nil {
		return nil, ErrConnectorRequired
	}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.setDefaults()

	opt := applyOptions(opts)
	return &etcdBackend{
		conn:      conn,
		namespace: cfg.Namespace,
		logger:    opt.Logger,
	}, nil
}

func (b *etcdBackend) key(registration string) string {
	return b.namespace + "/" + registration
}

func (b *etcdBackend) client() (*clientv3.Client, error) {
	client := b.conn.GetClient()
	if client == nil {
		return nil, xerrors.Join(discovery.ErrStoreUnavailable, connector.ErrNotConnected)
	}
	return client, nil
}

func (b *etcdBackend) Store(ctx context.Context, record discovery.Record) (discovery.Record, error) {
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

	if _, err := client.Put(ctx, b.key(r.Registration), string(data)); err != nil {
		return discovery.Record{}, xerrors.Join(discovery.ErrStoreUnavailable, err)
	}
	return r, nil
}

func (b *etcdBackend) Remove(ctx context.Context, registration string) (discovery.Record, error) {
	client, err := b.client()
	if err != nil {
		return discovery.Record{}, err
	}

	resp, err := client.Delete(ctx, b.key(registration), clientv3.WithPrevKV())
	if err != nil {
		return discovery.Record{}, xerrors.Join(discovery.ErrStoreUnavailable, err)
	}
	if resp.Deleted == 0 || len(resp.PrevKvs) == 0 {
		return discovery.Record{}, discovery.ErrRecordNotFound
	}

	return decodeRecord(resp.PrevKvs[0].Value)
}

func (b *etcdBackend) Get(ctx context.Context, registration string) (discovery.Record, error) {
	client, err := b.client()
	if err != nil {
		return discovery.Record{}, err
	}

	resp, err := client.Get(ctx, b.key(registration))
	if err != nil {
		return discovery.Record{}, xerrors.Join(discovery.ErrStoreUnavailable, err)
	}
	if len(resp.Kvs) == 0 {
		return discovery.Record{}, discovery.ErrRecordNotFound
	}
	return decodeRecord(resp.Kvs[0].Value)
}

func (b *etcdBackend) Query(ctx context.Context, match func(discovery.Record) bool) ([]discovery.Record, error) {
	client, err := b.client()
	if err != nil {
		return nil, err
	}

	resp, err := client.Get(ctx, b.namespace+"/", clientv3.WithPrefix())
	if err != nil {
		return nil, xerrors.Join(discovery.ErrStoreUnavailable, err)
	}

	var out []discovery.Record
	for _, kv := range resp.Kvs {
		r, err := decodeRecord(kv.Value)
		if err != nil {
			// 损坏的条目跳过而不是让整次查询失败
			b.logger.Warn("skip malformed record", clog.String("key", string(kv.Key)), clog.Error(err))
			continue
		}
		if match == nil || match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (b *etcdBackend) Name() string {
	return "etcd"
}

// Close 借用模型下是空操作，连接由应用层关闭
func (b *etcdBackend) Close() error {
	return nil
}

func decodeRecord(data []byte) (discovery.Record, error) {
	var r discovery.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return discovery.Record{}, xerrors.Join(ErrDecodeRecord, err)
	}
	return r, nil
}
