package discovery

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ceyewan/beacon/clog"
	"github.com/ceyewan/beacon/eventbus"
	"github.com/ceyewan/beacon/xerrors"
)

// serviceDiscovery 是 ServiceDiscovery 的默认实现
type serviceDiscovery struct {
	cfg    *Config
	logger clog.Logger
	codec  eventbus.Codec

	backend    Backend
	ownBackend bool

	bus    eventbus.Bus
	ownBus bool

	types   *typeRegistry
	bridges *bridgeManager

	// refMu 保护引用缓存与追踪列表
	refMu   sync.Mutex
	refs    map[string]Reference // 按 registration 缓存的无配置引用
	tracked []Reference          // 会话创建过的全部引用，关闭时强制释放

	closed atomic.Bool
}

var _ ServiceDiscovery = (*serviceDiscovery)(nil)
var _ usageReporter = (*serviceDiscovery)(nil)

func (d *serviceDiscovery) Publish(ctx context.Context, record Record) (Record, error) {
	if d.closed.Load() {
		return Record{}, ErrDiscoveryClosed
	}
	if record.Name == "" {
		return Record{}, xerrors.Wrap(ErrInvalidRecord, "record name is required")
	}

	r := record.Clone()
	if r.Status == StatusUnknown || r.Status == "" {
		r.Status = StatusUp
	}

	stored, err := d.backend.Store(ctx, r)
	if err != nil {
		return Record{}, err
	}

	d.logger.Info("record published",
		clog.String("registration", stored.Registration),
		clog.String("name", stored.Name),
		clog.String("type", stored.Type))
	d.emit(ctx, d.cfg.AnnounceAddress, EventPublished, stored)
	return stored, nil
}

func (d *serviceDiscovery) Update(ctx context.Context, record Record) (Record, error) {
	if d.closed.Load() {
		return Record{}, ErrDiscoveryClosed
	}
	if record.Registration == "" {
		return Record{}, ErrMissingRegistration
	}

	stored, err := d.backend.Store(ctx, record.Clone())
	if err != nil {
		return Record{}, err
	}

	d.logger.Info("record updated",
		clog.String("registration", stored.Registration),
		clog.String("status", string(stored.Status)))
	d.emit(ctx, d.cfg.AnnounceAddress, EventPublished, stored)
	return stored, nil
}

func (d *serviceDiscovery) Unpublish(ctx context.Context, registration string) error {
	if d.closed.Load() {
		return ErrDiscoveryClosed
	}
	if registration == "" {
		return ErrMissingRegistration
	}

	removed, err := d.backend.Remove(ctx, registration)
	if err != nil {
		return err
	}

	// 撤销事件携带的记录标记为 DOWN，监听者据此失效本地缓存
	removed.Status = StatusDown
	d.logger.Info("record withdrawn", clog.String("registration", registration))
	d.emit(ctx, d.cfg.AnnounceAddress, EventWithdrawn, removed)
	return nil
}

func (d *serviceDiscovery) GetRecord(ctx context.Context, filter Filter) (Record, error) {
	records, err := d.GetRecords(ctx, filter)
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, ErrRecordNotFound
	}
	return records[0], nil
}

func (d *serviceDiscovery) GetRecords(ctx context.Context, filter Filter) ([]Record, error) {
	if d.closed.Load() {
		return nil, ErrDiscoveryClosed
	}
	return d.backend.Query(ctx, filter.Match)
}

func (d *serviceDiscovery) GetRecordsWhere(ctx context.Context, match func(Record) bool, includeOutOfService bool) ([]Record, error) {
	if d.closed.Load() {
		return nil, ErrDiscoveryClosed
	}
	if match == nil {
		match = func(Record) bool { return true }
	}
	return d.backend.Query(ctx, func(r Record) bool {
		if !includeOutOfService && r.Status != StatusUp {
			return false
		}
		return match(r)
	})
}

func (d *serviceDiscovery) GetReference(record Record) (Reference, error) {
	if d.closed.Load() {
		return nil, ErrDiscoveryClosed
	}

	// 无配置引用按 registration 复用，同一服务在会话内共享一个对象
	if record.Registration != "" {
		d.refMu.Lock()
		if ref, ok := d.refs[record.Registration]; ok {
			d.refMu.Unlock()
			return ref, nil
		}
		d.refMu.Unlock()
	}

	ref, err := d.newReference(record, nil)
	if err != nil {
		return nil, err
	}

	d.refMu.Lock()
	if record.Registration != "" {
		// 并发创建时保留先到的实例
		if cached, ok := d.refs[record.Registration]; ok {
			d.refMu.Unlock()
			return cached, nil
		}
		d.refs[record.Registration] = ref
	}
	d.tracked = append(d.tracked, ref)
	d.refMu.Unlock()
	return ref, nil
}

func (d *serviceDiscovery) GetReferenceWithConfig(record Record, config map[string]any) (Reference, error) {
	if d.closed.Load() {
		return nil, ErrDiscoveryClosed
	}

	ref, err := d.newReference(record, config)
	if err != nil {
		return nil, err
	}

	d.refMu.Lock()
	d.tracked = append(d.tracked, ref)
	d.refMu.Unlock()
	return ref, nil
}

func (d *serviceDiscovery) newReference(record Record, config map[string]any) (Reference, error) {
	t, err := d.types.resolve(record.Type)
	if err != nil {
		return nil, err
	}
	return t.NewReference(d, record, config)
}

func (d *serviceDiscovery) RegisterType(t Type) error {
	if d.closed.Load() {
		return ErrDiscoveryClosed
	}
	return d.types.register(t)
}

func (d *serviceDiscovery) RegisterBridge(ctx context.Context, bridge Bridge, config map[string]any) error {
	if d.closed.Load() {
		return ErrDiscoveryClosed
	}
	return d.bridges.register(ctx, bridge, config)
}

// Close 关闭会话：停桥接器、强制释放引用、释放自有资源
func (d *serviceDiscovery) Close(ctx context.Context) error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}

	var collector xerrors.Collector

	collector.Collect(d.bridges.stopAll(ctx))

	d.refMu.Lock()
	tracked := d.tracked
	d.tracked = nil
	d.refs = make(map[string]Reference)
	d.refMu.Unlock()

	for _, ref := range tracked {
		if base, ok := ref.(*BaseReference); ok {
			collector.Collect(base.forceRelease())
		} else {
			ref.Release()
		}
	}

	if d.ownBus {
		collector.Collect(d.bus.Close())
	}
	if d.ownBackend {
		collector.Collect(d.backend.Close())
	}

	d.logger.Info("service discovery closed", clog.String("name", d.cfg.Name))
	return collector.Err()
}

// reportUsage 由引用回调，广播 BIND/RELEASE 事件
func (d *serviceDiscovery) reportUsage(record Record, kind EventKind) {
	d.emit(context.Background(), d.cfg.UsageAddress, kind, record)
}

// emit 广播事件，失败只记录日志
//
// 事件是尽力而为的：广播失败不影响触发它的存储操作的结果。
func (d *serviceDiscovery) emit(ctx context.Context, address string, kind EventKind, record Record) {
	if address == AddressNone || address == "" {
		return
	}

	payload, err := d.codec.Marshal(Event{
		Kind:   kind,
		Record: record,
		Origin: d.cfg.Name,
	})
	if err != nil {
		d.logger.Warn("event encode failed",
			clog.String("kind", string(kind)), clog.Error(err))
		return
	}

	if err := d.bus.Publish(ctx, address, payload); err != nil {
		d.logger.Warn("event publish failed",
			clog.String("kind", string(kind)),
			clog.String("address", address), clog.Error(err))
	}
}

// restrictedPublisher 提供给桥接器的受限存储句柄
//
// 复用会话自身的发布路径，桥接器导入的记录与直接发布的记录在
// 存储与事件上不可区分。
type restrictedPublisher struct {
	d *serviceDiscovery
}

func (p *restrictedPublisher) Publish(ctx context.Context, record Record) (Record, error) {
	return p.d.Publish(ctx, record)
}

func (p *restrictedPublisher) Update(ctx context.Context, record Record) (Record, error) {
	return p.d.Update(ctx, record)
}

func (p *restrictedPublisher) Unpublish(ctx context.Context, registration string) error {
	return p.d.Unpublish(ctx, registration)
}
