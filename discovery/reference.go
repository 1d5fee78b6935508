package discovery

import (
	"context"
	"sync"

	"github.com/ceyewan/beacon/xerrors"
)

// Reference 消费方与一条记录之间的活动绑定
//
// 引用持有绑定时的记录快照，并惰性地构造/销毁具体的服务对象：
// 首次 Get 时通过类型工厂提供的取数逻辑构造对象并缓存，之后的
// Get 返回同一对象。每次成功的 Get 使使用计数加一并发出 BIND
// 事件；Release 使计数减一并发出 RELEASE 事件，计数归零时销毁
// 服务对象。
type Reference interface {
	// Record 返回绑定时的记录快照
	Record() Record

	// Get 返回服务对象，必要时先构造
	//
	// 构造失败返回 ErrRetrievalFailed，引用仍然有效，可以重试。
	Get(ctx context.Context) (any, error)

	// Release 释放一次使用
	//
	// 使用计数归零时销毁服务对象；销毁是幂等的，对从未构造过
	// 对象的引用调用也是安全的。
	Release()
}

// FetchFunc 构造服务对象
type FetchFunc func(ctx context.Context) (any, error)

// CloseFunc 销毁服务对象
type CloseFunc func(obj any) error

// usageReporter 由 discovery 会话实现，引用通过它上报使用事件
type usageReporter interface {
	reportUsage(record Record, kind EventKind)
}

// BaseReference 引用的通用实现骨架
//
// 承担加锁、使用计数与惰性构造，服务类型只需提供 fetch/close
// 两个回调。同一引用实例上的 Get/Release 由内部互斥锁串行化，
// 计数与惰性构造不存在竞态；归零销毁即使在并发 Release 下也至多
// 执行一次。
type BaseReference struct {
	disc    ServiceDiscovery
	record  Record
	fetch   FetchFunc
	closeFn CloseFunc

	mu           sync.Mutex
	object       any
	materialized bool
	usages       int
}

// NewBaseReference 创建引用骨架
//
// fetch 在首次 Get 时调用；closeFn 在使用计数归零或会话关闭时
// 调用，可以为 nil。
func NewBaseReference(disc ServiceDiscovery, record Record, fetch FetchFunc, closeFn CloseFunc) *BaseReference {
	return &BaseReference{
		disc:    disc,
		record:  record.Clone(),
		fetch:   fetch,
		closeFn: closeFn,
	}
}

// Record 返回绑定时的记录快照
func (r *BaseReference) Record() Record {
	return r.record.Clone()
}

// Get 返回服务对象，必要时先构造
func (r *BaseReference) Get(ctx context.Context) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.materialized {
		obj, err := r.fetch(ctx)
		if err != nil {
			// 引用保持可用，调用方可以重试
			return nil, xerrors.Join(ErrRetrievalFailed, err)
		}
		r.object = obj
		r.materialized = true
	}

	r.usages++
	r.report(EventBind)
	return r.object, nil
}

// Release 释放一次使用
func (r *BaseReference) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.usages == 0 {
		return
	}
	r.usages--
	r.report(EventRelease)

	if r.usages == 0 {
		_ = r.teardownLocked()
	}
}

// forceRelease 将使用计数强制归零并销毁服务对象
//
// 会话关闭时调用；未释放的引用被强制释放是会话关闭的正确性
// 保证，不是异常路径。
func (r *BaseReference) forceRelease() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	released := r.usages > 0
	r.usages = 0
	err := r.teardownLocked()
	if released {
		r.report(EventRelease)
	}
	return err
}

// teardownLocked 销毁服务对象，调用方必须持有 r.mu
//
// 幂等：对象销毁后 materialized 复位，重复调用是空操作。
func (r *BaseReference) teardownLocked() error {
	if !r.materialized {
		return nil
	}
	r.materialized = false
	obj := r.object
	r.object = nil

	if r.closeFn == nil {
		return nil
	}
	return r.closeFn(obj)
}

func (r *BaseReference) report(kind EventKind) {
	if reporter, ok := r.disc.(usageReporter); ok {
		reporter.reportUsage(r.record, kind)
	}
}
