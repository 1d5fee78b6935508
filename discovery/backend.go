package discovery

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Backend 定义记录存储的后端契约
//
// 后端只负责记录的并发安全存取；变更事件由核心在每次成功的
// Store/Remove 之后发出，与后端解耦，任何后端实现都能复用同一套
// 通知机制。
//
// 本包内置进程内实现（NewLocalBackend）。复制型实现（Etcd、Redis）
// 位于 backend 包，跨节点传播是最终一致的：单个节点总能立即读到
// 自己的写入，其他节点存在传播延迟。
type Backend interface {
	// Store 保存记录
	//
	// 记录没有 registration 时分配一个全新的、从未使用过的标识；
	// 已携带 registration 时原地更新既有条目（不产生重复）。
	// 返回存储后的独立副本。
	Store(ctx context.Context, record Record) (Record, error)

	// Remove 按 registration 删除记录，返回被删除的副本
	//
	// 记录不存在时返回 ErrRecordNotFound。
	Remove(ctx context.Context, registration string) (Record, error)

	// Get 按 registration 查找记录
	//
	// 记录不存在时返回 ErrRecordNotFound。
	Get(ctx context.Context, registration string) (Record, error)

	// Query 返回所有满足谓词的记录副本
	//
	// 迭代顺序不作保证，调用方不得依赖。
	Query(ctx context.Context, match func(Record) bool) ([]Record, error)

	// Name 返回后端名称，用于日志
	Name() string

	// Close 释放后端持有的资源
	Close() error
}

// localBackend 进程内存储，适合单进程部署
type localBackend struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewLocalBackend 创建进程内存储后端
func NewLocalBackend() Backend {
	return &localBackend{
		records: make(map[string]Record),
	}
}

func (b *localBackend) Store(ctx context.Context, record Record) (Record, error) {
	r := record.Clone()
	if r.Registration == "" {
		r.Registration = uuid.NewString()
	}

	b.mu.Lock()
	b.records[r.Registration] = r
	b.mu.Unlock()

	return r.Clone(), nil
}

func (b *localBackend) Remove(ctx context.Context, registration string) (Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.records[registration]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	delete(b.records, registration)
	return r.Clone(), nil
}

func (b *localBackend) Get(ctx context.Context, registration string) (Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, ok := b.records[registration]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return r.Clone(), nil
}

func (b *localBackend) Query(ctx context.Context, match func(Record) bool) ([]Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Record
	for _, r := range b.records {
		if match == nil || match(r) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (b *localBackend) Name() string {
	return "local"
}

func (b *localBackend) Close() error {
	b.mu.Lock()
	b.records = make(map[string]Record)
	b.mu.Unlock()
	return nil
}
