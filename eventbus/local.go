package eventbus

import (
	"context"
	"sync"

	"github.com/ceyewan/beacon/clog"
)

// localBus 进程内事件总线
//
// 订阅者按地址组织为观察者列表，Publish 在调用方协程内同步派发，
// 保证同一发布方的事件按发布顺序到达每个订阅者。
type localBus struct {
	logger clog.Logger

	mu     sync.RWMutex
	seq    uint64
	subs   map[string]map[uint64]*localSubscription
	closed bool
}

type localSubscription struct {
	bus     *localBus
	address string
	id      uint64
	handler Handler

	mu    sync.Mutex
	valid bool
}

func newLocalBus(logger clog.Logger) *localBus {
	return &localBus{
		logger: logger,
		subs:   make(map[string]map[uint64]*localSubscription),
	}
}

func (b *localBus) Publish(ctx context.Context, address string, data []byte) error {
	if address == "" {
		return ErrEmptyAddress
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	// 快照当前订阅者，派发时不持有总线锁
	var targets []*localSubscription
	for _, sub := range b.subs[address] {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		if err := sub.handler(ctx, data); err != nil {
			b.logger.Error("event handler failed",
				clog.String("address", address),
				clog.Error(err))
		}
	}
	return nil
}

func (b *localBus) Subscribe(ctx context.Context, address string, handler Handler) (Subscription, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}
	if handler == nil {
		return nil, ErrEmptyAddress
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}

	b.seq++
	sub := &localSubscription{
		bus:     b,
		address: address,
		id:      b.seq,
		handler: handler,
		valid:   true,
	}
	if b.subs[address] == nil {
		b.subs[address] = make(map[uint64]*localSubscription)
	}
	b.subs[address][sub.id] = sub
	return sub, nil
}

func (b *localBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, group := range b.subs {
		for _, sub := range group {
			sub.invalidate()
		}
	}
	b.subs = make(map[string]map[uint64]*localSubscription)
	return nil
}

func (s *localSubscription) Unsubscribe() error {
	s.bus.mu.Lock()
	if group, ok := s.bus.subs[s.address]; ok {
		delete(group, s.id)
		if len(group) == 0 {
			delete(s.bus.subs, s.address)
		}
	}
	s.bus.mu.Unlock()

	s.invalidate()
	return nil
}

func (s *localSubscription) IsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.valid
}

func (s *localSubscription) invalidate() {
	s.mu.Lock()
	s.valid = false
	s.mu.Unlock()
}
