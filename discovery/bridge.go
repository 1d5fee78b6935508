package discovery

import (
	"context"
	"sync"

	"github.com/ceyewan/beacon/clog"
	"github.com/ceyewan/beacon/xerrors"
)

// Publisher 提供给桥接器的受限存储句柄
//
// 只开放发布/更新/撤销，不开放查询。桥接器与直接发布方共用同一条
// 发布路径，事件发出与存储不变式由核心统一保证。
type Publisher interface {
	Publish(ctx context.Context, record Record) (Record, error)
	Update(ctx context.Context, record Record) (Record, error)
	Unpublish(ctx context.Context, registration string) error
}

// Bridge 外部发现系统的导入/导出桥接器
//
// Start 和 Stop 都是异步操作，由桥接管理器在独立协程中调用，
// 返回即视为完成信号（恰好一次）。Start/Stop 可以阻塞等待外部
// I/O，管理器保证对同一桥接器实例二者绝不并发执行。
type Bridge interface {
	// Start 启动桥接器
	//
	// publisher 是受限存储句柄，config 是注册时提供的配置。
	// 返回 nil 表示启动成功，桥接器进入 RUNNING 状态。
	Start(ctx context.Context, publisher Publisher, config map[string]any) error

	// Stop 停止桥接器
	//
	// 桥接器自行决定是否撤销其导入的记录，核心不会代为删除。
	Stop(ctx context.Context) error
}

// BridgeState 桥接器状态
type BridgeState string

const (
	BridgeUnregistered BridgeState = "UNREGISTERED"
	BridgeStarting     BridgeState = "STARTING"
	BridgeRunning      BridgeState = "RUNNING"
	BridgeStopping     BridgeState = "STOPPING"
	BridgeStopped      BridgeState = "STOPPED"
)

// bridgeEntry 单个桥接器的注册信息
type bridgeEntry struct {
	bridge Bridge
	config map[string]any

	// opMu 串行化同一桥接器的 start/stop（单飞）
	opMu sync.Mutex

	stateMu sync.Mutex
	state   BridgeState
}

func (e *bridgeEntry) setState(s BridgeState) {
	e.stateMu.Lock()
	e.state = s
	e.stateMu.Unlock()
}

func (e *bridgeEntry) getState() BridgeState {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.state
}

// bridgeManager 持有会话注册的全部桥接器
//
// 桥接器可以与直接发布方并发读写存储，后端负责并发安全；
// 管理器只保证对同一桥接器实例的 start/stop 串行。
type bridgeManager struct {
	publisher Publisher
	logger    clog.Logger

	mu      sync.Mutex
	entries []*bridgeEntry
}

func newBridgeManager(publisher Publisher, logger clog.Logger) *bridgeManager {
	return &bridgeManager{
		publisher: publisher,
		logger:    logger,
	}
}

// register 注册并启动桥接器
//
// 启动在独立协程中进行，本方法等待完成信号；ctx 超时后返回错误，
// 但启动仍在后台推进，状态由协程负责迁移。
func (m *bridgeManager) register(ctx context.Context, bridge Bridge, config map[string]any) error {
	entry := &bridgeEntry{
		bridge: bridge,
		config: config,
		state:  BridgeUnregistered,
	}

	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		entry.opMu.Lock()
		defer entry.opMu.Unlock()

		entry.setState(BridgeStarting)
		if err := bridge.Start(ctx, m.publisher, config); err != nil {
			entry.setState(BridgeUnregistered)
			m.logger.Error("bridge start failed", clog.Error(err))
			done <- xerrors.Join(ErrBridgeStartFailed, err)
			return
		}
		entry.setState(BridgeRunning)
		m.logger.Info("bridge started")
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return xerrors.Wrap(ctx.Err(), "bridge registration")
	}
}

// stopAll 停止所有 RUNNING 状态的桥接器
//
// 无论 Stop 成败，终态都是 STOPPED；失败会被记录并收集，
// 但不会中断会话关闭。
func (m *bridgeManager) stopAll(ctx context.Context) error {
	m.mu.Lock()
	entries := make([]*bridgeEntry, len(m.entries))
	copy(entries, m.entries)
	m.mu.Unlock()

	var collector xerrors.Collector
	for _, entry := range entries {
		if entry.getState() != BridgeRunning {
			continue
		}

		done := make(chan error, 1)
		go func(e *bridgeEntry) {
			e.opMu.Lock()
			defer e.opMu.Unlock()

			e.setState(BridgeStopping)
			err := e.bridge.Stop(ctx)
			e.setState(BridgeStopped)
			done <- err
		}(entry)

		if err := <-done; err != nil {
			m.logger.Warn("bridge stop failed", clog.Error(err))
			collector.Collect(xerrors.Join(ErrBridgeStopFailed, err))
		}
	}
	return collector.Err()
}

// states 返回所有桥接器的当前状态（按注册顺序）
func (m *bridgeManager) states() []BridgeState {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]BridgeState, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.getState()
	}
	return out
}
