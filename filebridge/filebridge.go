// Package filebridge 提供从 JSON 文件导入记录的桥接器。
//
// 文件内容是记录数组，每个元素携带 name/type/location/metadata。
// 桥接器启动时发布文件中的全部记录，之后通过 fsnotify 监听文件
// 变化并增量同步：新增的记录发布、内容变化的记录原地更新、
// 消失的记录撤销。停止时撤销自己导入的全部记录。
//
// 典型用途是把静态配置的外部服务（第三方 API、遗留系统）纳入
// 发现体系：
//
//	bridge := filebridge.New(&filebridge.Config{Path: "services.json"})
//	_ = disc.RegisterBridge(ctx, bridge, nil)
package filebridge

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/ceyewan/beacon/clog"
	"github.com/ceyewan/beacon/discovery"
	"github.com/ceyewan/beacon/xerrors"
)

// ErrPathRequired 缺少文件路径
var ErrPathRequired = xerrors.New("filebridge: path is required")

// Config 文件桥接器配置
type Config struct {
	// Path 监听的 JSON 文件路径
	Path string `mapstructure:"path" json:"path"`
}

// Option 桥接器选项
type Option func(*options)

type options struct {
	Logger clog.Logger
}

// WithLogger 注入日志器，自动添加 "filebridge" 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.Logger = logger.WithNamespace("filebridge")
		}
	}
}

// Bridge 文件导入桥接器，实现 discovery.Bridge
type Bridge struct {
	path   string
	logger clog.Logger

	publisher discovery.Publisher
	watcher   *fsnotify.Watcher
	done      chan struct{}
	wg        sync.WaitGroup

	mu       sync.Mutex
	imported map[string]discovery.Record // 身份键 -> 已发布的记录
}

// New 创建文件桥接器
func New(cfg *Config, opts ...Option) *Bridge {
	opt := options{}
	for _, o := range opts {
		o(&opt)
	}
	if opt.Logger == nil {
		opt.Logger = clog.Discard()
	}

	path := ""
	if cfg != nil {
		path = cfg.Path
	}
	return &Bridge{
		path:     path,
		logger:   opt.Logger,
		imported: make(map[string]discovery.Record),
	}
}

// Start 发布文件中的记录并开始监听变化
//
// 注册期配置中的 "path" 可覆盖创建时的路径。
func (b *Bridge) Start(ctx context.Context, publisher discovery.Publisher, config map[string]any) error {
	if p, ok := config["path"].(string); ok && p != "" {
		b.path = p
	}
	if b.path == "" {
		return ErrPathRequired
	}
	b.publisher = publisher

	if err := b.sync(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return xerrors.Wrap(err, "create watcher")
	}
	// 监听目录而不是文件本身，原子替换（写临时文件再改名）也能收到事件
	if err := watcher.Add(filepath.Dir(b.path)); err != nil {
		_ = watcher.Close()
		return xerrors.Wrap(err, "watch directory")
	}

	b.watcher = watcher
	b.done = make(chan struct{})
	b.wg.Add(1)
	go b.watch()

	b.logger.Info("file bridge started", clog.String("path", b.path))
	return nil
}

// Stop 停止监听并撤销导入的全部记录
func (b *Bridge) Stop(ctx context.Context) error {
	if b.done != nil {
		close(b.done)
		_ = b.watcher.Close()
		b.wg.Wait()
		b.done = nil
	}

	b.mu.Lock()
	imported := b.imported
	b.imported = make(map[string]discovery.Record)
	b.mu.Unlock()

	var collector xerrors.Collector
	for _, r := range imported {
		collector.Collect(b.publisher.Unpublish(ctx, r.Registration))
	}

	b.logger.Info("file bridge stopped", clog.String("path", b.path))
	return collector.Err()
}

func (b *Bridge) watch() {
	defer b.wg.Done()

	target := filepath.Clean(b.path)
	for {
		select {
		case <-b.done:
			return
		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := b.sync(context.Background()); err != nil {
				b.logger.Warn("resync failed", clog.Error(err))
			}
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			b.logger.Warn("watcher error", clog.Error(err))
		}
	}
}

// identity 文件内记录的身份键，同名同类型视为同一条
func identity(r discovery.Record) string {
	return r.Name + "\x00" + r.Type
}

// sync 把存储与文件内容对齐
func (b *Bridge) sync(ctx context.Context) error {
	desired, err := b.load()
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[string]bool, len(desired))
	var collector xerrors.Collector

	for _, r := range desired {
		key := identity(r)
		if seen[key] {
			b.logger.Warn("duplicate entry in file", clog.String("name", r.Name))
			continue
		}
		seen[key] = true

		existing, ok := b.imported[key]
		if !ok {
			stored, err := b.publisher.Publish(ctx, r)
			if err != nil {
				collector.Collect(err)
				continue
			}
			b.imported[key] = stored
			continue
		}

		if recordChanged(existing, r) {
			r.Registration = existing.Registration
			stored, err := b.publisher.Update(ctx, r)
			if err != nil {
				collector.Collect(err)
				continue
			}
			b.imported[key] = stored
		}
	}

	for key, r := range b.imported {
		if seen[key] {
			continue
		}
		if err := b.publisher.Unpublish(ctx, r.Registration); err != nil {
			collector.Collect(err)
			continue
		}
		delete(b.imported, key)
	}

	return collector.Err()
}

// recordChanged 判断文件条目与已发布记录是否存在实质差异
func recordChanged(existing, desired discovery.Record) bool {
	a, err1 := json.Marshal(map[string]any{"l": existing.Location, "m": existing.Metadata, "s": existing.Status})
	bb, err2 := json.Marshal(map[string]any{"l": desired.Location, "m": desired.Metadata, "s": desired.Status})
	if err1 != nil || err2 != nil {
		return true
	}
	return string(a) != string(bb)
}

// load 读取并解析记录文件
func (b *Bridge) load() ([]discovery.Record, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, xerrors.Wrap(err, "read records file")
	}

	var records []discovery.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, xerrors.Wrap(err, "parse records file")
	}

	out := records[:0]
	for _, r := range records {
		if r.Name == "" || r.Type == "" {
			b.logger.Warn("skip entry without name or type")
			continue
		}
		// 文件条目不允许自带 registration，由存储分配
		r.Registration = ""
		if r.Status == "" {
			r.Status = discovery.StatusUp
		}
		out = append(out, r)
	}
	return out, nil
}
