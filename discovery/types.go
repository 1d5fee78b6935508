package discovery

import (
	"sync"

	"github.com/ceyewan/beacon/xerrors"
)

// Type 服务类型契约
//
// 每个类型标签对应一个工厂，负责为该类型的记录创建引用。
// 具体服务对象的形态对核心完全不透明；新增类型只需实现本接口并
// 注册，无需改动核心。
type Type interface {
	// Name 返回类型标签，如 "http-endpoint"
	Name() string

	// NewReference 为一条记录创建引用
	//
	// config 是绑定期配置，由消费方在 GetReferenceWithConfig 时
	// 提供，可以为 nil。
	NewReference(disc ServiceDiscovery, record Record, config map[string]any) (Reference, error)
}

// typeRegistry 类型标签到工厂的映射，运行时可扩展
type typeRegistry struct {
	mu    sync.RWMutex
	types map[string]Type
}

func newTypeRegistry() *typeRegistry {
	return &typeRegistry{
		types: make(map[string]Type),
	}
}

// register 注册类型工厂，标签重复时失败
func (r *typeRegistry) register(t Type) error {
	if t == nil || t.Name() == "" {
		return ErrInvalidRecord
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[t.Name()]; exists {
		return xerrors.Wrapf(ErrDuplicateType, "type %q", t.Name())
	}
	r.types[t.Name()] = t
	return nil
}

// resolve 按标签查找工厂
func (r *typeRegistry) resolve(typeTag string) (Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[typeTag]
	if !ok {
		return nil, xerrors.Wrapf(ErrUnsupportedType, "type %q", typeTag)
	}
	return t, nil
}
