package discovery

import "github.com/ceyewan/beacon/xerrors"

var (
	// ErrStoreUnavailable 存储后端不可达
	ErrStoreUnavailable = xerrors.New("discovery: store unavailable")

	// ErrRecordNotFound 记录不存在
	ErrRecordNotFound = xerrors.New("discovery: record not found")

	// ErrInvalidRecord 无效的记录（缺少名称等必填字段）
	ErrInvalidRecord = xerrors.New("discovery: invalid record")

	// ErrMissingRegistration 记录缺少 registration 标识
	ErrMissingRegistration = xerrors.New("discovery: record has no registration")

	// ErrUnsupportedType 未注册的服务类型
	ErrUnsupportedType = xerrors.New("discovery: unsupported service type")

	// ErrDuplicateType 服务类型标签已被占用
	ErrDuplicateType = xerrors.New("discovery: service type already registered")

	// ErrRetrievalFailed 服务对象构造失败，引用仍可重试
	ErrRetrievalFailed = xerrors.New("discovery: service object retrieval failed")

	// ErrBridgeStartFailed 桥接器启动失败
	ErrBridgeStartFailed = xerrors.New("discovery: bridge start failed")

	// ErrBridgeStopFailed 桥接器停止失败（记录日志，不中断会话关闭）
	ErrBridgeStopFailed = xerrors.New("discovery: bridge stop failed")

	// ErrDiscoveryClosed 会话已关闭
	ErrDiscoveryClosed = xerrors.New("discovery: discovery is closed")
)
