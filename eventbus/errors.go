package eventbus

import "github.com/ceyewan/beacon/xerrors"

var (
	// ErrUnsupportedDriver 不支持的驱动类型
	ErrUnsupportedDriver = xerrors.New("eventbus: unsupported driver")

	// ErrConnectorRequired NATS 驱动需要注入连接器
	ErrConnectorRequired = xerrors.New("eventbus: nats connector is required, use WithNATSConnector")

	// ErrBusClosed 总线已关闭
	ErrBusClosed = xerrors.New("eventbus: bus is closed")

	// ErrEmptyAddress 地址为空
	ErrEmptyAddress = xerrors.New("eventbus: address is empty")
)
