package eventbus

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/ceyewan/beacon/clog"
	"github.com/ceyewan/beacon/connector"
	"github.com/ceyewan/beacon/xerrors"
)

// natsBus 基于 NATS Core 的事件总线
//
// Core 模式发后即忘，与组件的尽力而为广播语义一致。
// 连接由 Connector 管理，Close 不关闭底层连接。
type natsBus struct {
	conn   *nats.Conn
	logger clog.Logger
}

func newNATSBus(conn connector.NATSConnector, logger clog.Logger) (*natsBus, error) {
	client := conn.GetClient()
	if client == nil {
		return nil, xerrors.Wrap(ErrConnectorRequired, "nats connector not connected")
	}
	return &natsBus{
		conn:   client,
		logger: logger,
	}, nil
}

func (b *natsBus) Publish(ctx context.Context, address string, data []byte) error {
	if address == "" {
		return ErrEmptyAddress
	}
	if err := b.conn.Publish(address, data); err != nil {
		return xerrors.Wrapf(err, "publish to %s failed", address)
	}
	return nil
}

func (b *natsBus) Subscribe(ctx context.Context, address string, handler Handler) (Subscription, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}

	msgCtx := ctx
	if msgCtx == nil {
		msgCtx = context.Background()
	}

	sub, err := b.conn.Subscribe(address, func(msg *nats.Msg) {
		if err := handler(msgCtx, msg.Data); err != nil {
			b.logger.Error("event handler failed",
				clog.String("address", address),
				clog.Error(err))
		}
	})
	if err != nil {
		return nil, xerrors.Wrapf(err, "subscribe to %s failed", address)
	}
	return &natsSubscription{sub: sub}, nil
}

func (b *natsBus) Close() error {
	// 连接由 Connector 管理，不需要关闭
	return nil
}

type natsSubscription struct {
	sub *nats.Subscription
}

func (s *natsSubscription) Unsubscribe() error {
	return s.sub.Unsubscribe()
}

func (s *natsSubscription) IsValid() bool {
	return s.sub.IsValid()
}
