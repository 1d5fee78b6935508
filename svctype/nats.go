package svctype

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/ceyewan/beacon/connector"
	"github.com/ceyewan/beacon/discovery"
	"github.com/ceyewan/beacon/xerrors"
)

// MessageSource 消息源的服务对象
//
// 持有借来的 NATS 连接与记录声明的主题，消费方通过 Subscribe
// 订阅该主题。连接归应用层所有，对象销毁时只取消订阅。
type MessageSource struct {
	conn    *nats.Conn
	subject string

	subs []*nats.Subscription
}

// Subject 返回消息源的主题
func (s *MessageSource) Subject() string { return s.subject }

// Subscribe 订阅消息源
func (s *MessageSource) Subscribe(handler nats.MsgHandler) (*nats.Subscription, error) {
	sub, err := s.conn.Subscribe(s.subject, handler)
	if err != nil {
		return nil, err
	}
	s.subs = append(s.subs, sub)
	return sub, nil
}

// close 取消本对象创建的全部订阅
func (s *MessageSource) close() error {
	var collector xerrors.Collector
	for _, sub := range s.subs {
		if sub.IsValid() {
			collector.Collect(sub.Unsubscribe())
		}
	}
	s.subs = nil
	return collector.Err()
}

// MessageSourceRecord 构造一条消息源记录
func MessageSourceRecord(name, subject string, metadata map[string]any) discovery.Record {
	return discovery.NewRecord(name, TypeMessageSource, map[string]any{
		"subject": subject,
	}, metadata)
}

// messageSource 消息源类型
//
// 类型持有 NATS 连接器（借用模型），所有该类型的服务对象共享
// 同一条连接。
type messageSource struct {
	conn connector.NATSConnector
}

// NewMessageSource 创建消息源类型
//
// 连接器由调用方负责 Connect 与 Close。
func NewMessageSource(conn connector.NATSConnector) discovery.Type {
	return &messageSource{conn: conn}
}

func (*messageSource) Name() string { return TypeMessageSource }

func (t *messageSource) NewReference(disc discovery.ServiceDiscovery, record discovery.Record, config map[string]any) (discovery.Reference, error) {
	fetch := func(ctx context.Context) (any, error) {
		subject, err := locationString(record.Location, "subject")
		if err != nil {
			return nil, err
		}

		client := t.conn.GetClient()
		if client == nil {
			return nil, connector.ErrNotConnected
		}
		return &MessageSource{conn: client, subject: subject}, nil
	}

	close := func(obj any) error {
		if s, ok := obj.(*MessageSource); ok {
			return s.close()
		}
		return nil
	}

	return discovery.NewBaseReference(disc, record, fetch, close), nil
}
