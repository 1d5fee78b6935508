// Package svctype 提供内置的服务类型实现。
//
// 每个服务类型把 Record.Location 解释为该类型的位置结构，并负责
// 服务对象的构造与销毁：
//   - http-endpoint：HTTP 服务，对象是 *HTTPClient；
//   - grpc-endpoint：gRPC 服务，对象是 *grpc.ClientConn；
//   - message-source：NATS 消息源，对象是 *MessageSource；
//   - redis-datasource：Redis 数据源，对象是 *redis.Client。
//
// 基本使用：
//
//	disc, _ := discovery.New(nil, discovery.WithTypes(
//		svctype.NewHTTPEndpoint(),
//		svctype.NewGRPCEndpoint(),
//	))
//
//	record, _ := disc.Publish(ctx, svctype.HTTPRecord("users", "api.local", 8080, "/v1", nil))
package svctype

import (
	"fmt"

	"github.com/ceyewan/beacon/xerrors"
)

// 内置类型标签
const (
	TypeHTTPEndpoint    = "http-endpoint"
	TypeGRPCEndpoint    = "grpc-endpoint"
	TypeMessageSource   = "message-source"
	TypeRedisDataSource = "redis-datasource"
)

// ErrInvalidLocation 记录的位置结构不符合类型要求
var ErrInvalidLocation = xerrors.New("svctype: invalid record location")

// locationString 从位置中取字符串字段
func locationString(location map[string]any, key string) (string, error) {
	v, ok := location[key]
	if !ok {
		return "", xerrors.Wrapf(ErrInvalidLocation, "missing %q", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", xerrors.Wrapf(ErrInvalidLocation, "%q must be a non-empty string", key)
	}
	return s, nil
}

// locationInt 从位置中取整数字段，兼容 JSON 解码出的 float64
func locationInt(location map[string]any, key string) (int, error) {
	v, ok := location[key]
	if !ok {
		return 0, xerrors.Wrapf(ErrInvalidLocation, "missing %q", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, xerrors.Wrapf(ErrInvalidLocation, "%q must be a number, got %T", key, v)
	}
}

func hostPort(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
