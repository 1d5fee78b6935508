package svctype

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ceyewan/beacon/discovery"
)

// GRPCRecord 构造一条 gRPC 端点记录
func GRPCRecord(name, host string, port int, metadata map[string]any) discovery.Record {
	return discovery.NewRecord(name, TypeGRPCEndpoint, map[string]any{
		"host": host,
		"port": port,
	}, metadata)
}

// grpcEndpoint gRPC 端点类型，服务对象是 *grpc.ClientConn
type grpcEndpoint struct {
	dialOpts []grpc.DialOption
}

// NewGRPCEndpoint 创建 gRPC 端点类型
//
// 未提供拨号选项时默认使用明文传输，生产环境应注入 TLS 凭据。
func NewGRPCEndpoint(dialOpts ...grpc.DialOption) discovery.Type {
	if len(dialOpts) == 0 {
		dialOpts = []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		}
	}
	return grpcEndpoint{dialOpts: dialOpts}
}

func (grpcEndpoint) Name() string { return TypeGRPCEndpoint }

func (t grpcEndpoint) NewReference(disc discovery.ServiceDiscovery, record discovery.Record, config map[string]any) (discovery.Reference, error) {
	fetch := func(ctx context.Context) (any, error) {
		host, err := locationString(record.Location, "host")
		if err != nil {
			return nil, err
		}
		port, err := locationInt(record.Location, "port")
		if err != nil {
			return nil, err
		}

		// grpc.NewClient 是惰性的，真正的连接在首次 RPC 时建立
		return grpc.NewClient(hostPort(host, port), t.dialOpts...)
	}

	close := func(obj any) error {
		if conn, ok := obj.(*grpc.ClientConn); ok {
			return conn.Close()
		}
		return nil
	}

	return discovery.NewBaseReference(disc, record, fetch, close), nil
}
