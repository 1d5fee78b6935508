package svctype

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ceyewan/beacon/discovery"
)

// HTTPClient HTTP 端点的服务对象
//
// 持有端点根地址与一个就绪的 http.Client，消费方用相对路径发请求。
type HTTPClient struct {
	*http.Client

	// Endpoint 端点根地址，如 "http://api.local:8080/v1"
	Endpoint string
}

// NewRequest 构造指向端点相对路径的请求
func (c *HTTPClient) NewRequest(ctx context.Context, method, path string) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, method, c.Endpoint+path, nil)
}

// HTTPRecord 构造一条 HTTP 端点记录
//
// root 是路径前缀，可以为空。
func HTTPRecord(name, host string, port int, root string, metadata map[string]any) discovery.Record {
	scheme := "http"
	return discovery.NewRecord(name, TypeHTTPEndpoint, map[string]any{
		"endpoint": fmt.Sprintf("%s://%s%s", scheme, hostPort(host, port), root),
		"host":     host,
		"port":     port,
		"root":     root,
		"ssl":      false,
	}, metadata)
}

// HTTPSRecord 构造一条启用 TLS 的 HTTP 端点记录
func HTTPSRecord(name, host string, port int, root string, metadata map[string]any) discovery.Record {
	return discovery.Record{
		Name:   name,
		Type:   TypeHTTPEndpoint,
		Status: discovery.StatusUnknown,
		Location: map[string]any{
			"endpoint": fmt.Sprintf("https://%s%s", hostPort(host, port), root),
			"host":     host,
			"port":     port,
			"root":     root,
			"ssl":      true,
		},
		Metadata: metadata,
	}
}

// httpEndpoint HTTP 端点类型
type httpEndpoint struct{}

// NewHTTPEndpoint 创建 HTTP 端点类型
func NewHTTPEndpoint() discovery.Type {
	return httpEndpoint{}
}

func (httpEndpoint) Name() string { return TypeHTTPEndpoint }

// NewReference 为 HTTP 端点记录创建引用
//
// 绑定期配置支持 "timeout"（time.Duration 字符串，如 "5s"），
// 作用于构造出的 http.Client。
func (httpEndpoint) NewReference(disc discovery.ServiceDiscovery, record discovery.Record, config map[string]any) (discovery.Reference, error) {
	fetch := func(ctx context.Context) (any, error) {
		endpoint, err := resolveEndpoint(record.Location)
		if err != nil {
			return nil, err
		}

		client := &http.Client{}
		if raw, ok := config["timeout"].(string); ok {
			timeout, err := time.ParseDuration(raw)
			if err != nil {
				return nil, err
			}
			client.Timeout = timeout
		}

		return &HTTPClient{Client: client, Endpoint: endpoint}, nil
	}

	close := func(obj any) error {
		if c, ok := obj.(*HTTPClient); ok {
			c.CloseIdleConnections()
		}
		return nil
	}

	return discovery.NewBaseReference(disc, record, fetch, close), nil
}

// resolveEndpoint 解析端点根地址
//
// 优先使用 "endpoint" 字段；缺失时由 host/port/root/ssl 拼接。
func resolveEndpoint(location map[string]any) (string, error) {
	if _, ok := location["endpoint"]; ok {
		return locationString(location, "endpoint")
	}

	host, err := locationString(location, "host")
	if err != nil {
		return "", err
	}
	port, err := locationInt(location, "port")
	if err != nil {
		return "", err
	}

	scheme := "http"
	if ssl, _ := location["ssl"].(bool); ssl {
		scheme = "https"
	}
	root, _ := location["root"].(string)
	return fmt.Sprintf("%s://%s%s", scheme, hostPort(host, port), root), nil
}
