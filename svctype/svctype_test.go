package svctype

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/beacon/clog"
	"github.com/ceyewan/beacon/discovery"
)

func newDiscovery(t *testing.T, types ...discovery.Type) discovery.ServiceDiscovery {
	t.Helper()

	disc, err := discovery.New(&discovery.Config{Name: "svctype-test"},
		discovery.WithLogger(clog.Discard()),
		discovery.WithTypes(types...))
	require.NoError(t, err)
	t.Cleanup(func() { _ = disc.Close(context.Background()) })
	return disc
}

func TestHTTPRecordLocation(t *testing.T) {
	record := HTTPRecord("users", "api.local", 8080, "/v1", map[string]any{"zone": "a"})

	assert.Equal(t, TypeHTTPEndpoint, record.Type)
	assert.Equal(t, "http://api.local:8080/v1", record.Location["endpoint"])
	assert.Equal(t, false, record.Location["ssl"])
	assert.Equal(t, discovery.StatusUnknown, record.Status)

	secure := HTTPSRecord("users", "api.local", 8443, "", nil)
	assert.Equal(t, "https://api.local:8443", secure.Location["endpoint"])
	assert.Equal(t, true, secure.Location["ssl"])
}

func TestHTTPEndpointReference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong:"+r.URL.Path)
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	host := u.Hostname()
	port := u.Port()

	disc := newDiscovery(t, NewHTTPEndpoint())
	ctx := context.Background()

	record := discovery.NewRecord("ping", TypeHTTPEndpoint, map[string]any{
		"endpoint": "http://" + host + ":" + port,
	}, nil)
	stored, err := disc.Publish(ctx, record)
	require.NoError(t, err)

	ref, err := disc.GetReference(stored)
	require.NoError(t, err)
	defer ref.Release()

	obj, err := ref.Get(ctx)
	require.NoError(t, err)

	client, ok := obj.(*HTTPClient)
	require.True(t, ok)

	req, err := client.NewRequest(ctx, http.MethodGet, "/ping")
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong:/ping", string(body))
}

func TestHTTPEndpointBindingConfig(t *testing.T) {
	disc := newDiscovery(t, NewHTTPEndpoint())
	ctx := context.Background()

	stored, err := disc.Publish(ctx, HTTPRecord("users", "api.local", 8080, "", nil))
	require.NoError(t, err)

	ref, err := disc.GetReferenceWithConfig(stored, map[string]any{"timeout": "3s"})
	require.NoError(t, err)
	defer ref.Release()

	obj, err := ref.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, obj.(*HTTPClient).Timeout)
}

func TestHTTPEndpointInvalidLocation(t *testing.T) {
	disc := newDiscovery(t, NewHTTPEndpoint())
	ctx := context.Background()

	stored, err := disc.Publish(ctx, discovery.NewRecord("broken", TypeHTTPEndpoint,
		map[string]any{"host": "api.local"}, nil))
	require.NoError(t, err)

	ref, err := disc.GetReference(stored)
	require.NoError(t, err)

	_, err = ref.Get(ctx)
	assert.ErrorIs(t, err, discovery.ErrRetrievalFailed)
	assert.ErrorIs(t, err, ErrInvalidLocation)
}

func TestGRPCEndpointReference(t *testing.T) {
	disc := newDiscovery(t, NewGRPCEndpoint())
	ctx := context.Background()

	stored, err := disc.Publish(ctx, GRPCRecord("users", "127.0.0.1", 50051, nil))
	require.NoError(t, err)

	ref, err := disc.GetReference(stored)
	require.NoError(t, err)

	// grpc.NewClient 是惰性的，无需真实服务端即可构造连接对象
	obj, err := ref.Get(ctx)
	require.NoError(t, err)
	assert.NotNil(t, obj)

	ref.Release()
}

func TestMessageSourceRecordLocation(t *testing.T) {
	record := MessageSourceRecord("orders-events", "orders.created", nil)
	assert.Equal(t, TypeMessageSource, record.Type)
	assert.Equal(t, "orders.created", record.Location["subject"])
}

func TestRedisRecordLocation(t *testing.T) {
	record := RedisRecord("cache", "127.0.0.1:6379", 2, nil)
	assert.Equal(t, TypeRedisDataSource, record.Type)
	assert.Equal(t, "127.0.0.1:6379", record.Location["addr"])
	assert.Equal(t, 2, record.Location["db"])
}

func TestLocationHelpers(t *testing.T) {
	loc := map[string]any{"host": "a", "port": float64(8080), "empty": ""}

	s, err := locationString(loc, "host")
	require.NoError(t, err)
	assert.Equal(t, "a", s)

	_, err = locationString(loc, "missing")
	assert.ErrorIs(t, err, ErrInvalidLocation)
	_, err = locationString(loc, "empty")
	assert.ErrorIs(t, err, ErrInvalidLocation)

	// JSON 解码出的数字是 float64
	n, err := locationInt(loc, "port")
	require.NoError(t, err)
	assert.Equal(t, 8080, n)

	_, err = locationInt(loc, "host")
	assert.ErrorIs(t, err, ErrInvalidLocation)
}
