package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/beacon/discovery"
	"github.com/ceyewan/beacon/testkit"
)

func TestNewRequiresConnector(t *testing.T) {
	_, err := NewEtcd(nil, nil)
	assert.ErrorIs(t, err, ErrConnectorRequired)

	_, err = NewRedis(nil, nil)
	assert.ErrorIs(t, err, ErrConnectorRequired)
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.setDefaults()
	assert.Equal(t, "beacon/discovery", cfg.Namespace)

	cfg = &Config{Namespace: "custom"}
	cfg.setDefaults()
	assert.Equal(t, "custom", cfg.Namespace)
}

// newEtcdBackend 连接测试 Etcd，不可达时跳过
func newEtcdBackend(t *testing.T) discovery.Backend {
	t.Helper()

	conn := testkit.GetEtcdConnector(t)
	store, err := NewEtcd(conn, &Config{Namespace: "beacon-test/" + testkit.NewID()})
	require.NoError(t, err)
	return store
}

// newRedisBackend 连接测试 Redis，不可达时跳过
func newRedisBackend(t *testing.T) discovery.Backend {
	t.Helper()

	conn := testkit.GetRedisConnector(t)
	store, err := NewRedis(conn, &Config{Namespace: "beacon-test:" + testkit.NewID()})
	require.NoError(t, err)
	return store
}

func TestEtcdBackend(t *testing.T) {
	runBackendSuite(t, newEtcdBackend(t))
}

func TestRedisBackend(t *testing.T) {
	runBackendSuite(t, newRedisBackend(t))
}

// runBackendSuite 对任意后端实现跑同一组契约测试
func runBackendSuite(t *testing.T, store discovery.Backend) {
	ctx := context.Background()

	t.Run("store assigns registration", func(t *testing.T) {
		stored, err := store.Store(ctx, discovery.NewRecord("users", "http-endpoint",
			map[string]any{"endpoint": "http://a:8080"}, nil))
		require.NoError(t, err)
		assert.NotEmpty(t, stored.Registration)

		got, err := store.Get(ctx, stored.Registration)
		require.NoError(t, err)
		assert.Equal(t, "users", got.Name)
		assert.Equal(t, "http://a:8080", got.Location["endpoint"])
	})

	t.Run("store updates in place", func(t *testing.T) {
		stored, err := store.Store(ctx, discovery.NewRecord("orders", "http-endpoint", nil, nil))
		require.NoError(t, err)

		stored.Status = discovery.StatusDown
		updated, err := store.Store(ctx, stored)
		require.NoError(t, err)
		assert.Equal(t, stored.Registration, updated.Registration)

		got, err := store.Get(ctx, stored.Registration)
		require.NoError(t, err)
		assert.Equal(t, discovery.StatusDown, got.Status)
	})

	t.Run("query with predicate", func(t *testing.T) {
		records, err := store.Query(ctx, func(r discovery.Record) bool {
			return r.Name == "users"
		})
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("remove returns removed record", func(t *testing.T) {
		stored, err := store.Store(ctx, discovery.NewRecord("payments", "http-endpoint", nil, nil))
		require.NoError(t, err)

		removed, err := store.Remove(ctx, stored.Registration)
		require.NoError(t, err)
		assert.Equal(t, "payments", removed.Name)

		_, err = store.Get(ctx, stored.Registration)
		assert.ErrorIs(t, err, discovery.ErrRecordNotFound)

		_, err = store.Remove(ctx, stored.Registration)
		assert.ErrorIs(t, err, discovery.ErrRecordNotFound)
	})
}
