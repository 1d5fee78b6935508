package discovery

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/beacon/clog"
	"github.com/ceyewan/beacon/xerrors"
)

func TestReferenceUsageCounting(t *testing.T) {
	var fetches, closes atomic.Int32

	disc := newTestDiscovery(t, WithTypes(&fakeType{
		name: "counted",
		fetchFn: func(ctx context.Context) (any, error) {
			fetches.Add(1)
			return "service-object", nil
		},
		closeFn: func(obj any) error {
			closes.Add(1)
			return nil
		},
	}))

	ref, err := disc.GetReference(Record{Registration: "r1", Name: "x", Type: "counted"})
	require.NoError(t, err)
	ctx := context.Background()

	obj1, err := ref.Get(ctx)
	require.NoError(t, err)
	obj2, err := ref.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, obj1, obj2)
	assert.Equal(t, int32(1), fetches.Load(), "object is constructed once and shared")

	ref.Release()
	assert.Equal(t, int32(0), closes.Load(), "object survives while usages remain")

	ref.Release()
	assert.Equal(t, int32(1), closes.Load(), "object torn down when count reaches zero")

	// 多余的 Release 是空操作
	ref.Release()
	assert.Equal(t, int32(1), closes.Load())
}

func TestReferenceRetryAfterFetchFailure(t *testing.T) {
	var attempts atomic.Int32

	disc := newTestDiscovery(t, WithTypes(&fakeType{
		name: "flaky",
		fetchFn: func(ctx context.Context) (any, error) {
			if attempts.Add(1) == 1 {
				return nil, xerrors.New("connection refused")
			}
			return "service-object", nil
		},
	}))

	ref, err := disc.GetReference(Record{Registration: "r1", Name: "x", Type: "flaky"})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = ref.Get(ctx)
	assert.ErrorIs(t, err, ErrRetrievalFailed)

	// 失败不消耗引用，重试可以成功
	obj, err := ref.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "service-object", obj)
}

func TestReferenceEmitsUsageEvents(t *testing.T) {
	disc := newTestDiscovery(t, WithTypes(&fakeType{name: "fake"}))
	events := captureEvents(t, disc, "beacon.discovery.usage")

	ref, err := disc.GetReference(Record{Registration: "r1", Name: "x", Type: "fake"})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = ref.Get(ctx)
	require.NoError(t, err)
	_, err = ref.Get(ctx)
	require.NoError(t, err)
	ref.Release()
	ref.Release()

	require.Eventually(t, func() bool { return len(events()) == 4 }, time.Second, 10*time.Millisecond)
	got := events()
	assert.Equal(t, EventBind, got[0].Kind)
	assert.Equal(t, EventBind, got[1].Kind)
	assert.Equal(t, EventRelease, got[2].Kind)
	assert.Equal(t, EventRelease, got[3].Kind)
	assert.Equal(t, "r1", got[0].Record.Registration)
}

func TestReferenceConcurrentRelease(t *testing.T) {
	var closes atomic.Int32

	disc := newTestDiscovery(t, WithTypes(&fakeType{
		name:    "fake",
		closeFn: func(obj any) error { closes.Add(1); return nil },
	}))

	ref, err := disc.GetReference(Record{Registration: "r1", Name: "x", Type: "fake"})
	require.NoError(t, err)
	ctx := context.Background()

	const n = 16
	for i := 0; i < n; i++ {
		_, err := ref.Get(ctx)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref.Release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), closes.Load(), "teardown runs exactly once")
}

func TestCloseForcesReferenceRelease(t *testing.T) {
	var closes atomic.Int32

	disc, err := New(&Config{Name: "test"},
		WithLogger(clog.Discard()),
		WithTypes(&fakeType{
			name:    "fake",
			closeFn: func(obj any) error { closes.Add(1); return nil },
		}))
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := disc.GetReference(Record{Registration: "r1", Name: "x", Type: "fake"})
	require.NoError(t, err)
	_, err = ref.Get(ctx)
	require.NoError(t, err)
	_, err = ref.Get(ctx)
	require.NoError(t, err)

	// 未释放的引用在会话关闭时被强制释放
	require.NoError(t, disc.Close(ctx))
	assert.Equal(t, int32(1), closes.Load())
}

func TestReferenceRecordSnapshot(t *testing.T) {
	disc := newTestDiscovery(t, WithTypes(&fakeType{name: "fake"}))
	ctx := context.Background()

	stored, err := disc.Publish(ctx, NewRecord("users", "fake",
		map[string]any{"endpoint": "http://a:8080"}, nil))
	require.NoError(t, err)

	ref, err := disc.GetReference(stored)
	require.NoError(t, err)

	// 绑定后记录被撤销，引用仍持有绑定时的快照
	require.NoError(t, disc.Unpublish(ctx, stored.Registration))
	snapshot := ref.Record()
	assert.Equal(t, stored.Registration, snapshot.Registration)
	assert.Equal(t, "http://a:8080", snapshot.Location["endpoint"])
}
