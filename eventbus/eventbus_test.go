package eventbus

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ceyewan/beacon/clog"
)

func testLogger() clog.Logger {
	return clog.Discard()
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		expectError bool
	}{
		{
			name:        "nil config (local)",
			cfg:         nil,
			expectError: false,
		},
		{
			name:        "local driver",
			cfg:         &Config{Driver: DriverLocal},
			expectError: false,
		},
		{
			name:        "nats driver without connector",
			cfg:         &Config{Driver: DriverNATS},
			expectError: true,
		},
		{
			name:        "unsupported driver",
			cfg:         &Config{Driver: "kafka"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus, err := New(tt.cfg)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, bus)
			require.NoError(t, bus.Close())
		})
	}
}

func TestLocalBusPublishSubscribe(t *testing.T) {
	bus := newLocalBus(testLogger())
	defer bus.Close()

	ctx := context.Background()
	var mu sync.Mutex
	var received [][]byte

	sub, err := bus.Subscribe(ctx, "test.address", func(ctx context.Context, data []byte) error {
		mu.Lock()
		received = append(received, data)
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	require.True(t, sub.IsValid())

	require.NoError(t, bus.Publish(ctx, "test.address", []byte("one")))
	require.NoError(t, bus.Publish(ctx, "test.address", []byte("two")))
	// 其他地址的事件不应到达
	require.NoError(t, bus.Publish(ctx, "other.address", []byte("three")))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	require.Equal(t, "one", string(received[0]))
	require.Equal(t, "two", string(received[1]))
}

func TestLocalBusUnsubscribe(t *testing.T) {
	bus := newLocalBus(testLogger())
	defer bus.Close()

	ctx := context.Background()
	count := 0
	sub, err := bus.Subscribe(ctx, "test.address", func(ctx context.Context, data []byte) error {
		count++
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, "test.address", []byte("one")))
	require.NoError(t, sub.Unsubscribe())
	require.False(t, sub.IsValid())
	require.NoError(t, bus.Publish(ctx, "test.address", []byte("two")))

	require.Equal(t, 1, count)
}

func TestLocalBusNoReplay(t *testing.T) {
	bus := newLocalBus(testLogger())
	defer bus.Close()

	ctx := context.Background()
	// 订阅前的事件永远不会被看到
	require.NoError(t, bus.Publish(ctx, "test.address", []byte("lost")))

	count := 0
	_, err := bus.Subscribe(ctx, "test.address", func(ctx context.Context, data []byte) error {
		count++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestLocalBusClosed(t *testing.T) {
	bus := newLocalBus(testLogger())
	require.NoError(t, bus.Close())

	ctx := context.Background()
	require.ErrorIs(t, bus.Publish(ctx, "a", nil), ErrBusClosed)
	_, err := bus.Subscribe(ctx, "a", func(ctx context.Context, data []byte) error { return nil })
	require.ErrorIs(t, err, ErrBusClosed)
}

func TestCodec(t *testing.T) {
	type payload struct {
		Name  string `json:"name" msgpack:"name"`
		Count int    `json:"count" msgpack:"count"`
	}

	for _, kind := range []string{"json", "msgpack", ""} {
		codec, err := NewCodec(kind)
		require.NoError(t, err, kind)

		in := payload{Name: "orders", Count: 3}
		data, err := codec.Marshal(in)
		require.NoError(t, err)

		var out payload
		require.NoError(t, codec.Unmarshal(data, &out))
		require.Equal(t, in, out)
	}

	_, err := NewCodec("protobuf")
	require.ErrorIs(t, err, ErrUnsupportedCodec)
}
