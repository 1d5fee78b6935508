package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ceyewan/beacon/testkit"
)

func TestNATSBusPublishSubscribe(t *testing.T) {
	conn := testkit.GetNATSConnector(t)

	bus, err := New(&Config{Driver: DriverNATS}, WithNATSConnector(conn))
	require.NoError(t, err)
	defer bus.Close()

	ctx := context.Background()
	address := "beacon.test." + testkit.NewID()

	var mu sync.Mutex
	var received []string
	sub, err := bus.Subscribe(ctx, address, func(ctx context.Context, data []byte) error {
		mu.Lock()
		received = append(received, string(data))
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	require.True(t, sub.IsValid())

	require.NoError(t, bus.Publish(ctx, address, []byte("one")))
	require.NoError(t, bus.Publish(ctx, address, []byte("two")))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, 3*time.Second, 20*time.Millisecond)

	mu.Lock()
	require.Equal(t, []string{"one", "two"}, received)
	mu.Unlock()

	require.NoError(t, sub.Unsubscribe())
	require.False(t, sub.IsValid())
}

func TestNATSBusCrossInstance(t *testing.T) {
	conn := testkit.GetNATSConnector(t)

	busA, err := New(&Config{Driver: DriverNATS}, WithNATSConnector(conn))
	require.NoError(t, err)
	busB, err := New(&Config{Driver: DriverNATS}, WithNATSConnector(conn))
	require.NoError(t, err)

	ctx := context.Background()
	address := "beacon.test." + testkit.NewID()

	done := make(chan []byte, 1)
	_, err = busB.Subscribe(ctx, address, func(ctx context.Context, data []byte) error {
		done <- data
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, busA.Publish(ctx, address, []byte("cross")))

	select {
	case data := <-done:
		require.Equal(t, "cross", string(data))
	case <-time.After(3 * time.Second):
		t.Fatal("event did not cross bus instances")
	}
}
