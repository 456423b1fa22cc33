package game

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukinoo0/Blazefield/internal/protocol"
)

func TestScheduler_BroadcastsUntilCancelled(t *testing.T) {
	e := newTestEngine(Options{})
	conn := &fakeConn{}
	e.Connect(conn)

	ctx, cancel := context.WithCancel(context.Background())
	scheduler := NewScheduler(e, 5*time.Millisecond, 5*time.Millisecond, zerolog.Nop())

	done := make(chan error, 1)
	go func() { done <- scheduler.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return len(received[protocol.Snapshot](conn)) >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_SurvivesPanickingTick(t *testing.T) {
	scheduler := NewScheduler(nil, time.Millisecond, time.Millisecond, zerolog.Nop())

	assert.NotPanics(t, func() {
		scheduler.safeTick("test", time.Millisecond, func(time.Duration) { panic("boom") })
	})
}
