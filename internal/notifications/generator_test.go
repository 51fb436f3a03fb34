package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestGenerator_Tick(t *testing.T) {
	f := NewFeed()
	g := &Generator{Feed: f, Pick: func(int) int { return 3 }}
	g.Tick()
	require.Len(t, f.List(), 1)
	assert.Equal(t, "Warning: Server overload detected!", f.List()[0].Message)
}

func TestGenerator_StartStopDoesNotLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := NewFeed()
	g := &Generator{Feed: f, Interval: 5 * time.Millisecond}
	task, err := g.Start(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(f.List()) >= 2 }, 2*time.Second, 5*time.Millisecond)
	task.Stop()

	n := len(f.List())
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, f.List(), n, "generator keeps producing after Stop")
}
