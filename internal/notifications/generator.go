package notifications

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/crucial707/mineops/internal/scheduler"
)

// Messages is the catalogue the generator picks from.
var Messages = []string{
	"New message received!",
	"System update completed.",
	"New comment on your post.",
	"Warning: Server overload detected!",
	"User X joined the system.",
	"Your password will expire soon.",
	"Critical error: Database connection lost.",
	"Maintenance scheduled for tomorrow.",
	"Low disk space on server.",
	"New friend request from John.",
}

// Generator pushes one message from Messages into a Feed per tick.
type Generator struct {
	Feed     *Feed
	Interval time.Duration
	// Pick chooses an index into Messages; nil means uniformly random.
	Pick func(n int) int
}

// Job returns the scheduler job for this generator so it can share a Task
// with other periodic work.
func (g *Generator) Job() scheduler.Job {
	return scheduler.Job{
		Name:  "notifications",
		Every: g.Interval,
		Run:   func(context.Context) { g.Tick() },
	}
}

// Start runs the generator on its own Task. The caller owns the Task and
// must Stop it on teardown.
func (g *Generator) Start(ctx context.Context) (*scheduler.Task, error) {
	return scheduler.Start(ctx, g.Job())
}

// Tick pushes a single message.
func (g *Generator) Tick() {
	pick := g.Pick
	if pick == nil {
		pick = rand.IntN
	}
	n := g.Feed.Push(Messages[pick(len(Messages))])
	slog.Debug("notification generated", "id", n.ID, "message", n.Message)
}
