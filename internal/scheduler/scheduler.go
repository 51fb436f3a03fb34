package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/crucial707/mineops/internal/metrics"
	"github.com/robfig/cron/v3"
)

// Job is one periodic unit of work. Exactly one of Spec (a cron expression
// such as "0 3 * * *" or "@hourly") or Every must be set.
type Job struct {
	Name  string
	Spec  string
	Every time.Duration
	Run   func(ctx context.Context)
}

// Task is the handle of a running set of jobs. The owner must call Stop when
// the view or process that started it is torn down.
type Task struct {
	cron    *cron.Cron
	cancel  context.CancelFunc
	once    sync.Once
	entries map[string]cron.EntryID
}

// Start schedules jobs and starts the timer loop. Each run receives a context
// that is cancelled by Stop or by the parent ctx.
func Start(ctx context.Context, jobs ...Job) (*Task, error) {
	log := cronLogger{}
	c := cron.New(cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)), cron.WithLogger(log))
	runCtx, cancel := context.WithCancel(ctx)

	t := &Task{cron: c, cancel: cancel, entries: make(map[string]cron.EntryID)}
	for _, j := range jobs {
		if j.Run == nil {
			cancel()
			return nil, fmt.Errorf("scheduler: job %q has no Run func", j.Name)
		}
		if _, dup := t.entries[j.Name]; dup {
			cancel()
			return nil, fmt.Errorf("scheduler: duplicate job name %q", j.Name)
		}
		if j.Every > 0 && j.Spec != "" {
			cancel()
			return nil, fmt.Errorf("scheduler: job %q sets both Spec and Every", j.Name)
		}
		job := j
		fn := cron.FuncJob(func() {
			if runCtx.Err() != nil {
				return
			}
			job.Run(runCtx)
			metrics.IncJobRuns(job.Name)
		})

		switch {
		case job.Every > 0:
			t.entries[job.Name] = c.Schedule(every(job.Every), fn)
		case job.Spec != "":
			id, err := c.AddJob(job.Spec, fn)
			if err != nil {
				cancel()
				return nil, fmt.Errorf("scheduler: invalid spec %q for job %q: %w", job.Spec, job.Name, err)
			}
			t.entries[job.Name] = id
		default:
			cancel()
			return nil, errors.New("scheduler: job " + job.Name + " needs Spec or Every")
		}
		slog.Info("scheduler: added job", "job", job.Name, "spec", job.Spec, "every", job.Every)
	}

	c.Start()
	return t, nil
}

// Next reports when the named job runs next.
func (t *Task) Next(name string) (time.Time, bool) {
	id, ok := t.entries[name]
	if !ok {
		return time.Time{}, false
	}
	return t.cron.Entry(id).Next, true
}

// Stop cancels the run context, stops the timer loop and waits for jobs that
// are still running. It is safe to call more than once.
func (t *Task) Stop() {
	t.once.Do(func() {
		t.cancel()
		<-t.cron.Stop().Done()
		slog.Info("scheduler: stopped", "jobs", len(t.entries))
	})
}

// every is a fixed-interval schedule. cron's own @every rounds up to whole
// seconds; this one does not.
type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

// cronLogger forwards cron's internal log lines to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append([]interface{}{"err", err}, keysAndValues...)...)
}
