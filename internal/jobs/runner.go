package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Spok95/school-healthcheck/internal/observability"
)

type Job func(ctx context.Context) error

type Runner struct {
	ctx context.Context
}

func New(ctx context.Context) *Runner { return &Runner{ctx: ctx} }

// Every запускает fn по тикеру до отмены контекста. Паника внутри
// задачи не валит процесс — уходит в Sentry и в счётчик ошибок.
func (r *Runner) Every(interval time.Duration, name string, fn Job) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				start := time.Now()
				if err := runSafe(r.ctx, name, fn); err != nil {
					jobErrors.WithLabelValues(name).Inc()
				}
				jobRuns.WithLabelValues(name).Inc()
				jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
			}
		}
	}()
}

func runSafe(ctx context.Context, name string, fn Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in job %s: %v", name, p)
			observability.CaptureErr(err)
		}
	}()
	return fn(ctx)
}
