package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one named recurring task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
}

// Scheduler drives the registered jobs on independent tickers. Start spawns
// one goroutine per job; Stop cancels them and waits for in-flight runs.
type Scheduler struct {
	jobs   []Job
	log    *zap.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(log *zap.Logger) *Scheduler {
	return &Scheduler{log: log}
}

// Register adds a named job. Must be called before Start.
func (s *Scheduler) Register(name string, interval time.Duration, run func(ctx context.Context)) {
	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Run: run})
}

func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	for _, job := range s.jobs {
		job := job
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.log.Info("job registered",
				zap.String("job", job.Name),
				zap.Duration("interval", job.Interval))
			ticker := time.NewTicker(job.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					s.log.Info("job stopped", zap.String("job", job.Name))
					return
				case <-ticker.C:
					job.Run(ctx)
				}
			}
		}()
	}
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
