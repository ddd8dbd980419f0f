package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSchedulerRunsRegisteredJobs(t *testing.T) {
	var runs int64
	s := New(zap.NewNop())
	s.Register("tick", 10*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt64(&runs, 1)
	})

	s.Start()
	time.Sleep(60 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, atomic.LoadInt64(&runs), int64(2))
}

func TestSchedulerStopCancelsJobContext(t *testing.T) {
	cancelled := make(chan struct{})
	s := New(zap.NewNop())
	s.Register("watch", 10*time.Millisecond, func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
	})

	s.Start()
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("job context was not cancelled")
	}
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	s := New(zap.NewNop())
	s.Stop()
}
