package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingRunner struct {
	runs atomic.Int64
	err  error
}

func (r *countingRunner) Run(context.Context) error {
	r.runs.Add(1)
	return r.err
}

func TestNotifier_RunsImmediatelyThenOnTicks(t *testing.T) {
	runner := &countingRunner{}
	n := NewNotifier(runner, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for runner.runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 runs, got %d", runner.runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
	assert.GreaterOrEqual(t, runner.runs.Load(), int64(3))
}

func TestNotifier_KeepsRunningAfterFailures(t *testing.T) {
	runner := &countingRunner{err: errors.New("connection refused")}
	n := NewNotifier(runner, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for runner.runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected the loop to survive failures, got %d runs", runner.runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestNotifier_StopsOnCancel(t *testing.T) {
	runner := &countingRunner{}
	n := NewNotifier(runner, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notifier did not stop on context cancel")
	}
	assert.EqualValues(t, 1, runner.runs.Load(), "only the immediate run should have happened")
}
