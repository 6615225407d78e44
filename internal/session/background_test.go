package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/metrics"
)

func TestBackgroundOverflowsThenDrops(t *testing.T) {
	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	b := NewBackground(1, 1, m)

	started := make(chan struct{})
	overflowed := make(chan struct{})
	release := make(chan struct{})
	var ran atomic.Int32

	if !b.Go("blocker", func(ctx context.Context) error {
		close(started)
		<-release
		ran.Add(1)
		return nil
	}) {
		t.Fatal("first task should be accepted")
	}
	<-started

	if !b.Go("queued", func(ctx context.Context) error { ran.Add(1); return nil }) {
		t.Fatal("second task should fit in the queue")
	}
	if !b.Go("overflow", func(ctx context.Context) error {
		close(overflowed)
		<-release
		ran.Add(1)
		return nil
	}) {
		t.Fatal("third task should run on an overflow goroutine")
	}
	// Runs while the only worker is still blocked.
	<-overflowed

	if b.Go("saturated", func(ctx context.Context) error { ran.Add(1); return nil }) {
		t.Fatal("fourth task should be dropped")
	}

	close(release)
	b.Close()

	if got := ran.Load(); got != 3 {
		t.Fatalf("tasks run = %d, want 3", got)
	}
	if b.Go("late", func(ctx context.Context) error { return nil }) {
		t.Fatal("closed pool must reject tasks")
	}
}

func TestBackgroundFailuresAreNotRetried(t *testing.T) {
	b := NewBackground(2, 4, nil)
	var calls atomic.Int32
	b.Go("failing", func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("store down")
	})
	b.Go("panicking", func(ctx context.Context) error {
		calls.Add(1)
		panic("boom")
	})
	b.Close()

	if got := calls.Load(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestBackgroundContextIsDetached(t *testing.T) {
	b := NewBackground(1, 1, nil)
	errc := make(chan error, 1)
	b.Go("ctx", func(ctx context.Context) error {
		errc <- ctx.Err()
		return nil
	})
	b.Close()
	if err := <-errc; err != nil {
		t.Fatalf("task context already done: %v", err)
	}
}

func TestRegistryCountsActors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	h := newHarness(t, 0)
	h.reg.cfg.Metrics = m
	h.initUser(t, "u1")
	h.initUser(t, "u2")

	if got := gaugeValue(t, reg, "wordle_session_actors"); got != 2 {
		t.Fatalf("actors gauge = %v, want 2", got)
	}
	h.reg.Close()
	if got := gaugeValue(t, reg, "wordle_session_actors"); got != 0 {
		t.Fatalf("actors gauge after close = %v, want 0", got)
	}
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
