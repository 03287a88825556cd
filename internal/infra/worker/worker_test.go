package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeLeadSweeper struct {
	calls atomic.Int32
	ids   []string
	err   error
}

func (f *fakeLeadSweeper) SweepMissed(context.Context) ([]string, error) {
	f.calls.Add(1)
	return f.ids, f.err
}

type fakeSubscriptionSweeper struct {
	n   int64
	err error
}

func (f *fakeSubscriptionSweeper) ExpireLapsed(context.Context) (int64, error) {
	return f.n, f.err
}

func TestMissedLeadWorker_RunOnce(t *testing.T) {
	w := NewMissedLeadWorker(&fakeLeadSweeper{ids: []string{"a", "b"}}, time.Minute, discard)
	assert.Equal(t, 2, w.RunOnce(context.Background()))

	w = NewMissedLeadWorker(&fakeLeadSweeper{err: errors.New("db down")}, time.Minute, discard)
	assert.Zero(t, w.RunOnce(context.Background()))
}

func TestMissedLeadWorker_StartSweepsImmediatelyAndStops(t *testing.T) {
	sweeper := &fakeLeadSweeper{}
	w := NewMissedLeadWorker(sweeper, 10*time.Millisecond, discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestSubscriptionExpiryWorker_RunOnce(t *testing.T) {
	w := NewSubscriptionExpiryWorker(&fakeSubscriptionSweeper{n: 4}, time.Minute, discard)
	assert.Equal(t, int64(4), w.RunOnce(context.Background()))

	w = NewSubscriptionExpiryWorker(&fakeSubscriptionSweeper{err: errors.New("db down")}, time.Minute, discard)
	assert.Zero(t, w.RunOnce(context.Background()))
}
