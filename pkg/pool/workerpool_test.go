package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolRunsJobs(t *testing.T) {
	p := NewWorkerPool(4, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	var ran int32
	jobs := 100
	for i := 0; i < jobs; i++ {
		err := p.Submit(func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		})
		require.NoError(t, err)
	}
	// close and wait
	p.Close()

	assert.Equal(t, int32(jobs), atomic.LoadInt32(&ran))
}

func TestSubmitAfterClose(t *testing.T) {
	p := NewWorkerPool(1, 2)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	p.Close()
	cancel()
	err := p.Submit(func(ctx context.Context) error { return nil })
	assert.Same(t, ErrPoolClosed, err)
}

func TestSubmitRecoversFromCloseRace(t *testing.T) {
	p := NewWorkerPool(1, 1)
	// no workers: the second Submit blocks on the full queue
	require.NoError(t, p.Submit(func(ctx context.Context) error { return nil }))

	done := make(chan error, 1)
	go func() {
		done <- p.Submit(func(ctx context.Context) error { return nil })
	}()
	time.Sleep(10 * time.Millisecond)

	p.Close()

	select {
	case err := <-done:
		assert.Same(t, ErrPoolClosed, err)
	case <-time.After(time.Second):
		t.Fatal("blocked Submit did not return after Close")
	}
}

func TestSubmitCtxGivesUp(t *testing.T) {
	p := NewWorkerPool(1, 1)
	require.NoError(t, p.Submit(func(ctx context.Context) error { return nil }))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := p.SubmitCtx(ctx, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	p.Close()
}

func TestContextCancellationStopsWorkers(t *testing.T) {
	p := NewWorkerPool(2, 16)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	cancel()
	done := make(chan struct{}, 1)
	go func() {
		p.Close()
		done <- struct{}{}
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("Close blocked after context cancellation")
	}
}

func TestGroupRunsConcurrently(t *testing.T) {
	p := NewWorkerPool(3, 3)
	p.Start(context.Background())
	defer p.Close()

	g, _ := NewGroup(context.Background(), p)
	start := time.Now()
	for i := 0; i < 3; i++ {
		g.Go(func(ctx context.Context) error {
			time.Sleep(50 * time.Millisecond)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Less(t, time.Since(start), 140*time.Millisecond)
}

func TestGroupFirstErrorCancelsRest(t *testing.T) {
	p := NewWorkerPool(4, 8)
	p.Start(context.Background())
	defer p.Close()

	boom := errors.New("boom")
	var cancelled int32
	started := make(chan struct{}, 3)
	g, _ := NewGroup(context.Background(), p)
	for i := 0; i < 3; i++ {
		g.Go(func(ctx context.Context) error {
			started <- struct{}{}
			select {
			case <-ctx.Done():
				atomic.AddInt32(&cancelled, 1)
				return ctx.Err()
			case <-time.After(time.Second):
				return nil
			}
		})
	}
	for i := 0; i < 3; i++ {
		<-started
	}
	g.Go(func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, g.Wait(), boom)
	assert.Equal(t, int32(3), atomic.LoadInt32(&cancelled))
}

type failingPool struct{}

func (failingPool) Start(ctx context.Context) {}
func (failingPool) Submit(job Job) error      { return errors.New("submit failed") }
func (failingPool) SubmitCtx(ctx context.Context, job Job) error {
	return errors.New("submit failed")
}
func (failingPool) Close() {}

func TestGroupSubmitError(t *testing.T) {
	g, _ := NewGroup(context.Background(), failingPool{})
	g.Go(func(ctx context.Context) error { return nil })
	assert.EqualError(t, g.Wait(), "submit failed")
}
