package pool

import (
	"context"
	"sync"
)

// Group runs a related set of jobs on a Submitter and waits for all of them. The first job
// to fail cancels the context handed to the rest, and its error is the group's result.
// The pool's workers must keep running until Wait returns.
type Group struct {
	pool   Submitter
	ctx    context.Context
	cancel context.CancelFunc

	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

// NewGroup creates a group whose jobs run under a child of ctx.
func NewGroup(ctx context.Context, p Submitter) (*Group, context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	return &Group{pool: p, ctx: ctx, cancel: cancel}, ctx
}

// Go submits job. If the submit itself fails the group fails with that error.
func (g *Group) Go(job Job) {
	g.wg.Add(1)
	err := g.pool.SubmitCtx(g.ctx, func(context.Context) error {
		defer g.wg.Done()
		if err := g.ctx.Err(); err != nil {
			g.fail(err)
			return err
		}
		err := job(g.ctx)
		if err != nil {
			g.fail(err)
		}
		return err
	})
	if err != nil {
		g.wg.Done()
		g.fail(err)
	}
}

func (g *Group) fail(err error) {
	g.errOnce.Do(func() {
		g.err = err
		g.cancel()
	})
}

// Wait blocks until every submitted job returned and reports the first error.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.cancel()
	return g.err
}
