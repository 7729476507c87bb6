package view

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/japaniel/kanjigraph/pkg/entity"
	"github.com/japaniel/kanjigraph/pkg/pool"
	"github.com/japaniel/kanjigraph/pkg/store"
)

// DefaultWorkers bounds the number of concurrent related-record fetches per load.
const DefaultWorkers = 16

// Assembler builds Views from a Store.
type Assembler struct {
	Store store.Store
	// Workers bounds concurrent fetches. Zero means DefaultWorkers.
	Workers int
	// Logger is used for load diagnostics. nil means slog.Default().
	Logger *slog.Logger

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) pool.Submitter
}

// NewAssembler creates an Assembler over s.
func NewAssembler(s store.Store) *Assembler {
	return &Assembler{Store: s, Workers: DefaultWorkers}
}

// ComponentView loads the View around a radical.
func (a *Assembler) ComponentView(ctx context.Context, id int64) (View, error) {
	return a.Load(ctx, entity.Radical, id)
}

// CharacterView loads the View around a kanji.
func (a *Assembler) CharacterView(ctx context.Context, id int64) (View, error) {
	return a.Load(ctx, entity.Kanji, id)
}

// WordView loads the View around a vocabulary item.
func (a *Assembler) WordView(ctx context.Context, id int64) (View, error) {
	return a.Load(ctx, entity.Vocabulary, id)
}

// Load fetches the focal record, checks that it is of type t, then fetches every record in the
// other two relation buckets concurrently. Any failed fetch fails the whole load with a
// *LoadError; nothing is retried.
func (a *Assembler) Load(ctx context.Context, t entity.Type, id int64) (View, error) {
	start := time.Now()
	focal, err := a.Store.Get(ctx, id)
	if err != nil {
		return View{}, &LoadError{FocalID: id, ID: id, Err: err}
	}
	if focal.Type != t {
		return View{}, &TypeMismatchError{ID: id, Want: t, Actual: focal.Type}
	}

	v := View{Focal: focal, Ordering: OrderingFor(t)}
	buckets := map[entity.Type][]entity.Entity{t: {focal}}

	type slot struct {
		bucket entity.Type
		index  int
		id     int64
	}
	var slots []slot
	for _, bt := range entity.Types {
		if bt == t {
			continue
		}
		ids := focal.Related.For(bt)
		buckets[bt] = make([]entity.Entity, len(ids))
		for i, rid := range ids {
			slots = append(slots, slot{bucket: bt, index: i, id: rid})
		}
	}

	if len(slots) > 0 {
		p := a.newPool(len(slots))
		// Workers outlive the caller's ctx so every queued job reports back to the group.
		p.Start(context.Background())
		g, _ := pool.NewGroup(ctx, p)
		for _, s := range slots {
			s := s
			dst := buckets[s.bucket]
			g.Go(func(ctx context.Context) error {
				e, err := a.Store.Get(ctx, s.id)
				if err != nil {
					return &LoadError{FocalID: id, ID: s.id, Err: err}
				}
				if e.Type != s.bucket {
					return &LoadError{FocalID: id, ID: s.id, Err: &TypeMismatchError{ID: s.id, Want: s.bucket, Actual: e.Type}}
				}
				dst[s.index] = e
				return nil
			})
		}
		err := g.Wait()
		p.Close()
		if err != nil {
			var le *LoadError
			if !errors.As(err, &le) {
				err = &LoadError{FocalID: id, ID: id, Err: err}
			}
			a.logger().Debug("view load failed", "type", t, "id", id, "error", err)
			return View{}, err
		}
	}

	v.Radicals = buckets[entity.Radical]
	v.Kanji = buckets[entity.Kanji]
	v.Vocabulary = buckets[entity.Vocabulary]
	a.logger().Debug("view loaded", "type", t, "id", id,
		"radicals", len(v.Radicals), "kanji", len(v.Kanji), "vocabulary", len(v.Vocabulary),
		"elapsed", time.Since(start))
	return v, nil
}

func (a *Assembler) newPool(jobs int) pool.Submitter {
	workers := a.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > jobs {
		workers = jobs
	}
	if a.PoolFactory != nil {
		return a.PoolFactory(workers, jobs)
	}
	return pool.NewWorkerPool(workers, jobs)
}

func (a *Assembler) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
