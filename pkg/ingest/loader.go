// Package ingest loads already-published entity records into local stores.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/japaniel/kanjigraph/pkg/db"
	"github.com/japaniel/kanjigraph/pkg/entity"
	"github.com/japaniel/kanjigraph/pkg/pool"
)

// Mirror receives every decoded record in addition to the database, e.g. a badger store.
type Mirror interface {
	Put(entities ...entity.Entity) error
}

// Stats summarises one load.
type Stats struct {
	Files   int
	Loaded  int64
	Skipped int64
	ByType  map[entity.Type]int64
	Elapsed time.Duration
}

// Loader reads a directory laid out as {id}.json and writes every record to the entities
// table. Decoding runs on a worker pool; writes are batched into transactions.
type Loader struct {
	DB        *sql.DB
	BatchSize int
	Workers   int
	// SkipInvalid logs and skips records that fail to decode instead of failing the load.
	SkipInvalid bool
	Mirror      Mirror
	// Logger is used for informational messages. nil means slog.Default().
	Logger *slog.Logger
	// OnProgress is called after every committed batch with the number of records stored so
	// far. It runs on the writer's goroutine.
	OnProgress func(current, total int)

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) pool.Submitter
}

// NewLoader creates a Loader writing to conn.
func NewLoader(conn *sql.DB) *Loader {
	return &Loader{
		DB:        conn,
		BatchSize: 200,
		Workers:   4,
	}
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// RecordFiles lists the {id}.json files in dir, sorted by id. A data/ subdirectory is used
// when present, matching the published layout.
func RecordFiles(dir string) ([]string, error) {
	if fi, err := os.Stat(filepath.Join(dir, "data")); err == nil && fi.IsDir() {
		dir = filepath.Join(dir, "data")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	type file struct {
		id   int64
		path string
	}
	var files []file
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(e.Name(), ".json"), 10, 64)
		if err != nil {
			continue
		}
		files = append(files, file{id: id, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].id < files[j].id })
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.path
	}
	return out, nil
}

// LoadDir loads every record file in dir.
func (l *Loader) LoadDir(ctx context.Context, dir string) (Stats, error) {
	files, err := RecordFiles(dir)
	if err != nil {
		return Stats{}, err
	}
	return l.Load(ctx, files)
}

type decoded struct {
	path string
	e    entity.Entity
	err  error
}

// Load decodes and stores the given record files.
func (l *Loader) Load(ctx context.Context, files []string) (Stats, error) {
	start := time.Now()
	stats := Stats{Files: len(files), ByType: make(map[entity.Type]int64)}
	if len(files) == 0 {
		return stats, nil
	}

	workers := l.Workers
	if workers <= 0 {
		workers = 1
	}
	var wp pool.Submitter
	if l.PoolFactory != nil {
		wp = l.PoolFactory(workers, workers*2)
	} else {
		wp = pool.NewWorkerPool(workers, workers*2)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan decoded, workers*2)

	bw := NewBatchWriter(l.DB, l.BatchSize, 100*time.Millisecond)
	bw.Logger = l.Logger
	// Writes of a batch append their types to pending and OnCommit counts the last n. Both run
	// on the writer's goroutine; entries left by a rolled-back batch are discarded.
	var pending []entity.Type
	var committed int64
	bw.OnCommit = func(n int) {
		for _, t := range pending[len(pending)-n:] {
			stats.ByType[t]++
		}
		pending = pending[:0]
		committed += int64(n)
		if l.OnProgress != nil {
			l.OnProgress(int(committed), len(files))
		}
	}
	var batchErr error
	var batchErrMu sync.Mutex
	bw.OnError = func(e error) {
		batchErrMu.Lock()
		if batchErr == nil {
			batchErr = e
		}
		batchErrMu.Unlock()
		cancel()
	}

	var skipped int64

	// Consumer: hand decoded records to the batch writer and the mirror.
	doneCh := make(chan error, 1)
	go func() {
		defer close(doneCh)
		var mirrorBuf []entity.Entity
		flushMirror := func() error {
			if l.Mirror == nil || len(mirrorBuf) == 0 {
				return nil
			}
			err := l.Mirror.Put(mirrorBuf...)
			mirrorBuf = mirrorBuf[:0]
			return err
		}
		for res := range results {
			if res.err != nil {
				if !l.SkipInvalid {
					cancel()
					doneCh <- res.err
					return
				}
				atomic.AddInt64(&skipped, 1)
				l.logger().Warn("skipping record", "path", res.path, "error", res.err)
				continue
			}
			e := res.e
			if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
				if err := db.UpsertEntity(tx, e); err != nil {
					return err
				}
				pending = append(pending, e.Type)
				return nil
			}); err != nil {
				cancel()
				doneCh <- err
				return
			}
			if l.Mirror != nil {
				mirrorBuf = append(mirrorBuf, e)
				if len(mirrorBuf) >= l.batchSize() {
					if err := flushMirror(); err != nil {
						cancel()
						doneCh <- fmt.Errorf("mirror records: %w", err)
						return
					}
				}
			}
		}
		if err := flushMirror(); err != nil {
			doneCh <- fmt.Errorf("mirror records: %w", err)
			return
		}
		doneCh <- nil
	}()

	wp.Start(ctx)

	// Producer: one decode job per file.
	var producerErr error
Loop:
	for _, path := range files {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}
		path := path
		job := func(ctx context.Context) error {
			res := decodeFile(path)
			select {
			case results <- res:
			case <-ctx.Done():
			}
			return nil
		}
		if err := wp.SubmitCtx(ctx, job); err != nil {
			if errors.Is(err, ctx.Err()) || errors.Is(err, pool.ErrPoolClosed) {
				break Loop
			}
			producerErr = err
			cancel()
			break Loop
		}
	}

	// Close drains the queue unless ctx was cancelled; either way no worker sends afterwards.
	wp.Close()
	close(results)

	consumerErr := <-doneCh
	if err := bw.Close(); err != nil && consumerErr == nil {
		consumerErr = err
	}
	batchErrMu.Lock()
	if batchErr != nil && consumerErr == nil {
		consumerErr = batchErr
	}
	batchErrMu.Unlock()
	if consumerErr == nil {
		consumerErr = producerErr
	}
	if consumerErr == nil {
		consumerErr = ctx.Err()
	}

	stats.Loaded = bw.Committed()
	stats.Skipped = atomic.LoadInt64(&skipped)
	stats.Elapsed = time.Since(start)
	l.logger().Info("records loaded", "files", stats.Files, "loaded", stats.Loaded,
		"skipped", stats.Skipped, "elapsed", stats.Elapsed)
	return stats, consumerErr
}

func (l *Loader) batchSize() int {
	if l.BatchSize <= 0 {
		return 10
	}
	return l.BatchSize
}

// decodeFile reads one record and checks that it carries the id its file name promises.
func decodeFile(path string) decoded {
	raw, err := os.ReadFile(path)
	if err != nil {
		return decoded{path: path, err: fmt.Errorf("read %s: %w", path, err)}
	}
	e, err := entity.Decode(raw)
	if err != nil {
		return decoded{path: path, err: fmt.Errorf("%s: %w", filepath.Base(path), err)}
	}
	if want, err := strconv.ParseInt(strings.TrimSuffix(filepath.Base(path), ".json"), 10, 64); err == nil && want != e.ID {
		return decoded{path: path, err: fmt.Errorf("%s: record carries id %d", filepath.Base(path), e.ID)}
	}
	return decoded{path: path, e: e}
}
