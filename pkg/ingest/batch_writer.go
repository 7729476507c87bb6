package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// WriteFunc performs database writes inside the batch transaction.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// BatchStats counts what a BatchWriter has done so far.
type BatchStats struct {
	// Batches is the number of committed transactions.
	Batches int64
	// Committed is the number of writes inside committed transactions.
	Committed int64
	// Failed is the number of writes in batches that rolled back or were dropped.
	Failed int64
}

// BatchWriter buffers write operations and runs them in batches, one transaction per batch,
// on a single committer goroutine. A batch commits or rolls back as a whole.
type BatchWriter struct {
	db   *sql.DB
	size int

	// OnError is called with every failed or dropped batch.
	OnError func(error)
	// OnCommit is called after every committed batch with the number of writes in it.
	OnCommit func(n int)
	// Logger receives one debug line per batch. nil means slog.Default().
	Logger *slog.Logger

	mu     sync.Mutex
	buf    []WriteFunc
	closed bool

	batches chan []WriteFunc
	done    context.Context
	cancel  context.CancelFunc
	ticker  *time.Ticker
	wg      sync.WaitGroup

	errMu    sync.Mutex
	firstErr error

	nBatches   atomic.Int64
	nCommitted atomic.Int64
	nFailed    atomic.Int64
}

// NewBatchWriter starts a writer on db that flushes every size writes and, when interval is
// positive, every interval. A nil db runs the writes with a nil transaction.
func NewBatchWriter(db *sql.DB, size int, interval time.Duration) *BatchWriter {
	if size <= 0 {
		size = 10
	}
	done, cancel := context.WithCancel(context.Background())
	bw := &BatchWriter{
		db:      db,
		size:    size,
		buf:     make([]WriteFunc, 0, size),
		batches: make(chan []WriteFunc, 2),
		done:    done,
		cancel:  cancel,
	}

	bw.wg.Add(1)
	go bw.committer()

	if interval > 0 {
		bw.ticker = time.NewTicker(interval)
		bw.wg.Add(1)
		go bw.tick()
	}
	return bw
}

func (bw *BatchWriter) logger() *slog.Logger {
	if bw.Logger != nil {
		return bw.Logger
	}
	return slog.Default()
}

// Submit enqueues w. It blocks while the committer is two batches behind.
func (bw *BatchWriter) Submit(w WriteFunc) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.buf = append(bw.buf, w)
	if len(bw.buf) >= bw.size {
		bw.flushLocked()
	}
	return nil
}

// flushLocked hands the buffer to the committer. bw.mu must be held. After the writer is
// stopped the batch is dropped and reported instead.
func (bw *BatchWriter) flushLocked() {
	if len(bw.buf) == 0 {
		return
	}
	batch := bw.buf
	bw.buf = make([]WriteFunc, 0, bw.size)

	select {
	case bw.batches <- batch:
	case <-bw.done.Done():
		bw.nFailed.Add(int64(len(batch)))
		bw.fail(fmt.Errorf("batch writer: dropping batch of %d writes after shutdown", len(batch)))
	}
}

func (bw *BatchWriter) fail(err error) {
	bw.errMu.Lock()
	if bw.firstErr == nil {
		bw.firstErr = err
	}
	bw.errMu.Unlock()
	if bw.OnError != nil {
		bw.OnError(err)
	}
}

func (bw *BatchWriter) committer() {
	defer bw.wg.Done()
	for batch := range bw.batches {
		start := time.Now()
		if err := bw.commit(batch); err != nil {
			bw.nFailed.Add(int64(len(batch)))
			bw.fail(err)
			continue
		}
		bw.nBatches.Add(1)
		bw.nCommitted.Add(int64(len(batch)))
		bw.logger().Debug("batch committed", "writes", len(batch), "elapsed", time.Since(start))
		if bw.OnCommit != nil {
			bw.OnCommit(len(batch))
		}
	}
}

func (bw *BatchWriter) commit(batch []WriteFunc) error {
	// Batches already queued are still written while the writer shuts down.
	ctx := context.Background()

	if bw.db == nil {
		for _, w := range batch {
			if err := w(ctx, nil); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := bw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	for _, w := range batch {
		if err := w(ctx, tx); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch of %d writes: %w", len(batch), err)
	}
	return nil
}

func (bw *BatchWriter) tick() {
	defer bw.wg.Done()
	for {
		select {
		case <-bw.done.Done():
			return
		case <-bw.ticker.C:
			bw.mu.Lock()
			bw.flushLocked()
			bw.mu.Unlock()
		}
	}
}

// Stats returns the counters so far. After Close they are final.
func (bw *BatchWriter) Stats() BatchStats {
	return BatchStats{
		Batches:   bw.nBatches.Load(),
		Committed: bw.nCommitted.Load(),
		Failed:    bw.nFailed.Load(),
	}
}

// Committed returns the number of writes that are part of a committed batch.
func (bw *BatchWriter) Committed() int64 {
	return bw.nCommitted.Load()
}

// Close flushes what is buffered, waits for every queued batch and returns the first error
// seen by the writer, if any.
func (bw *BatchWriter) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	if bw.ticker != nil {
		bw.ticker.Stop()
	}
	bw.flushLocked()
	bw.mu.Unlock()

	bw.cancel()
	close(bw.batches)
	bw.wg.Wait()

	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.firstErr
}

// ErrBatchWriterClosed is returned by Submit and Close once the writer is closed.
var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

// BatchWriterError is the typed error of writer operations.
type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
