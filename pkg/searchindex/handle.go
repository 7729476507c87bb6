package searchindex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Source opens the serialized index blob.
type Source func(ctx context.Context) (io.ReadCloser, error)

// FileSource reads the blob from a local file.
func FileSource(path string) Source {
	return func(ctx context.Context) (io.ReadCloser, error) {
		return os.Open(path)
	}
}

// Handle is a lazily resolved, shared reference to the index. The first Get starts the one
// and only load; every caller that arrives before it completes waits on the same load.
// A failed load is terminal: all callers get the same error.
type Handle struct {
	source Source
	Logger *slog.Logger

	once sync.Once
	done chan struct{}
	idx  *Index
	err  error
}

// NewHandle creates an unresolved handle. Nothing is read until Start or Get.
func NewHandle(src Source) *Handle {
	return &Handle{source: src, done: make(chan struct{})}
}

// Start begins loading in the background if it has not started yet.
func (h *Handle) Start() {
	h.once.Do(func() {
		go h.load()
	})
}

func (h *Handle) load() {
	defer close(h.done)
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	// The load outlives any single caller; callers that give up just stop waiting.
	rc, err := h.source(context.Background())
	if err != nil {
		h.err = fmt.Errorf("open search index: %w", err)
		logger.Error("search index unavailable", "error", h.err)
		return
	}
	defer rc.Close()

	idx, err := Decode(rc)
	if err != nil {
		h.err = err
		logger.Error("search index unavailable", "error", err)
		return
	}
	h.idx = idx
	logger.Info("search index loaded", "documents", idx.Len(), "terms", len(idx.Terms), "elapsed", time.Since(start))
}

// Get returns the index, waiting for the load if needed. It returns ctx.Err() if ctx ends
// first; the load itself keeps going.
func (h *Handle) Get(ctx context.Context) (*Index, error) {
	h.Start()
	select {
	case <-h.done:
		return h.idx, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ready reports whether the load has finished successfully.
func (h *Handle) Ready() bool {
	select {
	case <-h.done:
		return h.err == nil
	default:
		return false
	}
}
