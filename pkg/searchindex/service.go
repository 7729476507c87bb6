package searchindex

import (
	"context"
	"log/slog"

	"github.com/japaniel/kanjigraph/pkg/entity"
	"github.com/japaniel/kanjigraph/pkg/query"
)

// Service answers free-text searches. It is handed its index handle explicitly; there is
// no package-level index.
type Service struct {
	Handle *Handle
	// Limit caps the result list. Zero means DefaultLimit.
	Limit int
	// Logger receives the rendered query at debug level. nil means slog.Default().
	Logger *slog.Logger
}

// NewService creates a Service over h.
func NewService(h *Handle) *Service {
	return &Service{Handle: h, Limit: DefaultLimit}
}

// Search builds the query for raw and runs it. A search issued before the index is loaded
// waits for the shared load. Input without searchable tokens yields an empty result.
func (s *Service) Search(ctx context.Context, raw string) ([]entity.Summary, error) {
	expr := query.Build(raw)
	s.logger().Debug("search", "input", raw, "query", expr.String())
	if expr.Empty() {
		return []entity.Summary{}, nil
	}
	idx, err := s.Handle.Get(ctx)
	if err != nil {
		return nil, err
	}
	limit := s.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return idx.SearchN(expr, limit), nil
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Ready reports whether the index has been loaded. It does not start the load.
func (s *Service) Ready() bool {
	return s.Handle.Ready()
}
