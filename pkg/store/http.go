package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/japaniel/kanjigraph/pkg/entity"
)

// DefaultMaxRecordBytes caps the size of a single record body.
const DefaultMaxRecordBytes = 4 << 20

// BreakerSettings configures the circuit breaker in front of an HTTPStore.
type BreakerSettings struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	ReadyToTripRatio float64       `mapstructure:"ready_to_trip_ratio"`
}

// HTTPStore fetches records laid out as {BaseURL}/data/{id}.json.
type HTTPStore struct {
	BaseURL  string
	Client   *http.Client
	MaxBytes int64
	Logger   *slog.Logger

	cb *gobreaker.CircuitBreaker
}

// NewHTTPStore creates a store rooted at baseURL. With breaker enabled, repeated transport or
// server failures open the circuit and later calls fail fast until it half-opens again.
func NewHTTPStore(baseURL string, client *http.Client, breaker BreakerSettings, logger *slog.Logger) *HTTPStore {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &HTTPStore{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Client:   client,
		MaxBytes: DefaultMaxRecordBytes,
		Logger:   logger,
	}
	if breaker.Enabled {
		ratio := breaker.ReadyToTripRatio
		if ratio <= 0 {
			ratio = 0.6
		}
		s.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "entity-store",
			MaxRequests: breaker.MaxRequests,
			Interval:    breaker.Interval,
			Timeout:     breaker.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= ratio
			},
			// A missing record or an abandoned request says nothing about the backend's health.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		})
	}
	return s
}

// URL returns the record URL for id.
func (s *HTTPStore) URL(id int64) string {
	return fmt.Sprintf("%s/data/%d.json", s.BaseURL, id)
}

// Get implements Store.
func (s *HTTPStore) Get(ctx context.Context, id int64) (entity.Entity, error) {
	if s.cb == nil {
		return s.fetch(ctx, id)
	}
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.fetch(ctx, id)
	})
	if err != nil {
		return entity.Entity{}, err
	}
	return v.(entity.Entity), nil
}

func (s *HTTPStore) fetch(ctx context.Context, id int64) (entity.Entity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(id), nil)
	if err != nil {
		return entity.Entity{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "kanjigraph")

	resp, err := s.Client.Do(req)
	if err != nil {
		return entity.Entity{}, fmt.Errorf("fetch entity %d: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return entity.Entity{}, fmt.Errorf("entity %d: %w", id, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return entity.Entity{}, fmt.Errorf("fetch entity %d: unexpected status %s", id, resp.Status)
	}

	limit := s.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxRecordBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return entity.Entity{}, fmt.Errorf("read entity %d: %w", id, err)
	}
	if int64(len(body)) > limit {
		return entity.Entity{}, fmt.Errorf("entity %d: record larger than %d bytes", id, limit)
	}
	e, err := entity.Decode(body)
	if err != nil {
		return entity.Entity{}, err
	}
	if e.ID != id {
		return entity.Entity{}, fmt.Errorf("entity %d: record carries id %d", id, e.ID)
	}
	s.Logger.Debug("fetched entity", "id", id, "type", e.Type)
	return e, nil
}
