// Package explorer holds one user's browsing session: the active View with its layout and
// navigation state, and the latest search results.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/japaniel/kanjigraph/pkg/entity"
	"github.com/japaniel/kanjigraph/pkg/layout"
	"github.com/japaniel/kanjigraph/pkg/navigation"
	"github.com/japaniel/kanjigraph/pkg/query"
	"github.com/japaniel/kanjigraph/pkg/view"
)

var (
	// ErrSuperseded is returned by a Reload whose result was discarded because a newer Reload
	// was issued while it ran.
	ErrSuperseded = errors.New("reload superseded by a newer one")
	// ErrNoView is returned by intra-view operations before the first successful Reload.
	ErrNoView = errors.New("no view loaded")
	// ErrNoResults is returned by Open when there is nothing to open.
	ErrNoResults = errors.New("no search results")
)

// Searcher runs free-text searches.
type Searcher interface {
	Search(ctx context.Context, raw string) ([]entity.Summary, error)
}

// Loader assembles Views.
type Loader interface {
	Load(ctx context.Context, t entity.Type, id int64) (view.View, error)
}

// State is the active View with everything derived from it. It is replaced as a whole and
// never modified.
type State struct {
	View    view.View
	Diagram layout.Diagram
	Model   navigation.Model
}

// SearchResult is the outcome of one Search call.
type SearchResult struct {
	Ticket  uint64
	Query   string
	Results []entity.Summary
	// Current is false when a newer search was issued before this one finished. Stale results
	// are returned to the caller but not stored in the session.
	Current bool
}

// Session is safe for concurrent use.
type Session struct {
	Searcher Searcher
	Loader   Loader
	Measurer layout.Measurer
	Layout   layout.Options
	Logger   *slog.Logger

	state atomic.Pointer[State]

	searchTicket atomic.Uint64
	reloadTicket atomic.Uint64
	// publishMu makes "is this ticket still the latest" and the publish one step.
	publishMu sync.Mutex

	resultsMu sync.Mutex
	results   []entity.Summary
	selected  int
}

// New creates a session. m sizes nodes for layout.
func New(s Searcher, l Loader, m layout.Measurer) *Session {
	return &Session{Searcher: s, Loader: l, Measurer: m, Layout: layout.DefaultOptions()}
}

func (s *Session) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// State returns the active state, or nil before the first Reload.
func (s *Session) State() *State {
	return s.state.Load()
}

// Search runs raw and, if no newer search was issued meanwhile, stores the results and resets
// the selection to the first entry.
func (s *Session) Search(ctx context.Context, raw string) (SearchResult, error) {
	ticket := s.searchTicket.Add(1)
	res := SearchResult{Ticket: ticket, Query: query.Human(raw)}

	results, err := s.Searcher.Search(ctx, raw)
	if err != nil {
		return res, err
	}
	res.Results = results

	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if ticket != s.searchTicket.Load() {
		s.logger().Debug("discarding stale search", "ticket", ticket, "query", res.Query)
		return res, nil
	}
	res.Current = true
	s.resultsMu.Lock()
	s.results = results
	s.selected = 0
	s.resultsMu.Unlock()
	return res, nil
}

// Reload replaces the active View with the one around id. It is the expensive operation:
// assemble, measure, lay out and build a fresh navigation model focused on id. When a newer
// Reload was issued while this one ran the result is dropped and ErrSuperseded returned.
func (s *Session) Reload(ctx context.Context, t entity.Type, id int64) (*State, error) {
	ticket := s.reloadTicket.Add(1)

	v, err := s.Loader.Load(ctx, t, id)
	if err != nil {
		return nil, err
	}
	next, err := s.derive(v)
	if err != nil {
		return nil, err
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if ticket != s.reloadTicket.Load() {
		s.logger().Debug("discarding stale view", "ticket", ticket, "type", t, "id", id)
		return nil, ErrSuperseded
	}
	s.state.Store(next)
	s.logger().Debug("view replaced", "type", t, "id", id, "members", v.Len(), "rows", len(next.Diagram.Rows))
	return next, nil
}

func (s *Session) derive(v view.View) (*State, error) {
	m := s.Measurer
	if m == nil {
		m = layout.NewTextMeasurer()
	}
	d, err := layout.Apply(v, layout.Measure(v, m), s.Layout)
	if err != nil {
		return nil, err
	}
	nav, err := navigation.New(d, v.Focal.ID)
	if err != nil {
		return nil, fmt.Errorf("navigate view of %d: %w", v.Focal.ID, err)
	}
	return &State{View: v, Diagram: d, Model: nav}, nil
}

// update applies f to the active state until it lands without racing a Reload.
func (s *Session) update(f func(State) (State, error)) (*State, error) {
	for {
		cur := s.state.Load()
		if cur == nil {
			return nil, ErrNoView
		}
		next, err := f(*cur)
		if err != nil {
			return cur, err
		}
		if s.state.CompareAndSwap(cur, &next) {
			return &next, nil
		}
	}
}

// Focus is the cheap, intra-view operation: it moves the focus to a member of the active View.
// Ids outside the View fail with navigation.ErrNotInView; they need a Reload.
func (s *Session) Focus(id int64) (*State, error) {
	return s.update(func(st State) (State, error) {
		m, err := st.Model.Focus(id)
		if err != nil {
			return st, err
		}
		st.Model = m
		return st, nil
	})
}

// Move focuses the neighbour in direction d. ok is false when there is none.
func (s *Session) Move(d navigation.Direction) (st *State, ok bool, err error) {
	st, err = s.update(func(cur State) (State, error) {
		m, moved := cur.Model.Move(d)
		if !moved {
			return cur, errNoNeighbour
		}
		cur.Model = m
		return cur, nil
	})
	if errors.Is(err, errNoNeighbour) {
		return st, false, nil
	}
	return st, err == nil, err
}

var errNoNeighbour = errors.New("no neighbour")

// Reset focuses the View's focal entity again.
func (s *Session) Reset() (*State, error) {
	return s.update(func(st State) (State, error) {
		st.Model = st.Model.Reset()
		return st, nil
	})
}

// Follow focuses id when it is already in the active View and reloads around it otherwise.
// An id visible in the current View keeps that View's band ordering even if a View of its own
// would order bands differently; Reload is the explicit way to re-centre.
func (s *Session) Follow(ctx context.Context, t entity.Type, id int64) (*State, error) {
	if cur := s.state.Load(); cur != nil && cur.Model.Contains(id) {
		st, err := s.Focus(id)
		if !errors.Is(err, navigation.ErrNotInView) {
			return st, err
		}
	}
	return s.Reload(ctx, t, id)
}

// Results returns the stored search results and the selected index.
func (s *Session) Results() ([]entity.Summary, int) {
	s.resultsMu.Lock()
	defer s.resultsMu.Unlock()
	return s.results, s.selected
}

// Select moves the selection by delta, wrapping around at both ends.
func (s *Session) Select(delta int) (entity.Summary, bool) {
	s.resultsMu.Lock()
	defer s.resultsMu.Unlock()
	n := len(s.results)
	if n == 0 {
		return entity.Summary{}, false
	}
	s.selected = ((s.selected+delta)%n + n) % n
	return s.results[s.selected], true
}

// Open reloads around the selected search result.
func (s *Session) Open(ctx context.Context) (*State, error) {
	s.resultsMu.Lock()
	if len(s.results) == 0 {
		s.resultsMu.Unlock()
		return nil, ErrNoResults
	}
	r := s.results[s.selected]
	s.resultsMu.Unlock()
	return s.Reload(ctx, r.Type, r.ID)
}
