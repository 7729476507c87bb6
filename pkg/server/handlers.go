package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/japaniel/kanjigraph/pkg/entity"
	"github.com/japaniel/kanjigraph/pkg/explorer"
	"github.com/japaniel/kanjigraph/pkg/layout"
	"github.com/japaniel/kanjigraph/pkg/navigation"
	"github.com/japaniel/kanjigraph/pkg/query"
	"github.com/japaniel/kanjigraph/pkg/store"
	"github.com/japaniel/kanjigraph/pkg/view"
)

type handlers struct {
	searcher explorer.Searcher
	loader   explorer.Loader
	measurer layout.Measurer
	layout   layout.Options
	logger   *slog.Logger
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SearchResponse is the body of GET /api/v1/search.
type SearchResponse struct {
	Query   string           `json:"query"`
	Results []entity.Summary `json:"results"`
}

// BandResponse is one band of a view, in display order.
type BandResponse struct {
	Type     entity.Type      `json:"type"`
	Entities []entity.Summary `json:"entities"`
}

// ViewResponse is the body of GET /api/v1/view/:type/:id.
type ViewResponse struct {
	Focal      entity.Entity         `json:"focal"`
	Ordering   string                `json:"ordering"`
	Bands      []BandResponse        `json:"bands"`
	Diagram    layout.Diagram        `json:"diagram"`
	Focus      int64                 `json:"focus"`
	Cell       navigation.Cell       `json:"cell"`
	Neighbours navigation.Neighbours `json:"neighbours"`
}

func writeError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: msg})
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "kanjigraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handlers) ready(c *gin.Context) {
	if r, ok := h.searcher.(Readiness); ok && !r.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *handlers) search(c *gin.Context) {
	raw := c.Query("q")
	results, err := h.searcher.Search(c.Request.Context(), raw)
	if err != nil {
		h.logger.Error("search failed", "query", raw, "error", err)
		writeError(c, statusFor(err), "search_failed", err.Error())
		return
	}
	if results == nil {
		results = []entity.Summary{}
	}
	c.JSON(http.StatusOK, SearchResponse{Query: query.Human(raw), Results: results})
}

// view assembles the View around :id. ?focus= picks another member to report neighbours for,
// and ?move= steps from there in one direction.
func (h *handlers) view(c *gin.Context) {
	t, err := entity.ParseType(c.Param("type"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_type", err.Error())
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}

	v, err := h.loader.Load(c.Request.Context(), t, id)
	if err != nil {
		h.logger.Warn("view load failed", "type", t, "id", id, "error", err)
		writeError(c, statusFor(err), errorCode(err), err.Error())
		return
	}
	d, err := layout.Apply(v, layout.Measure(v, h.measurer), h.layout)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "layout_failed", err.Error())
		return
	}
	m, err := navigation.New(d, id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "layout_failed", err.Error())
		return
	}

	if f := c.Query("focus"); f != "" {
		fid, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid_focus", "focus must be an integer")
			return
		}
		if m, err = m.Focus(fid); err != nil {
			writeError(c, http.StatusUnprocessableEntity, "not_in_view", err.Error())
			return
		}
	}
	if mv := c.Query("move"); mv != "" {
		dir, err := navigation.ParseDirection(mv)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid_direction", err.Error())
			return
		}
		if next, ok := m.Move(dir); ok {
			m = next
		}
	}

	resp := ViewResponse{
		Focal:      v.Focal,
		Ordering:   v.Ordering.String(),
		Diagram:    d,
		Focus:      m.Focused(),
		Cell:       m.Cell(),
		Neighbours: m.Neighbours(),
	}
	for _, b := range v.Bands() {
		br := BandResponse{Type: b.Type, Entities: make([]entity.Summary, len(b.Entities))}
		for i, e := range b.Entities {
			br.Entities[i] = e.Summary()
		}
		resp.Bands = append(resp.Bands, br)
	}
	c.JSON(http.StatusOK, resp)
}

// statusFor maps load and search failures to HTTP statuses. A missing focal record is a 404;
// a missing or inconsistent related record means the upstream graph is broken, hence 502.
func statusFor(err error) int {
	var le *view.LoadError
	switch {
	case errors.As(err, &le):
		if le.ID == le.FocalID && errors.Is(le.Err, store.ErrNotFound) {
			return http.StatusNotFound
		}
		if errors.Is(err, context.Canceled) {
			return 499
		}
		return http.StatusBadGateway
	case errors.Is(err, view.ErrTypeMismatch):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func errorCode(err error) string {
	switch statusFor(err) {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "type_mismatch"
	case http.StatusBadGateway:
		return "load_failed"
	}
	return "internal_error"
}
