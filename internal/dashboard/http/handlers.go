// Package dashboardhttp serves the dashboard sections as JSON.
package dashboardhttp

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/webpos/posdash/internal/analytics"
	"github.com/webpos/posdash/internal/platform/httpx"
	"github.com/webpos/posdash/internal/pos"
	"github.com/webpos/posdash/internal/state"
	"github.com/webpos/posdash/jobs"
)

// AnalyticsService builds the dashboard reports.
type AnalyticsService interface {
	ServerReport(ctx context.Context) (analytics.Report, error)
	Bump(ctx context.Context) error
}

// Catalog performs single record reads and writes against the POS API.
type Catalog interface {
	GetProduct(ctx context.Context, id int64) (*pos.Product, error)
	CreateProduct(ctx context.Context, in pos.ProductInput) (*pos.Product, error)
	UpdateProduct(ctx context.Context, id int64, in pos.ProductInput) (*pos.Product, error)
	DeleteProduct(ctx context.Context, id int64) (bool, error)
	UpdateQuantity(ctx context.Context, productID int64, quantitySize int) (*pos.Product, error)
	SalesByCustomer(ctx context.Context, customerID int64) ([]pos.Sale, error)
}

// Enqueuer schedules background analytics warmups.
type Enqueuer interface {
	EnqueueWarmup(ctx context.Context, payload jobs.WarmupPayload) (*asynq.TaskInfo, error)
}

// Handler serves the dashboard API for every session in the registry.
type Handler struct {
	logger    *slog.Logger
	sessions  *state.Registry
	analytics AnalyticsService
	catalog   Catalog
	enqueuer  Enqueuer
	now       func() time.Time
	csvPool   sync.Pool
}

// NewHandler builds a dashboard handler. analytics and enqueuer are
// optional.
func NewHandler(logger *slog.Logger, sessions *state.Registry, catalog Catalog, svc AnalyticsService, enqueuer Enqueuer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:    logger,
		sessions:  sessions,
		analytics: svc,
		catalog:   catalog,
		enqueuer:  enqueuer,
		now:       time.Now,
	}
	h.csvPool.New = func() any { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the clock used for export file names.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// stateFor returns the caller's session state.
func (h *Handler) stateFor(r *http.Request) *state.AppState {
	st, _ := h.sessions.Get(SessionID(r.Context()))
	return st
}

// ensure loads section on first view. Failures are recorded on the section
// and rendered with it.
func (h *Handler) ensure(r *http.Request, st *state.AppState, section string) {
	_ = st.EnsureLoaded(r.Context(), section)
}

// actionFailed writes an error response for caller mistakes. Fetch failures
// triggered by an action are left to the section status.
func (h *Handler) actionFailed(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, pos.ErrValidation) || errors.Is(err, httpx.ErrNotFound) {
		httpx.RespondError(w, err)
		return true
	}
	return false
}

type pageRequest struct {
	Page int `json:"page" validate:"gte=0"`
	Size int `json:"size" validate:"omitempty,oneof=10 25 50 100"`
}

func (h *Handler) applyPage(st *state.AppState, section string, req pageRequest) error {
	if err := pos.ValidateStruct(req); err != nil {
		return err
	}
	if req.Size > 0 {
		if err := st.SetPageSize(section, req.Size); err != nil {
			return err
		}
	}
	if req.Page > 0 {
		return st.SetPage(section, req.Page)
	}
	return nil
}

type sortRequest struct {
	Field string `json:"field" validate:"required,max=64"`
}

type searchRequest struct {
	Search string `json:"search" validate:"max=200"`
}

func (h *Handler) handleSort(section string, render http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sortRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, err)
			return
		}
		if err := pos.ValidateStruct(req); err != nil {
			httpx.RespondError(w, err)
			return
		}
		if _, err := h.stateFor(r).ToggleSort(section, req.Field); h.actionFailed(w, err) {
			return
		}
		render(w, r)
	}
}

func (h *Handler) handlePage(section string, render http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pageRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, err)
			return
		}
		if err := h.applyPage(h.stateFor(r), section, req); h.actionFailed(w, err) {
			return
		}
		render(w, r)
	}
}

func (h *Handler) handleRefresh(section string, render http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = h.stateFor(r).Load(r.Context(), section)
		render(w, r)
	}
}

func respondView[V any](w http.ResponseWriter, view V, err error) {
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func parseID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID(raw)
	}
	return id, nil
}

func errInvalidID(raw string) error {
	return &invalidIDError{raw: raw}
}

type invalidIDError struct{ raw string }

func (e *invalidIDError) Error() string { return "invalid id " + strconv.Quote(e.raw) }

func (e *invalidIDError) Unwrap() error { return pos.ErrValidation }

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	httpx.RespondError(w, err)
}

func (h *Handler) logError(context string, err error) {
	if h.logger == nil || err == nil {
		return
	}
	h.logger.Error("dashboard handler error", slog.String("context", context), slog.Any("error", err))
}
