package dashboardhttp

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/webpos/posdash/internal/analytics/export"
	"github.com/webpos/posdash/internal/listing"
	"github.com/webpos/posdash/internal/platform/httpx"
	"github.com/webpos/posdash/internal/pos"
	"github.com/webpos/posdash/internal/state"
)

func (h *Handler) handleSales(w http.ResponseWriter, r *http.Request) {
	st := h.stateFor(r)
	h.ensure(r, st, state.SectionSales)
	view, err := st.SalesView()
	respondView(w, view, err)
}

func (h *Handler) handleSaleFilters(w http.ResponseWriter, r *http.Request) {
	var filters listing.SaleFilters
	if err := httpx.DecodeJSON(r, &filters); err != nil {
		httpx.RespondError(w, err)
		return
	}
	st := h.stateFor(r)
	h.ensure(r, st, state.SectionSales)
	if err := st.SetSaleFilters(r.Context(), filters); h.actionFailed(w, err) {
		return
	}
	h.handleSales(w, r)
}

func (h *Handler) handleClearSaleFilters(w http.ResponseWriter, r *http.Request) {
	if err := h.stateFor(r).ClearSalesFilters(r.Context()); h.actionFailed(w, err) {
		return
	}
	h.handleSales(w, r)
}

func (h *Handler) handleSalesCSV(w http.ResponseWriter, r *http.Request) {
	st := h.stateFor(r)
	h.ensure(r, st, state.SectionSales)
	sales, err := st.FilteredSales()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer h.csvPool.Put(buf)
	if err := export.WriteSalesCSV(buf, sales); err != nil {
		h.handleServerError(w, "write sales csv", err)
		return
	}
	h.attach(w, "text/csv", "sales", "csv")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

// handleSaleItems applies the optional search, size and page query
// parameters before rendering the flattened items.
func (h *Handler) handleSaleItems(w http.ResponseWriter, r *http.Request) {
	st := h.stateFor(r)
	h.ensure(r, st, state.SectionSaleItems)
	query := r.URL.Query()
	if query.Has("search") {
		if err := st.SetSaleItemSearch(query.Get("search")); err != nil {
			httpx.RespondError(w, err)
			return
		}
	}
	var req pageRequest
	var err error
	if req.Size, err = intParam(query.Get("size")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if req.Page, err = intParam(query.Get("page")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.applyPage(st, state.SectionSaleItems, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := st.SaleItemsView()
	respondView(w, view, err)
}

func intParam(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{value: raw}
	}
	return v, nil
}

type paramError struct{ value string }

func (e *paramError) Error() string { return "invalid number " + strconv.Quote(e.value) }

func (e *paramError) Unwrap() error { return pos.ErrValidation }
