package dashboardhttp

import (
	"net/http"

	"github.com/webpos/posdash/internal/platform/httpx"
	"github.com/webpos/posdash/internal/pos"
	"github.com/webpos/posdash/internal/state"
)

func (h *Handler) handleSuppliers(w http.ResponseWriter, r *http.Request) {
	st := h.stateFor(r)
	h.ensure(r, st, state.SectionSuppliers)
	httpx.JSON(w, http.StatusOK, st.SuppliersView())
}

func (h *Handler) handleSupplierSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.stateFor(r).SetSupplierSearch(r.Context(), req.Search); h.actionFailed(w, err) {
		return
	}
	h.handleSuppliers(w, r)
}

func (h *Handler) handleCustomers(w http.ResponseWriter, r *http.Request) {
	st := h.stateFor(r)
	h.ensure(r, st, state.SectionCustomers)
	httpx.JSON(w, http.StatusOK, st.CustomersView())
}

func (h *Handler) handleCustomerSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.stateFor(r).SetCustomerSearch(r.Context(), req.Search); h.actionFailed(w, err) {
		return
	}
	h.handleCustomers(w, r)
}

func (h *Handler) handleCustomerSales(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sales, err := h.catalog.SalesByCustomer(r.Context(), id)
	if err != nil {
		h.handleServerError(w, "customer sales", err)
		return
	}
	if sales == nil {
		sales = []pos.Sale{}
	}
	httpx.JSON(w, http.StatusOK, sales)
}
