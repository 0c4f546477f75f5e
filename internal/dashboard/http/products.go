package dashboardhttp

import (
	"log/slog"
	"net/http"

	"github.com/webpos/posdash/internal/listing"
	"github.com/webpos/posdash/internal/platform/httpx"
	"github.com/webpos/posdash/internal/pos"
	"github.com/webpos/posdash/internal/state"
)

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	st := h.stateFor(r)
	h.ensure(r, st, state.SectionProducts)
	view, err := st.ProductsView()
	respondView(w, view, err)
}

func (h *Handler) handleProductFilters(w http.ResponseWriter, r *http.Request) {
	var filters listing.ProductFilters
	if err := httpx.DecodeJSON(r, &filters); err != nil {
		httpx.RespondError(w, err)
		return
	}
	st := h.stateFor(r)
	h.ensure(r, st, state.SectionProducts)
	if err := st.SetProductFilters(r.Context(), filters); h.actionFailed(w, err) {
		return
	}
	h.handleProducts(w, r)
}

func (h *Handler) handleClearProductFilters(w http.ResponseWriter, r *http.Request) {
	st := h.stateFor(r)
	if err := st.ClearProductFilters(r.Context()); h.actionFailed(w, err) {
		return
	}
	h.handleProducts(w, r)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.handleServerError(w, "get product", err)
		return
	}
	if product == nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in pos.ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := in.ValidateCreate(); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.catalog.CreateProduct(r.Context(), in)
	if err != nil {
		h.handleServerError(w, "create product", err)
		return
	}
	h.reloadProducts(r)
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in pos.ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := in.ValidateUpdate(); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.catalog.UpdateProduct(r.Context(), id, in)
	if err != nil {
		h.handleServerError(w, "update product", err)
		return
	}
	if product == nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	h.reloadProducts(r)
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	deleted, err := h.catalog.DeleteProduct(r.Context(), id)
	if err != nil {
		h.handleServerError(w, "delete product", err)
		return
	}
	if !deleted {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	h.reloadProducts(r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var body pos.QuantityUpdate
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := body.Validate(); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.catalog.UpdateQuantity(r.Context(), id, body.QuantitySize)
	if err != nil {
		h.handleServerError(w, "update quantity", err)
		return
	}
	if product == nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	h.reloadProducts(r)
	httpx.JSON(w, http.StatusOK, product)
}

// reloadProducts refreshes the caller's products after a write, when the
// section has been viewed.
func (h *Handler) reloadProducts(r *http.Request) {
	st := h.stateFor(r)
	if st.Products.Status() == state.StatusIdle {
		return
	}
	if err := st.LoadProducts(r.Context()); err != nil {
		h.logger.Warn("reload products after write", slog.Any("error", err))
	}
}
