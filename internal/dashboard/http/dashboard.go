package dashboardhttp

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/webpos/posdash/internal/analytics"
	"github.com/webpos/posdash/internal/analytics/export"
	"github.com/webpos/posdash/internal/analytics/svg"
	"github.com/webpos/posdash/internal/platform/httpx"
	"github.com/webpos/posdash/internal/state"
	"github.com/webpos/posdash/jobs"
)

const sourceServer = "server"

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	st := h.stateFor(r)
	h.ensure(r, st, state.SectionDashboard)

	var report *analytics.Report
	if strings.EqualFold(r.URL.Query().Get("source"), sourceServer) {
		if h.analytics == nil {
			httpx.Problem(w, http.StatusNotImplemented, "Not Implemented", "server analytics not configured")
			return
		}
		rep, err := h.analytics.ServerReport(r.Context())
		if err != nil {
			h.handleServerError(w, "server report", err)
			return
		}
		report = &rep
	}
	httpx.JSON(w, http.StatusOK, st.DashboardView(report))
}

func (h *Handler) handleDashboardRefresh(w http.ResponseWriter, r *http.Request) {
	st := h.stateFor(r)
	_ = st.LoadDashboard(r.Context())
	if h.analytics != nil {
		if err := h.analytics.Bump(r.Context()); err != nil {
			h.logger.Warn("bump analytics cache", slog.Any("error", err))
		}
	}
	if h.enqueuer != nil {
		payload := jobs.WarmupPayload{Reason: "manual refresh"}
		if _, err := h.enqueuer.EnqueueWarmup(r.Context(), payload); err != nil {
			h.logger.Warn("enqueue analytics warmup", slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusOK, st.DashboardView(nil))
}

func (h *Handler) handleDashboardCSV(w http.ResponseWriter, r *http.Request) {
	st := h.stateFor(r)
	h.ensure(r, st, state.SectionDashboard)
	data, report := st.DashboardRecords()
	summary := analytics.Summarize(data.Products, data.Sales, data.Suppliers)

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer h.csvPool.Put(buf)
	if err := export.WriteDashboardCSV(buf, summary, report); err != nil {
		h.handleServerError(w, "write dashboard csv", err)
		return
	}
	h.attach(w, "text/csv", "dashboard", "csv")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handleDashboardXLSX(w http.ResponseWriter, r *http.Request) {
	st := h.stateFor(r)
	h.ensure(r, st, state.SectionDashboard)
	data, report := st.DashboardRecords()
	summary := analytics.Summarize(data.Products, data.Sales, data.Suppliers)

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer h.csvPool.Put(buf)
	if err := export.WriteReportXLSX(buf, summary, report); err != nil {
		h.handleServerError(w, "write dashboard xlsx", err)
		return
	}
	h.attach(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "dashboard", "xlsx")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream xlsx", err)
	}
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	st := h.stateFor(r)
	h.ensure(r, st, state.SectionDashboard)
	_, report := st.DashboardRecords()
	out, err := analytics.RenderChart(report, chi.URLParam(r, "chart"))
	if errors.Is(err, analytics.ErrUnknownChart) {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrNotFound, err))
		return
	}
	if err != nil {
		h.handleServerError(w, "render chart", err)
		return
	}
	w.Header().Set("Content-Type", svg.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write([]byte(out)); err != nil {
		h.logError("stream chart", err)
	}
}

func (h *Handler) attach(w http.ResponseWriter, contentType, name, ext string) {
	filename := fmt.Sprintf("posdash-%s-%s.%s", name, h.now().Format("20060102"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
}
