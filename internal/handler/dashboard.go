package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"salonhub-backend/internal/report"
	"salonhub-backend/internal/service"
	"salonhub-backend/internal/server/authctx"
)

type DashboardHandler struct {
	Service *service.DashboardService
}

func (h DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/summary", h.summary)
	r.Get("/dashboard/monthly", h.monthly)
	r.Get("/dashboard/branches", h.branches)
	r.Get("/dashboard/categories", h.categories)
	r.Get("/dashboard/analytics", h.analytics)
	r.Get("/dashboard/charts", h.charts)
}

func (h DashboardHandler) summary(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.Summary(r.Context(), branchQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONMeta(w, out, out.Meta)
}

func (h DashboardHandler) monthly(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	months, meta, err := h.Service.Monthly(r.Context(), branchQuery(r), year)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONMeta(w, map[string]any{
		"branch": branchQuery(r),
		"months": months,
		"meta":   meta,
	}, meta)
}

func (h DashboardHandler) branches(w http.ResponseWriter, r *http.Request) {
	if u := authctx.FromContext(r.Context()); u != nil && !u.IsSuperAdmin() {
		writeError(w, http.StatusForbidden, "branch comparison is restricted to the super admin")
		return
	}
	items, meta, err := h.Service.BranchBreakdown(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONMeta(w, map[string]any{
		"branches": items,
		"meta":     meta,
	}, meta)
}

func (h DashboardHandler) categories(w http.ResponseWriter, r *http.Request) {
	items, meta, err := h.Service.Categories(r.Context(), branchQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONMeta(w, map[string]any{
		"categories": items,
		"meta":       meta,
	}, meta)
}

func (h DashboardHandler) analytics(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.Analytics(r.Context(), branchQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h DashboardHandler) charts(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	rep, meta, err := h.Service.Report(r.Context(), branchQuery(r), year)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONMeta(w, report.BuildCharts(rep), meta)
}
