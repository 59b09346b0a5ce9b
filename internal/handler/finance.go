package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/report"
	"salonhub-backend/internal/service"
	"salonhub-backend/internal/server/authctx"
)

// FinanceHandler serves manual expenses and the expense report exports.
type FinanceHandler struct {
	Expenses  service.ExpenseService
	Dashboard *service.DashboardService
}

func (h FinanceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/expenses", h.list)
	r.Post("/expenses", h.create)
	r.Delete("/expenses/{id}", h.delete)
	r.Get("/reports/export", h.export)
}

func (h FinanceHandler) list(w http.ResponseWriter, r *http.Request) {
	startDate, err := parseDateQuery(r, "startDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	endDate, err := parseDateQuery(r, "endDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate")
		return
	}
	if startDate != nil && endDate != nil && startDate.After(*endDate) {
		writeError(w, http.StatusBadRequest, "startDate must be before endDate")
		return
	}

	items, err := h.Expenses.List(r.Context(), branchQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, e := range items {
		if (startDate != nil || endDate != nil) && (e.Date.IsZero() || !inRange(e.Date, startDate, endDate)) {
			continue
		}
		resp = append(resp, expenseJSON(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h FinanceHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	createdBy := ""
	if u := authctx.FromContext(r.Context()); u != nil {
		createdBy = u.Email
		if !u.IsSuperAdmin() {
			req.Branch = u.Branch
		}
	}
	exp, err := h.Expenses.Create(r.Context(), req, createdBy)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expenseJSON(*exp))
}

func (h FinanceHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Expenses.Delete(r.Context(), chi.URLParam(r, "id"), ownBranch(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func expenseJSON(e domain.ManualExpense) map[string]any {
	date := ""
	if !e.Date.IsZero() {
		date = e.Date.Format(dateLayout)
	}
	return map[string]any{
		"id":            e.ID,
		"title":         e.Title,
		"description":   e.Description,
		"amount":        e.Amount,
		"category":      e.Category,
		"branch":        e.Branch,
		"date":          date,
		"paymentMethod": e.PaymentMethod,
		"status":        string(e.Status),
		"createdBy":     e.CreatedBy,
		"notes":         e.Notes,
	}
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func (h FinanceHandler) export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "txt"
	}
	year, err := parseYearQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}

	branch := branchQuery(r)
	rep, meta, err := h.Dashboard.Report(r.Context(), branch, year)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("expense_report_%s_%s",
		unsafeFilename.ReplaceAllString(strings.ToLower(branch), "_"),
		time.Now().Format("20060102_150405"))

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case "txt", "text":
		err = report.WriteText(&buf, rep)
		contentType = "text/plain; charset=utf-8"
		filename += ".txt"
	case "csv":
		err = report.WriteCSV(&buf, rep)
		contentType = "text/csv; charset=utf-8"
		filename += ".csv"
	case "xlsx", "excel":
		err = report.WriteXLSX(&buf, rep)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename += ".xlsx"
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use txt, csv or xlsx)")
		return
	}
	if err != nil {
		writeErrorWithErr(w, http.StatusInternalServerError, "render report", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if meta.Partial {
		w.Header().Set("X-Report-Partial", strings.Join(meta.Failed, ","))
	}
	_, _ = w.Write(buf.Bytes())
}
