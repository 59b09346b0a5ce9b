package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/notifier"
	"salonhub-backend/internal/repository"
	"salonhub-backend/internal/service"
	"salonhub-backend/internal/server/authctx"
)

var (
	superAdmin  = authctx.CurrentUser{ID: "u-1", Email: "owner@salon.test", Name: "Owner", Role: domain.RoleSuperAdmin}
	branchAdmin = authctx.CurrentUser{ID: "u-2", Email: "desk@salon.test", Name: "Desk", Role: domain.RoleBranchAdmin, Branch: "Downtown", BranchID: "br-1"}
)

type fixture struct {
	src    *repository.MemorySource
	router chi.Router
	notes  *notifier.Notifier
	stream *notifier.Broadcaster
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := repository.NewMemorySource()
	src.Seed(repository.CollectionBranches, "br-1", map[string]any{"name": "Downtown"})
	src.Seed(repository.CollectionBranches, "br-2", map[string]any{"name": "Uptown"})
	src.Seed(repository.CollectionProducts, "p1", map[string]any{"name": "Serum", "price": 25.0, "cost": 10.0, "stock": int64(5), "branchNames": []any{"Downtown"}})
	src.Seed(repository.CollectionProducts, "p2", map[string]any{"name": "Oil", "price": 12.0, "cost": 20.0, "stock": int64(2), "branchNames": []any{"Uptown"}})
	src.Seed(repository.CollectionBookings, "b1", map[string]any{"totalAmount": 100.0, "status": "completed", "branch": "Downtown", "date": time.Now().Format("2006-01-02")})
	src.Seed(repository.CollectionExpenses, "e1", map[string]any{"title": "Rent", "amount": 50.0, "branch": "Downtown", "date": "2025-02-01", "category": "rent"})
	src.Seed(repository.CollectionExpenses, "e2", map[string]any{"title": "Power", "amount": 30.0, "branch": "Uptown", "date": "2025-03-01", "category": "utilities"})

	store := repository.Fetcher{Source: src, Logger: logger}
	dash := &service.DashboardService{
		Products: repository.ProductRepository{Store: store},
		Services: repository.ServiceRepository{Store: store},
		Bookings: repository.BookingRepository{Store: store},
		Expenses: repository.ExpenseRepository{Store: store},
		Orders:   repository.OrderRepository{Store: store},
		Branches: repository.BranchRepository{Store: store},
		Timeout:  time.Second,
		Currency: "₹",
		Logger:   logger,
	}
	stream := notifier.NewBroadcaster()
	notes := notifier.New(store, notifier.NewMemoryReadStore(), nil, logger, nil, stream)

	r := chi.NewRouter()
	DashboardHandler{Service: dash}.RegisterRoutes(r)
	FinanceHandler{Expenses: service.ExpenseService{Repo: repository.ExpenseRepository{Store: store}, Logger: logger}, Dashboard: dash}.RegisterRoutes(r)
	OfferHandler{Service: service.OfferService{Repo: repository.OfferRepository{Store: store}}}.RegisterRoutes(r)
	MessageHandler{Service: service.MessageService{Repo: repository.MessageRepository{Store: store}}}.RegisterRoutes(r)
	NotificationHandler{Notifier: notes, Stream: stream, Heartbeat: time.Hour}.RegisterRoutes(r)
	return &fixture{src: src, router: r, notes: notes, stream: stream}
}

func (f *fixture) do(t *testing.T, user authctx.CurrentUser, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req = req.WithContext(authctx.WithCurrentUser(req.Context(), user))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestDashboardSummaryScopesBranchAdmin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, branchAdmin, http.MethodGet, "/dashboard/summary?branch=Uptown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "Downtown", data["branch"])
	summary := data["summary"].(map[string]any)
	assert.Equal(t, 50.0, summary["productsCost"])
	assert.Equal(t, 100.0, summary["totalRevenue"])

	rec = f.do(t, superAdmin, http.MethodGet, "/dashboard/summary?branch=Uptown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data = decode(t, rec).Data.(map[string]any)
	assert.Equal(t, "Uptown", data["branch"])
}

func TestDashboardBranchesRequiresSuperAdmin(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusForbidden, f.do(t, branchAdmin, http.MethodGet, "/dashboard/branches", "").Code)

	rec := f.do(t, superAdmin, http.MethodGet, "/dashboard/branches", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec).Data.(map[string]any)
	assert.Len(t, data["branches"], 2)
}

func TestDashboardPartialDataIsFlagged(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, superAdmin, http.MethodGet, "/dashboard/summary", "").Code)

	f.src.FailOn = map[string]error{repository.CollectionServices: assert.AnError}
	rec := f.do(t, superAdmin, http.MethodGet, "/dashboard/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "partial", resp.Message)
	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["partial"])
	assert.Equal(t, []any{"services"}, data["failed"])
}

func TestDashboardMonthlyRejectsBadYear(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusBadRequest, f.do(t, superAdmin, http.MethodGet, "/dashboard/monthly?year=abc", "").Code)

	rec := f.do(t, superAdmin, http.MethodGet, "/dashboard/monthly?year=2025", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec).Data.(map[string]any)
	assert.Len(t, data["months"], 12)
}

func TestExpenseCreateValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, superAdmin, http.MethodPost, "/expenses", `{"title":"","amount":-5,"category":"yachts","branch":"Downtown"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode(t, rec).Data.(map[string]any)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "amount")
	assert.Contains(t, fields, "category")

	assert.Equal(t, http.StatusBadRequest, f.do(t, superAdmin, http.MethodPost, "/expenses", `{`).Code)

	rec = f.do(t, branchAdmin, http.MethodPost, "/expenses", `{"title":"Towels","amount":12.5,"category":"supplies","branch":"Uptown","date":"2025-04-02"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode(t, rec).Data.(map[string]any)
	assert.Equal(t, "Downtown", created["branch"], "branch admins write to their own branch")
	assert.Equal(t, "desk@salon.test", created["createdBy"])

	rec = f.do(t, superAdmin, http.MethodDelete, "/expenses/"+created["id"].(string), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, superAdmin, http.MethodDelete, "/expenses/"+created["id"].(string), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpenseListDateRange(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, superAdmin, http.MethodGet, "/expenses?startDate=2025-02-15&endDate=2025-03-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode(t, rec).Data.([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Power", items[0].(map[string]any)["title"])

	assert.Equal(t, http.StatusBadRequest, f.do(t, superAdmin, http.MethodGet, "/expenses?startDate=2025-04-01&endDate=2025-03-01", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, superAdmin, http.MethodGet, "/expenses?startDate=April", "").Code)
}

func TestReportExportFormats(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, superAdmin, http.MethodGet, "/reports/export?format=csv&year=2025", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "expense_report_all_")
	assert.Equal(t, 14, strings.Count(rec.Body.String(), "\n"))

	rec = f.do(t, branchAdmin, http.MethodGet, "/reports/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Branch: Downtown")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".txt")

	rec = f.do(t, superAdmin, http.MethodGet, "/reports/export?format=xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"), "xlsx is a zip archive")

	assert.Equal(t, http.StatusBadRequest, f.do(t, superAdmin, http.MethodGet, "/reports/export?format=pdf", "").Code)
}

func TestOfferLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, superAdmin, http.MethodPost, "/offers/promo-codes", `{"branchId":"br-2","code":"spring","discountType":"fixed","discountValue":5,"validFrom":"2025-04-01","validTo":"2025-03-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, branchAdmin, http.MethodPost, "/offers/promo-codes", `{"branchId":"br-2","code":"spring","discountType":"fixed","discountValue":5,"validFrom":"2025-04-01","validTo":"2099-04-30"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec).Data.(map[string]any)["id"].(string)

	rec = f.do(t, branchAdmin, http.MethodGet, "/offers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	promos := decode(t, rec).Data.(map[string]any)["promoCodes"].([]any)
	require.Len(t, promos, 1)
	promo := promos[0].(map[string]any)
	assert.Equal(t, "SPRING", promo["code"])
	assert.Equal(t, "br-1", promo["branchId"])
	assert.Equal(t, true, promo["activeNow"])

	rec = f.do(t, superAdmin, http.MethodPatch, "/offers/promo-codes/"+id, `{"isActive":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, superAdmin, http.MethodPatch, "/offers/promo-codes/"+id, `{}`).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, superAdmin, http.MethodPost, "/offers/vouchers", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, superAdmin, http.MethodGet, "/offers", "").Code)
}

func TestMessageRoutes(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do(t, superAdmin, http.MethodPost, "/messages", `{"content":"hi"}`).Code)
	require.Equal(t, http.StatusCreated, f.do(t, superAdmin, http.MethodPost, "/messages", `{"content":"hi","recipientBranchId":"br-1"}`).Code)

	rec := f.do(t, branchAdmin, http.MethodGet, "/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode(t, rec).Data.([]any)
	require.Len(t, items, 1)
	msg := items[0].(map[string]any)
	assert.Equal(t, "sent", msg["status"])

	rec = f.do(t, branchAdmin, http.MethodPost, "/messages/"+msg["id"].(string)+"/seen", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items = decode(t, f.do(t, branchAdmin, http.MethodGet, "/messages", "")).Data.([]any)
	assert.Equal(t, "seen", items[0].(map[string]any)["status"])
}

func TestNotificationReadFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.notes.Handle(ctx, domain.SourceBooking, repository.Change{Kind: repository.ChangeAdded, Doc: repository.Document{ID: "b9", Data: map[string]any{"customerName": "Asha", "serviceName": "Haircut"}}})
	f.notes.Handle(ctx, domain.SourceFeedback, repository.Change{Kind: repository.ChangeAdded, Doc: repository.Document{ID: "f1", Data: map[string]any{"customerName": "Ravi", "rating": int64(5)}}})

	rec := f.do(t, superAdmin, http.MethodGet, "/notifications", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec).Data.(map[string]any)
	assert.Equal(t, 2.0, data["unread"])

	rec = f.do(t, superAdmin, http.MethodPost, "/notifications/b9/read", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decode(t, rec).Data.(map[string]any)["unread"])

	rec = f.do(t, superAdmin, http.MethodPost, "/notifications/read-all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, decode(t, rec).Data.(map[string]any)["unread"])

	assert.False(t, f.notes.Handle(ctx, domain.SourceBooking, repository.Change{Kind: repository.ChangeAdded, Doc: repository.Document{ID: "b9"}}))
}

func TestNotificationStream(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.router.ServeHTTP(w, r.WithContext(authctx.WithCurrentUser(r.Context(), superAdmin)))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/notifications/stream", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ready", lines.Text())
	require.Equal(t, 1, f.stream.Listeners())

	f.notes.Handle(context.Background(), domain.SourceMessage, repository.Change{Kind: repository.ChangeAdded, Doc: repository.Document{ID: "m1", Data: map[string]any{"senderName": "Uptown", "content": "Need towels"}}})

	var got []string
	for lines.Scan() {
		got = append(got, lines.Text())
		if strings.HasPrefix(lines.Text(), "data: {") && strings.Contains(lines.Text(), "m1") {
			break
		}
	}
	joined := strings.Join(got, "\n")
	assert.Contains(t, joined, "id: m1\nevent: notification")
	assert.Contains(t, joined, `"sound":true`)

	cancel()
	require.Eventually(t, func() bool { return f.stream.Listeners() == 0 }, time.Second, 5*time.Millisecond)
}

func TestBranchAdminConfinedToOwnBranch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.do(t, branchAdmin, http.MethodDelete, "/expenses/e2", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	_, err := f.src.Get(ctx, repository.CollectionExpenses, "e2")
	require.NoError(t, err, "Uptown expense survives")
	assert.Equal(t, http.StatusOK, f.do(t, branchAdmin, http.MethodDelete, "/expenses/e1", "").Code)

	rec = f.do(t, superAdmin, http.MethodPost, "/offers/promo-codes", `{"branchId":"br-2","code":"uptown10","discountType":"fixed","discountValue":10,"validFrom":"2025-04-01","validTo":"2099-04-30"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	promo := decode(t, rec).Data.(map[string]any)["id"].(string)
	assert.Equal(t, http.StatusForbidden, f.do(t, branchAdmin, http.MethodPatch, "/offers/promo-codes/"+promo, `{"isActive":false}`).Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, branchAdmin, http.MethodDelete, "/offers/promo-codes/"+promo, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, branchAdmin, http.MethodDelete, "/offers/promo-codes/missing", "").Code)
	_, err = f.src.Get(ctx, repository.CollectionPromoCodes, promo)
	require.NoError(t, err)

	rec = f.do(t, superAdmin, http.MethodPost, "/messages", `{"content":"Uptown only","recipientBranchId":"br-2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	msg := decode(t, rec).Data.(map[string]any)["id"].(string)
	assert.Equal(t, http.StatusForbidden, f.do(t, branchAdmin, http.MethodPost, "/messages/"+msg+"/seen", "").Code)

	f.notes.Handle(ctx, domain.SourceBooking, repository.Change{Kind: repository.ChangeAdded, Doc: repository.Document{ID: "bU", Data: map[string]any{"customerName": "Ravi", "branch": "Uptown"}}})
	assert.Equal(t, http.StatusForbidden, f.do(t, branchAdmin, http.MethodGet, "/notifications", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, branchAdmin, http.MethodPost, "/notifications/bU/read", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, branchAdmin, http.MethodPost, "/notifications/read-all", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, branchAdmin, http.MethodGet, "/notifications/stream", "").Code)
	assert.Equal(t, 1, f.notes.Unread(), "the super admin's list is untouched")
}
