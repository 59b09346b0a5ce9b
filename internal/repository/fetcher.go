package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"salonhub-backend/internal/domain"
)

// Metrics counts store failures per collection.
type Metrics struct {
	fetchFailures *prometheus.CounterVec
}

// NewMetrics registers the fetcher counters on reg (the default registerer
// when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "salonhub_fetch_failures_total",
		Help: "Failed collection reads and writes by collection.",
	}, []string{"collection", "op"})
	reg.MustRegister(failures)
	return &Metrics{fetchFailures: failures}
}

func (m *Metrics) failure(collection, op string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(collection, op).Inc()
}

// Fetcher is the single entry point to the document store. It logs and
// counts failures at the point of I/O and sorts results client-side.
type Fetcher struct {
	Source  Source
	Logger  *slog.Logger
	Metrics *Metrics
}

func (f Fetcher) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

func (f Fetcher) fail(collection, op string, err error) {
	f.logger().Error("document store call failed", "collection", collection, "op", op, "err", err)
	f.Metrics.failure(collection, op)
}

// Fetch returns every document matching q.
func (f Fetcher) Fetch(ctx context.Context, q Query) ([]Document, error) {
	docs, err := f.Source.Fetch(ctx, q)
	if err != nil {
		f.fail(q.Collection, "fetch", err)
		return nil, fmt.Errorf("fetch %s: %w", q.Collection, err)
	}
	if q.OrderBy != "" {
		sortDocuments(docs, q.OrderBy, q.Desc)
	}
	return docs, nil
}

func (f Fetcher) Get(ctx context.Context, collection, id string) (Document, error) {
	doc, err := f.Source.Get(ctx, collection, id)
	if err != nil {
		if err != ErrNotFound {
			f.fail(collection, "get", err)
		}
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (f Fetcher) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	id, err := f.Source.Create(ctx, collection, data)
	if err != nil {
		f.fail(collection, "create", err)
		return "", fmt.Errorf("create %s: %w", collection, err)
	}
	return id, nil
}

func (f Fetcher) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := f.Source.Update(ctx, collection, id, fields); err != nil {
		if err != ErrNotFound {
			f.fail(collection, "update", err)
		}
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f Fetcher) Delete(ctx context.Context, collection, id string) error {
	if err := f.Source.Delete(ctx, collection, id); err != nil {
		f.fail(collection, "delete", err)
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f Fetcher) Subscribe(ctx context.Context, q Query, fn func(Change)) error {
	err := f.Source.Subscribe(ctx, q, fn)
	if err != nil {
		f.fail(q.Collection, "listen", err)
	}
	return err
}

func sortDocuments(docs []Document, field string, desc bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i].Data[field], docs[j].Data[field]
		if desc {
			return lessValue(b, a)
		}
		return lessValue(a, b)
	})
}

// lessValue orders dates chronologically, numbers numerically and anything
// else by its string form. Missing values sort first.
func lessValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b != nil
	}
	ta, okA := domain.ParseDate(a)
	tb, okB := domain.ParseDate(b)
	if okA && okB {
		return ta.Before(tb)
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa < fb
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b)) < 0
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	}
	return 0, false
}

// branchScope reports whether a branch filter narrows the query.
func branchScope(branch string) bool {
	b := strings.TrimSpace(branch)
	return b != "" && !strings.EqualFold(b, "all")
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
