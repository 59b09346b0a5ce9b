// Package notifier turns live "added" events on the message, booking and
// feedback collections into in-memory notifications.
//
// A change moves through subscribed -> candidate -> suppressed | emitted,
// and an emitted notification stays listed until it is acknowledged.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/ports"
	"salonhub-backend/internal/repository"
)

// WatchSpec is one live subscription.
type WatchSpec struct {
	Source domain.NotificationSource
	Query  repository.Query
}

// Watches returns the subscriptions for an admin. A super admin hears every
// branch; a branch admin only its own messages, bookings and feedback.
func Watches(role domain.AdminRole, branchID, branchName string) []WatchSpec {
	messages := WatchSpec{Source: domain.SourceMessage, Query: repository.InboxQuery(role, branchID)}
	messages.Query.OrderBy = ""
	bookings := WatchSpec{Source: domain.SourceBooking, Query: repository.Query{Collection: repository.CollectionBookings}}
	feedback := WatchSpec{Source: domain.SourceFeedback, Query: repository.Query{Collection: repository.CollectionFeedback}}
	if role != domain.RoleSuperAdmin && branchName != "" {
		bookings.Query = bookings.Query.Where("branch", repository.OpEqual, branchName)
		feedback.Query = feedback.Query.Where("branch", repository.OpEqual, branchName)
	}
	return []WatchSpec{messages, bookings, feedback}
}

// Audience is the admin a notifier collects notifications for.
type Audience struct {
	Role   domain.AdminRole
	Branch string
}

// Serves reports whether an admin may read and acknowledge the list. The
// zero Audience is the super admin's.
func (a Audience) Serves(role domain.AdminRole, branch string) bool {
	if a.Role == "" || a.Role == domain.RoleSuperAdmin {
		return role == domain.RoleSuperAdmin
	}
	return role == a.Role && branch != "" && strings.EqualFold(a.Branch, branch)
}

// DefaultSinkTimeout bounds one sink call.
const DefaultSinkTimeout = 5 * time.Second

// Notifier holds the unread notification list of one Audience.
type Notifier struct {
	Audience Audience
	Store    repository.Fetcher
	Reads    ReadStore
	Sinks    []ports.NotificationSink
	Watches  []WatchSpec
	Logger   *slog.Logger
	Metrics  *Metrics
	// SinkTimeout bounds each sink call, DefaultSinkTimeout when zero.
	SinkTimeout time.Duration

	now func() time.Time

	mu    sync.Mutex
	items []domain.Notification
	index map[string]struct{}
}

func New(store repository.Fetcher, reads ReadStore, watches []WatchSpec, logger *slog.Logger, metrics *Metrics, sinks ...ports.NotificationSink) *Notifier {
	if reads == nil {
		reads = NewMemoryReadStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		Store:   store,
		Reads:   reads,
		Sinks:   sinks,
		Watches: watches,
		Logger:  logger,
		Metrics: metrics,
		now:     time.Now,
		index:   make(map[string]struct{}),
	}
}

// Run subscribes every watch and blocks until ctx is cancelled. A failing
// subscription stops the others.
func (n *Notifier) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range n.Watches {
		g.Go(func() error {
			n.Logger.Info("notifier subscribed", "source", w.Source, "collection", w.Query.Collection)
			err := n.Store.Subscribe(gctx, w.Query, func(c repository.Change) {
				n.Handle(gctx, w.Source, c)
			})
			if err != nil {
				return fmt.Errorf("watch %s: %w", w.Source, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Handle processes one change event and reports whether a notification was
// emitted. Only added documents are candidates; an id that is already listed
// or already read is suppressed.
func (n *Notifier) Handle(ctx context.Context, source domain.NotificationSource, c repository.Change) bool {
	if c.Kind != repository.ChangeAdded || c.Doc.ID == "" {
		return false
	}
	id := c.Doc.ID

	read, err := n.Reads.Has(ctx, id)
	if err != nil {
		n.Logger.Warn("read-set lookup failed", "id", id, "err", err)
	}
	if read {
		n.Metrics.outcome(string(source), "suppressed")
		return false
	}

	note := n.build(source, c.Doc)

	n.mu.Lock()
	if _, listed := n.index[id]; listed {
		n.mu.Unlock()
		n.Metrics.outcome(string(source), "suppressed")
		return false
	}
	n.index[id] = struct{}{}
	n.items = append(n.items, note)
	n.mu.Unlock()

	n.Metrics.outcome(string(source), "emitted")
	for _, sink := range n.Sinks {
		if err := n.notify(ctx, sink, note); err != nil {
			name := sinkName(sink)
			n.Logger.Warn("notification sink failed", "sink", name, "id", id, "err", err)
			n.Metrics.sinkFailed(name)
		}
	}
	return true
}

func (n *Notifier) notify(ctx context.Context, sink ports.NotificationSink, note domain.Notification) error {
	timeout := n.SinkTimeout
	if timeout <= 0 {
		timeout = DefaultSinkTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return sink.Notify(ctx, note)
}

// Acknowledge persists id to the read-set and then drops it from the list.
// The list is untouched when the read-set write fails.
func (n *Notifier) Acknowledge(ctx context.Context, id string) error {
	if err := n.Reads.MarkRead(ctx, id); err != nil {
		return err
	}
	n.mu.Lock()
	if _, ok := n.index[id]; ok {
		delete(n.index, id)
		for i, item := range n.items {
			if item.ID == id {
				n.items = append(n.items[:i], n.items[i+1:]...)
				break
			}
		}
	}
	n.mu.Unlock()
	n.Metrics.ack()
	return nil
}

// AcknowledgeAll marks every listed notification read.
func (n *Notifier) AcknowledgeAll(ctx context.Context) error {
	for _, item := range n.List() {
		if err := n.Acknowledge(ctx, item.ID); err != nil {
			return err
		}
	}
	return nil
}

// List returns the unread notifications in arrival order.
func (n *Notifier) List() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.Notification, len(n.items))
	copy(out, n.items)
	return out
}

func (n *Notifier) Unread() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.items)
}

func (n *Notifier) build(source domain.NotificationSource, doc repository.Document) domain.Notification {
	note := domain.Notification{ID: doc.ID, Source: source}
	var at time.Time
	switch source {
	case domain.SourceMessage:
		m := domain.DecodeMessage(doc.ID, doc.Data)
		note.Title = "New message from " + m.SenderName
		note.Body = truncate(m.Content, 120)
		note.Branch = m.SenderBranchID
		at = m.Timestamp
	case domain.SourceBooking:
		b := domain.DecodeBooking(doc.ID, doc.Data)
		note.Title = "New booking"
		note.Body = b.CustomerName + " booked " + orDefault(b.ServiceName, "a service")
		if !b.Date.IsZero() {
			note.Body += " on " + b.Date.Format("2006-01-02")
			if b.Time != "" {
				note.Body += " at " + b.Time
			}
		}
		note.Branch = b.Branch
		at = b.CreatedAt
	case domain.SourceFeedback:
		f := domain.DecodeFeedback(doc.ID, doc.Data)
		note.Title = "New feedback"
		note.Body = fmt.Sprintf("%s rated %d/5", f.CustomerName, f.Rating)
		if f.Comment != "" {
			note.Body += ": " + truncate(f.Comment, 120)
		}
		note.Branch = f.Branch
		at = f.CreatedAt
	default:
		note.Title = "New activity"
	}
	if at.IsZero() {
		at = n.now().UTC()
	}
	note.CreatedAt = at
	return note
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func sinkName(s ports.NotificationSink) string {
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
