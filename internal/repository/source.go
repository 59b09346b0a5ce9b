package repository

import (
	"context"
	"errors"
)

// Collection names in the document store.
const (
	CollectionProducts        = "products"
	CollectionServices        = "services"
	CollectionBookings        = "bookings"
	CollectionExpenses        = "manualExpenses"
	CollectionBranches        = "branches"
	CollectionOrders          = "orders"
	CollectionOffers          = "offers"
	CollectionPromoCodes      = "promoCodes"
	CollectionLoyaltyPrograms = "loyaltyPrograms"
	CollectionCashback        = "cashbackPrograms"
	CollectionBranchMessages  = "branchMessages"
	CollectionAdminMessages   = "adminMessages"
	CollectionFeedback        = "feedback"
	CollectionFCMTokens       = "fcmTokens"
	CollectionAdmins          = "admins"
)

const (
	OpEqual         = "=="
	OpArrayContains = "array-contains"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is a raw record as stored. It never leaves this package undecoded.
type Document struct {
	ID   string
	Data map[string]any
}

type Filter struct {
	Field string
	Op    string
	Value any
}

// Query selects a whole collection, optionally narrowed by filters and
// sorted client-side by OrderBy.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Desc       bool
}

// Where returns a copy of q with an extra filter.
func (q Query) Where(field, op string, value any) Query {
	filters := make([]Filter, 0, len(q.Filters)+1)
	filters = append(filters, q.Filters...)
	q.Filters = append(filters, Filter{Field: field, Op: op, Value: value})
	return q
}

type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeModified
	ChangeRemoved
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeModified:
		return "modified"
	case ChangeRemoved:
		return "removed"
	}
	return "unknown"
}

type Change struct {
	Kind ChangeKind
	Doc  Document
}

type serverTimestamp struct{}

// ServerTimestamp is replaced by the store's clock when written.
var ServerTimestamp any = serverTimestamp{}

type arrayUnion struct {
	values []any
}

// ArrayUnion adds values to an array field without duplicating them.
func ArrayUnion(values ...any) any {
	return arrayUnion{values: values}
}

// Source is the document store behind the fetcher.
type Source interface {
	Fetch(ctx context.Context, q Query) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Create(ctx context.Context, collection string, data map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	// Subscribe blocks, delivering changes until ctx is done.
	Subscribe(ctx context.Context, q Query, fn func(Change)) error
}
