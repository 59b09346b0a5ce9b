package repository

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"sync"
	"time"
)

// MemorySource is an in-process document store with live subscriptions.
// It backs tests and local development without Firestore.
type MemorySource struct {
	mu      sync.Mutex
	data    map[string]map[string]map[string]any
	subs    map[int]memorySub
	nextID  int
	nextSub int
	now     func() time.Time

	// FailOn makes Fetch return an error for the named collections.
	FailOn map[string]error
}

type memorySub struct {
	q    Query
	ch   chan Change
	done chan struct{}
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		data: make(map[string]map[string]map[string]any),
		subs: make(map[int]memorySub),
		now:  time.Now,
	}
}

// Seed stores a document under a fixed id and notifies subscribers.
func (s *MemorySource) Seed(collection, id string, data map[string]any) {
	s.mu.Lock()
	coll := s.collection(collection)
	_, existed := coll[id]
	coll[id] = s.resolve(nil, data)
	doc := Document{ID: id, Data: copyMap(coll[id])}
	subs := s.matchingSubs(collection, doc)
	s.mu.Unlock()

	kind := ChangeAdded
	if existed {
		kind = ChangeModified
	}
	publish(subs, Change{Kind: kind, Doc: doc})
}

func (s *MemorySource) collection(name string) map[string]map[string]any {
	coll, ok := s.data[name]
	if !ok {
		coll = make(map[string]map[string]any)
		s.data[name] = coll
	}
	return coll
}

func (s *MemorySource) Fetch(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.FailOn[q.Collection]; ok {
		return nil, err
	}
	ids := make([]string, 0, len(s.data[q.Collection]))
	for id := range s.data[q.Collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		doc := Document{ID: id, Data: copyMap(s.data[q.Collection][id])}
		if matches(doc, q.Filters) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *MemorySource) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: copyMap(data)}, nil
}

func (s *MemorySource) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.nextID++
	id := "doc-" + strconv.Itoa(s.nextID)
	coll := s.collection(collection)
	coll[id] = s.resolve(nil, data)
	doc := Document{ID: id, Data: copyMap(coll[id])}
	subs := s.matchingSubs(collection, doc)
	s.mu.Unlock()

	publish(subs, Change{Kind: ChangeAdded, Doc: doc})
	return id, nil
}

func (s *MemorySource) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	current, ok := s.data[collection][id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	for k, v := range s.resolve(current, fields) {
		current[k] = v
	}
	doc := Document{ID: id, Data: copyMap(current)}
	subs := s.matchingSubs(collection, doc)
	s.mu.Unlock()

	publish(subs, Change{Kind: ChangeModified, Doc: doc})
	return nil
}

func (s *MemorySource) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	data, ok := s.data[collection][id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.data[collection], id)
	doc := Document{ID: id, Data: data}
	subs := s.matchingSubs(collection, doc)
	s.mu.Unlock()

	publish(subs, Change{Kind: ChangeRemoved, Doc: doc})
	return nil
}

// Subscribe first replays the current matching documents as added, then
// streams writes until ctx is done.
func (s *MemorySource) Subscribe(ctx context.Context, q Query, fn func(Change)) error {
	sub := memorySub{q: q, ch: make(chan Change, 64), done: make(chan struct{})}
	ch := sub.ch

	s.mu.Lock()
	s.nextSub++
	subID := s.nextSub
	s.subs[subID] = sub
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.subs, subID)
		s.mu.Unlock()
		close(sub.done)
	}()

	initial, err := s.Fetch(ctx, Query{Collection: q.Collection, Filters: q.Filters})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("listen %s: %w", q.Collection, err)
	}
	for _, doc := range initial {
		fn(Change{Kind: ChangeAdded, Doc: doc})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case change := <-ch:
			fn(change)
		}
	}
}

func (s *MemorySource) matchingSubs(collection string, doc Document) []memorySub {
	var out []memorySub
	for _, sub := range s.subs {
		if sub.q.Collection == collection && matches(doc, sub.q.Filters) {
			out = append(out, sub)
		}
	}
	return out
}

// publish delivers change to every subscriber that is still listening.
func publish(subs []memorySub, change Change) {
	for _, sub := range subs {
		select {
		case sub.ch <- change:
		case <-sub.done:
		}
	}
}

func (s *MemorySource) resolve(current map[string]any, data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case serverTimestamp:
			out[k] = s.now().UTC()
		case arrayUnion:
			var existing []any
			if current != nil {
				existing, _ = current[k].([]any)
			}
			merged := append([]any(nil), existing...)
			for _, add := range val.values {
				if !containsValue(merged, add) {
					merged = append(merged, add)
				}
			}
			out[k] = merged
		default:
			out[k] = v
		}
	}
	return out
}

func matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		v := doc.Data[f.Field]
		switch f.Op {
		case OpEqual:
			if !equalValues(v, f.Value) {
				return false
			}
		case OpArrayContains:
			list, ok := v.([]any)
			if !ok {
				if strs, isStrs := v.([]string); isStrs {
					for _, s := range strs {
						list = append(list, s)
					}
				}
			}
			if !containsValue(list, f.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func containsValue(list []any, v any) bool {
	for _, item := range list {
		if equalValues(item, v) {
			return true
		}
	}
	return false
}

func equalValues(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
