package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"salonhub-backend/internal/db"
)

// FirestoreSource runs queries against Firestore. Filters are pushed into
// the query; ordering is left to the fetcher so that no composite index is
// needed.
type FirestoreSource struct {
	DB *db.Firestore
}

func (s FirestoreSource) query(q Query) firestore.Query {
	fq := s.DB.Client.Collection(q.Collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, f.Op, f.Value)
	}
	return fq
}

func (s FirestoreSource) Fetch(ctx context.Context, q Query) ([]Document, error) {
	iter := s.query(q).Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

func (s FirestoreSource) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.DB.Client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if db.IsNotFound(err) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s FirestoreSource) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	ref, _, err := s.DB.Client.Collection(collection).Add(ctx, toFirestore(data))
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s FirestoreSource) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields))
	for path, v := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: toFirestoreValue(v)})
	}
	_, err := s.DB.Client.Collection(collection).Doc(id).Update(ctx, updates)
	if db.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (s FirestoreSource) Delete(ctx context.Context, collection, id string) error {
	_, err := s.DB.Client.Collection(collection).Doc(id).Delete(ctx)
	return err
}

func (s FirestoreSource) Subscribe(ctx context.Context, q Query, fn func(Change)) error {
	it := s.query(q).Snapshots(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || db.IsCanceled(err) {
				return nil
			}
			return fmt.Errorf("listen %s: %w", q.Collection, err)
		}
		for _, ch := range snap.Changes {
			fn(Change{
				Kind: changeKind(ch.Kind),
				Doc:  Document{ID: ch.Doc.Ref.ID, Data: ch.Doc.Data()},
			})
		}
	}
}

func changeKind(k firestore.DocumentChangeKind) ChangeKind {
	switch k {
	case firestore.DocumentModified:
		return ChangeModified
	case firestore.DocumentRemoved:
		return ChangeRemoved
	default:
		return ChangeAdded
	}
}

func toFirestore(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = toFirestoreValue(v)
	}
	return out
}

func toFirestoreValue(v any) any {
	switch val := v.(type) {
	case serverTimestamp:
		return firestore.ServerTimestamp
	case arrayUnion:
		return firestore.ArrayUnion(val.values...)
	case map[string]any:
		return toFirestore(val)
	}
	return v
}
