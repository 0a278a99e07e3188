// Package memstore keeps collections in memory. It backs local development,
// the seeded demo mode and tests.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

// Store is a concurrency-safe in-memory document store.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]pager.Document
}

// New creates an empty store.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string]pager.Document),
	}
}

// Count implements pager.Reader.
func (s *Store) Count(ctx context.Context, q pager.Query) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filter := pager.Query{Search: q.Search, Where: q.Where}

	var n int64
	for _, doc := range s.collections[q.Collection] {
		if filter.Matches(doc) {
			n++
		}
	}

	return n, nil
}

// Find implements pager.Reader.
func (s *Store) Find(ctx context.Context, q pager.Query) ([]pager.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	docs := lo.FilterMap(lo.Values(s.collections[q.Collection]), func(doc pager.Document, _ int) (pager.Document, bool) {
		if !q.Matches(doc) {
			return pager.Document{}, false
		}
		return doc.Clone(), true
	})
	s.mu.RUnlock()

	slices.SortFunc(docs, func(a, b pager.Document) int {
		switch {
		case q.Less(a, b):
			return -1
		case q.Less(b, a):
			return 1
		default:
			return 0
		}
	})

	if limit := q.DatasetLimit(); limit != pager.NoLimit && len(docs) > limit {
		docs = docs[:limit]
	}

	return docs, nil
}

// Update implements pager.Writer.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, pager.ErrDocumentNotFound)
	}

	s.collections[collection][id] = doc.Merge(fields)

	return nil
}

// Delete implements pager.Writer.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, pager.ErrDocumentNotFound)
	}

	delete(s.collections[collection], id)

	return nil
}

// Insert implements pager.Inserter. Documents without an id get a random one;
// existing ids are overwritten.
func (s *Store) Insert(ctx context.Context, collection string, docs ...pager.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]pager.Document, len(docs))
		s.collections[collection] = coll
	}

	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		coll[doc.ID] = doc.Clone()
	}

	return nil
}

// Collections lists the collection names in sorted order.
func (s *Store) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := lo.Keys(s.collections)
	slices.Sort(names)

	return names
}

var (
	_ pager.Store    = (*Store)(nil)
	_ pager.Inserter = (*Store)(nil)
)
