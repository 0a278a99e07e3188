// Package mongostore keeps collections in MongoDB. Document paths are used as
// field paths unchanged and the document id is "_id".
package mongostore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

// Store implements pager.Store over a MongoDB database.
type Store struct {
	db     *mongo.Database
	logger zerolog.Logger
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

func New(db *mongo.Database, opts ...Option) *Store {
	s := &Store{db: db, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Connect opens a client for uri and checks the server is reachable.
func Connect(ctx context.Context, uri, database string, opts ...Option) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongo: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("cannot ping mongo: %w", err)
	}

	return New(client.Database(database), opts...), nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

// Count implements pager.Reader.
func (s *Store) Count(ctx context.Context, q pager.Query) (int64, error) {
	n, err := s.db.Collection(q.Collection).CountDocuments(ctx, queryFilter(q, false))
	if err != nil {
		return 0, fmt.Errorf("cannot count %s: %w", q.Collection, err)
	}

	return n, nil
}

// Find implements pager.Reader.
func (s *Store) Find(ctx context.Context, q pager.Query) ([]pager.Document, error) {
	opts := options.Find().SetSort(sortSpec(q.Orderings))
	if limit := q.DatasetLimit(); limit != pager.NoLimit {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.db.Collection(q.Collection).Find(ctx, queryFilter(q, true), opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find in %s: %w", q.Collection, err)
	}

	var raw []bson.M
	if err = cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", q.Collection, err)
	}

	return lo.Map(raw, func(m bson.M, _ int) pager.Document {
		return document(m)
	}), nil
}

// Update implements pager.Writer. Dotted keys are passed to $set unchanged.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{idKey: idValue(id)},
		bson.M{"$set": fields},
	)
	if err != nil {
		return fmt.Errorf("cannot update %s/%s: %w", collection, id, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, pager.ErrDocumentNotFound)
	}

	s.logger.Debug().Str("collection", collection).Str("id", id).Int("fields", len(fields)).Msg("document updated")

	return nil
}

// Delete implements pager.Writer.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{idKey: idValue(id)})
	if err != nil {
		return fmt.Errorf("cannot delete %s/%s: %w", collection, id, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, pager.ErrDocumentNotFound)
	}

	s.logger.Debug().Str("collection", collection).Str("id", id).Msg("document deleted")

	return nil
}

// Insert implements pager.Inserter. Documents without an id get an ObjectID.
func (s *Store) Insert(ctx context.Context, collection string, docs ...pager.Document) error {
	if len(docs) == 0 {
		return nil
	}

	raw := lo.Map(docs, func(doc pager.Document, _ int) any {
		m := bson.M{}
		for k, v := range doc.Fields {
			m[k] = v
		}
		if doc.ID != "" {
			m[idKey] = idValue(doc.ID)
		}
		return m
	})

	if _, err := s.db.Collection(collection).InsertMany(ctx, raw); err != nil {
		return fmt.Errorf("cannot insert into %s: %w", collection, err)
	}

	return nil
}

// document converts a decoded BSON document to a pager.Document.
func document(m bson.M) pager.Document {
	id := ""
	fields := make(map[string]any, len(m))
	for k, v := range m {
		if k == idKey {
			id = idString(v)
			continue
		}
		fields[k] = plain(v)
	}

	return pager.NewDocument(id, fields)
}

func idString(v any) string {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}

	return fmt.Sprint(v)
}

// plain replaces BSON specific types with their Go equivalents.
func plain(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	case bson.A:
		return lo.Map(t, func(e any, _ int) any { return plain(e) })
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case primitive.Decimal128:
		return t.String()
	default:
		return v
	}
}

var (
	_ pager.Store    = (*Store)(nil)
	_ pager.Inserter = (*Store)(nil)
)
