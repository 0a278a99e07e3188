// Package gormstore maps document collections onto SQL tables through gorm.
//
// Every collection is one table. Document paths map to columns: the default
// column of "shippingAddress.fullName" is "shipping_address__full_name", and
// the document id lives in the "id" column. Both can be overridden per
// collection.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/ettle/strcase"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

const (
	DefaultIDColumn = "id"
	// nestedSeparator joins the segments of a nested path in column names.
	nestedSeparator = "__"
)

// Collection describes the table behind a collection.
type Collection struct {
	Table    string
	IDColumn string
	// Columns maps document paths to column names.
	Columns map[string]string

	fields map[string]string
}

func (c Collection) column(field string) string {
	if field == pager.DocumentIDField {
		return lo.Ternary(c.IDColumn == "", DefaultIDColumn, c.IDColumn)
	}

	if col, ok := c.Columns[field]; ok {
		return col
	}

	segments := strings.Split(field, ".")
	return strings.Join(lo.Map(segments, func(s string, _ int) string { return strcase.ToSnake(s) }), nestedSeparator)
}

func (c Collection) field(column string) string {
	if f, ok := c.fields[column]; ok {
		return f
	}

	segments := strings.Split(column, nestedSeparator)
	return strings.Join(lo.Map(segments, func(s string, _ int) string { return strcase.ToCamel(s) }), ".")
}

func (c Collection) withDefaults(name string) Collection {
	if c.Table == "" {
		c.Table = strcase.ToSnake(path.Base(name))
	}

	if c.IDColumn == "" {
		c.IDColumn = DefaultIDColumn
	}

	c.fields = make(map[string]string, len(c.Columns))
	for field, col := range c.Columns {
		c.fields[col] = field
	}

	return c
}

// Store implements pager.Store over a gorm connection.
type Store struct {
	db          *gorm.DB
	collections map[string]Collection
	logger      zerolog.Logger
}

type Option func(*Store)

// WithCollection overrides the table mapping of a collection.
func WithCollection(name string, c Collection) Option {
	return func(s *Store) {
		s.collections[name] = c.withDefaults(name)
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:          db,
		collections: make(map[string]Collection),
		logger:      zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Open connects to driver ("sqlite", "mysql" or "postgres") at dsn.
func Open(driver, dsn string, opts ...Option) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver '%s'", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", driver, err)
	}

	return New(db, opts...), nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (s *Store) collection(name string) Collection {
	if c, ok := s.collections[name]; ok {
		return c
	}

	return Collection{}.withDefaults(name)
}

func (s *Store) filtered(ctx context.Context, c Collection, q pager.Query) (*gorm.DB, error) {
	fields := append(lo.Map(q.Where, func(cond pager.Condition, _ int) string { return cond.Field }), q.Orderings.Fields()...)
	if !q.Search.IsEmpty() {
		fields = append(fields, q.Search.Fields...)
	}

	for _, field := range fields {
		if err := checkColumn(c.column(field)); err != nil {
			return nil, err
		}
	}

	tx := s.db.WithContext(ctx).Table(c.Table)

	for _, cond := range q.Where {
		tx = tx.Clauses(c.conditionExpression(cond))
	}

	if exp := c.searchExpression(s.db.Dialector.Name(), q.Search); exp != nil {
		tx = tx.Clauses(exp)
	}

	return tx, nil
}

// Count implements pager.Reader.
func (s *Store) Count(ctx context.Context, q pager.Query) (int64, error) {
	c := s.collection(q.Collection)

	tx, err := s.filtered(ctx, c, pager.Query{Search: q.Search, Where: q.Where})
	if err != nil {
		return 0, err
	}

	var total int64
	if err = tx.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("cannot count %s: %w", c.Table, err)
	}

	return total, nil
}

// Find implements pager.Reader.
func (s *Store) Find(ctx context.Context, q pager.Query) ([]pager.Document, error) {
	c := s.collection(q.Collection)

	tx, err := s.filtered(ctx, c, q)
	if err != nil {
		return nil, err
	}

	if exp := c.dnfExpression(q.Filter()); exp != nil {
		tx = tx.Clauses(exp)
	}

	if len(q.Orderings) > 0 {
		tx = tx.Order(c.orderSQL(s.db.Dialector.Name(), q.Orderings))
	}

	if limit := q.DatasetLimit(); limit != pager.NoLimit {
		tx = tx.Limit(limit)
	}

	var rows []map[string]any
	if err = tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("cannot find in %s: %w", c.Table, err)
	}

	return lo.Map(rows, func(row map[string]any, _ int) pager.Document {
		return c.document(row)
	}), nil
}

func (c Collection) document(row map[string]any) pager.Document {
	id := ""
	fields := make(map[string]any, len(row))
	for col, value := range row {
		if b, ok := value.([]byte); ok {
			value = string(b)
		}

		// Nested objects and lists are stored as JSON text by Insert.
		if text, ok := value.(string); ok && (strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[")) {
			var decoded any
			if json.Unmarshal([]byte(text), &decoded) == nil {
				value = decoded
			}
		}

		if col == c.IDColumn {
			id = fmt.Sprint(value)
			continue
		}

		fields[c.field(col)] = value
	}

	// Merge expands dotted paths coming from the column mapping.
	return pager.NewDocument(id, nil).Merge(fields)
}

func (c Collection) row(fields map[string]any) (map[string]any, error) {
	row := make(map[string]any, len(fields))
	for field, value := range fields {
		col := c.column(field)
		if err := checkColumn(col); err != nil {
			return nil, err
		}

		switch value.(type) {
		case map[string]any, []any, []string:
			data, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("cannot encode %s: %w", field, err)
			}
			value = string(data)
		}

		row[col] = value
	}

	return row, nil
}

func (c Collection) byID(id string) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: c.IDColumn}, Value: id}
}

// Update implements pager.Writer.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	c := s.collection(collection)

	row, err := c.row(fields)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Table(c.Table).Where(c.byID(id)).Updates(row)
	if res.Error != nil {
		return fmt.Errorf("cannot update %s/%s: %w", c.Table, id, res.Error)
	}

	if res.RowsAffected == 0 {
		// MySQL reports zero affected rows when the values did not change.
		var n int64
		if err = s.db.WithContext(ctx).Table(c.Table).Where(c.byID(id)).Count(&n).Error; err != nil {
			return fmt.Errorf("cannot update %s/%s: %w", c.Table, id, err)
		}
		if n == 0 {
			return fmt.Errorf("%s/%s: %w", c.Table, id, pager.ErrDocumentNotFound)
		}
	}

	s.logger.Debug().Str("table", c.Table).Str("id", id).Int("fields", len(row)).Msg("document updated")

	return nil
}

// Delete implements pager.Writer.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	c := s.collection(collection)

	res := s.db.WithContext(ctx).Table(c.Table).Where(c.byID(id)).Delete(map[string]any{})
	if res.Error != nil {
		return fmt.Errorf("cannot delete %s/%s: %w", c.Table, id, res.Error)
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("%s/%s: %w", c.Table, id, pager.ErrDocumentNotFound)
	}

	s.logger.Debug().Str("table", c.Table).Str("id", id).Msg("document deleted")

	return nil
}

// Insert implements pager.Inserter. Nested objects and lists are stored as
// JSON text.
func (s *Store) Insert(ctx context.Context, collection string, docs ...pager.Document) error {
	if len(docs) == 0 {
		return nil
	}

	c := s.collection(collection)

	rows := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		row, err := c.row(flatten(c, doc.Fields))
		if err != nil {
			return err
		}
		if doc.ID != "" {
			row[c.IDColumn] = doc.ID
		}
		rows = append(rows, row)
	}

	if err := s.db.WithContext(ctx).Table(c.Table).Create(rows).Error; err != nil {
		return fmt.Errorf("cannot insert into %s: %w", c.Table, err)
	}

	return nil
}

// flatten turns nested objects into dotted paths, stopping at paths the
// collection maps explicitly.
func flatten(c Collection, fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))

	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			p := lo.Ternary(prefix == "", k, prefix+"."+k)
			if nested, ok := v.(map[string]any); ok {
				if _, mapped := c.Columns[p]; !mapped {
					walk(p, nested)
					continue
				}
			}
			out[p] = v
		}
	}
	walk("", fields)

	return out
}

var errUnsafeColumn = errors.New("unsafe column name")

func checkColumn(col string) error {
	if col == "" {
		return fmt.Errorf("%w: empty", errUnsafeColumn)
	}

	for _, r := range col {
		if r != '_' && (r < '0' || r > '9') && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return fmt.Errorf("%w: '%s'", errUnsafeColumn, col)
		}
	}

	return nil
}

var (
	_ pager.Store    = (*Store)(nil)
	_ pager.Inserter = (*Store)(nil)
)
