package pager

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// DocumentIDField addresses the store-assigned document id in orderings,
// cursors and conditions.
const DocumentIDField = "__id__"

// Document is one schema-less record of a collection. Nested objects are
// map[string]any and addressed with dotted paths ("shippingAddress.fullName").
type Document struct {
	ID     string
	Fields map[string]any
}

func NewDocument(id string, fields map[string]any) Document {
	if fields == nil {
		fields = map[string]any{}
	}

	return Document{ID: id, Fields: fields}
}

// Lookup returns the value at a dotted path.
func (d Document) Lookup(path string) (any, bool) {
	if path == DocumentIDField {
		return d.ID, true
	}

	var cur any = d.Fields
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}

		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}

	return cur, true
}

func (d Document) Has(path string) bool {
	v, ok := d.Lookup(path)
	return ok && v != nil
}

// String returns the text at path, or "" when absent. Non-string scalars are
// formatted.
func (d Document) String(path string) string {
	return d.StringOr(path, "")
}

func (d Document) StringOr(path, fallback string) string {
	v, ok := d.Lookup(path)
	if !ok || v == nil {
		return fallback
	}

	switch vt := v.(type) {
	case string:
		return vt
	case time.Time:
		return vt.Format(time.RFC3339)
	case fmt.Stringer:
		return vt.String()
	case map[string]any, []any:
		return fallback
	default:
		return fmt.Sprint(vt)
	}
}

func (d Document) Float(path string) float64 {
	v, ok := d.Lookup(path)
	if !ok {
		return 0
	}

	if f, ok := toFloat(v); ok {
		return f
	}

	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return f
		}
	}

	return 0
}

func (d Document) Int(path string) int64 {
	return int64(d.Float(path))
}

func (d Document) Bool(path string) bool {
	v, ok := d.Lookup(path)
	if !ok {
		return false
	}

	switch vt := v.(type) {
	case bool:
		return vt
	case string:
		b, _ := strconv.ParseBool(vt)
		return b
	default:
		f, ok := toFloat(v)
		return ok && f != 0
	}
}

// Time returns the timestamp at path. RFC 3339 strings and unix milliseconds
// are accepted as well.
func (d Document) Time(path string) time.Time {
	v, ok := d.Lookup(path)
	if !ok {
		return time.Time{}
	}

	parsed := parseAnyValue(v)
	if t, ok := parsed.(time.Time); ok {
		return t
	}

	if ms, ok := toFloat(parsed); ok {
		return time.UnixMilli(int64(ms)).UTC()
	}

	return time.Time{}
}

// Strings returns the list at path with non-string items formatted.
func (d Document) Strings(path string) []string {
	v, ok := d.Lookup(path)
	if !ok {
		return []string{}
	}

	switch vt := v.(type) {
	case []string:
		return append([]string{}, vt...)
	case []any:
		return lo.FilterMap(vt, func(item any, _ int) (string, bool) {
			if item == nil {
				return "", false
			}
			return fmt.Sprint(item), true
		})
	default:
		return []string{}
	}
}

// Map returns the nested object at path as a document sharing the same id.
func (d Document) Map(path string) Document {
	v, _ := d.Lookup(path)
	m, ok := v.(map[string]any)
	if !ok {
		m = map[string]any{}
	}

	return Document{ID: d.ID, Fields: m}
}

// List returns the nested objects at path.
func (d Document) List(path string) []Document {
	v, _ := d.Lookup(path)
	items, ok := v.([]any)
	if !ok {
		return []Document{}
	}

	return lo.FilterMap(items, func(item any, _ int) (Document, bool) {
		m, ok := item.(map[string]any)
		return Document{ID: d.ID, Fields: m}, ok
	})
}

// Merge returns a copy of the document with fields set at their dotted paths.
// The receiver is not modified.
func (d Document) Merge(fields map[string]any) Document {
	out := Document{ID: d.ID, Fields: deepCopy(d.Fields)}
	for path, value := range fields {
		setPath(out.Fields, strings.Split(path, "."), value)
	}

	return out
}

func setPath(m map[string]any, keys []string, value any) {
	if len(keys) == 1 {
		m[keys[0]] = value
		return
	}

	next, ok := m[keys[0]].(map[string]any)
	if !ok {
		next = map[string]any{}
		m[keys[0]] = next
	}

	setPath(next, keys[1:], value)
}

func deepCopy(m map[string]any) map[string]any {
	out := maps.Clone(m)
	if out == nil {
		return map[string]any{}
	}

	for k, v := range out {
		switch vt := v.(type) {
		case map[string]any:
			out[k] = deepCopy(vt)
		case []any:
			out[k] = lo.Map(vt, func(item any, _ int) any {
				if nested, ok := item.(map[string]any); ok {
					return deepCopy(nested)
				}
				return item
			})
		}
	}

	return out
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	return Document{ID: d.ID, Fields: deepCopy(d.Fields)}
}
