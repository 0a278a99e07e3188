package admin

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

//go:embed fixtures/demo.yaml
var demoFixtures []byte

// Fixtures maps collection names to documents.
type Fixtures map[string][]pager.Document

// DemoFixtures returns the bundled demo data set.
func DemoFixtures() (Fixtures, error) {
	var raw map[string][]map[string]any
	if err := yaml.Unmarshal(demoFixtures, &raw); err != nil {
		return nil, fmt.Errorf("cannot decode demo fixtures: %w", err)
	}

	return fixtures(raw), nil
}

// LoadFixtures decodes a YAML document mapping collection names to lists of
// documents. The "id" key of a document becomes its id. RFC 3339 strings are
// decoded as timestamps.
func LoadFixtures(r io.Reader) (Fixtures, error) {
	var raw map[string][]map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("cannot decode fixtures: %w", err)
	}

	return fixtures(raw), nil
}

func fixtures(raw map[string][]map[string]any) Fixtures {
	out := make(Fixtures, len(raw))
	for collection, docs := range raw {
		out[collection] = lo.Map(docs, func(fields map[string]any, _ int) pager.Document {
			id := ""
			if v, ok := fields["id"]; ok {
				id = fmt.Sprint(v)
				delete(fields, "id")
			}
			return pager.NewDocument(id, normalize(fields).(map[string]any))
		})
	}

	return out
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts.UTC()
		}
		return t
	default:
		return v
	}
}

// Collections returns the collection names in sorted order.
func (f Fixtures) Collections() []string {
	names := lo.Keys(f)
	slices.Sort(names)

	return names
}

// Seed inserts the fixtures and returns the number of documents written.
func Seed(ctx context.Context, ins pager.Inserter, f Fixtures) (int, error) {
	n := 0
	for _, collection := range f.Collections() {
		docs := f[collection]
		if err := ins.Insert(ctx, collection, docs...); err != nil {
			return n, fmt.Errorf("cannot seed %s: %w", collection, err)
		}
		n += len(docs)
	}

	return n, nil
}
