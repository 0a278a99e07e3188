// Package analytics computes the dashboard counts and chart series over the
// document collections.
package analytics

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/shubhamsharma16/SparekartAdmin/admin"
	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

// UnknownCategory labels products without a category.
const UnknownCategory = "Unknown"

// walkBatch is the page size used when scanning a collection.
const walkBatch = pager.MaxLimit

// Metrics are the headline counts of the dashboard.
type Metrics struct {
	Users          int64 `json:"users"`
	PurchaseOrders int64 `json:"purchaseOrders"`
	Complaints     int64 `json:"complaints"`
}

// FetchMetrics counts users, purchase orders and complaints concurrently.
func FetchMetrics(ctx context.Context, r pager.Reader) (Metrics, error) {
	var m Metrics

	g, gCtx := errgroup.WithContext(ctx)
	for collection, dst := range map[string]*int64{
		admin.UsersCollection:          &m.Users,
		admin.PurchaseOrdersCollection: &m.PurchaseOrders,
		admin.ComplaintsCollection:     &m.Complaints,
	} {
		collection, dst := collection, dst
		g.Go(func() error {
			n, err := r.Count(gCtx, pager.Query{Collection: collection})
			if err != nil {
				return fmt.Errorf("cannot count %s: %w: %w", collection, pager.ErrFetchFailed, err)
			}
			*dst = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Metrics{}, err
	}

	return m, nil
}

// Point is one labeled count of a series.
type Point struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DailyCounts counts the documents of a collection per UTC day of the
// timestamp at field. Documents without the field are skipped. Points are in
// date order.
func DailyCounts(ctx context.Context, r pager.Reader, collection, field string) ([]Point, error) {
	counts := map[string]int{}

	err := pager.Walk(ctx, r, pager.Query{
		Collection: collection,
		Orderings:  pager.Descending(field),
		Limit:      walkBatch,
	}, func(doc pager.Document) error {
		if t := doc.Time(field); !t.IsZero() {
			counts[t.UTC().Format("2006-01-02")]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	points := toPoints(counts)
	slices.SortFunc(points, func(a, b Point) int { return strings.Compare(a.Label, b.Label) })

	return points, nil
}

// CategoryCounts counts products per category, largest first.
func CategoryCounts(ctx context.Context, r pager.Reader) ([]Point, error) {
	counts := map[string]int{}

	err := pager.Walk(ctx, r, pager.Query{
		Collection: admin.ProductsCollection,
		Orderings:  pager.Descending("createdAt"),
		Limit:      walkBatch,
	}, func(doc pager.Document) error {
		counts[lo.CoalesceOrEmpty(doc.String("category"), UnknownCategory)]++
		return nil
	})
	if err != nil {
		return nil, err
	}

	points := toPoints(counts)
	slices.SortFunc(points, func(a, b Point) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Label, b.Label)
	})

	return points, nil
}

func toPoints(counts map[string]int) []Point {
	return lo.MapToSlice(counts, func(label string, count int) Point {
		return Point{Label: label, Count: count}
	})
}
