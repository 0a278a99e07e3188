package admin

import (
	"context"
	"fmt"

	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

// FindOrder loads a purchase order by its orderId field. Orders stored without
// an orderId are found by document id.
func FindOrder(ctx context.Context, r pager.Reader, orderID string) (*OrderDetail, error) {
	for _, field := range []string{"orderId", pager.DocumentIDField} {
		docs, err := r.Find(ctx, pager.Query{
			Collection: PurchaseOrdersCollection,
			Orderings:  pager.Descending("orderPlacedAt"),
			Limit:      1,
			Where:      []pager.Condition{{Field: field, Operator: pager.OperatorEq, Value: orderID}},
		})
		if err != nil {
			return nil, fmt.Errorf("cannot find order %s: %w: %w", orderID, pager.ErrFetchFailed, err)
		}

		if len(docs) > 0 {
			detail := ProjectOrderDetail(docs[0])
			return &detail, nil
		}
	}

	return nil, fmt.Errorf("order %s: %w", orderID, pager.ErrDocumentNotFound)
}
