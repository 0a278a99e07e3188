package pager

import (
	"context"
	"fmt"
)

// Walk visits every document matching q page by page, following cursors
// instead of offsets. q.Limit is the batch size; NoLimit fetches everything
// in one call. Returning an error from fn stops the walk.
func Walk(ctx context.Context, r Reader, q Query, fn func(Document) error) error {
	if q.Limit != NoLimit {
		q.Limit = NormalizeLimit(q.Limit)
		q.Lookahead = true
	}

	if len(q.Orderings) == 0 {
		q.Orderings = Descending("")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		docs, err := r.Find(ctx, q)
		if err != nil {
			return fmt.Errorf("cannot walk %s: %w: %w", q.Collection, ErrFetchFailed, err)
		}

		docs, next, err := NextPageCursor(q, docs)
		if err != nil {
			return fmt.Errorf("cannot walk %s: %w", q.Collection, err)
		}

		for _, doc := range docs {
			if err = fn(doc); err != nil {
				return err
			}
		}

		if next == nil {
			return nil
		}
		q.After = next
	}
}
