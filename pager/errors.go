package pager

import "errors"

var (
	// ErrFetchFailed wraps every count or page query failure. It is retryable.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrCursorGap is returned when the start marker for a page was never recorded.
	ErrCursorGap = errors.New("cursor gap: previous page was never fetched")
	// ErrMutationFailed wraps update and delete failures.
	ErrMutationFailed = errors.New("mutation failed")
	// ErrStaleFetch marks a result superseded by a newer request.
	ErrStaleFetch = errors.New("stale fetch discarded")
	// ErrInvalidCursor is returned for cursors and cursor tokens that do not
	// fit the view they are used with.
	ErrInvalidCursor = errors.New("invalid cursor")

	ErrPageOutOfRange   = errors.New("page out of range")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidView      = errors.New("invalid view")
)
