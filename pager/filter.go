package pager

import (
	"fmt"
	"strings"
)

// FilterMode decides where the free text filter is applied.
type FilterMode string

const (
	// FilterLocal filters the fetched page only. The total count is not
	// reduced and a page may come back empty while other pages match.
	FilterLocal FilterMode = "local"
	// FilterGlobal pushes the filter into the store query and counts with it.
	FilterGlobal FilterMode = "global"
)

func (m FilterMode) Valid() bool {
	return m == FilterLocal || m == FilterGlobal
}

func (m FilterMode) String() string {
	return string(m)
}

// ParseFilterMode parses a mode name. Empty input yields FilterLocal.
func ParseFilterMode(s string) (FilterMode, error) {
	switch m := FilterMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return FilterLocal, nil
	case FilterLocal, FilterGlobal:
		return m, nil
	default:
		return "", fmt.Errorf("unknown filter mode '%s'", s)
	}
}

// ContainsFold reports whether any of the fields of doc contains text,
// ignoring case. An empty text matches every document.
func ContainsFold(doc Document, text string, fields []string) bool {
	if text == "" {
		return true
	}

	needle := strings.ToLower(text)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(doc.String(field)), needle) {
			return true
		}
	}

	return false
}

// FilterRows keeps the rows for which match returns true. An empty text
// returns rows unchanged.
func FilterRows[T any](rows []T, text string, match func(T, string) bool) []T {
	if text == "" {
		return rows
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if match(row, text) {
			out = append(out, row)
		}
	}

	return out
}
