// Package pager implements keyset pagination over document collections.
//
// Overview
//
// A View describes one list: the backing collection, the order field, the page
// size, the projection of a Document into a display row and the fields a free
// text filter applies to. FetchPage fetches exactly one page strictly after the
// cursor recorded for the previous page; it never falls back to offsets.
//
// Key concepts
//   - Cursor: the position of the last document of a page, stored as
//     (field, operator, value) elements over the orderings and inflated into a
//     DNF before it reaches a store.
//   - CursorTable: page number to start cursor. Slot 0 is the start marker.
//   - Reader, Writer: the data-access port implemented by the store packages.
//   - Session: stateful browsing with generation tagging, so a late result
//     never overwrites a newer page.
//   - Window: the numbered pagination buttons around the current page.
package pager
