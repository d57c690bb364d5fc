// Package search implements the song listing and search controller used by the terminal view.
//
// A [Controller] holds one listing session: the current term, the accumulated results, a pagination cursor
// and loading/error state. Each term selects one of two retrieval modes:
//
//   - Unfiltered (blank or whitespace-only term): pages of [DefaultPageSize] songs in catalog order,
//     appended as [Controller.LoadMore] is called, with the last song ID as cursor.
//   - Filtered: the whole catalog is fetched and reduced to songs whose title or artist contains the
//     term, case-insensitively. The complete match set arrives at once, so there is never more to load.
//
// Retrievals run on their own goroutines. Every retrieval carries a token; only the most recently issued
// one may change state, so results for an older term never overwrite those for a newer one. Superseded
// retrievals also have their context cancelled.
//
// Store faults are wrapped in [ErrRetrieval], logged, and surfaced as a static message. They never escape
// the controller.
package search
