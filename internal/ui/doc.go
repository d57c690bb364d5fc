// Package ui implements the interactive song listing/search view using bubbletea's Elm architecture.
//
// The view is a thin shell over a [search.Controller]:
//   - keystrokes in the search input are debounced with a [search.Debouncer] and then forwarded as SetSearchTerm
//   - controller state snapshots arrive on its Updates channel and are rendered as a list with fallback text
//   - ctrl+n, or moving past the last row, requests the next page through LoadMore
//   - ctrl+l toggles a like on the selected song when a [Liker] is configured (signed in)
//
// A spinner is shown while a retrieval is in flight and the controller's static error message is shown above
// the results, which stay visible.
package ui
