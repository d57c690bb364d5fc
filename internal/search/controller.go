package search

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/sonata/internal/models"
)

// DefaultPageSize is the number of songs fetched per unfiltered page.
const DefaultPageSize = 6

const (
	MessageFetchFailed  = "Failed to fetch songs"
	MessageSearchFailed = "Failed to search songs"
)

// ErrRetrieval wraps any store fault raised while listing or searching.
var ErrRetrieval = fmt.Errorf("song retrieval failed")

// Store is the catalog the controller reads from.
type Store interface {
	// Page returns up to limit songs in catalog order following the song with ID after ("" for the start).
	Page(ctx context.Context, after string, limit int) ([]models.Song, error)
	// All returns the entire catalog in catalog order.
	All(ctx context.Context) ([]models.Song, error)
}

// Mode is the retrieval mode selected by a term.
type Mode int

const (
	Unfiltered Mode = iota
	Filtered
)

func (m Mode) String() string {
	if m == Filtered {
		return "filtered"
	}
	return "unfiltered"
}

// ModeFor returns the retrieval mode for term.
func ModeFor(term string) Mode {
	if Normalize(term) == "" {
		return Unfiltered
	}
	return Filtered
}

// State is a snapshot of a listing session.
type State struct {
	Term    string        // Term as entered
	Songs   []models.Song // Accumulated results
	Cursor  string        // ID of the last listed song; empty in filtered mode or before the first page
	HasMore bool          // Whether LoadMore can fetch another page
	Loading bool          // Whether a retrieval is in flight
	Err     error         // Last retrieval fault, wrapping ErrRetrieval
	Message string        // User-facing description of Err
}

// Mode returns the retrieval mode for the snapshot's term.
func (s State) Mode() Mode {
	return ModeFor(s.Term)
}

// Failed reports whether the last retrieval failed.
func (s State) Failed() bool {
	return s.Err != nil
}

func (s State) clone() State {
	s.Songs = slices.Clone(s.Songs)
	if s.Songs == nil {
		s.Songs = []models.Song{}
	}
	return s
}

// Option configures a [Controller].
type Option func(*Controller)

// WithLogger sets the logger used to report retrieval faults.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithPageSize overrides [DefaultPageSize]. Non-positive sizes are ignored.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithUpdateBuffer sets the capacity of the [Controller.Updates] channel.
func WithUpdateBuffer(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.updates = make(chan State, n)
		}
	}
}

// Controller owns one listing session. It is safe for concurrent use.
type Controller struct {
	store    Store
	logger   *log.Logger
	pageSize int

	mu      sync.Mutex
	state   State
	token   uint64
	cancel  context.CancelFunc
	updates chan State
	closed  bool
	wg      sync.WaitGroup
}

// New creates a controller reading from store. No retrieval is issued until [Controller.SetSearchTerm].
func New(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		logger:   log.New(io.Discard),
		pageSize: DefaultPageSize,
		updates:  make(chan State, 16),
		state:    State{Songs: []models.Song{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageSize returns the unfiltered page size.
func (c *Controller) PageSize() int {
	return c.pageSize
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Updates delivers a snapshot after every state change. When the buffer is full the oldest queued
// snapshot is dropped, so the last value received always matches [Controller.State] once retrievals settle.
// The channel is closed by [Controller.Close].
func (c *Controller) Updates() <-chan State {
	return c.updates
}

// SetSearchTerm starts a new session for term: results, cursor and error are discarded and the first
// retrieval for the term's mode is issued. Any retrieval still in flight is cancelled and its result ignored.
func (c *Controller) SetSearchTerm(ctx context.Context, term string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.state = State{Term: term, Songs: []models.Song{}, Loading: true}
	c.issue(ctx, term, "")
}

// LoadMore fetches the page after the cursor and reports whether a retrieval was issued.
// It does nothing while loading, when no more songs are available, or in filtered mode.
func (c *Controller) LoadMore(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state.Loading || !c.state.HasMore || c.state.Mode() == Filtered {
		return false
	}

	c.state.Loading = true
	c.issue(ctx, c.state.Term, c.state.Cursor)
	return true
}

// Wait blocks until every issued retrieval has returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels any in-flight retrieval, waits for it to return and closes the updates channel.
// Calls after the first are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	c.wg.Wait()
	close(c.updates)
}

// issue starts a retrieval for term after cursor. Callers hold c.mu.
func (c *Controller) issue(ctx context.Context, term, cursor string) {
	if c.cancel != nil {
		c.cancel()
	}

	rctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.token++
	token := c.token

	c.publish()

	c.wg.Add(1)
	go c.retrieve(rctx, token, term, cursor)
}

func (c *Controller) retrieve(ctx context.Context, token uint64, term, cursor string) {
	defer c.wg.Done()

	if ModeFor(term) == Filtered {
		all, err := c.store.All(ctx)
		var matches []models.Song
		if err == nil {
			matches = Filter(all, term)
		}
		c.applySearch(token, matches, err)
		return
	}

	page, err := c.store.Page(ctx, cursor, c.pageSize)
	c.applyPage(token, page, err)
}

// current reports whether token belongs to the most recent retrieval. Callers hold c.mu.
func (c *Controller) current(token uint64) bool {
	if c.closed || token != c.token {
		c.logger.Debug("discarding stale retrieval", "token", token, "current", c.token)
		return false
	}
	return true
}

func (c *Controller) applySearch(token uint64, matches []models.Song, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.current(token) {
		return
	}

	c.state.Loading = false
	if err != nil {
		c.fail(MessageSearchFailed, err)
		return
	}

	c.clearError()
	c.state.Songs = matches
	c.state.Cursor = ""
	c.state.HasMore = false
	c.publish()
}

func (c *Controller) applyPage(token uint64, page []models.Song, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.current(token) {
		return
	}

	c.state.Loading = false
	if err != nil {
		c.fail(MessageFetchFailed, err)
		return
	}

	c.clearError()
	if len(page) == 0 {
		c.state.HasMore = false
		c.publish()
		return
	}

	c.state.Songs = append(c.state.Songs, page...)
	c.state.Cursor = page[len(page)-1].ID
	c.state.HasMore = len(page) == c.pageSize
	c.publish()
}

// fail records a retrieval fault, keeping accumulated results. Callers hold c.mu.
func (c *Controller) fail(message string, err error) {
	c.state.Err = fmt.Errorf("%w: %w", ErrRetrieval, err)
	c.state.Message = message
	c.logger.Error(message, "term", c.state.Term, "cursor", c.state.Cursor, "err", err)
	c.publish()
}

func (c *Controller) clearError() {
	c.state.Err = nil
	c.state.Message = ""
}

// publish offers a snapshot to observers without blocking. When the buffer is full the oldest
// queued snapshot is discarded so the newest state is always delivered. Callers hold c.mu.
func (c *Controller) publish() {
	if c.closed {
		return
	}

	snapshot := c.state.clone()
	for {
		select {
		case c.updates <- snapshot:
			return
		default:
		}

		select {
		case <-c.updates:
		default:
			// unbuffered and nobody is receiving
			return
		}
	}
}
