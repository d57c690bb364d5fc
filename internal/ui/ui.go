package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/sonata/internal/search"
)

// Liker toggles the signed-in user's like on a song and reports the new state.
type Liker interface {
	ToggleLike(ctx context.Context, songID string) (bool, error)
}

// LikerFunc adapts a function to [Liker].
type LikerFunc func(ctx context.Context, songID string) (bool, error)

func (f LikerFunc) ToggleLike(ctx context.Context, songID string) (bool, error) {
	return f(ctx, songID)
}

// Model represents the listing/search view state.
type Model struct {
	ctx        context.Context
	controller *search.Controller
	debouncer  *search.Debouncer
	liker      Liker
	width      int
	height     int
	input      textinput.Model
	songs      list.Model
	spinner    spinner.Model
	state      search.State
	status     string
	help       help.Model
	keys       keyMap
}

// NewModel creates the view over controller. Term input is forwarded after the debouncer's quiet period.
// liker may be nil, in which case liking is disabled.
func NewModel(ctx context.Context, controller *search.Controller, debouncer *search.Debouncer, liker Liker) *Model {
	input := textinput.New()
	input.Placeholder = "Search songs or artists"
	input.Prompt = "⌕ "
	input.CharLimit = 100
	input.Focus()

	songs := list.New(nil, songDelegate(), 0, 0)
	songs.SetShowTitle(false)
	songs.SetShowHelp(false)
	songs.SetShowStatusBar(false)
	songs.SetFilteringEnabled(false)
	songs.DisableQuitKeybindings()

	return &Model{
		ctx:        ctx,
		controller: controller,
		debouncer:  debouncer,
		liker:      liker,
		input:      input,
		songs:      songs,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.spinner)),
		state:      controller.State(),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init starts the unfiltered listing and begins listening for controller updates.
func (m *Model) Init() tea.Cmd {
	m.controller.SetSearchTerm(m.ctx, "")
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForUpdate())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.songs.SetSize(msg.Width-4, max(msg.Height-8, 1))
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgStateChanged:
			m.applyState(msg.data.(search.State))
			return m, m.waitForUpdate()
		case MsgUpdatesClosed:
			return m, nil
		case MsgLikeToggled:
			m.applyLike(msg.data.(likeResult))
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the search input, status lines and results.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.heading.Render("sonata"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.state.Failed() {
		b.WriteString(styles.failure.Render(m.state.Message))
		b.WriteString("\n")
	}

	if len(m.state.Songs) == 0 && !m.state.Loading {
		b.WriteString(styles.notice.Render(m.emptyText()))
		b.WriteString("\n")
	} else {
		b.WriteString(m.songs.View())
		b.WriteString("\n")
	}

	b.WriteString(m.footer())
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}

	b.WriteString(m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

// Close stops pending input and the controller.
func (m *Model) Close() {
	m.debouncer.Stop()
	m.controller.Close()
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.loadMore):
		m.loadMore()
		return m, nil

	case key.Matches(msg, m.keys.like):
		return m, m.toggleLike()

	case key.Matches(msg, m.keys.clear):
		m.input.SetValue("")
		m.search("")
		return m, nil

	case key.Matches(msg, m.keys.down):
		if n := len(m.songs.Items()); n > 0 && m.songs.Index() == n-1 {
			m.loadMore()
		}
		fallthrough

	case key.Matches(msg, m.keys.up):
		var cmd tea.Cmd
		m.songs, cmd = m.songs.Update(msg)
		return m, cmd
	}

	before := m.input.Value()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if value := m.input.Value(); value != before {
		m.search(value)
	}
	return m, cmd
}

// search schedules a term change after the quiet period.
func (m *Model) search(term string) {
	m.debouncer.Trigger(func() {
		m.controller.SetSearchTerm(m.ctx, term)
	})
}

func (m *Model) loadMore() {
	if m.controller.LoadMore(m.ctx) {
		m.status = ""
	}
}

func (m *Model) toggleLike() tea.Cmd {
	if m.liker == nil {
		m.status = styles.notice.Render("Sign in to like songs")
		return nil
	}

	item, ok := m.songs.SelectedItem().(songItem)
	if !ok {
		return nil
	}

	song := item.song
	return func() tea.Msg {
		liked, err := m.liker.ToggleLike(m.ctx, song.ID)
		return likeToggledMsg(song, liked, err)
	}
}

func (m *Model) applyLike(res likeResult) {
	switch {
	case res.err != nil:
		m.status = styles.failure.Render(fmt.Sprintf("Failed to update like: %v", res.err))
	case res.liked:
		m.status = styles.liked.Render("♥ Liked " + res.song.DisplayTitle())
	default:
		m.status = styles.muted.Render("Removed like from " + res.song.DisplayTitle())
	}
}

// applyState renders a controller snapshot, keeping the selection when results were appended.
func (m *Model) applyState(state search.State) {
	previous := m.state
	m.state = state

	index := m.songs.Index()
	m.songs.SetItems(songItems(state.Songs))

	appended := state.Term == previous.Term && len(state.Songs) >= len(previous.Songs)
	if appended && index < len(state.Songs) {
		m.songs.Select(index)
	} else {
		m.songs.Select(0)
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	updates := m.controller.Updates()
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return updatesClosedMsg()
		}
		return stateChangedMsg(state)
	}
}

func (m *Model) emptyText() string {
	if m.state.Mode() == search.Filtered {
		return fmt.Sprintf("No songs match %q", strings.TrimSpace(m.state.Term))
	}
	return "No songs yet"
}

func (m *Model) footer() string {
	var parts []string
	if m.state.Loading {
		parts = append(parts, m.spinner.View()+" Loading...")
	}

	count := fmt.Sprintf("%d songs", len(m.state.Songs))
	if m.state.Mode() == search.Filtered {
		count = fmt.Sprintf("%d matches", len(m.state.Songs))
	}
	parts = append(parts, count)

	if m.state.HasMore {
		parts = append(parts, "more available")
	}
	return styles.muted.Render(strings.Join(parts, " • "))
}

func (m *Model) helpKeys() []key.Binding {
	keys := []key.Binding{m.keys.up, m.keys.down}
	if m.state.HasMore {
		keys = append(keys, m.keys.loadMore)
	}
	if m.liker != nil {
		keys = append(keys, m.keys.like)
	}
	return append(keys, m.keys.clear, m.keys.quit)
}
