package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/search"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStateChanged MsgKind = iota
	MsgUpdatesClosed
	MsgLikeToggled
)

type likeResult struct {
	song  models.Song
	liked bool
	err   error
}

// stateChangedMsg is the constructor for [MsgStateChanged]
func stateChangedMsg(state search.State) Msg {
	return Msg{kind: MsgStateChanged, data: state}
}

// updatesClosedMsg is the constructor for [MsgUpdatesClosed]
func updatesClosedMsg() Msg {
	return Msg{kind: MsgUpdatesClosed}
}

// likeToggledMsg is the constructor for [MsgLikeToggled]
func likeToggledMsg(song models.Song, liked bool, err error) Msg {
	return Msg{kind: MsgLikeToggled, data: likeResult{song: song, liked: liked, err: err}}
}
