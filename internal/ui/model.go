// Package ui is the terminal client for a Flip 7 table.
package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/flip-seven/internal/game/card"
	"github.com/palemoky/flip-seven/internal/game/session"
	"github.com/palemoky/flip-seven/internal/protocol"
	"github.com/palemoky/flip-seven/internal/sound"
	"github.com/palemoky/flip-seven/internal/transport"
)

// GameClient is the subset of transport.Client the UI drives
type GameClient interface {
	Connect() error
	Join(name string) error
	StartGame() error
	Hit() error
	Stay() error
	UseFreeze(target string) error
	UseFlipThree(target string) error
	NewRound() error
	Restart() error
	PlayerID() string
	RoomCode() string
	Close()
}

type screen int

const (
	screenConnecting screen = iota
	screenName
	screenTable
)

// --- tea messages ---

type serverMsg struct{ msg *protocol.Message }

type connectedMsg struct{}

type connErrMsg struct{ err error }

type reconnectingMsg struct{ attempt, maxTries int }

type reconnectedMsg struct{}

type closedMsg struct{}

type clearNoticeMsg struct{ seq int }

// Model is the bubbletea model of the client
type Model struct {
	client GameClient
	sounds sound.Player
	events chan tea.Msg

	screen  screen
	input   textinput.Model
	help    help.Model
	keys    keyMap
	name    string
	joining bool

	state *session.GameState

	notice    string
	noticeErr bool
	noticeSeq int
	status    string

	// action card being aimed, empty when not targeting
	targeting card.Type
	cursor    int

	width int
}

// New builds the model around a transport client and routes its callbacks into the program.
// A non-empty name joins automatically once connected.
func New(c *transport.Client, sounds sound.Player, name string) *Model {
	m := newModel(c, sounds, name)

	c.OnMessage = func(msg *protocol.Message) { m.push(serverMsg{msg: msg}) }
	c.OnReconnecting = func(attempt, maxTries int) { m.push(reconnectingMsg{attempt: attempt, maxTries: maxTries}) }
	c.OnReconnect = func() { m.push(reconnectedMsg{}) }
	c.OnClose = func() { m.push(closedMsg{}) }

	return m
}

func newModel(c GameClient, sounds sound.Player, name string) *Model {
	ti := textinput.New()
	ti.Placeholder = "your name"
	ti.CharLimit = session.MaxNameLength
	ti.Width = 24
	ti.SetValue(name)
	ti.Focus()

	return &Model{
		client: c,
		sounds: sounds,
		events: make(chan tea.Msg, 256),
		input:  ti,
		help:   help.New(),
		keys:   defaultKeyMap(),
		name:   name,
	}
}

// push hands a network event to the program; events beyond the buffer are dropped
func (m *Model) push(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.connect(), m.listen(), textinput.Blink)
}

func (m *Model) connect() tea.Cmd {
	return func() tea.Msg {
		if err := m.client.Connect(); err != nil {
			return connErrMsg{err: err}
		}
		return connectedMsg{}
	}
}

func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// me is the seat bound to this connection, nil before joining
func (m *Model) me() *session.Player {
	if m.state == nil {
		return nil
	}
	return m.state.PlayerByID(m.client.PlayerID())
}

func (m *Model) isHost() bool {
	return m.state != nil && m.state.HostID == m.client.PlayerID()
}

func (m *Model) myTurn() bool {
	if m.state == nil {
		return false
	}
	cur := m.state.CurrentPlayer()
	return cur != nil && cur.ID == m.client.PlayerID()
}

// targets lists the players an action card can be aimed at
func (m *Model) targets() []*session.Player {
	if m.state == nil {
		return nil
	}
	var out []*session.Player
	for _, p := range m.state.Players {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out
}

func (m *Model) play(cue string) {
	if cue != "" && m.sounds != nil {
		m.sounds.Play(cue)
	}
}
