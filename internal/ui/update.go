package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/flip-seven/internal/game/card"
	"github.com/palemoky/flip-seven/internal/game/rule"
	"github.com/palemoky/flip-seven/internal/game/session"
	"github.com/palemoky/flip-seven/internal/logger"
	"github.com/palemoky/flip-seven/internal/protocol"
	"github.com/palemoky/flip-seven/internal/protocol/codec"
)

const noticeTTL = 3 * time.Second

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case connectedMsg:
		m.screen = screenName
		if m.name != "" {
			return m, m.join(m.name)
		}
		return m, nil

	case connErrMsg:
		m.status = fmt.Sprintf("Cannot reach server: %v", msg.err)
		return m, nil

	case serverMsg:
		cmd := m.handleServerMessage(msg.msg)
		return m, tea.Batch(cmd, m.listen())

	case reconnectingMsg:
		m.status = fmt.Sprintf("Connection lost, reconnecting (%d/%d)...", msg.attempt, msg.maxTries)
		return m, m.listen()

	case reconnectedMsg:
		m.status = ""
		return m, tea.Batch(m.setNotice("Reconnected.", false), m.listen())

	case closedMsg:
		m.status = "Disconnected from server. Press q to quit."
		return m, m.listen()

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	}

	if m.screen == screenName {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) setNotice(text string, isErr bool) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	m.noticeErr = isErr
	seq := m.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })
}

// send runs a client call and turns a local failure into a notice
func (m *Model) send(err error) tea.Cmd {
	if err != nil {
		return m.setNotice(err.Error(), true)
	}
	return nil
}

func (m *Model) join(name string) tea.Cmd {
	m.name = name
	m.joining = true
	return m.send(m.client.Join(name))
}

// --- keys ---

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	switch m.screen {
	case screenConnecting:
		if key.Matches(msg, m.keys.Quit) {
			return m.quit()
		}
		return m, nil
	case screenName:
		return m.handleNameKey(msg)
	default:
		if m.targeting != "" {
			return m.handleTargetKey(msg)
		}
		return m.handleTableKey(msg)
	}
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.client.Close()
	return m, tea.Quit
}

func (m *Model) handleNameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.quit()
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			return m, m.setNotice("Enter a name first.", true)
		}
		return m, m.join(name)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Hit):
		return m, m.send(m.client.Hit())
	case key.Matches(msg, m.keys.Stay):
		return m, m.send(m.client.Stay())
	case key.Matches(msg, m.keys.Freeze):
		return m, m.startTargeting(card.Freeze)
	case key.Matches(msg, m.keys.FlipThree):
		return m, m.startTargeting(card.FlipThree)
	case key.Matches(msg, m.keys.Advance):
		return m, m.advance()
	case key.Matches(msg, m.keys.Restart):
		return m, m.send(m.client.Restart())
	}
	return m, nil
}

// advance is the host's enter key: start from the lobby, deal the next round after a round ends
func (m *Model) advance() tea.Cmd {
	if m.state == nil {
		return nil
	}
	switch m.state.Phase {
	case session.PhaseLobby:
		return m.send(m.client.StartGame())
	case session.PhaseRoundEnd:
		return m.send(m.client.NewRound())
	case session.PhaseGameOver:
		return m.send(m.client.Restart())
	}
	return nil
}

func (m *Model) startTargeting(t card.Type) tea.Cmd {
	me := m.me()
	if me == nil || rule.Count(me.Cards, t) == 0 {
		return m.setNotice(fmt.Sprintf("You don't hold a %s card.", card.Label(t, 0)), true)
	}
	m.targeting = t
	m.cursor = 0
	for i, p := range m.targets() {
		if p.ID == me.ID {
			m.cursor = i
		}
	}
	return nil
}

func (m *Model) handleTargetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	targets := m.targets()
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.targeting = ""
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(targets)-1 {
			m.cursor++
		}
	case msg.Type == tea.KeyEnter:
		t := m.targeting
		m.targeting = ""
		if m.cursor >= len(targets) {
			return m, nil
		}
		target := targets[m.cursor].ID
		if t == card.Freeze {
			return m, m.send(m.client.UseFreeze(target))
		}
		return m, m.send(m.client.UseFlipThree(target))
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	}
	return m, nil
}

// --- server messages ---

func (m *Model) handleServerMessage(msg *protocol.Message) tea.Cmd {
	switch msg.Type {
	case protocol.MsgState:
		state, err := codec.ParsePayload[session.GameState](msg)
		if err != nil {
			logger.LogError("bad state payload: %v", err)
			return nil
		}
		m.play(cueFor(m.state, state, m.client.PlayerID()))
		m.state = state

		if m.screen == screenName && m.me() != nil {
			m.screen = screenTable
			m.joining = false
			m.input.Blur()
		}
		if m.targeting != "" && (!m.myTurn() || m.cursor >= len(m.targets())) {
			m.targeting = ""
		}
		return nil

	case protocol.MsgError:
		payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
		if err != nil {
			return nil
		}
		if m.screen == screenName {
			m.joining = false
		}
		return m.setNotice(payload.Message, true)
	}
	return nil
}
