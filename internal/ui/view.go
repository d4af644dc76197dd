package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	gameClient "github.com/palemoky/flip-seven/internal/client"
	"github.com/palemoky/flip-seven/internal/game/card"
	"github.com/palemoky/flip-seven/internal/game/session"
)

func (m *Model) View() string {
	var body string
	switch m.screen {
	case screenConnecting:
		body = m.viewConnecting()
	case screenName:
		body = m.viewName()
	default:
		body = m.viewTable()
	}

	var sb strings.Builder
	sb.WriteString(body)
	if m.status != "" {
		sb.WriteString("\n" + warnStyle.Render(m.status))
	}
	if m.notice != "" {
		style := infoStyle
		if m.noticeErr {
			style = errorStyle
		}
		sb.WriteString("\n" + style.Render(m.notice))
	}
	return docStyle.Render(sb.String())
}

func (m *Model) viewConnecting() string {
	return titleStyle.Render("FLIP 7") + "\n\nConnecting..." + dimStyle.Render("  (q to quit)")
}

func (m *Model) viewName() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("FLIP 7"))
	if code := m.client.RoomCode(); code != "" {
		sb.WriteString(dimStyle.Render("  room " + code))
	}
	sb.WriteString("\n\n")
	if m.state != nil && m.state.Phase != session.PhaseLobby {
		sb.WriteString(dimStyle.Render("A game is running. Enter your old name to take your seat back.") + "\n")
	}
	sb.WriteString("Name: " + m.input.View())
	if m.joining {
		sb.WriteString(dimStyle.Render("  joining..."))
	}
	sb.WriteString(promptStyle.Render(dimStyle.Render("enter to join, esc to quit")))
	return sb.String()
}

func (m *Model) viewTable() string {
	s := m.state
	if s == nil {
		return titleStyle.Render("FLIP 7") + "\n\nWaiting for the table..."
	}

	var sb strings.Builder
	sb.WriteString(m.viewHeader())
	sb.WriteString("\n\n")

	rows := make([]string, 0, len(s.Players))
	for i, p := range s.Players {
		rows = append(rows, m.viewPlayer(i, p))
	}
	if len(rows) == 0 {
		rows = append(rows, dimStyle.Render("nobody seated yet"))
	}
	sb.WriteString(boxStyle.Render(strings.Join(rows, "\n")))
	sb.WriteString("\n")

	if s.LastAction != "" {
		sb.WriteString("\n" + s.LastAction)
	}
	if m.targeting != "" {
		sb.WriteString("\n\n" + m.viewTargets())
	}
	sb.WriteString(promptStyle.Render(m.viewPrompt()))
	sb.WriteString("\n" + m.help.View(m.keys))
	return sb.String()
}

func (m *Model) viewHeader() string {
	s := m.state
	parts := []string{titleStyle.Render("FLIP 7")}
	if code := m.client.RoomCode(); code != "" {
		parts = append(parts, "room "+code)
	}
	if s.RoundNumber > 0 {
		parts = append(parts, fmt.Sprintf("round %d", s.RoundNumber))
	}
	parts = append(parts,
		fmt.Sprintf("to %d", s.TargetScore),
		fmt.Sprintf("deck %d", len(s.Deck)),
		fmt.Sprintf("discard %d", len(s.DiscardPile)))
	return strings.Join(parts, dimStyle.Render(" · "))
}

func (m *Model) viewPlayer(i int, p *session.Player) string {
	s := m.state

	marker := "  "
	if s.Phase == session.PhasePlaying && i == s.CurrentPlayerIndex {
		marker = turnStyle.Render("▶ ")
	}

	name := p.Name
	if p.ID == m.client.PlayerID() {
		name += " (you)"
	}
	if p.ID == s.HostID {
		name += " ★"
	}
	nameCell := lipgloss.NewStyle().Width(28).Render(name)
	if p.Busted {
		nameCell = bustStyle.Render(lipgloss.NewStyle().Width(28).Render(name))
	}

	score := fmt.Sprintf("%4d", p.Score)
	if s.Phase == session.PhasePlaying || s.Phase == session.PhaseRoundEnd {
		score += dimStyle.Render(fmt.Sprintf(" +%-3d", p.RoundScore))
	}

	var tags []string
	switch {
	case p.Busted:
		tags = append(tags, errorStyle.Render("BUST"))
	case p.Stayed:
		tags = append(tags, infoStyle.Render("stayed"))
	}
	if p.HasSecondChance {
		tags = append(tags, chanceCard.Render("2nd"))
	}
	if !p.Connected {
		tags = append(tags, dimStyle.Render("offline"))
	}

	return marker + nameCell + score + "  " + renderCards(p.Cards) + " " + strings.Join(tags, " ")
}

func renderCards(cards []card.Card) string {
	if len(cards) == 0 {
		return dimStyle.Render("-")
	}
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = cardStyle(c.Type).Render(c.Label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func (m *Model) viewTargets() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Play %s on:\n", card.Label(m.targeting, 0))
	for i, p := range m.targets() {
		line := "  " + p.Name
		if p.ID == m.client.PlayerID() {
			line += " (you)"
		}
		if i == m.cursor {
			line = cursorStyle.Render("> " + strings.TrimPrefix(line, "  "))
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString(dimStyle.Render("enter to play, esc to cancel"))
	return sb.String()
}

func (m *Model) viewPrompt() string {
	s := m.state
	switch s.Phase {
	case session.PhaseLobby:
		if m.isHost() {
			if len(s.Players) < 2 {
				return "Waiting for at least one more player..."
			}
			return "Press enter to start the game."
		}
		return "Waiting for the host to start..."
	case session.PhasePlaying:
		if m.myTurn() {
			risk := gameClient.FromState(s).BustChance(m.me().Cards)
			return turnStyle.Render("Your turn: h to hit, s to stay.") +
				dimStyle.Render(fmt.Sprintf("  bust risk %.0f%%", risk*100))
		}
		if cur := s.CurrentPlayer(); cur != nil {
			return fmt.Sprintf("Waiting for %s...", cur.Name)
		}
	case session.PhaseRoundEnd:
		if m.isHost() {
			return "Round over. Press enter for the next round."
		}
		return "Round over. Waiting for the host..."
	case session.PhaseGameOver:
		winner := s.PlayerByID(s.Winner)
		text := "Game over."
		if winner != nil {
			text = fmt.Sprintf("Game over. %s wins with %d!", winner.Name, winner.Score)
		}
		if m.isHost() {
			text += " Press enter or r to play again."
		}
		return text
	}
	return ""
}
