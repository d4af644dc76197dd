package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/flip-seven/internal/game/card"
)

var (
	docStyle    = lipgloss.NewStyle().Margin(1, 2)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	promptStyle = lipgloss.NewStyle().MarginTop(1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	turnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	bustStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Strikethrough(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)

	cardBase   = lipgloss.NewStyle().Padding(0, 1).Bold(true)
	numberCard = cardBase.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#FFFFFF"))
	modCard    = cardBase.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#9AE6B4"))
	multCard   = cardBase.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#F6E05E"))
	actionCard = cardBase.Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#805AD5"))
	chanceCard = cardBase.Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#D53F8C"))
)

func cardStyle(t card.Type) lipgloss.Style {
	switch t {
	case card.Modifier:
		return modCard
	case card.Multiplier:
		return multCard
	case card.SecondChance:
		return chanceCard
	case card.Freeze, card.FlipThree:
		return actionCard
	default:
		return numberCard
	}
}
