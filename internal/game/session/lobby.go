package session

import (
	"fmt"
	"strings"

	"github.com/palemoky/flip-seven/internal/apperrors"
)

// Join seats a new player in the lobby, or rebinds an existing seat with the same name.
// Outside the lobby only rebinding is possible. Rebinding is keyed on the name alone, so a
// second connection using a taken name takes the seat over.
func (gs *GameSession) Join(connID, name string) error {
	name = normalizeName(name)
	if name == "" {
		return apperrors.ErrNameRequired
	}
	if gs.state.PlayerByID(connID) != nil {
		return apperrors.ErrAlreadyIn
	}

	existing := gs.playerByName(name)
	if gs.state.Phase != PhaseLobby {
		if existing == nil {
			return apperrors.ErrGameInProgress
		}
		gs.rebind(existing, connID)
		return nil
	}

	if existing != nil {
		if existing.Connected {
			return apperrors.ErrNameTaken
		}
		gs.rebind(existing, connID)
		return nil
	}
	if gs.rules.MaxPlayers > 0 && len(gs.state.Players) >= gs.rules.MaxPlayers {
		return apperrors.ErrRoomFull
	}

	p := &Player{ID: connID, Name: name, Connected: true}
	p.resetRound()
	gs.state.Players = append(gs.state.Players, p)
	gs.ensureHost()
	gs.state.LastAction = fmt.Sprintf("%s joined.", name)
	return nil
}

func (gs *GameSession) rebind(p *Player, connID string) {
	oldID := p.ID
	p.ID = connID
	p.Connected = true
	if gs.state.HostID == oldID {
		gs.state.HostID = connID
	}
	if gs.state.Winner == oldID {
		gs.state.Winner = connID
	}
	gs.ensureHost()
	gs.state.LastAction = fmt.Sprintf("%s reconnected.", p.Name)
}

// Disconnect marks the seat bound to connID as disconnected. The seat keeps its place in the
// turn order. If it was the host, the first connected player becomes host.
func (gs *GameSession) Disconnect(connID string) error {
	p := gs.state.PlayerByID(connID)
	if p == nil {
		return apperrors.ErrNotSeated
	}
	p.Connected = false
	gs.ensureHost()
	gs.state.LastAction = fmt.Sprintf("%s disconnected.", p.Name)
	return nil
}

// StartGame moves the lobby into round 1
func (gs *GameSession) StartGame(connID string) error {
	if err := gs.requireHost(connID); err != nil {
		return err
	}
	if gs.state.Phase != PhaseLobby {
		return apperrors.ErrWrongPhase
	}
	if len(gs.state.Players) < 2 {
		return apperrors.ErrNotEnoughPlayers
	}

	clear(gs.flipSevens)
	gs.state.RoundNumber = 0
	gs.startRound()
	return nil
}

// NewRound starts the next round after a round_end
func (gs *GameSession) NewRound(connID string) error {
	if err := gs.requireHost(connID); err != nil {
		return err
	}
	if gs.state.Phase != PhaseRoundEnd {
		return apperrors.ErrWrongPhase
	}

	gs.startRound()
	return nil
}

// Restart keeps the seats, zeroes scores, hands and flags and returns to the lobby
func (gs *GameSession) Restart(connID string) error {
	if err := gs.requireHost(connID); err != nil {
		return err
	}

	for _, p := range gs.state.Players {
		gs.discard(p.Cards...)
		p.resetRound()
		p.Score = 0
	}
	clear(gs.flipSevens)

	host := gs.state.PlayerByID(connID)
	gs.state.Phase = PhaseLobby
	gs.state.RoundNumber = 0
	gs.state.CurrentPlayerIndex = 0
	gs.state.Winner = ""
	gs.state.LastAction = fmt.Sprintf("%s restarted the game.", host.Name)
	return nil
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > MaxNameLength {
		name = strings.TrimSpace(string(r[:MaxNameLength]))
	}
	return name
}
