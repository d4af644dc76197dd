package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/flip-seven/internal/apperrors"
	"github.com/palemoky/flip-seven/internal/game/card"
	"github.com/palemoky/flip-seven/internal/protocol"
)

func TestTurnValidation(t *testing.T) {
	t.Parallel()

	lobby := newTestSession(t, "Ann", "Bob")
	err := lobby.Hit("c1")
	assert.ErrorIs(t, err, apperrors.ErrNotPlaying)
	assert.True(t, apperrors.IsSilent(err))

	gs := startedSession(t, "Ann", "Bob")
	before := gs.State().LastAction

	err = gs.Hit("stranger")
	assert.ErrorIs(t, err, apperrors.ErrNotSeated)
	assert.True(t, apperrors.IsSilent(err))

	err = gs.Stay("c2")
	assert.ErrorIs(t, err, apperrors.ErrNotYourTurn)
	assert.False(t, apperrors.IsSilent(err))

	assert.Equal(t, before, gs.State().LastAction, "rejected actions leave the state untouched")
	assert.False(t, gs.State().Players[1].Stayed)
}

func TestHit_DrawsAndPassesTurn(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob")
	rig(t, gs, n(8))

	require.NoError(t, gs.Hit("c1"))

	s := gs.State()
	ann := s.Players[0]
	assert.Equal(t, []int{8}, values(ann.Cards))
	assert.Equal(t, 8, ann.RoundScore)
	assert.Equal(t, "Ann drew 8.", s.LastAction)
	assert.Equal(t, 1, s.CurrentPlayerIndex)
	assert.Equal(t, card.DeckSize, s.CardCount())
}

func TestHit_Bust(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob")
	s := gs.State()
	ann := s.Players[0]
	give(t, gs, ann, n(3), n(5))
	rig(t, gs, n(3))

	require.NoError(t, gs.Hit("c1"))

	assert.True(t, ann.Busted)
	assert.Zero(t, ann.RoundScore)
	assert.Equal(t, []int{3, 5, 3}, values(ann.Cards), "the duplicate stays visible")
	assert.Equal(t, "Ann busted on a duplicate 3.", s.LastAction)
	assert.Equal(t, 1, s.CurrentPlayerIndex)
	assert.Equal(t, card.DeckSize, s.CardCount())

	err := gs.Hit("c1")
	assert.ErrorIs(t, err, apperrors.ErrNotActive)
}

func TestHit_SecondChanceSaves(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob")
	s := gs.State()
	ann := s.Players[0]
	give(t, gs, ann, n(3), n(5), secondChance)
	require.True(t, ann.HasSecondChance)
	rig(t, gs, n(3))

	require.NoError(t, gs.Hit("c1"))

	assert.False(t, ann.Busted)
	assert.True(t, ann.Stayed)
	assert.False(t, ann.HasSecondChance)
	assert.Equal(t, []int{3, 5}, values(ann.Cards))
	assert.Equal(t, 8, ann.RoundScore)

	discard := s.DiscardPile
	require.Len(t, discard, 2)
	assert.Equal(t, card.SecondChance, discard[0].Type)
	assert.Equal(t, card.Number, discard[1].Type)
	assert.Equal(t, 3, discard[1].Value)
	assert.Equal(t, card.DeckSize, s.CardCount())
}

func TestHit_TwoSecondChancesSaveOnce(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob")
	ann := gs.State().Players[0]
	give(t, gs, ann, n(4), secondChance, secondChance)
	rig(t, gs, n(4))

	require.NoError(t, gs.Hit("c1"))

	assert.True(t, ann.Stayed)
	assert.True(t, ann.HasSecondChance, "one Second Chance is still held")
	assert.Equal(t, 1, countType(ann.Cards, card.SecondChance))
}

func TestHit_ActionCardsAreHeld(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob")
	s := gs.State()
	rig(t, gs, freeze, secondChance)

	require.NoError(t, gs.Hit("c1"))
	ann := s.Players[0]
	assert.Equal(t, card.Freeze, ann.Cards[0].Type)
	assert.True(t, ann.Active())

	require.NoError(t, gs.Hit("c2"))
	bob := s.Players[1]
	assert.True(t, bob.HasSecondChance)
	assert.Equal(t, "Bob drew a Second Chance.", s.LastAction)
}

func TestHit_FlipSeven(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob", "Cid")
	s := gs.State()
	ann, bob, cid := s.Players[0], s.Players[1], s.Players[2]
	give(t, gs, ann, n(1), n(2), n(3), n(4), n(5), n(6))
	give(t, gs, bob, n(10))
	rig(t, gs, n(7))

	require.NoError(t, gs.Hit("c1"))

	assert.Equal(t, PhaseRoundEnd, s.Phase)
	assert.Equal(t, 28+15, ann.Score)
	assert.Equal(t, 10, bob.Score)
	assert.Zero(t, cid.Score)
	assert.True(t, bob.Stayed)
	assert.True(t, cid.Stayed)
	assert.Equal(t, 1, gs.FlipSevens("Ann"))
	assert.Contains(t, s.LastAction, "flipped 7")
	assert.Contains(t, s.LastAction, "Round over: Ann +43, Bob +10, Cid +0.")
	assert.Equal(t, card.DeckSize, s.CardCount())
}

func TestStay(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob", "Cid")
	s := gs.State()
	give(t, gs, s.Players[0], n(6), cardSpec{card.Modifier, 4})

	require.NoError(t, gs.Stay("c1"))
	assert.Equal(t, "Ann stays with 10.", s.LastAction)
	assert.Equal(t, 1, s.CurrentPlayerIndex)

	rig(t, gs, n(5))
	require.NoError(t, gs.Hit("c2"))
	require.NoError(t, gs.Stay("c3"))

	// stayed players are skipped
	assert.Equal(t, 1, s.CurrentPlayerIndex)
	assert.Equal(t, 10, s.Players[0].RoundScore)
	assert.ErrorIs(t, gs.Hit("c1"), apperrors.ErrNotActive)
}

func TestRoundEnd_TieAtTargetContinues(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob")
	s := gs.State()
	ann, bob := s.Players[0], s.Players[1]
	ann.Score, bob.Score = 200, 200
	give(t, gs, ann, n(5))
	give(t, gs, bob, n(5))

	require.NoError(t, gs.Stay("c1"))
	require.NoError(t, gs.Stay("c2"))

	assert.Equal(t, 205, ann.Score)
	assert.Equal(t, 205, bob.Score)
	assert.Equal(t, PhaseRoundEnd, s.Phase)
	assert.Empty(t, s.Winner)
}

func TestRoundEnd_UniqueLeaderWins(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob")
	s := gs.State()
	ann, bob := s.Players[0], s.Players[1]
	ann.Score, bob.Score = 190, 150
	give(t, gs, ann, n(12))
	give(t, gs, bob, n(4))

	require.NoError(t, gs.Stay("c1"))
	require.NoError(t, gs.Stay("c2"))

	assert.Equal(t, PhaseGameOver, s.Phase)
	assert.Equal(t, "c1", s.Winner)
	assert.Equal(t, 202, ann.Score)
	assert.Equal(t, 154, bob.Score)
	assert.Contains(t, s.LastAction, "Ann wins with 202!")
	assert.Nil(t, s.CurrentPlayer())

	assert.ErrorIs(t, gs.NewRound("c1"), apperrors.ErrWrongPhase)
	assert.ErrorIs(t, gs.Hit("c1"), apperrors.ErrNotPlaying)
}

func TestUseFreeze(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob")
	s := gs.State()
	ann, bob := s.Players[0], s.Players[1]
	give(t, gs, ann, freeze, n(7))
	give(t, gs, bob, n(9))

	require.NoError(t, gs.UseFreeze("c1", "c2"))

	assert.True(t, bob.Stayed)
	assert.Equal(t, 9, bob.RoundScore)
	assert.Equal(t, []int{7}, values(ann.Cards))
	assert.Equal(t, card.Freeze, s.DiscardPile[len(s.DiscardPile)-1].Type)
	assert.Equal(t, "Ann froze Bob at 9.", s.LastAction)
	// Bob is out, so the turn comes back to Ann
	assert.Equal(t, 0, s.CurrentPlayerIndex)
	assert.Equal(t, card.DeckSize, s.CardCount())
}

func TestUseFreeze_Self(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob")
	ann := gs.State().Players[0]
	give(t, gs, ann, freeze, n(11))

	require.NoError(t, gs.Apply("c1", protocol.UseFreeze{}))

	assert.True(t, ann.Stayed)
	assert.Equal(t, 11, ann.RoundScore)
	assert.Equal(t, 1, gs.State().CurrentPlayerIndex)
}

func TestActionCardErrors(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob")
	s := gs.State()

	assert.ErrorIs(t, gs.UseFreeze("c1", ""), apperrors.ErrNoActionCard)
	assert.ErrorIs(t, gs.UseFlipThree("c1", ""), apperrors.ErrNoActionCard)

	give(t, gs, s.Players[0], freeze)
	assert.ErrorIs(t, gs.UseFreeze("c1", "ghost"), apperrors.ErrInvalidTarget)

	s.Players[1].Stayed = true
	assert.ErrorIs(t, gs.UseFreeze("c1", "c2"), apperrors.ErrInvalidTarget)
	assert.Len(t, s.Players[0].Cards, 1, "rejected plays keep the card")
}

func TestUseFlipThree_Target(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob")
	s := gs.State()
	ann, bob := s.Players[0], s.Players[1]
	give(t, gs, ann, flipThree)
	rig(t, gs, n(2), n(9), cardSpec{card.Modifier, 10})

	require.NoError(t, gs.UseFlipThree("c1", "c2"))

	assert.Empty(t, ann.Cards)
	assert.Equal(t, 2+9+10, bob.RoundScore)
	assert.True(t, bob.Active())
	assert.Equal(t, 1, s.CurrentPlayerIndex)
	assert.Equal(t, "Ann played Flip Three on Bob. Bob drew 2. Bob drew 9. Bob drew +10.", s.LastAction)
	assert.Equal(t, card.DeckSize, s.CardCount())
}

func TestUseFlipThree_ExhaustedPilesLeaveStateUntouched(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob")
	s := gs.State()
	ann := s.Players[0]
	give(t, gs, ann, flipThree)
	s.Deck = s.Deck[:1]
	s.DiscardPile = nil

	err := gs.UseFlipThree("c1", "c2")
	require.ErrorIs(t, err, card.ErrDeckExhausted)

	assert.Len(t, ann.Cards, 1)
	assert.Equal(t, card.FlipThree, ann.Cards[0].Type)
	assert.Empty(t, s.DiscardPile)
	assert.Len(t, s.Deck, 1)
	assert.Empty(t, s.Players[1].Cards)
	assert.Equal(t, 0, s.CurrentPlayerIndex)
}

func TestUseFlipThree_StopsOnBust(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob")
	s := gs.State()
	give(t, gs, s.Players[0], flipThree)
	rig(t, gs, n(4), n(4), n(6))

	require.NoError(t, gs.UseFlipThree("c1", "c2"))

	bob := s.Players[1]
	assert.True(t, bob.Busted)
	assert.Equal(t, []int{4, 4}, values(bob.Cards))
	top := s.Deck[len(s.Deck)-1]
	assert.Equal(t, 6, top.Value, "the third card is not drawn")
	assert.Equal(t, 0, s.CurrentPlayerIndex)
}

func TestUseFlipThree_SecondChanceKeepsDrawing(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob")
	s := gs.State()
	ann := s.Players[0]
	give(t, gs, ann, n(3), secondChance, flipThree)
	rig(t, gs, n(3), n(8), n(9))

	require.NoError(t, gs.UseFlipThree("c1", ""))

	assert.False(t, ann.Stayed)
	assert.False(t, ann.Busted)
	assert.Equal(t, []int{3, 8, 9}, values(ann.Cards))
	assert.Equal(t, 20, ann.RoundScore)
	assert.Equal(t, 1, s.CurrentPlayerIndex)
	assert.Equal(t, card.DeckSize, s.CardCount())
}

func TestUseFlipThree_FlipSevenEndsRound(t *testing.T) {
	t.Parallel()

	gs := startedSession(t, "Ann", "Bob")
	s := gs.State()
	give(t, gs, s.Players[0], flipThree)
	give(t, gs, s.Players[1], n(1), n(2), n(3), n(4), n(5))
	rig(t, gs, n(6), n(7), n(8))

	require.NoError(t, gs.UseFlipThree("c1", "c2"))

	assert.Equal(t, PhaseRoundEnd, s.Phase)
	assert.Equal(t, 28+15, s.Players[1].Score)
	assert.Equal(t, 8, s.Deck[len(s.Deck)-1].Value)
	assert.Equal(t, 1, gs.FlipSevens("Bob"))
}

func countType(cards []card.Card, t card.Type) int {
	n := 0
	for _, c := range cards {
		if c.Type == t {
			n++
		}
	}
	return n
}
