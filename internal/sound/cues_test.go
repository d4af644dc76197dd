package sound

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEveryCueHasATone(t *testing.T) {
	for _, cue := range []string{CueHit, CueBust, CueSecondChance, CueFreeze, CueFlipThree, CueFlip7, CueYourTurn, CueWin} {
		notes, ok := tones[cue]
		assert.True(t, ok, cue)
		assert.NotEmpty(t, notes, cue)
	}
}

func TestSoundManagerDisabledUntilInit(t *testing.T) {
	sm := NewSoundManager()
	var p Player = sm
	assert.NotPanics(t, func() { p.Play(CueWin) })
	sm.Close()
}
