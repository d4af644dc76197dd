// Package sound plays short cues for table events.
package sound

// Cue names. A file assets/sounds/<cue>.mp3 or .wav overrides the built-in tone.
const (
	CueHit          = "hit"
	CueBust         = "bust"
	CueSecondChance = "second_chance"
	CueFreeze       = "freeze"
	CueFlipThree    = "flip_three"
	CueFlip7        = "flip7"
	CueYourTurn     = "your_turn"
	CueWin          = "win"
)

// Player plays a named cue. Unknown names are ignored.
type Player interface {
	Play(name string)
}

// note is one step of a built-in tone
type note struct {
	freq float64
	ms   int
}

// tones are the built-in cues, played when no file overrides them
var tones = map[string][]note{
	CueHit:          {{660, 40}},
	CueBust:         {{330, 120}, {220, 220}},
	CueSecondChance: {{523, 80}, {784, 120}},
	CueFreeze:       {{988, 60}, {988, 60}},
	CueFlipThree:    {{523, 50}, {659, 50}, {784, 50}},
	CueFlip7:        {{523, 80}, {659, 80}, {784, 80}, {1047, 200}},
	CueYourTurn:     {{880, 60}},
	CueWin:          {{784, 120}, {988, 120}, {1175, 120}, {1568, 300}},
}
