package protocol

// Action is a decoded inbound action. The set of implementations is closed: every kind in the
// client -> server table has exactly one type here, and consumers switch over them exhaustively.
type Action interface {
	Kind() MessageType
	sealed()
}

type (
	// Join asks for a seat, or rebinds an existing seat with the same name
	Join struct{ Name string }
	// StartGame host only, lobby only
	StartGame struct{}
	// Hit draws one card
	Hit struct{}
	// Stay banks the current round score
	Stay struct{}
	// UseFlipThree plays a held Flip Three card on Target (empty = self)
	UseFlipThree struct{ Target string }
	// UseFreeze plays a held Freeze card on Target (empty = self)
	UseFreeze struct{ Target string }
	// NewRound host only, round_end only
	NewRound struct{}
	// Restart host only, back to the lobby
	Restart struct{}
)

func (Join) Kind() MessageType         { return MsgJoin }
func (StartGame) Kind() MessageType    { return MsgStartGame }
func (Hit) Kind() MessageType          { return MsgHit }
func (Stay) Kind() MessageType         { return MsgStay }
func (UseFlipThree) Kind() MessageType { return MsgUseFlipThree }
func (UseFreeze) Kind() MessageType    { return MsgUseFreeze }
func (NewRound) Kind() MessageType     { return MsgNewRound }
func (Restart) Kind() MessageType      { return MsgRestart }

func (Join) sealed()         {}
func (StartGame) sealed()    {}
func (Hit) sealed()          {}
func (Stay) sealed()         {}
func (UseFlipThree) sealed() {}
func (UseFreeze) sealed()    {}
func (NewRound) sealed()     {}
func (Restart) sealed()      {}
