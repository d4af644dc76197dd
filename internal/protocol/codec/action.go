package codec

import (
	"errors"
	"fmt"

	"github.com/palemoky/flip-seven/internal/protocol"
)

// ErrUnknownAction is returned for message kinds that are not client actions
var ErrUnknownAction = errors.New("unknown action")

// DecodeAction turns an inbound envelope into a typed action
func DecodeAction(msg *protocol.Message) (protocol.Action, error) {
	switch msg.Type {
	case protocol.MsgJoin:
		p, err := ParsePayload[protocol.JoinPayload](msg)
		if err != nil {
			return nil, fmt.Errorf("join payload: %w", err)
		}
		return protocol.Join{Name: p.Name}, nil
	case protocol.MsgStartGame:
		return protocol.StartGame{}, nil
	case protocol.MsgHit:
		return protocol.Hit{}, nil
	case protocol.MsgStay:
		return protocol.Stay{}, nil
	case protocol.MsgUseFlipThree:
		p, err := ParsePayload[protocol.TargetPayload](msg)
		if err != nil {
			return nil, fmt.Errorf("use_flip_three payload: %w", err)
		}
		return protocol.UseFlipThree{Target: p.Target}, nil
	case protocol.MsgUseFreeze:
		p, err := ParsePayload[protocol.TargetPayload](msg)
		if err != nil {
			return nil, fmt.Errorf("use_freeze payload: %w", err)
		}
		return protocol.UseFreeze{Target: p.Target}, nil
	case protocol.MsgNewRound:
		return protocol.NewRound{}, nil
	case protocol.MsgRestart:
		return protocol.Restart{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, msg.Type)
	}
}

// EncodeAction is the inverse of DecodeAction, used by clients
func EncodeAction(action protocol.Action) (*protocol.Message, error) {
	switch a := action.(type) {
	case protocol.Join:
		return NewMessage(a.Kind(), protocol.JoinPayload{Name: a.Name})
	case protocol.UseFlipThree:
		return NewMessage(a.Kind(), protocol.TargetPayload{Target: a.Target})
	case protocol.UseFreeze:
		return NewMessage(a.Kind(), protocol.TargetPayload{Target: a.Target})
	case protocol.StartGame, protocol.Hit, protocol.Stay, protocol.NewRound, protocol.Restart:
		return NewMessage(a.Kind(), nil)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownAction, action)
	}
}
