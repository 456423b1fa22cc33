package protocol

import (
	"errors"
	"fmt"

	"github.com/lukinoo0/Blazefield/internal/types"
	"github.com/lukinoo0/Blazefield/internal/utils"
)

var (
	ErrMalformed    = errors.New("malformed message")
	ErrUnknownType  = errors.New("unknown message type")
	ErrMissingField = errors.New("missing or non-finite field")
)

// DropReason names the class of a Decode error for metrics
func DropReason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	default:
		return "malformed"
	}
}

type envelope struct {
	Type string `json:"type"`
}

type joinWire struct {
	Nickname          string `json:"nickname"`
	Class             string `json:"class"`
	Gamemode          string `json:"gamemode"`
	ProfileID         string `json:"profileId"`
	ExternalProfileID string `json:"externalProfileId"`
	ProfileToken      string `json:"profileToken"`
}

type stateWire struct {
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
	Z    *float64 `json:"z"`
	RotY *float64 `json:"rotY"`
}

type vectorWire struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

type shotWire struct {
	Origin *vectorWire `json:"origin"`
	Dir    *vectorWire `json:"dir"`
	Damage *float64    `json:"damage"`
}

// Decode parses one inbound frame into Join, State, Shot or ResetProfile.
// Unknown fields are ignored.
func Decode(codec Codec, data []byte) (Message, error) {
	var env envelope
	if err := codec.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch env.Type {
	case TypeJoin:
		var w joinWire
		if err := codec.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		profileID := w.ProfileID
		if profileID == "" {
			profileID = w.ExternalProfileID
		}
		return Join{
			Nickname:     w.Nickname,
			Class:        w.Class,
			Gamemode:     w.Gamemode,
			ProfileID:    profileID,
			ProfileToken: w.ProfileToken,
		}, nil

	case TypeState:
		var w stateWire
		if err := codec.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if !present(w.X, w.Y, w.Z, w.RotY) {
			return nil, fmt.Errorf("%w: state", ErrMissingField)
		}
		return State{
			Position: types.Vector3{X: *w.X, Y: *w.Y, Z: *w.Z},
			RotY:     *w.RotY,
		}, nil

	case TypeShot:
		var w shotWire
		if err := codec.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		origin, ok := w.Origin.vector()
		if !ok {
			return nil, fmt.Errorf("%w: shot origin", ErrMissingField)
		}
		dir, ok := w.Dir.vector()
		if !ok {
			return nil, fmt.Errorf("%w: shot dir", ErrMissingField)
		}
		return Shot{Origin: origin, Direction: dir, Damage: w.Damage}, nil

	case TypeResetProfile:
		return ResetProfile{}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
}

func (v *vectorWire) vector() (types.Vector3, bool) {
	if v == nil || !present(v.X, v.Y, v.Z) {
		return types.Vector3{}, false
	}
	return types.Vector3{X: *v.X, Y: *v.Y, Z: *v.Z}, true
}

// present reports whether every field was sent and is finite
func present(fields ...*float64) bool {
	for _, f := range fields {
		if f == nil || !utils.IsFinite(*f) {
			return false
		}
	}
	return true
}
