// Package protocol defines the messages exchanged with game clients and the
// codecs that put them on the wire.
package protocol

import (
	"github.com/lukinoo0/Blazefield/internal/profile"
	"github.com/lukinoo0/Blazefield/internal/types"
)

// Message type discriminators
const (
	// Client -> Server
	TypeJoin         = "join"
	TypeState        = "state"
	TypeShot         = "shot"
	TypeResetProfile = "resetProfile"

	// Server -> Client
	TypeHello      = "hello"
	TypeSnapshot   = "state"
	TypeHitInfo    = "hitInfo"
	TypeHitConfirm = "hitConfirm"
	TypeKillEvent  = "killEvent"
	TypeProfile    = "profile"
)

// Message is implemented by every inbound and outbound message
type Message interface {
	MessageType() string
}

// Join finalizes a human's identity
type Join struct {
	Nickname     string
	Class        string
	Gamemode     string
	ProfileID    string
	ProfileToken string
}

// State is a client-reported position and heading
type State struct {
	Position types.Vector3
	RotY     float64
}

// Shot is a fired weapon. Damage is nil when the client omitted it.
type Shot struct {
	Origin    types.Vector3
	Direction types.Vector3
	Damage    *float64
}

// ResetProfile asks for the lifetime totals to be zeroed
type ResetProfile struct{}

func (Join) MessageType() string         { return TypeJoin }
func (State) MessageType() string        { return TypeState }
func (Shot) MessageType() string         { return TypeShot }
func (ResetProfile) MessageType() string { return TypeResetProfile }

// Hello is sent once when a connection is accepted
type Hello struct {
	Type  string         `json:"type"`
	ID    types.EntityID `json:"id"`
	Spawn types.Vector3  `json:"spawn"`
	HP    int            `json:"hp"`
}

// PlayerState is one entity in a snapshot
type PlayerState struct {
	ID       types.EntityID `json:"id"`
	Nickname string         `json:"nickname"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Z        float64        `json:"z"`
	RotY     float64        `json:"rotY"`
	HP       int            `json:"hp"`
	IsBot    bool           `json:"isBot"`
	Kills    int            `json:"kills"`
	Deaths   int            `json:"deaths"`
	Class    string         `json:"class"`
	Gamemode string         `json:"gamemode"`
}

// Snapshot is the periodic world state broadcast
type Snapshot struct {
	Type    string        `json:"type"`
	Players []PlayerState `json:"players"`
}

// HitInfo tells a human they were hit. Spawn is set only when Killed.
type HitInfo struct {
	Type   string         `json:"type"`
	HP     int            `json:"hp"`
	Killed bool           `json:"killed"`
	Killer string         `json:"killer"`
	Spawn  *types.Vector3 `json:"spawn"`
}

// HitConfirm tells a shooter their shot landed
type HitConfirm struct {
	Type     string         `json:"type"`
	TargetID types.EntityID `json:"targetId"`
}

// KillEvent is broadcast to every human on each kill
type KillEvent struct {
	Type     string         `json:"type"`
	KillerID types.EntityID `json:"killerId"`
	VictimID types.EntityID `json:"victimId"`
}

// ProfileMessage carries the player's persistent profile
type ProfileMessage struct {
	Type    string           `json:"type"`
	Profile *profile.Profile `json:"profile"`
	Token   string           `json:"token,omitempty"`
}

func (Hello) MessageType() string          { return TypeHello }
func (Snapshot) MessageType() string       { return TypeSnapshot }
func (HitInfo) MessageType() string        { return TypeHitInfo }
func (HitConfirm) MessageType() string     { return TypeHitConfirm }
func (KillEvent) MessageType() string      { return TypeKillEvent }
func (ProfileMessage) MessageType() string { return TypeProfile }

func NewHello(id types.EntityID, spawn types.Vector3, hp int) Hello {
	return Hello{Type: TypeHello, ID: id, Spawn: spawn, HP: hp}
}

func NewHitInfo(hp int, killed bool, killer string, spawn *types.Vector3) HitInfo {
	return HitInfo{Type: TypeHitInfo, HP: hp, Killed: killed, Killer: killer, Spawn: spawn}
}

func NewHitConfirm(target types.EntityID) HitConfirm {
	return HitConfirm{Type: TypeHitConfirm, TargetID: target}
}

func NewKillEvent(killer, victim types.EntityID) KillEvent {
	return KillEvent{Type: TypeKillEvent, KillerID: killer, VictimID: victim}
}

func NewProfileMessage(p *profile.Profile, token string) ProfileMessage {
	return ProfileMessage{Type: TypeProfile, Profile: p, Token: token}
}
