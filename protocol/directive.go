package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/kjhallberg/bullscows/secret"
)

// Directive is a message sent from a client to the server.
type Directive interface {
	directiveTag() string
}

type (
	// CloseConnection is synthesized locally when a socket closes
	// gracefully; clients never send it, though it is accepted if they do.
	CloseConnection struct{}

	// CreateLobby asks the server to start a new lobby with the sender as host.
	CreateLobby struct{}

	// JoinLobby asks to join an existing lobby as its guest.
	JoinLobby struct {
		LobbyID LobbyID
	}

	// Leave asks the server to remove the sender from its current room.
	Leave struct{}

	// SetSecret commits the sender's secret for the current lobby. A game
	// ignores it.
	SetSecret struct {
		Secret secret.Secret
	}

	// StartGame, sent by a lobby's host, asks to promote a full lobby into
	// a game. A guest's StartGame is ignored.
	StartGame struct{}

	// Guess submits a guess against the opponent's secret.
	Guess struct {
		Secret secret.Secret
	}
)

func (CloseConnection) directiveTag() string { return "CloseConnection" }
func (CreateLobby) directiveTag() string     { return "CreateLobby" }
func (JoinLobby) directiveTag() string       { return "JoinLobby" }
func (Leave) directiveTag() string           { return "Leave" }
func (SetSecret) directiveTag() string       { return "SetSecret" }
func (StartGame) directiveTag() string       { return "StartGame" }
func (Guess) directiveTag() string           { return "Guess" }

// typeTag is used to peek the discriminator before decoding the rest of
// a directive or notification payload.
type typeTag struct {
	Type string `json:"type"`
}

// wireJoinLobby, wireSetSecret and wireGuess are the flat JSON shapes for
// the directives that carry a payload field alongside the type tag.
type (
	wireJoinLobby struct {
		Type    string  `json:"type"`
		LobbyID LobbyID `json:"lobby_id"`
	}
	wireSetSecret struct {
		Type   string        `json:"type"`
		Secret secret.Secret `json:"secret"`
	}
	wireGuess struct {
		Type   string        `json:"type"`
		Secret secret.Secret `json:"secret"`
	}
)

// DecodeDirective parses a JSON directive frame. A schema mismatch or
// unknown type tag is reported as an error; callers translate that into
// ListenError(InvalidDirective).
func DecodeDirective(data []byte) (Directive, error) {
	var tag typeTag
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("decoding directive envelope: %w", err)
	}
	switch tag.Type {
	case "CloseConnection":
		return CloseConnection{}, nil
	case "CreateLobby":
		return CreateLobby{}, nil
	case "JoinLobby":
		var w wireJoinLobby
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decoding JoinLobby: %w", err)
		}
		return JoinLobby{LobbyID: w.LobbyID}, nil
	case "Leave":
		return Leave{}, nil
	case "SetSecret":
		var w wireSetSecret
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decoding SetSecret: %w", err)
		}
		return SetSecret{Secret: w.Secret}, nil
	case "StartGame":
		return StartGame{}, nil
	case "Guess":
		var w wireGuess
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decoding Guess: %w", err)
		}
		return Guess{Secret: w.Secret}, nil
	default:
		return nil, fmt.Errorf("unknown directive type %q", tag.Type)
	}
}

// EncodeDirective serializes a Directive to its wire form. Used by tests
// and by any fake connection driving an actor with raw frames.
func EncodeDirective(d Directive) ([]byte, error) {
	switch d := d.(type) {
	case CloseConnection, CreateLobby, Leave, StartGame:
		return json.Marshal(typeTag{Type: d.directiveTag()})
	case JoinLobby:
		return json.Marshal(wireJoinLobby{Type: d.directiveTag(), LobbyID: d.LobbyID})
	case SetSecret:
		return json.Marshal(wireSetSecret{Type: d.directiveTag(), Secret: d.Secret})
	case Guess:
		return json.Marshal(wireGuess{Type: d.directiveTag(), Secret: d.Secret})
	default:
		return nil, fmt.Errorf("unsupported directive type %T", d)
	}
}
