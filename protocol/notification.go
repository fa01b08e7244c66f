package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/kjhallberg/bullscows/secret"
)

// Notification is a message sent from the server to a client.
type Notification interface {
	notificationTag() string
}

type (
	// LobbyCreate tells the host which LobbyID was just minted.
	LobbyCreate struct {
		LobbyID LobbyID
	}

	// LobbyJoin tells a newly attached guest which lobby it joined.
	LobbyJoin struct {
		LobbyID LobbyID
	}

	// SecretSet acknowledges that the sender's secret was stored.
	SecretSet struct {
		Secret secret.Secret
	}

	// GuestJoin tells the host a guest just attached.
	GuestJoin struct{}

	// OpponentLeave tells the remaining party that its opponent departed.
	OpponentLeave struct{}

	// GameStart tells both players their match has begun.
	GameStart struct{}

	// NextTurn tells a player it is now their turn to guess.
	NextTurn struct{}

	// GuessScore reports the result of a guess to the guesser.
	GuessScore struct {
		Correct int
		Wrong   int
	}

	// Win tells a player they guessed the opponent's secret exactly.
	Win struct{}

	// Lose tells a player their opponent guessed first.
	Lose struct{}
)

func (LobbyCreate) notificationTag() string   { return "LobbyCreate" }
func (LobbyJoin) notificationTag() string     { return "LobbyJoin" }
func (SecretSet) notificationTag() string     { return "SecretSet" }
func (GuestJoin) notificationTag() string     { return "GuestJoin" }
func (OpponentLeave) notificationTag() string { return "OpponentLeave" }
func (GameStart) notificationTag() string     { return "GameStart" }
func (NextTurn) notificationTag() string      { return "NextTurn" }
func (GuessScore) notificationTag() string    { return "GuessScore" }
func (Win) notificationTag() string           { return "Win" }
func (Lose) notificationTag() string          { return "Lose" }

type (
	wireLobbyCreate struct {
		Type    string  `json:"type"`
		LobbyID LobbyID `json:"lobby_id"`
	}
	wireLobbyJoin struct {
		Type    string  `json:"type"`
		LobbyID LobbyID `json:"lobby_id"`
	}
	wireSecretSet struct {
		Type   string        `json:"type"`
		Secret secret.Secret `json:"secret"`
	}
	wireGuessScore struct {
		Type    string `json:"type"`
		Correct int    `json:"correct"`
		Wrong   int    `json:"wrong"`
	}
)

// EncodeNotification serializes a Notification to its wire form.
func EncodeNotification(n Notification) ([]byte, error) {
	switch n := n.(type) {
	case GuestJoin, OpponentLeave, GameStart, NextTurn, Win, Lose:
		return json.Marshal(typeTag{Type: n.notificationTag()})
	case LobbyCreate:
		return json.Marshal(wireLobbyCreate{Type: n.notificationTag(), LobbyID: n.LobbyID})
	case LobbyJoin:
		return json.Marshal(wireLobbyJoin{Type: n.notificationTag(), LobbyID: n.LobbyID})
	case SecretSet:
		return json.Marshal(wireSecretSet{Type: n.notificationTag(), Secret: n.Secret})
	case GuessScore:
		return json.Marshal(wireGuessScore{Type: n.notificationTag(), Correct: n.Correct, Wrong: n.Wrong})
	default:
		return nil, fmt.Errorf("unsupported notification type %T", n)
	}
}

// DecodeNotification parses a JSON notification frame. Only used by tests
// driving a fake client against a real actor.
func DecodeNotification(data []byte) (Notification, error) {
	var tag typeTag
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("decoding notification envelope: %w", err)
	}
	switch tag.Type {
	case "LobbyCreate":
		var w wireLobbyCreate
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return LobbyCreate{LobbyID: w.LobbyID}, nil
	case "LobbyJoin":
		var w wireLobbyJoin
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return LobbyJoin{LobbyID: w.LobbyID}, nil
	case "SecretSet":
		var w wireSecretSet
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return SecretSet{Secret: w.Secret}, nil
	case "GuestJoin":
		return GuestJoin{}, nil
	case "OpponentLeave":
		return OpponentLeave{}, nil
	case "GameStart":
		return GameStart{}, nil
	case "NextTurn":
		return NextTurn{}, nil
	case "GuessScore":
		var w wireGuessScore
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return GuessScore{Correct: w.Correct, Wrong: w.Wrong}, nil
	case "Win":
		return Win{}, nil
	case "Lose":
		return Lose{}, nil
	default:
		return nil, fmt.Errorf("unknown notification type %q", tag.Type)
	}
}
