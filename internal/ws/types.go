package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	MessageTypeMove       MessageType = "move"
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeResign     MessageType = "resign"
	MessageTypeMatchFound MessageType = "matchFound"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage wraps payload, marshalled to JSON, in a Message of type t.
func NewMessage(t MessageType, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}

func NewError(msg string) Message {
	raw, _ := json.Marshal(ErrorPayload{Error: msg})
	return Message{Type: MessageTypeError, Payload: raw}
}
