package actor

import gonanoid "github.com/matoous/go-nanoid/v2"

// Message is the immutable envelope queued on an actor. Mutating Payload
// after sending is the caller's responsibility.
type Message[T any] struct {
	ID      string `json:"id"`
	Payload T      `json:"payload"`
}

func NewMessage[T any](payload T) Message[T] {
	return Message[T]{ID: gonanoid.Must(), Payload: payload}
}

// Messages wraps each payload in a new Message.
func Messages[T any](payloads ...T) []Message[T] {
	out := make([]Message[T], len(payloads))
	for i, p := range payloads {
		out[i] = NewMessage(p)
	}
	return out
}
