package actor

import "errors"

var (
	ErrEmptyTopic = errors.New("empty topic")
	ErrNilHandler = errors.New("nil handler")
)
