package pool

import "errors"

var (
	ErrPoolClosed  = errors.New("pool closed")
	ErrUnknownKind = errors.New("unknown pool kind")
)
