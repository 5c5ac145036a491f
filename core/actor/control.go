package actor

import (
	"fmt"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type (
	// Topic names a logical job. Only the root actor of a chain is
	// addressable by its topic.
	Topic string

	Kind   int
	Status int32
)

const (
	KindRouter Kind = iota
	KindCluster
	KindWorker
	KindGateway
)

func (k Kind) String() string {
	switch k {
	case KindRouter:
		return "router"
	case KindCluster:
		return "cluster"
	case KindWorker:
		return "worker"
	case KindGateway:
		return "gateway"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	StatusPassive Status = iota
	StatusActive
)

func (s Status) String() string {
	if s == StatusActive {
		return "active"
	}
	return "passive"
}

func (t Topic) String() string { return string(t) }

// ControlBlock carries the identity and lifecycle status of an actor, a
// router or a cluster. Only the status and the root flag change after
// construction.
type ControlBlock struct {
	id     string
	kind   Kind
	root   atomic.Bool
	status atomic.Int32
}

func NewControlBlock(kind Kind, root bool) *ControlBlock {
	cb := &ControlBlock{
		id:   gonanoid.Must(),
		kind: kind,
	}
	cb.root.Store(root)
	return cb
}

func (cb *ControlBlock) ID() string   { return cb.id }
func (cb *ControlBlock) Kind() Kind   { return cb.kind }
func (cb *ControlBlock) IsRoot() bool { return cb.root.Load() }

func (cb *ControlBlock) SetRoot(root bool) { cb.root.Store(root) }

func (cb *ControlBlock) Status() Status     { return Status(cb.status.Load()) }
func (cb *ControlBlock) IsActive() bool     { return cb.Status() == StatusActive }
func (cb *ControlBlock) SetStatus(s Status) { cb.status.Store(int32(s)) }

func (cb *ControlBlock) String() string {
	return fmt.Sprintf("%s/%s(%s)", cb.kind, cb.id, cb.Status())
}
