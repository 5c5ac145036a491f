package actor

// DivisionStrategy decides on every admission whether messages stay in the
// actor's queue or are pushed down its overflow chain.
type DivisionStrategy[T any] interface {
	// IsOverloaded reports whether a must hand new messages to its child. It
	// must not change any state.
	IsOverloaded(a *Actor[T]) bool
	// OnSend is called for messages admitted through Send while a is
	// overloaded.
	OnSend(a *Actor[T], msgs []Message[T])
	// OnLoad is called for messages admitted through Load while a is
	// overloaded.
	OnLoad(a *Actor[T], msgs []Message[T])
}

// NoDivision keeps every message on the actor itself.
type NoDivision[T any] struct{}

func (NoDivision[T]) IsOverloaded(*Actor[T]) bool    { return false }
func (NoDivision[T]) OnSend(*Actor[T], []Message[T]) {}
func (NoDivision[T]) OnLoad(*Actor[T], []Message[T]) {}

// SizeBased forwards messages to the child once the backlog of an actor
// reaches Limit. The backlog is Backlog(), not QueueLen(): the message in
// Operate counts too, so a busy actor with Limit-1 queued messages is
// already overloaded.
type SizeBased[T any] struct {
	Limit int
}

func NewSizeBased[T any](limit int) *SizeBased[T] {
	return &SizeBased[T]{Limit: limit}
}

func (s *SizeBased[T]) IsOverloaded(a *Actor[T]) bool {
	return s.Limit > 0 && a.Backlog() >= s.Limit
}

func (s *SizeBased[T]) OnSend(a *Actor[T], msgs []Message[T]) {
	a.FetchChild().SendAll(msgs)
}

func (s *SizeBased[T]) OnLoad(a *Actor[T], msgs []Message[T]) {
	a.FetchChild().LoadAll(msgs)
}

// Auto is a placeholder for a learned division policy. It never reports an
// overload.
type Auto[T any] struct{}

func (Auto[T]) IsOverloaded(*Actor[T]) bool    { return false }
func (Auto[T]) OnSend(*Actor[T], []Message[T]) {}
func (Auto[T]) OnLoad(*Actor[T], []Message[T]) {}

var (
	_ DivisionStrategy[any] = NoDivision[any]{}
	_ DivisionStrategy[any] = (*SizeBased[any])(nil)
	_ DivisionStrategy[any] = Auto[any]{}
)
