package actor

type (
	// Handler holds the per-message logic of an actor.
	Handler[T any] interface {
		// Operate processes one message. Errors and panics are logged and the
		// message is dropped; processing continues with the next message.
		Operate(ctx Ctx, msg Message[T]) error
		// GenerateChild returns the handler for a new overflow actor of the
		// same chain.
		GenerateChild() Handler[T]
	}

	// HandlerFunc adapts a stateless function to Handler. Overflow actors
	// share the same function.
	HandlerFunc[T any] func(ctx Ctx, msg Message[T]) error
)

func (f HandlerFunc[T]) Operate(ctx Ctx, msg Message[T]) error { return f(ctx, msg) }
func (f HandlerFunc[T]) GenerateChild() Handler[T]             { return f }
