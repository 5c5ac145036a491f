// Package actor provides the schedulable unit of the runtime: a topic-keyed
// actor owning a FIFO queue and an optional overflow child.
//
// An actor never runs on its own goroutine. Sending a message asks the
// router it is bound to for a run; the cluster admits the actor at most once
// at a time and executes [Actor.Run] on its worker pool. The run drains the
// queue message by message and returns the actor to [StatusPassive].
//
//	a, _ := actor.New(actor.Options[string]{
//	    Topic:    "words",
//	    Division: actor.NewSizeBased[string](100),
//	}, actor.HandlerFunc[string](func(ctx actor.Ctx, msg actor.Message[string]) error {
//	    ctx.Log().Info("got", slog.String("payload", msg.Payload))
//	    return nil
//	}))
//	_ = cl.AddRootActor(a)
//	a.Send(actor.NewMessage("hello"))
//
// # Division
//
// A [DivisionStrategy] is consulted on every admission. [SizeBased] hands
// messages to a child actor once the backlog reaches its limit, building a
// chain of structurally identical actors. Only the root of a chain is
// addressable by topic; ordering is FIFO per actor, not across the chain.
//
// # Load and Send
//
// [Actor.Load] and [Actor.LoadAll] only enqueue, [Actor.Send] and
// [Actor.SendAll] also request a run. After bulk loading call
// [Actor.ScheduleChain].
//
// # Failures
//
// Errors and panics raised by [Handler.Operate] are logged and the message
// is dropped. Cancelling the run context stops the run at the next message
// boundary and keeps the remaining messages queued for [Actor.Terminate].
package actor
