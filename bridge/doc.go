// Package bridge connects a callback-style producer to a sequence-style
// consumer running in another goroutine.
//
// The producer calls Submit and blocks until the command's final result
// is available. The consumer pulls a lazily produced sequence: every
// value yielded by a submitted command appears in the consumer's outward
// sequence, and the command's final value is routed back to the blocked
// Submit call. Exactly one command is in flight at a time; the handoff
// runs over two capacity-1 slots whose occupancy is supervised by two
// state machines.
//
// Exactly two goroutines may touch a bridge: one driving Submit and
// StopDelegation, one driving the iterator returned by Delegated. The
// slots are the only cross-goroutine memory barrier; the state machines
// reject illegal transition combinations but are not designed for
// concurrent writers from both sides.
//
// Basic usage:
//
//	b := bridge.New()
//
//	go func() {
//		it := b.Delegated(ctx)
//		for {
//			v, ok, err := it.Next(ctx)
//			if err != nil || !ok {
//				return
//			}
//			consume(v)
//		}
//	}()
//
//	result, err := b.Submit(ctx, cmd)
//	...
//	b.StopDelegation(ctx, false)
package bridge
