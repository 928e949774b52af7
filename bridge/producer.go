package bridge

import (
	"context"
	"errors"

	"github.com/glimte/callbridge-go/contracts"
	"github.com/glimte/callbridge-go/internal/slot"
)

// Iterator is the consumer-side view of a bridge: the outward sequence of
// values produced by submitted commands. It implements
// contracts.Sequence, so the bridge's production can itself be consumed
// like any other lazy sequence.
//
// An Iterator must be driven by exactly one goroutine, and that goroutine
// must be a different one than the one calling Submit.
type Iterator struct {
	b     *Bridge
	cur   submission
	seq   contracts.Sequence
	count int
	last  any
	err   error
	done  bool
}

// Delegated starts consuming submitted commands. A stopped bridge is set
// back to running, so commands may resume after a clean stop.
func (b *Bridge) Delegated(ctx context.Context) *Iterator {
	switch b.state.Current() {
	case BridgeUndefined:
		_ = b.state.To(BridgeRunning)
	case BridgeStopped:
		b.logger.Info("bridge in stopped state, setting it back to running")
		_ = b.state.To(BridgeRunning)
	case BridgeStopping:
		b.logger.Warn("bridge is stopping but was asked to produce again")
	}
	b.logger.Info("waiting for commands to execute")
	return &Iterator{b: b}
}

// Next returns the next value of the outward sequence. It blocks until a
// submitted command yields a value, a command round trip completes and
// the next command arrives, or the next-command timeout elapses.
//
// ok == false with a nil error means delegation ended cleanly via the
// stop sentinel. Any error is terminal for the iterator; an error raised
// by a command has by then also been delivered to the blocked Submit
// call.
func (it *Iterator) Next(ctx context.Context) (any, bool, error) {
	if it.done || it.err != nil {
		return nil, false, it.err
	}
	b := it.b

	for {
		if it.seq == nil {
			sub, err := b.cmdSlot.Get(ctx, b.nextCommandTimeout)
			if err != nil {
				if errors.Is(err, slot.ErrGetTimeout) {
					err = &NextCommandTimeoutError{Timeout: b.nextCommandTimeout}
				}
				b.logger.Error("no command received", "error", err)
				it.err = err
				return nil, false, err
			}
			if sub.sentinel {
				b.logger.Info("evaluation finished", "commands", it.count)
				it.done = true
				return nil, false, nil
			}

			b.logger.Info("executing command", "command", sub.id, "count", it.count)
			seq, err := sub.cmd.Invoke(ctx)
			if err != nil {
				return nil, false, it.fail(ctx, sub, err)
			}
			it.cur = sub
			it.seq = seq
			it.count++
		}

		// Cancellation point, checked once per forwarded value.
		if s := b.state.Current(); s == BridgeStopping || s == BridgeStopped || s == BridgeFailed {
			b.logger.Warn("stop requested, not forwarding further values",
				"command", it.cur.id, "state", s.String())
			return nil, false, it.fail(ctx, it.cur, &StopRequestError{State: s})
		}

		v, ok, err := it.seq.Next(ctx)
		if err != nil {
			return nil, false, it.fail(ctx, it.cur, err)
		}
		if !ok {
			r := it.seq.Result()
			b.logger.Debug("command produced result", "command", it.cur.id)
			it.seq = nil
			if perr := b.resSlot.Put(ctx, outcome{value: r}, b.queueTimeout); perr != nil {
				b.logger.Error("could not deliver result", "command", it.cur.id, "error", perr)
				it.err = perr
				return nil, false, perr
			}
			it.last = r
			continue
		}
		return v, true, nil
	}
}

// fail delivers err to the blocked submitter and terminates the iterator
// with the same error.
func (it *Iterator) fail(ctx context.Context, sub submission, err error) error {
	b := it.b
	b.logger.Error("error while executing command", "command", sub.id, "error", err)
	if perr := b.resSlot.Put(ctx, outcome{err: err}, b.queueTimeout); perr != nil {
		b.logger.Error("could not deliver failure to submitter",
			"command", sub.id, "error", perr)
	}
	it.seq = nil
	it.err = err
	return err
}

// Result returns the final value of the last completed command. Before
// any command completed it is nil.
func (it *Iterator) Result() any {
	return it.last
}

// Err returns the terminal error of the iterator, nil after a clean end.
func (it *Iterator) Err() error {
	return it.err
}

var _ contracts.Sequence = (*Iterator)(nil)

// Run drains the delegated sequence, forwarding every value to sink, and
// returns the last command's final value. A nil sink discards values.
// Errors raised by commands terminate the run with that error; by then
// the same error has been delivered to the blocked Submit call.
func (b *Bridge) Run(ctx context.Context, sink func(v any) error) (any, error) {
	it := b.Delegated(ctx)
	for {
		v, ok, err := it.Next(ctx)
		if err != nil {
			return it.Result(), err
		}
		if !ok {
			b.logger.Info("iteration finished", "result", it.Result())
			return it.Result(), nil
		}
		if sink != nil {
			if err := sink(v); err != nil {
				return it.Result(), err
			}
		}
	}
}
