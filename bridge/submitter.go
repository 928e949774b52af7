package bridge

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/glimte/callbridge-go/contracts"
	"github.com/glimte/callbridge-go/internal/slot"
)

// Submit hands cmd to the consuming side and blocks until the command's
// final result is available, up to the execution timeout. An error
// produced by the command is returned to the caller as-is.
//
// The command state machine enforces the single-command-in-flight
// discipline: a Submit while another is genuinely concurrent on the same
// bridge fails with a transition error.
func (b *Bridge) Submit(ctx context.Context, cmd contracts.Command) (any, error) {
	if cmd == nil {
		return nil, ErrNilCommand
	}
	sub := submission{id: uuid.New().String()[:8], cmd: cmd}
	return b.submit(ctx, sub, true)
}

func (b *Bridge) submit(ctx context.Context, sub submission, waitForResult bool) (any, error) {
	if err := b.cmdState.To(CommandSubmitting); err != nil {
		return nil, err
	}
	b.setLastCommand(sub.id)

	if err := b.cmdSlot.Put(ctx, sub, b.queueTimeout); err != nil {
		b.logger.Error("command could not be enqueued",
			"command", sub.id, "timeout", b.queueTimeout, "error", err)
		b.resetCommandState()
		if errors.Is(err, slot.ErrPutTimeout) {
			return nil, &SubmissionTimeoutError{CommandID: sub.id, Timeout: b.queueTimeout}
		}
		return nil, err
	}
	if err := b.cmdState.To(CommandSubmitted); err != nil {
		return nil, err
	}

	if !waitForResult {
		// Sentinel path: the round trip is intentionally skipped and no
		// result will ever be delivered for this submission.
		if err := b.cmdState.To(CommandFinished); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := b.cmdState.To(CommandWaiting); err != nil {
		return nil, err
	}

	out, err := b.resSlot.Get(ctx, b.execTimeout)
	if err != nil {
		b.logger.Error("did not receive result for command",
			"command", sub.id, "timeout", b.execTimeout, "error", err)
		b.failBridge()
		if errors.Is(err, slot.ErrGetTimeout) {
			return nil, &ResponseTimeoutError{CommandID: sub.id, Timeout: b.execTimeout}
		}
		return nil, err
	}

	if out.err != nil {
		b.logger.Error("command execution raised error",
			"command", sub.id, "error", out.err)
		b.resetCommandState()
		return nil, out.err
	}

	if err := b.cmdState.To(CommandFinished); err != nil {
		return nil, err
	}
	return out.value, nil
}

// resetCommandState takes the command machine through Failed back to
// Undefined so the next Submit may proceed. The bridge state is left
// untouched.
func (b *Bridge) resetCommandState() {
	_ = b.cmdState.To(CommandFailed)
	_ = b.cmdState.To(CommandUndefined)
}

// failBridge marks both machines failed. Reuse requires Reset.
func (b *Bridge) failBridge() {
	_ = b.cmdState.To(CommandFailed)
	_ = b.state.To(BridgeFailed)
}

// StopDelegation informs the consuming side that no more commands will be
// submitted. It is idempotent: repeated stops on a stopping or stopped
// bridge only log. A command still waiting for its result is logged but
// not waited for.
//
// With failMode both slots are drained first, so no stale command or
// result crosses a failure boundary, and a failed command machine is
// reset so the sentinel can still go out.
func (b *Bridge) StopDelegation(ctx context.Context, failMode bool) error {
	switch b.state.Current() {
	case BridgeStopped:
		b.logger.Info("command delegation stopped, not stopping again")
		return nil
	case BridgeStopping:
		b.logger.Info("command delegation already asked to stop, not stopping again")
		return nil
	}

	if b.cmdState.Is(CommandWaiting) {
		b.logger.Warn("still waiting for response to delegated command",
			"command", b.lastCommand())
	}

	if !b.state.Is(BridgeFailed) {
		if err := b.state.To(BridgeStopping); err != nil {
			return err
		}
	}
	b.logger.Info("stopping command execution")

	if failMode {
		b.clearSlots()
		if b.cmdState.Is(CommandFailed) {
			if err := b.cmdState.To(CommandUndefined); err != nil {
				return err
			}
		}
	}

	// The sentinel is the exclusive way the consumer learns to stop.
	sentinel := submission{id: uuid.New().String()[:8], sentinel: true}
	if _, err := b.submit(ctx, sentinel, false); err != nil {
		return err
	}

	if err := b.state.To(BridgeStopped); err != nil {
		return err
	}
	b.logger.Info("command execution stopped")
	return nil
}
