package bridge

import "github.com/glimte/callbridge-go/internal/fsm"

// BridgeState tracks whether the bridge as a whole is usable, shutting
// down, or has failed.
type BridgeState int

const (
	BridgeUndefined BridgeState = iota
	BridgeRunning
	BridgeStopping
	BridgeStopped
	BridgeFailed
)

func (s BridgeState) String() string {
	switch s {
	case BridgeUndefined:
		return "undefined"
	case BridgeRunning:
		return "running"
	case BridgeStopping:
		return "stopping"
	case BridgeStopped:
		return "stopped"
	case BridgeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CommandState tracks the handshake lifecycle of the single in-flight
// command. It must be back at Undefined or Finished before a new Submit
// may begin.
type CommandState int

const (
	CommandUndefined CommandState = iota
	CommandSubmitting
	CommandSubmitted
	CommandWaiting
	CommandFinished
	CommandFailed
)

func (s CommandState) String() string {
	switch s {
	case CommandUndefined:
		return "undefined"
	case CommandSubmitting:
		return "submitting"
	case CommandSubmitted:
		return "submitted"
	case CommandWaiting:
		return "waiting"
	case CommandFinished:
		return "finished"
	case CommandFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transitions are monotonic within a run; Failed is reachable from any
// state and leaves only through the explicit Undefined reset.
func newBridgeStateMachine() *fsm.Machine[BridgeState] {
	return fsm.New("bridge", BridgeUndefined, fsm.Table[BridgeState]{
		BridgeUndefined: {BridgeRunning, BridgeStopping, BridgeFailed},
		BridgeRunning:   {BridgeStopping, BridgeFailed},
		BridgeStopping:  {BridgeStopped, BridgeFailed},
		BridgeStopped:   {BridgeRunning, BridgeFailed},
		BridgeFailed:    {BridgeUndefined},
	})
}

func newCommandStateMachine() *fsm.Machine[CommandState] {
	return fsm.New("command", CommandUndefined, fsm.Table[CommandState]{
		CommandUndefined:  {CommandSubmitting, CommandFailed},
		CommandSubmitting: {CommandSubmitted, CommandFailed},
		CommandSubmitted:  {CommandWaiting, CommandFinished, CommandFailed},
		CommandWaiting:    {CommandFinished, CommandFailed},
		CommandFinished:   {CommandSubmitting, CommandFailed},
		CommandFailed:     {CommandUndefined},
	})
}
