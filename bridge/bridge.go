package bridge

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/glimte/callbridge-go/contracts"
	"github.com/glimte/callbridge-go/internal/fsm"
	"github.com/glimte/callbridge-go/internal/slot"
)

// Submitter is the capability exposed to the callback side.
type Submitter interface {
	// Submit hands cmd to the consumer and blocks until its final
	// result is available.
	Submit(ctx context.Context, cmd contracts.Command) (any, error)

	// StopDelegation tells the consumer that no more commands will be
	// submitted. With failMode both slots are drained first.
	StopDelegation(ctx context.Context, failMode bool) error
}

// SequenceProducer is the capability exposed to the consuming side.
type SequenceProducer interface {
	// Delegated returns the outward sequence of values produced by
	// submitted commands.
	Delegated(ctx context.Context) *Iterator
}

// submission is what travels over the command slot. A sentinel
// submission carries no command and signals the end of delegation.
type submission struct {
	id       string
	cmd      contracts.Command
	sentinel bool
}

// outcome is what travels over the result slot.
type outcome struct {
	value any
	err   error
}

// Bridge implements both capabilities over two capacity-1 slots and two
// state machines. Exactly one goroutine per capability.
type Bridge struct {
	id       string
	cmdSlot  *slot.Slot[submission]
	resSlot  *slot.Slot[outcome]
	state    *fsm.Machine[BridgeState]
	cmdState *fsm.Machine[CommandState]
	logger   *slog.Logger

	nextCommandTimeout time.Duration
	execTimeout        time.Duration
	queueTimeout       time.Duration
	drainAttempts      int

	mu     sync.Mutex
	lastID string
}

// Config holds configuration for a bridge. All values are fixed for the
// bridge's lifetime.
type Config struct {
	// NextCommandTimeout bounds how long the consumer waits for the
	// next command before treating absence as an error.
	NextCommandTimeout time.Duration

	// ExecTimeout bounds how long Submit waits for a result.
	ExecTimeout time.Duration

	// QueueTimeout bounds how long Submit waits for space on the
	// command slot.
	QueueTimeout time.Duration

	// DrainAttempts bounds the best-effort slot clearing performed by
	// fail-mode stops and resets.
	DrainAttempts int

	Logger *slog.Logger
}

// Option configures the bridge.
type Option func(*Config)

// WithNextCommandTimeout sets the consumer-side wait for the next command.
func WithNextCommandTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.NextCommandTimeout = d
	}
}

// WithExecTimeout sets how long Submit waits for a command's result.
func WithExecTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ExecTimeout = d
	}
}

// WithQueueTimeout sets how long Submit waits for space on the command slot.
func WithQueueTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.QueueTimeout = d
	}
}

// WithDrainAttempts sets the bound on best-effort slot draining.
func WithDrainAttempts(n int) Option {
	return func(c *Config) {
		c.DrainAttempts = n
	}
}

// WithLogger sets the diagnostic logging sink.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// New creates a bridge with the given options.
func New(opts ...Option) *Bridge {
	cfg := &Config{
		NextCommandTimeout: 5 * time.Second,
		ExecTimeout:        5 * time.Second,
		QueueTimeout:       10 * time.Second,
		DrainAttempts:      10,
		Logger:             slog.Default(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	id := uuid.New().String()[:8]

	return &Bridge{
		id:                 id,
		cmdSlot:            slot.New[submission](),
		resSlot:            slot.New[outcome](),
		state:              newBridgeStateMachine(),
		cmdState:           newCommandStateMachine(),
		logger:             cfg.Logger.With("bridge", id),
		nextCommandTimeout: cfg.NextCommandTimeout,
		execTimeout:        cfg.ExecTimeout,
		queueTimeout:       cfg.QueueTimeout,
		drainAttempts:      cfg.DrainAttempts,
	}
}

// ID returns the bridge instance id used in log output.
func (b *Bridge) ID() string {
	return b.id
}

// State returns the current bridge state.
func (b *Bridge) State() BridgeState {
	return b.state.Current()
}

// CommandState returns the current in-flight command state.
func (b *Bridge) CommandState() CommandState {
	return b.cmdState.Current()
}

// Reset returns a failed bridge to its initial state so it can be used
// again. It fails unless the bridge state is Failed.
func (b *Bridge) Reset() error {
	if err := b.state.To(BridgeUndefined); err != nil {
		return err
	}
	if b.cmdState.Is(CommandFailed) {
		if err := b.cmdState.To(CommandUndefined); err != nil {
			return err
		}
	}
	b.clearSlots()
	return nil
}

// clearSlots empties both slots, best effort and bounded.
func (b *Bridge) clearSlots() {
	if n := b.cmdSlot.Drain(b.drainAttempts); n > 0 {
		b.logger.Debug("discarded stale commands", "count", n)
	}
	if n := b.resSlot.Drain(b.drainAttempts); n > 0 {
		b.logger.Debug("discarded stale results", "count", n)
	}
}

func (b *Bridge) setLastCommand(id string) {
	b.mu.Lock()
	b.lastID = id
	b.mu.Unlock()
}

func (b *Bridge) lastCommand() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastID
}

// Snapshot is a point-in-time diagnostic view of a bridge.
type Snapshot struct {
	ID            string
	State         BridgeState
	CommandState  CommandState
	LastCommandID string
	CommandQueued bool
	ResultQueued  bool
	StateTrace    []fsm.Transition
	CommandTrace  []fsm.Transition
}

// Snapshot captures the current states, the last submitted command id and
// the slot occupancy. Intended for diagnosing a stuck handoff.
func (b *Bridge) Snapshot() Snapshot {
	return Snapshot{
		ID:            b.id,
		State:         b.state.Current(),
		CommandState:  b.cmdState.Current(),
		LastCommandID: b.lastCommand(),
		CommandQueued: b.cmdSlot.Len() > 0,
		ResultQueued:  b.resSlot.Len() > 0,
		StateTrace:    b.state.History(),
		CommandTrace:  b.cmdState.History(),
	}
}

var (
	_ Submitter        = (*Bridge)(nil)
	_ SequenceProducer = (*Bridge)(nil)
)
