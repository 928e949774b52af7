package bridge

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNilCommand = errors.New("bridge: command cannot be nil")

	// ErrSubmissionTimeout indicates the command could not be enqueued:
	// the consumer is stalled or not keeping up.
	ErrSubmissionTimeout = errors.New("bridge: command submission timed out")

	// ErrResponseTimeout indicates no result arrived for a submitted
	// command. The bridge is failed afterwards.
	ErrResponseTimeout = errors.New("bridge: timed out waiting for command result")

	// ErrNextCommandTimeout indicates the consumer waited for the next
	// command longer than allowed.
	ErrNextCommandTimeout = errors.New("bridge: timed out waiting for the next command")

	// ErrStopRequested indicates command execution was aborted because a
	// stop was observed at a forwarding step.
	ErrStopRequested = errors.New("bridge: stop requested during command execution")
)

// SubmissionTimeoutError reports that a command could not be placed on
// the command slot within the queue timeout. The bridge state is left
// untouched.
type SubmissionTimeoutError struct {
	CommandID string
	Timeout   time.Duration
}

func (e *SubmissionTimeoutError) Error() string {
	return fmt.Sprintf("bridge: command %s not enqueued within %v, consumer stalled",
		e.CommandID, e.Timeout)
}

func (e *SubmissionTimeoutError) Unwrap() error {
	return ErrSubmissionTimeout
}

// ResponseTimeoutError reports that the result of a submitted command did
// not arrive within the execution timeout. Both the command state and the
// bridge state are forced to Failed.
type ResponseTimeoutError struct {
	CommandID string
	Timeout   time.Duration
}

func (e *ResponseTimeoutError) Error() string {
	return fmt.Sprintf("bridge: no result for command %s within %v",
		e.CommandID, e.Timeout)
}

func (e *ResponseTimeoutError) Unwrap() error {
	return ErrResponseTimeout
}

// NextCommandTimeoutError reports that no command arrived on the consumer
// side within the next-command timeout. The consumer must not wait
// indefinitely for a producer that never sends anything.
type NextCommandTimeoutError struct {
	Timeout time.Duration
}

func (e *NextCommandTimeoutError) Error() string {
	return fmt.Sprintf("bridge: no command received within %v", e.Timeout)
}

func (e *NextCommandTimeoutError) Unwrap() error {
	return ErrNextCommandTimeout
}

// StopRequestError reports that a stop was observed between two forwarded
// values of an executing command. It is delivered to the submitter as the
// command's failure.
type StopRequestError struct {
	State BridgeState
}

func (e *StopRequestError) Error() string {
	return fmt.Sprintf("bridge: execution aborted, bridge is %s", e.State)
}

func (e *StopRequestError) Unwrap() error {
	return ErrStopRequested
}
