package contracts

import "context"

// Sequence is a lazily produced stream of intermediate values ending in a
// final result.
type Sequence interface {
	// Next returns the next intermediate value. It returns ok == false
	// with a nil error when the sequence is exhausted, after which
	// Result is valid. A non-nil error terminates the sequence.
	Next(ctx context.Context) (value any, ok bool, err error)

	// Result returns the final value. Valid only after Next reported
	// exhaustion without an error.
	Result() any
}

// Command is an opaque unit of work submitted through a bridge. Invoke is
// called exactly once per delegation, on the consuming side; ownership of
// the command transfers to the consumer on receipt.
type Command interface {
	Invoke(ctx context.Context) (Sequence, error)
}

// CommandFunc is a function adapter for Command.
type CommandFunc func(ctx context.Context) (Sequence, error)

// Invoke implements Command.
func (f CommandFunc) Invoke(ctx context.Context) (Sequence, error) {
	return f(ctx)
}

// FuncSequence adapts a pull function and a result function to Sequence.
type FuncSequence struct {
	NextFunc   func(ctx context.Context) (any, bool, error)
	ResultFunc func() any
}

// Next implements Sequence.
func (s *FuncSequence) Next(ctx context.Context) (any, bool, error) {
	if s.NextFunc == nil {
		return nil, false, nil
	}
	return s.NextFunc(ctx)
}

// Result implements Sequence.
func (s *FuncSequence) Result() any {
	if s.ResultFunc == nil {
		return nil
	}
	return s.ResultFunc()
}

// valueSequence yields a fixed set of values and a fixed result.
type valueSequence struct {
	values []any
	result any
	pos    int
}

func (s *valueSequence) Next(ctx context.Context) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if s.pos >= len(s.values) {
		return nil, false, nil
	}
	v := s.values[s.pos]
	s.pos++
	return v, true, nil
}

func (s *valueSequence) Result() any {
	return s.result
}

// Values builds a command that yields the given values in order and then
// produces result. Each invocation starts a fresh sequence, so the
// command may be submitted any number of times.
func Values(result any, values ...any) Command {
	return CommandFunc(func(ctx context.Context) (Sequence, error) {
		return &valueSequence{values: values, result: result}, nil
	})
}

// Failing builds a command whose invocation immediately fails with err.
func Failing(err error) Command {
	return CommandFunc(func(ctx context.Context) (Sequence, error) {
		return nil, err
	})
}
