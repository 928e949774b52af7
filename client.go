// Copyright 2024 Callbridge Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package callbridge lets callback-style code drive a sequence-style
// consumer running in another goroutine.
//
// Many solvers and callback-driven integrations expect to call a function
// and receive a value back. A sequence consumer instead pulls values one
// at a time. The bridge connects the two: the callback side submits a
// command and blocks until its result is available, while every value the
// command yields appears in the consumer's sequence.
//
// Typical usage:
//
//	b := callbridge.New()
//	runner := callbridge.NewRunner(b)
//	runner.Go(ctx, func(v any) error {
//		// consume each yielded value
//		return nil
//	})
//
//	r, err := b.Submit(ctx, cmd)
//	...
//	b.StopDelegation(ctx, false)
//	final, err := runner.Wait()
package callbridge

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/glimte/callbridge-go/bridge"
)

// New creates a bridge ready for delegation. It is a convenience wrapper
// around bridge.New with the same options.
func New(opts ...bridge.Option) *bridge.Bridge {
	return bridge.New(opts...)
}

// Runner owns the consumer goroutine of a bridge. It replaces the
// thread-start/join choreography every integration otherwise has to
// write by hand: Go starts consumption, Wait joins and reports the last
// command's final value.
type Runner struct {
	b *bridge.Bridge
	g errgroup.Group

	mu     sync.Mutex
	result any
}

// NewRunner creates a runner for b. The runner is single-use: one Go,
// one Wait.
func NewRunner(b *bridge.Bridge) *Runner {
	return &Runner{b: b}
}

// Go starts consuming delegated commands in a new goroutine, forwarding
// every yielded value to sink. A nil sink discards values.
func (r *Runner) Go(ctx context.Context, sink func(v any) error) {
	r.g.Go(func() error {
		result, err := r.b.Run(ctx, sink)
		r.mu.Lock()
		r.result = result
		r.mu.Unlock()
		return err
	})
}

// Wait blocks until the consumer goroutine finishes and returns the last
// command's final value together with the consumer's terminal error, nil
// after a clean stop.
func (r *Runner) Wait() (any, error) {
	err := r.g.Wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, err
}
