// Package contracts defines the command and sequence contracts shared by
// the submitting and consuming sides of a bridge.
//
// A Command is the sole requirement imposed on callback-style code: a
// zero-argument unit of work that, when invoked, produces a lazy Sequence
// of intermediate values and ultimately a final result value, or fails
// with an error.
//
// A Sequence is pull-based: the consumer calls Next until it reports
// completion, after which Result supplies the command's final value. The
// bridge forwards every intermediate value into its own outward sequence
// and routes the final value back to the blocked submitter.
package contracts
