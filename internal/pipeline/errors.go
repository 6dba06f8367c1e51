package pipeline

import (
	"errors"
	"fmt"

	"github.com/tidwall/resp"

	"github.com/akashmaji946/go-redis-batch/internal/channel"
)

var (
	// ErrEngineClosed is returned by Enqueue, Flush and Commit on an engine
	// that has already been flushed, committed, rolled back or closed.
	ErrEngineClosed = errors.New("pipeline: engine is closed")

	// ErrDiscarded completes operations whose batch was closed or rolled
	// back before their reply was decoded.
	ErrDiscarded = errors.New("pipeline: operation discarded before completion")
)

// AlreadyBatchingError is returned by OpenPipeline and OpenTransaction when
// the connection already has an open batch.
type AlreadyBatchingError = channel.AlreadyBatchingError

// ModeMismatchError reports a sync decoder or call used on an async engine,
// or the reverse.
type ModeMismatchError struct {
	// Engine is the mode the engine was opened with.
	Engine Mode
	// Got is the mode of the decoder or call that was rejected.
	Got Mode
	// Op names the rejected call.
	Op string
}

func (e *ModeMismatchError) Error() string {
	return fmt.Sprintf("pipeline: %s: %s used on a %s engine", e.Op, e.Got, e.Engine)
}

// TransactionFailedError reports a transaction the server did not execute:
// a null EXEC reply (a watched key changed), an error EXEC reply, a failed
// MULTI or QUEUED acknowledgement, or an EXEC reply with the wrong number
// of results. Commit converts it to a false return.
type TransactionFailedError struct {
	Reason   string
	Expected int
	Got      int
}

func (e *TransactionFailedError) Error() string {
	if e.Got >= 0 && e.Got != e.Expected {
		return fmt.Sprintf("pipeline: transaction failed: %s (expected %d results, got %d)", e.Reason, e.Expected, e.Got)
	}
	return "pipeline: transaction failed: " + e.Reason
}

// StreamCorruptionError reports a reply that could not be read at all. The
// position in the reply stream is unknown afterwards, so the connection is
// invalidated.
type StreamCorruptionError struct {
	// Index is the position of the reply being read, -1 for the flush.
	Index int
	Err   error
}

func (e *StreamCorruptionError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("pipeline: stream corrupted during flush: %v", e.Err)
	}
	return fmt.Sprintf("pipeline: stream corrupted at reply %d: %v", e.Index, e.Err)
}

func (e *StreamCorruptionError) Unwrap() error {
	return e.Err
}

// NoActiveTransactionError is returned by Rollback outside the queuing state.
type NoActiveTransactionError struct {
	State TxState
}

func (e *NoActiveTransactionError) Error() string {
	return fmt.Sprintf("pipeline: no active transaction (state %s)", e.State)
}

// ReplyError is an error reply sent by the server for one command.
type ReplyError struct {
	Message string
}

func (e *ReplyError) Error() string {
	return "pipeline: server error: " + e.Message
}

// ShapeError reports a well-formed reply of a kind the decoder cannot use.
type ShapeError struct {
	Want Shape
	Got  resp.Type
	Err  error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pipeline: cannot decode %q reply as %s: %v", string(rune(e.Got)), e.Want, e.Err)
	}
	return fmt.Sprintf("pipeline: cannot decode %q reply as %s", string(rune(e.Got)), e.Want)
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

// IsAlreadyBatching reports whether err is an AlreadyBatchingError.
// Uses errors.As to handle wrapped errors.
func IsAlreadyBatching(err error) bool {
	var ab *AlreadyBatchingError
	return errors.As(err, &ab)
}

// IsModeMismatch reports whether err is a ModeMismatchError.
func IsModeMismatch(err error) bool {
	var mm *ModeMismatchError
	return errors.As(err, &mm)
}

// IsTransactionFailed reports whether err is a TransactionFailedError.
func IsTransactionFailed(err error) bool {
	var tf *TransactionFailedError
	return errors.As(err, &tf)
}

// IsStreamCorruption reports whether err is a StreamCorruptionError.
func IsStreamCorruption(err error) bool {
	var sc *StreamCorruptionError
	return errors.As(err, &sc)
}
