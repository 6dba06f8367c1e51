package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tidwall/resp"

	"github.com/akashmaji946/go-redis-batch/internal/channel"
)

// QueuedOperation is one unit of work in a batch: the decoder for a command
// that has already been written to the channel.
//
// Lifecycle:
//   - created by Enqueue once the command is in the write buffer (issued)
//   - consumed exactly once when its reply is dispatched or it is failed
type QueuedOperation struct {
	index    int
	batch    uuid.UUID
	decoder  Decoder
	issued   bool
	consumed bool
}

// Index is the submission position of the operation in its batch.
func (op *QueuedOperation) Index() int { return op.index }

// Decoder returns the operation's decoder.
func (op *QueuedOperation) Decoder() Decoder { return op.decoder }

// Issued reports whether the command was written to the channel.
func (op *QueuedOperation) Issued() bool { return op.issued }

// Consumed reports whether the operation already received its outcome.
func (op *QueuedOperation) Consumed() bool { return op.consumed }

func (op *QueuedOperation) deliver(v resp.Value) error {
	if op.consumed {
		return fmt.Errorf("operation %d of batch %s consumed twice", op.index, op.batch)
	}
	op.consumed = true
	return op.decoder.deliver(v)
}

func (op *QueuedOperation) fail(err error) error {
	if op.consumed {
		return nil
	}
	op.consumed = true
	return op.decoder.fail(err)
}

// replySource yields replies in order: straight from the channel for a
// pipeline, from the EXEC array for a transaction.
type replySource interface {
	next(ctx context.Context, index int) (resp.Value, error)
}

type channelSource struct {
	ch channel.Channel
}

func (s channelSource) next(ctx context.Context, index int) (resp.Value, error) {
	v, err := s.ch.ReadReply(ctx)
	if err != nil {
		return resp.Value{}, &StreamCorruptionError{Index: index, Err: err}
	}
	return v, nil
}

type arraySource struct {
	items []resp.Value
	pos   int
}

func (s *arraySource) next(_ context.Context, index int) (resp.Value, error) {
	if s.pos >= len(s.items) {
		return resp.Value{}, &StreamCorruptionError{Index: index, Err: fmt.Errorf("only %d results", len(s.items))}
	}
	v := s.items[s.pos]
	s.pos++
	return v, nil
}

// dispatch reads one reply per operation, in submission order, and hands it
// to the operation's decoder. Decode failures stay with their operation and
// the loop goes on; those nobody handled are returned in unhandled. A read
// failure stops the loop: the remaining operations are failed with it and
// it is returned as fatal.
func dispatch(ctx context.Context, src replySource, ops []*QueuedOperation) (unhandled []error, fatal error) {
	for i, op := range ops {
		v, err := src.next(ctx, op.index)
		if err != nil {
			failAll(ops[i:], err)
			return unhandled, err
		}
		if err := op.deliver(v); err != nil {
			unhandled = append(unhandled, fmt.Errorf("operation %d: %w", op.index, err))
		}
	}
	return unhandled, nil
}

// failAll completes every operation not yet consumed with err.
func failAll(ops []*QueuedOperation, err error) {
	for _, op := range ops {
		op.fail(err)
	}
}
