package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/akashmaji946/go-redis-batch/internal/channel"
	"github.com/akashmaji946/go-redis-batch/internal/common"
)

// package-wide logger, replaced with SetLogger
var logger = common.NewLogger()

// SetLogger replaces the logger used by every engine.
func SetLogger(l *common.Logger) {
	logger = l
}

// batch is the state shared by pipelines and transactions: the channel,
// the held batch guard, the fixed mode and the queued operations.
type batch struct {
	id     uuid.UUID
	kind   string
	ch     channel.Channel
	mode   Mode
	guard  *channel.Guard
	ops    []*QueuedOperation
	closed bool
	log    *common.Logger
}

func openBatch(ch channel.Channel, mode Mode, kind string) (*batch, error) {
	if mode != Sync && mode != Async {
		return nil, &ModeMismatchError{Engine: mode, Got: mode, Op: "open " + kind}
	}
	guard, err := ch.BeginBatch()
	if err != nil {
		return nil, err
	}
	ch.Ledger().Begin()

	id := uuid.New()
	b := &batch{
		id:    id,
		kind:  kind,
		ch:    ch,
		mode:  mode,
		guard: guard,
		log:   logger.With("batch", id.String(), "kind", kind),
	}
	b.log.Debug("opened %s batch", mode)
	return b, nil
}

// ID returns the batch id used in log records.
func (b *batch) ID() uuid.UUID { return b.id }

// Mode returns the mode the engine was opened with.
func (b *batch) Mode() Mode { return b.mode }

// Len returns the number of queued user operations.
func (b *batch) Len() int { return len(b.ops) }

// Operations returns the queued operations in submission order.
func (b *batch) Operations() []*QueuedOperation {
	out := make([]*QueuedOperation, len(b.ops))
	copy(out, b.ops)
	return out
}

func (b *batch) checkMode(want Mode, op string) error {
	if b.mode != want {
		return &ModeMismatchError{Engine: b.mode, Got: want, Op: op}
	}
	return nil
}

// enqueue writes cmd and queues dec. The mode is checked before anything
// reaches the channel; a failed write queues nothing.
func (b *batch) enqueue(cmd channel.Command, dec Decoder) error {
	if b.closed {
		return ErrEngineClosed
	}
	if dec == nil {
		return errors.New("pipeline: enqueue " + cmd.Name + ": nil decoder")
	}
	if dec.Mode() != b.mode {
		return &ModeMismatchError{Engine: b.mode, Got: dec.Mode(), Op: "enqueue " + cmd.Name}
	}
	if err := b.ch.Write(cmd); err != nil {
		return err
	}
	b.ops = append(b.ops, &QueuedOperation{
		index:   len(b.ops),
		batch:   b.id,
		decoder: dec,
		issued:  true,
	})
	return nil
}

// corrupt invalidates the channel after a failed read or flush.
func (b *batch) corrupt(err error) {
	common.Stats.StreamCorruptions.Add(1)
	b.ch.Invalidate(err)
}

// abandon is called with a value recovered from a panicking callback. The
// replies after it are still unread, so the channel is invalidated and the
// lock released before the panic goes on.
func (b *batch) abandon(r interface{}) {
	sc := &StreamCorruptionError{Index: -1, Err: fmt.Errorf("callback panicked: %v", r)}
	b.corrupt(sc)
	b.release(false)
	b.log.Error("%s abandoned: %v", b.kind, sc)
	failAll(b.ops, sc)
	panic(r)
}

// release gives the batch lock back, at most once, then applies or discards
// the connection's ledger. Only the call that actually released touches
// the ledger.
func (b *batch) release(apply bool) error {
	if !b.guard.Release() {
		return nil
	}
	ledger := b.ch.Ledger()
	if !apply {
		ledger.Discard()
		return nil
	}
	if err := ledger.Apply(); err != nil {
		b.log.Error("applying registrations: %v", err)
		return err
	}
	return nil
}

// drain reads and drops the replies of queued operations that were never
// flushed, keeping the reply stream aligned. On failure the channel is
// invalidated.
func (b *batch) drain(ctx context.Context, replies int) error {
	if err := b.ch.Flush(ctx); err != nil {
		sc := &StreamCorruptionError{Index: -1, Err: err}
		b.corrupt(sc)
		return sc
	}
	for i := 0; i < replies; i++ {
		if _, err := b.ch.ReadReply(ctx); err != nil {
			sc := &StreamCorruptionError{Index: i, Err: err}
			b.corrupt(sc)
			return sc
		}
	}
	return nil
}
