package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/resp"

	"github.com/akashmaji946/go-redis-batch/internal/channel"
	"github.com/akashmaji946/go-redis-batch/internal/common"
)

// TxState is the lifecycle position of a Transaction.
type TxState int

const (
	TxInitial TxState = iota
	TxQueuing
	TxCommitting
	TxCommitted
	TxAborted
	TxRolledBack
)

func (s TxState) String() string {
	switch s {
	case TxInitial:
		return "initial"
	case TxQueuing:
		return "queuing"
	case TxCommitting:
		return "committing"
	case TxCommitted:
		return "committed"
	case TxAborted:
		return "aborted"
	case TxRolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// txStep reads and checks one framing reply.
type txStep struct {
	name string
	run  func(v resp.Value) error
}

// Transaction is a pipeline framed by MULTI/EXEC. The server queues every
// command and runs them atomically at EXEC, or not at all.
//
// Reply framing, read in this order at commit:
//   - prologue: +OK for MULTI
//   - body: one +QUEUED per enqueued command
//   - epilogue: the EXEC array, whose length must equal the number of
//     enqueued commands
//
// after which each command's decoder runs on its element of the EXEC array.
type Transaction struct {
	*batch

	state    TxState
	expected int

	inflight *Future[bool]
}

// OpenTransaction takes the channel's batch lock and writes MULTI.
func OpenTransaction(ch channel.Channel, mode Mode) (*Transaction, error) {
	b, err := openBatch(ch, mode, "transaction")
	if err != nil {
		return nil, err
	}
	t := &Transaction{batch: b, state: TxInitial}
	if err := ch.Write(channel.NewCommand("MULTI")); err != nil {
		b.closed = true
		b.release(false)
		return nil, err
	}
	t.state = TxQueuing
	return t, nil
}

// State returns the current lifecycle state.
func (t *Transaction) State() TxState { return t.state }

// Expected returns the number of commands EXEC must answer for.
func (t *Transaction) Expected() int { return t.expected }

// Enqueue writes cmd inside the MULTI block and queues dec to decode the
// command's element of the EXEC reply.
func (t *Transaction) Enqueue(cmd channel.Command, dec Decoder) error {
	if t.state != TxQueuing {
		return ErrEngineClosed
	}
	if err := t.enqueue(cmd, dec); err != nil {
		return err
	}
	t.expected++
	return nil
}

// Commit sends EXEC and completes every operation. It returns false with a
// nil error when the server did not run the transaction (see
// TransactionFailedError); the operations then receive the
// *TransactionFailedError and the ledger is discarded. A non-nil error
// means the stream broke or the call itself was invalid.
func (t *Transaction) Commit() (bool, error) {
	if err := t.checkMode(Sync, "Commit"); err != nil {
		return false, err
	}
	if err := t.beginCommit(); err != nil {
		return false, err
	}
	return t.commit(context.Background())
}

// CommitAsync runs Commit on its own goroutine.
func (t *Transaction) CommitAsync(ctx context.Context) *Future[bool] {
	if err := t.checkMode(Async, "CommitAsync"); err != nil {
		return completedFuture(false, err)
	}
	if err := t.beginCommit(); err != nil {
		return completedFuture(false, err)
	}
	f := newFuture[bool]()
	t.inflight = f
	go func() {
		f.complete(t.commit(ctx))
	}()
	return f
}

func (t *Transaction) beginCommit() error {
	if t.state != TxQueuing {
		return ErrEngineClosed
	}
	t.state = TxCommitting
	t.closed = true
	return nil
}

func (t *Transaction) commit(ctx context.Context) (bool, error) {
	defer func() {
		if r := recover(); r != nil {
			t.state = TxAborted
			t.abandon(r)
		}
	}()
	if err := t.ch.Write(channel.NewCommand("EXEC")); err != nil {
		return t.broken(&StreamCorruptionError{Index: -1, Err: err})
	}
	if err := t.ch.Flush(ctx); err != nil {
		return t.broken(&StreamCorruptionError{Index: -1, Err: err})
	}

	var results []resp.Value
	steps := t.prologue()
	steps = append(steps, t.body()...)
	steps = append(steps, t.epilogue(&results))

	src := channelSource{ch: t.ch}
	var failed *TransactionFailedError
	for i, step := range steps {
		v, err := src.next(ctx, i)
		if err != nil {
			return t.broken(err)
		}
		if err := step.run(v); err != nil {
			// keep reading: every framing reply is already on its way
			if failed == nil && !errors.As(err, &failed) {
				failed = &TransactionFailedError{Reason: step.name + ": " + err.Error(), Expected: t.expected, Got: -1}
			}
		}
	}

	if failed != nil {
		t.state = TxAborted
		failAll(t.ops, failed)
		t.release(false)
		common.Stats.TxAborted.Add(1)
		t.log.Info("transaction not executed: %v", failed)
		return false, nil
	}

	unhandled, fatal := dispatch(ctx, &arraySource{items: results}, t.ops)
	if fatal != nil {
		// the EXEC array was checked, so this is a bookkeeping fault
		return t.broken(fatal)
	}

	t.state = TxCommitted
	common.Stats.TxCommitted.Add(1)
	t.log.Debug("committed %d operations", len(t.ops))
	if err := t.release(true); err != nil {
		unhandled = append(unhandled, err)
	}
	return true, errors.Join(unhandled...)
}

func (t *Transaction) broken(err error) (bool, error) {
	t.state = TxAborted
	t.corrupt(err)
	failAll(t.ops, err)
	t.release(false)
	t.log.Error("transaction aborted: %v", err)
	return false, err
}

func (t *Transaction) prologue() []txStep {
	return []txStep{{name: "MULTI", run: expectStatus("OK")}}
}

func (t *Transaction) body() []txStep {
	steps := make([]txStep, len(t.ops))
	for i, op := range t.ops {
		steps[i] = txStep{
			name: fmt.Sprintf("command %d", op.index),
			run:  expectStatus("QUEUED"),
		}
	}
	return steps
}

// epilogue checks the EXEC reply and stores its elements in results.
func (t *Transaction) epilogue(results *[]resp.Value) txStep {
	return txStep{
		name: "EXEC",
		run: func(v resp.Value) error {
			switch {
			case v.Type() == resp.Error:
				return &TransactionFailedError{Reason: v.String(), Expected: t.expected, Got: -1}
			case v.IsNull():
				return &TransactionFailedError{Reason: "aborted by server", Expected: t.expected, Got: -1}
			case v.Type() != resp.Array:
				return &TransactionFailedError{Reason: fmt.Sprintf("EXEC replied with %q", string(rune(v.Type()))), Expected: t.expected, Got: -1}
			}
			items := v.Array()
			if len(items) != t.expected {
				return &TransactionFailedError{Reason: "result count mismatch", Expected: t.expected, Got: len(items)}
			}
			*results = items
			return nil
		},
	}
}

func expectStatus(word string) func(v resp.Value) error {
	return func(v resp.Value) error {
		if v.Type() == resp.Error {
			return &ReplyError{Message: v.String()}
		}
		if v.Type() != resp.SimpleString || v.String() != word {
			return fmt.Errorf("expected '%s' got '%s'", word, v.String())
		}
		return nil
	}
}

// Rollback abandons the transaction while it is still queuing: DISCARD is
// sent, the pending acknowledgements are read off the wire, operations are
// failed with ErrDiscarded and the ledger is discarded.
func (t *Transaction) Rollback() error {
	return t.RollbackContext(context.Background())
}

// RollbackContext is Rollback with the acknowledgement reads bounded by
// ctx. If ctx ends first the channel is invalidated.
func (t *Transaction) RollbackContext(ctx context.Context) error {
	if t.state != TxQueuing {
		return &NoActiveTransactionError{State: t.state}
	}
	t.state = TxRolledBack
	t.closed = true
	common.Stats.TxRolledBack.Add(1)

	var err error
	if werr := t.ch.Write(channel.NewCommand("DISCARD")); werr != nil {
		err = &StreamCorruptionError{Index: -1, Err: werr}
		t.corrupt(err)
	} else {
		// MULTI ack, one QUEUED per command, DISCARD ack
		err = t.drain(ctx, len(t.ops) + 2)
	}
	failAll(t.ops, ErrDiscarded)
	t.release(false)
	t.log.Debug("rolled back %d operations", len(t.ops))
	return err
}

// Close rolls back a transaction that is still queuing, waits for a running
// CommitAsync and releases the batch lock. It is idempotent.
func (t *Transaction) Close() error {
	if t.inflight != nil {
		<-t.inflight.Done()
	}
	var err error
	if t.state == TxQueuing {
		err = t.Rollback()
	}
	t.closed = true
	t.release(false)
	return err
}
