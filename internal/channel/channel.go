// Package channel is the raw command/reply connection the batch engines run on.
//
// A Channel buffers written commands until Flush, decodes one reply per
// ReadReply in FIFO order, and owns two pieces of per-connection state:
// the batch lock (at most one open pipeline or transaction) and the
// side-registration ledger.
package channel

import (
	"context"

	"github.com/tidwall/resp"
)

// Channel is the connection contract consumed by the pipeline and
// transaction engines. Implementations are not safe for concurrent use.
type Channel interface {
	// Write appends cmd to the write buffer. Nothing is sent until Flush.
	Write(cmd Command) error

	// Flush forces the buffered commands onto the wire.
	Flush(ctx context.Context) error

	// ReadReply decodes the next reply off the wire. A returned error means
	// the position in the reply stream is unknown.
	ReadReply(ctx context.Context) (resp.Value, error)

	// BeginBatch takes the connection's batch lock. It fails with
	// *AlreadyBatchingError while another guard is held.
	BeginBatch() (*Guard, error)

	// Ledger returns the connection's side-registration ledger.
	Ledger() *Ledger

	// Invalidate marks the connection unusable. The first error wins.
	Invalidate(err error)
}
