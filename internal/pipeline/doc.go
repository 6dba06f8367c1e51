// Package pipeline implements command pipelining and MULTI/EXEC
// transactions on top of a channel.Channel.
//
// ARCHITECTURE:
//
// Queue Now, Read Later:
// Enqueue writes the command into the channel's write buffer immediately
// and remembers the decoder for its reply. Flush (or Commit) sends the
// buffer once and then reads exactly one reply per queued operation, in
// submission order, handing each to its decoder.
//
// Transactions:
// A Transaction frames the same queue with MULTI and EXEC. At commit the
// framing replies are checked first (MULTI +OK, one +QUEUED per command,
// then the EXEC array whose length must match the number of commands) and
// the decoders run on the EXEC array's elements. A null EXEC reply (a
// watched key changed) or a mismatched count makes Commit return false
// without an error.
//
// Modes:
// An engine is opened in Sync or Async mode and keeps it. Sync decoders
// take callbacks that run inside Flush/Commit; Async decoders return a
// Future that FlushAsync/CommitAsync completes. Enqueueing a decoder of the
// other mode, or calling the other mode's flush, fails with
// ModeMismatchError before any byte is written.
//
// INVARIANTS:
//
// Ordering: reply N is always decoded by operation N. No reordering, no
// skipping.
//
// One batch per connection: opening a pipeline or transaction takes the
// channel's batch lock; Close releases it exactly once on every path.
//
// Broken streams: a reply that cannot be read leaves the stream position
// unknown. The engine invalidates the channel and fails the remaining
// operations with StreamCorruptionError. Cancelling the context of an async
// flush has the same effect.
//
// Side registrations: the channel's ledger is applied only when the batch
// completes, and discarded when it fails or is rolled back.
//
// Engines are single use and not safe for concurrent use.
package pipeline
