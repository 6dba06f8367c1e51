/*
author: akashmaji
email: akashmaji@iisc.ac.in
file: go-redis-batch/internal/common/stats.go
*/
package common

import "sync/atomic"

// package-wide logger shared by the common helpers
var logger = NewLogger()

// BatchStats counts what the batch engines did in this process.
// All counters are safe for concurrent use.
type BatchStats struct {
	CommandsSent      atomic.Int64
	PipelinesFlushed  atomic.Int64
	TxCommitted       atomic.Int64
	TxAborted         atomic.Int64
	TxRolledBack      atomic.Int64
	StreamCorruptions atomic.Int64
}

// Stats is the process-wide counter set the engines report into.
var Stats = &BatchStats{}

// Snapshot returns the current counter values keyed by name.
func (s *BatchStats) Snapshot() map[string]int64 {
	return map[string]int64{
		"total_commands_sent":      s.CommandsSent.Load(),
		"total_pipelines_flushed":  s.PipelinesFlushed.Load(),
		"total_txn_committed":      s.TxCommitted.Load(),
		"total_txn_aborted":        s.TxAborted.Load(),
		"total_txn_rolled_back":    s.TxRolledBack.Load(),
		"total_stream_corruptions": s.StreamCorruptions.Load(),
	}
}

// Reset zeroes every counter.
func (s *BatchStats) Reset() {
	s.CommandsSent.Store(0)
	s.PipelinesFlushed.Store(0)
	s.TxCommitted.Store(0)
	s.TxAborted.Store(0)
	s.TxRolledBack.Store(0)
	s.StreamCorruptions.Store(0)
}
