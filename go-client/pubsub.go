package goredis

import (
	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

// Publish queues PUBLISH channel message. The reply is the number of
// receivers.
//
// SUBSCRIBE and friends switch the connection into push mode and cannot be
// batched.
func Publish(q Queuer, channel, message string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "PUBLISH", channel, message)
}
