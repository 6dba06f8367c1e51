package goredis

import (
	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

// SetBit queues SETBIT key offset value.
func SetBit(q Queuer, key string, offset int, value int, dec pipeline.Decoder) error {
	return enqueue(q, dec, "SETBIT", key, offset, value)
}

// GetBit queues GETBIT key offset.
func GetBit(q Queuer, key string, offset int, dec pipeline.Decoder) error {
	return enqueue(q, dec, "GETBIT", key, offset)
}

// BitCount queues BITCOUNT key [start end].
func BitCount(q Queuer, key string, dec pipeline.Decoder, startEnd ...interface{}) error {
	return enqueue(q, dec, "BITCOUNT", append([]interface{}{key}, startEnd...)...)
}
