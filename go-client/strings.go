package goredis

import (
	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

// Get queues GET key. Pair it with a Bytes or String decoder.
func Get(q Queuer, key string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "GET", key)
}

// Set queues SET key value.
func Set(q Queuer, key string, value interface{}, dec pipeline.Decoder) error {
	return enqueue(q, dec, "SET", key, value)
}

// Incr queues INCR key.
func Incr(q Queuer, key string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "INCR", key)
}

// Decr queues DECR key.
func Decr(q Queuer, key string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "DECR", key)
}

// IncrBy queues INCRBY key increment.
func IncrBy(q Queuer, key string, increment int64, dec pipeline.Decoder) error {
	return enqueue(q, dec, "INCRBY", key, increment)
}

// IncrByFloat queues INCRBYFLOAT key increment. Pair it with a Double decoder.
func IncrByFloat(q Queuer, key string, increment float64, dec pipeline.Decoder) error {
	return enqueue(q, dec, "INCRBYFLOAT", key, increment)
}

// MGet queues MGET for keys. Pair it with a MultiBytes or MultiString decoder.
func MGet(q Queuer, dec pipeline.Decoder, keys ...string) error {
	return enqueue(q, dec, "MGET", toInterfaceSlice(keys)...)
}

// MSet queues MSET over the pairs of mapping.
func MSet(q Queuer, mapping map[string]interface{}, dec pipeline.Decoder) error {
	cmdArgs := make([]interface{}, 0, 2*len(mapping))
	for k, v := range mapping {
		cmdArgs = append(cmdArgs, k, v)
	}
	return enqueue(q, dec, "MSET", cmdArgs...)
}

// StrLen queues STRLEN key.
func StrLen(q Queuer, key string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "STRLEN", key)
}
