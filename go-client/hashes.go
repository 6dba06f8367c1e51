package goredis

import (
	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

// HSet queues HSET key field value [field value ...].
func HSet(q Queuer, key, field string, value interface{}, dec pipeline.Decoder, extra ...interface{}) error {
	return enqueue(q, dec, "HSET", append([]interface{}{key, field, value}, extra...)...)
}

// HGet queues HGET key field.
func HGet(q Queuer, key, field string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "HGET", key, field)
}

// HDel queues HDEL key fields...
func HDel(q Queuer, key string, dec pipeline.Decoder, fields ...string) error {
	return enqueue(q, dec, "HDEL", append([]interface{}{key}, toInterfaceSlice(fields)...)...)
}

// HGetAll queues HGETALL key. The reply alternates fields and values; pair
// it with a MultiString decoder.
func HGetAll(q Queuer, key string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "HGETALL", key)
}

// HIncrBy queues HINCRBY key field increment.
func HIncrBy(q Queuer, key, field string, increment int64, dec pipeline.Decoder) error {
	return enqueue(q, dec, "HINCRBY", key, field, increment)
}

// HLen queues HLEN key.
func HLen(q Queuer, key string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "HLEN", key)
}

// HMGet queues HMGET key fields...
func HMGet(q Queuer, key string, dec pipeline.Decoder, fields ...string) error {
	return enqueue(q, dec, "HMGET", append([]interface{}{key}, toInterfaceSlice(fields)...)...)
}
