package goredis

import (
	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

// Del queues DEL for one or more keys.
func Del(q Queuer, dec pipeline.Decoder, keys ...string) error {
	return enqueue(q, dec, "DEL", toInterfaceSlice(keys)...)
}

// Exists queues EXISTS for one or more keys.
func Exists(q Queuer, dec pipeline.Decoder, keys ...string) error {
	return enqueue(q, dec, "EXISTS", toInterfaceSlice(keys)...)
}

// Keys queues KEYS pattern.
func Keys(q Queuer, pattern string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "KEYS", pattern)
}

// Rename queues RENAME key newkey.
func Rename(q Queuer, key, newkey string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "RENAME", key, newkey)
}

// Type queues TYPE key.
func Type(q Queuer, key string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "TYPE", key)
}

// Expire queues EXPIRE key seconds.
func Expire(q Queuer, key string, seconds int, dec pipeline.Decoder) error {
	return enqueue(q, dec, "EXPIRE", key, seconds)
}

// Ttl queues TTL key.
func Ttl(q Queuer, key string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "TTL", key)
}

// Persist queues PERSIST key.
func Persist(q Queuer, key string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "PERSIST", key)
}
