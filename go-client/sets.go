package goredis

import (
	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

// SAdd queues SADD key members...
func SAdd(q Queuer, key string, dec pipeline.Decoder, members ...interface{}) error {
	return enqueue(q, dec, "SADD", append([]interface{}{key}, members...)...)
}

// SRem queues SREM key members...
func SRem(q Queuer, key string, dec pipeline.Decoder, members ...interface{}) error {
	return enqueue(q, dec, "SREM", append([]interface{}{key}, members...)...)
}

// SMembers queues SMEMBERS key. Pair it with a MultiString decoder.
func SMembers(q Queuer, key string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "SMEMBERS", key)
}

// SIsMember queues SISMEMBER key member.
func SIsMember(q Queuer, key string, member interface{}, dec pipeline.Decoder) error {
	return enqueue(q, dec, "SISMEMBER", key, member)
}

// SCard queues SCARD key.
func SCard(q Queuer, key string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "SCARD", key)
}

// SInter queues SINTER keys...
func SInter(q Queuer, dec pipeline.Decoder, keys ...string) error {
	return enqueue(q, dec, "SINTER", toInterfaceSlice(keys)...)
}

// SUnion queues SUNION keys...
func SUnion(q Queuer, dec pipeline.Decoder, keys ...string) error {
	return enqueue(q, dec, "SUNION", toInterfaceSlice(keys)...)
}
