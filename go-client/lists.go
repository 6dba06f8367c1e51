package goredis

import (
	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

func LPush(q Queuer, key string, dec pipeline.Decoder, values ...interface{}) error {
	return enqueue(q, dec, "LPUSH", append([]interface{}{key}, values...)...)
}

func RPush(q Queuer, key string, dec pipeline.Decoder, values ...interface{}) error {
	return enqueue(q, dec, "RPUSH", append([]interface{}{key}, values...)...)
}

func LPop(q Queuer, key string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "LPOP", key)
}

func RPop(q Queuer, key string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "RPOP", key)
}

func LRange(q Queuer, key string, start, stop int, dec pipeline.Decoder) error {
	return enqueue(q, dec, "LRANGE", key, start, stop)
}

func LLen(q Queuer, key string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "LLEN", key)
}

func LIndex(q Queuer, key string, index int, dec pipeline.Decoder) error {
	return enqueue(q, dec, "LINDEX", key, index)
}
