package goredis

import (
	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

func ZAdd(q Queuer, key string, dec pipeline.Decoder, scoreMembers ...interface{}) error {
	return enqueue(q, dec, "ZADD", append([]interface{}{key}, scoreMembers...)...)
}

func ZRem(q Queuer, key string, dec pipeline.Decoder, members ...interface{}) error {
	return enqueue(q, dec, "ZREM", append([]interface{}{key}, members...)...)
}

// ZScore replies with a bulk holding the score, or null; pair it with a
// Double decoder.
func ZScore(q Queuer, key string, member interface{}, dec pipeline.Decoder) error {
	return enqueue(q, dec, "ZSCORE", key, member)
}

func ZCard(q Queuer, key string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "ZCARD", key)
}

func ZRange(q Queuer, key string, start, stop int, withScores bool, dec pipeline.Decoder) error {
	cmdArgs := []interface{}{key, start, stop}
	if withScores {
		cmdArgs = append(cmdArgs, "WITHSCORES")
	}
	return enqueue(q, dec, "ZRANGE", cmdArgs...)
}
