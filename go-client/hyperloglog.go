package goredis

import (
	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

// PfAdd queues PFADD key elements...
func PfAdd(q Queuer, key string, dec pipeline.Decoder, elements ...interface{}) error {
	return enqueue(q, dec, "PFADD", append([]interface{}{key}, elements...)...)
}

// PfCount queues PFCOUNT keys...
func PfCount(q Queuer, dec pipeline.Decoder, keys ...string) error {
	return enqueue(q, dec, "PFCOUNT", toInterfaceSlice(keys)...)
}
