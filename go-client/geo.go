package goredis

import (
	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

// GeoAdd queues GEOADD key longitude latitude member [...].
func GeoAdd(q Queuer, key string, dec pipeline.Decoder, items ...interface{}) error {
	return enqueue(q, dec, "GEOADD", append([]interface{}{key}, items...)...)
}

// GeoDist queues GEODIST key member1 member2 [unit]. Pair it with a Double
// decoder; a missing member decodes to NaN.
func GeoDist(q Queuer, key, member1, member2 string, dec pipeline.Decoder, unit ...string) error {
	cmdArgs := []interface{}{key, member1, member2}
	if len(unit) > 0 {
		cmdArgs = append(cmdArgs, unit[0])
	}
	return enqueue(q, dec, "GEODIST", cmdArgs...)
}

// GeoHash queues GEOHASH key members...
func GeoHash(q Queuer, key string, dec pipeline.Decoder, members ...string) error {
	return enqueue(q, dec, "GEOHASH", append([]interface{}{key}, toInterfaceSlice(members)...)...)
}
