package goredis

import (
	"context"
	"fmt"
	"sort"

	"github.com/akashmaji946/go-redis-batch/internal/channel"
	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

// SetIndex keeps the type-id sets on the server. A ledger snapshot is
// written as SADD and SREM commands inside one MULTI/EXEC, so either every
// set is updated or none is.
type SetIndex struct {
	client *GoRedisClient
}

// NewSetIndex returns an index writing through c.
func NewSetIndex(c *GoRedisClient) *SetIndex {
	return &SetIndex{client: c}
}

// UseSetIndex makes the connection's ledger apply into the server-side sets.
func (c *GoRedisClient) UseSetIndex() *SetIndex {
	idx := NewSetIndex(c)
	c.conn.Ledger().SetIndex(idx)
	return idx
}

var _ channel.Index = (*SetIndex)(nil)

// Apply writes one SADD and one SREM per set inside a single MULTI/EXEC.
func (s *SetIndex) Apply(added, removed map[string][]string) error {
	ok, err := s.client.Atomically(func(q Queuer) error {
		for _, key := range sortedKeys(added) {
			if err := SAdd(q, key, pipeline.Long(nil, nil), toInterfaceSlice(added[key])...); err != nil {
				return err
			}
		}
		for _, key := range sortedKeys(removed) {
			if err := SRem(q, key, pipeline.Long(nil, nil), toInterfaceSlice(removed[key])...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("index: apply: %w", err)
	}
	if !ok {
		return fmt.Errorf("index: apply: transaction not executed")
	}
	return nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k, ids := range m {
		if len(ids) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Members returns the ids stored at setKey, sorted.
func (s *SetIndex) Members(ctx context.Context, setKey string) ([]string, error) {
	reply, err := s.client.SendCommand(ctx, "SMEMBERS", setKey)
	if err != nil {
		return nil, err
	}
	items, _ := reply.([]interface{})
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, fmt.Sprint(item))
	}
	sort.Strings(ids)
	return ids, nil
}
