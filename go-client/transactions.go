package goredis

import (
	"context"

	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

// Watch watches the given keys for modifications. A later transaction on
// this connection commits only if none of them changed.
func (c *GoRedisClient) Watch(ctx context.Context, keys ...string) (interface{}, error) {
	return c.SendCommand(ctx, append([]interface{}{"WATCH"}, toInterfaceSlice(keys)...)...)
}

// Unwatch flushes all the watched keys.
func (c *GoRedisClient) Unwatch(ctx context.Context) (interface{}, error) {
	return c.SendCommand(ctx, "UNWATCH")
}

// Atomically runs fn inside a sync transaction and commits it. fn queues
// commands on the transaction; if it returns an error the transaction is
// rolled back and the error returned.
func (c *GoRedisClient) Atomically(fn func(q Queuer) error) (bool, error) {
	tx, err := c.Transaction(pipeline.Sync)
	if err != nil {
		return false, err
	}
	defer tx.Close()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return false, err
	}
	return tx.Commit()
}

// Pipelined runs fn inside a sync pipeline and flushes it.
func (c *GoRedisClient) Pipelined(fn func(q Queuer) error) error {
	p, err := c.Pipeline(pipeline.Sync)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := fn(p); err != nil {
		return err
	}
	return p.Flush()
}
