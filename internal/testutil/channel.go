// Package testutil provides a scripted channel.Channel for engine tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/tidwall/resp"

	"github.com/akashmaji946/go-redis-batch/internal/channel"
)

// ScriptedChannel is an in-memory channel.Channel. Replies are served from
// a fixed script in order; writes and flushes are recorded.
type ScriptedChannel struct {
	channel.BatchLock

	mu          sync.Mutex
	ledger      *channel.Ledger
	replies     []resp.Value
	pos         int
	writes      []channel.Command
	flushes     int
	invalidated error

	// WriteErr, if set, is returned by every Write.
	WriteErr error
	// FlushErr, if set, is returned by every Flush.
	FlushErr error
	// ReadErrAt makes the read of that reply index (0-based) fail; -1 disables.
	ReadErrAt int
	// BlockReads makes ReadReply wait for the context before reading.
	BlockReads bool
}

// NewScriptedChannel returns a channel that will answer with replies.
func NewScriptedChannel(replies ...resp.Value) *ScriptedChannel {
	return &ScriptedChannel{
		ledger:    channel.NewLedger(nil),
		replies:   replies,
		ReadErrAt: -1,
	}
}

// AddReplies appends more scripted replies.
func (c *ScriptedChannel) AddReplies(replies ...resp.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, replies...)
}

func (c *ScriptedChannel) Write(cmd channel.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.writes = append(c.writes, cmd)
	return nil
}

func (c *ScriptedChannel) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FlushErr != nil {
		return c.FlushErr
	}
	c.flushes++
	return nil
}

func (c *ScriptedChannel) ReadReply(ctx context.Context) (resp.Value, error) {
	if c.BlockReads {
		<-ctx.Done()
		return resp.Value{}, ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.invalidated != nil {
		return resp.Value{}, fmt.Errorf("read on invalidated channel: %w", c.invalidated)
	}
	if c.pos == c.ReadErrAt {
		c.pos++
		return resp.Value{}, errors.New("protocol error: bad length")
	}
	if c.pos >= len(c.replies) {
		return resp.Value{}, io.ErrUnexpectedEOF
	}
	v := c.replies[c.pos]
	c.pos++
	return v, nil
}

func (c *ScriptedChannel) Ledger() *channel.Ledger {
	return c.ledger
}

func (c *ScriptedChannel) Invalidate(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.invalidated == nil {
		c.invalidated = err
	}
}

// Invalidated returns the error the channel was invalidated with.
func (c *ScriptedChannel) Invalidated() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

// Writes returns the commands written so far.
func (c *ScriptedChannel) Writes() []channel.Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]channel.Command, len(c.writes))
	copy(out, c.writes)
	return out
}

// WrittenNames returns the names of the commands written so far.
func (c *ScriptedChannel) WrittenNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, len(c.writes))
	for i, w := range c.writes {
		names[i] = w.Name
	}
	return names
}

// Flushes returns how many times Flush succeeded.
func (c *ScriptedChannel) Flushes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushes
}

// Consumed returns how many replies were read.
func (c *ScriptedChannel) Consumed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

// Reply helpers

func OK() resp.Value            { return resp.SimpleStringValue("OK") }
func Queued() resp.Value        { return resp.SimpleStringValue("QUEUED") }
func Int(n int) resp.Value      { return resp.IntegerValue(n) }
func Bulk(s string) resp.Value  { return resp.StringValue(s) }
func Null() resp.Value          { return resp.NullValue() }
func Err(msg string) resp.Value { return resp.ErrorValue(errors.New(msg)) }

// Array builds a multi-bulk reply.
func Array(items ...resp.Value) resp.Value { return resp.ArrayValue(items) }

// Bulks builds a multi-bulk reply of bulk strings.
func Bulks(items ...string) resp.Value {
	vals := make([]resp.Value, len(items))
	for i, s := range items {
		vals[i] = resp.StringValue(s)
	}
	return resp.ArrayValue(vals)
}
