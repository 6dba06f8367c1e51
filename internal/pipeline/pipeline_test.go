package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashmaji946/go-redis-batch/internal/channel"
	"github.com/akashmaji946/go-redis-batch/internal/common"
	tu "github.com/akashmaji946/go-redis-batch/internal/testutil"
)

func init() {
	SetLogger(common.NopLogger())
}

func TestPipeline_DecodesRepliesInOrder(t *testing.T) {
	ch := tu.NewScriptedChannel(tu.Int(1), tu.Bulk("hello"), tu.Bulks("a", "b", "c"))

	p, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)
	defer p.Close()

	var (
		counter int64
		value   string
		items   []string
		order   []int
	)
	require.NoError(t, p.Enqueue(channel.NewCommand("INCR", "counter"), Long(func(n int64) {
		counter = n
		order = append(order, 0)
	}, nil)))
	require.NoError(t, p.Enqueue(channel.NewCommand("GET", "greeting"), String(func(s string) {
		value = s
		order = append(order, 1)
	}, nil)))
	require.NoError(t, p.Enqueue(channel.NewCommand("LRANGE", "letters", 0, -1), MultiString(func(s []string) {
		items = s
		order = append(order, 2)
	}, nil)))

	// nothing is read before the flush
	assert.Equal(t, 0, ch.Consumed())
	assert.Equal(t, 0, ch.Flushes())

	require.NoError(t, p.Flush())

	assert.Equal(t, int64(1), counter)
	assert.Equal(t, "hello", value)
	assert.Equal(t, []string{"a", "b", "c"}, items)
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Equal(t, []string{"INCR", "GET", "LRANGE"}, ch.WrittenNames())
	assert.Equal(t, 1, ch.Flushes())
	assert.Equal(t, 3, ch.Consumed())

	for i, op := range p.Operations() {
		assert.Equal(t, i, op.Index())
		assert.True(t, op.Issued())
		assert.True(t, op.Consumed())
	}
}

func TestPipeline_InterleavedShapes(t *testing.T) {
	ch := tu.NewScriptedChannel(
		tu.OK(),
		tu.Bulk("3.5"),
		tu.Int(7),
		tu.Bulk("raw"),
		tu.Bulks("x", "y"),
		tu.Null(),
	)
	p, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)
	defer p.Close()

	var got []interface{}
	record := func(v interface{}) { got = append(got, v) }

	require.NoError(t, p.Enqueue(channel.NewCommand("SET", "k", "v"), None(func() { record("none") }, nil)))
	require.NoError(t, p.Enqueue(channel.NewCommand("INCRBYFLOAT", "f", 1.5), Double(func(f float64) { record(f) }, nil)))
	require.NoError(t, p.Enqueue(channel.NewCommand("STRLEN", "k"), Int(func(n int) { record(n) }, nil)))
	require.NoError(t, p.Enqueue(channel.NewCommand("GET", "k"), Bytes(func(b []byte) { record(string(b)) }, nil)))
	require.NoError(t, p.Enqueue(channel.NewCommand("SMEMBERS", "s"), MultiBytes(func(b [][]byte) { record(len(b)) }, nil)))
	require.NoError(t, p.Enqueue(channel.NewCommand("GET", "missing"), Bytes(func(b []byte) { record(b == nil) }, nil)))

	require.NoError(t, p.Flush())
	assert.Equal(t, []interface{}{"none", 3.5, 7, "raw", 2, true}, got)
}

func TestPipeline_ModeMismatchWritesNothing(t *testing.T) {
	ch := tu.NewScriptedChannel()

	p, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)
	defer p.Close()

	dec, _ := LongAsync()
	err = p.Enqueue(channel.NewCommand("INCR", "counter"), dec)
	require.Error(t, err)
	assert.True(t, IsModeMismatch(err))

	var mm *ModeMismatchError
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, Sync, mm.Engine)
	assert.Equal(t, Async, mm.Got)

	assert.Empty(t, ch.Writes())
	assert.Equal(t, 0, p.Len())

	fut := p.FlushAsync(context.Background())
	_, err = fut.Await(context.Background())
	assert.True(t, IsModeMismatch(err))
	assert.Equal(t, 0, ch.Flushes())
}

func TestPipeline_AsyncRejectsSyncFlush(t *testing.T) {
	ch := tu.NewScriptedChannel()
	p, err := OpenPipeline(ch, Async)
	require.NoError(t, err)
	defer p.Close()

	err = p.Enqueue(channel.NewCommand("PING"), None(nil, nil))
	assert.True(t, IsModeMismatch(err))
	assert.True(t, IsModeMismatch(p.Flush()))
	assert.Empty(t, ch.Writes())
}

func TestPipeline_InvalidMode(t *testing.T) {
	ch := tu.NewScriptedChannel()
	_, err := OpenPipeline(ch, Mode(0))
	assert.True(t, IsModeMismatch(err))
	assert.False(t, ch.Batching())
}

func TestPipeline_OneBatchPerChannel(t *testing.T) {
	ch := tu.NewScriptedChannel()

	p, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)

	_, err = OpenPipeline(ch, Sync)
	require.Error(t, err)
	assert.True(t, IsAlreadyBatching(err))

	_, err = OpenTransaction(ch, Sync)
	assert.True(t, IsAlreadyBatching(err))

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.False(t, ch.Batching())

	// a second Close must not release a lock now owned by someone else
	p2, err := OpenPipeline(ch, Async)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.True(t, ch.Batching())
	require.NoError(t, p2.Close())

	p3, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)
	require.NoError(t, p3.Close())
}

func TestPipeline_SingleUse(t *testing.T) {
	ch := tu.NewScriptedChannel(tu.OK())
	p, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Enqueue(channel.NewCommand("SET", "a", 1), None(nil, nil)))
	require.NoError(t, p.Flush())

	assert.ErrorIs(t, p.Flush(), ErrEngineClosed)
	assert.ErrorIs(t, p.Enqueue(channel.NewCommand("GET", "a"), String(nil, nil)), ErrEngineClosed)
	assert.False(t, ch.Batching())
}

func TestPipeline_EmptyFlush(t *testing.T) {
	ch := tu.NewScriptedChannel()
	p, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)

	require.NoError(t, p.Flush())
	assert.Equal(t, 0, ch.Consumed())
	assert.False(t, ch.Batching())
	require.NoError(t, p.Close())
}

func TestPipeline_ReplyErrorStaysWithItsOperation(t *testing.T) {
	ch := tu.NewScriptedChannel(
		tu.Err("WRONGTYPE Operation against a key holding the wrong kind of value"),
		tu.Int(2),
	)
	p, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)
	defer p.Close()

	var (
		firstErr error
		second   int64
	)
	require.NoError(t, p.Enqueue(channel.NewCommand("INCR", "list"), Long(nil, func(err error) { firstErr = err })))
	require.NoError(t, p.Enqueue(channel.NewCommand("INCR", "n"), Long(func(n int64) { second = n }, nil)))

	require.NoError(t, p.Flush())

	var re *ReplyError
	require.ErrorAs(t, firstErr, &re)
	assert.Contains(t, re.Message, "WRONGTYPE")
	assert.Equal(t, int64(2), second)
	assert.Nil(t, ch.Invalidated())
}

func TestPipeline_UnhandledDecodeErrorsAreJoined(t *testing.T) {
	ch := tu.NewScriptedChannel(tu.Bulks("a"), tu.Bulk("not-a-number"), tu.Int(3))
	p, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)
	defer p.Close()

	var third int
	require.NoError(t, p.Enqueue(channel.NewCommand("LRANGE", "l", 0, -1), Long(nil, nil)))
	require.NoError(t, p.Enqueue(channel.NewCommand("GET", "s"), Long(nil, nil)))
	require.NoError(t, p.Enqueue(channel.NewCommand("INCR", "n"), Int(func(n int) { third = n }, nil)))

	err = p.Flush()
	require.Error(t, err)

	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ShapeLong, se.Want)
	assert.False(t, IsStreamCorruption(err))
	assert.Equal(t, 3, third)
	assert.Equal(t, 3, ch.Consumed())
}

func TestPipeline_StreamCorruptionFailsRemaining(t *testing.T) {
	ch := tu.NewScriptedChannel(tu.Int(1), tu.Int(2), tu.Int(3))
	ch.ReadErrAt = 1

	p, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)
	defer p.Close()

	var (
		first int64
		errs  = make([]error, 3)
	)
	require.NoError(t, p.Enqueue(channel.NewCommand("INCR", "a"), Long(func(n int64) { first = n }, func(err error) { errs[0] = err })))
	require.NoError(t, p.Enqueue(channel.NewCommand("INCR", "b"), Long(nil, func(err error) { errs[1] = err })))
	require.NoError(t, p.Enqueue(channel.NewCommand("INCR", "c"), Long(nil, func(err error) { errs[2] = err })))

	err = p.Flush()
	require.Error(t, err)
	assert.True(t, IsStreamCorruption(err))

	var sc *StreamCorruptionError
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, 1, sc.Index)

	assert.Equal(t, int64(1), first)
	assert.NoError(t, errs[0])
	assert.True(t, IsStreamCorruption(errs[1]))
	assert.True(t, IsStreamCorruption(errs[2]))

	assert.Error(t, ch.Invalidated())
	assert.False(t, ch.Batching())
	for _, op := range p.Operations() {
		assert.True(t, op.Consumed())
	}
}

func TestPipeline_FlushFailureInvalidates(t *testing.T) {
	ch := tu.NewScriptedChannel(tu.OK())
	ch.FlushErr = errors.New("broken pipe")

	p, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)
	defer p.Close()

	var opErr error
	require.NoError(t, p.Enqueue(channel.NewCommand("SET", "a", "b"), None(nil, func(err error) { opErr = err })))

	err = p.Flush()
	var sc *StreamCorruptionError
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, -1, sc.Index)
	assert.True(t, IsStreamCorruption(opErr))
	assert.Error(t, ch.Invalidated())
}

func TestPipeline_WriteErrorQueuesNothing(t *testing.T) {
	ch := tu.NewScriptedChannel()
	ch.WriteErr = errors.New("channel: connection is broken")

	p, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)
	defer p.Close()

	err = p.Enqueue(channel.NewCommand("GET", "a"), String(nil, nil))
	assert.EqualError(t, err, "channel: connection is broken")
	assert.Equal(t, 0, p.Len())
}

func TestPipeline_CloseDrainsUnflushed(t *testing.T) {
	ch := tu.NewScriptedChannel(tu.OK(), tu.Int(5))
	p, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)

	var errs []error
	onErr := func(err error) { errs = append(errs, err) }
	require.NoError(t, p.Enqueue(channel.NewCommand("SET", "a", 1), None(nil, onErr)))
	require.NoError(t, p.Enqueue(channel.NewCommand("INCR", "a"), Long(nil, onErr)))

	require.NoError(t, p.Close())
	assert.Equal(t, 2, ch.Consumed())
	require.Len(t, errs, 2)
	for _, e := range errs {
		assert.ErrorIs(t, e, ErrDiscarded)
	}
	assert.False(t, ch.Batching())
	assert.Nil(t, ch.Invalidated())
}

func TestPipeline_LedgerAppliedOnSuccess(t *testing.T) {
	ch := tu.NewScriptedChannel(tu.OK())
	index := ch.Ledger().Index().(*channel.MemoryIndex)

	p, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Enqueue(channel.NewCommand("SET", "urn:User:1", "{}"), None(nil, nil)))
	require.NoError(t, ch.Ledger().Register("ids:User", "1"))
	assert.Empty(t, index.Members("ids:User"))

	require.NoError(t, p.Flush())
	assert.Equal(t, []string{"1"}, index.Members("ids:User"))
	assert.Equal(t, 0, ch.Ledger().Len())
}

func TestPipeline_LedgerDiscardedOnCorruption(t *testing.T) {
	ch := tu.NewScriptedChannel()
	index := ch.Ledger().Index().(*channel.MemoryIndex)

	p, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Enqueue(channel.NewCommand("SET", "urn:User:1", "{}"), None(nil, nil)))
	require.NoError(t, ch.Ledger().Register("ids:User", "1"))

	assert.True(t, IsStreamCorruption(p.Flush()))
	assert.Empty(t, index.Members("ids:User"))
	assert.Equal(t, 0, ch.Ledger().Len())
}

func TestPipeline_FlushAsync(t *testing.T) {
	ch := tu.NewScriptedChannel(tu.Int(1), tu.Bulk("hello"), tu.Bulks("a", "b", "c"))
	p, err := OpenPipeline(ch, Async)
	require.NoError(t, err)
	defer p.Close()

	d1, counter := LongAsync()
	d2, value := StringAsync()
	d3, items := MultiStringAsync()
	require.NoError(t, p.Enqueue(channel.NewCommand("INCR", "counter"), d1))
	require.NoError(t, p.Enqueue(channel.NewCommand("GET", "greeting"), d2))
	require.NoError(t, p.Enqueue(channel.NewCommand("LRANGE", "letters", 0, -1), d3))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = p.FlushAsync(ctx).Await(ctx)
	require.NoError(t, err)

	n, err := counter.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	s, err := value.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	l, err := items.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, l)

	_, err = p.FlushAsync(ctx).Await(ctx)
	assert.ErrorIs(t, err, ErrEngineClosed)
}

func TestPipeline_FlushAsyncCancelled(t *testing.T) {
	ch := tu.NewScriptedChannel()
	ch.BlockReads = true

	p, err := OpenPipeline(ch, Async)
	require.NoError(t, err)

	dec, fut := BytesAsync()
	require.NoError(t, p.Enqueue(channel.NewCommand("BLPOP", "q", 0), dec))

	ctx, cancel := context.WithCancel(context.Background())
	done := p.FlushAsync(ctx)
	cancel()

	wait, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()

	_, err = done.Await(wait)
	require.Error(t, err)
	assert.True(t, IsStreamCorruption(err))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = fut.Await(wait)
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, p.Close())
	assert.Error(t, ch.Invalidated())
	assert.False(t, ch.Batching())
}

func TestPipeline_Objects(t *testing.T) {
	type user struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	ch := tu.NewScriptedChannel(
		tu.Bulk(`{"name":"ada","age":36}`),
		tu.Bulks(`{"name":"bob","age":1}`, `{"name":"cy","age":2}`),
	)
	p, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)
	defer p.Close()

	var (
		one  user
		many []user
	)
	require.NoError(t, p.Enqueue(channel.NewCommand("GET", "urn:user:1"), Object(func(u user) { one = u }, nil)))
	require.NoError(t, p.Enqueue(channel.NewCommand("MGET", "urn:user:2", "urn:user:3"), Objects(func(u []user) { many = u }, nil)))
	require.NoError(t, p.Flush())

	assert.Equal(t, user{Name: "ada", Age: 36}, one)
	assert.Equal(t, []user{{Name: "bob", Age: 1}, {Name: "cy", Age: 2}}, many)
}

func TestPipeline_PanickingCallbackInvalidates(t *testing.T) {
	ch := tu.NewScriptedChannel(tu.Int(1), tu.Int(2), tu.Int(99))

	p, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)

	var secondErr error
	require.NoError(t, p.Enqueue(channel.NewCommand("INCR", "a"), Long(func(int64) {
		panic("boom")
	}, nil)))
	require.NoError(t, p.Enqueue(channel.NewCommand("INCR", "b"), Long(nil, func(err error) {
		secondErr = err
	})))
	require.NoError(t, ch.Ledger().Register("ids:User", "1"))

	assert.PanicsWithValue(t, "boom", func() { p.Flush() })
	assert.Equal(t, 1, ch.Consumed())
	assert.Error(t, ch.Invalidated())
	assert.True(t, IsStreamCorruption(secondErr))
	assert.False(t, ch.Batching())
	assert.Equal(t, 0, ch.Ledger().Len())
	assert.NoError(t, p.Close())

	// the leftover replies are never handed to the next batch
	p2, err := OpenPipeline(ch, Sync)
	require.NoError(t, err)
	defer p2.Close()
	var got int64
	require.NoError(t, p2.Enqueue(channel.NewCommand("GET", "c"), Long(func(n int64) { got = n }, nil)))
	assert.True(t, IsStreamCorruption(p2.Flush()))
	assert.Zero(t, got)
}
