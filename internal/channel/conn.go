/*
author: akashmaji
email: akashmaji@iisc.ac.in
file: go-redis-batch/internal/channel/conn.go
*/
package channel

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tidwall/resp"

	"github.com/akashmaji946/go-redis-batch/internal/common"
)

// ErrConnBroken is wrapped by every operation on an invalidated Conn.
var ErrConnBroken = errors.New("channel: connection is unusable")

// ErrProtocol is wrapped by reads that find a byte stream that is not a
// RESP reply.
var ErrProtocol = errors.New("channel: protocol error")

// a deadline in the past, used to interrupt blocked I/O on cancellation
var aLongTimeAgo = time.Unix(1, 0)

// Options tunes a Conn.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BufferSize   int
	Verbose      bool
	Logger       *common.Logger
	Index        Index
}

// OptionsFromConfig maps the client config onto connection options.
func OptionsFromConfig(conf *common.Config, logger *common.Logger) Options {
	return Options{
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
		BufferSize:   conf.BufferSize,
		Verbose:      conf.Verbose,
		Logger:       logger,
	}
}

// Conn is a Channel over a net.Conn. Commands are encoded with
// tidwall/resp into a buffered writer; replies are decoded one value at a
// time in arrival order.
//
// Thread Safety:
//   - A Conn is owned by one goroutine at a time; callers serialize access
type Conn struct {
	BatchLock

	conn   net.Conn
	bw     *bufio.Writer
	br     *bufio.Reader
	rd     *resp.Reader
	ledger *Ledger
	opts   Options
	logger *common.Logger

	errMu sync.Mutex
	err   error

	// OnBeforeFlush runs before buffered commands are sent.
	OnBeforeFlush func()
}

// Dial connects to addr and wraps the connection.
func Dial(ctx context.Context, addr string, dialTimeout time.Duration, opts Options) (*Conn, error) {
	d := net.Dialer{Timeout: dialTimeout}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewConn(nc, opts), nil
}

// NewConn wraps an established connection.
func NewConn(nc net.Conn, opts Options) *Conn {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 16 * 1024
	}
	logger := opts.Logger
	if logger == nil {
		logger = common.NewLogger()
	}
	// the resp reader reads through br, so peeked bytes are still parsed
	br := bufio.NewReaderSize(nc, opts.BufferSize)
	return &Conn{
		conn:   nc,
		bw:     bufio.NewWriterSize(nc, opts.BufferSize),
		br:     br,
		rd:     resp.NewReader(br),
		ledger: NewLedger(opts.Index),
		opts:   opts,
		logger: logger,
	}
}

// Err returns the error the connection was invalidated with, if any.
func (c *Conn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *Conn) Write(cmd Command) error {
	if err := c.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnBroken, err)
	}
	if c.opts.Verbose && c.logger.DebugEnabled() {
		c.logger.Debug("S: %s", cmd)
	}
	if err := EncodeCommand(c.bw, cmd); err != nil {
		return fmt.Errorf("write %s: %w", cmd.Name, err)
	}
	common.Stats.CommandsSent.Add(1)
	return nil
}

// Buffered returns the number of bytes written but not yet flushed.
func (c *Conn) Buffered() int {
	return c.bw.Buffered()
}

func (c *Conn) Flush(ctx context.Context) error {
	if err := c.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnBroken, err)
	}
	if c.bw.Buffered() == 0 {
		return nil
	}
	if c.OnBeforeFlush != nil {
		c.OnBeforeFlush()
	}

	c.conn.SetWriteDeadline(c.deadline(ctx, c.opts.WriteTimeout))
	stop := c.watch(ctx)
	err := c.bw.Flush()
	stop()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func (c *Conn) ReadReply(ctx context.Context) (resp.Value, error) {
	if err := c.Err(); err != nil {
		return resp.Value{}, fmt.Errorf("%w: %v", ErrConnBroken, err)
	}

	c.conn.SetReadDeadline(c.deadline(ctx, c.opts.ReadTimeout))
	stop := c.watch(ctx)
	v, err := c.readValue()
	stop()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return resp.Value{}, ctxErr
		}
		return resp.Value{}, fmt.Errorf("read reply: %w", err)
	}
	if c.opts.Verbose && c.logger.DebugEnabled() {
		c.logger.Debug("R: %c %s", byte(v.Type()), v.String())
	}
	return v, nil
}

// readValue parses one reply. The resp reader also accepts inline
// commands, which a server never sends, so anything not starting with a
// reply type byte is rejected before it gets there.
func (c *Conn) readValue() (resp.Value, error) {
	b, err := c.br.Peek(1)
	if err != nil {
		return resp.Value{}, err
	}
	switch b[0] {
	case '+', '-', ':', '$', '*':
	default:
		return resp.Value{}, fmt.Errorf("%w: unexpected reply type byte %q", ErrProtocol, b[0])
	}
	v, _, err := c.rd.ReadValue()
	return v, err
}

func (c *Conn) BeginBatch() (*Guard, error) {
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnBroken, err)
	}
	return c.BatchLock.BeginBatch()
}

func (c *Conn) Ledger() *Ledger {
	return c.ledger
}

// Invalidate records err and closes the socket; the byte stream can no
// longer be trusted.
func (c *Conn) Invalidate(err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err != nil {
		return
	}
	c.err = err
	c.logger.Error("connection to %s invalidated: %v", c.conn.RemoteAddr(), err)
	c.conn.Close()
}

// Do sends one command and waits for its reply. It is not allowed while a
// pipeline or transaction is open on the connection.
func (c *Conn) Do(ctx context.Context, cmd Command) (resp.Value, error) {
	if c.Batching() {
		return resp.Value{}, &AlreadyBatchingError{}
	}
	if err := c.Write(cmd); err != nil {
		return resp.Value{}, err
	}
	if err := c.Flush(ctx); err != nil {
		c.Invalidate(err)
		return resp.Value{}, err
	}
	v, err := c.ReadReply(ctx)
	if err != nil {
		c.Invalidate(err)
		return resp.Value{}, err
	}
	return v, nil
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		c.err = net.ErrClosed
	}
	return c.conn.Close()
}

func (c *Conn) deadline(ctx context.Context, timeout time.Duration) time.Time {
	var t time.Time
	if timeout > 0 {
		t = time.Now().Add(timeout)
	}
	if d, ok := ctx.Deadline(); ok && (t.IsZero() || d.Before(t)) {
		t = d
	}
	return t
}

// watch interrupts blocked I/O when ctx is cancelled. The returned func
// waits for the watcher to exit.
func (c *Conn) watch(ctx context.Context) func() {
	if ctx.Done() == nil {
		return func() {}
	}
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			c.conn.SetDeadline(aLongTimeAgo)
		case <-done:
		}
	}()
	return func() {
		close(done)
		<-exited
	}
}
