package pipeline

import (
	"context"
	"errors"

	"github.com/akashmaji946/go-redis-batch/internal/channel"
	"github.com/akashmaji946/go-redis-batch/internal/common"
)

// Pipeline writes commands as they are enqueued and reads all of their
// replies at one flush point, in submission order.
//
// A Pipeline is single use and not safe for concurrent use. Close must be
// called on every path; it is a no-op after a successful Flush.
type Pipeline struct {
	*batch

	// set while an async flush is running
	inflight *Future[struct{}]
}

// OpenPipeline takes the channel's batch lock and returns a pipeline fixed
// to mode. It fails with *AlreadyBatchingError if the channel already has
// an open pipeline or transaction.
func OpenPipeline(ch channel.Channel, mode Mode) (*Pipeline, error) {
	b, err := openBatch(ch, mode, "pipeline")
	if err != nil {
		return nil, err
	}
	return &Pipeline{batch: b}, nil
}

// Enqueue writes cmd to the channel buffer and queues dec to decode its
// reply. A decoder of the other mode is rejected with *ModeMismatchError
// before anything is written. Write errors are returned as is.
func (p *Pipeline) Enqueue(cmd channel.Command, dec Decoder) error {
	return p.enqueue(cmd, dec)
}

// Flush sends the buffered commands and decodes every reply, invoking the
// callbacks in submission order. Only a *StreamCorruptionError stops the
// loop early; decode failures without an error callback are joined into the
// returned error.
func (p *Pipeline) Flush() error {
	if err := p.checkMode(Sync, "Flush"); err != nil {
		return err
	}
	if p.closed {
		return ErrEngineClosed
	}
	p.closed = true
	return p.flush(context.Background())
}

// FlushAsync runs the flush on its own goroutine. Every operation's Future
// completes before the returned Future does.
func (p *Pipeline) FlushAsync(ctx context.Context) *Future[struct{}] {
	if err := p.checkMode(Async, "FlushAsync"); err != nil {
		return completedFuture(struct{}{}, err)
	}
	if p.closed {
		return completedFuture(struct{}{}, ErrEngineClosed)
	}
	p.closed = true

	f := newFuture[struct{}]()
	p.inflight = f
	go func() {
		f.complete(struct{}{}, p.flush(ctx))
	}()
	return f
}

func (p *Pipeline) flush(ctx context.Context) error {
	defer func() {
		if r := recover(); r != nil {
			p.abandon(r)
		}
	}()
	if err := p.ch.Flush(ctx); err != nil {
		sc := &StreamCorruptionError{Index: -1, Err: err}
		p.corrupt(sc)
		failAll(p.ops, sc)
		p.release(false)
		return sc
	}

	unhandled, fatal := dispatch(ctx, channelSource{ch: p.ch}, p.ops)
	if fatal != nil {
		p.corrupt(fatal)
		p.release(false)
		p.log.Error("pipeline aborted after %d replies: %v", len(p.ops), fatal)
		return fatal
	}

	common.Stats.PipelinesFlushed.Add(1)
	p.log.Debug("flushed %d operations", len(p.ops))
	if err := p.release(true); err != nil {
		unhandled = append(unhandled, err)
	}
	return errors.Join(unhandled...)
}

// Close releases the batch lock. Operations that were queued but never
// flushed have their replies drained and are failed with ErrDiscarded, so
// the connection stays usable. Close waits for a running FlushAsync and is
// idempotent.
func (p *Pipeline) Close() error {
	if p.inflight != nil {
		<-p.inflight.Done()
	}
	var err error
	if !p.closed {
		p.closed = true
		if len(p.ops) > 0 {
			err = p.drain(context.Background(), len(p.ops))
			failAll(p.ops, ErrDiscarded)
			p.log.Debug("closed with %d unflushed operations", len(p.ops))
		}
	}
	p.release(false)
	return err
}
