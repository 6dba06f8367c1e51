package script

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/akashmaji946/go-redis-batch/internal/channel"
	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

// Reply is the outcome of one step, rendered the way redis-cli prints it.
type Reply struct {
	Command string
	Text    string
	Err     error
}

// Result holds the replies of a run in command order.
type Result struct {
	Transaction bool
	// Committed is meaningful only for transactions.
	Committed bool
	Replies   []Reply
}

// String renders the result as numbered redis-cli style lines.
func (r *Result) String() string {
	var sb strings.Builder
	for i, reply := range r.Replies {
		prefix := fmt.Sprintf("%d) ", i+1)
		text := reply.Text
		if reply.Err != nil {
			text = "(error) " + errorText(reply.Err)
		}
		indent := strings.Repeat(" ", len(prefix))
		sb.WriteString(prefix)
		sb.WriteString(strings.ReplaceAll(text, "\n", "\n"+indent))
		sb.WriteByte('\n')
	}
	if r.Transaction {
		if r.Committed {
			sb.WriteString("(transaction committed)\n")
		} else {
			sb.WriteString("(transaction not executed)\n")
		}
	}
	return sb.String()
}

// errorText prints server errors as the server sent them.
func errorText(err error) string {
	var re *pipeline.ReplyError
	if errors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}

// batch is what the runner needs from a pipeline or transaction.
type batch interface {
	Enqueue(cmd channel.Command, dec pipeline.Decoder) error
	Close() error
}

// Run sends the script over ch in the given mode and collects every reply.
// The returned error is a batch-level failure: a broken stream or a call
// the engine refused. Per-command errors are reported in their Reply.
func Run(ctx context.Context, ch channel.Channel, s *Script, mode pipeline.Mode) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	res := &Result{Transaction: s.Transaction, Replies: make([]Reply, len(s.Commands))}

	var (
		b    batch
		p    *pipeline.Pipeline
		tx   *pipeline.Transaction
		err  error
		wait []func(context.Context)
	)
	if s.Transaction {
		tx, err = pipeline.OpenTransaction(ch, mode)
		b = tx
	} else {
		p, err = pipeline.OpenPipeline(ch, mode)
		b = p
	}
	if err != nil {
		return nil, err
	}
	defer b.Close()

	for i, step := range s.Commands {
		args := make([]interface{}, len(step.Args)-1)
		for j, a := range step.Args[1:] {
			args[j] = a
		}
		cmd := channel.NewCommand(strings.ToUpper(step.Args[0]), args...)
		res.Replies[i].Command = cmd.String()

		var dec pipeline.Decoder
		if mode == pipeline.Async {
			var w func(context.Context)
			dec, w = asyncDecoder(step.Shape(), &res.Replies[i])
			wait = append(wait, w)
		} else {
			dec = syncDecoder(step.Shape(), &res.Replies[i])
		}
		if err := b.Enqueue(cmd, dec); err != nil {
			return nil, fmt.Errorf("commands[%d]: %w", i, err)
		}
	}

	switch {
	case tx != nil && mode == pipeline.Async:
		res.Committed, err = tx.CommitAsync(ctx).Await(ctx)
	case tx != nil:
		res.Committed, err = tx.Commit()
	case mode == pipeline.Async:
		_, err = p.FlushAsync(ctx).Await(ctx)
	default:
		err = p.Flush()
	}
	for _, w := range wait {
		w(ctx)
	}
	return res, err
}

func syncDecoder(shape pipeline.Shape, out *Reply) pipeline.Decoder {
	onError := func(err error) { out.Err = err }
	switch shape {
	case pipeline.ShapeNone:
		return pipeline.None(func() { out.Text = "OK" }, onError)
	case pipeline.ShapeInt:
		return pipeline.Int(func(n int) { out.Text = formatInt(int64(n)) }, onError)
	case pipeline.ShapeLong:
		return pipeline.Long(func(n int64) { out.Text = formatInt(n) }, onError)
	case pipeline.ShapeDouble:
		return pipeline.Double(func(f float64) { out.Text = formatDouble(f) }, onError)
	case pipeline.ShapeBytes:
		return pipeline.Bytes(func(b []byte) { out.Text = formatBytes(b) }, onError)
	case pipeline.ShapeMultiBytes:
		return pipeline.MultiBytes(func(b [][]byte) { out.Text = formatMultiBytes(b) }, onError)
	case pipeline.ShapeMultiString:
		return pipeline.MultiString(func(s []string) { out.Text = formatMultiString(s) }, onError)
	default:
		return pipeline.String(func(s string) { out.Text = strconv.Quote(s) }, onError)
	}
}

func asyncDecoder(shape pipeline.Shape, out *Reply) (pipeline.Decoder, func(context.Context)) {
	switch shape {
	case pipeline.ShapeNone:
		dec, f := pipeline.NoneAsync()
		return dec, collect(f, out, func(struct{}) string { return "OK" })
	case pipeline.ShapeInt:
		dec, f := pipeline.IntAsync()
		return dec, collect(f, out, func(n int) string { return formatInt(int64(n)) })
	case pipeline.ShapeLong:
		dec, f := pipeline.LongAsync()
		return dec, collect(f, out, formatInt)
	case pipeline.ShapeDouble:
		dec, f := pipeline.DoubleAsync()
		return dec, collect(f, out, formatDouble)
	case pipeline.ShapeBytes:
		dec, f := pipeline.BytesAsync()
		return dec, collect(f, out, formatBytes)
	case pipeline.ShapeMultiBytes:
		dec, f := pipeline.MultiBytesAsync()
		return dec, collect(f, out, formatMultiBytes)
	case pipeline.ShapeMultiString:
		dec, f := pipeline.MultiStringAsync()
		return dec, collect(f, out, formatMultiString)
	default:
		dec, f := pipeline.StringAsync()
		return dec, collect(f, out, strconv.Quote)
	}
}

func collect[T any](f *pipeline.Future[T], out *Reply, format func(T) string) func(context.Context) {
	return func(ctx context.Context) {
		v, err := f.Await(ctx)
		if err != nil {
			out.Err = err
			return
		}
		out.Text = format(v)
	}
}

func formatInt(n int64) string {
	return "(integer) " + strconv.FormatInt(n, 10)
}

func formatDouble(f float64) string {
	if math.IsNaN(f) {
		return "(nil)"
	}
	return strconv.Quote(strconv.FormatFloat(f, 'f', -1, 64))
}

func formatBytes(b []byte) string {
	if b == nil {
		return "(nil)"
	}
	return strconv.Quote(string(b))
}

func formatMultiBytes(items [][]byte) string {
	lines := make([]string, len(items))
	for i, b := range items {
		lines[i] = fmt.Sprintf("%d) %s", i+1, formatBytes(b))
	}
	return formatList(lines)
}

func formatMultiString(items []string) string {
	lines := make([]string, len(items))
	for i, s := range items {
		lines[i] = fmt.Sprintf("%d) %s", i+1, strconv.Quote(s))
	}
	return formatList(lines)
}

func formatList(lines []string) string {
	if len(lines) == 0 {
		return "(empty array)"
	}
	return strings.Join(lines, "\n")
}
