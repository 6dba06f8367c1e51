package goredis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/tidwall/resp"

	"github.com/akashmaji946/go-redis-batch/internal/channel"
	"github.com/akashmaji946/go-redis-batch/internal/common"
	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

// GoRedisClient represents a client connection to the Redis server.
// Single commands go through SendCommand; batches are opened with Pipeline
// and Transaction.
type GoRedisClient struct {
	conn   *channel.Conn
	conf   *common.Config
	logger *common.Logger

	// NamespacePrefix is prepended to every object and id-set key.
	NamespacePrefix string
}

// Queuer is the part of a pipeline or transaction the command helpers need.
// Both *pipeline.Pipeline and *pipeline.Transaction satisfy it.
type Queuer interface {
	Enqueue(cmd channel.Command, dec pipeline.Decoder) error
}

// Dial connects to conf.Addr.
func Dial(ctx context.Context, conf *common.Config, logger *common.Logger) (*GoRedisClient, error) {
	if logger == nil {
		logger = common.NewLogger()
	}
	conn, err := channel.Dial(ctx, conf.Addr, conf.DialTimeout, channel.OptionsFromConfig(conf, logger))
	if err != nil {
		return nil, err
	}
	logger.Info("connected to %s", conf.Addr)
	return &GoRedisClient{conn: conn, conf: conf, logger: logger}, nil
}

// NewClient wraps an established connection.
func NewClient(nc net.Conn, conf *common.Config, logger *common.Logger) *GoRedisClient {
	if logger == nil {
		logger = common.NewLogger()
	}
	return &GoRedisClient{
		conn:   channel.NewConn(nc, channel.OptionsFromConfig(conf, logger)),
		conf:   conf,
		logger: logger,
	}
}

// Conn returns the underlying channel.
func (c *GoRedisClient) Conn() *channel.Conn {
	return c.conn
}

// Pipeline opens a pipeline on the connection.
func (c *GoRedisClient) Pipeline(mode pipeline.Mode) (*pipeline.Pipeline, error) {
	return pipeline.OpenPipeline(c.conn, mode)
}

// Transaction opens a MULTI/EXEC transaction on the connection.
func (c *GoRedisClient) Transaction(mode pipeline.Mode) (*pipeline.Transaction, error) {
	return pipeline.OpenTransaction(c.conn, mode)
}

// SendCommand sends a command to the Redis server and returns the response.
// Error replies are returned as errors. It fails while a batch is open.
func (c *GoRedisClient) SendCommand(ctx context.Context, args ...interface{}) (interface{}, error) {
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	name := fmt.Sprintf("%v", args[0])
	v, err := c.conn.Do(ctx, channel.NewCommand(name, args[1:]...))
	if err != nil {
		return nil, err
	}
	return toInterface(v)
}

// toInterface converts a reply into plain Go values: string, int64, nil or
// []interface{}.
func toInterface(v resp.Value) (interface{}, error) {
	if v.IsNull() {
		return nil, nil
	}
	switch v.Type() {
	case resp.SimpleString, resp.BulkString:
		return v.String(), nil
	case resp.Error:
		return nil, errors.New("Server Error: " + v.String())
	case resp.Integer:
		return strconv.ParseInt(v.String(), 10, 64)
	case resp.Array:
		items := v.Array()
		results := make([]interface{}, len(items))
		for i, item := range items {
			res, err := toInterface(item)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		return results, nil
	default:
		return nil, fmt.Errorf("unknown RESP type: %c", byte(v.Type()))
	}
}

// Close closes the connection to the Redis server.
func (c *GoRedisClient) Close() error {
	return c.conn.Close()
}

// enqueue builds the command and queues it with its decoder.
func enqueue(q Queuer, dec pipeline.Decoder, name string, args ...interface{}) error {
	return q.Enqueue(channel.NewCommand(name, args...), dec)
}

// toInterfaceSlice converts a slice of strings to a slice of interfaces.
func toInterfaceSlice(args []string) []interface{} {
	s := make([]interface{}, len(args))
	for i, v := range args {
		s[i] = v
	}
	return s
}
