package channel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/resp"
)

// Command is one protocol command: a name plus binary-safe arguments.
type Command struct {
	Name string
	Args [][]byte
}

// NewCommand builds a Command, converting each argument to its wire bytes.
//
// Conversion:
//   - string and []byte are sent as is
//   - integers and floats use their shortest decimal form
//   - bool is sent as "1" or "0"
//   - nil is sent as an empty string
//   - anything else is formatted with %v
func NewCommand(name string, args ...interface{}) Command {
	cmd := Command{Name: name, Args: make([][]byte, len(args))}
	for i, arg := range args {
		cmd.Args[i] = argBytes(arg)
	}
	return cmd
}

func argBytes(arg interface{}) []byte {
	switch a := arg.(type) {
	case []byte:
		return a
	case string:
		return []byte(a)
	case int:
		return strconv.AppendInt(nil, int64(a), 10)
	case int32:
		return strconv.AppendInt(nil, int64(a), 10)
	case int64:
		return strconv.AppendInt(nil, a, 10)
	case uint64:
		return strconv.AppendUint(nil, a, 10)
	case float64:
		return strconv.AppendFloat(nil, a, 'f', -1, 64)
	case bool:
		if a {
			return []byte("1")
		}
		return []byte("0")
	case nil:
		return []byte{}
	default:
		return []byte(fmt.Sprintf("%v", a))
	}
}

// Values returns the command as the multi-bulk array sent on the wire.
func (c Command) Values() []resp.Value {
	vals := make([]resp.Value, 0, len(c.Args)+1)
	vals = append(vals, resp.StringValue(c.Name))
	for _, arg := range c.Args {
		vals = append(vals, resp.BytesValue(arg))
	}
	return vals
}

// String renders the command for logs, truncated to 100 characters.
func (c Command) String() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	for _, arg := range c.Args {
		if sb.Len() > 100 {
			break
		}
		sb.WriteByte(' ')
		sb.Write(arg)
	}
	s := sb.String()
	if len(s) > 100 {
		s = s[:100] + "..."
	}
	return s
}

// EncodeCommand writes cmd to w as a RESP multi-bulk array.
func EncodeCommand(w io.Writer, cmd Command) error {
	return resp.NewWriter(w).WriteArray(cmd.Values())
}
