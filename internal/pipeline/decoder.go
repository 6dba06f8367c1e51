package pipeline

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"

	"github.com/tidwall/resp"
)

// Shape is the kind of raw reply a decoder consumes.
type Shape int

const (
	ShapeNone Shape = iota + 1
	ShapeInt
	ShapeLong
	ShapeDouble
	ShapeBytes
	ShapeMultiBytes
	ShapeString
	ShapeMultiString
	ShapeObject
	ShapeObjects
)

var shapeNames = map[Shape]string{
	ShapeNone:        "none",
	ShapeInt:         "int",
	ShapeLong:        "long",
	ShapeDouble:      "double",
	ShapeBytes:       "bytes",
	ShapeMultiBytes:  "multi-bytes",
	ShapeString:      "string",
	ShapeMultiString: "multi-string",
	ShapeObject:      "object",
	ShapeObjects:     "objects",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return "unknown"
}

// Decoder turns one reply into a typed value and delivers it. The set of
// decoders is closed: values are built only by the constructors in this
// package, one per shape and mode.
type Decoder interface {
	Shape() Shape
	Mode() Mode

	// deliver decodes v and hands the result or the failure to the sink.
	// It returns the error only when nothing was registered to receive it.
	deliver(v resp.Value) error
	// fail hands err to the sink, with the same return rule as deliver.
	fail(err error) error
}

type decoder[T any] struct {
	shape     Shape
	mode      Mode
	transform func(resp.Value) (T, error)

	// sync sinks
	onSuccess func(T)
	onError   func(error)

	// async sink
	future *Future[T]
}

func (d *decoder[T]) Shape() Shape { return d.shape }
func (d *decoder[T]) Mode() Mode   { return d.mode }

func (d *decoder[T]) deliver(v resp.Value) error {
	if v.Type() == resp.Error {
		return d.fail(&ReplyError{Message: v.String()})
	}
	val, err := d.transform(v)
	if err != nil {
		return d.fail(err)
	}
	if d.future != nil {
		d.future.complete(val, nil)
		return nil
	}
	if d.onSuccess != nil {
		d.onSuccess(val)
	}
	return nil
}

func (d *decoder[T]) fail(err error) error {
	if d.future != nil {
		var zero T
		d.future.complete(zero, err)
		return nil
	}
	if d.onError != nil {
		d.onError(err)
		return nil
	}
	return err
}

func newSync[T any](shape Shape, transform func(resp.Value) (T, error), onSuccess func(T), onError func(error)) Decoder {
	return &decoder[T]{
		shape:     shape,
		mode:      Sync,
		transform: transform,
		onSuccess: onSuccess,
		onError:   onError,
	}
}

func newAsync[T any](shape Shape, transform func(resp.Value) (T, error)) (Decoder, *Future[T]) {
	f := newFuture[T]()
	return &decoder[T]{
		shape:     shape,
		mode:      Async,
		transform: transform,
		future:    f,
	}, f
}

// transforms

func readNone(v resp.Value) (struct{}, error) {
	return struct{}{}, nil
}

func readLong(v resp.Value) (int64, error) {
	switch v.Type() {
	case resp.Integer, resp.BulkString:
		if v.IsNull() {
			return 0, &ShapeError{Want: ShapeLong, Got: v.Type(), Err: errors.New("null reply")}
		}
		n, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return 0, &ShapeError{Want: ShapeLong, Got: v.Type(), Err: err}
		}
		return n, nil
	default:
		return 0, &ShapeError{Want: ShapeLong, Got: v.Type()}
	}
}

func readInt(v resp.Value) (int, error) {
	n, err := readLong(v)
	if err != nil {
		var se *ShapeError
		if errors.As(err, &se) {
			se.Want = ShapeInt
		}
		return 0, err
	}
	if n > math.MaxInt || n < math.MinInt {
		return 0, &ShapeError{Want: ShapeInt, Got: v.Type(), Err: strconv.ErrRange}
	}
	return int(n), nil
}

func readDouble(v resp.Value) (float64, error) {
	if v.IsNull() {
		return math.NaN(), nil
	}
	switch v.Type() {
	case resp.BulkString, resp.Integer, resp.SimpleString:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return 0, &ShapeError{Want: ShapeDouble, Got: v.Type(), Err: err}
		}
		return f, nil
	default:
		return 0, &ShapeError{Want: ShapeDouble, Got: v.Type()}
	}
}

func readBytes(v resp.Value) ([]byte, error) {
	if v.IsNull() {
		return nil, nil
	}
	switch v.Type() {
	case resp.BulkString, resp.SimpleString, resp.Integer:
		return v.Bytes(), nil
	default:
		return nil, &ShapeError{Want: ShapeBytes, Got: v.Type()}
	}
}

func readString(v resp.Value) (string, error) {
	if v.IsNull() {
		return "", nil
	}
	switch v.Type() {
	case resp.BulkString, resp.SimpleString, resp.Integer:
		return v.String(), nil
	default:
		return "", &ShapeError{Want: ShapeString, Got: v.Type()}
	}
}

// readMulti decodes an array of bulks. A single bulk reply is accepted as a
// one-element result, a null reply as an empty one.
func readMulti[T any](want Shape, v resp.Value, elem func(resp.Value) (T, error)) ([]T, error) {
	if v.IsNull() {
		return []T{}, nil
	}
	switch v.Type() {
	case resp.Array:
		items := v.Array()
		out := make([]T, 0, len(items))
		for _, item := range items {
			if item.Type() == resp.Array {
				return nil, &ShapeError{Want: want, Got: item.Type(), Err: errors.New("nested array")}
			}
			e, err := elem(item)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	case resp.BulkString:
		e, err := elem(v)
		if err != nil {
			return nil, err
		}
		return []T{e}, nil
	default:
		return nil, &ShapeError{Want: want, Got: v.Type()}
	}
}

func readMultiBytes(v resp.Value) ([][]byte, error) {
	return readMulti(ShapeMultiBytes, v, readBytes)
}

func readMultiString(v resp.Value) ([]string, error) {
	return readMulti(ShapeMultiString, v, readString)
}

func readObject[T any](v resp.Value) (T, error) {
	var obj T
	if v.IsNull() {
		return obj, nil
	}
	if v.Type() != resp.BulkString && v.Type() != resp.SimpleString {
		return obj, &ShapeError{Want: ShapeObject, Got: v.Type()}
	}
	if err := json.Unmarshal(v.Bytes(), &obj); err != nil {
		return obj, &ShapeError{Want: ShapeObject, Got: v.Type(), Err: err}
	}
	return obj, nil
}

func readObjects[T any](v resp.Value) ([]T, error) {
	objs, err := readMulti(ShapeObjects, v, func(item resp.Value) (T, error) {
		return readObject[T](item)
	})
	if err != nil {
		var se *ShapeError
		if errors.As(err, &se) {
			se.Want = ShapeObjects
		}
	}
	return objs, err
}
