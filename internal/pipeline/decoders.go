package pipeline

// Decoder constructors come in pairs. The plain form builds a Sync decoder
// whose callbacks run inside Flush/Commit; either callback may be nil. The
// Async form builds an Async decoder and the Future it completes.

// None expects a status or any non-error reply and discards it.
func None(onSuccess func(), onError func(error)) Decoder {
	var cb func(struct{})
	if onSuccess != nil {
		cb = func(struct{}) { onSuccess() }
	}
	return newSync(ShapeNone, readNone, cb, onError)
}

func NoneAsync() (Decoder, *Future[struct{}]) {
	return newAsync(ShapeNone, readNone)
}

// Int expects an integer reply.
func Int(onSuccess func(int), onError func(error)) Decoder {
	return newSync(ShapeInt, readInt, onSuccess, onError)
}

func IntAsync() (Decoder, *Future[int]) {
	return newAsync(ShapeInt, readInt)
}

// Long expects an integer reply.
func Long(onSuccess func(int64), onError func(error)) Decoder {
	return newSync(ShapeLong, readLong, onSuccess, onError)
}

func LongAsync() (Decoder, *Future[int64]) {
	return newAsync(ShapeLong, readLong)
}

// Double expects a bulk holding a float. A null bulk decodes to NaN.
func Double(onSuccess func(float64), onError func(error)) Decoder {
	return newSync(ShapeDouble, readDouble, onSuccess, onError)
}

func DoubleAsync() (Decoder, *Future[float64]) {
	return newAsync(ShapeDouble, readDouble)
}

// Bytes expects a bulk reply. A null bulk decodes to nil.
func Bytes(onSuccess func([]byte), onError func(error)) Decoder {
	return newSync(ShapeBytes, readBytes, onSuccess, onError)
}

func BytesAsync() (Decoder, *Future[[]byte]) {
	return newAsync(ShapeBytes, readBytes)
}

// MultiBytes expects an array of bulks.
func MultiBytes(onSuccess func([][]byte), onError func(error)) Decoder {
	return newSync(ShapeMultiBytes, readMultiBytes, onSuccess, onError)
}

func MultiBytesAsync() (Decoder, *Future[[][]byte]) {
	return newAsync(ShapeMultiBytes, readMultiBytes)
}

// String expects a status or bulk reply.
func String(onSuccess func(string), onError func(error)) Decoder {
	return newSync(ShapeString, readString, onSuccess, onError)
}

func StringAsync() (Decoder, *Future[string]) {
	return newAsync(ShapeString, readString)
}

// MultiString expects an array of bulks.
func MultiString(onSuccess func([]string), onError func(error)) Decoder {
	return newSync(ShapeMultiString, readMultiString, onSuccess, onError)
}

func MultiStringAsync() (Decoder, *Future[[]string]) {
	return newAsync(ShapeMultiString, readMultiString)
}

// Object expects a bulk holding one JSON encoded T.
func Object[T any](onSuccess func(T), onError func(error)) Decoder {
	return newSync(ShapeObject, readObject[T], onSuccess, onError)
}

func ObjectAsync[T any]() (Decoder, *Future[T]) {
	return newAsync(ShapeObject, readObject[T])
}

// Objects expects an array of bulks, each holding one JSON encoded T.
func Objects[T any](onSuccess func([]T), onError func(error)) Decoder {
	return newSync(ShapeObjects, readObjects[T], onSuccess, onError)
}

func ObjectsAsync[T any]() (Decoder, *Future[[]T]) {
	return newAsync(ShapeObjects, readObjects[T])
}
