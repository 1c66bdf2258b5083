package okmongo

import "math"

// EventSink receives the stream of semantic events a Reader produces while
// walking a BSON document. Implementations see exactly the callback pattern
// a hand-written recursive-descent consumer would: OpenDoc/OpenArray/Close
// bracket a container, FieldName precedes each element's value, and the
// chunked events (FieldName, UTF8, JS, Bindata) are always followed by one
// final call carrying a nil/empty chunk to mark the end of the value -- a
// Reader never buffers a whole string before delivering it.
//
// A sink that doesn't care about a particular event can embed NopSink to
// satisfy the interface without implementing every method.
type EventSink interface {
	OpenDoc()
	OpenArray()
	Close()
	FieldName(chunk []byte)
	Int32(v int32)
	Int64(v int64)
	Double(v float64)
	Bool(v bool)
	Null()
	UTF8(chunk []byte)
	JS(chunk []byte)
	BindataSubtype(s Subtype)
	Bindata(chunk []byte)
	UTCDatetime(v int64)
	Timestamp(v int64)
	ObjectID(id [ObjectIDLen]byte)
	Error(msg string)
}

// NopSink implements EventSink with no-op methods. Embed it in a sink that
// only cares about a handful of events.
type NopSink struct{}

func (NopSink) OpenDoc()                        {}
func (NopSink) OpenArray()                      {}
func (NopSink) Close()                          {}
func (NopSink) FieldName(chunk []byte)          {}
func (NopSink) Int32(v int32)                   {}
func (NopSink) Int64(v int64)                   {}
func (NopSink) Double(v float64)                {}
func (NopSink) Bool(v bool)                     {}
func (NopSink) Null()                           {}
func (NopSink) UTF8(chunk []byte)               {}
func (NopSink) JS(chunk []byte)                 {}
func (NopSink) BindataSubtype(s Subtype)        {}
func (NopSink) Bindata(chunk []byte)            {}
func (NopSink) UTCDatetime(v int64)             {}
func (NopSink) Timestamp(v int64)               {}
func (NopSink) ObjectID(id [ObjectIDLen]byte)   {}
func (NopSink) Error(msg string)                {}

type readerState uint8

const (
	stateFieldType readerState = iota
	stateFieldName
	stateReadInt32
	stateReadInt64
	stateReadDouble
	stateReadBool
	stateReadString
	stateReadStringTerm
	stateReadBinSubtype
	stateReadObjectID
	stateDone
	stateError
)

// defaultMaxDepth bounds document nesting the same way the source driver's
// int8 depth counter implicitly did, and the way jibby bounds JSON object
// nesting: cheaply, before a pathological input can blow the (conceptually
// unbounded, here) recursion any deeper than this package intends to follow.
const defaultMaxDepth = 127

// Reader is a reentrant, byte-at-a-time pull parser for the BSON wire
// format. It owns only its own small scratch state -- never a pointer into
// caller-supplied input -- so Consume can be called again and again with
// whatever byte chunks become available, in any split, with identical
// results.
//
// The zero Reader is not usable; construct one with NewReader.
type Reader struct {
	sink EventSink

	state    readerState
	typ      Tag
	depth    int32
	maxDepth int32

	scratch [12]byte
	partial int32

	bytesSeen int64
}

// NewReader returns a Reader that starts at the beginning of a top-level
// document (reading its 4-byte length prefix) and delivers events to sink.
func NewReader(sink EventSink) *Reader {
	r := &Reader{sink: sink, maxDepth: defaultMaxDepth}
	r.Reset()
	return r
}

// SetMaxDepth overrides the nesting depth at which the Reader gives up and
// reports an error, protecting the caller from unbounded recursion on a
// maliciously deep document. The default is 127.
func (r *Reader) SetMaxDepth(n int) { r.maxDepth = int32(n) }

// Reset rewinds the Reader to its initial state so it can parse another
// top-level document from the start.
func (r *Reader) Reset() {
	r.state = stateReadInt32
	r.typ = TagDocument
	r.depth = 0
	r.partial = 0
	r.bytesSeen = 0
}

// Done reports whether the Reader has finished (successfully or not) and
// will no longer consume input.
func (r *Reader) Done() bool {
	return r.state == stateDone || r.state == stateError
}

// BytesSeen returns the total number of bytes Consume has consumed across
// the Reader's lifetime (since the last Reset).
func (r *Reader) BytesSeen() int64 { return r.bytesSeen }

func (r *Reader) fail(msg string) (int, error) {
	r.state = stateError
	err := newParseError(msg, r.bytesSeen)
	r.sink.Error(err.msg)
	return 0, err
}

// Consume feeds p to the parser and returns how many of its bytes were
// consumed. It returns fewer than len(p) only when the document finishes
// partway through p (Done becomes true) or on error, in which case a
// non-nil error is also returned and the Reader latches into its error
// state: no further input will be accepted.
func (r *Reader) Consume(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.Done() {
		return 0, nil
	}

	s := p
	consumed := func() int { return len(p) - len(s) }

	for {
		switch r.state {
		case stateDone, stateError:
			r.bytesSeen += int64(consumed())
			return consumed(), nil

		case stateFieldType:
			if len(s) == 0 {
				r.bytesSeen += int64(consumed())
				return consumed(), nil
			}
			c := s[0]
			if c == 0 {
				s = s[1:]
				r.depth--
				r.sink.Close()
				if r.depth == 0 {
					r.state = stateDone
					r.bytesSeen += int64(consumed())
					return consumed(), nil
				}
				continue
			}
			r.typ = ToTag(c)
			s = s[1:]
			r.state = stateFieldName
			continue

		case stateFieldName:
			if done, rest := r.consumeFieldName(s); done {
				s = rest
				if r.typ == TagNull {
					r.sink.Null()
				}
				next := r.stateForValue()
				if next == stateError {
					n := consumed()
					_, err := r.fail("unsupported or invalid element tag: " + r.typ.String())
					r.bytesSeen += int64(n)
					return n, err
				}
				r.state = next
				continue
			} else {
				r.bytesSeen += int64(consumed())
				return consumed(), nil
			}

		case stateReadInt32:
			rest, v, done, err := r.readFixed32(s)
			s = rest
			if err != nil {
				n := consumed()
				r.bytesSeen += int64(n)
				return n, err
			}
			if !done {
				r.bytesSeen += int64(consumed())
				return consumed(), nil
			}
			if err := r.dispatchInt32(v); err != nil {
				n := consumed()
				r.bytesSeen += int64(n)
				return n, err
			}
			continue

		case stateReadInt64:
			rest, v, done := r.readFixed64(s)
			s = rest
			if !done {
				r.bytesSeen += int64(consumed())
				return consumed(), nil
			}
			r.dispatchInt64(v)
			r.state = stateFieldType
			continue

		case stateReadDouble:
			rest, v, done := r.readFixed64(s)
			s = rest
			if !done {
				r.bytesSeen += int64(consumed())
				return consumed(), nil
			}
			r.sink.Double(bitsToFloat64(v))
			r.state = stateFieldType
			continue

		case stateReadBool:
			if len(s) == 0 {
				r.bytesSeen += int64(consumed())
				return consumed(), nil
			}
			r.sink.Bool(s[0] > 0)
			s = s[1:]
			r.state = stateFieldType
			continue

		case stateReadBinSubtype:
			if len(s) == 0 {
				r.bytesSeen += int64(consumed())
				return consumed(), nil
			}
			r.sink.BindataSubtype(Subtype(s[0]))
			s = s[1:]
			r.state = stateReadString
			continue

		case stateReadString:
			rest, suspend := r.consumeString(s)
			s = rest
			if suspend {
				r.bytesSeen += int64(consumed())
				return consumed(), nil
			}
			continue

		case stateReadStringTerm:
			if len(s) == 0 {
				r.bytesSeen += int64(consumed())
				return consumed(), nil
			}
			if s[0] != 0 {
				n := consumed()
				_, err := r.fail("expected a NUL string terminator")
				r.bytesSeen += int64(n)
				return n, err
			}
			s = s[1:]
			r.state = stateFieldType
			continue

		case stateReadObjectID:
			rest, id, done := r.readFixedN(s, r.scratch[:ObjectIDLen])
			s = rest
			if !done {
				r.bytesSeen += int64(consumed())
				return consumed(), nil
			}
			var arr [ObjectIDLen]byte
			copy(arr[:], id)
			r.sink.ObjectID(arr)
			r.state = stateFieldType
			continue
		}
	}
}

// stateForValue picks the next state after a field's tag and key have been
// read, based on r.typ.
func (r *Reader) stateForValue() readerState {
	switch r.typ {
	case TagInt32, TagArray, TagDocument, TagUTF8, TagJS, TagBindata:
		return stateReadInt32
	case TagInt64, TagUTCDatetime, TagTimestamp:
		return stateReadInt64
	case TagBool:
		return stateReadBool
	case TagDouble:
		return stateReadDouble
	case TagObjectID:
		return stateReadObjectID
	case TagNull:
		// Null carries no payload at all, so there is no dedicated read
		// state for it: Consume emits the Null event itself as soon as the
		// field name has been read.
		return stateFieldType
	default:
		return stateError
	}
}

// consumeFieldName hunts for the field name's NUL terminator in s, emitting
// chunks of the name as it goes. It reports done=true (with the remaining
// input past the terminator) once the full name has been delivered.
func (r *Reader) consumeFieldName(s []byte) (done bool, rest []byte) {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			if i > 0 {
				r.sink.FieldName(s[:i])
			}
			r.sink.FieldName(nil)
			return true, s[i+1:]
		}
	}
	if len(s) > 0 {
		r.sink.FieldName(s)
	}
	return false, nil
}

// readFixed32 accumulates a little-endian int32 across calls via r.scratch
// and r.partial.
func (r *Reader) readFixed32(s []byte) (rest []byte, v int32, done bool, err error) {
	rest, done = r.readInto(s, r.scratch[:4])
	if !done {
		return rest, 0, false, nil
	}
	return rest, getInt32(r.scratch[:4]), true, nil
}

func (r *Reader) readFixed64(s []byte) (rest []byte, v int64, done bool) {
	rest, done = r.readInto(s, r.scratch[:8])
	if !done {
		return rest, 0, false
	}
	return rest, getInt64(r.scratch[:8]), true
}

func (r *Reader) readFixedN(s []byte, dst []byte) (rest []byte, out []byte, done bool) {
	rest, done = r.readInto(s, dst)
	return rest, dst, done
}

// readInto fills dst (whose length determines how many bytes are needed)
// from s, tracking progress across calls in r.partial. It assumes dst is
// backed by r.scratch or otherwise stable storage that survives suspension.
func (r *Reader) readInto(s []byte, dst []byte) (rest []byte, done bool) {
	i := int(r.partial)
	n := copy(dst[i:], s)
	i += n
	s = s[n:]
	if i < len(dst) {
		r.partial = int32(i)
		return s, false
	}
	r.partial = 0
	return s, true
}

// dispatchInt32 interprets a freshly-read int32 according to the pending
// field's type: it may be the field's own value, or the length prefix of a
// document/array/string/bindata value.
func (r *Reader) dispatchInt32(v int32) error {
	switch r.typ {
	case TagDocument:
		if v <= 0 {
			_, err := r.fail("non-positive document length")
			return err
		}
		r.depth++
		if r.depth > r.maxDepth {
			_, err := r.fail("maximum nesting depth exceeded")
			return err
		}
		r.sink.OpenDoc()
		r.state = stateFieldType
		return nil
	case TagArray:
		if v <= 0 {
			_, err := r.fail("non-positive array length")
			return err
		}
		r.depth++
		if r.depth > r.maxDepth {
			_, err := r.fail("maximum nesting depth exceeded")
			return err
		}
		r.sink.OpenArray()
		r.state = stateFieldType
		return nil
	case TagInt32:
		r.sink.Int32(v)
		r.state = stateFieldType
		return nil
	case TagUTF8, TagJS:
		if v < 1 {
			_, err := r.fail("non-positive string length")
			return err
		}
		r.partial = v - 1
		r.state = stateReadString
		return nil
	case TagBindata:
		if v < 0 {
			_, err := r.fail("negative bindata length")
			return err
		}
		r.partial = v
		r.state = stateReadBinSubtype
		return nil
	default:
		_, err := r.fail("internal error: unexpected pending type")
		return err
	}
}

func (r *Reader) dispatchInt64(v int64) {
	switch r.typ {
	case TagInt64:
		r.sink.Int64(v)
	case TagUTCDatetime:
		r.sink.UTCDatetime(v)
	case TagTimestamp:
		r.sink.Timestamp(v)
	}
}

// consumeString distributes up to r.partial bytes of a string/js/bindata
// payload to the sink, chunk by chunk, then (for utf8/js) transitions to
// consuming the terminating NUL, or (for bindata, which has none) straight
// back to reading the next field's tag.
func (r *Reader) consumeString(s []byte) (rest []byte, suspend bool) {
	if int32(len(s)) < r.partial {
		r.partial -= int32(len(s))
		if len(s) > 0 {
			r.dispatchStringData(s)
		}
		return nil, true
	}
	chunk := s[:r.partial]
	r.dispatchStringData(chunk)
	r.dispatchStringData(nil)
	s = s[r.partial:]
	r.partial = 0
	if r.typ == TagBindata {
		r.state = stateFieldType
	} else {
		r.state = stateReadStringTerm
	}
	return s, false
}

func (r *Reader) dispatchStringData(chunk []byte) {
	switch r.typ {
	case TagUTF8:
		r.sink.UTF8(chunk)
	case TagJS:
		r.sink.JS(chunk)
	case TagBindata:
		r.sink.Bindata(chunk)
	}
}

func bitsToFloat64(bits int64) float64 {
	return math.Float64frombits(uint64(bits))
}
