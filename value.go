package okmongo

import (
	"bytes"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Value is a non-owning, borrowed view over a single already-serialized BSON
// element: a (data, tag) pair. The zero Value is Empty.
//
// A Value never copies the bytes it was built from; the slice it was
// constructed from must outlive the Value and anything derived from it
// (fields, iterators).
type Value struct {
	data []byte
	tag  Tag
}

// NewValue constructs a Value of the given tag over data, validating the
// element's self-described size. It is Empty if data doesn't hold a
// complete, well-formed value of that tag.
func NewValue(tag Tag, data []byte) Value {
	n := valueLen(tag, data)
	if n < 0 {
		return Value{}
	}
	return Value{data: data[:n:n], tag: tag}
}

// NewDocument constructs a Value of tag Document over a complete, self
// contained document buffer (such as one produced by Writer).
func NewDocument(data []byte) Value {
	return NewValue(TagDocument, data)
}

// Empty reports whether v failed validation (or is the zero Value).
func (v Value) Empty() bool { return v.data == nil }

// Tag reports v's element tag, or TagMinKey if v is Empty.
func (v Value) Tag() Tag {
	if v.Empty() {
		return TagMinKey
	}
	return v.tag
}

// Data returns v's raw backing bytes, tag-prefix and key excluded: just the
// value's own encoding, including its length prefix where it has one.
func (v Value) Data() []byte { return v.data }

// valueLen returns the number of bytes tag's value occupies at the front of
// data, or -1 if data is too short or malformed for that tag. Regexp,
// ScopedJS, MinKey and MaxKey are never supported and always report -1.
func valueLen(tag Tag, data []byte) int {
	var n int
	nulTerminated := false
	switch tag {
	case TagDocument, TagArray:
		if len(data) < 5 {
			return -1
		}
		n = int(getInt32(data))
		if n <= 0 {
			return -1
		}
		nulTerminated = true
	case TagUTF8, TagJS, TagBindata:
		if len(data) < 5 {
			return -1
		}
		l := int(getInt32(data))
		if tag == TagBindata {
			if l < 0 {
				return -1
			}
			n = l + 5 // length prefix, subtype byte, payload
		} else {
			if l <= 0 {
				return -1
			}
			n = l + 4
			nulTerminated = true
		}
	case TagDouble:
		n = 8
	case TagObjectID:
		n = ObjectIDLen
	case TagBool:
		n = 1
	case TagInt32:
		n = 4
	case TagInt64, TagUTCDatetime, TagTimestamp:
		n = 8
	case TagNull:
		n = 0
	default: // Regexp, ScopedJS, MinKey, MaxKey and anything unrecognized.
		return -1
	}
	if n > len(data) {
		return -1
	}
	if nulTerminated && data[n-1] != 0 {
		return -1
	}
	return n
}

// GetField walks a Document's fields linearly -- there is no index, no
// hashing, just a byte-wise key comparison -- and returns the first field
// whose key equals name, or Empty if v is not a document or no field
// matches. Callers that need repeated lookups should build an Iterator once
// instead of calling GetField in a loop.
func (v Value) GetField(name string) Value {
	if v.tag != TagDocument {
		return Value{}
	}
	for it := NewIterator(v); !it.Done(); it.Next() {
		if it.Key() == name {
			return it.Value()
		}
	}
	return Value{}
}

func sentinelInt32() int32 { return -1 }

// GetInt32 returns v's value as an int32, or -1 if v is not an Int32.
func (v Value) GetInt32() int32 {
	if v.tag != TagInt32 {
		return sentinelInt32()
	}
	return getInt32(v.data)
}

// GetInt64 returns v's value as an int64, or -1 if v is not an Int64.
func (v Value) GetInt64() int64 {
	if v.tag != TagInt64 {
		return -1
	}
	return getInt64(v.data)
}

// GetDouble returns v's value as a float64, or NaN if v is not a Double.
func (v Value) GetDouble() float64 {
	if v.tag != TagDouble {
		return math.NaN()
	}
	return getFloat64(v.data)
}

// GetBool returns v's value as a bool, or false if v is not a Bool.
func (v Value) GetBool() bool {
	if v.tag != TagBool {
		return false
	}
	return v.data[0] != 0
}

// GetUTCDatetime returns v's value, or -1 if v is not a UtcDatetime.
func (v Value) GetUTCDatetime() int64 {
	if v.tag != TagUTCDatetime {
		return -1
	}
	return getInt64(v.data)
}

// GetTimestamp returns v's value, or -1 if v is not a Timestamp.
func (v Value) GetTimestamp() int64 {
	if v.tag != TagTimestamp {
		return -1
	}
	return getInt64(v.data)
}

// GetObjectID returns v's value, or the zero ObjectID if v is not an
// ObjectId.
func (v Value) GetObjectID() primitive.ObjectID {
	if v.tag != TagObjectID {
		return primitive.ObjectID{}
	}
	var id primitive.ObjectID
	copy(id[:], v.data)
	return id
}

// GetBindataSubtype returns the subtype byte of a Bindata value, or
// SubtypeGeneric if v is not Bindata.
func (v Value) GetBindataSubtype() Subtype {
	if v.tag != TagBindata {
		return SubtypeGeneric
	}
	return Subtype(v.data[4])
}

// GetDataSize returns the length, in bytes, of a string/bindata/objectid
// payload (excluding any length prefix or terminator), or 0 if v's tag
// doesn't carry such a payload.
func (v Value) GetDataSize() int32 {
	switch v.tag {
	case TagUTF8, TagJS:
		return getInt32(v.data) - 1
	case TagBindata:
		return getInt32(v.data)
	case TagObjectID:
		return ObjectIDLen
	default:
		return 0
	}
}

// GetData returns the raw payload bytes for a string/bindata/objectid value
// (the string excludes its trailing NUL), or nil otherwise.
func (v Value) GetData() []byte {
	switch v.tag {
	case TagUTF8, TagJS:
		n := getInt32(v.data) - 1
		return v.data[4 : 4+n]
	case TagBindata:
		n := getInt32(v.data)
		return v.data[5 : 5+n]
	case TagObjectID:
		return v.data[:ObjectIDLen]
	default:
		return nil
	}
}

// GetString is a convenience wrapper around GetData for UTF8/JS values.
func (v Value) GetString() string {
	return string(v.GetData())
}

// Iterator walks the fields of a Document or Array value in order, exposing
// each child's key and Value. An Iterator is Done once it has consumed the
// container's terminator or hit a malformed tag or length; from that point
// it never advances again.
type Iterator struct {
	cur   []byte // remainder of the parent container from the current field on
	key   string
	value Value
}

// NewIterator returns an Iterator over v's fields. If v is not a Document or
// Array, the returned Iterator is immediately Done.
func NewIterator(v Value) Iterator {
	it := Iterator{}
	if v.tag != TagDocument && v.tag != TagArray {
		return it
	}
	it.moveTo(v.data[4:])
	return it
}

// Done reports whether the iterator has no more fields.
func (it Iterator) Done() bool { return it.value.data == nil && it.key == "" && it.cur == nil }

// Key returns the current field's key.
func (it Iterator) Key() string { return it.key }

// Value returns the current field's value.
func (it Iterator) Value() Value { return it.value }

// Next advances to the following field.
func (it *Iterator) Next() {
	if it.Done() {
		return
	}
	it.moveTo(it.cur)
}

func (it *Iterator) invalidate() {
	it.cur = nil
	it.key = ""
	it.value = Value{}
}

// moveTo decodes one field starting at curs, which must point at a tag byte
// (or the container terminator) inside the parent container.
func (it *Iterator) moveTo(curs []byte) {
	if len(curs) < 1 {
		it.invalidate()
		return
	}
	tag := ToTag(curs[0])
	if tag == TagMinKey {
		it.invalidate()
		return
	}
	rest := curs[1:]
	nul := bytes.IndexByte(rest, 0)
	if nul < 0 {
		it.invalidate()
		return
	}
	key := rest[:nul]
	payload := rest[nul+1:]

	n := valueLen(tag, payload)
	if n < 0 {
		it.invalidate()
		return
	}

	it.key = string(key)
	it.value = Value{data: payload[:n:n], tag: tag}
	it.cur = payload[n:]
}
