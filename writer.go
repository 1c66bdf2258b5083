package okmongo

import (
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// writerInlineCap is the size of the Writer's inline small-buffer
// optimization: documents that fit inside it never touch the heap.
const writerInlineCap = 240

// Key names a BSON field: either a document key (a string) or an array index
// (a non-negative integer, which the Writer formats as decimal ASCII with no
// leading zeros). Build one with Field or Elem.
type Key struct {
	name  string
	idx   int32
	array bool
}

// Field names a document field.
func Field(name string) Key { return Key{name: name} }

// Elem names an array element by its (non-negative) index.
func Elem(idx int) Key {
	if idx < 0 {
		panic("okmongo: array index must be non-negative")
	}
	return Key{idx: int32(idx), array: true}
}

// Writer builds one BSON document at a time into an internally managed,
// contiguous, growable buffer. It has no recoverable error mode: malformed
// call sequences (writing a field before Document, or Pop without a matching
// Push) are programmer errors that the Writer does not detect; they neither
// panic nor return an error, and the bytes written are not a valid document.
// A negative array index and use of a copied Writer do panic.
//
// Like strings.Builder, a Writer must not be copied after first use.
type Writer struct {
	addr     *Writer // detects illegal copies, as strings.Builder does
	small    [writerInlineCap]byte
	buf      []byte
	heap     bool
	docStart int32
}

func (w *Writer) copyCheck() {
	if w.addr == nil {
		w.addr = w
	} else if w.addr != w {
		panic("okmongo: illegal use of non-zero Writer copied by value")
	}
}

// Clear resets the writer to its initial empty state without releasing any
// heap buffer it may have already grown into.
func (w *Writer) Clear() {
	w.copyCheck()
	w.buf = w.buf[:0]
	w.docStart = 0
}

func (w *Writer) init() {
	if w.buf == nil && !w.heap {
		w.buf = w.small[:0]
	}
}

// reserve grows the buffer, if necessary, so that n more bytes can be
// appended without further allocation. new capacity = max(2*cap, cap+n+2),
// matching the source driver's growth policy exactly so that allocation
// counts stay predictable for callers who care.
func (w *Writer) reserve(n int) {
	w.init()
	if cap(w.buf)-len(w.buf) >= n {
		return
	}
	cur := cap(w.buf)
	next := cur * 2
	if alt := cur + n + 2; alt > next {
		next = alt
	}
	nb := make([]byte, len(w.buf), next)
	copy(nb, w.buf)
	w.buf = nb
	w.heap = true
}

// grow reserves n bytes and returns the destination slice for them,
// advancing the write position as if they had already been written.
func (w *Writer) grow(n int) []byte {
	w.reserve(n)
	start := len(w.buf)
	w.buf = w.buf[:start+n]
	return w.buf[start : start+n]
}

func (w *Writer) pos() int32 { return int32(len(w.buf)) }

// Document opens the top-level document. It must be the first structural
// call on a fresh or cleared Writer.
func (w *Writer) Document() {
	w.copyCheck()
	w.startContainer()
}

// startContainer writes the saved parent doc_start into the 4 bytes at the
// current position (the self-describing length-stack trick: the parent
// offset lives, temporarily, where the child's own length will end up), then
// makes the current position the new doc_start.
func (w *Writer) startContainer() {
	dst := w.grow(4)
	putInt32(dst, w.docStart)
	w.docStart = w.pos() - 4
}

// PushDocument opens a nested document under key. Close it with Pop.
func (w *Writer) PushDocument(k Key) {
	w.copyCheck()
	w.startField(TagDocument, k, 0)
	w.startContainer()
}

// PushArray opens a nested array under key. Close it with Pop.
func (w *Writer) PushArray(k Key) {
	w.copyCheck()
	w.startField(TagArray, k, 0)
	w.startContainer()
}

// Pop closes the most recently opened document or array, back-patching its
// length prefix.
func (w *Writer) Pop() {
	w.copyCheck()
	dst := w.grow(1)
	dst[0] = 0

	docLen := w.pos() - w.docStart
	slot := w.buf[w.docStart : w.docStart+4]
	parent := getInt32(slot)
	putInt32(slot, docLen)
	w.docStart = parent
}

// startField writes the tag byte and the field's key (plus its NUL
// terminator), reserving room for a cntLen-byte payload, and returns that
// payload's destination slice. The position is already advanced past the
// payload, so the caller is responsible for filling in exactly cntLen bytes.
func (w *Writer) startField(tag Tag, k Key, cntLen int) []byte {
	var keyLen int
	if k.array {
		keyLen = decimalLen(k.idx)
	} else {
		keyLen = len(k.name)
	}

	dst := w.grow(1 + keyLen + 1 + cntLen)
	dst[0] = byte(tag)
	if k.array {
		putDecimal(dst[1:1+keyLen], k.idx)
	} else {
		copy(dst[1:], k.name)
	}
	dst[1+keyLen] = 0
	return dst[2+keyLen:]
}

func decimalLen(n int32) int {
	if n < 0 {
		panic("okmongo: array index must be non-negative")
	}
	return len(strconv.FormatInt(int64(n), 10))
}

func putDecimal(dst []byte, n int32) {
	s := strconv.FormatInt(int64(n), 10)
	copy(dst, s)
}

// Int32 writes a 32-bit integer field.
func (w *Writer) Int32(k Key, v int32) {
	w.copyCheck()
	dst := w.startField(TagInt32, k, 4)
	putInt32(dst, v)
}

// Int64 writes a 64-bit integer field.
func (w *Writer) Int64(k Key, v int64) {
	w.copyCheck()
	dst := w.startField(TagInt64, k, 8)
	putInt64(dst, v)
}

// Double writes a 64-bit IEEE 754 float field.
func (w *Writer) Double(k Key, v float64) {
	w.copyCheck()
	dst := w.startField(TagDouble, k, 8)
	putFloat64(dst, v)
}

// Bool writes a boolean field.
func (w *Writer) Bool(k Key, v bool) {
	w.copyCheck()
	dst := w.startField(TagBool, k, 1)
	if v {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
}

// Null writes a null-valued field.
func (w *Writer) Null(k Key) {
	w.copyCheck()
	w.startField(TagNull, k, 0)
}

// UTF8 writes a UTF-8 string field. v is copied verbatim; it is the caller's
// responsibility to ensure it is valid UTF-8 without embedded NULs if that
// matters to the receiving server.
func (w *Writer) UTF8(k Key, v string) {
	w.copyCheck()
	cntLen := 4 + len(v) + 1
	dst := w.startField(TagUTF8, k, cntLen)
	putInt32(dst, int32(len(v)+1))
	copy(dst[4:], v)
	dst[4+len(v)] = 0
}

// JS writes a JavaScript-code field (wire-identical to UTF8, distinguished
// only by its tag).
func (w *Writer) JS(k Key, v string) {
	w.copyCheck()
	cntLen := 4 + len(v) + 1
	dst := w.startField(TagJS, k, cntLen)
	putInt32(dst, int32(len(v)+1))
	copy(dst[4:], v)
	dst[4+len(v)] = 0
}

// UTCDatetime writes a UTC datetime field: milliseconds since the Unix
// epoch.
func (w *Writer) UTCDatetime(k Key, v int64) {
	w.copyCheck()
	dst := w.startField(TagUTCDatetime, k, 8)
	putInt64(dst, v)
}

// Timestamp writes an internal MongoDB replication timestamp field.
func (w *Writer) Timestamp(k Key, v int64) {
	w.copyCheck()
	dst := w.startField(TagTimestamp, k, 8)
	putInt64(dst, v)
}

// ObjectID writes a 12-byte ObjectId field.
func (w *Writer) ObjectID(k Key, v primitive.ObjectID) {
	w.copyCheck()
	dst := w.startField(TagObjectID, k, ObjectIDLen)
	copy(dst, v[:])
}

// Bindata writes a binary-data field of the given subtype.
func (w *Writer) Bindata(k Key, subtype Subtype, data []byte) {
	w.copyCheck()
	cntLen := 4 + 1 + len(data)
	dst := w.startField(TagBindata, k, cntLen)
	putInt32(dst, int32(len(data)))
	dst[4] = byte(subtype)
	copy(dst[5:], data)
}

// AppendRawBytes appends len(data) untagged raw bytes, for assembling wire
// framing (message headers, collection names, and the like) that sits
// outside the tagged document format.
func (w *Writer) AppendRawBytes(data []byte) {
	w.copyCheck()
	dst := w.grow(len(data))
	copy(dst, data)
}

// AppendCstring appends s followed by a NUL terminator.
func (w *Writer) AppendCstring(s string) {
	w.copyCheck()
	dst := w.grow(len(s) + 1)
	copy(dst, s)
	dst[len(s)] = 0
}

// AppendInt32 appends a raw little-endian int32, untagged.
func (w *Writer) AppendInt32(v int32) {
	w.copyCheck()
	putInt32(w.grow(4), v)
}

// AppendInt64 appends a raw little-endian int64, untagged.
func (w *Writer) AppendInt64(v int64) {
	w.copyCheck()
	putInt64(w.grow(8), v)
}

// FlushLen writes the buffer's current total length back into its first
// four bytes. This is for wire framing, where byte 0 of the whole message
// (not of a BSON document) is its own length; it must not be used unless the
// first thing written to the buffer was a placeholder int32.
func (w *Writer) FlushLen() {
	w.copyCheck()
	putInt32(w.buf[0:4], w.pos())
}

// Bytes returns the writer's underlying buffer. It is valid until the next
// call to Clear or any mutating method, and must not be modified or retained
// past the Writer's lifetime without copying it first.
func (w *Writer) Bytes() []byte {
	w.copyCheck()
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int32 {
	return w.pos()
}

// String copies the writer's buffer into an owned byte string.
func (w *Writer) String() string {
	return string(w.buf)
}
