package okmongo

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders data, a single complete BSON document, as a compact
// JSON-like string by driving a Reader over it. It exists mainly as a cheap
// way to exercise Reader against the same bytes Value/Iterator would walk
// directly, and as a debugging aid; it makes no attempt at extended JSON's
// type-preserving wrapper syntax, beyond tagging the handful of BSON types
// JSON has no native equivalent for (ObjectId, BinData, datetimes,
// timestamps) with a `$name(...)` marker.
func Print(data []byte) (string, error) {
	var p printSink
	r := NewReader(&p)
	n, err := r.Consume(data)
	if err != nil {
		return p.buf.String(), err
	}
	if !r.Done() {
		return p.buf.String(), newParseError("truncated document", int64(n))
	}
	return p.buf.String(), nil
}

// printSink writes a document's events out as it receives them, tracking
// just enough state -- one comma flag and one closing bracket per currently
// open container -- to punctuate the result correctly. Each event is written
// straight into buf, which accumulates the whole rendered output.
type printSink struct {
	buf       strings.Builder
	brackets  []byte // closing bracket for each open container, innermost last
	needComma []bool // per open container: has an element already been printed
	isArray   []bool // per open container: array (no keys printed) vs document
	inName    bool   // currently between a FieldName's opening quote and its close
	inString  bool   // currently between a UTF8/JS value's opening quote and its close
}

// topIsArray reports whether the innermost open container is an array,
// whose element keys (numeric indices) are never printed.
func (p *printSink) topIsArray() bool {
	if len(p.isArray) == 0 {
		return false
	}
	return p.isArray[len(p.isArray)-1]
}

// startElement punctuates the start of a new container element (comma if
// one has already been printed at this level) and marks the level as having
// one now.
func (p *printSink) startElement() {
	if len(p.needComma) == 0 {
		return
	}
	top := len(p.needComma) - 1
	if p.needComma[top] {
		p.buf.WriteByte(',')
	}
	p.needComma[top] = true
}

func (p *printSink) OpenDoc() {
	p.buf.WriteByte('{')
	p.brackets = append(p.brackets, '}')
	p.needComma = append(p.needComma, false)
	p.isArray = append(p.isArray, false)
}

func (p *printSink) OpenArray() {
	p.buf.WriteByte('[')
	p.brackets = append(p.brackets, ']')
	p.needComma = append(p.needComma, false)
	p.isArray = append(p.isArray, true)
}

func (p *printSink) Close() {
	if len(p.brackets) == 0 {
		return
	}
	b := p.brackets[len(p.brackets)-1]
	p.brackets = p.brackets[:len(p.brackets)-1]
	p.needComma = p.needComma[:len(p.needComma)-1]
	p.isArray = p.isArray[:len(p.isArray)-1]
	p.buf.WriteByte(b)
}

// FieldName is delivered once per element (document field or array index),
// in chunks followed by a final nil. It owns placing the comma between
// elements, since every BSON value is preceded by exactly one FieldName.
func (p *printSink) FieldName(chunk []byte) {
	arr := p.topIsArray()
	if chunk != nil {
		if !p.inName {
			p.startElement()
			if !arr {
				p.buf.WriteByte('"')
			}
			p.inName = true
		}
		if !arr {
			p.buf.Write(chunk)
		}
		return
	}
	if !p.inName {
		p.startElement()
		if !arr {
			p.buf.WriteByte('"')
		}
	}
	if !arr {
		p.buf.WriteString(`":`)
	}
	p.inName = false
}

func (p *printSink) Int32(v int32) { p.buf.WriteString(strconv.FormatInt(int64(v), 10)) }
func (p *printSink) Int64(v int64) { p.buf.WriteString(strconv.FormatInt(v, 10)) }
func (p *printSink) Double(v float64) {
	p.buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
}
func (p *printSink) Bool(v bool) {
	if v {
		p.buf.WriteString("true")
	} else {
		p.buf.WriteString("false")
	}
}
func (p *printSink) Null() { p.buf.WriteString("null") }

func (p *printSink) UTF8(chunk []byte) { p.writeStringChunk(chunk) }
func (p *printSink) JS(chunk []byte)   { p.writeStringChunk(chunk) }

func (p *printSink) writeStringChunk(chunk []byte) {
	if chunk == nil {
		if !p.inString {
			p.buf.WriteByte('"')
		}
		p.buf.WriteByte('"')
		p.inString = false
		return
	}
	if !p.inString {
		p.buf.WriteByte('"')
		p.inString = true
	}
	p.buf.Write(chunk)
}

func (p *printSink) BindataSubtype(s Subtype) {
	fmt.Fprintf(&p.buf, "$bindata(%d,", s)
}

func (p *printSink) Bindata(chunk []byte) {
	if chunk == nil {
		p.buf.WriteByte(')')
		return
	}
	fmt.Fprintf(&p.buf, "%x", chunk)
}

func (p *printSink) UTCDatetime(v int64) { fmt.Fprintf(&p.buf, "$date(%d)", v) }
func (p *printSink) Timestamp(v int64)   { fmt.Fprintf(&p.buf, "$timestamp(%d)", v) }
func (p *printSink) ObjectID(id [ObjectIDLen]byte) {
	fmt.Fprintf(&p.buf, "$oid(%x)", id)
}
func (p *printSink) Error(msg string) {
	fmt.Fprintf(&p.buf, "$error(%s)", msg)
}

var _ EventSink = (*printSink)(nil)
