package okmongo

// ErrorType distinguishes the two kinds of per-operation error a command
// reply can carry: an error attached to one write in a batch, or an error
// from the write concern applied to the batch as a whole.
type ErrorType int

const (
	ErrWrite ErrorType = iota
	ErrWriteConcern
)

func (t ErrorType) String() string {
	if t == ErrWriteConcern {
		return "writeConcernError"
	}
	return "writeError"
}

// CmdError is one entry of a command reply's writeErrors or
// writeConcernErrors array.
type CmdError struct {
	Type  ErrorType
	Index int32 // position of the failed write in its batch; -1 for writeConcernErrors
	Code  int32
	Msg   string
	Info  string // errInfo, when the server sent it as a string rather than a sub-document
}

// Result is the outcome of a command reply, extracted from its single
// top-level document: the ok/n/nModified fields every write command reply
// carries, plus any per-write or write-concern errors.
type Result struct {
	Ok        float64
	N         int32
	NModified int32
	Errors    []CmdError
}

// topField identifies one of the handful of top-level command reply fields
// this package understands.
type topField int

const (
	topOther topField = iota
	topOk
	topN
	topNModified
	topWriteErrors
	topWriteConcernErrors
)

// errField identifies a field inside one element of a writeErrors or
// writeConcernErrors array.
type errField int

const (
	errOther errField = iota
	errIndex
	errCode
	errMsg
	errInfo
)

func newTopMatcher() *Matcher[topField] {
	return NewMatcher([]Action[topField]{
		{Keyword: "n", Value: topN},
		{Keyword: "nModified", Value: topNModified},
		{Keyword: "ok", Value: topOk},
		{Keyword: "writeConcernErrors", Value: topWriteConcernErrors},
		{Keyword: "writeErrors", Value: topWriteErrors},
	}, topOther)
}

// newErrMatcher recognizes the fields of one writeErrors/writeConcernErrors
// element. The source driver matches "kcode" here instead of "code", a bug
// that means the code field it reports never actually populates; this
// package matches the field MongoDB really sends ("code") instead of
// reproducing that bug.
func newErrMatcher() *Matcher[errField] {
	return NewMatcher([]Action[errField]{
		{Keyword: "code", Value: errCode},
		{Keyword: "errInfo", Value: errInfo},
		{Keyword: "errmsg", Value: errMsg},
		{Keyword: "index", Value: errIndex},
	}, errOther)
}

// resultSink is the EventSink that ParseResult drives a Reader with. It
// tracks just enough nesting state -- only the first three levels of the
// reply document are examined; anything nested deeper is ignored -- to route
// each scalar event to the right field of a Result under construction,
// without ever materializing a generic document tree.
type resultSink struct {
	NopSink

	result *Result

	top *Matcher[topField]
	err *Matcher[errField]

	depth int32

	curTop    topField
	arrayKind topField // topWriteErrors, topWriteConcernErrors, or topOther
	curErr    errField
	building  CmdError
	strBuf    []byte
}

func newResultSink(result *Result) *resultSink {
	return &resultSink{
		result: result,
		top:    newTopMatcher(),
		err:    newErrMatcher(),
	}
}

// isErrorElement reports whether the current position is a writeErrors or
// writeConcernErrors array element, mirroring the original's IsError():
// depth_ == 3 && (base_field_ == kWriteErrors || base_field_ == kWriteConcernErrors).
func (s *resultSink) isErrorElement() bool {
	return s.depth == 3 && (s.arrayKind == topWriteErrors || s.arrayKind == topWriteConcernErrors)
}

func (s *resultSink) OpenDoc() {
	s.depth++
	if s.isErrorElement() {
		s.building = CmdError{Type: errTypeFor(s.arrayKind), Index: -1}
	}
}

func (s *resultSink) OpenArray() {
	s.depth++
	if s.depth == 2 {
		s.arrayKind = s.curTop
	}
}

func (s *resultSink) Close() {
	if s.isErrorElement() {
		s.result.Errors = append(s.result.Errors, s.building)
	}
	if s.depth == 2 {
		s.arrayKind = topOther
	}
	s.depth--
}

func errTypeFor(k topField) ErrorType {
	if k == topWriteConcernErrors {
		return ErrWriteConcern
	}
	return ErrWrite
}

func (s *resultSink) FieldName(chunk []byte) {
	switch s.depth {
	case 1:
		if chunk == nil {
			s.top.AddChar(0)
			s.curTop = s.top.Result()
			s.top.Reset()
			return
		}
		for _, c := range chunk {
			s.top.AddChar(c)
		}
	case 3:
		if chunk == nil {
			s.err.AddChar(0)
			s.curErr = s.err.Result()
			s.err.Reset()
			s.strBuf = s.strBuf[:0]
			return
		}
		for _, c := range chunk {
			s.err.AddChar(c)
		}
	}
}

func (s *resultSink) Int32(v int32) {
	switch s.depth {
	case 1:
		if s.curTop == topN {
			s.result.N = v
		} else if s.curTop == topNModified {
			s.result.NModified = v
		} else if s.curTop == topOk {
			s.result.Ok = float64(v)
		}
	case 3:
		switch s.curErr {
		case errIndex:
			s.building.Index = v
		case errCode:
			s.building.Code = v
		}
	}
}

func (s *resultSink) Int64(v int64) {
	if s.depth == 1 {
		switch s.curTop {
		case topN:
			s.result.N = int32(v)
		case topNModified:
			s.result.NModified = int32(v)
		case topOk:
			s.result.Ok = float64(v)
		}
	}
}

func (s *resultSink) Double(v float64) {
	if s.depth == 1 && s.curTop == topOk {
		s.result.Ok = v
	}
}

func (s *resultSink) Bool(v bool) {
	if s.depth == 1 && s.curTop == topOk {
		if v {
			s.result.Ok = 1
		} else {
			s.result.Ok = 0
		}
	}
}

func (s *resultSink) UTF8(chunk []byte) {
	if s.depth != 3 {
		return
	}
	if chunk == nil {
		switch s.curErr {
		case errMsg:
			s.building.Msg = string(s.strBuf)
		case errInfo:
			s.building.Info = string(s.strBuf)
		}
		s.strBuf = s.strBuf[:0]
		return
	}
	if s.curErr == errMsg || s.curErr == errInfo {
		s.strBuf = append(s.strBuf, chunk...)
	}
}

// ParseResult consumes a single BSON document (as produced by the server
// for a command reply) from data and extracts its Result. data must hold a
// complete document; ParseResult does not support being fed partial input
// across multiple calls the way Reader itself does.
func ParseResult(data []byte) (Result, error) {
	var result Result
	sink := newResultSink(&result)
	r := NewReader(sink)
	n, err := r.Consume(data)
	if err != nil {
		return result, err
	}
	if !r.Done() {
		return result, newParseError("truncated command reply document", int64(n))
	}
	return result, nil
}

// ResponseReader parses a full OP_REPLY wire message: its 36-byte header
// followed by NumberReturned documents, handing each document's Result to
// a caller-supplied callback as it completes.
type ResponseReader struct {
	header    ReplyHeader
	haveHdr   bool
	hdrBuf    [replyHeaderLen]byte
	hdrFilled int

	remaining int32

	result Result
	sink   *resultSink
	doc    *Reader
}

// NewResponseReader returns a ResponseReader ready to parse one OP_REPLY
// message from the start.
func NewResponseReader() *ResponseReader {
	rr := &ResponseReader{}
	rr.result = Result{}
	rr.sink = newResultSink(&rr.result)
	rr.doc = NewReader(rr.sink)
	return rr
}

// Header returns the message header, valid only once HeaderDone reports
// true.
func (rr *ResponseReader) Header() ReplyHeader { return rr.header }

// HeaderDone reports whether the 36-byte header has been fully parsed.
func (rr *ResponseReader) HeaderDone() bool { return rr.haveHdr }

// Consume feeds data to the reader and invokes onDocument once for every
// complete document it decodes, in order. It returns the number of bytes
// consumed and any parse error encountered.
func (rr *ResponseReader) Consume(data []byte, onDocument func(Result)) (int, error) {
	total := 0
	for len(data) > 0 {
		if !rr.haveHdr {
			n := copy(rr.hdrBuf[rr.hdrFilled:], data)
			rr.hdrFilled += n
			data = data[n:]
			total += n
			if rr.hdrFilled < replyHeaderLen {
				return total, nil
			}
			rr.header = decodeReplyHeader(rr.hdrBuf[:])
			rr.remaining = rr.header.NumberReturned
			rr.haveHdr = true
			continue
		}
		if rr.remaining <= 0 {
			return total, nil
		}
		n, err := rr.doc.Consume(data)
		total += n
		data = data[n:]
		if err != nil {
			return total, err
		}
		if rr.doc.Done() {
			onDocument(rr.result)
			rr.remaining--
			rr.result = Result{}
			rr.sink = newResultSink(&rr.result)
			rr.doc = NewReader(rr.sink)
		} else {
			return total, nil
		}
	}
	return total, nil
}

// Reset rewinds the ResponseReader to parse another OP_REPLY message from
// the start.
func (rr *ResponseReader) Reset() {
	rr.haveHdr = false
	rr.hdrFilled = 0
	rr.remaining = 0
	rr.result = Result{}
	rr.sink = newResultSink(&rr.result)
	rr.doc = NewReader(rr.sink)
}
