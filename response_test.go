package okmongo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func buildCmdReply(t *testing.T, body BodyWriter) []byte {
	t.Helper()
	var w Writer
	WriteMsgHeader(&w, 1, 1, OpReply)
	w.AppendInt32(0) // responseFlags
	w.AppendInt64(0) // cursorID
	w.AppendInt32(0) // startingFrom
	w.AppendInt32(1) // numberReturned
	w.Document()
	body(&w)
	w.Pop()
	w.FlushLen()
	return w.Bytes()
}

func TestParseResultSimple(t *testing.T) {
	data := buildCmdReply(t, func(w *Writer) {
		w.Double(Field("ok"), 1)
		w.Int32(Field("n"), 3)
	})

	body := data[replyHeaderLen:]
	result, err := ParseResult(body)
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if result.Ok != 1 {
		t.Errorf("Ok = %v, want 1", result.Ok)
	}
	if result.N != 3 {
		t.Errorf("N = %v, want 3", result.N)
	}
}

// TestParseResultIgnoresUnrelatedNestedDocuments guards against a reply
// whose nesting happens to reach depth 3 outside of a writeErrors/
// writeConcernErrors array -- like the $clusterTime/signature sub-document
// real MongoDB servers attach to virtually every reply since 3.6 -- being
// mistaken for a write error.
func TestParseResultIgnoresUnrelatedNestedDocuments(t *testing.T) {
	var w Writer
	w.Document()
	w.Double(Field("ok"), 1)
	w.PushDocument(Field("$clusterTime"))
	w.PushDocument(Field("clusterTime"))
	w.Int64(Field("t"), 1)
	w.Int32(Field("i"), 1)
	w.Pop()
	w.PushDocument(Field("signature"))
	w.UTF8(Field("hash"), "deadbeef")
	w.Int32(Field("keyId"), 7)
	w.Pop()
	w.Pop()
	w.Pop()

	result, err := ParseResult(w.Bytes())
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("Errors = %+v, want none", result.Errors)
	}
}

func TestParseResultWriteErrors(t *testing.T) {
	body := func(w *Writer) {
		w.Double(Field("ok"), 1)
		w.Int32(Field("n"), 1)
		w.PushArray(Field("writeErrors"))
		w.PushDocument(Elem(0))
		w.Int32(Field("index"), 0)
		w.Int32(Field("code"), 11000)
		w.UTF8(Field("errmsg"), "duplicate key")
		w.Pop()
		w.Pop()
	}
	var w Writer
	w.Document()
	body(&w)
	w.Pop()

	result, err := ParseResult(w.Bytes())
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	want := []CmdError{{Type: ErrWrite, Index: 0, Code: 11000, Msg: "duplicate key"}}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Errorf("Errors mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResultWriteConcernErrors(t *testing.T) {
	var w Writer
	w.Document()
	w.Double(Field("ok"), 1)
	w.PushArray(Field("writeConcernErrors"))
	w.PushDocument(Elem(0))
	w.Int32(Field("code"), 64)
	w.UTF8(Field("errmsg"), "timed out")
	w.Pop()
	w.Pop()
	w.Pop()

	result, err := ParseResult(w.Bytes())
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if len(result.Errors) != 1 || result.Errors[0].Type != ErrWriteConcern {
		t.Fatalf("Errors = %+v, want one ErrWriteConcern entry", result.Errors)
	}
}

func TestResponseReaderMultipleDocuments(t *testing.T) {
	var body Writer
	body.Document()
	body.Int32(Field("n"), 1)
	body.Pop()
	doc1 := append([]byte{}, body.Bytes()...)

	body.Clear()
	body.Document()
	body.Int32(Field("n"), 2)
	body.Pop()
	doc2 := append([]byte{}, body.Bytes()...)

	var w Writer
	WriteMsgHeader(&w, 1, 0, OpReply)
	w.AppendInt32(0)
	w.AppendInt64(0)
	w.AppendInt32(0)
	w.AppendInt32(2)
	w.AppendRawBytes(doc1)
	w.AppendRawBytes(doc2)
	w.FlushLen()

	rr := NewResponseReader()
	var got []int32
	n, err := rr.Consume(w.Bytes(), func(r Result) { got = append(got, r.N) })
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if n != len(w.Bytes()) {
		t.Fatalf("consumed %d, want %d", n, len(w.Bytes()))
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("results = %v, want [1 2]", got)
	}
	if !rr.HeaderDone() {
		t.Error("HeaderDone should be true")
	}
	if rr.Header().NumberReturned != 2 {
		t.Errorf("NumberReturned = %d, want 2", rr.Header().NumberReturned)
	}
}

func TestResponseReaderSplitAcrossHeaderBoundary(t *testing.T) {
	var body Writer
	body.Document()
	body.Int32(Field("n"), 5)
	body.Pop()
	doc := append([]byte{}, body.Bytes()...)

	var w Writer
	WriteMsgHeader(&w, 1, 0, OpReply)
	w.AppendInt32(0)
	w.AppendInt64(0)
	w.AppendInt32(0)
	w.AppendInt32(1)
	w.AppendRawBytes(doc)
	w.FlushLen()

	full := w.Bytes()
	rr := NewResponseReader()
	var got []int32
	split := replyHeaderLen - 5
	if _, err := rr.Consume(full[:split], func(r Result) { got = append(got, r.N) }); err != nil {
		t.Fatal(err)
	}
	if rr.HeaderDone() {
		t.Fatal("header should not be complete yet")
	}
	if _, err := rr.Consume(full[split:], func(r Result) { got = append(got, r.N) }); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != 5 {
		t.Errorf("results = %v, want [5]", got)
	}
}
