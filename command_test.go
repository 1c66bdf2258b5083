package okmongo

import "testing"

func TestFillIsMasterOp(t *testing.T) {
	var w Writer
	FillIsMasterOp(&w, 123)

	buf := w.Bytes()
	h := decodeMsgHeader(buf)
	if h.OpCode != OpQuery {
		t.Fatalf("OpCode = %v, want query", h.OpCode)
	}
	if h.RequestID != 123 {
		t.Fatalf("RequestID = %d, want 123", h.RequestID)
	}
	if h.MessageLength != w.Len() {
		t.Fatalf("MessageLength = %d, want %d", h.MessageLength, w.Len())
	}

	// Skip header(16) + flags(4) + "admin.$cmd\x00" + skip(4) + limit(4).
	docStart := 16 + 4 + len("admin.$cmd") + 1 + 4 + 4
	doc := NewDocument(buf[docStart:])
	if doc.Empty() {
		t.Fatal("command body did not parse as a document")
	}
	if got := doc.GetField("ismaster").GetInt32(); got != 1 {
		t.Errorf("ismaster = %d, want 1", got)
	}
}

func TestFillInsertOp(t *testing.T) {
	var w Writer
	docs := []BodyWriter{
		func(w *Writer) { w.Int32(Field("x"), 1) },
		func(w *Writer) { w.Int32(Field("x"), 2) },
	}
	FillInsertOp(&w, 1, "db", "coll", docs, DefaultWriteConcern)

	h := decodeMsgHeader(w.Bytes())
	if h.OpCode != OpQuery {
		t.Fatalf("OpCode = %v, want query", h.OpCode)
	}

	docStart := 16 + 4 + len("db") + len(".$cmd") + 1 + 4 + 4
	cmd := NewDocument(w.Bytes()[docStart:])
	if cmd.Empty() {
		t.Fatal("command body did not parse")
	}
	if got := cmd.GetField("insert").GetString(); got != "coll" {
		t.Errorf("insert = %q, want coll", got)
	}
	docsField := cmd.GetField("documents")
	if docsField.Tag() != TagArray {
		t.Fatal("documents should be an array")
	}
	var count int
	for it := NewIterator(docsField); !it.Done(); it.Next() {
		count++
	}
	if count != 2 {
		t.Errorf("documents array has %d elements, want 2", count)
	}
	wc := cmd.GetField("writeConcern")
	if wc.Tag() != TagDocument {
		t.Fatal("writeConcern should be a document")
	}
	if got := wc.GetField("w").GetInt32(); got != 1 {
		t.Errorf("writeConcern.w = %d, want 1", got)
	}
}

func TestFillInsertRangeCapsBatch(t *testing.T) {
	docs := make([]BodyWriter, MaxWriteBatchSize+10)
	for i := range docs {
		idx := i
		docs[i] = func(w *Writer) { w.Int32(Field("i"), int32(idx)) }
	}
	var w Writer
	rest := FillInsertRange(&w, 1, "db", "coll", docs, DefaultWriteConcern)
	if len(rest) != 10 {
		t.Fatalf("leftover documents = %d, want 10", len(rest))
	}
}

func TestFillGetMoreOp(t *testing.T) {
	var w Writer
	FillGetMoreOp(&w, 5, "db", "coll", 12345)
	h := decodeMsgHeader(w.Bytes())
	if h.OpCode != OpGetMore {
		t.Errorf("OpCode = %v, want getMore", h.OpCode)
	}
}

func TestFillKillCursorsOp(t *testing.T) {
	var w Writer
	FillKillCursorsOp(&w, 5, 99)
	h := decodeMsgHeader(w.Bytes())
	if h.OpCode != OpKillCursors {
		t.Errorf("OpCode = %v, want killCursors", h.OpCode)
	}
	if w.Len() != int32(16+4+4+8) {
		t.Errorf("message length = %d, want %d", w.Len(), 16+4+4+8)
	}
}
