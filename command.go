package okmongo

// MaxWriteBatchSize bounds how many documents FillInsertRange will pack into
// a single insert command, matching the limit MongoDB itself enforces on a
// batch.
const MaxWriteBatchSize = 1000

// BodyWriter writes one document's fields into w. It is how callers supply
// the query, update, or document payload of a command: a Writer has no
// value-to-BSON reflection of its own, so the caller is handed the Writer
// directly and writes whatever fields the command needs.
type BodyWriter func(w *Writer)

// WriteConcern controls how many nodes a write must be acknowledged by
// before the server replies, and how long it waits. The zero value is not a
// sensible write concern; use DefaultWriteConcern.
type WriteConcern struct {
	W          int32
	WTimeoutMS int32
}

// DefaultWriteConcern acknowledges a write once the primary has applied it,
// waiting up to 100ms.
var DefaultWriteConcern = WriteConcern{W: 1, WTimeoutMS: 100}

func appendWriteConcern(w *Writer, wc WriteConcern) {
	// lowercase key: the real wire protocol's name, not the capitalized one
	// the original source's own AppendWriteConcern used. See DESIGN.md.
	w.PushDocument(Field("writeConcern"))
	w.Int32(Field("w"), wc.W)
	w.Int32(Field("wtimeout"), wc.WTimeoutMS)
	w.Pop()
}

// appendCommandHeader writes the OP_QUERY framing common to every command
// sent to a database's $cmd pseudo-collection: the message header, query
// flags, the "<db>.$cmd" namespace, and a skip/limit pair that always asks
// for exactly one reply document.
func appendCommandHeader(w *Writer, requestID int32, db string) {
	WriteMsgHeader(w, requestID, 0, OpQuery)
	w.AppendInt32(0) // flags
	w.AppendRawBytes([]byte(db))
	w.AppendCstring(".$cmd")
	w.AppendInt32(0)  // numberToSkip
	w.AppendInt32(-1) // numberToReturn
}

// FillInsertOp builds a complete OP_QUERY insert command for docs into
// w, which must be empty. It does not cap the batch size; callers inserting
// a large, possibly-unbounded sequence of documents should use
// FillInsertRange instead.
func FillInsertOp(w *Writer, requestID int32, db, collection string, docs []BodyWriter, wc WriteConcern) {
	appendCommandHeader(w, requestID, db)

	w.Document()
	w.UTF8(Field("insert"), collection)
	w.PushArray(Field("documents"))
	for i, doc := range docs {
		w.PushDocument(Elem(i))
		doc(w)
		w.Pop()
	}
	w.Pop()
	appendWriteConcern(w, wc)
	w.Pop()

	w.FlushLen()
}

// FillInsertRange builds an insert command out of as many of docs as fit
// within MaxWriteBatchSize, returning the remaining, not-yet-sent documents
// so the caller can issue a follow-up command for them.
func FillInsertRange(w *Writer, requestID int32, db, collection string, docs []BodyWriter, wc WriteConcern) (rest []BodyWriter) {
	n := len(docs)
	if n > MaxWriteBatchSize {
		n = MaxWriteBatchSize
	}
	FillInsertOp(w, requestID, db, collection, docs[:n], wc)
	return docs[n:]
}

// FillQueryOp builds an OP_QUERY for collection. sel may be nil to return
// whole documents. A positive limit is sent negated, so the server treats it
// as a hard cap and closes the cursor after the first batch, matching the
// source driver's convention for a "give me at most N and then stop" query.
func FillQueryOp(w *Writer, requestID int32, db, collection string, qry, sel BodyWriter, limit int32) {
	WriteMsgHeader(w, requestID, 0, OpQuery)
	w.AppendInt32(0) // flags
	w.AppendRawBytes([]byte(db))
	w.AppendRawBytes([]byte("."))
	w.AppendCstring(collection)

	if limit > 0 {
		limit = -limit
	}
	w.AppendInt32(0) // numberToSkip
	w.AppendInt32(limit)

	w.Document()
	qry(w)
	w.Pop()

	if sel != nil {
		w.Document()
		sel(w)
		w.Pop()
	}

	w.FlushLen()
}

// FillUpdateOp builds an insert-style update command with a single update
// statement in its updates array.
func FillUpdateOp(w *Writer, requestID int32, db, collection string, qry, update BodyWriter, upsert bool, wc WriteConcern) {
	appendCommandHeader(w, requestID, db)

	w.Document()
	w.UTF8(Field("update"), collection)

	w.PushArray(Field("updates"))
	w.PushDocument(Elem(0))
	w.PushDocument(Field("q"))
	qry(w)
	w.Pop()
	w.PushDocument(Field("u"))
	update(w)
	w.Pop()
	if upsert {
		w.Bool(Field("upsert"), true)
	}
	w.Pop()
	w.Pop()

	appendWriteConcern(w, wc)
	w.Pop()

	w.FlushLen()
}

// FillDeleteOp builds a delete command with a single delete statement
// matching every document qry selects (limit 0).
func FillDeleteOp(w *Writer, requestID int32, db, collection string, qry BodyWriter, wc WriteConcern) {
	appendCommandHeader(w, requestID, db)

	w.Document()
	w.UTF8(Field("delete"), collection)

	w.PushArray(Field("deletes"))
	w.PushDocument(Elem(0))
	w.PushDocument(Field("q"))
	qry(w)
	w.Pop()
	w.Int32(Field("limit"), 0)
	w.Pop()
	w.Pop()

	appendWriteConcern(w, wc)
	w.Pop()

	w.FlushLen()
}

// FillGetMoreOp builds an OP_GET_MORE requesting more results for cursorID.
func FillGetMoreOp(w *Writer, requestID int32, db, collection string, cursorID int64) {
	WriteMsgHeader(w, requestID, 0, OpGetMore)
	w.AppendInt32(0) // reserved

	w.AppendRawBytes([]byte(db))
	w.AppendRawBytes([]byte("."))
	w.AppendCstring(collection)

	w.AppendInt32(0) // numberToReturn: let the server pick a default batch
	w.AppendInt64(cursorID)
	w.FlushLen()
}

// FillIsMasterOp builds the classic `{ismaster: 1}` admin command used for
// server handshake and topology monitoring.
func FillIsMasterOp(w *Writer, requestID int32) {
	appendCommandHeader(w, requestID, "admin")
	w.Document()
	w.Int32(Field("ismaster"), 1)
	w.Pop()
	w.FlushLen()
}

// FillKillCursorsOp builds an OP_KILL_CURSORS for a single cursor.
func FillKillCursorsOp(w *Writer, requestID int32, cursorID int64) {
	WriteMsgHeader(w, requestID, 0, OpKillCursors)
	w.AppendInt32(0) // reserved
	w.AppendInt32(1) // numberOfCursorIDs
	w.AppendInt64(cursorID)
	w.FlushLen()
}
