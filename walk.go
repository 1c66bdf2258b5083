package okmongo

// WalkValue drives sink over v by recursing through an already-parsed
// Value/Iterator tree, exactly the way the original's
// Print(const BsonValue&, BsonDocDumper*) walks a BsonValue: each tag maps
// to the matching Emit/sink call, and Document/Array recurse through an
// Iterator rather than re-parsing any bytes.
//
// This is the view-side counterpart to Reader.Consume: the same data, read
// through Value's random-access accessors instead of the reentrant
// byte-stream state machine, produces an independent path to the same
// EventSink event sequence. Regexp, ScopedJS, MinKey and MaxKey are not
// representable as a Value at all (valueLen rejects them), so they can
// never reach here; an Empty or otherwise malformed v reports Error and
// stops.
func WalkValue(v Value, sink EventSink) {
	if v.Empty() {
		sink.Error("empty or malformed value")
		return
	}
	switch v.Tag() {
	case TagDouble:
		sink.Double(v.GetDouble())
	case TagInt32:
		sink.Int32(v.GetInt32())
	case TagInt64:
		sink.Int64(v.GetInt64())
	case TagUTCDatetime:
		sink.UTCDatetime(v.GetUTCDatetime())
	case TagTimestamp:
		sink.Timestamp(v.GetTimestamp())
	case TagBool:
		sink.Bool(v.GetBool())
	case TagNull:
		sink.Null()
	case TagDocument, TagArray:
		if v.Tag() == TagArray {
			sink.OpenArray()
		} else {
			sink.OpenDoc()
		}
		for it := NewIterator(v); !it.Done(); it.Next() {
			key := it.Key()
			if len(key) > 0 {
				sink.FieldName([]byte(key))
			}
			sink.FieldName(nil)
			WalkValue(it.Value(), sink)
		}
		sink.Close()
	case TagObjectID:
		var id [ObjectIDLen]byte
		copy(id[:], v.GetData())
		sink.ObjectID(id)
	case TagUTF8:
		sink.UTF8(v.GetData())
		sink.UTF8(nil)
	case TagJS:
		sink.JS(v.GetData())
		sink.JS(nil)
	case TagBindata:
		sink.BindataSubtype(v.GetBindataSubtype())
		sink.Bindata(v.GetData())
		sink.Bindata(nil)
	default:
		sink.Error("unsupported tag in view walk")
	}
}

// PrintValue renders v the same way Print renders raw bytes, but by driving
// WalkValue over an already-validated Value instead of running it back
// through Reader. The two should always agree for the same bytes -- see
// TestPrintAgreesWithStreamParse.
func PrintValue(v Value) string {
	var p printSink
	WalkValue(v, &p)
	return p.buf.String()
}
