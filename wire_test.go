package okmongo

import "testing"

func TestDecodeReplyHeader(t *testing.T) {
	var w Writer
	w.AppendInt32(0) // messageLength placeholder
	w.AppendInt32(42)
	w.AppendInt32(7)
	w.AppendInt32(int32(OpReply))
	w.AppendInt32(int32(FlagAwaitCapable))
	w.AppendInt64(99)
	w.AppendInt32(0)
	w.AppendInt32(3)
	w.FlushLen()

	h := decodeReplyHeader(w.Bytes())
	if h.MessageLength != w.Len() {
		t.Errorf("MessageLength = %d, want %d", h.MessageLength, w.Len())
	}
	if h.RequestID != 42 || h.ResponseTo != 7 {
		t.Errorf("RequestID/ResponseTo = %d/%d, want 42/7", h.RequestID, h.ResponseTo)
	}
	if h.OpCode != OpReply {
		t.Errorf("OpCode = %v, want %v", h.OpCode, OpReply)
	}
	if h.CursorID != 99 || h.NumberReturned != 3 {
		t.Errorf("CursorID/NumberReturned = %d/%d, want 99/3", h.CursorID, h.NumberReturned)
	}
	if !h.HasFlag(FlagAwaitCapable) {
		t.Error("HasFlag(FlagAwaitCapable) = false, want true")
	}
	if h.HasFlag(FlagCursorNotFound) {
		t.Error("HasFlag(FlagCursorNotFound) = true, want false")
	}
}

func TestOpcodeString(t *testing.T) {
	if OpQuery.String() != "query" {
		t.Errorf("OpQuery.String() = %q", OpQuery.String())
	}
	if Opcode(9999).String() != "unknown" {
		t.Errorf("unknown opcode String() = %q, want unknown", Opcode(9999).String())
	}
}
