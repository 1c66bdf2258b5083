package okmongo

import "testing"

// FuzzReaderConsume is the modern replacement for the source driver's
// gofuzz harness: rather than comparing against a second implementation, it
// asserts what a reentrant parser must hold no matter what bytes it's handed
// -- it must never panic or report consuming more bytes than it was given,
// on literally arbitrary input, and a clean finish must agree with Value's
// validation of the consumed bytes.
func FuzzReaderConsume(f *testing.F) {
	var w Writer
	w.Document()
	w.Int32(Field("a"), 1)
	w.UTF8(Field("b"), "hello")
	w.Pop()
	f.Add(w.Bytes())

	f.Add([]byte{})
	f.Add([]byte{0, 0, 0, 0})
	f.Add([]byte{5, 0, 0, 0, 0})

	f.Fuzz(func(t *testing.T, data []byte) {
		sink := &NopSink{}
		r := NewReader(sink)
		n, err := r.Consume(data)
		if n < 0 || n > len(data) {
			t.Fatalf("Consume returned out-of-range n=%d for len(data)=%d", n, len(data))
		}
		if err == nil && r.Done() {
			// A clean finish must agree with Value's own validation of the
			// same bytes as a document.
			if NewDocument(data[:n]).Empty() {
				t.Fatalf("Reader finished cleanly on bytes Value rejects: % x", data[:n])
			}
		}
	})
}

// FuzzTrieMatcher checks that Matcher never panics and always reports
// either a known keyword's value or the default, for arbitrary keyword
// input -- the single-byte narrowing logic is exactly the kind of thing an
// off-by-one would silently corrupt without a crash.
func FuzzTrieMatcher(f *testing.F) {
	f.Add("ok")
	f.Add("n")
	f.Add("nModified")
	f.Add("")
	f.Add("writeErrors")

	f.Fuzz(func(t *testing.T, s string) {
		m := newTopMatcher()
		got := m.Match(s)
		if got != topOther && s != "n" && s != "nModified" && s != "ok" &&
			s != "writeConcernErrors" && s != "writeErrors" {
			t.Fatalf("Match(%q) = %v, want topOther for an unknown keyword", s, got)
		}
	})
}
