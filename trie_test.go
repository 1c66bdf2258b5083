package okmongo

import "testing"

func TestMatcherMatch(t *testing.T) {
	m := NewMatcher([]Action[int]{
		{Keyword: "errInfo", Value: 3},
		{Keyword: "errmsg", Value: 2},
		{Keyword: "index", Value: 1},
	}, -1)

	cases := []struct {
		in   string
		want int
	}{
		{"index", 1},
		{"errmsg", 2},
		{"errInfo", 3},
		{"", -1},
		{"unknown", -1},
		{"ind", -1},     // prefix of a real keyword but not a full match
		{"indexes", -1}, // real keyword plus trailing garbage
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			if got := m.Match(c.in); got != c.want {
				t.Errorf("Match(%q) = %d, want %d", c.in, got, c.want)
			}
		})
	}
}

func TestMatcherSharedPrefix(t *testing.T) {
	// "n" is a strict prefix of "nModified"; the matcher must not confuse
	// the short keyword's terminator with the long one's continuation.
	m := NewMatcher([]Action[int]{
		{Keyword: "n", Value: 1},
		{Keyword: "nModified", Value: 2},
	}, -1)

	if got := m.Match("n"); got != 1 {
		t.Errorf("Match(n) = %d, want 1", got)
	}
	if got := m.Match("nModified"); got != 2 {
		t.Errorf("Match(nModified) = %d, want 2", got)
	}
	if got := m.Match("nMod"); got != -1 {
		t.Errorf("Match(nMod) = %d, want -1", got)
	}
}

func TestMatcherByteAtATime(t *testing.T) {
	m := NewMatcher([]Action[int]{{Keyword: "ok", Value: 7}}, -1)
	m.Reset()
	m.AddChar('o')
	m.AddChar('k')
	m.AddChar(0)
	if got := m.Result(); got != 7 {
		t.Errorf("Result() = %d, want 7", got)
	}
}

func TestMatcherFailedStaysFailsed(t *testing.T) {
	m := NewMatcher([]Action[int]{{Keyword: "ok", Value: 7}}, -1)
	m.Reset()
	m.AddChar('x')
	if m.state != matcherFailed {
		t.Fatalf("expected matcher to be failed")
	}
	// Further characters must not panic or change the outcome.
	m.AddChar('o')
	m.AddChar('k')
	if got := m.Result(); got != -1 {
		t.Errorf("Result() after failure = %d, want -1", got)
	}
}

func TestMatcherPanicsOnEmptyActions(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty action set")
		}
	}()
	NewMatcher([]Action[int]{}, -1)
}
