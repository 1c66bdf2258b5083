package okmongo

// Action pairs a keyword with the value a Matcher should report when it sees
// that exact keyword. A Matcher is built from a slice of Actions, sorted
// lexicographically by Keyword, plus a default value used for anything else.
type Action[T any] struct {
	Keyword string
	Value   T
}

type matcherState uint8

const (
	matcherRunning matcherState = iota
	matcherSuccess
	matcherFailed
)

// Matcher is a constant-memory, byte-at-a-time recognizer over a small,
// compile-time-known set of keywords. It narrows a [min, max] window into the
// sorted keyword table one byte at a time rather than building a hash table
// or a real trie, so its footprint stays fixed (a handful of bytes) no matter
// how many keywords it knows about: it is built to sit inline inside a parser
// that tracks one of these per nesting level, not to be a general-purpose
// string interner.
//
// It supports at most 255 keywords of at most 255 bytes each -- comfortably
// more than any fixed set of document field names a protocol needs to
// recognize.
type Matcher[T any] struct {
	entries []Action[T] // sorted keywords, plus a synthetic "" entry holding the default
	pos     uint8
	min     uint8
	max     uint8
	state   matcherState
}

// NewMatcher builds a Matcher over actions, which must already be sorted
// lexicographically by Keyword, reporting def for any input that doesn't
// match one of them.
func NewMatcher[T any](actions []Action[T], def T) *Matcher[T] {
	if len(actions) == 0 {
		panic("okmongo: matcher needs at least one keyword")
	}
	if len(actions) >= 256 {
		panic("okmongo: too many keywords for a Matcher")
	}
	m := &Matcher[T]{
		entries: append(append([]Action[T]{}, actions...), Action[T]{Value: def}),
	}
	m.Reset()
	return m
}

// Reset rewinds the matcher so it can recognize another keyword from the
// start.
func (m *Matcher[T]) Reset() {
	m.pos = 0
	m.min = 0
	m.max = uint8(len(m.entries) - 1)
	m.state = matcherRunning
}

// byteAt returns the byte of keyword at position pos, or 0 if pos is at or
// past the end of keyword -- emulating the implicit NUL terminator of a
// C string, which is what lets a short keyword ("n") and a longer one that
// shares its prefix ("nModified") keep narrowing the window correctly.
func byteAt(keyword string, pos uint8) byte {
	if int(pos) >= len(keyword) {
		return 0
	}
	return keyword[pos]
}

// AddChar advances the matcher by one input byte. Feed it a trailing 0x00
// once the keyword is complete to resolve the match.
func (m *Matcher[T]) AddChar(c byte) {
	if m.state != matcherRunning {
		return
	}

	for m.min < m.max && byteAt(m.entries[m.min].Keyword, m.pos) != c {
		m.min++
	}
	for m.min < m.max && byteAt(m.entries[m.max].Keyword, m.pos) != c {
		m.max--
	}

	if m.min == m.max {
		if byteAt(m.entries[m.max].Keyword, m.pos) != c {
			m.state = matcherFailed
			return
		}
		if c == 0 {
			m.state = matcherSuccess
			return
		}
	}
	m.pos++
}

// Result reports the action associated with whatever was matched -- or the
// default if AddChar was never fed a winning sequence.
func (m *Matcher[T]) Result() T {
	if m.state == matcherSuccess {
		return m.entries[m.min].Value
	}
	return m.entries[len(m.entries)-1].Value
}

// Match is a convenience wrapper that resets the matcher, feeds it s followed
// by a terminating NUL, and returns the resulting action.
func (m *Matcher[T]) Match(s string) T {
	m.Reset()
	for i := 0; i < len(s); i++ {
		m.AddChar(s[i])
	}
	m.AddChar(0)
	return m.Result()
}
