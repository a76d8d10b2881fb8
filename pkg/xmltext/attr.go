package xmltext

import "fmt"

// Attr is one (name, value) pair scanned from a start/empty tag's
// attribute list. Value holds the raw bytes between the quotes, still
// escaped; callers that need the decoded value call Unescape themselves,
// guided by NeedsUnescape.
type Attr struct {
	Name          []byte
	Value         []byte
	Quote         byte
	NeedsUnescape bool
}

// ExpectedEqError reports a missing '=' between an attribute name and its
// value.
type ExpectedEqError struct{ Pos int }

func (e *ExpectedEqError) Error() string {
	return fmt.Sprintf("xmltext: expected '=' after attribute name at offset %d", e.Pos)
}

// ExpectedQuoteError reports a missing opening quote after '='.
type ExpectedQuoteError struct{ Pos int }

func (e *ExpectedQuoteError) Error() string {
	return fmt.Sprintf("xmltext: expected '\"' or '\\'' at offset %d", e.Pos)
}

// UnquotedValueError reports an attribute value that was not quoted, with
// HTML-compat mode disabled.
type UnquotedValueError struct{ Pos int }

func (e *UnquotedValueError) Error() string {
	return fmt.Sprintf("xmltext: unquoted attribute value at offset %d", e.Pos)
}

// DuplicateAttrError reports an attribute key that appeared twice in the
// same start tag; only raised when the scanner's CheckDuplicates is set.
type DuplicateAttrError struct {
	Key      string
	FirstPos int
	Pos      int
}

func (e *DuplicateAttrError) Error() string {
	return fmt.Sprintf("xmltext: duplicate attribute %q at offset %d (first seen at %d)", e.Key, e.Pos, e.FirstPos)
}

// InvalidAttrCharError reports a byte that cannot appear where the scanner
// expected an attribute name or whitespace.
type InvalidAttrCharError struct {
	Pos  int
	Byte byte
}

func (e *InvalidAttrCharError) Error() string {
	return fmt.Sprintf("xmltext: invalid character %q at offset %d", e.Byte, e.Pos)
}

// AttrIter lazily scans the attribute list of a start or empty tag,
// following:
//
//	S* key S* = S* (" value " | ' value ') S*
//
// where S is XML whitespace. It is fused: once Next returns false with a
// non-nil Err, every later call to Next also returns false.
type AttrIter struct {
	data       []byte
	pos        int
	base       int
	err        error
	done       bool
	htmlCompat bool
	checkDup   bool
	seen       map[string]int
}

// AttrIterOption configures an AttrIter.
type AttrIterOption func(*AttrIter)

// AllowHTMLCompat accepts unquoted and valueless attributes (e.g. the bare
// "disabled" or unquoted "foo=bar" HTML allows), beyond strict XML.
func AllowHTMLCompat() AttrIterOption {
	return func(it *AttrIter) { it.htmlCompat = true }
}

// CheckDuplicates enables duplicate-key detection. Off by default: for
// well-formed input this would otherwise force an allocation (the seen-set)
// that most callers never need (see DATA MODEL invariant 5).
func CheckDuplicates() AttrIterOption {
	return func(it *AttrIter) { it.checkDup = true }
}

// NewAttrIter creates an iterator over data, the raw bytes between an
// element's name and its closing '>' or '/>'. base is the absolute byte
// offset of data[0] in the enclosing document, used only to report
// accurate error positions.
func NewAttrIter(data []byte, base int, opts ...AttrIterOption) *AttrIter {
	it := &AttrIter{data: data, base: base}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// Err returns the error that caused iteration to stop, or nil if iteration
// has not yet failed.
func (it *AttrIter) Err() error {
	return it.err
}

// Next returns the next attribute and true, or a zero Attr and false when
// iteration is exhausted (check Err to distinguish "no more attributes"
// from "malformed attribute list").
func (it *AttrIter) Next() (Attr, bool) {
	if it.done {
		return Attr{}, false
	}
	it.skipSpace()
	if it.pos >= len(it.data) {
		it.done = true
		return Attr{}, false
	}

	nameStart := it.pos
	if !isNameStartByte(it.data[it.pos]) {
		it.fail(&InvalidAttrCharError{Pos: it.base + it.pos, Byte: it.data[it.pos]})
		return Attr{}, false
	}
	it.pos++
	for it.pos < len(it.data) && isNameByte(it.data[it.pos]) {
		it.pos++
	}
	name := it.data[nameStart:it.pos]
	namePos := it.base + nameStart

	it.skipSpace()
	if it.pos >= len(it.data) || it.data[it.pos] != '=' {
		if it.htmlCompat {
			return it.finish(Attr{Name: name}, namePos)
		}
		it.fail(&ExpectedEqError{Pos: it.base + it.pos})
		return Attr{}, false
	}
	it.pos++
	it.skipSpace()

	if it.pos >= len(it.data) {
		it.fail(&ExpectedQuoteError{Pos: it.base + it.pos})
		return Attr{}, false
	}
	quote := it.data[it.pos]
	if quote != '"' && quote != '\'' {
		if it.htmlCompat {
			valStart := it.pos
			for it.pos < len(it.data) && !isWhitespace(it.data[it.pos]) {
				it.pos++
			}
			return it.finish(Attr{Name: name, Value: it.data[valStart:it.pos]}, namePos)
		}
		it.fail(&UnquotedValueError{Pos: it.base + it.pos})
		return Attr{}, false
	}
	it.pos++
	valStart := it.pos
	for it.pos < len(it.data) && it.data[it.pos] != quote {
		it.pos++
	}
	if it.pos >= len(it.data) {
		it.fail(&ExpectedQuoteError{Pos: it.base + valStart})
		return Attr{}, false
	}
	value := it.data[valStart:it.pos]
	it.pos++ // consume closing quote

	needsUnescape := false
	for _, b := range value {
		if b == '&' {
			needsUnescape = true
			break
		}
	}
	return it.finish(Attr{Name: name, Value: value, Quote: quote, NeedsUnescape: needsUnescape}, namePos)
}

func (it *AttrIter) finish(attr Attr, namePos int) (Attr, bool) {
	if it.checkDup {
		key := string(attr.Name)
		if it.seen == nil {
			it.seen = make(map[string]int, 4)
		}
		if first, ok := it.seen[key]; ok {
			it.fail(&DuplicateAttrError{Key: key, FirstPos: first, Pos: namePos})
			return Attr{}, false
		}
		it.seen[key] = namePos
	}
	return attr, true
}

func (it *AttrIter) fail(err error) {
	it.err = err
	it.done = true
}

func (it *AttrIter) skipSpace() {
	for it.pos < len(it.data) && isWhitespace(it.data[it.pos]) {
		it.pos++
	}
}
