package xmlstream

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/jacoelho/xmlpull/pkg/xmltext"
)

// DuplicateAttributeError reports two attributes on the same tag that
// resolve to the same namespace URI and local name (or, with namespace
// tracking disabled, the same raw name).
type DuplicateAttributeError struct {
	Name   string
	Line   int
	Column int
}

func (e *DuplicateAttributeError) Error() string {
	return "xmlstream: duplicate attribute " + e.Name
}

// UnmatchedStartError reports elements still open when the input ended,
// with AllowUnmatchedEnds not set.
type UnmatchedStartError struct {
	Names []string
}

func (e *UnmatchedStartError) Error() string {
	return "xmlstream: unexpected EOF with open elements: " + joinNames(e.Names)
}

func joinNames(names []string) string {
	var b bytes.Buffer
	for i, n := range names {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(n)
	}
	return b.String()
}

// Reader is a namespace-aware pull parser over an XML byte stream. It is
// not safe for concurrent use.
type Reader struct {
	dec  *xmltext.Decoder
	opts resolvedOptions
	ns   nsStack

	depth    int
	names    []string // open-element qnames, for UnmatchedStartError reporting
	pending  *Event
	attrSeen map[string]int
}

// NewStringReader creates a Reader over a fixed, already in-memory byte
// slice. No copy is made; data must not be modified while the Reader is in
// use.
func NewStringReader(data []byte, opts ...Options) *Reader {
	r := &Reader{}
	r.opts = resolveOptions(JoinOptions(opts...))
	r.dec = xmltext.NewDecoderSlice(data, r.opts.text)
	return r
}

// NewStringReaderString is the string-typed form of NewStringReader.
func NewStringReaderString(data string, opts ...Options) *Reader {
	return NewStringReader([]byte(data), opts...)
}

// NewReader creates a Reader that reads from src, refilling its internal
// buffer as needed. If WithCharsetReader is set, NewReader peeks the
// document's XML declaration (bounded to the first 512 bytes) for a
// non-UTF-8 encoding label and, if found, routes the remaining input
// through the supplied decoder before any tokenizing happens.
func NewReader(src io.Reader, opts ...Options) *Reader {
	r := &Reader{}
	r.opts = resolveOptions(JoinOptions(opts...))
	r.dec = xmltext.NewDecoder(wrapCharset(src, r.opts.charsetReader), r.opts.text)
	return r
}

// Reset discards buffered state and reconfigures the Reader to read from
// src, without reallocating its internal slices.
func (r *Reader) Reset(src io.Reader, opts ...Options) {
	r.opts = resolveOptions(JoinOptions(opts...))
	r.dec.Reset(wrapCharset(src, r.opts.charsetReader), r.opts.text)
	r.resetState()
}

// ResetString is the slice-backed counterpart to Reset.
func (r *Reader) ResetString(data []byte, opts ...Options) {
	r.opts = resolveOptions(JoinOptions(opts...))
	r.dec.ResetSlice(data, r.opts.text)
	r.resetState()
}

func (r *Reader) resetState() {
	r.ns.bindings = r.ns.bindings[:0]
	r.depth = 0
	r.names = r.names[:0]
	r.pending = nil
}

func wrapCharset(src io.Reader, charsetReader CharsetReaderFunc) io.Reader {
	if charsetReader == nil {
		return src
	}
	br := bufio.NewReaderSize(src, 512)
	peeked, _ := br.Peek(512)
	declEnd := bytes.Index(peeked, []byte("?>"))
	if declEnd < 0 || !bytes.HasPrefix(bytes.TrimLeft(peeked, "\xef\xbb\xbf"), []byte("<?xml")) {
		return br
	}
	decl := peeked[:declEnd]
	charset, ok := declEncodingLabel(decl)
	if !ok || isUTF8Label(charset) {
		return br
	}
	decoded, err := charsetReader(charset, br)
	if err != nil {
		return br
	}
	return decoded
}

func declEncodingLabel(decl []byte) (string, bool) {
	const key = "encoding="
	i := bytes.Index(decl, []byte(key))
	if i < 0 {
		return "", false
	}
	rest := decl[i+len(key):]
	if len(rest) == 0 {
		return "", false
	}
	quote := rest[0]
	if quote != '"' && quote != '\'' {
		return "", false
	}
	end := bytes.IndexByte(rest[1:], quote)
	if end < 0 {
		return "", false
	}
	return string(rest[1 : 1+end]), true
}

func isUTF8Label(charset string) bool {
	switch normalizeLabel(charset) {
	case "utf8", "usascii", "ascii":
		return true
	default:
		return false
	}
}

func normalizeLabel(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '-' || c == '_' || c == ' ' {
			continue
		}
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

// InputOffset returns the absolute byte offset of the next unread byte.
func (r *Reader) InputOffset() int64 { return r.dec.InputOffset() }

// CurrentPos returns the 1-based line and column of the next unread byte.
func (r *Reader) CurrentPos() (line, column int) { return r.dec.CurrentPos() }

// ErrorOffset returns the byte offset of the markup that caused the most
// recent error, preserved until the next successful Next call. It equals
// InputOffset when no error is currently recorded.
func (r *Reader) ErrorOffset() int64 { return r.dec.ErrorOffset() }

// LookupNamespace resolves prefix against the current scope. ok is false
// only for an unbound, non-empty prefix.
func (r *Reader) LookupNamespace(prefix string) (uri string, ok bool) {
	return r.ns.lookup(prefix)
}

// NamespaceDecls returns the namespace bindings visible at the current
// scope, most-recently-declared first.
func (r *Reader) NamespaceDecls() []NamespaceDecl {
	return r.ns.decls()
}

// ResolveName splits and resolves a qualified name against the current
// scope. isAttr must be true for attribute names: an unprefixed attribute
// is never in a namespace, even when a default namespace is active,
// unlike an unprefixed element name.
func (r *Reader) ResolveName(qname []byte, isAttr bool) (uri string, local []byte, err error) {
	return r.resolveName(qname, isAttr)
}

func (r *Reader) resolveName(qname []byte, isAttr bool) (string, []byte, error) {
	prefix, local, hasPrefix := xmltext.SplitName(qname)
	if !hasPrefix {
		if isAttr {
			return "", local, nil
		}
		uri, _ := r.ns.lookup("")
		return uri, local, nil
	}
	uri, ok := r.ns.lookup(string(prefix))
	if !ok {
		return "", local, &NamespaceError{Prefix: string(prefix), Name: string(qname)}
	}
	return uri, local, nil
}

// Next reads the next Event, resolving namespaces and applying
// well-formedness policy. It returns io.EOF once the document is
// exhausted.
func (r *Reader) Next() (Event, error) {
	// Bindings declared by a self-closing element stay visible until this
	// following call; drop them now.
	r.ns.popTo(r.depth)
	if r.pending != nil {
		ev := *r.pending
		r.pending = nil
		return ev, nil
	}
	for {
		var tok xmltext.Token
		err := r.dec.ReadTokenInto(&tok)
		switch {
		case err == io.EOF:
			if r.depth > 0 && !r.opts.allowUnmatchedEnds {
				return Event{}, &UnmatchedStartError{Names: append([]string(nil), r.names...)}
			}
			return Event{}, io.EOF

		case err != nil:
			if ife, ok := err.(*xmltext.IllFormedError); ok && r.shouldSuppress(ife) {
				if tok.Kind == xmltext.KindEndElement {
					if ife.Reason == xmltext.ReasonUnmatchedEndTag {
						continue // nothing was popped; move on to the next token
					}
					// mismatched end: xmltext already popped its own
					// stack, so fall through and process it normally.
					break
				}
				return Event{}, err
			}
			return Event{}, errors.Wrap(err, "xmlstream: read token")
		}

		ev, err := r.toEvent(tok)
		if err != nil {
			return Event{}, err
		}
		if ev.Kind == EventText && len(ev.Text) == 0 {
			continue // canonical empty-Text suppression, after trimming
		}
		return ev, nil
	}
}

// NextRaw reads the next Event without namespace resolution: Namespace is
// always left empty and duplicate-attribute checking falls back to raw
// textual keys. It is cheaper when a caller doesn't need resolved names.
func (r *Reader) NextRaw() (Event, error) {
	saved := r.opts.disableNamespaces
	r.opts.disableNamespaces = true
	defer func() { r.opts.disableNamespaces = saved }()
	return r.Next()
}

func (r *Reader) shouldSuppress(err *xmltext.IllFormedError) bool {
	switch err.Reason {
	case xmltext.ReasonUnmatchedEndTag:
		return r.opts.allowUnmatchedEnds
	case xmltext.ReasonMismatchedEndTag:
		return !r.opts.checkEndNames
	default:
		return false
	}
}

func (r *Reader) toEvent(tok xmltext.Token) (Event, error) {
	switch tok.Kind {
	case xmltext.KindStartElement:
		return r.startEvent(tok)
	case xmltext.KindEndElement:
		return r.endEvent(tok)
	case xmltext.KindCharData:
		return r.textEvent(tok)
	case xmltext.KindCDATA:
		return Event{Kind: EventCData, Text: tok.Text, Line: tok.Line, Column: tok.Column}, nil
	case xmltext.KindComment:
		return Event{Kind: EventComment, Text: tok.Text, Line: tok.Line, Column: tok.Column}, nil
	case xmltext.KindPI:
		if tok.IsXMLDecl {
			return Event{Kind: EventDecl, Text: tok.Text, Line: tok.Line, Column: tok.Column}, nil
		}
		return Event{Kind: EventPI, Text: tok.Text, Line: tok.Line, Column: tok.Column}, nil
	case xmltext.KindDirective:
		return Event{Kind: EventDocType, Text: tok.Text, Line: tok.Line, Column: tok.Column}, nil
	default:
		return Event{}, nil
	}
}

func (r *Reader) startEvent(tok xmltext.Token) (Event, error) {
	childDepth := r.depth + 1

	if !r.opts.disableNamespaces {
		if err := r.pushElementDecls(tok.AttrsRaw, childDepth); err != nil {
			return Event{}, err
		}
	}

	var uri string
	if !r.opts.disableNamespaces {
		resolved, _, err := r.resolveName(tok.Name, false)
		if err != nil {
			return Event{}, err
		}
		uri = resolved
	}

	if err := r.checkAttrDuplicates(tok.AttrsRaw, tok.Line, tok.Column); err != nil {
		return Event{}, err
	}

	kind := EventStart
	if tok.SelfClosing {
		// No descendants: its own decls stay in scope only while the caller
		// handles this event, and the next Next call pops them.
		if r.opts.expandEmptyElements {
			end := Event{Kind: EventEnd, Name: tok.Name, Namespace: uri, Line: tok.Line, Column: tok.Column}
			r.pending = &end
		} else {
			kind = EventEmpty
		}
	} else {
		r.depth = childDepth
		r.names = append(r.names, string(tok.Name))
	}

	return Event{
		Kind:      kind,
		Name:      tok.Name,
		Namespace: uri,
		AttrsRaw:  tok.AttrsRaw,
		Line:      tok.Line,
		Column:    tok.Column,
	}, nil
}

func (r *Reader) endEvent(tok xmltext.Token) (Event, error) {
	var uri string
	if !r.opts.disableNamespaces {
		resolved, _, err := r.resolveName(tok.Name, false)
		if err == nil {
			uri = resolved
		}
	}
	if r.depth > 0 {
		r.depth--
		if len(r.names) > 0 {
			r.names = r.names[:len(r.names)-1]
		}
		if !r.opts.disableNamespaces {
			r.ns.popTo(r.depth)
		}
	}
	return Event{Kind: EventEnd, Name: tok.Name, Namespace: uri, Line: tok.Line, Column: tok.Column}, nil
}

func (r *Reader) textEvent(tok xmltext.Token) (Event, error) {
	text := tok.Text
	if r.opts.trimTextStart {
		text = bytes.TrimLeft(text, " \t\r\n")
	}
	if r.opts.trimTextEnd {
		text = bytes.TrimRight(text, " \t\r\n")
	}
	return Event{
		Kind:              EventText,
		Text:              text,
		TextNeedsUnescape: tok.TextNeedsUnescape && len(text) > 0,
		Line:              tok.Line,
		Column:            tok.Column,
	}, nil
}

func (r *Reader) checkAttrDuplicates(attrsRaw []byte, line, column int) error {
	if r.opts.disableNamespaces {
		it := xmltext.NewAttrIter(attrsRaw, 0, xmltext.CheckDuplicates())
		for {
			if _, ok := it.Next(); !ok {
				break
			}
		}
		if err := it.Err(); err != nil {
			if dup, ok := err.(*xmltext.DuplicateAttrError); ok {
				return &DuplicateAttributeError{Name: dup.Key, Line: line, Column: column}
			}
			return err
		}
		return nil
	}

	if r.attrSeen == nil {
		r.attrSeen = make(map[string]int, 8)
	} else {
		for k := range r.attrSeen {
			delete(r.attrSeen, k)
		}
	}
	it := xmltext.NewAttrIter(attrsRaw, 0)
	for {
		attr, ok := it.Next()
		if !ok {
			break
		}
		if xmltext.IsXMLNSDecl(attr.Name) {
			continue
		}
		if _, isDecl := xmltext.PrefixedNSDecl(attr.Name); isDecl {
			continue
		}
		uri, local, err := r.resolveName(attr.Name, true)
		if err != nil {
			return err
		}
		key := uri + "\x00" + string(local)
		if _, dup := r.attrSeen[key]; dup {
			return &DuplicateAttributeError{Name: string(attr.Name), Line: line, Column: column}
		}
		r.attrSeen[key] = 1
	}
	return it.Err()
}
