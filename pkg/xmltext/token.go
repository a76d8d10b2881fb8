package xmltext

// Token is an allocation-free view of the next lexical unit in the input.
// Every []byte field aliases the Decoder's internal buffer: it is valid
// only until the next call to ReadToken/ReadTokenInto, or until the
// Decoder is Reset. Callers that need to retain a Token past that point
// must copy the bytes they care about (e.g. string(tok.Name)).
type Token struct {
	Kind Kind

	// Name holds the raw qualified name for KindStartElement and
	// KindEndElement tokens ("prefix:local" or "local").
	Name []byte

	// AttrsRaw holds the unparsed bytes between the element name and the
	// tag's closing '>' or "/>", for KindStartElement tokens. Use AttrIter
	// to scan it; the Decoder never parses it itself (DATA MODEL invariant
	// 5: attribute iteration must not allocate when the caller doesn't ask
	// for it).
	AttrsRaw []byte

	// SelfClosing reports whether a KindStartElement token was written as
	// "<name .../>", in which case the caller (or xmlstream.Reader, when
	// ExpandEmptyElements is set) is responsible for synthesizing the
	// matching end.
	SelfClosing bool

	// Text holds the raw content for KindCharData, KindCDATA, KindComment,
	// KindPI, and KindDirective tokens. For KindCDATA, KindComment,
	// KindPI, and KindDirective the enclosing delimiters are stripped but
	// the content is never unescaped (CDATA and comments are not
	// escapable XML constructs; PI and DOCTYPE content is opaque).
	Text []byte

	// TextNeedsUnescape reports whether a KindCharData Text span contains
	// an '&' and therefore requires a call to UnescapeWith before use as
	// character data.
	TextNeedsUnescape bool

	// IsXMLDecl reports whether a KindPI token is in fact the XML
	// declaration ("<?xml ... ?>", target exactly "xml").
	IsXMLDecl bool

	Line, Column int
}

// DeclVersion extracts the "version" pseudo-attribute from a KindPI token
// with IsXMLDecl set. ok is false if no version pseudo-attribute is
// present (callers that require one should treat that as
// ReasonMissingDeclVersion).
func DeclVersion(tok Token) (string, bool) {
	return declPseudoAttr(tok.Text, "version")
}

// DeclEncoding extracts the "encoding" pseudo-attribute from a KindPI
// token with IsXMLDecl set.
func DeclEncoding(tok Token) (string, bool) {
	return declPseudoAttr(tok.Text, "encoding")
}

// DeclStandalone extracts the "standalone" pseudo-attribute from a KindPI
// token with IsXMLDecl set.
func DeclStandalone(tok Token) (string, bool) {
	return declPseudoAttr(tok.Text, "standalone")
}

// SplitPITarget splits a non-Decl KindPI token's Text into its target name
// and remaining content, trimming the whitespace that separates them.
func SplitPITarget(data []byte) (target, content []byte) {
	i := 0
	for i < len(data) && isNameByte(data[i]) {
		i++
	}
	return data[:i], trimLeadingASCIISpace(data[i:])
}

func declPseudoAttr(declText []byte, key string) (string, bool) {
	it := NewAttrIter(declText, 0)
	for {
		attr, ok := it.Next()
		if !ok {
			return "", false
		}
		if string(attr.Name) == key {
			return string(attr.Value), true
		}
	}
}
