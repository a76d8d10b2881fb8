package xmltext

import (
	"bytes"
	"strings"
)

// fill appends more bytes to d.buf, returning true if it made progress. In
// slice mode there is never more to fetch: the caller handed us the whole
// document up front.
func (d *Decoder) fill() bool {
	if d.sliceMode {
		d.srcEOF = true
		return false
	}
	if d.srcEOF {
		return false
	}
	if d.readBuf == nil {
		d.readBuf = make([]byte, d.opts.bufferSize)
	}
	n, err := d.src.Read(d.readBuf)
	if n > 0 {
		d.buf = append(d.buf, d.readBuf[:n]...)
	}
	if err != nil {
		d.srcEOF = true
	}
	return n > 0
}

// ensureAvailable grows d.buf until it holds at least n bytes from pos, or
// returns false once the source is exhausted first.
func (d *Decoder) ensureAvailable(pos, n int) bool {
	for pos+n > len(d.buf) {
		if !d.fill() {
			return pos+n <= len(d.buf)
		}
	}
	return true
}

func (d *Decoder) ensureByte() bool {
	return d.ensureAvailable(d.pos, 1)
}

// maybeCompact drops already-consumed bytes from the front of the buffer.
// It is only safe to call between tokens: every Token's fields alias d.buf
// and are documented valid only until the next ReadToken call.
func (d *Decoder) maybeCompact() {
	if d.sliceMode || d.pos < compactThreshold {
		return
	}
	n := copy(d.buf, d.buf[d.pos:])
	d.buf = d.buf[:n]
	d.baseOffset += int64(d.pos)
	d.pos = 0
}

func (d *Decoder) sniffBOM() error {
	if !d.ensureAvailable(0, 1) {
		return nil
	}
	switch d.buf[0] {
	case 0xEF:
		if d.ensureAvailable(0, 3) && d.buf[1] == 0xBB && d.buf[2] == 0xBF {
			d.commit(3)
		}
	case 0xFE, 0xFF:
		if d.ensureAvailable(0, 2) &&
			((d.buf[0] == 0xFE && d.buf[1] == 0xFF) || (d.buf[0] == 0xFF && d.buf[1] == 0xFE)) {
			return errUnsupportedEncoding
		}
	}
	return nil
}

// commit advances d.pos to end, updating line/column over the bytes just
// consumed. end always refers to an index into the current d.buf.
func (d *Decoder) commit(end int) {
	if d.opts.trackLineColumn {
		d.advanceLineCol(d.buf[d.pos:end])
	}
	d.pos = end
}

func (d *Decoder) advanceLineCol(b []byte) {
	i := 0
	for i < len(b) {
		switch b[i] {
		case '\n':
			d.line++
			d.column = 1
			i++
		case '\r':
			d.line++
			d.column = 1
			i++
			if i < len(b) && b[i] == '\n' {
				i++
			}
		default:
			d.column++
			i++
		}
	}
}

// scanUntil finds delim at or after start, growing the buffer as needed. It
// keeps a small overlap (len(delim)-1 bytes) across fills so a delimiter
// split across two Read calls is still found, without re-scanning the whole
// buffer from start on every fill.
func (d *Decoder) scanUntil(start int, delim []byte) (int, bool) {
	searchFrom := start
	for {
		if idx := bytes.Index(d.buf[searchFrom:], delim); idx >= 0 {
			return searchFrom + idx, true
		}
		overlap := len(delim) - 1
		next := len(d.buf) - overlap
		if next < start {
			next = start
		}
		searchFrom = next
		if !d.fill() {
			return len(d.buf), false
		}
	}
}

// scanName scans an XML Name starting at start, returning the index just
// past it. It returns (start, errInvalidName) if no valid name is present.
func (d *Decoder) scanName(start int) (int, error) {
	if !d.ensureAvailable(start, 1) || !isNameStartByte(d.buf[start]) {
		return start, errInvalidName
	}
	i := start + 1
	for {
		if i >= len(d.buf) {
			if !d.fill() {
				break
			}
			continue
		}
		if !isNameByte(d.buf[i]) {
			break
		}
		i++
	}
	return i, nil
}

// scanTagBody scans a start or empty tag's attribute list from start (just
// past the element name) through its closing '>', tracking quoted values so
// a '>' inside an attribute doesn't terminate the tag early. attrsEnd is the
// index where attribute bytes end (excluding a trailing '/' for an empty
// element); closeEnd is the index just past '>'.
func (d *Decoder) scanTagBody(start int) (attrsEnd, closeEnd int, selfClosing bool, err error) {
	i := start
	var quote byte
	for {
		if i >= len(d.buf) {
			if !d.fill() {
				return 0, 0, false, errUnterminatedTag
			}
			continue
		}
		b := d.buf[i]
		if quote != 0 {
			if b == quote {
				quote = 0
			}
			i++
			continue
		}
		switch b {
		case '"', '\'':
			quote = b
			i++
		case '>':
			self := i > start && d.buf[i-1] == '/'
			end := i
			if self {
				end = i - 1
			}
			return end, i + 1, self, nil
		default:
			i++
		}
	}
}

func (d *Decoder) scanMarkup(dst *Token) error {
	markStart := d.pos
	if !d.ensureAvailable(markStart, 2) {
		return errUnterminatedTag
	}
	switch d.buf[markStart+1] {
	case '/':
		return d.scanEndTag(dst, markStart)
	case '!':
		return d.scanBang(dst, markStart)
	case '?':
		return d.scanPIOrDecl(dst, markStart)
	default:
		if isNameStartByte(d.buf[markStart+1]) {
			return d.scanStartOrEmpty(dst, markStart)
		}
		return errInvalidChar
	}
}

func (d *Decoder) scanText(dst *Token) error {
	start := d.pos
	end, _ := d.scanUntil(start, []byte{'<'})
	text := d.buf[start:end]
	if err := validateXMLChars(text); err != nil {
		return err
	}
	dst.Kind = KindCharData
	dst.Text = text
	dst.TextNeedsUnescape = bytes.IndexByte(text, '&') >= 0
	d.commit(end)
	return nil
}

func (d *Decoder) scanStartOrEmpty(dst *Token, markStart int) error {
	nameStart := markStart + 1
	nameEnd, err := d.scanName(nameStart)
	if err != nil {
		return err
	}
	attrsEnd, closeEnd, selfClosing, err := d.scanTagBody(nameEnd)
	if err != nil {
		return err
	}
	dst.Kind = KindStartElement
	dst.Name = d.buf[nameStart:nameEnd]
	dst.AttrsRaw = d.buf[nameEnd:attrsEnd]
	dst.SelfClosing = selfClosing
	d.commit(closeEnd)
	return nil
}

func (d *Decoder) scanEndTag(dst *Token, markStart int) error {
	nameStart := markStart + 2
	nameEnd, err := d.scanName(nameStart)
	if err != nil {
		return err
	}
	attrsEnd, closeEnd, _, err := d.scanTagBody(nameEnd)
	if err != nil {
		return err
	}
	if !d.opts.allowEndTagAttrs && !isWhitespaceBytes(d.buf[nameEnd:attrsEnd]) {
		return errInvalidChar
	}
	dst.Kind = KindEndElement
	dst.Name = d.buf[nameStart:nameEnd]
	d.commit(closeEnd)
	return nil
}

func (d *Decoder) scanBang(dst *Token, markStart int) error {
	p := markStart + 2
	if d.ensureAvailable(p, 2) && d.buf[p] == '-' && d.buf[p+1] == '-' {
		return d.scanComment(dst, p+2)
	}
	if d.ensureAvailable(p, 7) && string(d.buf[p:p+7]) == "[CDATA[" {
		return d.scanCDATA(dst, p+7)
	}
	if d.ensureAvailable(p, 7) && strings.EqualFold(string(d.buf[p:p+7]), "DOCTYPE") {
		return d.scanDoctype(dst, p+7)
	}
	return errUnexpectedBang
}

func (d *Decoder) scanComment(dst *Token, contentStart int) error {
	end, found := d.scanUntil(contentStart, []byte("-->"))
	if !found {
		return errUnterminatedTag
	}
	body := d.buf[contentStart:end]
	if err := validateXMLChars(body); err != nil {
		return err
	}
	dst.Kind = KindComment
	dst.Text = body
	violatesHyphenRule := d.opts.checkComments && bytes.Contains(body, []byte("--"))
	d.commit(end + 3)
	if violatesHyphenRule {
		return &IllFormedError{Reason: ReasonDoubleHyphenInComment, Err: errDoubleHyphen}
	}
	return nil
}

func (d *Decoder) scanCDATA(dst *Token, contentStart int) error {
	end, found := d.scanUntil(contentStart, []byte("]]>"))
	if !found {
		return errUnterminatedTag
	}
	body := d.buf[contentStart:end]
	if err := validateXMLChars(body); err != nil {
		return err
	}
	dst.Kind = KindCDATA
	dst.Text = body
	d.commit(end + 3)
	return nil
}

func (d *Decoder) scanDoctype(dst *Token, contentStart int) error {
	j := contentStart
	for {
		if !d.ensureAvailable(j, 1) {
			return errUnterminatedTag
		}
		if !isWhitespace(d.buf[j]) {
			break
		}
		j++
	}
	sawName := d.ensureAvailable(j, 1) && isNameStartByte(d.buf[j])

	i := contentStart
	depth := 0
	var quote byte
	for {
		if i >= len(d.buf) {
			if !d.fill() {
				return errUnterminatedTag
			}
			continue
		}
		b := d.buf[i]
		if quote != 0 {
			if b == quote {
				quote = 0
			}
			i++
			continue
		}
		switch b {
		case '"', '\'':
			quote = b
			i++
		case '[':
			depth++
			i++
		case ']':
			if depth > 0 {
				depth--
			}
			i++
		case '>':
			if depth > 0 {
				i++
				continue
			}
			body := d.buf[contentStart:i]
			closeEnd := i + 1
			dst.Kind = KindDirective
			dst.Text = body
			d.commit(closeEnd)
			if !sawName {
				return &IllFormedError{Reason: ReasonEmptyDocType, Err: errEmptyDocType}
			}
			return nil
		default:
			i++
		}
	}
}

func (d *Decoder) scanPIOrDecl(dst *Token, markStart int) error {
	p := markStart + 2
	if d.ensureAvailable(p, 2) && d.buf[p] == '?' && d.buf[p+1] == '>' {
		dst.Kind = KindPI
		d.commit(p + 2)
		return nil
	}
	nameEnd, err := d.scanName(p)
	if err != nil {
		return err
	}
	target := d.buf[p:nameEnd]
	isDecl := string(target) == "xml"
	closeAt, found := d.scanUntil(nameEnd, []byte("?>"))
	if !found {
		return errUnterminatedTag
	}
	dst.Kind = KindPI
	dst.IsXMLDecl = isDecl
	if isDecl {
		// Decl content is pseudo-attributes only; the target is always
		// literally "xml" and callers never need it back.
		dst.Text = trimLeadingASCIISpace(d.buf[nameEnd:closeAt])
	} else {
		// Generic PI content keeps the target, since callers need it
		// (see SplitPITarget).
		dst.Text = d.buf[p:closeAt]
	}
	d.commit(closeAt + 2)
	return nil
}
