package xmltext

import "io"

const defaultBufferSize = 4096

// elementFrame is one entry in a Decoder's open-element stack: just enough
// to textually match end tags and report depth. Namespace-aware matching
// (after prefix resolution) is xmlstream's job.
type elementFrame struct {
	name string
}

// Decoder turns a byte stream into a sequence of Tokens. It is the
// lowest-level, allocation-free half of this module: every []byte field of
// a Token it produces aliases the Decoder's own buffer. A Decoder tracks open-element names well enough to detect
// mismatched and unmatched end tags, but nothing about namespaces.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	src       io.Reader
	sliceMode bool
	readBuf   []byte

	buf        []byte
	pos        int   // next unread byte in buf
	baseOffset int64 // absolute offset of buf[0]
	srcEOF     bool

	opts resolvedOptions

	line, column int

	stack      []elementFrame
	rootSeen   bool
	rootClosed bool

	bomChecked bool
	fatal      error // sticky error from a prior SyntaxError

	hasError  bool
	errOffset int64
	errLine   int
	errColumn int
}

const compactThreshold = 64 * 1024

// NewDecoder creates a Decoder that reads from r, growing its internal
// buffer as needed and periodically compacting already-consumed bytes.
func NewDecoder(r io.Reader, opts ...Options) *Decoder {
	d := &Decoder{}
	d.Reset(r, opts...)
	return d
}

// NewDecoderSlice creates a Decoder over a fixed, already in-memory byte
// slice. No copy is made: data must not be modified while the Decoder is in
// use, and Tokens it produces alias data directly.
func NewDecoderSlice(data []byte, opts ...Options) *Decoder {
	d := &Decoder{}
	d.ResetSlice(data, opts...)
	return d
}

// Reset discards any buffered state and reconfigures the Decoder to read
// from r. It lets callers reuse a Decoder across documents without a new
// allocation.
func (d *Decoder) Reset(r io.Reader, opts ...Options) {
	d.resetCommon(opts...)
	d.src = r
	d.sliceMode = false
	d.buf = d.buf[:0]
}

// ResetSlice is the slice-backed counterpart to Reset.
func (d *Decoder) ResetSlice(data []byte, opts ...Options) {
	d.resetCommon(opts...)
	d.src = nil
	d.sliceMode = true
	d.buf = data
}

func (d *Decoder) resetCommon(opts ...Options) {
	d.opts = resolveOptions(JoinOptions(opts...))
	d.pos = 0
	d.baseOffset = 0
	d.srcEOF = false
	d.line = 1
	d.column = 1
	d.stack = d.stack[:0]
	d.rootSeen = false
	d.rootClosed = false
	d.bomChecked = false
	d.fatal = nil
	d.hasError = false
	d.errOffset = 0
	d.errLine = 0
	d.errColumn = 0
}

// InputOffset returns the absolute byte offset of the next unread byte.
func (d *Decoder) InputOffset() int64 {
	return d.baseOffset + int64(d.pos)
}

// CurrentPos returns the 1-based line and column of the next unread byte.
func (d *Decoder) CurrentPos() (line, column int) {
	return d.line, d.column
}

// ErrorOffset returns the start of the markup that caused the most recent
// error, preserved until the next successful ReadTokenInto call. When no
// error is currently recorded it equals InputOffset, per the buffer_position/
// error_position distinction in the DATA MODEL.
func (d *Decoder) ErrorOffset() int64 {
	if d.hasError {
		return d.errOffset
	}
	return d.InputOffset()
}

// ErrorPos returns the 1-based line and column matching ErrorOffset.
func (d *Decoder) ErrorPos() (line, column int) {
	if d.hasError {
		return d.errLine, d.errColumn
	}
	return d.line, d.column
}

func (d *Decoder) markError(offset int64, line, column int) {
	d.hasError = true
	d.errOffset = offset
	d.errLine = line
	d.errColumn = column
}

// Depth reports the number of currently open elements.
func (d *Decoder) Depth() int {
	return len(d.stack)
}

// ReadToken reads and returns the next Token. The returned Token is valid
// only until the next call to ReadToken, ReadTokenInto, or Reset.
func (d *Decoder) ReadToken() (Token, error) {
	var tok Token
	err := d.ReadTokenInto(&tok)
	return tok, err
}

// ReadTokenInto reads the next Token into dst, avoiding the Token-sized
// allocation ReadToken's return value would otherwise force on escape
// analysis in hot call sites.
func (d *Decoder) ReadTokenInto(dst *Token) error {
	if dst == nil {
		return errNilToken
	}
	if d.fatal != nil {
		return d.fatal
	}
	*dst = Token{}

	d.maybeCompact()

	if !d.bomChecked {
		d.bomChecked = true
		if err := d.sniffBOM(); err != nil {
			return d.fail(d.baseOffset, d.line, d.column, err)
		}
	}

	if !d.ensureByte() {
		return io.EOF
	}

	startLine, startColumn := d.line, d.column
	startOffset := d.baseOffset + int64(d.pos)

	var err error
	if d.buf[d.pos] == '<' {
		err = d.scanMarkup(dst)
	} else {
		err = d.scanText(dst)
	}
	if ife, ok := err.(*IllFormedError); ok {
		if ife.Line == 0 && ife.Offset == 0 {
			ife.Offset, ife.Line, ife.Column = startOffset, startLine, startColumn
		}
		dst.Line, dst.Column = startLine, startColumn
		d.markError(ife.Offset, ife.Line, ife.Column)
		return ife
	}
	if err != nil {
		return d.fail(startOffset, startLine, startColumn, err)
	}

	dst.Line, dst.Column = startLine, startColumn

	if d.opts.maxTokenSize > 0 {
		if len(dst.Text) > d.opts.maxTokenSize || len(dst.AttrsRaw) > d.opts.maxTokenSize {
			return d.fail(startOffset, startLine, startColumn, errTokenTooLarge)
		}
	}

	if err := d.checkWellFormedness(dst, startOffset, startLine, startColumn); err != nil {
		if ife, ok := err.(*IllFormedError); ok {
			d.markError(ife.Offset, ife.Line, ife.Column)
		}
		return err
	}

	d.hasError = false
	return nil
}

func (d *Decoder) fail(offset int64, line, column int, err error) error {
	wrapped := &SyntaxError{Offset: offset, Line: line, Column: column, Err: err}
	d.fatal = wrapped
	d.markError(offset, line, column)
	return wrapped
}

// checkWellFormedness applies the cross-token rules a Decoder enforces on
// top of raw lexical validity: end-tag matching, depth, one root element,
// and non-whitespace content outside it. Unlike a SyntaxError, the Decoder
// stays usable afterward; the caller sees one IllFormedError per violation.
func (d *Decoder) checkWellFormedness(tok *Token, offset int64, line, column int) error {
	switch tok.Kind {
	case KindStartElement:
		if len(d.stack) == 0 {
			if d.rootClosed {
				err := d.illFormed(ReasonMultipleRoots, offset, line, column, "", string(tok.Name), nil)
				if !tok.SelfClosing {
					d.pushFrame(tok.Name)
				}
				return err
			}
			d.rootSeen = true
		}
		if !tok.SelfClosing {
			if d.opts.maxDepth > 0 && len(d.stack) >= d.opts.maxDepth {
				return d.fail(offset, line, column, errDepthLimit)
			}
			d.pushFrame(tok.Name)
		} else if len(d.stack) == 0 {
			d.rootClosed = true
		}
		if d.opts.maxAttrs > 0 {
			if n, ok := countAttrs(tok.AttrsRaw, d.opts.maxAttrs+1); ok && n > d.opts.maxAttrs {
				return d.fail(offset, line, column, errAttrLimit)
			}
		}
		return nil

	case KindEndElement:
		if len(d.stack) == 0 {
			return d.illFormed(ReasonUnmatchedEndTag, offset, line, column, "", string(tok.Name), nil)
		}
		top := d.stack[len(d.stack)-1]
		d.stack = d.stack[:len(d.stack)-1]
		if len(d.stack) == 0 {
			d.rootClosed = true
		}
		if top.name != string(tok.Name) {
			return d.illFormed(ReasonMismatchedEndTag, offset, line, column, top.name, string(tok.Name), nil)
		}
		return nil

	case KindCharData:
		if len(d.stack) == 0 && (d.rootClosed || !d.rootSeen) && !isWhitespaceBytes(tok.Text) {
			return d.illFormed(ReasonContentOutsideRoot, offset, line, column, "", "", nil)
		}
		return nil

	case KindPI:
		if tok.IsXMLDecl {
			if _, ok := DeclVersion(*tok); !ok {
				return d.illFormed(ReasonMissingDeclVersion, offset, line, column, "version", "", nil)
			}
		}
		return nil

	default:
		return nil
	}
}

func (d *Decoder) pushFrame(name []byte) {
	d.stack = append(d.stack, elementFrame{name: string(name)})
}

func (d *Decoder) illFormed(reason IllFormedReason, offset int64, line, column int, expected, found string, cause error) error {
	return &IllFormedError{
		Reason:   reason,
		Offset:   offset,
		Line:     line,
		Column:   column,
		Expected: expected,
		Found:    found,
		Err:      cause,
	}
}

// countAttrs runs a throwaway AttrIter over raw to count attributes without
// allocating, stopping once it has seen limit of them (limit is the
// configured MaxAttrs plus one, so the caller only needs to compare n >
// MaxAttrs rather than exhaust a pathologically long attribute list).
func countAttrs(raw []byte, limit int) (n int, ok bool) {
	it := NewAttrIter(raw, 0)
	for n = 0; n < limit; n++ {
		if _, more := it.Next(); !more {
			return n, it.Err() == nil
		}
	}
	return n, true
}
