package xmlwriter

import (
	"io"

	"github.com/pkg/errors"

	"github.com/jacoelho/xmlpull/pkg/xmlstream"
	"github.com/jacoelho/xmlpull/pkg/xmltext"
)

// utf8BOM is the three-byte UTF-8 byte order mark.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer serializes xmlstream.Event values to an underlying io.Writer. It
// tracks enough state to decide where indentation belongs but otherwise
// performs no buffering or validation of its own beyond what Write returns.
type Writer struct {
	w     io.Writer
	opts  resolvedOptions
	depth int

	// frames[i] records whether the element open at depth i+1 has had
	// any content written inside it yet, so its end tag knows whether to
	// sit on its own line or glue to the opening tag.
	frames []bool

	// afterText reports whether the most recently written event was
	// character data, so the next event knows it is immediately adjacent
	// to character data already written and should not be indented.
	// Named for quick-xml's last_event adjacency tracking, which this
	// mirrors.
	afterText bool
	wrote     bool
}

// NewWriter returns a Writer that appends to w.
func NewWriter(w io.Writer, opts ...Options) *Writer {
	return &Writer{w: w, opts: resolveOptions(opts)}
}

func (w *Writer) write(p []byte) error {
	if _, err := w.w.Write(p); err != nil {
		return errors.Wrap(err, "xmlwriter: write")
	}
	return nil
}

func (w *Writer) writeString(s string) error {
	return w.write([]byte(s))
}

// WriteBOM emits the UTF-8 byte order mark. Callers who want one must call
// this before writing anything else.
func (w *Writer) WriteBOM() error {
	return w.write(utf8BOM)
}

// WriteIndent emits a newline followed by depth x size copies of the
// configured indent character. It is a no-op when indentation is disabled.
func (w *Writer) WriteIndent() error {
	if !w.opts.indentEnabled() {
		return nil
	}
	n := 1 + w.depth*w.opts.indentSize
	buf := make([]byte, n)
	buf[0] = '\n'
	for i := 1; i < n; i++ {
		buf[i] = w.opts.indentChar
	}
	return w.write(buf)
}

// indentBeforeChild writes a newline and indent before a start/empty tag,
// comment, PI or DOCTYPE, unless this is the very first thing written or
// the previous event was character data. End tags decide on their own
// indent in writeEnd/closeTag. Text and CData never call this: they are always
// written inline, so existing text content is never reformatted.
func (w *Writer) indentBeforeChild() error {
	if w.wrote && !w.afterText {
		if err := w.WriteIndent(); err != nil {
			return err
		}
	}
	w.wrote = true
	return nil
}

func (w *Writer) markParentHasChild() {
	if w.depth > 0 {
		w.frames[w.depth-1] = true
	}
}

// WriteEvent serializes one event. Text content is escaped according to the
// writer's QuoteLevel; use WriteEventRaw to bypass escaping for a Text event
// whose bytes are already known to be well-formed.
func (w *Writer) WriteEvent(ev xmlstream.Event) error {
	return w.writeEvent(ev, false)
}

// WriteEventRaw is WriteEvent without text escaping: ev.Text is written
// verbatim regardless of Kind. It is the caller's responsibility to ensure
// the bytes are already valid XML content.
func (w *Writer) WriteEventRaw(ev xmlstream.Event) error {
	return w.writeEvent(ev, true)
}

func (w *Writer) writeEvent(ev xmlstream.Event, raw bool) error {
	switch ev.Kind {
	case xmlstream.EventStart:
		return w.writeStart(ev, false)
	case xmlstream.EventEmpty:
		return w.writeStart(ev, true)
	case xmlstream.EventEnd:
		return w.writeEnd(ev)
	case xmlstream.EventText:
		return w.writeText(ev.Text, raw)
	case xmlstream.EventCData:
		return w.writeCData(ev.Text)
	case xmlstream.EventComment:
		return w.writeComment(ev.Text)
	case xmlstream.EventPI:
		return w.writePI(ev.Name, ev.Text)
	case xmlstream.EventDecl:
		return w.writeDecl(ev.Text)
	case xmlstream.EventDocType:
		return w.writeDocType(ev.Text)
	default:
		return errors.Errorf("xmlwriter: unsupported event kind %v", ev.Kind)
	}
}

func (w *Writer) writeStart(ev xmlstream.Event, selfClosing bool) error {
	if err := w.indentBeforeChild(); err != nil {
		return err
	}
	w.markParentHasChild()
	w.afterText = false
	if err := w.writeString("<"); err != nil {
		return err
	}
	if err := w.write(ev.Name); err != nil {
		return err
	}
	if len(ev.AttrsRaw) > 0 {
		if err := w.writeAttrs(ev.AttrsRaw); err != nil {
			return err
		}
	}
	if selfClosing {
		return w.writeString("/>")
	}
	if err := w.writeString(">"); err != nil {
		return err
	}
	w.depth++
	w.frames = append(w.frames, false)
	return nil
}

func (w *Writer) writeAttrs(raw []byte) error {
	it := xmltext.NewAttrIter(raw, 0)
	for {
		attr, ok := it.Next()
		if !ok {
			break
		}
		if err := w.writeString(" "); err != nil {
			return err
		}
		if err := w.write(attr.Name); err != nil {
			return err
		}
		// attr.Value is still escaped and never holds its own quote
		// character, so it is written verbatim inside that same quote.
		quote := []byte{'=', attr.Quote}
		if err := w.write(quote); err != nil {
			return err
		}
		if err := w.write(attr.Value); err != nil {
			return err
		}
		if err := w.write(quote[1:]); err != nil {
			return err
		}
	}
	return it.Err()
}

func (w *Writer) writeEnd(ev xmlstream.Event) error {
	hasChildren := false
	if w.depth > 0 {
		hasChildren = w.frames[w.depth-1]
		w.depth--
		w.frames = w.frames[:w.depth]
	}
	if hasChildren && !w.afterText {
		if err := w.WriteIndent(); err != nil {
			return err
		}
	}
	w.wrote = true
	w.afterText = false
	if err := w.writeString("</"); err != nil {
		return err
	}
	if err := w.write(ev.Name); err != nil {
		return err
	}
	return w.writeString(">")
}

// writeText writes character data inline, never preceded by indentation:
// text is never reformatted with surrounding whitespace, the same as
// writeCData, mirroring quick-xml's next_should_line_break = false for
// both Text and CData.
func (w *Writer) writeText(text []byte, raw bool) error {
	if len(text) == 0 {
		return nil
	}
	w.markParentHasChild()
	w.wrote = true
	w.afterText = true
	if raw {
		return w.write(text)
	}
	if w.opts.quoteLevel == QuoteLevelFull {
		return w.write(xmltext.EscapeFull(text))
	}
	return w.write(xmltext.EscapeMinimal(text))
}

// writeCData writes a CDATA section inline, never preceded by indentation,
// regardless of whether the surrounding content is pretty-printed.
func (w *Writer) writeCData(text []byte) error {
	w.markParentHasChild()
	w.wrote = true
	w.afterText = true
	if err := w.writeString("<![CDATA["); err != nil {
		return err
	}
	if err := w.write(text); err != nil {
		return err
	}
	return w.writeString("]]>")
}

func (w *Writer) writeComment(text []byte) error {
	if err := w.indentBeforeChild(); err != nil {
		return err
	}
	w.markParentHasChild()
	w.afterText = false
	if err := w.writeString("<!--"); err != nil {
		return err
	}
	if err := w.write(text); err != nil {
		return err
	}
	return w.writeString("-->")
}

func (w *Writer) writePI(target, content []byte) error {
	if err := w.indentBeforeChild(); err != nil {
		return err
	}
	w.markParentHasChild()
	w.afterText = false
	if err := w.writeString("<?"); err != nil {
		return err
	}
	// Generic PI events carry their target embedded in Text and leave Name
	// empty; with no separate target, split it off the front of content.
	realTarget, realContent := target, content
	if len(realTarget) == 0 {
		realTarget, realContent = xmltext.SplitPITarget(content)
	}
	if err := w.write(realTarget); err != nil {
		return err
	}
	if len(realContent) > 0 {
		if err := w.writeString(" "); err != nil {
			return err
		}
		if err := w.write(realContent); err != nil {
			return err
		}
	}
	return w.writeString("?>")
}

func (w *Writer) writeDecl(pseudoAttrs []byte) error {
	w.wrote = true
	w.afterText = false
	if err := w.writeString("<?xml"); err != nil {
		return err
	}
	if len(pseudoAttrs) > 0 {
		if err := w.writeString(" "); err != nil {
			return err
		}
		if err := w.write(pseudoAttrs); err != nil {
			return err
		}
	}
	return w.writeString("?>")
}

func (w *Writer) writeDocType(content []byte) error {
	if err := w.indentBeforeChild(); err != nil {
		return err
	}
	w.markParentHasChild()
	w.afterText = false
	if err := w.writeString("<!DOCTYPE"); err != nil {
		return err
	}
	if len(content) > 0 {
		if err := w.writeString(" "); err != nil {
			return err
		}
		if err := w.write(content); err != nil {
			return err
		}
	}
	return w.writeString(">")
}
