package xmlwriter

import (
	"bytes"

	"github.com/jacoelho/xmlpull/pkg/xmltext"
)

// ElementWriter builds one element's opening tag incrementally, then
// finalizes it with exactly one of WriteEmpty, WriteTextContent,
// WriteCDataContent, WritePIContent, or WriteInnerContent.
type ElementWriter struct {
	w    *Writer
	name []byte
	attr bytes.Buffer
	err  error
}

// CreateElement begins a new element named name. Attributes are added with
// WithAttribute/WithAttributes before the element is finalized.
func (w *Writer) CreateElement(name string) *ElementWriter {
	return &ElementWriter{w: w, name: []byte(name)}
}

// WithAttribute adds a single attribute, escaping its value.
func (e *ElementWriter) WithAttribute(name, value string) *ElementWriter {
	if e.err != nil {
		return e
	}
	e.attr.WriteByte(' ')
	e.attr.WriteString(name)
	e.attr.WriteString(`="`)
	e.attr.Write(xmltext.EscapeAttr([]byte(value), '"'))
	e.attr.WriteByte('"')
	return e
}

// WithAttributes adds one attribute per map entry. Iteration order of a Go
// map is unspecified, so callers who need deterministic attribute order
// should call WithAttribute repeatedly instead.
func (e *ElementWriter) WithAttributes(attrs map[string]string) *ElementWriter {
	for name, value := range attrs {
		e.WithAttribute(name, value)
	}
	return e
}

func (e *ElementWriter) openTag(selfClosing bool) error {
	if e.err != nil {
		return e.err
	}
	if err := e.w.indentBeforeChild(); err != nil {
		return err
	}
	e.w.markParentHasChild()
	e.w.afterText = false
	if err := e.w.writeString("<"); err != nil {
		return err
	}
	if err := e.w.write(e.name); err != nil {
		return err
	}
	if e.attr.Len() > 0 {
		if err := e.w.write(e.attr.Bytes()); err != nil {
			return err
		}
	}
	if selfClosing {
		return e.w.writeString("/>")
	}
	if err := e.w.writeString(">"); err != nil {
		return err
	}
	e.w.depth++
	e.w.frames = append(e.w.frames, false)
	return nil
}

// WriteEmpty finalizes the element as a self-closing tag.
func (e *ElementWriter) WriteEmpty() error {
	return e.openTag(true)
}

func (e *ElementWriter) closeTag() error {
	hasChildren := false
	if e.w.depth > 0 {
		hasChildren = e.w.frames[e.w.depth-1]
		e.w.depth--
		e.w.frames = e.w.frames[:e.w.depth]
	}
	if hasChildren && !e.w.afterText {
		if err := e.w.WriteIndent(); err != nil {
			return err
		}
	}
	e.w.wrote = true
	e.w.afterText = false
	if err := e.w.writeString("</"); err != nil {
		return err
	}
	if err := e.w.write(e.name); err != nil {
		return err
	}
	return e.w.writeString(">")
}

// WriteTextContent finalizes the element with escaped text content.
func (e *ElementWriter) WriteTextContent(text string) error {
	if err := e.openTag(false); err != nil {
		return err
	}
	if err := e.w.writeText([]byte(text), false); err != nil {
		return err
	}
	return e.closeTag()
}

// WriteCDataContent finalizes the element with a single CDATA section.
func (e *ElementWriter) WriteCDataContent(text string) error {
	if err := e.openTag(false); err != nil {
		return err
	}
	if err := e.w.writeCData([]byte(text)); err != nil {
		return err
	}
	return e.closeTag()
}

// WritePIContent finalizes the element with a single processing instruction
// as its sole child. content is the already-combined "target rest" text,
// matching the shape xmlstream.Event.Text uses for non-Decl PIs.
func (e *ElementWriter) WritePIContent(content string) error {
	if err := e.openTag(false); err != nil {
		return err
	}
	target, rest := xmltext.SplitPITarget([]byte(content))
	if err := e.w.writePI(target, rest); err != nil {
		return err
	}
	return e.closeTag()
}

// WriteInnerContent opens the element, invokes fn with the underlying
// Writer so it can emit arbitrary nested events, then closes the element.
// The end tag is written only if fn returns nil; on error, fn's error is
// returned unchanged and no end tag is written.
func (e *ElementWriter) WriteInnerContent(fn func(*Writer) error) error {
	if err := e.openTag(false); err != nil {
		return err
	}
	if err := fn(e.w); err != nil {
		if e.w.depth > 0 {
			e.w.depth--
			e.w.frames = e.w.frames[:e.w.depth]
		}
		return err
	}
	return e.closeTag()
}
