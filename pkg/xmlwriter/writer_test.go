package xmlwriter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jacoelho/xmlpull/pkg/xmlstream"
)

func mustWrite(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriterBasicRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventStart, Name: []byte("root"), AttrsRaw: []byte(`a="1"`)}))
	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventText, Text: []byte("hi & bye")}))
	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventEnd, Name: []byte("root")}))

	want := `<root a="1">hi &amp; bye</root>`
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriterEmptyElement(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventEmpty, Name: []byte("br")}))
	if got, want := buf.String(), "<br/>"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriterCDataAndComment(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventStart, Name: []byte("r")}))
	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventCData, Text: []byte("raw <stuff>")}))
	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventComment, Text: []byte(" note ")}))
	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventEnd, Name: []byte("r")}))

	want := `<r><![CDATA[raw <stuff>]]><!-- note --></r>`
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriterPITargetSplit(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventPI, Text: []byte(`xml-stylesheet href="a.xsl"`)}))
	want := `<?xml-stylesheet href="a.xsl"?>`
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriterDecl(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventDecl, Text: []byte(`version="1.0" encoding="UTF-8"`)}))
	want := `<?xml version="1.0" encoding="UTF-8"?>`
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriterIndent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Indent(' ', 2))

	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventStart, Name: []byte("root")}))
	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventStart, Name: []byte("child")}))
	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventEnd, Name: []byte("child")}))
	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventEnd, Name: []byte("root")}))

	want := "<root>\n  <child></child>\n</root>"
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriterIndentSkipsAroundText(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Indent(' ', 2))

	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventStart, Name: []byte("root")}))
	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventText, Text: []byte("inline")}))
	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventEnd, Name: []byte("root")}))

	// text is never preceded by indentation, and the end tag is
	// immediately adjacent to character data already written, so it
	// stays glued to it rather than starting a new line.
	want := "<root>inline</root>"
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriterQuoteLevelFull(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithQuoteLevel(QuoteLevelFull))
	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventText, Text: []byte(`a < b > c & "d" 'e'`)}))
	want := `a &lt; b &gt; c &amp; &quot;d&quot; &apos;e&apos;`
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriterEventRawSkipsEscaping(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.WriteEventRaw(xmlstream.Event{Kind: xmlstream.EventText, Text: []byte("a & b")}))
	if got, want := buf.String(), "a & b"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestElementWriterAttributesAndText(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	err := w.CreateElement("item").WithAttribute("id", "7").WriteTextContent("x & y")
	mustWrite(t, err)
	want := `<item id="7">x &amp; y</item>`
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestElementWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.CreateElement("leaf").WithAttribute("k", "v").WriteEmpty())
	want := `<leaf k="v"/>`
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestElementWriterInnerContentNested(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Indent(' ', 2))

	err := w.CreateElement("root").WriteInnerContent(func(inner *Writer) error {
		return inner.CreateElement("child").WriteTextContent("v")
	})
	mustWrite(t, err)

	want := "<root>\n  <child>v</child>\n</root>"
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestElementWriterInnerContentErrorSkipsEndTag(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	boom := errors.New("boom")

	err := w.CreateElement("root").WriteInnerContent(func(inner *Writer) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got %v", err)
	}
	if got, want := buf.String(), "<root>"; got != want {
		t.Fatalf("got %q, want %q (end tag must not be written on error)", got, want)
	}
}

func TestWriterBOM(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.WriteBOM())
	mustWrite(t, w.WriteEvent(xmlstream.Event{Kind: xmlstream.EventEmpty, Name: []byte("r")}))
	want := append([]byte{0xEF, 0xBB, 0xBF}, []byte("<r/>")...)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got %q, want %q", buf.Bytes(), want)
	}
}
