package xmltext

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func readAll(t *testing.T, d *Decoder) ([]Token, error) {
	t.Helper()
	var toks []Token
	for {
		tok, err := d.ReadToken()
		if err == io.EOF {
			return toks, nil
		}
		if ife, ok := err.(*IllFormedError); ok {
			toks = append(toks, tok)
			return toks, ife
		}
		if err != nil {
			return toks, err
		}
		cp := tok
		cp.Name = append([]byte(nil), tok.Name...)
		cp.Text = append([]byte(nil), tok.Text...)
		cp.AttrsRaw = append([]byte(nil), tok.AttrsRaw...)
		toks = append(toks, cp)
	}
}

func TestDecoderBasicElements(t *testing.T) {
	d := NewDecoderSlice([]byte(`<root a="1"><child/>text</root>`))
	toks, err := readAll(t, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		kind Kind
		name string
	}{
		{KindStartElement, "root"},
		{KindStartElement, "child"},
		{KindCharData, ""},
		{KindEndElement, "root"},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Kind != w.kind {
			t.Errorf("token %d: kind = %v, want %v", i, toks[i].Kind, w.kind)
		}
		if w.name != "" && string(toks[i].Name) != w.name {
			t.Errorf("token %d: name = %q, want %q", i, toks[i].Name, w.name)
		}
	}
	if string(toks[2].Text) != "text" {
		t.Errorf("text token = %q, want %q", toks[2].Text, "text")
	}
	if !toks[1].SelfClosing {
		t.Errorf("child token not marked self-closing")
	}
}

func TestDecoderAttributes(t *testing.T) {
	d := NewDecoderSlice([]byte(`<e a="1" b='two' c="&amp;"/>`))
	tok, err := d.ReadToken()
	if err != nil {
		t.Fatalf("ReadToken: %v", err)
	}
	it := NewAttrIter(tok.AttrsRaw, 0)
	var got []Attr
	for {
		a, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, a)
	}
	if err := it.Err(); err != nil {
		t.Fatalf("attr iteration: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d attrs, want 3: %+v", len(got), got)
	}
	if string(got[2].Value) != "&amp;" || !got[2].NeedsUnescape {
		t.Errorf("attr c = %+v", got[2])
	}
}

func TestDecoderCDATAAndComment(t *testing.T) {
	d := NewDecoderSlice([]byte(`<r><![CDATA[a<b]]><!-- note --></r>`))
	toks, err := readAll(t, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[1].Kind != KindCDATA || string(toks[1].Text) != "a<b" {
		t.Errorf("cdata token = %+v", toks[1])
	}
	if toks[2].Kind != KindComment || string(toks[2].Text) != " note " {
		t.Errorf("comment token = %+v", toks[2])
	}
}

func TestDecoderCommentDoubleHyphenRejected(t *testing.T) {
	d := NewDecoderSlice([]byte(`<r><!-- a -- b --></r>`))
	_, _ = d.ReadToken()
	_, err := d.ReadToken()
	var ife *IllFormedError
	if !errors.As(err, &ife) || ife.Reason != ReasonDoubleHyphenInComment {
		t.Fatalf("got %v, want ReasonDoubleHyphenInComment", err)
	}
}

func TestDecoderXMLDecl(t *testing.T) {
	d := NewDecoderSlice([]byte(`<?xml version="1.0" encoding="UTF-8"?><root/>`))
	tok, err := d.ReadToken()
	if err != nil {
		t.Fatalf("ReadToken: %v", err)
	}
	if tok.Kind != KindPI || !tok.IsXMLDecl {
		t.Fatalf("token = %+v, want XML decl", tok)
	}
	if v, ok := DeclVersion(tok); !ok || v != "1.0" {
		t.Errorf("DeclVersion = %q, %v", v, ok)
	}
	if v, ok := DeclEncoding(tok); !ok || v != "UTF-8" {
		t.Errorf("DeclEncoding = %q, %v", v, ok)
	}
}

func TestDecoderXMLDeclMissingVersion(t *testing.T) {
	d := NewDecoderSlice([]byte(`<?xml encoding="UTF-8"?><root/>`))
	_, err := d.ReadToken()
	var ife *IllFormedError
	if !errors.As(err, &ife) || ife.Reason != ReasonMissingDeclVersion {
		t.Fatalf("got %v, want ReasonMissingDeclVersion", err)
	}
}

func TestDecoderEmptyPI(t *testing.T) {
	d := NewDecoderSlice([]byte(`<??><root/>`))
	tok, err := d.ReadToken()
	if err != nil {
		t.Fatalf("ReadToken: %v", err)
	}
	if tok.Kind != KindPI || len(tok.Text) != 0 {
		t.Errorf("token = %+v", tok)
	}
}

func TestDecoderDoctype(t *testing.T) {
	d := NewDecoderSlice([]byte(`<!DOCTYPE html [<!ENTITY x "y">]><html/>`))
	tok, err := d.ReadToken()
	if err != nil {
		t.Fatalf("ReadToken: %v", err)
	}
	if tok.Kind != KindDirective {
		t.Fatalf("kind = %v, want KindDirective", tok.Kind)
	}
}

func TestDecoderEmptyDoctype(t *testing.T) {
	d := NewDecoderSlice([]byte(`<!DOCTYPE><root/>`))
	_, err := d.ReadToken()
	var ife *IllFormedError
	if !errors.As(err, &ife) || ife.Reason != ReasonEmptyDocType {
		t.Fatalf("got %v, want ReasonEmptyDocType", err)
	}
}

func TestDecoderMismatchedEndTag(t *testing.T) {
	d := NewDecoderSlice([]byte(`<a><b></c></a>`))
	_, _ = d.ReadToken() // <a>
	_, _ = d.ReadToken() // <b>
	_, err := d.ReadToken()
	var ife *IllFormedError
	if !errors.As(err, &ife) || ife.Reason != ReasonMismatchedEndTag {
		t.Fatalf("got %v, want ReasonMismatchedEndTag", err)
	}
}

func TestDecoderUnmatchedEndTag(t *testing.T) {
	d := NewDecoderSlice([]byte(`</a>`))
	_, err := d.ReadToken()
	var ife *IllFormedError
	if !errors.As(err, &ife) || ife.Reason != ReasonUnmatchedEndTag {
		t.Fatalf("got %v, want ReasonUnmatchedEndTag", err)
	}
}

func TestDecoderMaxDepth(t *testing.T) {
	d := NewDecoderSlice([]byte(`<a><b><c></c></b></a>`), MaxDepth(2))
	_, _ = d.ReadToken() // <a> depth 0->1
	_, _ = d.ReadToken() // <b> depth 1->2
	_, err := d.ReadToken()
	var se *SyntaxError
	if !errors.As(err, &se) || !errors.Is(se, errDepthLimit) {
		t.Fatalf("got %v, want errDepthLimit", err)
	}
}

func TestDecoderReaderMode(t *testing.T) {
	d := NewDecoder(strings.NewReader(`<root><child>hi</child></root>`))
	toks, err := readAll(t, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) != 5 {
		t.Fatalf("got %d tokens, want 5: %+v", len(toks), toks)
	}
}

func TestDecoderUTF8BOMSkipped(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`<root/>`)...)
	d := NewDecoderSlice(data)
	tok, err := d.ReadToken()
	if err != nil {
		t.Fatalf("ReadToken: %v", err)
	}
	if string(tok.Name) != "root" {
		t.Errorf("name = %q, want root", tok.Name)
	}
}

func TestDecoderUTF16BOMRejected(t *testing.T) {
	d := NewDecoderSlice([]byte{0xFE, 0xFF, 0x00, 0x3C})
	_, err := d.ReadToken()
	var se *SyntaxError
	if !errors.As(err, &se) || !errors.Is(se, errUnsupportedEncoding) {
		t.Fatalf("got %v, want errUnsupportedEncoding", err)
	}
}

func TestDecoderUnterminatedTag(t *testing.T) {
	d := NewDecoderSlice([]byte(`<root`))
	_, err := d.ReadToken()
	var se *SyntaxError
	if !errors.As(err, &se) || !errors.Is(se, errUnterminatedTag) {
		t.Fatalf("got %v, want errUnterminatedTag", err)
	}
}

func TestDecoderStickyFatalError(t *testing.T) {
	d := NewDecoderSlice([]byte(`<root`))
	_, err1 := d.ReadToken()
	_, err2 := d.ReadToken()
	if err1 != err2 {
		t.Fatalf("expected sticky error, got %v then %v", err1, err2)
	}
}

func TestDecoderContentOutsideRoot(t *testing.T) {
	d := NewDecoderSlice([]byte(`<root/>stray`))
	_, _ = d.ReadToken()
	_, err := d.ReadToken()
	var ife *IllFormedError
	if !errors.As(err, &ife) || ife.Reason != ReasonContentOutsideRoot {
		t.Fatalf("got %v, want ReasonContentOutsideRoot", err)
	}
}
