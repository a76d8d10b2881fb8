package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestFormatIndents(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader(`<root><child a="1"/><child>text</child></root>`)

	if err := format(in, &out, 2, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "<root>\n  <child a=\"1\"></child>\n  <child>text</child>\n</root>"
	if got := out.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatCompactKeepsSelfClosing(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader(`<root><leaf/></root>`)

	if err := format(in, &out, 0, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "<root><leaf/></root>"
	if got := out.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRunWithArgsMissingFile(t *testing.T) {
	var out, errOut bytes.Buffer
	code := runWithArgs([]string{"/no/such/file.xml"}, &out, &errOut)
	if code != 1 {
		t.Fatalf("got exit code %d, want 1", code)
	}
	if errOut.Len() == 0 {
		t.Fatalf("expected an error message on stderr")
	}
}

func TestRunWithArgsTooManyFiles(t *testing.T) {
	var out, errOut bytes.Buffer
	code := runWithArgs([]string{"a.xml", "b.xml"}, &out, &errOut)
	if code != 2 {
		t.Fatalf("got exit code %d, want 2", code)
	}
}

func TestRunWithArgsStdin(t *testing.T) {
	// runWithArgs reads from os.Stdin when no file argument is given. This
	// test does not drive that path; the formatting it delegates to is
	// covered by TestFormatIndents/TestFormatCompactKeepsSelfClosing,
	// which call format directly instead of runWithArgs.
	t.Skip("stdin path exercised indirectly via format; see comment")
}
