package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/xmlpull/pkg/xmlstream"
	"github.com/jacoelho/xmlpull/pkg/xmlwriter"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("xmlfmt", flag.ContinueOnError)
	fs.SetOutput(stderr)
	indent := fs.Int("indent", 2, "number of spaces per indent level (0 disables indentation)")
	compact := fs.Bool("compact", false, "do not expand self-closing elements into start/end pairs")
	fs.Usage = func() {
		if err := writef(stderr, "Usage: %s [options] [file]\n\n", os.Args[0]); err != nil {
			return
		}
		if err := writeln(stderr, "Reads an XML document from file, or stdin if no file is given, and writes it back out re-indented."); err != nil {
			return
		}
		if err := writeln(stderr); err != nil {
			return
		}
		if err := writeln(stderr, "Options:"); err != nil {
			return
		}
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		if err := writeln(stderr, "error: at most one file argument is allowed"); err != nil {
			return 1
		}
		fs.Usage()
		return 2
	}

	var src io.Reader = os.Stdin
	if len(remaining) == 1 {
		f, err := os.Open(remaining[0])
		if err != nil {
			if writeErr := writef(stderr, "error opening %s: %v\n", remaining[0], err); writeErr != nil {
				return 1
			}
			return 1
		}
		defer f.Close()
		src = f
	}

	if err := format(src, stdout, *indent, *compact); err != nil {
		if writeErr := writef(stderr, "error: %v\n", err); writeErr != nil {
			return 1
		}
		return 1
	}
	return 0
}

func format(src io.Reader, dst io.Writer, indent int, compact bool) error {
	readerOpts := xmlstream.ExpandEmptyElements(!compact)
	r := xmlstream.NewReader(src, readerOpts)

	var writerOpts xmlwriter.Options
	if indent > 0 {
		writerOpts = xmlwriter.Indent(' ', indent)
	}
	w := xmlwriter.NewWriter(dst, writerOpts)

	for {
		ev, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := w.WriteEvent(ev); err != nil {
			return err
		}
	}
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
