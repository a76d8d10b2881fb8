// Package xmltext implements a zero-copy, byte-level XML tokenizer.
//
// It is the lowest layer of this module: it owns a buffer of bytes read
// from an io.Reader (or wraps a caller-supplied slice) and hands out Token
// values whose fields are spans into that buffer. It has no notion of
// namespaces or open-element well-formedness beyond matching start/end tag
// names textually; those concerns live in package xmlstream.
package xmltext
