// Package xmlstream implements a namespace-aware XML pull reader on top of
// package xmltext. It owns the open-element stack and the namespace
// binding stack, applies well-formedness policy beyond the tokenizer's own
// textual checks, and exposes both a slice-backed and an io.Reader-backed
// flavor behind the same Reader type.
//
// Events returned by Next alias the Reader's internal buffer and are valid
// only until the next call to Next, NextRaw, or Reset. Callers that need
// to retain one past that point call Event.Clone.
package xmlstream
