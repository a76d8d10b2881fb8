package xmlstream

import "github.com/jacoelho/xmlpull/pkg/xmltext"

// EventKind identifies the syntactic kind of an Event.
type EventKind byte

const (
	EventNone EventKind = iota
	EventStart
	EventEnd
	EventEmpty
	EventText
	EventCData
	EventComment
	EventPI
	EventDecl
	EventDocType
)

// String returns a stable name for the kind, suitable for debugging.
func (k EventKind) String() string {
	switch k {
	case EventNone:
		return "None"
	case EventStart:
		return "Start"
	case EventEnd:
		return "End"
	case EventEmpty:
		return "Empty"
	case EventText:
		return "Text"
	case EventCData:
		return "CData"
	case EventComment:
		return "Comment"
	case EventPI:
		return "PI"
	case EventDecl:
		return "Decl"
	case EventDocType:
		return "DocType"
	default:
		return "Unknown"
	}
}

// Event is one lexical unit produced by Reader.Next. Every []byte field
// aliases the Reader's internal buffer and is valid only until the next
// Next/NextRaw/Reset call. Fields not meaningful for a given Kind are left
// zero. Call Clone to retain an Event past that point.
type Event struct {
	Kind EventKind

	// Name holds the raw qualified name for Start/End/Empty. Use
	// xmltext.SplitName to split it. It is empty for PI events, whose
	// target stays at the front of Text.
	Name []byte

	// Namespace is the resolved URI of Name's prefix for Start/End/Empty,
	// computed when namespace tracking is enabled (the default path;
	// always empty for events produced by NextRaw or under
	// DisableNamespaces). Unbound (no prefix, no default namespace) is
	// reported as "" with no error, matching the recommendation's own
	// "unbound" outcome.
	Namespace string

	// AttrsRaw holds the unparsed attribute-list bytes for Start/Empty.
	// Use Attrs to scan it.
	AttrsRaw []byte

	// Text holds the raw content for Text, CData, Comment, PI, Decl, and
	// DocType events. For Decl it is the pseudo-attribute text only (use
	// xmltext.DeclVersion/DeclEncoding/DeclStandalone). For a non-Decl PI
	// it includes the target name (use xmltext.SplitPITarget).
	Text []byte

	// TextNeedsUnescape reports whether a Text event's span contains '&'.
	TextNeedsUnescape bool

	Line, Column int
}

// Attrs returns an attribute iterator over the event's AttrsRaw, following
// the same lazy, allocation-free contract as xmltext.AttrIter.
func (e Event) Attrs(opts ...xmltext.AttrIterOption) *xmltext.AttrIter {
	return xmltext.NewAttrIter(e.AttrsRaw, 0, opts...)
}

// Clone returns a copy of e whose byte slices are independently owned,
// safe to retain past the next Reader call.
func (e Event) Clone() Event {
	c := e
	c.Name = cloneBytes(e.Name)
	c.AttrsRaw = cloneBytes(e.AttrsRaw)
	c.Text = cloneBytes(e.Text)
	return c
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
