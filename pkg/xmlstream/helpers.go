package xmlstream

import (
	"io"

	"github.com/jacoelho/xmlpull/pkg/xmltext"
)

// SkipSubtree consumes and discards events until the current element's
// matching end tag, without materializing them. It assumes the most
// recent event returned by Next was that element's Start.
func (r *Reader) SkipSubtree() error {
	depth := 1
	for depth > 0 {
		ev, err := r.Next()
		if err != nil {
			return err
		}
		switch ev.Kind {
		case EventStart:
			depth++
		case EventEnd:
			depth--
		}
	}
	return nil
}

// ReadText returns the decoded character data between the current
// position and the matching end tag of name, unescaping once the text
// ReadToEnd collects. Nested markup is not included: tags, comments and
// PIs of descendants are dropped, only their Text and CData content is kept.
func (r *Reader) ReadText(name []byte) (string, error) {
	raw, err := r.ReadToEnd(name)
	if err != nil {
		return "", err
	}
	unescaped, err := xmltext.UnescapeWith(raw, r.opts.entityResolver)
	if err != nil {
		return "", err
	}
	return string(unescaped), nil
}

// ReadToEnd consumes events up to and including the matching end tag of
// name, returning the concatenated raw text content encountered along the
// way (Text and CData content; Comment/PI content is not included). It errors if a
// mismatched or missing end tag is found before EOF.
func (r *Reader) ReadToEnd(name []byte) ([]byte, error) {
	var out []byte
	depth := 1
	for depth > 0 {
		ev, err := r.Next()
		if err == io.EOF {
			return out, &UnmatchedStartError{Names: []string{string(name)}}
		}
		if err != nil {
			return out, err
		}
		switch ev.Kind {
		case EventStart:
			depth++
		case EventEnd:
			depth--
		case EventText:
			out = append(out, ev.Text...)
		case EventCData:
			out = append(out, ev.Text...)
		}
	}
	return out, nil
}
