package xmlstream

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, r *Reader) []Event {
	t.Helper()
	var out []Event
	for {
		ev, err := r.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, ev.Clone())
	}
}

func TestReaderBasicNamespaceResolution(t *testing.T) {
	r := NewStringReaderString(`<a:root xmlns:a="urn:a"><a:child/></a:root>`)
	events := drain(t, r)
	require.Len(t, events, 3)
	require.Equal(t, EventStart, events[0].Kind)
	require.Equal(t, "urn:a", events[0].Namespace)
	require.Equal(t, EventEmpty, events[1].Kind)
	require.Equal(t, "urn:a", events[1].Namespace)
	require.Equal(t, EventEnd, events[2].Kind)
	require.Equal(t, "urn:a", events[2].Namespace)
}

func TestReaderDefaultNamespaceShadowing(t *testing.T) {
	r := NewStringReaderString(`<root xmlns="urn:outer"><inner xmlns="urn:inner"/><sibling/></root>`)
	events := drain(t, r)
	require.Len(t, events, 4)
	require.Equal(t, "urn:outer", events[0].Namespace)
	require.Equal(t, "urn:inner", events[1].Namespace)
	require.Equal(t, "urn:outer", events[2].Namespace)
	require.Equal(t, "urn:outer", events[3].Namespace)
}

func TestReaderUnboundPrefix(t *testing.T) {
	r := NewStringReaderString(`<a:root/>`)
	_, err := r.Next()
	var nsErr *NamespaceError
	require.ErrorAs(t, err, &nsErr)
	require.Equal(t, "a", nsErr.Prefix)
}

func TestReaderExpandEmptyElements(t *testing.T) {
	r := NewStringReaderString(`<root><child/></root>`, ExpandEmptyElements(true))
	events := drain(t, r)
	require.Len(t, events, 4)
	require.Equal(t, EventStart, events[1].Kind)
	require.Equal(t, EventEnd, events[2].Kind)
	require.Equal(t, "child", string(events[1].Name))
	require.Equal(t, "child", string(events[2].Name))
}

func TestReaderEmptyTextSuppressed(t *testing.T) {
	r := NewStringReaderString(`<root>   <child/>   </root>`, TrimTextStart(true), TrimTextEnd(true))
	events := drain(t, r)
	require.Len(t, events, 3) // root, child, /root -- whitespace-only text suppressed
}

func TestReaderDuplicateAttribute(t *testing.T) {
	r := NewStringReaderString(`<root a="1" a="2"/>`)
	_, err := r.Next()
	var dupErr *DuplicateAttributeError
	require.ErrorAs(t, err, &dupErr)
}

func TestReaderDuplicateResolvedAttribute(t *testing.T) {
	r := NewStringReaderString(`<root xmlns:a="urn:x" xmlns:b="urn:x" a:k="1" b:k="2"/>`)
	_, err := r.Next()
	var dupErr *DuplicateAttributeError
	require.ErrorAs(t, err, &dupErr)
}

func TestReaderCheckEndNamesDisabled(t *testing.T) {
	r := NewStringReaderString(`<a><b></c></a>`, CheckEndNames(false))
	events := drain(t, r)
	require.Len(t, events, 4)
	require.Equal(t, "c", string(events[2].Name))
	require.Equal(t, "a", string(events[3].Name))
}

func TestReaderAllowUnmatchedEnds(t *testing.T) {
	r := NewStringReaderString(`</a><root/>`, AllowUnmatchedEnds(true))
	events := drain(t, r)
	require.Len(t, events, 1)
	require.Equal(t, EventEmpty, events[0].Kind)
}

func TestReaderUnmatchedStartAtEOF(t *testing.T) {
	r := NewStringReaderString(`<root><child>`)
	var err error
	for {
		_, err = r.Next()
		if err != nil {
			break
		}
	}
	var unmatched *UnmatchedStartError
	require.ErrorAs(t, err, &unmatched)
}

func TestReaderSkipSubtree(t *testing.T) {
	r := NewStringReaderString(`<root><skip><deep/></skip><after/></root>`)
	ev, err := r.Next() // root
	require.NoError(t, err)
	require.Equal(t, EventStart, ev.Kind)
	ev, err = r.Next() // skip
	require.NoError(t, err)
	require.Equal(t, EventStart, ev.Kind)
	require.NoError(t, r.SkipSubtree())
	ev, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, "after", string(ev.Name))
}

func TestReaderReadText(t *testing.T) {
	r := NewStringReaderString(`<root>hello &amp; world</root>`)
	_, err := r.Next() // root
	require.NoError(t, err)
	text, err := r.ReadText([]byte("root"))
	require.NoError(t, err)
	require.Equal(t, "hello & world", text)
}

func TestReaderDisableNamespaces(t *testing.T) {
	r := NewStringReaderString(`<a:root xmlns:a="urn:a"/>`, DisableNamespaces(true))
	ev, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "", ev.Namespace)
}
