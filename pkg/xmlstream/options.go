package xmlstream

import (
	"io"

	"github.com/jacoelho/xmlpull/pkg/xmltext"
)

// CharsetReaderFunc decodes a non-UTF-8 input given its XML-declared
// encoding label. It is consulted at most once, against the encoding
// pseudo-attribute of the document's own XML declaration.
type CharsetReaderFunc func(charset string, input io.Reader) (io.Reader, error)

// Options holds Reader configuration. The zero value means no overrides;
// unset fields fall back to resolveOptions' defaults. Built with the
// bare-named option constructors below and combined with JoinOptions,
// following the same functional-options idiom as xmltext.Options.
type Options struct {
	trimTextStart        bool
	trimTextEnd          bool
	expandEmptyElements  bool
	checkEndNames        bool
	allowUnmatchedEnds   bool
	disableNamespaces    bool
	entityResolver       xmltext.EntityResolver
	charsetReader        CharsetReaderFunc
	text                 xmltext.Options

	trimTextStartSet       bool
	trimTextEndSet         bool
	expandEmptyElementsSet bool
	checkEndNamesSet       bool
	allowUnmatchedEndsSet  bool
	disableNamespacesSet   bool
}

// JoinOptions combines multiple option sets in declaration order; later
// options override earlier ones when both set the same field.
func JoinOptions(srcs ...Options) Options {
	var merged Options
	for _, src := range srcs {
		merged.merge(src)
	}
	return merged
}

func (o *Options) merge(src Options) {
	if src.trimTextStartSet {
		o.trimTextStart, o.trimTextStartSet = src.trimTextStart, true
	}
	if src.trimTextEndSet {
		o.trimTextEnd, o.trimTextEndSet = src.trimTextEnd, true
	}
	if src.expandEmptyElementsSet {
		o.expandEmptyElements, o.expandEmptyElementsSet = src.expandEmptyElements, true
	}
	if src.checkEndNamesSet {
		o.checkEndNames, o.checkEndNamesSet = src.checkEndNames, true
	}
	if src.allowUnmatchedEndsSet {
		o.allowUnmatchedEnds, o.allowUnmatchedEndsSet = src.allowUnmatchedEnds, true
	}
	if src.disableNamespacesSet {
		o.disableNamespaces, o.disableNamespacesSet = src.disableNamespaces, true
	}
	if src.entityResolver != nil {
		o.entityResolver = src.entityResolver
	}
	if src.charsetReader != nil {
		o.charsetReader = src.charsetReader
	}
	o.text = xmltext.JoinOptions(o.text, src.text)
}

// TrimTextStart strips leading ASCII whitespace from each Text event.
func TrimTextStart(value bool) Options { return Options{trimTextStart: value, trimTextStartSet: true} }

// TrimTextEnd strips trailing ASCII whitespace from each Text event.
func TrimTextEnd(value bool) Options { return Options{trimTextEnd: value, trimTextEndSet: true} }

// ExpandEmptyElements turns each self-closing tag into a Start event
// followed by a synthetic End, so callers that model elements as a
// Start/End pair don't need a separate Empty case.
func ExpandEmptyElements(value bool) Options {
	return Options{expandEmptyElements: value, expandEmptyElementsSet: true}
}

// CheckEndNames enforces that an end tag's name matches the element it
// closes. Default true; disabling it tolerates mismatched end tags instead
// of surfacing an *xmltext.IllFormedError with ReasonMismatchedEndTag.
func CheckEndNames(value bool) Options { return Options{checkEndNames: value, checkEndNamesSet: true} }

// AllowUnmatchedEnds tolerates a dangling "</x>" with no open element to
// close, and an EOF with elements still open, instead of returning an
// error.
func AllowUnmatchedEnds(value bool) Options {
	return Options{allowUnmatchedEnds: value, allowUnmatchedEndsSet: true}
}

// DisableNamespaces skips namespace-scope tracking entirely: LookupNamespace
// resolves only the implicit "xml" prefix and Event.Namespace is always empty. Next still
// behaves identically otherwise; NextRaw is unaffected either way.
func DisableNamespaces(value bool) Options {
	return Options{disableNamespaces: value, disableNamespacesSet: true}
}

// EnableAllChecks is a convenience toggle for every well-formedness check
// this package and xmltext perform.
func EnableAllChecks(value bool) Options {
	return JoinOptions(
		CheckEndNames(value),
		AllowUnmatchedEnds(!value),
		Options{text: xmltext.JoinOptions(xmltext.CheckComments(value))},
	)
}

// CheckComments rejects "--" inside comment bodies; passed through to the
// underlying xmltext.Decoder.
func CheckComments(value bool) Options { return Options{text: xmltext.CheckComments(value)} }

// MaxDepth limits element nesting depth; passed through to xmltext.
func MaxDepth(value int) Options { return Options{text: xmltext.MaxDepth(value)} }

// MaxAttrs limits attributes per tag; passed through to xmltext.
func MaxAttrs(value int) Options { return Options{text: xmltext.MaxAttrs(value)} }

// MaxTokenSize limits the size of a single token's content; passed through
// to xmltext.
func MaxTokenSize(value int) Options { return Options{text: xmltext.MaxTokenSize(value)} }

// WithEntityMap registers custom entity replacements consulted by the
// escape engine whenever a name isn't one of the five predefined entities.
func WithEntityMap(m map[string]string) Options {
	return Options{entityResolver: xmltext.WithEntityMap(m)}
}

// WithCharsetReader registers a decoder for non-UTF-8 input, consulted
// against the encoding pseudo-attribute of the document's XML declaration
// when constructing a buffered Reader. It has no effect on a slice-backed
// Reader, which assumes its input is already UTF-8.
func WithCharsetReader(fn CharsetReaderFunc) Options {
	return Options{charsetReader: fn}
}

// Lenient bundles options tuned for throughput over diagnostics: namespace
// tracking off, line/column tracking off, and a conservative MaxDepth, akin
// to the teacher's FastValidation preset.
func Lenient() Options {
	return JoinOptions(
		DisableNamespaces(true),
		Options{text: xmltext.JoinOptions(xmltext.TrackLineColumn(false), xmltext.MaxDepth(4096))},
	)
}

type resolvedOptions struct {
	trimTextStart       bool
	trimTextEnd         bool
	expandEmptyElements bool
	checkEndNames       bool
	allowUnmatchedEnds  bool
	disableNamespaces   bool
	entityResolver      xmltext.EntityResolver
	charsetReader       CharsetReaderFunc
	text                xmltext.Options
}

func resolveOptions(opts Options) resolvedOptions {
	r := resolvedOptions{
		checkEndNames: true,
		text:          opts.text,
	}
	if opts.trimTextStartSet {
		r.trimTextStart = opts.trimTextStart
	}
	if opts.trimTextEndSet {
		r.trimTextEnd = opts.trimTextEnd
	}
	if opts.expandEmptyElementsSet {
		r.expandEmptyElements = opts.expandEmptyElements
	}
	if opts.checkEndNamesSet {
		r.checkEndNames = opts.checkEndNames
	}
	if opts.allowUnmatchedEndsSet {
		r.allowUnmatchedEnds = opts.allowUnmatchedEnds
	}
	if opts.disableNamespacesSet {
		r.disableNamespaces = opts.disableNamespaces
	}
	r.entityResolver = opts.entityResolver
	r.charsetReader = opts.charsetReader
	return r
}
