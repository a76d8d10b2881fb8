package xmltext

// Options holds Decoder configuration values. The zero value means no
// overrides; unset fields fall back to resolveOptions' defaults. Built
// with the With*/bare-named option constructors below and combined with
// JoinOptions, following the functional-options idiom used throughout
// this module rather than mutable setters, so a Decoder can be fully
// configured in one NewDecoder call.
type Options struct {
	maxDepth         int
	maxAttrs         int
	maxTokenSize     int
	bufferSize       int
	checkComments    bool
	allowEndTagAttrs bool
	trackLineColumn  bool

	maxDepthSet         bool
	maxAttrsSet         bool
	maxTokenSizeSet     bool
	bufferSizeSet       bool
	checkCommentsSet    bool
	allowEndTagAttrsSet bool
	trackLineColumnSet  bool
}

// JoinOptions combines multiple option sets into one in declaration
// order; later options override earlier ones when both set the same
// field.
func JoinOptions(srcs ...Options) Options {
	var merged Options
	for _, src := range srcs {
		merged.merge(src)
	}
	return merged
}

func (o *Options) merge(src Options) {
	if src.maxDepthSet {
		o.maxDepth, o.maxDepthSet = src.maxDepth, true
	}
	if src.maxAttrsSet {
		o.maxAttrs, o.maxAttrsSet = src.maxAttrs, true
	}
	if src.maxTokenSizeSet {
		o.maxTokenSize, o.maxTokenSizeSet = src.maxTokenSize, true
	}
	if src.bufferSizeSet {
		o.bufferSize, o.bufferSizeSet = src.bufferSize, true
	}
	if src.checkCommentsSet {
		o.checkComments, o.checkCommentsSet = src.checkComments, true
	}
	if src.allowEndTagAttrsSet {
		o.allowEndTagAttrs, o.allowEndTagAttrsSet = src.allowEndTagAttrs, true
	}
	if src.trackLineColumnSet {
		o.trackLineColumn, o.trackLineColumnSet = src.trackLineColumn, true
	}
}

// MaxDepth limits element nesting depth. Zero (the default) means
// unbounded.
func MaxDepth(value int) Options { return Options{maxDepth: value, maxDepthSet: true} }

// MaxAttrs limits the number of attributes the tokenizer will scan before
// reporting errAttrLimit. Zero means unbounded.
func MaxAttrs(value int) Options { return Options{maxAttrs: value, maxAttrsSet: true} }

// MaxTokenSize limits the size in bytes of a single token's content (Text
// or AttrsRaw span). Zero means unbounded.
func MaxTokenSize(value int) Options { return Options{maxTokenSize: value, maxTokenSizeSet: true} }

// BufferSize sets the initial size of the Decoder's internal buffer when
// reading from an io.Reader. It has no effect on a slice-backed Decoder.
func BufferSize(value int) Options { return Options{bufferSize: value, bufferSizeSet: true} }

// CheckComments rejects "--" inside "<!-- -->" comment bodies, per the
// XML 1.0 grammar. Default true.
func CheckComments(value bool) Options { return Options{checkComments: value, checkCommentsSet: true} }

// AllowEndTagAttrs tolerates (and discards) attributes written on a
// closing tag ("</a foo=\"bar\">"), a legacy Adobe Flash compatibility
// allowance. Default false.
func AllowEndTagAttrs(value bool) Options {
	return Options{allowEndTagAttrs: value, allowEndTagAttrsSet: true}
}

// TrackLineColumn enables 1-based line/column tracking alongside the byte
// offset. Default true; disabling it trades diagnostics for a small
// amount of throughput.
func TrackLineColumn(value bool) Options {
	return Options{trackLineColumn: value, trackLineColumnSet: true}
}

type resolvedOptions struct {
	maxDepth         int
	maxAttrs         int
	maxTokenSize     int
	bufferSize       int
	checkComments    bool
	allowEndTagAttrs bool
	trackLineColumn  bool
}

func resolveOptions(opts Options) resolvedOptions {
	r := resolvedOptions{
		bufferSize:      defaultBufferSize,
		checkComments:   true,
		trackLineColumn: true,
	}
	if opts.maxDepthSet {
		r.maxDepth = normalizeLimit(opts.maxDepth)
	}
	if opts.maxAttrsSet {
		r.maxAttrs = normalizeLimit(opts.maxAttrs)
	}
	if opts.maxTokenSizeSet {
		r.maxTokenSize = normalizeLimit(opts.maxTokenSize)
	}
	if opts.bufferSizeSet {
		r.bufferSize = normalizeLimit(opts.bufferSize)
		if r.bufferSize == 0 {
			r.bufferSize = defaultBufferSize
		}
	}
	if opts.checkCommentsSet {
		r.checkComments = opts.checkComments
	}
	if opts.allowEndTagAttrsSet {
		r.allowEndTagAttrs = opts.allowEndTagAttrs
	}
	if opts.trackLineColumnSet {
		r.trackLineColumn = opts.trackLineColumn
	}
	return r
}

func normalizeLimit(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
