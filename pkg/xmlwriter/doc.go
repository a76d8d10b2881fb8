// Package xmlwriter serializes xmlstream events back into XML bytes.
//
// Writer is a thin, forward-only encoder: it holds no document model and
// performs no validation beyond what is needed to know where a newline and
// indent belong. Callers drive it either by feeding it events read from an
// xmlstream.Reader (WriteEvent), or by using the ElementWriter helper
// (CreateElement) to build elements by hand.
package xmlwriter
