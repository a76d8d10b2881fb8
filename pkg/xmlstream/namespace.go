package xmlstream

import (
	"fmt"

	"github.com/jacoelho/xmlpull/pkg/xmltext"
)

// NamespaceError reports a namespace-resolution failure: an element or
// attribute used a prefix with no active binding.
type NamespaceError struct {
	Prefix string
	Name   string
	Offset int64
	Line   int
	Column int
}

func (e *NamespaceError) Error() string {
	return fmt.Sprintf("xmlstream: unbound prefix %q in %q at line %d, column %d", e.Prefix, e.Name, e.Line, e.Column)
}

type nsBinding struct {
	prefix string
	uri    string
	depth  int
}

// nsStack is a flat, append-only scope stack: pushing a new element's
// declarations appends entries tagged with its depth; popping on the
// matching end tag truncates back to the entries below that depth. Lookup
// is a reverse linear scan, so the most recently pushed (innermost,
// shadowing) binding for a prefix wins.
type nsStack struct {
	bindings []nsBinding
}

func (s *nsStack) push(prefix, uri string, depth int) {
	s.bindings = append(s.bindings, nsBinding{prefix: prefix, uri: uri, depth: depth})
}

func (s *nsStack) popTo(depth int) {
	i := len(s.bindings)
	for i > 0 && s.bindings[i-1].depth > depth {
		i--
	}
	s.bindings = s.bindings[:i]
}

// lookup resolves prefix against the current scope. The empty prefix with
// no default-namespace binding resolves to ("", true): "unbound" per the
// XML Namespaces recommendation, not an error. "xml" always resolves even
// without an explicit declaration.
func (s *nsStack) lookup(prefix string) (uri string, ok bool) {
	for i := len(s.bindings) - 1; i >= 0; i-- {
		if s.bindings[i].prefix == prefix {
			return s.bindings[i].uri, true
		}
	}
	switch prefix {
	case "":
		return "", true
	case "xml":
		return xmltext.XMLNamespaceURI, true
	default:
		return "", false
	}
}

// decls returns the (prefix, uri) pairs visible in the current scope,
// most-recently-declared first, one entry per distinct prefix.
func (s *nsStack) decls() []NamespaceDecl {
	seen := make(map[string]bool, len(s.bindings))
	out := make([]NamespaceDecl, 0, len(s.bindings))
	for i := len(s.bindings) - 1; i >= 0; i-- {
		b := s.bindings[i]
		if seen[b.prefix] {
			continue
		}
		seen[b.prefix] = true
		out = append(out, NamespaceDecl{Prefix: b.prefix, URI: b.uri})
	}
	return out
}

// NamespaceDecl is one active (prefix, URI) binding, as reported by
// Reader.NamespaceDecls.
type NamespaceDecl struct {
	Prefix string
	URI    string
}

// pushElementDecls scans a Start/Empty token's attribute list for xmlns and
// xmlns:* declarations and pushes them onto the namespace stack at depth.
// It validates each binding against the reserved-prefix rules as it goes.
func (r *Reader) pushElementDecls(attrsRaw []byte, depth int) error {
	it := xmltext.NewAttrIter(attrsRaw, 0)
	for {
		attr, ok := it.Next()
		if !ok {
			break
		}
		var prefix string
		switch {
		case xmltext.IsXMLNSDecl(attr.Name):
			prefix = ""
		default:
			if declared, isDecl := xmltext.PrefixedNSDecl(attr.Name); isDecl {
				prefix = string(declared)
			} else {
				continue
			}
		}
		value := attr.Value
		if attr.NeedsUnescape {
			unescaped, err := xmltext.UnescapeWith(value, r.opts.entityResolver)
			if err != nil {
				return err
			}
			value = unescaped
		}
		uri := string(value)
		if err := xmltext.ValidatePrefixBind(prefix, uri); err != nil {
			return err
		}
		r.ns.push(prefix, uri, depth)
	}
	return it.Err()
}
