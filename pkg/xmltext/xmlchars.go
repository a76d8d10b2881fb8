package xmltext

import "unicode/utf8"

var nameStartByteLUT = [utf8.RuneSelf]bool{
	':': true, '_': true,
	'A': true, 'B': true, 'C': true, 'D': true, 'E': true, 'F': true, 'G': true,
	'H': true, 'I': true, 'J': true, 'K': true, 'L': true, 'M': true, 'N': true,
	'O': true, 'P': true, 'Q': true, 'R': true, 'S': true, 'T': true, 'U': true,
	'V': true, 'W': true, 'X': true, 'Y': true, 'Z': true,
	'a': true, 'b': true, 'c': true, 'd': true, 'e': true, 'f': true, 'g': true,
	'h': true, 'i': true, 'j': true, 'k': true, 'l': true, 'm': true, 'n': true,
	'o': true, 'p': true, 'q': true, 'r': true, 's': true, 't': true, 'u': true,
	'v': true, 'w': true, 'x': true, 'y': true, 'z': true,
}

var nameByteLUT = [utf8.RuneSelf]bool{
	'-': true, '.': true, ':': true, '_': true,
	'0': true, '1': true, '2': true, '3': true, '4': true,
	'5': true, '6': true, '7': true, '8': true, '9': true,
	'A': true, 'B': true, 'C': true, 'D': true, 'E': true, 'F': true, 'G': true,
	'H': true, 'I': true, 'J': true, 'K': true, 'L': true, 'M': true, 'N': true,
	'O': true, 'P': true, 'Q': true, 'R': true, 'S': true, 'T': true, 'U': true,
	'V': true, 'W': true, 'X': true, 'Y': true, 'Z': true,
	'a': true, 'b': true, 'c': true, 'd': true, 'e': true, 'f': true, 'g': true,
	'h': true, 'i': true, 'j': true, 'k': true, 'l': true, 'm': true, 'n': true,
	'o': true, 'p': true, 'q': true, 'r': true, 's': true, 't': true, 'u': true,
	'v': true, 'w': true, 'x': true, 'y': true, 'z': true,
}

var whitespaceLUT = [256]bool{
	'\t': true,
	'\n': true,
	'\r': true,
	' ':  true,
}

func isWhitespace(b byte) bool {
	return whitespaceLUT[b]
}

func isWhitespaceBytes(data []byte) bool {
	for _, b := range data {
		if !isWhitespace(b) {
			return false
		}
	}
	return true
}

// isNameStartByte reports whether b may start an XML Name when the name is
// pure ASCII. Non-ASCII name-start characters are accepted unconditionally
// by the scanner (this module does not enforce the full Unicode NameStartChar
// production; it only rejects structurally invalid bytes).
func isNameStartByte(b byte) bool {
	return b >= utf8.RuneSelf || nameStartByteLUT[b]
}

func isNameByte(b byte) bool {
	return b >= utf8.RuneSelf || nameByteLUT[b]
}

// trimLeadingASCIISpace trims leading XML whitespace (space, tab, CR, LF).
func trimLeadingASCIISpace(b []byte) []byte {
	i := 0
	for i < len(b) && isWhitespace(b[i]) {
		i++
	}
	return b[i:]
}

// trimTrailingASCIISpace trims trailing XML whitespace (space, tab, CR, LF).
func trimTrailingASCIISpace(b []byte) []byte {
	i := len(b)
	for i > 0 && isWhitespace(b[i-1]) {
		i--
	}
	return b[:i]
}

// isValidXMLChar reports whether r is a valid XML 1.0 Char (section 2.2).
func isValidXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}

func validateXMLChars(data []byte) error {
	for len(data) > 0 {
		if data[0] < utf8.RuneSelf {
			if !isValidXMLChar(rune(data[0])) {
				return errInvalidChar
			}
			data = data[1:]
			continue
		}
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size <= 1 {
			return errInvalidChar
		}
		if !isValidXMLChar(r) {
			return errInvalidChar
		}
		data = data[size:]
	}
	return nil
}
