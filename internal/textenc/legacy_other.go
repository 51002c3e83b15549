//go:build !windows

package textenc

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// platformLegacyEncoding returns the code page used for non-UTF-8 text on
// non-Windows hosts. ISO 8859-1 maps every byte to a code point, so legacy
// fallback decoding can never fail.
func platformLegacyEncoding() encoding.Encoding {
	return charmap.ISO8859_1
}
