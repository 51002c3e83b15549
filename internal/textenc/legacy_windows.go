//go:build windows

package textenc

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// platformLegacyEncoding returns the code page used for non-UTF-8 text on
// Windows hosts.
func platformLegacyEncoding() encoding.Encoding {
	return charmap.Windows1252
}
