//go:build windows

package runner

import (
	"github.com/osokin/treecat/internal/textenc"
	"github.com/osokin/treecat/internal/types"
)

// platformOutputDecoder decodes console tool output on Windows, where
// utilities may emit the OEM code page instead of UTF-8.
func platformOutputDecoder() OutputDecoder {
	decoder := textenc.NewDecoder(types.EncodingModeAuto)
	return func(data []byte) string {
		decodedText, decodeError := decoder.Decode(data)
		if decodeError != nil {
			return string(data)
		}
		return decodedText
	}
}
