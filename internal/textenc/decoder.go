// Package textenc turns raw byte buffers into Unicode text using BOM
// sniffing and a strict-UTF-8-then-legacy fallback policy.
package textenc

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"github.com/osokin/treecat/internal/types"
)

const errorDecodePayloadFormat = "decoding %s payload: %w"

// bomSignature associates a byte-order-mark prefix with its decoder.
// Signatures are checked in declaration order: the UTF-32 marks must be
// probed before UTF-16 because the UTF-16LE mark is a prefix of UTF-32LE.
type bomSignature struct {
	name     string
	prefix   []byte
	encoding encoding.Encoding
}

var bomSignatures = []bomSignature{
	{name: "UTF-8", prefix: []byte{0xEF, 0xBB, 0xBF}, encoding: unicode.UTF8},
	{name: "UTF-32LE", prefix: []byte{0xFF, 0xFE, 0x00, 0x00}, encoding: utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)},
	{name: "UTF-32BE", prefix: []byte{0x00, 0x00, 0xFE, 0xFF}, encoding: utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)},
	{name: "UTF-16LE", prefix: []byte{0xFF, 0xFE}, encoding: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)},
	{name: "UTF-16BE", prefix: []byte{0xFE, 0xFF}, encoding: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
}

// Decoder decodes file bytes according to the configured no-BOM policy.
type Decoder struct {
	noBomMode      string
	legacyEncoding encoding.Encoding
}

// NewDecoder constructs a Decoder. The legacy code page is selected per
// platform at build time.
func NewDecoder(noBomMode string) *Decoder {
	return &Decoder{
		noBomMode:      noBomMode,
		legacyEncoding: platformLegacyEncoding(),
	}
}

// Decode converts raw bytes to text. The ordered policy: a recognized BOM
// wins and is stripped; otherwise the no-BOM mode decides between strict
// UTF-8 validation with legacy fallback, or unconditional legacy decoding.
// Empty input decodes to empty text.
func (decoder *Decoder) Decode(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	for _, signature := range bomSignatures {
		if !bytes.HasPrefix(data, signature.prefix) {
			continue
		}
		payload := data[len(signature.prefix):]
		decodedBytes, decodeError := signature.encoding.NewDecoder().Bytes(payload)
		if decodeError != nil {
			return "", fmt.Errorf(errorDecodePayloadFormat, signature.name, decodeError)
		}
		return string(decodedBytes), nil
	}

	if decoder.noBomMode == types.EncodingModeLegacy {
		return decoder.decodeLegacy(data)
	}

	if IsValidUTF8(data) {
		return string(data), nil
	}
	return decoder.decodeLegacy(data)
}

// decodeLegacy decodes with the platform legacy code page.
func (decoder *Decoder) decodeLegacy(data []byte) (string, error) {
	decodedBytes, decodeError := decoder.legacyEncoding.NewDecoder().Bytes(data)
	if decodeError != nil {
		return "", fmt.Errorf(errorDecodePayloadFormat, "legacy", decodeError)
	}
	return string(decodedBytes), nil
}

// IsValidUTF8 strictly validates UTF-8: it rejects incomplete multi-byte
// sequences at buffer end, stray continuation bytes, overlong encodings,
// encoded surrogate code points, and code points beyond U+10FFFF.
func IsValidUTF8(data []byte) bool {
	index := 0
	for index < len(data) {
		leadByte := data[index]

		if leadByte <= 0x7F {
			index++
			continue
		}

		var sequenceLength int
		var codePoint uint32

		switch {
		case leadByte&0xE0 == 0xC0:
			sequenceLength = 2
			codePoint = uint32(leadByte & 0x1F)
		case leadByte&0xF0 == 0xE0:
			sequenceLength = 3
			codePoint = uint32(leadByte & 0x0F)
		case leadByte&0xF8 == 0xF0:
			sequenceLength = 4
			codePoint = uint32(leadByte & 0x07)
		default:
			return false
		}

		if index+sequenceLength > len(data) {
			return false
		}

		for continuationIndex := 1; continuationIndex < sequenceLength; continuationIndex++ {
			continuationByte := data[index+continuationIndex]
			if continuationByte&0xC0 != 0x80 {
				return false
			}
			codePoint = codePoint<<6 | uint32(continuationByte&0x3F)
		}

		if sequenceLength == 2 && codePoint < 0x80 {
			return false
		}
		if sequenceLength == 3 && codePoint < 0x800 {
			return false
		}
		if sequenceLength == 4 && codePoint < 0x10000 {
			return false
		}
		if codePoint >= 0xD800 && codePoint <= 0xDFFF {
			return false
		}
		if codePoint > 0x10FFFF {
			return false
		}

		index += sequenceLength
	}
	return true
}
