package textenc_test

import (
	"encoding/binary"
	"testing"

	"github.com/osokin/treecat/internal/textenc"
	"github.com/osokin/treecat/internal/types"
)

const sampleText = "héllo — мир"

// encodeUTF16 produces BOM-prefixed UTF-16 bytes for text.
func encodeUTF16(text string, littleEndian bool) []byte {
	var encoded []byte
	appendUnit := func(unit uint16) {
		unitBytes := make([]byte, 2)
		if littleEndian {
			binary.LittleEndian.PutUint16(unitBytes, unit)
		} else {
			binary.BigEndian.PutUint16(unitBytes, unit)
		}
		encoded = append(encoded, unitBytes...)
	}
	appendUnit(0xFEFF)
	for _, textRune := range text {
		if textRune < 0x10000 {
			appendUnit(uint16(textRune))
			continue
		}
		offsetRune := textRune - 0x10000
		appendUnit(uint16(0xD800 + offsetRune>>10))
		appendUnit(uint16(0xDC00 + offsetRune&0x3FF))
	}
	return encoded
}

// encodeUTF32 produces BOM-prefixed UTF-32 bytes for text.
func encodeUTF32(text string, littleEndian bool) []byte {
	var encoded []byte
	appendCodePoint := func(codePoint uint32) {
		codePointBytes := make([]byte, 4)
		if littleEndian {
			binary.LittleEndian.PutUint32(codePointBytes, codePoint)
		} else {
			binary.BigEndian.PutUint32(codePointBytes, codePoint)
		}
		encoded = append(encoded, codePointBytes...)
	}
	appendCodePoint(0xFEFF)
	for _, textRune := range text {
		appendCodePoint(uint32(textRune))
	}
	return encoded
}

func TestDecodeBomRoundTrips(t *testing.T) {
	testCases := []struct {
		name  string
		bytes []byte
	}{
		{name: "utf8 bom", bytes: append([]byte{0xEF, 0xBB, 0xBF}, []byte(sampleText)...)},
		{name: "utf16 little endian", bytes: encodeUTF16(sampleText, true)},
		{name: "utf16 big endian", bytes: encodeUTF16(sampleText, false)},
		{name: "utf32 little endian", bytes: encodeUTF32(sampleText, true)},
		{name: "utf32 big endian", bytes: encodeUTF32(sampleText, false)},
	}

	decoder := textenc.NewDecoder(types.EncodingModeAuto)
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			decodedText, decodeError := decoder.Decode(testCase.bytes)
			if decodeError != nil {
				t.Fatalf("unexpected decode error: %v", decodeError)
			}
			if decodedText != sampleText {
				t.Fatalf("expected %q, got %q", sampleText, decodedText)
			}
		})
	}
}

func TestDecodeWithoutBom(t *testing.T) {
	autoDecoder := textenc.NewDecoder(types.EncodingModeAuto)

	validUtf8Text, decodeError := autoDecoder.Decode([]byte(sampleText))
	if decodeError != nil {
		t.Fatalf("unexpected decode error: %v", decodeError)
	}
	if validUtf8Text != sampleText {
		t.Fatalf("expected %q, got %q", sampleText, validUtf8Text)
	}

	// 0xE9 maps to é in the legacy code pages of every target platform.
	legacyText, legacyError := autoDecoder.Decode([]byte{0x61, 0xE9, 0x62})
	if legacyError != nil {
		t.Fatalf("unexpected decode error: %v", legacyError)
	}
	if legacyText != "aéb" {
		t.Fatalf("expected legacy fallback to decode aéb, got %q", legacyText)
	}
}

func TestDecodeForceLegacyIgnoresValidUtf8(t *testing.T) {
	legacyDecoder := textenc.NewDecoder(types.EncodingModeLegacy)

	// "é" in UTF-8 is 0xC3 0xA9; the legacy code page reads the bytes individually.
	decodedText, decodeError := legacyDecoder.Decode([]byte{0xC3, 0xA9})
	if decodeError != nil {
		t.Fatalf("unexpected decode error: %v", decodeError)
	}
	if decodedText == "é" {
		t.Fatalf("legacy mode must not decode as UTF-8")
	}
	if len([]rune(decodedText)) != 2 {
		t.Fatalf("expected two legacy characters, got %q", decodedText)
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	decoder := textenc.NewDecoder(types.EncodingModeAuto)
	decodedText, decodeError := decoder.Decode(nil)
	if decodeError != nil {
		t.Fatalf("unexpected decode error: %v", decodeError)
	}
	if decodedText != "" {
		t.Fatalf("expected empty text, got %q", decodedText)
	}
}

func TestIsValidUTF8(t *testing.T) {
	testCases := []struct {
		name  string
		bytes []byte
		valid bool
	}{
		{name: "ascii", bytes: []byte("plain ascii"), valid: true},
		{name: "multibyte", bytes: []byte("héllo — мир"), valid: true},
		{name: "empty", bytes: nil, valid: true},
		{name: "four byte", bytes: []byte("𝄞"), valid: true},
		{name: "stray continuation", bytes: []byte{0x80}, valid: false},
		{name: "truncated sequence", bytes: []byte{0xE2, 0x82}, valid: false},
		{name: "overlong slash", bytes: []byte{0xC0, 0xAF}, valid: false},
		{name: "overlong three byte", bytes: []byte{0xE0, 0x80, 0xAF}, valid: false},
		{name: "encoded surrogate", bytes: []byte{0xED, 0xA0, 0x80}, valid: false},
		{name: "beyond max code point", bytes: []byte{0xF4, 0x90, 0x80, 0x80}, valid: false},
		{name: "bad continuation bits", bytes: []byte{0xC3, 0x28}, valid: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if textenc.IsValidUTF8(testCase.bytes) != testCase.valid {
				t.Fatalf("expected valid=%v for % X", testCase.valid, testCase.bytes)
			}
		})
	}
}
