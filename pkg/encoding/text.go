// Package encoding provides byte-buffer reading and text decoding for layout resource files.
package encoding

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// utf16BE decodes big-endian UTF-16 without a byte order mark.
var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// UTF16BEToUTF8 converts big-endian UTF-16 encoded bytes to a UTF-8 string.
// Decoding stops at the first NUL code unit.
func UTF16BEToUTF8(data []byte) string {
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			data = data[:i]
			break
		}
	}
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}

	result, _, err := transform.Bytes(utf16BE.NewDecoder(), data)
	if err != nil {
		// Invalid surrogates are replaced by the decoder; anything else is returned raw
		return string(data)
	}
	return string(result)
}

// UTF8ToUTF16BE converts a UTF-8 string to big-endian UTF-16 bytes without a terminator.
func UTF8ToUTF16BE(s string) []byte {
	result, _, err := transform.Bytes(utf16BE.NewEncoder(), []byte(s))
	if err != nil {
		return nil
	}
	return result
}

// FixedString converts a fixed-size, null-padded 8-bit name field to a string.
// Anything after the first null byte is ignored.
func FixedString(data []byte) string {
	if nullIdx := bytes.IndexByte(data, 0); nullIdx >= 0 {
		data = data[:nullIdx]
	}
	return string(data)
}

// PadString converts s to a fixed-size null-padded byte array, truncating if needed.
func PadString(s string, size int) []byte {
	result := make([]byte, size)
	copy(result, s)
	return result
}
