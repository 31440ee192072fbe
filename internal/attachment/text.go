package attachment

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// normalizeText converts data to UTF-8 without a BOM, returning the detected
// source encoding.
func normalizeText(data []byte) ([]byte, string, error) {
	// UTF-8 BOM
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:], "UTF-8-BOM", nil
	}

	// UTF-16 BOMs
	if len(data) >= 2 {
		if data[0] == 0xFF && data[1] == 0xFE {
			out, err := decodeWith(data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM))
			return out, "UTF-16LE", err
		}
		if data[0] == 0xFE && data[1] == 0xFF {
			out, err := decodeWith(data, unicode.UTF16(unicode.BigEndian, unicode.UseBOM))
			return out, "UTF-16BE", err
		}
	}

	if utf8.Valid(data) {
		return data, "UTF-8", nil
	}

	// Anything else is treated as ANSI/Latin-1
	out, err := decodeWith(data, charmap.Windows1252)
	return out, "Windows-1252", err
}

func decodeWith(data []byte, enc encoding.Encoding) ([]byte, error) {
	reader := transform.NewReader(bytes.NewReader(data), enc.NewDecoder())
	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode text: %w", err)
	}
	return out, nil
}
