package core

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding names a supported file charset.
type Encoding string

const (
	EncodingUTF8        Encoding = "UTF-8"
	EncodingWindows1250 Encoding = "Windows-1250"
	EncodingISO88592    Encoding = "ISO-8859-2"
	EncodingWindows1252 Encoding = "Windows-1252"
	EncodingAuto        Encoding = "auto"
)

var charmaps = map[Encoding]*charmap.Charmap{
	EncodingWindows1250: charmap.Windows1250,
	EncodingISO88592:    charmap.ISO8859_2,
	EncodingWindows1252: charmap.Windows1252,
}

// Supported reports whether e can be decoded (or detected).
func (e Encoding) Supported() bool {
	if e == EncodingUTF8 || e == EncodingAuto {
		return true
	}
	_, ok := charmaps[e]
	return ok
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectEncoding guesses the charset of raw file bytes. Valid UTF-8 wins
// outright; otherwise chardet decides between the Central European
// single-byte charsets, falling back to Windows-1250.
func DetectEncoding(data []byte) Encoding {
	if bytes.HasPrefix(data, utf8BOM) || utf8.Valid(data) {
		return EncodingUTF8
	}

	res, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || res == nil {
		return EncodingWindows1250
	}
	switch strings.ToLower(res.Charset) {
	case "iso-8859-2":
		return EncodingISO88592
	case "windows-1252", "iso-8859-1":
		return EncodingWindows1252
	default:
		return EncodingWindows1250
	}
}

// Decode converts data in enc to UTF-8, dropping a UTF-8 byte order mark.
// Any byte sequence that does not decode cleanly yields an *EncodingError.
func Decode(data []byte, enc Encoding) ([]byte, Encoding, error) {
	if enc == EncodingAuto {
		enc = DetectEncoding(data)
	}

	if enc == EncodingUTF8 {
		data = bytes.TrimPrefix(data, utf8BOM)
		if off := invalidUTF8Offset(data); off >= 0 {
			return nil, enc, &EncodingError{Encoding: enc, Offset: off}
		}
		return data, enc, nil
	}

	cm, ok := charmaps[enc]
	if !ok {
		return nil, enc, &EncodingError{Encoding: enc}
	}
	out, err := decodeWith(cm.NewDecoder(), data)
	if err != nil {
		return nil, enc, &EncodingError{Encoding: enc}
	}
	// single-byte charmaps decode unassigned bytes to U+FFFD
	if i := bytes.IndexRune(out, utf8.RuneError); i >= 0 {
		return nil, enc, &EncodingError{Encoding: enc, Offset: unassignedOffset(cm, data)}
	}
	return out, enc, nil
}

func decodeWith(dec *encoding.Decoder, data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(dec, data)
	return out, err
}

func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

func unassignedOffset(cm *charmap.Charmap, data []byte) int {
	for i, b := range data {
		if cm.DecodeByte(b) == utf8.RuneError {
			return i
		}
	}
	return 0
}
