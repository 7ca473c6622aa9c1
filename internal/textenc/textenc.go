// Package textenc detects the byte encoding of a text document and transcodes it to UTF-8
package textenc

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Canonical names for the encodings recognised without statistics
const (
	UTF8    = "UTF-8"
	UTF16LE = "UTF-16LE"
	UTF16BE = "UTF-16BE"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Detection is the outcome of sniffing a byte slice
type Detection struct {
	// Charset is the detected encoding label, e.g. "UTF-8" or "windows-1252"
	Charset string

	// Confidence ranges from 0 to 100
	Confidence int

	// BOM is true when a byte-order mark decided the encoding
	BOM bool
}

// Detect guesses the encoding of data. A byte-order mark wins, then valid
// UTF-8; anything else goes through statistical detection.
func Detect(data []byte) (Detection, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return Detection{Charset: UTF8, Confidence: 100, BOM: true}, nil
	case bytes.HasPrefix(data, bomUTF16LE):
		return Detection{Charset: UTF16LE, Confidence: 100, BOM: true}, nil
	case bytes.HasPrefix(data, bomUTF16BE):
		return Detection{Charset: UTF16BE, Confidence: 100, BOM: true}, nil
	}

	if utf8.Valid(data) {
		return Detection{Charset: UTF8, Confidence: 100}, nil
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return Detection{}, fmt.Errorf("encoding detection failed: %w", err)
	}
	return Detection{Charset: result.Charset, Confidence: result.Confidence}, nil
}

// Decode transcodes data from the named encoding to UTF-8, dropping any byte-order mark
func Decode(data []byte, name string) ([]byte, error) {
	enc, canonical := charset.Lookup(strings.ToLower(name))
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", canonical, err)
	}
	return out, nil
}

// ToUTF8 returns data as UTF-8 together with the encoding it was read as.
// With detect off the input must already be UTF-8; only a leading BOM is removed.
func ToUTF8(data []byte, detect bool) ([]byte, string, error) {
	if !detect {
		return bytes.TrimPrefix(data, bomUTF8), UTF8, nil
	}

	d, err := Detect(data)
	if err != nil {
		return nil, "", err
	}

	if d.Charset == UTF8 {
		return bytes.TrimPrefix(data, bomUTF8), UTF8, nil
	}

	out, err := Decode(data, d.Charset)
	if err != nil {
		return nil, d.Charset, err
	}
	return out, d.Charset, nil
}
