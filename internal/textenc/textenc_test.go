package textenc

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const sample = `{"Services/OrderService.cs": {"cyclomatic_complexity": 4}}`

func encodeUTF16(t *testing.T, s string, endian unicode.Endianness, bom unicode.BOMPolicy) []byte {
	t.Helper()
	out, err := unicode.UTF16(endian, bom).NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return out
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantBOM bool
	}{
		{"plain ascii", []byte(sample), UTF8, false},
		{"utf8 with bom", append([]byte{0xEF, 0xBB, 0xBF}, sample...), UTF8, true},
		{"utf16le with bom", encodeUTF16(t, sample, unicode.LittleEndian, unicode.UseBOM), UTF16LE, true},
		{"utf16be with bom", encodeUTF16(t, sample, unicode.BigEndian, unicode.UseBOM), UTF16BE, true},
		{"empty", []byte{}, UTF8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Detect(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Charset)
			assert.Equal(t, tt.wantBOM, d.BOM)
		})
	}
}

func TestToUTF8_DetectsUTF16(t *testing.T) {
	data := encodeUTF16(t, sample, unicode.LittleEndian, unicode.UseBOM)

	out, name, err := ToUTF8(data, true)
	require.NoError(t, err)
	assert.Equal(t, UTF16LE, name)
	assert.Equal(t, sample, string(out))
}

func TestToUTF8_DetectsLegacyCodePage(t *testing.T) {
	text := `{"Entities/Café.cs": {"cyclomatic_complexity": 4}, "Entities/Crème.cs": {"cyclomatic_complexity": 2}}`
	data, err := charmap.Windows1252.NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	out, name, err := ToUTF8(data, true)
	require.NoError(t, err)
	assert.NotEqual(t, UTF8, name)
	assert.True(t, utf8.Valid(out))
	assert.Contains(t, string(out), `"cyclomatic_complexity": 4`)
}

func TestToUTF8_WithoutDetection(t *testing.T) {
	out, name, err := ToUTF8(append([]byte{0xEF, 0xBB, 0xBF}, sample...), false)
	require.NoError(t, err)
	assert.Equal(t, UTF8, name)
	assert.Equal(t, sample, string(out))

	// UTF-16 is passed through untouched and left for the JSON decoder to reject
	raw := encodeUTF16(t, sample, unicode.LittleEndian, unicode.UseBOM)
	out, _, err = ToUTF8(raw, false)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestDecode_UnsupportedEncoding(t *testing.T) {
	_, err := Decode([]byte("abc"), "x-no-such-charset")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported encoding")
}
