package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/bursar/internal/encoding"
)

const roster = "Roll Number;Name;Amount\nCS-014;Zoë Ångström;1.250,00\nCS-015;José Peña;980,50\n"

func readAll(t *testing.T, input []byte) (string, encoding.Charset) {
	t.Helper()

	r, cs, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), cs
}

func TestNewUTF8Reader(t *testing.T) {
	win1252, err := charmap.Windows1252.NewEncoder().String(roster)
	require.NoError(t, err)

	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(roster)
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   []byte
		charset encoding.Charset
	}{
		{name: "UTF8Passthrough", input: []byte(roster), charset: encoding.CharsetUTF8},
		{name: "UTF8BOMStripped", input: append([]byte{0xEF, 0xBB, 0xBF}, roster...), charset: encoding.CharsetUTF8BOM},
		{name: "UTF16LE", input: []byte(utf16le), charset: encoding.CharsetUTF16LE},
		// chardet may report any Latin-1 family member; they agree on these letters.
		{name: "Windows1252", input: []byte(win1252)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cs := readAll(t, tt.input)

			assert.Equal(t, roster, got)

			if tt.charset != "" {
				assert.Equal(t, tt.charset, cs)
			}
		})
	}
}

func TestNewUTF8Reader_RuneAcrossSniffWindow(t *testing.T) {
	// "é" straddles byte 4096.
	input := strings.Repeat("a", 4095) + "é" + "\n"

	got, cs := readAll(t, []byte(input))

	assert.Equal(t, encoding.CharsetUTF8, cs)
	assert.Equal(t, input, got)
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	got, cs := readAll(t, nil)

	assert.Empty(t, got)
	assert.Equal(t, encoding.CharsetUTF8, cs)
}
