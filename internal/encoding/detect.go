package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Charset names a detected source encoding.
type Charset string

const (
	CharsetUTF8        Charset = "UTF-8"
	CharsetUTF8BOM     Charset = "UTF-8 (BOM)"
	CharsetUTF16LE     Charset = "UTF-16LE"
	CharsetUTF16BE     Charset = "UTF-16BE"
	CharsetWindows1252 Charset = "windows-1252"
	CharsetISO88599    Charset = "ISO-8859-9"
	CharsetISO885915   Charset = "ISO-8859-15"
)

var decoders = map[Charset]encoding.Encoding{
	CharsetUTF16LE:     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	CharsetUTF16BE:     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	CharsetWindows1252: charmap.Windows1252,
	CharsetISO88599:    charmap.ISO8859_9,
	CharsetISO885915:   charmap.ISO8859_15,
}

// Detect guesses the charset of a file from its first bytes: a BOM wins,
// then valid UTF-8, then chardet, then Windows-1252, which is what spreadsheet
// exports from office machines usually are.
func Detect(head []byte) Charset {
	switch {
	case bytes.HasPrefix(head, bomUTF8):
		return CharsetUTF8BOM
	case bytes.HasPrefix(head, bomUTF16LE):
		return CharsetUTF16LE
	case bytes.HasPrefix(head, bomUTF16BE):
		return CharsetUTF16BE
	}

	if validUTF8Prefix(head) {
		return CharsetUTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(head)
	if err == nil {
		switch result.Charset {
		case "ISO-8859-1", "windows-1252":
			return CharsetWindows1252
		case "ISO-8859-9":
			return CharsetISO88599
		case "ISO-8859-15":
			return CharsetISO885915
		}
	}

	return CharsetWindows1252
}

// validUTF8Prefix tolerates a multi-byte rune cut off by the sniff window.
func validUTF8Prefix(b []byte) bool {
	if utf8.Valid(b) {
		return true
	}

	if len(b) < sniffSize {
		return false
	}

	for i := 1; i < utf8.UTFMax; i++ {
		if utf8.Valid(b[:len(b)-i]) {
			return true
		}
	}

	return false
}

// NewUTF8Reader returns r decoded to UTF-8 along with the charset it was
// detected as.
func NewUTF8Reader(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	cs := Detect(head)

	switch cs {
	case CharsetUTF8:
		return br, cs, nil
	case CharsetUTF8BOM:
		_, _ = br.Discard(len(bomUTF8))
		return br, cs, nil
	}

	return transform.NewReader(br, decoders[cs].NewDecoder()), cs, nil
}
