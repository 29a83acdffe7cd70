package app

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/dshills/findstorm/internal/engine/buffer"
)

// Encoding is the on-disk text encoding of a document.
type Encoding uint8

const (
	EncodingUTF8 Encoding = iota
	EncodingUTF8BOM
	EncodingUTF16LE
	EncodingUTF16BE
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingUTF8BOM:
		return "utf-8-bom"
	case EncodingUTF16LE:
		return "utf-16le"
	case EncodingUTF16BE:
		return "utf-16be"
	default:
		return "utf-8"
	}
}

func (e Encoding) codec() encoding.Encoding {
	switch e {
	case EncodingUTF8BOM:
		return unicode.UTF8BOM
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	default:
		return unicode.UTF8
	}
}

// DetectEncoding inspects the byte order mark.
func DetectEncoding(data []byte) Encoding {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return EncodingUTF8BOM
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return EncodingUTF16LE
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return EncodingUTF16BE
	default:
		return EncodingUTF8
	}
}

// Document is a file loaded into a buffer.
type Document struct {
	Path     string
	Name     string
	Buffer   *buffer.Buffer
	Encoding Encoding
	mode     os.FileMode
}

// NewDocument wraps text that did not come from disk.
func NewDocument(name, text string) *Document {
	return &Document{
		Name:   name,
		Buffer: buffer.NewBufferFromString(text, buffer.WithLineEnding(buffer.DetectLineEnding(text))),
		mode:   0o644,
	}
}

// LoadFile reads path, decoding BOM-tagged UTF-8 and UTF-16. Files without
// a BOM must be valid UTF-8.
func LoadFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &FileError{Op: "load", Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Op: "load", Path: path, Err: err}
	}

	doc, err := decodeDocument(path, data)
	if err != nil {
		return nil, &FileError{Op: "load", Path: path, Err: err}
	}
	doc.mode = info.Mode().Perm()
	return doc, nil
}

func decodeDocument(path string, data []byte) (*Document, error) {
	enc := DetectEncoding(data)
	decoded, err := (&encoding.Decoder{Transformer: unicode.BOMOverride(unicode.UTF8.NewDecoder())}).Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", enc, err)
	}
	if enc == EncodingUTF8 && (bytes.IndexByte(decoded, 0) >= 0 || !utf8.Valid(decoded)) {
		return nil, ErrBinaryFile
	}

	doc := NewDocument(filepath.Base(path), string(decoded))
	doc.Path = path
	doc.Encoding = enc
	return doc, nil
}

// Encode returns the buffer content in the document's encoding and line
// endings.
func (d *Document) Encode() ([]byte, error) {
	out, err := d.Encoding.codec().NewEncoder().Bytes([]byte(d.Buffer.Encoded()))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", d.Encoding, err)
	}
	return out, nil
}

// Save writes the document back to its path.
func (d *Document) Save() error {
	if d.Path == "" {
		return &FileError{Op: "save", Path: d.Name, Err: os.ErrInvalid}
	}
	data, err := d.Encode()
	if err != nil {
		return &FileError{Op: "save", Path: d.Path, Err: err}
	}
	if err := os.WriteFile(d.Path, data, d.mode); err != nil {
		return &FileError{Op: "save", Path: d.Path, Err: err}
	}
	return nil
}
