package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// File is a TOML file layer. A missing file, or an empty Path, is an
// absent layer.
type File struct {
	Path string
	// ReadFile defaults to os.ReadFile.
	ReadFile ReadFileFunc
}

func (f File) Load() (map[string]any, error) {
	if f.Path == "" {
		return nil, nil
	}
	read := f.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	data, err := read(f.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	return ParseTOML(f.Path, data)
}

// ParseTOML decodes data into a map. Malformed input yields a *SyntaxError
// naming source.
func ParseTOML(source string, data []byte) (map[string]any, error) {
	var m map[string]any
	err := toml.Unmarshal(data, &m)
	if err == nil {
		return m, nil
	}
	serr := &SyntaxError{File: source, Err: err}
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		serr.Line, serr.Column = derr.Position()
	}
	return nil, serr
}

// SyntaxError locates a TOML syntax error.
type SyntaxError struct {
	File   string
	Line   int
	Column int
	Err    error
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("%s:%d:%d: %v", e.File, e.Line, e.Column, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }
