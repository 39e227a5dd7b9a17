// Package source turns uploaded bytes into text.
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/joescharf/recode/internal/apperr"
)

// MaxSize bounds how much of a single upload is read.
const MaxSize = 1 << 20

// Decode returns data as a string, or a DecodeError naming the input when the
// bytes are not valid UTF-8.
func Decode(name string, data []byte) (string, error) {
	if _, n, err := transform.Bytes(encoding.UTF8Validator, data); err != nil {
		return "", &apperr.DecodeError{Name: name, Offset: n}
	}
	return string(data), nil
}

// Read reads at most MaxSize bytes from r and decodes them.
func Read(name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > MaxSize {
		return "", apperr.Validation(name, "larger than %d bytes", MaxSize)
	}
	return Decode(name, data)
}

// ReadFile reads and decodes the file at path.
func ReadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(filepath.Base(path), f)
}
