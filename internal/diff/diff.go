// Package diff renders the difference between original and improved code.
package diff

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Unified returns a unified diff from original to improved with three lines
// of context. Identical inputs produce an empty string.
func Unified(name, original, improved string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(improved),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	}
	out, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("unified diff: %w", err)
	}
	return out, nil
}
