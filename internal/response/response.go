// Package response separates a freeform completion into code and explanation.
package response

import (
	"strings"

	"github.com/joescharf/recode/internal/models"
)

// Markers are tried in order; the first one present in the text decides the
// split point, regardless of where other markers appear.
var Markers = []string{
	"Explanation:",
	"Explanation of Changes",
	"Provide the improved code and a clear explanation of the changes.",
}

// Split cuts raw at the first occurrence of the highest-priority marker it
// contains. Text before the marker is the code, text after it the explanation.
// Without a marker the whole (trimmed) text is treated as code.
//
// A marker inside the generated code itself (a comment reading "Explanation:",
// say) moves the split point there. Callers needing a reliable boundary should
// ask the model for delimited output instead.
func Split(raw string) models.SplitResult {
	for _, marker := range Markers {
		if before, after, found := strings.Cut(raw, marker); found {
			return models.SplitResult{
				Code:        strings.TrimSpace(before),
				Explanation: strings.TrimSpace(after),
			}
		}
	}
	return models.SplitResult{Code: strings.TrimSpace(raw)}
}
