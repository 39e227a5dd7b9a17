package response

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joescharf/recode/internal/models"
)

func TestSplit_NoMarker(t *testing.T) {
	got := Split("  int x = 1;\n\n")
	assert.Equal(t, models.SplitResult{Code: "int x = 1;"}, got)

	assert.Equal(t, models.SplitResult{}, Split(""))
}

func TestSplit_ExplanationColon(t *testing.T) {
	got := Split("int x = 1;\n\nExplanation:\n  Renamed the variable.  ")
	assert.Equal(t, "int x = 1;", got.Code)
	assert.Equal(t, "Renamed the variable.", got.Explanation)
}

func TestSplit_EachMarker(t *testing.T) {
	for _, marker := range Markers {
		t.Run(marker, func(t *testing.T) {
			got := Split("CODE " + marker + " WHY")
			assert.Equal(t, "CODE", got.Code)
			assert.Equal(t, "WHY", got.Explanation)
		})
	}
}

func TestSplit_PriorityFollowsListOrder(t *testing.T) {
	got := Split("X Explanation of Changes Y Explanation: Z")
	assert.Equal(t, "X Explanation of Changes Y", got.Code)
	assert.Equal(t, "Z", got.Explanation)
}

func TestSplit_SecondMarkerWhenFirstAbsent(t *testing.T) {
	got := Split("code\n### Explanation of Changes\n1. tidy")
	assert.Equal(t, "code\n###", got.Code)
	assert.Equal(t, "1. tidy", got.Explanation)
}

func TestSplit_FirstOccurrenceOnly(t *testing.T) {
	got := Split("A Explanation: B Explanation: C")
	assert.Equal(t, "A", got.Code)
	assert.Equal(t, "B Explanation: C", got.Explanation)
}

func TestSplit_MarkerAtEdges(t *testing.T) {
	got := Split("Explanation: only text")
	assert.Equal(t, "", got.Code)
	assert.Equal(t, "only text", got.Explanation)

	got = Split("only code Explanation:")
	assert.Equal(t, "only code", got.Code)
	assert.Equal(t, "", got.Explanation)
}

func TestSplit_EndToEndResponse(t *testing.T) {
	raw := "int main(){\n  // entry point\n  return 0;\n}\nExplanation: Added a comment."
	got := Split(raw)
	assert.Equal(t, "int main(){\n  // entry point\n  return 0;\n}", got.Code)
	assert.Equal(t, "Added a comment.", got.Explanation)
}
