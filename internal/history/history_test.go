package history

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/recode/internal/models"
)

func rev(code string) models.Revision {
	return models.Revision{
		Timestamp:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		OriginalCode: code,
		ImprovedCode: code + "!",
	}
}

func TestAppend_AssignsSequence(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Len())

	for i, code := range []string{"r1", "r2", "r3"} {
		stored := s.Append(rev(code))
		assert.Equal(t, i+1, stored.Seq)
		assert.Equal(t, i+1, s.Len())
	}
}

func TestAppend_IgnoresCallerSeq(t *testing.T) {
	s := New()
	r := rev("r1")
	r.Seq = 42
	assert.Equal(t, 1, s.Append(r).Seq)
}

func TestDescending(t *testing.T) {
	s := New()
	r1 := s.Append(rev("r1"))
	r2 := s.Append(rev("r2"))
	r3 := s.Append(rev("r3"))

	assert.Equal(t, []models.Revision{r3, r2, r1}, slices.Collect(s.Descending()))
}

func TestDescending_Empty(t *testing.T) {
	assert.Empty(t, slices.Collect(New().Descending()))
}

func TestDescending_Restartable(t *testing.T) {
	s := New()
	s.Append(rev("r1"))
	s.Append(rev("r2"))

	seq := s.Descending()

	// Stop the first traversal early.
	for r := range seq {
		assert.Equal(t, "r2", r.OriginalCode)
		break
	}

	second := slices.Collect(seq)
	require.Len(t, second, 2)
	assert.Equal(t, "r2", second[0].OriginalCode)
	assert.Equal(t, "r1", second[1].OriginalCode)
	assert.Equal(t, 2, s.Len(), "iteration must not mutate the store")
}

func TestDescending_SeesLaterAppends(t *testing.T) {
	s := New()
	s.Append(rev("r1"))
	seq := s.Descending()
	s.Append(rev("r2"))

	assert.Len(t, slices.Collect(seq), 2)
}

func TestGet(t *testing.T) {
	s := New()
	s.Append(rev("r1"))
	s.Append(rev("r2"))

	got, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "r1", got.OriginalCode)

	_, ok = s.Get(0)
	assert.False(t, ok)
	_, ok = s.Get(3)
	assert.False(t, ok)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, 2, latest.Seq)

	_, ok = New().Latest()
	assert.False(t, ok)
}
