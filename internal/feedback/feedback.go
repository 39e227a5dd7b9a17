// Package feedback holds the most recent rating a user gave in a session.
package feedback

import (
	"time"

	"github.com/joescharf/recode/internal/apperr"
	"github.com/joescharf/recode/internal/models"
)

// Recorder keeps a single feedback slot; each Record overwrites it.
type Recorder struct {
	current *models.Feedback
	now     func() time.Time
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Record stores rating and comment, replacing any earlier feedback.
// Ratings outside [models.MinRating, models.MaxRating] are rejected.
func (r *Recorder) Record(rating int, comment string) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return apperr.Validation("rating", "must be between %d and %d (got %d)", models.MinRating, models.MaxRating, rating)
	}
	r.current = &models.Feedback{
		Rating:     rating,
		Comment:    comment,
		RecordedAt: r.now().UTC(),
	}
	return nil
}

// Current returns the stored feedback, if any.
func (r *Recorder) Current() (models.Feedback, bool) {
	if r.current == nil {
		return models.Feedback{}, false
	}
	return *r.current, true
}
