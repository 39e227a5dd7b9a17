package models

import "time"

// Rating bounds for Feedback.
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is the user's latest rating of the rewrites in a session.
type Feedback struct {
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	RecordedAt time.Time `json:"recorded_at"`
}
