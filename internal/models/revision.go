package models

import "time"

// Revision records one completed rewrite within a session.
// Revisions are immutable once appended to a session's history.
type Revision struct {
	Seq          int       `json:"seq"`
	Timestamp    time.Time `json:"timestamp"`
	OriginalCode string    `json:"original_code"`
	ImprovedCode string    `json:"improved_code"`
	Explanation  string    `json:"explanation"`
	Guidelines   string    `json:"guidelines,omitempty"`
	Template     string    `json:"template,omitempty"`
}
