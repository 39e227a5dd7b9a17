// Package session holds the per-user state of an interactive rewrite session:
// its revision history and latest feedback.
package session

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/joescharf/recode/internal/apperr"
	"github.com/joescharf/recode/internal/feedback"
	"github.com/joescharf/recode/internal/history"
	"github.com/joescharf/recode/internal/models"
	"github.com/joescharf/recode/internal/prompt"
	"github.com/joescharf/recode/internal/response"
)

// Completer sends a prompt to the completion service and returns the raw text.
type Completer interface {
	Complete(ctx context.Context, p prompt.Prompt) (string, error)
}

// Session owns one history and one feedback slot. Its methods run one at a
// time; a Rewrite in progress blocks other calls on the same session.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	completer Completer
	language  string
	history   *history.Store
	feedback  *feedback.Recorder
	now       func() time.Time
}

// New creates an empty session that rewrites source in the given language.
func New(id string, c Completer, language string) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		completer: c,
		language:  language,
		history:   history.New(),
		feedback:  feedback.NewRecorder(),
		now:       time.Now,
	}
}

// Rewrite sends the request to the completion service, splits the answer
// into code and explanation, and appends the result to the history.
func (s *Session) Rewrite(ctx context.Context, req models.RewriteRequest) (models.Revision, error) {
	if strings.TrimSpace(req.SourceCode) == "" {
		return models.Revision{}, apperr.Validation("source_code", "must not be empty")
	}
	if strings.TrimSpace(req.Guidelines) == "" {
		return models.Revision{}, apperr.Validation("guidelines", "must not be empty; upload a file or pick a template")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.completer.Complete(ctx, prompt.BuildFor(s.language, req.SourceCode, req.Guidelines))
	if err != nil {
		return models.Revision{}, fmt.Errorf("rewrite: %w", err)
	}

	split := response.Split(raw)
	return s.history.Append(models.Revision{
		Timestamp:    s.now().UTC(),
		OriginalCode: req.SourceCode,
		ImprovedCode: split.Code,
		Explanation:  split.Explanation,
		Guidelines:   req.Guidelines,
		Template:     req.Template,
	}), nil
}

// Revisions returns the session's revisions, newest first. The result is
// never nil.
func (s *Session) Revisions() []models.Revision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.AppendSeq(make([]models.Revision, 0, s.history.Len()), s.history.Descending())
}

// Revision returns the revision with the given sequence number.
func (s *Session) Revision(seq int) (models.Revision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Get(seq)
}

// Latest returns the most recent revision.
func (s *Session) Latest() (models.Revision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Latest()
}

// Len returns the number of revisions in the session.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

// RecordFeedback replaces the session's feedback.
func (s *Session) RecordFeedback(rating int, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedback.Record(rating, comment)
}

// Feedback returns the session's latest feedback.
func (s *Session) Feedback() (models.Feedback, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedback.Current()
}
