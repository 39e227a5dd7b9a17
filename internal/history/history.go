// Package history keeps the ordered log of rewrites made during one session.
package history

import (
	"iter"

	"github.com/joescharf/recode/internal/models"
)

// Store is an append-only revision log. It performs no locking; the owning
// session serialises access.
type Store struct {
	revisions []models.Revision
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// Append adds rev to the end of the log, stamping it with its 1-based
// sequence number, and returns the stored copy.
func (s *Store) Append(rev models.Revision) models.Revision {
	rev.Seq = len(s.revisions) + 1
	s.revisions = append(s.revisions, rev)
	return rev
}

// Len returns the number of revisions appended so far.
func (s *Store) Len() int {
	return len(s.revisions)
}

// Get returns the revision with the given sequence number.
func (s *Store) Get(seq int) (models.Revision, bool) {
	if seq < 1 || seq > len(s.revisions) {
		return models.Revision{}, false
	}
	return s.revisions[seq-1], true
}

// Latest returns the most recently appended revision.
func (s *Store) Latest() (models.Revision, bool) {
	return s.Get(len(s.revisions))
}

// Descending yields revisions from newest to oldest. Each call starts a fresh
// traversal over the revisions present when iteration begins.
func (s *Store) Descending() iter.Seq[models.Revision] {
	return func(yield func(models.Revision) bool) {
		revs := s.revisions
		for i := len(revs) - 1; i >= 0; i-- {
			if !yield(revs[i]) {
				return
			}
		}
	}
}
