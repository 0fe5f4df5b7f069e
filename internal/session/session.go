// Package session tracks per-user escalation context between retrieval
// rounds: the question being served, chunks already surfaced, and the
// escalation depth. Sessions live in a bounded LRU store keyed by user
// id; eviction of an idle session only costs its "search more" history.
package session

import (
	"time"
)

// Session is the escalation context for one user. The store hands out a
// stable pointer; mutation is safe under the design assumption of one
// in-flight request per user.
type Session struct {
	// UserID is the chat-platform user key.
	UserID string

	// Question is the question the current escalation state belongs to.
	// A new question resets the session.
	Question string

	// Seen holds chunk ids already surfaced to this user for Question.
	// Expansion rounds exclude them.
	Seen map[string]struct{}

	// Round counts completed expansion rounds for Question.
	Round int

	// UpdatedAt is when the session last changed.
	UpdatedAt time.Time
}

// Reset re-targets the session at a new question.
func (s *Session) Reset(question string) {
	s.Question = question
	s.Seen = make(map[string]struct{})
	s.Round = 0
	s.UpdatedAt = time.Now()
}

// MarkSeen records surfaced chunk ids.
func (s *Session) MarkSeen(chunkIDs []string) {
	if s.Seen == nil {
		s.Seen = make(map[string]struct{})
	}
	for _, id := range chunkIDs {
		s.Seen[id] = struct{}{}
	}
	s.UpdatedAt = time.Now()
}
