package models

import "time"

const (
	FeedbackStatusNew      = "new"
	FeedbackStatusReviewed = "reviewed"
	FeedbackStatusDone     = "done"
)

// Feedback is a user-submitted feedback entry, triaged from the admin panel.
type Feedback struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidFeedbackStatus reports whether s is a known triage status.
func ValidFeedbackStatus(s string) bool {
	switch s {
	case FeedbackStatusNew, FeedbackStatusReviewed, FeedbackStatusDone:
		return true
	}
	return false
}
