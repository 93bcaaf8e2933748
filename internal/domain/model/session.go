package model

// SessionStep is the user's position in the announcement flow.
type SessionStep string

const (
	StepAwaitingContent     SessionStep = "awaiting_content"
	StepAwaitingDestination SessionStep = "awaiting_destination"
)

// Session is one admin's in-progress announcement composition. The pending
// announcement lives here once content parses; there is at most one live
// session per user and it is destroyed on every terminal transition.
type Session struct {
	Step         SessionStep   `json:"step"`
	Announcement *Announcement `json:"announcement,omitempty"`
}

func NewSession() *Session {
	return &Session{Step: StepAwaitingContent}
}
