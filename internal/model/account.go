package model

import "time"

// AccountRef identifies the verified caller. It is supplied by the upstream
// auth gateway on every request; the core never constructs one itself.
type AccountRef struct {
	ID             string
	Premium        bool
	TrialExpiresAt *time.Time
}

// Entitled reports whether the account may start recordings: premium accounts
// always, free accounts while their trial has not expired.
func (a AccountRef) Entitled(now time.Time) bool {
	if a.Premium {
		return true
	}
	if a.TrialExpiresAt == nil {
		return true
	}
	return now.Before(*a.TrialExpiresAt)
}
