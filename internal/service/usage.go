package service

import "context"

// UsageRecorder is the billing collaborator's view of consumption. The
// pipeline guards calls with the meeting's usage_counted flag so a session
// decrements the account's allotment at most once across re-runs.
type UsageRecorder interface {
	Increment(ctx context.Context, accountID string) error
}
