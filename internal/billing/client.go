// Package billing holds the client for the external billing collaborator.
// The pipeline only reports consumption; reconciliation and entitlement
// refresh happen on the billing side.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// HTTPUsageRecorder posts usage increments to the billing service.
type HTTPUsageRecorder struct {
	url    string
	client *http.Client
}

// NewHTTPUsageRecorder builds a recorder for the given billing endpoint.
func NewHTTPUsageRecorder(url string, timeout time.Duration) *HTTPUsageRecorder {
	return &HTTPUsageRecorder{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Increment reports one consumed session for the account. The billing side
// treats the (account, day) pair idempotently, so at-least-once delivery is fine.
func (r *HTTPUsageRecorder) Increment(ctx context.Context, accountID string) error {
	body, err := json.Marshal(map[string]string{"account_id": accountID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling billing service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("billing service error (HTTP %d): %s", resp.StatusCode, string(msg))
	}
	return nil
}

// LogUsageRecorder is the fallback when no billing endpoint is configured.
// It keeps the pipeline observable in environments without the collaborator.
type LogUsageRecorder struct{}

// Increment logs the usage event instead of reporting it.
func (LogUsageRecorder) Increment(_ context.Context, accountID string) error {
	log.Printf("usage increment for account %s (billing endpoint not configured)", accountID)
	return nil
}
