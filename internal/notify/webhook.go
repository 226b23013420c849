package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"time"

	"billfeed/internal"
)

// Channel delivers a run summary to a chat endpoint.
type Channel interface {
	Send(ctx context.Context, message string) error
}

type payload struct {
	Text string `json:"text"`
}

// Webhook posts messages as {"text": ...} to a fixed URL. Only HTTP 200
// counts as delivered; retryable statuses and transport errors get a bounded
// backoff before giving up with a DeliveryError.
type Webhook struct {
	url      string
	client   *http.Client
	attempts int
}

func NewWebhook(url string, timeout time.Duration, attempts int) *Webhook {
	if attempts < 1 {
		attempts = 1
	}
	return &Webhook{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		attempts: attempts,
	}
}

func (w *Webhook) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(payload{Text: message})
	if err != nil {
		return &internal.DeliveryError{Err: err}
	}

	var lastErr error
	lastStatus := 0
	for attempt := 1; attempt <= w.attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return &internal.DeliveryError{Err: err}
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			lastErr = err
			lastStatus = 0
		} else {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			lastErr = nil
			lastStatus = resp.StatusCode
			if !isRetryableStatus(resp.StatusCode) {
				return &internal.DeliveryError{Status: resp.StatusCode}
			}
		}

		if attempt < w.attempts {
			backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
			time.Sleep(backoff)
		}
	}
	return &internal.DeliveryError{Status: lastStatus, Err: lastErr}
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
