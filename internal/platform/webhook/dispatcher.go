// Package webhook delivers signed alert payloads to configured HTTP
// endpoints. Endpoints come from configuration (WEBHOOK_URLS plus a shared
// WEBHOOK_SECRET); every payload is signed with HMAC-SHA256 so receivers can
// verify authenticity.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the request body,
// prefixed with "sha256=".
const SignatureHeader = "X-VitalWatch-Signature"

// TimestampHeader carries the delivery time in RFC 3339.
const TimestampHeader = "X-VitalWatch-Timestamp"

// SignPayload computes an HMAC-SHA256 signature of the payload using the
// given secret, returning the hex-encoded result.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature returns true when the hex-encoded signature matches the
// HMAC-SHA256 of payload under the given secret.
func VerifySignature(payload []byte, secret, signature string) bool {
	expected := SignPayload(payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Result summarises the outcome of delivering a payload to one endpoint.
type Result struct {
	URL        string `json:"url"`
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code"`
	Error      string `json:"error,omitempty"`
}

// Dispatcher posts signed JSON payloads to a fixed set of endpoints.
// Deliveries are retried with backoff on network errors and 5xx responses;
// 4xx responses are terminal.
type Dispatcher struct {
	client *resty.Client
	urls   []string
	secret string
	logger zerolog.Logger
}

// NewDispatcher validates the endpoint URLs and builds a dispatcher. The
// timeout applies per attempt, maxRetries bounds the retries after the first
// attempt.
func NewDispatcher(urls []string, secret string, timeout time.Duration, maxRetries int, logger zerolog.Logger) (*Dispatcher, error) {
	for _, u := range urls {
		if err := validateEndpointURL(u); err != nil {
			return nil, fmt.Errorf("webhook url %q: %w", u, err)
		}
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(maxRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Dispatcher{
		client: client,
		urls:   urls,
		secret: secret,
		logger: logger,
	}, nil
}

// Enabled reports whether any endpoints are configured.
func (d *Dispatcher) Enabled() bool {
	return len(d.urls) > 0
}

// Dispatch marshals the event, signs it, and posts it to every configured
// endpoint in turn. One failing endpoint does not prevent delivery to the
// others.
func (d *Dispatcher) Dispatch(ctx context.Context, event interface{}) []Result {
	if len(d.urls) == 0 {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		d.logger.Error().Err(err).Msg("failed to marshal webhook payload")
		return nil
	}
	signature := "sha256=" + SignPayload(payload, d.secret)

	results := make([]Result, 0, len(d.urls))
	for _, endpoint := range d.urls {
		results = append(results, d.deliver(ctx, endpoint, payload, signature))
	}
	return results
}

func (d *Dispatcher) deliver(ctx context.Context, endpoint string, payload []byte, signature string) Result {
	result := Result{URL: endpoint}

	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(SignatureHeader, signature).
		SetHeader(TimestampHeader, time.Now().UTC().Format(time.RFC3339)).
		SetBody(payload).
		Post(endpoint)

	if err != nil {
		result.Error = err.Error()
		d.logger.Error().Err(err).Str("url", endpoint).Msg("webhook delivery failed")
		return result
	}

	result.StatusCode = resp.StatusCode()
	if resp.IsSuccess() {
		result.Success = true
		d.logger.Debug().Str("url", endpoint).Int("status", result.StatusCode).Msg("webhook delivered")
		return result
	}

	result.Error = fmt.Sprintf("non-2xx response: %d", result.StatusCode)
	d.logger.Error().
		Str("url", endpoint).
		Int("status", result.StatusCode).
		Msg("webhook delivery rejected")
	return result
}

// validateEndpointURL checks that the URL is non-empty and uses http or https.
func validateEndpointURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}
