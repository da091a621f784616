// Package sms sends broadcast messages over SMS gateways.
package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"conreach/internal/domain"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultTwilioURL   = "https://api.twilio.com"
	maxErrorBodyLength = 512
)

// Config selects and configures the SMS provider.
type Config struct {
	Provider   string
	AccountSID string
	AuthToken  string
	From       string
	BaseURL    string
}

// NewProvider creates an SMS MessagingProvider from config. Provider "twilio" uses the
// Twilio REST API; "noop" or unknown logs instead of sending.
func NewProvider(cfg Config, logger *slog.Logger) (domain.MessagingProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Provider {
	case "twilio":
		if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
			return nil, fmt.Errorf("sms: twilio requires account sid, auth token and from number")
		}
		return NewTwilioClient(cfg.AccountSID, cfg.AuthToken, cfg.From, cfg.BaseURL), nil
	case "noop":
		return &noopProvider{logger: logger}, nil
	default:
		logger.Warn("unknown sms provider, using noop", "provider", cfg.Provider)
		return &noopProvider{logger: logger}, nil
	}
}

// TwilioClient sends SMS through the Twilio Messages API.
type TwilioClient struct {
	AccountSID string
	AuthToken  string
	From       string
	BaseURL    string
	HTTPClient *http.Client
}

// NewTwilioClient returns a client for the given account. baseURL may be empty.
func NewTwilioClient(accountSID, authToken, from, baseURL string) *TwilioClient {
	if baseURL == "" {
		baseURL = defaultTwilioURL
	}
	return &TwilioClient{
		AccountSID: accountSID,
		AuthToken:  authToken,
		From:       from,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type twilioMessage struct {
	SID          string  `json:"sid"`
	Status       string  `json:"status"`
	ErrorCode    *int    `json:"error_code"`
	ErrorMessage *string `json:"error_message"`
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Send posts one message. A 4xx other than auth and throttling is the gateway rejecting
// this recipient and comes back as an unsuccessful SendResult; anything else is a
// transport fault wrapping domain.ErrProviderTransport.
func (c *TwilioClient) Send(ctx context.Context, destination, body string) (domain.SendResult, error) {
	form := url.Values{}
	form.Set("To", destination)
	form.Set("From", c.From)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.BaseURL, url.PathEscape(c.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("%w: build request: %w", domain.ErrProviderTransport, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.AccountSID, c.AuthToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("%w: %w", domain.ErrProviderTransport, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("%w: read response: %w", domain.ErrProviderTransport, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var msg twilioMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return domain.SendResult{}, fmt.Errorf("%w: decode response: %w", domain.ErrProviderTransport, err)
		}
		if msg.Status == "failed" || msg.Status == "undelivered" {
			reason := msg.Status
			if msg.ErrorMessage != nil && *msg.ErrorMessage != "" {
				reason = *msg.ErrorMessage
			}
			return domain.SendResult{ProviderMessageID: msg.SID, Error: reason}, nil
		}
		return domain.SendResult{Success: true, ProviderMessageID: msg.SID}, nil
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		return domain.SendResult{}, fmt.Errorf("%w: status=%d body=%s",
			domain.ErrProviderTransport, resp.StatusCode, truncate(string(raw)))
	case resp.StatusCode >= 400:
		var apiErr twilioError
		if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Message == "" {
			return domain.SendResult{Error: fmt.Sprintf("rejected: status %d", resp.StatusCode)}, nil
		}
		return domain.SendResult{Error: fmt.Sprintf("%d: %s", apiErr.Code, apiErr.Message)}, nil
	}
	return domain.SendResult{}, fmt.Errorf("%w: unexpected status=%d", domain.ErrProviderTransport, resp.StatusCode)
}

func truncate(s string) string {
	if len(s) <= maxErrorBodyLength {
		return s
	}
	return s[:maxErrorBodyLength]
}

type noopProvider struct {
	logger *slog.Logger
}

func (n *noopProvider) Send(ctx context.Context, destination, body string) (domain.SendResult, error) {
	n.logger.InfoContext(ctx, "sms would be sent (noop)", "length", len(body))
	return domain.SendResult{Success: true, ProviderMessageID: "noop"}, nil
}
