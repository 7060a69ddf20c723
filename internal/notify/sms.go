package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carepulse/booking-api/pkg/logging"
)

var smsSendTracer = otel.Tracer("carepulse.internal.notify.sms_send")

const defaultTelnyxBaseURL = "https://api.telnyx.com/v2"

// SMSSender delivers a single text message to a patient's phone.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// TelnyxSender posts SMS messages using Telnyx's V2 API.
type TelnyxSender struct {
	apiKey             string
	messagingProfileID string
	from               string
	baseURL            string
	httpClient         *http.Client
	logger             *logging.Logger
}

// NewTelnyxSender builds a sender for the Telnyx V2 API.
func NewTelnyxSender(apiKey, messagingProfileID, from string, logger *logging.Logger) *TelnyxSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &TelnyxSender{
		apiKey:             apiKey,
		messagingProfileID: messagingProfileID,
		from:               from,
		baseURL:            defaultTelnyxBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

var _ SMSSender = (*TelnyxSender)(nil)

// SendSMS dispatches a single SMS. There is no retry: the workflow treats
// notification delivery as a one-shot best-effort side effect.
func (s *TelnyxSender) SendSMS(ctx context.Context, to, body string) error {
	if s.apiKey == "" {
		return errors.New("notify: sms api key missing")
	}
	if to == "" {
		return errors.New("notify: to required")
	}
	if strings.TrimSpace(body) == "" {
		return errors.New("notify: body required")
	}

	ctx, span := smsSendTracer.Start(ctx, "notify.sms.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("carepulse.to", to),
		attribute.String("carepulse.from", s.from),
	)

	payload := map[string]interface{}{
		"from": s.from,
		"to":   to,
		"text": body,
	}
	if s.messagingProfileID != "" {
		payload["messaging_profile_id"] = s.messagingProfileID
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: failed to marshal sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(s.baseURL, "/")+"/messages", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("notify: failed to build sms request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: sms request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error("sms provider returned error status",
			"status", resp.StatusCode, "to", to, "body", string(respBody))
		return fmt.Errorf("notify: sms provider returned status %d", resp.StatusCode)
	}

	s.logger.Info("sms sent", "to", to, "from", s.from)
	return nil
}

// StubSMSSender is a no-op sender for tests and unconfigured environments.
type StubSMSSender struct {
	logger *logging.Logger
}

// NewStubSMSSender creates a stub SMS sender.
func NewStubSMSSender(logger *logging.Logger) *StubSMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubSMSSender{logger: logger}
}

// SendSMS logs but doesn't send.
func (s *StubSMSSender) SendSMS(ctx context.Context, to, body string) error {
	s.logger.Info("stub SMS sender: would send", "to", to, "body_preview", truncate(body, 50))
	return nil
}

var _ SMSSender = (*StubSMSSender)(nil)

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
