// Package slack posts notable triage decisions to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/careflow/internal/triage"
)

const httpTimeout = 10 * time.Second

// Notifier implements triage.Notifier against a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
	logger     log.Logger
}

// New creates a Slack notifier. If webhookURL is empty, Send is a no-op.
func New(webhookURL string, logger log.Logger) *Notifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
		logger:     logger,
	}
}

// Send posts the decision event to the configured webhook.
func (n *Notifier) Send(ctx context.Context, ev *triage.NotifyEvent) error {
	if n.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(buildMessage(ev))
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}

	n.logger.Info(ctx, "slack notification sent",
		"user_id", ev.UserID, "decision", string(ev.Decision))
	return nil
}

func buildMessage(ev *triage.NotifyEvent) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(ev),
			{"type": "divider"},
			fieldsBlock(ev),
			contextBlock(ev),
		},
	}
}

func headerBlock(ev *triage.NotifyEvent) map[string]any {
	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": fmt.Sprintf("%s %s", decisionEmoji(ev.Decision), decisionTitle(ev.Decision)),
		},
	}
}

func fieldsBlock(ev *triage.NotifyEvent) map[string]any {
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*User:* %s", ev.UserID),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Session:* %s", ev.SessionID),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Decision:* %s", ev.Decision),
		},
	}
	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func contextBlock(ev *triage.NotifyEvent) map[string]any {
	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("careflow • %s", ev.At.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}
	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func decisionEmoji(d triage.Decision) string {
	switch d {
	case triage.DecisionEmergency, triage.DecisionCrisisHelpline:
		return "\U0001f534" // red circle
	case triage.DecisionAccountSuspended:
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f7e2" // green circle
	}
}

func decisionTitle(d triage.Decision) string {
	switch d {
	case triage.DecisionEmergency:
		return "Emergency Escalation"
	case triage.DecisionCrisisHelpline:
		return "Crisis Helpline Referral"
	case triage.DecisionAccountSuspended:
		return "Account Suspended"
	default:
		return "Triage Decision"
	}
}
