// Package notify delivers run-completion notices. When notifications are
// configured the suite sends one email per run with the HTML summary.
package notify

import (
	"fmt"
	"strings"
	"sync"

	"github.com/resend/resend-go/v3"

	"github.com/omsd-qa/omsd-e2e/internal/config"
	"github.com/omsd-qa/omsd-e2e/internal/errs"
	"github.com/omsd-qa/omsd-e2e/internal/obs"
)

// Notifier delivers one run notice.
type Notifier interface {
	Send(subject, htmlBody string) error
}

// SubjectFor builds the notice subject line for a run.
func SubjectFor(runID, env string, failed bool) string {
	outcome := "PASSED"
	if failed {
		outcome = "FAILED"
	}
	return fmt.Sprintf("OMSD E2E %s on %s: %s", runID, env, outcome)
}

// SplitRecipients parses a comma-separated recipient list, dropping empty
// entries.
func SplitRecipients(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ResendNotifier sends notices through the Resend API.
type ResendNotifier struct {
	client *resend.Client
	from   string
	to     []string
}

// NewResendNotifier creates a notifier. from must be a sender verified in
// Resend.
func NewResendNotifier(apiKey, from string, to []string) *ResendNotifier {
	return &ResendNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
	}
}

// NewResendNotifierFromConfig builds a notifier from the suite's
// notification settings.
func NewResendNotifierFromConfig(cfg config.NotifyConfig) *ResendNotifier {
	return NewResendNotifier(cfg.ResendAPIKey, cfg.From, SplitRecipients(cfg.To))
}

func (n *ResendNotifier) Send(subject, htmlBody string) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: subject,
		Html:    htmlBody,
	}
	if _, err := n.client.Emails.Send(params); err != nil {
		return errs.Wrap(errs.Unavailable, "send run notice failed", err)
	}
	obs.Pkg("notify").Info("notice_sent", "subject", subject, "recipients", len(n.to))
	return nil
}

// Notice is a captured notification for testing.
type Notice struct {
	Subject string
	HTML    string
}

// MockNotifier captures notices instead of sending them.
type MockNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Send(subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, Notice{Subject: subject, HTML: htmlBody})
	return nil
}

// Last returns the most recent notice, or the zero value when none were
// sent.
func (m *MockNotifier) Last() Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.notices) == 0 {
		return Notice{}
	}
	return m.notices[len(m.notices)-1]
}

func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notices)
}

func (m *MockNotifier) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = nil
}
