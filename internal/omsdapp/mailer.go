package omsdapp

import (
	"fmt"
	"sync"

	"github.com/omsd-qa/omsd-e2e/internal/obs"
	"github.com/omsd-qa/omsd-e2e/internal/otp"
)

// DefaultOTPSubject is the subject line codes go out under. It contains the
// suite's default subject filter.
const DefaultOTPSubject = "Your OMSD verification code"

// Mailer delivers verification codes to an account's mailbox.
type Mailer interface {
	SendOTP(to, code string) error
}

// IMAPMailer appends the code email straight to an IMAP mailbox, the same
// inbox the suite's OTP fetcher polls.
type IMAPMailer struct {
	Box     otp.Mailbox
	From    string
	Subject string
}

func (m IMAPMailer) SendOTP(to, code string) error {
	from := m.From
	if from == "" {
		from = "no-reply@omsd.example"
	}
	subject := m.Subject
	if subject == "" {
		subject = DefaultOTPSubject
	}
	return otp.Append(m.Box, otp.Message{
		From:    from,
		To:      to,
		Subject: subject,
		Body:    fmt.Sprintf("Your verification code is: %s\nThe code expires in 5 minutes.\n", code),
	})
}

// LogMailer logs issued codes instead of delivering them, so manual runs
// without a mailbox can still complete MFA. Codes here are fixtures, not
// secrets.
type LogMailer struct{}

func (LogMailer) SendOTP(to, code string) error {
	obs.Pkg("omsdapp").Info("otp_issued", "to", to, "code", code)
	return nil
}

// CapturingMailer records the last issued code for tests.
type CapturingMailer struct {
	mu   sync.Mutex
	to   string
	code string
	sent int
}

func (m *CapturingMailer) SendOTP(to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to = to
	m.code = code
	m.sent++
	return nil
}

// Last returns the most recent recipient and code.
func (m *CapturingMailer) Last() (to, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.to, m.code
}

func (m *CapturingMailer) Sent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent
}
