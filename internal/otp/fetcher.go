package otp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"

	"github.com/omsd-qa/omsd-e2e/internal/errs"
	"github.com/omsd-qa/omsd-e2e/internal/obs"
)

// codePattern matches a standalone six-digit code. Longer digit runs never
// match, so timestamps and order numbers are skipped.
var codePattern = regexp.MustCompile(`\b\d{6}\b`)

// DefaultSubjectFilter is the subject substring OTP mail is expected to carry.
const DefaultSubjectFilter = "verification code"

// Fetcher polls a mailbox for a verification code.
type Fetcher struct {
	Mailbox       Mailbox
	SubjectFilter string
	Timeout       time.Duration
	PollInterval  time.Duration
}

// NewFetcher returns a fetcher with the default subject filter and the
// standard 60s/5s polling window.
func NewFetcher(box Mailbox) *Fetcher {
	return &Fetcher{
		Mailbox:       box,
		SubjectFilter: DefaultSubjectFilter,
		Timeout:       60 * time.Second,
		PollInterval:  5 * time.Second,
	}
}

// Fetch polls the inbox until an unread message matching the subject filter
// arrives, then returns the six-digit code from its body and marks the
// message read so a retry never reuses a code.
//
// Returns an unavailable error when the connection or login fails, a
// deadline_exceeded error when no matching mail arrives inside Timeout, and
// a not_found error when a matching mail has no code in its body.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	subject := f.SubjectFilter
	if subject == "" {
		subject = DefaultSubjectFilter
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	interval := f.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	log := obs.From(ctx).With("pkg", "otp")

	client, err := f.Mailbox.dial()
	if err != nil {
		return "", err
	}
	defer func() {
		_ = client.Logout().Wait()
		_ = client.Close()
	}()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return "", errs.Wrap(errs.Unavailable, "imap select INBOX failed", err)
	}

	log.Debug("otp_poll_start", "mailbox", f.Mailbox.Username, "subject_filter", subject, "timeout", timeout.String())

	deadline := time.Now().Add(timeout)
	attempt := 0
	for time.Now().Before(deadline) {
		attempt++
		uid, found, err := f.searchLatest(client, subject)
		if err != nil {
			return "", err
		}
		if found {
			code, err := f.readCode(client, uid)
			if err != nil {
				return "", err
			}
			log.Debug("otp_received", "attempt", attempt)
			return code, nil
		}

		log.Debug("otp_poll_empty", "attempt", attempt)
		select {
		case <-ctx.Done():
			return "", errs.Wrap(errs.DeadlineExceeded, "otp fetch canceled", ctx.Err())
		case <-time.After(interval):
		}
		// NOOP lets the server surface mail that arrived since the last search.
		_ = client.Noop().Wait()
	}

	return "", errs.New(errs.DeadlineExceeded,
		fmt.Sprintf("no OTP email matching subject %q arrived within %s", subject, timeout))
}

// searchLatest returns the highest UID among unread messages matching the
// subject filter.
func (f *Fetcher) searchLatest(client *imapclient.Client, subject string) (imap.UID, bool, error) {
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Header: []imap.SearchCriteriaHeaderField{
			{Key: "Subject", Value: subject},
		},
	}
	data, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return 0, false, errs.Wrap(errs.Unavailable, "imap search failed", err)
	}

	uids := data.AllUIDs()
	if len(uids) == 0 {
		return 0, false, nil
	}
	latest := uids[0]
	for _, uid := range uids[1:] {
		if uid > latest {
			latest = uid
		}
	}
	return latest, true, nil
}

// readCode fetches the message body, extracts the code, and marks the
// message seen.
func (f *Fetcher) readCode(client *imapclient.Client, uid imap.UID) (string, error) {
	uids := imap.UIDSetNum(uid)
	section := &imap.FetchItemBodySection{}
	msgs, err := client.Fetch(uids, &imap.FetchOptions{
		BodySection: []*imap.FetchItemBodySection{section},
	}).Collect()
	if err != nil {
		return "", errs.Wrap(errs.Unavailable, "imap fetch failed", err)
	}
	if len(msgs) == 0 {
		return "", errs.New(errs.Unavailable, "imap fetch returned no message")
	}

	raw := msgs[0].FindBodySection(section)
	code, err := ExtractCode(textBody(raw))
	if err != nil {
		return "", err
	}

	// Mark read before returning so the next fetch never sees this code again.
	if err := client.Store(uids, &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Flags:  []imap.Flag{imap.FlagSeen},
		Silent: true,
	}, nil).Close(); err != nil {
		return "", errs.Wrap(errs.Unavailable, "imap store \\Seen failed", err)
	}
	return code, nil
}

// ExtractCode returns the first standalone six-digit code in body.
func ExtractCode(body string) (string, error) {
	code := codePattern.FindString(body)
	if code == "" {
		return "", errs.New(errs.NotFound, "no verification code found in email body")
	}
	return code, nil
}

// textBody returns the text/plain part of a raw message, falling back to the
// raw bytes when parsing fails.
func textBody(raw []byte) string {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := header.ContentType()
		if err == nil && contentType != "" && contentType != "text/plain" {
			continue
		}
		body, err := io.ReadAll(part.Body)
		if err != nil {
			break
		}
		return string(body)
	}
	return string(raw)
}

// CodeProvider supplies one-time verification codes to login workflows.
type CodeProvider interface {
	Code(ctx context.Context) (string, error)
}

// EmailCodeProvider fetches codes from an IMAP mailbox.
type EmailCodeProvider struct {
	Fetcher *Fetcher
}

func (p *EmailCodeProvider) Code(ctx context.Context) (string, error) {
	return p.Fetcher.Fetch(ctx)
}

// StaticCode is a fixed code for tests.
type StaticCode string

func (s StaticCode) Code(context.Context) (string, error) {
	return string(s), nil
}
