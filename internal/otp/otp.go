// Package otp retrieves one-time verification codes from an IMAP mailbox.
// The fetcher polls the inbox for an unread message whose subject matches a
// filter and extracts the first six-digit code from the text body.
package otp

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/omsd-qa/omsd-e2e/internal/errs"
)

// Mailbox identifies one IMAP account.
type Mailbox struct {
	Server   string
	Port     int
	Username string
	Password string
	// Insecure dials without TLS. Only the in-memory test server uses this.
	Insecure bool
}

// Addr returns the host:port dial address.
func (m Mailbox) Addr() string {
	port := m.Port
	if port == 0 {
		port = 993
	}
	return fmt.Sprintf("%s:%d", m.Server, port)
}

func (m Mailbox) validate() error {
	var missing []string
	if m.Server == "" {
		missing = append(missing, "server")
	}
	if m.Username == "" {
		missing = append(missing, "username")
	}
	if m.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return errs.New(errs.InvalidArgument, "otp mailbox is not configured, missing: "+strings.Join(missing, ", "))
	}
	return nil
}

// dial connects and authenticates, returning a ready client.
func (m Mailbox) dial() (*imapclient.Client, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	var (
		client *imapclient.Client
		err    error
	)
	if m.Insecure {
		client, err = imapclient.DialInsecure(m.Addr(), nil)
	} else {
		client, err = imapclient.DialTLS(m.Addr(), nil)
	}
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, fmt.Sprintf("imap dial %s failed", m.Addr()), err)
	}

	if err := client.Login(m.Username, m.Password).Wait(); err != nil {
		_ = client.Close()
		return nil, errs.Wrap(errs.Unavailable, fmt.Sprintf("imap login as %s failed", m.Username), err)
	}
	return client, nil
}

// Message is a minimal email for delivery into a mailbox.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

func (msg Message) encode() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

// Append delivers msg into the INBOX of the given account. The stand-in
// app's mailer and the mailbox seed script deliver OTP mail through this.
func Append(box Mailbox, msg Message) error {
	client, err := box.dial()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Logout().Wait()
		_ = client.Close()
	}()

	data := msg.encode()
	cmd := client.Append("INBOX", int64(len(data)), nil)
	if _, err := cmd.Write(data); err != nil {
		return errs.Wrap(errs.Unavailable, "imap append write failed", err)
	}
	if err := cmd.Close(); err != nil {
		return errs.Wrap(errs.Unavailable, "imap append close failed", err)
	}
	if _, err := cmd.Wait(); err != nil {
		return errs.Wrap(errs.Unavailable, "imap append failed", err)
	}
	return nil
}
