package otp

import "github.com/omsd-qa/omsd-e2e/internal/config"

// MailboxFromConfig maps the suite's OTP settings onto a mailbox.
func MailboxFromConfig(o config.OTPConfig) Mailbox {
	return Mailbox{
		Server:   o.IMAPServer,
		Port:     o.IMAPPort,
		Username: o.Email,
		Password: o.Password,
	}
}

// FetcherFromConfig builds a fetcher using the configured subject filter
// and polling window.
func FetcherFromConfig(o config.OTPConfig) *Fetcher {
	f := NewFetcher(MailboxFromConfig(o))
	if o.SubjectFilter != "" {
		f.SubjectFilter = o.SubjectFilter
	}
	if o.Timeout > 0 {
		f.Timeout = o.Timeout
	}
	if o.PollInterval > 0 {
		f.PollInterval = o.PollInterval
	}
	return f
}
