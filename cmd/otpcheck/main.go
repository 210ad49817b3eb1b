// otpcheck polls the configured IMAP mailbox once and prints the newest
// verification code. Use it to debug mailbox settings before a suite run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/omsd-qa/omsd-e2e/internal/config"
	"github.com/omsd-qa/omsd-e2e/internal/otp"
)

func main() {
	env := flag.String("env", "", "target environment name (default: APP_ENV or qa)")
	configFile := flag.String("config", "config.yaml", "path to the YAML configuration file")
	subject := flag.String("subject", "", "override the mail subject filter")
	timeout := flag.Duration("timeout", 0, "override the poll window, e.g. 30s")
	flag.Parse()

	cfg, err := config.LoadConfig(config.Flags{Env: *env, ConfigFile: *configFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "otpcheck: %v\n", err)
		os.Exit(1)
	}
	if !cfg.OTP.Complete() {
		fmt.Fprintln(os.Stderr, "otpcheck: OTP mailbox is not fully configured; set OTP_EMAIL, OTP_EMAIL_PASSWORD and IMAP_SERVER")
		os.Exit(1)
	}

	fetcher := otp.FetcherFromConfig(cfg.OTP)
	if *subject != "" {
		fetcher.SubjectFilter = *subject
	}
	if *timeout > 0 {
		fetcher.Timeout = *timeout
	}

	fmt.Fprintf(os.Stderr, "polling %s for %q (up to %s)\n", cfg.OTP.Email, fetcher.SubjectFilter, fetcher.Timeout)

	ctx, cancel := context.WithTimeout(context.Background(), fetcher.Timeout+5*time.Second)
	defer cancel()
	code, err := fetcher.Fetch(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "otpcheck: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(code)
}
