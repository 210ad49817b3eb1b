// Seed a development mailbox with a fake verification mail so cmd/otpcheck
// and the fetcher can be exercised without running the portal.
//
// Usage:
//
//	go run ./scripts -code 123456
//	go run ./scripts -insecure -subject "Your OMSD verification code"
//
// The mailbox comes from OTP_EMAIL, OTP_EMAIL_PASSWORD, IMAP_SERVER and
// IMAP_PORT; a .env file in the working directory is honored.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/omsd-qa/omsd-e2e/internal/omsdapp"
	"github.com/omsd-qa/omsd-e2e/internal/otp"
)

func main() {
	code := flag.String("code", "123456", "verification code to embed in the mail body")
	subject := flag.String("subject", omsdapp.DefaultOTPSubject, "mail subject")
	insecure := flag.Bool("insecure", false, "connect without TLS (local IMAP servers)")
	flag.Parse()

	_ = godotenv.Load()

	box := otp.Mailbox{
		Server:   os.Getenv("IMAP_SERVER"),
		Username: os.Getenv("OTP_EMAIL"),
		Password: os.Getenv("OTP_EMAIL_PASSWORD"),
		Insecure: *insecure,
	}
	if port := os.Getenv("IMAP_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			log.Fatalf("invalid IMAP_PORT %q", port)
		}
		box.Port = n
	}
	if box.Server == "" || box.Username == "" || box.Password == "" {
		log.Fatal("set OTP_EMAIL, OTP_EMAIL_PASSWORD and IMAP_SERVER (a .env file works)")
	}

	err := otp.Append(box, otp.Message{
		From:    "no-reply@omsd.example",
		To:      box.Username,
		Subject: *subject,
		Body:    fmt.Sprintf("Your verification code is: %s\nThe code expires in 5 minutes.\n", *code),
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("seeded %s with subject %q\n", box.Username, *subject)
}
