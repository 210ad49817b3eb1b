// omsdapp serves a local stand-in of the delivery portal so the suite can
// run without a live environment. It seeds one demo account per suite role.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/omsd-qa/omsd-e2e/internal/config"
	"github.com/omsd-qa/omsd-e2e/internal/omsdapp"
	"github.com/omsd-qa/omsd-e2e/internal/otp"
)

var roleDisplayNames = map[string]string{
	config.RoleSoftwareUploader:                      "Pat Uploader",
	config.RoleDistributionManager:                   "Dana Manager",
	config.RoleDistributionManagerWithoutPermission:  "Robin Restricted",
	config.RoleDeviceUpdateExecutor:                  "Sam Executor",
	config.RoleDeviceUpdateExecutorWithoutPermission: "Alex Blocked",
	config.RoleCustomer:                              "Kim Customer",
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	title := flag.String("title", "", "page title shown in the browser tab")
	mfa := flag.Bool("mfa", false, "require email verification for every seeded account")
	otpIMAP := flag.Bool("otp-imap", false, "deliver verification codes over IMAP using OTP_EMAIL, OTP_EMAIL_PASSWORD, IMAP_SERVER and IMAP_PORT")
	seedPassword := flag.String("seed-password", "demo-password", "password shared by the seeded accounts")
	flag.Parse()

	// The portal reads only the mailbox variables, so a plain .env load is
	// enough; full suite validation would demand a base URL it never uses.
	_ = godotenv.Load()

	mailer, mailbox, err := buildMailer(*otpIMAP)
	if err != nil {
		log.Fatal(err)
	}

	app, err := omsdapp.New(omsdapp.Options{AppTitle: *title, Mailer: mailer})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("OMSD stand-in portal")
	fmt.Println("====================")
	for _, role := range config.Roles {
		username := demoUsername(role)
		if err := app.Users().Seed(omsdapp.SeedUser{
			Username:    username,
			Password:    *seedPassword,
			DisplayName: roleDisplayNames[role],
			Email:       demoEmail(username, mailbox),
			Role:        role,
			RequireMFA:  *mfa,
		}); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  %-40s %s\n", username, roleDisplayNames[role])
	}
	fmt.Println()
	fmt.Printf("  password for all accounts: %s\n", *seedPassword)
	if *mfa {
		if *otpIMAP {
			fmt.Printf("  verification codes: delivered to %s over IMAP\n", mailbox)
		} else {
			fmt.Println("  verification codes: printed to the server log")
		}
	}
	fmt.Println()
	fmt.Printf("listening on %s\n", *addr)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// demoUsername turns a role id into a sign-in name, e.g.
// software_uploader -> software.uploader@omsd.local.
func demoUsername(role string) string {
	return strings.ReplaceAll(role, "_", ".") + "@omsd.local"
}

// demoEmail picks where verification codes for an account go. With an IMAP
// mailbox configured every account shares it, so one inbox serves the suite.
func demoEmail(username, mailbox string) string {
	if mailbox != "" {
		return mailbox
	}
	return username
}

func buildMailer(useIMAP bool) (omsdapp.Mailer, string, error) {
	if !useIMAP {
		return omsdapp.LogMailer{}, "", nil
	}
	box := otp.Mailbox{
		Server:   os.Getenv("IMAP_SERVER"),
		Username: os.Getenv("OTP_EMAIL"),
		Password: os.Getenv("OTP_EMAIL_PASSWORD"),
	}
	if port := os.Getenv("IMAP_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return nil, "", fmt.Errorf("invalid IMAP_PORT %q", port)
		}
		box.Port = n
	}
	if box.Server == "" || box.Username == "" || box.Password == "" {
		return nil, "", fmt.Errorf("-otp-imap requires OTP_EMAIL, OTP_EMAIL_PASSWORD and IMAP_SERVER")
	}
	return omsdapp.IMAPMailer{Box: box}, box.Username, nil
}
