package browser

import (
	"testing"

	"github.com/omsd-qa/omsd-e2e/internal/config"
	"github.com/omsd-qa/omsd-e2e/internal/pages"
)

// TestCookieBanner_AcceptedOncePerBrowser accepts the consent banner on the
// first visit and expects it gone after a reload.
func TestCookieBanner_AcceptedOncePerBrowser(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	env := SetupSuiteEnv(t)
	env.InitBrowser(t)

	page := env.NewPage(t)
	creds, err := env.Cfg.RoleCredentials(config.RoleCustomer)
	if err != nil {
		t.Fatalf("Missing customer credentials: %v", err)
	}

	login := pages.NewLoginPage(page, env.BaseURL)
	if err := login.Open(); err != nil {
		t.Fatalf("Could not open the sign-in page: %v", err)
	}
	if err := login.SignIn(creds.Username, creds.Password); err != nil {
		t.Fatalf("Sign in failed: %v", err)
	}

	home := pages.NewHomePage(page)
	accepted, err := home.AcceptCookiesIfPresent()
	if err != nil {
		t.Fatalf("Accepting the consent banner failed: %v", err)
	}
	if !accepted {
		t.Fatal("Consent banner did not appear on the first visit")
	}
	if err := home.WaitLoaded(); err != nil {
		t.Fatalf("Landing screen did not load after accepting cookies: %v", err)
	}

	if _, err := page.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	accepted, err = home.AcceptCookiesIfPresent()
	if err != nil {
		t.Fatalf("Probing for the consent banner failed: %v", err)
	}
	if accepted {
		t.Error("Consent banner reappeared after it was accepted")
	}
	if err := home.WaitLoaded(); err != nil {
		t.Fatalf("Landing screen did not load after reload: %v", err)
	}
}
