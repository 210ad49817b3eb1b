// Package browser runs the suite end to end: the real page and action
// layers drive a Playwright browser against the stand-in portal, with an
// in-memory IMAP server receiving its verification mail. All test files
// share one SuiteEnv via SetupSuiteEnv(t).
package browser

import (
	"context"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-imap/v2/imapserver"
	"github.com/emersion/go-imap/v2/imapserver/imapmemserver"
	"github.com/playwright-community/playwright-go"

	"github.com/omsd-qa/omsd-e2e/internal/actions"
	suitebrowser "github.com/omsd-qa/omsd-e2e/internal/browser"
	"github.com/omsd-qa/omsd-e2e/internal/config"
	"github.com/omsd-qa/omsd-e2e/internal/logutil"
	"github.com/omsd-qa/omsd-e2e/internal/obs"
	"github.com/omsd-qa/omsd-e2e/internal/omsdapp"
	"github.com/omsd-qa/omsd-e2e/internal/otp"
)

const (
	// Password shared by every seeded suite account.
	suitePassword = "browser-suite-pass-1"

	// mfaRole signs in through email MFA; every other account goes
	// straight to the landing screen.
	mfaRole = config.RoleDeviceUpdateExecutor

	imapUsername = "otp-inbox@suite.local"
	imapPassword = "suite-mailbox-secret"
)

var suiteFixtureMu sync.Mutex
var suiteSharedFixture *SuiteEnv

// SuiteEnv wires the stand-in portal, the IMAP server it delivers codes to,
// and a resolved configuration pointing the suite at both.
type SuiteEnv struct {
	Server  *httptest.Server
	BaseURL string
	App     *omsdapp.App
	Mailbox otp.Mailbox
	Cfg     *config.Config
	TempDir string

	session   *suitebrowser.Session
	browserMu sync.Mutex

	imapServer *imapserver.Server
}

// SetupSuiteEnv returns the shared suite environment, creating it on first
// use. The environment lives until TestMain tears it down.
func SetupSuiteEnv(t *testing.T) *SuiteEnv {
	t.Helper()

	suiteFixtureMu.Lock()
	defer suiteFixtureMu.Unlock()

	if suiteSharedFixture == nil {
		suiteSharedFixture = createSuiteEnv(t)
	}
	return suiteSharedFixture
}

func createSuiteEnv(t *testing.T) *SuiteEnv {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "omsd-suite-*")
	if err != nil {
		t.Fatalf("Failed to create suite temp dir: %v", err)
	}

	mailbox, imapSrv := startSuiteIMAP(t)

	app, err := omsdapp.New(omsdapp.Options{
		Mailer: omsdapp.IMAPMailer{Box: mailbox},
	})
	if err != nil {
		t.Fatalf("Failed to build stand-in portal: %v", err)
	}

	for _, role := range config.Roles {
		seed := omsdapp.SeedUser{
			Username:    suiteUsername(role),
			Password:    suitePassword,
			DisplayName: suiteDisplayName(role),
			Email:       suiteUsername(role),
			Role:        role,
		}
		if role == mfaRole {
			seed.RequireMFA = true
			seed.Email = mailbox.Username
		}
		if err := app.Users().Seed(seed); err != nil {
			t.Fatalf("Failed to seed %s: %v", role, err)
		}
	}

	server := httptest.NewServer(app.Handler())

	cfg := &config.Config{
		Env:               "suite",
		BaseURL:           server.URL,
		AppTitle:          AppTitle,
		Browser:           "chromium",
		Headless:          true,
		ViewportWidth:     1280,
		ViewportHeight:    800,
		IgnoreHTTPSErrors: true,
		ImplicitWait:      ShortTimeout,
		ExplicitWait:      ShortTimeout,
		NavigationTimeout: ShortTimeout,
		ScreenshotDir:     filepath.Join(tempDir, "screenshots"),
		OTP: config.OTPConfig{
			Email:         mailbox.Username,
			Password:      mailbox.Password,
			IMAPServer:    mailbox.Server,
			IMAPPort:      mailbox.Port,
			SubjectFilter: otp.DefaultSubjectFilter,
			Timeout:       10 * time.Second,
			PollInterval:  200 * time.Millisecond,
		},
	}
	for _, role := range config.Roles {
		cfg.SetRoleCredentials(role, config.Credentials{
			Username: suiteUsername(role),
			Password: suitePassword,
		})
	}

	return &SuiteEnv{
		Server:     server,
		BaseURL:    server.URL,
		App:        app,
		Mailbox:    mailbox,
		Cfg:        cfg,
		TempDir:    tempDir,
		imapServer: imapSrv,
	}
}

// startSuiteIMAP runs an in-memory IMAP server owned by the shared fixture.
// It is closed in TestMain, not per test, so the portal can keep delivering
// mail across test functions.
func startSuiteIMAP(t *testing.T) (otp.Mailbox, *imapserver.Server) {
	t.Helper()

	memServer := imapmemserver.New()
	user := imapmemserver.NewUser(imapUsername, imapPassword)
	if err := user.Create("INBOX", nil); err != nil {
		t.Fatalf("Failed to create INBOX: %v", err)
	}
	memServer.AddUser(user)

	server := imapserver.New(&imapserver.Options{
		NewSession: func(*imapserver.Conn) (imapserver.Session, *imapserver.GreetingData, error) {
			return memServer.NewSession(), nil, nil
		},
		InsecureAuth: true,
	})
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen for IMAP: %v", err)
	}
	go func() {
		_ = server.Serve(listener)
	}()

	return otp.Mailbox{
		Server:   "127.0.0.1",
		Port:     listener.Addr().(*net.TCPAddr).Port,
		Username: imapUsername,
		Password: imapPassword,
		Insecure: true,
	}, server
}

func cleanupSharedSuiteEnv() {
	suiteFixtureMu.Lock()
	defer suiteFixtureMu.Unlock()

	if suiteSharedFixture == nil {
		return
	}
	if suiteSharedFixture.session != nil {
		_ = suiteSharedFixture.session.Close()
	}
	if suiteSharedFixture.Server != nil {
		suiteSharedFixture.Server.Close()
	}
	if suiteSharedFixture.imapServer != nil {
		_ = suiteSharedFixture.imapServer.Close()
	}
	if suiteSharedFixture.TempDir != "" {
		_ = os.RemoveAll(suiteSharedFixture.TempDir)
	}
	suiteSharedFixture = nil
}

func TestMain(m *testing.M) {
	code := m.Run()
	cleanupSharedSuiteEnv()
	os.Exit(code)
}

// =============================================================================
// Browser lifecycle
// =============================================================================

// InitBrowser launches the suite's browser once. Skips the test when the
// Playwright driver or engine is not installed on this machine.
func (env *SuiteEnv) InitBrowser(t *testing.T) {
	t.Helper()

	env.browserMu.Lock()
	defer env.browserMu.Unlock()

	if env.session != nil {
		return
	}
	session, err := suitebrowser.Launch(suitebrowser.FromConfig(env.Cfg))
	if err != nil {
		t.Skip("Playwright not available:", err)
	}
	env.session = session
}

// NewPage opens a fresh browser context and page with the suite defaults.
// Both close when the test finishes.
func (env *SuiteEnv) NewPage(t *testing.T) playwright.Page {
	t.Helper()

	browserCtx, err := env.session.NewContext()
	if err != nil {
		t.Fatalf("Failed to create browser context: %v", err)
	}
	t.Cleanup(func() {
		_ = browserCtx.Close()
	})

	page, err := env.session.NewPage(browserCtx)
	if err != nil {
		t.Fatalf("Failed to create page: %v", err)
	}
	return page
}

// Flow builds the action layer over a fresh page.
func (env *SuiteEnv) Flow(t *testing.T) *actions.Flow {
	t.Helper()
	return actions.NewFlow(env.Cfg, env.NewPage(t))
}

// OTPCodes returns a provider reading verification codes from the fixture
// mailbox, polling fast enough for an in-process round trip.
func (env *SuiteEnv) OTPCodes() otp.CodeProvider {
	fetcher := otp.NewFetcher(env.Mailbox)
	fetcher.Timeout = 10 * time.Second
	fetcher.PollInterval = 200 * time.Millisecond
	return &otp.EmailCodeProvider{Fetcher: fetcher}
}

// testContext carries the test's name into the action step logs and
// failure screenshots.
func testContext(t *testing.T) context.Context {
	ctx := obs.WithRun(context.Background(), obs.NewRunID(), "suite")
	return obs.WithTestCase(ctx, t.Name(), "suite")
}

// =============================================================================
// Navigation and wait helpers
// =============================================================================

// Navigate opens a path on the stand-in portal and waits for DOMContentLoaded.
func Navigate(t *testing.T, page playwright.Page, baseURL, path string) {
	t.Helper()

	_, err := page.Goto(baseURL+path, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(DefaultTimeout.Milliseconds())),
	})
	if err != nil {
		t.Fatalf("Failed to navigate to %s: %v", path, err)
	}
}

// WaitForSelector waits for an element to become visible and returns its
// locator. On timeout it logs the page state before failing.
func WaitForSelector(t *testing.T, page playwright.Page, selector string) playwright.Locator {
	t.Helper()

	first := page.Locator(selector).First()
	err := first.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(DefaultTimeout.Milliseconds())),
	})
	if err != nil {
		title, _ := page.Title()
		content, _ := page.Content()
		t.Logf("Current URL: %s", page.URL())
		t.Logf("Current title: %s", title)
		t.Logf("Content preview: %s", logutil.TruncateForLog(content, 500))
		t.Fatalf("Failed to wait for selector %s: %v", selector, err)
	}
	return first
}

// =============================================================================
// Seeded account naming
// =============================================================================

// suiteUsername turns a role id into its seeded sign-in name, e.g.
// software_uploader -> software.uploader@omsd.local.
func suiteUsername(role string) string {
	return strings.ReplaceAll(role, "_", ".") + "@omsd.local"
}

// suiteDisplayName renders a role id the way the portal header shows it,
// e.g. software_uploader -> "Software Uploader".
func suiteDisplayName(role string) string {
	words := strings.Split(role, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
