package browser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/omsd-qa/omsd-e2e/internal/config"
)

// TestFailureCapture_WritesScreenshot forces a step to fail and expects a
// screenshot of the page under the configured directory.
func TestFailureCapture_WritesScreenshot(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	env := SetupSuiteEnv(t)
	env.InitBrowser(t)

	flow := env.Flow(t)
	ctx := testContext(t)

	if err := flow.Login(ctx, config.RoleCustomer); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := flow.VerifyLoggedIn(ctx, "Nobody Expected"); err == nil {
		t.Fatal("Display name check unexpectedly passed")
	}

	caseDir := filepath.Join(env.Cfg.ScreenshotDir, "suite", t.Name())
	entries, err := os.ReadDir(caseDir)
	if err != nil {
		t.Fatalf("No screenshot directory for the failed step: %v", err)
	}
	found := false
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".png") && strings.Contains(name, "verify_display_name_failed") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("No failure screenshot in %s", caseDir)
	}
}
