package browser

import (
	"strings"
	"testing"

	"github.com/omsd-qa/omsd-e2e/internal/config"
)

// TestLogin_ValidCredentials signs a role in and lands on the product
// category screen.
func TestLogin_ValidCredentials(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	env := SetupSuiteEnv(t)
	env.InitBrowser(t)

	flow := env.Flow(t)
	ctx := testContext(t)

	if err := flow.Login(ctx, config.RoleSoftwareUploader); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := flow.VerifyOnHome(ctx); err != nil {
		t.Errorf("Not on the product category screen: %v", err)
	}
	if err := flow.VerifyLoggedIn(ctx, suiteDisplayName(config.RoleSoftwareUploader)); err != nil {
		t.Errorf("Display name check failed: %v", err)
	}
}

// TestLogin_InvalidCredentials submits a wrong password and expects the
// page-level error banner.
func TestLogin_InvalidCredentials(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	env := SetupSuiteEnv(t)
	env.InitBrowser(t)

	flow := env.Flow(t)
	ctx := testContext(t)

	msg, err := flow.LoginExpectingError(ctx, "invalid@olympus.example", "wrongpassword123")
	if err != nil {
		t.Fatalf("Could not read the sign-in error banner: %v", err)
	}
	if !strings.Contains(strings.ToLower(msg), "invalid") {
		t.Errorf("Error banner %q does not mention invalid credentials", msg)
	}
}

// TestLogin_DisplayNameInHeader verifies the header shows the signed-in
// account's display name.
func TestLogin_DisplayNameInHeader(t *testing.T) {
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
	name, err := flow.LoggedInUser(ctx)
	if err != nil {
		t.Fatalf("Could not read the display name: %v", err)
	}
	if want := suiteDisplayName(config.RoleCustomer); name != want {
		t.Errorf("Header shows %q, want %q", name, want)
	}
}

// TestSignOut_ReturnsToSignInForm ends the session through the account menu
// and expects the sign-in form back.
func TestSignOut_ReturnsToSignInForm(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	env := SetupSuiteEnv(t)
	env.InitBrowser(t)

	flow := env.Flow(t)
	ctx := testContext(t)

	if err := flow.Login(ctx, config.RoleDistributionManager); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := flow.SignOut(ctx); err != nil {
		t.Fatalf("Sign out failed: %v", err)
	}
}
