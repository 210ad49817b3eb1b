package browser

import (
	"testing"
)

// TestLoginWithOTP_EmailRoundTrip drives the full MFA journey: password,
// method chooser, code delivery over IMAP, fetch, verify, landing screen.
func TestLoginWithOTP_EmailRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	env := SetupSuiteEnv(t)
	env.InitBrowser(t)

	flow := env.Flow(t)
	ctx := testContext(t)

	if err := flow.LoginWithOTP(ctx, mfaRole, env.OTPCodes()); err != nil {
		t.Fatalf("Login with OTP failed: %v", err)
	}
	if err := flow.VerifyOnHome(ctx); err != nil {
		t.Errorf("Not on the product category screen after MFA: %v", err)
	}
	if err := flow.VerifyLoggedIn(ctx, suiteDisplayName(mfaRole)); err != nil {
		t.Errorf("Display name check failed: %v", err)
	}
}
