// Quick HTTP checks on the stand-in portal markup. These run without
// Playwright and guard the selector contract the page objects rely on.
package browser

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

// TestQuick_SignInPageMarkup verifies the sign-in page carries the ids the
// login page object locates.
func TestQuick_SignInPageMarkup(t *testing.T) {
	env := SetupSuiteEnv(t)

	resp, err := http.Get(env.BaseURL + "/")
	if err != nil {
		t.Fatalf("Failed to get sign-in page: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	bodyStr := string(body)

	checks := []struct {
		name     string
		expected string
	}{
		{"title", "<title>" + AppTitle + "</title>"},
		{"username input", `id="signInName"`},
		{"password input", `id="password"`},
		{"next button", `id="next"`},
		{"forgot password link", `id="forgotPassword"`},
	}

	for _, check := range checks {
		if !strings.Contains(bodyStr, check.expected) {
			t.Errorf("%s not found in response", check.name)
		}
	}
}

// TestQuick_HomeRequiresSession verifies the landing screen redirects an
// unauthenticated visitor to sign-in.
func TestQuick_HomeRequiresSession(t *testing.T) {
	env := SetupSuiteEnv(t)

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get(env.BaseURL + "/home/productcategory")
	if err != nil {
		t.Fatalf("Failed to get landing screen: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("Expected status 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Errorf("Expected redirect to /, got %q", loc)
	}
}
