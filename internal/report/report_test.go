package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CaseLifecycle(t *testing.T) {
	r := NewRecorder("run-1", "qa", "chromium")
	r.StartCase("valid login", "ESG-410")
	r.Step("valid login", "open_sign_in")
	r.Step("valid login", "submit_credentials")
	r.Pass("valid login")

	r.StartCase("invalid login", "")
	r.Fail("invalid login", errors.New("error banner did not contain invalid"))
	r.Artifact("invalid login", "runs/run-1/screenshots/invalid_login_read_error_banner_failed.png")

	results := r.Results()
	require.Len(t, results, 2)

	assert.Equal(t, "valid login", results[0].Name)
	assert.Equal(t, StatusPassed, results[0].Status)
	assert.Equal(t, []string{"open_sign_in", "submit_credentials"}, results[0].Steps)
	assert.Greater(t, results[0].Duration().Nanoseconds(), int64(-1))

	assert.Equal(t, StatusFailed, results[1].Status)
	assert.Equal(t, "error banner did not contain invalid", results[1].Error)
	assert.True(t, r.Failed())
}

func TestRecorder_UnknownCaseIsIgnored(t *testing.T) {
	r := NewRecorder("run-1", "qa", "chromium")
	r.Step("never started", "step")
	r.Pass("never started")
	assert.Empty(t, r.Results())
	assert.False(t, r.Failed())
}

func TestSummary_ContainsTableAndFailures(t *testing.T) {
	r := NewRecorder("run-7", "staging", "firefox")
	r.StartCase("product category", "USG-410")
	r.Pass("product category")
	r.StartCase("otp login", "")
	r.Fail("otp login", errors.New("no OTP email matching subject \"verification code\" arrived within 1m0s"))

	md := r.Summary()
	assert.Contains(t, md, "# OMSD E2E Run run-7")
	assert.Contains(t, md, "- Environment: staging")
	assert.Contains(t, md, "- Browser: firefox")
	assert.Contains(t, md, "- Cases: 2 (passed 1, failed 1, skipped 0)")
	assert.Contains(t, md, "| product category | USG-410 | passed |")
	assert.Contains(t, md, "## Failures")
	assert.Contains(t, md, "### otp login")
	assert.Contains(t, md, "no OTP email matching subject")
}

func TestSummary_EscapesTableCells(t *testing.T) {
	r := NewRecorder("run-8", "qa", "chromium")
	r.StartCase("login | pipe\ncase", "")
	r.Pass("login | pipe\ncase")

	md := r.Summary()
	assert.Contains(t, md, `login \| pipe case`)
}

func TestHTML_IsSanitized(t *testing.T) {
	r := NewRecorder("run-9", "qa", "chromium")
	r.StartCase("xss case", "")
	r.Fail("xss case", errors.New(`<script>alert("x")</script> in error`))

	out := string(r.HTML())
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<table>")
	assert.NotContains(t, out, "<script>")
}

func TestWriteHTML(t *testing.T) {
	r := NewRecorder("run-10", "qa", "chromium")
	r.StartCase("case", "")
	r.Pass("case")

	path := filepath.Join(t.TempDir(), "reports", "summary.html")
	require.NoError(t, r.WriteHTML(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "OMSD E2E Run run-10")
}

func TestRecorder_ConcurrentCases(t *testing.T) {
	r := NewRecorder("run-11", "qa", "chromium")
	var wg sync.WaitGroup
	names := []string{"a", "b", "c", "d", "e"}
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			r.StartCase(name, "ESG-410")
			r.Step(name, "open_sign_in")
			r.Pass(name)
		}(name)
	}
	wg.Wait()

	results := r.Results()
	require.Len(t, results, len(names))
	got := make([]string, 0, len(results))
	for _, c := range results {
		assert.Equal(t, StatusPassed, c.Status)
		got = append(got, c.Name)
	}
	for _, name := range names {
		assert.Contains(t, got, name)
	}
	assert.False(t, strings.Contains(r.Summary(), "running"))
}
