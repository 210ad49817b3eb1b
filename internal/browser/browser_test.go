package browser

import (
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/omsd-qa/omsd-e2e/internal/config"
)

func TestEngineFor(t *testing.T) {
	cases := []struct {
		browser string
		engine  string
		channel string
	}{
		{"chrome", "chromium", ""},
		{"chromium", "chromium", ""},
		{"edge", "chromium", "msedge"},
		{"firefox", "firefox", ""},
		{"webkit", "webkit", ""},
		{"", "chromium", ""},
		{"netscape", "chromium", ""},
	}
	for _, tc := range cases {
		got := EngineFor(tc.browser)
		assert.Equal(t, tc.engine, got.Name, "browser %q", tc.browser)
		assert.Equal(t, tc.channel, got.Channel, "browser %q", tc.browser)
	}
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "ESG-410", SanitizeName("ESG-410"))
	assert.Equal(t, "valid_login_v01.00", SanitizeName("valid login/v01.00"))
	assert.Equal(t, "a_b_c", SanitizeName(`a\b:c`))
	assert.Equal(t, "unnamed", SanitizeName(""))
}

func TestSanitizeName_NeverEmitsUnsafeCharacters(t *testing.T) {
	safe := regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		got := SanitizeName(s)
		if !safe.MatchString(got) {
			t.Fatalf("SanitizeName(%q) = %q contains unsafe characters", s, got)
		}
	})
}

func TestScreenshotPath(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	got := ScreenshotPath("/tmp/shots", "ESG-410", "valid login", "after signin", at)
	want := filepath.Join("/tmp/shots", "ESG-410", "valid_login", "ESG-410_valid_login_after_signin_20260314_092653.png")
	assert.Equal(t, want, got)
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		Browser:           "firefox",
		Headless:          true,
		SlowMo:            250 * time.Millisecond,
		ViewportWidth:     1280,
		ViewportHeight:    720,
		IgnoreHTTPSErrors: true,
		Video:             true,
		VideoDir:          "/tmp/videos",
		Tracing:           true,
		ImplicitWait:      15 * time.Second,
		NavigationTimeout: 60 * time.Second,
	}
	opts := FromConfig(cfg)
	assert.Equal(t, "firefox", opts.Browser)
	assert.True(t, opts.Headless)
	assert.Equal(t, 250*time.Millisecond, opts.SlowMo)
	assert.Equal(t, 1280, opts.ViewportWidth)
	assert.Equal(t, 720, opts.ViewportHeight)
	assert.True(t, opts.IgnoreHTTPSErrors)
	assert.True(t, opts.Video)
	assert.Equal(t, "/tmp/videos", opts.VideoDir)
	assert.True(t, opts.Tracing)
	assert.Equal(t, 15*time.Second, opts.ImplicitWait)
	assert.Equal(t, 60*time.Second, opts.NavigationTimeout)
}
