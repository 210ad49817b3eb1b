package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/omsd-qa/omsd-e2e/internal/errs"
	"github.com/omsd-qa/omsd-e2e/internal/obs"
)

const screenshotTimestampLayout = "20060102_150405"

// SanitizeName makes a string safe for file names: every character outside
// [A-Za-z0-9._-] becomes an underscore, and empty input becomes "unnamed".
func SanitizeName(s string) string {
	if s == "" {
		return "unnamed"
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ScreenshotPath builds the on-disk location for a capture:
// <dir>/<product>/<case>/<product>_<case>_<step>_<timestamp>.png.
func ScreenshotPath(dir, product, testCase, step string, now time.Time) string {
	product = SanitizeName(product)
	testCase = SanitizeName(testCase)
	step = SanitizeName(step)
	name := fmt.Sprintf("%s_%s_%s_%s.png", product, testCase, step, now.UTC().Format(screenshotTimestampLayout))
	return filepath.Join(dir, product, testCase, name)
}

// Capture takes a full-page screenshot of the current page state and writes
// it under dir, returning the file path.
func Capture(page playwright.Page, dir, product, testCase, step string) (string, error) {
	path := ScreenshotPath(dir, product, testCase, step, time.Now())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errs.Wrap(errs.Internal, "create screenshot directory failed", err)
	}
	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return "", errs.Wrap(errs.Unavailable, "screenshot failed", err)
	}
	obs.Pkg("browser").Info("screenshot_saved", "path", path, "step", step)
	return path, nil
}
