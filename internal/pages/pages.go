// Package pages wraps the application's screens as page objects. Each type
// owns the selectors for one screen and exposes the interactions test flows
// need; assertions stay with the callers.
package pages

import (
	"fmt"
	"log/slog"

	"github.com/playwright-community/playwright-go"

	"github.com/omsd-qa/omsd-e2e/internal/errs"
	"github.com/omsd-qa/omsd-e2e/internal/logutil"
	"github.com/omsd-qa/omsd-e2e/internal/obs"
)

// base carries the shared Playwright handle and interaction helpers. All
// waits use the page's default timeout unless noted.
type base struct {
	page playwright.Page
	log  *slog.Logger
}

func newBase(page playwright.Page, name string) base {
	return base{page: page, log: obs.Pkg("pages").With("page", name)}
}

// CurrentURL returns the page's current location.
func (b base) CurrentURL() string {
	return b.page.URL()
}

func (b base) fill(selector, value string) error {
	b.log.Debug("fill", "selector", selector, "value", logutil.RedactFillValue(selector, value))
	if err := b.page.Locator(selector).Fill(value); err != nil {
		return errs.Wrap(errs.Unavailable, fmt.Sprintf("fill %q failed", selector), err)
	}
	return nil
}

func (b base) click(selector string) error {
	b.log.Debug("click", "selector", selector)
	if err := b.page.Locator(selector).Click(); err != nil {
		return errs.Wrap(errs.Unavailable, fmt.Sprintf("click %q failed", selector), err)
	}
	return nil
}

func (b base) check(selector string) error {
	b.log.Debug("check", "selector", selector)
	if err := b.page.Locator(selector).Check(); err != nil {
		return errs.Wrap(errs.Unavailable, fmt.Sprintf("check %q failed", selector), err)
	}
	return nil
}

func (b base) waitVisible(selector string) error {
	err := b.page.Locator(selector).WaitFor(playwright.LocatorWaitForOptions{
		State: playwright.WaitForSelectorStateVisible,
	})
	if err != nil {
		return errs.Wrap(errs.DeadlineExceeded, fmt.Sprintf("%q did not become visible", selector), err)
	}
	return nil
}

// waitVisibleWithin is waitVisible with an explicit timeout, for elements
// that may legitimately never appear.
func (b base) waitVisibleWithin(selector string, timeoutMS float64) bool {
	err := b.page.Locator(selector).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(timeoutMS),
	})
	return err == nil
}

func (b base) text(selector string) (string, error) {
	if err := b.waitVisible(selector); err != nil {
		return "", err
	}
	s, err := b.page.Locator(selector).InnerText()
	if err != nil {
		return "", errs.Wrap(errs.Unavailable, fmt.Sprintf("read text of %q failed", selector), err)
	}
	return s, nil
}
