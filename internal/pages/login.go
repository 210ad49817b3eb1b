package pages

import (
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/omsd-qa/omsd-e2e/internal/errs"
)

// Selectors on the sign-in screen. The ids come from the hosted B2C sign-in
// template, so they are stable across environments.
const (
	loginUsernameInput = "#signInName"
	loginPasswordInput = "#password"
	loginNextButton    = "#next"
	loginForgotLink    = "#forgotPassword"
	loginErrorBanner   = "div.error.pageLevel"
)

// LoginPage is the sign-in screen at the environment's base URL.
type LoginPage struct {
	base
	baseURL string
}

func NewLoginPage(page playwright.Page, baseURL string) *LoginPage {
	return &LoginPage{base: newBase(page, "login"), baseURL: baseURL}
}

// Open navigates to the environment's base URL and waits for the sign-in
// form to render.
func (p *LoginPage) Open() error {
	p.log.Debug("goto", "url", p.baseURL)
	_, err := p.page.Goto(p.baseURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return errs.Wrap(errs.Unavailable, "open sign-in page failed", err)
	}
	return p.WaitVisible()
}

// WaitVisible blocks until the username field is on screen. Sign-out flows
// use it to confirm the session ended back at the sign-in form.
func (p *LoginPage) WaitVisible() error {
	return p.waitVisible(loginUsernameInput)
}

// SignIn submits the credentials. It does not wait for the outcome; callers
// decide whether to expect the home screen, the MFA prompt, or an error.
func (p *LoginPage) SignIn(username, password string) error {
	if err := p.fill(loginUsernameInput, username); err != nil {
		return err
	}
	if err := p.fill(loginPasswordInput, password); err != nil {
		return err
	}
	return p.click(loginNextButton)
}

// ErrorMessage waits for the page-level error banner and returns its text
// with surrounding whitespace removed.
func (p *LoginPage) ErrorMessage() (string, error) {
	msg, err := p.text(loginErrorBanner)
	if err != nil {
		return "", errs.Wrap(errs.NotFound, "sign-in error banner did not appear", err)
	}
	return strings.TrimSpace(msg), nil
}

// ForgotPassword follows the password-reset link.
func (p *LoginPage) ForgotPassword() error {
	return p.click(loginForgotLink)
}
