package pages

import (
	"strings"

	"github.com/playwright-community/playwright-go"
)

// Selectors on the landing screen. The sign-out link has no id of its own,
// so it is located through its label span.
const (
	homeUserDisplayName    = "#sysUserDisplayName"
	homeSignOutLink        = "//span[text()='Sign Out']/parent::a"
	homeCookieAcceptButton = "#onetrust-accept-btn-handler"
	homeCategoryHeading    = `h4:has-text("Product Category")`
)

// cookieBannerWaitMS bounds how long AcceptCookiesIfPresent waits for the
// consent banner before concluding it will not appear.
const cookieBannerWaitMS = 3000

// HomePage is the landing screen reached after authentication, with the
// product category chooser and the signed-in user's menu.
type HomePage struct {
	base
}

func NewHomePage(page playwright.Page) *HomePage {
	return &HomePage{base: newBase(page, "home")}
}

// WaitLoaded blocks until the product category heading renders.
func (p *HomePage) WaitLoaded() error {
	return p.waitVisible(homeCategoryHeading)
}

// LoggedInUser returns the display name shown in the header.
func (p *HomePage) LoggedInUser() (string, error) {
	name, err := p.text(homeUserDisplayName)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

// AcceptCookiesIfPresent dismisses the consent banner when it shows up and
// reports whether it did. First visits get the banner, later ones do not.
func (p *HomePage) AcceptCookiesIfPresent() (bool, error) {
	if !p.waitVisibleWithin(homeCookieAcceptButton, cookieBannerWaitMS) {
		return false, nil
	}
	if err := p.click(homeCookieAcceptButton); err != nil {
		return false, err
	}
	return true, nil
}

// OpenUserMenu clicks the display name to reveal the account menu.
func (p *HomePage) OpenUserMenu() error {
	return p.click(homeUserDisplayName)
}

// SignOut opens the account menu and follows the sign-out link. Callers
// should wait for the sign-in form to confirm the session ended.
func (p *HomePage) SignOut() error {
	if err := p.OpenUserMenu(); err != nil {
		return err
	}
	return p.click(homeSignOutLink)
}
