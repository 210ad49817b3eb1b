// Package actions composes page objects into the user journeys the suite
// exercises: signing in with and without MFA, signing out, and product
// category navigation. Every journey is broken into named steps that are
// logged with the run's correlation fields; a failing step captures a
// screenshot before the error propagates.
package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/omsd-qa/omsd-e2e/internal/browser"
	"github.com/omsd-qa/omsd-e2e/internal/config"
	"github.com/omsd-qa/omsd-e2e/internal/errs"
	"github.com/omsd-qa/omsd-e2e/internal/obs"
	"github.com/omsd-qa/omsd-e2e/internal/otp"
	"github.com/omsd-qa/omsd-e2e/internal/pages"
)

// HomePath is the route of the landing screen after authentication.
const HomePath = "/home/productcategory"

// Flow drives one page through the application's user journeys.
type Flow struct {
	cfg  *config.Config
	page playwright.Page

	login    *pages.LoginPage
	mfa      *pages.MFAPage
	home     *pages.HomePage
	category *pages.ProductCategoryPage
}

func NewFlow(cfg *config.Config, page playwright.Page) *Flow {
	return &Flow{
		cfg:      cfg,
		page:     page,
		login:    pages.NewLoginPage(page, cfg.BaseURL),
		mfa:      pages.NewMFAPage(page),
		home:     pages.NewHomePage(page),
		category: pages.NewProductCategoryPage(page),
	}
}

// step runs one named unit of a journey. Failures are logged, captured as a
// screenshot, and wrapped with the step name; the original code survives.
func (f *Flow) step(ctx context.Context, name string, fn func() error) error {
	ctx = obs.WithStep(ctx, name)
	log := obs.From(ctx)
	log.Debug("step_start")
	if err := fn(); err != nil {
		log.Error("step_failed", "error", err.Error())
		f.captureFailure(ctx, name)
		return errs.Wrap(errs.CodeOf(err), fmt.Sprintf("step %s failed", name), err)
	}
	log.Debug("step_ok")
	return nil
}

// captureFailure saves a screenshot of the page as it looked when the step
// failed. Capture problems are logged and swallowed so the step's own error
// is the one that propagates.
func (f *Flow) captureFailure(ctx context.Context, step string) {
	if f.cfg.ScreenshotDir == "" {
		return
	}
	c := obs.CorrelationFromContext(ctx)
	product := c.Product
	if product == "" {
		product = "suite"
	}
	testCase := c.TestCase
	if testCase == "" {
		testCase = "unknown"
	}
	if _, err := browser.Capture(f.page, f.cfg.ScreenshotDir, product, testCase, step+"_failed"); err != nil {
		obs.From(ctx).Warn("failure_screenshot_failed", "error", err.Error())
	}
}

// Login signs the role in with username and password and lands on the
// product category screen. Accounts with MFA enabled need LoginWithOTP.
func (f *Flow) Login(ctx context.Context, role string) error {
	creds, err := f.cfg.RoleCredentials(role)
	if err != nil {
		return err
	}
	obs.From(ctx).Info("login_as", "role", role, "username", creds.Username)
	if err := f.step(ctx, "open_sign_in", f.login.Open); err != nil {
		return err
	}
	if err := f.step(ctx, "submit_credentials", func() error {
		return f.login.SignIn(creds.Username, creds.Password)
	}); err != nil {
		return errs.Wrap(errs.CodeOf(err), fmt.Sprintf("sign in as %s failed", creds.Username), err)
	}
	return f.arriveHome(ctx)
}

// LoginWithOTP signs the role in and completes the email MFA journey with a
// verification code from the provider.
func (f *Flow) LoginWithOTP(ctx context.Context, role string, codes otp.CodeProvider) error {
	creds, err := f.cfg.RoleCredentials(role)
	if err != nil {
		return err
	}
	obs.From(ctx).Info("login_as", "role", role, "username", creds.Username)
	if err := f.step(ctx, "open_sign_in", f.login.Open); err != nil {
		return err
	}
	if err := f.step(ctx, "submit_credentials", func() error {
		return f.login.SignIn(creds.Username, creds.Password)
	}); err != nil {
		return errs.Wrap(errs.CodeOf(err), fmt.Sprintf("sign in as %s failed", creds.Username), err)
	}
	if err := f.step(ctx, "mfa_choose_email", func() error {
		if err := f.mfa.WaitForMethodPrompt(); err != nil {
			return err
		}
		return f.mfa.ChooseEmail()
	}); err != nil {
		return err
	}
	if err := f.step(ctx, "mfa_send_code", f.mfa.SendCode); err != nil {
		return err
	}
	var code string
	if err := f.step(ctx, "mfa_fetch_code", func() error {
		var err error
		code, err = codes.Code(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := f.step(ctx, "mfa_verify", func() error {
		if err := f.mfa.EnterCode(code); err != nil {
			return err
		}
		return f.mfa.Verify()
	}); err != nil {
		return err
	}
	return f.arriveHome(ctx)
}

// arriveHome dismisses the consent banner when it shows and waits for the
// landing screen.
func (f *Flow) arriveHome(ctx context.Context) error {
	if err := f.AcceptCookies(ctx); err != nil {
		return err
	}
	return f.step(ctx, "wait_home", f.home.WaitLoaded)
}

// AcceptCookies dismisses the consent banner when it is shown. Nothing
// happens, and no error is returned, when the banner is absent.
func (f *Flow) AcceptCookies(ctx context.Context) error {
	return f.step(ctx, "accept_cookies", func() error {
		_, err := f.home.AcceptCookiesIfPresent()
		return err
	})
}

// LoginExpectingError submits the given credentials and returns the
// page-level error message the sign-in form shows.
func (f *Flow) LoginExpectingError(ctx context.Context, username, password string) (string, error) {
	if err := f.step(ctx, "open_sign_in", f.login.Open); err != nil {
		return "", err
	}
	if err := f.step(ctx, "submit_credentials", func() error {
		return f.login.SignIn(username, password)
	}); err != nil {
		return "", err
	}
	var msg string
	err := f.step(ctx, "read_error_banner", func() error {
		var err error
		msg, err = f.login.ErrorMessage()
		return err
	})
	return msg, err
}

// SignOut ends the session through the account menu and waits for the
// sign-in form to come back.
func (f *Flow) SignOut(ctx context.Context) error {
	if err := f.step(ctx, "sign_out", f.home.SignOut); err != nil {
		return err
	}
	return f.step(ctx, "wait_sign_in_form", f.login.WaitVisible)
}

// LoggedInUser returns the display name shown in the header.
func (f *Flow) LoggedInUser(ctx context.Context) (string, error) {
	var name string
	err := f.step(ctx, "read_display_name", func() error {
		var err error
		name, err = f.home.LoggedInUser()
		return err
	})
	return name, err
}

// VerifyLoggedIn confirms the header shows the expected display name.
func (f *Flow) VerifyLoggedIn(ctx context.Context, wantName string) error {
	return f.step(ctx, "verify_display_name", func() error {
		name, err := f.home.LoggedInUser()
		if err != nil {
			return err
		}
		if name != wantName {
			return errs.New(errs.FailedPrecondition,
				fmt.Sprintf("signed-in user is %q, want %q", name, wantName))
		}
		return nil
	})
}

// VerifyOnHome confirms the browser is on the product category route.
func (f *Flow) VerifyOnHome(ctx context.Context) error {
	return f.step(ctx, "verify_home_url", func() error {
		url := f.home.CurrentURL()
		if !strings.Contains(url, HomePath) {
			return errs.New(errs.FailedPrecondition,
				fmt.Sprintf("browser is at %s, want a %s route", url, HomePath))
		}
		return nil
	})
}

// OpenMedicalProducts opens the medical device category from the landing
// screen.
func (f *Flow) OpenMedicalProducts(ctx context.Context) error {
	return f.step(ctx, "open_medical_category", func() error {
		if err := f.category.WaitVisible(); err != nil {
			return err
		}
		return f.category.OpenMedical()
	})
}

// OpenOtherProducts opens the non-medical category.
func (f *Flow) OpenOtherProducts(ctx context.Context) error {
	return f.step(ctx, "open_other_category", func() error {
		if err := f.category.WaitVisible(); err != nil {
			return err
		}
		return f.category.OpenOther()
	})
}

// SelectProduct opens one product's software list inside the open category.
func (f *Flow) SelectProduct(ctx context.Context, product string) error {
	return f.step(ctx, "open_software_list", func() error {
		if err := f.category.SelectProduct(product); err != nil {
			return err
		}
		return f.category.SoftwareListVisible(product)
	})
}

// GoBack returns from a software list to the category chooser.
func (f *Flow) GoBack(ctx context.Context) error {
	return f.step(ctx, "back_to_categories", func() error {
		if err := f.category.Back(); err != nil {
			return err
		}
		return f.category.WaitVisible()
	})
}

// BrowseMedicalProduct opens the medical category, opens one product's
// software list, and returns to the category chooser.
func (f *Flow) BrowseMedicalProduct(ctx context.Context, product string) error {
	if err := f.OpenMedicalProducts(ctx); err != nil {
		return err
	}
	return f.browseProduct(ctx, product)
}

// BrowseOtherProduct is BrowseMedicalProduct for the non-medical category.
func (f *Flow) BrowseOtherProduct(ctx context.Context, product string) error {
	if err := f.OpenOtherProducts(ctx); err != nil {
		return err
	}
	return f.browseProduct(ctx, product)
}

func (f *Flow) browseProduct(ctx context.Context, product string) error {
	if err := f.SelectProduct(ctx, product); err != nil {
		return err
	}
	return f.GoBack(ctx)
}
