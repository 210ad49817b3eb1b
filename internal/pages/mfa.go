package pages

import (
	"github.com/playwright-community/playwright-go"
)

// Selectors on the MFA screens. The method chooser and the verification
// form are separate steps of the same B2C journey.
const (
	mfaMethodPrompt   = "text=Please select your preferred MFA method"
	mfaEmailRadio     = `input[type="radio"][value="email"]`
	mfaContinueButton = `button:has-text("Continue")`
	mfaSendCodeButton = `button:has-text("Send verification code")`
	mfaCodeInput      = `input[name="Verification code"]`
	mfaVerifyButton   = `button:has-text("Verify code")`
	mfaSendNewButton  = `button:has-text("Send new code")`
)

// MFAPage is the multi-factor journey shown after a successful password
// sign-in when the account has MFA enabled.
type MFAPage struct {
	base
}

func NewMFAPage(page playwright.Page) *MFAPage {
	return &MFAPage{base: newBase(page, "mfa")}
}

// WaitForMethodPrompt blocks until the method chooser is on screen.
func (p *MFAPage) WaitForMethodPrompt() error {
	return p.waitVisible(mfaMethodPrompt)
}

// MethodPromptVisible reports whether the chooser rendered within the given
// number of milliseconds. Accounts without MFA skip the journey entirely.
func (p *MFAPage) MethodPromptVisible(timeoutMS float64) bool {
	return p.waitVisibleWithin(mfaMethodPrompt, timeoutMS)
}

// ChooseEmail selects email delivery and continues to the verification step.
func (p *MFAPage) ChooseEmail() error {
	if err := p.check(mfaEmailRadio); err != nil {
		return err
	}
	return p.click(mfaContinueButton)
}

// SendCode asks the server to deliver a verification code and waits for the
// code input to render.
func (p *MFAPage) SendCode() error {
	if err := p.click(mfaSendCodeButton); err != nil {
		return err
	}
	return p.waitVisible(mfaCodeInput)
}

// SendNewCode requests a replacement code for the current attempt.
func (p *MFAPage) SendNewCode() error {
	if err := p.click(mfaSendNewButton); err != nil {
		return err
	}
	return p.waitVisible(mfaCodeInput)
}

// EnterCode types the verification code. The value is redacted in logs.
func (p *MFAPage) EnterCode(code string) error {
	return p.fill(mfaCodeInput, code)
}

// Verify submits the entered code.
func (p *MFAPage) Verify() error {
	return p.click(mfaVerifyButton)
}
