package omsdapp

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"pgregory.net/rapid"

	"github.com/omsd-qa/omsd-e2e/internal/obs"
	"github.com/omsd-qa/omsd-e2e/internal/otp"
)

func TestMain(m *testing.M) {
	restore := obs.SetOutputForTests(io.Discard)
	code := m.Run()
	restore()
	os.Exit(code)
}

func newTestApp(t *testing.T, opts Options) (*App, *httptest.Server, *http.Client) {
	t.Helper()
	app := MustNew(opts)
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return app, srv, &http.Client{Jar: jar}
}

func seedUploader(t *testing.T, app *App, requireMFA bool) SeedUser {
	t.Helper()
	u := SeedUser{
		Username:    "uploader@olympus.example",
		Password:    "upl0ader-pass-1",
		DisplayName: "Pat Uploader",
		Email:       "otp-inbox@test.local",
		Role:        "software_uploader",
		RequireMFA:  requireMFA,
	}
	require.NoError(t, app.Users().Seed(u))
	return u
}

func get(t *testing.T, client *http.Client, rawURL string) (int, string, string) {
	t.Helper()
	resp, err := client.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body), resp.Request.URL.Path
}

func postForm(t *testing.T, client *http.Client, rawURL string, form url.Values) (int, string, string) {
	t.Helper()
	resp, err := client.PostForm(rawURL, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body), resp.Request.URL.Path
}

func signInForm(username, password string) url.Values {
	return url.Values{
		"signInName": {username},
		"password":   {password},
	}
}

func TestSignIn_WrongPasswordShowsInvalid(t *testing.T) {
	app, srv, client := newTestApp(t, Options{})
	u := seedUploader(t, app, false)

	status, body, path := postForm(t, client, srv.URL+"/signin", signInForm(u.Username, "wrongpassword123"))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "/signin", path)
	assert.Contains(t, body, `class="error pageLevel"`)
	assert.Contains(t, strings.ToLower(body), "invalid")
	assert.Contains(t, body, `id="signInName"`)
}

func TestSignIn_UnknownUserShowsInvalid(t *testing.T) {
	_, srv, client := newTestApp(t, Options{})

	_, body, _ := postForm(t, client, srv.URL+"/signin", signInForm("invalid@olympus.example", "wrongpassword123"))
	assert.Contains(t, strings.ToLower(body), "invalid")
}

func TestSignIn_ThrottledAfterBurst(t *testing.T) {
	app, srv, client := newTestApp(t, Options{
		SignInRate:  rate.Every(time.Hour),
		SignInBurst: 2,
	})
	u := seedUploader(t, app, false)

	for i := 0; i < 2; i++ {
		_, body, _ := postForm(t, client, srv.URL+"/signin", signInForm(u.Username, "wrongpassword123"))
		assert.Contains(t, strings.ToLower(body), "invalid")
	}
	_, body, _ := postForm(t, client, srv.URL+"/signin", signInForm(u.Username, u.Password))
	assert.Contains(t, body, "Too many sign-in attempts")
}

func TestSignIn_WithoutMFALandsOnHome(t *testing.T) {
	app, srv, client := newTestApp(t, Options{})
	u := seedUploader(t, app, false)

	status, body, path := postForm(t, client, srv.URL+"/signin", signInForm(u.Username, u.Password))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "/home/productcategory", path)
	assert.Contains(t, body, "Product Category")
	assert.Contains(t, body, `id="sysUserDisplayName"`)
	assert.Contains(t, body, "Pat Uploader")
	assert.Contains(t, body, `id="medical-product-box"`)
	assert.Contains(t, body, `id="other-product-box"`)
}

func TestHomeRequiresSession(t *testing.T) {
	_, srv, client := newTestApp(t, Options{})

	_, body, path := get(t, client, srv.URL+"/home/productcategory")
	assert.Equal(t, "/", path)
	assert.Contains(t, body, `id="signInName"`)
}

func TestMFAJourney(t *testing.T) {
	mailer := &CapturingMailer{}
	app, srv, client := newTestApp(t, Options{Mailer: mailer})
	u := seedUploader(t, app, true)

	_, body, path := postForm(t, client, srv.URL+"/signin", signInForm(u.Username, u.Password))
	assert.Equal(t, "/mfa", path)
	assert.Contains(t, body, "Please select your preferred MFA method")

	_, body, path = postForm(t, client, srv.URL+"/mfa/method", url.Values{"method": {"email"}})
	assert.Equal(t, "/mfa", path)
	assert.Contains(t, body, "Send verification code")
	assert.Contains(t, body, "o***@test.local")

	_, body, path = postForm(t, client, srv.URL+"/mfa/send", nil)
	assert.Equal(t, "/mfa", path)
	assert.Contains(t, body, `name="Verification code"`)
	assert.Contains(t, body, "Verify code")
	assert.Contains(t, body, "Send new code")

	to, code := mailer.Last()
	assert.Equal(t, u.Email, to)
	require.Regexp(t, `^\d{6}$`, code)

	_, body, path = postForm(t, client, srv.URL+"/mfa/verify", url.Values{"Verification code": {code}})
	assert.Equal(t, "/home/productcategory", path)
	assert.Contains(t, body, "Product Category")
	assert.Contains(t, body, "Pat Uploader")
}

func TestMFAVerify_WrongCodeShowsError(t *testing.T) {
	mailer := &CapturingMailer{}
	app, srv, client := newTestApp(t, Options{Mailer: mailer})
	u := seedUploader(t, app, true)

	postForm(t, client, srv.URL+"/signin", signInForm(u.Username, u.Password))
	postForm(t, client, srv.URL+"/mfa/method", url.Values{"method": {"email"}})
	postForm(t, client, srv.URL+"/mfa/send", nil)

	_, code := mailer.Last()
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, body, path := postForm(t, client, srv.URL+"/mfa/verify", url.Values{"Verification code": {wrong}})
	assert.Equal(t, "/mfa/verify", path)
	assert.Contains(t, body, "The verification code is incorrect")

	_, body, path = postForm(t, client, srv.URL+"/mfa/verify", url.Values{"Verification code": {code}})
	assert.Equal(t, "/home/productcategory", path)
	assert.Contains(t, body, "Product Category")
}

func TestMFAVerify_ExpiredCode(t *testing.T) {
	mailer := &CapturingMailer{}
	app, srv, client := newTestApp(t, Options{Mailer: mailer, CodeTTL: time.Millisecond})
	u := seedUploader(t, app, true)

	postForm(t, client, srv.URL+"/signin", signInForm(u.Username, u.Password))
	postForm(t, client, srv.URL+"/mfa/method", url.Values{"method": {"email"}})
	postForm(t, client, srv.URL+"/mfa/send", nil)
	time.Sleep(5 * time.Millisecond)

	_, code := mailer.Last()
	_, body, _ := postForm(t, client, srv.URL+"/mfa/verify", url.Values{"Verification code": {code}})
	assert.Contains(t, body, "verification code has expired")
}

func TestMFA_PhoneMethodRejected(t *testing.T) {
	app, srv, client := newTestApp(t, Options{})
	u := seedUploader(t, app, true)

	postForm(t, client, srv.URL+"/signin", signInForm(u.Username, u.Password))
	_, body, _ := postForm(t, client, srv.URL+"/mfa/method", url.Values{"method": {"phone"}})
	assert.Contains(t, body, "Only email verification is available")
	assert.Contains(t, body, "Please select your preferred MFA method")
}

func TestMFA_SendNewCodeReplacesOld(t *testing.T) {
	mailer := &CapturingMailer{}
	app, srv, client := newTestApp(t, Options{Mailer: mailer})
	u := seedUploader(t, app, true)

	postForm(t, client, srv.URL+"/signin", signInForm(u.Username, u.Password))
	postForm(t, client, srv.URL+"/mfa/method", url.Values{"method": {"email"}})
	postForm(t, client, srv.URL+"/mfa/send", nil)
	postForm(t, client, srv.URL+"/mfa/send", nil)
	assert.Equal(t, 2, mailer.Sent())

	_, latest := mailer.Last()
	_, _, path := postForm(t, client, srv.URL+"/mfa/verify", url.Values{"Verification code": {latest}})
	assert.Equal(t, "/home/productcategory", path)
}

func TestCookieBannerShownOnceUntilAccepted(t *testing.T) {
	app, srv, client := newTestApp(t, Options{})
	u := seedUploader(t, app, false)

	_, body, _ := postForm(t, client, srv.URL+"/signin", signInForm(u.Username, u.Password))
	assert.Contains(t, body, `id="onetrust-accept-btn-handler"`)

	_, body, path := postForm(t, client, srv.URL+"/cookies/accept", nil)
	assert.Equal(t, "/home/productcategory", path)
	assert.NotContains(t, body, `id="onetrust-accept-btn-handler"`)

	_, body, _ = get(t, client, srv.URL+"/home/productcategory")
	assert.NotContains(t, body, `id="onetrust-accept-btn-handler"`)
}

func TestProductScreens(t *testing.T) {
	app, srv, client := newTestApp(t, Options{})
	u := seedUploader(t, app, false)
	postForm(t, client, srv.URL+"/signin", signInForm(u.Username, u.Password))

	_, body, _ := get(t, client, srv.URL+"/products/medical")
	assert.Contains(t, body, "Medical Products")
	assert.Contains(t, body, "ESG-410 Software List")
	assert.Contains(t, body, "ESG-420 Software List")
	assert.Contains(t, body, "USG-410 Software List")
	assert.Contains(t, body, `id="back-button"`)

	_, body, _ = get(t, client, srv.URL+"/products/medical/esg-410")
	assert.Contains(t, body, "ESG-410 Software List")
	assert.Contains(t, body, "ESG-410_v01.00.00.00-Hema")

	_, body, _ = get(t, client, srv.URL+"/products/other")
	assert.Contains(t, body, "Other Products")
	assert.Contains(t, body, "WM-NP3 Software List")

	resp, err := client.Get(srv.URL + "/products/medical/no-such-product")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = client.Get(srv.URL + "/products/imaginary")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSignOutEndsSession(t *testing.T) {
	app, srv, client := newTestApp(t, Options{})
	u := seedUploader(t, app, false)
	postForm(t, client, srv.URL+"/signin", signInForm(u.Username, u.Password))

	_, body, path := get(t, client, srv.URL+"/signout")
	assert.Equal(t, "/", path)
	assert.Contains(t, body, `id="signInName"`)

	_, _, path = get(t, client, srv.URL+"/home/productcategory")
	assert.Equal(t, "/", path)
}

func TestPendingMFASessionCannotReachHome(t *testing.T) {
	app, srv, client := newTestApp(t, Options{})
	u := seedUploader(t, app, true)
	postForm(t, client, srv.URL+"/signin", signInForm(u.Username, u.Password))

	_, body, path := get(t, client, srv.URL+"/home/productcategory")
	assert.Equal(t, "/mfa", path)
	assert.Contains(t, body, "Please select your preferred MFA method")
}

func TestIMAPMailer_CodeReachesSuiteFetcher(t *testing.T) {
	box := otp.TestServer(t)
	mailer := IMAPMailer{Box: box}
	require.NoError(t, mailer.SendOTP(box.Username, "428117"))

	fetcher := &otp.Fetcher{
		Mailbox:       box,
		SubjectFilter: otp.DefaultSubjectFilter,
		Timeout:       5 * time.Second,
		PollInterval:  50 * time.Millisecond,
	}
	code, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "428117", code)
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "u***@example.com", maskEmail("uploader@example.com"))
	assert.Equal(t, "***", maskEmail("not-an-email"))
	assert.Equal(t, "***", maskEmail("@example.com"))
}

func TestGenerateCode_AlwaysSixDigits(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	rapid.Check(t, func(t *rapid.T) {
		rapid.Int().Draw(t, "seed")
		code, err := generateCode()
		if err != nil {
			t.Fatalf("generateCode: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("code %q is not six digits", code)
		}
	})
}
