// Package omsdapp is a self-contained stand-in for the delivery portal: the
// same sign-in journey, MFA prompts, selectors, and product screens the
// suite drives in QA, served from memory. Browser tests run against it so
// suite changes can be validated without touching a shared environment.
package omsdapp

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"html/template"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/omsd-qa/omsd-e2e/internal/errs"
	"github.com/omsd-qa/omsd-e2e/internal/obs"
)

const defaultAppTitle = "Olympus Medical Software Delivery"

// Options configure the stand-in application.
type Options struct {
	AppTitle    string        // page title, defaults to the portal's
	Mailer      Mailer        // verification code delivery, defaults to LogMailer
	SignInRate  rate.Limit    // per-username attempt refill
	SignInBurst int           // per-username attempt burst
	SessionTTL  time.Duration // default 1h
	CodeTTL     time.Duration // default 5m
}

// App serves the stand-in portal.
type App struct {
	opts      Options
	users     *UserStore
	sessions  *sessionStore
	catalog   map[string][]Product
	templates map[string]*template.Template
	log       *slog.Logger
}

func New(opts Options) (*App, error) {
	if opts.AppTitle == "" {
		opts.AppTitle = defaultAppTitle
	}
	if opts.Mailer == nil {
		opts.Mailer = LogMailer{}
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = 5 * time.Minute
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &App{
		opts:      opts,
		users:     NewUserStore(opts.SignInRate, opts.SignInBurst),
		sessions:  newSessionStore(opts.SessionTTL),
		catalog:   defaultCatalog(),
		templates: templates,
		log:       obs.Pkg("omsdapp"),
	}, nil
}

// MustNew is New for wiring code where a template error is fatal.
func MustNew(opts Options) *App {
	a, err := New(opts)
	if err != nil {
		panic(err)
	}
	return a
}

// Users exposes the account store for seeding.
func (a *App) Users() *UserStore {
	return a.users
}

// Handler returns the app's routes wrapped in request correlation and
// access logging.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", a.handleLoginPage)
	mux.HandleFunc("POST /signin", a.handleSignIn)
	mux.HandleFunc("GET /forgotpassword", a.handleForgotPassword)
	mux.HandleFunc("GET /mfa", a.handleMFAPage)
	mux.HandleFunc("POST /mfa/method", a.handleMFAMethod)
	mux.HandleFunc("POST /mfa/send", a.handleMFASend)
	mux.HandleFunc("POST /mfa/verify", a.handleMFAVerify)
	mux.HandleFunc("GET /home/productcategory", a.handleHome)
	mux.HandleFunc("GET /products/{category}", a.handleProducts)
	mux.HandleFunc("GET /products/{category}/{slug}", a.handleSoftwareList)
	mux.HandleFunc("GET /signout", a.handleSignOut)
	mux.HandleFunc("POST /cookies/accept", a.handleAcceptCookies)
	return obs.RequestContextMiddleware(obs.AccessLogMiddleware("omsdapp", mux))
}

// Template data.

type pageData struct {
	AppTitle string
	Error    string
}

type mfaData struct {
	pageData
	MaskedEmail string
}

type homeData struct {
	pageData
	DisplayName      string
	ShowCookieBanner bool
}

type productsData struct {
	pageData
	DisplayName   string
	Category      string
	CategoryTitle string
	Products      []Product
}

type softwareListData struct {
	pageData
	DisplayName string
	Category    string
	Product     Product
}

func (a *App) page(errMsg string) pageData {
	return pageData{AppTitle: a.opts.AppTitle, Error: errMsg}
}

// render executes the page against the base layout. The output is buffered
// so a template failure never sends a half-written page.
func (a *App) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := a.templates[name]
	if !ok {
		a.log.Error("template_missing", "name", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		a.log.Error("render_failed", "template", name, "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// Session plumbing.

func (a *App) currentSession(r *http.Request) (session, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return session{}, false
	}
	return a.sessions.get(c.Value)
}

// requireAuth returns the signed-in session or redirects: pending MFA goes
// back to the MFA journey, everything else to sign-in.
func (a *App) requireAuth(w http.ResponseWriter, r *http.Request) (session, bool) {
	sess, ok := a.currentSession(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return session{}, false
	}
	if sess.pendingMFA() {
		http.Redirect(w, r, "/mfa", http.StatusSeeOther)
		return session{}, false
	}
	return sess, true
}

// Handlers.

func (a *App) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := a.currentSession(r); ok && sess.authenticated {
		http.Redirect(w, r, "/home/productcategory", http.StatusSeeOther)
		return
	}
	a.render(w, "login.html", a.page(""))
}

func (a *App) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.render(w, "login.html", a.page("Your request could not be processed. Please try again."))
		return
	}
	username := strings.TrimSpace(r.PostFormValue("signInName"))
	password := r.PostFormValue("password")

	user, err := a.users.Authenticate(username, password)
	if err != nil {
		obs.From(r.Context()).Warn("sign_in_rejected", "username", username, "reason", string(errs.CodeOf(err)))
		a.render(w, "login.html", a.page(errs.MessageOf(err)))
		return
	}

	sess := a.sessions.create(user)
	if !user.RequireMFA {
		a.sessions.update(sess.token, func(s *session) { s.authenticated = true })
	}
	http.SetCookie(w, sessionCookie(sess.token))

	if user.RequireMFA {
		obs.From(r.Context()).Info("password_accepted", "username", username)
		http.Redirect(w, r, "/mfa", http.StatusSeeOther)
		return
	}
	obs.From(r.Context()).Info("signed_in", "username", username)
	http.Redirect(w, r, "/home/productcategory", http.StatusSeeOther)
}

func (a *App) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	a.render(w, "forgot.html", a.page(""))
}

func (a *App) handleMFAPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.currentSession(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if sess.authenticated {
		http.Redirect(w, r, "/home/productcategory", http.StatusSeeOther)
		return
	}
	switch {
	case sess.mfaMethod == "":
		a.render(w, "mfa_method.html", a.page(""))
	case sess.mfaCode == "":
		a.render(w, "mfa_send.html", mfaData{pageData: a.page(""), MaskedEmail: maskEmail(sess.email)})
	default:
		a.render(w, "mfa_verify.html", mfaData{pageData: a.page(""), MaskedEmail: maskEmail(sess.email)})
	}
}

func (a *App) handleMFAMethod(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.currentSession(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if r.PostFormValue("method") != "email" {
		a.render(w, "mfa_method.html", a.page("Only email verification is available in this environment."))
		return
	}
	a.sessions.update(sess.token, func(s *session) { s.mfaMethod = "email" })
	http.Redirect(w, r, "/mfa", http.StatusSeeOther)
}

func (a *App) handleMFASend(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.currentSession(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if sess.mfaMethod == "" {
		http.Redirect(w, r, "/mfa", http.StatusSeeOther)
		return
	}

	code, err := generateCode()
	if err != nil {
		obs.From(r.Context()).Error("code_generation_failed", "error", err.Error())
		a.render(w, "mfa_send.html", mfaData{
			pageData:    a.page("We could not send your verification code. Please try again."),
			MaskedEmail: maskEmail(sess.email),
		})
		return
	}
	a.sessions.update(sess.token, func(s *session) {
		s.mfaCode = code
		s.codeIssuedAt = time.Now()
	})

	if err := a.opts.Mailer.SendOTP(sess.email, code); err != nil {
		obs.From(r.Context()).Error("otp_delivery_failed", "username", sess.username, "error", err.Error())
		a.render(w, "mfa_send.html", mfaData{
			pageData:    a.page("We could not send your verification code. Please try again."),
			MaskedEmail: maskEmail(sess.email),
		})
		return
	}
	obs.From(r.Context()).Info("otp_sent", "username", sess.username)
	http.Redirect(w, r, "/mfa", http.StatusSeeOther)
}

func (a *App) handleMFAVerify(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.currentSession(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if sess.mfaCode == "" {
		http.Redirect(w, r, "/mfa", http.StatusSeeOther)
		return
	}

	got := strings.TrimSpace(r.PostFormValue("Verification code"))
	if time.Since(sess.codeIssuedAt) > a.opts.CodeTTL {
		a.render(w, "mfa_verify.html", mfaData{
			pageData:    a.page("Your verification code has expired. Please request a new one."),
			MaskedEmail: maskEmail(sess.email),
		})
		return
	}
	if got == "" || got != sess.mfaCode {
		obs.From(r.Context()).Warn("otp_rejected", "username", sess.username)
		a.render(w, "mfa_verify.html", mfaData{
			pageData:    a.page("The verification code is incorrect. Please try again."),
			MaskedEmail: maskEmail(sess.email),
		})
		return
	}

	a.sessions.update(sess.token, func(s *session) {
		s.authenticated = true
		s.mfaCode = ""
	})
	obs.From(r.Context()).Info("signed_in", "username", sess.username, "mfa", true)
	http.Redirect(w, r, "/home/productcategory", http.StatusSeeOther)
}

func (a *App) handleHome(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	_, consentErr := r.Cookie(consentCookieName)
	a.render(w, "home.html", homeData{
		pageData:         a.page(""),
		DisplayName:      sess.displayName,
		ShowCookieBanner: consentErr != nil,
	})
}

func (a *App) handleProducts(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	category := r.PathValue("category")
	title := categoryTitle(category)
	if title == "" {
		http.NotFound(w, r)
		return
	}
	a.render(w, "products.html", productsData{
		pageData:      a.page(""),
		DisplayName:   sess.displayName,
		Category:      category,
		CategoryTitle: title,
		Products:      a.catalog[category],
	})
}

func (a *App) handleSoftwareList(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.requireAuth(w, r)
	if !ok {
		return
	}
	category := r.PathValue("category")
	product, found := a.productBySlug(category, r.PathValue("slug"))
	if !found {
		http.NotFound(w, r)
		return
	}
	a.render(w, "softwarelist.html", softwareListData{
		pageData:    a.page(""),
		DisplayName: sess.displayName,
		Category:    category,
		Product:     product,
	})
}

func (a *App) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		a.sessions.delete(c.Value)
	}
	http.SetCookie(w, expiredSessionCookie())
	obs.From(r.Context()).Info("signed_out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleAcceptCookies(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, consentCookie())
	http.Redirect(w, r, "/home/productcategory", http.StatusSeeOther)
}

// generateCode returns a random six-digit verification code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", errs.Wrap(errs.Internal, "generate verification code failed", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// maskEmail hides the local part except its first character.
func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
