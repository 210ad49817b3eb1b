// Package browser manages the Playwright lifecycle for the suite: driver
// startup, browser selection, context options (viewport, video, tracing),
// and screenshot capture.
package browser

import (
	"fmt"
	"io"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/omsd-qa/omsd-e2e/internal/config"
	"github.com/omsd-qa/omsd-e2e/internal/errs"
	"github.com/omsd-qa/omsd-e2e/internal/obs"
)

// Options configure a browser session.
type Options struct {
	Browser           string
	Headless          bool
	SlowMo            time.Duration
	ViewportWidth     int
	ViewportHeight    int
	IgnoreHTTPSErrors bool
	Video             bool
	VideoDir          string
	Tracing           bool
	ImplicitWait      time.Duration
	NavigationTimeout time.Duration
}

// FromConfig maps suite configuration onto browser options.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Browser:           cfg.Browser,
		Headless:          cfg.Headless,
		SlowMo:            cfg.SlowMo,
		ViewportWidth:     cfg.ViewportWidth,
		ViewportHeight:    cfg.ViewportHeight,
		IgnoreHTTPSErrors: cfg.IgnoreHTTPSErrors,
		Video:             cfg.Video,
		VideoDir:          cfg.VideoDir,
		Tracing:           cfg.Tracing,
		ImplicitWait:      cfg.ImplicitWait,
		NavigationTimeout: cfg.NavigationTimeout,
	}
}

// Engine is the Playwright engine plus optional distribution channel a
// browser name maps to.
type Engine struct {
	Name    string // chromium, firefox, or webkit
	Channel string // msedge for edge, empty otherwise
}

// EngineFor maps a configured browser name to its Playwright engine.
// Unknown names fall back to chromium.
func EngineFor(browser string) Engine {
	switch browser {
	case "firefox":
		return Engine{Name: "firefox"}
	case "webkit":
		return Engine{Name: "webkit"}
	case "edge":
		return Engine{Name: "chromium", Channel: "msedge"}
	default:
		// chrome and chromium both run on the bundled chromium engine.
		return Engine{Name: "chromium"}
	}
}

// Install downloads the Playwright driver and the engine for the given
// browser name. Driver output is discarded.
func Install(browser string) error {
	engine := EngineFor(browser)
	err := playwright.Install(&playwright.RunOptions{
		Browsers: []string{engine.Name},
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	})
	if err != nil {
		return errs.Wrap(errs.Unavailable, fmt.Sprintf("playwright install %s failed", engine.Name), err)
	}
	return nil
}

// Session owns one launched browser and the driver behind it.
type Session struct {
	opts    Options
	pw      *playwright.Playwright
	browser playwright.Browser
}

// Launch starts the Playwright driver and launches the configured browser.
func Launch(opts Options) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable,
			"playwright driver failed to start (install with: go run github.com/playwright-community/playwright-go/cmd/playwright install)", err)
	}

	engine := EngineFor(opts.Browser)
	var browserType playwright.BrowserType
	switch engine.Name {
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	default:
		browserType = pw.Chromium
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.SlowMo > 0 {
		launchOpts.SlowMo = playwright.Float(float64(opts.SlowMo.Milliseconds()))
	}
	if engine.Channel != "" {
		launchOpts.Channel = playwright.String(engine.Channel)
	}
	if engine.Name == "chromium" {
		launchOpts.Args = []string{"--no-sandbox", "--disable-gpu"}
	}

	launched, err := browserType.Launch(launchOpts)
	if err != nil {
		_ = pw.Stop()
		return nil, errs.Wrap(errs.Unavailable, fmt.Sprintf("launch %s failed", engine.Name), err)
	}

	obs.Pkg("browser").Info("browser_launched", "engine", engine.Name, "channel", engine.Channel, "headless", opts.Headless)
	return &Session{opts: opts, pw: pw, browser: launched}, nil
}

// NewContext creates a browser context with the session's viewport, TLS,
// video, and tracing settings applied.
func (s *Session) NewContext() (playwright.BrowserContext, error) {
	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  s.opts.ViewportWidth,
			Height: s.opts.ViewportHeight,
		},
		IgnoreHttpsErrors: playwright.Bool(s.opts.IgnoreHTTPSErrors),
	}
	if s.opts.Video && s.opts.VideoDir != "" {
		ctxOpts.RecordVideo = &playwright.RecordVideo{
			Dir: s.opts.VideoDir,
			Size: &playwright.Size{
				Width:  s.opts.ViewportWidth,
				Height: s.opts.ViewportHeight,
			},
		}
	}

	browserCtx, err := s.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "new browser context failed", err)
	}

	if s.opts.Tracing {
		err := browserCtx.Tracing().Start(playwright.TracingStartOptions{
			Screenshots: playwright.Bool(true),
			Snapshots:   playwright.Bool(true),
			Sources:     playwright.Bool(true),
		})
		if err != nil {
			_ = browserCtx.Close()
			return nil, errs.Wrap(errs.Unavailable, "start tracing failed", err)
		}
	}
	return browserCtx, nil
}

// NewPage creates a page with the suite's default and navigation timeouts.
func (s *Session) NewPage(browserCtx playwright.BrowserContext) (playwright.Page, error) {
	page, err := browserCtx.NewPage()
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "new page failed", err)
	}
	page.SetDefaultTimeout(float64(s.opts.ImplicitWait.Milliseconds()))
	page.SetDefaultNavigationTimeout(float64(s.opts.NavigationTimeout.Milliseconds()))
	return page, nil
}

// StopTracing writes the context's trace zip to path. No-op when tracing is
// disabled.
func (s *Session) StopTracing(browserCtx playwright.BrowserContext, path string) error {
	if !s.opts.Tracing {
		return nil
	}
	if err := browserCtx.Tracing().Stop(path); err != nil {
		return errs.Wrap(errs.Unavailable, "stop tracing failed", err)
	}
	return nil
}

// Close shuts the browser and the driver down. Errors are logged and the
// last one returned; cleanup continues regardless.
func (s *Session) Close() error {
	log := obs.Pkg("browser")
	var last error
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.Warn("browser_close_failed", "error", err.Error())
			last = err
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			log.Warn("driver_stop_failed", "error", err.Error())
			last = err
		}
	}
	return last
}
