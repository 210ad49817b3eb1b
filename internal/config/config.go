// Package config resolves the suite's configuration: target environment and
// base URL, per-role credentials, OTP mailbox settings, database parameters,
// and browser options.
//
// Values are resolved from process environment variables (a .env file is
// loaded first when present) with a YAML file as fallback; environment
// variables always win, and CLI flags win over both.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultAppTitle is the expected page title after a successful sign-in.
const DefaultAppTitle = "Olympus Medical Software Delivery"

// User roles the suite can sign in as. Role ids double as the prefix of the
// credential environment variables ({ROLE}_USERNAME / {ROLE}_PASSWORD).
const (
	RoleSoftwareUploader                      = "software_uploader"
	RoleDistributionManager                   = "distribution_manager"
	RoleDistributionManagerWithoutPermission  = "distribution_manager_without_permission"
	RoleDeviceUpdateExecutor                  = "device_update_executor"
	RoleDeviceUpdateExecutorWithoutPermission = "device_update_executor_without_permission"
	RoleCustomer                              = "customer"
)

// Roles lists every role id the suite knows about.
var Roles = []string{
	RoleSoftwareUploader,
	RoleDistributionManager,
	RoleDistributionManagerWithoutPermission,
	RoleDeviceUpdateExecutor,
	RoleDeviceUpdateExecutorWithoutPermission,
	RoleCustomer,
}

// KnownBrowsers are the accepted values for the browser setting.
var KnownBrowsers = []string{"chrome", "chromium", "edge", "firefox", "webkit"}

// Credentials is a username/password pair for one role.
type Credentials struct {
	Username string
	Password string
}

// String renders credentials for logs with the password redacted.
func (c Credentials) String() string {
	return c.Username + ":[REDACTED]"
}

// OTPConfig holds the mailbox the suite polls for verification codes.
type OTPConfig struct {
	Email         string
	Password      string
	IMAPServer    string
	IMAPPort      int
	SubjectFilter string
	Timeout       time.Duration
	PollInterval  time.Duration
}

// Configured reports whether any OTP mailbox setting is present.
func (o OTPConfig) Configured() bool {
	return o.Email != "" || o.Password != "" || o.IMAPServer != ""
}

// Complete reports whether every required OTP mailbox setting is present.
func (o OTPConfig) Complete() bool {
	return o.Email != "" && o.Password != "" && o.IMAPServer != ""
}

// DatabaseConfig carries the application database parameters. The suite only
// validates and passes these through to fixtures; it never opens a connection.
type DatabaseConfig struct {
	Server   string
	Name     string
	Username string
	Password string
}

func (d DatabaseConfig) configured() bool {
	return d.Server != "" || d.Name != "" || d.Username != "" || d.Password != ""
}

func (d DatabaseConfig) complete() bool {
	return d.Server != "" && d.Name != "" && d.Username != "" && d.Password != ""
}

// S3Config holds artifact upload settings (AWS_ env vars, optional).
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// Enabled reports whether artifact upload is configured.
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// NotifyConfig holds the failure-notification email settings (optional).
type NotifyConfig struct {
	ResendAPIKey string
	From         string
	To           string
}

// Enabled reports whether run notifications are configured.
func (n NotifyConfig) Enabled() bool {
	return n.ResendAPIKey != "" && n.To != ""
}

// Config holds all suite configuration.
type Config struct {
	// Target environment
	Env      string
	BaseURL  string
	AppTitle string

	// Browser options
	Browser           string
	Headless          bool
	SlowMo            time.Duration
	ViewportWidth     int
	ViewportHeight    int
	IgnoreHTTPSErrors bool
	Video             bool
	Tracing           bool

	// Waits
	ImplicitWait      time.Duration // element-level waits
	ExplicitWait      time.Duration // workflow-level waits
	NavigationTimeout time.Duration

	// Artifact directories
	ScreenshotDir string
	VideoDir      string
	TraceDir      string

	OTP      OTPConfig
	Database DatabaseConfig
	S3       S3Config
	Notify   NotifyConfig

	// YAML-sourced fallbacks, overridden per lookup by env vars
	credentials map[string]Credentials
	uploads     map[string]string

	// Problems detected while loading (unparseable values); surfaced by Validate.
	loadIssues []string
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Flags are the CLI overrides shared by the suite binaries.
type Flags struct {
	Env          string
	ConfigFile   string
	ValidateOnly bool
	Browser      string
	Headless     string // "", "true", or "false"; empty inherits env/YAML
	Video        bool
	Tracing      bool
}

// ParseFlags registers and parses the suite CLI flags. Call before LoadConfig.
func ParseFlags() Flags {
	var f Flags
	flag.StringVar(&f.Env, "env", "", "Target environment name (default: APP_ENV or qa)")
	flag.StringVar(&f.ConfigFile, "config", "config.yaml", "Path to the YAML configuration file")
	flag.BoolVar(&f.ValidateOnly, "validate-config", false, "Validate configuration and exit")
	flag.StringVar(&f.Browser, "browser", "", "Browser to drive (chrome, chromium, edge, firefox, webkit)")
	flag.StringVar(&f.Headless, "headless", "", "Override headless mode (true/false)")
	flag.BoolVar(&f.Video, "video", false, "Record a video per browser context")
	flag.BoolVar(&f.Tracing, "tracing", false, "Capture a Playwright trace per browser context")
	flag.Parse()
	return f
}

// yamlFile mirrors the config.yaml layout.
type yamlFile struct {
	AppTitle     string                     `yaml:"app_title"`
	Environments map[string]yamlEnvironment `yaml:"environments"`
	Browser      yamlBrowser                `yaml:"browser"`
	Timeouts     yamlTimeouts               `yaml:"timeouts"`
	Artifacts    yamlArtifacts              `yaml:"artifacts"`
	OTP          yamlOTP                    `yaml:"otp"`
	Credentials  map[string]yamlCredentials `yaml:"credentials"`
	Database     yamlDatabase               `yaml:"database"`
	Uploads      map[string]string          `yaml:"uploads"`
	Notify       yamlNotify                 `yaml:"notify"`
}

type yamlEnvironment struct {
	BaseURL string `yaml:"base_url"`
}

type yamlBrowser struct {
	Name              string `yaml:"name"`
	Headless          *bool  `yaml:"headless"`
	SlowMo            string `yaml:"slow_mo"`
	ViewportWidth     int    `yaml:"viewport_width"`
	ViewportHeight    int    `yaml:"viewport_height"`
	IgnoreHTTPSErrors *bool  `yaml:"ignore_https_errors"`
}

type yamlTimeouts struct {
	ImplicitWait      string `yaml:"implicit_wait"`
	ExplicitWait      string `yaml:"explicit_wait"`
	NavigationTimeout string `yaml:"navigation_timeout"`
}

type yamlArtifacts struct {
	ScreenshotDir string `yaml:"screenshot_dir"`
	VideoDir      string `yaml:"video_dir"`
	TraceDir      string `yaml:"trace_dir"`
}

type yamlOTP struct {
	Email         string `yaml:"email"`
	IMAPServer    string `yaml:"imap_server"`
	IMAPPort      int    `yaml:"imap_port"`
	SubjectFilter string `yaml:"subject_filter"`
	Timeout       string `yaml:"timeout"`
	PollInterval  string `yaml:"poll_interval"`
}

type yamlCredentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type yamlDatabase struct {
	Server   string `yaml:"server"`
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type yamlNotify struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// LoadConfig resolves the full suite configuration and validates it.
// A missing .env or YAML file is not an error; unreadable or unparseable
// files are.
func LoadConfig(flags Flags) (*Config, error) {
	// .env first so the environment lookups below see its values.
	_ = godotenv.Load()

	cfg := &Config{
		AppTitle:          DefaultAppTitle,
		Browser:           "chrome",
		Headless:          true,
		ViewportWidth:     1920,
		ViewportHeight:    1080,
		IgnoreHTTPSErrors: true,
		ImplicitWait:      15 * time.Second,
		ExplicitWait:      30 * time.Second,
		NavigationTimeout: 60 * time.Second,
		ScreenshotDir:     "screenshots",
		VideoDir:          "videos",
		TraceDir:          "traces",
		OTP: OTPConfig{
			IMAPPort:      993,
			SubjectFilter: "verification code",
			Timeout:       60 * time.Second,
			PollInterval:  5 * time.Second,
		},
		credentials: map[string]Credentials{},
		uploads:     map[string]string{},
	}

	cfg.Env = strings.TrimSpace(flags.Env)
	if cfg.Env == "" {
		cfg.Env = getEnvOrDefault("APP_ENV", "qa")
	}

	var doc yamlFile
	yamlLoaded, err := readYAML(flags.ConfigFile, &doc)
	if err != nil {
		return nil, err
	}
	if yamlLoaded {
		cfg.applyYAML(flags.ConfigFile, doc)
	}

	cfg.applyEnv()
	cfg.applyFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoadConfig loads configuration and panics if validation fails.
// Use in main() to fail fast on bad config.
func MustLoadConfig(flags Flags) *Config {
	cfg, err := LoadConfig(flags)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			panic(fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(validationErr.Errors, "\n  - ")))
		}
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

func readYAML(path string, doc *yamlFile) (bool, error) {
	if path == "" {
		return false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return false, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return true, nil
}

func (c *Config) applyYAML(path string, doc yamlFile) {
	if doc.AppTitle != "" {
		c.AppTitle = doc.AppTitle
	}
	if env, ok := doc.Environments[c.Env]; ok && env.BaseURL != "" {
		c.BaseURL = strings.TrimRight(env.BaseURL, "/")
	}

	if doc.Browser.Name != "" {
		c.Browser = doc.Browser.Name
	}
	if doc.Browser.Headless != nil {
		c.Headless = *doc.Browser.Headless
	}
	if doc.Browser.IgnoreHTTPSErrors != nil {
		c.IgnoreHTTPSErrors = *doc.Browser.IgnoreHTTPSErrors
	}
	if doc.Browser.ViewportWidth > 0 {
		c.ViewportWidth = doc.Browser.ViewportWidth
	}
	if doc.Browser.ViewportHeight > 0 {
		c.ViewportHeight = doc.Browser.ViewportHeight
	}
	c.parseDurationInto(&c.SlowMo, doc.Browser.SlowMo, path+": browser.slow_mo")

	c.parseDurationInto(&c.ImplicitWait, doc.Timeouts.ImplicitWait, path+": timeouts.implicit_wait")
	c.parseDurationInto(&c.ExplicitWait, doc.Timeouts.ExplicitWait, path+": timeouts.explicit_wait")
	c.parseDurationInto(&c.NavigationTimeout, doc.Timeouts.NavigationTimeout, path+": timeouts.navigation_timeout")

	if doc.Artifacts.ScreenshotDir != "" {
		c.ScreenshotDir = doc.Artifacts.ScreenshotDir
	}
	if doc.Artifacts.VideoDir != "" {
		c.VideoDir = doc.Artifacts.VideoDir
	}
	if doc.Artifacts.TraceDir != "" {
		c.TraceDir = doc.Artifacts.TraceDir
	}

	if doc.OTP.Email != "" {
		c.OTP.Email = doc.OTP.Email
	}
	if doc.OTP.IMAPServer != "" {
		c.OTP.IMAPServer = doc.OTP.IMAPServer
	}
	if doc.OTP.IMAPPort > 0 {
		c.OTP.IMAPPort = doc.OTP.IMAPPort
	}
	if doc.OTP.SubjectFilter != "" {
		c.OTP.SubjectFilter = doc.OTP.SubjectFilter
	}
	c.parseDurationInto(&c.OTP.Timeout, doc.OTP.Timeout, path+": otp.timeout")
	c.parseDurationInto(&c.OTP.PollInterval, doc.OTP.PollInterval, path+": otp.poll_interval")

	for role, creds := range doc.Credentials {
		c.credentials[role] = Credentials{Username: creds.Username, Password: creds.Password}
	}

	if doc.Database.Server != "" {
		c.Database.Server = doc.Database.Server
	}
	if doc.Database.Name != "" {
		c.Database.Name = doc.Database.Name
	}
	if doc.Database.Username != "" {
		c.Database.Username = doc.Database.Username
	}
	if doc.Database.Password != "" {
		c.Database.Password = doc.Database.Password
	}

	for key, p := range doc.Uploads {
		c.uploads[key] = p
	}

	if doc.Notify.From != "" {
		c.Notify.From = doc.Notify.From
	}
	if doc.Notify.To != "" {
		c.Notify.To = doc.Notify.To
	}
}

func (c *Config) applyEnv() {
	// Base URL: {ENV}_BASE_URL beats BASE_URL beats the YAML value.
	if v := strings.TrimSpace(os.Getenv("BASE_URL")); v != "" {
		c.BaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv(EnvKey(c.Env) + "_BASE_URL")); v != "" {
		c.BaseURL = strings.TrimRight(v, "/")
	}

	if v := strings.TrimSpace(os.Getenv("BROWSER")); v != "" {
		c.Browser = v
	}
	c.parseBoolInto(&c.Headless, "HEADLESS")
	c.parseBoolInto(&c.IgnoreHTTPSErrors, "IGNORE_HTTPS_ERRORS")
	c.parseBoolInto(&c.Video, "VIDEO")
	c.parseBoolInto(&c.Tracing, "TRACING")
	c.parseDurationInto(&c.SlowMo, os.Getenv("SLOW_MO"), "SLOW_MO")

	c.parseDurationInto(&c.ImplicitWait, os.Getenv("IMPLICIT_WAIT"), "IMPLICIT_WAIT")
	c.parseDurationInto(&c.ExplicitWait, os.Getenv("EXPLICIT_WAIT"), "EXPLICIT_WAIT")
	c.parseDurationInto(&c.NavigationTimeout, os.Getenv("NAVIGATION_TIMEOUT"), "NAVIGATION_TIMEOUT")

	if v := strings.TrimSpace(os.Getenv("SCREENSHOT_DIR")); v != "" {
		c.ScreenshotDir = v
	}
	if v := strings.TrimSpace(os.Getenv("VIDEO_DIR")); v != "" {
		c.VideoDir = v
	}
	if v := strings.TrimSpace(os.Getenv("TRACE_DIR")); v != "" {
		c.TraceDir = v
	}

	if v := strings.TrimSpace(os.Getenv("OTP_EMAIL")); v != "" {
		c.OTP.Email = v
	}
	if v := os.Getenv("OTP_EMAIL_PASSWORD"); v != "" {
		c.OTP.Password = v
	}
	if v := strings.TrimSpace(os.Getenv("IMAP_SERVER")); v != "" {
		c.OTP.IMAPServer = v
	}
	if v := strings.TrimSpace(os.Getenv("IMAP_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			c.loadIssues = append(c.loadIssues, fmt.Sprintf("IMAP_PORT is not a valid port: %q", v))
		} else {
			c.OTP.IMAPPort = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("OTP_SUBJECT_FILTER")); v != "" {
		c.OTP.SubjectFilter = v
	}
	c.parseDurationInto(&c.OTP.Timeout, os.Getenv("OTP_TIMEOUT"), "OTP_TIMEOUT")
	c.parseDurationInto(&c.OTP.PollInterval, os.Getenv("OTP_POLL_INTERVAL"), "OTP_POLL_INTERVAL")

	if v := strings.TrimSpace(os.Getenv("DB_SERVER")); v != "" {
		c.Database.Server = v
	}
	if v := strings.TrimSpace(os.Getenv("DB_NAME")); v != "" {
		c.Database.Name = v
	}
	if v := strings.TrimSpace(os.Getenv("DB_USERNAME")); v != "" {
		c.Database.Username = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}

	c.S3.Endpoint = strings.TrimSpace(os.Getenv("AWS_ENDPOINT_URL_S3"))
	c.S3.Region = getEnvOrDefault("AWS_REGION", "auto")
	c.S3.AccessKeyID = strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID"))
	c.S3.SecretAccessKey = strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY"))
	if v := strings.TrimSpace(os.Getenv("ARTIFACT_BUCKET")); v != "" {
		c.S3.Bucket = v
	}

	if v := strings.TrimSpace(os.Getenv("RESEND_API_KEY")); v != "" {
		c.Notify.ResendAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("NOTIFY_FROM_EMAIL")); v != "" {
		c.Notify.From = v
	}
	if v := strings.TrimSpace(os.Getenv("NOTIFY_TO_EMAIL")); v != "" {
		c.Notify.To = v
	}
}

func (c *Config) applyFlags(flags Flags) {
	if flags.Browser != "" {
		c.Browser = flags.Browser
	}
	switch flags.Headless {
	case "":
	case "true":
		c.Headless = true
	case "false":
		c.Headless = false
	default:
		c.loadIssues = append(c.loadIssues, fmt.Sprintf("-headless must be true or false, got %q", flags.Headless))
	}
	if flags.Video {
		c.Video = true
	}
	if flags.Tracing {
		c.Tracing = true
	}
}

// RoleCredentials returns the credentials for a role. Environment variables
// ({ROLE}_USERNAME / {ROLE}_PASSWORD) override the YAML credentials block.
func (c *Config) RoleCredentials(role string) (Credentials, error) {
	if !isKnownRole(role) {
		return Credentials{}, fmt.Errorf("unknown role %q (known roles: %s)", role, strings.Join(Roles, ", "))
	}

	creds := c.credentials[role]
	prefix := EnvKey(role)
	if v := strings.TrimSpace(os.Getenv(prefix + "_USERNAME")); v != "" {
		creds.Username = v
	}
	if v := os.Getenv(prefix + "_PASSWORD"); v != "" {
		creds.Password = v
	}

	if creds.Username == "" || creds.Password == "" {
		return Credentials{}, fmt.Errorf(
			"no credentials for role %q: set %s_USERNAME and %s_PASSWORD or credentials.%s in the config file",
			role, prefix, prefix, role,
		)
	}
	return creds, nil
}

// UploadPath returns the path of a test upload file. UPLOAD_{KEY}_PATH
// overrides the YAML uploads block.
func (c *Config) UploadPath(key string) (string, error) {
	path := c.uploads[key]
	if v := strings.TrimSpace(os.Getenv("UPLOAD_" + EnvKey(key) + "_PATH")); v != "" {
		path = v
	}
	if path == "" {
		return "", fmt.Errorf("no upload path for key %q: set UPLOAD_%s_PATH or uploads.%s in the config file", key, EnvKey(key), key)
	}
	return path, nil
}

// Validate checks the resolved configuration and reports every problem at
// once, never just the first.
func (c *Config) Validate() error {
	errs := append([]string(nil), c.loadIssues...)

	if c.Env == "" {
		errs = append(errs, "environment name is empty (set -env or APP_ENV)")
	}
	if c.BaseURL == "" {
		key := EnvKey(c.Env)
		errs = append(errs, fmt.Sprintf(
			"no base URL for environment %q: set %s_BASE_URL, BASE_URL, or environments.%s.base_url in the config file",
			c.Env, key, c.Env,
		))
	}

	if !isKnownBrowser(c.Browser) {
		errs = append(errs, fmt.Sprintf("unknown browser %q (known browsers: %s)", c.Browser, strings.Join(KnownBrowsers, ", ")))
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		errs = append(errs, fmt.Sprintf("viewport must be positive, got %dx%d", c.ViewportWidth, c.ViewportHeight))
	}

	if c.ImplicitWait <= 0 {
		errs = append(errs, fmt.Sprintf("implicit wait must be positive, got %s", c.ImplicitWait))
	}
	if c.ExplicitWait <= 0 {
		errs = append(errs, fmt.Sprintf("explicit wait must be positive, got %s", c.ExplicitWait))
	}
	if c.NavigationTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("navigation timeout must be positive, got %s", c.NavigationTimeout))
	}

	if c.OTP.Configured() && !c.OTP.Complete() {
		var missing []string
		if c.OTP.Email == "" {
			missing = append(missing, "OTP_EMAIL")
		}
		if c.OTP.Password == "" {
			missing = append(missing, "OTP_EMAIL_PASSWORD")
		}
		if c.OTP.IMAPServer == "" {
			missing = append(missing, "IMAP_SERVER")
		}
		errs = append(errs, "incomplete OTP mailbox settings, missing: "+strings.Join(missing, ", "))
	}
	if c.OTP.Configured() {
		if c.OTP.Timeout <= 0 {
			errs = append(errs, fmt.Sprintf("OTP timeout must be positive, got %s", c.OTP.Timeout))
		}
		if c.OTP.PollInterval <= 0 {
			errs = append(errs, fmt.Sprintf("OTP poll interval must be positive, got %s", c.OTP.PollInterval))
		}
	}

	if c.Database.configured() && !c.Database.complete() {
		var missing []string
		if c.Database.Server == "" {
			missing = append(missing, "DB_SERVER")
		}
		if c.Database.Name == "" {
			missing = append(missing, "DB_NAME")
		}
		if c.Database.Username == "" {
			missing = append(missing, "DB_USERNAME")
		}
		if c.Database.Password == "" {
			missing = append(missing, "DB_PASSWORD")
		}
		errs = append(errs, "incomplete database settings, missing: "+strings.Join(missing, ", "))
	}

	for key := range c.uploads {
		path, err := c.UploadPath(key)
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			errs = append(errs, fmt.Sprintf("upload file for key %q not found: %s", key, path))
		}
	}

	if c.S3.Enabled() {
		if c.S3.AccessKeyID == "" || c.S3.SecretAccessKey == "" {
			errs = append(errs, "artifact upload configured (ARTIFACT_BUCKET set) but AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY missing")
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// ValidateStrict additionally requires credentials for every role and a
// complete OTP mailbox. Used by the config checker's -strict mode.
func (c *Config) ValidateStrict() error {
	var errs []string
	if err := c.Validate(); err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			errs = append(errs, validationErr.Errors...)
		} else {
			return err
		}
	}

	for _, role := range Roles {
		if _, err := c.RoleCredentials(role); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if !c.OTP.Complete() {
		errs = append(errs, "OTP mailbox settings are required in strict mode (OTP_EMAIL, OTP_EMAIL_PASSWORD, IMAP_SERVER)")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// PrintStartupSummary prints a human-readable summary of the configuration
// to stderr. Secrets are reported as set or missing, never echoed.
func (c *Config) PrintStartupSummary() {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintf(os.Stderr, "omsd-e2e suite configuration (env: %s)\n", c.Env)
	fmt.Fprintf(os.Stderr, "  Base URL:   %s\n", c.BaseURL)
	fmt.Fprintf(os.Stderr, "  Browser:    %s (headless=%t, slowmo=%s)\n", c.Browser, c.Headless, c.SlowMo)
	fmt.Fprintf(os.Stderr, "  Viewport:   %dx%d\n", c.ViewportWidth, c.ViewportHeight)
	fmt.Fprintf(os.Stderr, "  Waits:      implicit=%s explicit=%s navigation=%s\n", c.ImplicitWait, c.ExplicitWait, c.NavigationTimeout)
	fmt.Fprintf(os.Stderr, "  Capture:    video=%t tracing=%t\n", c.Video, c.Tracing)
	fmt.Fprintf(os.Stderr, "  Artifacts:  screenshots=%s videos=%s traces=%s\n", c.ScreenshotDir, c.VideoDir, c.TraceDir)

	if c.OTP.Configured() {
		fmt.Fprintf(os.Stderr, "  OTP:        %s via %s:%d (password %s)\n",
			c.OTP.Email, c.OTP.IMAPServer, c.OTP.IMAPPort, setOrMissing(c.OTP.Password))
	} else {
		fmt.Fprintln(os.Stderr, "  OTP:        not configured")
	}

	if c.Database.configured() {
		fmt.Fprintf(os.Stderr, "  Database:   %s/%s (credentials %s)\n",
			c.Database.Server, c.Database.Name, setOrMissing(c.Database.Username+c.Database.Password))
	} else {
		fmt.Fprintln(os.Stderr, "  Database:   not configured")
	}

	if c.S3.Enabled() {
		fmt.Fprintf(os.Stderr, "  Upload:     s3 bucket %s (endpoint: %s)\n", c.S3.Bucket, c.S3.Endpoint)
	} else {
		fmt.Fprintln(os.Stderr, "  Upload:     local only")
	}

	var roleStates []string
	for _, role := range Roles {
		state := "set"
		if _, err := c.RoleCredentials(role); err != nil {
			state = "missing"
		}
		roleStates = append(roleStates, role+"="+state)
	}
	fmt.Fprintf(os.Stderr, "  Roles:      %s\n", strings.Join(roleStates, " "))
	fmt.Fprintln(os.Stderr, "")
}

// SetRoleCredentials overrides credentials for a role in-process. The browser
// harness uses it to point the suite at seeded users.
func (c *Config) SetRoleCredentials(role string, creds Credentials) {
	if c.credentials == nil {
		c.credentials = map[string]Credentials{}
	}
	c.credentials[role] = creds
}

// SetUploadPath overrides the upload file path for a key in-process.
func (c *Config) SetUploadPath(key, path string) {
	if c.uploads == nil {
		c.uploads = map[string]string{}
	}
	c.uploads[key] = path
}

// EnvKey converts an identifier to its environment-variable form:
// upper-cased with every non-alphanumeric run collapsed to an underscore.
func EnvKey(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToUpper(strings.TrimSpace(name)) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}

func isKnownRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

func isKnownBrowser(name string) bool {
	for _, b := range KnownBrowsers {
		if b == name {
			return true
		}
	}
	return false
}

func setOrMissing(v string) string {
	if strings.TrimSpace(v) == "" {
		return "missing"
	}
	return "set"
}

// Helper parsers. Unset variables keep the current value; unparseable values
// are collected as load issues so Validate can report them.

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func (c *Config) parseBoolInto(dst *bool, key string) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		c.loadIssues = append(c.loadIssues, fmt.Sprintf("%s is not a valid boolean: %q", key, value))
		return
	}
	*dst = parsed
}

func (c *Config) parseDurationInto(dst *time.Duration, value, source string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		c.loadIssues = append(c.loadIssues, fmt.Sprintf("%s is not a valid duration: %q", source, value))
		return
	}
	*dst = parsed
}
