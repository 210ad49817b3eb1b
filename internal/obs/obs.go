// Package obs provides the suite's structured logging: a process-global
// slog JSON logger plus context correlation for run, test case, and step.
package obs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type correlationContextKey struct{}

// Correlation carries per-run identifiers attached to every log event.
// RequestID is only set inside the stand-in app's HTTP handlers.
type Correlation struct {
	RunID     string
	Env       string
	Browser   string
	TestCase  string
	Product   string
	Step      string
	RequestID string
}

var (
	loggerMu sync.RWMutex
	logger   *slog.Logger
)

// Init configures the global structured logger.
func Init() {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger != nil {
		return
	}
	logger = newLogger(os.Stderr)
	slog.SetDefault(logger)
}

// SetOutputForTests overrides the global logger output for tests.
func SetOutputForTests(w io.Writer) func() {
	loggerMu.Lock()
	prev := logger
	logger = newLogger(w)
	slog.SetDefault(logger)
	loggerMu.Unlock()

	return func() {
		loggerMu.Lock()
		defer loggerMu.Unlock()
		if prev != nil {
			logger = prev
		} else {
			logger = newLogger(os.Stderr)
		}
		slog.SetDefault(logger)
	}
}

func newLogger(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey {
				t, ok := attr.Value.Any().(time.Time)
				if ok {
					return slog.String(slog.TimeKey, t.UTC().Format(time.RFC3339Nano))
				}
			}
			return attr
		},
	})
	return slog.New(handler)
}

func globalLogger() *slog.Logger {
	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}
	Init()
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// Pkg returns a logger tagged with package name.
func Pkg(pkg string) *slog.Logger {
	return globalLogger().With("pkg", pkg)
}

// From returns a logger with correlation fields from context.
func From(ctx context.Context) *slog.Logger {
	l := globalLogger()
	corr := CorrelationFromContext(ctx)
	attrs := correlationAttrs(corr)
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}

// WithRun stores the run id and environment name in context.
func WithRun(ctx context.Context, runID, env string) context.Context {
	corr := CorrelationFromContext(ctx)
	corr.RunID = strings.TrimSpace(runID)
	corr.Env = strings.TrimSpace(env)
	return context.WithValue(ctx, correlationContextKey{}, corr)
}

// WithTestCase stores the current test case (and product under test) in context.
func WithTestCase(ctx context.Context, testCase, product string) context.Context {
	corr := CorrelationFromContext(ctx)
	corr.TestCase = strings.TrimSpace(testCase)
	corr.Product = strings.TrimSpace(product)
	return context.WithValue(ctx, correlationContextKey{}, corr)
}

// WithStep stores the current workflow step in context.
func WithStep(ctx context.Context, step string) context.Context {
	corr := CorrelationFromContext(ctx)
	corr.Step = strings.TrimSpace(step)
	return context.WithValue(ctx, correlationContextKey{}, corr)
}

// WithBrowser stores the browser name in context.
func WithBrowser(ctx context.Context, browser string) context.Context {
	corr := CorrelationFromContext(ctx)
	corr.Browser = strings.TrimSpace(browser)
	return context.WithValue(ctx, correlationContextKey{}, corr)
}

// WithCorrelation merges the given correlation fields into context.
func WithCorrelation(ctx context.Context, corr Correlation) context.Context {
	existing := CorrelationFromContext(ctx)
	if corr.RunID != "" {
		existing.RunID = corr.RunID
	}
	if corr.Env != "" {
		existing.Env = corr.Env
	}
	if corr.Browser != "" {
		existing.Browser = corr.Browser
	}
	if corr.TestCase != "" {
		existing.TestCase = corr.TestCase
	}
	if corr.Product != "" {
		existing.Product = corr.Product
	}
	if corr.Step != "" {
		existing.Step = corr.Step
	}
	if corr.RequestID != "" {
		existing.RequestID = corr.RequestID
	}
	return context.WithValue(ctx, correlationContextKey{}, existing)
}

// CorrelationFromContext returns correlation fields from context.
func CorrelationFromContext(ctx context.Context) Correlation {
	if ctx == nil {
		return Correlation{}
	}
	corr, ok := ctx.Value(correlationContextKey{}).(Correlation)
	if !ok {
		return Correlation{}
	}
	return corr
}

func correlationAttrs(corr Correlation) []any {
	attrs := make([]any, 0, 12)
	if corr.RunID != "" {
		attrs = append(attrs, "run_id", corr.RunID)
	}
	if corr.Env != "" {
		attrs = append(attrs, "env", corr.Env)
	}
	if corr.Browser != "" {
		attrs = append(attrs, "browser", corr.Browser)
	}
	if corr.TestCase != "" {
		attrs = append(attrs, "test_case", corr.TestCase)
	}
	if corr.Product != "" {
		attrs = append(attrs, "product", corr.Product)
	}
	if corr.Step != "" {
		attrs = append(attrs, "step", corr.Step)
	}
	if corr.RequestID != "" {
		attrs = append(attrs, "request_id", corr.RequestID)
	}
	return attrs
}

// NewRunID returns a fresh identifier for a suite run.
func NewRunID() string {
	return "run-" + uuid.NewString()
}

func newRequestID() string {
	return "req-" + uuid.NewString()
}
