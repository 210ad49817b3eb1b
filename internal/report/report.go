// Package report accumulates per-case results during a suite run and
// renders them as a markdown summary or a sanitized HTML page.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/omsd-qa/omsd-e2e/internal/errs"
	"github.com/omsd-qa/omsd-e2e/internal/obs"
)

// Status is the outcome of one test case.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusRunning Status = "running"
)

// CaseResult is the recorded outcome of one test case.
type CaseResult struct {
	Name      string
	Product   string
	Status    Status
	Error     string
	Started   time.Time
	Finished  time.Time
	Steps     []string
	Artifacts []string
}

// Duration is how long the case ran. Zero until the case finishes.
func (c CaseResult) Duration() time.Duration {
	if c.Finished.IsZero() {
		return 0
	}
	return c.Finished.Sub(c.Started)
}

// Recorder collects case results. All methods are safe for concurrent use;
// parallel test cases share one recorder.
type Recorder struct {
	mu      sync.Mutex
	runID   string
	env     string
	browser string
	started time.Time
	order   []string
	cases   map[string]*CaseResult
}

func NewRecorder(runID, env, browserName string) *Recorder {
	return &Recorder{
		runID:   runID,
		env:     env,
		browser: browserName,
		started: time.Now(),
		cases:   make(map[string]*CaseResult),
	}
}

// StartCase opens a result for the named case. Starting the same name again
// resets its record.
func (r *Recorder) StartCase(name, product string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.cases[name]; !exists {
		r.order = append(r.order, name)
	}
	r.cases[name] = &CaseResult{
		Name:    name,
		Product: product,
		Status:  StatusRunning,
		Started: time.Now(),
	}
}

// Step appends a completed step name to the case's record.
func (r *Recorder) Step(caseName, step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.lookup(caseName)
	if c == nil {
		return
	}
	c.Steps = append(c.Steps, step)
}

// Artifact attaches a saved artifact path or key to the case.
func (r *Recorder) Artifact(caseName, ref string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.lookup(caseName)
	if c == nil {
		return
	}
	c.Artifacts = append(c.Artifacts, ref)
}

// Pass marks the case as passed.
func (r *Recorder) Pass(caseName string) {
	r.finish(caseName, StatusPassed, "")
}

// Fail marks the case as failed with the error's message.
func (r *Recorder) Fail(caseName string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.finish(caseName, StatusFailed, msg)
}

// Skip marks the case as skipped with a reason.
func (r *Recorder) Skip(caseName, reason string) {
	r.finish(caseName, StatusSkipped, reason)
}

func (r *Recorder) finish(caseName string, status Status, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.lookup(caseName)
	if c == nil {
		return
	}
	c.Status = status
	c.Error = detail
	c.Finished = time.Now()
}

// lookup must be called with the mutex held.
func (r *Recorder) lookup(caseName string) *CaseResult {
	c, ok := r.cases[caseName]
	if !ok {
		obs.Pkg("report").Warn("unknown_case", "case", caseName)
		return nil
	}
	return c
}

// Results returns a copy of all case results in start order.
func (r *Recorder) Results() []CaseResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CaseResult, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.cases[name])
	}
	return out
}

// Failed reports whether any recorded case failed.
func (r *Recorder) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cases {
		if c.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Summary renders the run as markdown: a header, a result table, and a
// section per failure with its steps and artifacts.
func (r *Recorder) Summary() string {
	results := r.Results()

	var passed, failed, skipped int
	for _, c := range results {
		switch c.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# OMSD E2E Run %s\n\n", r.runID)
	fmt.Fprintf(&b, "- Environment: %s\n", r.env)
	fmt.Fprintf(&b, "- Browser: %s\n", r.browser)
	fmt.Fprintf(&b, "- Started: %s\n", r.started.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Cases: %d (passed %d, failed %d, skipped %d)\n\n", len(results), passed, failed, skipped)

	b.WriteString("## Results\n\n")
	b.WriteString("| Case | Product | Status | Duration |\n")
	b.WriteString("|------|---------|--------|----------|\n")
	for _, c := range results {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			cell(c.Name), cell(c.Product), c.Status, formatDuration(c.Duration()))
	}

	failures := make([]CaseResult, 0, failed)
	for _, c := range results {
		if c.Status == StatusFailed {
			failures = append(failures, c)
		}
	}
	if len(failures) > 0 {
		b.WriteString("\n## Failures\n")
		sort.Slice(failures, func(i, j int) bool { return failures[i].Name < failures[j].Name })
		for _, c := range failures {
			fmt.Fprintf(&b, "\n### %s\n\n", c.Name)
			if c.Error != "" {
				fmt.Fprintf(&b, "```\n%s\n```\n", c.Error)
			}
			if len(c.Steps) > 0 {
				fmt.Fprintf(&b, "\nSteps completed: %s\n", strings.Join(c.Steps, ", "))
			}
			if len(c.Artifacts) > 0 {
				b.WriteString("\nArtifacts:\n\n")
				for _, a := range c.Artifacts {
					fmt.Fprintf(&b, "- %s\n", a)
				}
			}
		}
	}
	return b.String()
}

// HTML renders the markdown summary to sanitized HTML.
func (r *Recorder) HTML() []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(r.Summary()))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	raw := markdown.Render(doc, renderer)

	return bluemonday.UGCPolicy().SanitizeBytes(raw)
}

// WriteHTML writes the HTML summary to path, creating parent directories.
func (r *Recorder) WriteHTML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.Internal, "create report directory failed", err)
	}
	if err := os.WriteFile(path, r.HTML(), 0o644); err != nil {
		return errs.Wrap(errs.Internal, "write report failed", err)
	}
	return nil
}

// cell escapes a value for use inside a markdown table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(100 * time.Millisecond).String()
}
