// Package artifacts persists run outputs: screenshots, videos, traces, and
// reports. Local runs write a directory tree; CI runs mirror the same keys
// into an S3-compatible bucket.
package artifacts

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/omsd-qa/omsd-e2e/internal/errs"
)

// Store persists run artifacts under slash-separated keys.
type Store interface {
	Save(ctx context.Context, key string, content []byte, contentType string) error
}

// Layout names the artifact keys of one run.
type Layout struct {
	runID string
}

func NewLayout(runID string) Layout {
	return Layout{runID: runID}
}

// Root is the key prefix all of the run's artifacts live under.
func (l Layout) Root() string {
	return path.Join("runs", l.runID)
}

func (l Layout) ScreenshotKey(name string) string {
	return path.Join(l.Root(), "screenshots", name)
}

func (l Layout) VideoKey(name string) string {
	return path.Join(l.Root(), "videos", name)
}

func (l Layout) TraceKey(name string) string {
	return path.Join(l.Root(), "traces", name)
}

func (l Layout) ReportKey(name string) string {
	return path.Join(l.Root(), "reports", name)
}

// ContentTypeFor guesses a content type from the artifact's extension.
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".webm":
		return "video/webm"
	case ".zip":
		return "application/zip"
	case ".html":
		return "text/html; charset=utf-8"
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// SaveFile reads a file from disk and stores it under key. Playwright
// writes videos and traces to disk itself, so uploads go through here.
func SaveFile(ctx context.Context, store Store, key, filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return errs.Wrap(errs.NotFound, fmt.Sprintf("read artifact file %s failed", filePath), err)
	}
	return store.Save(ctx, key, content, ContentTypeFor(filePath))
}

// DirStore writes artifacts under a root directory, one file per key.
type DirStore struct {
	root string
}

func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// Path returns the on-disk location a key maps to.
func (s *DirStore) Path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *DirStore) Save(ctx context.Context, key string, content []byte, contentType string) error {
	if key == "" || strings.Contains(key, "..") {
		return errs.New(errs.InvalidArgument, fmt.Sprintf("invalid artifact key %q", key))
	}
	dst := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errs.Wrap(errs.Internal, fmt.Sprintf("create artifact directory for %s failed", key), err)
	}
	if err := os.WriteFile(dst, content, 0o644); err != nil {
		return errs.Wrap(errs.Internal, fmt.Sprintf("write artifact %s failed", key), err)
	}
	return nil
}
