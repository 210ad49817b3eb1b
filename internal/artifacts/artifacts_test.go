package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omsd-qa/omsd-e2e/internal/errs"
)

func TestLayoutKeys(t *testing.T) {
	l := NewLayout("run-20260314-a1b2")
	assert.Equal(t, "runs/run-20260314-a1b2", l.Root())
	assert.Equal(t, "runs/run-20260314-a1b2/screenshots/ESG-410_valid_login_after_signin_20260314_092653.png",
		l.ScreenshotKey("ESG-410_valid_login_after_signin_20260314_092653.png"))
	assert.Equal(t, "runs/run-20260314-a1b2/videos/case1.webm", l.VideoKey("case1.webm"))
	assert.Equal(t, "runs/run-20260314-a1b2/traces/case1.zip", l.TraceKey("case1.zip"))
	assert.Equal(t, "runs/run-20260314-a1b2/reports/summary.html", l.ReportKey("summary.html"))
}

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"shot.png":     "image/png",
		"clip.WEBM":    "video/webm",
		"trace.zip":    "application/zip",
		"report.html":  "text/html; charset=utf-8",
		"summary.md":   "text/markdown; charset=utf-8",
		"run.json":     "application/json",
		"mystery.blob": "application/octet-stream",
	}
	for name, want := range cases {
		assert.Equal(t, want, ContentTypeFor(name), "name %s", name)
	}
}

func TestDirStore_SaveAndPath(t *testing.T) {
	root := t.TempDir()
	store := NewDirStore(root)
	ctx := context.Background()

	key := NewLayout("run-1").ScreenshotKey("a.png")
	require.NoError(t, store.Save(ctx, key, []byte("png-bytes"), "image/png"))

	got, err := os.ReadFile(store.Path(key))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(got))
	assert.Equal(t, filepath.Join(root, "runs", "run-1", "screenshots", "a.png"), store.Path(key))
}

func TestDirStore_RejectsTraversalKeys(t *testing.T) {
	store := NewDirStore(t.TempDir())
	err := store.Save(context.Background(), "../outside.txt", []byte("x"), "text/plain")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.InvalidArgument))

	err = store.Save(context.Background(), "", []byte("x"), "text/plain")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.InvalidArgument))
}

func TestSaveFile_ReadsFromDisk(t *testing.T) {
	src := filepath.Join(t.TempDir(), "trace.zip")
	require.NoError(t, os.WriteFile(src, []byte("zip-bytes"), 0o644))

	store := NewDirStore(t.TempDir())
	key := NewLayout("run-2").TraceKey("trace.zip")
	require.NoError(t, SaveFile(context.Background(), store, key, src))

	got, err := os.ReadFile(store.Path(key))
	require.NoError(t, err)
	assert.Equal(t, "zip-bytes", string(got))
}

func TestSaveFile_MissingFileIsNotFound(t *testing.T) {
	store := NewDirStore(t.TempDir())
	err := SaveFile(context.Background(), store, "runs/x/traces/missing.zip", "/nonexistent/missing.zip")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.NotFound))
}

func TestS3Store_SaveAndGet(t *testing.T) {
	store := TestS3Store(t, "omsd-artifacts")
	ctx := context.Background()

	key := NewLayout("run-3").ReportKey("summary.html")
	require.NoError(t, store.Save(ctx, key, []byte("<html></html>"), "text/html; charset=utf-8"))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(got))
	assert.Equal(t, "omsd-artifacts", store.Bucket())
}

func TestS3Store_GetMissingKeyIsNotFound(t *testing.T) {
	store := TestS3Store(t, "omsd-artifacts")
	_, err := store.Get(context.Background(), "runs/none/reports/missing.html")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.NotFound))
}
