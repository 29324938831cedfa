package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const heroPage = `path: guides/start
title: Start here
sections:
  - type: hero
    props:
      headline: Start with the loop
`

func writeSeed(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// useMemorySite points configuration at a memory store seeded from dir
func useMemorySite(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SEED_DIR", dir)
	t.Setenv("WATCH_SEED", "false")
	t.Setenv("METRICS_BACKEND", "none")
	t.Setenv("LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out, loadContainer)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidate(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	good := writeSeed(t, dir, "good.yaml", heroPage)
	writeSeed(t, dir, "nested/post.md", "---\ntitle: Post\n---\nBody\n")
	bad := writeSeed(t, dir, "bad.yaml", "path: x\ntitle: X\nsections:\n  - type: doesNotExist\n")

	// Act
	out, err := execute(t, "validate", good)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "ok   "+good+" (page /guides/start, 1 sections)")

	out, err = execute(t, "validate", dir)
	assert.Error(t, err)
	assert.Contains(t, out, "FAIL "+bad)
	assert.Contains(t, out, "doesNotExist")
	assert.Contains(t, out, "ok   "+filepath.Join(dir, "nested", "post.md"))
}

func TestValidate_RejectsDesignedPath(t *testing.T) {
	dir := t.TempDir()
	file := writeSeed(t, dir, "podcast.yaml", "path: podcast\ntitle: Shadow\nsections: []\n")

	out, err := execute(t, "validate", file)

	assert.Error(t, err)
	assert.Contains(t, out, "FAIL "+file)
}

func TestValidate_NoMatch(t *testing.T) {
	_, err := execute(t, "validate", filepath.Join(t.TempDir(), "*.yaml"))

	assert.ErrorContains(t, err, "no files match")
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "start.yaml", heroPage)
	useMemorySite(t, dir)

	out, err := execute(t, "render", "/guides/start")
	require.NoError(t, err)
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "Start with the loop")

	out, err = execute(t, "render", "--json", "loops/sales")
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "designed"`)

	_, err = execute(t, "render", "nowhere")
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "start.yaml", heroPage)
	useMemorySite(t, t.TempDir())

	out, err := execute(t, "seed", "--dir", dir)

	require.NoError(t, err)
	assert.Contains(t, out, "seeded 1 pages and 0 slot documents")
}

func TestExport(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	writeSeed(t, dir, "start.yaml", heroPage)
	writeSeed(t, dir, "draft.yaml", "path: guides/draft\ntitle: Draft\npublished: false\nsections: []\n")
	useMemorySite(t, dir)
	out := t.TempDir()

	// Act
	stdout, err := execute(t, "export", "--out", out, "--concurrency", "3")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, stdout, "exported 7 pages")

	for _, path := range []string{"index.html", "loops/marketing/index.html", "podcast/index.html", "guides/start/index.html"} {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(path)))
	}
	assert.NoFileExists(t, filepath.Join(out, "guides", "draft", "index.html"))

	html, err := os.ReadFile(filepath.Join(out, "guides", "start", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Start with the loop")
}
