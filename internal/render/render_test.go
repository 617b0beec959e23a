package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplates(t *testing.T, templates map[string]string) string {
	t.Helper()
	publicDir := t.TempDir()
	templatesDir := filepath.Join(publicDir, "templates")
	require.NoError(t, os.MkdirAll(templatesDir, 0o755))
	for name, content := range templates {
		path := filepath.Join(templatesDir, name+".html")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return publicDir
}

func TestRenderByLogicalName(t *testing.T) {
	publicDir := writeTemplates(t, map[string]string{
		"index":  `<h1>{{.Theme}}</h1>`,
		"search": `<p>{{.Query}}</p>`,
	})

	renderer, err := New(publicDir)
	require.NoError(t, err)

	markup, err := renderer.Render("index", struct{ Theme string }{"simple"})
	require.NoError(t, err)
	assert.Equal(t, "<h1>simple</h1>", markup)

	markup, err = renderer.Render("search", struct{ Query string }{"sweden"})
	require.NoError(t, err)
	assert.Equal(t, "<p>sweden</p>", markup)
}

func TestRenderEscapesUserData(t *testing.T) {
	publicDir := writeTemplates(t, map[string]string{
		"search": `<p>{{.Query}}</p>`,
	})

	renderer, err := New(publicDir)
	require.NoError(t, err)

	markup, err := renderer.Render("search", struct{ Query string }{`<script>alert(1)</script>`})
	require.NoError(t, err)
	assert.NotContains(t, markup, "<script>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	publicDir := writeTemplates(t, map[string]string{
		"index": `<h1>hi</h1>`,
	})

	renderer, err := New(publicDir)
	require.NoError(t, err)

	_, err = renderer.Render("missing", nil)
	require.Error(t, err)
}

func TestNewFailsWithoutTemplates(t *testing.T) {
	_, err := New(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no templates found")
}

func TestResolvePublicDirConfigured(t *testing.T) {
	dir := t.TempDir()

	resolved, err := ResolvePublicDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, resolved)
}

func TestResolvePublicDirConfiguredMissing(t *testing.T) {
	_, err := ResolvePublicDir("/definitely/not/a/real/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestResolvePublicDirFallsBackToWorkingDir(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "web", "public"), 0o755))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(base))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	resolved, err := ResolvePublicDir("")
	require.NoError(t, err)
	assert.Equal(t, "./web/public", resolved)
}
