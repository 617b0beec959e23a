package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
)

// defaultInstallDir is where packaged deployments put the public assets.
const defaultInstallDir = "/opt/metasearch/public"

// Renderer executes the page templates parsed from the public directory.
// Templates are registered under their file name without the .html suffix,
// so templates/search.html renders as "search".
type Renderer struct {
	templates *template.Template
}

// New parses every template under <publicDir>/templates.
func New(publicDir string) (*Renderer, error) {
	pattern := filepath.Join(publicDir, "templates", "*.html")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", pattern)
	}

	root := template.New("")
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", file, err)
		}
		name := strings.TrimSuffix(filepath.Base(file), ".html")
		if _, err := root.New(name).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
	}

	return &Renderer{templates: root}, nil
}

// Render executes the named template and returns the markup.
func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// ResolvePublicDir locates the public asset directory. A configured path is
// authoritative and must exist; otherwise the working-directory layout is
// tried first, then the system install location.
func ResolvePublicDir(configured string) (string, error) {
	if configured != "" {
		if !isDir(configured) {
			return "", fmt.Errorf("configured public directory %s does not exist", configured)
		}
		return configured, nil
	}

	for _, dir := range []string{"./web/public", defaultInstallDir} {
		if isDir(dir) {
			return dir, nil
		}
	}

	return "", errors.New("no public directory found, set PUBLIC_DIR")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
