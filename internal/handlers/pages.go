package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/farhapartex/metasearch/internal/config"
	"github.com/farhapartex/metasearch/internal/models"
)

const serviceVersion = "1.0.0"

// PageHandler serves the static shell pages around the search pipeline.
type PageHandler struct {
	renderer  renderer
	publicDir string
	style     models.Style
	log       *zap.Logger
}

func NewPageHandler(renderer renderer, publicDir string, cfg *config.Config, log *zap.Logger) *PageHandler {
	return &PageHandler{
		renderer:  renderer,
		publicDir: publicDir,
		style: models.Style{
			Theme:       cfg.Style.Theme,
			Colorscheme: cfg.Style.Colorscheme,
		},
		log: log.With(zap.String("module", "pages")),
	}
}

// Index serves the landing page with the search box.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, "index", &h.style)
}

// About serves the project description page.
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, "about", &h.style)
}

// Settings serves the preferences page. The page itself persists choices
// client-side in the preferences cookie; the server only renders the form.
func (h *PageHandler) Settings(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, "settings", &h.style)
}

// NotFound answers any unrouted path with the themed 404 page.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	markup, err := h.renderer.Render("404", &h.style)
	if err != nil {
		h.log.Error("failed to render 404 page", zap.Error(err))
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if _, err := w.Write([]byte(markup)); err != nil {
		h.log.Warn("failed to write response", zap.Error(err))
	}
}

// Robots serves robots.txt from the public directory.
func (h *PageHandler) Robots(w http.ResponseWriter, r *http.Request) {
	payload, err := os.ReadFile(filepath.Join(h.publicDir, "robots.txt"))
	if err != nil {
		h.log.Warn("robots.txt unavailable", zap.Error(err))
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write(payload); err != nil {
		h.log.Warn("failed to write response", zap.Error(err))
	}
}

// Health reports process liveness for load balancers and probes.
func (h *PageHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(healthResponse{
		Status:    "healthy",
		Version:   serviceVersion,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		h.log.Warn("failed to write response", zap.Error(err))
	}
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp int64  `json:"timestamp"`
}

func (h *PageHandler) renderPage(w http.ResponseWriter, name string, data any) {
	markup, err := h.renderer.Render(name, data)
	if err != nil {
		h.log.Error("failed to render page", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(markup)); err != nil {
		h.log.Warn("failed to write response", zap.Error(err))
	}
}
