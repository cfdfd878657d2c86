package handler

import (
	"log/slog"
	"net/http"
)

// InfoHandler serves the welcome page, health and stats.
type InfoHandler struct {
	game    Game
	name    string
	version string
	prefix  string
	logger  *slog.Logger
}

// NewInfoHandler creates an InfoHandler. name and version appear in the
// welcome body; prefix is the API mount point used to build links.
func NewInfoHandler(game Game, name, version, prefix string, logger *slog.Logger) *InfoHandler {
	return &InfoHandler{game: game, name: name, version: version, prefix: prefix, logger: logger}
}

// HandleRoot returns a welcome message with links to the main endpoints.
//
// HTTP: GET /
func (h *InfoHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Welcome to " + h.name,
		"version": h.version,
		"links": map[string]string{
			"truth":  h.prefix + "/truth",
			"dare":   h.prefix + "/dare",
			"game":   h.prefix + "/game/random",
			"health": h.prefix + "/health",
			"stats":  h.prefix + "/stats",
		},
	})
}

// HandleHealth reports cache health. It always answers 200; the status
// field says whether the content can be served.
//
// HTTP: GET {prefix}/health
func (h *InfoHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := h.game.Health()
	if health.Error != "" {
		h.logger.Warn("health check not healthy",
			slog.String("status", health.Status),
			slog.String("error", health.Error),
		)
	}
	writeJSON(w, http.StatusOK, health)
}

// HandleStats returns per-tag counts for truths and dares.
//
// HTTP: GET {prefix}/stats
func (h *InfoHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.game.Stats()
	if err != nil {
		logUnexpected(h.logger, r, err)
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
