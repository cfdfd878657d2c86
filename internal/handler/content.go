package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/truthdare/truthdare-api/internal/apperror"
	"github.com/truthdare/truthdare-api/internal/model"
	"github.com/truthdare/truthdare-api/internal/service"
)

// Game is the read API the content handlers need. *service.GameService
// implements it.
type Game interface {
	RandomTruth() (model.Record, error)
	RandomDare() (model.Record, error)
	TruthByCategory(category string) (model.Record, error)
	DareByDifficulty(difficulty string) (model.Record, error)
	TruthCategories() ([]string, error)
	DareDifficulties() ([]string, error)
	RandomGame() (model.Kind, model.Record, error)
	Health() service.Health
	Stats() (service.Stats, error)
}

// TruthResponse is the body of every truth endpoint.
type TruthResponse struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// DareResponse is the body of every dare endpoint.
type DareResponse struct {
	ID         int64  `json:"id"`
	Type       string `json:"type"`
	Content    string `json:"content"`
	Difficulty string `json:"difficulty"`
}

// GameResponse carries both tag keys; the one not matching Type is null.
type GameResponse struct {
	ID         int64   `json:"id"`
	Type       string  `json:"type"`
	Content    string  `json:"content"`
	Category   *string `json:"category"`
	Difficulty *string `json:"difficulty"`
}

// ContentHandler serves truths, dares and the random game.
type ContentHandler struct {
	game   Game
	logger *slog.Logger
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(game Game, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{game: game, logger: logger}
}

// HandleRandomTruth returns a random truth.
//
// HTTP: GET {prefix}/truth
func (h *ContentHandler) HandleRandomTruth(w http.ResponseWriter, r *http.Request) {
	rec, err := h.game.RandomTruth()
	h.writeTruth(w, r, rec, err)
}

// HandleTruthByCategory returns a random truth of one category.
//
// HTTP: GET {prefix}/truth/{category}
func (h *ContentHandler) HandleTruthByCategory(w http.ResponseWriter, r *http.Request) {
	rec, err := h.game.TruthByCategory(chi.URLParam(r, "category"))
	h.writeTruth(w, r, rec, err)
}

// HandleTruthCategories lists the categories currently holding truths.
//
// HTTP: GET {prefix}/truth/categories/list
func (h *ContentHandler) HandleTruthCategories(w http.ResponseWriter, r *http.Request) {
	tags, err := h.game.TruthCategories()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// HandleRandomDare returns a random dare.
//
// HTTP: GET {prefix}/dare
func (h *ContentHandler) HandleRandomDare(w http.ResponseWriter, r *http.Request) {
	rec, err := h.game.RandomDare()
	h.writeDare(w, r, rec, err)
}

// HandleDareByDifficulty returns a random dare of one difficulty.
//
// HTTP: GET {prefix}/dare/{difficulty}
func (h *ContentHandler) HandleDareByDifficulty(w http.ResponseWriter, r *http.Request) {
	rec, err := h.game.DareByDifficulty(chi.URLParam(r, "difficulty"))
	h.writeDare(w, r, rec, err)
}

// HandleDareDifficulties lists the difficulties currently holding dares.
//
// HTTP: GET {prefix}/dare/difficulties/list
func (h *ContentHandler) HandleDareDifficulties(w http.ResponseWriter, r *http.Request) {
	tags, err := h.game.DareDifficulties()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// HandleRandomGame returns a truth or a dare with equal probability.
//
// HTTP: GET {prefix}/game/random
func (h *ContentHandler) HandleRandomGame(w http.ResponseWriter, r *http.Request) {
	kind, rec, err := h.game.RandomGame()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := GameResponse{ID: rec.ID, Type: string(kind), Content: rec.Text}
	tag := rec.Tag
	if kind == model.KindDare {
		resp.Difficulty = &tag
	} else {
		resp.Category = &tag
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ContentHandler) writeTruth(w http.ResponseWriter, r *http.Request, rec model.Record, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TruthResponse{
		ID:       rec.ID,
		Type:     string(model.KindTruth),
		Content:  rec.Text,
		Category: rec.Tag,
	})
}

func (h *ContentHandler) writeDare(w http.ResponseWriter, r *http.Request, rec model.Record, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DareResponse{
		ID:         rec.ID,
		Type:       string(model.KindDare),
		Content:    rec.Text,
		Difficulty: rec.Tag,
	})
}

// fail logs errors that will be reported as 500 and writes the response.
func (h *ContentHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	logUnexpected(h.logger, r, err)
	WriteError(w, err)
}

// logUnexpected logs err unless it is an AppError the client is told about.
func logUnexpected(logger *slog.Logger, r *http.Request, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return
	}
	logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
}
