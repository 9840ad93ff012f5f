package tournamenthandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	roundservice "github.com/trycohn/1337-sub004/app/modules/round/application"
	rounddb "github.com/trycohn/1337-sub004/app/modules/round/infrastructure/repositories"
	tournamentservice "github.com/trycohn/1337-sub004/app/modules/tournament/application"
	tournamentdb "github.com/trycohn/1337-sub004/app/modules/tournament/infrastructure/repositories"
	"github.com/trycohn/1337-sub004/internal/observability/attr"
)

// HTTPHandlers serves the read-only tournament API.
type HTTPHandlers struct {
	tournamentService tournamentservice.Service
	roundService      roundservice.Service
	logger            *slog.Logger
}

// NewHTTPHandlers creates the read API handlers.
func NewHTTPHandlers(tournamentService tournamentservice.Service, roundService roundservice.Service, logger *slog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		tournamentService: tournamentService,
		roundService:      roundService,
		logger:            logger,
	}
}

// RegisterRoutes mounts the read API under /api/tournaments.
func (h *HTTPHandlers) RegisterRoutes(httpRouter chi.Router, limiter *IPRateLimiter) {
	httpRouter.Route("/api/tournaments/{tournamentID}", func(r chi.Router) {
		r.Use(RateLimitMiddleware(limiter))

		r.Get("/standings", h.HandleGetStandings)
		r.Get("/standings/chart.png", h.HandleGetStandingsChart)
		r.Get("/rounds/{round}/snapshot", h.HandleGetRoundSnapshot)
	})
}

// HandleGetStandings returns the cumulative standings for a tournament.
func (h *HTTPHandlers) HandleGetStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID, ok := h.tournamentID(w, r)
	if !ok {
		return
	}

	standings, err := h.tournamentService.GetStandings(r.Context(), tournamentID)
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch standings")
		return
	}

	h.writeJSON(w, r, standings)
}

// HandleGetStandingsChart returns the standings rendered as a PNG bar chart.
func (h *HTTPHandlers) HandleGetStandingsChart(w http.ResponseWriter, r *http.Request) {
	tournamentID, ok := h.tournamentID(w, r)
	if !ok {
		return
	}

	png, err := h.tournamentService.RenderStandingsChart(r.Context(), tournamentID)
	if err != nil {
		h.writeError(w, r, err, "Failed to render standings chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to write chart response", attr.Error(err))
	}
}

// HandleGetRoundSnapshot returns one round with its roster, pairing, and matches.
func (h *HTTPHandlers) HandleGetRoundSnapshot(w http.ResponseWriter, r *http.Request) {
	tournamentID, ok := h.tournamentID(w, r)
	if !ok {
		return
	}

	number, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil || number < 1 {
		http.Error(w, "Invalid round number", http.StatusBadRequest)
		return
	}

	snapshot, err := h.roundService.GetRoundSnapshot(r.Context(), tournamentID, number)
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch round snapshot")
		return
	}

	h.writeJSON(w, r, snapshot)
}

func (h *HTTPHandlers) tournamentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "tournamentID"))
	if err != nil {
		http.Error(w, "Invalid tournament ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *HTTPHandlers) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to encode response", attr.Error(err))
	}
}

func (h *HTTPHandlers) writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if errors.Is(err, tournamentdb.ErrNotFound) || errors.Is(err, rounddb.ErrNotFound) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	h.logger.ErrorContext(r.Context(), msg, attr.Error(err))
	http.Error(w, fmt.Sprintf("%s: %v", msg, err), http.StatusInternalServerError)
}
