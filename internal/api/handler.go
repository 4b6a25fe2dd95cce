package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/boirefacile/backend-go/internal/bars"
	"github.com/boirefacile/backend-go/internal/directions"
	"github.com/boirefacile/backend-go/internal/models"
	"github.com/boirefacile/backend-go/internal/participants"
)

const (
	maxBodyBytes = 1 << 20

	rootMessage = "Backend Boire Facile OK"

	msgNoJSON              = "No JSON data received"
	msgDirectionsFailed    = "API Directions échouée"
	msgStoreUnavailable    = "Base de données indisponible"
	msgStoreFailed         = "Erreur base de données"
	msgInternalServerError = "Internal Server Error"
)

type BarService interface {
	Closest(lat, lon any) ([]models.RankedBar, error)
	All() []models.Bar
}

type ParticipantService interface {
	Save(ctx context.Context, sessionID string, participants []models.Participant) error
	List(ctx context.Context, sessionID string) ([]models.Participant, error)
	Stats(ctx context.Context) (*participants.Stats, error)
}

// Handler serves the bar crawl API. A nil participants service makes the
// participant endpoints answer 503.
type Handler struct {
	bars         BarService
	directions   directions.Provider
	participants ParticipantService
}

func NewHandler(barService BarService, provider directions.Provider, participantService ParticipantService) *Handler {
	return &Handler{
		bars:         barService,
		directions:   provider,
		participants: participantService,
	}
}

type closestBarsRequest struct {
	Lat any `json:"lat"`
	Lon any `json:"lon"`
}

type directionsRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

type participantPayload struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type saveParticipantsRequest struct {
	SessionID    string               `json:"sessionId"`
	Participants []participantPayload `json:"participants"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	return dec.Decode(dst)
}

func (h *Handler) root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, rootMessage)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Bars: len(h.bars.All())})
}

func (h *Handler) closestBars(w http.ResponseWriter, r *http.Request) {
	var req closestBarsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, bars.ErrInvalidCoordinates.Error(), "body must be a JSON object with lat and lon")
		return
	}

	ranked, err := h.bars.Closest(req.Lat, req.Lon)
	if err != nil {
		var invalid *bars.InvalidCoordinatesError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, bars.ErrInvalidCoordinates.Error(), invalid.Field+" "+invalid.Reason)
			return
		}
		log.Error().Err(err).Msg("Nearest bars query failed")
		writeError(w, http.StatusInternalServerError, msgInternalServerError, "")
		return
	}
	if ranked == nil {
		ranked = []models.RankedBar{}
	}
	writeJSON(w, http.StatusOK, BarsResponse{Bars: ranked})
}

func (h *Handler) allBars(w http.ResponseWriter, _ *http.Request) {
	all := h.bars.All()
	if all == nil {
		all = []models.Bar{}
	}
	writeJSON(w, http.StatusOK, BarsResponse{Bars: all})
}

func (h *Handler) route(w http.ResponseWriter, r *http.Request) {
	var req directionsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, directions.ErrMissingEndpoints.Error(), "")
		return
	}

	route, err := h.directions.Route(r.Context(), req.Origin, req.Destination)
	if err != nil {
		if errors.Is(err, directions.ErrMissingEndpoints) {
			writeError(w, http.StatusBadRequest, directions.ErrMissingEndpoints.Error(), "")
			return
		}
		var apiErr *directions.APIError
		if errors.As(err, &apiErr) {
			writeError(w, http.StatusInternalServerError, msgDirectionsFailed, apiErr.Status)
			return
		}
		log.Error().Err(err).Msg("Directions lookup failed")
		writeError(w, http.StatusInternalServerError, msgDirectionsFailed, "")
		return
	}
	writeJSON(w, http.StatusOK, route)
}

func (h *Handler) saveParticipants(w http.ResponseWriter, r *http.Request) {
	if h.participants == nil {
		writeError(w, http.StatusServiceUnavailable, msgStoreUnavailable, "")
		return
	}

	var req saveParticipantsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgNoJSON, "")
		return
	}

	list := make([]models.Participant, len(req.Participants))
	for i, p := range req.Participants {
		list[i] = models.Participant{Name: p.Name, Address: p.Address}
	}

	if err := h.participants.Save(r.Context(), req.SessionID, list); err != nil {
		if errors.Is(err, participants.ErrMissingSession) {
			writeError(w, http.StatusBadRequest, participants.ErrMissingSession.Error(), "")
			return
		}
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("Saving participants failed")
		writeError(w, http.StatusInternalServerError, msgStoreFailed, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "saved"})
}

func (h *Handler) getParticipants(w http.ResponseWriter, r *http.Request) {
	if h.participants == nil {
		writeError(w, http.StatusServiceUnavailable, msgStoreUnavailable, "")
		return
	}

	sessionID := r.URL.Query().Get("id")
	list, err := h.participants.List(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, participants.ErrMissingSession) {
			writeError(w, http.StatusBadRequest, participants.ErrMissingSession.Error(), "")
			return
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("Listing participants failed")
		writeError(w, http.StatusInternalServerError, msgStoreFailed, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ParticipantsResponse{Participants: list})
}

func (h *Handler) debugDB(w http.ResponseWriter, r *http.Request) {
	if h.participants == nil {
		writeError(w, http.StatusServiceUnavailable, msgStoreUnavailable, "")
		return
	}

	stats, err := h.participants.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Participant store check failed")
		writeError(w, http.StatusInternalServerError, msgStoreFailed, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, DebugDBResponse{Status: "connected", Stats: stats})
}
