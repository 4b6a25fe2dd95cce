package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/boirefacile/backend-go/internal/models"
	"github.com/boirefacile/backend-go/internal/participants"
)

type BarsResponse struct {
	Bars any `json:"bars"`
}

type ParticipantsResponse struct {
	Participants []models.Participant `json:"participants"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Bars   int    `json:"bars"`
}

type DebugDBResponse struct {
	Status string `json:"status"`
	*participants.Stats
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Error encoding response body")
	}
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, ErrorResponse{Error: message, Details: details})
}
