package server

import (
	"encoding/json"
	"log"
	"net/http"

	"pvpleaderboard.com/viewer/internal/logging"
)

// APIResponse : envelope for every JSON response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

const (
	codeNotFound   = "not_found"
	codeBadRequest = "bad_request"
	codeInternal   = "internal"
)

func writeJSON(w http.ResponseWriter, logger *log.Logger, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Printf("%s writing response failed: %s", logging.ErrPrefix, err)
	}
}

func (s *Server) success(w http.ResponseWriter, data interface{}) {
	writeJSON(w, s.logger, http.StatusOK, APIResponse{Success: true, Data: data})
}

func (s *Server) fail(w http.ResponseWriter, status int, code string) {
	writeJSON(w, s.logger, status, APIResponse{Success: false, Error: code})
}
