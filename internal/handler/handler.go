package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/authline/authline/internal/config"
	"github.com/authline/authline/internal/logger"
	"github.com/authline/authline/internal/service"
)

// Pinger reports storage reachability for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	auth   service.AuthService
	cfg    *config.Config
	health Pinger
}

func New(auth service.AuthService, cfg *config.Config, health Pinger) *Handler {
	return &Handler{auth: auth, cfg: cfg, health: health}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}
