package common

import (
	"context"
	"net/http"
	"time"

	"coop-intake-go/pkg/logger"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	db  Pinger
	log logger.Logger
}

func New(db Pinger, log logger.Logger) *Handlers {
	return &Handlers{
		db:  db,
		log: log,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{Status: "ok", Database: "ok"}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.log.Warn("health: database ping failed", "error", err)
			response = healthResponse{Status: "degraded", Database: "unreachable"}
			writeJSON(w, http.StatusServiceUnavailable, response)
			return
		}
	}
	writeJSON(w, http.StatusOK, response)
}
