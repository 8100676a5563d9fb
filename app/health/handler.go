package health

import (
	"context"
	"net/http"
	"time"

	"github.com/ChadVezina/TP3-Prog-Web-Avance/app/middleware"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/app/render"
	"go.uber.org/zap"
)

// PingFunc checks that a dependency answers.
type PingFunc func(ctx context.Context) error

type Response struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

type Handler struct {
	pingDB PingFunc
	log    *zap.Logger
}

func NewHandler(pingDB PingFunc, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{pingDB: pingDB, log: log}
}

// HandleLiveness answers 200 as long as the process serves requests.
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, http.StatusOK, Response{Status: "ok", Timestamp: time.Now().UTC()})
}

// HandleReadiness answers 503 when the database does not respond within two
// seconds.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := Response{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Checks:    map[string]string{"database": "ok"},
	}
	status := http.StatusOK

	if err := h.pingDB(ctx); err != nil {
		middleware.LoggerFrom(r.Context(), h.log).Warn("Database ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Checks["database"] = "unreachable"
		status = http.StatusServiceUnavailable
	}

	render.JSON(w, status, resp)
}
