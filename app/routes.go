// Package app wires the HTTP handlers into the router served by cmd/server.
package app

import (
	"net/http"

	"github.com/ChadVezina/TP3-Prog-Web-Avance/app/categories"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/app/forfaits"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/app/health"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/app/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Forfaits   *forfaits.ForfaitHandler
	Categories *categories.CategoryHandler
	Health     *health.Handler
}

// NewRouter registers every route and wraps the mux in the middleware chain.
func NewRouter(h Handlers, mw *middleware.Middleware, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/forfaits", h.Forfaits.HandleGetAll)
	mux.HandleFunc("GET /api/forfaits/{$}", h.Forfaits.HandleGetAll)
	mux.HandleFunc("GET /api/forfaits/{id}", h.Forfaits.HandleGet)
	mux.HandleFunc("GET /api/forfaits/categorie/{categorie}", h.Forfaits.HandleGetByCategorie)
	mux.HandleFunc("GET /api/forfaits/search/{term}", h.Forfaits.HandleSearch)
	mux.HandleFunc("GET /api/forfaits/search", h.Forfaits.HandleSearch)
	mux.HandleFunc("POST /api/forfaits", h.Forfaits.HandleCreate)
	mux.HandleFunc("POST /api/forfaits/{$}", h.Forfaits.HandleCreate)
	mux.HandleFunc("PUT /api/forfaits/{id}", h.Forfaits.HandleUpdate)
	mux.HandleFunc("DELETE /api/forfaits/{id}", h.Forfaits.HandleDelete)

	mux.HandleFunc("GET /api/categories", h.Categories.HandleGetAll)

	mux.HandleFunc("GET /healthz", h.Health.HandleLiveness)
	mux.HandleFunc("GET /readyz", h.Health.HandleReadiness)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return mw.Wrap(mux)
}
