package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpmiddleware "github.com/sparklesav/sparkle-clean/internal/http/middleware"
	"github.com/sparklesav/sparkle-clean/internal/intake"
	"github.com/sparklesav/sparkle-clean/pkg/logging"
)

// Config collects the dependencies the router wires together.
type Config struct {
	Logger         *logging.Logger
	Intake         *intake.Handler
	AllowedOrigins []string
}

// New assembles the HTTP router.
func New(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(httpmiddleware.CORS(cfg.AllowedOrigins))
	r.Use(httpmiddleware.Recoverer(cfg.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Post("/contact", cfg.Intake.CreateLead)

	return r
}
