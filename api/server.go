/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/employees/*      Employee management and documents
  /api/members/*        Union service charges
  /api/payday           Pay runs
  /api/scenarios/*      Demo data sets
  /metrics              Prometheus metrics (when enabled)
  /                     Endpoint index

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions carries the router settings that come from configuration.
type RouterOptions struct {
	AllowedOrigins []string
	MetricsEnabled bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*"}
	}

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Put("/{id}/name", h.ChangeName)
			r.Put("/{id}/address", h.ChangeAddress)
			r.Put("/{id}/classification", h.ChangeClassification)
			r.Put("/{id}/method", h.ChangeMethod)
			r.Put("/{id}/affiliation", h.ChangeAffiliation)
			r.Delete("/{id}/affiliation", h.RemoveAffiliation)
			r.Post("/{id}/timecards", h.PostTimeCard)
			r.Post("/{id}/salesreceipts", h.PostSalesReceipt)
		})

		// Union member routes
		r.Post("/members/{memberID}/servicecharges", h.PostServiceCharge)

		// Payday routes
		r.Post("/payday", h.Payday)
		r.Get("/payday/last", h.LastPayday)

		// Demo scenario routes
		r.Get("/scenarios", h.ListScenarios)
		r.Get("/scenarios/current", h.GetCurrentScenario)
		r.Post("/scenarios/load", h.LoadScenario)
	})

	if opts.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Payroll Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Payroll Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/employees">/api/employees</a> - List employees</li>
<li>POST /api/payday - Run payday for a date</li>
<li><a href="/api/payday/last">/api/payday/last</a> - Most recent pay run</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios (POST /api/scenarios/load)</li>
</ul>
</body>
</html>`))
	})

	return r
}
