// Package httpapi serves payday states, ad-hoc computations and profile management over
// HTTP. Routes live under /api; /metrics and /healthz sit at the root.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Instrumentation is provided by the metrics package.
type Instrumentation interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, m Instrumentation) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: h.Logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	if m != nil {
		r.Use(m.Middleware)
		r.Handle("/metrics", m.Handler())
	}

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/payday", func(r chi.Router) {
			r.Get("/", h.ListPaydays)
			r.Post("/compute", h.Compute)
			r.Post("/refresh", h.RefreshPaydays)
			r.Get("/{id}", h.GetPayday)
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", h.ListProfiles)
			r.Group(func(r chi.Router) {
				r.Use(RequireToken(h.APIToken))
				r.Post("/", h.CreateProfile)
				r.Delete("/{id}", h.DeleteProfile)
			})
		})

		r.Get("/countries", h.ListCountries)
	})

	return r
}

// Serve runs srv until ctx is canceled, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}
