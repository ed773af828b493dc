// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/letterdesk/internal/middleware"
	"github.com/tomtom215/letterdesk/internal/models"
)

// Router wires the console handlers onto chi.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil mw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	sess := h.session
	perm := func(p models.Permission) func(http.Handler) http.Handler {
		return RequirePermission(sess, p)
	}

	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// ========================
	// Health & Metrics
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Get("/health", h.Health)
		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		// ========================
		// Session
		// ========================
		r.Route("/session", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimitCustom(RateLimitLogin)).Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.With(RequireSession(sess)).Get("/me", h.Me)
			r.With(RequireSession(sess)).Post("/password", h.ChangePassword)
		})

		// Pure status vocabulary; no upstream call.
		r.Get("/statuses", h.StatusVocabulary)
		r.Get("/statuses/{status}/next", h.NextStatuses)

		// ========================
		// Signed-in routes
		// ========================
		r.Group(func(r chi.Router) {
			r.Use(RequireSession(sess))

			// Physical fulfillment
			r.Route("/requests", func(r chi.Router) {
				r.With(perm(models.PermLettersRead)).Get("/", h.Requests)
				r.With(perm(models.PermLettersRead)).Get("/export", h.ExportRequests)
				r.Group(func(r chi.Router) {
					r.Use(perm(models.PermLettersWrite))
					r.Patch("/{id}/status", h.UpdateRequestStatus)
					r.Patch("/{id}/shipping", h.UpdateRequestShipping)
					r.With(router.chiMiddleware.RateLimitCustom(RateLimitBulk)).Post("/bulk", h.BulkUpdateRequests)
				})
			})

			// Dashboard
			r.Group(func(r chi.Router) {
				r.Use(perm(models.PermDashboardRead))
				r.Get("/overview", h.Overview)
				r.Get("/stats", h.Stats)
				r.Get("/dashboard", h.Dashboard)
				r.Get("/analytics", h.Analytics)
				r.Get("/statistics", h.Statistics)
				r.Get("/events/recent", h.RecentEvents)
			})

			// Letters
			r.Route("/letters", func(r chi.Router) {
				r.With(perm(models.PermLettersRead)).Get("/physical", h.PhysicalLetters)
				r.With(perm(models.PermLettersRead)).Get("/physical/{letterId}", h.PhysicalLetter)
				r.With(perm(models.PermLettersRead)).Get("/", h.Letters)
				r.With(perm(models.PermLettersRead)).Get("/{id}", h.Letter)
				r.With(perm(models.PermLettersWrite)).Put("/{id}", h.UpdateLetter)
				r.With(perm(models.PermLettersWrite)).Put("/{id}/status", h.UpdateLetterStatus)
				r.With(perm(models.PermLettersDelete)).Delete("/{id}", h.DeleteLetter)
			})

			// Users
			r.Route("/users", func(r chi.Router) {
				r.With(perm(models.PermUsersRead)).Get("/", h.Users)
				r.With(perm(models.PermUsersRead)).Get("/search", h.SearchUsers)
				r.With(perm(models.PermUsersRead)).Get("/{id}", h.User)
				r.With(perm(models.PermUsersRead)).Get("/{id}/detail", h.UserDetail)
				r.With(perm(models.PermUsersRead)).Get("/{id}/stats", h.UserStats)
				r.With(perm(models.PermUsersRead)).Get("/{id}/letters", h.UserLetters)
				r.With(perm(models.PermUsersWrite)).Put("/{id}", h.UpdateUser)
				r.With(perm(models.PermUsersWrite)).Post("/{id}/ban", h.BanUser)
				r.With(perm(models.PermUsersWrite)).Post("/{id}/unban", h.UnbanUser)
				r.With(perm(models.PermUsersDelete)).Delete("/{id}", h.DeleteUser)
			})

			// Admins
			r.Route("/admins", func(r chi.Router) {
				r.With(perm(models.PermAdminsRead)).Get("/", h.Admins)
				r.With(perm(models.PermAdminsRead)).Get("/{id}", h.Admin)
				r.With(perm(models.PermAdminsWrite)).Post("/", h.CreateAdmin)
				r.With(perm(models.PermAdminsWrite)).Put("/{id}", h.UpdateAdmin)
				r.With(perm(models.PermAdminsDelete)).Delete("/{id}", h.DeleteAdmin)
			})
		})
	})

	return r
}
