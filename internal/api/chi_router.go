// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/syncify/internal/auth"
	"github.com/tomtom215/syncify/internal/authz"
	"github.com/tomtom215/syncify/internal/middleware"
	"github.com/tomtom215/syncify/internal/respond"
)

// projectParam names the path parameter carrying the project id.
const projectParam = "projectId"

// Router wires handlers to routes behind the guard middleware.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, authMW *auth.Middleware, authzMW *authz.Middleware, chiMW *ChiMiddleware) *Router {
	return &Router{handler: handler, auth: authMW, authz: authzMW, chiMiddleware: chiMW}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	role := func(minRole authz.Role) func(http.Handler) http.Handler {
		return router.authz.RequireProjectRole(projectParam, minRole)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	// Realtime upgrade; intentionally outside RequireAuth.
	r.With(router.chiMiddleware.RateLimitCustom(RateLimitWebSocket)).Get("/ws", h.WebSocket)

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	// Public listing; rate limited but credential-free.
	r.With(router.chiMiddleware.RateLimit(), middleware.PrometheusMetrics).
		Get("/api/v1/projects/public", h.ListPublicProjects)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.auth.RequireAuth)

		r.Get("/me", h.Me)
		r.Get("/projects", h.ListProjects)
		r.Post("/projects", h.CreateProject)
		r.Get("/tasks/upcoming", h.UpcomingTasks)

		r.Route("/projects/{projectId}", func(r chi.Router) {
			r.With(role(authz.RoleViewer)).Get("/members", h.ListMembers)
			r.With(role(authz.RoleManager)).Post("/invitations", h.InviteMember)
			r.With(role(authz.RoleViewer)).Get("/summary", h.ProjectSummary)
			r.With(role(authz.RoleMember)).Post("/boards", h.CreateBoard)
			r.With(role(authz.RoleMember)).Post("/tasks", h.CreateTask)
			r.With(role(authz.RoleMember)).Put("/tasks/{taskId}/move", h.MoveTask)
			r.With(role(authz.RoleViewer)).Get("/messages", h.ListMessages)
			r.With(role(authz.RoleMember)).Post("/messages", h.PostMessage)
			r.With(role(authz.RoleViewer)).Get("/activity", h.ListActivity)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(router.authz.RequirePlatformPolicy())
			r.Get("/realtime/rooms", h.RealtimeRooms)
		})
	})

	return r
}
