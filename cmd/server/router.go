package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Thinkabouthev/backend-hw2/internal/api"
	apiMiddleware "github.com/Thinkabouthev/backend-hw2/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Handlers built from the application's services
	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	taskHandler := api.NewTaskHandler(app.taskStore)
	assistantHandler := api.NewAssistantHandler(app.relay)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	// Authentication endpoints (public)
	r.Post("/register", authHandler.Register)
	r.Post("/token", authHandler.Token)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/me", authHandler.Me)

		// Task endpoints
		r.Post("/tasks", taskHandler.Create)
		r.Get("/tasks", taskHandler.List)
		r.Get("/tasks/{taskID}", taskHandler.Get)
		r.Put("/tasks/{taskID}", taskHandler.Update)
		r.Delete("/tasks/{taskID}", taskHandler.Delete)
	})

	// Agent-to-agent chat is public: the relay holds no user state.
	r.Post("/assistant/a2a-chat", assistantHandler.Chat)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
