package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/styleforge/styleforge-api/internal/api"
	apiMiddleware "github.com/styleforge/styleforge-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	taskHandler := api.NewTaskHandler(app.pipeline, app.images)
	templateHandler := api.NewTemplateHandler(app.catalog)
	healthHandler := api.NewHealthHandler(app.taskMirror)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokenService)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Identify)

		r.Post("/tasks", taskHandler.CreateTask)
		r.Get("/tasks", taskHandler.ListTasks)
		r.Get("/tasks/{id}", taskHandler.GetTask)
		r.Delete("/tasks/{id}", taskHandler.DeleteTask)
		r.Post("/tasks/{id}/retry", taskHandler.RetryTask)
		r.Get("/tasks/{id}/image", taskHandler.GetTaskImage)

		r.Get("/templates", templateHandler.ListTemplates)
	})

	r.Get("/health", healthHandler.Check)

	return r
}
