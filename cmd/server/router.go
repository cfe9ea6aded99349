package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kotoba-app/kotoba-api/internal/api"
	apiMiddleware "github.com/kotoba-app/kotoba-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	cardHandler := api.NewCardHandler(app.cardStore, app.logger)
	studyHandler := api.NewStudyHandler(app.studyManager, app.logger)
	dailyHandler := api.NewDailyHandler(app.dailyTracker, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Card collection endpoints
		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cardHandler.ListCards)
			r.Post("/", cardHandler.CreateCard)
			r.Post("/batch", cardHandler.BatchCreateCards)
			r.Get("/{id}", cardHandler.GetCard)
			r.Delete("/{id}", cardHandler.DeleteCard)
		})

		// Study session endpoints
		r.Route("/study/sessions", func(r chi.Router) {
			r.Post("/", studyHandler.CreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", studyHandler.GetSession)
				r.Delete("/", studyHandler.DeleteSession)
				r.Post("/restart", studyHandler.Restart)
				r.Post("/flip", studyHandler.Flip)
				r.Post("/next", studyHandler.Next)
				r.Post("/prev", studyHandler.Prev)
				r.Post("/shuffle", studyHandler.Shuffle)
				r.Post("/reset-order", studyHandler.ResetOrder)
				r.Post("/reset-all", studyHandler.ResetAll)
				r.Post("/status", studyHandler.SetStatus)
				r.Post("/difficulty", studyHandler.SetDifficulty)
				r.Post("/rate", studyHandler.Rate)
			})
		})

		// Daily words endpoints
		r.Route("/daily", func(r chi.Router) {
			r.Get("/", dailyHandler.GetState)
			r.Post("/learned/{id}", dailyHandler.MarkLearned)
			r.Post("/learn-all", dailyHandler.MarkAllLearned)
			r.Post("/refresh", dailyHandler.RefreshWords)
			r.Post("/target", dailyHandler.SetTarget)
			r.Post("/dismiss-notification", dailyHandler.DismissNotification)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
