package httpserver

import (
	"net/http"

	"coop-intake-go/internal/config"
	"coop-intake-go/internal/transport/httpserver/handler"
	adminhandler "coop-intake-go/internal/transport/httpserver/handler/admin"
	"coop-intake-go/internal/transport/httpserver/middleware"
	"coop-intake-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, sessions middleware.SessionValidator, files http.Handler, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewRequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.NewCORS(cfg.AllowedOrigins))

	if files != nil {
		r.Handle("/files/*", files)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Common.Health)

		r.Get("/campaigns/{slug}", handlers.Public.GetCampaignBySlug)
		r.Get("/refdata/states/{uf}/cities", handlers.Public.ListCities)

		r.Post("/proposals", handlers.Public.SubmitProposal)
		r.Get("/uploads/{token}", handlers.Public.GetUploadSession)
		r.Post("/uploads/{token}/documents", handlers.Public.UploadDocument)
		r.Delete("/uploads/{token}/documents/{type}", handlers.Public.RemoveDocument)
		r.Post("/uploads/{token}/finalize", handlers.Public.FinalizeUpload)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", handlers.Admin.Login)
			r.Post("/logout", handlers.Admin.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(sessions, adminhandler.SessionCookie))

				r.Get("/me", handlers.Admin.Me)

				r.Get("/campaigns", handlers.Admin.ListCampaigns)
				r.Post("/campaigns", handlers.Admin.CreateCampaign)
				r.Get("/campaigns/{id}", handlers.Admin.GetCampaign)
				r.Put("/campaigns/{id}", handlers.Admin.UpdateCampaign)
				r.Post("/campaigns/{id}/sync", handlers.Admin.BatchSyncCampaign)
				r.Post("/campaigns/{id}/dedupe", handlers.Admin.CleanupDuplicates)

				r.Get("/proposals", handlers.Admin.ListProposals)
				r.Get("/proposals/{id}", handlers.Admin.GetProposal)
				r.Delete("/proposals/{id}", handlers.Admin.DeleteProposal)
				r.Post("/proposals/{id}/sync", handlers.Admin.SyncProposal)
				r.Post("/proposals/{id}/notifications", handlers.Admin.ResendNotification)
			})
		})
	})

	return r
}
