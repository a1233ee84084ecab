package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/salesreport/internal/handler"
	"github.com/salesreport/internal/security"
)

func (app *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(security.HeadersMiddleware)

	r.Get("/api/health", handler.Health(app.db))

	uploadHandler := handler.NewUploadHandler(app.logger, app.uploads, app.config.UploadDir, app.config.MaxUploadSizeMB)
	r.Post("/upload", uploadHandler.Upload)

	reportHandler := handler.NewReportHandler(app.logger, app.uploads, app.reports, app.config.ReportsDir)
	r.Post("/generate-report", reportHandler.Generate)

	emailHandler := handler.NewEmailHandler(app.logger, app.uploads, app.reports, app.emails, app.mailer, app.config.SMTPFromName)
	r.Post("/send-email", emailHandler.Send)

	salesHandler := handler.NewSalesHandler(app.logger, app.uploads)
	r.Get("/api/sales-data", salesHandler.Data)

	historyHandler := handler.NewHistoryHandler(app.logger, app.reports)
	r.Get("/history", historyHandler.List)
	r.Get("/download/{id}", historyHandler.Download)

	return r
}
