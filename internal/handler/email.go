package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/salesreport/internal/mailer"
	"github.com/salesreport/internal/model"
	"github.com/salesreport/internal/store"
)

const (
	msgEmailSent      = "Email sent successfully!"
	msgEmailFailed    = "Failed to send email. Check logs."
	msgReportNotFound = "Report not found. Please generate it first."
)

type latestReporter interface {
	LatestForUpload(ctx context.Context, uploadID string) (*model.Report, error)
}

type emailRecorder interface {
	Record(ctx context.Context, reportID, recipient string, sendErr error) (*model.EmailLog, error)
}

type reportSender interface {
	Send(msg mailer.Message) error
	Recipients() []string
}

// EmailHandler emails the latest report generated for an upload.
type EmailHandler struct {
	BaseHandler
	uploads  uploadFinder
	reports  latestReporter
	emails   emailRecorder
	sender   reportSender
	fromName string
}

func NewEmailHandler(logger *slog.Logger, uploads uploadFinder, reports latestReporter, emails emailRecorder, sender reportSender, fromName string) *EmailHandler {
	return &EmailHandler{
		BaseHandler: BaseHandler{Logger: logger},
		uploads:     uploads,
		reports:     reports,
		emails:      emails,
		sender:      sender,
		fromName:    fromName,
	}
}

// Send answers {"message": text} for every application-level outcome.
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filepath string `json:"filepath"`
	}
	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	upload, err := h.uploads.GetByPath(r.Context(), req.Filepath)
	if errors.Is(err, store.ErrNotFound) {
		h.respond(w, r, http.StatusNotFound, envelope{"message": msgReportNotFound})
		return
	}
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	rep, err := h.reports.LatestForUpload(r.Context(), upload.ID)
	if errors.Is(err, store.ErrNotFound) {
		h.respond(w, r, http.StatusNotFound, envelope{"message": msgReportNotFound})
		return
	}
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	data, err := os.ReadFile(rep.Filepath)
	if err != nil {
		h.Logger.Warn("email: report file missing", "path", rep.Filepath, "err", err)
		h.respond(w, r, http.StatusNotFound, envelope{"message": msgReportNotFound})
		return
	}

	content := mailer.ReportEmail{
		StartDate: rep.StartDate,
		EndDate:   rep.EndDate,
		Filename:  rep.Filename,
		Sender:    h.fromName,
	}
	body, err := mailer.RenderReportEmail(content)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	sendErr := h.sender.Send(mailer.Message{
		Subject: content.Subject(),
		Body:    body,
		Attachments: []mailer.Attachment{
			{Filename: rep.Filename, ContentType: "text/plain; charset=utf-8", Data: data},
		},
	})

	recipient := strings.Join(h.sender.Recipients(), ", ")
	if _, err := h.emails.Record(r.Context(), rep.ID, recipient, sendErr); err != nil {
		h.Logger.Error("email: failed to record delivery", "report", rep.ID, "err", err)
	}

	if sendErr != nil {
		h.Logger.Error("email: smtp send failed", "report", rep.ID, "err", sendErr)
		h.respond(w, r, http.StatusBadGateway, envelope{"message": msgEmailFailed})
		return
	}

	h.Logger.Info("email: report sent", "report", rep.ID, "to", recipient)
	h.respond(w, r, http.StatusOK, envelope{"message": msgEmailSent})
}
