package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/salesreport/internal/model"
	"github.com/salesreport/internal/report"
	"github.com/salesreport/internal/store"
)

type uploadFinder interface {
	GetByPath(ctx context.Context, path string) (*model.Upload, error)
}

type reportRecorder interface {
	Create(ctx context.Context, uploadID, startDate, endDate, path string) (*model.Report, error)
}

// ReportHandler generates date-range reports over uploaded files.
type ReportHandler struct {
	BaseHandler
	uploads uploadFinder
	reports reportRecorder
	dir     string
}

func NewReportHandler(logger *slog.Logger, uploads uploadFinder, reports reportRecorder, dir string) *ReportHandler {
	return &ReportHandler{
		BaseHandler: BaseHandler{Logger: logger},
		uploads:     uploads,
		reports:     reports,
		dir:         dir,
	}
}

// Generate answers {"report": text}. Date problems are reported in the
// report text itself so the user sees them where the report would appear.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filepath  string `json:"filepath"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	upload, err := h.uploads.GetByPath(r.Context(), req.Filepath)
	if errors.Is(err, store.ErrNotFound) {
		h.notFoundResponse(w, r, "file not found")
		return
	}
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	rng, err := report.ParseRange(req.StartDate, req.EndDate)
	if err != nil {
		h.respond(w, r, http.StatusOK, envelope{"report": rangeMessage(err)})
		return
	}

	f, err := os.Open(upload.Filepath)
	if err != nil {
		h.Logger.Warn("report: uploaded file missing", "path", upload.Filepath, "err", err)
		h.notFoundResponse(w, r, "file not found")
		return
	}
	defer f.Close()

	text, n, err := report.Generate(f, rng)
	if err != nil {
		h.Logger.Warn("report: unreadable upload", "path", upload.Filepath, "err", err)
		h.errorResponse(w, r, http.StatusUnprocessableEntity, fmt.Sprintf("could not read sales data: %v", err))
		return
	}
	if n == 0 {
		h.respond(w, r, http.StatusOK, envelope{"report": text})
		return
	}

	// Reports live in a directory per upload.
	path, err := report.Save(filepath.Join(h.dir, upload.ID), rng, text)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	if _, err := h.reports.Create(r.Context(), upload.ID, rng.StartKey(), rng.EndKey(), path); err != nil {
		h.serverErrorResponse(w, r, fmt.Errorf("record report: %w", err))
		return
	}

	h.Logger.Info("report: generated", "upload", upload.ID, "start", rng.StartKey(), "end", rng.EndKey(), "transactions", n)
	h.respond(w, r, http.StatusOK, envelope{"report": text})
}

func rangeMessage(err error) string {
	if errors.Is(err, report.ErrRangeReversed) {
		return "Error: End date cannot be before start date."
	}
	return "Invalid date format. Please use YYYY-MM-DD."
}
