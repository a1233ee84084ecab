package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/salesreport/internal/model"
	"github.com/salesreport/internal/store"
)

type reportLister interface {
	List(ctx context.Context) ([]model.Report, error)
	Get(ctx context.Context, id string) (*model.Report, error)
}

// HistoryHandler lists and serves previously generated reports.
type HistoryHandler struct {
	BaseHandler
	reports reportLister
}

func NewHistoryHandler(logger *slog.Logger, reports reportLister) *HistoryHandler {
	return &HistoryHandler{BaseHandler: BaseHandler{Logger: logger}, reports: reports}
}

// List returns all reports, newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context())
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, envelope{"reports": reports})
}

// Download streams a report file as an attachment.
func (h *HistoryHandler) Download(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		h.notFoundResponse(w, r, "report not found")
		return
	}
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	f, err := os.Open(rep.Filepath)
	if err != nil {
		h.notFoundResponse(w, r, "report not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.Filename))
	http.ServeContent(w, r, rep.Filename, info.ModTime(), f)
}
