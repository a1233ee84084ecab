package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/salesreport/internal/model"
)

type uploadRecorder interface {
	Create(ctx context.Context, filename, path string, size int64) (*model.Upload, error)
}

// UploadHandler stores files posted to /upload.
type UploadHandler struct {
	BaseHandler
	uploads  uploadRecorder
	dir      string
	maxBytes int64
}

func NewUploadHandler(logger *slog.Logger, uploads uploadRecorder, dir string, maxUploadSizeMB int) *UploadHandler {
	return &UploadHandler{
		BaseHandler: BaseHandler{Logger: logger},
		uploads:     uploads,
		dir:         dir,
		maxBytes:    int64(maxUploadSizeMB) << 20,
	}
}

// Upload saves the multipart field "file" and answers {"filepath": ...}.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			h.errorResponse(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file must not be larger than %d bytes", maxBytesError.Limit))
			return
		}
		h.errorResponse(w, r, http.StatusBadRequest, "No file part")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		// A file part sent with an empty filename is parsed as a plain value.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			h.errorResponse(w, r, http.StatusBadRequest, "No selected file")
			return
		}
		h.errorResponse(w, r, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	name := sanitizeFilename(header.Filename)
	path := filepath.Join(h.dir, name)

	size, err := saveFile(path, file)
	if err != nil {
		h.Logger.Error("upload: save failed", "path", path, "err", err)
		h.errorResponse(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	if _, err := h.uploads.Create(r.Context(), name, path, size); err != nil {
		h.serverErrorResponse(w, r, fmt.Errorf("record upload: %w", err))
		return
	}

	h.Logger.Info("upload: stored", "path", path, "bytes", size)
	h.respond(w, r, http.StatusOK, envelope{"filepath": path})
}

func saveFile(path string, src io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create upload dir: %w", err)
	}
	dst, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("write file: %w", err)
	}
	return n, nil
}

// sanitizeFilename removes path components and dangerous characters, and
// replaces spaces with underscores.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "\x00", "")
	name = strings.ReplaceAll(name, " ", "_")
	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" || name == "." || name == ".." || name == "/" {
		name = "upload"
	}
	return name
}
