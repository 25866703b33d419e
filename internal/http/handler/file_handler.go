package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/toolshelf/internal/domain"
	"github.com/straye-as/toolshelf/internal/service"
	"github.com/straye-as/toolshelf/internal/storage"
	"go.uber.org/zap"
)

type FileHandler struct {
	toolService *service.ToolService
	maxUploadMB int64
	logger      *zap.Logger
}

func NewFileHandler(toolService *service.ToolService, maxUploadMB int64, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		toolService: toolService,
		maxUploadMB: maxUploadMB,
		logger:      logger,
	}
}

// Upload godoc
// @Summary Upload file
// @Description Stores a tool page or cover image as "{nameHint}_{unixMillis}.{ext}" and returns its public URL
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param nameHint formData string false "Name hint, usually the tool title"
// @Success 201 {object} domain.UploadFileResponse
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Router /files [post]
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	resp, err := h.toolService.UploadFile(r.Context(), domain.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        file,
	}, r.FormValue("nameHint"))
	if err != nil {
		respondServiceError(w, h.logger, err, "upload file")
		return
	}

	respondJSON(w, http.StatusCreated, resp)
}

// ServeObject streams an object of the local bucket under its public URL
func (h *FileHandler) ServeObject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		// chi routes on the escaped path when one was recorded
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}
	if name == "" {
		respondWithError(w, http.StatusNotFound, "Object not found")
		return
	}

	rc, err := h.toolService.OpenObject(r.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Object not found")
			return
		}
		h.logger.Error("failed to open object", zap.Error(err), zap.String("object", name))
		respondWithError(w, http.StatusInternalServerError, "Failed to read object")
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(name))
	if storage.IsHTMLFilename(name) {
		contentType = "text/html; charset=utf-8"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("failed to stream object", zap.Error(err), zap.String("object", name))
	}
}
