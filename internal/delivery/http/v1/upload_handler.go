package v1

import (
	"net/http"
	"path/filepath"
	"strings"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/pkg/logger"
	"kinderstep-backend/pkg/storage"
	"kinderstep-backend/pkg/utils"
)

var (
	allowedMimeTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
	}
	allowedExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
		".gif":  true,
	}
)

type UploadHandler struct {
	storage       storage.ObjectStorage
	maxUploadSize int64
}

// NewUploadHandler accepts a nil storage; uploads then answer 503.
func NewUploadHandler(s storage.ObjectStorage, maxUploadSizeMB int64) *UploadHandler {
	return &UploadHandler{
		storage:       s,
		maxUploadSize: maxUploadSizeMB << 20,
	}
}

func (h *UploadHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())
	if h.storage == nil {
		utils.WriteError(w, http.StatusServiceUnavailable, "Image storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		log.Warn().Err(err).Msg("Upload: ParseMultipartForm failed")
		utils.WriteError(w, http.StatusBadRequest, "File too large or invalid format")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedMimeTypes[contentType] {
		utils.WriteError(w, http.StatusBadRequest, "Invalid file type. Allowed: JPEG, PNG, WebP, GIF")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		utils.WriteError(w, http.StatusBadRequest, "Invalid file extension")
		return
	}

	// Resize + WebP
	processed, newContentType, err := utils.ProcessImage(file, header.Filename)
	if err != nil {
		log.Error().Err(err).Str("file", header.Filename).Msg("Image processing failed")
		utils.WriteError(w, http.StatusBadRequest, "Failed to process image")
		return
	}

	url, err := h.storage.UploadBuffer(r.Context(), processed, newContentType)
	if err != nil {
		log.Error().Err(err).Msg("Object storage upload failed")
		utils.WriteError(w, http.StatusBadGateway, "Failed to upload file")
		return
	}

	log.Info().
		Str("file", header.Filename).
		Int("bytes", len(processed)).
		Str("url", url).
		Msg("Image uploaded")
	utils.WriteJSON(w, http.StatusOK, domain.UploadResult{URL: url})
}
