package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"fridge-backend/models"
	"fridge-backend/storage"

	"github.com/gin-gonic/gin"
)

// DefaultMaxFileSize bounds a single upload.
const DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB

// formOverhead leaves room for the non-file multipart fields.
const formOverhead = 1 << 20

// FileHandler stores uploaded media and serves it back by reference
type FileHandler struct {
	storage     storage.Storage
	maxFileSize int64
}

// NewFileHandler creates a new file handler
func NewFileHandler(st storage.Storage, maxFileSize int64) *FileHandler {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &FileHandler{storage: st, maxFileSize: maxFileSize}
}

// storedFile is an upload that has been sniffed and written to storage.
type storedFile struct {
	Ref          string
	FileType     models.FileType
	OriginalName string
}

// receive stores the multipart file under field. A missing file returns
// (nil, true) so callers decide whether one is required; on any other
// failure the error response is already written and ok is false.
func (h *FileHandler) receive(c *gin.Context, field string) (*storedFile, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize+formOverhead)

	fileHeader, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.tooLarge(c)
			return nil, false
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return nil, true
		default:
			errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "Malformed multipart form")
			return nil, false
		}
	}

	if fileHeader.Size > h.maxFileSize {
		h.tooLarge(c)
		return nil, false
	}

	stored, err := h.store(c, fileHeader)
	if err != nil {
		return nil, false
	}
	return stored, true
}

func (h *FileHandler) store(c *gin.Context, fileHeader *multipart.FileHeader) (*storedFile, error) {
	file, err := fileHeader.Open()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", "Failed to open uploaded file")
		return nil, err
	}
	defer file.Close()

	media, body, err := storage.Sniff(file)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedMedia) {
			errorJSON(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only images and videos are allowed")
			return nil, err
		}
		errorJSON(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", "Failed to read uploaded file")
		return nil, err
	}

	ref, err := h.storage.Put(c.Request.Context(), body, media.ContentType)
	if err != nil {
		_ = c.Error(err)
		errorJSON(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store file")
		return nil, err
	}

	return &storedFile{Ref: ref, FileType: media.FileType, OriginalName: fileHeader.Filename}, nil
}

func (h *FileHandler) tooLarge(c *gin.Context) {
	errorJSON(c, http.StatusBadRequest, "FILE_TOO_LARGE",
		fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize))
}

// urlFor returns the client-facing URL of a stored blob.
func (h *FileHandler) urlFor(ref string) string {
	return h.storage.URLFor(ref)
}

// withMediaURL sets MediaURL on mail items that carry media.
func (h *FileHandler) withMediaURL(items ...*models.MailItem) {
	for _, m := range items {
		if m.HasMedia() {
			u := h.urlFor(*m.MediaPath)
			m.MediaURL = &u
		}
	}
}

// discard removes a stored upload whose database write failed.
func (h *FileHandler) discard(c *gin.Context, f *storedFile) {
	if f == nil {
		return
	}
	if err := h.storage.Delete(c.Request.Context(), f.Ref); err != nil {
		_ = c.Error(err)
	}
}

// Serve handles GET /uploads/*ref
func (h *FileHandler) Serve(c *gin.Context) {
	ref := strings.TrimPrefix(c.Param("ref"), "/")

	rc, err := h.storage.Open(c.Request.Context(), ref)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidRef):
			errorJSON(c, http.StatusNotFound, "NOT_FOUND", "File not found")
		default:
			_ = c.Error(err)
			errorJSON(c, http.StatusInternalServerError, "DOWNLOAD_FAILED", "Failed to read file")
		}
		return
	}
	defer rc.Close()

	c.Header("Content-Type", storage.ContentType(ref))
	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		_ = c.Error(err)
	}
}
