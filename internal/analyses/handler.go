package analyses

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-review/internal/shared/server/middleware"
	"resume-review/internal/shared/server/respond"
	"resume-review/internal/shared/telemetry"
	"resume-review/internal/uploads"
)

const (
	// multipartOverhead leaves room for form boundaries and headers around the file.
	multipartOverhead int64 = 1 << 20

	messageUploadOK     = "Resume analyzed successfully!"
	messageUploadFailed = "Failed to analyze resume. Please try again."
	messageInFlight     = "An upload is already in progress. Please wait for it to finish."
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RecordView is a record as served over HTTP, with its display band.
type RecordView struct {
	Record
	RatingBand string `json:"ratingBand"`
}

// View wraps rec for the wire.
func View(rec Record) RecordView {
	return RecordView{Record: rec.Normalize(), RatingBand: RatingBand(rec.AIFeedback.Rating)}
}

// UploadResponse is the envelope returned by the upload entry point.
type UploadResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    *RecordView `json:"data,omitempty"`
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.upload)
	rg.GET("/resumes", h.history)
	rg.GET("/resumes/:id", h.get)
	rg.GET("/resumes/:id/source", h.source)
}

func (h *Handler) upload(c *gin.Context) {
	clientID := middleware.ClientIDFromContext(c)
	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			h.uploadFailed(c, ErrFileTooLarge)
			return
		}
		h.uploadFailed(c, fmt.Errorf("%w: file is required", ErrValidation))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.uploadFailed(c, fmt.Errorf("%w: unable to read file", ErrValidation))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		h.uploadFailed(c, fmt.Errorf("%w: unable to read file", ErrValidation))
		return
	}
	size := fileHeader.Size
	if size < int64(len(data)) {
		size = int64(len(data))
	}

	rec, err := h.Svc.Upload(ctx, clientID, Upload{
		FileName:    strings.TrimSpace(fileHeader.Filename),
		ContentType: fileHeader.Header.Get("Content-Type"),
		SizeBytes:   size,
		Data:        data,
	})
	if err != nil {
		h.uploadFailed(c, err)
		return
	}

	view := View(rec)
	c.Set("recordId", rec.ID)
	c.Set("uploadOutcome", string(uploads.StateDone))
	respond.JSON(c, http.StatusCreated, UploadResponse{
		Success: true,
		Message: messageUploadOK,
		Data:    &view,
	})
}

// uploadFailed answers with the upload envelope rather than the shared error body.
func (h *Handler) uploadFailed(c *gin.Context, err error) {
	status, code, message := classifyUploadError(err)
	outcome := string(uploads.StateFailed)
	if errors.Is(err, ErrValidation) {
		outcome = "rejected"
	}
	c.Set("uploadOutcome", outcome)
	telemetry.Error("http.error", map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": middleware.RequestIDFromContext(c),
		"client_id":  middleware.ClientIDFromContext(c),
		"error":      sanitizeError(err),
	})
	c.AbortWithStatusJSON(status, UploadResponse{
		Success: false,
		Message: message,
		Code:    code,
	})
}

func classifyUploadError(err error) (int, string, string) {
	var pe *ProviderError
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorCodeFileTooLarge, ErrFileTooLarge.Error()
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, ErrorCodeValidation, validationMessage(err)
	case errors.Is(err, uploads.ErrUploadInFlight):
		return http.StatusConflict, ErrorCodeUploadInProgress, messageInFlight
	case errors.As(err, &pe) && pe.Kind == ProviderTimeout:
		return http.StatusGatewayTimeout, ErrorCodeProvider, messageUploadFailed
	case errors.Is(err, ErrProvider):
		return http.StatusBadGateway, ErrorCodeProvider, messageUploadFailed
	case errors.Is(err, ErrStoreWrite):
		return http.StatusInternalServerError, ErrorCodeStoreWrite, messageUploadFailed
	default:
		return http.StatusInternalServerError, ErrorCodeInternal, messageUploadFailed
	}
}

// validationMessage drops the sentinel prefix from wrapped validation errors.
func validationMessage(err error) string {
	msg := err.Error()
	return strings.TrimPrefix(msg, ErrValidation.Error()+": ")
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

func (h *Handler) history(c *gin.Context) {
	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	recs, err := h.Svc.History(ctx)
	if err != nil {
		switch {
		case errors.Is(err, ErrStoreRead):
			respond.Error(c, http.StatusServiceUnavailable, ErrorCodeHistory, "History is temporarily unavailable. Please try again.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to load history", nil)
		}
		return
	}

	resp := make([]RecordView, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, View(rec))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	rec, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "resume analysis not found", nil)
		case errors.Is(err, ErrStoreRead):
			respond.Error(c, http.StatusServiceUnavailable, ErrorCodeHistory, "History is temporarily unavailable. Please try again.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to fetch resume analysis", nil)
		}
		return
	}
	c.Set("recordId", rec.ID)
	respond.OK(c, View(rec))
}

func (h *Handler) source(c *gin.Context) {
	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	rc, rec, err := h.Svc.Source(ctx, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "resume file not found", nil)
		default:
			respond.Error(c, http.StatusServiceUnavailable, ErrorCodeHistory, "resume file is temporarily unavailable", nil)
		}
		return
	}
	defer rc.Close()

	c.Set("recordId", rec.ID)
	disposition := mime.FormatMediaType("inline", map[string]string{"filename": rec.FileName})
	if disposition == "" {
		disposition = "inline"
	}
	c.DataFromReader(http.StatusOK, -1, ContentTypePDF, rc, map[string]string{
		"Content-Disposition": disposition,
	})
}
