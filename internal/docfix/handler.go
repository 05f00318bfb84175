package docfix

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docfixer-backend/internal/docx"
	"docfixer-backend/internal/shared/server/middleware"
	"docfixer-backend/internal/shared/server/respond"
	"docfixer-backend/internal/usage"
	"docfixer-backend/internal/users"
)

// Handler exposes the fix-document endpoint.
type Handler struct {
	svc            *Service
	users          *users.Service
	usage          *usage.Service
	maxUploadBytes int64
}

func NewHandler(svc *Service, users *users.Service, usage *usage.Service, maxUploadBytes int64) *Handler {
	return &Handler{
		svc:            svc,
		users:          users,
		usage:          usage,
		maxUploadBytes: maxUploadBytes,
	}
}

// Register mounts the routes on the API group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/fix-document", h.fixDocument)
}

func (h *Handler) fixDocument(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.ErrorWithAction(c, http.StatusUnauthorized, "unauthorized", "authentication required", respond.ActionSignup, nil)
		return
	}

	ctx := c.Request.Context()
	u, err := h.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respond.ErrorWithAction(c, http.StatusUnauthorized, "unauthorized", "account no longer exists", respond.ActionSignup, nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "lookup_failed", "could not load account", nil)
		return
	}

	// Early quota check so the user is refused before the upload is
	// processed. Reserve below is what actually enforces the cap.
	if err := h.usage.Check(ctx, u.ID, u.Plan); err != nil {
		h.respondQuota(c, err)
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "missing_file", "multipart field 'file' is required", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "unreadable_file", "could not read the uploaded file", nil)
		return
	}
	defer f.Close()

	requestID := middleware.RequestIDFromContext(c)
	result, err := h.svc.Process(ctx, u.ID, fileHeader.Filename, requestID, f)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedFormat):
			respond.Error(c, http.StatusBadRequest, "unsupported_format", "only .docx files are supported", nil)
		case errors.Is(err, docx.ErrNotDocx):
			respond.Error(c, http.StatusBadRequest, "invalid_document", "the uploaded file is not a readable .docx document", nil)
		case errors.Is(err, ErrUpstreamUnavailable):
			respond.ErrorWithAction(c, http.StatusBadGateway, "upstream_unavailable", "the rewrite service is unavailable", respond.ActionContactSupport, nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "processing_failed", "could not process the document", nil)
		}
		return
	}

	rec := usage.Record{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		FileName:  fileHeader.Filename,
		IPAddress: c.ClientIP(),
	}
	if err := h.usage.Reserve(ctx, rec, u.Plan); err != nil {
		h.respondQuota(c, err)
		return
	}

	c.Header("X-Paragraphs-Failed", strconv.Itoa(result.ParagraphsFailed))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, docx.MimeType, result.Data)
}

func (h *Handler) respondQuota(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usage.ErrUpgradeRequired):
		respond.ErrorWithAction(c, http.StatusPaymentRequired, "upgrade_required", "free plan limit reached for this month", respond.ActionUpgrade, nil)
	case errors.Is(err, usage.ErrRateLimited):
		respond.ErrorWithAction(c, http.StatusTooManyRequests, "rate_limited", "pro plan limit reached for this month", respond.ActionContactSupport, nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "usage_failed", "could not verify usage", nil)
	}
}
