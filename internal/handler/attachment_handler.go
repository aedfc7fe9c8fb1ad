package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openconf/editorial-backend/internal/common"
	"github.com/openconf/editorial-backend/internal/domain"
	"github.com/openconf/editorial-backend/internal/middleware"
	"github.com/openconf/editorial-backend/internal/service"
	"github.com/openconf/editorial-backend/pkg/ginutil"
)

// AttachmentHandler event attachment endpoints
type AttachmentHandler struct {
	attachments service.AttachmentService
	access      service.AccessService
	auth        service.AuthService
}

func NewAttachmentHandler(attachments service.AttachmentService, access service.AccessService, auth service.AuthService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments, access: access, auth: auth}
}

// List handles GET /api/v1/events/:event_id/attachments
func (h *AttachmentHandler) List(c *gin.Context) {
	eventID, err := ginutil.ParamUint(c, "event_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID", err)
		return
	}
	attachments, err := h.attachments.List(eventID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list attachments", err)
		return
	}
	common.SuccessResponse(c, attachments, nil)
}

// Upload handles POST /api/v1/events/:event_id/attachments (multipart)
func (h *AttachmentHandler) Upload(c *gin.Context) {
	eventID, err := ginutil.ParamUint(c, "event_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID", err)
		return
	}
	user, err := h.auth.GetUser(middleware.GetUserID(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "Unknown user", err)
		return
	}
	if !h.access.CanManage(eventID, user, domain.PermEditingManager) {
		common.ErrorResponse(c, http.StatusForbidden, "Editing management access required", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Missing file", err)
		return
	}
	title := c.PostForm("title")
	if title == "" {
		title = fileHeader.Filename
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Unreadable file", err)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	attachment, err := h.attachments.Upload(c.Request.Context(), eventID, title, fileHeader.Filename, contentType, file, fileHeader.Size)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to store attachment", err)
		return
	}
	common.CreatedResponse(c, attachment)
}

// Download handles GET /api/v1/events/:event_id/attachments/:attachment_id/download.
// With ?presign=1 it returns a pre-signed URL instead of streaming the body;
// expires_in overrides the URL lifetime in seconds.
func (h *AttachmentHandler) Download(c *gin.Context) {
	attachmentID, err := ginutil.ParamUint(c, "attachment_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid attachment ID", err)
		return
	}

	if c.Query("presign") == "1" {
		expiry := time.Duration(ginutil.QueryInt(c, "expires_in", 300)) * time.Second
		attachment, url, err := h.attachments.DownloadURL(c.Request.Context(), attachmentID, expiry)
		if errors.Is(err, common.ErrNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Attachment not found", err)
			return
		}
		if err != nil {
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to sign download URL", err)
			return
		}
		common.SuccessResponse(c, gin.H{"url": url, "filename": attachment.Filename}, nil)
		return
	}

	attachment, body, err := h.attachments.Download(c.Request.Context(), attachmentID)
	if errors.Is(err, common.ErrNotFound) {
		common.ErrorResponse(c, http.StatusNotFound, "Attachment not found", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch attachment", err)
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", `attachment; filename="`+attachment.Filename+`"`)
	c.Header("Content-Type", attachment.ContentType)
	_, _ = io.Copy(c.Writer, body)
}

// Delete handles DELETE /api/v1/events/:event_id/attachments/:attachment_id
func (h *AttachmentHandler) Delete(c *gin.Context) {
	eventID, err := ginutil.ParamUint(c, "event_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID", err)
		return
	}
	user, err := h.auth.GetUser(middleware.GetUserID(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "Unknown user", err)
		return
	}
	if !h.access.CanManage(eventID, user, domain.PermEditingManager) {
		common.ErrorResponse(c, http.StatusForbidden, "Editing management access required", nil)
		return
	}
	attachmentID, err := ginutil.ParamUint(c, "attachment_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid attachment ID", err)
		return
	}

	err = h.attachments.Delete(c.Request.Context(), attachmentID)
	if errors.Is(err, common.ErrNotFound) {
		common.ErrorResponse(c, http.StatusNotFound, "Attachment not found", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to delete attachment", err)
		return
	}
	common.NoContentResponse(c)
}

// Preview handles GET /api/v1/events/:event_id/attachments/:attachment_id/preview
func (h *AttachmentHandler) Preview(c *gin.Context) {
	attachmentID, err := ginutil.ParamUint(c, "attachment_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid attachment ID", err)
		return
	}

	attachment, preview, ok, err := h.attachments.Preview(c.Request.Context(), attachmentID)
	if errors.Is(err, common.ErrNotFound) {
		common.ErrorResponse(c, http.StatusNotFound, "Attachment not found", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to build preview", err)
		return
	}
	if !ok {
		common.ErrorResponse(c, http.StatusUnprocessableEntity, "No preview available for this file", nil)
		return
	}
	common.SuccessResponse(c, gin.H{"attachment": attachment, "preview": preview}, nil)
}
