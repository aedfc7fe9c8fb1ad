package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openconf/editorial-backend/internal/common"
	"github.com/openconf/editorial-backend/internal/domain"
	"github.com/openconf/editorial-backend/internal/middleware"
	"github.com/openconf/editorial-backend/internal/service"
	"github.com/openconf/editorial-backend/pkg/ginutil"
)

// ManagementHandler event editing configuration endpoints
type ManagementHandler struct {
	management service.ManagementService
	principals service.PrincipalService
	settings   service.SettingsService
	layout     service.LayoutService
	access     service.AccessService
	auth       service.AuthService
}

func NewManagementHandler(
	management service.ManagementService,
	principals service.PrincipalService,
	settings service.SettingsService,
	layout service.LayoutService,
	access service.AccessService,
	auth service.AuthService,
) *ManagementHandler {
	return &ManagementHandler{
		management: management,
		principals: principals,
		settings:   settings,
		layout:     layout,
		access:     access,
		auth:       auth,
	}
}

// requireManager resolves the event id and checks the caller holds the
// editing manager permission
func (h *ManagementHandler) requireManager(c *gin.Context) (uint, *domain.User, bool) {
	eventID, err := ginutil.ParamUint(c, "event_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID", err)
		return 0, nil, false
	}
	user, err := h.auth.GetUser(middleware.GetUserID(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "Unknown user", err)
		return 0, nil, false
	}
	if !h.access.CanManage(eventID, user, domain.PermEditingManager) {
		common.ErrorResponse(c, http.StatusForbidden, "Editing management access required", nil)
		return 0, nil, false
	}
	return eventID, user, true
}

func (h *ManagementHandler) requireManagerAndType(c *gin.Context) (uint, *domain.User, domain.EditableType, bool) {
	eventID, user, ok := h.requireManager(c)
	if !ok {
		return 0, nil, 0, false
	}
	typ, ok := domain.ParseEditableType(c.Param("type"))
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "Unknown editable type", nil)
		return 0, nil, 0, false
	}
	return eventID, user, typ, true
}

// ListFileTypes handles GET /api/v1/events/:event_id/editing/:type/file-types
func (h *ManagementHandler) ListFileTypes(c *gin.Context) {
	eventID, _, typ, ok := h.requireManagerAndType(c)
	if !ok {
		return
	}
	fileTypes, err := h.management.ListFileTypes(eventID, typ)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list file types", err)
		return
	}
	common.SuccessResponse(c, fileTypes, nil)
}

// CreateFileType handles POST /api/v1/events/:event_id/editing/:type/file-types
func (h *ManagementHandler) CreateFileType(c *gin.Context) {
	eventID, user, typ, ok := h.requireManagerAndType(c)
	if !ok {
		return
	}
	var req service.FileTypeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	fileType, err := h.management.CreateFileType(eventID, typ, req, user.ID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to create file type", err)
		return
	}
	common.CreatedResponse(c, fileType)
}

// UpdateFileType handles PATCH .../file-types/:file_type_id
func (h *ManagementHandler) UpdateFileType(c *gin.Context) {
	if _, _, _, ok := h.requireManagerAndType(c); !ok {
		return
	}
	fileTypeID, err := ginutil.ParamUint(c, "file_type_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid file type ID", err)
		return
	}
	var req service.FileTypeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	fileType, err := h.management.UpdateFileType(fileTypeID, req)
	if h.handleConfigError(c, err) {
		return
	}
	common.SuccessResponse(c, fileType, nil)
}

// DeleteFileType handles DELETE .../file-types/:file_type_id
func (h *ManagementHandler) DeleteFileType(c *gin.Context) {
	if _, _, _, ok := h.requireManagerAndType(c); !ok {
		return
	}
	fileTypeID, err := ginutil.ParamUint(c, "file_type_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid file type ID", err)
		return
	}
	if h.handleConfigError(c, h.management.DeleteFileType(fileTypeID)) {
		return
	}
	common.NoContentResponse(c)
}

// ListReviewConditions handles GET .../review-conditions
func (h *ManagementHandler) ListReviewConditions(c *gin.Context) {
	eventID, _, typ, ok := h.requireManagerAndType(c)
	if !ok {
		return
	}
	conditions, err := h.management.ListReviewConditions(eventID, typ)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list review conditions", err)
		return
	}
	common.SuccessResponse(c, conditions, nil)
}

type reviewConditionRequest struct {
	FileTypeIDs []uint `json:"file_type_ids" binding:"required"`
}

// CreateReviewCondition handles POST .../review-conditions
func (h *ManagementHandler) CreateReviewCondition(c *gin.Context) {
	eventID, _, typ, ok := h.requireManagerAndType(c)
	if !ok {
		return
	}
	var req reviewConditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	condition, err := h.management.CreateReviewCondition(eventID, typ, req.FileTypeIDs)
	if h.handleConfigError(c, err) {
		return
	}
	common.CreatedResponse(c, condition)
}

// UpdateReviewCondition handles PATCH .../review-conditions/:condition_id
func (h *ManagementHandler) UpdateReviewCondition(c *gin.Context) {
	if _, _, _, ok := h.requireManagerAndType(c); !ok {
		return
	}
	conditionID, err := ginutil.ParamUint(c, "condition_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid condition ID", err)
		return
	}
	var req reviewConditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	condition, err := h.management.UpdateReviewCondition(conditionID, req.FileTypeIDs)
	if h.handleConfigError(c, err) {
		return
	}
	common.SuccessResponse(c, condition, nil)
}

// DeleteReviewCondition handles DELETE .../review-conditions/:condition_id
func (h *ManagementHandler) DeleteReviewCondition(c *gin.Context) {
	if _, _, _, ok := h.requireManagerAndType(c); !ok {
		return
	}
	conditionID, err := ginutil.ParamUint(c, "condition_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid condition ID", err)
		return
	}
	if h.handleConfigError(c, h.management.DeleteReviewCondition(conditionID)) {
		return
	}
	common.NoContentResponse(c)
}

// GetSettings handles GET /api/v1/events/:event_id/editing/:type/settings
func (h *ManagementHandler) GetSettings(c *gin.Context) {
	eventID, _, typ, ok := h.requireManagerAndType(c)
	if !ok {
		return
	}
	settings, err := h.settings.GetTypeSettings(eventID, typ)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	common.SuccessResponse(c, settings, nil)
}

type toggleRequest struct {
	Name  string `json:"name" binding:"required"`
	Value *bool  `json:"value" binding:"required"`
}

// ToggleSetting handles PATCH /api/v1/events/:event_id/editing/:type/settings
func (h *ManagementHandler) ToggleSetting(c *gin.Context) {
	eventID, user, typ, ok := h.requireManagerAndType(c)
	if !ok {
		return
	}
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.management.ToggleSetting(eventID, typ, req.Name, *req.Value, user.ID); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Failed to update setting", err)
		return
	}
	common.NoContentResponse(c)
}

// ListEditors handles GET /api/v1/events/:event_id/editing/:type/editors
func (h *ManagementHandler) ListEditors(c *gin.Context) {
	eventID, _, typ, ok := h.requireManagerAndType(c)
	if !ok {
		return
	}
	editors, err := h.management.ListEditors(eventID, typ)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list editors", err)
		return
	}
	common.SuccessResponse(c, editors, nil)
}

type setEditorsRequest struct {
	UserIDs []uint `json:"user_ids"`
}

// SetEditors handles PUT /api/v1/events/:event_id/editing/:type/editors
func (h *ManagementHandler) SetEditors(c *gin.Context) {
	eventID, _, typ, ok := h.requireManagerAndType(c)
	if !ok {
		return
	}
	var req setEditorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.principals.SetEditors(eventID, typ, req.UserIDs); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to update editors", err)
		return
	}
	common.NoContentResponse(c)
}

// CountNotSubmitted handles GET /api/v1/events/:event_id/editing/:type/not-submitted
func (h *ManagementHandler) CountNotSubmitted(c *gin.Context) {
	eventID, _, typ, ok := h.requireManagerAndType(c)
	if !ok {
		return
	}
	count, err := h.management.CountNotSubmitted(eventID, typ)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to count contributions", err)
		return
	}
	common.SuccessResponse(c, gin.H{"count": count}, nil)
}

// GetLayoutSettings handles GET /api/v1/events/:event_id/layout
func (h *ManagementHandler) GetLayoutSettings(c *gin.Context) {
	eventID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	settings, err := h.layout.GetSettings(eventID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load layout settings", err)
		return
	}
	common.SuccessResponse(c, settings, nil)
}

type layoutSettingRequest struct {
	Name  string      `json:"name" binding:"required"`
	Value interface{} `json:"value"`
}

// SetLayoutSetting handles PATCH /api/v1/events/:event_id/layout
func (h *ManagementHandler) SetLayoutSetting(c *gin.Context) {
	eventID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	var req layoutSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.layout.SetSetting(eventID, req.Name, req.Value); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Failed to update layout setting", err)
		return
	}
	common.NoContentResponse(c)
}

// ResetLayoutSetting handles DELETE /api/v1/events/:event_id/layout/:name
func (h *ManagementHandler) ResetLayoutSetting(c *gin.Context) {
	eventID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	if err := h.layout.ResetSetting(eventID, c.Param("name")); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Failed to reset layout setting", err)
		return
	}
	common.NoContentResponse(c)
}

// ListSessionACL handles GET /api/v1/events/:event_id/sessions/:session_id/acl
func (h *ManagementHandler) ListSessionACL(c *gin.Context) {
	if _, _, ok := h.requireManager(c); !ok {
		return
	}
	sessionID, err := ginutil.ParamUint(c, "session_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid session ID", err)
		return
	}
	principals, err := h.principals.ListSessionPrincipals(sessionID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list session ACL", err)
		return
	}
	common.SuccessResponse(c, principals, nil)
}

type sessionACLRequest struct {
	UserID      uint     `json:"user_id" binding:"required"`
	FullAccess  bool     `json:"full_access"`
	Permissions []string `json:"permissions"`
}

// SetSessionACLEntry handles PUT /api/v1/events/:event_id/sessions/:session_id/acl
func (h *ManagementHandler) SetSessionACLEntry(c *gin.Context) {
	if _, _, ok := h.requireManager(c); !ok {
		return
	}
	sessionID, err := ginutil.ParamUint(c, "session_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid session ID", err)
		return
	}
	var req sessionACLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	principal, err := h.principals.SetSessionPrincipal(sessionID, req.UserID, req.FullAccess, req.Permissions)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to update session ACL", err)
		return
	}
	common.SuccessResponse(c, principal, nil)
}

// DeleteSessionACLEntry handles DELETE .../sessions/:session_id/acl/:principal_id
func (h *ManagementHandler) DeleteSessionACLEntry(c *gin.Context) {
	if _, _, ok := h.requireManager(c); !ok {
		return
	}
	principalID, err := ginutil.ParamUint(c, "principal_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid principal ID", err)
		return
	}
	if err := h.principals.DeleteSessionPrincipal(principalID); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to delete session ACL entry", err)
		return
	}
	common.NoContentResponse(c)
}

// handleConfigError maps configuration errors to HTTP responses
func (h *ManagementHandler) handleConfigError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, common.ErrFileTypeNotFound), errors.Is(err, common.ErrNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "Not found", err)
	case errors.Is(err, common.ErrFileTypeInUse):
		common.ErrorResponse(c, http.StatusConflict, "File type is referenced by revisions", err)
	case errors.Is(err, common.ErrFileTypeInCondition):
		common.ErrorResponse(c, http.StatusConflict, "File type is required by a review condition", err)
	case errors.Is(err, common.ErrLastPublishableType):
		common.ErrorResponse(c, http.StatusConflict, "At least one publishable file type is required", err)
	case errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request", err)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, "Operation failed", err)
	}
	return true
}
