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

// EditableHandler editable timeline and workflow endpoints
type EditableHandler struct {
	editables service.EditableService
	access    service.AccessService
	settings  service.SettingsService
	auth      service.AuthService
}

func NewEditableHandler(
	editables service.EditableService,
	access service.AccessService,
	settings service.SettingsService,
	auth service.AuthService,
) *EditableHandler {
	return &EditableHandler{editables: editables, access: access, settings: settings, auth: auth}
}

// editableContext everything the permission predicates need for one request
type editableContext struct {
	eventID  uint
	user     *domain.User
	editable *domain.Editable
	acc      domain.AccessChecker
	settings domain.TypeSettings
}

func (h *EditableHandler) parseType(c *gin.Context) (domain.EditableType, bool) {
	typ, ok := domain.ParseEditableType(c.Param("type"))
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "Unknown editable type", nil)
	}
	return typ, ok
}

// loadEditable resolves the editable addressed by the route along with the
// caller and the access checker scoped to its contribution
func (h *EditableHandler) loadEditable(c *gin.Context) (*editableContext, bool) {
	eventID, err := ginutil.ParamUint(c, "event_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID", err)
		return nil, false
	}
	contributionID, err := ginutil.ParamUint(c, "contribution_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid contribution ID", err)
		return nil, false
	}
	typ, ok := h.parseType(c)
	if !ok {
		return nil, false
	}

	user, err := h.auth.GetUser(middleware.GetUserID(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "Unknown user", err)
		return nil, false
	}

	editable, err := h.editables.FindByContributionAndType(contributionID, typ)
	if errors.Is(err, common.ErrEditableNotFound) {
		common.ErrorResponse(c, http.StatusNotFound, "Editable not found", err)
		return nil, false
	}
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load editable", err)
		return nil, false
	}

	settings, err := h.settings.GetTypeSettings(eventID, typ)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load settings", err)
		return nil, false
	}

	return &editableContext{
		eventID:  eventID,
		user:     user,
		editable: editable,
		acc:      h.access.ForContribution(eventID, editable.Contribution),
		settings: settings,
	}, true
}

// timelinePayload serialized timeline with derived state and permissions
type timelinePayload struct {
	Editable             *domain.Editable `json:"editable"`
	State                string           `json:"state"`
	StateTitle           string           `json:"state_title"`
	ReviewConditionsOK   bool             `json:"review_conditions_valid"`
	CanPerformSubmitter  bool             `json:"can_perform_submitter_actions"`
	CanPerformEditor     bool             `json:"can_perform_editor_actions"`
	CanComment           bool             `json:"can_comment"`
	CanAssignSelf        bool             `json:"can_assign_self"`
	CanUnassign          bool             `json:"can_unassign"`
	CanDelete            bool             `json:"can_delete"`
	CanSeeEditorNames    bool             `json:"can_see_editor_names"`
	CanUseInternalNotes  bool             `json:"can_use_internal_comments"`
}

// GetTimeline handles GET /api/v1/events/:event_id/contributions/:contribution_id/editing/:type
func (h *EditableHandler) GetTimeline(c *gin.Context) {
	ctx, ok := h.loadEditable(c)
	if !ok {
		return
	}
	if !ctx.editable.CanSeeTimeline(ctx.user, ctx.acc) {
		common.ErrorResponse(c, http.StatusForbidden, "Not allowed to view this timeline", nil)
		return
	}

	conditionsOK, err := h.editables.CheckReviewConditions(ctx.editable, ctx.eventID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to evaluate review conditions", err)
		return
	}

	payload := &timelinePayload{
		Editable:            ctx.editable,
		ReviewConditionsOK:  conditionsOK,
		CanPerformSubmitter: ctx.editable.CanPerformSubmitterActions(ctx.user, ctx.acc),
		CanPerformEditor:    ctx.editable.CanPerformEditorActions(ctx.user, ctx.acc, ctx.settings),
		CanComment:          ctx.editable.CanComment(ctx.user, ctx.acc),
		CanAssignSelf:       ctx.editable.CanAssignSelf(ctx.user, ctx.acc, ctx.settings),
		CanUnassign:         ctx.editable.CanUnassign(ctx.user, ctx.acc, ctx.settings),
		CanDelete:           ctx.editable.CanDelete(ctx.user, ctx.acc),
		CanSeeEditorNames:   ctx.editable.CanSeeEditorNames(ctx.user, nil, ctx.acc, ctx.settings),
		CanUseInternalNotes: ctx.editable.CanUseInternalComments(ctx.user, ctx.acc),
	}
	if state, known := ctx.editable.State(); known {
		payload.State = state.Name()
		payload.StateTitle = state.Title()
	}

	// hide the editor from users not allowed to see the team
	if !payload.CanSeeEditorNames {
		ctx.editable.Editor = nil
	}

	common.SuccessResponse(c, payload, nil)
}

type createEditableRequest struct {
	Files []service.FileInput `json:"files" binding:"required"`
}

// CreateEditable handles POST /api/v1/events/:event_id/contributions/:contribution_id/editing/:type
func (h *EditableHandler) CreateEditable(c *gin.Context) {
	eventID, err := ginutil.ParamUint(c, "event_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID", err)
		return
	}
	contributionID, err := ginutil.ParamUint(c, "contribution_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid contribution ID", err)
		return
	}
	typ, ok := h.parseType(c)
	if !ok {
		return
	}

	var req createEditableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.auth.GetUser(middleware.GetUserID(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "Unknown user", err)
		return
	}

	settings, err := h.settings.GetTypeSettings(eventID, typ)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	if !settings.SubmissionEnabled && !h.access.CanManage(eventID, user, "") {
		common.ErrorResponse(c, http.StatusForbidden, "Submission is not open", nil)
		return
	}

	editable, err := h.editables.CreateEditable(contributionID, typ, user.ID, req.Files)
	switch {
	case errors.Is(err, common.ErrEditableExists):
		common.ErrorResponse(c, http.StatusConflict, "Editable already exists", err)
	case errors.Is(err, common.ErrNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "Contribution not found", err)
	case errors.Is(err, common.ErrNoFiles), errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid files", err)
	case err != nil:
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to create editable", err)
	default:
		common.CreatedResponse(c, editable)
	}
}

type newRevisionRequest struct {
	RevisionID uint                `json:"revision_id" binding:"required"`
	Files      []service.FileInput `json:"files" binding:"required"`
}

// CreateRevision handles POST .../editing/:type/revisions
func (h *EditableHandler) CreateRevision(c *gin.Context) {
	ctx, ok := h.loadEditable(c)
	if !ok {
		return
	}
	if !ctx.editable.CanPerformSubmitterActions(ctx.user, ctx.acc) {
		common.ErrorResponse(c, http.StatusForbidden, "Not allowed to upload revisions", nil)
		return
	}

	var req newRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	revision, err := h.editables.CreateSubmitterRevision(ctx.editable.ID, req.RevisionID, ctx.user.ID, req.Files)
	if h.handleWorkflowError(c, err) {
		return
	}
	middleware.CountRevision(revision.Type.Name())
	common.CreatedResponse(c, revision)
}

type reviewRequest struct {
	RevisionID uint                 `json:"revision_id" binding:"required"`
	Action     service.ReviewAction `json:"action" binding:"required"`
	Comment    string               `json:"comment"`
	Files      []service.FileInput  `json:"files"`
}

// Review handles POST .../editing/:type/review
func (h *EditableHandler) Review(c *gin.Context) {
	ctx, ok := h.loadEditable(c)
	if !ok {
		return
	}
	if !ctx.editable.CanPerformEditorActions(ctx.user, ctx.acc, ctx.settings) {
		common.ErrorResponse(c, http.StatusForbidden, "Not allowed to review", nil)
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	revision, err := h.editables.ReviewEditable(ctx.editable.ID, req.RevisionID, ctx.user.ID, req.Action, req.Comment, req.Files)
	if h.handleWorkflowError(c, err) {
		return
	}
	middleware.CountRevision(revision.Type.Name())
	common.CreatedResponse(c, revision)
}

type confirmRequest struct {
	RevisionID uint   `json:"revision_id" binding:"required"`
	Accept     *bool  `json:"accept" binding:"required"`
	Comment    string `json:"comment"`
}

// ConfirmChanges handles POST .../editing/:type/confirm
func (h *EditableHandler) ConfirmChanges(c *gin.Context) {
	ctx, ok := h.loadEditable(c)
	if !ok {
		return
	}
	if !ctx.editable.CanPerformSubmitterActions(ctx.user, ctx.acc) {
		common.ErrorResponse(c, http.StatusForbidden, "Not allowed to confirm changes", nil)
		return
	}

	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	revision, err := h.editables.ConfirmChanges(ctx.editable.ID, req.RevisionID, ctx.user.ID, *req.Accept, req.Comment)
	if h.handleWorkflowError(c, err) {
		return
	}
	middleware.CountRevision(revision.Type.Name())
	common.CreatedResponse(c, revision)
}

type undoRequest struct {
	RevisionID uint `json:"revision_id" binding:"required"`
}

// UndoReview handles POST .../editing/:type/undo
func (h *EditableHandler) UndoReview(c *gin.Context) {
	ctx, ok := h.loadEditable(c)
	if !ok {
		return
	}
	if !ctx.editable.CanPerformEditorActions(ctx.user, ctx.acc, ctx.settings) {
		common.ErrorResponse(c, http.StatusForbidden, "Not allowed to undo reviews", nil)
		return
	}

	var req undoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.editables.UndoReview(ctx.editable.ID, req.RevisionID); err != nil {
		h.handleWorkflowError(c, err)
		return
	}
	common.NoContentResponse(c)
}

// Reset handles POST .../editing/:type/reset
func (h *EditableHandler) Reset(c *gin.Context) {
	ctx, ok := h.loadEditable(c)
	if !ok {
		return
	}
	if !ctx.acc.CanManage(ctx.user, ctx.editable.Type.EditorPermission()) {
		common.ErrorResponse(c, http.StatusForbidden, "Not allowed to reset", nil)
		return
	}

	if err := h.editables.ResetEditable(ctx.editable.ID, ctx.user.ID); err != nil {
		h.handleWorkflowError(c, err)
		return
	}
	common.NoContentResponse(c)
}

// AssignSelf handles PUT .../editing/:type/editor/self
func (h *EditableHandler) AssignSelf(c *gin.Context) {
	ctx, ok := h.loadEditable(c)
	if !ok {
		return
	}
	if !ctx.editable.CanAssignSelf(ctx.user, ctx.acc, ctx.settings) {
		common.ErrorResponse(c, http.StatusForbidden, "Not allowed to self-assign", nil)
		return
	}
	if err := h.editables.AssignEditor(ctx.editable.ID, ctx.user.ID); err != nil {
		h.handleWorkflowError(c, err)
		return
	}
	common.NoContentResponse(c)
}

type assignRequest struct {
	EditorID uint `json:"editor_id" binding:"required"`
}

// AssignEditor handles PUT .../editing/:type/editor
func (h *EditableHandler) AssignEditor(c *gin.Context) {
	ctx, ok := h.loadEditable(c)
	if !ok {
		return
	}
	if !ctx.acc.CanManage(ctx.user, ctx.editable.Type.EditorPermission()) {
		common.ErrorResponse(c, http.StatusForbidden, "Not allowed to assign editors", nil)
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.editables.AssignEditor(ctx.editable.ID, req.EditorID); err != nil {
		h.handleWorkflowError(c, err)
		return
	}
	common.NoContentResponse(c)
}

// UnassignEditor handles DELETE .../editing/:type/editor
func (h *EditableHandler) UnassignEditor(c *gin.Context) {
	ctx, ok := h.loadEditable(c)
	if !ok {
		return
	}
	if !ctx.editable.CanUnassign(ctx.user, ctx.acc, ctx.settings) {
		common.ErrorResponse(c, http.StatusForbidden, "Not allowed to unassign", nil)
		return
	}
	if err := h.editables.UnassignEditor(ctx.editable.ID); err != nil {
		h.handleWorkflowError(c, err)
		return
	}
	common.NoContentResponse(c)
}

// Delete handles DELETE .../editing/:type
func (h *EditableHandler) Delete(c *gin.Context) {
	ctx, ok := h.loadEditable(c)
	if !ok {
		return
	}
	if !ctx.editable.CanDelete(ctx.user, ctx.acc) {
		common.ErrorResponse(c, http.StatusForbidden, "Not allowed to delete", nil)
		return
	}
	if err := h.editables.DeleteEditable(ctx.editable.ID, ctx.user.ID); err != nil {
		h.handleWorkflowError(c, err)
		return
	}
	common.NoContentResponse(c)
}

type commentRequest struct {
	Text     string `json:"text" binding:"required"`
	Internal bool   `json:"internal"`
}

// CreateComment handles POST .../editing/:type/revisions/:revision_id/comments
func (h *EditableHandler) CreateComment(c *gin.Context) {
	ctx, ok := h.loadEditable(c)
	if !ok {
		return
	}
	if !ctx.editable.CanComment(ctx.user, ctx.acc) {
		common.ErrorResponse(c, http.StatusForbidden, "Not allowed to comment", nil)
		return
	}

	revisionID, err := ginutil.ParamUint(c, "revision_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid revision ID", err)
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Internal && !ctx.editable.CanUseInternalComments(ctx.user, ctx.acc) {
		common.ErrorResponse(c, http.StatusForbidden, "Not allowed to post internal comments", nil)
		return
	}

	comment, err := h.editables.CreateComment(ctx.editable.ID, revisionID, ctx.user.ID, req.Text, req.Internal)
	if h.handleWorkflowError(c, err) {
		return
	}
	common.CreatedResponse(c, comment)
}

type updateCommentRequest struct {
	Text     *string `json:"text"`
	Internal *bool   `json:"internal"`
}

// UpdateComment handles PATCH .../comments/:comment_id
func (h *EditableHandler) UpdateComment(c *gin.Context) {
	ctx, ok := h.loadEditable(c)
	if !ok {
		return
	}
	commentID, err := ginutil.ParamUint(c, "comment_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid comment ID", err)
		return
	}
	if !h.canModifyComment(ctx, commentID) {
		common.ErrorResponse(c, http.StatusForbidden, "Not allowed to modify this comment", nil)
		return
	}

	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Internal != nil && *req.Internal && !ctx.editable.CanUseInternalComments(ctx.user, ctx.acc) {
		common.ErrorResponse(c, http.StatusForbidden, "Not allowed to post internal comments", nil)
		return
	}

	if err := h.editables.UpdateComment(commentID, req.Text, req.Internal); err != nil {
		h.handleWorkflowError(c, err)
		return
	}
	common.NoContentResponse(c)
}

// DeleteComment handles DELETE .../comments/:comment_id
func (h *EditableHandler) DeleteComment(c *gin.Context) {
	ctx, ok := h.loadEditable(c)
	if !ok {
		return
	}
	commentID, err := ginutil.ParamUint(c, "comment_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid comment ID", err)
		return
	}
	if !h.canModifyComment(ctx, commentID) {
		common.ErrorResponse(c, http.StatusForbidden, "Not allowed to modify this comment", nil)
		return
	}

	if err := h.editables.DeleteComment(commentID); err != nil {
		h.handleWorkflowError(c, err)
		return
	}
	common.NoContentResponse(c)
}

func (h *EditableHandler) canModifyComment(ctx *editableContext, commentID uint) bool {
	for _, rev := range ctx.editable.Revisions {
		for i := range rev.Comments {
			if rev.Comments[i].ID == commentID {
				return rev.Comments[i].CanModify(ctx.user, ctx.editable, ctx.acc)
			}
		}
	}
	return false
}

// handleWorkflowError maps service errors to HTTP responses; it reports
// whether an error was written
func (h *EditableHandler) handleWorkflowError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, common.ErrEditableNotFound),
		errors.Is(err, common.ErrRevisionNotFound),
		errors.Is(err, common.ErrCommentNotFound),
		errors.Is(err, common.ErrNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "Not found", err)
	case errors.Is(err, common.ErrNotLatestRevision):
		common.ErrorResponse(c, http.StatusConflict, "Revision is not the latest one", err)
	case errors.Is(err, common.ErrEditorAssigned):
		common.ErrorResponse(c, http.StatusConflict, "An editor is already assigned", err)
	case errors.Is(err, common.ErrNoFiles), errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request", err)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, "Operation failed", err)
	}
	return true
}

// ListEditables handles GET /api/v1/events/:event_id/editing/:type/editables
func (h *EditableHandler) ListEditables(c *gin.Context) {
	eventID, err := ginutil.ParamUint(c, "event_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID", err)
		return
	}
	typ, ok := h.parseType(c)
	if !ok {
		return
	}

	user, err := h.auth.GetUser(middleware.GetUserID(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "Unknown user", err)
		return
	}
	if !h.access.CanManage(eventID, user, typ.EditorPermission()) {
		common.ErrorResponse(c, http.StatusForbidden, "Not allowed to list editables", nil)
		return
	}

	editables, err := h.editables.ListByEvent(eventID, typ)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list editables", err)
		return
	}
	common.SuccessResponse(c, editables, nil)
}
