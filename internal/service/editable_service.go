package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/openconf/editorial-backend/internal/common"
	"github.com/openconf/editorial-backend/internal/domain"
	"github.com/openconf/editorial-backend/internal/repository"
	"gorm.io/gorm"
)

// ReviewAction is an editor's verdict on the latest revision
type ReviewAction string

// Editor review actions
const (
	ReviewActionAccept        ReviewAction = "accept"
	ReviewActionReject        ReviewAction = "reject"
	ReviewActionUpdate        ReviewAction = "update"
	ReviewActionRequestUpdate ReviewAction = "request_update"
)

// FileInput describes one uploaded file for a new revision
type FileInput struct {
	FileTypeID  uint   `json:"file_type_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// EditableService workflow operations on editables. Every mutation runs in
// a single transaction; permission checks happen at the handler boundary
// via the domain predicates.
type EditableService interface {
	GetTimeline(editableID uint) (*domain.Editable, error)
	FindByContributionAndType(contributionID uint, typ domain.EditableType) (*domain.Editable, error)
	ListByEvent(eventID uint, typ domain.EditableType) ([]*domain.Editable, error)
	CheckReviewConditions(editable *domain.Editable, eventID uint) (bool, error)

	CreateEditable(contributionID uint, typ domain.EditableType, userID uint, files []FileInput) (*domain.Editable, error)
	CreateSubmitterRevision(editableID, revisionID, userID uint, files []FileInput) (*domain.Revision, error)
	ReviewEditable(editableID, revisionID, editorID uint, action ReviewAction, comment string, files []FileInput) (*domain.Revision, error)
	ConfirmChanges(editableID, revisionID, userID uint, accept bool, comment string) (*domain.Revision, error)
	UndoReview(editableID, revisionID uint) error
	ResetEditable(editableID, userID uint) error

	AssignEditor(editableID, editorID uint) error
	UnassignEditor(editableID uint) error
	DeleteEditable(editableID uint, userID uint) error

	CreateComment(editableID, revisionID, userID uint, text string, internal bool) (*domain.RevisionComment, error)
	UpdateComment(commentID uint, text *string, internal *bool) error
	DeleteComment(commentID uint) error
}

type editableService struct {
	editableRepo  repository.EditableRepository
	revisionRepo  repository.RevisionRepository
	fileTypeRepo  repository.FileTypeRepository
	conditionRepo repository.ReviewConditionRepository
	contribRepo   repository.ContributionRepository
	eventRepo     repository.EventRepository
}

// NewEditableService creates a new EditableService
func NewEditableService(
	editableRepo repository.EditableRepository,
	revisionRepo repository.RevisionRepository,
	fileTypeRepo repository.FileTypeRepository,
	conditionRepo repository.ReviewConditionRepository,
	contribRepo repository.ContributionRepository,
	eventRepo repository.EventRepository,
) EditableService {
	return &editableService{
		editableRepo:  editableRepo,
		revisionRepo:  revisionRepo,
		fileTypeRepo:  fileTypeRepo,
		conditionRepo: conditionRepo,
		contribRepo:   contribRepo,
		eventRepo:     eventRepo,
	}
}

func (s *editableService) GetTimeline(editableID uint) (*domain.Editable, error) {
	editable, err := s.editableRepo.FindByID(editableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrEditableNotFound
		}
		return nil, err
	}
	return editable, nil
}

func (s *editableService) FindByContributionAndType(contributionID uint, typ domain.EditableType) (*domain.Editable, error) {
	editable, err := s.editableRepo.FindByContributionAndType(contributionID, typ)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrEditableNotFound
		}
		return nil, err
	}
	return editable, nil
}

func (s *editableService) ListByEvent(eventID uint, typ domain.EditableType) ([]*domain.Editable, error) {
	return s.editableRepo.FindByEvent(eventID, typ)
}

// CheckReviewConditions evaluates the configured review conditions against
// the editable's latest revision with files
func (s *editableService) CheckReviewConditions(editable *domain.Editable, eventID uint) (bool, error) {
	conditions, err := s.conditionRepo.FindByEventAndType(eventID, editable.Type)
	if err != nil {
		return false, err
	}
	return editable.ReviewConditionsValid(conditions), nil
}

// validateFiles checks uploaded files against the event's file types:
// unknown types are rejected, required types must be covered and types
// not allowing multiple files may appear at most once.
func (s *editableService) validateFiles(eventID uint, typ domain.EditableType, files []FileInput) error {
	if len(files) == 0 {
		return common.ErrNoFiles
	}
	fileTypes, err := s.fileTypeRepo.FindByEventAndType(eventID, typ)
	if err != nil {
		return err
	}
	byID := make(map[uint]*domain.FileType, len(fileTypes))
	for _, ft := range fileTypes {
		byID[ft.ID] = ft
	}

	seen := make(map[uint]int)
	for _, f := range files {
		ft, ok := byID[f.FileTypeID]
		if !ok {
			return fmt.Errorf("%w: unknown file type %d", common.ErrInvalidInput, f.FileTypeID)
		}
		seen[f.FileTypeID]++
		if !ft.AllowMultiple && seen[f.FileTypeID] > 1 {
			return fmt.Errorf("%w: file type %q does not allow multiple files", common.ErrInvalidInput, ft.Name)
		}
	}
	for _, ft := range fileTypes {
		if ft.Required && seen[ft.ID] == 0 {
			return fmt.Errorf("%w: missing file of required type %q", common.ErrInvalidInput, ft.Name)
		}
	}
	return nil
}

func buildRevisionFiles(files []FileInput) []domain.RevisionFile {
	out := make([]domain.RevisionFile, len(files))
	for i, f := range files {
		out[i] = domain.RevisionFile{
			FileTypeID:  f.FileTypeID,
			StorageID:   uuid.NewString(),
			Filename:    f.Filename,
			ContentType: f.ContentType,
			Size:        f.Size,
		}
	}
	return out
}

// ensureLatestRevision guards revision-scoped operations against acting on
// a stale revision
func ensureLatestRevision(editable *domain.Editable, revisionID uint) error {
	latest := editable.LatestRevision()
	if latest == nil || latest.ID != revisionID {
		return common.ErrNotLatestRevision
	}
	return nil
}

func (s *editableService) log(eventID uint, userID *uint, kind, summary string, meta string) {
	_ = s.eventRepo.Log(&domain.EventLogEntry{
		EventID: eventID,
		UserID:  userID,
		Realm:   domain.LogRealmReviewing,
		Kind:    kind,
		Module:  "Editing",
		Summary: summary,
		Meta:    meta,
	})
}

func (s *editableService) CreateEditable(contributionID uint, typ domain.EditableType, userID uint, files []FileInput) (*domain.Editable, error) {
	contribution, err := s.contribRepo.FindByID(contributionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}

	if _, err := s.editableRepo.FindByContributionAndType(contributionID, typ); err == nil {
		return nil, common.ErrEditableExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.validateFiles(contribution.EventID, typ, files); err != nil {
		return nil, err
	}

	editable := &domain.Editable{
		ContributionID: contributionID,
		Type:           typ,
		Revisions: []domain.Revision{{
			UserID: userID,
			Type:   domain.RevisionTypeReadyForReview,
			Files:  buildRevisionFiles(files),
		}},
	}

	err = s.editableRepo.DB().Transaction(func(tx *gorm.DB) error {
		return s.editableRepo.WithTx(tx).Create(editable)
	})
	if err != nil {
		return nil, err
	}

	s.log(contribution.EventID, &userID, domain.LogKindPositive,
		fmt.Sprintf("Submitted %s for %q", typ.Title(), contribution.Title),
		fmt.Sprintf(`{"editable_id":%d}`, editable.ID))
	return editable, nil
}

func (s *editableService) CreateSubmitterRevision(editableID, revisionID, userID uint, files []FileInput) (*domain.Revision, error) {
	editable, err := s.GetTimeline(editableID)
	if err != nil {
		return nil, err
	}
	if err := ensureLatestRevision(editable, revisionID); err != nil {
		return nil, err
	}
	if editable.Contribution == nil {
		return nil, common.ErrNotFound
	}
	if err := s.validateFiles(editable.Contribution.EventID, editable.Type, files); err != nil {
		return nil, err
	}

	revision := &domain.Revision{
		EditableID: editableID,
		UserID:     userID,
		Type:       domain.RevisionTypeReplacement,
		Files:      buildRevisionFiles(files),
	}
	err = s.editableRepo.DB().Transaction(func(tx *gorm.DB) error {
		return s.revisionRepo.WithTx(tx).Create(revision)
	})
	if err != nil {
		return nil, err
	}

	s.log(editable.Contribution.EventID, &userID, domain.LogKindNeutral,
		fmt.Sprintf("Uploaded a new revision for %s", editable.LogTitle()),
		fmt.Sprintf(`{"editable_id":%d}`, editable.ID))
	return revision, nil
}

var reviewRevisionTypes = map[ReviewAction]domain.RevisionType{
	ReviewActionAccept:        domain.RevisionTypeAcceptance,
	ReviewActionReject:        domain.RevisionTypeRejection,
	ReviewActionUpdate:        domain.RevisionTypeNeedsSubmitterConfirmation,
	ReviewActionRequestUpdate: domain.RevisionTypeNeedsSubmitterChanges,
}

// ReviewEditable records an editor verdict on the latest revision. Accepting
// publishes the new revision; "update" uploads editor changes the submitter
// still has to confirm.
func (s *editableService) ReviewEditable(editableID, revisionID, editorID uint, action ReviewAction, comment string, files []FileInput) (*domain.Revision, error) {
	revType, ok := reviewRevisionTypes[action]
	if !ok {
		return nil, fmt.Errorf("%w: unknown review action %q", common.ErrInvalidInput, action)
	}

	editable, err := s.GetTimeline(editableID)
	if err != nil {
		return nil, err
	}
	if err := ensureLatestRevision(editable, revisionID); err != nil {
		return nil, err
	}
	// "update" always needs a full file set; accept and request_update may
	// carry one, and it gets the same validation. A rejection never does.
	if action == ReviewActionUpdate || len(files) > 0 {
		if action == ReviewActionReject {
			return nil, fmt.Errorf("%w: rejecting a revision cannot carry files", common.ErrInvalidInput)
		}
		if editable.Contribution == nil {
			return nil, common.ErrNotFound
		}
		if err := s.validateFiles(editable.Contribution.EventID, editable.Type, files); err != nil {
			return nil, err
		}
	}

	revision := &domain.Revision{
		EditableID: editableID,
		UserID:     editorID,
		Type:       revType,
		Comment:    comment,
		Files:      buildRevisionFiles(files),
	}
	err = s.editableRepo.DB().Transaction(func(tx *gorm.DB) error {
		er := s.editableRepo.WithTx(tx)
		if err := s.revisionRepo.WithTx(tx).Create(revision); err != nil {
			return err
		}
		if action == ReviewActionAccept {
			return er.SetPublishedRevision(editableID, &revision.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	kind := domain.LogKindNeutral
	if action == ReviewActionAccept {
		kind = domain.LogKindPositive
	} else if action == ReviewActionReject {
		kind = domain.LogKindNegative
	}
	if editable.Contribution != nil {
		s.log(editable.Contribution.EventID, &editorID, kind,
			fmt.Sprintf("Reviewed %s (%s)", editable.LogTitle(), action),
			fmt.Sprintf(`{"editable_id":%d}`, editable.ID))
	}
	return revision, nil
}

// ConfirmChanges records the submitter's response to editor-made changes
func (s *editableService) ConfirmChanges(editableID, revisionID, userID uint, accept bool, comment string) (*domain.Revision, error) {
	editable, err := s.GetTimeline(editableID)
	if err != nil {
		return nil, err
	}
	if err := ensureLatestRevision(editable, revisionID); err != nil {
		return nil, err
	}
	latest := editable.LatestRevision()
	if latest.Type != domain.RevisionTypeNeedsSubmitterConfirmation {
		return nil, fmt.Errorf("%w: revision does not await confirmation", common.ErrInvalidInput)
	}

	revType := domain.RevisionTypeChangesRejection
	if accept {
		revType = domain.RevisionTypeChangesAcceptance
	}
	revision := &domain.Revision{
		EditableID: editableID,
		UserID:     userID,
		Type:       revType,
		Comment:    comment,
	}
	err = s.editableRepo.DB().Transaction(func(tx *gorm.DB) error {
		if err := s.revisionRepo.WithTx(tx).Create(revision); err != nil {
			return err
		}
		if accept {
			// the confirmed editor revision becomes the published one
			return s.editableRepo.WithTx(tx).SetPublishedRevision(editableID, &latest.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if editable.Contribution != nil {
		kind := domain.LogKindNegative
		if accept {
			kind = domain.LogKindPositive
		}
		s.log(editable.Contribution.EventID, &userID, kind,
			fmt.Sprintf("Submitter responded to changes on %s", editable.LogTitle()),
			fmt.Sprintf(`{"editable_id":%d}`, editable.ID))
	}
	return revision, nil
}

// UndoReview flags the latest review revision undone. The revision stays in
// the log; derived state simply skips it.
func (s *editableService) UndoReview(editableID, revisionID uint) error {
	editable, err := s.GetTimeline(editableID)
	if err != nil {
		return err
	}
	if err := ensureLatestRevision(editable, revisionID); err != nil {
		return err
	}
	latest := editable.LatestRevision()
	if !latest.Type.IsEditorReview() {
		return fmt.Errorf("%w: revision is not a review", common.ErrInvalidInput)
	}

	return s.editableRepo.DB().Transaction(func(tx *gorm.DB) error {
		if err := s.revisionRepo.WithTx(tx).MarkUndone(revisionID); err != nil {
			return err
		}
		if editable.PublishedRevisionID != nil && *editable.PublishedRevisionID == revisionID {
			return s.editableRepo.WithTx(tx).SetPublishedRevision(editableID, nil)
		}
		return nil
	})
}

// ResetEditable discards the current verdict and restarts the workflow at
// review-ready
func (s *editableService) ResetEditable(editableID, userID uint) error {
	editable, err := s.GetTimeline(editableID)
	if err != nil {
		return err
	}

	revision := &domain.Revision{
		EditableID: editableID,
		UserID:     userID,
		Type:       domain.RevisionTypeReset,
	}
	err = s.editableRepo.DB().Transaction(func(tx *gorm.DB) error {
		if err := s.revisionRepo.WithTx(tx).Create(revision); err != nil {
			return err
		}
		if editable.PublishedRevisionID != nil {
			return s.editableRepo.WithTx(tx).SetPublishedRevision(editableID, nil)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if editable.Contribution != nil {
		s.log(editable.Contribution.EventID, &userID, domain.LogKindNeutral,
			fmt.Sprintf("Reset %s", editable.LogTitle()),
			fmt.Sprintf(`{"editable_id":%d}`, editable.ID))
	}
	return nil
}

func (s *editableService) AssignEditor(editableID, editorID uint) error {
	editable, err := s.GetTimeline(editableID)
	if err != nil {
		return err
	}
	if editable.EditorID != nil {
		return common.ErrEditorAssigned
	}
	return s.editableRepo.SetEditor(editableID, &editorID)
}

func (s *editableService) UnassignEditor(editableID uint) error {
	if _, err := s.GetTimeline(editableID); err != nil {
		return err
	}
	return s.editableRepo.SetEditor(editableID, nil)
}

func (s *editableService) DeleteEditable(editableID uint, userID uint) error {
	editable, err := s.GetTimeline(editableID)
	if err != nil {
		return err
	}
	if err := s.editableRepo.SoftDelete(editableID); err != nil {
		return err
	}
	if editable.Contribution != nil {
		s.log(editable.Contribution.EventID, &userID, domain.LogKindNegative,
			fmt.Sprintf("Deleted %s", editable.LogTitle()),
			fmt.Sprintf(`{"editable_id":%d}`, editable.ID))
	}
	return nil
}

func (s *editableService) CreateComment(editableID, revisionID, userID uint, text string, internal bool) (*domain.RevisionComment, error) {
	editable, err := s.GetTimeline(editableID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, r := range editable.Revisions {
		if r.ID == revisionID {
			found = true
			break
		}
	}
	if !found {
		return nil, common.ErrRevisionNotFound
	}

	comment := &domain.RevisionComment{
		RevisionID: revisionID,
		UserID:     userID,
		Text:       text,
		Internal:   internal,
	}
	if err := s.revisionRepo.CreateComment(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *editableService) UpdateComment(commentID uint, text *string, internal *bool) error {
	if _, err := s.revisionRepo.FindCommentByID(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrCommentNotFound
		}
		return err
	}
	updates := map[string]interface{}{}
	if text != nil {
		updates["text"] = *text
	}
	if internal != nil {
		updates["internal"] = *internal
	}
	if len(updates) == 0 {
		return nil
	}
	return s.revisionRepo.UpdateComment(commentID, updates)
}

func (s *editableService) DeleteComment(commentID uint) error {
	if _, err := s.revisionRepo.FindCommentByID(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrCommentNotFound
		}
		return err
	}
	return s.revisionRepo.SoftDeleteComment(commentID)
}
