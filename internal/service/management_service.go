package service

import (
	"errors"
	"fmt"

	"github.com/openconf/editorial-backend/internal/common"
	"github.com/openconf/editorial-backend/internal/domain"
	"github.com/openconf/editorial-backend/internal/repository"
	"gorm.io/gorm"
)

// FileTypeInput fields for creating or updating a file type
type FileTypeInput struct {
	Name          string `json:"name" binding:"required"`
	Extensions    string `json:"extensions"`
	AllowMultiple bool   `json:"allow_multiple"`
	Required      bool   `json:"required"`
	Publishable   bool   `json:"publishable"`
}

// ManagementService event-level editing configuration: file types, review
// conditions, workflow toggles and the editor roster
type ManagementService interface {
	ListFileTypes(eventID uint, typ domain.EditableType) ([]*domain.FileType, error)
	CreateFileType(eventID uint, typ domain.EditableType, input FileTypeInput, userID uint) (*domain.FileType, error)
	UpdateFileType(fileTypeID uint, input FileTypeInput) (*domain.FileType, error)
	DeleteFileType(fileTypeID uint) error

	ListReviewConditions(eventID uint, typ domain.EditableType) ([]domain.ReviewCondition, error)
	CreateReviewCondition(eventID uint, typ domain.EditableType, fileTypeIDs []uint) (*domain.ReviewCondition, error)
	UpdateReviewCondition(conditionID uint, fileTypeIDs []uint) (*domain.ReviewCondition, error)
	DeleteReviewCondition(conditionID uint) error

	ToggleSetting(eventID uint, typ domain.EditableType, name string, value bool, userID uint) error
	ListEditors(eventID uint, typ domain.EditableType) ([]*domain.User, error)
	CountNotSubmitted(eventID uint, typ domain.EditableType) (int64, error)
}

type managementService struct {
	fileTypeRepo  repository.FileTypeRepository
	conditionRepo repository.ReviewConditionRepository
	editableRepo  repository.EditableRepository
	principalRepo repository.PrincipalRepository
	userRepo      repository.UserRepository
	eventRepo     repository.EventRepository
	settings      SettingsService
}

// NewManagementService creates a new ManagementService
func NewManagementService(
	fileTypeRepo repository.FileTypeRepository,
	conditionRepo repository.ReviewConditionRepository,
	editableRepo repository.EditableRepository,
	principalRepo repository.PrincipalRepository,
	userRepo repository.UserRepository,
	eventRepo repository.EventRepository,
	settings SettingsService,
) ManagementService {
	return &managementService{
		fileTypeRepo:  fileTypeRepo,
		conditionRepo: conditionRepo,
		editableRepo:  editableRepo,
		principalRepo: principalRepo,
		userRepo:      userRepo,
		eventRepo:     eventRepo,
		settings:      settings,
	}
}

func (s *managementService) ListFileTypes(eventID uint, typ domain.EditableType) ([]*domain.FileType, error) {
	return s.fileTypeRepo.FindByEventAndType(eventID, typ)
}

func (s *managementService) CreateFileType(eventID uint, typ domain.EditableType, input FileTypeInput, userID uint) (*domain.FileType, error) {
	fileType := &domain.FileType{
		EventID:       eventID,
		Type:          typ,
		Name:          input.Name,
		Extensions:    input.Extensions,
		AllowMultiple: input.AllowMultiple,
		Required:      input.Required,
		Publishable:   input.Publishable,
	}
	if err := s.fileTypeRepo.Create(fileType); err != nil {
		return nil, err
	}
	_ = s.eventRepo.Log(&domain.EventLogEntry{
		EventID: eventID,
		UserID:  &userID,
		Realm:   domain.LogRealmManagement,
		Kind:    domain.LogKindPositive,
		Module:  "Editing",
		Summary: fmt.Sprintf("Added file type %q for %s", input.Name, typ.Title()),
	})
	return fileType, nil
}

func (s *managementService) UpdateFileType(fileTypeID uint, input FileTypeInput) (*domain.FileType, error) {
	fileType, err := s.fileTypeRepo.FindByID(fileTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrFileTypeNotFound
		}
		return nil, err
	}

	// turning off publishable must leave at least one publishable type
	if fileType.Publishable && !input.Publishable {
		others, err := s.fileTypeRepo.CountOtherPublishable(fileType.EventID, fileType.Type, fileTypeID)
		if err != nil {
			return nil, err
		}
		if others == 0 {
			return nil, common.ErrLastPublishableType
		}
	}

	updates := map[string]interface{}{
		"name":           input.Name,
		"extensions":     input.Extensions,
		"allow_multiple": input.AllowMultiple,
		"required":       input.Required,
		"publishable":    input.Publishable,
	}
	if err := s.fileTypeRepo.Update(fileTypeID, updates); err != nil {
		return nil, err
	}
	return s.fileTypeRepo.FindByID(fileTypeID)
}

// DeleteFileType removes a file type unless revisions reference it, a review
// condition requires it, or it is the last publishable type
func (s *managementService) DeleteFileType(fileTypeID uint) error {
	fileType, err := s.fileTypeRepo.FindByID(fileTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrFileTypeNotFound
		}
		return err
	}

	inUse, err := s.fileTypeRepo.HasRevisionFiles(fileTypeID)
	if err != nil {
		return err
	}
	if inUse {
		return common.ErrFileTypeInUse
	}

	inCondition, err := s.fileTypeRepo.UsedInReviewCondition(fileTypeID)
	if err != nil {
		return err
	}
	if inCondition {
		return common.ErrFileTypeInCondition
	}

	if fileType.Publishable {
		others, err := s.fileTypeRepo.CountOtherPublishable(fileType.EventID, fileType.Type, fileTypeID)
		if err != nil {
			return err
		}
		if others == 0 {
			return common.ErrLastPublishableType
		}
	}

	return s.fileTypeRepo.Delete(fileTypeID)
}

func (s *managementService) ListReviewConditions(eventID uint, typ domain.EditableType) ([]domain.ReviewCondition, error) {
	return s.conditionRepo.FindByEventAndType(eventID, typ)
}

// resolveFileTypes maps ids to file types of the matching event and editable
// type, rejecting unknown or foreign ids
func (s *managementService) resolveFileTypes(eventID uint, typ domain.EditableType, ids []uint) ([]domain.FileType, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: a review condition needs at least one file type", common.ErrInvalidInput)
	}
	available, err := s.fileTypeRepo.FindByEventAndType(eventID, typ)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*domain.FileType, len(available))
	for _, ft := range available {
		byID[ft.ID] = ft
	}
	resolved := make([]domain.FileType, 0, len(ids))
	for _, id := range ids {
		ft, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown file type %d", common.ErrInvalidInput, id)
		}
		resolved = append(resolved, *ft)
	}
	return resolved, nil
}

func (s *managementService) CreateReviewCondition(eventID uint, typ domain.EditableType, fileTypeIDs []uint) (*domain.ReviewCondition, error) {
	fileTypes, err := s.resolveFileTypes(eventID, typ, fileTypeIDs)
	if err != nil {
		return nil, err
	}
	condition := &domain.ReviewCondition{
		EventID:   eventID,
		Type:      typ,
		FileTypes: fileTypes,
	}
	if err := s.conditionRepo.Create(condition); err != nil {
		return nil, err
	}
	return condition, nil
}

func (s *managementService) UpdateReviewCondition(conditionID uint, fileTypeIDs []uint) (*domain.ReviewCondition, error) {
	condition, err := s.conditionRepo.FindByID(conditionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	fileTypes, err := s.resolveFileTypes(condition.EventID, condition.Type, fileTypeIDs)
	if err != nil {
		return nil, err
	}
	if err := s.conditionRepo.ReplaceFileTypes(condition, fileTypes); err != nil {
		return nil, err
	}
	return s.conditionRepo.FindByID(conditionID)
}

func (s *managementService) DeleteReviewCondition(conditionID uint) error {
	condition, err := s.conditionRepo.FindByID(conditionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound
		}
		return err
	}
	return s.conditionRepo.Delete(condition)
}

// ToggleSetting flips one workflow toggle and records it in the event log
func (s *managementService) ToggleSetting(eventID uint, typ domain.EditableType, name string, value bool, userID uint) error {
	if err := s.settings.SetTypeSetting(eventID, typ, name, value); err != nil {
		return err
	}
	verb := "Disabled"
	kind := domain.LogKindNegative
	if value {
		verb = "Enabled"
		kind = domain.LogKindPositive
	}
	_ = s.eventRepo.Log(&domain.EventLogEntry{
		EventID: eventID,
		UserID:  &userID,
		Realm:   domain.LogRealmManagement,
		Kind:    kind,
		Module:  "Editing",
		Summary: fmt.Sprintf("%s %s for %s", verb, name, typ.Title()),
	})
	return nil
}

// ListEditors returns the users holding the editor permission for the type
func (s *managementService) ListEditors(eventID uint, typ domain.EditableType) ([]*domain.User, error) {
	principals, err := s.principalRepo.FindByEventAndPermission(eventID, typ.EditorPermission())
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(principals))
	for _, p := range principals {
		ids = append(ids, p.UserID)
	}
	return s.userRepo.FindByIDs(ids)
}

// CountNotSubmitted counts contributions still missing an editable of the type
func (s *managementService) CountNotSubmitted(eventID uint, typ domain.EditableType) (int64, error) {
	return s.editableRepo.CountContributionsWithout(eventID, typ)
}
