package repository

import (
	"github.com/openconf/editorial-backend/internal/domain"
	"gorm.io/gorm"
)

// EditableRepository editable data access
type EditableRepository interface {
	Create(editable *domain.Editable) error
	FindByID(id uint) (*domain.Editable, error)
	FindByContributionAndType(contributionID uint, typ domain.EditableType) (*domain.Editable, error)
	FindByEvent(eventID uint, typ domain.EditableType) ([]*domain.Editable, error)
	SetEditor(id uint, editorID *uint) error
	SetPublishedRevision(id uint, revisionID *uint) error
	SoftDelete(id uint) error
	CountContributionsWithout(eventID uint, typ domain.EditableType) (int64, error)
	WithTx(tx *gorm.DB) EditableRepository
	DB() *gorm.DB
}

type editableRepository struct {
	db *gorm.DB
}

// NewEditableRepository creates a new EditableRepository
func NewEditableRepository(db *gorm.DB) EditableRepository {
	return &editableRepository{db: db}
}

func (r *editableRepository) WithTx(tx *gorm.DB) EditableRepository {
	return &editableRepository{db: tx}
}

func (r *editableRepository) DB() *gorm.DB {
	return r.db
}

func (r *editableRepository) Create(editable *domain.Editable) error {
	return r.db.Create(editable).Error
}

// FindByID loads an editable with its ordered revision log, files and editor
func (r *editableRepository) FindByID(id uint) (*domain.Editable, error) {
	var editable domain.Editable
	err := r.db.
		Preload("Revisions", func(db *gorm.DB) *gorm.DB {
			return db.Order("revisions.created_at ASC, revisions.id ASC")
		}).
		Preload("Revisions.Files").
		Preload("Revisions.Comments", "is_deleted = ?", false).
		Preload("Revisions.Comments.User").
		Preload("Revisions.User").
		Preload("Editor").
		Preload("Contribution").
		Preload("Contribution.Persons").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&editable).Error
	if err != nil {
		return nil, err
	}
	return &editable, nil
}

func (r *editableRepository) FindByContributionAndType(contributionID uint, typ domain.EditableType) (*domain.Editable, error) {
	var editable domain.Editable
	err := r.db.
		Preload("Revisions", func(db *gorm.DB) *gorm.DB {
			return db.Order("revisions.created_at ASC, revisions.id ASC")
		}).
		Preload("Revisions.Files").
		Preload("Editor").
		Preload("Contribution").
		Preload("Contribution.Persons").
		Where("contribution_id = ? AND type = ? AND is_deleted = ?", contributionID, typ, false).
		First(&editable).Error
	if err != nil {
		return nil, err
	}
	return &editable, nil
}

func (r *editableRepository) FindByEvent(eventID uint, typ domain.EditableType) ([]*domain.Editable, error) {
	var editables []*domain.Editable
	err := r.db.
		Joins("JOIN contributions ON contributions.id = editables.contribution_id").
		Where("contributions.event_id = ? AND editables.type = ? AND editables.is_deleted = ?", eventID, typ, false).
		Preload("Revisions", func(db *gorm.DB) *gorm.DB {
			return db.Order("revisions.created_at ASC, revisions.id ASC")
		}).
		Preload("Revisions.Files").
		Preload("Editor").
		Preload("Contribution").
		Find(&editables).Error
	return editables, err
}

func (r *editableRepository) SetEditor(id uint, editorID *uint) error {
	return r.db.Model(&domain.Editable{}).Where("id = ?", id).
		Update("editor_id", editorID).Error
}

func (r *editableRepository) SetPublishedRevision(id uint, revisionID *uint) error {
	return r.db.Model(&domain.Editable{}).Where("id = ?", id).
		Update("published_revision_id", revisionID).Error
}

func (r *editableRepository) SoftDelete(id uint) error {
	return r.db.Model(&domain.Editable{}).Where("id = ?", id).
		Update("is_deleted", true).Error
}

// CountContributionsWithout counts the event's contributions that have no
// live editable of the given type
func (r *editableRepository) CountContributionsWithout(eventID uint, typ domain.EditableType) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Contribution{}).
		Where("event_id = ? AND is_deleted = ?", eventID, false).
		Where("id NOT IN (?)", r.db.Model(&domain.Editable{}).
			Select("contribution_id").
			Where("type = ? AND is_deleted = ?", typ, false)).
		Count(&count).Error
	return count, err
}
