package repository

import (
	"github.com/openconf/editorial-backend/internal/domain"
	"gorm.io/gorm"
)

// RevisionRepository revision log data access. The log is append-only;
// the only permitted update is flagging a revision undone.
type RevisionRepository interface {
	Create(revision *domain.Revision) error
	FindByID(id uint) (*domain.Revision, error)
	MarkUndone(id uint) error
	CreateComment(comment *domain.RevisionComment) error
	FindCommentByID(id uint) (*domain.RevisionComment, error)
	UpdateComment(id uint, updates map[string]interface{}) error
	SoftDeleteComment(id uint) error
	WithTx(tx *gorm.DB) RevisionRepository
	DB() *gorm.DB
}

type revisionRepository struct {
	db *gorm.DB
}

// NewRevisionRepository creates a new RevisionRepository
func NewRevisionRepository(db *gorm.DB) RevisionRepository {
	return &revisionRepository{db: db}
}

func (r *revisionRepository) WithTx(tx *gorm.DB) RevisionRepository {
	return &revisionRepository{db: tx}
}

func (r *revisionRepository) DB() *gorm.DB {
	return r.db
}

func (r *revisionRepository) Create(revision *domain.Revision) error {
	return r.db.Create(revision).Error
}

func (r *revisionRepository) FindByID(id uint) (*domain.Revision, error) {
	var revision domain.Revision
	err := r.db.
		Preload("Files").
		Preload("User").
		Where("id = ?", id).
		First(&revision).Error
	if err != nil {
		return nil, err
	}
	return &revision, nil
}

func (r *revisionRepository) MarkUndone(id uint) error {
	return r.db.Model(&domain.Revision{}).Where("id = ?", id).
		Update("is_undone", true).Error
}

func (r *revisionRepository) CreateComment(comment *domain.RevisionComment) error {
	return r.db.Create(comment).Error
}

func (r *revisionRepository) FindCommentByID(id uint) (*domain.RevisionComment, error) {
	var comment domain.RevisionComment
	err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *revisionRepository) UpdateComment(id uint, updates map[string]interface{}) error {
	return r.db.Model(&domain.RevisionComment{}).Where("id = ?", id).
		Updates(updates).Error
}

func (r *revisionRepository) SoftDeleteComment(id uint) error {
	return r.db.Model(&domain.RevisionComment{}).Where("id = ?", id).
		Update("is_deleted", true).Error
}
