package repository

import (
	"github.com/openconf/editorial-backend/internal/domain"
	"gorm.io/gorm"
)

// ReviewConditionRepository review condition data access
type ReviewConditionRepository interface {
	Create(condition *domain.ReviewCondition) error
	FindByID(id uint) (*domain.ReviewCondition, error)
	FindByEventAndType(eventID uint, typ domain.EditableType) ([]domain.ReviewCondition, error)
	ReplaceFileTypes(condition *domain.ReviewCondition, fileTypes []domain.FileType) error
	Delete(condition *domain.ReviewCondition) error
	WithTx(tx *gorm.DB) ReviewConditionRepository
}

type reviewConditionRepository struct {
	db *gorm.DB
}

// NewReviewConditionRepository creates a new ReviewConditionRepository
func NewReviewConditionRepository(db *gorm.DB) ReviewConditionRepository {
	return &reviewConditionRepository{db: db}
}

func (r *reviewConditionRepository) WithTx(tx *gorm.DB) ReviewConditionRepository {
	return &reviewConditionRepository{db: tx}
}

func (r *reviewConditionRepository) Create(condition *domain.ReviewCondition) error {
	return r.db.Create(condition).Error
}

func (r *reviewConditionRepository) FindByID(id uint) (*domain.ReviewCondition, error) {
	var condition domain.ReviewCondition
	err := r.db.Preload("FileTypes").Where("id = ?", id).First(&condition).Error
	if err != nil {
		return nil, err
	}
	return &condition, nil
}

func (r *reviewConditionRepository) FindByEventAndType(eventID uint, typ domain.EditableType) ([]domain.ReviewCondition, error) {
	var conditions []domain.ReviewCondition
	err := r.db.Preload("FileTypes").
		Where("event_id = ? AND type = ?", eventID, typ).
		Order("id ASC").
		Find(&conditions).Error
	return conditions, err
}

func (r *reviewConditionRepository) ReplaceFileTypes(condition *domain.ReviewCondition, fileTypes []domain.FileType) error {
	return r.db.Model(condition).Association("FileTypes").Replace(fileTypes)
}

func (r *reviewConditionRepository) Delete(condition *domain.ReviewCondition) error {
	if err := r.db.Model(condition).Association("FileTypes").Clear(); err != nil {
		return err
	}
	return r.db.Delete(condition).Error
}
