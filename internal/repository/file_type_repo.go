package repository

import (
	"github.com/openconf/editorial-backend/internal/domain"
	"gorm.io/gorm"
)

// FileTypeRepository file type data access
type FileTypeRepository interface {
	Create(fileType *domain.FileType) error
	FindByID(id uint) (*domain.FileType, error)
	FindByEventAndType(eventID uint, typ domain.EditableType) ([]*domain.FileType, error)
	Update(id uint, updates map[string]interface{}) error
	Delete(id uint) error
	HasRevisionFiles(id uint) (bool, error)
	UsedInReviewCondition(id uint) (bool, error)
	CountOtherPublishable(eventID uint, typ domain.EditableType, excludeID uint) (int64, error)
	WithTx(tx *gorm.DB) FileTypeRepository
}

type fileTypeRepository struct {
	db *gorm.DB
}

// NewFileTypeRepository creates a new FileTypeRepository
func NewFileTypeRepository(db *gorm.DB) FileTypeRepository {
	return &fileTypeRepository{db: db}
}

func (r *fileTypeRepository) WithTx(tx *gorm.DB) FileTypeRepository {
	return &fileTypeRepository{db: tx}
}

func (r *fileTypeRepository) Create(fileType *domain.FileType) error {
	return r.db.Create(fileType).Error
}

func (r *fileTypeRepository) FindByID(id uint) (*domain.FileType, error) {
	var fileType domain.FileType
	if err := r.db.Where("id = ?", id).First(&fileType).Error; err != nil {
		return nil, err
	}
	return &fileType, nil
}

func (r *fileTypeRepository) FindByEventAndType(eventID uint, typ domain.EditableType) ([]*domain.FileType, error) {
	var fileTypes []*domain.FileType
	err := r.db.Where("event_id = ? AND type = ?", eventID, typ).
		Order("name ASC").
		Find(&fileTypes).Error
	return fileTypes, err
}

func (r *fileTypeRepository) Update(id uint, updates map[string]interface{}) error {
	return r.db.Model(&domain.FileType{}).Where("id = ?", id).Updates(updates).Error
}

func (r *fileTypeRepository) Delete(id uint) error {
	return r.db.Delete(&domain.FileType{}, id).Error
}

// HasRevisionFiles reports whether any revision file references the file type
func (r *fileTypeRepository) HasRevisionFiles(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&domain.RevisionFile{}).Where("file_type_id = ?", id).Count(&count).Error
	return count > 0, err
}

// UsedInReviewCondition reports whether a review condition requires the file type
func (r *fileTypeRepository) UsedInReviewCondition(id uint) (bool, error) {
	var count int64
	err := r.db.Table("review_condition_file_types").
		Where("file_type_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *fileTypeRepository) CountOtherPublishable(eventID uint, typ domain.EditableType, excludeID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.FileType{}).
		Where("event_id = ? AND type = ? AND publishable = ? AND id <> ?", eventID, typ, true, excludeID).
		Count(&count).Error
	return count, err
}
