package repository

import (
	"github.com/openconf/editorial-backend/internal/domain"
	"gorm.io/gorm"
)

// AttachmentRepository attachment data access
type AttachmentRepository interface {
	Create(attachment *domain.Attachment) error
	FindByID(id uint) (*domain.Attachment, error)
	FindByEvent(eventID uint) ([]*domain.Attachment, error)
	SoftDelete(id uint) error
	WithTx(tx *gorm.DB) AttachmentRepository
}

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) WithTx(tx *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: tx}
}

func (r *attachmentRepository) Create(attachment *domain.Attachment) error {
	return r.db.Create(attachment).Error
}

func (r *attachmentRepository) FindByID(id uint) (*domain.Attachment, error) {
	var attachment domain.Attachment
	err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&attachment).Error
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) SoftDelete(id uint) error {
	return r.db.Model(&domain.Attachment{}).Where("id = ?", id).Update("is_deleted", true).Error
}

func (r *attachmentRepository) FindByEvent(eventID uint) ([]*domain.Attachment, error) {
	var attachments []*domain.Attachment
	err := r.db.Where("event_id = ? AND is_deleted = ?", eventID, false).
		Order("id ASC").
		Find(&attachments).Error
	return attachments, err
}
