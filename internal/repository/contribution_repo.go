package repository

import (
	"github.com/openconf/editorial-backend/internal/domain"
	"gorm.io/gorm"
)

// ContributionRepository contribution data access
type ContributionRepository interface {
	FindByID(id uint) (*domain.Contribution, error)
	FindByEvent(eventID uint) ([]*domain.Contribution, error)
	WithTx(tx *gorm.DB) ContributionRepository
}

type contributionRepository struct {
	db *gorm.DB
}

// NewContributionRepository creates a new ContributionRepository
func NewContributionRepository(db *gorm.DB) ContributionRepository {
	return &contributionRepository{db: db}
}

func (r *contributionRepository) WithTx(tx *gorm.DB) ContributionRepository {
	return &contributionRepository{db: tx}
}

func (r *contributionRepository) FindByID(id uint) (*domain.Contribution, error) {
	var contribution domain.Contribution
	err := r.db.Preload("Persons").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&contribution).Error
	if err != nil {
		return nil, err
	}
	return &contribution, nil
}

func (r *contributionRepository) FindByEvent(eventID uint) ([]*domain.Contribution, error) {
	var contributions []*domain.Contribution
	err := r.db.Preload("Persons").
		Where("event_id = ? AND is_deleted = ?", eventID, false).
		Order("id ASC").
		Find(&contributions).Error
	return contributions, err
}
