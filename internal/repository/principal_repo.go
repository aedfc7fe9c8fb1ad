package repository

import (
	"github.com/openconf/editorial-backend/internal/domain"
	"gorm.io/gorm"
)

// PrincipalRepository ACL principal data access for events and sessions
type PrincipalRepository interface {
	FindByEventAndUser(eventID, userID uint) (*domain.EventPrincipal, error)
	FindByEvent(eventID uint) ([]*domain.EventPrincipal, error)
	FindByEventAndPermission(eventID uint, permission string) ([]*domain.EventPrincipal, error)
	Save(principal *domain.EventPrincipal) error
	Delete(id uint) error

	FindBySessionAndUser(sessionID, userID uint) (*domain.SessionPrincipal, error)
	FindBySession(sessionID uint) ([]*domain.SessionPrincipal, error)
	SaveSessionPrincipal(principal *domain.SessionPrincipal) error
	DeleteSessionPrincipal(id uint) error

	WithTx(tx *gorm.DB) PrincipalRepository
}

type principalRepository struct {
	db *gorm.DB
}

// NewPrincipalRepository creates a new PrincipalRepository
func NewPrincipalRepository(db *gorm.DB) PrincipalRepository {
	return &principalRepository{db: db}
}

func (r *principalRepository) WithTx(tx *gorm.DB) PrincipalRepository {
	return &principalRepository{db: tx}
}

func (r *principalRepository) FindByEventAndUser(eventID, userID uint) (*domain.EventPrincipal, error) {
	var principal domain.EventPrincipal
	err := r.db.Where("event_id = ? AND user_id = ?", eventID, userID).First(&principal).Error
	if err != nil {
		return nil, err
	}
	return &principal, nil
}

func (r *principalRepository) FindByEvent(eventID uint) ([]*domain.EventPrincipal, error) {
	var principals []*domain.EventPrincipal
	err := r.db.Where("event_id = ?", eventID).Order("id ASC").Find(&principals).Error
	return principals, err
}

// FindByEventAndPermission returns entries explicitly carrying the permission
func (r *principalRepository) FindByEventAndPermission(eventID uint, permission string) ([]*domain.EventPrincipal, error) {
	principals, err := r.FindByEvent(eventID)
	if err != nil {
		return nil, err
	}
	matched := make([]*domain.EventPrincipal, 0, len(principals))
	for _, p := range principals {
		if p.HasPermission(permission) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (r *principalRepository) Save(principal *domain.EventPrincipal) error {
	return r.db.Save(principal).Error
}

func (r *principalRepository) Delete(id uint) error {
	return r.db.Delete(&domain.EventPrincipal{}, id).Error
}

func (r *principalRepository) FindBySessionAndUser(sessionID, userID uint) (*domain.SessionPrincipal, error) {
	var principal domain.SessionPrincipal
	err := r.db.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&principal).Error
	if err != nil {
		return nil, err
	}
	return &principal, nil
}

func (r *principalRepository) FindBySession(sessionID uint) ([]*domain.SessionPrincipal, error) {
	var principals []*domain.SessionPrincipal
	err := r.db.Where("session_id = ?", sessionID).Order("id ASC").Find(&principals).Error
	return principals, err
}

func (r *principalRepository) SaveSessionPrincipal(principal *domain.SessionPrincipal) error {
	return r.db.Save(principal).Error
}

func (r *principalRepository) DeleteSessionPrincipal(id uint) error {
	return r.db.Delete(&domain.SessionPrincipal{}, id).Error
}
