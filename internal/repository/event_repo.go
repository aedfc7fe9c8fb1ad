package repository

import (
	"github.com/openconf/editorial-backend/internal/domain"
	"gorm.io/gorm"
)

// EventRepository event and event-log data access
type EventRepository interface {
	FindByID(id uint) (*domain.Event, error)
	Log(entry *domain.EventLogEntry) error
	FindLogEntries(eventID uint, limit int) ([]*domain.EventLogEntry, error)
	WithTx(tx *gorm.DB) EventRepository
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) WithTx(tx *gorm.DB) EventRepository {
	return &eventRepository{db: tx}
}

func (r *eventRepository) FindByID(id uint) (*domain.Event, error) {
	var event domain.Event
	err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Log(entry *domain.EventLogEntry) error {
	return r.db.Create(entry).Error
}

func (r *eventRepository) FindLogEntries(eventID uint, limit int) ([]*domain.EventLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []*domain.EventLogEntry
	err := r.db.Where("event_id = ?", eventID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
