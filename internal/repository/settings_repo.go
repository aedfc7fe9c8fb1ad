package repository

import (
	"github.com/openconf/editorial-backend/internal/domain"
	"gorm.io/gorm"
)

// SettingsRepository settings row data access
type SettingsRepository interface {
	FindTypeSettings(eventID uint, typ domain.EditableType) (*domain.EditableTypeSettings, error)
	SaveTypeSettings(settings *domain.EditableTypeSettings) error

	FindEventSetting(eventID uint, module, name string) (*domain.EventSetting, error)
	FindEventSettings(eventID uint, module string) ([]*domain.EventSetting, error)
	SaveEventSetting(setting *domain.EventSetting) error
	DeleteEventSetting(eventID uint, module, name string) error

	WithTx(tx *gorm.DB) SettingsRepository
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) WithTx(tx *gorm.DB) SettingsRepository {
	return &settingsRepository{db: tx}
}

func (r *settingsRepository) FindTypeSettings(eventID uint, typ domain.EditableType) (*domain.EditableTypeSettings, error) {
	var settings domain.EditableTypeSettings
	err := r.db.Where("event_id = ? AND type = ?", eventID, typ).First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) SaveTypeSettings(settings *domain.EditableTypeSettings) error {
	return r.db.Save(settings).Error
}

func (r *settingsRepository) FindEventSetting(eventID uint, module, name string) (*domain.EventSetting, error) {
	var setting domain.EventSetting
	err := r.db.Where("event_id = ? AND module = ? AND name = ?", eventID, module, name).
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *settingsRepository) FindEventSettings(eventID uint, module string) ([]*domain.EventSetting, error) {
	var settings []*domain.EventSetting
	err := r.db.Where("event_id = ? AND module = ?", eventID, module).Find(&settings).Error
	return settings, err
}

func (r *settingsRepository) SaveEventSetting(setting *domain.EventSetting) error {
	existing, err := r.FindEventSetting(setting.EventID, setting.Module, setting.Name)
	if err == nil {
		setting.ID = existing.ID
	} else if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.db.Save(setting).Error
}

func (r *settingsRepository) DeleteEventSetting(eventID uint, module, name string) error {
	return r.db.Where("event_id = ? AND module = ? AND name = ?", eventID, module, name).
		Delete(&domain.EventSetting{}).Error
}
