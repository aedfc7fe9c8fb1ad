package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openconf/editorial-backend/internal/common"
	"github.com/openconf/editorial-backend/internal/domain"
	"github.com/openconf/editorial-backend/internal/repository"
	"gorm.io/gorm"
)

const layoutModule = "layout"

// layoutDefaults cover every supported layout setting; unknown names are
// rejected on write
var layoutDefaults = map[string]interface{}{
	"is_searchable":         true,
	"show_nav_bar":          true,
	"show_social_badges":    true,
	"show_banner":           true,
	"header_text_color":     "",
	"header_background_color": "",
	"announcement":          "",
	"show_announcement":     false,
	"use_custom_css":        false,
	"theme":                 "",
	"timetable_theme":       "",
}

// LayoutService event display settings stored as generic setting rows
type LayoutService interface {
	GetSettings(eventID uint) (map[string]interface{}, error)
	GetSetting(eventID uint, name string) (interface{}, error)
	SetSetting(eventID uint, name string, value interface{}) error
	ResetSetting(eventID uint, name string) error
}

type layoutService struct {
	settingsRepo repository.SettingsRepository
}

// NewLayoutService creates a new LayoutService
func NewLayoutService(settingsRepo repository.SettingsRepository) LayoutService {
	return &layoutService{settingsRepo: settingsRepo}
}

// GetSettings returns the defaults overlaid with the stored values
func (s *layoutService) GetSettings(eventID uint) (map[string]interface{}, error) {
	rows, err := s.settingsRepo.FindEventSettings(eventID, layoutModule)
	if err != nil {
		return nil, err
	}
	settings := make(map[string]interface{}, len(layoutDefaults))
	for name, value := range layoutDefaults {
		settings[name] = value
	}
	for _, row := range rows {
		var value interface{}
		if err := json.Unmarshal([]byte(row.Value), &value); err != nil {
			continue
		}
		if _, known := layoutDefaults[row.Name]; known {
			settings[row.Name] = value
		}
	}
	return settings, nil
}

func (s *layoutService) GetSetting(eventID uint, name string) (interface{}, error) {
	fallback, known := layoutDefaults[name]
	if !known {
		return nil, fmt.Errorf("%w: unknown layout setting %q", common.ErrInvalidInput, name)
	}
	row, err := s.settingsRepo.FindEventSetting(eventID, layoutModule, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fallback, nil
		}
		return nil, err
	}
	var value interface{}
	if err := json.Unmarshal([]byte(row.Value), &value); err != nil {
		return fallback, nil
	}
	return value, nil
}

func (s *layoutService) SetSetting(eventID uint, name string, value interface{}) error {
	if _, known := layoutDefaults[name]; !known {
		return fmt.Errorf("%w: unknown layout setting %q", common.ErrInvalidInput, name)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.settingsRepo.SaveEventSetting(&domain.EventSetting{
		EventID: eventID,
		Module:  layoutModule,
		Name:    name,
		Value:   string(raw),
	})
}

// ResetSetting removes the stored row so the default applies again
func (s *layoutService) ResetSetting(eventID uint, name string) error {
	if _, known := layoutDefaults[name]; !known {
		return fmt.Errorf("%w: unknown layout setting %q", common.ErrInvalidInput, name)
	}
	return s.settingsRepo.DeleteEventSetting(eventID, layoutModule, name)
}
