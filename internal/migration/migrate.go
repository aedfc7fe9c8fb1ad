package migration

import (
	"github.com/openconf/editorial-backend/internal/domain"
	"gorm.io/gorm"
)

// Run executes AutoMigrate for all editorial workflow tables and seeds the
// default file types for events that have none.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Event{},
		&domain.EventLogEntry{},
		&domain.Session{},
		&domain.EventPrincipal{},
		&domain.SessionPrincipal{},
		&domain.Contribution{},
		&domain.ContributionPerson{},
		&domain.Editable{},
		&domain.Revision{},
		&domain.RevisionFile{},
		&domain.RevisionComment{},
		&domain.FileType{},
		&domain.ReviewCondition{},
		&domain.EditableTypeSettings{},
		&domain.EventSetting{},
		&domain.Attachment{},
	); err != nil {
		return err
	}

	var events []domain.Event
	if err := db.Find(&events).Error; err != nil {
		return err
	}
	for _, event := range events {
		for _, typ := range domain.AllEditableTypes() {
			if err := SeedDefaultFileTypes(db, event.ID, typ); err != nil {
				return err
			}
		}
	}
	return nil
}

// SeedDefaultFileTypes creates the standard publishable PDF file type for an
// event that has no file types for the editable type yet
func SeedDefaultFileTypes(db *gorm.DB, eventID uint, typ domain.EditableType) error {
	var count int64
	if err := db.Model(&domain.FileType{}).
		Where("event_id = ? AND type = ?", eventID, typ).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&domain.FileType{
		EventID:     eventID,
		Type:        typ,
		Name:        "PDF",
		Extensions:  "pdf",
		Required:    true,
		Publishable: true,
	}).Error
}
