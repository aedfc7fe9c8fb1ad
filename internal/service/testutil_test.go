package service

import (
	"testing"

	"github.com/openconf/editorial-backend/internal/domain"
	"github.com/openconf/editorial-backend/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
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
	)
	require.NoError(t, err)
	return db
}

type fixture struct {
	db           *gorm.DB
	event        *domain.Event
	contribution *domain.Contribution
	submitter    *domain.User
	editor       *domain.User
	fileType     *domain.FileType
}

// newFixture seeds an event with one contribution, a submitter associated
// with it and a required paper file type
func newFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	submitter := &domain.User{Username: "alice", Email: "alice@example.com", FullName: "Alice"}
	editor := &domain.User{Username: "bob", Email: "bob@example.com", FullName: "Bob"}
	require.NoError(t, db.Create(submitter).Error)
	require.NoError(t, db.Create(editor).Error)

	event := &domain.Event{Title: "Test Conference"}
	require.NoError(t, db.Create(event).Error)

	contribution := &domain.Contribution{
		EventID: event.ID,
		Title:   "A Contribution",
		Persons: []domain.ContributionPerson{{
			UserID:               submitter.ID,
			Role:                 domain.PersonRoleSubmitter,
			CanSubmitProceedings: true,
		}},
	}
	require.NoError(t, db.Create(contribution).Error)

	fileType := &domain.FileType{
		EventID:     event.ID,
		Type:        domain.EditableTypePaper,
		Name:        "PDF",
		Extensions:  "pdf",
		Required:    true,
		Publishable: true,
	}
	require.NoError(t, db.Create(fileType).Error)

	return &fixture{
		db:           db,
		event:        event,
		contribution: contribution,
		submitter:    submitter,
		editor:       editor,
		fileType:     fileType,
	}
}

func newEditableService(db *gorm.DB) EditableService {
	return NewEditableService(
		repository.NewEditableRepository(db),
		repository.NewRevisionRepository(db),
		repository.NewFileTypeRepository(db),
		repository.NewReviewConditionRepository(db),
		repository.NewContributionRepository(db),
		repository.NewEventRepository(db),
	)
}
