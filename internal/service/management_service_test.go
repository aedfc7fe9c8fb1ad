package service

import (
	"testing"

	"github.com/openconf/editorial-backend/internal/common"
	"github.com/openconf/editorial-backend/internal/domain"
	"github.com/openconf/editorial-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newManagementService(db *gorm.DB) ManagementService {
	settingsRepo := repository.NewSettingsRepository(db)
	return NewManagementService(
		repository.NewFileTypeRepository(db),
		repository.NewReviewConditionRepository(db),
		repository.NewEditableRepository(db),
		repository.NewPrincipalRepository(db),
		repository.NewUserRepository(db),
		repository.NewEventRepository(db),
		NewSettingsService(settingsRepo, nil),
	)
}

func TestFileTypeCRUD(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newManagementService(db)

	created, err := svc.CreateFileType(f.event.ID, domain.EditableTypePaper, FileTypeInput{
		Name:          "Source",
		Extensions:    "zip,tar.gz",
		AllowMultiple: true,
	}, f.editor.ID)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	updated, err := svc.UpdateFileType(created.ID, FileTypeInput{
		Name:          "Source Archive",
		Extensions:    "zip",
		AllowMultiple: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Source Archive", updated.Name)

	fileTypes, err := svc.ListFileTypes(f.event.ID, domain.EditableTypePaper)
	require.NoError(t, err)
	assert.Len(t, fileTypes, 2)

	_, err = svc.UpdateFileType(9999, FileTypeInput{Name: "x"})
	assert.ErrorIs(t, err, common.ErrFileTypeNotFound)
}

func TestDeleteFileTypeGuards(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newManagementService(db)

	t.Run("referenced by a revision", func(t *testing.T) {
		editable := submitEditable(t, newEditableService(db), f)
		err := svc.DeleteFileType(f.fileType.ID)
		assert.ErrorIs(t, err, common.ErrFileTypeInUse)
		require.NoError(t, newEditableService(db).DeleteEditable(editable.ID, f.editor.ID))
		require.NoError(t, db.Where("file_type_id = ?", f.fileType.ID).Delete(&domain.RevisionFile{}).Error)
	})

	t.Run("required by a review condition", func(t *testing.T) {
		condition, err := svc.CreateReviewCondition(f.event.ID, domain.EditableTypePaper, []uint{f.fileType.ID})
		require.NoError(t, err)
		assert.ErrorIs(t, svc.DeleteFileType(f.fileType.ID), common.ErrFileTypeInCondition)
		require.NoError(t, svc.DeleteReviewCondition(condition.ID))
	})

	t.Run("last publishable type", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteFileType(f.fileType.ID), common.ErrLastPublishableType)
	})

	t.Run("deletable once another publishable type exists", func(t *testing.T) {
		other, err := svc.CreateFileType(f.event.ID, domain.EditableTypePaper, FileTypeInput{
			Name:        "Camera-ready",
			Publishable: true,
		}, f.editor.ID)
		require.NoError(t, err)
		assert.NoError(t, svc.DeleteFileType(f.fileType.ID))
		_ = other
	})
}

func TestUpdateFileTypeKeepsPublishable(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newManagementService(db)

	// the only publishable type cannot lose the flag
	_, err := svc.UpdateFileType(f.fileType.ID, FileTypeInput{
		Name:        f.fileType.Name,
		Extensions:  f.fileType.Extensions,
		Required:    f.fileType.Required,
		Publishable: false,
	})
	assert.ErrorIs(t, err, common.ErrLastPublishableType)
}

func TestReviewConditionCRUD(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newManagementService(db)

	source, err := svc.CreateFileType(f.event.ID, domain.EditableTypePaper, FileTypeInput{Name: "Source"}, f.editor.ID)
	require.NoError(t, err)

	condition, err := svc.CreateReviewCondition(f.event.ID, domain.EditableTypePaper, []uint{f.fileType.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{f.fileType.ID}, condition.FileTypeIDs())

	condition, err = svc.UpdateReviewCondition(condition.ID, []uint{f.fileType.ID, source.ID})
	require.NoError(t, err)
	assert.Len(t, condition.FileTypes, 2)

	conditions, err := svc.ListReviewConditions(f.event.ID, domain.EditableTypePaper)
	require.NoError(t, err)
	assert.Len(t, conditions, 1)

	_, err = svc.CreateReviewCondition(f.event.ID, domain.EditableTypePaper, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = svc.CreateReviewCondition(f.event.ID, domain.EditableTypePaper, []uint{9999})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	require.NoError(t, svc.DeleteReviewCondition(condition.ID))
	conditions, _ = svc.ListReviewConditions(f.event.ID, domain.EditableTypePaper)
	assert.Empty(t, conditions)
}

func TestToggleSetting(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newManagementService(db)
	settings := NewSettingsService(repository.NewSettingsRepository(db), nil)

	require.NoError(t, svc.ToggleSetting(f.event.ID, domain.EditableTypePaper, SettingSubmissionEnabled, true, f.editor.ID))

	loaded, err := settings.GetTypeSettings(f.event.ID, domain.EditableTypePaper)
	require.NoError(t, err)
	assert.True(t, loaded.SubmissionEnabled)
	assert.False(t, loaded.EditingEnabled)

	// toggles land in the event log
	var count int64
	require.NoError(t, db.Model(&domain.EventLogEntry{}).Where("event_id = ?", f.event.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	assert.Error(t, svc.ToggleSetting(f.event.ID, domain.EditableTypePaper, "bogus", true, f.editor.ID))
}

func TestListEditors(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newManagementService(db)

	principal := &domain.EventPrincipal{EventID: f.event.ID, UserID: f.editor.ID}
	principal.SetPermissions([]string{domain.EditableTypePaper.EditorPermission()})
	require.NoError(t, db.Create(principal).Error)

	editors, err := svc.ListEditors(f.event.ID, domain.EditableTypePaper)
	require.NoError(t, err)
	require.Len(t, editors, 1)
	assert.Equal(t, f.editor.ID, editors[0].ID)

	editors, err = svc.ListEditors(f.event.ID, domain.EditableTypeSlides)
	require.NoError(t, err)
	assert.Empty(t, editors)
}

func TestCountNotSubmitted(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newManagementService(db)

	count, err := svc.CountNotSubmitted(f.event.ID, domain.EditableTypePaper)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	submitEditable(t, newEditableService(db), f)

	count, err = svc.CountNotSubmitted(f.event.ID, domain.EditableTypePaper)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
