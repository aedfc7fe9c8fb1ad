package service

import (
	"testing"

	"github.com/openconf/editorial-backend/internal/common"
	"github.com/openconf/editorial-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitEditable(t *testing.T, svc EditableService, f *fixture) *domain.Editable {
	t.Helper()
	editable, err := svc.CreateEditable(f.contribution.ID, domain.EditableTypePaper, f.submitter.ID, []FileInput{
		{FileTypeID: f.fileType.ID, Filename: "paper.pdf", ContentType: "application/pdf", Size: 1024},
	})
	require.NoError(t, err)
	return editable
}

func TestCreateEditable(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)

	editable := submitEditable(t, svc, f)
	assert.NotZero(t, editable.ID)

	loaded, err := svc.GetTimeline(editable.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Revisions, 1)
	assert.Equal(t, domain.RevisionTypeReadyForReview, loaded.Revisions[0].Type)
	assert.NotEmpty(t, loaded.Revisions[0].Files[0].StorageID)

	state, ok := loaded.State()
	require.True(t, ok)
	assert.Equal(t, domain.EditableStateReadyForReview, state)
}

func TestCreateEditableDuplicate(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)

	submitEditable(t, svc, f)
	_, err := svc.CreateEditable(f.contribution.ID, domain.EditableTypePaper, f.submitter.ID, []FileInput{
		{FileTypeID: f.fileType.ID, Filename: "paper.pdf", ContentType: "application/pdf", Size: 1024},
	})
	assert.ErrorIs(t, err, common.ErrEditableExists)
}

func TestCreateEditableFileValidation(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)

	t.Run("no files", func(t *testing.T) {
		_, err := svc.CreateEditable(f.contribution.ID, domain.EditableTypePaper, f.submitter.ID, nil)
		assert.ErrorIs(t, err, common.ErrNoFiles)
	})

	t.Run("unknown file type", func(t *testing.T) {
		_, err := svc.CreateEditable(f.contribution.ID, domain.EditableTypePaper, f.submitter.ID, []FileInput{
			{FileTypeID: 999, Filename: "x.pdf", ContentType: "application/pdf", Size: 1},
		})
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})

	t.Run("missing required type", func(t *testing.T) {
		optional := &domain.FileType{EventID: f.event.ID, Type: domain.EditableTypePaper, Name: "Source", AllowMultiple: true}
		require.NoError(t, db.Create(optional).Error)

		_, err := svc.CreateEditable(f.contribution.ID, domain.EditableTypePaper, f.submitter.ID, []FileInput{
			{FileTypeID: optional.ID, Filename: "src.zip", ContentType: "application/zip", Size: 1},
		})
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})

	t.Run("multiple files for single-file type", func(t *testing.T) {
		_, err := svc.CreateEditable(f.contribution.ID, domain.EditableTypePaper, f.submitter.ID, []FileInput{
			{FileTypeID: f.fileType.ID, Filename: "a.pdf", ContentType: "application/pdf", Size: 1},
			{FileTypeID: f.fileType.ID, Filename: "b.pdf", ContentType: "application/pdf", Size: 1},
		})
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})
}

func TestCreateSubmitterRevision(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)

	latest := editable.Revisions[0].ID
	_, err := svc.CreateSubmitterRevision(editable.ID, latest, f.submitter.ID, []FileInput{
		{FileTypeID: f.fileType.ID, Filename: "paper-v2.pdf", ContentType: "application/pdf", Size: 2048},
	})
	require.NoError(t, err)

	loaded, err := svc.GetTimeline(editable.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Revisions, 2)
	assert.Equal(t, domain.RevisionTypeReplacement, loaded.Revisions[1].Type)

	state, _ := loaded.State()
	assert.Equal(t, domain.EditableStateReadyForReview, state)
}

func TestCreateSubmitterRevisionStale(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)

	_, err := svc.CreateSubmitterRevision(editable.ID, editable.Revisions[0].ID+100, f.submitter.ID, []FileInput{
		{FileTypeID: f.fileType.ID, Filename: "paper-v2.pdf", ContentType: "application/pdf", Size: 2048},
	})
	assert.ErrorIs(t, err, common.ErrNotLatestRevision)
}

func TestReviewEditableAccept(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)

	rev, err := svc.ReviewEditable(editable.ID, editable.Revisions[0].ID, f.editor.ID, ReviewActionAccept, "looks good", nil)
	require.NoError(t, err)

	loaded, err := svc.GetTimeline(editable.ID)
	require.NoError(t, err)
	state, _ := loaded.State()
	assert.Equal(t, domain.EditableStateAccepted, state)
	require.NotNil(t, loaded.PublishedRevisionID)
	assert.Equal(t, rev.ID, *loaded.PublishedRevisionID)
}

func TestReviewEditableReject(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)

	_, err := svc.ReviewEditable(editable.ID, editable.Revisions[0].ID, f.editor.ID, ReviewActionReject, "not acceptable", nil)
	require.NoError(t, err)

	loaded, _ := svc.GetTimeline(editable.ID)
	state, _ := loaded.State()
	assert.Equal(t, domain.EditableStateRejected, state)
	assert.Nil(t, loaded.PublishedRevisionID)
}

func TestReviewEditableRequestChanges(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)

	_, err := svc.ReviewEditable(editable.ID, editable.Revisions[0].ID, f.editor.ID, ReviewActionRequestUpdate, "please fix figure 2", nil)
	require.NoError(t, err)

	loaded, _ := svc.GetTimeline(editable.ID)
	state, _ := loaded.State()
	assert.Equal(t, domain.EditableStateNeedsSubmitterChanges, state)

	// the submitter can now upload a replacement
	_, err = svc.CreateSubmitterRevision(editable.ID, loaded.LatestRevision().ID, f.submitter.ID, []FileInput{
		{FileTypeID: f.fileType.ID, Filename: "paper-v2.pdf", ContentType: "application/pdf", Size: 2048},
	})
	require.NoError(t, err)
}

func TestReviewEditableFileValidation(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)
	revisionID := editable.Revisions[0].ID

	t.Run("accept with unknown file type", func(t *testing.T) {
		_, err := svc.ReviewEditable(editable.ID, revisionID, f.editor.ID, ReviewActionAccept, "", []FileInput{
			{FileTypeID: 9999, Filename: "paper.pdf", ContentType: "application/pdf", Size: 100},
		})
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})

	t.Run("request_update with unknown file type", func(t *testing.T) {
		_, err := svc.ReviewEditable(editable.ID, revisionID, f.editor.ID, ReviewActionRequestUpdate, "", []FileInput{
			{FileTypeID: 9999, Filename: "notes.pdf", ContentType: "application/pdf", Size: 100},
		})
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})

	t.Run("reject cannot carry files", func(t *testing.T) {
		_, err := svc.ReviewEditable(editable.ID, revisionID, f.editor.ID, ReviewActionReject, "no", []FileInput{
			{FileTypeID: f.fileType.ID, Filename: "paper.pdf", ContentType: "application/pdf", Size: 100},
		})
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})

	t.Run("accept with a valid file set", func(t *testing.T) {
		rev, err := svc.ReviewEditable(editable.ID, revisionID, f.editor.ID, ReviewActionAccept, "minor fix", []FileInput{
			{FileTypeID: f.fileType.ID, Filename: "paper-final.pdf", ContentType: "application/pdf", Size: 1200},
		})
		require.NoError(t, err)
		require.Len(t, rev.Files, 1)
		assert.Equal(t, f.fileType.ID, rev.Files[0].FileTypeID)

		// the accepted file set is what condition matching now sees
		loaded, err := svc.GetTimeline(editable.ID)
		require.NoError(t, err)
		latest := loaded.LatestRevisionWithFiles()
		require.NotNil(t, latest)
		assert.Equal(t, rev.ID, latest.ID)
	})
}

func TestReviewEditableUnknownAction(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)

	_, err := svc.ReviewEditable(editable.ID, editable.Revisions[0].ID, f.editor.ID, "approve", "", nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestConfirmChanges(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)

	editorRev, err := svc.ReviewEditable(editable.ID, editable.Revisions[0].ID, f.editor.ID, ReviewActionUpdate, "fixed typos", []FileInput{
		{FileTypeID: f.fileType.ID, Filename: "paper-fixed.pdf", ContentType: "application/pdf", Size: 1500},
	})
	require.NoError(t, err)

	loaded, _ := svc.GetTimeline(editable.ID)
	state, _ := loaded.State()
	require.Equal(t, domain.EditableStateNeedsSubmitterConfirmation, state)

	t.Run("accept publishes the editor revision", func(t *testing.T) {
		_, err := svc.ConfirmChanges(editable.ID, editorRev.ID, f.submitter.ID, true, "thanks")
		require.NoError(t, err)

		loaded, _ := svc.GetTimeline(editable.ID)
		state, _ := loaded.State()
		assert.Equal(t, domain.EditableStateAcceptedSubmitter, state)
		require.NotNil(t, loaded.PublishedRevisionID)
		assert.Equal(t, editorRev.ID, *loaded.PublishedRevisionID)
	})
}

func TestConfirmChangesReject(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)

	editorRev, err := svc.ReviewEditable(editable.ID, editable.Revisions[0].ID, f.editor.ID, ReviewActionUpdate, "", []FileInput{
		{FileTypeID: f.fileType.ID, Filename: "paper-fixed.pdf", ContentType: "application/pdf", Size: 1500},
	})
	require.NoError(t, err)

	_, err = svc.ConfirmChanges(editable.ID, editorRev.ID, f.submitter.ID, false, "that broke the layout")
	require.NoError(t, err)

	loaded, _ := svc.GetTimeline(editable.ID)
	state, _ := loaded.State()
	assert.Equal(t, domain.EditableStateNeedsSubmitterChanges, state)
	assert.Nil(t, loaded.PublishedRevisionID)
}

func TestConfirmChangesWithoutPendingConfirmation(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)

	_, err := svc.ConfirmChanges(editable.ID, editable.Revisions[0].ID, f.submitter.ID, true, "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestUndoReview(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)

	rev, err := svc.ReviewEditable(editable.ID, editable.Revisions[0].ID, f.editor.ID, ReviewActionAccept, "", nil)
	require.NoError(t, err)

	require.NoError(t, svc.UndoReview(editable.ID, rev.ID))

	loaded, _ := svc.GetTimeline(editable.ID)
	state, _ := loaded.State()
	assert.Equal(t, domain.EditableStateReadyForReview, state)
	assert.Nil(t, loaded.PublishedRevisionID)
	// the undone revision stays in the log
	assert.Len(t, loaded.Revisions, 2)
	assert.Len(t, loaded.ValidRevisions(), 1)
}

func TestUndoReviewNonReview(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)

	err := svc.UndoReview(editable.ID, editable.Revisions[0].ID)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestResetEditable(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)

	_, err := svc.ReviewEditable(editable.ID, editable.Revisions[0].ID, f.editor.ID, ReviewActionAccept, "", nil)
	require.NoError(t, err)

	require.NoError(t, svc.ResetEditable(editable.ID, f.editor.ID))

	loaded, _ := svc.GetTimeline(editable.ID)
	state, _ := loaded.State()
	assert.Equal(t, domain.EditableStateReadyForReview, state)
	assert.Nil(t, loaded.PublishedRevisionID)
	assert.Equal(t, domain.RevisionTypeReset, loaded.LatestRevision().Type)
}

func TestAssignEditor(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)

	require.NoError(t, svc.AssignEditor(editable.ID, f.editor.ID))

	loaded, _ := svc.GetTimeline(editable.ID)
	require.NotNil(t, loaded.EditorID)
	assert.Equal(t, f.editor.ID, *loaded.EditorID)

	assert.ErrorIs(t, svc.AssignEditor(editable.ID, f.submitter.ID), common.ErrEditorAssigned)

	require.NoError(t, svc.UnassignEditor(editable.ID))
	loaded, _ = svc.GetTimeline(editable.ID)
	assert.Nil(t, loaded.EditorID)
}

func TestDeleteEditable(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)

	require.NoError(t, svc.DeleteEditable(editable.ID, f.editor.ID))

	_, err := svc.GetTimeline(editable.ID)
	assert.ErrorIs(t, err, common.ErrEditableNotFound)

	// a deleted editable no longer blocks resubmission
	_, err = svc.CreateEditable(f.contribution.ID, domain.EditableTypePaper, f.submitter.ID, []FileInput{
		{FileTypeID: f.fileType.ID, Filename: "paper.pdf", ContentType: "application/pdf", Size: 1024},
	})
	assert.NoError(t, err)
}

func TestComments(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)
	revID := editable.Revisions[0].ID

	comment, err := svc.CreateComment(editable.ID, revID, f.editor.ID, "please check the references", false)
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)

	newText := "please double-check the references"
	internal := true
	require.NoError(t, svc.UpdateComment(comment.ID, &newText, &internal))

	loaded, _ := svc.GetTimeline(editable.ID)
	require.Len(t, loaded.Revisions[0].Comments, 1)
	assert.Equal(t, newText, loaded.Revisions[0].Comments[0].Text)
	assert.True(t, loaded.Revisions[0].Comments[0].Internal)

	require.NoError(t, svc.DeleteComment(comment.ID))
	loaded, _ = svc.GetTimeline(editable.ID)
	assert.Empty(t, loaded.Revisions[0].Comments)

	_, err = svc.CreateComment(editable.ID, revID+100, f.editor.ID, "x", false)
	assert.ErrorIs(t, err, common.ErrRevisionNotFound)
}

func TestCheckReviewConditions(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := newEditableService(db)
	editable := submitEditable(t, svc, f)

	loaded, err := svc.GetTimeline(editable.ID)
	require.NoError(t, err)

	// no conditions configured
	ok, err := svc.CheckReviewConditions(loaded, f.event.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	source := &domain.FileType{EventID: f.event.ID, Type: domain.EditableTypePaper, Name: "Source"}
	require.NoError(t, db.Create(source).Error)
	condition := &domain.ReviewCondition{
		EventID:   f.event.ID,
		Type:      domain.EditableTypePaper,
		FileTypes: []domain.FileType{*f.fileType, *source},
	}
	require.NoError(t, db.Create(condition).Error)

	ok, err = svc.CheckReviewConditions(loaded, f.event.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
