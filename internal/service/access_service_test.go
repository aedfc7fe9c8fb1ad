package service

import (
	"testing"

	"github.com/openconf/editorial-backend/internal/domain"
	"github.com/openconf/editorial-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanManage(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := NewAccessService(repository.NewPrincipalRepository(db), nil)

	manager := &domain.User{Username: "carol", Email: "carol@example.com", FullName: "Carol"}
	require.NoError(t, db.Create(manager).Error)
	require.NoError(t, db.Create(&domain.EventPrincipal{
		EventID:    f.event.ID,
		UserID:     manager.ID,
		FullAccess: true,
	}).Error)

	paperEditor := &domain.User{Username: "dave", Email: "dave@example.com", FullName: "Dave"}
	require.NoError(t, db.Create(paperEditor).Error)
	principal := &domain.EventPrincipal{EventID: f.event.ID, UserID: paperEditor.ID}
	principal.SetPermissions([]string{"paper_editing"})
	require.NoError(t, db.Create(principal).Error)

	admin := &domain.User{Username: "root", Email: "root@example.com", IsAdmin: true}
	require.NoError(t, db.Create(admin).Error)

	assert.True(t, svc.CanManage(f.event.ID, manager, ""))
	assert.True(t, svc.CanManage(f.event.ID, manager, "paper_editing"))
	assert.False(t, svc.CanManage(f.event.ID, paperEditor, ""))
	assert.True(t, svc.CanManage(f.event.ID, paperEditor, "paper_editing"))
	assert.False(t, svc.CanManage(f.event.ID, paperEditor, "slides_editing"))
	assert.True(t, svc.CanManage(f.event.ID, admin, ""))
	assert.False(t, svc.CanManage(f.event.ID, f.submitter, "paper_editing"))
	assert.False(t, svc.CanManage(f.event.ID, nil, ""))
}

func TestForContribution(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	svc := NewAccessService(repository.NewPrincipalRepository(db), nil)

	contribution, err := repository.NewContributionRepository(db).FindByID(f.contribution.ID)
	require.NoError(t, err)

	acc := svc.ForContribution(f.event.ID, contribution)
	assert.True(t, acc.IsUserAssociated(f.submitter))
	assert.True(t, acc.CanSubmitProceedings(f.submitter))
	assert.False(t, acc.IsUserAssociated(f.editor))
	assert.False(t, acc.CanSubmitProceedings(nil))
	assert.False(t, acc.CanManageEvent(f.submitter))
}

func TestGrantRevokePermission(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	access := NewAccessService(repository.NewPrincipalRepository(db), nil)
	svc := NewPrincipalService(repository.NewPrincipalRepository(db), access)

	require.NoError(t, svc.GrantPermission(f.event.ID, f.editor.ID, "paper_editing"))
	assert.True(t, access.CanManage(f.event.ID, f.editor, "paper_editing"))

	// granting twice is a no-op
	require.NoError(t, svc.GrantPermission(f.event.ID, f.editor.ID, "paper_editing"))
	principals, err := svc.ListEventPrincipals(f.event.ID)
	require.NoError(t, err)
	require.Len(t, principals, 1)
	assert.Equal(t, []string{"paper_editing"}, principals[0].PermissionList())

	require.NoError(t, svc.RevokePermission(f.event.ID, f.editor.ID, "paper_editing"))
	assert.False(t, access.CanManage(f.event.ID, f.editor, "paper_editing"))

	// the emptied row is removed
	principals, err = svc.ListEventPrincipals(f.event.ID)
	require.NoError(t, err)
	assert.Empty(t, principals)
}

func TestSessionPrincipals(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	access := NewAccessService(repository.NewPrincipalRepository(db), nil)
	svc := NewPrincipalService(repository.NewPrincipalRepository(db), access)

	session := &domain.Session{EventID: f.event.ID, Title: "Morning block"}
	require.NoError(t, db.Create(session).Error)

	created, err := svc.SetSessionPrincipal(session.ID, f.editor.ID, false, []string{"coordinate"})
	require.NoError(t, err)
	assert.Equal(t, []string{"coordinate"}, created.PermissionList())

	// saving again for the same user updates the existing row
	updated, err := svc.SetSessionPrincipal(session.ID, f.editor.ID, true, nil)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, updated.FullAccess)

	principals, err := svc.ListSessionPrincipals(session.ID)
	require.NoError(t, err)
	require.Len(t, principals, 1)

	require.NoError(t, svc.DeleteSessionPrincipal(updated.ID))
	principals, err = svc.ListSessionPrincipals(session.ID)
	require.NoError(t, err)
	assert.Empty(t, principals)
}

func TestSetEditors(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	access := NewAccessService(repository.NewPrincipalRepository(db), nil)
	svc := NewPrincipalService(repository.NewPrincipalRepository(db), access)
	mgmt := newManagementService(db)

	other := &domain.User{Username: "erin", Email: "erin@example.com", FullName: "Erin"}
	require.NoError(t, db.Create(other).Error)

	require.NoError(t, svc.SetEditors(f.event.ID, domain.EditableTypePaper, []uint{f.editor.ID, other.ID}))
	editors, err := mgmt.ListEditors(f.event.ID, domain.EditableTypePaper)
	require.NoError(t, err)
	assert.Len(t, editors, 2)

	require.NoError(t, svc.SetEditors(f.event.ID, domain.EditableTypePaper, []uint{other.ID}))
	editors, err = mgmt.ListEditors(f.event.ID, domain.EditableTypePaper)
	require.NoError(t, err)
	require.Len(t, editors, 1)
	assert.Equal(t, other.ID, editors[0].ID)
}
