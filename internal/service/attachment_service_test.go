package service

import (
	"context"
	"testing"
	"time"

	"github.com/openconf/editorial-backend/internal/common"
	"github.com/openconf/editorial-backend/internal/domain"
	"github.com/openconf/editorial-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentDelete(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	repo := repository.NewAttachmentRepository(db)
	svc := NewAttachmentService(repo, nil, NewPreviewService())

	attachment := &domain.Attachment{
		EventID:     f.event.ID,
		Title:       "Camera-ready instructions",
		StorageID:   "11111111-1111-1111-1111-111111111111",
		Filename:    "instructions.pdf",
		ContentType: "application/pdf",
		Size:        4096,
	}
	require.NoError(t, repo.Create(attachment))

	require.NoError(t, svc.Delete(context.Background(), attachment.ID))

	attachments, err := svc.List(f.event.ID)
	require.NoError(t, err)
	assert.Empty(t, attachments)

	// deleting again reports the row as gone
	assert.ErrorIs(t, svc.Delete(context.Background(), attachment.ID), common.ErrNotFound)
}

func TestAttachmentDownloadURLWithoutStore(t *testing.T) {
	db := setupTestDB(t)
	f := newFixture(t, db)
	repo := repository.NewAttachmentRepository(db)
	svc := NewAttachmentService(repo, nil, NewPreviewService())

	attachment := &domain.Attachment{
		EventID:     f.event.ID,
		Title:       "Poster template",
		StorageID:   "22222222-2222-2222-2222-222222222222",
		Filename:    "template.png",
		ContentType: "image/png",
		Size:        1024,
	}
	require.NoError(t, repo.Create(attachment))

	_, _, err := svc.DownloadURL(context.Background(), attachment.ID, 5*time.Minute)
	assert.Error(t, err)

	_, _, err = svc.DownloadURL(context.Background(), 9999, 5*time.Minute)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
