package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openconf/editorial-backend/internal/common"
	"github.com/openconf/editorial-backend/internal/domain"
	"github.com/openconf/editorial-backend/internal/repository"
	"github.com/openconf/editorial-backend/pkg/storage"
	"gorm.io/gorm"
)

// AttachmentService event attachments stored in the object store
type AttachmentService interface {
	List(eventID uint) ([]*domain.Attachment, error)
	Upload(ctx context.Context, eventID uint, title, filename, contentType string, body io.Reader, size int64) (*domain.Attachment, error)
	Download(ctx context.Context, id uint) (*domain.Attachment, io.ReadCloser, error)
	// DownloadURL returns a pre-signed URL for direct download from the
	// object store
	DownloadURL(ctx context.Context, id uint, expiry time.Duration) (*domain.Attachment, string, error)
	Delete(ctx context.Context, id uint) error
	// Preview renders an inline preview of the attachment, returning false
	// when its content type has no previewer
	Preview(ctx context.Context, id uint) (*domain.Attachment, *Preview, bool, error)
}

type attachmentService struct {
	attachmentRepo repository.AttachmentRepository
	store          *storage.Client
	preview        PreviewService
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(attachmentRepo repository.AttachmentRepository, store *storage.Client, preview PreviewService) AttachmentService {
	return &attachmentService{attachmentRepo: attachmentRepo, store: store, preview: preview}
}

func (s *attachmentService) List(eventID uint) ([]*domain.Attachment, error) {
	return s.attachmentRepo.FindByEvent(eventID)
}

func (s *attachmentService) Upload(ctx context.Context, eventID uint, title, filename, contentType string, body io.Reader, size int64) (*domain.Attachment, error) {
	if s.store == nil {
		return nil, errors.New("object storage not configured")
	}
	storageID := uuid.NewString()
	if err := s.store.Upload(ctx, storageID, body, contentType); err != nil {
		return nil, err
	}
	attachment := &domain.Attachment{
		EventID:     eventID,
		Title:       title,
		StorageID:   storageID,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
	}
	if err := s.attachmentRepo.Create(attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

func (s *attachmentService) find(id uint) (*domain.Attachment, error) {
	attachment, err := s.attachmentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return attachment, nil
}

func (s *attachmentService) Download(ctx context.Context, id uint) (*domain.Attachment, io.ReadCloser, error) {
	attachment, err := s.find(id)
	if err != nil {
		return nil, nil, err
	}
	if s.store == nil {
		return nil, nil, errors.New("object storage not configured")
	}
	body, err := s.store.Download(ctx, attachment.StorageID)
	if err != nil {
		return nil, nil, err
	}
	return attachment, body, nil
}

func (s *attachmentService) DownloadURL(ctx context.Context, id uint, expiry time.Duration) (*domain.Attachment, string, error) {
	attachment, err := s.find(id)
	if err != nil {
		return nil, "", err
	}
	if s.store == nil {
		return nil, "", errors.New("object storage not configured")
	}
	url, err := s.store.PresignDownload(ctx, attachment.StorageID, expiry)
	if err != nil {
		return nil, "", err
	}
	return attachment, url, nil
}

// Delete removes the stored object and soft-deletes the attachment row.
// Without a configured store only the row goes away.
func (s *attachmentService) Delete(ctx context.Context, id uint) error {
	attachment, err := s.find(id)
	if err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.Delete(ctx, attachment.StorageID); err != nil {
			return err
		}
	}
	return s.attachmentRepo.SoftDelete(id)
}

func (s *attachmentService) Preview(ctx context.Context, id uint) (*domain.Attachment, *Preview, bool, error) {
	attachment, err := s.find(id)
	if err != nil {
		return nil, nil, false, err
	}
	if !s.preview.CanPreview(attachment.ContentType) {
		return attachment, nil, false, nil
	}

	// image and pdf previews never need the file body
	var content []byte
	if kindNeedsContent(attachment.ContentType) {
		if s.store == nil {
			return attachment, nil, false, nil
		}
		body, err := s.store.Download(ctx, attachment.StorageID)
		if err != nil {
			return nil, nil, false, err
		}
		defer body.Close()
		content, err = io.ReadAll(body)
		if err != nil {
			return nil, nil, false, err
		}
	}

	preview, ok := s.preview.Generate(attachment.ContentType, content)
	return attachment, preview, ok, nil
}

// kindNeedsContent reports whether the previewer has to read the file body
func kindNeedsContent(contentType string) bool {
	ct := normalizeContentType(contentType)
	return markdownContentTypes[ct] || strings.HasPrefix(ct, "text/")
}
