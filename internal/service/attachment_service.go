package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/storage"

	"github.com/google/uuid"
)

// --- DTOs ---

type AttachmentResponse struct {
	ID         string `json:"id"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
	CreatedAt  string `json:"created_at"`
}

// --- Interface ---

type AttachmentService interface {
	Upload(ctx context.Context, tenantID uuid.UUID, userID, entityType, entityID, fileName, mimeType string, r io.Reader) (AttachmentResponse, error)
	ListByEntity(ctx context.Context, tenantID uuid.UUID, entityType, entityID string) ([]AttachmentResponse, error)
	Download(ctx context.Context, tenantID uuid.UUID, id string) (AttachmentResponse, io.ReadCloser, error)
	Deactivate(ctx context.Context, tenantID uuid.UUID, id string) error
}

type attachmentService struct {
	attachmentRepo repository.AttachmentRepository
	store          storage.Store
}

func NewAttachmentService(attachmentRepo repository.AttachmentRepository, store storage.Store) AttachmentService {
	return &attachmentService{attachmentRepo: attachmentRepo, store: store}
}

// --- Implementation ---

func (s *attachmentService) Upload(ctx context.Context, tenantID uuid.UUID, userID, entityType, entityID, fileName, mimeType string, r io.Reader) (AttachmentResponse, error) {
	if entityType == "" || entityID == "" {
		return AttachmentResponse{}, fmt.Errorf("entity_type and entity_id are required")
	}

	path, size, err := s.store.Save(tenantID, fileName, r)
	if err != nil {
		return AttachmentResponse{}, fmt.Errorf("failed to store file: %w", err)
	}

	var uploaderID *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		uploaderID = &parsed
	}

	attachment := model.Attachment{
		TenantID:     tenantID,
		EntityType:   entityType,
		EntityID:     entityID,
		FileName:     fileName,
		StoragePath:  path,
		MimeType:     mimeType,
		SizeBytes:    size,
		UploadedByID: uploaderID,
		IsActive:     true,
	}
	if err := s.attachmentRepo.Create(ctx, &attachment); err != nil {
		// Orphaned blob cleanup, best effort
		_ = s.store.Remove(path)
		return AttachmentResponse{}, fmt.Errorf("failed to create attachment: %w", err)
	}
	return toAttachmentResponse(attachment), nil
}

func (s *attachmentService) ListByEntity(ctx context.Context, tenantID uuid.UUID, entityType, entityID string) ([]AttachmentResponse, error) {
	attachments, err := s.attachmentRepo.ListByEntity(ctx, tenantID, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attachments: %w", err)
	}

	result := make([]AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		result = append(result, toAttachmentResponse(a))
	}
	return result, nil
}

func (s *attachmentService) Download(ctx context.Context, tenantID uuid.UUID, id string) (AttachmentResponse, io.ReadCloser, error) {
	attachmentID, err := uuid.Parse(id)
	if err != nil {
		return AttachmentResponse{}, nil, fmt.Errorf("invalid attachment id: %w", err)
	}

	attachment, err := s.attachmentRepo.FindByID(ctx, tenantID, attachmentID)
	if err != nil {
		return AttachmentResponse{}, nil, fmt.Errorf("attachment not found: %w", err)
	}

	reader, err := s.store.Open(attachment.StoragePath)
	if err != nil {
		return AttachmentResponse{}, nil, fmt.Errorf("failed to open stored file: %w", err)
	}
	return toAttachmentResponse(*attachment), reader, nil
}

func (s *attachmentService) Deactivate(ctx context.Context, tenantID uuid.UUID, id string) error {
	attachmentID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid attachment id: %w", err)
	}

	attachment, err := s.attachmentRepo.FindByID(ctx, tenantID, attachmentID)
	if err != nil {
		return fmt.Errorf("attachment not found: %w", err)
	}

	attachment.IsActive = false
	if err := s.attachmentRepo.Update(ctx, attachment); err != nil {
		return fmt.Errorf("failed to deactivate attachment: %w", err)
	}
	return nil
}

// --- Mapping ---

func toAttachmentResponse(a model.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:         a.ID.String(),
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		FileName:   a.FileName,
		MimeType:   a.MimeType,
		SizeBytes:  a.SizeBytes,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
}
