package service

import (
	"context"
	"strconv"
	"strings"

	"notes-service/internal/errs"
	"notes-service/internal/model"
	"notes-service/prometheus"

	"go.uber.org/zap"
)

// NoteStore is the storage the note service needs. Every call takes the
// caller's tenant ID.
type NoteStore interface {
	CreateNoteWithinQuota(ctx context.Context, title, content string, userID, tenantID uint, limit int64) (*model.Note, error)
	GetNote(ctx context.Context, id, tenantID uint) (*model.Note, error)
	UpdateNote(ctx context.Context, id, tenantID uint, title, content string) (*model.Note, error)
	DeleteNote(ctx context.Context, id, tenantID uint) (bool, error)
	ListNotes(ctx context.Context, tenantID uint) ([]model.Note, error)
}

// NoteService implements tenant-scoped note operations
type NoteService struct {
	store   NoteStore
	log     *zap.Logger
	metrics *prometheus.Metrics
}

// NewNoteService creates a note service
func NewNoteService(store NoteStore, log *zap.Logger, metrics *prometheus.Metrics) *NoteService {
	return &NoteService{store: store, log: log, metrics: metrics}
}

var errNoteNotFound = errs.New(errs.NotFound, "Note not found")

// ParseNoteID converts a path segment into a note ID. Anything that is not a
// positive integer cannot name a note, so it is reported as not found.
func ParseNoteID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errNoteNotFound
	}
	return uint(id), nil
}

func validateNote(title, content string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return errs.New(errs.Validation, "Title and content are required")
	}
	return nil
}

// List returns the notes of the caller's tenant, newest first
func (s *NoteService) List(ctx context.Context, identity model.Identity) ([]model.Note, error) {
	notes, err := s.store.ListNotes(ctx, identity.TenantID)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordNoteOperation("list")
	return notes, nil
}

// Create adds a note to the caller's tenant, enforcing the free plan cap
func (s *NoteService) Create(ctx context.Context, identity model.Identity, title, content string) (*model.Note, error) {
	if err := validateNote(title, content); err != nil {
		return nil, err
	}

	note, err := s.store.CreateNoteWithinQuota(ctx, title, content, identity.UserID, identity.TenantID, model.FreePlanNoteLimit)
	if err != nil {
		if errs.Is(err, errs.QuotaExceeded) {
			s.metrics.RecordQuotaRejection(identity.TenantID)
			s.log.Info("Note limit reached",
				zap.Uint("tenant_id", identity.TenantID),
				zap.Uint("user_id", identity.UserID))
		}
		return nil, err
	}

	s.metrics.RecordNoteOperation("create")
	s.log.Info("Note created",
		zap.Uint("note_id", note.ID),
		zap.Uint("tenant_id", note.TenantID),
		zap.Uint("user_id", note.UserID))
	return note, nil
}

// Get returns a note of the caller's tenant
func (s *NoteService) Get(ctx context.Context, identity model.Identity, noteID uint) (*model.Note, error) {
	note, err := s.store.GetNote(ctx, noteID, identity.TenantID)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordNoteOperation("get")
	return note, nil
}

// Update replaces title and content of a note of the caller's tenant
func (s *NoteService) Update(ctx context.Context, identity model.Identity, noteID uint, title, content string) (*model.Note, error) {
	if err := validateNote(title, content); err != nil {
		return nil, err
	}

	note, err := s.store.UpdateNote(ctx, noteID, identity.TenantID, title, content)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordNoteOperation("update")
	s.log.Info("Note updated", zap.Uint("note_id", note.ID), zap.Uint("tenant_id", note.TenantID))
	return note, nil
}

// Delete removes a note of the caller's tenant
func (s *NoteService) Delete(ctx context.Context, identity model.Identity, noteID uint) error {
	deleted, err := s.store.DeleteNote(ctx, noteID, identity.TenantID)
	if err != nil {
		return err
	}
	if !deleted {
		return errNoteNotFound
	}

	s.metrics.RecordNoteOperation("delete")
	s.log.Info("Note deleted", zap.Uint("note_id", noteID), zap.Uint("tenant_id", identity.TenantID))
	return nil
}
