// Package store persists tenants, users and notes. Every note query takes the
// owning tenant ID as a required filter.
package store

import (
	"context"
	"errors"
	"strconv"

	"notes-service/internal/errs"
	"notes-service/internal/model"
	"notes-service/pkg/database"
	"notes-service/prometheus"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the gorm-backed credential and note store
type Store struct {
	db      *gorm.DB
	metrics *prometheus.Metrics
}

// New creates a store over db. metrics may be nil.
func New(db *gorm.DB, metrics *prometheus.Metrics) *Store {
	return &Store{db: db, metrics: metrics}
}

// Ping checks that the database answers
func (s *Store) Ping(ctx context.Context) error {
	return database.Ping(ctx, s.db)
}

// Migrate creates the tenants, users and notes tables if they are absent
func (s *Store) Migrate(ctx context.Context) error {
	return database.MigrateModels(ctx, s.db, &model.Tenant{}, &model.User{}, &model.Note{})
}

// translate maps gorm errors onto coded errors
func translate(err error, notFound string, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.New(errs.NotFound, notFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.Wrap(errs.Conflict, "Resource already exists", err)
	default:
		return errs.Wrap(errs.Internal, op, err)
	}
}

// FindUserByEmail returns the user with email and its tenant
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	defer s.metrics.TrackDBOperation("query")()

	var user model.User
	err := s.db.WithContext(ctx).Joins("Tenant").Where("users.email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err, "User not found", "find user by email")
	}
	return &user, nil
}

// FindTenant looks a tenant up by slug, falling back to id when idOrSlug is numeric
func (s *Store) FindTenant(ctx context.Context, idOrSlug string) (*model.Tenant, error) {
	defer s.metrics.TrackDBOperation("query")()

	db := s.db.WithContext(ctx)
	var tenant model.Tenant
	err := db.Where("slug = ?", idOrSlug).First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if id, convErr := strconv.ParseUint(idOrSlug, 10, 64); convErr == nil {
			err = db.First(&tenant, id).Error
		}
	}
	if err != nil {
		return nil, translate(err, "Company not found", "find tenant")
	}
	return &tenant, nil
}

// CreateTenant provisions a tenant; a taken slug is a conflict
func (s *Store) CreateTenant(ctx context.Context, tenant *model.Tenant) error {
	defer s.metrics.TrackDBOperation("insert")()

	if tenant.Plan == "" {
		tenant.Plan = model.PlanFree
	}
	return translate(s.db.WithContext(ctx).Create(tenant).Error, "", "create tenant")
}

// CreateUser provisions a user; a taken email is a conflict
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	defer s.metrics.TrackDBOperation("insert")()

	if !user.Role.Valid() {
		return errs.New(errs.Validation, "Role must be admin or member")
	}
	return translate(s.db.WithContext(ctx).Create(user).Error, "", "create user")
}

// SetTenantPlan sets the plan of tenantID
func (s *Store) SetTenantPlan(ctx context.Context, tenantID uint, plan model.Plan) error {
	defer s.metrics.TrackDBOperation("update")()

	result := s.db.WithContext(ctx).Model(&model.Tenant{}).Where("id = ?", tenantID).Update("plan", plan)
	if result.Error != nil {
		return translate(result.Error, "", "set tenant plan")
	}
	if result.RowsAffected == 0 {
		return errs.New(errs.NotFound, "Company not found")
	}
	return nil
}

// CountNotes returns the number of notes owned by tenantID
func (s *Store) CountNotes(ctx context.Context, tenantID uint) (int64, error) {
	defer s.metrics.TrackDBOperation("count")()

	var count int64
	err := s.db.WithContext(ctx).Model(&model.Note{}).Where("tenant_id = ?", tenantID).Count(&count).Error
	if err != nil {
		return 0, translate(err, "", "count notes")
	}
	return count, nil
}

// CreateNote inserts a note owned by tenantID
func (s *Store) CreateNote(ctx context.Context, title, content string, userID, tenantID uint) (*model.Note, error) {
	defer s.metrics.TrackDBOperation("insert")()

	note := &model.Note{Title: title, Content: content, UserID: userID, TenantID: tenantID}
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, translate(err, "", "create note")
	}
	return note, nil
}

// CreateNoteWithinQuota inserts a note unless the tenant is on the free plan
// and already holds limit notes. The tenant row is locked for the duration so
// concurrent creators in one tenant are serialized.
func (s *Store) CreateNoteWithinQuota(ctx context.Context, title, content string, userID, tenantID uint, limit int64) (*model.Note, error) {
	defer s.metrics.TrackDBOperation("insert")()

	var note *model.Note
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tenant model.Tenant
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tenant, tenantID).Error
		if err != nil {
			return translate(err, "Company not found", "lock tenant")
		}

		if tenant.Plan == model.PlanFree {
			var count int64
			if err := tx.Model(&model.Note{}).Where("tenant_id = ?", tenantID).Count(&count).Error; err != nil {
				return translate(err, "", "count notes")
			}
			if count >= limit {
				return errs.New(errs.QuotaExceeded, "Note limit reached. Upgrade to Pro plan to create more notes.")
			}
		}

		note = &model.Note{Title: title, Content: content, UserID: userID, TenantID: tenantID}
		if err := tx.Create(note).Error; err != nil {
			return translate(err, "", "create note")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// GetNote returns note id if it belongs to tenantID
func (s *Store) GetNote(ctx context.Context, id, tenantID uint) (*model.Note, error) {
	defer s.metrics.TrackDBOperation("query")()

	var note model.Note
	err := s.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).First(&note).Error
	if err != nil {
		return nil, translate(err, "Note not found", "get note")
	}
	return &note, nil
}

// UpdateNote replaces title and content of note id in tenantID
func (s *Store) UpdateNote(ctx context.Context, id, tenantID uint, title, content string) (*model.Note, error) {
	defer s.metrics.TrackDBOperation("update")()

	db := s.db.WithContext(ctx)
	// updated_at is set by gorm on Updates
	result := db.Model(&model.Note{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]interface{}{"title": title, "content": content})
	if result.Error != nil {
		return nil, translate(result.Error, "", "update note")
	}
	if result.RowsAffected == 0 {
		return nil, errs.New(errs.NotFound, "Note not found")
	}

	var note model.Note
	if err := db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&note).Error; err != nil {
		return nil, translate(err, "Note not found", "reload note")
	}
	return &note, nil
}

// DeleteNote removes note id from tenantID and reports whether a row was deleted
func (s *Store) DeleteNote(ctx context.Context, id, tenantID uint) (bool, error) {
	defer s.metrics.TrackDBOperation("delete")()

	result := s.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&model.Note{})
	if result.Error != nil {
		return false, translate(result.Error, "", "delete note")
	}
	return result.RowsAffected > 0, nil
}

// ListNotes returns the notes of tenantID, newest first
func (s *Store) ListNotes(ctx context.Context, tenantID uint) ([]model.Note, error) {
	defer s.metrics.TrackDBOperation("query")()

	notes := []model.Note{}
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&notes).Error
	if err != nil {
		return nil, translate(err, "", "list notes")
	}
	return notes, nil
}
