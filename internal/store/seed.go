package store

import (
	"context"
	"errors"

	"notes-service/internal/errs"
	"notes-service/internal/model"
	"notes-service/pkg/password"

	"gorm.io/gorm"
)

type seedUser struct {
	email  string
	role   model.Role
	tenant string
}

var seedTenants = []model.Tenant{
	{Slug: "acme", Name: "Acme Corp", Plan: model.PlanFree},
	{Slug: "globex", Name: "Globex Corp", Plan: model.PlanFree},
}

var seedUsers = []seedUser{
	{email: "admin@acme.test", role: model.RoleAdmin, tenant: "acme"},
	{email: "user@acme.test", role: model.RoleMember, tenant: "acme"},
	{email: "admin@globex.test", role: model.RoleAdmin, tenant: "globex"},
	{email: "user@globex.test", role: model.RoleMember, tenant: "globex"},
}

// Seed inserts the sample tenants and users when the store has no tenants.
// It reports whether anything was inserted; a populated store is left alone.
func (s *Store) Seed(ctx context.Context, hasher password.Hasher, plain string) (bool, error) {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&model.Tenant{}).Count(&existing).Error; err != nil {
		return false, translate(err, "", "count tenants")
	}
	if existing > 0 {
		return false, nil
	}

	hash, err := hasher.Hash(plain)
	if err != nil {
		return false, errs.Wrap(errs.Internal, "hash seed password", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Re-check inside the transaction; another process may have seeded meanwhile
		var count int64
		if err := tx.Model(&model.Tenant{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errAlreadySeeded
		}

		tenantIDs := make(map[string]uint, len(seedTenants))
		for _, t := range seedTenants {
			tenant := t
			if err := tx.Create(&tenant).Error; err != nil {
				return err
			}
			tenantIDs[tenant.Slug] = tenant.ID
		}

		for _, u := range seedUsers {
			user := model.User{
				Email:        u.email,
				PasswordHash: hash,
				Role:         u.role,
				TenantID:     tenantIDs[u.tenant],
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err == nil {
		return true, nil
	}
	if errors.Is(err, errAlreadySeeded) {
		return false, nil
	}
	translated := translate(err, "", "seed")
	if errs.Is(translated, errs.Conflict) {
		// A concurrent seeder inserted the same rows first
		return false, nil
	}
	return false, translated
}

var errAlreadySeeded = errs.New(errs.Conflict, "store already seeded")
