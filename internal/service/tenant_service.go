package service

import (
	"context"

	"notes-service/internal/errs"
	"notes-service/internal/model"
	"notes-service/prometheus"

	"go.uber.org/zap"
)

// TenantStore is the storage the tenant service needs
type TenantStore interface {
	FindTenant(ctx context.Context, idOrSlug string) (*model.Tenant, error)
	SetTenantPlan(ctx context.Context, tenantID uint, plan model.Plan) error
}

// TenantService reads and upgrades the caller's tenant plan
type TenantService struct {
	store   TenantStore
	log     *zap.Logger
	metrics *prometheus.Metrics
}

// NewTenantService creates a tenant service
func NewTenantService(store TenantStore, log *zap.Logger, metrics *prometheus.Metrics) *TenantService {
	return &TenantService{store: store, log: log, metrics: metrics}
}

var errTenantNotFound = errs.New(errs.NotFound, "Company not found")

// resolve looks slugOrID up and accepts it only when it is the caller's own
// tenant. A tenant of someone else is reported exactly like a missing one.
func (s *TenantService) resolve(ctx context.Context, identity model.Identity, slugOrID string) (*model.Tenant, error) {
	tenant, err := s.store.FindTenant(ctx, slugOrID)
	if err != nil {
		if errs.Is(err, errs.NotFound) {
			return nil, errTenantNotFound
		}
		return nil, err
	}
	if tenant.ID != identity.TenantID {
		s.log.Warn("Cross-tenant plan access attempt",
			zap.Uint("user_id", identity.UserID),
			zap.Uint("tenant_id", identity.TenantID),
			zap.String("requested", slugOrID))
		return nil, errTenantNotFound
	}
	return tenant, nil
}

// GetPlan returns the plan of the caller's tenant named by slugOrID
func (s *TenantService) GetPlan(ctx context.Context, identity model.Identity, slugOrID string) (model.Plan, error) {
	tenant, err := s.resolve(ctx, identity, slugOrID)
	if err != nil {
		return "", err
	}
	return tenant.Plan, nil
}

// Upgrade moves the caller's tenant to the pro plan. Only admins may upgrade;
// upgrading a pro tenant succeeds without changes.
func (s *TenantService) Upgrade(ctx context.Context, identity model.Identity, slugOrID string) (model.Plan, error) {
	if !identity.IsAdmin() {
		return "", errs.New(errs.Forbidden, "Admin access required")
	}

	tenant, err := s.resolve(ctx, identity, slugOrID)
	if err != nil {
		return "", err
	}
	if tenant.Plan == model.PlanPro {
		return model.PlanPro, nil
	}

	if err := s.store.SetTenantPlan(ctx, tenant.ID, model.PlanPro); err != nil {
		return "", err
	}

	s.metrics.RecordTenantUpgrade()
	s.log.Info("Tenant upgraded",
		zap.Uint("tenant_id", tenant.ID),
		zap.String("slug", tenant.Slug),
		zap.Uint("by_user_id", identity.UserID))
	return model.PlanPro, nil
}
