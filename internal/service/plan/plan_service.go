// internal/service/plan/plan_service.go
package plan

import (
	"context"
	"database/sql"

	"sparkhub-service/internal/cache"
	"sparkhub-service/internal/domain/plan"
	xerrors "sparkhub-service/internal/pkg/errors"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type PlanService struct {
	planRepo plan.Repository
	cache    *cache.Cache
	logger   *zap.Logger
}

func NewPlanService(planRepo plan.Repository, c *cache.Cache, logger *zap.Logger) *PlanService {
	return &PlanService{
		planRepo: planRepo,
		cache:    c,
		logger:   logger,
	}
}

// CreatePlan validates and creates a new subscription plan
func (s *PlanService) CreatePlan(ctx context.Context, req *plan.CreatePlanRequest) (*plan.SubscriptionPlan, error) {
	p := &plan.SubscriptionPlan{
		Name:     req.Name,
		Kind:     req.Kind,
		IsActive: true,
		Price:    req.Price,
		Branches: pq.StringArray(req.Branches),
	}

	if req.TimeIncluded != nil {
		p.TimeIncluded = sql.NullInt32{Int32: *req.TimeIncluded, Valid: true}
	}
	if req.DaysIncluded != nil {
		p.DaysIncluded = sql.NullInt32{Int32: *req.DaysIncluded, Valid: true}
	}
	if req.ExpiryDays != nil {
		p.ExpiryDays = sql.NullInt32{Int32: *req.ExpiryDays, Valid: true}
	}
	if req.TimeValidStart != "" {
		p.TimeValidStart = sql.NullString{String: req.TimeValidStart, Valid: true}
	}
	if req.TimeValidEnd != "" {
		p.TimeValidEnd = sql.NullString{String: req.TimeValidEnd, Valid: true}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.planRepo.Create(ctx, p); err != nil {
		s.logger.Error("failed to create plan", zap.Error(err))
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.KeyPlans)

	s.logger.Info("subscription plan created",
		zap.Int64("plan_id", p.ID),
		zap.String("kind", string(p.Kind)),
	)

	return p, nil
}

// GetPlan retrieves a subscription plan by ID
func (s *PlanService) GetPlan(ctx context.Context, id int64) (*plan.SubscriptionPlan, error) {
	return s.planRepo.FindByID(ctx, id)
}

// ListPlans retrieves plans, read-through the enrichment cache when the
// filters match the cached snapshot (the unfiltered active list).
func (s *PlanService) ListPlans(ctx context.Context, filters *plan.PlanListFilters) ([]plan.SubscriptionPlan, error) {
	cacheable := filters.Kind == "" && filters.Branch == "" && filters.ActiveOnly

	if cacheable {
		var cached []plan.SubscriptionPlan
		if s.cache.GetJSON(ctx, cache.KeyPlans, &cached) {
			return cached, nil
		}
	}

	plans, err := s.planRepo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.cache.SetJSON(ctx, cache.KeyPlans, plans)
	}

	return plans, nil
}

// UpdatePlan applies an update. A plan referenced by a subscription or a
// session is immutable except for its active flag.
func (s *PlanService) UpdatePlan(ctx context.Context, id int64, req *plan.UpdatePlanRequest) (*plan.SubscriptionPlan, error) {
	p, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !req.OnlyActiveFlag() {
		refs, err := s.planRepo.CountReferences(ctx, id)
		if err != nil {
			return nil, err
		}
		if refs > 0 {
			return nil, xerrors.Wrap(xerrors.ErrConflict, "plan is referenced and accepts only an active-flag change")
		}
	}

	applyUpdate(p, req)

	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.planRepo.Update(ctx, p); err != nil {
		s.logger.Error("failed to update plan", zap.Int64("plan_id", id), zap.Error(err))
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.KeyPlans)

	return p, nil
}

// DeletePlan removes an unreferenced plan. Referenced plans are deactivated
// instead, since history rows must keep resolving their plan.
func (s *PlanService) DeletePlan(ctx context.Context, id int64) (deactivated bool, err error) {
	p, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return false, err
	}

	refs, err := s.planRepo.CountReferences(ctx, id)
	if err != nil {
		return false, err
	}

	if refs > 0 {
		p.IsActive = false
		if err := s.planRepo.Update(ctx, p); err != nil {
			return false, err
		}
		s.cache.Invalidate(ctx, cache.KeyPlans)
		s.logger.Info("referenced plan deactivated instead of deleted",
			zap.Int64("plan_id", id),
			zap.Int64("references", refs),
		)
		return true, nil
	}

	if err := s.planRepo.Delete(ctx, id); err != nil {
		return false, err
	}

	s.cache.Invalidate(ctx, cache.KeyPlans)
	return false, nil
}

func applyUpdate(p *plan.SubscriptionPlan, req *plan.UpdatePlanRequest) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.TimeIncluded != nil {
		p.TimeIncluded = sql.NullInt32{Int32: *req.TimeIncluded, Valid: true}
	}
	if req.DaysIncluded != nil {
		p.DaysIncluded = sql.NullInt32{Int32: *req.DaysIncluded, Valid: true}
	}
	if req.ExpiryDays != nil {
		p.ExpiryDays = sql.NullInt32{Int32: *req.ExpiryDays, Valid: true}
	}
	if req.TimeValidStart != nil {
		p.TimeValidStart = sql.NullString{String: *req.TimeValidStart, Valid: *req.TimeValidStart != ""}
	}
	if req.TimeValidEnd != nil {
		p.TimeValidEnd = sql.NullString{String: *req.TimeValidEnd, Valid: *req.TimeValidEnd != ""}
	}
	if req.Branches != nil {
		p.Branches = req.Branches
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
}
