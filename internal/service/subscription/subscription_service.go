// internal/service/subscription/subscription_service.go
package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sparkhub-service/internal/domain/audit"
	"sparkhub-service/internal/domain/customer"
	"sparkhub-service/internal/domain/plan"
	"sparkhub-service/internal/domain/subscription"
	xerrors "sparkhub-service/internal/pkg/errors"
	auditsvc "sparkhub-service/internal/service/audit"
	"sparkhub-service/internal/timeacct"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type SubscriptionService struct {
	subRepo      subscription.Repository
	planRepo     plan.Repository
	customerRepo customer.Repository
	recorder     *auditsvc.Recorder
	logger       *zap.Logger

	now func() time.Time
}

func NewSubscriptionService(
	subRepo subscription.Repository,
	planRepo plan.Repository,
	customerRepo customer.Repository,
	recorder *auditsvc.Recorder,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:      subRepo,
		planRepo:     planRepo,
		customerRepo: customerRepo,
		recorder:     recorder,
		logger:       logger,
		now:          time.Now,
	}
}

// Purchase sells a bundle plan to a customer: seeds the balances from the
// plan, derives the expiry date, and bumps the customer's spend total.
func (s *SubscriptionService) Purchase(ctx context.Context, req *subscription.PurchaseRequest, actor int64) (*subscription.SubscriptionActive, error) {
	cust, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, xerrors.Wrap(err, "customer lookup failed")
	}

	p, err := s.planRepo.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, xerrors.Wrap(err, "plan lookup failed")
	}
	if !p.IsActive {
		return nil, xerrors.Wrap(xerrors.ErrValidation, "plan is not active")
	}
	if p.Kind != plan.KindBundle {
		return nil, xerrors.Wrapf(xerrors.ErrValidation, "plan %q is not a bundle", p.Name)
	}

	// Duplicate live bundle for the same plan is a conflict.
	if _, err := s.subRepo.FindLiveByCustomerAndPlan(ctx, req.CustomerID, req.PlanID); err == nil {
		return nil, xerrors.Wrap(xerrors.ErrConflict, "customer already holds a live subscription for this plan")
	} else if !errors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	sub := &subscription.SubscriptionActive{
		SubscriptionRef: ulid.Make().String(),
		CustomerID:      req.CustomerID,
		PlanID:          req.PlanID,
		TimeLeft:        p.TimeIncluded,
		DaysLeft:        p.DaysIncluded,
	}
	if p.ExpiryDays.Valid {
		sub.ExpiresAt = sql.NullTime{
			Time:  now.AddDate(0, 0, int(p.ExpiryDays.Int32)),
			Valid: true,
		}
	}

	if err := s.subRepo.Create(ctx, sub); err != nil {
		s.logger.Error("failed to create subscription", zap.Error(err))
		return nil, err
	}

	// Spend total is a separate per-record write; a failure here is surfaced
	// but the purchase itself stands (see the partial-write policy).
	if err := s.customerRepo.AddTotals(ctx, cust.ID, p.Price, 0); err != nil {
		s.logger.Error("subscription created but customer totals not updated",
			zap.Int64("subscription_id", sub.ID),
			zap.Int64("customer_id", cust.ID),
			zap.Error(err),
		)
		return sub, xerrors.Wrap(xerrors.ErrInconsistentState, "customer totals not updated after purchase")
	}

	s.recorder.Record(ctx, audit.ActionPlanPurchase,
		fmt.Sprintf("%s purchased %s", cust.FullName, p.Name),
		actor,
		map[string]interface{}{
			"subscription_id": sub.ID,
			"plan_id":         p.ID,
			"customer_id":     cust.ID,
			"price":           p.Price,
		},
	)

	s.logger.Info("subscription purchased",
		zap.Int64("subscription_id", sub.ID),
		zap.Int64("customer_id", cust.ID),
		zap.Int64("plan_id", p.ID),
	)

	return sub, nil
}

// ListByCustomer retrieves a customer's subscriptions with their plan names
// and the engine's status badge attached.
func (s *SubscriptionService) ListByCustomer(ctx context.Context, customerID int64) ([]subscription.SubscriptionView, error) {
	subs, err := s.subRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]subscription.SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		view := subscription.SubscriptionView{SubscriptionActive: sub}
		if p, err := s.planRepo.FindByID(ctx, sub.PlanID); err == nil {
			view.PlanName = p.Name
			view.Status = string(timeacct.StatusBadge(p, &sub, now))
		} else {
			view.Status = string(timeacct.StatusBadge(nil, &sub, now))
		}
		views = append(views, view)
	}

	return views, nil
}
