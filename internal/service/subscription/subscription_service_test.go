package subscription

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"sparkhub-service/internal/domain/audit"
	"sparkhub-service/internal/domain/customer"
	"sparkhub-service/internal/domain/plan"
	"sparkhub-service/internal/domain/subscription"
	xerrors "sparkhub-service/internal/pkg/errors"
	auditsvc "sparkhub-service/internal/service/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var purchaseTime = time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)

type fakeSubRepo struct {
	subs   map[int64]*subscription.SubscriptionActive
	nextID int64
}

func (r *fakeSubRepo) Create(_ context.Context, s *subscription.SubscriptionActive) error {
	s.ID = r.nextID
	r.nextID++
	r.subs[s.ID] = s
	return nil
}

func (r *fakeSubRepo) FindByID(_ context.Context, id int64) (*subscription.SubscriptionActive, error) {
	s, ok := r.subs[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return s, nil
}

func (r *fakeSubRepo) ListByCustomer(_ context.Context, customerID int64) ([]subscription.SubscriptionActive, error) {
	var out []subscription.SubscriptionActive
	for _, s := range r.subs {
		if s.CustomerID == customerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSubRepo) FindLiveByCustomerAndPlan(_ context.Context, customerID, planID int64) (*subscription.SubscriptionActive, error) {
	for _, s := range r.subs {
		if s.CustomerID == customerID && s.PlanID == planID && !s.Expired(purchaseTime) {
			return s, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *fakeSubRepo) UpdateBalances(_ context.Context, id int64, timeLeft, daysLeft sql.NullInt32) error {
	s, ok := r.subs[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	s.TimeLeft = timeLeft
	s.DaysLeft = daysLeft
	return nil
}

type fakePlanRepo struct {
	plans map[int64]*plan.SubscriptionPlan
}

func (r *fakePlanRepo) Create(_ context.Context, p *plan.SubscriptionPlan) error { return nil }
func (r *fakePlanRepo) FindByID(_ context.Context, id int64) (*plan.SubscriptionPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return p, nil
}
func (r *fakePlanRepo) List(_ context.Context, _ *plan.PlanListFilters) ([]plan.SubscriptionPlan, error) {
	return nil, nil
}
func (r *fakePlanRepo) Update(_ context.Context, _ *plan.SubscriptionPlan) error  { return nil }
func (r *fakePlanRepo) Delete(_ context.Context, _ int64) error                   { return nil }
func (r *fakePlanRepo) CountReferences(_ context.Context, _ int64) (int64, error) { return 0, nil }

type fakeCustomerRepo struct {
	customers map[int64]*customer.Customer
}

func (r *fakeCustomerRepo) Create(_ context.Context, _ *customer.Customer) error { return nil }
func (r *fakeCustomerRepo) FindByID(_ context.Context, id int64) (*customer.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return c, nil
}
func (r *fakeCustomerRepo) List(_ context.Context, _ *customer.CustomerListFilters) ([]customer.Customer, int64, error) {
	return nil, 0, nil
}
func (r *fakeCustomerRepo) AddTotals(_ context.Context, id int64, spent, hours float64) error {
	c, ok := r.customers[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	c.TotalSpent += spent
	c.TotalHours += hours
	return nil
}

type fakeAuditRepo struct {
	events []audit.Event
}

func (r *fakeAuditRepo) Insert(_ context.Context, e *audit.Event) error {
	r.events = append(r.events, *e)
	return nil
}
func (r *fakeAuditRepo) List(_ context.Context, _ *audit.ListFilters) ([]audit.Event, error) {
	return r.events, nil
}

func newService(t *testing.T) (*SubscriptionService, *fakeSubRepo, *fakePlanRepo, *fakeCustomerRepo, *fakeAuditRepo) {
	t.Helper()

	subs := &fakeSubRepo{subs: map[int64]*subscription.SubscriptionActive{}, nextID: 1}
	plans := &fakePlanRepo{plans: map[int64]*plan.SubscriptionPlan{
		12: {
			ID: 12, Name: "10h Bundle", Kind: plan.KindBundle, IsActive: true, Price: 400,
			TimeIncluded: sql.NullInt32{Int32: 600, Valid: true},
			ExpiryDays:   sql.NullInt32{Int32: 30, Valid: true},
		},
		13: {
			ID: 13, Name: "Week Pass", Kind: plan.KindBundle, IsActive: true, Price: 700,
			DaysIncluded: sql.NullInt32{Int32: 7, Valid: true},
			ExpiryDays:   sql.NullInt32{Int32: 14, Valid: true},
		},
		10: {ID: 10, Name: "Hourly", Kind: plan.KindHourly, IsActive: true, Price: 45},
	}}
	customers := &fakeCustomerRepo{customers: map[int64]*customer.Customer{
		1: {ID: 1, FullName: "Dana Cruz"},
	}}
	audits := &fakeAuditRepo{}

	logger := zap.NewNop()
	svc := NewSubscriptionService(subs, plans, customers, auditsvc.NewRecorder(audits, logger), logger)
	svc.now = func() time.Time { return purchaseTime }

	return svc, subs, plans, customers, audits
}

func TestPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds balances and expiry from the plan", func(t *testing.T) {
		svc, _, _, customers, audits := newService(t)

		sub, err := svc.Purchase(ctx, &subscription.PurchaseRequest{CustomerID: 1, PlanID: 12}, 7)
		require.NoError(t, err)

		assert.Equal(t, int32(600), sub.TimeLeft.Int32)
		assert.False(t, sub.DaysLeft.Valid)
		require.True(t, sub.ExpiresAt.Valid)
		assert.Equal(t, purchaseTime.AddDate(0, 0, 30), sub.ExpiresAt.Time)
		assert.NotEmpty(t, sub.SubscriptionRef)

		assert.Equal(t, 400.0, customers.customers[1].TotalSpent)

		require.Len(t, audits.events, 1)
		assert.Equal(t, audit.ActionPlanPurchase, audits.events[0].ActionType)
	})

	t.Run("day pass bundle seeds days_left", func(t *testing.T) {
		svc, _, _, _, _ := newService(t)

		sub, err := svc.Purchase(ctx, &subscription.PurchaseRequest{CustomerID: 1, PlanID: 13}, 7)
		require.NoError(t, err)

		assert.False(t, sub.TimeLeft.Valid)
		assert.Equal(t, int32(7), sub.DaysLeft.Int32)
	})

	t.Run("rejects a non-bundle plan", func(t *testing.T) {
		svc, subs, _, _, _ := newService(t)

		_, err := svc.Purchase(ctx, &subscription.PurchaseRequest{CustomerID: 1, PlanID: 10}, 7)
		require.ErrorIs(t, err, xerrors.ErrValidation)
		assert.Empty(t, subs.subs)
	})

	t.Run("duplicate live subscription for the plan conflicts", func(t *testing.T) {
		svc, subs, _, _, _ := newService(t)

		_, err := svc.Purchase(ctx, &subscription.PurchaseRequest{CustomerID: 1, PlanID: 12}, 7)
		require.NoError(t, err)

		_, err = svc.Purchase(ctx, &subscription.PurchaseRequest{CustomerID: 1, PlanID: 12}, 7)
		require.ErrorIs(t, err, xerrors.ErrConflict)
		assert.Len(t, subs.subs, 1)
	})

	t.Run("exhausted subscription does not block a repurchase", func(t *testing.T) {
		svc, subs, _, _, _ := newService(t)
		subs.subs[99] = &subscription.SubscriptionActive{
			ID: 99, CustomerID: 1, PlanID: 12,
			TimeLeft: sql.NullInt32{Int32: 0, Valid: true},
		}
		subs.nextID = 100

		_, err := svc.Purchase(ctx, &subscription.PurchaseRequest{CustomerID: 1, PlanID: 12}, 7)
		require.NoError(t, err)
	})

	t.Run("unknown plan is not found", func(t *testing.T) {
		svc, _, _, _, _ := newService(t)

		_, err := svc.Purchase(ctx, &subscription.PurchaseRequest{CustomerID: 1, PlanID: 404}, 7)
		require.ErrorIs(t, err, xerrors.ErrNotFound)
	})
}

func TestListByCustomer(t *testing.T) {
	ctx := context.Background()

	svc, subs, _, _, _ := newService(t)
	subs.subs[1] = &subscription.SubscriptionActive{
		ID: 1, CustomerID: 1, PlanID: 12,
		TimeLeft: sql.NullInt32{Int32: 200, Valid: true},
	}
	subs.subs[2] = &subscription.SubscriptionActive{
		ID: 2, CustomerID: 1, PlanID: 12,
		TimeLeft:  sql.NullInt32{Int32: 500, Valid: true},
		ExpiresAt: sql.NullTime{Time: purchaseTime.Add(-time.Hour), Valid: true},
	}

	views, err := svc.ListByCustomer(ctx, 1)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byID := map[int64]subscription.SubscriptionView{}
	for _, v := range views {
		byID[v.ID] = v
	}
	assert.Equal(t, "active", byID[1].Status)
	assert.Equal(t, "expired", byID[2].Status, "past expiry date beats remaining balance")
	assert.Equal(t, "10h Bundle", byID[1].PlanName)
}
