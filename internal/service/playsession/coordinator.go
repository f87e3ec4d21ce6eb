// internal/service/playsession/coordinator.go
package playsession

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sparkhub-service/internal/domain/audit"
	"sparkhub-service/internal/domain/customer"
	"sparkhub-service/internal/domain/plan"
	"sparkhub-service/internal/domain/playsession"
	"sparkhub-service/internal/domain/subscription"
	xerrors "sparkhub-service/internal/pkg/errors"
	auditsvc "sparkhub-service/internal/service/audit"
	"sparkhub-service/internal/timeacct"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Coordinator drives a session through NotStarted -> Open -> Closed. Every
// check is read-then-write within one request; the storage collaborator only
// offers per-record writes, so a failure between writes after the close is
// surfaced as an inconsistency rather than rolled back.
type Coordinator struct {
	sessionRepo  playsession.Repository
	customerRepo customer.Repository
	planRepo     plan.Repository
	subRepo      subscription.Repository
	recorder     *auditsvc.Recorder
	logger       *zap.Logger

	defaultBranch string
	now           func() time.Time
}

func NewCoordinator(
	sessionRepo playsession.Repository,
	customerRepo customer.Repository,
	planRepo plan.Repository,
	subRepo subscription.Repository,
	recorder *auditsvc.Recorder,
	defaultBranch string,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		sessionRepo:   sessionRepo,
		customerRepo:  customerRepo,
		planRepo:      planRepo,
		subRepo:       subRepo,
		recorder:      recorder,
		logger:        logger,
		defaultBranch: defaultBranch,
		now:           time.Now,
	}
}

// Start opens a session for a customer. All validation happens before any
// record is written: one open session per customer, funding one-of rule, and
// the per-kind funding checks.
func (c *Coordinator) Start(ctx context.Context, req *playsession.StartSessionRequest, actor int64) (*playsession.Session, error) {
	if err := req.Funding.Validate(); err != nil {
		return nil, err
	}

	cust, err := c.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, xerrors.Wrap(err, "customer lookup failed")
	}

	if open, err := c.sessionRepo.FindOpenByCustomer(ctx, req.CustomerID); err == nil {
		return nil, xerrors.Wrapf(xerrors.ErrConflict,
			"customer already has open session %s", open.SessionRef)
	} else if !errors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	now := c.now()
	branch := req.Branch
	if branch == "" {
		branch = c.defaultBranch
	}

	sess := &playsession.Session{
		SessionRef: ulid.Make().String(),
		CustomerID: req.CustomerID,
		Branch:     branch,
		StartedAt:  now,
	}

	switch {
	case req.Funding.PlanID != nil:
		p, err := c.planRepo.FindByID(ctx, *req.Funding.PlanID)
		if err != nil {
			return nil, xerrors.Wrap(err, "plan lookup failed")
		}
		if !p.IsActive {
			return nil, xerrors.Wrap(xerrors.ErrValidation, "plan is not active")
		}
		if p.Kind == plan.KindBundle {
			return nil, xerrors.Wrap(xerrors.ErrValidation, "bundle plans fund sessions through a purchased subscription")
		}
		if !p.InWindow(now) {
			return nil, xerrors.Wrapf(xerrors.ErrValidation,
				"plan %q is only valid %s-%s", p.Name, p.TimeValidStart.String, p.TimeValidEnd.String)
		}
		sess.PlanID = sql.NullInt64{Int64: p.ID, Valid: true}

	case req.Funding.SubscriptionID != nil:
		sub, err := c.subRepo.FindByID(ctx, *req.Funding.SubscriptionID)
		if err != nil {
			return nil, xerrors.Wrap(err, "subscription lookup failed")
		}
		if sub.CustomerID != req.CustomerID {
			return nil, xerrors.Wrap(xerrors.ErrValidation, "subscription belongs to another customer")
		}
		if sub.Expired(now) {
			return nil, xerrors.Wrap(xerrors.ErrConflict, "subscription is expired")
		}
		sess.SubscriptionID = sql.NullInt64{Int64: sub.ID, Valid: true}
		sess.PlanID = sql.NullInt64{Int64: sub.PlanID, Valid: true}

	case req.Funding.Custom != nil:
		sess.CustomPrice = sql.NullFloat64{Float64: req.Funding.Custom.Price, Valid: true}
		sess.CustomMinutes = sql.NullInt32{Int32: req.Funding.Custom.Minutes, Valid: true}
	}

	if err := c.sessionRepo.Create(ctx, sess); err != nil {
		c.logger.Error("failed to create session", zap.Error(err))
		return nil, err
	}

	c.recorder.Record(ctx, audit.ActionSessionStart,
		fmt.Sprintf("%s logged in at %s", cust.FullName, branch),
		actor,
		map[string]interface{}{
			"session_id":  sess.ID,
			"session_ref": sess.SessionRef,
			"customer_id": cust.ID,
		},
	)

	c.logger.Info("session started",
		zap.Int64("session_id", sess.ID),
		zap.Int64("customer_id", cust.ID),
		zap.String("branch", branch),
	)

	return sess, nil
}

// End closes a session: computes the settlement, draws down the funding
// subscription, stamps ended_at, and updates hourly customer totals. Each
// write is an independent call; once the session row is closed, a later
// write failure is reported as an inconsistency and never retried here.
func (c *Coordinator) End(ctx context.Context, sessionID int64, actor int64) (*playsession.Receipt, error) {
	sess, err := c.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, xerrors.Wrap(err, "session lookup failed")
	}
	if !sess.Open() {
		return nil, xerrors.Wrapf(xerrors.ErrAlreadyClosed,
			"session %s ended at %s", sess.SessionRef, sess.EndedAt.Time.Format(time.RFC3339))
	}

	var p *plan.SubscriptionPlan
	if sess.PlanID.Valid {
		if p, err = c.planRepo.FindByID(ctx, sess.PlanID.Int64); err != nil {
			return nil, xerrors.Wrap(err, "funding plan lookup failed")
		}
	}

	var sub *subscription.SubscriptionActive
	if sess.SubscriptionID.Valid {
		if sub, err = c.subRepo.FindByID(ctx, sess.SubscriptionID.Int64); err != nil {
			return nil, xerrors.Wrap(err, "funding subscription lookup failed")
		}
	}

	now := c.now()
	settlement := timeacct.SettleLogout(p, sub, sess, now)

	if err := c.sessionRepo.Close(ctx, sessionID, now, settlement.AmountDue); err != nil {
		return nil, err
	}
	sess.EndedAt = sql.NullTime{Time: now, Valid: true}
	sess.AmountCharged = sql.NullFloat64{Float64: settlement.AmountDue, Valid: true}

	receipt := &playsession.Receipt{
		Session:     *sess,
		AmountDue:   settlement.AmountDue,
		BilledHours: settlement.BilledHours,
		MinutesUsed: settlement.ElapsedMinutes,
	}

	// The session row is closed; everything from here on is best-effort
	// per-record persistence whose failure is an inconsistency report.
	var inconsistent []string

	if sub != nil {
		timeLeft, daysLeft := drawDown(sub, settlement)
		if err := c.subRepo.UpdateBalances(ctx, sub.ID, timeLeft, daysLeft); err != nil {
			c.logger.Error("session closed but subscription balance not decremented",
				zap.Int64("session_id", sessionID),
				zap.Int64("subscription_id", sub.ID),
				zap.Error(err),
			)
			inconsistent = append(inconsistent, "subscription balance")
		} else {
			if timeLeft.Valid {
				receipt.TimeLeft = &timeLeft.Int32
			}
			if daysLeft.Valid {
				receipt.DaysLeft = &daysLeft.Int32
			}
		}
	}

	if p != nil && p.Kind == plan.KindHourly {
		hours := float64(settlement.ElapsedMinutes) / 60
		if err := c.customerRepo.AddTotals(ctx, sess.CustomerID, settlement.AmountDue, hours); err != nil {
			c.logger.Error("session closed but customer totals not updated",
				zap.Int64("session_id", sessionID),
				zap.Int64("customer_id", sess.CustomerID),
				zap.Error(err),
			)
			inconsistent = append(inconsistent, "customer totals")
		}
	}

	c.recorder.Record(ctx, audit.ActionSessionEnd,
		fmt.Sprintf("session %s closed, %d min, %.2f due", sess.SessionRef, settlement.ElapsedMinutes, settlement.AmountDue),
		actor,
		map[string]interface{}{
			"session_id":      sessionID,
			"elapsed_minutes": settlement.ElapsedMinutes,
			"amount_due":      settlement.AmountDue,
		},
	)

	if len(inconsistent) > 0 {
		return receipt, xerrors.Wrapf(xerrors.ErrInconsistentState,
			"session %s closed but not persisted: %v", sess.SessionRef, inconsistent)
	}

	c.logger.Info("session ended",
		zap.Int64("session_id", sessionID),
		zap.Int("elapsed_minutes", settlement.ElapsedMinutes),
		zap.Float64("amount_due", settlement.AmountDue),
	)

	return receipt, nil
}

// Enrich loads a session with its collaborator snapshots and the engine's
// display projection as of now. Read-only.
func (c *Coordinator) Enrich(ctx context.Context, sessionID int64) (*playsession.EnrichedSession, error) {
	sess, err := c.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return c.enrich(ctx, sess), nil
}

// ListActive returns the open sessions for a branch, enriched.
func (c *Coordinator) ListActive(ctx context.Context, branch string) ([]playsession.EnrichedSession, error) {
	sessions, err := c.sessionRepo.ListOpen(ctx, branch)
	if err != nil {
		return nil, err
	}

	enriched := make([]playsession.EnrichedSession, 0, len(sessions))
	for i := range sessions {
		enriched = append(enriched, *c.enrich(ctx, &sessions[i]))
	}
	return enriched, nil
}

func (c *Coordinator) enrich(ctx context.Context, sess *playsession.Session) *playsession.EnrichedSession {
	now := c.now()
	view := &playsession.EnrichedSession{
		Session:        *sess,
		ElapsedMinutes: timeacct.ElapsedMinutes(sess.StartedAt, now),
		AsOf:           now,
	}

	if cust, err := c.customerRepo.FindByID(ctx, sess.CustomerID); err == nil {
		view.Customer = cust
	}

	var p *plan.SubscriptionPlan
	if sess.PlanID.Valid {
		if p, _ = c.planRepo.FindByID(ctx, sess.PlanID.Int64); p != nil {
			view.Plan = p
		}
	}

	var sub *subscription.SubscriptionActive
	if sess.SubscriptionID.Valid {
		if sub, _ = c.subRepo.FindByID(ctx, sess.SubscriptionID.Int64); sub != nil {
			view.Subscription = sub
		}
	}

	switch {
	case sub != nil:
		rem := timeacct.RemainingForBundle(sub, sess.StartedAt, now)
		if sub.TimeBased() {
			view.RemainingMins = &rem.Minutes
		} else {
			view.RemainingDays = &rem.Days
		}
		view.Status = string(rem.Status)
	case p != nil && p.Kind == plan.KindHourly:
		view.Status = string(timeacct.StatusNoExpiry)
	case p != nil && p.TimeIncluded.Valid:
		rem := timeacct.RemainingForStraight(p, sess.StartedAt, now)
		view.RemainingMins = &rem.Minutes
		view.Status = string(rem.Status)
	default:
		view.Status = string(timeacct.StatusBadge(p, nil, now))
	}

	return view
}

// drawDown applies the settlement to the subscription balances, clamped so
// a stored balance never goes negative.
func drawDown(sub *subscription.SubscriptionActive, settlement timeacct.Settlement) (timeLeft, daysLeft sql.NullInt32) {
	timeLeft = sub.TimeLeft
	daysLeft = sub.DaysLeft

	if settlement.MinutesToDeduct > 0 && timeLeft.Valid {
		left := timeLeft.Int32 - int32(settlement.MinutesToDeduct)
		if left < 0 {
			left = 0
		}
		timeLeft.Int32 = left
	}
	if settlement.DayPassesToUse > 0 && daysLeft.Valid {
		left := daysLeft.Int32 - int32(settlement.DayPassesToUse)
		if left < 0 {
			left = 0
		}
		daysLeft.Int32 = left
	}
	return timeLeft, daysLeft
}
