package timeacct

import (
	"database/sql"
	"testing"
	"time"

	"sparkhub-service/internal/domain/plan"
	"sparkhub-service/internal/domain/playsession"
	"sparkhub-service/internal/domain/subscription"
)

var base = time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)

func TestElapsedMinutes(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"zero at start", base, 0},
		{"truncates partial minute", base.Add(90 * time.Second), 1},
		{"whole hours", base.Add(2 * time.Hour), 120},
		{"clamped when clock reads before start", base.Add(-10 * time.Minute), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ElapsedMinutes(base, tt.now); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestBillHourly(t *testing.T) {
	tests := []struct {
		name       string
		elapsed    time.Duration
		price      float64
		wantHours  int
		wantAmount float64
	}{
		{"one minute bills a full hour", time.Minute, 45, 1, 45},
		{"exactly one hour", time.Hour, 45, 1, 45},
		{"61 minutes bills two hours", 61 * time.Minute, 45, 2, 90},
		{"three and a half hours bills four", 210 * time.Minute, 50, 4, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BillHourly(base, base.Add(tt.elapsed), tt.price)
			if got.BilledHours != tt.wantHours {
				t.Fatalf("expected %d billed hours, got %d", tt.wantHours, got.BilledHours)
			}
			if got.AmountDue != tt.wantAmount {
				t.Fatalf("expected amount due %.2f, got %.2f", tt.wantAmount, got.AmountDue)
			}
		})
	}
}

func TestRemainingForStraight(t *testing.T) {
	p := &plan.SubscriptionPlan{
		Kind:         plan.KindStraight,
		TimeIncluded: sql.NullInt32{Int32: 120, Valid: true},
	}

	tests := []struct {
		name       string
		elapsed    time.Duration
		wantMins   int
		wantStatus Status
	}{
		{"one minute short stays active", 119 * time.Minute, 1, StatusActive},
		{"exactly consumed reads expired", 120 * time.Minute, 0, StatusExpired},
		{"overrun reads expired", 150 * time.Minute, 0, StatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemainingForStraight(p, base, base.Add(tt.elapsed))
			if got.Status != tt.wantStatus {
				t.Fatalf("expected status %s, got %s", tt.wantStatus, got.Status)
			}
			if got.Minutes != tt.wantMins {
				t.Fatalf("expected %d minutes left, got %d", tt.wantMins, got.Minutes)
			}
		})
	}
}

func TestRemainingForBundle(t *testing.T) {
	tests := []struct {
		name       string
		sub        subscription.SubscriptionActive
		elapsed    time.Duration
		wantMins   int
		wantDays   int
		wantStatus Status
	}{
		{
			name:       "time bundle projects elapsed minutes",
			sub:        subscription.SubscriptionActive{TimeLeft: sql.NullInt32{Int32: 100, Valid: true}},
			elapsed:    30 * time.Minute,
			wantMins:   70,
			wantStatus: StatusActive,
		},
		{
			name:       "time bundle projection never goes negative",
			sub:        subscription.SubscriptionActive{TimeLeft: sql.NullInt32{Int32: 100, Valid: true}},
			elapsed:    150 * time.Minute,
			wantMins:   0,
			wantStatus: StatusExpired,
		},
		{
			name: "date rule wins even with a large balance",
			sub: subscription.SubscriptionActive{
				TimeLeft:  sql.NullInt32{Int32: 500, Valid: true},
				ExpiresAt: sql.NullTime{Time: base.Add(-24 * time.Hour), Valid: true},
			},
			elapsed:    5 * time.Minute,
			wantMins:   495,
			wantStatus: StatusExpired,
		},
		{
			name:       "day pass is not consumed during the session",
			sub:        subscription.SubscriptionActive{DaysLeft: sql.NullInt32{Int32: 1, Valid: true}},
			elapsed:    8 * time.Hour,
			wantDays:   1,
			wantStatus: StatusActive,
		},
		{
			name:       "exhausted day passes read expired",
			sub:        subscription.SubscriptionActive{DaysLeft: sql.NullInt32{Int32: 0, Valid: true}},
			elapsed:    time.Minute,
			wantDays:   0,
			wantStatus: StatusExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemainingForBundle(&tt.sub, base, base.Add(tt.elapsed))
			if got.Status != tt.wantStatus {
				t.Fatalf("expected status %s, got %s", tt.wantStatus, got.Status)
			}
			if got.Minutes != tt.wantMins {
				t.Fatalf("expected %d minutes, got %d", tt.wantMins, got.Minutes)
			}
			if got.Days != tt.wantDays {
				t.Fatalf("expected %d days, got %d", tt.wantDays, got.Days)
			}
		})
	}
}

func TestRemainingSplit(t *testing.T) {
	r := Remaining{Minutes: 135}
	h, m := r.Split()
	if h != 2 || m != 15 {
		t.Fatalf("expected 2h15m, got %dh%dm", h, m)
	}
}

func TestStatusBadge(t *testing.T) {
	hourly := &plan.SubscriptionPlan{Kind: plan.KindHourly}
	straight := &plan.SubscriptionPlan{Kind: plan.KindStraight, TimeIncluded: sql.NullInt32{Int32: 60, Valid: true}}

	tests := []struct {
		name string
		p    *plan.SubscriptionPlan
		sub  *subscription.SubscriptionActive
		want Status
	}{
		{"hourly has no expiry", hourly, nil, StatusNoExpiry},
		{"nothing configured has no expiry", nil, nil, StatusNoExpiry},
		{"straight plan without session is active", straight, nil, StatusActive},
		{
			name: "live bundle is active",
			sub: &subscription.SubscriptionActive{
				TimeLeft:  sql.NullInt32{Int32: 40, Valid: true},
				ExpiresAt: sql.NullTime{Time: base.Add(48 * time.Hour), Valid: true},
			},
			want: StatusActive,
		},
		{
			name: "expired date beats remaining balance",
			sub: &subscription.SubscriptionActive{
				TimeLeft:  sql.NullInt32{Int32: 500, Valid: true},
				ExpiresAt: sql.NullTime{Time: base.Add(-time.Hour), Valid: true},
			},
			want: StatusExpired,
		},
		{
			name: "exhausted balance beats future date",
			sub: &subscription.SubscriptionActive{
				TimeLeft:  sql.NullInt32{Int32: 0, Valid: true},
				ExpiresAt: sql.NullTime{Time: base.Add(time.Hour), Valid: true},
			},
			want: StatusExpired,
		},
		{
			name: "subscription with nothing configured has no expiry",
			sub:  &subscription.SubscriptionActive{},
			want: StatusNoExpiry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusBadge(tt.p, tt.sub, base); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSettleLogout(t *testing.T) {
	hourly := &plan.SubscriptionPlan{Kind: plan.KindHourly, Price: 45}

	t.Run("hourly rounds up and bills", func(t *testing.T) {
		sess := &playsession.Session{StartedAt: base}
		got := SettleLogout(hourly, nil, sess, base.Add(61*time.Minute))
		if got.BilledHours != 2 || got.AmountDue != 90 {
			t.Fatalf("expected 2h/90.00, got %dh/%.2f", got.BilledHours, got.AmountDue)
		}
		if got.MinutesToDeduct != 0 || got.DayPassesToUse != 0 {
			t.Fatalf("hourly settlement must not touch a subscription balance")
		}
	})

	t.Run("time bundle deducts the floor of elapsed minutes", func(t *testing.T) {
		sub := &subscription.SubscriptionActive{TimeLeft: sql.NullInt32{Int32: 100, Valid: true}}
		sess := &playsession.Session{StartedAt: base, SubscriptionID: sql.NullInt64{Int64: 1, Valid: true}}
		got := SettleLogout(nil, sub, sess, base.Add(30*time.Minute+45*time.Second))
		if got.MinutesToDeduct != 30 {
			t.Fatalf("expected floor deduction of 30, got %d", got.MinutesToDeduct)
		}
		if got.AmountDue != 0 {
			t.Fatalf("bundle draw must not bill, got %.2f", got.AmountDue)
		}
	})

	t.Run("time bundle deduction is clamped at the balance", func(t *testing.T) {
		sub := &subscription.SubscriptionActive{TimeLeft: sql.NullInt32{Int32: 100, Valid: true}}
		sess := &playsession.Session{StartedAt: base}
		got := SettleLogout(nil, sub, sess, base.Add(150*time.Minute))
		if got.MinutesToDeduct != 100 {
			t.Fatalf("expected clamped deduction of 100, got %d", got.MinutesToDeduct)
		}
	})

	t.Run("day pass is consumed as one whole unit", func(t *testing.T) {
		sub := &subscription.SubscriptionActive{DaysLeft: sql.NullInt32{Int32: 1, Valid: true}}
		sess := &playsession.Session{StartedAt: base}
		got := SettleLogout(nil, sub, sess, base.Add(11*time.Hour))
		if got.DayPassesToUse != 1 {
			t.Fatalf("expected one day pass used, got %d", got.DayPassesToUse)
		}
	})

	t.Run("custom session settles at its ad hoc price", func(t *testing.T) {
		sess := &playsession.Session{
			StartedAt:     base,
			CustomPrice:   sql.NullFloat64{Float64: 120, Valid: true},
			CustomMinutes: sql.NullInt32{Int32: 60, Valid: true},
		}
		got := SettleLogout(nil, nil, sess, base.Add(30*time.Minute))
		if got.AmountDue != 120 {
			t.Fatalf("expected 120.00 due, got %.2f", got.AmountDue)
		}
		if got.Status != StatusActive {
			t.Fatalf("expected active, got %s", got.Status)
		}
	})
}
