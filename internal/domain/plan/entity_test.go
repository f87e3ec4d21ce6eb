package plan

import (
	"database/sql"
	"testing"
	"time"
)

func nullInt(v int32) sql.NullInt32 {
	return sql.NullInt32{Int32: v, Valid: true}
}

func nullStr(v string) sql.NullString {
	return sql.NullString{String: v, Valid: true}
}

func TestSubscriptionPlanValidate(t *testing.T) {
	tests := []struct {
		name    string
		plan    SubscriptionPlan
		wantErr bool
	}{
		{
			name: "valid hourly",
			plan: SubscriptionPlan{Name: "Hourly", Kind: KindHourly, Price: 45},
		},
		{
			name:    "straight without included time",
			plan:    SubscriptionPlan{Name: "2h", Kind: KindStraight, Price: 80},
			wantErr: true,
		},
		{
			name: "valid straight",
			plan: SubscriptionPlan{Name: "2h", Kind: KindStraight, Price: 80, TimeIncluded: nullInt(120)},
		},
		{
			name: "valid time bundle",
			plan: SubscriptionPlan{
				Name: "10h", Kind: KindBundle, Price: 400,
				TimeIncluded: nullInt(600), ExpiryDays: nullInt(30),
			},
		},
		{
			name: "valid day-pass bundle",
			plan: SubscriptionPlan{
				Name: "Week", Kind: KindBundle, Price: 700,
				DaysIncluded: nullInt(7), ExpiryDays: nullInt(14),
			},
		},
		{
			name: "bundle with both balances",
			plan: SubscriptionPlan{
				Name: "Both", Kind: KindBundle, Price: 500,
				TimeIncluded: nullInt(600), DaysIncluded: nullInt(7), ExpiryDays: nullInt(30),
			},
			wantErr: true,
		},
		{
			name: "bundle with neither balance",
			plan: SubscriptionPlan{
				Name: "Neither", Kind: KindBundle, Price: 500, ExpiryDays: nullInt(30),
			},
			wantErr: true,
		},
		{
			name: "bundle without expiry",
			plan: SubscriptionPlan{
				Name: "Forever", Kind: KindBundle, Price: 400, TimeIncluded: nullInt(600),
			},
			wantErr: true,
		},
		{
			name: "valid timed window",
			plan: SubscriptionPlan{
				Name: "Night", Kind: KindTimed, Price: 100,
				TimeValidStart: nullStr("18:00"), TimeValidEnd: nullStr("23:00"),
			},
		},
		{
			name: "timed window out of order",
			plan: SubscriptionPlan{
				Name: "Backwards", Kind: KindTimed, Price: 100,
				TimeValidStart: nullStr("23:00"), TimeValidEnd: nullStr("18:00"),
			},
			wantErr: true,
		},
		{
			name: "timed window malformed",
			plan: SubscriptionPlan{
				Name: "Garbled", Kind: KindTimed, Price: 100,
				TimeValidStart: nullStr("6pm"), TimeValidEnd: nullStr("23:00"),
			},
			wantErr: true,
		},
		{
			name:    "timed window missing",
			plan:    SubscriptionPlan{Name: "Windowless", Kind: KindTimed, Price: 100},
			wantErr: true,
		},
		{
			name:    "negative price",
			plan:    SubscriptionPlan{Name: "Refund", Kind: KindHourly, Price: -1},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			plan:    SubscriptionPlan{Name: "Mystery", Kind: "weekly", Price: 10},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestInWindow(t *testing.T) {
	night := SubscriptionPlan{
		Kind:           KindTimed,
		TimeValidStart: nullStr("18:00"),
		TimeValidEnd:   nullStr("23:00"),
	}

	at := func(hour, min int) time.Time {
		return time.Date(2025, 6, 14, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before window", at(10, 0), false},
		{"at window start", at(18, 0), true},
		{"inside window", at(20, 30), true},
		{"at window end is outside", at(23, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := night.InWindow(tt.now); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}

	t.Run("non-timed plans are always in window", func(t *testing.T) {
		hourly := SubscriptionPlan{Kind: KindHourly}
		if !hourly.InWindow(at(3, 0)) {
			t.Fatal("hourly plan should not be window-constrained")
		}
	})
}
