package models

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func TestApplyLoginStreakTable(t *testing.T) {
	day0 := day(0)

	tests := []struct {
		name       string
		lastLogin  *time.Time
		streak     int
		today      time.Time
		wantStreak int
	}{
		{"first ever login", nil, 0, day(0), 1},
		{"same day re-entry", &day0, 3, day(0), 3},
		{"next day extends", &day0, 3, day(1), 4},
		{"two day gap resets", &day0, 3, day(2), 1},
		{"long gap resets", &day0, 9, day(30), 1},
		{"clock regression resets", &day0, 3, day(-1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := User{Streak: tt.streak, LastLogin: tt.lastLogin}
			u.ApplyLogin(tt.today)
			if u.Streak != tt.wantStreak {
				t.Fatalf("streak = %d, want %d", u.Streak, tt.wantStreak)
			}
			if u.LastLogin == nil {
				t.Fatal("last login not set")
			}
			if want := DateOf(tt.today); !u.LastLogin.Equal(want) {
				t.Fatalf("last login = %v, want %v", u.LastLogin, want)
			}
		})
	}
}

func TestApplyLoginDailyXPReset(t *testing.T) {
	day0 := day(0)

	u := User{DailyXP: 120, TotalXP: 500, Streak: 2, LastLogin: &day0}
	u.ApplyLogin(day(0))
	if u.DailyXP != 120 {
		t.Fatalf("same-day login reset daily xp: %d", u.DailyXP)
	}

	u.ApplyLogin(day(1))
	if u.DailyXP != 0 {
		t.Fatalf("day change kept daily xp: %d", u.DailyXP)
	}
	if u.TotalXP != 500 {
		t.Fatalf("day change touched total xp: %d", u.TotalXP)
	}
}

func TestApplyLoginTruncatesToDate(t *testing.T) {
	u := User{}
	u.ApplyLogin(time.Date(2026, 2, 1, 23, 59, 58, 0, time.UTC))
	if got := *u.LastLogin; got != day(0) {
		t.Fatalf("last login not truncated: %v", got)
	}

	// Later the same calendar day is still a same-day no-op.
	u.Streak = 1
	u.DailyXP = 40
	u.ApplyLogin(time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC))
	if u.Streak != 1 || u.DailyXP != 40 {
		t.Fatalf("same-day re-entry mutated state: streak=%d daily=%d", u.Streak, u.DailyXP)
	}
}

func TestAddXPAndGems(t *testing.T) {
	u := User{}
	u.AddXP(30)
	u.AddXP(20)
	u.AddGems(5)
	if u.TotalXP != 50 || u.DailyXP != 50 || u.Gems != 5 {
		t.Fatalf("ledger mismatch: %+v", u)
	}
}
