package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the per-user reward ledger (denormalized for fast dashboard reads).
// Identity lives in the external profile service; we mirror username/email
// locally so the leaderboard can render names without a remote call.
type User struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service
	Username       string `gorm:"index" json:"username"`
	Email          string `json:"email,omitempty"`

	// Reward ledger
	TotalXP int64 `json:"total_xp" gorm:"default:0"`
	DailyXP int64 `json:"daily_xp" gorm:"default:0"`
	Gems    int64 `json:"gems" gorm:"default:0"`

	// Login streak
	Streak    int        `json:"streak" gorm:"default:0"`
	LastLogin *time.Time `json:"last_login,omitempty"` // date precision, UTC midnight

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// DateOf truncates a timestamp to its UTC calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ApplyLogin updates streak, daily XP and last-login for a login on the given
// day. Pure decision table on the date delta:
//   - no previous login → streak starts at 1
//   - same day          → no-op (re-entry is idempotent)
//   - next day          → streak extends
//   - anything else     → streak resets to 1 (gaps and clock regressions alike)
//
// DailyXP is reset whenever the day changed, before any same-day accrual.
func (u *User) ApplyLogin(today time.Time) {
	day := DateOf(today)

	if u.LastLogin == nil {
		u.DailyXP = 0
		u.Streak = 1
		u.LastLogin = &day
		return
	}

	prev := DateOf(*u.LastLogin)
	if day.Equal(prev) {
		return
	}

	u.DailyXP = 0
	if day.Equal(prev.AddDate(0, 0, 1)) {
		u.Streak++
	} else {
		u.Streak = 1
	}
	u.LastLogin = &day
}

// AddXP accrues experience to both the lifetime and same-day totals.
func (u *User) AddXP(amount int64) {
	u.TotalXP += amount
	u.DailyXP += amount
}

// AddGems accrues gems. Gems are earned only, never spent here.
func (u *User) AddGems(amount int64) {
	u.Gems += amount
}
