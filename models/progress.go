package models

import (
	"time"
)

// TaskProgress records one user's completion of one catalog task.
// The UNIQUE(user_id, task_id) constraint is the idempotency guard: a task
// grants its reward on the insert (or the single false→true flip) and never
// again.
type TaskProgress struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string `gorm:"not null;uniqueIndex:idx_user_task;index:idx_user_mission" json:"user_id"`
	TaskID    int    `gorm:"not null;uniqueIndex:idx_user_task" json:"task_id"`
	MissionID int    `gorm:"not null;index:idx_user_mission" json:"mission_id"`

	IsCompleted   bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	AnswerPayload string     `gorm:"type:text" json:"answer_payload,omitempty"` // serialized answer, stored verbatim

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// MissionProgress is the per-(user, mission) aggregate. completed_task_count
// is monotonically non-decreasing and always equals the count of completed
// TaskProgress rows for the mission; is_completed flips true exactly once,
// when the count reaches the mission's total.
type MissionProgress struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string `gorm:"not null;uniqueIndex:idx_user_mission_progress" json:"user_id"`
	MissionID int    `gorm:"not null;uniqueIndex:idx_user_mission_progress" json:"mission_id"`

	CompletedTaskCount int        `gorm:"default:0" json:"completed_task_count"`
	IsCompleted        bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// MilestoneNotice persists that a milestone notification has been delivered
// to a user. UNIQUE(user_id, threshold) makes delivery exactly-once across
// sessions — the notice row is written in the same transaction as the task
// completion that crossed the threshold.
type MilestoneNotice struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string `gorm:"not null;uniqueIndex:idx_user_milestone" json:"user_id"`
	Threshold int    `gorm:"not null;uniqueIndex:idx_user_milestone" json:"threshold"`

	NotifiedAt time.Time `json:"notified_at" gorm:"autoCreateTime"`
}
