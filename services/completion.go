// services/completion.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"snowvillage-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReasonAlreadyCompleted marks the expected double-submit outcome. It is a
// result, not an error: the UI treats it as a silent no-op.
const ReasonAlreadyCompleted = "already_completed"

// CompletionResult describes what a CompleteTask call granted. Plain record,
// no formatting — the presentation layer decides what to show.
type CompletionResult struct {
	Granted bool   `json:"granted"`
	Reason  string `json:"reason,omitempty"`

	TaskXP   int64 `json:"task_xp"`
	TaskGems int64 `json:"task_gems"`

	MissionNowComplete bool  `json:"mission_now_complete"`
	MissionXP          int64 `json:"mission_xp"`
	MissionGems        int64 `json:"mission_gems"`

	CompletedCount int `json:"completed_count"`
	TotalCount     int `json:"total_count"`

	Milestone *Milestone `json:"milestone,omitempty"`
}

// CompletionService is the progress engine's write path: it records task
// completions, maintains the per-mission aggregate and applies rewards, all
// in one transaction per call.
type CompletionService struct {
	DB      *gorm.DB
	Catalog *CatalogService
	Users   *UserService
}

func NewCompletionService(db *gorm.DB, catalog *CatalogService, users *UserService) *CompletionService {
	return &CompletionService{DB: db, Catalog: catalog, Users: users}
}

// CompleteTask records a task completion for the user and applies rewards.
//
// Everything runs in a single transaction so a failed write leaves no partial
// state. The sequence of guarantees:
//
//  1. claim the task row — an insert guarded by UNIQUE(user_id, task_id), or
//     a conditional false→true flip. Zero rows affected on both means someone
//     already completed it: return Granted=false, touch nothing.
//  2. lock the mission aggregate — an UPDATE on the MissionProgress row takes
//     a row-level write lock, serializing steps 3–5 across concurrent
//     completions of different tasks in the same mission.
//  3. recount completed tasks for the mission; the stored count only moves up.
//  4. flip mission is_completed with an atomic conditional update; RowsAffected
//     tells whether THIS call caused the transition, so the bonus pays once.
//  5. bump the ledger with relative SQL expressions (no read-modify-write).
//
// Quiz correctness is the caller's concern; by the time this runs the
// completion signal is trusted.
func (s *CompletionService) CompleteTask(externalUserID string, taskID, missionID int, answerPayload string) (*CompletionResult, error) {
	task, err := s.Catalog.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	if task.MissionID != missionID {
		return nil, fmt.Errorf("task %d does not belong to mission %d: %w", taskID, missionID, ErrTaskNotFound)
	}
	mission, err := s.Catalog.GetMission(missionID)
	if err != nil {
		return nil, err
	}
	totalTasks := s.Catalog.TaskCount(missionID)

	user, err := s.Users.EnsureUser(externalUserID)
	if err != nil {
		return nil, err
	}

	result := &CompletionResult{
		TaskXP:     task.XPReward,
		TaskGems:   task.GemReward,
		TotalCount: totalTasks,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		// Step 1: claim the task.
		tp := models.TaskProgress{
			ID:            uuid.NewString(),
			UserID:        user.ID,
			TaskID:        taskID,
			MissionID:     missionID,
			IsCompleted:   true,
			CompletedAt:   &now,
			AnswerPayload: answerPayload,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "task_id"}},
			DoNothing: true,
		}).Create(&tp)
		if res.Error != nil {
			return fmt.Errorf("failed to record task completion: %w", res.Error)
		}
		claimed := res.RowsAffected == 1

		if !claimed {
			// A row exists from an earlier attempt; only the single
			// false→true flip wins the reward.
			res = tx.Model(&models.TaskProgress{}).
				Where("user_id = ? AND task_id = ? AND is_completed = ?", user.ID, taskID, false).
				Updates(map[string]interface{}{
					"is_completed":   true,
					"completed_at":   now,
					"answer_payload": answerPayload,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to update task completion: %w", res.Error)
			}
			claimed = res.RowsAffected == 1
		}

		if !claimed {
			result.Granted = false
			result.Reason = ReasonAlreadyCompleted
			result.TaskXP = 0
			result.TaskGems = 0
			var mp models.MissionProgress
			if err := tx.Where("user_id = ? AND mission_id = ?", user.ID, missionID).First(&mp).Error; err == nil {
				result.CompletedCount = mp.CompletedTaskCount
				result.MissionNowComplete = false
			}
			return nil
		}

		// Step 2: ensure the mission aggregate row exists, then lock it.
		mp := models.MissionProgress{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			MissionID: missionID,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "mission_id"}},
			DoNothing: true,
		}).Create(&mp).Error; err != nil {
			return fmt.Errorf("failed to ensure mission progress: %w", err)
		}
		// The touch write takes the row lock; concurrent completions for the
		// same (user, mission) queue up here and recount after we commit.
		if err := tx.Model(&models.MissionProgress{}).
			Where("user_id = ? AND mission_id = ?", user.ID, missionID).
			Update("updated_at", now).Error; err != nil {
			return fmt.Errorf("failed to lock mission progress: %w", err)
		}

		// Step 3: recount and bump the aggregate (monotonic).
		var completed int64
		if err := tx.Model(&models.TaskProgress{}).
			Where("user_id = ? AND mission_id = ? AND is_completed = ?", user.ID, missionID, true).
			Count(&completed).Error; err != nil {
			return fmt.Errorf("failed to count completed tasks: %w", err)
		}
		if err := tx.Model(&models.MissionProgress{}).
			Where("user_id = ? AND mission_id = ? AND completed_task_count < ?", user.ID, missionID, completed).
			Update("completed_task_count", completed).Error; err != nil {
			return fmt.Errorf("failed to update mission progress count: %w", err)
		}
		result.CompletedCount = int(completed)

		// Step 4: mission completion decision. The conditional update fires
		// at most once per (user, mission); a zero-task mission never fires.
		if totalTasks > 0 && completed >= int64(totalTasks) {
			res = tx.Model(&models.MissionProgress{}).
				Where("user_id = ? AND mission_id = ? AND is_completed = ? AND completed_task_count >= ?",
					user.ID, missionID, false, totalTasks).
				Updates(map[string]interface{}{
					"is_completed": true,
					"completed_at": now,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to complete mission: %w", res.Error)
			}
			if res.RowsAffected == 1 {
				result.MissionNowComplete = true
				result.MissionXP = mission.XPReward
				result.MissionGems = mission.GemReward
			}
		}

		// Step 5: apply rewards to the ledger.
		xp := task.XPReward + result.MissionXP
		gems := task.GemReward + result.MissionGems
		if err := tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]interface{}{
				"total_xp": gorm.Expr("total_xp + ?", xp),
				"daily_xp": gorm.Expr("daily_xp + ?", xp),
				"gems":     gorm.Expr("gems + ?", gems),
			}).Error; err != nil {
			return fmt.Errorf("failed to apply rewards: %w", err)
		}

		// Milestone check rides in the same transaction so the notice is
		// durable exactly when the completion is.
		milestone, err := s.claimMilestone(tx, user.ID)
		if err != nil {
			return err
		}
		result.Milestone = milestone

		result.Granted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Granted {
		log.Printf("🎯 Task completed: user=%s task=%d mission=%d (+%dxp, +%d💎) mission_complete=%t",
			externalUserID, taskID, missionID, result.TaskXP+result.MissionXP, result.TaskGems+result.MissionGems, result.MissionNowComplete)
	}
	return result, nil
}

// claimMilestone fires the threshold table against the user's total completed
// count and persists the notice. UNIQUE(user_id, threshold) plus the
// do-nothing insert makes delivery exactly-once even across racing calls.
func (s *CompletionService) claimMilestone(tx *gorm.DB, userID string) (*Milestone, error) {
	var total int64
	if err := tx.Model(&models.TaskProgress{}).
		Where("user_id = ? AND is_completed = ?", userID, true).
		Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count total completions: %w", err)
	}

	milestone := MilestoneFor(int(total))
	if milestone == nil {
		return nil, nil
	}

	notice := models.MilestoneNotice{
		ID:        uuid.NewString(),
		UserID:    userID,
		Threshold: milestone.Threshold,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "threshold"}},
		DoNothing: true,
	}).Create(&notice)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to record milestone notice: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil // already shown in an earlier session
	}
	return milestone, nil
}

// TaskState pairs a catalog task with the user's completion flag.
type TaskState struct {
	models.Task
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// MissionState pairs a catalog mission with the user's aggregate progress.
type MissionState struct {
	models.Mission
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	IsCompleted    bool    `json:"is_completed"`
	Percent        float64 `json:"percent"`
}

// TasksWithProgress returns the mission's tasks merged with the user's
// completion state, in catalog order.
func (s *CompletionService) TasksWithProgress(externalUserID string, missionID int) ([]TaskState, error) {
	tasks, err := s.Catalog.ListTasksForMission(missionID)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.GetByExternalID(externalUserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// No ledger yet means nothing completed.
			states := make([]TaskState, len(tasks))
			for i, t := range tasks {
				states[i] = TaskState{Task: t}
			}
			return states, nil
		}
		return nil, err
	}

	var rows []models.TaskProgress
	if err := s.DB.Where("user_id = ? AND mission_id = ? AND is_completed = ?", user.ID, missionID, true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	completedAt := make(map[int]*time.Time, len(rows))
	for _, r := range rows {
		completedAt[r.TaskID] = r.CompletedAt
	}

	states := make([]TaskState, len(tasks))
	for i, t := range tasks {
		at, done := completedAt[t.ID]
		states[i] = TaskState{Task: t, IsCompleted: done, CompletedAt: at}
	}
	return states, nil
}

// MissionsWithProgress returns every catalog mission with the user's
// aggregate state, for the mission path view. Percent is clamped and a
// zero-task mission reports 0 rather than dividing by zero.
func (s *CompletionService) MissionsWithProgress(externalUserID string) ([]MissionState, error) {
	missions := s.Catalog.ListMissions()
	states := make([]MissionState, len(missions))
	for i, m := range missions {
		states[i] = MissionState{Mission: m, TotalTasks: s.Catalog.TaskCount(m.ID)}
	}

	user, err := s.Users.GetByExternalID(externalUserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return states, nil
		}
		return nil, err
	}

	var rows []models.MissionProgress
	if err := s.DB.Where("user_id = ?", user.ID).Find(&rows).Error; err != nil {
		return nil, err
	}
	byMission := make(map[int]models.MissionProgress, len(rows))
	for _, r := range rows {
		byMission[r.MissionID] = r
	}

	for i := range states {
		mp, ok := byMission[states[i].ID]
		if !ok {
			continue
		}
		states[i].CompletedTasks = mp.CompletedTaskCount
		states[i].IsCompleted = mp.IsCompleted
		if states[i].TotalTasks > 0 {
			pct := float64(mp.CompletedTaskCount) / float64(states[i].TotalTasks) * 100
			if pct > 100 {
				pct = 100
			}
			states[i].Percent = pct
		}
	}
	return states, nil
}
