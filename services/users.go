// services/users.go
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

// Gems granted to every new ledger so first-day users have something to show.
const welcomeGems = 50

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// EnsureUser ensures a ledger row exists for the external user (idempotent).
// The insert is conflict-guarded on external_user_id so two concurrent first
// requests both land on the same ledger instead of one failing the unique
// index.
func (s *UserService) EnsureUser(externalUserID string) (*models.User, error) {
	fresh := models.User{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		Gems:           welcomeGems,
	}
	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_user_id"}},
		DoNothing: true,
	}).Create(&fresh)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return &fresh, nil
	}

	var user models.User
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByExternalID fetches the ledger for an external user id.
func (s *UserService) GetByExternalID(externalUserID string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLogin applies the streak/daily-XP decision table for a login on the
// given day and persists the result. Same-day re-entries are no-ops.
func (s *UserService) UpdateLogin(externalUserID string, today time.Time) (*models.User, error) {
	var updated *models.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("external_user_id = ?", externalUserID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		user.ApplyLogin(today)
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		updated = &models.User{}
		*updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("🔥 Login recorded: %s → streak=%d, daily_xp=%d", externalUserID, updated.Streak, updated.DailyXP)
	return updated, nil
}

// ResetAccount wipes a user's progress, notices and ledger back to the
// welcome state. This is the only path that ever deletes progress rows.
func (s *UserService) ResetAccount(externalUserID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("external_user_id = ?", externalUserID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.TaskProgress{}).Error; err != nil {
			return fmt.Errorf("failed to delete task progress: %w", err)
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.MissionProgress{}).Error; err != nil {
			return fmt.Errorf("failed to delete mission progress: %w", err)
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.MilestoneNotice{}).Error; err != nil {
			return fmt.Errorf("failed to delete milestone notices: %w", err)
		}

		user.TotalXP = 0
		user.DailyXP = 0
		user.Gems = welcomeGems
		user.Streak = 0
		user.LastLogin = nil
		return tx.Save(&user).Error
	})
}
