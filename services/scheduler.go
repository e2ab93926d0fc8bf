// services/scheduler.go
package services

import (
	"log"
	"time"

	"snowvillage-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartDailyRollover resets daily_xp at UTC midnight for every user who has
// not logged in today. ApplyLogin already resets lazily on the next login;
// the job keeps dashboards honest for sessions left open overnight.
func (s *UserService) StartDailyRollover() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
		gocron.NewTask(func() {
			today := models.DateOf(time.Now())
			res := s.DB.Model(&models.User{}).
				Where("daily_xp > 0 AND (last_login IS NULL OR last_login < ?)", today).
				Update("daily_xp", 0)
			if res.Error != nil {
				log.Printf("[Rollover] DB error: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("✅ Daily XP rollover: reset %d user(s)", res.RowsAffected)
			}
		}),
	)
}
