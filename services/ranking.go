// services/ranking.go
package services

import (
	"database/sql"
	"log"
	"time"

	"gorm.io/gorm"
)

// RankingEntry is one leaderboard row. LastCompletion is the tie-break
// timestamp: the most recent completion of that user.
type RankingEntry struct {
	Rank           int        `json:"rank"`
	ExternalUserID string     `json:"external_user_id"`
	Username       string     `json:"username"`
	CompletedTasks int        `json:"completed_tasks"`
	LastCompletion *time.Time `json:"last_completion,omitempty"`
}

// RankingService computes the leaderboard. Pure reads over the progress
// tables; safe to run concurrently with writes, a slightly stale snapshot is
// acceptable.
type RankingService struct {
	DB *gorm.DB
}

func NewRankingService(db *gorm.DB) *RankingService {
	return &RankingService{DB: db}
}

// rankingRow is the raw query row. The MAX() aggregate strips the column's
// type affinity, so drivers may hand the tie-break back as text; it is scanned
// as a string and parsed afterwards.
type rankingRow struct {
	ExternalUserID string
	Username       string
	CompletedTasks int
	LastCompletion sql.NullString
}

// Timestamp layouts the drivers emit for aggregated datetime columns.
var completionTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseCompletionTime(raw string) *time.Time {
	for _, layout := range completionTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts
		}
	}
	log.Printf("⚠️ [RANKING] Unparseable completion timestamp %q, dropping tie-break", raw)
	return nil
}

// GetRanking returns the top N users ordered by completed-task count
// descending. Ties break on the most recent completion timestamp ascending —
// whoever reached their count first ranks higher. Users with zero
// completions carry a NULL tie-break and sort last within the zero bucket.
func (s *RankingService) GetRanking(topN int) ([]RankingEntry, error) {
	if topN <= 0 || topN > 100 {
		topN = 10
	}

	var rows []rankingRow
	err := s.DB.Raw(`
		SELECT u.external_user_id,
		       u.username,
		       COUNT(tp.id) AS completed_tasks,
		       MAX(tp.completed_at) AS last_completion
		FROM users u
		LEFT JOIN task_progresses tp
		       ON tp.user_id = u.id AND tp.is_completed = ?
		WHERE u.deleted_at IS NULL
		GROUP BY u.id, u.external_user_id, u.username
		ORDER BY completed_tasks DESC, last_completion ASC NULLS LAST
		LIMIT ?
	`, true, topN).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]RankingEntry, 0, len(rows))
	for i, row := range rows {
		entry := RankingEntry{
			Rank:           i + 1,
			ExternalUserID: row.ExternalUserID,
			Username:       row.Username,
			CompletedTasks: row.CompletedTasks,
		}
		if row.LastCompletion.Valid {
			entry.LastCompletion = parseCompletionTime(row.LastCompletion.String)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
