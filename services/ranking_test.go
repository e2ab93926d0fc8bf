package services

import (
	"testing"
	"time"

	"snowvillage-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func seedRankedUser(t *testing.T, db *gorm.DB, username string, completions int, base time.Time) *models.User {
	t.Helper()
	u := &models.User{
		ID:             uuid.NewString(),
		ExternalUserID: uuid.NewString(),
		Username:       username,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	for i := 0; i < completions; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		tp := &models.TaskProgress{
			ID:          uuid.NewString(),
			UserID:      u.ID,
			TaskID:      1000*completions + i, // distinct per (user, task)
			MissionID:   1,
			IsCompleted: true,
			CompletedAt: &at,
		}
		if err := db.Create(tp).Error; err != nil {
			t.Fatalf("seed progress for %s: %v", username, err)
		}
	}
	return u
}

func TestGetRankingOrderAndTieBreak(t *testing.T) {
	db := newTestDB(t)
	ranking := NewRankingService(db)

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	// alice and bob tie on 5 completions; alice's most recent completion is
	// older, so she wins the tie. carol trails with 3.
	seedRankedUser(t, db, "bob", 5, base.Add(2*time.Hour))
	seedRankedUser(t, db, "alice", 5, base)
	seedRankedUser(t, db, "carol", 3, base)

	entries, err := ranking.GetRanking(10)
	if err != nil {
		t.Fatalf("GetRanking: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	wantOrder := []string{"alice", "bob", "carol"}
	for i, want := range wantOrder {
		if entries[i].Username != want {
			t.Fatalf("rank %d = %s, want %s (entries: %+v)", i+1, entries[i].Username, want, entries)
		}
		if entries[i].Rank != i+1 {
			t.Fatalf("rank field = %d, want %d", entries[i].Rank, i+1)
		}
	}
	if entries[0].CompletedTasks != 5 || entries[2].CompletedTasks != 3 {
		t.Fatalf("bad counts: %+v", entries)
	}

	// The aggregated tie-break timestamp must survive the scan round-trip.
	// alice's most recent completion is her 5th, four minutes after base.
	if entries[0].LastCompletion == nil {
		t.Fatalf("tie-break timestamp lost: %+v", entries[0])
	}
	if want := base.Add(4 * time.Minute); !entries[0].LastCompletion.Equal(want) {
		t.Fatalf("tie-break = %v, want %v", entries[0].LastCompletion, want)
	}
}

func TestGetRankingZeroCompletionsLast(t *testing.T) {
	db := newTestDB(t)
	ranking := NewRankingService(db)

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	seedRankedUser(t, db, "active", 2, base)
	seedRankedUser(t, db, "idle", 0, base)

	entries, err := ranking.GetRanking(10)
	if err != nil {
		t.Fatalf("GetRanking: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Username != "active" || entries[1].Username != "idle" {
		t.Fatalf("zero-completion user not ranked last: %+v", entries)
	}
	if entries[1].CompletedTasks != 0 || entries[1].LastCompletion != nil {
		t.Fatalf("bad idle entry: %+v", entries[1])
	}
}

func TestGetRankingLimitAndDefault(t *testing.T) {
	db := newTestDB(t)
	ranking := NewRankingService(db)

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"u1", "u2", "u3"} {
		seedRankedUser(t, db, name, i+1, base.Add(time.Duration(i)*time.Hour))
	}

	entries, err := ranking.GetRanking(2)
	if err != nil {
		t.Fatalf("GetRanking: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("limit ignored: got %d entries", len(entries))
	}
	if entries[0].Username != "u3" {
		t.Fatalf("top entry = %s, want u3", entries[0].Username)
	}

	// Out-of-range limits fall back to the default of 10.
	if _, err := ranking.GetRanking(-1); err != nil {
		t.Fatalf("GetRanking(-1): %v", err)
	}
}
