package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"snowvillage-system/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory SQLite database per test. The pool is
// pinned to one connection so the shared-cache database survives for the
// whole test and concurrent transactions queue instead of tripping
// SQLITE_BUSY.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:test%d?mode=memory&cache=shared&_busy_timeout=5000", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{},
		&models.TaskProgress{},
		&models.MissionProgress{},
		&models.MilestoneNotice{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

const testMissionsYML = `
missions:
  - id: 1
    title: "Welcome Mission"
    icon: "🏔️"
    description: "Get started."
    xp_reward: 100
    gem_reward: 20
    order_index: 1
  - id: 2
    title: "Quiz Mission"
    icon: "🧠"
    description: "Answer quizzes."
    xp_reward: 150
    gem_reward: 30
    order_index: 2
  - id: 3
    title: "Empty Mission"
    icon: "📦"
    description: "No tasks yet."
    xp_reward: 50
    gem_reward: 10
    order_index: 3
`

const testTasksYML = `
tasks:
  - id: 11
    mission_id: 1
    title: "Check in"
    description: "Show up."
    task_type: event_enjoy
    order_index: 1
    xp_reward: 10
    gem_reward: 5
  - id: 12
    mission_id: 1
    title: "Post hello"
    description: "Say hello."
    task_type: social_post
    post_text: "hello!"
    order_index: 2
    xp_reward: 15
    gem_reward: 5
  - id: 21
    mission_id: 2
    title: "First quiz"
    description: "Easy one."
    task_type: quiz
    order_index: 1
    xp_reward: 20
    gem_reward: 0
    question: "1+1?"
    choices:
      - id: a
        text: "2"
        is_correct: true
      - id: b
        text: "3"
  - id: 22
    mission_id: 2
    title: "Second quiz"
    description: "Harder one."
    task_type: quiz
    order_index: 2
    xp_reward: 20
    gem_reward: 0
    question: "2+2?"
    choices:
      - id: a
        text: "4"
        is_correct: true
      - id: b
        text: "5"
  - id: 23
    mission_id: 2
    title: "Third quiz"
    description: "Hardest one."
    task_type: quiz
    order_index: 3
    xp_reward: 20
    gem_reward: 0
    question: "3+3?"
    choices:
      - id: a
        text: "6"
        is_correct: true
      - id: b
        text: "7"
`

// testCatalog loads the fixture catalog: mission 1 with 2 tasks, mission 2
// with 3 quizzes.
func testCatalog(t *testing.T) *CatalogService {
	t.Helper()
	c, err := LoadCatalog([]byte(testMissionsYML), []byte(testTasksYML))
	if err != nil {
		t.Fatalf("failed to load test catalog: %v", err)
	}
	return c
}

func newTestServices(t *testing.T) (*gorm.DB, *UserService, *CompletionService) {
	t.Helper()
	db := newTestDB(t)
	users := NewUserService(db)
	completion := NewCompletionService(db, testCatalog(t), users)
	return db, users, completion
}
