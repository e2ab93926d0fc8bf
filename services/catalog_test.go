package services

import (
	"errors"
	"testing"

	"snowvillage-system/models"
)

func TestLoadCatalogOrderingAndLookups(t *testing.T) {
	c := testCatalog(t)

	missions := c.ListMissions()
	if len(missions) != 3 {
		t.Fatalf("expected 3 missions, got %d", len(missions))
	}
	for i := 1; i < len(missions); i++ {
		if missions[i-1].OrderIndex > missions[i].OrderIndex {
			t.Fatalf("missions not ordered: %+v", missions)
		}
	}
	if missions[0].Slug != "welcome-mission" {
		t.Fatalf("slug not derived: %q", missions[0].Slug)
	}

	tasks, err := c.ListTasksForMission(2)
	if err != nil {
		t.Fatalf("ListTasksForMission: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks for mission 2, got %d", len(tasks))
	}
	if tasks[0].ID != 21 || tasks[2].ID != 23 {
		t.Fatalf("tasks not ordered: %+v", tasks)
	}

	if c.TaskCount(1) != 2 || c.TaskCount(3) != 0 || c.TaskCount(99) != 0 {
		t.Fatalf("bad task counts: %d %d %d", c.TaskCount(1), c.TaskCount(3), c.TaskCount(99))
	}
	if c.TotalTaskCount() != 5 {
		t.Fatalf("total task count = %d, want 5", c.TotalTaskCount())
	}

	if _, err := c.GetMission(42); !errors.Is(err, ErrMissionNotFound) {
		t.Fatalf("unknown mission: got %v", err)
	}
	if _, err := c.GetTask(42); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("unknown task: got %v", err)
	}
	if _, err := c.ListTasksForMission(42); !errors.Is(err, ErrMissionNotFound) {
		t.Fatalf("tasks of unknown mission: got %v", err)
	}
}

func TestLoadCatalogSkipsInvalidEntries(t *testing.T) {
	missionsYML := `
missions:
  - id: 1
    title: "Good Mission"
    description: "Fine."
    xp_reward: 100
    gem_reward: 10
  - id: 2
    title: ""
    description: "Missing title."
    xp_reward: 100
    gem_reward: 10
`
	// A quiz with no correct choice and a booth visit with no post text are
	// both rejected; a task pointing at a skipped mission is dropped too.
	tasksYML := `
tasks:
  - id: 1
    mission_id: 1
    title: "Valid quiz"
    description: "ok"
    task_type: quiz
    xp_reward: 10
    gem_reward: 0
    question: "?"
    choices:
      - id: a
        text: "yes"
        is_correct: true
      - id: b
        text: "no"
  - id: 2
    mission_id: 1
    title: "Broken quiz"
    description: "no correct choice"
    task_type: quiz
    xp_reward: 10
    gem_reward: 0
    question: "?"
    choices:
      - id: a
        text: "yes"
      - id: b
        text: "no"
  - id: 3
    mission_id: 1
    title: "Broken booth"
    description: "no post text"
    task_type: booth_visit
    booth_name: "Booth"
    xp_reward: 10
    gem_reward: 0
  - id: 4
    mission_id: 2
    title: "Orphan"
    description: "mission was skipped"
    task_type: event_enjoy
    xp_reward: 10
    gem_reward: 0
`
	c, err := LoadCatalog([]byte(missionsYML), []byte(tasksYML))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(c.ListMissions()) != 1 {
		t.Fatalf("invalid mission not skipped: %+v", c.ListMissions())
	}
	if c.TotalTaskCount() != 1 {
		t.Fatalf("invalid tasks not skipped: total = %d", c.TotalTaskCount())
	}
	if _, err := c.GetTask(1); err != nil {
		t.Fatalf("valid task missing: %v", err)
	}
}

func TestLoadCatalogRejectsDuplicatesAndEmpty(t *testing.T) {
	dupMissions := `
missions:
  - id: 1
    title: "One"
    description: "a"
    xp_reward: 10
    gem_reward: 0
  - id: 1
    title: "Two"
    description: "b"
    xp_reward: 10
    gem_reward: 0
`
	if _, err := LoadCatalog([]byte(dupMissions), []byte("tasks: []")); err == nil {
		t.Fatal("duplicate mission ids accepted")
	}
	if _, err := LoadCatalog([]byte("missions: []"), []byte("tasks: []")); err == nil {
		t.Fatal("empty mission catalog accepted")
	}

	// A duplicated task id would inflate the mission's task count past what a
	// user can ever complete, leaving the mission stuck short of its bonus.
	oneMission := `
missions:
  - id: 1
    title: "One"
    description: "a"
    xp_reward: 10
    gem_reward: 0
`
	dupTasks := `
tasks:
  - id: 7
    mission_id: 1
    title: "First"
    description: "d"
    task_type: event_enjoy
    xp_reward: 10
    gem_reward: 0
  - id: 7
    mission_id: 1
    title: "Second"
    description: "d"
    task_type: event_enjoy
    xp_reward: 10
    gem_reward: 0
`
	if _, err := LoadCatalog([]byte(oneMission), []byte(dupTasks)); err == nil {
		t.Fatal("duplicate task ids accepted")
	}
}

func TestTaskValidVariants(t *testing.T) {
	base := models.Task{ID: 1, MissionID: 1, Title: "t", Description: "d", XPReward: 10}

	social := base
	social.Type = models.TaskTypeSocialPost
	if social.Valid() {
		t.Fatal("social post without text accepted")
	}
	social.PostText = "hello"
	if !social.Valid() {
		t.Fatal("valid social post rejected")
	}

	enjoy := base
	enjoy.Type = models.TaskTypeEventEnjoy
	if !enjoy.Valid() {
		t.Fatal("valid event_enjoy rejected")
	}

	unknown := base
	unknown.Type = "mystery"
	if unknown.Valid() {
		t.Fatal("unknown task type accepted")
	}
}
