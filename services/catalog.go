// services/catalog.go
package services

import (
	"fmt"
	"log"
	"os"
	"sort"

	"snowvillage-system/models"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
)

// CatalogService serves the static mission/task catalog. It is loaded once at
// startup from YAML (local files or the object store) and is read-only
// afterwards, so lookups need no locking.
type CatalogService struct {
	missions       []models.Mission
	missionByID    map[int]*models.Mission
	tasksByMission map[int][]models.Task
	taskByID       map[int]*models.Task
}

type missionsFile struct {
	Missions []models.Mission `yaml:"missions"`
}

type tasksFile struct {
	Tasks []models.Task `yaml:"tasks"`
}

// LoadCatalog parses and validates the two catalog documents. Invalid entries
// are skipped with a warning, matching how the event staff curate the files:
// a single bad row must not take the whole event offline.
func LoadCatalog(missionsYML, tasksYML []byte) (*CatalogService, error) {
	var mf missionsFile
	if err := yaml.Unmarshal(missionsYML, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse missions catalog: %w", err)
	}
	var tf tasksFile
	if err := yaml.Unmarshal(tasksYML, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse tasks catalog: %w", err)
	}
	if len(mf.Missions) == 0 {
		return nil, fmt.Errorf("missions catalog is empty")
	}

	c := &CatalogService{
		missionByID:    make(map[int]*models.Mission),
		tasksByMission: make(map[int][]models.Task),
		taskByID:       make(map[int]*models.Task),
	}

	seenMissions := make(map[int]bool)
	for _, m := range mf.Missions {
		if !m.Valid() {
			log.Printf("⚠️ [CATALOG] Skipping invalid mission entry (id=%d, title=%q)", m.ID, m.Title)
			continue
		}
		if seenMissions[m.ID] {
			return nil, fmt.Errorf("duplicate mission id %d in catalog", m.ID)
		}
		seenMissions[m.ID] = true
		m.Slug = slug.Make(m.Title)
		c.missions = append(c.missions, m)
	}
	sort.SliceStable(c.missions, func(i, j int) bool {
		if c.missions[i].OrderIndex != c.missions[j].OrderIndex {
			return c.missions[i].OrderIndex < c.missions[j].OrderIndex
		}
		return c.missions[i].ID < c.missions[j].ID
	})
	for i := range c.missions {
		c.missionByID[c.missions[i].ID] = &c.missions[i]
	}

	seenTasks := make(map[int]bool)
	for _, t := range tf.Tasks {
		if !t.Valid() {
			log.Printf("⚠️ [CATALOG] Skipping invalid task entry (id=%d, title=%q)", t.ID, t.Title)
			continue
		}
		if _, ok := c.missionByID[t.MissionID]; !ok {
			log.Printf("⚠️ [CATALOG] Skipping task %d: unknown mission %d", t.ID, t.MissionID)
			continue
		}
		if seenTasks[t.ID] {
			return nil, fmt.Errorf("duplicate task id %d in catalog", t.ID)
		}
		seenTasks[t.ID] = true
		t.Slug = slug.Make(t.Title)
		c.tasksByMission[t.MissionID] = append(c.tasksByMission[t.MissionID], t)
	}
	for id := range c.tasksByMission {
		tasks := c.tasksByMission[id]
		sort.SliceStable(tasks, func(i, j int) bool {
			if tasks[i].OrderIndex != tasks[j].OrderIndex {
				return tasks[i].OrderIndex < tasks[j].OrderIndex
			}
			return tasks[i].ID < tasks[j].ID
		})
		c.tasksByMission[id] = tasks
		for i := range tasks {
			c.taskByID[tasks[i].ID] = &c.tasksByMission[id][i]
		}
	}

	log.Printf("✅ Catalog loaded: %d missions, %d tasks", len(c.missions), len(c.taskByID))
	return c, nil
}

// LoadCatalogFromFiles reads the two YAML documents from disk.
func LoadCatalogFromFiles(missionsPath, tasksPath string) (*CatalogService, error) {
	missionsYML, err := os.ReadFile(missionsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", missionsPath, err)
	}
	tasksYML, err := os.ReadFile(tasksPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", tasksPath, err)
	}
	return LoadCatalog(missionsYML, tasksYML)
}

// ListMissions returns missions in display order.
func (c *CatalogService) ListMissions() []models.Mission {
	return c.missions
}

// GetMission looks up a mission by id.
func (c *CatalogService) GetMission(missionID int) (*models.Mission, error) {
	m, ok := c.missionByID[missionID]
	if !ok {
		return nil, ErrMissionNotFound
	}
	return m, nil
}

// ListTasksForMission returns the mission's tasks in display order. A mission
// with zero tasks returns an empty slice, not an error.
func (c *CatalogService) ListTasksForMission(missionID int) ([]models.Task, error) {
	if _, ok := c.missionByID[missionID]; !ok {
		return nil, ErrMissionNotFound
	}
	return c.tasksByMission[missionID], nil
}

// GetTask looks up a task by id.
func (c *CatalogService) GetTask(taskID int) (*models.Task, error) {
	t, ok := c.taskByID[taskID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

// TaskCount returns how many tasks a mission has. Unknown missions count 0.
func (c *CatalogService) TaskCount(missionID int) int {
	return len(c.tasksByMission[missionID])
}

// TotalTaskCount is the number of tasks across the whole catalog.
func (c *CatalogService) TotalTaskCount() int {
	return len(c.taskByID)
}
