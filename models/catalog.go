package models

// TaskType tags the payload variant a catalog task carries.
type TaskType string

const (
	TaskTypeQuiz       TaskType = "quiz"
	TaskTypeBoothVisit TaskType = "booth_visit"
	TaskTypeSocialPost TaskType = "social_post"
	TaskTypeEventEnjoy TaskType = "event_enjoy"
)

// Choice is one quiz answer option.
type Choice struct {
	ID        string `yaml:"id" json:"id"`
	Text      string `yaml:"text" json:"text"`
	IsCorrect bool   `yaml:"is_correct" json:"is_correct,omitempty"`
}

// Mission is a static catalog entry: a named group of tasks. Completing every
// task in the mission pays the completion bonus. Immutable at runtime; the
// task count is derived from the task list, never stored.
type Mission struct {
	ID          int    `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Icon        string `yaml:"icon" json:"icon"`
	Description string `yaml:"description" json:"description"`
	XPReward    int64  `yaml:"xp_reward" json:"xp_reward"`
	GemReward   int64  `yaml:"gem_reward" json:"gem_reward"`
	OrderIndex  int    `yaml:"order_index" json:"order_index"`

	// Derived at load time, not part of the YAML.
	Slug string `yaml:"-" json:"slug"`
}

// Valid reports whether the mission entry is usable. Missions with no reward
// or blank copy are dropped at load time.
func (m Mission) Valid() bool {
	return m.ID > 0 && m.Title != "" && m.Description != "" && m.XPReward > 0 && m.GemReward >= 0
}

// Task is an atomic completable unit inside a mission. The type-specific
// payload is a tagged variant: exactly the fields for the declared TaskType
// are meaningful, and Valid enforces them at catalog load.
type Task struct {
	ID          int      `yaml:"id" json:"id"`
	MissionID   int      `yaml:"mission_id" json:"mission_id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Type        TaskType `yaml:"task_type" json:"task_type"`
	OrderIndex  int      `yaml:"order_index" json:"order_index"`

	// quiz payload
	Question    string   `yaml:"question,omitempty" json:"question,omitempty"`
	Choices     []Choice `yaml:"choices,omitempty" json:"choices,omitempty"`
	Explanation string   `yaml:"explanation,omitempty" json:"explanation,omitempty"`

	// booth_visit / social_post payload
	BoothName string `yaml:"booth_name,omitempty" json:"booth_name,omitempty"`
	PostText  string `yaml:"post_text,omitempty" json:"post_text,omitempty"`
	PostURL   string `yaml:"post_url,omitempty" json:"post_url,omitempty"`

	XPReward  int64 `yaml:"xp_reward" json:"xp_reward"`
	GemReward int64 `yaml:"gem_reward" json:"gem_reward"`

	Slug string `yaml:"-" json:"slug"`
}

// Valid checks the shared fields plus the payload for the task's type.
func (t Task) Valid() bool {
	if t.ID <= 0 || t.MissionID <= 0 || t.Title == "" || t.Description == "" || t.XPReward <= 0 || t.GemReward < 0 {
		return false
	}
	switch t.Type {
	case TaskTypeQuiz:
		if t.Question == "" || len(t.Choices) < 2 {
			return false
		}
		for _, c := range t.Choices {
			if c.IsCorrect {
				return true
			}
		}
		return false
	case TaskTypeBoothVisit:
		return t.BoothName != "" && t.PostText != ""
	case TaskTypeSocialPost:
		return t.PostText != ""
	case TaskTypeEventEnjoy:
		return true
	default:
		return false
	}
}
