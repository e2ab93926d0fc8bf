// services/milestone.go
package services

// Milestone is a fixed completed-task-count threshold with a named reward.
type Milestone struct {
	Threshold int    `json:"threshold"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
}

// Milestones is the fixed, ordered threshold table. A milestone fires on the
// call where the total completed-task count lands exactly on its threshold.
var Milestones = []Milestone{
	{Threshold: 5, Name: "Beginner Reward", Icon: "🏅"},
	{Threshold: 10, Name: "Adventurer Reward", Icon: "🏆"},
	{Threshold: 15, Name: "Explorer Reward", Icon: "🎖️"},
	{Threshold: 20, Name: "Hero Reward", Icon: "👑"},
	{Threshold: 25, Name: "Master Reward", Icon: "💎"},
	{Threshold: 30, Name: "Legend Reward", Icon: "✨"},
}

// MilestoneFor returns the milestone whose threshold equals the count
// exactly, or nil. Equality (not ≥) keeps the evaluator from re-firing on
// every later completion; durable once-only delivery is the caller's job via
// MilestoneNotice rows.
func MilestoneFor(completedCount int) *Milestone {
	for i := range Milestones {
		if Milestones[i].Threshold == completedCount {
			return &Milestones[i]
		}
	}
	return nil
}

// NextMilestone returns the first threshold above the count, or nil when the
// table is exhausted.
func NextMilestone(completedCount int) *Milestone {
	for i := range Milestones {
		if Milestones[i].Threshold > completedCount {
			return &Milestones[i]
		}
	}
	return nil
}
