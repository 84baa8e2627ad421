// Package achievements awards badges for study milestones. Evaluate is a pure
// rule engine; Service wires it to storage.
package achievements

// AchievementDef defines a single achievement.
type AchievementDef struct {
	ID          string
	Name        string
	Description string
	Points      int
}

// Catalog lists every achievement in display order. Evaluate reports newly
// earned ids in this order.
var Catalog = []AchievementDef{
	{ID: "first_test", Name: "First Steps", Description: "Complete your first test", Points: 10},
	{ID: "perfect_score", Name: "Flawless", Description: "Answer every question of a test correctly", Points: 25},
	{ID: "perfectionist", Name: "Perfectionist", Description: "Get a perfect score on 10 tests", Points: 100},
	{ID: "speed_demon", Name: "Speed Demon", Description: "Complete a test in under 2 minutes", Points: 15},
	{ID: "lightning_fast", Name: "Lightning Fast", Description: "Complete a test in under 1 minute", Points: 30},
	{ID: "night_owl", Name: "Night Owl", Description: "Complete a test between 22:00 and 06:00", Points: 10},
	{ID: "early_bird", Name: "Early Bird", Description: "Complete a test before 07:00", Points: 10},
	{ID: "dedicated_learner", Name: "Dedicated Learner", Description: "Complete 10 tests", Points: 50},
	{ID: "test_master", Name: "Test Master", Description: "Complete 50 tests", Points: 200},
	{ID: "consistent_learner", Name: "Consistent Learner", Description: "Complete tests 3 days in a row", Points: 30},
	{ID: "unstoppable", Name: "Unstoppable", Description: "Complete tests 30 days in a row", Points: 300},
	{ID: "test_creator", Name: "Test Creator", Description: "Create your first test", Points: 15},
	{ID: "prolific_creator", Name: "Prolific Creator", Description: "Create 10 tests", Points: 75},
	{ID: "explorer", Name: "Explorer", Description: "Study 5 different subjects", Points: 50},
}

var byID = func() map[string]AchievementDef {
	m := make(map[string]AchievementDef, len(Catalog))
	for _, def := range Catalog {
		m[def.ID] = def
	}
	return m
}()

// Lookup returns the definition for id.
func Lookup(id string) (AchievementDef, bool) {
	def, ok := byID[id]
	return def, ok
}

// Thresholds.
const (
	perfectionistCount    = 10
	dedicatedCount        = 10
	masterCount           = 50
	consistentStreakDays  = 3
	unstoppableStreakDays = 30
	creatorCount          = 1
	prolificCount         = 10
	explorerSubjects      = 5

	speedDemonSeconds    = 120
	lightningFastSeconds = 60

	nightOwlFromHour  = 22
	nightOwlUntilHour = 6
	earlyBirdUntil    = 7
)
