package gamification

import "time"

// Stats is the derived gamification state for one user.
type Stats struct {
	TotalPoints   int           `json:"total_points"`
	Level         int           `json:"level"`
	XP            int           `json:"xp"`
	XPToNextLevel int           `json:"xp_to_next_level"`
	LevelProgress float64       `json:"level_progress"`
	Achievements  []Achievement `json:"achievements"`
	Counts
	Streak int `json:"streak"`
}

// Empty is the result for a user whose history has not been loaded.
func Empty() Stats {
	return Stats{
		Level:         1,
		XPToNextLevel: firstLevelRequirement,
		Achievements:  []Achievement{},
	}
}

// Aggregate derives Stats from the transactions and profile as of now. A nil transactions
// slice returns Empty.
func Aggregate(transactions []Transaction, profile *Profile, now time.Time) Stats {
	if transactions == nil {
		return Empty()
	}

	points := ComputePoints(transactions)
	level := ComputeLevel(points)

	return Stats{
		TotalPoints:   points,
		Level:         level.Level,
		XP:            level.XP,
		XPToNextLevel: level.XPToNextLevel,
		LevelProgress: level.Progress(),
		Achievements:  EvaluateAchievements(transactions, profile),
		Counts:        Tally(transactions),
		Streak:        ComputeStreak(transactions, now),
	}
}
