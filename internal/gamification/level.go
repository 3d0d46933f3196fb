package gamification

// firstLevelRequirement is the XP needed to leave level 1.
const firstLevelRequirement = 100

// Level is the resolved position on the XP curve.
type Level struct {
	Level         int `json:"level"`
	XP            int `json:"xp"`
	XPToNextLevel int `json:"xp_to_next_level"`
}

// Progress returns XP as a percentage of XPToNextLevel, 0 when the requirement is 0.
func (l Level) Progress() float64 {
	if l.XPToNextLevel <= 0 {
		return 0
	}
	return float64(l.XP) / float64(l.XPToNextLevel) * 100
}

// nextRequirement returns the requirement for completing level after reaching it, given the
// requirement of the level before.
func nextRequirement(previous, level int) int {
	return previous + level*50 + 100
}

// ComputeLevel walks the XP curve, spending totalPoints one level requirement at a time.
// Negative totals are treated as 0.
func ComputeLevel(totalPoints int) Level {
	remaining := totalPoints
	if remaining < 0 {
		remaining = 0
	}

	level := 1
	requirement := firstLevelRequirement
	for remaining >= requirement {
		remaining -= requirement
		level++
		requirement = nextRequirement(requirement, level)
	}

	return Level{Level: level, XP: remaining, XPToNextLevel: requirement}
}

// LevelStep describes one level of the curve.
type LevelStep struct {
	Level int `json:"level"`
	// Requirement is the XP needed to complete this level.
	Requirement int `json:"requirement"`
	// PointsToReach is the total points at which this level starts.
	PointsToReach int `json:"points_to_reach"`
}

// Curve returns the first n levels of the XP curve. n < 1 yields nil.
func Curve(n int) []LevelStep {
	if n < 1 {
		return nil
	}
	steps := make([]LevelStep, 0, n)
	requirement := firstLevelRequirement
	reached := 0
	for level := 1; level <= n; level++ {
		steps = append(steps, LevelStep{Level: level, Requirement: requirement, PointsToReach: reached})
		reached += requirement
		requirement = nextRequirement(requirement, level+1)
	}
	return steps
}
