package gamification

import "time"

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{year: y, month: m, day: d}
}

// ComputeStreak counts consecutive calendar days, ending today, with at least one
// transaction. Days are taken in now's location. A day without activity, including today,
// ends the streak; several transactions on the same day count once.
func ComputeStreak(transactions []Transaction, now time.Time) int {
	if len(transactions) == 0 {
		return 0
	}

	loc := now.Location()
	active := make(map[civilDate]struct{}, len(transactions))
	for _, tx := range transactions {
		if tx.CreatedAt.IsZero() {
			continue
		}
		active[dateOf(tx.CreatedAt.In(loc))] = struct{}{}
	}

	streak := 0
	cursor := truncateToDay(now)
	for {
		if _, ok := active[dateOf(cursor)]; !ok {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
