package gamification

import "github.com/shopspring/decimal"

// Statistic names the aggregate an achievement is measured against.
type Statistic string

const (
	StatTotalTransactions Statistic = "total_transactions"
	StatDeposits          Statistic = "deposits"
	StatTransfers         Statistic = "transfers"
	StatBalance           Statistic = "balance"
)

// AchievementDefinition is a static catalog template.
type AchievementDefinition struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Statistic   Statistic `json:"statistic"`
	Threshold   int64     `json:"max_progress"`
}

// catalog is ordered; clients may store achievement IDs, so keep them stable.
var catalog = []AchievementDefinition{
	{ID: "first_transaction", Name: "First Steps", Description: "Make your first transaction", Icon: "footprints", Statistic: StatTotalTransactions, Threshold: 1},
	{ID: "10_transactions", Name: "Getting Started", Description: "Make 10 transactions", Icon: "rocket", Statistic: StatTotalTransactions, Threshold: 10},
	{ID: "50_transactions", Name: "Regular", Description: "Make 50 transactions", Icon: "star", Statistic: StatTotalTransactions, Threshold: 50},
	{ID: "100_transactions", Name: "Power User", Description: "Make 100 transactions", Icon: "crown", Statistic: StatTotalTransactions, Threshold: 100},
	{ID: "first_deposit", Name: "Saver", Description: "Make your first deposit", Icon: "piggy-bank", Statistic: StatDeposits, Threshold: 1},
	{ID: "10_deposits", Name: "Super Saver", Description: "Make 10 deposits", Icon: "safe", Statistic: StatDeposits, Threshold: 10},
	{ID: "first_transfer", Name: "Sharing", Description: "Make your first transfer", Icon: "send", Statistic: StatTransfers, Threshold: 1},
	{ID: "10_transfers", Name: "Generous", Description: "Make 10 transfers", Icon: "gift", Statistic: StatTransfers, Threshold: 10},
	{ID: "balance_100", Name: "Hundred Club", Description: "Reach a balance of 100", Icon: "coins", Statistic: StatBalance, Threshold: 100},
	{ID: "balance_1000", Name: "Thousand Club", Description: "Reach a balance of 1,000", Icon: "wallet", Statistic: StatBalance, Threshold: 1000},
	{ID: "balance_10000", Name: "High Roller", Description: "Reach a balance of 10,000", Icon: "gem", Statistic: StatBalance, Threshold: 10000},
}

// Catalog returns a copy of the achievement catalog in definition order.
func Catalog() []AchievementDefinition {
	out := make([]AchievementDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// EvaluateAchievements scores every catalog entry against the transactions and profile.
// A nil transactions slice means the history is not loaded yet and yields an empty list;
// an empty non-nil slice yields the full catalog with zero progress.
func EvaluateAchievements(transactions []Transaction, profile *Profile) []Achievement {
	if transactions == nil {
		return []Achievement{}
	}

	counts := Tally(transactions)
	balance := decimal.Zero
	if profile != nil {
		balance = profile.Balance
	}

	out := make([]Achievement, 0, len(catalog))
	for _, def := range catalog {
		var value decimal.Decimal
		switch def.Statistic {
		case StatTotalTransactions:
			value = decimal.NewFromInt(int64(counts.TotalTransactions))
		case StatDeposits:
			value = decimal.NewFromInt(int64(counts.TotalDeposits))
		case StatTransfers:
			value = decimal.NewFromInt(int64(counts.TotalTransfers))
		case StatBalance:
			value = balance
		}
		out = append(out, evaluate(def, value))
	}
	return out
}

func evaluate(def AchievementDefinition, value decimal.Decimal) Achievement {
	limit := decimal.NewFromInt(def.Threshold)

	progress := value
	if progress.GreaterThan(limit) {
		progress = limit
	}
	if progress.IsNegative() {
		progress = decimal.Zero
	}

	return Achievement{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Icon:        def.Icon,
		Unlocked:    value.GreaterThanOrEqual(limit),
		Progress:    progress.InexactFloat64(),
		MaxProgress: limit.InexactFloat64(),
	}
}

// AchievementFilter selects achievements by unlock state for display.
type AchievementFilter string

const (
	FilterAll      AchievementFilter = "all"
	FilterUnlocked AchievementFilter = "unlocked"
	FilterLocked   AchievementFilter = "locked"
)

// Valid reports whether f is a known filter.
func (f AchievementFilter) Valid() bool {
	switch f {
	case FilterAll, FilterUnlocked, FilterLocked:
		return true
	}
	return false
}

// Filter returns the achievements matching f, preserving order. Unknown filters behave like
// FilterAll.
func Filter(achievements []Achievement, f AchievementFilter) []Achievement {
	out := make([]Achievement, 0, len(achievements))
	for _, a := range achievements {
		switch f {
		case FilterUnlocked:
			if !a.Unlocked {
				continue
			}
		case FilterLocked:
			if a.Unlocked {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}
