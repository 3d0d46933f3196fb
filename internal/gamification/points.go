package gamification

import "github.com/shopspring/decimal"

const basePointsPerTransaction = 10

var typeBonus = map[TransactionType]int{
	TypeDeposit:  20,
	TypeTransfer: 15,
	TypeWithdraw: 5,
}

// amountTiers is ordered highest first; the first matching tier wins.
var amountTiers = []struct {
	min   decimal.Decimal
	bonus int
}{
	{min: decimal.NewFromInt(1000), bonus: 50},
	{min: decimal.NewFromInt(500), bonus: 30},
	{min: decimal.NewFromInt(100), bonus: 15},
}

// PointsFor scores a single transaction: a flat base, a type bonus and an amount tier bonus
// on the absolute amount.
func PointsFor(tx Transaction) int {
	points := basePointsPerTransaction + typeBonus[tx.Type]

	amount := tx.Amount.Abs()
	for _, tier := range amountTiers {
		if amount.GreaterThanOrEqual(tier.min) {
			points += tier.bonus
			break
		}
	}
	return points
}

// ComputePoints sums PointsFor over every transaction. Nil or empty input yields 0.
func ComputePoints(transactions []Transaction) int {
	total := 0
	for _, tx := range transactions {
		total += PointsFor(tx)
	}
	return total
}
