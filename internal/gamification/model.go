// Package gamification derives levels, points, achievements and activity streaks from a
// user's transaction history and balance. Every function in this package is pure: the
// result depends only on the arguments, so callers may invoke it concurrently and cache
// results keyed by their inputs.
package gamification

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the closed set of transaction kinds the engine scores.
type TransactionType string

const (
	TypeDeposit  TransactionType = "deposit"
	TypeWithdraw TransactionType = "withdraw"
	TypeTransfer TransactionType = "transfer"
)

// TransactionTypes lists the valid transaction types.
var TransactionTypes = []TransactionType{TypeDeposit, TypeWithdraw, TypeTransfer}

// Valid reports whether t is one of TransactionTypes.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeDeposit, TypeWithdraw, TypeTransfer:
		return true
	}
	return false
}

// Transaction is the slice of a ledger entry the engine reads.
type Transaction struct {
	Type      TransactionType
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// Profile carries the account balance used by balance achievements.
type Profile struct {
	Balance decimal.Decimal
}

// Achievement is one evaluated catalog entry.
type Achievement struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Unlocked    bool    `json:"unlocked"`
	Progress    float64 `json:"progress"`
	MaxProgress float64 `json:"max_progress"`
}

// Counts tallies transactions per type.
type Counts struct {
	TotalTransactions int `json:"total_transactions"`
	TotalDeposits     int `json:"total_deposits"`
	TotalWithdrawals  int `json:"total_withdrawals"`
	TotalTransfers    int `json:"total_transfers"`
}

// Tally counts transactions by type. Unknown types only count toward TotalTransactions.
func Tally(transactions []Transaction) Counts {
	c := Counts{TotalTransactions: len(transactions)}
	for _, tx := range transactions {
		switch tx.Type {
		case TypeDeposit:
			c.TotalDeposits++
		case TypeWithdraw:
			c.TotalWithdrawals++
		case TypeTransfer:
			c.TotalTransfers++
		}
	}
	return c
}
