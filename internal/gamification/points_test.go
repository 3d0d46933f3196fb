package gamification

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func tx(typ TransactionType, amount string, at time.Time) Transaction {
	return Transaction{Type: typ, Amount: decimal.RequireFromString(amount), CreatedAt: at}
}

func TestPointsFor(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		tx   Transaction
		want int
	}{
		{name: "small deposit", tx: tx(TypeDeposit, "50", now), want: 30},
		{name: "large transfer", tx: tx(TypeTransfer, "1000", now), want: 75},
		{name: "withdraw tier 100", tx: tx(TypeWithdraw, "100", now), want: 30},
		{name: "deposit just below 100", tx: tx(TypeDeposit, "99.99", now), want: 30},
		{name: "deposit tier 500", tx: tx(TypeDeposit, "500", now), want: 60},
		{name: "transfer 999.99 stays in 500 tier", tx: tx(TypeTransfer, "999.99", now), want: 55},
		{name: "negative amount uses absolute value", tx: tx(TypeWithdraw, "-1500", now), want: 65},
		{name: "zero amount", tx: tx(TypeDeposit, "0", now), want: 30},
		{name: "unknown type gets base and tier only", tx: tx("refund", "200", now), want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointsFor(tt.tx); got != tt.want {
				t.Fatalf("PointsFor = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComputePoints(t *testing.T) {
	if got := ComputePoints(nil); got != 0 {
		t.Fatalf("ComputePoints(nil) = %d, want 0", got)
	}
	if got := ComputePoints([]Transaction{}); got != 0 {
		t.Fatalf("ComputePoints([]) = %d, want 0", got)
	}

	now := time.Now()
	txs := []Transaction{
		tx(TypeDeposit, "50", now),    // 30
		tx(TypeTransfer, "1000", now), // 75
		tx(TypeWithdraw, "250", now),  // 30
	}
	if got := ComputePoints(txs); got != 135 {
		t.Fatalf("ComputePoints = %d, want 135", got)
	}
}

func TestComputePoints_AppendingNeverDecreases(t *testing.T) {
	now := time.Now()
	var txs []Transaction
	prev := 0
	for i, typ := range []TransactionType{TypeWithdraw, TypeDeposit, TypeTransfer, "unknown", TypeWithdraw} {
		txs = append(txs, tx(typ, decimal.NewFromInt(int64(i*300)).String(), now))
		got := ComputePoints(txs)
		if got < prev {
			t.Fatalf("points decreased after appending %d transactions: %d < %d", len(txs), got, prev)
		}
		prev = got
	}
}
