package gamification

import (
	"testing"
	"time"
)

func TestComputeStreak(t *testing.T) {
	now := time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)
	day := func(offset int, hour int) time.Time {
		return time.Date(2026, 10, 18+offset, hour, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{name: "no transactions", dates: nil, want: 0},
		{name: "today only", dates: []time.Time{day(0, 9)}, want: 1},
		{name: "today and yesterday", dates: []time.Time{day(0, 1), day(-1, 23)}, want: 2},
		{name: "missing today breaks the chain", dates: []time.Time{day(-1, 10), day(-2, 10)}, want: 0},
		{name: "gap stops the walk", dates: []time.Time{day(0, 10), day(-1, 10), day(-3, 10), day(-4, 10)}, want: 2},
		{name: "duplicates count once", dates: []time.Time{day(0, 8), day(0, 9), day(0, 10), day(-1, 8), day(-1, 20)}, want: 2},
		{name: "unsorted input", dates: []time.Time{day(-2, 8), day(0, 9), day(-1, 10)}, want: 3},
		{name: "future transactions ignored", dates: []time.Time{day(1, 8), day(0, 9)}, want: 1},
		{name: "zero timestamps ignored", dates: []time.Time{{}, day(0, 9)}, want: 1},
		{name: "across month boundary", dates: []time.Time{day(0, 9), day(-17, 9), day(-18, 9)}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var txs []Transaction
			for _, d := range tt.dates {
				txs = append(txs, Transaction{Type: TypeDeposit, CreatedAt: d})
			}
			if got := ComputeStreak(txs, now); got != tt.want {
				t.Fatalf("ComputeStreak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComputeStreak_UsesLocationOfNow(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	// 2026-10-18 01:00 in Jakarta is 2026-10-17 18:00 UTC.
	now := time.Date(2026, 10, 18, 1, 0, 0, 0, jakarta)
	txs := []Transaction{
		{Type: TypeDeposit, CreatedAt: time.Date(2026, 10, 17, 18, 30, 0, 0, time.UTC)}, // 01:30 WIB on the 18th
		{Type: TypeDeposit, CreatedAt: time.Date(2026, 10, 17, 3, 0, 0, 0, time.UTC)},   // 10:00 WIB on the 17th
	}

	if got := ComputeStreak(txs, now); got != 2 {
		t.Fatalf("expected streak 2 in Jakarta time, got %d", got)
	}
	if got := ComputeStreak(txs, now.In(time.UTC)); got != 1 {
		t.Fatalf("expected streak 1 in UTC, got %d", got)
	}
}

func TestComputeStreak_LongRun(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	var txs []Transaction
	for i := 0; i < 45; i++ {
		txs = append(txs, Transaction{Type: TypeTransfer, CreatedAt: now.AddDate(0, 0, -i)})
	}
	if got := ComputeStreak(txs, now); got != 45 {
		t.Fatalf("expected 45 day streak, got %d", got)
	}
}
