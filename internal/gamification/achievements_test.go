package gamification

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func byID(t *testing.T, achievements []Achievement) map[string]Achievement {
	t.Helper()
	out := make(map[string]Achievement, len(achievements))
	for _, a := range achievements {
		out[a.ID] = a
	}
	return out
}

func TestEvaluateAchievements_NilTransactionsYieldsEmpty(t *testing.T) {
	got := EvaluateAchievements(nil, &Profile{Balance: decimal.NewFromInt(50000)})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
}

func TestEvaluateAchievements_EmptyHistoryYieldsFullCatalog(t *testing.T) {
	got := EvaluateAchievements([]Transaction{}, nil)
	if len(got) != len(Catalog()) {
		t.Fatalf("expected %d achievements, got %d", len(Catalog()), len(got))
	}
	for i, a := range got {
		if a.ID != catalog[i].ID {
			t.Fatalf("order mismatch at %d: %s != %s", i, a.ID, catalog[i].ID)
		}
		if a.Unlocked || a.Progress != 0 {
			t.Fatalf("expected %s locked with zero progress, got %+v", a.ID, a)
		}
	}
}

func TestEvaluateAchievements_Counts(t *testing.T) {
	now := time.Now()
	txs := []Transaction{tx(TypeDeposit, "10", now)}
	for i := 0; i < 9; i++ {
		txs = append(txs, tx(TypeWithdraw, "5", now))
	}

	got := byID(t, EvaluateAchievements(txs, nil))

	if a := got["10_transactions"]; !a.Unlocked || a.Progress != 10 || a.MaxProgress != 10 {
		t.Fatalf("10_transactions: %+v", a)
	}
	if a := got["10_deposits"]; a.Unlocked || a.Progress != 1 || a.MaxProgress != 10 {
		t.Fatalf("10_deposits: %+v", a)
	}
	if a := got["first_deposit"]; !a.Unlocked {
		t.Fatalf("first_deposit should be unlocked: %+v", a)
	}
	if a := got["first_transfer"]; a.Unlocked || a.Progress != 0 {
		t.Fatalf("first_transfer should be locked: %+v", a)
	}
	if a := got["50_transactions"]; a.Unlocked || a.Progress != 10 {
		t.Fatalf("50_transactions: %+v", a)
	}
}

func TestEvaluateAchievements_Balance(t *testing.T) {
	tests := []struct {
		name     string
		profile  *Profile
		id       string
		unlocked bool
		progress float64
	}{
		{name: "clamped at threshold", profile: &Profile{Balance: decimal.NewFromInt(150)}, id: "balance_100", unlocked: true, progress: 100},
		{name: "partial", profile: &Profile{Balance: decimal.NewFromInt(150)}, id: "balance_1000", unlocked: false, progress: 150},
		{name: "fractional", profile: &Profile{Balance: decimal.RequireFromString("99.5")}, id: "balance_100", unlocked: false, progress: 99.5},
		{name: "exact", profile: &Profile{Balance: decimal.NewFromInt(10000)}, id: "balance_10000", unlocked: true, progress: 10000},
		{name: "negative clamps to zero", profile: &Profile{Balance: decimal.NewFromInt(-20)}, id: "balance_100", unlocked: false, progress: 0},
		{name: "missing profile is zero", profile: nil, id: "balance_100", unlocked: false, progress: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := byID(t, EvaluateAchievements([]Transaction{}, tt.profile))[tt.id]
			if a.Unlocked != tt.unlocked || a.Progress != tt.progress {
				t.Fatalf("%s = %+v, want unlocked=%v progress=%v", tt.id, a, tt.unlocked, tt.progress)
			}
		})
	}
}

func TestEvaluateAchievements_NeverRelockAsActivityGrows(t *testing.T) {
	now := time.Now()
	types := []TransactionType{TypeDeposit, TypeTransfer, TypeWithdraw}

	var txs []Transaction
	unlocked := map[string]bool{}
	for i := 0; i < 120; i++ {
		txs = append(txs, tx(types[i%len(types)], "100", now))
		profile := &Profile{Balance: decimal.NewFromInt(int64(i * 100))}

		for _, a := range EvaluateAchievements(txs, profile) {
			if unlocked[a.ID] && !a.Unlocked {
				t.Fatalf("achievement %s re-locked after %d transactions", a.ID, len(txs))
			}
			if a.Progress < 0 || a.Progress > a.MaxProgress {
				t.Fatalf("progress out of range: %+v", a)
			}
			if a.Unlocked {
				unlocked[a.ID] = true
			}
		}
	}
	if len(unlocked) != len(catalog) {
		t.Fatalf("expected every achievement to unlock eventually, got %d of %d", len(unlocked), len(catalog))
	}
}

func TestCatalog_ReturnsCopyWithUniqueIDs(t *testing.T) {
	defs := Catalog()
	if len(defs) != 11 {
		t.Fatalf("expected 11 catalog entries, got %d", len(defs))
	}
	seen := map[string]bool{}
	for _, d := range defs {
		if seen[d.ID] {
			t.Fatalf("duplicate id %s", d.ID)
		}
		seen[d.ID] = true
	}

	defs[0].ID = "mutated"
	if Catalog()[0].ID != "first_transaction" {
		t.Fatalf("Catalog must not expose internal state")
	}
}

func TestFilter(t *testing.T) {
	all := []Achievement{
		{ID: "a", Unlocked: true},
		{ID: "b", Unlocked: false},
		{ID: "c", Unlocked: true},
	}

	if got := Filter(all, FilterUnlocked); len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("unlocked filter: %+v", got)
	}
	if got := Filter(all, FilterLocked); len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("locked filter: %+v", got)
	}
	if got := Filter(all, FilterAll); len(got) != 3 {
		t.Fatalf("all filter: %+v", got)
	}
	if !FilterLocked.Valid() || AchievementFilter("done").Valid() {
		t.Fatalf("unexpected Valid results")
	}
}
