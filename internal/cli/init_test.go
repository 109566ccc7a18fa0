package cli

import (
	"context"
	"testing"

	"hamanets/internal/config"
	"hamanets/internal/core"
	"hamanets/internal/export"
	"hamanets/internal/ledger"
	"hamanets/internal/log"
	"hamanets/internal/stats"
	"hamanets/internal/storage"
)

func TestOpenLedgerSeedsEmptyRepository(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()

	store, err := OpenLedger(ctx, log.Discard(), repo, false)
	if err != nil {
		t.Fatalf("OpenLedger() error = %v", err)
	}
	if got := len(store.Categories()); got != len(core.DefaultCategories) {
		t.Errorf("categories = %d, want %d", got, len(core.DefaultCategories))
	}
	if got := len(store.Transactions()); got != 0 {
		t.Errorf("transactions = %d, want 0", got)
	}

	saved, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("seed was not saved: %v", err)
	}
	if len(saved.Budgets) != len(store.Budgets()) {
		t.Errorf("saved budgets = %d, want %d", len(saved.Budgets), len(store.Budgets()))
	}
}

func TestOpenLedgerWithDemoData(t *testing.T) {
	store, err := OpenLedger(context.Background(), log.Discard(), storage.NewMemoryRepository(), true)
	if err != nil {
		t.Fatalf("OpenLedger() error = %v", err)
	}
	if len(store.Transactions()) == 0 {
		t.Error("expected demo transactions")
	}
}

func TestOpenLedgerKeepsStoredState(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	stored := ledger.NewDefault().Snapshot()
	stored.Categories = stored.Categories[:2]
	if err := repo.Save(ctx, stored); err != nil {
		t.Fatal(err)
	}

	store, err := OpenLedger(ctx, log.Discard(), repo, true)
	if err != nil {
		t.Fatalf("OpenLedger() error = %v", err)
	}
	if got := len(store.Categories()); got != 2 {
		t.Errorf("categories = %d, want 2", got)
	}
	if len(store.Transactions()) != 0 {
		t.Error("demo data must not be added to an existing ledger")
	}
}

func TestBudgetPolicyAndLabels(t *testing.T) {
	tests := []struct {
		policy string
		locale string
		want   stats.BudgetPolicy
		labels export.Labels
	}{
		{config.PolicyCurrentMonth, "uk", stats.CurrentMonth, export.UkrainianLabels},
		{config.PolicyPeriodAware, "en-US", stats.PeriodAware, export.EnglishLabels},
	}
	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			cfg := &config.Config{BudgetPolicy: tt.policy, Locale: tt.locale}
			if got := BudgetPolicy(cfg); got != tt.want {
				t.Errorf("BudgetPolicy() = %v, want %v", got, tt.want)
			}
			if got := Labels(cfg); got != tt.labels {
				t.Errorf("Labels() = %v, want %v", got, tt.labels)
			}
		})
	}
}
