package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/walletquest/gamification-service/internal/gamification"
)

type service struct {
	repo     Repository
	clock    Clock
	ids      IDGenerator
	location *time.Location
}

// NewService creates a ledger service. loc sets the day boundaries used for streaks when a
// caller does not supply its own; nil means UTC.
func NewService(repo Repository, clock Clock, ids IDGenerator, loc *time.Location) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{repo: repo, clock: clock, ids: ids, location: loc}, nil
}

func (s *service) RecordTransaction(ctx context.Context, input RecordInput) (*Transaction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	tx := Transaction{
		ID:           strings.TrimSpace(input.ID),
		UserID:       strings.TrimSpace(input.UserID),
		Type:         input.Type,
		Amount:       input.Amount,
		Currency:     strings.ToUpper(input.Currency),
		Counterparty: strings.TrimSpace(input.Counterparty),
		Description:  strings.TrimSpace(input.Description),
	}
	if tx.ID == "" {
		tx.ID = s.ids.NewID()
	}
	if input.CreatedAt != nil {
		tx.CreatedAt = input.CreatedAt.UTC()
	} else {
		tx.CreatedAt = s.clock.Now().UTC()
	}

	// A duplicate still applies its balance so a redelivery can finish a write that failed
	// after the transaction was stored.
	addErr := s.repo.AddTransaction(ctx, tx)
	if addErr != nil && !errors.Is(addErr, ErrConflict) {
		return nil, addErr
	}

	if input.BalanceAfter != nil {
		if _, err := s.repo.UpdateBalance(ctx, tx.UserID, *input.BalanceAfter, tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("update balance: %w", err)
		}
	}

	if addErr != nil {
		return nil, addErr
	}
	return &tx, nil
}

func (s *service) ListTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.repo.ListTransactions(ctx, userID)
}

func (s *service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.repo.GetProfile(ctx, userID)
}

func (s *service) UpdateBalance(ctx context.Context, userID string, balance decimal.Decimal) (*Profile, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.repo.UpdateBalance(ctx, userID, balance, s.clock.Now().UTC())
}

func (s *service) GetStats(ctx context.Context, userID string, loc *time.Location) (*gamification.Stats, error) {
	txs, profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = s.location
	}

	stats := gamification.Aggregate(Activities(txs), &gamification.Profile{Balance: profile.Balance}, s.clock.Now().In(loc))
	return &stats, nil
}

func (s *service) GetAchievements(ctx context.Context, userID string, filter gamification.AchievementFilter) ([]gamification.Achievement, error) {
	if filter == "" {
		filter = gamification.FilterAll
	}
	if !filter.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFilter, filter)
	}

	txs, profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	all := gamification.EvaluateAchievements(Activities(txs), &gamification.Profile{Balance: profile.Balance})
	return gamification.Filter(all, filter), nil
}

// load fetches the history and profile concurrently.
func (s *service) load(ctx context.Context, userID string) ([]Transaction, *Profile, error) {
	if userID == "" {
		return nil, nil, ErrMissingUserID
	}

	var (
		txs     []Transaction
		profile *Profile
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := s.repo.ListTransactions(ctx, userID)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		txs = list
		return nil
	})

	g.Go(func() error {
		p, err := s.repo.GetProfile(ctx, userID)
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		profile = p
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if profile == nil {
		profile = defaultProfile(userID)
	}

	return txs, profile, nil
}
