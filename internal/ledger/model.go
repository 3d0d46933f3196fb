package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/walletquest/gamification-service/internal/gamification"
)

// Transaction is a recorded account movement.
type Transaction struct {
	ID           string                       `json:"id"`
	UserID       string                       `json:"user_id"`
	Type         gamification.TransactionType `json:"type"`
	Amount       decimal.Decimal              `json:"amount"`
	Currency     string                       `json:"currency,omitempty"`
	Counterparty string                       `json:"counterparty,omitempty"`
	Description  string                       `json:"description,omitempty"`
	CreatedAt    time.Time                    `json:"created_at"`
}

// Activity returns the fields the gamification engine reads.
func (t Transaction) Activity() gamification.Transaction {
	return gamification.Transaction{Type: t.Type, Amount: t.Amount, CreatedAt: t.CreatedAt}
}

// Activities converts a loaded history. The result is never nil so the engine treats it as
// loaded even when empty.
func Activities(txs []Transaction) []gamification.Transaction {
	out := make([]gamification.Transaction, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.Activity())
	}
	return out
}

// Profile holds the account balance for a user.
type Profile struct {
	UserID    string          `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency,omitempty"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

func defaultProfile(userID string) *Profile {
	return &Profile{UserID: userID, Balance: decimal.Zero}
}

// RecordInput captures the data required to record a transaction.
type RecordInput struct {
	ID           string                       `validate:"omitempty,max=128"`
	UserID       string                       `validate:"required"`
	Type         gamification.TransactionType `validate:"required,oneof=deposit withdraw transfer"`
	Amount       decimal.Decimal
	Currency     string `validate:"omitempty,len=3,alpha"`
	Counterparty string `validate:"max=256"`
	Description  string `validate:"max=1024"`
	CreatedAt    *time.Time
	// BalanceAfter, when set, replaces the profile balance once the transaction is stored.
	BalanceAfter *decimal.Decimal
}

var validate = validator.New()

// Validate ensures the input fields meet the domain constraints.
func (i RecordInput) Validate() error {
	if strings.TrimSpace(i.UserID) == "" {
		return ErrMissingUserID
	}

	var problems []string
	if err := validate.Struct(i); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				problems = append(problems, describeFieldError(fe))
			}
		} else {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if i.Amount.IsZero() {
		problems = append(problems, "amount must be non-zero")
	}
	if i.CreatedAt != nil && i.CreatedAt.IsZero() {
		problems = append(problems, "created_at must be a valid timestamp")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "len":
		return fmt.Sprintf("%s must be %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces transaction identifiers.
type IDGenerator interface {
	NewID() string
}

// Repository defines the interface for ledger data access.
type Repository interface {
	// ListTransactions returns the user's transactions newest first. The slice is never nil.
	ListTransactions(ctx context.Context, userID string) ([]Transaction, error)
	// AddTransaction stores tx, returning ErrConflict when the same user already has a
	// transaction with tx.ID. Ids are scoped per user.
	AddTransaction(ctx context.Context, tx Transaction) error
	// GetProfile returns the stored profile or a zero-balance default.
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	// UpdateBalance sets the balance as of at. A stored profile updated after at is left
	// unchanged and returned as is.
	UpdateBalance(ctx context.Context, userID string, balance decimal.Decimal, at time.Time) (*Profile, error)
}

// Service defines the ledger service interface.
type Service interface {
	RecordTransaction(ctx context.Context, input RecordInput) (*Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]Transaction, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateBalance(ctx context.Context, userID string, balance decimal.Decimal) (*Profile, error)
	GetStats(ctx context.Context, userID string, loc *time.Location) (*gamification.Stats, error)
	GetAchievements(ctx context.Context, userID string, filter gamification.AchievementFilter) ([]gamification.Achievement, error)
}
