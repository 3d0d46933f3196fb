package ledger

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/walletquest/gamification-service/internal/gamification"
)

const (
	usersCollection        = "users"
	transactionsCollection = "transactions"
	profilesCollection     = "profiles"
)

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a new Firestore repository. Transactions live under
// users/{userID}/transactions and balances under profiles/{userID}.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

// Amounts are stored as decimal strings to keep precision.
type transactionDoc struct {
	UserID       string    `firestore:"user_id"`
	Type         string    `firestore:"type"`
	Amount       string    `firestore:"amount"`
	Currency     string    `firestore:"currency"`
	Counterparty string    `firestore:"counterparty"`
	Description  string    `firestore:"description"`
	CreatedAt    time.Time `firestore:"created_at"`
}

type profileDoc struct {
	UserID    string    `firestore:"user_id"`
	Balance   string    `firestore:"balance"`
	Currency  string    `firestore:"currency"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func (r *firestoreRepository) transactions(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(transactionsCollection)
}

func (r *firestoreRepository) ListTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	iter := r.transactions(userID).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	txs := make([]Transaction, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var payload transactionDoc
		if err := doc.DataTo(&payload); err != nil {
			return nil, fmt.Errorf("decode transaction %s: %w", doc.Ref.ID, err)
		}
		amount, err := decimal.NewFromString(payload.Amount)
		if err != nil {
			return nil, fmt.Errorf("decode transaction %s amount: %w", doc.Ref.ID, err)
		}

		txs = append(txs, Transaction{
			ID:           doc.Ref.ID,
			UserID:       userID,
			Type:         gamification.TransactionType(payload.Type),
			Amount:       amount,
			Currency:     payload.Currency,
			Counterparty: payload.Counterparty,
			Description:  payload.Description,
			CreatedAt:    payload.CreatedAt,
		})
	}
	return txs, nil
}

func (r *firestoreRepository) AddTransaction(ctx context.Context, tx Transaction) error {
	_, err := r.transactions(tx.UserID).Doc(tx.ID).Create(ctx, transactionDoc{
		UserID:       tx.UserID,
		Type:         string(tx.Type),
		Amount:       tx.Amount.String(),
		Currency:     tx.Currency,
		Counterparty: tx.Counterparty,
		Description:  tx.Description,
		CreatedAt:    tx.CreatedAt,
	})
	if status.Code(err) == codes.AlreadyExists {
		return ErrConflict
	}
	return err
}

func (r *firestoreRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	doc, err := r.client.Collection(profilesCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return defaultProfile(userID), nil
	}
	if err != nil {
		return nil, err
	}

	var payload profileDoc
	if err := doc.DataTo(&payload); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}

	balance := decimal.Zero
	if payload.Balance != "" {
		balance, err = decimal.NewFromString(payload.Balance)
		if err != nil {
			return nil, fmt.Errorf("decode profile balance: %w", err)
		}
	}

	return &Profile{
		UserID:    userID,
		Balance:   balance,
		Currency:  payload.Currency,
		UpdatedAt: payload.UpdatedAt,
	}, nil
}

func (r *firestoreRepository) UpdateBalance(ctx context.Context, userID string, balance decimal.Decimal, at time.Time) (*Profile, error) {
	docRef := r.client.Collection(profilesCollection).Doc(userID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		switch {
		case status.Code(err) == codes.NotFound:
		case err != nil:
			return err
		default:
			var current profileDoc
			if err := snap.DataTo(&current); err != nil {
				return fmt.Errorf("unmarshal profile: %w", err)
			}
			if current.UpdatedAt.After(at) {
				return nil
			}
		}

		return tx.Set(docRef, map[string]any{
			"user_id":    userID,
			"balance":    balance.String(),
			"updated_at": at,
		}, firestore.MergeAll)
	})
	if err != nil {
		return nil, err
	}
	return r.GetProfile(ctx, userID)
}
