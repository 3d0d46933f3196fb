package messaging

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/walletquest/gamification-service/internal/gamification"
	"github.com/walletquest/gamification-service/internal/ledger"
)

// ErrMalformed marks a delivery that can never be processed and must not be requeued.
var ErrMalformed = errors.New("malformed event")

// Amount is a monetary value as published by the bank.
type Amount struct {
	Value        string `json:"value"`
	CurrencyCode string `json:"currencyCode"`
}

// TransactionEvent is published by the bank for every completed account operation.
type TransactionEvent struct {
	EventID       string  `json:"eventId"`
	UserID        string  `json:"userId"`
	TransactionID string  `json:"transactionId"`
	Type          string  `json:"type"`
	Amount        Amount  `json:"amount"`
	BalanceAfter  *Amount `json:"balanceAfter,omitempty"`
	Timestamp     string  `json:"timestamp"`
}

// DecodeEvent parses a delivery body into a ledger record request.
func DecodeEvent(body []byte) (ledger.RecordInput, error) {
	var event TransactionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return ledger.RecordInput{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return event.RecordInput()
}

// RecordInput validates the event and maps it to the ledger input. The transaction id falls
// back to the event id so redeliveries stay idempotent.
func (e TransactionEvent) RecordInput() (ledger.RecordInput, error) {
	if e.UserID == "" {
		return ledger.RecordInput{}, fmt.Errorf("%w: user ID is required", ErrMalformed)
	}

	id := e.TransactionID
	if id == "" {
		id = e.EventID
	}
	if id == "" {
		return ledger.RecordInput{}, fmt.Errorf("%w: transaction ID or event ID is required", ErrMalformed)
	}

	typ := gamification.TransactionType(strings.ToLower(e.Type))
	if !typ.Valid() {
		return ledger.RecordInput{}, fmt.Errorf("%w: unsupported type %q", ErrMalformed, e.Type)
	}

	amount, err := decimal.NewFromString(e.Amount.Value)
	if err != nil {
		return ledger.RecordInput{}, fmt.Errorf("%w: amount: %v", ErrMalformed, err)
	}

	if e.Timestamp == "" {
		return ledger.RecordInput{}, fmt.Errorf("%w: timestamp is required", ErrMalformed)
	}
	ts, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return ledger.RecordInput{}, fmt.Errorf("%w: timestamp: %v", ErrMalformed, err)
	}

	input := ledger.RecordInput{
		ID:        id,
		UserID:    e.UserID,
		Type:      typ,
		Amount:    amount,
		Currency:  e.Amount.CurrencyCode,
		CreatedAt: &ts,
	}

	if e.BalanceAfter != nil {
		balance, err := decimal.NewFromString(e.BalanceAfter.Value)
		if err != nil {
			return ledger.RecordInput{}, fmt.Errorf("%w: balanceAfter: %v", ErrMalformed, err)
		}
		input.BalanceAfter = &balance
	}

	return input, nil
}
