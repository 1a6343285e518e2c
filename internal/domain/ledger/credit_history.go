package ledger

import (
	"sort"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditSnapshot is one point in a customer's store-credit timeline: the
// running balance immediately after the identified transaction took effect.
// The transaction id doubles as the primary key; ordering is by
// (timestamp, transaction id).
type CreditSnapshot struct {
	TransactionID uuid.UUID
	TenantID      uuid.UUID
	CustomerID    uuid.UUID
	Currency      valueobject.Currency
	Timestamp     time.Time
	Delta         decimal.Decimal
	Balance       decimal.Decimal
}

// before reports snapshot ordering: (timestamp, transactionID) ascending
func (s *CreditSnapshot) before(other *CreditSnapshot) bool {
	if !s.Timestamp.Equal(other.Timestamp) {
		return s.Timestamp.Before(other.Timestamp)
	}
	return s.TransactionID.String() < other.TransactionID.String()
}

// CreditHistory is the event-sourced store-credit ledger for one
// (customer, currency) pair. Mutations recompute every forward snapshot so
// an overspend introduced anywhere in the timeline is caught before commit,
// not just at "now": the amount or date of a store-credit entry can be
// edited after creation, invalidating a previously-valid timeline.
type CreditHistory struct {
	tenantID   uuid.UUID
	customerID uuid.UUID
	currency   valueobject.Currency
	snapshots  []CreditSnapshot
	dirty      bool
}

// NewCreditHistory builds the history from stored snapshots, sorting them
// into timeline order.
func NewCreditHistory(tenantID, customerID uuid.UUID, currency valueobject.Currency, snapshots []CreditSnapshot) *CreditHistory {
	h := &CreditHistory{
		tenantID:   tenantID,
		customerID: customerID,
		currency:   currency,
		snapshots:  append([]CreditSnapshot(nil), snapshots...),
	}
	sort.Slice(h.snapshots, func(i, j int) bool {
		return h.snapshots[i].before(&h.snapshots[j])
	})
	return h
}

// CustomerID returns the customer this history belongs to
func (h *CreditHistory) CustomerID() uuid.UUID {
	return h.customerID
}

// Currency returns the currency of the tracked balance
func (h *CreditHistory) Currency() valueobject.Currency {
	return h.currency
}

// Snapshots returns the timeline in ascending order
func (h *CreditHistory) Snapshots() []CreditSnapshot {
	return h.snapshots
}

// Dirty reports whether the timeline has uncommitted changes
func (h *CreditHistory) Dirty() bool {
	return h.dirty
}

// AddTransaction inserts a snapshot for the transaction's signed effect at
// its date, then recomputes every subsequent snapshot on top of the new
// running total.
func (h *CreditHistory) AddTransaction(txID uuid.UUID, at time.Time, delta valueobject.Money) error {
	if delta.Currency() != h.currency {
		return shared.ErrCurrencyMismatch
	}
	if h.indexOf(txID) >= 0 {
		return shared.ErrAlreadyExists
	}

	snapshot := CreditSnapshot{
		TransactionID: txID,
		TenantID:      h.tenantID,
		CustomerID:    h.customerID,
		Currency:      h.currency,
		Timestamp:     at,
		Delta:         delta.Amount(),
	}
	pos := sort.Search(len(h.snapshots), func(i int) bool {
		return snapshot.before(&h.snapshots[i])
	})
	h.snapshots = append(h.snapshots, CreditSnapshot{})
	copy(h.snapshots[pos+1:], h.snapshots[pos:])
	h.snapshots[pos] = snapshot

	h.recomputeFrom(pos)
	h.dirty = true
	return nil
}

// ChangeTransaction removes the old snapshot for the transaction and
// re-inserts it with the new date and amount, triggering the same forward
// recomputation.
func (h *CreditHistory) ChangeTransaction(txID uuid.UUID, newAt time.Time, newDelta valueobject.Money) error {
	if err := h.DeleteTransaction(txID); err != nil {
		return err
	}
	return h.AddTransaction(txID, newAt, newDelta)
}

// DeleteTransaction removes the snapshot and recomputes forward balances as
// if the transaction never existed.
func (h *CreditHistory) DeleteTransaction(txID uuid.UUID) error {
	pos := h.indexOf(txID)
	if pos < 0 {
		return shared.ErrNotFound
	}
	h.snapshots = append(h.snapshots[:pos], h.snapshots[pos+1:]...)
	h.recomputeFrom(pos)
	h.dirty = true
	return nil
}

// Overspend returns the first snapshot whose recomputed balance is
// negative, or nil if the whole timeline stays non-negative. Callers check
// this after every mutation and must reject the triggering write when it is
// non-nil.
func (h *CreditHistory) Overspend() *CreditSnapshot {
	for i := range h.snapshots {
		if h.snapshots[i].Balance.IsNegative() {
			return &h.snapshots[i]
		}
	}
	return nil
}

// OverspendError converts the current overspend, if any, into the error the
// triggering mutation must surface.
func (h *CreditHistory) OverspendError() error {
	s := h.Overspend()
	if s == nil {
		return nil
	}
	return &CreditOverspendError{
		CustomerID: h.customerID,
		Currency:   string(h.currency),
		Balance:    s.Balance,
		Timestamp:  s.Timestamp,
	}
}

// BalanceAt returns the balance as of the given time: the most recent
// snapshot at or before it, zero if none exists.
func (h *CreditHistory) BalanceAt(at time.Time) valueobject.Money {
	balance := decimal.Zero
	for i := len(h.snapshots) - 1; i >= 0; i-- {
		if !h.snapshots[i].Timestamp.After(at) {
			balance = h.snapshots[i].Balance
			break
		}
	}
	return valueobject.MustNewMoney(balance, h.currency)
}

// CurrentBalance returns the balance after the latest snapshot
func (h *CreditHistory) CurrentBalance() valueobject.Money {
	if len(h.snapshots) == 0 {
		return valueobject.Zero(h.currency)
	}
	return valueobject.MustNewMoney(h.snapshots[len(h.snapshots)-1].Balance, h.currency)
}

// indexOf locates a snapshot by transaction id, -1 if absent
func (h *CreditHistory) indexOf(txID uuid.UUID) int {
	for i := range h.snapshots {
		if h.snapshots[i].TransactionID == txID {
			return i
		}
	}
	return -1
}

// recomputeFrom re-applies each snapshot's recorded delta on top of the
// running total, starting at index pos.
func (h *CreditHistory) recomputeFrom(pos int) {
	running := decimal.Zero
	if pos > 0 {
		running = h.snapshots[pos-1].Balance
	}
	for i := pos; i < len(h.snapshots); i++ {
		running = running.Add(h.snapshots[i].Delta)
		h.snapshots[i].Balance = running
	}
}
