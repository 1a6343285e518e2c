package ledger

import (
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// The delta engine computes the signed monetary impact of a ledger-entry
// mutation. Only succeeded entries carry an effect; refunds flip sign on the
// cash-received side, and adjustments applied to a credit note through a
// real (non store-credit) method are negated because credits reduce the
// document balance.

// documentEffect returns the entry's current effect on its linked document.
// Zero unless the entry has settled.
func documentEffect(tx *Transaction) decimal.Decimal {
	if tx == nil || tx.Status != TransactionStatusSucceeded {
		return decimal.Zero
	}
	amount := tx.Amount
	if tx.Type == TransactionTypeRefund {
		amount = amount.Neg()
	}
	if tx.Document.IsCreditNote() && tx.Type == TransactionTypeAdjustment && !tx.Method.IsBalance() {
		amount = amount.Neg()
	}
	return amount
}

// creditEffect returns the entry's current effect on the customer's store
// credit. Spending types consume credit; refunds and adjustments add their
// signed amount back.
func creditEffect(tx *Transaction) decimal.Decimal {
	if tx == nil || tx.Status != TransactionStatusSucceeded || !tx.Method.IsBalance() {
		return decimal.Zero
	}
	switch tx.Type {
	case TransactionTypeCharge, TransactionTypePayment:
		return tx.Amount.Neg()
	default:
		return tx.Amount
	}
}

// CreditEffect returns the entry's absolute effect on the customer's store
// credit as Money. Used by the mutation pipeline to key credit history
// snapshots; the currency falls back to the entry's own.
func CreditEffect(tx *Transaction) valueobject.Money {
	if tx == nil {
		return valueobject.Money{}
	}
	return valueobject.MustNewMoney(creditEffect(tx), tx.Currency)
}

// DeltaOnCreate returns the document delta caused by creating tx
func DeltaOnCreate(tx *Transaction) valueobject.Money {
	return valueobject.MustNewMoney(documentEffect(tx), tx.Currency)
}

// DeltaOnUpdate returns the document delta caused by mutating old into new.
// The four status-transition cases collapse into effect(new) - effect(old):
//  1. stays succeeded with a changed amount: new - old
//  2. pending|failed -> succeeded: the full new amount takes effect
//  3. succeeded -> pending|failed: the old effect is reversed
//  4. no transition through succeeded: zero
func DeltaOnUpdate(oldTx, newTx *Transaction) (valueobject.Money, error) {
	if newTx.Type == TransactionTypeRefund && !oldTx.Amount.Equal(newTx.Amount) {
		return valueobject.Money{}, NewImmutableFieldError("amount")
	}
	delta := documentEffect(newTx).Sub(documentEffect(oldTx))
	return valueobject.MustNewMoney(delta, newTx.Currency), nil
}

// DeltaOnDelete returns the document delta caused by deleting tx: its
// settled effect, reversed.
func DeltaOnDelete(tx *Transaction) valueobject.Money {
	return valueobject.MustNewMoney(documentEffect(tx).Neg(), tx.Currency)
}

// CreditEntry is the store-credit side effect of a mutation: the snapshot
// key plus the signed delta to thread through the credit balance history.
type CreditEntry struct {
	Delta valueobject.Money
}

// Effects is the full set of side effects a single mutation produces. The
// pipeline returns them for the caller to apply inside one atomic unit,
// rather than dispatching them through implicit hooks.
type Effects struct {
	// Document is the receivable document the delta applies to (may be the
	// none variant)
	Document DocumentRef
	// DocumentDelta is the signed delta for the document; a zero delta still
	// requires a status refresh so the document reflects the entry's state
	DocumentDelta valueobject.Money
	// CreditDelta is non-nil when the mutation moves store credit
	CreditDelta *CreditEntry
	// RefreshStatus is set whenever a document is linked
	RefreshStatus bool
}

// HasDocumentDelta returns true if a non-zero delta must be propagated
func (e *Effects) HasDocumentDelta() bool {
	return !e.DocumentDelta.IsZero()
}

// Mutate computes the effects of a transaction mutation. Exactly one of the
// three operations is selected by the arguments: create (oldTx nil), delete
// (newTx nil), or update (both present). The currency of the entry must
// match the linked document's; the caller verifies that via the resolved
// document before applying.
func Mutate(oldTx, newTx *Transaction) (*Effects, error) {
	if oldTx == nil && newTx == nil {
		return nil, shared.NewDomainError("INVALID_MUTATION", "Mutation requires at least one transaction state")
	}

	ref := newTx
	if ref == nil {
		ref = oldTx
	}

	var delta valueobject.Money
	var err error
	switch {
	case oldTx == nil:
		delta = DeltaOnCreate(newTx)
	case newTx == nil:
		delta = DeltaOnDelete(oldTx)
	default:
		if oldTx.Type != newTx.Type {
			return nil, NewImmutableFieldError("type")
		}
		if oldTx.Currency != newTx.Currency {
			return nil, NewImmutableFieldError("currency")
		}
		delta, err = DeltaOnUpdate(oldTx, newTx)
		if err != nil {
			return nil, err
		}
	}

	effects := &Effects{
		Document:      ref.Document,
		DocumentDelta: delta,
		RefreshStatus: !ref.Document.IsNone(),
	}

	creditDelta := creditEffect(newTx).Sub(creditEffect(oldTx))
	if ref.UsesStoreCredit() && !creditDelta.IsZero() {
		effects.CreditDelta = &CreditEntry{
			Delta: valueobject.MustNewMoney(creditDelta, ref.Currency),
		}
	}

	return effects, nil
}
