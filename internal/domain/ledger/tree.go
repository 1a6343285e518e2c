package ledger

import (
	"sort"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionArena holds a set of transactions keyed by id, with children
// indexed by parent id. Parent references always point rootwards, so the
// structure is a forest; cycles are rejected at insert time, which keeps
// traversal free of visited-set bookkeeping.
type TransactionArena struct {
	byID     map[uuid.UUID]*Transaction
	children map[uuid.UUID][]uuid.UUID
}

// NewTransactionArena builds an arena from the given transactions.
// Entries with a missing or cyclic parent chain are rejected.
func NewTransactionArena(transactions []*Transaction) (*TransactionArena, error) {
	arena := &TransactionArena{
		byID:     make(map[uuid.UUID]*Transaction, len(transactions)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	// Two passes so insertion order does not matter: ids first, then edges.
	for _, tx := range transactions {
		if _, ok := arena.byID[tx.ID]; ok {
			return nil, shared.NewDomainError("DUPLICATE_TRANSACTION", "Transaction already present in arena")
		}
		arena.byID[tx.ID] = tx
	}
	for _, tx := range transactions {
		if err := arena.link(tx); err != nil {
			return nil, err
		}
	}
	return arena, nil
}

// Insert adds a single transaction, validating its parent chain
func (a *TransactionArena) Insert(tx *Transaction) error {
	if _, ok := a.byID[tx.ID]; ok {
		return shared.NewDomainError("DUPLICATE_TRANSACTION", "Transaction already present in arena")
	}
	a.byID[tx.ID] = tx
	if err := a.link(tx); err != nil {
		delete(a.byID, tx.ID)
		return err
	}
	return nil
}

// link registers the parent edge and verifies the chain terminates
func (a *TransactionArena) link(tx *Transaction) error {
	if tx.ParentTransactionID == nil {
		return nil
	}
	parentID := *tx.ParentTransactionID
	if parentID == tx.ID {
		return shared.NewDomainError("TRANSACTION_CYCLE", "Transaction cannot be its own parent")
	}
	// Walk rootwards; revisiting the inserted id means the edge closes a loop.
	seen := map[uuid.UUID]bool{tx.ID: true}
	for cur := parentID; ; {
		if seen[cur] {
			return shared.NewDomainError("TRANSACTION_CYCLE", "Parent chain forms a cycle")
		}
		seen[cur] = true
		parent, ok := a.byID[cur]
		if !ok {
			break // parent outside the arena, chain ends here
		}
		if parent.ParentTransactionID == nil {
			break
		}
		cur = *parent.ParentTransactionID
	}
	a.children[parentID] = append(a.children[parentID], tx.ID)
	return nil
}

// Get returns the transaction with the given id, or nil
func (a *TransactionArena) Get(id uuid.UUID) *Transaction {
	return a.byID[id]
}

// Len returns the number of transactions held
func (a *TransactionArena) Len() int {
	return len(a.byID)
}

// Walk returns a fresh depth-first iterator over the root and all of its
// descendants. Each call constructs an independent traversal; no state is
// shared between iterators.
func (a *TransactionArena) Walk(rootID uuid.UUID) *TreeIterator {
	it := &TreeIterator{arena: a}
	if _, ok := a.byID[rootID]; ok {
		it.stack = []uuid.UUID{rootID}
	}
	return it
}

// TreeIterator is a lazy depth-first traversal over a transaction tree.
// The traversal is finite because cycles are rejected at insert time.
type TreeIterator struct {
	arena *TransactionArena
	stack []uuid.UUID
}

// Next returns the next transaction in depth-first order, or false when the
// traversal is exhausted.
func (it *TreeIterator) Next() (*Transaction, bool) {
	if len(it.stack) == 0 {
		return nil, false
	}
	id := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]

	// Push children reversed so the earliest entry is visited first.
	childIDs := it.arena.orderedChildren(id)
	for i := len(childIDs) - 1; i >= 0; i-- {
		it.stack = append(it.stack, childIDs[i])
	}
	return it.arena.byID[id], true
}

// orderedChildren returns child ids sorted by (date, id) for deterministic
// traversal
func (a *TransactionArena) orderedChildren(id uuid.UUID) []uuid.UUID {
	childIDs := a.children[id]
	if len(childIDs) < 2 {
		return childIDs
	}
	ordered := make([]uuid.UUID, len(childIDs))
	copy(ordered, childIDs)
	sort.Slice(ordered, func(i, j int) bool {
		a1, a2 := a.byID[ordered[i]], a.byID[ordered[j]]
		if !a1.Date.Equal(a2.Date) {
			return a1.Date.Before(a2.Date)
		}
		return a1.ID.String() < a2.ID.String()
	})
	return ordered
}

// Descendants collects the root and every transaction below it
func (a *TransactionArena) Descendants(rootID uuid.UUID) []*Transaction {
	var result []*Transaction
	it := a.Walk(rootID)
	for tx, ok := it.Next(); ok; tx, ok = it.Next() {
		result = append(result, tx)
	}
	return result
}

// NetSettled aggregates the settled monetary effect of a charge and all of
// its descendants (refunds and retries), in the root's currency. Used for
// reporting across a settlement tree without loading the whole ledger.
func (a *TransactionArena) NetSettled(rootID uuid.UUID) (valueobject.Money, error) {
	root := a.byID[rootID]
	if root == nil {
		return valueobject.Money{}, shared.ErrNotFound
	}
	net := decimal.Zero
	it := a.Walk(rootID)
	for tx, ok := it.Next(); ok; tx, ok = it.Next() {
		if tx.Currency != root.Currency {
			return valueobject.Money{}, shared.ErrCurrencyMismatch
		}
		if !tx.IsSucceeded() {
			continue
		}
		amount := tx.Amount
		if tx.Type == TransactionTypeRefund {
			amount = amount.Neg()
		}
		net = net.Add(amount)
	}
	return valueobject.MustNewMoney(net, root.Currency), nil
}
