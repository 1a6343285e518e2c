package ledger

import (
	"sort"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ApplicationTarget names where a slice of a gross charge goes
type ApplicationTarget string

const (
	ApplicationTargetStoreCredit ApplicationTarget = "STORE_CREDIT"
	ApplicationTargetCreditNote  ApplicationTarget = "CREDIT_NOTE"
	ApplicationTargetInvoice     ApplicationTarget = "INVOICE"
	ApplicationTargetEstimate    ApplicationTarget = "ESTIMATE"
)

// IsValid returns true if the target is known
func (t ApplicationTarget) IsValid() bool {
	switch t {
	case ApplicationTargetStoreCredit, ApplicationTargetCreditNote,
		ApplicationTargetInvoice, ApplicationTargetEstimate:
		return true
	}
	return false
}

// ChargeApplication is one priority-ordered slice of a gross charge: apply
// this much against that target. The ledger records each item as a distinct
// transaction.
type ChargeApplication struct {
	Priority int               `json:"priority"`
	Target   ApplicationTarget `json:"target"`
	Document DocumentRef       `json:"-"`
	Amount   decimal.Decimal   `json:"amount"`
}

// ChargeApplicationList is a priority-ordered application plan
type ChargeApplicationList []ChargeApplication

// Sort orders the list by ascending priority
func (l ChargeApplicationList) Sort() {
	sort.SliceStable(l, func(i, j int) bool { return l[i].Priority < l[j].Priority })
}

// Total sums the applied amounts
func (l ChargeApplicationList) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range l {
		total = total.Add(item.Amount)
	}
	return total
}

// Validate checks each item and that the plan does not exceed the gross
// amount it splits.
func (l ChargeApplicationList) Validate(gross valueobject.Money) error {
	for _, item := range l {
		if !item.Target.IsValid() {
			return shared.NewDomainError("INVALID_APPLICATION_TARGET", "Unknown charge application target")
		}
		if item.Amount.IsNegative() || item.Amount.IsZero() {
			return shared.NewDomainError("INVALID_AMOUNT", "Charge application amount must be positive")
		}
		if item.Target != ApplicationTargetStoreCredit && item.Document.IsNone() {
			return shared.NewDomainError("INVALID_DOCUMENT_LINK", "Charge application requires a document")
		}
	}
	if l.Total().GreaterThan(gross.Amount()) {
		return shared.NewDomainError("APPLICATION_EXCEEDS_GROSS", "Charge applications exceed the gross amount")
	}
	return nil
}

// DocumentBalance is an open balance on a document, input to the builder
type DocumentBalance struct {
	Document DocumentRef
	Open     decimal.Decimal
}

// BuildChargeApplications splits a gross charge across the available
// sources in fixed priority order: store credit first, then open credit
// notes, then invoices, then estimates. Any remainder stays on the payment
// as unapplied balance.
func BuildChargeApplications(
	gross valueobject.Money,
	availableCredit valueobject.Money,
	creditNotes []DocumentBalance,
	invoices []DocumentBalance,
	estimates []DocumentBalance,
) (ChargeApplicationList, error) {
	if gross.IsNegative() || gross.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Gross amount must be positive")
	}
	if availableCredit.Currency() != gross.Currency() {
		return nil, shared.ErrCurrencyMismatch
	}

	var list ChargeApplicationList
	remaining := gross
	priority := 0

	if availableCredit.IsPositive() {
		slice, err := remaining.Min(availableCredit)
		if err != nil {
			return nil, err
		}
		if slice.IsPositive() {
			list = append(list, ChargeApplication{
				Priority: priority,
				Target:   ApplicationTargetStoreCredit,
				Document: NoDocument(),
				Amount:   slice.Amount(),
			})
			priority++
			remaining = remaining.MustSubtract(slice)
		}
	}

	consume := func(target ApplicationTarget, balances []DocumentBalance) {
		for _, bal := range balances {
			if remaining.IsZero() || bal.Open.LessThanOrEqual(decimal.Zero) {
				continue
			}
			slice := bal.Open
			if slice.GreaterThan(remaining.Amount()) {
				slice = remaining.Amount()
			}
			list = append(list, ChargeApplication{
				Priority: priority,
				Target:   target,
				Document: bal.Document,
				Amount:   slice,
			})
			priority++
			remaining = valueobject.MustNewMoney(remaining.Amount().Sub(slice), gross.Currency())
		}
	}

	consume(ApplicationTargetCreditNote, creditNotes)
	consume(ApplicationTargetInvoice, invoices)
	consume(ApplicationTargetEstimate, estimates)

	return list, nil
}
