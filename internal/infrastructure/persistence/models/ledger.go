package models

import (
	"time"

	"github.com/billing/backend/internal/domain/ledger"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for the ledger Transaction
// aggregate. The document reference is flattened into a kind column and a
// nullable id column.
type TransactionModel struct {
	TenantAggregateModel
	Date                time.Time              `gorm:"not null;index"`
	Type                ledger.TransactionType `gorm:"type:varchar(30);not null;index"`
	Status              ledger.TransactionStatus
	Method              ledger.PaymentMethod `gorm:"type:varchar(50);not null"`
	Currency            valueobject.Currency `gorm:"type:varchar(3);not null"`
	Amount              decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Notes               string               `gorm:"type:text"`
	GatewayID           string               `gorm:"type:varchar(100)"`
	DocumentKind        ledger.DocumentKind  `gorm:"type:varchar(20);not null;default:'NONE';index:idx_transaction_document"`
	DocumentID          *uuid.UUID           `gorm:"type:uuid;index:idx_transaction_document"`
	ParentTransactionID *uuid.UUID           `gorm:"type:uuid;index"`
	PaymentID           *uuid.UUID           `gorm:"type:uuid;index"`
	CustomerID          *uuid.UUID           `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	doc := ledger.NoDocument()
	if m.DocumentKind != "" && m.DocumentKind != ledger.DocumentKindNone && m.DocumentID != nil {
		if ref, err := ledger.NewDocumentRef(m.DocumentKind, *m.DocumentID); err == nil {
			doc = ref
		}
	}
	return &ledger.Transaction{
		TenantAggregateRoot: m.toTenantAggregateRoot(),
		Date:                m.Date,
		Type:                m.Type,
		Status:              m.Status,
		Method:              m.Method,
		Currency:            m.Currency,
		Amount:              m.Amount,
		Notes:               m.Notes,
		GatewayID:           m.GatewayID,
		Document:            doc,
		ParentTransactionID: m.ParentTransactionID,
		PaymentID:           m.PaymentID,
		CustomerID:          m.CustomerID,
	}
}

// FromDomain populates the persistence model from a domain Transaction
func (m *TransactionModel) FromDomain(tx *ledger.Transaction) {
	m.FromDomainTenantAggregateRoot(tx.TenantAggregateRoot)
	m.Date = tx.Date
	m.Type = tx.Type
	m.Status = tx.Status
	m.Method = tx.Method
	m.Currency = tx.Currency
	m.Amount = tx.Amount
	m.Notes = tx.Notes
	m.GatewayID = tx.GatewayID
	m.DocumentKind = tx.Document.Kind()
	if tx.Document.IsNone() {
		m.DocumentID = nil
	} else {
		id := tx.Document.ID()
		m.DocumentID = &id
	}
	m.ParentTransactionID = tx.ParentTransactionID
	m.PaymentID = tx.PaymentID
	m.CustomerID = tx.CustomerID
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction
func TransactionModelFromDomain(tx *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(tx)
	return m
}

// PaymentModel is the persistence model for the ledger Payment aggregate.
type PaymentModel struct {
	TenantAggregateModel
	CustomerID *uuid.UUID           `gorm:"type:uuid;index"`
	Amount     decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Balance    decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency   valueobject.Currency `gorm:"type:varchar(3);not null"`
	Applied    bool                 `gorm:"not null;default:false;index"`
	Voided     bool                 `gorm:"not null;default:false;index"`
	Date       time.Time            `gorm:"not null;index"`
	Method     ledger.PaymentMethod `gorm:"type:varchar(50);not null"`
	Source     string               `gorm:"type:varchar(100)"`
	Notes      string               `gorm:"type:text"`
	VoidedAt   *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *ledger.Payment {
	return &ledger.Payment{
		TenantAggregateRoot: m.toTenantAggregateRoot(),
		CustomerID:          m.CustomerID,
		Amount:              m.Amount,
		Balance:             m.Balance,
		Currency:            m.Currency,
		Applied:             m.Applied,
		Voided:              m.Voided,
		Date:                m.Date,
		Method:              m.Method,
		Source:              m.Source,
		Notes:               m.Notes,
		VoidedAt:            m.VoidedAt,
	}
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *ledger.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.CustomerID = p.CustomerID
	m.Amount = p.Amount
	m.Balance = p.Balance
	m.Currency = p.Currency
	m.Applied = p.Applied
	m.Voided = p.Voided
	m.Date = p.Date
	m.Method = p.Method
	m.Source = p.Source
	m.Notes = p.Notes
	m.VoidedAt = p.VoidedAt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// CreditSnapshotModel is the persistence model for one point of a customer's
// store-credit timeline. The transaction id is the primary key.
type CreditSnapshotModel struct {
	TransactionID uuid.UUID            `gorm:"type:uuid;primary_key"`
	TenantID      uuid.UUID            `gorm:"type:uuid;not null;index:idx_credit_snapshot_timeline"`
	CustomerID    uuid.UUID            `gorm:"type:uuid;not null;index:idx_credit_snapshot_timeline"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null;index:idx_credit_snapshot_timeline"`
	Timestamp     time.Time            `gorm:"not null;index"`
	Delta         decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Balance       decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (CreditSnapshotModel) TableName() string {
	return "credit_snapshots"
}

// ToDomain converts the persistence model to a domain CreditSnapshot
func (m *CreditSnapshotModel) ToDomain() ledger.CreditSnapshot {
	return ledger.CreditSnapshot{
		TransactionID: m.TransactionID,
		TenantID:      m.TenantID,
		CustomerID:    m.CustomerID,
		Currency:      m.Currency,
		Timestamp:     m.Timestamp,
		Delta:         m.Delta,
		Balance:       m.Balance,
	}
}

// CreditSnapshotModelFromDomain creates a persistence model from a domain CreditSnapshot
func CreditSnapshotModelFromDomain(s ledger.CreditSnapshot) CreditSnapshotModel {
	return CreditSnapshotModel{
		TransactionID: s.TransactionID,
		TenantID:      s.TenantID,
		CustomerID:    s.CustomerID,
		Currency:      s.Currency,
		Timestamp:     s.Timestamp,
		Delta:         s.Delta,
		Balance:       s.Balance,
	}
}

// MatchSuggestionModel is the persistence model for advisory
// payment-to-document matches.
type MatchSuggestionModel struct {
	BaseModel
	TenantID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	PaymentID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	DocumentKind ledger.DocumentKind `gorm:"type:varchar(20);not null"`
	DocumentID   uuid.UUID           `gorm:"type:uuid;not null"`
	Amount       decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (MatchSuggestionModel) TableName() string {
	return "match_suggestions"
}

// ToDomain converts the persistence model to a domain MatchSuggestion
func (m *MatchSuggestionModel) ToDomain() *ledger.MatchSuggestion {
	doc := ledger.NoDocument()
	if ref, err := ledger.NewDocumentRef(m.DocumentKind, m.DocumentID); err == nil {
		doc = ref
	}
	return &ledger.MatchSuggestion{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		PaymentID:  m.PaymentID,
		Document:   doc,
		Amount:     m.Amount,
	}
}

// FromDomain populates the persistence model from a domain MatchSuggestion
func (m *MatchSuggestionModel) FromDomain(s *ledger.MatchSuggestion) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.TenantID = s.TenantID
	m.PaymentID = s.PaymentID
	m.DocumentKind = s.Document.Kind()
	m.DocumentID = s.Document.ID()
	m.Amount = s.Amount
}

// MatchSuggestionModelFromDomain creates a persistence model from a domain MatchSuggestion
func MatchSuggestionModelFromDomain(s *ledger.MatchSuggestion) *MatchSuggestionModel {
	m := &MatchSuggestionModel{}
	m.FromDomain(s)
	return m
}
