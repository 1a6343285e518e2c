// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Only the ledger aggregates are mapped through dedicated models: their
// document reference is a tagged value type that has no direct column
// representation. Customer and receivable document aggregates carry their
// own column mappings and are persisted directly by the repositories.
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel, TenantAggregateModel)
// - ledger.go: Ledger context models (Transaction, Payment, CreditSnapshot, MatchSuggestion)
package models
