package shared

import "context"

// TransactionManager runs a function inside a single atomic storage
// transaction. Repository calls made with the context passed to fn join that
// transaction; if fn returns an error, every write is rolled back.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
