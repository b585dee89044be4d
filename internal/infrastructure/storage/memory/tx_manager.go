// Package memory provides in-memory storage implementations. They back
// the demo binary and the test suites; production deployments swap in the
// SQL implementations behind the same repository interfaces.
package memory

import (
	"context"
	"sync"
)

type txKey struct{}

// TxManager serializes units of work behind one mutex. With every store
// in process memory there is nothing to roll back; exclusivity is the
// property the domain services rely on, and it is what this gives them.
type TxManager struct {
	mu sync.Mutex
}

// NewTxManager creates an in-memory transaction manager.
func NewTxManager() *TxManager {
	return &TxManager{}
}

// RunInTransaction executes fn exclusively. Nested calls reuse the
// current transaction instead of deadlocking on the mutex.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}

// ReadOnly executes fn under the same exclusivity as a write transaction.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransaction(ctx, fn)
}
