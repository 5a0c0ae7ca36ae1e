package tx

import "context"

// MockManager runs fn inline and counts calls. Rollback is not simulated;
// tests that need it should assert on the returned error instead.
type MockManager struct {
	Calls int
}

// RunInTransaction implements Manager.
func (m *MockManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	return fn(ctx)
}

// ReadOnly implements ReadOnlyManager.
func (m *MockManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
