package mocks

import (
	"context"
	"sync"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

// MockAuditService implements domain.AuditService interface for testing. By
// default Record keeps records in memory so tests can assert what was written.
type MockAuditService struct {
	RecordFunc    func(ctx context.Context, actorID *string, action, entityID, detail string) *domain.AuditRecord
	QueryFunc     func(ctx context.Context, filter domain.AuditFilter) (*domain.AuditPage, error)
	ExportCSVFunc func(ctx context.Context, filter domain.AuditFilter) ([]byte, error)

	mu       sync.Mutex
	recorded []domain.AuditRecord
}

// NewMockAuditService creates a new MockAuditService with default behaviors
func NewMockAuditService() *MockAuditService {
	return &MockAuditService{}
}

// Record captures the record in memory
func (m *MockAuditService) Record(ctx context.Context, actorID *string, action, entityID, detail string) *domain.AuditRecord {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, actorID, action, entityID, detail)
	}
	rec := domain.NewAuditRecord(actorID, action, entityID, detail)
	m.mu.Lock()
	rec.ID = uint(len(m.recorded) + 1)
	m.recorded = append(m.recorded, *rec)
	m.mu.Unlock()
	return rec
}

// Query returns an empty page
func (m *MockAuditService) Query(ctx context.Context, filter domain.AuditFilter) (*domain.AuditPage, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, filter)
	}
	return &domain.AuditPage{
		Records:  []domain.AuditRecord{},
		Page:     1,
		PageSize: filter.PageSize,
	}, nil
}

// ExportCSV returns a header-only export
func (m *MockAuditService) ExportCSV(ctx context.Context, filter domain.AuditFilter) ([]byte, error) {
	if m.ExportCSVFunc != nil {
		return m.ExportCSVFunc(ctx, filter)
	}
	return []byte("User ID,Action,Timestamp,Details\n"), nil
}

// Recorded returns a snapshot of everything captured by the default Record.
func (m *MockAuditService) Recorded() []domain.AuditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AuditRecord, len(m.recorded))
	copy(out, m.recorded)
	return out
}

// RecordedActions returns just the action names, in record order.
func (m *MockAuditService) RecordedActions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, 0, len(m.recorded))
	for _, rec := range m.recorded {
		actions = append(actions, rec.Action)
	}
	return actions
}

// Compile-time interface compliance verification
var _ domain.AuditService = (*MockAuditService)(nil)
