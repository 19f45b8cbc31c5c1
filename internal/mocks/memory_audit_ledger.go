package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

// MemoryAuditLedger is an in-memory domain.AuditLedger with the same filter,
// sort and pagination semantics as the database-backed ledger. AppendErr and
// QueryErr force failures for error-path tests.
type MemoryAuditLedger struct {
	mu      sync.Mutex
	records []domain.AuditRecord
	nextID  uint

	AppendErr error
	QueryErr  error
}

// NewMemoryAuditLedger creates an empty in-memory ledger.
func NewMemoryAuditLedger() *MemoryAuditLedger {
	return &MemoryAuditLedger{nextID: 1}
}

// Append assigns the next id and stores a copy of the record.
func (m *MemoryAuditLedger) Append(ctx context.Context, record *domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	record.ID = m.nextID
	m.nextID++
	m.records = append(m.records, *record)
	return nil
}

// QueryPage returns one page of matching records plus the total match count.
func (m *MemoryAuditLedger) QueryPage(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueryErr != nil {
		return nil, 0, m.QueryErr
	}
	matched := m.matchSorted(filter)
	total := int64(len(matched))

	offset := (filter.Page - 1) * filter.PageSize
	if offset >= len(matched) {
		return []domain.AuditRecord{}, total, nil
	}
	end := offset + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// QueryAll returns every matching record without pagination.
func (m *MemoryAuditLedger) QueryAll(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	return m.matchSorted(filter), nil
}

// Len reports the number of stored records.
func (m *MemoryAuditLedger) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Last returns the most recently appended record, or nil when empty.
func (m *MemoryAuditLedger) Last() *domain.AuditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.records) == 0 {
		return nil
	}
	last := m.records[len(m.records)-1]
	return &last
}

func (m *MemoryAuditLedger) matchSorted(filter domain.AuditFilter) []domain.AuditRecord {
	matched := make([]domain.AuditRecord, 0, len(m.records))
	for _, rec := range m.records {
		if matches(filter, rec) {
			matched = append(matched, rec)
		}
	}
	sortRecords(matched, filter)
	return matched
}

func matches(f domain.AuditFilter, rec domain.AuditRecord) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(rec.ActorRef()), needle) &&
			!strings.Contains(strings.ToLower(rec.Action), needle) &&
			!strings.Contains(strings.ToLower(rec.EntityID), needle) {
			return false
		}
	}
	if f.Action != "" && !strings.EqualFold(rec.Action, f.Action) {
		return false
	}
	if f.From != nil && rec.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && rec.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

func sortRecords(recs []domain.AuditRecord, f domain.AuditFilter) {
	less := func(a, b domain.AuditRecord) bool {
		switch f.SortBy {
		case "actor":
			return a.ActorRef() < b.ActorRef()
		case "action":
			return a.Action < b.Action
		case "entity":
			return a.EntityID < b.EntityID
		case "timestamp":
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	}
	equal := func(a, b domain.AuditRecord) bool {
		return !less(a, b) && !less(b, a)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		// Ties break on id ascending regardless of direction, matching the
		// database ledger's secondary order column.
		if equal(a, b) {
			return a.ID < b.ID
		}
		if f.SortDesc {
			return less(b, a)
		}
		return less(a, b)
	})
}

// Compile-time interface compliance verification
var _ domain.AuditLedger = (*MemoryAuditLedger)(nil)
