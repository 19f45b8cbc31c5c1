package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

// csvHeader is the fixed export header. Consumers parse it positionally.
var csvHeader = []string{"User ID", "Action", "Timestamp", "Details"}

// AuditServiceImpl implements domain.AuditService: the best-effort write side
// every sensitive mutation calls, and the read side administrators query.
type AuditServiceImpl struct {
	ledger   domain.AuditLedger
	pageSize int
}

// NewAuditService creates a new audit service. pageSize fixes the rows per
// query page; export ignores it.
func NewAuditService(ledger domain.AuditLedger, pageSize int) domain.AuditService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &AuditServiceImpl{
		ledger:   ledger,
		pageSize: pageSize,
	}
}

// Record implements domain.AuditService. A ledger failure must never fail the
// mutation that is being audited, so the error is logged for operational
// visibility and swallowed; the caller always gets the record back, saved or
// not.
func (s *AuditServiceImpl) Record(ctx context.Context, actorID *string, action, entityID, detail string) *domain.AuditRecord {
	record := domain.NewAuditRecord(actorID, action, entityID, detail)

	if err := s.ledger.Append(ctx, record); err != nil {
		log.Printf("AUDIT_WRITE_FAILED: action=%q entity=%q actor=%q error=%v",
			action, entityID, record.ActorRef(), err)
		return record
	}
	log.Printf("AUDIT: id=%d action=%q entity=%q actor=%q", record.ID, action, entityID, record.ActorRef())
	return record
}

// Query implements domain.AuditService. Unlike the write side, read failures
// propagate: there is no primary operation to protect.
func (s *AuditServiceImpl) Query(ctx context.Context, filter domain.AuditFilter) (*domain.AuditPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	filter.PageSize = s.pageSize

	records, total, err := s.ledger.QueryPage(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuditQueryFailed, err)
	}

	totalPages := int((total + int64(s.pageSize) - 1) / int64(s.pageSize))
	return &domain.AuditPage{
		Records:    records,
		Total:      total,
		Page:       filter.Page,
		PageSize:   s.pageSize,
		TotalPages: totalPages,
	}, nil
}

// ExportCSV implements domain.AuditService. Serializes the entire filtered,
// sorted result set; pagination never applies. Empty optional fields render
// as empty strings.
func (s *AuditServiceImpl) ExportCSV(ctx context.Context, filter domain.AuditFilter) ([]byte, error) {
	records, err := s.ledger.QueryAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuditQueryFailed, err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuditQueryFailed, err)
	}
	for _, record := range records {
		row := []string{
			record.ActorRef(),
			record.Action,
			record.CreatedAt.UTC().Format(domain.AuditTimeLayout),
			record.Detail,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrAuditQueryFailed, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuditQueryFailed, err)
	}
	return buf.Bytes(), nil
}
