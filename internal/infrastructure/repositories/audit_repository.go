package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

// AuditRepositoryImpl implements domain.AuditLedger using GORM. The table is
// append-only: this type exposes no update or delete path.
type AuditRepositoryImpl struct {
	db *gorm.DB
}

// DBAuditRecord represents the database model for AuditRecord
type DBAuditRecord struct {
	ID        uint      `gorm:"primaryKey"`
	ActorID   *string   `gorm:"index;size:64"`
	Action    string    `gorm:"index;size:128"`
	EntityID  string    `gorm:"index;size:128"`
	Detail    string    `gorm:"size:1024"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBAuditRecord) TableName() string {
	return "audit_records"
}

// NewAuditRepository creates a new audit ledger repository
func NewAuditRepository(db *gorm.DB) domain.AuditLedger {
	return &AuditRepositoryImpl{db: db}
}

// sortColumns whitelists the sortable column keys. Anything else falls back
// to the insertion order.
var sortColumns = map[string]string{
	"actor":     "actor_id",
	"action":    "action",
	"entity":    "entity_id",
	"timestamp": "created_at",
}

// Append implements domain.AuditLedger. The row id and timestamp index make
// insertion order recoverable for stable sorting.
func (r *AuditRepositoryImpl) Append(ctx context.Context, record *domain.AuditRecord) error {
	dbRecord := &DBAuditRecord{
		ActorID:   record.ActorID,
		Action:    record.Action,
		EntityID:  record.EntityID,
		Detail:    record.Detail,
		CreatedAt: record.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(dbRecord).Error; err != nil {
		return err
	}
	record.ID = dbRecord.ID
	return nil
}

// QueryPage implements domain.AuditLedger
func (r *AuditRepositoryImpl) QueryPage(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, int64, error) {
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.ordered(query, filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size > 0 {
		query = query.Offset((page - 1) * size).Limit(size)
	}

	var dbRecords []DBAuditRecord
	if err := query.Find(&dbRecords).Error; err != nil {
		return nil, 0, err
	}
	return r.dbToDomain(dbRecords), total, nil
}

// QueryAll implements domain.AuditLedger. Used by the CSV export, which never
// paginates.
func (r *AuditRepositoryImpl) QueryAll(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
	query := r.ordered(r.filtered(ctx, filter), filter)

	var dbRecords []DBAuditRecord
	if err := query.Find(&dbRecords).Error; err != nil {
		return nil, err
	}
	return r.dbToDomain(dbRecords), nil
}

// filtered builds the WHERE clauses shared by both read paths. Dimensions
// combine with AND; the free-text search ORs across actor, action and entity.
func (r *AuditRepositoryImpl) filtered(ctx context.Context, filter domain.AuditFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&DBAuditRecord{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(COALESCE(actor_id, '')) LIKE ? OR LOWER(action) LIKE ? OR LOWER(entity_id) LIKE ?",
			like, like, like,
		)
	}
	if filter.Action != "" {
		query = query.Where("LOWER(action) = ?", strings.ToLower(filter.Action))
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	return query
}

// ordered applies the sort. The secondary id sort keeps ties in insertion
// order regardless of direction.
func (r *AuditRepositoryImpl) ordered(query *gorm.DB, filter domain.AuditFilter) *gorm.DB {
	column, ok := sortColumns[filter.SortBy]
	if !ok {
		return query.Order("id ASC")
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	return query.Order(fmt.Sprintf("%s %s", column, direction)).Order("id ASC")
}

func (r *AuditRepositoryImpl) dbToDomain(dbRecords []DBAuditRecord) []domain.AuditRecord {
	records := make([]domain.AuditRecord, 0, len(dbRecords))
	for _, dbRecord := range dbRecords {
		records = append(records, domain.AuditRecord{
			ID:        dbRecord.ID,
			ActorID:   dbRecord.ActorID,
			Action:    dbRecord.Action,
			EntityID:  dbRecord.EntityID,
			Detail:    dbRecord.Detail,
			CreatedAt: dbRecord.CreatedAt,
		})
	}
	return records
}
