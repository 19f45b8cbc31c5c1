package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

func appendRecord(t *testing.T, ledger domain.AuditLedger, actor, action, entity string, at time.Time) *domain.AuditRecord {
	t.Helper()

	record := &domain.AuditRecord{
		Action:    action,
		EntityID:  entity,
		Detail:    action + " " + entity,
		CreatedAt: at,
	}
	if actor != "" {
		record.ActorID = &actor
	}
	if err := ledger.Append(context.Background(), record); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	return record
}

func TestAuditRepositoryImpl_AppendRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewAuditRepository(db)
	ctx := context.Background()

	at := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	written := appendRecord(t, ledger, "u1", "Update Student", "student:12", at)

	if written.ID == 0 {
		t.Fatal("Append() should assign an id")
	}

	rows, total, err := ledger.QueryPage(ctx, domain.AuditFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("QueryPage() error = %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("QueryPage() = %d rows, total %d; want 1, 1", len(rows), total)
	}

	got := rows[0]
	if got.ID != written.ID {
		t.Errorf("ID = %d, want %d", got.ID, written.ID)
	}
	if got.ActorRef() != "u1" || got.Action != "Update Student" || got.EntityID != "student:12" {
		t.Errorf("record did not round-trip: %+v", got)
	}
	if got.Detail != "Update Student student:12" {
		t.Errorf("Detail = %q", got.Detail)
	}
	if !got.CreatedAt.Equal(at) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, at)
	}
}

func TestAuditRepositoryImpl_FilterComposition(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewAuditRepository(db)
	ctx := context.Background()

	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	appendRecord(t, ledger, "u1", "Update Student", "student:1", jan)
	appendRecord(t, ledger, "u2", "Delete Student", "student:2", feb)

	t.Run("free text matches actor", func(t *testing.T) {
		rows, total, err := ledger.QueryPage(ctx, domain.AuditFilter{Search: "u1", Page: 1, PageSize: 10})
		if err != nil {
			t.Fatalf("QueryPage() error = %v", err)
		}
		if total != 1 || rows[0].ActorRef() != "u1" {
			t.Errorf("expected exactly the u1 record, got total=%d rows=%+v", total, rows)
		}
	})

	t.Run("free text is case-insensitive across fields", func(t *testing.T) {
		_, total, err := ledger.QueryPage(ctx, domain.AuditFilter{Search: "DELETE", Page: 1, PageSize: 10})
		if err != nil {
			t.Fatalf("QueryPage() error = %v", err)
		}
		if total != 1 {
			t.Errorf("total = %d, want 1", total)
		}
	})

	t.Run("date range bounds are inclusive", func(t *testing.T) {
		to := time.Date(2024, 2, 28, 23, 59, 59, 0, time.UTC)
		rows, total, err := ledger.QueryPage(ctx, domain.AuditFilter{From: &feb, To: &to, Page: 1, PageSize: 10})
		if err != nil {
			t.Fatalf("QueryPage() error = %v", err)
		}
		if total != 1 || rows[0].ActorRef() != "u2" {
			t.Errorf("expected exactly the February record, got total=%d", total)
		}
	})

	t.Run("combined dimensions AND together", func(t *testing.T) {
		to := time.Date(2024, 2, 28, 23, 59, 59, 0, time.UTC)
		_, total, err := ledger.QueryPage(ctx, domain.AuditFilter{Search: "u1", From: &feb, To: &to, Page: 1, PageSize: 10})
		if err != nil {
			t.Fatalf("QueryPage() error = %v", err)
		}
		if total != 0 {
			t.Errorf("total = %d, want 0", total)
		}
	})

	t.Run("action filter matches exactly, ignoring case", func(t *testing.T) {
		_, total, err := ledger.QueryPage(ctx, domain.AuditFilter{Action: "update student", Page: 1, PageSize: 10})
		if err != nil {
			t.Fatalf("QueryPage() error = %v", err)
		}
		if total != 1 {
			t.Errorf("total = %d, want 1", total)
		}

		_, total, err = ledger.QueryPage(ctx, domain.AuditFilter{Action: "Update", Page: 1, PageSize: 10})
		if err != nil {
			t.Fatalf("QueryPage() error = %v", err)
		}
		if total != 0 {
			t.Errorf("partial action label must not match, total = %d", total)
		}
	})
}

func TestAuditRepositoryImpl_StableSort(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewAuditRepository(db)
	ctx := context.Background()

	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	first := appendRecord(t, ledger, "u1", "Login", "account:1", at)
	second := appendRecord(t, ledger, "u2", "Login", "account:2", at)

	for _, desc := range []bool{false, true} {
		rows, _, err := ledger.QueryPage(ctx, domain.AuditFilter{SortBy: "action", SortDesc: desc, Page: 1, PageSize: 10})
		if err != nil {
			t.Fatalf("QueryPage(desc=%v) error = %v", desc, err)
		}
		if len(rows) != 2 {
			t.Fatalf("got %d rows, want 2", len(rows))
		}
		// Equal sort keys keep insertion order in both directions.
		if rows[0].ID != first.ID || rows[1].ID != second.ID {
			t.Errorf("desc=%v: tie order = [%d, %d], want [%d, %d]",
				desc, rows[0].ID, rows[1].ID, first.ID, second.ID)
		}
	}
}

func TestAuditRepositoryImpl_Pagination(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewAuditRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 23; i++ {
		appendRecord(t, ledger, "u1", "Update Student", "student:x", base.Add(time.Duration(i)*time.Minute))
	}

	rows, total, err := ledger.QueryPage(ctx, domain.AuditFilter{Page: 3, PageSize: 10})
	if err != nil {
		t.Fatalf("QueryPage() error = %v", err)
	}
	if total != 23 {
		t.Errorf("total = %d, want 23", total)
	}
	if len(rows) != 3 {
		t.Errorf("page 3 rows = %d, want 3", len(rows))
	}

	all, err := ledger.QueryAll(ctx, domain.AuditFilter{})
	if err != nil {
		t.Fatalf("QueryAll() error = %v", err)
	}
	if len(all) != 23 {
		t.Errorf("QueryAll() rows = %d, want 23", len(all))
	}
}

func TestAuditRepositoryImpl_SystemActor(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewAuditRepository(db)
	ctx := context.Background()

	appendRecord(t, ledger, "", "Password Reset Requested", "account:ghost", time.Now().UTC())

	rows, _, err := ledger.QueryPage(ctx, domain.AuditFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("QueryPage() error = %v", err)
	}
	if rows[0].ActorID != nil {
		t.Errorf("system record should have nil actor, got %v", *rows[0].ActorID)
	}
}
