package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
	"github.com/teamparagoncapstone/lms-authsvc/internal/mocks"
)

func newAuditFixture(t *testing.T, pageSize int) (domain.AuditService, *mocks.MemoryAuditLedger) {
	t.Helper()
	ledger := mocks.NewMemoryAuditLedger()
	return NewAuditService(ledger, pageSize), ledger
}

func TestAuditService_RecordRoundTrip(t *testing.T) {
	svc, ledger := newAuditFixture(t, 10)

	actor := "42"
	record := svc.Record(context.Background(), &actor, domain.ActionLogin, "account:42", "mbendano signed in")
	if record.ID == 0 {
		t.Error("appended record must carry the assigned id")
	}
	if ledger.Len() != 1 {
		t.Fatalf("ledger rows = %d, want 1", ledger.Len())
	}
	saved := ledger.Last()
	if saved.Action != domain.ActionLogin || saved.ActorRef() != "42" {
		t.Errorf("saved = %+v, want the recorded fields", saved)
	}
	if saved.CreatedAt.Location() != time.UTC {
		t.Error("ledger timestamps must be UTC")
	}
}

// A dead ledger must never fail the operation being audited.
func TestAuditService_RecordBestEffort(t *testing.T) {
	svc, ledger := newAuditFixture(t, 10)
	ledger.AppendErr = errors.New("ledger down")

	record := svc.Record(context.Background(), nil, domain.ActionLogout, "account:7", "signed out")
	if record == nil {
		t.Fatal("Record must return the record even when the append fails")
	}
}

func TestAuditService_QueryPagination(t *testing.T) {
	svc, ledger := newAuditFixture(t, 10)
	ctx := context.Background()

	for i := 0; i < 23; i++ {
		svc.Record(ctx, nil, domain.ActionLogin, fmt.Sprintf("account:%d", i), "row")
	}
	if ledger.Len() != 23 {
		t.Fatalf("ledger rows = %d, want 23", ledger.Len())
	}

	first, err := svc.Query(ctx, domain.AuditFilter{Page: 1})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(first.Records) != 10 {
		t.Errorf("page 1 rows = %d, want 10", len(first.Records))
	}
	if first.Total != 23 {
		t.Errorf("Total = %d, want 23", first.Total)
	}
	if first.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", first.TotalPages)
	}

	last, err := svc.Query(ctx, domain.AuditFilter{Page: 3})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(last.Records) != 3 {
		t.Errorf("page 3 rows = %d, want 3", len(last.Records))
	}

	// Page sizing is fixed server-side; a caller-supplied size is ignored.
	forced, err := svc.Query(ctx, domain.AuditFilter{Page: 1, PageSize: 1000})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if forced.PageSize != 10 || len(forced.Records) != 10 {
		t.Errorf("PageSize = %d with %d rows, want the configured 10", forced.PageSize, len(forced.Records))
	}
}

func TestAuditService_QueryDefaultsPage(t *testing.T) {
	svc, _ := newAuditFixture(t, 10)

	page, err := svc.Query(context.Background(), domain.AuditFilter{Page: 0})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if page.Page != 1 {
		t.Errorf("Page = %d, want 1", page.Page)
	}
}

func TestAuditService_QueryFilterComposition(t *testing.T) {
	svc, _ := newAuditFixture(t, 10)
	ctx := context.Background()

	actor := "9"
	svc.Record(ctx, &actor, domain.ActionLogin, "account:9", "signed in")
	svc.Record(ctx, &actor, domain.ActionLogout, "account:9", "signed out")
	svc.Record(ctx, nil, domain.ActionLogin, "account:12", "signed in")

	byAction, err := svc.Query(ctx, domain.AuditFilter{Action: domain.ActionLogin})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if byAction.Total != 2 {
		t.Errorf("action filter Total = %d, want 2", byAction.Total)
	}

	combined, err := svc.Query(ctx, domain.AuditFilter{Action: domain.ActionLogin, Search: "account:9"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if combined.Total != 1 {
		t.Errorf("combined filter Total = %d, want 1 (dimensions AND together)", combined.Total)
	}

	none, err := svc.Query(ctx, domain.AuditFilter{Action: domain.ActionLogout, Search: "account:12"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if none.Total != 0 {
		t.Errorf("disjoint filter Total = %d, want 0", none.Total)
	}
}

func TestAuditService_QueryErrorPropagates(t *testing.T) {
	svc, ledger := newAuditFixture(t, 10)
	ledger.QueryErr = errors.New("ledger down")

	if _, err := svc.Query(context.Background(), domain.AuditFilter{}); !errors.Is(err, domain.ErrAuditQueryFailed) {
		t.Errorf("Query() error = %v, want ErrAuditQueryFailed", err)
	}
	if _, err := svc.ExportCSV(context.Background(), domain.AuditFilter{}); !errors.Is(err, domain.ErrAuditQueryFailed) {
		t.Errorf("ExportCSV() error = %v, want ErrAuditQueryFailed", err)
	}
}

func TestAuditService_ExportCSV(t *testing.T) {
	svc, _ := newAuditFixture(t, 10)
	ctx := context.Background()

	actor := "42"
	for i := 0; i < 15; i++ {
		svc.Record(ctx, &actor, domain.ActionLogin, fmt.Sprintf("account:%d", i), "signed in")
	}
	svc.Record(ctx, nil, domain.ActionResetRequested, "account:ghost", "reset requested")

	out, err := svc.ExportCSV(ctx, domain.AuditFilter{})
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("export is not parseable CSV: %v", err)
	}

	// Header plus every matching row; pagination never applies to export.
	if len(rows) != 17 {
		t.Fatalf("rows = %d, want 17", len(rows))
	}
	wantHeader := []string{"User ID", "Action", "Timestamp", "Details"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}

	if _, err := time.Parse(domain.AuditTimeLayout, rows[1][2]); err != nil {
		t.Errorf("timestamp %q does not match layout %q", rows[1][2], domain.AuditTimeLayout)
	}

	// System actions export with an empty actor column.
	lastRow := rows[len(rows)-1]
	if lastRow[0] != "" {
		t.Errorf("system actor column = %q, want empty", lastRow[0])
	}
}

func TestAuditService_ExportHonorsFilter(t *testing.T) {
	svc, _ := newAuditFixture(t, 10)
	ctx := context.Background()

	svc.Record(ctx, nil, domain.ActionLogin, "account:1", "in")
	svc.Record(ctx, nil, domain.ActionLogout, "account:1", "out")

	out, err := svc.ExportCSV(ctx, domain.AuditFilter{Action: domain.ActionLogout})
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("export is not parseable CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want header plus the one logout row", len(rows))
	}
}
