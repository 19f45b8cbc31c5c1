package handlers_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

func managerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := newHandlerFixture(t)
	f.authorize(&domain.Principal{AccountID: 1, Username: "admin", Role: domain.RoleAdministrator, SessionID: "sess_1"})
	return f
}

func TestAuditQuery_PassesFilter(t *testing.T) {
	f := managerFixture(t)

	var got domain.AuditFilter
	f.auditSvc.QueryFunc = func(ctx context.Context, filter domain.AuditFilter) (*domain.AuditPage, error) {
		got = filter
		return &domain.AuditPage{
			Records:    []domain.AuditRecord{},
			Total:      0,
			Page:       filter.Page,
			PageSize:   10,
			TotalPages: 0,
		}, nil
	}

	w := f.do(t, http.MethodGet,
		"/admin/audit?search=login&action=Login&from=2026-08-01&to=2026-08-30&sort_by=actor&order=desc&page=2",
		nil, "valid-token")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	if got.Search != "login" {
		t.Errorf("Search = %q, want login", got.Search)
	}
	if got.Action != "Login" {
		t.Errorf("Action = %q, want Login", got.Action)
	}
	if got.SortBy != "actor" || !got.SortDesc {
		t.Errorf("sort = %q desc=%v, want actor descending", got.SortBy, got.SortDesc)
	}
	if got.Page != 2 {
		t.Errorf("Page = %d, want 2", got.Page)
	}
	if got.From == nil || !got.From.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("From = %v, want midnight 2026-08-01", got.From)
	}
	if got.To == nil || got.To.Before(time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("To = %v, want end of 2026-08-30", got.To)
	}
}

func TestAuditQuery_DefaultSort(t *testing.T) {
	f := managerFixture(t)

	var got domain.AuditFilter
	f.auditSvc.QueryFunc = func(ctx context.Context, filter domain.AuditFilter) (*domain.AuditPage, error) {
		got = filter
		return &domain.AuditPage{Records: []domain.AuditRecord{}}, nil
	}

	w := f.do(t, http.MethodGet, "/admin/audit", nil, "valid-token")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got.SortBy != "timestamp" || got.SortDesc {
		t.Errorf("default sort = %q desc=%v, want timestamp ascending", got.SortBy, got.SortDesc)
	}
}

func TestAuditQuery_BadParams(t *testing.T) {
	f := managerFixture(t)

	for _, path := range []string{
		"/admin/audit?page=zero",
		"/admin/audit?page=0",
		"/admin/audit?from=August-1",
		"/admin/audit?to=2026/08/30",
	} {
		w := f.do(t, http.MethodGet, path, nil, "valid-token")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
	}
}

func TestAuditQuery_RequiresManager(t *testing.T) {
	f := newHandlerFixture(t)
	f.authorize(&domain.Principal{AccountID: 3, Username: "pupil", Role: domain.RoleStudentGrade1, SessionID: "sess_3"})

	w := f.do(t, http.MethodGet, "/admin/audit", nil, "valid-token")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestAuditExport_CSVDownload(t *testing.T) {
	f := managerFixture(t)

	f.auditSvc.ExportCSVFunc = func(ctx context.Context, filter domain.AuditFilter) ([]byte, error) {
		return []byte("User ID,Action,Timestamp,Details\n42,Login,2026-08-30 10:00:00,signed in\n"), nil
	}

	w := f.do(t, http.MethodGet, "/admin/audit/export", nil, "valid-token")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	disposition := w.Header().Get("Content-Disposition")
	if !strings.HasPrefix(disposition, `attachment; filename="audit-`) {
		t.Errorf("Content-Disposition = %q, want an attachment filename", disposition)
	}
	if !strings.HasPrefix(w.Body.String(), "User ID,Action,Timestamp,Details") {
		t.Errorf("body = %q, want the CSV header first", w.Body.String())
	}
}

func TestAuditExport_HonorsFilterParams(t *testing.T) {
	f := managerFixture(t)

	var got domain.AuditFilter
	f.auditSvc.ExportCSVFunc = func(ctx context.Context, filter domain.AuditFilter) ([]byte, error) {
		got = filter
		return []byte("User ID,Action,Timestamp,Details\n"), nil
	}

	w := f.do(t, http.MethodGet, "/admin/audit/export?action=Logout&search=acct", nil, "valid-token")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got.Action != "Logout" || got.Search != "acct" {
		t.Errorf("filter = %+v, want the query params carried through", got)
	}
}
