package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
	"github.com/teamparagoncapstone/lms-authsvc/internal/infrastructure/repositories"
	"github.com/teamparagoncapstone/lms-authsvc/internal/mocks"
)

type resetFixture struct {
	accountRepo *mocks.MockAccountRepository
	otpSvc      *mocks.MockOTPService
	passwordSvc *mocks.MockPasswordService
	auditSvc    *mocks.MockAuditService
	svc         domain.ResetService
}

// newResetFixture backs the grant store with a real in-memory Redis so the
// single-use guarantee is exercised, not mocked.
func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(func() {
		mr.Close()
	})
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	f := &resetFixture{
		accountRepo: mocks.NewMockAccountRepository(),
		otpSvc:      mocks.NewMockOTPService(),
		passwordSvc: mocks.NewMockPasswordService(),
		auditSvc:    mocks.NewMockAuditService(),
	}
	f.svc = NewResetService(f.accountRepo, f.otpSvc, repositories.NewResetGrantRepository(client),
		f.passwordSvc, f.auditSvc, 10*time.Minute)
	return f
}

func TestResetService_RequestResetKnownAccount(t *testing.T) {
	f := newResetFixture(t)
	account := testAccount(domain.RoleTeacherLevel1)
	f.accountRepo.FindByUsernameFunc = func(ctx context.Context, username string) (*domain.Account, error) {
		return account, nil
	}

	var issuedKey, issuedDest string
	f.otpSvc.IssueFunc = func(ctx context.Context, key, destination string) (*domain.OneTimeCode, error) {
		issuedKey, issuedDest = key, destination
		return &domain.OneTimeCode{Key: key, Code: "123456"}, nil
	}

	if err := f.svc.RequestReset(context.Background(), "mbendano"); err != nil {
		t.Fatalf("RequestReset() error = %v", err)
	}
	if issuedKey != "mbendano" {
		t.Errorf("issued key = %q, want the username", issuedKey)
	}
	if issuedDest != account.Phone {
		t.Errorf("issued destination = %q, want the account phone", issuedDest)
	}

	actions := f.auditSvc.RecordedActions()
	if len(actions) != 1 || actions[0] != domain.ActionResetRequested {
		t.Errorf("recorded actions = %v, want [%s]", actions, domain.ActionResetRequested)
	}
}

// An unknown username must look exactly like a known one from the outside.
func TestResetService_RequestResetUnknownAccountSilent(t *testing.T) {
	f := newResetFixture(t)

	issued := false
	f.otpSvc.IssueFunc = func(ctx context.Context, key, destination string) (*domain.OneTimeCode, error) {
		issued = true
		return nil, nil
	}

	if err := f.svc.RequestReset(context.Background(), "ghost"); err != nil {
		t.Fatalf("RequestReset() error = %v, want nil for unknown usernames", err)
	}
	if issued {
		t.Error("no code may be issued for an unknown username")
	}
	if actions := f.auditSvc.RecordedActions(); len(actions) != 1 {
		t.Errorf("the request itself must still be audited, got %v", actions)
	}
}

func TestResetService_RequestResetThrottledStillSilent(t *testing.T) {
	f := newResetFixture(t)
	account := testAccount(domain.RoleStudentGrade1)
	f.accountRepo.FindByUsernameFunc = func(ctx context.Context, username string) (*domain.Account, error) {
		return account, nil
	}
	f.otpSvc.IssueFunc = func(ctx context.Context, key, destination string) (*domain.OneTimeCode, error) {
		return nil, domain.ErrResendThrottled
	}

	if err := f.svc.RequestReset(context.Background(), "mbendano"); err != nil {
		t.Errorf("RequestReset() error = %v, want nil even when throttled", err)
	}
}

func TestResetService_VerifyResetMintsGrant(t *testing.T) {
	f := newResetFixture(t)

	grantID, err := f.svc.VerifyReset(context.Background(), "mbendano", "123456")
	if err != nil {
		t.Fatalf("VerifyReset() error = %v", err)
	}
	if grantID == "" {
		t.Fatal("grant id must be set")
	}
}

func TestResetService_VerifyResetWrongCode(t *testing.T) {
	f := newResetFixture(t)
	f.otpSvc.VerifyFunc = func(ctx context.Context, key, submitted string) error {
		return domain.ErrCodeInvalid
	}

	_, err := f.svc.VerifyReset(context.Background(), "mbendano", "999999")
	if !errors.Is(err, domain.ErrCodeInvalid) {
		t.Errorf("VerifyReset() error = %v, want ErrCodeInvalid", err)
	}
}

func TestResetService_CompleteReset(t *testing.T) {
	f := newResetFixture(t)
	account := testAccount(domain.RoleRegistrar)
	f.accountRepo.FindByUsernameFunc = func(ctx context.Context, username string) (*domain.Account, error) {
		return account, nil
	}
	var newHash string
	f.accountRepo.UpdatePasswordHashFunc = func(ctx context.Context, id uint, hash string) error {
		if id != account.ID {
			t.Errorf("UpdatePasswordHash id = %d, want %d", id, account.ID)
		}
		newHash = hash
		return nil
	}

	grantID, err := f.svc.VerifyReset(context.Background(), "mbendano", "123456")
	if err != nil {
		t.Fatalf("VerifyReset() error = %v", err)
	}

	if err := f.svc.CompleteReset(context.Background(), grantID, "fresh-password"); err != nil {
		t.Fatalf("CompleteReset() error = %v", err)
	}
	if newHash != "hashed_fresh-password" {
		t.Errorf("stored hash = %q, want hash of the new password", newHash)
	}

	actions := f.auditSvc.RecordedActions()
	if len(actions) != 1 || actions[0] != domain.ActionResetCompleted {
		t.Errorf("recorded actions = %v, want [%s]", actions, domain.ActionResetCompleted)
	}
}

func TestResetService_GrantSingleUse(t *testing.T) {
	f := newResetFixture(t)
	account := testAccount(domain.RoleRegistrar)
	f.accountRepo.FindByUsernameFunc = func(ctx context.Context, username string) (*domain.Account, error) {
		return account, nil
	}

	grantID, err := f.svc.VerifyReset(context.Background(), "mbendano", "123456")
	if err != nil {
		t.Fatalf("VerifyReset() error = %v", err)
	}

	if err := f.svc.CompleteReset(context.Background(), grantID, "first"); err != nil {
		t.Fatalf("CompleteReset() first use error = %v", err)
	}
	if err := f.svc.CompleteReset(context.Background(), grantID, "second"); !errors.Is(err, domain.ErrResetGrantNotFound) {
		t.Errorf("CompleteReset() replay error = %v, want ErrResetGrantNotFound", err)
	}
}

func TestResetService_CompleteResetUnknownGrant(t *testing.T) {
	f := newResetFixture(t)

	err := f.svc.CompleteReset(context.Background(), "no-such-grant", "pw")
	if !errors.Is(err, domain.ErrResetGrantNotFound) {
		t.Errorf("CompleteReset() error = %v, want ErrResetGrantNotFound", err)
	}
}
