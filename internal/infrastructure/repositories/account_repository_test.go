package repositories

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(&DBAccount{}, &DBAuditRecord{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func seedAccount(t *testing.T, repo domain.AccountRepository, username string, role domain.Role) *domain.Account {
	t.Helper()

	account := &domain.Account{
		Username:     username,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		DisplayName:  "Test " + username,
		Role:         role,
		IsActive:     true,
	}
	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("failed to seed account %q: %v", username, err)
	}
	return account
}

func TestAccountRepositoryImpl_FindByUsername(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	seeded := seedAccount(t, repo, "registrar1", domain.RoleRegistrar)

	found, err := repo.FindByUsername(ctx, "registrar1")
	if err != nil {
		t.Fatalf("FindByUsername() error = %v", err)
	}
	if found.ID != seeded.ID {
		t.Errorf("ID = %d, want %d", found.ID, seeded.ID)
	}
	if found.Role != domain.RoleRegistrar {
		t.Errorf("Role = %q, want %q", found.Role, domain.RoleRegistrar)
	}

	_, err = repo.FindByUsername(ctx, "ghost")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("FindByUsername(missing) error = %v, want ErrAccountNotFound", err)
	}
}

func TestAccountRepositoryImpl_UpdatePasswordHash(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	seeded := seedAccount(t, repo, "teacher4", domain.RoleTeacherLevel1)

	if err := repo.UpdatePasswordHash(ctx, seeded.ID, "$2a$10$newhashnewhashnewhash"); err != nil {
		t.Fatalf("UpdatePasswordHash() error = %v", err)
	}

	found, err := repo.FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.PasswordHash != "$2a$10$newhashnewhashnewhash" {
		t.Errorf("PasswordHash = %q, want updated hash", found.PasswordHash)
	}
	// Only the credential column changes.
	if found.Username != "teacher4" || found.Role != domain.RoleTeacherLevel1 {
		t.Errorf("unexpected collateral change: %+v", found)
	}
}

func TestAccountRepositoryImpl_Deactivate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	seeded := seedAccount(t, repo, "principal1", domain.RolePrincipal)

	if err := repo.Deactivate(ctx, seeded.ID); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	found, err := repo.FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.IsActive {
		t.Error("account should be inactive after Deactivate")
	}
}

func TestAccountRepositoryImpl_ProfileFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	profileID := uint(42)
	account := &domain.Account{
		Username:     "student7",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		DisplayName:  "Student Seven",
		Role:         domain.RoleStudentGrade2,
		ProfileKind:  domain.ProfileStudent,
		ProfileID:    &profileID,
		GradeLevel:   "Grade 2",
		IsActive:     true,
	}
	if err := repo.Create(ctx, account); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.FindByUsername(ctx, "student7")
	if err != nil {
		t.Fatalf("FindByUsername() error = %v", err)
	}
	if found.ProfileID == nil || *found.ProfileID != 42 {
		t.Errorf("ProfileID = %v, want 42", found.ProfileID)
	}
	if found.ProfileKind != domain.ProfileStudent {
		t.Errorf("ProfileKind = %q, want %q", found.ProfileKind, domain.ProfileStudent)
	}
	if found.GradeLevel != "Grade 2" {
		t.Errorf("GradeLevel = %q, want %q", found.GradeLevel, "Grade 2")
	}
}
