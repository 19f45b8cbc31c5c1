package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

// AccountRepositoryImpl implements domain.AccountRepository using GORM
type AccountRepositoryImpl struct {
	db *gorm.DB
}

// DBAccount represents the database model for Account (with GORM tags).
// Soft delete only: audit records hold weak references to account ids, so a
// row referenced by the ledger is never physically removed.
type DBAccount struct {
	ID           uint           `gorm:"primaryKey"`
	Username     string         `gorm:"uniqueIndex;size:64"`
	PasswordHash string         `gorm:"column:password"`
	DisplayName  string         `gorm:"size:128"`
	Phone        string         `gorm:"index;size:32"`
	Role         string         `gorm:"index;size:32"`
	ProfileKind  string         `gorm:"size:16"`
	ProfileID    *uint          `gorm:"index"`
	GradeLevel   string         `gorm:"size:32"`
	AvatarURL    string         `gorm:"size:512"`
	IsActive     bool           `gorm:"index"`
	CreatedAt    time.Time      `gorm:"index"`
	UpdatedAt    time.Time      `gorm:"index"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBAccount) TableName() string {
	return "accounts"
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) domain.AccountRepository {
	return &AccountRepositoryImpl{db: db}
}

// Create implements domain.AccountRepository
func (r *AccountRepositoryImpl) Create(ctx context.Context, account *domain.Account) error {
	dbAccount := r.domainToDB(account)
	if err := r.db.WithContext(ctx).Create(dbAccount).Error; err != nil {
		return err
	}
	account.ID = dbAccount.ID
	return nil
}

// FindByUsername implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var dbAccount DBAccount
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&dbAccount).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbAccount), nil
}

// FindByID implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Account, error) {
	var dbAccount DBAccount
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbAccount).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbAccount), nil
}

// Update implements domain.AccountRepository
func (r *AccountRepositoryImpl) Update(ctx context.Context, account *domain.Account) error {
	dbAccount := r.domainToDB(account)
	return r.db.WithContext(ctx).Save(dbAccount).Error
}

// UpdatePasswordHash implements domain.AccountRepository. The hash is stored
// on the account row and nowhere else; linked profiles never carry a copy.
func (r *AccountRepositoryImpl) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	return r.db.WithContext(ctx).Model(&DBAccount{}).Where("id = ?", id).Update("password", hash).Error
}

// Deactivate implements domain.AccountRepository
func (r *AccountRepositoryImpl) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&DBAccount{}).Where("id = ?", id).Update("is_active", false).Error
}

// domainToDB converts domain account to database account
func (r *AccountRepositoryImpl) domainToDB(account *domain.Account) *DBAccount {
	return &DBAccount{
		ID:           account.ID,
		Username:     account.Username,
		PasswordHash: account.PasswordHash,
		DisplayName:  account.DisplayName,
		Phone:        account.Phone,
		Role:         string(account.Role),
		ProfileKind:  string(account.ProfileKind),
		ProfileID:    account.ProfileID,
		GradeLevel:   account.GradeLevel,
		AvatarURL:    account.AvatarURL,
		IsActive:     account.IsActive,
	}
}

// dbToDomain converts database account to domain account
func (r *AccountRepositoryImpl) dbToDomain(dbAccount *DBAccount) *domain.Account {
	return &domain.Account{
		ID:           dbAccount.ID,
		Username:     dbAccount.Username,
		PasswordHash: dbAccount.PasswordHash,
		DisplayName:  dbAccount.DisplayName,
		Phone:        dbAccount.Phone,
		Role:         domain.Role(dbAccount.Role),
		ProfileKind:  domain.ProfileKind(dbAccount.ProfileKind),
		ProfileID:    dbAccount.ProfileID,
		GradeLevel:   dbAccount.GradeLevel,
		AvatarURL:    dbAccount.AvatarURL,
		IsActive:     dbAccount.IsActive,
		CreatedAt:    dbAccount.CreatedAt,
		UpdatedAt:    dbAccount.UpdatedAt,
	}
}
