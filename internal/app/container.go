package app

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
	"github.com/teamparagoncapstone/lms-authsvc/internal/config"
	"github.com/teamparagoncapstone/lms-authsvc/internal/infrastructure/auth"
	"github.com/teamparagoncapstone/lms-authsvc/internal/infrastructure/database"
	"github.com/teamparagoncapstone/lms-authsvc/internal/infrastructure/notifications"
	"github.com/teamparagoncapstone/lms-authsvc/internal/infrastructure/repositories"
	"github.com/teamparagoncapstone/lms-authsvc/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client

	// Repositories
	AccountRepo domain.AccountRepository
	SessionRepo domain.SessionRepository
	OTPLedger   domain.OTPLedger
	GrantStore  domain.ResetGrantStore
	AuditLedger domain.AuditLedger

	// Services
	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	AuditSvc        domain.AuditService
	OTPSvc          domain.OTPService
	AuthSvc         domain.AuthService
	ResetSvc        domain.ResetService
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config) (*Container, error) {
	container := &Container{Config: cfg}

	if err := container.initDatabase(); err != nil {
		return nil, err
	}
	container.initRedis()
	container.initRepositories()
	container.initServices()

	return container, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db
	return nil
}

func (c *Container) initRedis() {
	c.RedisClient = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB).Client
}

func (c *Container) initRepositories() {
	c.AccountRepo = repositories.NewAccountRepository(c.DB)
	c.SessionRepo = repositories.NewSessionRepository(c.RedisClient, c.Config.SessionTTL)
	c.OTPLedger = repositories.NewOTPRepository(c.RedisClient)
	c.GrantStore = repositories.NewResetGrantRepository(c.RedisClient)
	c.AuditLedger = repositories.NewAuditRepository(c.DB)
}

func (c *Container) initServices() {
	c.PasswordSvc = auth.NewPasswordService()
	c.TokenSvc = auth.NewJWTService(c.Config.SessionSecret, c.Config.SessionIssuer, c.Config.SessionTTL)
	c.NotificationSvc = notifications.NewTwilioService(
		c.Config.TwilioSID,
		c.Config.TwilioToken,
		c.Config.TwilioFrom,
	)

	c.AuditSvc = services.NewAuditService(c.AuditLedger, c.Config.AuditPageSize)

	otpConfig := services.OTPConfig{
		Length:       c.Config.OTPLength,
		TTL:          c.Config.OTPTTL,
		MaxAttempts:  c.Config.OTPMaxAttempts,
		ResendWindow: c.Config.OTPResendWindow,
	}
	c.OTPSvc = services.NewOTPService(c.OTPLedger, c.NotificationSvc, otpConfig)

	c.AuthSvc = services.NewAuthService(c.AccountRepo, c.SessionRepo, c.PasswordSvc, c.TokenSvc, c.AuditSvc)
	c.ResetSvc = services.NewResetService(c.AccountRepo, c.OTPSvc, c.GrantStore,
		c.PasswordSvc, c.AuditSvc, c.Config.ResetGrantTTL)
}
