package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
	"github.com/teamparagoncapstone/lms-authsvc/internal/http/middleware"
)

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authSvc     domain.AuthService
	otpSvc      domain.OTPService
	resetSvc    domain.ResetService
	auditSvc    domain.AuditService
	accountRepo domain.AccountRepository
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(
	authSvc domain.AuthService,
	otpSvc domain.OTPService,
	resetSvc domain.ResetService,
	auditSvc domain.AuditService,
	accountRepo domain.AccountRepository,
) *AuthHandlers {
	return &AuthHandlers{
		authSvc:     authSvc,
		otpSvc:      otpSvc,
		resetSvc:    resetSvc,
		auditSvc:    auditSvc,
		accountRepo: accountRepo,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// OTPVerifyRequest represents a step-up verification request
type OTPVerifyRequest struct {
	Username string `json:"username" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

// OTPResendRequest represents a challenge resend request
type OTPResendRequest struct {
	Username string `json:"username" binding:"required"`
}

// ResetRequestRequest starts the password-reset flow
type ResetRequestRequest struct {
	Username string `json:"username" binding:"required"`
}

// ResetVerifyRequest trades a reset code for a grant
type ResetVerifyRequest struct {
	Username string `json:"username" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

// ResetCompleteRequest spends a grant on a new password
type ResetCompleteRequest struct {
	GrantID     string `json:"grant_id" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// Login handles credential authentication. Students get a session directly;
// elevated roles get a challenge reference and must come back through
// VerifyOTP.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pending, err := h.authSvc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		case errors.Is(err, domain.ErrAccountInactive):
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is inactive"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	if !pending.StepUpRequired {
		result, err := h.authSvc.CompleteLogin(c.Request.Context(), pending.Principal)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": sessionPayload(result)})
		return
	}

	code, err := h.otpSvc.Issue(c.Request.Context(), req.Username, pending.Contact)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrResendThrottled):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Verification code recently sent"})
		case errors.Is(err, domain.ErrDeliveryFailed):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"step_up_required": true,
			"login_ref":        pending.LoginRef,
			"username":         req.Username,
			"contact":          maskContact(pending.Contact),
			"expires_in":       code.Remaining(time.Now()),
		},
	})
}

// VerifyOTP handles step-up verification. A verified code is the proof of
// possession; the session is minted from the account, not from client state.
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.otpSvc.Verify(c.Request.Context(), req.Username, req.Code); err != nil {
		h.auditSvc.Record(c.Request.Context(), nil, domain.ActionStepUpFailed,
			"account:"+req.Username, "step-up rejected for "+req.Username)
		switch {
		case errors.Is(err, domain.ErrCodeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No active verification code"})
		case errors.Is(err, domain.ErrCodeExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Verification code has expired"})
		case errors.Is(err, domain.ErrCodeConsumed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Verification code already used"})
		case errors.Is(err, domain.ErrCodeMaxAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Maximum attempts exceeded"})
		case errors.Is(err, domain.ErrCodeInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification code"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		}
		return
	}

	result, err := h.authSvc.CompleteStepUp(c.Request.Context(), req.Username)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		case errors.Is(err, domain.ErrAccountInactive):
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is inactive"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	actor := result.Principal
	actorRef := principalActorRef(actor)
	h.auditSvc.Record(c.Request.Context(), &actorRef, domain.ActionStepUpVerified,
		"account:"+req.Username, req.Username+" passed step-up")

	c.JSON(http.StatusOK, gin.H{"data": sessionPayload(result)})
}

// ResendOTP re-delivers the active challenge. The response is the same
// whether or not the username exists.
func (h *AuthHandlers) ResendOTP(c *gin.Context) {
	var req OTPResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.accountRepo.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Verification code sent"}})
		return
	}

	code, err := h.otpSvc.Resend(c.Request.Context(), req.Username, account.Phone)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrResendThrottled):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Verification code recently sent"})
		case errors.Is(err, domain.ErrDeliveryFailed):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message":    "Verification code sent",
			"expires_in": code.Remaining(time.Now()),
		},
	})
}

// RequestReset starts the password-reset flow. Always succeeds from the
// caller's point of view.
func (h *AuthHandlers) RequestReset(c *gin.Context) {
	var req ResetRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resetSvc.RequestReset(c.Request.Context(), req.Username); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reset request failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"message": "If the account exists, a verification code has been sent"},
	})
}

// VerifyReset trades a correct reset code for a single-use grant.
func (h *AuthHandlers) VerifyReset(c *gin.Context) {
	var req ResetVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grantID, err := h.resetSvc.VerifyReset(c.Request.Context(), req.Username, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCodeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No active verification code"})
		case errors.Is(err, domain.ErrCodeExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Verification code has expired"})
		case errors.Is(err, domain.ErrCodeConsumed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Verification code already used"})
		case errors.Is(err, domain.ErrCodeMaxAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Maximum attempts exceeded"})
		case errors.Is(err, domain.ErrCodeInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification code"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"grant_id": grantID}})
}

// CompleteReset spends a grant on a new password.
func (h *AuthHandlers) CompleteReset(c *gin.Context) {
	var req ResetCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resetSvc.CompleteReset(c.Request.Context(), req.GrantID, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrResetGrantNotFound), errors.Is(err, domain.ErrResetGrantExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Reset grant invalid or expired"})
		case errors.Is(err, domain.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Reset failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Password updated successfully"}})
}

// Refresh rotates the caller's session: the old row is revoked and a fresh
// token minted for the same principal. Requires authentication.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), principal.SessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session rotation failed"})
		return
	}

	result, err := h.authSvc.CompleteLogin(c.Request.Context(), principal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session rotation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sessionPayload(result)})
}

// Me returns the caller's account (requires authentication)
func (h *AuthHandlers) Me(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	account, err := h.authSvc.GetAccount(c.Request.Context(), principal.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": accountPayload(account)})
}

// Logout terminates the caller's session (requires authentication)
func (h *AuthHandlers) Logout(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), principal.SessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}

	actorRef := principalActorRef(principal)
	h.auditSvc.Record(c.Request.Context(), &actorRef, domain.ActionLogout,
		"account:"+principal.Username, principal.Username+" signed out")

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Logged out successfully"}})
}

func sessionPayload(result *domain.AuthResult) gin.H {
	user := gin.H{
		"id":       result.Principal.AccountID,
		"username": result.Principal.Username,
		"role":     result.Principal.Role,
	}
	if result.Principal.GradeLevel != "" {
		user["grade_level"] = result.Principal.GradeLevel
	}
	if result.Principal.ProfileID != nil {
		user["profile_id"] = *result.Principal.ProfileID
	}
	return gin.H{
		"access_token": result.AccessToken,
		"token_type":   "Bearer",
		"expires_in":   result.ExpiresIn,
		"session_id":   result.SessionID,
		"destination":  result.Destination,
		"user":         user,
	}
}

func accountPayload(account *domain.Account) gin.H {
	payload := gin.H{
		"id":           account.ID,
		"username":     account.Username,
		"display_name": account.DisplayName,
		"phone":        account.Phone,
		"role":         account.Role,
		"is_active":    account.IsActive,
		"created_at":   account.CreatedAt,
		"updated_at":   account.UpdatedAt,
	}
	if account.ProfileKind != domain.ProfileNone {
		payload["profile_kind"] = account.ProfileKind
	}
	if account.ProfileID != nil {
		payload["profile_id"] = *account.ProfileID
	}
	if account.GradeLevel != "" {
		payload["grade_level"] = account.GradeLevel
	}
	if account.AvatarURL != "" {
		payload["avatar_url"] = account.AvatarURL
	}
	return payload
}

func principalActorRef(principal *domain.Principal) string {
	return strconv.FormatUint(uint64(principal.AccountID), 10)
}

// maskContact hides all but the last digits of the delivery destination.
func maskContact(contact string) string {
	if len(contact) <= 4 {
		return contact
	}
	return strings.Repeat("*", len(contact)-4) + contact[len(contact)-4:]
}
