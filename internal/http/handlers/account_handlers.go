package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
	"github.com/teamparagoncapstone/lms-authsvc/internal/http/middleware"
)

// AccountHandlers handles account provisioning HTTP requests. All routes sit
// behind the manager role gate.
type AccountHandlers struct {
	authSvc domain.AuthService
}

// NewAccountHandlers creates new account handlers
func NewAccountHandlers(authSvc domain.AuthService) *AccountHandlers {
	return &AccountHandlers{authSvc: authSvc}
}

// CreateAccountRequest represents an account provisioning request
type CreateAccountRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	Role        string `json:"role" binding:"required"`
	ProfileKind string `json:"profile_kind"`
	ProfileID   *uint  `json:"profile_id"`
	GradeLevel  string `json:"grade_level"`
	AvatarURL   string `json:"avatar_url"`
}

// UpdateAccountRequest represents an account edit request
type UpdateAccountRequest struct {
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	Role        string `json:"role" binding:"required"`
	ProfileKind string `json:"profile_kind"`
	ProfileID   *uint  `json:"profile_id"`
	GradeLevel  string `json:"grade_level"`
	AvatarURL   string `json:"avatar_url"`
}

// Create handles account provisioning
func (h *AccountHandlers) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account := &domain.Account{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Role:        domain.Role(req.Role),
		ProfileKind: domain.ProfileKind(req.ProfileKind),
		ProfileID:   req.ProfileID,
		GradeLevel:  req.GradeLevel,
		AvatarURL:   req.AvatarURL,
	}

	created, err := h.authSvc.Register(c.Request.Context(), account, req.Password, middleware.CurrentPrincipal(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
		case errors.Is(err, domain.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": accountPayload(created)})
}

// Get returns one account by id
func (h *AccountHandlers) Get(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	account, err := h.authSvc.GetAccount(c.Request.Context(), id)
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

// Update handles account edits. The credential hash is owned by the change
// and reset flows; this route never touches it.
func (h *AccountHandlers) Update(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account := &domain.Account{
		ID:          id,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Role:        domain.Role(req.Role),
		ProfileKind: domain.ProfileKind(req.ProfileKind),
		ProfileID:   req.ProfileID,
		GradeLevel:  req.GradeLevel,
		AvatarURL:   req.AvatarURL,
		IsActive:    true,
	}

	if err := h.authSvc.UpdateAccount(c.Request.Context(), account, middleware.CurrentPrincipal(c)); err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, domain.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update account"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Account updated"}})
}

// Deactivate handles soft account removal
func (h *AccountHandlers) Deactivate(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	if err := h.authSvc.DeactivateAccount(c.Request.Context(), id, middleware.CurrentPrincipal(c)); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Account deactivated"}})
}

func accountID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account id"})
		return 0, false
	}
	return uint(id), true
}
