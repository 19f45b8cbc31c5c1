package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

// JWTServiceImpl implements domain.TokenService. The session token is the
// only externally observable session artifact: a signed, tamper-evident HS256
// JWT carrying the principal's role and profile attributes. Resolution never
// touches the account store.
type JWTServiceImpl struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
}

// NewJWTService creates a new JWT session issuer
func NewJWTService(secretKey string, issuer string, ttl time.Duration) domain.TokenService {
	return &JWTServiceImpl{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		ttl:       ttl,
	}
}

// generateJTI creates a unique JWT ID
func (j *JWTServiceImpl) generateJTI() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// TTL implements domain.TokenService
func (j *JWTServiceImpl) TTL() time.Duration {
	return j.ttl
}

// Issue implements domain.TokenService
func (j *JWTServiceImpl) Issue(principal *domain.Principal) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"account_id":  principal.AccountID,
		"username":    principal.Username,
		"role":        string(principal.Role),
		"grade_level": principal.GradeLevel,
		"session_id":  principal.SessionID,
		"iss":         j.issuer,
		"iat":         now.Unix(),
		"exp":         now.Add(j.ttl).Unix(),
		"jti":         j.generateJTI(),
	}
	if principal.ProfileID != nil {
		claims["profile_id"] = *principal.ProfileID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

// Resolve implements domain.TokenService. Fails closed: a signature
// mismatch, wrong signing method, missing claim, or mistyped claim all map to
// ErrSessionInvalid. The role is never defaulted.
func (j *JWTServiceImpl) Resolve(tokenString string) (*domain.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrSessionInvalid
		}
		return j.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrSessionExpired
		}
		return nil, domain.ErrSessionInvalid
	}
	if !token.Valid {
		return nil, domain.ErrSessionInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrSessionInvalid
	}

	accountID, ok := claims["account_id"].(float64)
	if !ok {
		return nil, domain.ErrSessionInvalid
	}
	username, ok := claims["username"].(string)
	if !ok {
		return nil, domain.ErrSessionInvalid
	}
	roleValue, ok := claims["role"].(string)
	if !ok {
		return nil, domain.ErrSessionInvalid
	}
	role := domain.Role(roleValue)
	if !role.Valid() {
		return nil, domain.ErrSessionInvalid
	}
	sessionID, ok := claims["session_id"].(string)
	if !ok {
		return nil, domain.ErrSessionInvalid
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, domain.ErrSessionInvalid
	}
	if time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, domain.ErrSessionExpired
	}

	principal := &domain.Principal{
		AccountID: uint(accountID),
		Username:  username,
		Role:      role,
		SessionID: sessionID,
	}

	if gradeLevel, ok := claims["grade_level"].(string); ok {
		principal.GradeLevel = gradeLevel
	}
	if profileID, ok := claims["profile_id"].(float64); ok {
		id := uint(profileID)
		principal.ProfileID = &id
	}

	return principal, nil
}
