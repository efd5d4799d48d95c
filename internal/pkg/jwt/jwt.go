package jwt

import (
	"errors"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

const tokenTypeAccess = "access"

var (
	ErrInvalidToken           = errors.New("invalid or missing access token")
	ErrTokenRevoked           = errors.New("token has been revoked")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
)

// Claims is the subset of access-token claims the API relies on.
type Claims struct {
	UserID     string
	EmployeeID *string
	Role       Role
}

func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

type Service interface {
	GenerateAccessToken(userID string, employeeID *string, role Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	revokedTokens             map[string]int64
	mu                        sync.RWMutex
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:             make(map[string]int64),
	}
}

func (j *JWTService) GenerateAccessToken(userID string, employeeID *string, role Role) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":  userID,
		"role":     string(role),
		"is_admin": role == RoleAdmin,
		"type":     tokenTypeAccess,
		"exp":      expiresAt,
	}
	if employeeID != nil {
		claims["employee_id"] = *employeeID
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) RevokeToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = time.Now().Unix()
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

// ClaimsFromMap reads the access-token claims decoded by jwtauth.
func ClaimsFromMap(m map[string]interface{}) (Claims, error) {
	if t, _ := m["type"].(string); t != tokenTypeAccess {
		return Claims{}, ErrInvalidToken
	}

	userID, _ := m["user_id"].(string)
	if userID == "" {
		return Claims{}, ErrInvalidToken
	}

	c := Claims{UserID: userID}
	if role, ok := m["role"].(string); ok {
		c.Role = Role(role)
	} else if admin, _ := m["is_admin"].(bool); admin {
		c.Role = RoleAdmin
	}
	if empID, ok := m["employee_id"].(string); ok && empID != "" {
		c.EmployeeID = &empID
	}
	return c, nil
}
