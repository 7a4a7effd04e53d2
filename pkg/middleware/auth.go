package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/prestiqx/ticket-ledger/pkg/response"
)

const (
	// ContextKeyCallerAddress is the gin context key for the authenticated wallet address
	ContextKeyCallerAddress = "caller_address"
	// ContextKeyCallerRole is the gin context key for the authenticated role
	ContextKeyCallerRole = "caller_role"

	// RoleAdmin may authorize organizers
	RoleAdmin = "admin"
	// RoleUser is the default role for authenticated wallets
	RoleUser = "user"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims are the token claims the server cares about
type Claims struct {
	Address string
	Role    string
}

// ParseToken validates a signed token and extracts the caller claims
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	address, ok := claims["address"].(string)
	if !ok || address == "" {
		return nil, ErrInvalidToken
	}

	role := RoleUser
	if r, ok := claims["role"].(string); ok && r != "" {
		role = r
	}

	return &Claims{
		Address: strings.ToLower(address),
		Role:    role,
	}, nil
}

// AuthMiddleware requires a valid Bearer token and stores the caller
// address and role in the gin context
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			response.Unauthorized(c, "Authorization header must be a Bearer token")
			c.Abort()
			return
		}

		claims, err := ParseToken(tokenString, secret)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				response.Unauthorized(c, "Token expired")
			} else {
				response.Unauthorized(c, "Invalid token")
			}
			c.Abort()
			return
		}

		c.Set(ContextKeyCallerAddress, claims.Address)
		c.Set(ContextKeyCallerRole, claims.Role)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the caller has the given role.
// It must run after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerRole, _ := GetCallerRole(c)
		if callerRole != role {
			response.Forbidden(c, "Insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetCallerAddress extracts the authenticated wallet address from gin context
func GetCallerAddress(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyCallerAddress)
	if !exists {
		return "", false
	}
	addr, ok := v.(string)
	return addr, ok
}

// GetCallerRole extracts the authenticated role from gin context
func GetCallerRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyCallerRole)
	if !exists {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
