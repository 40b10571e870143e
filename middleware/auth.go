package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"burger-ordering-api/config"
	"burger-ordering-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long a back-office session lasts, one working shift
const TokenTTL = 12 * time.Hour

const (
	ctxUserID = "userID"
	ctxEmail  = "email"
	ctxRole   = "role"
)

var errNoBearer = errors.New("authorization header required (Bearer <token>)")

type Claims struct {
	UserID uint            `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs a session token for a back-office user
func GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(config.JWTSecret)
}

// ParseToken verifies an HS256 session token and returns its claims
func ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return config.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims.Role != models.RoleAdmin && claims.Role != models.RoleStaff {
		return nil, errors.New("token carries no back-office role")
	}
	return claims, nil
}

func bearer(c *gin.Context) (string, error) {
	raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", errNoBearer
	}
	return strings.TrimSpace(raw), nil
}

// AuthRequired validates the session token and puts the caller into the context
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearer(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required (Bearer <token>)"})
			return
		}
		claims, err := ParseToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, string(claims.Role))
		c.Next()
	}
}

// RoleRequired lets the request through only for the given roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	denied := "Access denied. Required role(s): " + strings.Join(names, ", ")

	return func(c *gin.Context) {
		caller := GetRole(c)
		for _, r := range roles {
			if caller == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": denied})
	}
}

// BackOffice is the chain for routes open to admins and staff
func BackOffice() []gin.HandlerFunc {
	return []gin.HandlerFunc{AuthRequired(), RoleRequired(models.RoleAdmin, models.RoleStaff)}
}

// AdminOnly is the chain for menu, pricing and account management
func AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{AuthRequired(), RoleRequired(models.RoleAdmin)}
}

// GetUserID is the authenticated back-office user, 0 when there is none
func GetUserID(c *gin.Context) uint {
	val, _ := c.Get(ctxUserID)
	id, _ := val.(uint)
	return id
}

// GetRole is the caller's role, empty when unauthenticated
func GetRole(c *gin.Context) models.UserRole {
	val, _ := c.Get(ctxRole)
	s, _ := val.(string)
	return models.UserRole(s)
}
