package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"burger-ordering-api/config"
	"burger-ordering-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.Group("/admin", BackOffice()...).GET("/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": GetUserID(c), "role": GetRole(c)})
	})
	r.Group("/admin", AdminOnly()...).GET("/users", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func request(r *gin.Engine, path, token string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthRequired(t *testing.T) {
	r := setupRouter()
	staff, err := GenerateToken(&models.User{ID: 7, Email: "s@example.com", Role: models.RoleStaff})
	if err != nil {
		t.Fatal(err)
	}
	admin, err := GenerateToken(&models.User{ID: 1, Email: "a@example.com", Role: models.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"no token", "/admin/orders", "", http.StatusUnauthorized},
		{"garbage token", "/admin/orders", "not-a-jwt", http.StatusUnauthorized},
		{"staff reads orders", "/admin/orders", staff, http.StatusOK},
		{"staff manages users", "/admin/users", staff, http.StatusForbidden},
		{"admin manages users", "/admin/users", admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := request(r, tt.path, tt.token); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func sign(t *testing.T, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(config.JWTSecret)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestParseTokenRejects(t *testing.T) {
	valid := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	expired := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}

	tests := []struct {
		name  string
		token string
	}{
		{"other algorithm", sign(t, jwt.SigningMethodHS384, Claims{UserID: 1, Role: models.RoleAdmin, RegisteredClaims: valid})},
		{"expired", sign(t, jwt.SigningMethodHS256, Claims{UserID: 1, Role: models.RoleAdmin, RegisteredClaims: expired})},
		{"no back-office role", sign(t, jwt.SigningMethodHS256, Claims{UserID: 1, Role: "customer", RegisteredClaims: valid})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.token); err == nil {
				t.Error("token accepted")
			}
		})
	}

	claims, err := ParseToken(sign(t, jwt.SigningMethodHS256, Claims{UserID: 3, Role: models.RoleStaff, RegisteredClaims: valid}))
	if err != nil || claims.UserID != 3 || claims.Role != models.RoleStaff {
		t.Errorf("ParseToken = %+v, %v", claims, err)
	}
}
