package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/AshiqAbdulkhader/FSAD-version2/internal/models"
)

func performWithClaims(t *testing.T, claims *models.JWTClaims, roles ...models.UserRole) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
	}, RequireRoles(roles...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
	return rec
}

func TestRequireRolesAllowsListedRoles(t *testing.T) {
	rec := performWithClaims(t, &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff}, models.RoleStaff, models.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRolesRejectsOtherRoles(t *testing.T) {
	rec := performWithClaims(t, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent}, models.RoleStaff, models.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesRejectsMissingClaims(t *testing.T) {
	rec := performWithClaims(t, nil, models.RoleAdmin)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
