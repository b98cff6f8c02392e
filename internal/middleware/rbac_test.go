package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/smd-api/internal/models"
)

func rbacRouter(claims *models.JWTClaims, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
	})
	router.Use(RequireRoles(roles...))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func doRequest(router *gin.Engine) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	return recorder
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "user-1", Roles: []models.UserRole{models.RoleHOD}}
	recorder := doRequest(rbacRouter(claims, models.RoleHOD, models.RoleAcademicAffairs))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestRequireRolesAnyHeldRolePasses(t *testing.T) {
	claims := &models.JWTClaims{UserID: "user-1", Roles: []models.UserRole{models.RoleLecturer, models.RoleHOD}}
	recorder := doRequest(rbacRouter(claims, models.RoleHOD))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestRequireRolesDeniesUnlistedRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "user-1", Roles: []models.UserRole{models.RoleStudent}}
	recorder := doRequest(rbacRouter(claims, models.RoleLecturer))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestRequireRolesSystemAdminBypass(t *testing.T) {
	claims := &models.JWTClaims{UserID: "admin-1", Roles: []models.UserRole{models.RoleSystemAdmin}}
	recorder := doRequest(rbacRouter(claims, models.RolePrincipal))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestRequireRolesMissingClaims(t *testing.T) {
	recorder := doRequest(rbacRouter(nil, models.RoleLecturer))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
