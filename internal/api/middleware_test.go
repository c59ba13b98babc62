package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ordersystem/internal/auth"
	"ordersystem/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *auth.TokenService {
	return auth.NewTokenService("middleware-test-secret", "ordersystem", "ordersystem-clients", 30*time.Minute)
}

func newAuthTestRouter(tokens TokenValidator, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	group := router.Group("")
	group.Use(AuthRequired(tokens))
	if len(roles) > 0 {
		group.Use(RequireRoles(roles...))
	}
	group.GET("/whoami", func(c *gin.Context) {
		identity := CallerIdentity(c)
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID, "roles": identity.Roles})
	})

	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredMissingHeader(t *testing.T) {
	router := newAuthTestRouter(newTestTokenService())

	w := doRequest(router, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), ErrMissingCredential.Error())
}

func TestAuthRequiredHeaderWithoutTokenSegment(t *testing.T) {
	router := newAuthTestRouter(newTestTokenService())

	w := doRequest(router, "Bearer")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), ErrMalformedCredential.Error())
}

// "Bearer " carries an empty token segment; the validator, not the
// extractor, rejects it.
func TestAuthRequiredEmptyToken(t *testing.T) {
	router := newAuthTestRouter(newTestTokenService())

	w := doRequest(router, "Bearer ")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), auth.ErrInvalidToken.Error())
}

func TestAuthRequiredInvalidToken(t *testing.T) {
	router := newAuthTestRouter(newTestTokenService())

	w := doRequest(router, "Bearer not-a-real-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredValidToken(t *testing.T) {
	tokens := newTestTokenService()
	router := newAuthTestRouter(tokens)

	token, err := tokens.Issue("user-42", []string{models.RoleUser})
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-42")
}

func TestRequireRolesForbidden(t *testing.T) {
	tokens := newTestTokenService()
	router := newAuthTestRouter(tokens, models.RoleAdmin, models.RoleModerator)

	token, err := tokens.Issue("user-42", []string{models.RoleUser})
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesAllowed(t *testing.T) {
	tokens := newTestTokenService()
	router := newAuthTestRouter(tokens, models.RoleAdmin, models.RoleModerator)

	token, err := tokens.Issue("user-42", []string{models.RoleModerator})
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
}

// Role matching is exact and case-sensitive; "admin" is not Admin.
func TestRequireRolesCaseSensitive(t *testing.T) {
	tokens := newTestTokenService()
	router := newAuthTestRouter(tokens, models.RoleAdmin)

	token, err := tokens.Issue("user-42", []string{"admin"})
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestIdentityFromRequestSchemeAgnostic(t *testing.T) {
	tokens := newTestTokenService()

	token, err := tokens.Issue("user-7", nil)
	require.NoError(t, err)

	// only the token segment reaches the validator; the scheme is not
	// inspected
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token "+token)

	identity, err := IdentityFromRequest(tokens, req)
	require.NoError(t, err)
	assert.Equal(t, "user-7", identity.UserID)
}
