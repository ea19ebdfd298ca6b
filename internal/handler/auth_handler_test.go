package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ricemill-service/pkg/config"
	"ricemill-service/pkg/jwtutil"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	company := env.seedCompany("Acme Rice Mill")
	env.seedUser("alice", "admin", company.ID)

	rec := env.do(http.MethodPost, "/token", "", map[string]string{
		"username": "alice",
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, "bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)

	claims, err := env.jwt.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	company := env.seedCompany("Acme Rice Mill")
	env.seedUser("alice", "admin", company.ID)

	rec := env.do(http.MethodPost, "/token", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/token", "", map[string]string{
		"username": "ghost",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginDeactivatedUser(t *testing.T) {
	env := newTestEnv(t)
	company := env.seedCompany("Acme Rice Mill")
	user := env.seedUser("alice", "admin", company.ID)
	require.NoError(t, env.db.Model(&user).Update("active", false).Error)

	rec := env.do(http.MethodPost, "/token", "", map[string]string{
		"username": "alice",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	company := env.seedCompany("Acme Rice Mill")
	env.seedUser("bob", "agent", company.ID)

	rec := env.do(http.MethodGet, "/users/me", env.token("bob"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Username  string `json:"username"`
		Role      string `json:"role"`
		CompanyID uint   `json:"company_id"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, "bob", resp.Username)
	assert.Equal(t, "agent", resp.Role)
	assert.Equal(t, company.ID, resp.CompanyID)
}

func TestMissingTokenIsUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/farmers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMalformedAuthorizationHeader(t *testing.T) {
	env := newTestEnv(t)
	company := env.seedCompany("Acme Rice Mill")
	env.seedUser("bob", "agent", company.ID)

	// A raw token without the Bearer scheme is rejected before validation
	req := httptest.NewRequest(http.MethodGet, "/farmers", nil)
	req.Header.Set("Authorization", env.token("bob"))
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpiredTokenIsUnauthenticated(t *testing.T) {
	env := newTestEnv(t)
	company := env.seedCompany("Acme Rice Mill")
	env.seedUser("bob", "agent", company.ID)

	expiredIssuer := jwtutil.New(&config.JWTConfig{SigningKey: "test-key", ExpirationMinutes: -1})
	expired, err := expiredIssuer.GenerateToken("bob")
	require.NoError(t, err)

	rec := env.do(http.MethodGet, "/farmers", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenForDeletedUserIsUnauthenticated(t *testing.T) {
	env := newTestEnv(t)
	company := env.seedCompany("Acme Rice Mill")
	user := env.seedUser("bob", "agent", company.ID)

	// Token issued while the user existed, identity revoked afterwards
	token := env.token("bob")
	require.NoError(t, env.db.Delete(&user).Error)

	rec := env.do(http.MethodGet, "/farmers", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
