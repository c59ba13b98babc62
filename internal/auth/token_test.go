package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret-key"

func newTestService() *TokenService {
	return NewTokenService(testSecret, "ordersystem", "ordersystem-clients", 30*time.Minute)
}

func TestIssueAndValidate(t *testing.T) {
	ts := newTestService()

	token, err := ts.Issue("user-42", []string{"Admin"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", identity.UserID)
	assert.Equal(t, []string{"Admin"}, identity.Roles)
}

func TestIssueWithoutRoles(t *testing.T) {
	ts := newTestService()

	token, err := ts.Issue("user-7", nil)
	require.NoError(t, err)

	identity, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-7", identity.UserID)
	assert.Empty(t, identity.Roles)
}

func TestValidateExpiredToken(t *testing.T) {
	ts := newTestService()

	issuedAt := time.Now()
	ts.now = func() time.Time { return issuedAt }

	token, err := ts.Issue("user-42", []string{"User"})
	require.NoError(t, err)

	// one second past the 30 minute lifetime
	ts.now = func() time.Time { return issuedAt.Add(30*time.Minute + time.Second) }

	_, err = ts.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateWrongSecret(t *testing.T) {
	ts := newTestService()
	other := NewTokenService("a-different-secret", "ordersystem", "ordersystem-clients", 30*time.Minute)

	token, err := other.Issue("user-42", []string{"User"})
	require.NoError(t, err)

	_, err = ts.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateWrongIssuer(t *testing.T) {
	ts := newTestService()
	other := NewTokenService(testSecret, "someone-else", "ordersystem-clients", 30*time.Minute)

	token, err := other.Issue("user-42", nil)
	require.NoError(t, err)

	_, err = ts.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateWrongAudience(t *testing.T) {
	ts := newTestService()
	other := NewTokenService(testSecret, "ordersystem", "another-audience", 30*time.Minute)

	token, err := other.Issue("user-42", nil)
	require.NoError(t, err)

	_, err = ts.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateMalformedToken(t *testing.T) {
	ts := newTestService()

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := ts.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret")
	require.NoError(t, err)
	require.NotEqual(t, "Sup3rSecret", hash)

	assert.NoError(t, VerifyPassword(hash, "Sup3rSecret"))
	assert.Error(t, VerifyPassword(hash, "wrong-password"))
}

func TestHashPasswordEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}
