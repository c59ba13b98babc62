package service

import (
	"context"
	"testing"

	"ordersystem/internal/auth"
	"ordersystem/internal/models"
	"ordersystem/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	byUsername map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byUsername: make(map[string]*models.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *models.User) error {
	if _, ok := f.byUsername[user.Username]; ok {
		return store.ErrAlreadyExists
	}
	f.byUsername[user.Username] = user
	return nil
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	user, ok := f.byUsername[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return user, nil
}

type fakeTokenIssuer struct {
	lastUserID string
	lastRoles  []string
}

func (f *fakeTokenIssuer) Issue(userID string, roles []string) (string, error) {
	f.lastUserID = userID
	f.lastRoles = roles
	return "signed-token", nil
}

func registerFixtureUser(t *testing.T, svc *UserService) *models.User {
	t.Helper()
	user, err := svc.RegisterUser(context.Background(), RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  "ada",
		Password:  "Sup3rSecret",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterUserAssignsUserRole(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), &fakeTokenIssuer{})

	user := registerFixtureUser(t, svc)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, []string{models.RoleUser}, []string(user.Roles))
	assert.NotEqual(t, "Sup3rSecret", user.PasswordHash)
	assert.NoError(t, auth.VerifyPassword(user.PasswordHash, "Sup3rSecret"))
}

func TestRegisterModeratorAssignsModeratorRole(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), &fakeTokenIssuer{})

	user, err := svc.RegisterModerator(context.Background(), RegisterRequest{
		FirstName: "Grace",
		LastName:  "Hopper",
		Username:  "grace",
		Password:  "Sup3rSecret",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleModerator}, []string(user.Roles))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), &fakeTokenIssuer{})
	registerFixtureUser(t, svc)

	_, err := svc.RegisterUser(context.Background(), RegisterRequest{
		FirstName: "Ada",
		LastName:  "Byron",
		Username:  "ada",
		Password:  "An0therSecret",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginIssuesToken(t *testing.T) {
	issuer := &fakeTokenIssuer{}
	svc := NewUserService(newFakeUserStore(), issuer)
	registered := registerFixtureUser(t, svc)

	user, token, err := svc.Login(context.Background(), "ada", "Sup3rSecret")
	require.NoError(t, err)

	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "signed-token", token)
	assert.Equal(t, registered.ID, issuer.lastUserID)
	assert.Equal(t, []string{models.RoleUser}, issuer.lastRoles)
}

// Wrong password and unknown username collapse to the same answer so the
// response does not reveal which part was wrong.
func TestLoginInvalidCredentials(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), &fakeTokenIssuer{})
	registerFixtureUser(t, svc)

	_, _, err := svc.Login(context.Background(), "ada", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody", "Sup3rSecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
