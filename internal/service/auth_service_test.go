package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AshiqAbdulkhader/FSAD-version2/internal/models"
	appErrors "github.com/AshiqAbdulkhader/FSAD-version2/pkg/errors"
)

type userRepoStub struct {
	users     map[string]*models.User
	created   []*models.User
	createErr error
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, user)
	if s.users == nil {
		s.users = map[string]*models.User{}
	}
	s.users[user.ID] = user
	return nil
}

func newAuthServiceForTest(repo *userRepoStub) *AuthService {
	return NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "equipment-lending-api",
	})
}

func TestAuthServiceRegisterDefaultsToStudent(t *testing.T) {
	repo := &userRepoStub{}
	svc := newAuthServiceForTest(repo)

	info, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "New.Student@Example.com",
		Password: "secret123",
		Name:     "New Student",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, info.Role)
	assert.Equal(t, "new.student@example.com", info.Email)

	require.Len(t, repo.created, 1)
	stored := repo.created[0]
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := &userRepoStub{users: map[string]*models.User{
		"user-1": {ID: "user-1", Email: "taken@example.com"},
	}}
	svc := newAuthServiceForTest(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "taken@example.com",
		Password: "secret123",
		Name:     "Duplicate",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginAndValidateToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &userRepoStub{users: map[string]*models.User{
		"user-1": {ID: "user-1", Email: "a@example.com", PasswordHash: string(hash), Name: "Student A", Role: models.RoleStaff},
	}}
	svc := newAuthServiceForTest(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "user-1", res.User.ID)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleStaff, claims.Role)
	assert.Equal(t, "equipment-lending-api", claims.Issuer)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &userRepoStub{users: map[string]*models.User{
		"user-1": {ID: "user-1", Email: "a@example.com", PasswordHash: string(hash)},
	}}
	svc := newAuthServiceForTest(repo)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "a@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := newAuthServiceForTest(&userRepoStub{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	require.Error(t, err)
	// Unknown accounts and bad passwords are indistinguishable to the caller.
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsTampering(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &userRepoStub{users: map[string]*models.User{
		"user-1": {ID: "user-1", Email: "a@example.com", PasswordHash: string(hash)},
	}}
	svc := newAuthServiceForTest(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@example.com", Password: "secret123"})
	require.NoError(t, err)

	tampered := res.Token[:strings.LastIndex(res.Token, ".")+1] + "forgedsignature"
	_, err = svc.ValidateToken(tampered)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceMe(t *testing.T) {
	repo := &userRepoStub{users: map[string]*models.User{
		"user-1": {ID: "user-1", Email: "a@example.com", Name: "Student A", Role: models.RoleStudent},
	}}
	svc := newAuthServiceForTest(repo)

	info, err := svc.Me(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Student A", info.Name)

	_, err = svc.Me(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
