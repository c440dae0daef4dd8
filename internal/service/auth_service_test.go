package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-journal-api/internal/models"
	appErrors "github.com/noah-isme/sma-journal-api/pkg/errors"
)

type stubAuthRepo struct {
	user       *models.User
	findErr    error
	lastLogins []string
}

func (m *stubAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.user != nil && m.user.Email == email {
		copy := *m.user
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *stubAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLogins = append(m.lastLogins, id)
	return nil
}

func newAuthFixture(repo *stubAuthRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "test_secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "sma-journal-api",
	})
}

func activeUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "u1",
		Email:        "admin@sekolah.sch.id",
		PasswordHash: string(hash),
		FullName:     "Admin Sekolah",
		Role:         models.RoleAdmin,
		Active:       true,
	}
}

func TestAuthServiceLogin(t *testing.T) {
	repo := &stubAuthRepo{user: activeUser(t)}
	svc := newAuthFixture(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@sekolah.sch.id", Password: "rahasia123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "u1", res.User.ID)
	assert.Equal(t, []string{"u1"}, repo.lastLogins)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc := newAuthFixture(&stubAuthRepo{user: activeUser(t)})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@sekolah.sch.id", Password: "salah12345"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := newAuthFixture(&stubAuthRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@sekolah.sch.id", Password: "rahasia123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	user := activeUser(t)
	user.Active = false
	svc := newAuthFixture(&stubAuthRepo{user: user})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@sekolah.sch.id", Password: "rahasia123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	svc := newAuthFixture(&stubAuthRepo{user: activeUser(t)})
	other := NewAuthService(&stubAuthRepo{}, validator.New(), zap.NewNop(), AuthConfig{AccessTokenSecret: "other_secret"})

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@sekolah.sch.id", Password: "rahasia123"})
	require.NoError(t, err)

	_, err = other.ValidateToken(res.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
