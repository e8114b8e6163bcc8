package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"evadmin/backend/services/admin-service/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	hasher := NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	repo := NewMemoryAdmins(models.Admin{ID: "adm-1", Username: "Ops", PasswordHash: hash, Role: "admin"})
	return NewService(repo, hasher, NewTokenService("test-secret", time.Hour), zap.NewNop())
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := newTestService(t)

	token, admin, err := svc.Login(context.Background(), " ops ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "adm-1", admin.ID)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "adm-1", claims.AdminID)
	assert.Equal(t, "admin", claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, tc := range []struct{ user, pass string }{
		{"ops", "wrong"},
		{"nobody", "s3cret"},
		{"", "s3cret"},
		{"ops", ""},
	} {
		_, _, err := svc.Login(ctx, tc.user, tc.pass)
		assert.ErrorIs(t, err, ErrInvalidCredentials, "%s/%s", tc.user, tc.pass)
	}
}

func TestValidateTokenRejectsTamperingAndExpiry(t *testing.T) {
	tokens := NewTokenService("secret-a", time.Minute)
	token, err := tokens.GenerateToken("adm-1", "admin")
	require.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Minute).ValidateToken(token)
	assert.Error(t, err)

	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := tokens.GenerateToken("adm-1", "admin")
	require.NoError(t, err)
	_, err = tokens.ValidateToken(expired)
	assert.Error(t, err)

	_, err = tokens.GenerateToken("", "admin")
	assert.Error(t, err)
}

func TestPostgresAdminsGetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, username, password_hash, role, created_at`).
		WithArgs("ops").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}).
			AddRow("adm-7", "ops", "$2a$hash", "viewer", created))
	mock.ExpectQuery(`SELECT id, username, password_hash, role, created_at`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}))

	repo := NewPostgresAdmins(db)
	admin, err := repo.GetByUsername(context.Background(), "  OPS")
	require.NoError(t, err)
	assert.Equal(t, "adm-7", admin.ID)
	assert.Equal(t, created, admin.CreatedAt)

	_, err = repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrAdminNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBcryptHasherRejectsUnusablePasswords(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	_, err := hasher.Hash("   ")
	assert.ErrorIs(t, err, ErrWeakPassword)
	_, err = hasher.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	hash, err := hasher.Hash(strings.Repeat("a", 72))
	require.NoError(t, err)
	assert.NoError(t, hasher.CheckHash(hash))
	assert.NoError(t, hasher.Compare(hash, strings.Repeat("a", 72)))
}

func TestBcryptHasherClampsCost(t *testing.T) {
	for _, cost := range []int{0, 1, bcrypt.MaxCost + 1} {
		assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(cost).cost, cost)
	}
	assert.Equal(t, bcrypt.MinCost, NewBcryptHasher(bcrypt.MinCost).cost)
}

func TestCompareSeparatesMalformedHashFromMismatch(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)

	assert.ErrorIs(t, hasher.Compare(hash, "wrong"), bcrypt.ErrMismatchedHashAndPassword)
	assert.ErrorIs(t, hasher.Compare("plain-text", "s3cret"), ErrMalformedHash)
	assert.ErrorIs(t, hasher.CheckHash("plain-text"), ErrMalformedHash)

	core, logs := observer.New(zap.InfoLevel)
	repo := NewMemoryAdmins(models.Admin{ID: "adm-2", Username: "ops", PasswordHash: "plain-text", Role: "admin"})
	svc := NewService(repo, hasher, NewTokenService("test-secret", time.Hour), zap.New(core))
	_, _, err = svc.Login(context.Background(), "ops", "plain-text")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, logs.FilterMessage("stored password hash is unusable").Len())
}
