package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"evadmin/backend/services/admin-service/internal/models"
)

// ErrAdminNotFound is returned for an unknown username.
var ErrAdminNotFound = errors.New("auth: admin not found")

// AdminRepository is the account store used by Service.
type AdminRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MemoryAdmins holds accounts seeded from configuration.
type MemoryAdmins struct {
	mu     sync.RWMutex
	admins map[string]models.Admin
}

// NewMemoryAdmins returns a store holding admins, keyed by username.
func NewMemoryAdmins(admins ...models.Admin) *MemoryAdmins {
	m := &MemoryAdmins{admins: make(map[string]models.Admin, len(admins))}
	for _, a := range admins {
		m.Put(a)
	}
	return m
}

// Put adds or replaces an account.
func (m *MemoryAdmins) Put(a models.Admin) {
	a.Username = normalizeUsername(a.Username)
	if a.ID == "" {
		a.ID = a.Username
	}
	m.mu.Lock()
	m.admins[a.Username] = a
	m.mu.Unlock()
}

// GetByUsername implements AdminRepository.
func (m *MemoryAdmins) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.admins[normalizeUsername(username)]
	if !ok {
		return nil, ErrAdminNotFound
	}
	return &a, nil
}

// PostgresAdmins reads accounts from the admins table.
type PostgresAdmins struct {
	db *sql.DB
}

// NewPostgresAdmins returns a repository over db.
func NewPostgresAdmins(db *sql.DB) *PostgresAdmins {
	return &PostgresAdmins{db: db}
}

// GetByUsername implements AdminRepository.
func (r *PostgresAdmins) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	const query = `
		SELECT id, username, password_hash, role, created_at
		FROM admins
		WHERE username = $1
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, normalizeUsername(username))
	var a models.Admin
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &a, nil
}
