// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser persists a new user account.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

// GetUserByID retrieves a user by id.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash, created_at FROM users WHERE "+where,
		arg,
	).Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// SaveDraft upserts the serialized draft stored under key.
func (s *SQLiteStore) SaveDraft(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO drafts (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// LoadDraft reads the draft stored under key.
func (s *SQLiteStore) LoadDraft(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM drafts WHERE key = ?", key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	return data, nil
}

// ClearDraft removes the draft stored under key.
func (s *SQLiteStore) ClearDraft(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM drafts WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}

// generateTitle creates an auto-generated title from member names.
func generateTitle(members []models.Member) string {
	if len(members) == 0 {
		return fmt.Sprintf("Bill - %s", time.Now().Format("Jan 2, 2006"))
	}
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	if len(names) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(names[:2], ", "),
		len(names)-2,
	)
}
