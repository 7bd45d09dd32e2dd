// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/fairsplit/fairsplit/internal/models"
)

// ErrNotFound is returned when a record does not exist. Callers surface it
// as a terminal not-found state (e.g. an expired room link) rather than a
// failure.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence operations the services need. The shape
// follows a simple document-store contract: create, get by id, query by
// owner, delete, batch delete. No transactional guarantees across records
// are assumed beyond single-call atomicity.
//
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// a hosted document store) without changing the service layer.
type Store interface {
	// CreateBill persists a frozen bill snapshot. ID, Title, and CreatedAt
	// are populated when empty.
	CreateBill(ctx context.Context, snap *models.BillSnapshot) error

	// GetBill retrieves a snapshot by id. Returns ErrNotFound if missing.
	GetBill(ctx context.Context, id string) (*models.BillSnapshot, error)

	// ListBills returns the owner's snapshots, newest first.
	ListBills(ctx context.Context, ownerID string) ([]*models.BillSnapshot, error)

	// DeleteBill removes one snapshot owned by ownerID.
	// Returns ErrNotFound when no such snapshot exists for that owner.
	DeleteBill(ctx context.Context, ownerID, id string) error

	// DeleteBills removes several snapshots owned by ownerID in one call.
	// Missing ids are skipped, matching at-least-once delete semantics.
	DeleteBills(ctx context.Context, ownerID string, ids []string) error

	// CreateRoom persists a payment room. ID and CreatedAt are populated
	// when empty.
	CreateRoom(ctx context.Context, room *models.PaymentRoom) error

	// GetRoom retrieves a room by its shareable id.
	// Returns ErrNotFound if missing.
	GetRoom(ctx context.Context, id string) (*models.PaymentRoom, error)

	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns ErrNotFound if missing.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by id. Returns ErrNotFound if missing.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// SaveDraft upserts the serialized draft state stored under key.
	SaveDraft(ctx context.Context, key string, data []byte) error

	// LoadDraft reads the draft stored under key.
	// Returns ErrNotFound when absent.
	LoadDraft(ctx context.Context, key string) ([]byte, error)

	// ClearDraft removes the draft stored under key. Clearing an absent
	// draft is not an error.
	ClearDraft(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
