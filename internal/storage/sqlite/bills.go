package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// CreateBill persists a frozen bill snapshot.
func (s *SQLiteStore) CreateBill(ctx context.Context, snap *models.BillSnapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CreatedAt == 0 {
		snap.CreatedAt = time.Now().Unix()
	}
	if snap.Title == "" {
		snap.Title = generateTitle(snap.Members)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, owner_id, title, subtotal, service_charge_amount, vat_amount, grand_total, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.OwnerID, snap.Title, snap.Subtotal, snap.ServiceChargeAmount, snap.VATAmount, snap.GrandTotal, snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for pos, m := range snap.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO bill_members (bill_id, name, avatar, position) VALUES (?, ?, ?, ?)",
			snap.ID, m.Name, m.Avatar, pos,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill member: %w", err)
		}
	}

	for pos := range snap.Items {
		item := &snap.Items[pos]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO bill_items (id, bill_id, name, base_name, price, position) VALUES (?, ?, ?, ?, ?, ?)",
			item.ID, snap.ID, item.Name, item.BaseName, item.Price, pos,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill item: %w", err)
		}
		for _, p := range item.Participants {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO bill_item_participants (item_id, participant) VALUES (?, ?)",
				item.ID, p,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item participant: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBill retrieves a snapshot by id, including members and items.
func (s *SQLiteStore) GetBill(ctx context.Context, id string) (*models.BillSnapshot, error) {
	snap := &models.BillSnapshot{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, subtotal, service_charge_amount, vat_amount, grand_total, created_at
		 FROM bills WHERE id = ?`, id,
	).Scan(&snap.ID, &snap.OwnerID, &snap.Title, &snap.Subtotal, &snap.ServiceChargeAmount, &snap.VATAmount, &snap.GrandTotal, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	snap.Members, err = s.loadMembers(ctx, "bill_members", "bill_id", snap.ID)
	if err != nil {
		return nil, err
	}
	snap.Items, err = s.loadItems(ctx, "bill_items", "bill_item_participants", "bill_id", snap.ID)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ListBills returns the owner's snapshots, newest first.
func (s *SQLiteStore) ListBills(ctx context.Context, ownerID string) ([]*models.BillSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM bills WHERE owner_id = ? ORDER BY created_at DESC, id",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan bill id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	bills := make([]*models.BillSnapshot, 0, len(ids))
	for _, id := range ids {
		snap, err := s.GetBill(ctx, id)
		if err != nil {
			return nil, err
		}
		bills = append(bills, snap)
	}
	return bills, nil
}

// DeleteBill removes one snapshot owned by ownerID.
func (s *SQLiteStore) DeleteBill(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM bills WHERE id = ? AND owner_id = ?", id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteBills removes several snapshots owned by ownerID. Missing ids are
// skipped rather than failing the batch.
func (s *SQLiteStore) DeleteBills(ctx context.Context, ownerID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM bills WHERE owner_id = ? AND id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to batch delete bills: %w", err)
	}
	return nil
}

// loadMembers reads the member rows attached to a bill or room.
func (s *SQLiteStore) loadMembers(ctx context.Context, table, fk, id string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT name, avatar FROM %s WHERE %s = ? ORDER BY position", table, fk),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.Name, &m.Avatar); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// loadItems reads the item rows and their participant sets attached to a
// bill or room.
func (s *SQLiteStore) loadItems(ctx context.Context, itemTable, participantTable, fk, id string) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT id, name, base_name, price FROM %s WHERE %s = ? ORDER BY position", itemTable, fk),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.BaseName, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Participants = []string{}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	for i := range items {
		pRows, err := s.db.QueryContext(ctx,
			fmt.Sprintf("SELECT participant FROM %s WHERE item_id = ? ORDER BY participant", participantTable),
			items[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get item participants: %w", err)
		}
		for pRows.Next() {
			var p string
			if err := pRows.Scan(&p); err != nil {
				pRows.Close()
				return nil, fmt.Errorf("failed to scan participant: %w", err)
			}
			items[i].Participants = append(items[i].Participants, p)
		}
		if err := pRows.Err(); err != nil {
			pRows.Close()
			return nil, fmt.Errorf("failed to iterate participants: %w", err)
		}
		pRows.Close()
	}
	return items, nil
}
