package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// CreateRoom persists a payment room: the frozen bill, the payee info, and
// the per-member shares computed at creation time.
func (s *SQLiteStore) CreateRoom(ctx context.Context, room *models.PaymentRoom) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.CreatedAt == 0 {
		room.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO rooms (id, host_uid, host_name, promptpay_id, subtotal, service_charge_amount, vat_amount,
		                    grand_total, vat_enabled, service_charge_enabled, service_charge_percent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room.ID, room.HostUID, room.HostName, room.PromptPayID,
		room.Subtotal, room.ServiceChargeAmount, room.VATAmount, room.GrandTotal,
		room.Config.VATEnabled, room.Config.ServiceChargeEnabled, room.Config.ServiceChargePercent,
		room.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}

	for pos, m := range room.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO room_members (room_id, name, avatar, position) VALUES (?, ?, ?, ?)",
			room.ID, m.Name, m.Avatar, pos,
		)
		if err != nil {
			return fmt.Errorf("failed to insert room member: %w", err)
		}
	}

	for pos := range room.Items {
		item := &room.Items[pos]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO room_items (id, room_id, name, base_name, price, position) VALUES (?, ?, ?, ?, ?, ?)",
			item.ID, room.ID, item.Name, item.BaseName, item.Price, pos,
		)
		if err != nil {
			return fmt.Errorf("failed to insert room item: %w", err)
		}
		for _, p := range item.Participants {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO room_item_participants (item_id, participant) VALUES (?, ?)",
				item.ID, p,
			)
			if err != nil {
				return fmt.Errorf("failed to insert room item participant: %w", err)
			}
		}
	}

	for member, amount := range room.Shares {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO room_shares (room_id, member, amount) VALUES (?, ?, ?)",
			room.ID, member, amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert room share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRoom retrieves a room by its shareable id.
func (s *SQLiteStore) GetRoom(ctx context.Context, id string) (*models.PaymentRoom, error) {
	room := &models.PaymentRoom{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, host_uid, host_name, promptpay_id, subtotal, service_charge_amount, vat_amount,
		        grand_total, vat_enabled, service_charge_enabled, service_charge_percent, created_at
		 FROM rooms WHERE id = ?`, id,
	).Scan(&room.ID, &room.HostUID, &room.HostName, &room.PromptPayID,
		&room.Subtotal, &room.ServiceChargeAmount, &room.VATAmount, &room.GrandTotal,
		&room.Config.VATEnabled, &room.Config.ServiceChargeEnabled, &room.Config.ServiceChargePercent,
		&room.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	room.Members, err = s.loadMembers(ctx, "room_members", "room_id", room.ID)
	if err != nil {
		return nil, err
	}
	room.Items, err = s.loadItems(ctx, "room_items", "room_item_participants", "room_id", room.ID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT member, amount FROM room_shares WHERE room_id = ?", room.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get room shares: %w", err)
	}
	defer rows.Close()

	room.Shares = make(map[string]float64)
	for rows.Next() {
		var member string
		var amount float64
		if err := rows.Scan(&member, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan room share: %w", err)
		}
		room.Shares[member] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate room shares: %w", err)
	}
	return room, nil
}
