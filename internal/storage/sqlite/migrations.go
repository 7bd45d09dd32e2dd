package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database.
// These run on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    title TEXT NOT NULL,
    subtotal REAL NOT NULL,
    service_charge_amount REAL NOT NULL,
    vat_amount REAL NOT NULL,
    grand_total REAL NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bill_members (
    bill_id TEXT NOT NULL,
    name TEXT NOT NULL,
    avatar TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (bill_id, name),
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bill_items (
    id TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL,
    name TEXT NOT NULL,
    base_name TEXT NOT NULL,
    price REAL NOT NULL,
    position INTEGER NOT NULL,
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bill_item_participants (
    item_id TEXT NOT NULL,
    participant TEXT NOT NULL,
    PRIMARY KEY (item_id, participant),
    FOREIGN KEY (item_id) REFERENCES bill_items(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS rooms (
    id TEXT PRIMARY KEY,
    host_uid TEXT NOT NULL,
    host_name TEXT NOT NULL,
    promptpay_id TEXT NOT NULL,
    subtotal REAL NOT NULL,
    service_charge_amount REAL NOT NULL,
    vat_amount REAL NOT NULL,
    grand_total REAL NOT NULL,
    vat_enabled INTEGER NOT NULL,
    service_charge_enabled INTEGER NOT NULL,
    service_charge_percent REAL NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS room_members (
    room_id TEXT NOT NULL,
    name TEXT NOT NULL,
    avatar TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (room_id, name),
    FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS room_items (
    id TEXT PRIMARY KEY,
    room_id TEXT NOT NULL,
    name TEXT NOT NULL,
    base_name TEXT NOT NULL,
    price REAL NOT NULL,
    position INTEGER NOT NULL,
    FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS room_item_participants (
    item_id TEXT NOT NULL,
    participant TEXT NOT NULL,
    PRIMARY KEY (item_id, participant),
    FOREIGN KEY (item_id) REFERENCES room_items(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS room_shares (
    room_id TEXT NOT NULL,
    member TEXT NOT NULL,
    amount REAL NOT NULL,
    PRIMARY KEY (room_id, member),
    FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS drafts (
    key TEXT PRIMARY KEY,
    data BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bills_owner_id ON bills(owner_id);
CREATE INDEX IF NOT EXISTS idx_bill_members_bill_id ON bill_members(bill_id);
CREATE INDEX IF NOT EXISTS idx_bill_items_bill_id ON bill_items(bill_id);
CREATE INDEX IF NOT EXISTS idx_bill_item_participants_item_id ON bill_item_participants(item_id);
CREATE INDEX IF NOT EXISTS idx_room_members_room_id ON room_members(room_id);
CREATE INDEX IF NOT EXISTS idx_room_items_room_id ON room_items(room_id);
CREATE INDEX IF NOT EXISTS idx_room_item_participants_item_id ON room_item_participants(item_id);
CREATE INDEX IF NOT EXISTS idx_room_shares_room_id ON room_shares(room_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
