package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup. The unique index on bookings.identifier is
// load-bearing: the identifier generator relies on it to detect concurrent
// writers racing for the same sequence number.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS properties (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		property_type TEXT NOT NULL DEFAULT 'hotel',
		location      TEXT NOT NULL DEFAULT '',
		city          TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id           TEXT PRIMARY KEY,
		property_id  TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		hourly_rate  NUMERIC(10,2),
		daily_rate   NUMERIC(10,2),
		monthly_rate NUMERIC(10,2),
		yearly_rate  NUMERIC(10,2),
		discount     NUMERIC(5,2),
		total_rooms  INT NOT NULL DEFAULT 1,
		used_rooms   INT NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		identifier   TEXT PRIMARY KEY,
		property_id  TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		room_id      TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		guest_name   TEXT NOT NULL,
		guest_mobile TEXT NOT NULL DEFAULT '',
		rate_basis   TEXT NOT NULL,
		checkin      TIMESTAMPTZ NOT NULL,
		checkout     TIMESTAMPTZ NOT NULL,
		guests       INT NOT NULL DEFAULT 1,
		rooms        INT NOT NULL DEFAULT 1,
		discount     NUMERIC(5,2) NOT NULL DEFAULT 0,
		price        NUMERIC(10,2) NOT NULL,
		booking_type TEXT NOT NULL DEFAULT 'walkin',
		payment_type TEXT NOT NULL DEFAULT 'upi',
		status       TEXT NOT NULL DEFAULT 'pending',
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_property ON bookings(property_id, checkin)`,
}

// Migrate applies the schema. Statements are idempotent, so running it on
// every startup is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
