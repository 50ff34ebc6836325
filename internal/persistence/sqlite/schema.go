package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migrations are applied in order exactly once, tracked by version in
// schema_migrations.
var migrations = []struct {
	version    int
	statements []string
}{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE hosts (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				display_name TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE schedules (
				id TEXT PRIMARY KEY,
				host_id TEXT NOT NULL REFERENCES hosts(id) ON DELETE CASCADE,
				name TEXT NOT NULL,
				timezone TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE availability_windows (
				schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
				weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
				start_minute INTEGER NOT NULL,
				end_minute INTEGER NOT NULL,
				CHECK (start_minute >= 0 AND start_minute < end_minute)
			)`,
			`CREATE TABLE date_overrides (
				schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
				date TEXT NOT NULL,
				unavailable INTEGER NOT NULL DEFAULT 0,
				start_minute INTEGER NOT NULL DEFAULT 0,
				end_minute INTEGER NOT NULL DEFAULT 0,
				UNIQUE (schedule_id, date)
			)`,
			// schedule_id deliberately has no ON DELETE CASCADE: deleting a
			// schedule still referenced by an event type must fail.
			`CREATE TABLE event_types (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				schedule_id TEXT NOT NULL REFERENCES schedules(id),
				host_id TEXT,
				scheduling_type TEXT NOT NULL CHECK (scheduling_type IN ('single', 'round_robin', 'collective')),
				round_robin_cursor INTEGER NOT NULL DEFAULT -1,
				duration_minutes INTEGER NOT NULL CHECK (duration_minutes > 0),
				before_buffer_minutes INTEGER NOT NULL DEFAULT 0 CHECK (before_buffer_minutes >= 0),
				after_buffer_minutes INTEGER NOT NULL DEFAULT 0 CHECK (after_buffer_minutes >= 0),
				minimum_notice_minutes INTEGER NOT NULL DEFAULT 0 CHECK (minimum_notice_minutes >= 0),
				horizon_days INTEGER NOT NULL DEFAULT 0 CHECK (horizon_days >= 0),
				requires_confirmation INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE event_type_members (
				event_type_id TEXT NOT NULL REFERENCES event_types(id) ON DELETE CASCADE,
				host_id TEXT NOT NULL REFERENCES hosts(id),
				position INTEGER NOT NULL,
				PRIMARY KEY (event_type_id, position)
			)`,
			`CREATE TABLE bookings (
				id TEXT PRIMARY KEY,
				event_type_id TEXT NOT NULL REFERENCES event_types(id),
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				footprint_start TEXT NOT NULL,
				footprint_end TEXT NOT NULL,
				status TEXT NOT NULL CHECK (status IN ('pending', 'accepted', 'cancelled', 'rejected', 'rescheduled')),
				series_id TEXT,
				attendee_name TEXT NOT NULL,
				attendee_email TEXT NOT NULL,
				attendee_timezone TEXT NOT NULL,
				cancel_reason TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				CHECK (start_time < end_time)
			)`,
			`CREATE TABLE booking_hosts (
				booking_id TEXT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
				host_id TEXT NOT NULL REFERENCES hosts(id),
				PRIMARY KEY (booking_id, host_id)
			)`,
			`CREATE INDEX idx_bookings_series ON bookings(series_id) WHERE series_id IS NOT NULL`,
			`CREATE INDEX idx_bookings_occupancy ON bookings(status, footprint_start, footprint_end)`,
			`CREATE INDEX idx_booking_hosts_host ON booking_hosts(host_id)`,
		},
	},
}

// Migrate brings the database schema up to the latest version.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, migration := range migrations {
		applied, err := cp.migrationApplied(ctx, migration.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		err = cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, statement := range migration.statements {
				if _, err := tx.Exec(statement); err != nil {
					return fmt.Errorf("migration %d failed: %w", migration.version, err)
				}
			}
			_, err := tx.Exec(
				"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
				migration.version, timeColumn(time.Now()),
			)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (cp *ConnectionPool) migrationApplied(ctx context.Context, version int) (bool, error) {
	var count int
	err := cp.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to inspect schema_migrations: %w", err)
	}
	return count > 0, nil
}
