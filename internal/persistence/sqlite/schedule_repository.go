package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/booking-scheduler/internal/persistence"
)

// ScheduleRepository implements persistence.ScheduleRepository using SQLite.
// Windows and overrides are stored in child tables and rewritten wholesale
// on update, mirroring how the schedule is edited as a unit.
type ScheduleRepository struct {
	pool *ConnectionPool
}

// NewScheduleRepository creates a SQLite-backed schedule repository.
func NewScheduleRepository(pool *ConnectionPool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// CreateSchedule inserts a schedule with its windows and overrides.
func (r *ScheduleRepository) CreateSchedule(ctx context.Context, schedule persistence.Schedule) error {
	if schedule.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO schedules (id, host_id, name, timezone, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			schedule.ID, schedule.HostID, schedule.Name, schedule.Timezone,
			timeColumn(schedule.CreatedAt), timeColumn(schedule.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}
		return r.insertChildren(tx, schedule)
	})
}

// UpdateSchedule replaces the schedule row and rewrites its child tables.
func (r *ScheduleRepository) UpdateSchedule(ctx context.Context, schedule persistence.Schedule) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(
			"UPDATE schedules SET name = ?, timezone = ?, updated_at = ? WHERE id = ?",
			schedule.Name, schedule.Timezone, timeColumn(schedule.UpdatedAt), schedule.ID,
		)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		if _, err := tx.Exec("DELETE FROM availability_windows WHERE schedule_id = ?", schedule.ID); err != nil {
			return mapError(err)
		}
		if _, err := tx.Exec("DELETE FROM date_overrides WHERE schedule_id = ?", schedule.ID); err != nil {
			return mapError(err)
		}
		return r.insertChildren(tx, schedule)
	})
}

// GetSchedule retrieves a schedule with its windows and overrides.
func (r *ScheduleRepository) GetSchedule(ctx context.Context, id string) (persistence.Schedule, error) {
	var schedule persistence.Schedule
	err := withReadRetry(ctx, func() error {
		var createdAt, updatedAt string
		err := r.pool.db.QueryRowContext(ctx,
			"SELECT id, host_id, name, timezone, created_at, updated_at FROM schedules WHERE id = ?", id,
		).Scan(&schedule.ID, &schedule.HostID, &schedule.Name, &schedule.Timezone, &createdAt, &updatedAt)
		if err != nil {
			return mapError(err)
		}
		if schedule.CreatedAt, err = parseTimeColumn(createdAt, "created_at"); err != nil {
			return err
		}
		if schedule.UpdatedAt, err = parseTimeColumn(updatedAt, "updated_at"); err != nil {
			return err
		}
		if schedule.Windows, err = r.loadWindows(ctx, id); err != nil {
			return err
		}
		schedule.Overrides, err = r.loadOverrides(ctx, id)
		return err
	})
	if err != nil {
		return persistence.Schedule{}, err
	}
	return schedule, nil
}

// ListSchedulesForHost returns a host's schedules ordered by creation time.
func (r *ScheduleRepository) ListSchedulesForHost(ctx context.Context, hostID string) ([]persistence.Schedule, error) {
	var ids []string
	err := withReadRetry(ctx, func() error {
		rows, err := r.pool.db.QueryContext(ctx,
			"SELECT id FROM schedules WHERE host_id = ? ORDER BY created_at ASC, id ASC", hostID)
		if err != nil {
			return mapError(err)
		}
		defer rows.Close()

		ids = ids[:0]
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return mapError(err)
			}
			ids = append(ids, id)
		}
		return mapError(rows.Err())
	})
	if err != nil {
		return nil, err
	}

	schedules := make([]persistence.Schedule, 0, len(ids))
	for _, id := range ids {
		schedule, err := r.GetSchedule(ctx, id)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, nil
}

// DeleteSchedule removes a schedule. The delete fails with
// ErrForeignKeyViolation while any event type still references it.
func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM schedules WHERE id = ?", id)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

func (r *ScheduleRepository) insertChildren(tx *sql.Tx, schedule persistence.Schedule) error {
	for _, window := range schedule.Windows {
		_, err := tx.Exec(
			`INSERT INTO availability_windows (schedule_id, weekday, start_minute, end_minute)
			 VALUES (?, ?, ?, ?)`,
			schedule.ID, int(window.Weekday), window.StartMinute, window.EndMinute,
		)
		if err != nil {
			return mapError(err)
		}
	}

	for _, override := range schedule.Overrides {
		unavailable := 0
		if override.Unavailable {
			unavailable = 1
		}
		_, err := tx.Exec(
			`INSERT INTO date_overrides (schedule_id, date, unavailable, start_minute, end_minute)
			 VALUES (?, ?, ?, ?, ?)`,
			schedule.ID, override.Date, unavailable, override.StartMinute, override.EndMinute,
		)
		if err != nil {
			return mapError(err)
		}
	}

	return nil
}

func (r *ScheduleRepository) loadWindows(ctx context.Context, scheduleID string) ([]persistence.AvailabilityWindow, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		`SELECT weekday, start_minute, end_minute FROM availability_windows
		 WHERE schedule_id = ? ORDER BY weekday ASC, start_minute ASC`, scheduleID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var windows []persistence.AvailabilityWindow
	for rows.Next() {
		var weekday int
		var window persistence.AvailabilityWindow
		if err := rows.Scan(&weekday, &window.StartMinute, &window.EndMinute); err != nil {
			return nil, mapError(err)
		}
		window.Weekday = time.Weekday(weekday)
		windows = append(windows, window)
	}
	return windows, mapError(rows.Err())
}

func (r *ScheduleRepository) loadOverrides(ctx context.Context, scheduleID string) ([]persistence.DateOverride, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		`SELECT date, unavailable, start_minute, end_minute FROM date_overrides
		 WHERE schedule_id = ? ORDER BY date ASC`, scheduleID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var overrides []persistence.DateOverride
	for rows.Next() {
		var unavailable int
		var override persistence.DateOverride
		if err := rows.Scan(&override.Date, &unavailable, &override.StartMinute, &override.EndMinute); err != nil {
			return nil, mapError(err)
		}
		override.Unavailable = unavailable != 0
		overrides = append(overrides, override)
	}
	return overrides, mapError(rows.Err())
}
