package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/booking-scheduler/internal/persistence"
)

// EventTypeRepository implements persistence.EventTypeRepository using
// SQLite. Team membership order is stored in an explicit position column;
// the round-robin cursor lives on the event type row itself so it can be
// updated inside the booking commit transaction.
type EventTypeRepository struct {
	pool *ConnectionPool
}

// NewEventTypeRepository creates a SQLite-backed event type repository.
func NewEventTypeRepository(pool *ConnectionPool) *EventTypeRepository {
	return &EventTypeRepository{pool: pool}
}

// CreateEventType inserts an event type and its member ordering.
func (r *EventTypeRepository) CreateEventType(ctx context.Context, eventType persistence.EventType) error {
	if eventType.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		requiresConfirmation := 0
		if eventType.RequiresConfirmation {
			requiresConfirmation = 1
		}
		var hostID sql.NullString
		if eventType.HostID != "" {
			hostID = sql.NullString{String: eventType.HostID, Valid: true}
		}

		_, err := tx.Exec(
			`INSERT INTO event_types (
				id, title, schedule_id, host_id, scheduling_type, round_robin_cursor,
				duration_minutes, before_buffer_minutes, after_buffer_minutes,
				minimum_notice_minutes, horizon_days, requires_confirmation,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			eventType.ID, eventType.Title, eventType.ScheduleID, hostID,
			eventType.SchedulingType, eventType.RoundRobinCursor,
			eventType.DurationMinutes, eventType.BeforeBufferMinutes, eventType.AfterBufferMinutes,
			eventType.MinimumNoticeMinutes, eventType.HorizonDays, requiresConfirmation,
			timeColumn(eventType.CreatedAt), timeColumn(eventType.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}
		return insertMembers(tx, eventType.ID, eventType.MemberIDs)
	})
}

// UpdateEventType replaces the event type row and rewrites its membership.
func (r *EventTypeRepository) UpdateEventType(ctx context.Context, eventType persistence.EventType) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		requiresConfirmation := 0
		if eventType.RequiresConfirmation {
			requiresConfirmation = 1
		}
		var hostID sql.NullString
		if eventType.HostID != "" {
			hostID = sql.NullString{String: eventType.HostID, Valid: true}
		}

		result, err := tx.Exec(
			`UPDATE event_types SET
				title = ?, schedule_id = ?, host_id = ?, scheduling_type = ?,
				duration_minutes = ?, before_buffer_minutes = ?, after_buffer_minutes = ?,
				minimum_notice_minutes = ?, horizon_days = ?, requires_confirmation = ?,
				updated_at = ?
			 WHERE id = ?`,
			eventType.Title, eventType.ScheduleID, hostID, eventType.SchedulingType,
			eventType.DurationMinutes, eventType.BeforeBufferMinutes, eventType.AfterBufferMinutes,
			eventType.MinimumNoticeMinutes, eventType.HorizonDays, requiresConfirmation,
			timeColumn(eventType.UpdatedAt), eventType.ID,
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

		if _, err := tx.Exec("DELETE FROM event_type_members WHERE event_type_id = ?", eventType.ID); err != nil {
			return mapError(err)
		}
		return insertMembers(tx, eventType.ID, eventType.MemberIDs)
	})
}

// GetEventType retrieves an event type with its ordered membership.
func (r *EventTypeRepository) GetEventType(ctx context.Context, id string) (persistence.EventType, error) {
	var eventType persistence.EventType
	err := withReadRetry(ctx, func() error {
		loaded, err := r.scanEventType(ctx, id)
		if err != nil {
			return err
		}
		eventType = loaded
		return nil
	})
	if err != nil {
		return persistence.EventType{}, err
	}
	return eventType, nil
}

// ListEventTypes returns every event type ordered by creation time.
func (r *EventTypeRepository) ListEventTypes(ctx context.Context) ([]persistence.EventType, error) {
	var ids []string
	err := withReadRetry(ctx, func() error {
		rows, err := r.pool.db.QueryContext(ctx,
			"SELECT id FROM event_types ORDER BY created_at ASC, id ASC")
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

	eventTypes := make([]persistence.EventType, 0, len(ids))
	for _, id := range ids {
		eventType, err := r.scanEventType(ctx, id)
		if err != nil {
			return nil, err
		}
		eventTypes = append(eventTypes, eventType)
	}
	return eventTypes, nil
}

// DeleteEventType removes an event type and its membership.
func (r *EventTypeRepository) DeleteEventType(ctx context.Context, id string) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM event_types WHERE id = ?", id)
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

// SetRoundRobinCursor persists the latest assigned member position.
func (r *EventTypeRepository) SetRoundRobinCursor(ctx context.Context, eventTypeID string, cursor int) error {
	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE event_types SET round_robin_cursor = ? WHERE id = ?", cursor, eventTypeID)
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
}

func (r *EventTypeRepository) scanEventType(ctx context.Context, id string) (persistence.EventType, error) {
	var eventType persistence.EventType
	var hostID sql.NullString
	var requiresConfirmation int
	var createdAt, updatedAt string

	err := r.pool.db.QueryRowContext(ctx,
		`SELECT id, title, schedule_id, host_id, scheduling_type, round_robin_cursor,
			duration_minutes, before_buffer_minutes, after_buffer_minutes,
			minimum_notice_minutes, horizon_days, requires_confirmation,
			created_at, updated_at
		 FROM event_types WHERE id = ?`, id,
	).Scan(
		&eventType.ID, &eventType.Title, &eventType.ScheduleID, &hostID,
		&eventType.SchedulingType, &eventType.RoundRobinCursor,
		&eventType.DurationMinutes, &eventType.BeforeBufferMinutes, &eventType.AfterBufferMinutes,
		&eventType.MinimumNoticeMinutes, &eventType.HorizonDays, &requiresConfirmation,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return persistence.EventType{}, mapError(err)
	}

	if hostID.Valid {
		eventType.HostID = hostID.String
	}
	eventType.RequiresConfirmation = requiresConfirmation != 0
	if eventType.CreatedAt, err = parseTimeColumn(createdAt, "created_at"); err != nil {
		return persistence.EventType{}, err
	}
	if eventType.UpdatedAt, err = parseTimeColumn(updatedAt, "updated_at"); err != nil {
		return persistence.EventType{}, err
	}

	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT host_id FROM event_type_members WHERE event_type_id = ? ORDER BY position ASC", id)
	if err != nil {
		return persistence.EventType{}, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return persistence.EventType{}, mapError(err)
		}
		eventType.MemberIDs = append(eventType.MemberIDs, memberID)
	}
	if err := rows.Err(); err != nil {
		return persistence.EventType{}, mapError(err)
	}

	return eventType, nil
}

func insertMembers(tx *sql.Tx, eventTypeID string, memberIDs []string) error {
	for position, memberID := range memberIDs {
		_, err := tx.Exec(
			"INSERT INTO event_type_members (event_type_id, host_id, position) VALUES (?, ?, ?)",
			eventTypeID, memberID, position,
		)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}
