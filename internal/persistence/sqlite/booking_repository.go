package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/booking-scheduler/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
// CreateBooking runs the overlap guard and the insert inside one
// transaction on the single writer connection, so two racing commits for
// the same host can never both pass the guard.
type BookingRepository struct {
	pool *ConnectionPool
}

// NewBookingRepository creates a SQLite-backed booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// CreateBooking inserts a booking after re-checking that no occupying
// booking's footprint intersects the candidate's on any shared host.
// Returns persistence.ErrConflict when the guard trips.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" || len(booking.HostIDs) == 0 {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		placeholders := make([]string, len(booking.HostIDs))
		args := make([]any, 0, len(booking.HostIDs)+2)
		for i, hostID := range booking.HostIDs {
			placeholders[i] = "?"
			args = append(args, hostID)
		}
		args = append(args, timeColumn(booking.FootprintEnd), timeColumn(booking.FootprintStart))

		var overlapping int
		err := tx.QueryRow(
			`SELECT COUNT(*)
			 FROM bookings b
			 JOIN booking_hosts bh ON bh.booking_id = b.id
			 WHERE bh.host_id IN (`+strings.Join(placeholders, ", ")+`)
			   AND b.status IN ('pending', 'accepted')
			   AND b.footprint_start < ?
			   AND ? < b.footprint_end`,
			args...,
		).Scan(&overlapping)
		if err != nil {
			return mapError(err)
		}
		if overlapping > 0 {
			return persistence.ErrConflict
		}

		var seriesID sql.NullString
		if booking.SeriesID != nil {
			seriesID = sql.NullString{String: *booking.SeriesID, Valid: true}
		}
		var cancelReason sql.NullString
		if booking.CancelReason != nil {
			cancelReason = sql.NullString{String: *booking.CancelReason, Valid: true}
		}

		_, err = tx.Exec(
			`INSERT INTO bookings (
				id, event_type_id, start_time, end_time, footprint_start, footprint_end,
				status, series_id, attendee_name, attendee_email, attendee_timezone,
				cancel_reason, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			booking.ID, booking.EventTypeID,
			timeColumn(booking.Start), timeColumn(booking.End),
			timeColumn(booking.FootprintStart), timeColumn(booking.FootprintEnd),
			booking.Status, seriesID,
			booking.AttendeeName, booking.AttendeeEmail, booking.AttendeeTimezone,
			cancelReason, timeColumn(booking.CreatedAt), timeColumn(booking.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}

		for _, hostID := range booking.HostIDs {
			if _, err := tx.Exec(
				"INSERT INTO booking_hosts (booking_id, host_id) VALUES (?, ?)",
				booking.ID, hostID,
			); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

// GetBooking retrieves a booking with its host assignments.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	var booking persistence.Booking
	err := withReadRetry(ctx, func() error {
		loaded, err := r.scanBooking(ctx, id)
		if err != nil {
			return err
		}
		booking = loaded
		return nil
	})
	if err != nil {
		return persistence.Booking{}, err
	}
	return booking, nil
}

// ListBookings returns bookings matching the filter, ordered by start time.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	query := `SELECT DISTINCT b.id
		 FROM bookings b
		 JOIN booking_hosts bh ON bh.booking_id = b.id
		 WHERE 1 = 1`
	var args []any

	if len(filter.HostIDs) > 0 {
		placeholders := make([]string, len(filter.HostIDs))
		for i, hostID := range filter.HostIDs {
			placeholders[i] = "?"
			args = append(args, hostID)
		}
		query += " AND bh.host_id IN (" + strings.Join(placeholders, ", ") + ")"
	}
	if filter.OccupyingOnly {
		query += " AND b.status IN ('pending', 'accepted')"
	}
	if filter.FootprintEnd != nil {
		query += " AND b.footprint_start < ?"
		args = append(args, timeColumn(*filter.FootprintEnd))
	}
	if filter.FootprintStart != nil {
		query += " AND b.footprint_end > ?"
		args = append(args, timeColumn(*filter.FootprintStart))
	}
	if filter.SeriesID != nil {
		query += " AND b.series_id = ?"
		args = append(args, *filter.SeriesID)
	}
	query += " ORDER BY b.start_time ASC, b.id ASC"

	var ids []string
	err := withReadRetry(ctx, func() error {
		rows, err := r.pool.db.QueryContext(ctx, query, args...)
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

	bookings := make([]persistence.Booking, 0, len(ids))
	for _, id := range ids {
		booking, err := r.scanBooking(ctx, id)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}

// UpdateBookingStatus transitions a booking to the given status.
func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, id, status string, reason *string, updatedAt time.Time) error {
	var cancelReason sql.NullString
	if reason != nil {
		cancelReason = sql.NullString{String: *reason, Valid: true}
	}

	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE bookings SET status = ?, cancel_reason = ?, updated_at = ? WHERE id = ?",
		status, cancelReason, timeColumn(updatedAt), id,
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
	return nil
}

// CancelSeriesFrom cancels every occupying booking of the series whose start
// is at or after from, returning the ids it touched.
func (r *BookingRepository) CancelSeriesFrom(ctx context.Context, seriesID string, from time.Time, reason *string, updatedAt time.Time) ([]string, error) {
	var cancelled []string
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		rows, err := tx.Query(
			`SELECT id FROM bookings
			 WHERE series_id = ?
			   AND status IN ('pending', 'accepted')
			   AND start_time >= ?
			 ORDER BY start_time ASC, id ASC`,
			seriesID, timeColumn(from),
		)
		if err != nil {
			return mapError(err)
		}
		defer rows.Close()

		cancelled = cancelled[:0]
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return mapError(err)
			}
			cancelled = append(cancelled, id)
		}
		if err := rows.Err(); err != nil {
			return mapError(err)
		}

		var cancelReason sql.NullString
		if reason != nil {
			cancelReason = sql.NullString{String: *reason, Valid: true}
		}
		for _, id := range cancelled {
			if _, err := tx.Exec(
				"UPDATE bookings SET status = ?, cancel_reason = ?, updated_at = ? WHERE id = ?",
				persistence.BookingStatusCancelled, cancelReason, timeColumn(updatedAt), id,
			); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (r *BookingRepository) scanBooking(ctx context.Context, id string) (persistence.Booking, error) {
	var booking persistence.Booking
	var startTime, endTime, footprintStart, footprintEnd, createdAt, updatedAt string
	var seriesID, cancelReason sql.NullString

	err := r.pool.db.QueryRowContext(ctx,
		`SELECT id, event_type_id, start_time, end_time, footprint_start, footprint_end,
			status, series_id, attendee_name, attendee_email, attendee_timezone,
			cancel_reason, created_at, updated_at
		 FROM bookings WHERE id = ?`, id,
	).Scan(
		&booking.ID, &booking.EventTypeID, &startTime, &endTime, &footprintStart, &footprintEnd,
		&booking.Status, &seriesID, &booking.AttendeeName, &booking.AttendeeEmail, &booking.AttendeeTimezone,
		&cancelReason, &createdAt, &updatedAt,
	)
	if err != nil {
		return persistence.Booking{}, mapError(err)
	}

	if seriesID.Valid {
		booking.SeriesID = &seriesID.String
	}
	if cancelReason.Valid {
		booking.CancelReason = &cancelReason.String
	}

	columns := []struct {
		target *time.Time
		value  string
		name   string
	}{
		{&booking.Start, startTime, "start_time"},
		{&booking.End, endTime, "end_time"},
		{&booking.FootprintStart, footprintStart, "footprint_start"},
		{&booking.FootprintEnd, footprintEnd, "footprint_end"},
		{&booking.CreatedAt, createdAt, "created_at"},
		{&booking.UpdatedAt, updatedAt, "updated_at"},
	}
	for _, column := range columns {
		parsed, err := parseTimeColumn(column.value, column.name)
		if err != nil {
			return persistence.Booking{}, err
		}
		*column.target = parsed
	}

	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT host_id FROM booking_hosts WHERE booking_id = ? ORDER BY host_id ASC", id)
	if err != nil {
		return persistence.Booking{}, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var hostID string
		if err := rows.Scan(&hostID); err != nil {
			return persistence.Booking{}, mapError(err)
		}
		booking.HostIDs = append(booking.HostIDs, hostID)
	}
	if err := rows.Err(); err != nil {
		return persistence.Booking{}, mapError(err)
	}

	return booking, nil
}
