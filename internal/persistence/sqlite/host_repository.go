package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/booking-scheduler/internal/persistence"
)

// HostRepository implements persistence.HostRepository using SQLite.
type HostRepository struct {
	pool *ConnectionPool
}

// NewHostRepository creates a SQLite-backed host repository.
func NewHostRepository(pool *ConnectionPool) *HostRepository {
	return &HostRepository{pool: pool}
}

// CreateHost inserts a new host record.
func (r *HostRepository) CreateHost(ctx context.Context, host persistence.Host) error {
	if host.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx,
		`INSERT INTO hosts (id, email, display_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		host.ID, host.Email, host.DisplayName,
		timeColumn(host.CreatedAt), timeColumn(host.UpdatedAt),
	)
	return mapError(err)
}

// GetHost retrieves a host by ID.
func (r *HostRepository) GetHost(ctx context.Context, id string) (persistence.Host, error) {
	var host persistence.Host
	err := withReadRetry(ctx, func() error {
		var createdAt, updatedAt string
		err := r.pool.db.QueryRowContext(ctx,
			"SELECT id, email, display_name, created_at, updated_at FROM hosts WHERE id = ?", id,
		).Scan(&host.ID, &host.Email, &host.DisplayName, &createdAt, &updatedAt)
		if err != nil {
			return mapError(err)
		}
		if host.CreatedAt, err = parseTimeColumn(createdAt, "created_at"); err != nil {
			return err
		}
		host.UpdatedAt, err = parseTimeColumn(updatedAt, "updated_at")
		return err
	})
	if err != nil {
		return persistence.Host{}, err
	}
	return host, nil
}

// ListHosts returns every host ordered by creation time.
func (r *HostRepository) ListHosts(ctx context.Context) ([]persistence.Host, error) {
	var hosts []persistence.Host
	err := withReadRetry(ctx, func() error {
		rows, err := r.pool.db.QueryContext(ctx,
			"SELECT id, email, display_name, created_at, updated_at FROM hosts ORDER BY created_at ASC, id ASC")
		if err != nil {
			return mapError(err)
		}
		defer rows.Close()

		hosts = hosts[:0]
		for rows.Next() {
			var host persistence.Host
			var createdAt, updatedAt string
			if err := rows.Scan(&host.ID, &host.Email, &host.DisplayName, &createdAt, &updatedAt); err != nil {
				return mapError(err)
			}
			if host.CreatedAt, err = parseTimeColumn(createdAt, "created_at"); err != nil {
				return err
			}
			if host.UpdatedAt, err = parseTimeColumn(updatedAt, "updated_at"); err != nil {
				return err
			}
			hosts = append(hosts, host)
		}
		return mapError(rows.Err())
	})
	if err != nil {
		return nil, err
	}
	return hosts, nil
}

// DeleteHost removes a host; owned schedules cascade with it.
func (r *HostRepository) DeleteHost(ctx context.Context, id string) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM hosts WHERE id = ?", id)
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
