// README: Driver store backed by PostgreSQL.
package driver

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taxiboard/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const driverColumns = `id, name, available, fcm_token, last_lat, last_lng, last_address, created_at`

func (s *Store) Create(ctx context.Context, d *Driver) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO drivers (id, name, available, fcm_token, last_lat, last_lng, last_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(d.ID), d.Name, d.Available, d.FCMToken,
		d.LastKnownPoint.Lat, d.LastKnownPoint.Lng, d.LastKnownAddress, d.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Driver, error) {
	row := s.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, string(id))
	d, err := scanDriver(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) List(ctx context.Context) ([]Driver, error) {
	rows, err := s.db.Query(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDrivers(rows)
}

// ListAvailable returns the drivers currently free to take a ride.
func (s *Store) ListAvailable(ctx context.Context) ([]Driver, error) {
	rows, err := s.db.Query(ctx, `SELECT `+driverColumns+` FROM drivers WHERE available ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDrivers(rows)
}

func (s *Store) SetAvailability(ctx context.Context, id types.ID, available bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE drivers SET available = $1 WHERE id = $2`, available, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateFCMToken(ctx context.Context, id types.ID, token string) error {
	tag, err := s.db.Exec(ctx, `UPDATE drivers SET fcm_token = $1 WHERE id = $2`, token, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLastKnown records where the driver last dropped a passenger; the
// suggestion engine ranks from this point.
func (s *Store) SetLastKnown(ctx context.Context, id types.ID, p types.Point, address string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE drivers SET last_lat = $1, last_lng = $2, last_address = $3 WHERE id = $4`,
		p.Lat, p.Lng, address, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RidesToday counts the driver's rides whose effective time falls on the
// given day, the workload input of the suggestion score.
func (s *Store) RidesToday(ctx context.Context, id types.ID, day time.Time) (int, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.Add(24 * time.Hour)
	row := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM rides
		WHERE driver_id = $1
		  AND status <> 'cancelled'
		  AND COALESCE(requested_at, created_at) >= $2
		  AND COALESCE(requested_at, created_at) < $3`,
		string(id), from, to,
	)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDriver(row rowScanner) (*Driver, error) {
	var d Driver
	err := row.Scan(
		&d.ID, &d.Name, &d.Available, &d.FCMToken,
		&d.LastKnownPoint.Lat, &d.LastKnownPoint.Lng, &d.LastKnownAddress, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanDrivers(rows pgx.Rows) ([]Driver, error) {
	var out []Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
