// README: Ride store backed by PostgreSQL; optimistic status_version locking.
package ride

import (
	"context"
	"database/sql"
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

const rideColumns = `
	id, client_name, pickup_address, pickup_lat, pickup_lng,
	dropoff_address, dropoff_lat, dropoff_lng,
	requested_at, driver_id, status, status_version,
	fare_cents, fare_currency, distance_km,
	created_at, confirmed_at, picked_up_at, dropped_at, cancelled_at`

func (s *Store) Create(ctx context.Context, r *Ride) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO rides (
			id, client_name, pickup_address, pickup_lat, pickup_lng,
			dropoff_address, dropoff_lat, dropoff_lng,
			requested_at, driver_id, status, status_version,
			fare_cents, fare_currency, distance_km, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11, $12,
			$13, $14, $15, $16
		)`,
		string(r.ID), r.ClientName, r.PickupAddress, r.PickupPoint.Lat, r.PickupPoint.Lng,
		r.DropoffAddress, r.DropoffPoint.Lat, r.DropoffPoint.Lng,
		r.RequestedAt, toStringPtr(r.DriverID), string(r.Status), r.StatusVersion,
		r.Fare.Amount, r.Fare.Currency, r.DistanceKm, r.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, string(id))
	r, err := scanRide(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateStatus performs the compare-and-swap transition write. It reports
// whether the row was updated; a false return means another actor won the
// race and the caller must surface ErrConflict.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET status = $1,
		    status_version = status_version + 1,
		    confirmed_at = CASE WHEN $1 = 'confirmed' THEN NOW() ELSE confirmed_at END,
		    picked_up_at = CASE WHEN $1 = 'picked_up' THEN NOW() ELSE picked_up_at END,
		    dropped_at   = CASE WHEN $1 = 'dropped'   THEN NOW() ELSE dropped_at END,
		    cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END
		WHERE id = $2 AND status = $3 AND status_version = $4`,
		string(to), string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Assign sets (or replaces) the driver while the ride has not been picked
// up. Reassignment resets the status to new so the new driver confirms
// afresh.
func (s *Store) Assign(ctx context.Context, id types.ID, driverID types.ID, version int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET driver_id = $1,
		    status = 'new',
		    status_version = status_version + 1,
		    confirmed_at = NULL
		WHERE id = $2 AND status IN ('new', 'confirmed') AND status_version = $3`,
		string(driverID), string(id), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateDetails writes the secretary-editable fields under the same
// optimistic check so a racing status change is never silently merged.
func (s *Store) UpdateDetails(ctx context.Context, r *Ride, version int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET client_name = $1,
		    pickup_address = $2, pickup_lat = $3, pickup_lng = $4,
		    dropoff_address = $5, dropoff_lat = $6, dropoff_lng = $7,
		    requested_at = $8,
		    fare_cents = $9, fare_currency = $10, distance_km = $11,
		    status_version = status_version + 1
		WHERE id = $12 AND status_version = $13`,
		r.ClientName,
		r.PickupAddress, r.PickupPoint.Lat, r.PickupPoint.Lng,
		r.DropoffAddress, r.DropoffPoint.Lat, r.DropoffPoint.Lng,
		r.RequestedAt,
		r.Fare.Amount, r.Fare.Currency, r.DistanceKm,
		string(r.ID), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Delete(ctx context.Context, id types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM rides WHERE id = $1`, string(id))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListByDay returns the rides whose effective time (requested pickup time,
// falling back to creation time) falls on the given day, in board order.
// An empty status filters nothing.
func (s *Store) ListByDay(ctx context.Context, day time.Time, status Status) ([]Ride, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.Add(24 * time.Hour)
	rows, err := s.db.Query(ctx, `
		SELECT `+rideColumns+`
		FROM rides
		WHERE COALESCE(requested_at, created_at) >= $1
		  AND COALESCE(requested_at, created_at) < $2
		  AND ($3 = '' OR status = $3)
		ORDER BY COALESCE(requested_at, created_at), created_at`,
		from, to, string(status),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRides(rows)
}

// ListRange returns rides over [from, to) in board order, for the export.
func (s *Store) ListRange(ctx context.Context, from, to time.Time) ([]Ride, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+rideColumns+`
		FROM rides
		WHERE COALESCE(requested_at, created_at) >= $1
		  AND COALESCE(requested_at, created_at) < $2
		ORDER BY COALESCE(requested_at, created_at), created_at`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRides(rows)
}

// ListByDriver returns a driver's rides for the day, in board order.
func (s *Store) ListByDriver(ctx context.Context, driverID types.ID, day time.Time) ([]Ride, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.Add(24 * time.Hour)
	rows, err := s.db.Query(ctx, `
		SELECT `+rideColumns+`
		FROM rides
		WHERE driver_id = $1
		  AND COALESCE(requested_at, created_at) >= $2
		  AND COALESCE(requested_at, created_at) < $3
		ORDER BY COALESCE(requested_at, created_at), created_at`,
		string(driverID), from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRides(rows)
}

// HasInProgressByDriver reports whether the driver currently owns a ride in
// an in-progress status (confirmed or picked up).
func (s *Store) HasInProgressByDriver(ctx context.Context, driverID types.ID) (bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM rides
			WHERE driver_id = $1
			  AND status IN ('confirmed', 'picked_up')
		)`, string(driverID),
	)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) AppendComment(ctx context.Context, c *Comment) error {
	return s.db.QueryRow(ctx, `
		INSERT INTO ride_comments (ride_id, author_role, author_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		string(c.RideID), string(c.AuthorRole), string(c.AuthorID), c.Text, c.CreatedAt,
	).Scan(&c.ID)
}

func (s *Store) ListComments(ctx context.Context, rideID types.ID) ([]Comment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, ride_id, author_role, author_id, text, created_at
		FROM ride_comments
		WHERE ride_id = $1
		ORDER BY created_at, id`, string(rideID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.RideID, &c.AuthorRole, &c.AuthorID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) AppendEvent(ctx context.Context, e *StatusEvent) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ride_status_events (ride_id, from_status, to_status, actor_role, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.RideID), string(e.FromStatus), string(e.ToStatus),
		string(e.ActorRole), toStringPtr(e.ActorID), e.CreatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*Ride, error) {
	var r Ride
	var driverID sql.NullString
	var requestedAt, confirmedAt, pickedUpAt, droppedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&r.ID, &r.ClientName, &r.PickupAddress, &r.PickupPoint.Lat, &r.PickupPoint.Lng,
		&r.DropoffAddress, &r.DropoffPoint.Lat, &r.DropoffPoint.Lng,
		&requestedAt, &driverID, &r.Status, &r.StatusVersion,
		&r.Fare.Amount, &r.Fare.Currency, &r.DistanceKm,
		&r.CreatedAt, &confirmedAt, &pickedUpAt, &droppedAt, &cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		d := types.ID(driverID.String)
		r.DriverID = &d
	}
	r.RequestedAt = toTimePtr(requestedAt)
	r.ConfirmedAt = toTimePtr(confirmedAt)
	r.PickedUpAt = toTimePtr(pickedUpAt)
	r.DroppedAt = toTimePtr(droppedAt)
	r.CancelledAt = toTimePtr(cancelledAt)
	return &r, nil
}

func scanRides(rows pgx.Rows) ([]Ride, error) {
	var out []Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func toTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
