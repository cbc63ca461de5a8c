// README: Ride service implements the dispatch-board commands and state transitions.
package ride

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"taxiboard/internal/types"
)

var (
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrNotFound          = errors.New("ride not found")
	ErrConflict          = errors.New("ride modified concurrently")
	ErrBadRequest        = errors.New("bad request")
)

// pushTimeout bounds the fire-and-forget notification call; it runs off the
// request goroutine and must never block a transition response.
const pushTimeout = 5 * time.Second

// Drivers is the slice of the driver module the ride service needs.
type Drivers interface {
	FCMToken(ctx context.Context, id types.ID) (string, error)
	SetLastKnown(ctx context.Context, id types.ID, p types.Point, address string) error
	SetAvailability(ctx context.Context, id types.ID, available bool) error
}

// Notifier pushes ride events to a driver's registered device. Delivery is
// best-effort; errors are logged by the caller and never retried.
type Notifier interface {
	NewRide(ctx context.Context, token string, r *Ride) error
	RideModified(ctx context.Context, token string, r *Ride) error
	RideCancelled(ctx context.Context, token string, r *Ride) error
}

type Service struct {
	store    *Store
	cache    *BoardCache
	drivers  Drivers
	notifier Notifier
}

// NewService wires the ride service. cache, drivers and notifier may be nil
// (tests, degraded deployments); every use is guarded.
func NewService(store *Store, cache *BoardCache, drivers Drivers, notifier Notifier) *Service {
	return &Service{store: store, cache: cache, drivers: drivers, notifier: notifier}
}

type CreateCommand struct {
	ClientName     string
	PickupAddress  string
	PickupPoint    types.Point
	DropoffAddress string
	DropoffPoint   types.Point
	RequestedAt    *time.Time
	Fare           types.Money
	DistanceKm     float64
	DriverID       *types.ID
	Actor          types.Actor
}

type AssignCommand struct {
	RideID   types.ID
	DriverID types.ID
	Actor    types.Actor
}

type AdvanceCommand struct {
	RideID types.ID
	Target Status
	Actor  types.Actor
}

type UpdateDetailsCommand struct {
	RideID         types.ID
	ClientName     *string
	PickupAddress  *string
	PickupPoint    *types.Point
	DropoffAddress *string
	DropoffPoint   *types.Point
	RequestedAt    *time.Time
	ClearRequested bool
	Fare           *types.Money
	DistanceKm     *float64
	Actor          types.Actor
}

type CommentCommand struct {
	RideID types.ID
	Text   string
	Actor  types.Actor
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (types.ID, error) {
	if cmd.ClientName == "" || cmd.PickupAddress == "" {
		return "", ErrBadRequest
	}
	if cmd.Fare.Currency == "" {
		cmd.Fare.Currency = "EUR"
	}

	id := types.ID(uuid.NewString())
	now := time.Now()
	r := &Ride{
		ID:             id,
		ClientName:     cmd.ClientName,
		PickupAddress:  cmd.PickupAddress,
		PickupPoint:    cmd.PickupPoint,
		DropoffAddress: cmd.DropoffAddress,
		DropoffPoint:   cmd.DropoffPoint,
		RequestedAt:    cmd.RequestedAt,
		DriverID:       cmd.DriverID,
		Status:         StatusNew,
		StatusVersion:  0,
		Fare:           cmd.Fare,
		DistanceKm:     cmd.DistanceKm,
		CreatedAt:      now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return "", err
	}
	_ = s.store.AppendEvent(ctx, &StatusEvent{
		RideID:     id,
		FromStatus: StatusNone,
		ToStatus:   StatusNew,
		ActorRole:  cmd.Actor.Role,
		ActorID:    &cmd.Actor.ID,
		CreatedAt:  now,
	})
	s.bumpBoard(ctx)
	if cmd.DriverID != nil {
		s.push(*cmd.DriverID, r, pushNew)
	}
	return id, nil
}

// Assign gives the ride to a driver (or moves it to another one). Only
// rides that have not been picked up can change hands; reassignment resets
// the status to new. The previous driver, if any, gets a cancellation push.
func (s *Service) Assign(ctx context.Context, cmd AssignCommand) error {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	if r.Status != StatusNew && r.Status != StatusConfirmed {
		return ErrIllegalTransition
	}
	previous := r.DriverID
	ok, err := s.store.Assign(ctx, r.ID, cmd.DriverID, r.StatusVersion)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &StatusEvent{
		RideID:     r.ID,
		FromStatus: r.Status,
		ToStatus:   StatusNew,
		ActorRole:  cmd.Actor.Role,
		ActorID:    &cmd.Actor.ID,
		CreatedAt:  time.Now(),
	})
	s.bumpBoard(ctx)

	// the reassigned ride is back at new, so a driver who had confirmed it
	// no longer holds in-progress work
	if previous != nil && r.Status == StatusConfirmed {
		s.freeDriver(ctx, *previous)
	}

	assigned := *r
	assigned.DriverID = &cmd.DriverID
	assigned.Status = StatusNew
	s.push(cmd.DriverID, &assigned, pushNew)
	if previous != nil && *previous != cmd.DriverID {
		s.push(*previous, r, pushCancelled)
	}
	return nil
}

// Advance moves the ride one step forward through the fixed sequence, or
// into cancelled from new/confirmed. It fails with ErrIllegalTransition
// when the target is not the immediate successor or the actor's role may
// not request it, and with ErrConflict when another actor won the write.
// Exactly one successful call is needed per step; repeating the same target
// after success fails because the ride already moved on.
func (s *Service) Advance(ctx context.Context, cmd AdvanceCommand) error {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	if !CanTransition(r.Status, cmd.Target) {
		return ErrIllegalTransition
	}
	if !RoleMayRequest(cmd.Actor.Role, cmd.Target) {
		return ErrIllegalTransition
	}
	// only the assigned driver may move the ride forward
	if cmd.Actor.Role == types.RoleDriver && (r.DriverID == nil || *r.DriverID != cmd.Actor.ID) {
		return ErrIllegalTransition
	}
	if cmd.Target == StatusConfirmed && r.DriverID != nil {
		// one in-progress ride per driver
		busy, err := s.store.HasInProgressByDriver(ctx, *r.DriverID)
		if err != nil {
			return err
		}
		if busy {
			return ErrIllegalTransition
		}
	}

	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, cmd.Target, r.StatusVersion)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &StatusEvent{
		RideID:     r.ID,
		FromStatus: r.Status,
		ToStatus:   cmd.Target,
		ActorRole:  cmd.Actor.Role,
		ActorID:    &cmd.Actor.ID,
		CreatedAt:  time.Now(),
	})
	s.bumpBoard(ctx)
	s.afterTransition(ctx, r, cmd.Target)
	return nil
}

// Cancel is the office-side terminal action on a ride that has not been
// picked up. The assigned driver is told the ride is gone (afterTransition
// sends the push, so cancelling through Advance notifies the same way).
func (s *Service) Cancel(ctx context.Context, rideID types.ID, actor types.Actor) error {
	return s.Advance(ctx, AdvanceCommand{RideID: rideID, Target: StatusCancelled, Actor: actor})
}

// Remove hard-deletes the ride in a single confirmed call, from any status.
func (s *Service) Remove(ctx context.Context, rideID types.ID, actor types.Actor) error {
	r, err := s.store.Get(ctx, rideID)
	if err != nil {
		return err
	}
	ok, err := s.store.Delete(ctx, rideID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.bumpBoard(ctx)
	if r.DriverID != nil && r.Status != StatusDropped && r.Status != StatusCancelled {
		if r.Status == StatusConfirmed || r.Status == StatusPickedUp {
			s.freeDriver(ctx, *r.DriverID)
		}
		s.push(*r.DriverID, r, pushCancelled)
	}
	return nil
}

func (s *Service) UpdateDetails(ctx context.Context, cmd UpdateDetailsCommand) error {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	version := r.StatusVersion
	if cmd.ClientName != nil {
		r.ClientName = *cmd.ClientName
	}
	if cmd.PickupAddress != nil {
		r.PickupAddress = *cmd.PickupAddress
	}
	if cmd.PickupPoint != nil {
		r.PickupPoint = *cmd.PickupPoint
	}
	if cmd.DropoffAddress != nil {
		r.DropoffAddress = *cmd.DropoffAddress
	}
	if cmd.DropoffPoint != nil {
		r.DropoffPoint = *cmd.DropoffPoint
	}
	if cmd.ClearRequested {
		r.RequestedAt = nil
	} else if cmd.RequestedAt != nil {
		r.RequestedAt = cmd.RequestedAt
	}
	if cmd.Fare != nil {
		r.Fare = *cmd.Fare
	}
	if cmd.DistanceKm != nil {
		r.DistanceKm = *cmd.DistanceKm
	}
	if r.ClientName == "" || r.PickupAddress == "" {
		return ErrBadRequest
	}

	ok, err := s.store.UpdateDetails(ctx, r, version)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	s.bumpBoard(ctx)
	if r.DriverID != nil {
		s.push(*r.DriverID, r, pushModified)
	}
	return nil
}

func (s *Service) AddComment(ctx context.Context, cmd CommentCommand) (*Comment, error) {
	if cmd.Text == "" {
		return nil, ErrBadRequest
	}
	if _, err := s.store.Get(ctx, cmd.RideID); err != nil {
		return nil, err
	}
	c := &Comment{
		RideID:     cmd.RideID,
		AuthorRole: cmd.Actor.Role,
		AuthorID:   cmd.Actor.ID,
		Text:       cmd.Text,
		CreatedAt:  time.Now(),
	}
	if err := s.store.AppendComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Ride, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Comments(ctx context.Context, rideID types.ID) ([]Comment, error) {
	if _, err := s.store.Get(ctx, rideID); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, rideID)
}

// ListByDay returns the day's board. The unfiltered board goes through the
// version-token cache; cached entries are display snapshots (the status
// version is intentionally not round-tripped, mutations always re-read).
func (s *Service) ListByDay(ctx context.Context, day time.Time, status Status) ([]Ride, error) {
	if s.cache == nil || status != "" {
		return s.store.ListByDay(ctx, day, status)
	}
	key := day.Format("2006-01-02")
	version, err := s.cache.Version(ctx)
	if err != nil {
		slog.Warn("board cache version read failed", "err", err)
		return s.store.ListByDay(ctx, day, status)
	}
	if payload, ok, err := s.cache.Get(ctx, key, version); err == nil && ok {
		var rides []Ride
		if json.Unmarshal(payload, &rides) == nil {
			return rides, nil
		}
	}
	rides, err := s.store.ListByDay(ctx, day, status)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(rides); err == nil {
		if err := s.cache.Put(ctx, key, version, payload); err != nil {
			slog.Warn("board cache write failed", "err", err)
		}
	}
	return rides, nil
}

func (s *Service) ListByDriver(ctx context.Context, driverID types.ID, day time.Time) ([]Ride, error) {
	return s.store.ListByDriver(ctx, driverID, day)
}

// afterTransition applies the driver-side bookkeeping that hangs off a
// committed transition: availability flips, the last-known location
// snapshot used by the suggestion engine, and the cancellation push.
func (s *Service) afterTransition(ctx context.Context, r *Ride, target Status) {
	if r.DriverID == nil {
		return
	}
	d := *r.DriverID
	switch target {
	case StatusConfirmed:
		s.setAvailability(ctx, d, false)
	case StatusDropped:
		if s.drivers != nil {
			if err := s.drivers.SetLastKnown(ctx, d, r.DropoffPoint, r.DropoffAddress); err != nil {
				slog.Warn("driver last-known update failed", "driver_id", d, "err", err)
			}
		}
		s.setAvailability(ctx, d, true)
	case StatusCancelled:
		s.setAvailability(ctx, d, true)
		s.push(d, r, pushCancelled)
	}
}

// freeDriver marks the driver available again after their in-progress ride
// was taken away (reassignment, removal).
func (s *Service) freeDriver(ctx context.Context, d types.ID) {
	s.setAvailability(ctx, d, true)
}

func (s *Service) setAvailability(ctx context.Context, d types.ID, available bool) {
	if s.drivers == nil {
		return
	}
	if err := s.drivers.SetAvailability(ctx, d, available); err != nil {
		slog.Warn("driver availability update failed", "driver_id", d, "err", err)
	}
}

type pushKind int

const (
	pushNew pushKind = iota
	pushModified
	pushCancelled
)

// push sends one best-effort notification off the request goroutine. The
// transition response never waits on FCM; failures are logged, not retried.
func (s *Service) push(driverID types.ID, r *Ride, kind pushKind) {
	if s.notifier == nil || s.drivers == nil {
		return
	}
	var send func(context.Context, string, *Ride) error
	switch kind {
	case pushNew:
		send = s.notifier.NewRide
	case pushModified:
		send = s.notifier.RideModified
	case pushCancelled:
		send = s.notifier.RideCancelled
	}
	snapshot := *r
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		token, err := s.drivers.FCMToken(ctx, driverID)
		if err != nil || token == "" {
			slog.Warn("no FCM token for driver", "driver_id", driverID, "err", err)
			return
		}
		if err := send(ctx, token, &snapshot); err != nil {
			slog.Warn("push notification failed", "ride_id", snapshot.ID, "driver_id", driverID, "err", err)
		}
	}()
}

func (s *Service) bumpBoard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		slog.Warn("board version bump failed", "err", err)
	}
}
