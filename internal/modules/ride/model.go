// README: Ride aggregate, status machine and chronological board ordering.
package ride

import (
	"sort"
	"time"

	"taxiboard/internal/types"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusNew       Status = "new"
	StatusConfirmed Status = "confirmed"
	StatusPickedUp  Status = "picked_up"
	StatusDropped   Status = "dropped"
	StatusCancelled Status = "cancelled"
)

type Ride struct {
	ID             types.ID     `json:"id"`
	ClientName     string       `json:"client_name"`
	PickupAddress  string       `json:"pickup_address"`
	PickupPoint    types.Point  `json:"pickup_point"`
	DropoffAddress string       `json:"dropoff_address"`
	DropoffPoint   types.Point  `json:"dropoff_point"`
	RequestedAt    *time.Time   `json:"requested_at,omitempty"`
	DriverID       *types.ID    `json:"driver_id,omitempty"`
	Status         Status       `json:"status"`
	StatusVersion  int          `json:"-"`
	Fare           types.Money  `json:"fare"`
	DistanceKm     float64      `json:"distance_km"`
	CreatedAt      time.Time    `json:"created_at"`
	ConfirmedAt    *time.Time   `json:"confirmed_at,omitempty"`
	PickedUpAt     *time.Time   `json:"picked_up_at,omitempty"`
	DroppedAt      *time.Time   `json:"dropped_at,omitempty"`
	CancelledAt    *time.Time   `json:"cancelled_at,omitempty"`
}

// Comment is one entry of the append-only per-ride conversation between
// the office and the driver.
type Comment struct {
	ID         int64      `json:"id"`
	RideID     types.ID   `json:"ride_id"`
	AuthorRole types.Role `json:"author_role"`
	AuthorID   types.ID   `json:"author_id"`
	Text       string     `json:"text"`
	CreatedAt  time.Time  `json:"created_at"`
}

// StatusEvent is the audit row appended on every successful transition.
type StatusEvent struct {
	ID         int64
	RideID     types.ID
	FromStatus Status
	ToStatus   Status
	ActorRole  types.Role
	ActorID    *types.ID
	CreatedAt  time.Time
}

// AllowedTransitions represents the ride status flow as code. The forward
// sequence is strict (no skipping); cancelled is reachable from new and
// confirmed only; dropped and cancelled are terminal.
var AllowedTransitions = map[Status][]Status{
	StatusNew:       {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPickedUp, StatusCancelled},
	StatusPickedUp:  {StatusDropped},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// transitionRoles maps each target status to the roles allowed to request it:
// drivers advance the ride, the office cancels it.
var transitionRoles = map[Status][]types.Role{
	StatusConfirmed: {types.RoleDriver},
	StatusPickedUp:  {types.RoleDriver},
	StatusDropped:   {types.RoleDriver},
	StatusCancelled: {types.RoleSecretary, types.RoleAdmin},
}

func RoleMayRequest(role types.Role, to Status) bool {
	for _, r := range transitionRoles[to] {
		if r == role {
			return true
		}
	}
	return false
}

// EffectiveTime is the board-ordering key: the requested pickup time when
// set, the creation time otherwise.
func EffectiveTime(r *Ride) time.Time {
	if r.RequestedAt != nil {
		return *r.RequestedAt
	}
	return r.CreatedAt
}

// SortRides orders rides ascending by (EffectiveTime, CreatedAt). Every
// role-specific view must apply exactly this ordering; the store's list
// queries produce it as well.
func SortRides(rides []Ride) {
	sort.SliceStable(rides, func(i, j int) bool {
		ti, tj := EffectiveTime(&rides[i]), EffectiveTime(&rides[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return rides[i].CreatedAt.Before(rides[j].CreatedAt)
	})
}
