// README: State machine and board ordering tests (no database).
package ride

import (
	"testing"
	"time"

	"taxiboard/internal/types"
)

// TestCanTransition verifies the transition table: strict forward sequence,
// cancel only from new/confirmed, terminal states stay terminal.
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// happy-path forward transitions
		{StatusNew, StatusConfirmed, true},
		{StatusConfirmed, StatusPickedUp, true},
		{StatusPickedUp, StatusDropped, true},
		// cancel from the pre-pickup states only
		{StatusNew, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusPickedUp, StatusCancelled, false},
		{StatusDropped, StatusCancelled, false},
		// invalid: skipping states
		{StatusNew, StatusPickedUp, false},
		{StatusNew, StatusDropped, false},
		{StatusConfirmed, StatusDropped, false},
		// invalid: backwards
		{StatusConfirmed, StatusNew, false},
		{StatusPickedUp, StatusConfirmed, false},
		// invalid: terminal states have no outgoing transitions
		{StatusDropped, StatusNew, false},
		{StatusDropped, StatusConfirmed, false},
		{StatusCancelled, StatusNew, false},
		{StatusCancelled, StatusConfirmed, false},
		// invalid: self loops (re-issuing a completed transition must fail)
		{StatusConfirmed, StatusConfirmed, false},
		{StatusPickedUp, StatusPickedUp, false},
	}
	for _, tc := range cases {
		got := CanTransition(tc.from, tc.to)
		if got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestRoleMayRequest(t *testing.T) {
	cases := []struct {
		role types.Role
		to   Status
		want bool
	}{
		{types.RoleDriver, StatusConfirmed, true},
		{types.RoleDriver, StatusPickedUp, true},
		{types.RoleDriver, StatusDropped, true},
		{types.RoleDriver, StatusCancelled, false},
		{types.RoleSecretary, StatusCancelled, true},
		{types.RoleAdmin, StatusCancelled, true},
		{types.RoleSecretary, StatusConfirmed, false},
		{types.RoleAdmin, StatusPickedUp, false},
	}
	for _, tc := range cases {
		got := RoleMayRequest(tc.role, tc.to)
		if got != tc.want {
			t.Errorf("RoleMayRequest(%s, %s) = %v, want %v", tc.role, tc.to, got, tc.want)
		}
	}
}

func ts(hour, min int) time.Time {
	return time.Date(2026, 8, 26, hour, min, 0, 0, time.UTC)
}

func TestEffectiveTime(t *testing.T) {
	requested := ts(9, 30)
	withRequest := Ride{CreatedAt: ts(8, 0), RequestedAt: &requested}
	if got := EffectiveTime(&withRequest); !got.Equal(requested) {
		t.Errorf("EffectiveTime = %v, want requested time %v", got, requested)
	}
	withoutRequest := Ride{CreatedAt: ts(8, 5)}
	if got := EffectiveTime(&withoutRequest); !got.Equal(ts(8, 5)) {
		t.Errorf("EffectiveTime = %v, want created time %v", got, ts(8, 5))
	}
}

// TestSortRidesRequestedBeforeFallback: ride 1 created 08:00 with requested
// pickup 09:30, ride 2 created 08:05 with no requested pickup. Ride 2's
// fallback time (08:05) precedes 09:30, so the board shows [ride2, ride1]
// regardless of creation order.
func TestSortRidesRequestedBeforeFallback(t *testing.T) {
	requested := ts(9, 30)
	rides := []Ride{
		{ID: "ride1", CreatedAt: ts(8, 0), RequestedAt: &requested},
		{ID: "ride2", CreatedAt: ts(8, 5)},
	}
	SortRides(rides)
	if rides[0].ID != "ride2" || rides[1].ID != "ride1" {
		t.Fatalf("expected [ride2 ride1], got [%s %s]", rides[0].ID, rides[1].ID)
	}
}

func TestSortRidesByRequestedTime(t *testing.T) {
	early, late := ts(9, 0), ts(14, 0)
	rides := []Ride{
		// created first but requested later
		{ID: "afternoon", CreatedAt: ts(7, 0), RequestedAt: &late},
		{ID: "morning", CreatedAt: ts(7, 30), RequestedAt: &early},
	}
	SortRides(rides)
	if rides[0].ID != "morning" {
		t.Fatalf("expected requested-time ordering, got %s first", rides[0].ID)
	}
}

func TestSortRidesTieBrokenByCreation(t *testing.T) {
	requested := ts(10, 0)
	rides := []Ride{
		{ID: "second", CreatedAt: ts(8, 1), RequestedAt: &requested},
		{ID: "first", CreatedAt: ts(8, 0), RequestedAt: &requested},
	}
	SortRides(rides)
	if rides[0].ID != "first" || rides[1].ID != "second" {
		t.Fatalf("expected creation-time tiebreak, got [%s %s]", rides[0].ID, rides[1].ID)
	}
}

func TestSortRidesFallbackOnly(t *testing.T) {
	rides := []Ride{
		{ID: "later", CreatedAt: ts(11, 0)},
		{ID: "earlier", CreatedAt: ts(9, 0)},
	}
	SortRides(rides)
	if rides[0].ID != "earlier" {
		t.Fatalf("expected creation-time fallback ordering, got %s first", rides[0].ID)
	}
}
