// README: Shared value types used across modules.
package types

import "fmt"

type ID string

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LatLng renders the point in the "lat,lng" form the maps API accepts.
func (p Point) LatLng() string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}

func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleSecretary Role = "secretary"
	RoleDriver    Role = "driver"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID   ID
	Role Role
}

type Money struct {
	Amount   int64  `json:"amount"` // minor units (euro cents)
	Currency string `json:"currency"`
}
