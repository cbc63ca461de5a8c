// README: Driver record and availability state.
package driver

import (
	"time"

	"taxiboard/internal/types"
)

type Driver struct {
	ID               types.ID    `json:"id"`
	Name             string      `json:"name"`
	Available        bool        `json:"available"`
	FCMToken         string      `json:"-"`
	LastKnownPoint   types.Point `json:"last_known_point"`
	LastKnownAddress string      `json:"last_known_address"`
	CreatedAt        time.Time   `json:"created_at"`
}
