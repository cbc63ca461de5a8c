// README: Single permission table keyed by (role, operation); no per-screen role branching.
package authz

import (
	"errors"

	"taxiboard/internal/types"
)

type Operation string

const (
	OpView         Operation = "view"
	OpCreate       Operation = "create"
	OpAssign       Operation = "assign"
	OpAdvance      Operation = "advance"
	OpCancel       Operation = "cancel"
	OpComment      Operation = "comment"
	OpRemove       Operation = "remove"
	OpExport       Operation = "export"
	OpSuggest      Operation = "suggest"
	OpDriverUpdate Operation = "driver_update"
)

var ErrForbidden = errors.New("operation not permitted for role")

// permissions is the capability set per role. Status-transition role rules
// (who may confirm/pick-up/drop/cancel a given ride) live in the ride state
// machine; this table gates the operations themselves.
var permissions = map[types.Role]map[Operation]bool{
	types.RoleAdmin: {
		OpView: true, OpCreate: true, OpAssign: true, OpAdvance: true,
		OpCancel: true, OpComment: true, OpRemove: true, OpExport: true,
		OpSuggest: true, OpDriverUpdate: true,
	},
	types.RoleSecretary: {
		OpView: true, OpCreate: true, OpAssign: true, OpAdvance: true,
		OpCancel: true, OpComment: true, OpRemove: true, OpSuggest: true,
		OpDriverUpdate: true,
	},
	types.RoleDriver: {
		OpView: true, OpAdvance: true, OpComment: true, OpDriverUpdate: true,
	},
}

func Allowed(role types.Role, op Operation) bool {
	return permissions[role][op]
}

// Check returns ErrForbidden when the role may not perform op.
func Check(role types.Role, op Operation) error {
	if !Allowed(role, op) {
		return ErrForbidden
	}
	return nil
}
