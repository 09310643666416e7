package models

import "time"

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionStatus  = "status"
)

// Change feed resource names, also used as ?resources= values.
const (
	ResourceStaff        = "staff"
	ResourceServices     = "services"
	ResourceCombos       = "combos"
	ResourceAppointments = "appointments"
	ResourceInventory    = "inventory"
	ResourceAttendance   = "attendance"
	ResourceUsers        = "users"
)

// ChangeEvent is pushed to connected operators after every successful
// mutation so their lists can refetch.
type ChangeEvent struct {
	Resource string    `json:"resource"`
	Action   string    `json:"action"`
	ID       string    `json:"id"`
	At       time.Time `json:"at"`
}
