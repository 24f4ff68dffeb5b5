package model

import "time"

// Driver mode flag values.  A driver is only eligible to be matched
// to a new ride request while in ModeActive.
const (
	ModeActive   = "active"
	ModeInactive = "inactive"
)

// Driver represents a driver profile in the `drivers` table.  It is
// paired 1:1 with a User row via UserID.  Vehicle and insurance
// details are optional; only the license number is required at
// registration.  The mode flag starts as inactive and is flipped
// exclusively by the mode-toggle operation.
type Driver struct {
	ID              uint64    `json:"driver_id"`
	UserID          uint64    `json:"user_id"`
	LicenseNumber   string    `json:"license_number"`
	LicenseExpiry   *string   `json:"license_expiry"` // YYYY-MM-DD
	VehicleMake     *string   `json:"vehicle_make"`
	VehicleModel    *string   `json:"vehicle_model"`
	VehicleYear     *int      `json:"vehicle_year"`
	VehicleColor    *string   `json:"vehicle_color"`
	LicensePlate    *string   `json:"license_plate"`
	InsuranceNumber *string   `json:"insurance_number"`
	Mode            string    `json:"driver_mode"` // active|inactive
	CreatedAt       time.Time `json:"created_at"`
}
