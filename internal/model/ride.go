package model

import "time"

// Ride status values.  A ride is created pending, moves to
// in_progress when the assigned driver starts it, and to completed
// when the driver finishes it.  There are no other transitions.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Ride records a trip between one driver and one rider.  Both
// references are set at creation and never reassigned.  The rating
// fields start null and may be overwritten by the owning rider
// (last write wins).
//
// Fields:
//  ID              – primary key identifier.
//  DriverID        – driver assigned at creation.
//  RiderID         – rider who requested the ride.
//  PickupLocation  – short pickup label.
//  DropoffLocation – short dropoff label.
//  PickupAddress   – optional full pickup address.
//  DropoffAddress  – optional full dropoff address.
//  Status          – pending, in_progress or completed.
//  FareAmount      – optional fare in dollars.
//  PickupTime      – set to the creation time.
//  DropoffTime     – set when the ride is completed.
//  Rating          – optional 1..5 rating by the rider.
//  RatingComment   – optional free-text comment.
//  CreatedAt       – creation timestamp, used for ordering.
type Ride struct {
	ID              uint64     `json:"ride_id"`
	DriverID        uint64     `json:"driver_id"`
	RiderID         uint64     `json:"rider_id"`
	PickupLocation  string     `json:"pickup_location"`
	DropoffLocation string     `json:"dropoff_location"`
	PickupAddress   *string    `json:"pickup_address"`
	DropoffAddress  *string    `json:"dropoff_address"`
	Status          string     `json:"ride_status"`
	FareAmount      *float64   `json:"fare_amount"`
	PickupTime      time.Time  `json:"pickup_time"`
	DropoffTime     *time.Time `json:"dropoff_time"`
	Rating          *int       `json:"rating"`
	RatingComment   *string    `json:"rating_comment"`
	CreatedAt       time.Time  `json:"created_at"`
}
