// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

// Queue names used for ride events.
const (
	RideRequestedQueue = "ride.requested"
	RideRatedQueue     = "ride.rated"
)

// RideRequestedEvent is published after a ride row is committed.  It
// carries enough information for downstream consumers to log or
// notify without querying the primary database.
type RideRequestedEvent struct {
	RideID          uint64   `json:"ride_id"`
	DriverID        uint64   `json:"driver_id"`
	RiderID         uint64   `json:"rider_id"`
	PickupLocation  string   `json:"pickup_location"`
	DropoffLocation string   `json:"dropoff_location"`
	FareAmount      *float64 `json:"fare_amount,omitempty"`
	RequestedAt     string   `json:"requested_at"`
}

// RideRatedEvent is published after a rider rates a ride.
type RideRatedEvent struct {
	RideID  uint64 `json:"ride_id"`
	RiderID uint64 `json:"rider_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
	RatedAt string `json:"rated_at"`
}
