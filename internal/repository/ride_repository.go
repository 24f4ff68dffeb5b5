package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/GabeGiancarlo/rideshare-app/internal/model"
)

// RideRepo provides operations on ride records: creation, lookup with
// an optional ownership filter, the rating update, and the explicit
// status transitions.
type RideRepo struct {
	db *sql.DB
}

// NewRideRepo returns a new RideRepo bound to the given database.
func NewRideRepo(db *sql.DB) *RideRepo { return &RideRepo{db: db} }

const ridePrefixed = "r.ride_id, r.driver_id, r.rider_id, r.pickup_location, r.dropoff_location, " +
	"r.pickup_address, r.dropoff_address, r.ride_status, r.fare_amount, r.pickup_time, " +
	"r.dropoff_time, r.rating, r.rating_comment, r.created_at"

// RideRequest carries the caller-supplied fields for a new ride.
// FareAmount of zero is stored as NULL.
type RideRequest struct {
	PickupLocation  string
	DropoffLocation string
	PickupAddress   string
	DropoffAddress  string
	FareAmount      float64
}

// Create inserts a new ride referencing the given driver and rider.
// Status is initialized to pending and the pickup time is set to the
// current time.  The new ride ID is returned.
func (r *RideRepo) Create(ctx context.Context, driverID, riderID uint64, req RideRequest) (uint64, error) {
	now := time.Now().UTC()
	var fare any
	if req.FareAmount > 0 {
		fare = req.FareAmount
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rides (driver_id, rider_id, pickup_location, dropoff_location, pickup_address,
		                    dropoff_address, ride_status, fare_amount, pickup_time, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		driverID, riderID, req.PickupLocation, req.DropoffLocation,
		nullString(req.PickupAddress), nullString(req.DropoffAddress),
		model.StatusPending, fare, now, now)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a ride without any ownership filter.
func (r *RideRepo) GetByID(ctx context.Context, rideID uint64) (model.Ride, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+ridePrefixed+" FROM rides r WHERE r.ride_id=?", rideID)
	if err != nil {
		return model.Ride{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return model.Ride{}, err
		}
		return model.Ride{}, ErrNotFound
	}
	var ride model.Ride
	if err := scanRideInto(rows, &ride); err != nil {
		return model.Ride{}, err
	}
	return ride, nil
}

// GetByIDForRider fetches a ride restricted to the given rider, joined
// with the driver's name and vehicle info.  A ride that exists but
// belongs to another rider is reported as ErrNotFound, the same as a
// missing row: the ownership filter does not leak existence.
func (r *RideRepo) GetByIDForRider(ctx context.Context, rideID, riderID uint64) (RiderRide, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ridePrefixed+`, u.full_name, d.vehicle_make, d.vehicle_model
		 FROM rides r
		 JOIN drivers d ON d.driver_id = r.driver_id
		 JOIN users u   ON u.user_id   = d.user_id
		 WHERE r.ride_id = ? AND r.rider_id = ?`, rideID, riderID)
	if err != nil {
		return RiderRide{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return RiderRide{}, err
		}
		return RiderRide{}, ErrNotFound
	}
	return scanRiderRide(rows)
}

// UpdateRating sets the rating and optional comment on a ride.  The
// update only matches when both the ride ID and the rider ID agree,
// enforcing ownership in the statement itself.  Repeat calls
// overwrite the previous rating (last write wins).  The rating value
// must already be validated to 1..5 by the caller.
func (r *RideRepo) UpdateRating(ctx context.Context, rideID, riderID uint64, rating int, comment string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE rides SET rating=?, rating_comment=? WHERE ride_id=? AND rider_id=?",
		rating, nullString(comment), rideID, riderID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// No matching (ride, rider) pair.  Re-rating with the same value
		// reports 0 affected rows on MySQL, so confirm with a lookup.
		var owner uint64
		err := r.db.QueryRowContext(ctx,
			"SELECT rider_id FROM rides WHERE ride_id=?", rideID).Scan(&owner)
		if err == sql.ErrNoRows || (err == nil && owner != riderID) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Start moves a pending ride to in_progress.  Only the assigned
// driver may start it; any other state yields ErrInvalidTransition.
func (r *RideRepo) Start(ctx context.Context, rideID, driverID uint64) error {
	return r.transition(ctx, rideID, driverID, model.StatusPending, model.StatusInProgress, false, 0)
}

// Complete moves an in_progress ride to completed, stamping the
// dropoff time in the same transaction.  A positive fare overwrites
// the fare recorded at creation; zero keeps it.  Only the assigned
// driver may complete it.
func (r *RideRepo) Complete(ctx context.Context, rideID, driverID uint64, fare float64) error {
	return r.transition(ctx, rideID, driverID, model.StatusInProgress, model.StatusCompleted, true, fare)
}

func (r *RideRepo) transition(ctx context.Context, rideID, driverID uint64, from, to string, complete bool, fare float64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var owner uint64
	var status string
	err = tx.QueryRowContext(ctx,
		"SELECT driver_id, ride_status FROM rides WHERE ride_id=?", rideID).Scan(&owner, &status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != driverID {
		return ErrForbidden
	}
	if status != from {
		return ErrInvalidTransition
	}
	switch {
	case complete && fare > 0:
		_, err = tx.ExecContext(ctx,
			"UPDATE rides SET ride_status=?, dropoff_time=?, fare_amount=? WHERE ride_id=?",
			to, time.Now().UTC(), fare, rideID)
	case complete:
		_, err = tx.ExecContext(ctx,
			"UPDATE rides SET ride_status=?, dropoff_time=? WHERE ride_id=?",
			to, time.Now().UTC(), rideID)
	default:
		_, err = tx.ExecContext(ctx,
			"UPDATE rides SET ride_status=? WHERE ride_id=?", to, rideID)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// scanRideInto scans the ridePrefixed column set into ride, followed
// by any extra join columns.
func scanRideInto(rows *sql.Rows, ride *model.Ride, extras ...any) error {
	var pickupAddr, dropoffAddr, comment sql.NullString
	var fare sql.NullFloat64
	var dropoffAt sql.NullTime
	var rating sql.NullInt64

	dest := []any{
		&ride.ID, &ride.DriverID, &ride.RiderID, &ride.PickupLocation, &ride.DropoffLocation,
		&pickupAddr, &dropoffAddr, &ride.Status, &fare, &ride.PickupTime,
		&dropoffAt, &rating, &comment, &ride.CreatedAt,
	}
	dest = append(dest, extras...)
	if err := rows.Scan(dest...); err != nil {
		return err
	}
	ride.PickupAddress = strPtr(pickupAddr)
	ride.DropoffAddress = strPtr(dropoffAddr)
	ride.RatingComment = strPtr(comment)
	if fare.Valid {
		f := fare.Float64
		ride.FareAmount = &f
	}
	if dropoffAt.Valid {
		t := dropoffAt.Time
		ride.DropoffTime = &t
	}
	if rating.Valid {
		n := int(rating.Int64)
		ride.Rating = &n
	}
	return nil
}
