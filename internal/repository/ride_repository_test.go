package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/GabeGiancarlo/rideshare-app/internal/model"
	"github.com/GabeGiancarlo/rideshare-app/internal/repository"
)

func TestRideCreateDefaults(t *testing.T) {
	db := newTestDB(t)
	rides := repository.NewRideRepo(db)
	ctx := context.Background()

	driverID := newDriverFixture(t, db, "john_doe")
	riderID := newRiderFixture(t, db, "sarah_jones")

	id, err := rides.Create(ctx, driverID, riderID, repository.RideRequest{
		PickupLocation:  "Downtown Plaza",
		DropoffLocation: "Airport Terminal",
		PickupAddress:   "123 Main Street",
	})
	if err != nil {
		t.Fatalf("create ride: %v", err)
	}

	r, err := rides.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get ride: %v", err)
	}
	if r.Status != model.StatusPending {
		t.Fatalf("expected pending, got %s", r.Status)
	}
	if r.DriverID != driverID || r.RiderID != riderID {
		t.Fatalf("unexpected assignment: %+v", r)
	}
	if r.FareAmount != nil {
		t.Fatalf("expected nil fare, got %v", *r.FareAmount)
	}
	if r.DropoffTime != nil || r.Rating != nil {
		t.Fatalf("expected empty dropoff/rating on new ride: %+v", r)
	}
	if r.PickupAddress == nil || *r.PickupAddress != "123 Main Street" {
		t.Fatalf("unexpected pickup address: %v", r.PickupAddress)
	}
	if r.DropoffAddress != nil {
		t.Fatalf("expected nil dropoff address, got %q", *r.DropoffAddress)
	}
}

func TestRideLifecycle(t *testing.T) {
	db := newTestDB(t)
	rides := repository.NewRideRepo(db)
	ctx := context.Background()

	driverID := newDriverFixture(t, db, "john_doe")
	otherDriver := newDriverFixture(t, db, "jane_smith")
	riderID := newRiderFixture(t, db, "sarah_jones")

	id, err := rides.Create(ctx, driverID, riderID, repository.RideRequest{
		PickupLocation: "A", DropoffLocation: "B",
	})
	if err != nil {
		t.Fatalf("create ride: %v", err)
	}

	// Completing a pending ride is out of order.
	if err := rides.Complete(ctx, id, driverID, 0); !errors.Is(err, repository.ErrInvalidTransition) {
		t.Fatalf("complete pending: expected ErrInvalidTransition, got %v", err)
	}
	// Another driver cannot start it.
	if err := rides.Start(ctx, id, otherDriver); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("foreign start: expected ErrForbidden, got %v", err)
	}

	if err := rides.Start(ctx, id, driverID); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Starting twice is out of order.
	if err := rides.Start(ctx, id, driverID); !errors.Is(err, repository.ErrInvalidTransition) {
		t.Fatalf("double start: expected ErrInvalidTransition, got %v", err)
	}

	if err := rides.Complete(ctx, id, driverID, 28.50); err != nil {
		t.Fatalf("complete: %v", err)
	}
	r, err := rides.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get ride: %v", err)
	}
	if r.Status != model.StatusCompleted {
		t.Fatalf("expected completed, got %s", r.Status)
	}
	if r.DropoffTime == nil {
		t.Fatal("expected dropoff time stamped on completion")
	}
	if r.FareAmount == nil || *r.FareAmount != 28.50 {
		t.Fatalf("expected fare 28.50, got %v", r.FareAmount)
	}

	// Missing ride reads as not found, not forbidden.
	if err := rides.Start(ctx, 9999, driverID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing ride: expected ErrNotFound, got %v", err)
	}
}

func TestRideRatingOwnership(t *testing.T) {
	db := newTestDB(t)
	rides := repository.NewRideRepo(db)
	ctx := context.Background()

	driverID := newDriverFixture(t, db, "john_doe")
	riderID := newRiderFixture(t, db, "sarah_jones")
	otherRider := newRiderFixture(t, db, "david_brown")

	id, err := rides.Create(ctx, driverID, riderID, repository.RideRequest{
		PickupLocation: "A", DropoffLocation: "B",
	})
	if err != nil {
		t.Fatalf("create ride: %v", err)
	}

	// A different rider cannot rate the ride and cannot learn it exists.
	if err := rides.UpdateRating(ctx, id, otherRider, 5, "great"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("foreign rating: expected ErrNotFound, got %v", err)
	}
	if _, err := rides.GetByIDForRider(ctx, id, otherRider); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("foreign lookup: expected ErrNotFound, got %v", err)
	}

	if err := rides.UpdateRating(ctx, id, riderID, 4, "Good ride, arrived on time."); err != nil {
		t.Fatalf("rate: %v", err)
	}

	// Re-rating overwrites, including with the same value.
	if err := rides.UpdateRating(ctx, id, riderID, 4, "still good"); err != nil {
		t.Fatalf("re-rate same value: %v", err)
	}
	if err := rides.UpdateRating(ctx, id, riderID, 5, ""); err != nil {
		t.Fatalf("re-rate: %v", err)
	}

	r, err := rides.GetByIDForRider(ctx, id, riderID)
	if err != nil {
		t.Fatalf("get ride: %v", err)
	}
	if r.Rating == nil || *r.Rating != 5 {
		t.Fatalf("expected final rating 5, got %v", r.Rating)
	}
	if r.RatingComment != nil {
		t.Fatalf("expected comment cleared, got %q", *r.RatingComment)
	}
	if r.DriverName != "Driver john_doe" {
		t.Fatalf("unexpected driver name: %s", r.DriverName)
	}
}

// TestRideBookingFlow walks the whole happy path: an active driver is
// matched, drives the ride to completion, gets rated, and both sides
// see the ride in their histories.
func TestRideBookingFlow(t *testing.T) {
	db := newTestDB(t)
	drivers := repository.NewDriverRepo(db)
	riders := repository.NewRiderRepo(db)
	rides := repository.NewRideRepo(db)
	ctx := context.Background()

	driverID := newDriverFixture(t, db, "mike_wilson")
	riderID := newRiderFixture(t, db, "sarah_jones")
	activateDriver(t, db, driverID)

	matched, err := drivers.GetActive(ctx)
	if err != nil {
		t.Fatalf("match driver: %v", err)
	}
	rideID, err := rides.Create(ctx, matched.ID, riderID, repository.RideRequest{
		PickupLocation:  "University Campus",
		DropoffLocation: "Downtown Plaza",
		FareAmount:      18.75,
	})
	if err != nil {
		t.Fatalf("create ride: %v", err)
	}

	if err := rides.Start(ctx, rideID, matched.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := rides.Complete(ctx, rideID, matched.ID, 0); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := rides.UpdateRating(ctx, rideID, riderID, 5, "Perfect service!"); err != nil {
		t.Fatalf("rate: %v", err)
	}

	recent, err := riders.MostRecentRide(ctx, riderID)
	if err != nil {
		t.Fatalf("recent ride: %v", err)
	}
	if recent.ID != rideID || recent.Status != model.StatusCompleted {
		t.Fatalf("unexpected recent ride: %+v", recent)
	}
	if recent.FareAmount == nil || *recent.FareAmount != 18.75 {
		t.Fatalf("expected fare preserved, got %v", recent.FareAmount)
	}

	avg, err := drivers.GetRating(ctx, driverID)
	if err != nil || avg != 5 {
		t.Fatalf("driver rating: avg=%v err=%v", avg, err)
	}
	history, err := drivers.ListRides(ctx, driverID)
	if err != nil || len(history) != 1 {
		t.Fatalf("driver history: rides=%d err=%v", len(history), err)
	}
}
