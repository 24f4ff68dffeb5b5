package handler_test

import (
	"fmt"
	"net/http"
	"testing"
)

func TestRideRequestNeedsActiveDriver(t *testing.T) {
	srv := setupServer(t)
	registerRider(t, srv, "sarah_jones")
	registerDriver(t, srv, "mike_wilson")
	riderTok, _ := loginAs(t, srv, "sarah_jones", "rider")

	// The driver exists but is inactive, so no match is possible.
	res, body := postJSON(t, srv.URL+"/v1/rider/rides", map[string]any{
		"pickup_location": "Downtown Plaza", "dropoff_location": "Airport Terminal",
	}, riderTok)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("no active driver: expected 409, got %d (%v)", res.StatusCode, body)
	}
}

func TestRideRequestValidation(t *testing.T) {
	srv := setupServer(t)
	registerRider(t, srv, "sarah_jones")
	riderTok, _ := loginAs(t, srv, "sarah_jones", "rider")

	res, _ := postJSON(t, srv.URL+"/v1/rider/rides", map[string]any{
		"pickup_location": "Somewhere",
	}, riderTok)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing dropoff: expected 400, got %d", res.StatusCode)
	}
	res, _ = postJSON(t, srv.URL+"/v1/rider/rides", map[string]any{
		"pickup_location": "A", "dropoff_location": "B", "fare_amount": -1,
	}, riderTok)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("negative fare: expected 400, got %d", res.StatusCode)
	}
}

// TestRideEndToEnd drives the whole booking flow over HTTP: match,
// start, complete, rate, then check both histories and the driver's
// average rating.
func TestRideEndToEnd(t *testing.T) {
	srv := setupServer(t)
	registerRider(t, srv, "sarah_jones")
	registerDriver(t, srv, "mike_wilson")
	riderTok, _ := loginAs(t, srv, "sarah_jones", "rider")
	driverTok, _ := loginAs(t, srv, "mike_wilson", "driver")

	// Driver goes active.
	res, body := postJSON(t, srv.URL+"/v1/driver/toggle-mode", nil, driverTok)
	if res.StatusCode != http.StatusOK || body["driver_mode"] != "active" {
		t.Fatalf("toggle: status=%d body=%v", res.StatusCode, body)
	}

	// Rider books a ride.
	res, body = postJSON(t, srv.URL+"/v1/rider/rides", map[string]any{
		"pickup_location":  "University Campus",
		"dropoff_location": "Downtown Plaza",
		"fare_amount":      18.75,
	}, riderTok)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("request ride: expected 201, got %d (%v)", res.StatusCode, body)
	}
	rideID := uint64(body["ride_id"].(float64))
	ridePath := fmt.Sprintf("/v1/driver/rides/%d", rideID)

	// Completing before starting is rejected.
	res, _ = postJSON(t, srv.URL+ridePath+"/complete", nil, driverTok)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("complete pending ride: expected 409, got %d", res.StatusCode)
	}

	res, _ = postJSON(t, srv.URL+ridePath+"/start", nil, driverTok)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("start: expected 200, got %d", res.StatusCode)
	}
	res, _ = postJSON(t, srv.URL+ridePath+"/complete", map[string]any{"fare_amount": 21.00}, driverTok)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d", res.StatusCode)
	}

	// Rating bounds are enforced before touching storage.
	res, _ = postJSON(t, srv.URL+fmt.Sprintf("/v1/rider/rides/%d/rating", rideID),
		map[string]any{"rating": 6}, riderTok)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("rating 6: expected 400, got %d", res.StatusCode)
	}
	res, _ = postJSON(t, srv.URL+fmt.Sprintf("/v1/rider/rides/%d/rating", rideID),
		map[string]any{"rating": 5, "comment": "Perfect service!"}, riderTok)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("rate: expected 200, got %d", res.StatusCode)
	}

	// Rider sees the completed ride as the most recent one.  The join
	// fields and the embedded ride fields all serialize with the same
	// snake_case convention.
	res, body = getJSON(t, srv.URL+"/v1/rider/rides/recent", riderTok)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("recent: expected 200, got %d", res.StatusCode)
	}
	if body["ride_status"] != "completed" {
		t.Fatalf("expected completed recent ride, got %v", body["ride_status"])
	}
	if body["fare_amount"].(float64) != 21.00 {
		t.Fatalf("expected fare 21.00, got %v", body["fare_amount"])
	}
	if _, ok := body["driver_name"]; !ok {
		t.Fatalf("missing driver_name in recent ride: %v", body)
	}
	for _, stale := range []string{"Status", "FareAmount", "DriverID"} {
		if _, ok := body[stale]; ok {
			t.Fatalf("unexpected Go-cased key %q in recent ride: %v", stale, body)
		}
	}

	// Driver sees the ride in history and the rating in the average.
	res, body = getJSON(t, srv.URL+"/v1/driver/rides", driverTok)
	if res.StatusCode != http.StatusOK || int(body["count"].(float64)) != 1 {
		t.Fatalf("driver history: status=%d body=%v", res.StatusCode, body)
	}
	res, body = getJSON(t, srv.URL+"/v1/driver/rating", driverTok)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("rating: expected 200, got %d", res.StatusCode)
	}
	if body["rated"] != true || body["average_rating"].(float64) != 5 {
		t.Fatalf("unexpected rating body: %v", body)
	}

	// The rider cannot see a ride that is not theirs.
	registerRider(t, srv, "david_brown")
	otherTok, _ := loginAs(t, srv, "david_brown", "rider")
	res, _ = getJSON(t, srv.URL+fmt.Sprintf("/v1/rider/rides/%d", rideID), otherTok)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign ride detail: expected 404, got %d", res.StatusCode)
	}
}
