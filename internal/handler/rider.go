package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/GabeGiancarlo/rideshare-app/internal/middleware"
	"github.com/GabeGiancarlo/rideshare-app/internal/queue"
	"github.com/GabeGiancarlo/rideshare-app/internal/repository"
	queue_publisher "github.com/GabeGiancarlo/rideshare-app/internal/service"
)

// RiderHandler serves the rider-facing endpoints.  All routes sit
// behind JWT auth plus the RIDER role check, so the profile ID in the
// token context is the caller's own rider ID.
type RiderHandler struct {
	Riders  *repository.RiderRepo
	Drivers *repository.DriverRepo
	RideRepo *repository.RideRepo
}

func NewRiderHandler(rd *repository.RiderRepo, d *repository.DriverRepo, r *repository.RideRepo) *RiderHandler {
	return &RiderHandler{Riders: rd, Drivers: d, RideRepo: r}
}

// Me returns the caller's rider profile.
func (h *RiderHandler) Me(c echo.Context) error {
	riderID, ok := middleware.GetProfileID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing profile"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	rd, err := h.Riders.GetByID(ctx, riderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rider not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, rd)
}

// Rides lists the caller's ride history, newest first.
func (h *RiderHandler) Rides(c echo.Context) error {
	riderID, ok := middleware.GetProfileID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing profile"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	rides, err := h.Riders.ListRides(ctx, riderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rides), "rides": rides})
}

// Recent returns the caller's newest ride.
func (h *RiderHandler) Recent(c echo.Context) error {
	riderID, ok := middleware.GetProfileID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing profile"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	ride, err := h.Riders.MostRecentRide(ctx, riderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no rides yet"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, ride)
}

// RideDetail returns one of the caller's rides.  Rides belonging to
// other riders read as not found.
func (h *RiderHandler) RideDetail(c echo.Context) error {
	riderID, ok := middleware.GetProfileID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing profile"})
	}
	rideID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	ride, err := h.RideRepo.GetByIDForRider(ctx, rideID, riderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ride not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, ride)
}

type requestRideReq struct {
	PickupLocation  string  `json:"pickup_location"`
	DropoffLocation string  `json:"dropoff_location"`
	PickupAddress   string  `json:"pickup_address"`
	DropoffAddress  string  `json:"dropoff_address"`
	FareAmount      float64 `json:"fare_amount"`
}

// RequestRide matches the caller with an active driver and creates a
// pending ride.  409 means no driver is in active mode right now; a
// rider with nobody to drive them gets no ride row at all.
func (h *RiderHandler) RequestRide(c echo.Context) error {
	riderID, ok := middleware.GetProfileID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing profile"})
	}
	var req requestRideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.PickupLocation = strings.TrimSpace(req.PickupLocation)
	req.DropoffLocation = strings.TrimSpace(req.DropoffLocation)
	if req.PickupLocation == "" || req.DropoffLocation == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pickup_location and dropoff_location are required"})
	}
	if req.FareAmount < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "fare_amount must not be negative"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	driver, err := h.Drivers.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveDriver) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "no active driver available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "driver lookup failed"})
	}

	rideID, err := h.RideRepo.Create(ctx, driver.ID, riderID, repository.RideRequest{
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		PickupAddress:   strings.TrimSpace(req.PickupAddress),
		DropoffAddress:  strings.TrimSpace(req.DropoffAddress),
		FareAmount:      req.FareAmount,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ride failed"})
	}

	ev := queue.RideRequestedEvent{
		RideID:          rideID,
		DriverID:        driver.ID,
		RiderID:         riderID,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		RequestedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if req.FareAmount > 0 {
		f := req.FareAmount
		ev.FareAmount = &f
	}
	go func(ev queue.RideRequestedEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := queue_publisher.PublishRideRequested(ctx, ev); err != nil {
			log.Printf("rider-handler: publish ride.requested: %v", err)
		}
	}(ev)

	return c.JSON(http.StatusCreated, echo.Map{
		"ride_id":     rideID,
		"driver_id":   driver.ID,
		"ride_status": "pending",
	})
}

type rateRideReq struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Rate records a 1..5 rating on one of the caller's rides.  Rating
// again replaces the earlier value.
func (h *RiderHandler) Rate(c echo.Context) error {
	riderID, ok := middleware.GetProfileID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing profile"})
	}
	rideID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	var req rateRideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.RideRepo.UpdateRating(ctx, rideID, riderID, req.Rating, strings.TrimSpace(req.Comment)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ride not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rating failed"})
	}

	ev := queue.RideRatedEvent{
		RideID:  rideID,
		RiderID: riderID,
		Rating:  req.Rating,
		Comment: strings.TrimSpace(req.Comment),
		RatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func(ev queue.RideRatedEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := queue_publisher.PublishRideRated(ctx, ev); err != nil {
			log.Printf("rider-handler: publish ride.rated: %v", err)
		}
	}(ev)

	return c.JSON(http.StatusOK, echo.Map{"ride_id": rideID, "rating": req.Rating})
}
