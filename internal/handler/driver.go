package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/GabeGiancarlo/rideshare-app/internal/middleware"
	"github.com/GabeGiancarlo/rideshare-app/internal/repository"
)

// DriverHandler serves the driver-facing endpoints.  Every route is
// mounted behind JWT auth plus the DRIVER role check, so the profile
// ID read from the token context is always the caller's own driver ID.
type DriverHandler struct {
	Drivers *repository.DriverRepo
	RideRepo *repository.RideRepo
}

func NewDriverHandler(d *repository.DriverRepo, r *repository.RideRepo) *DriverHandler {
	return &DriverHandler{Drivers: d, RideRepo: r}
}

// Me returns the caller's driver profile.
func (h *DriverHandler) Me(c echo.Context) error {
	driverID, ok := middleware.GetProfileID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing profile"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Drivers.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "driver not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, d)
}

// ToggleMode flips the caller between active and inactive and reports
// the resulting mode.
func (h *DriverHandler) ToggleMode(c echo.Context) error {
	driverID, ok := middleware.GetProfileID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing profile"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	mode, err := h.Drivers.ToggleMode(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "driver not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "toggle failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"driver_id": driverID, "driver_mode": mode})
}

// Rating returns the caller's average ride rating.  A driver with no
// rated rides gets rated=false and no average instead of a zero.
func (h *DriverHandler) Rating(c echo.Context) error {
	driverID, ok := middleware.GetProfileID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing profile"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	avg, err := h.Drivers.GetRating(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"driver_id": driverID, "rated": false})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"driver_id": driverID, "rated": true, "average_rating": avg})
}

// Rides lists the caller's ride history, newest first.
func (h *DriverHandler) Rides(c echo.Context) error {
	driverID, ok := middleware.GetProfileID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing profile"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	rides, err := h.Drivers.ListRides(ctx, driverID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rides), "rides": rides})
}

// RideDetail returns one of the caller's rides.  Rides assigned to
// other drivers read as not found.
func (h *DriverHandler) RideDetail(c echo.Context) error {
	driverID, ok := middleware.GetProfileID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing profile"})
	}
	rideID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	ride, err := h.RideRepo.GetByID(ctx, rideID)
	if err != nil || ride.DriverID != driverID {
		if err == nil || errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ride not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, ride)
}

// Start moves one of the caller's pending rides to in_progress.
func (h *DriverHandler) Start(c echo.Context) error {
	driverID, ok := middleware.GetProfileID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing profile"})
	}
	rideID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.RideRepo.Start(ctx, rideID, driverID); err != nil {
		return rideTransitionError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ride_id": rideID, "ride_status": "in_progress"})
}

type completeReq struct {
	FareAmount float64 `json:"fare_amount"`
}

// Complete finishes one of the caller's in-progress rides, optionally
// recording the final fare.
func (h *DriverHandler) Complete(c echo.Context) error {
	driverID, ok := middleware.GetProfileID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing profile"})
	}
	rideID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	var req completeReq
	_ = c.Bind(&req) // body optional
	if req.FareAmount < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "fare_amount must not be negative"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.RideRepo.Complete(ctx, rideID, driverID, req.FareAmount); err != nil {
		return rideTransitionError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ride_id": rideID, "ride_status": "completed"})
}

func rideTransitionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ride not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "ride belongs to another driver"})
	case errors.Is(err, repository.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "ride is not in the required status"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
}

func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
