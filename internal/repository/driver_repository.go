package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/GabeGiancarlo/rideshare-app/internal/model"
	"github.com/GabeGiancarlo/rideshare-app/internal/utils"
)

// DriverRepo provides CRUD operations for driver profiles plus the
// driver-facing ride queries (rating average and ride history).
type DriverRepo struct {
	db    *sql.DB
	users *UserRepo
}

// NewDriverRepo returns a new DriverRepo bound to the given database.
func NewDriverRepo(db *sql.DB) *DriverRepo {
	return &DriverRepo{db: db, users: NewUserRepo(db)}
}

// DriverProfile collects the optional registration fields for a
// driver.  Empty strings and a zero VehicleYear are stored as NULL.
type DriverProfile struct {
	LicenseNumber   string
	LicenseExpiry   string
	VehicleMake     string
	VehicleModel    string
	VehicleYear     int
	VehicleColor    string
	LicensePlate    string
	InsuranceNumber string
}

const driverCols = "driver_id,user_id,license_number,license_expiry,vehicle_make,vehicle_model,vehicle_year,vehicle_color,license_plate,insurance_number,driver_mode,created_at"

// Create inserts a driver profile for an existing user and returns
// its ID.  The mode flag is always initialized to inactive.
func (r *DriverRepo) Create(ctx context.Context, userID uint64, p DriverProfile) (uint64, error) {
	return r.createTx(ctx, r.db, userID, p)
}

func (r *DriverRepo) createTx(ctx context.Context, ex execer, userID uint64, p DriverProfile) (uint64, error) {
	res, err := ex.ExecContext(ctx,
		`INSERT INTO drivers (user_id, license_number, license_expiry, vehicle_make, vehicle_model,
		                      vehicle_year, vehicle_color, license_plate, insurance_number, driver_mode, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		userID, p.LicenseNumber, nullString(p.LicenseExpiry), nullString(p.VehicleMake),
		nullString(p.VehicleModel), nullInt(p.VehicleYear), nullString(p.VehicleColor),
		nullString(p.LicensePlate), nullString(p.InsuranceNumber), model.ModeInactive, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Register creates the user account and the driver profile in a
// single transaction, so a failure on either side leaves no orphan
// user row behind.  It returns the new driver ID.
func (r *DriverRepo) Register(ctx context.Context, username, password, email, phone, fullName string, cost int, p DriverProfile) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	userID, err := r.users.createTx(ctx, tx, username, hash, email, phone, fullName)
	if err != nil {
		return 0, err
	}
	driverID, err := r.createTx(ctx, tx, userID, p)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return driverID, nil
}

// GetByUserID fetches a driver by the owning user's id.
func (r *DriverRepo) GetByUserID(ctx context.Context, userID uint64) (model.Driver, error) {
	return scanDriver(r.db.QueryRowContext(ctx,
		"SELECT "+driverCols+" FROM drivers WHERE user_id=? LIMIT 1", userID))
}

// GetByID fetches a driver by its own id.
func (r *DriverRepo) GetByID(ctx context.Context, id uint64) (model.Driver, error) {
	return scanDriver(r.db.QueryRowContext(ctx,
		"SELECT "+driverCols+" FROM drivers WHERE driver_id=? LIMIT 1", id))
}

// GetActive returns an arbitrary driver currently in active mode.
// There is deliberately no ordering and no load distribution: any
// active row may be returned.  ErrNoActiveDriver signals that no
// driver is available right now.
func (r *DriverRepo) GetActive(ctx context.Context) (model.Driver, error) {
	d, err := scanDriver(r.db.QueryRowContext(ctx,
		"SELECT "+driverCols+" FROM drivers WHERE driver_mode=? LIMIT 1", model.ModeActive))
	if err == ErrNotFound {
		return model.Driver{}, ErrNoActiveDriver
	}
	return d, err
}

// ToggleMode flips the driver's mode between active and inactive in
// one transaction and returns the new mode.  A missing driver row is
// reported as ErrNotFound, distinct from storage failures.
func (r *DriverRepo) ToggleMode(ctx context.Context, driverID uint64) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	var mode string
	err = tx.QueryRowContext(ctx,
		"SELECT driver_mode FROM drivers WHERE driver_id=?", driverID).Scan(&mode)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	next := model.ModeActive
	if mode == model.ModeActive {
		next = model.ModeInactive
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE drivers SET driver_mode=? WHERE driver_id=?", next, driverID); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return next, nil
}

// GetRating returns the arithmetic mean of all non-null ride ratings
// for the driver.  ErrNotFound signals a driver with no rated rides.
func (r *DriverRepo) GetRating(ctx context.Context, driverID uint64) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		"SELECT AVG(rating) FROM rides WHERE driver_id=? AND rating IS NOT NULL",
		driverID).Scan(&avg)
	if err != nil {
		return 0, err
	}
	if !avg.Valid {
		return 0, ErrNotFound
	}
	return avg.Float64, nil
}

// DriverRide is a ride as seen from the driver's side, joined with
// the rider's display name.
type DriverRide struct {
	model.Ride
	RiderName string `json:"rider_name"`
}

// ListRides returns all rides for the driver, newest first, each
// joined with the rider's full name.
func (r *DriverRepo) ListRides(ctx context.Context, driverID uint64) ([]DriverRide, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ridePrefixed+`, u.full_name
		 FROM rides r
		 JOIN riders rd ON rd.rider_id = r.rider_id
		 JOIN users u   ON u.user_id   = rd.user_id
		 WHERE r.driver_id = ?
		 ORDER BY r.created_at DESC, r.ride_id DESC`, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DriverRide, 0)
	for rows.Next() {
		var dr DriverRide
		if err := scanRideInto(rows, &dr.Ride, &dr.RiderName); err != nil {
			return nil, err
		}
		out = append(out, dr)
	}
	return out, rows.Err()
}

func scanDriver(row *sql.Row) (model.Driver, error) {
	var d model.Driver
	var expiry, mk, mdl, color, plate, ins sql.NullString
	var year sql.NullInt64
	err := row.Scan(&d.ID, &d.UserID, &d.LicenseNumber, &expiry, &mk, &mdl,
		&year, &color, &plate, &ins, &d.Mode, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Driver{}, ErrNotFound
	}
	if err != nil {
		return model.Driver{}, err
	}
	d.LicenseExpiry = strPtr(expiry)
	d.VehicleMake = strPtr(mk)
	d.VehicleModel = strPtr(mdl)
	d.VehicleColor = strPtr(color)
	d.LicensePlate = strPtr(plate)
	d.InsuranceNumber = strPtr(ins)
	if year.Valid {
		y := int(year.Int64)
		d.VehicleYear = &y
	}
	return d, nil
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
