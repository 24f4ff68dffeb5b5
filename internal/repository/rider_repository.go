package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/GabeGiancarlo/rideshare-app/internal/model"
	"github.com/GabeGiancarlo/rideshare-app/internal/utils"
)

// RiderRepo provides CRUD operations for rider profiles and the
// rider-facing ride history queries.
type RiderRepo struct {
	db    *sql.DB
	users *UserRepo
}

// NewRiderRepo returns a new RiderRepo bound to the given database.
func NewRiderRepo(db *sql.DB) *RiderRepo {
	return &RiderRepo{db: db, users: NewUserRepo(db)}
}

// RiderProfile collects the optional registration fields for a rider.
// Empty strings are stored as NULL.
type RiderProfile struct {
	PaymentInfo      string
	PreferredPayment string
	CreditCardLast4  string
	DefaultLocation  string
}

const riderCols = "rider_id,user_id,payment_info,preferred_payment,credit_card_last4,default_location,created_at"

// Create inserts a rider profile for an existing user and returns its ID.
func (r *RiderRepo) Create(ctx context.Context, userID uint64, p RiderProfile) (uint64, error) {
	return r.createTx(ctx, r.db, userID, p)
}

func (r *RiderRepo) createTx(ctx context.Context, ex execer, userID uint64, p RiderProfile) (uint64, error) {
	res, err := ex.ExecContext(ctx,
		`INSERT INTO riders (user_id, payment_info, preferred_payment, credit_card_last4, default_location, created_at)
		 VALUES (?,?,?,?,?,?)`,
		userID, nullString(p.PaymentInfo), nullString(p.PreferredPayment),
		nullString(p.CreditCardLast4), nullString(p.DefaultLocation), time.Now().UTC())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Register creates the user account and the rider profile in a single
// transaction and returns the new rider ID.
func (r *RiderRepo) Register(ctx context.Context, username, password, email, phone, fullName string, cost int, p RiderProfile) (uint64, error) {
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
	riderID, err := r.createTx(ctx, tx, userID, p)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return riderID, nil
}

// GetByUserID fetches a rider by the owning user's id.
func (r *RiderRepo) GetByUserID(ctx context.Context, userID uint64) (model.Rider, error) {
	return scanRider(r.db.QueryRowContext(ctx,
		"SELECT "+riderCols+" FROM riders WHERE user_id=? LIMIT 1", userID))
}

// GetByID fetches a rider by its own id.
func (r *RiderRepo) GetByID(ctx context.Context, id uint64) (model.Rider, error) {
	return scanRider(r.db.QueryRowContext(ctx,
		"SELECT "+riderCols+" FROM riders WHERE rider_id=? LIMIT 1", id))
}

// RiderRide is a ride as seen from the rider's side, joined with the
// driver's display name and vehicle descriptor.
type RiderRide struct {
	model.Ride
	DriverName   string  `json:"driver_name"`
	VehicleMake  *string `json:"vehicle_make"`
	VehicleModel *string `json:"vehicle_model"`
}

const riderRideQuery = `SELECT ` + ridePrefixed + `, u.full_name, d.vehicle_make, d.vehicle_model
	 FROM rides r
	 JOIN drivers d ON d.driver_id = r.driver_id
	 JOIN users u   ON u.user_id   = d.user_id
	 WHERE r.rider_id = ?
	 ORDER BY r.created_at DESC, r.ride_id DESC`

// ListRides returns all rides for the rider, newest first, each
// joined with the driver's name and vehicle make/model.
func (r *RiderRepo) ListRides(ctx context.Context, riderID uint64) ([]RiderRide, error) {
	rows, err := r.db.QueryContext(ctx, riderRideQuery, riderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RiderRide, 0)
	for rows.Next() {
		rr, err := scanRiderRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// MostRecentRide returns the single newest ride for the rider, or
// ErrNotFound when the rider has no rides yet.
func (r *RiderRepo) MostRecentRide(ctx context.Context, riderID uint64) (RiderRide, error) {
	rows, err := r.db.QueryContext(ctx, riderRideQuery+" LIMIT 1", riderID)
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

func scanRiderRide(rows *sql.Rows) (RiderRide, error) {
	var rr RiderRide
	var mk, mdl sql.NullString
	if err := scanRideInto(rows, &rr.Ride, &rr.DriverName, &mk, &mdl); err != nil {
		return RiderRide{}, err
	}
	rr.VehicleMake = strPtr(mk)
	rr.VehicleModel = strPtr(mdl)
	return rr, nil
}

func scanRider(row *sql.Row) (model.Rider, error) {
	var rd model.Rider
	var pay, pref, last4, loc sql.NullString
	err := row.Scan(&rd.ID, &rd.UserID, &pay, &pref, &last4, &loc, &rd.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Rider{}, ErrNotFound
	}
	if err != nil {
		return model.Rider{}, err
	}
	rd.PaymentInfo = strPtr(pay)
	rd.PreferredPayment = strPtr(pref)
	rd.CreditCardLast4 = strPtr(last4)
	rd.DefaultLocation = strPtr(loc)
	return rd, nil
}
