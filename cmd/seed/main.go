package main // Populates the database with sample accounts and rides for manual testing

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/GabeGiancarlo/rideshare-app/internal/config"
	"github.com/GabeGiancarlo/rideshare-app/internal/database"
	"github.com/GabeGiancarlo/rideshare-app/internal/model"
	"github.com/GabeGiancarlo/rideshare-app/internal/utils"
)

// Every seeded account uses this password.
const seedPassword = "password123"

type seedUser struct {
	username, email, phone, fullName string
}

var seedUsers = []seedUser{
	{"john_doe", "john.doe@email.com", "555-0101", "John Doe"},
	{"jane_smith", "jane.smith@email.com", "555-0102", "Jane Smith"},
	{"mike_wilson", "mike.wilson@email.com", "555-0103", "Mike Wilson"},
	{"sarah_jones", "sarah.jones@email.com", "555-0104", "Sarah Jones"},
	{"david_brown", "david.brown@email.com", "555-0105", "David Brown"},
	{"emily_davis", "emily.davis@email.com", "555-0106", "Emily Davis"},
}

func main() {
	cfg := config.Load()

	pass := database.ResolvePassword(cfg.DBPass, cfg.DBUser)
	db, err := database.Open(cfg.DBUser, pass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := seed(ctx, db, cfg.BcryptCost); err != nil {
		log.Fatalf("seed: %v", err)
	}

	fmt.Println("\nSample data inserted successfully!")
	fmt.Println("\nTest accounts (password: " + seedPassword + "):")
	fmt.Println("  Drivers: john_doe, jane_smith, mike_wilson")
	fmt.Println("  Riders:  sarah_jones, david_brown, emily_davis")
}

// seed inserts everything in one transaction so a partial run leaves
// the database untouched.
func seed(ctx context.Context, db *sql.DB, bcryptCost int) error {
	hash, err := utils.HashPassword(seedPassword, bcryptCost)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()

	fmt.Println("Inserting users...")
	userIDs := make([]int64, 0, len(seedUsers))
	for _, u := range seedUsers {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO users (username, password_hash, email, phone_number, full_name, created_at)
			 VALUES (?,?,?,?,?,?)`,
			u.username, hash, u.email, u.phone, u.fullName, now)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.username, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		userIDs = append(userIDs, id)
	}

	fmt.Println("Inserting drivers...")
	drivers := []struct {
		userIdx                                     int
		license, expiry, mk, mdl, color, plate, ins string
		year                                        int
	}{
		{0, "DL123456", "2026-12-31", "Toyota", "Camry", "Silver", "ABC-1234", "INS001", 2020},
		{1, "DL234567", "2027-06-30", "Honda", "Accord", "Blue", "XYZ-5678", "INS002", 2021},
		{2, "DL345678", "2026-09-15", "Ford", "Fusion", "Black", "DEF-9012", "INS003", 2019},
	}
	driverIDs := make([]int64, 0, len(drivers))
	for _, d := range drivers {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO drivers (user_id, license_number, license_expiry, vehicle_make, vehicle_model,
			                      vehicle_year, vehicle_color, license_plate, insurance_number, driver_mode, created_at)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			userIDs[d.userIdx], d.license, d.expiry, d.mk, d.mdl, d.year, d.color, d.plate, d.ins,
			model.ModeActive, now)
		if err != nil {
			return fmt.Errorf("insert driver %s: %w", d.license, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		driverIDs = append(driverIDs, id)
	}

	fmt.Println("Inserting riders...")
	riders := []struct {
		userIdx                        int
		payment, preferred, last4, loc any
	}{
		{3, "Credit Card", "Visa", "1234", "Downtown Plaza"},
		{4, "Debit Card", "Mastercard", "5678", "University Campus"},
		{5, "PayPal", "PayPal", nil, "Airport Terminal"},
	}
	riderIDs := make([]int64, 0, len(riders))
	for _, r := range riders {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO riders (user_id, payment_info, preferred_payment, credit_card_last4, default_location, created_at)
			 VALUES (?,?,?,?,?,?)`,
			userIDs[r.userIdx], r.payment, r.preferred, r.last4, r.loc, now)
		if err != nil {
			return fmt.Errorf("insert rider: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		riderIDs = append(riderIDs, id)
	}

	fmt.Println("Inserting rides...")
	rides := []struct {
		driverIdx, riderIdx           int
		pickup, dropoff, pAddr, dAddr string
		fare                          float64
		rating                        int
		comment                       string
	}{
		{0, 0, "123 Main St", "456 Oak Ave", "123 Main Street, City", "456 Oak Avenue, City", 25.50, 5, "Excellent driver, very professional!"},
		{1, 1, "789 Pine Rd", "321 Elm Blvd", "789 Pine Road, City", "321 Elm Boulevard, City", 18.75, 4, "Good ride, arrived on time."},
		{0, 2, "555 Park Ave", "777 Market St", "555 Park Avenue, City", "777 Market Street, City", 32.00, 5, "Perfect service!"},
		{2, 0, "999 Beach Dr", "111 Hill Rd", "999 Beach Drive, City", "111 Hill Road, City", 28.50, 3, "Driver was okay."},
	}
	for _, r := range rides {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rides (driver_id, rider_id, pickup_location, dropoff_location, pickup_address,
			                    dropoff_address, ride_status, fare_amount, pickup_time, dropoff_time,
			                    rating, rating_comment, created_at)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			driverIDs[r.driverIdx], riderIDs[r.riderIdx], r.pickup, r.dropoff, r.pAddr, r.dAddr,
			model.StatusCompleted, r.fare, now, now, r.rating, r.comment, now); err != nil {
			return fmt.Errorf("insert ride: %w", err)
		}
	}

	return tx.Commit()
}
