package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/GabeGiancarlo/rideshare-app/internal/repository"
)

// testCost keeps bcrypt cheap in tests.
const testCost = 4

// testSchema mirrors the production tables in SQLite form.  Declared
// DATETIME column types let the driver hand timestamps back as
// time.Time.
var testSchema = []string{
	`CREATE TABLE users (
		user_id       INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		email         TEXT NOT NULL,
		phone_number  TEXT,
		full_name     TEXT NOT NULL,
		created_at    DATETIME NOT NULL
	)`,
	`CREATE TABLE drivers (
		driver_id        INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id          INTEGER NOT NULL UNIQUE,
		license_number   TEXT NOT NULL,
		license_expiry   TEXT,
		vehicle_make     TEXT,
		vehicle_model    TEXT,
		vehicle_year     INTEGER,
		vehicle_color    TEXT,
		license_plate    TEXT,
		insurance_number TEXT,
		driver_mode      TEXT NOT NULL DEFAULT 'inactive',
		created_at       DATETIME NOT NULL
	)`,
	`CREATE TABLE riders (
		rider_id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id           INTEGER NOT NULL UNIQUE,
		payment_info      TEXT,
		preferred_payment TEXT,
		credit_card_last4 TEXT,
		default_location  TEXT,
		created_at        DATETIME NOT NULL
	)`,
	`CREATE TABLE rides (
		ride_id          INTEGER PRIMARY KEY AUTOINCREMENT,
		driver_id        INTEGER NOT NULL,
		rider_id         INTEGER NOT NULL,
		pickup_location  TEXT NOT NULL,
		dropoff_location TEXT NOT NULL,
		pickup_address   TEXT,
		dropoff_address  TEXT,
		ride_status      TEXT NOT NULL DEFAULT 'pending',
		fare_amount      REAL,
		pickup_time      DATETIME NOT NULL,
		dropoff_time     DATETIME,
		rating           INTEGER,
		rating_comment   TEXT,
		created_at       DATETIME NOT NULL
	)`,
	`CREATE TABLE refresh_tokens (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL,
		token_hash TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME,
		created_at DATETIME NOT NULL
	)`,
}

// newTestDB opens a fresh in-memory database for one test.  The DSN is
// keyed by the test name so parallel packages never share state.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	for _, stmt := range testSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			t.Fatalf("setup schema: %v", err)
		}
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newRiderFixture registers a rider account and returns its rider ID.
func newRiderFixture(t *testing.T, db *sql.DB, username string) uint64 {
	t.Helper()
	id, err := repository.NewRiderRepo(db).Register(context.Background(),
		username, "secret123", username+"@email.com", "555-0100", "Rider "+username,
		testCost, repository.RiderProfile{PreferredPayment: "Visa"})
	if err != nil {
		t.Fatalf("register rider %s: %v", username, err)
	}
	return id
}

// newDriverFixture registers a driver account and returns its driver ID.
func newDriverFixture(t *testing.T, db *sql.DB, username string) uint64 {
	t.Helper()
	id, err := repository.NewDriverRepo(db).Register(context.Background(),
		username, "secret123", username+"@email.com", "555-0200", "Driver "+username,
		testCost, repository.DriverProfile{
			LicenseNumber: "DL-" + username,
			VehicleMake:   "Toyota",
			VehicleModel:  "Camry",
			VehicleYear:   2020,
		})
	if err != nil {
		t.Fatalf("register driver %s: %v", username, err)
	}
	return id
}

// activateDriver flips a freshly registered driver into active mode.
func activateDriver(t *testing.T, db *sql.DB, driverID uint64) {
	t.Helper()
	mode, err := repository.NewDriverRepo(db).ToggleMode(context.Background(), driverID)
	if err != nil {
		t.Fatalf("toggle driver %d: %v", driverID, err)
	}
	if mode != "active" {
		t.Fatalf("expected active after first toggle, got %s", mode)
	}
}
