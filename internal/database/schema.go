package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema holds the MySQL DDL for every table, in dependency order.
// Statements are idempotent so Migrate can run at every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id       BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(64)  NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL,
		phone_number  VARCHAR(32)  NULL,
		full_name     VARCHAR(255) NOT NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS drivers (
		driver_id        BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id          BIGINT UNSIGNED NOT NULL UNIQUE,
		license_number   VARCHAR(64)  NOT NULL,
		license_expiry   VARCHAR(10)  NULL,
		vehicle_make     VARCHAR(64)  NULL,
		vehicle_model    VARCHAR(64)  NULL,
		vehicle_year     INT          NULL,
		vehicle_color    VARCHAR(32)  NULL,
		license_plate    VARCHAR(16)  NULL,
		insurance_number VARCHAR(64)  NULL,
		driver_mode      ENUM('active','inactive') NOT NULL DEFAULT 'inactive',
		created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_drivers_user FOREIGN KEY (user_id) REFERENCES users(user_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS riders (
		rider_id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id           BIGINT UNSIGNED NOT NULL UNIQUE,
		payment_info      VARCHAR(64)  NULL,
		preferred_payment VARCHAR(64)  NULL,
		credit_card_last4 VARCHAR(4)   NULL,
		default_location  VARCHAR(255) NULL,
		created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_riders_user FOREIGN KEY (user_id) REFERENCES users(user_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS rides (
		ride_id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		driver_id        BIGINT UNSIGNED NOT NULL,
		rider_id         BIGINT UNSIGNED NOT NULL,
		pickup_location  VARCHAR(255) NOT NULL,
		dropoff_location VARCHAR(255) NOT NULL,
		pickup_address   VARCHAR(255) NULL,
		dropoff_address  VARCHAR(255) NULL,
		ride_status      ENUM('pending','in_progress','completed') NOT NULL DEFAULT 'pending',
		fare_amount      DECIMAL(10,2) NULL,
		pickup_time      DATETIME NOT NULL,
		dropoff_time     DATETIME NULL,
		rating           TINYINT NULL,
		rating_comment   VARCHAR(512) NULL,
		created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_rides_driver FOREIGN KEY (driver_id) REFERENCES drivers(driver_id),
		CONSTRAINT fk_rides_rider  FOREIGN KEY (rider_id)  REFERENCES riders(rider_id),
		CONSTRAINT chk_rides_rating CHECK (rating IS NULL OR rating BETWEEN 1 AND 5)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_tokens_user FOREIGN KEY (user_id) REFERENCES users(user_id)
	) ENGINE=InnoDB`,
}

// Migrate creates any missing tables.  It is safe to call on every
// startup; existing tables are left untouched.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
