package handler_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	_ "modernc.org/sqlite"

	"github.com/GabeGiancarlo/rideshare-app/internal/config"
	"github.com/GabeGiancarlo/rideshare-app/internal/handler"
	"github.com/GabeGiancarlo/rideshare-app/internal/repository"
	"github.com/GabeGiancarlo/rideshare-app/internal/router"
)

const testSecret = "handler-test-secret"

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

// setupServer wires the full route table over an in-memory database
// and returns a running test server.
func setupServer(t *testing.T) *httptest.Server {
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

	cfg := config.Config{
		JWTSecret:      testSecret,
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
		BcryptCost:     4,
	}
	users := repository.NewUserRepo(db)
	riders := repository.NewRiderRepo(db)
	drivers := repository.NewDriverRepo(db)
	rides := repository.NewRideRepo(db)
	tokens := repository.NewTokenRepo(db)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, riders, drivers, tokens))
	router.RegisterDriver(e, handler.NewDriverHandler(drivers, rides), cfg.JWTSecret, nil)
	router.RegisterRider(e, handler.NewRiderHandler(riders, drivers, rides), cfg.JWTSecret, nil)

	srv := httptest.NewServer(e)
	t.Cleanup(func() { srv.Close(); db.Close() })
	return srv
}

func postJSON(t *testing.T, url string, body map[string]any, bearer string) (*http.Response, map[string]any) {
	t.Helper()
	b, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res, out
}

func getJSON(t *testing.T, url, bearer string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res, out
}

func registerRider(t *testing.T, srv *httptest.Server, username string) {
	t.Helper()
	res, body := postJSON(t, srv.URL+"/v1/auth/register/rider", map[string]any{
		"username":  username,
		"password":  "password123",
		"email":     username + "@email.com",
		"full_name": "Rider " + username,
	}, "")
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("register rider: expected 201, got %d (%v)", res.StatusCode, body)
	}
}

func registerDriver(t *testing.T, srv *httptest.Server, username string) {
	t.Helper()
	res, body := postJSON(t, srv.URL+"/v1/auth/register/driver", map[string]any{
		"username":       username,
		"password":       "password123",
		"email":          username + "@email.com",
		"full_name":      "Driver " + username,
		"license_number": "DL-" + username,
		"vehicle_make":   "Honda",
		"vehicle_model":  "Accord",
	}, "")
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("register driver: expected 201, got %d (%v)", res.StatusCode, body)
	}
}

// loginAs returns the access token for the given account and role.
func loginAs(t *testing.T, srv *httptest.Server, username, role string) (string, map[string]any) {
	t.Helper()
	res, body := postJSON(t, srv.URL+"/v1/auth/login", map[string]any{
		"username": username,
		"password": "password123",
		"role":     role,
	}, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login %s as %s: expected 200, got %d (%v)", username, role, res.StatusCode, body)
	}
	access := body["access"].(map[string]any)["token"].(string)
	return access, body
}

func TestHealthz(t *testing.T) {
	srv := setupServer(t)
	res, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
}

func TestRegisterValidation(t *testing.T) {
	srv := setupServer(t)

	res, _ := postJSON(t, srv.URL+"/v1/auth/register/rider", map[string]any{
		"username": "x", "password": "p", "email": "bad-email", "full_name": "X",
	}, "")
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad email: expected 400, got %d", res.StatusCode)
	}

	res, _ = postJSON(t, srv.URL+"/v1/auth/register/driver", map[string]any{
		"username": "y", "password": "p", "email": "y@email.com", "full_name": "Y",
	}, "")
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing license: expected 400, got %d", res.StatusCode)
	}

	registerRider(t, srv, "sarah_jones")
	res, _ = postJSON(t, srv.URL+"/v1/auth/register/rider", map[string]any{
		"username": "sarah_jones", "password": "p2", "email": "dup@email.com", "full_name": "Dup",
	}, "")
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate username: expected 409, got %d", res.StatusCode)
	}
}

func TestLoginAndRoleEnforcement(t *testing.T) {
	srv := setupServer(t)
	registerRider(t, srv, "sarah_jones")
	registerDriver(t, srv, "mike_wilson")

	// Wrong password is rejected without detail.
	res, _ := postJSON(t, srv.URL+"/v1/auth/login", map[string]any{
		"username": "sarah_jones", "password": "nope", "role": "rider",
	}, "")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", res.StatusCode)
	}
	// A rider cannot log in as a driver.
	res, _ = postJSON(t, srv.URL+"/v1/auth/login", map[string]any{
		"username": "sarah_jones", "password": "password123", "role": "driver",
	}, "")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("role mismatch: expected 401, got %d", res.StatusCode)
	}

	riderTok, loginBody := loginAs(t, srv, "sarah_jones", "rider")
	if loginBody["role"] != "RIDER" {
		t.Fatalf("unexpected role in login body: %v", loginBody["role"])
	}
	driverTok, _ := loginAs(t, srv, "mike_wilson", "driver")

	// Rider tokens are rejected on driver routes and vice versa.
	res, _ = getJSON(t, srv.URL+"/v1/driver/me", riderTok)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("rider on driver route: expected 403, got %d", res.StatusCode)
	}
	res, _ = getJSON(t, srv.URL+"/v1/rider/me", driverTok)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("driver on rider route: expected 403, got %d", res.StatusCode)
	}
	// Missing token is unauthorized.
	res, _ = getJSON(t, srv.URL+"/v1/rider/me", "")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", res.StatusCode)
	}

	res, body := getJSON(t, srv.URL+"/v1/rider/me", riderTok)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("rider me: expected 200, got %d (%v)", res.StatusCode, body)
	}
}

func TestRefreshRotationAndLogout(t *testing.T) {
	srv := setupServer(t)
	registerRider(t, srv, "sarah_jones")

	_, loginBody := loginAs(t, srv, "sarah_jones", "rider")
	refresh := loginBody["refresh"].(map[string]any)["token"].(string)

	// Rotate: the old token dies, the new one works.
	res, rotated := postJSON(t, srv.URL+"/v1/auth/refresh", map[string]any{"refresh_token": refresh}, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d (%v)", res.StatusCode, rotated)
	}
	res, _ = postJSON(t, srv.URL+"/v1/auth/refresh", map[string]any{"refresh_token": refresh}, "")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("reused refresh: expected 401, got %d", res.StatusCode)
	}

	next := rotated["refresh"].(map[string]any)["token"].(string)
	res, _ = postJSON(t, srv.URL+"/v1/auth/logout", map[string]any{"refresh_token": next}, "")
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", res.StatusCode)
	}
	res, _ = postJSON(t, srv.URL+"/v1/auth/refresh", map[string]any{"refresh_token": next}, "")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: expected 401, got %d", res.StatusCode)
	}
}
