package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/GabeGiancarlo/rideshare-app/internal/config"
	"github.com/GabeGiancarlo/rideshare-app/internal/middleware"
	"github.com/GabeGiancarlo/rideshare-app/internal/repository"
	"github.com/GabeGiancarlo/rideshare-app/internal/utils"
)

// AuthHandler bundles dependencies for registration and session
// endpoints.  Registration creates the user account and the rider or
// driver profile in one transaction; login issues an access/refresh
// token pair scoped to the profile the caller logs in as.
type AuthHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Riders  *repository.RiderRepo
	Drivers *repository.DriverRepo
	Tokens  *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, r *repository.RiderRepo, d *repository.DriverRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Riders: r, Drivers: d, Tokens: t}
}

// ----- DTOs -----

type accountReq struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	FullName    string `json:"full_name"`
}

type registerRiderReq struct {
	accountReq
	PaymentInfo      string `json:"payment_info"`
	PreferredPayment string `json:"preferred_payment"`
	CreditCardLast4  string `json:"credit_card_last4"`
	DefaultLocation  string `json:"default_location"`
}

type registerDriverReq struct {
	accountReq
	LicenseNumber   string `json:"license_number"`
	LicenseExpiry   string `json:"license_expiry"`
	VehicleMake     string `json:"vehicle_make"`
	VehicleModel    string `json:"vehicle_model"`
	VehicleYear     int    `json:"vehicle_year"`
	VehicleColor    string `json:"vehicle_color"`
	LicensePlate    string `json:"license_plate"`
	InsuranceNumber string `json:"insurance_number"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"` // rider | driver
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	UserID    uint64    `json:"user_id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	ProfileID uint64    `json:"profile_id"`
	Access    tokenPart `json:"access"`
	Refresh   tokenPart `json:"refresh"`
}

// validateAccount checks the shared required fields for any
// registration and reports a human-readable problem, if any.
func validateAccount(a *accountReq) string {
	a.Username = strings.TrimSpace(a.Username)
	a.Email = strings.TrimSpace(a.Email)
	a.FullName = strings.TrimSpace(a.FullName)
	switch {
	case a.Username == "" || a.Password == "" || a.Email == "" || a.FullName == "":
		return "username, password, email and full_name are required"
	case !utils.ValidEmail(a.Email):
		return "invalid email format"
	case !utils.ValidPhone(a.PhoneNumber):
		return "invalid phone number format"
	}
	return ""
}

// RegisterRider creates a user and rider profile atomically.
func (h *AuthHandler) RegisterRider(c echo.Context) error {
	var req registerRiderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := validateAccount(&req.accountReq); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	riderID, err := h.Riders.Register(ctx, req.Username, req.Password, req.Email, req.PhoneNumber, req.FullName,
		h.Cfg.BcryptCost, repository.RiderProfile{
			PaymentInfo:      req.PaymentInfo,
			PreferredPayment: req.PreferredPayment,
			CreditCardLast4:  req.CreditCardLast4,
			DefaultLocation:  req.DefaultLocation,
		})
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create rider failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"rider_id": riderID})
}

// RegisterDriver creates a user and driver profile atomically.  The
// driver starts in inactive mode.
func (h *AuthHandler) RegisterDriver(c echo.Context) error {
	var req registerDriverReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := validateAccount(&req.accountReq); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if strings.TrimSpace(req.LicenseNumber) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "license_number is required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	driverID, err := h.Drivers.Register(ctx, req.Username, req.Password, req.Email, req.PhoneNumber, req.FullName,
		h.Cfg.BcryptCost, repository.DriverProfile{
			LicenseNumber:   strings.TrimSpace(req.LicenseNumber),
			LicenseExpiry:   req.LicenseExpiry,
			VehicleMake:     req.VehicleMake,
			VehicleModel:    req.VehicleModel,
			VehicleYear:     req.VehicleYear,
			VehicleColor:    req.VehicleColor,
			LicensePlate:    req.LicensePlate,
			InsuranceNumber: req.InsuranceNumber,
		})
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create driver failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"driver_id": driverID})
}

// Login verifies the credentials, loads the requested profile and
// returns a fresh token pair.  A wrong password and an unknown
// username are indistinguishable to the caller.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != middleware.RoleRider && role != middleware.RoleDriver {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be rider or driver"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	profileID, err := h.profileID(ctx, role, u.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no " + strings.ToLower(role) + " profile for this user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return h.issueTokens(c, http.StatusOK, u.ID, u.Username, u.FullName, role, profileID)
}

// Refresh validates the presented refresh token, revokes it, and
// issues a new pair (token rotation).
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	// Restore the role from whichever profile the user owns; a user
	// holding both profiles resumes as a driver.
	role := middleware.RoleDriver
	profileID, err := h.profileID(ctx, role, userID)
	if errors.Is(err, repository.ErrNotFound) {
		role = middleware.RoleRider
		profileID, err = h.profileID(ctx, role, userID)
	}
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no profile for this user"})
	}

	return h.issueTokens(c, http.StatusOK, u.ID, u.Username, u.FullName, role, profileID)
}

// Logout revokes the presented refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) profileID(ctx context.Context, role string, userID uint64) (uint64, error) {
	if role == middleware.RoleDriver {
		d, err := h.Drivers.GetByUserID(ctx, userID)
		return d.ID, err
	}
	r, err := h.Riders.GetByUserID(ctx, userID)
	return r.ID, err
}

func (h *AuthHandler) issueTokens(c echo.Context, status int, userID uint64, username, fullName, role string, profileID uint64) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, role, profileID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tokens.StoreRefresh(ctx, userID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(status, authResp{
		UserID:    userID,
		Username:  username,
		FullName:  fullName,
		Role:      role,
		ProfileID: profileID,
		Access:    tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh:   tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// reqCtx bounds the duration of database calls made by a handler.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
