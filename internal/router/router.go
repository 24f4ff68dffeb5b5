package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/GabeGiancarlo/rideshare-app/internal/handler"    // import the handlers that implement business logic
	"github.com/GabeGiancarlo/rideshare-app/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.  Registration,
// login, refresh and logout live under /v1/auth and require no session:
// register creates the account and its rider or driver profile, login
// exchanges credentials for a token pair, refresh rotates the pair, and
// logout revokes the presented refresh token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	// Separate registration endpoints per profile type: the account fields
	// are shared, but the profile payloads differ.
	g.POST("/register/rider", a.RegisterRider)
	g.POST("/register/driver", a.RegisterDriver)
	// Login requires a role field so a user holding both profiles can pick
	// which one to operate as.
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token: the presented token is revoked and
	// a fresh pair is returned.
	g.POST("/refresh", a.Refresh)
	// Logout accepts a JSON body containing a `refresh_token` and
	// invalidates it.  No JWT is required, so a client with an expired
	// access token can still terminate its session.
	g.POST("/logout", a.Logout)
}

// RegisterDriver registers DRIVER-scoped endpoints under /v1/driver.
// All routes require a valid JWT and the DRIVER role.  The optional
// cache middleware, when non-nil, is applied to the read-only GET
// routes.
func RegisterDriver(e *echo.Echo, h *handler.DriverHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/driver",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleDriver),
	)
	gets := []echo.MiddlewareFunc{}
	if cache != nil {
		gets = append(gets, cache)
	}

	g.GET("/me", h.Me, gets...)
	g.GET("/rating", h.Rating, gets...)
	g.GET("/rides", h.Rides, gets...)
	g.GET("/rides/:id", h.RideDetail, gets...)

	// Mode toggle and the ride lifecycle transitions are writes and stay
	// uncached.
	g.POST("/toggle-mode", h.ToggleMode)
	g.POST("/rides/:id/start", h.Start)
	g.POST("/rides/:id/complete", h.Complete)
}

// RegisterRider registers RIDER-scoped endpoints under /v1/rider.
// All routes require a valid JWT and the RIDER role.
func RegisterRider(e *echo.Echo, h *handler.RiderHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/rider",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleRider),
	)
	gets := []echo.MiddlewareFunc{}
	if cache != nil {
		gets = append(gets, cache)
	}

	g.GET("/me", h.Me, gets...)
	g.GET("/rides", h.Rides, gets...)
	// Echo prefers the static "recent" segment over :id, so both can coexist.
	g.GET("/rides/recent", h.Recent, gets...)
	g.GET("/rides/:id", h.RideDetail, gets...)

	g.POST("/rides", h.RequestRide)
	g.POST("/rides/:id/rating", h.Rate)
}
