package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework for routing

	"github.com/iliyamo/partner-booking/internal/handler"    // handlers implementing the endpoints
	"github.com/iliyamo/partner-booking/internal/middleware" // JWT, role, rate-limit and cache middleware
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check,
// used by load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers unauthenticated browse endpoints.  The cache
// middleware fronts them because listing data changes rarely; booking
// state is never served through these routes.
func RegisterPublic(e *echo.Echo, l *handler.ListingHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	// Browse all active listings, optionally filtered with ?category=
	g.GET("/listings", l.GetListings)
	// Listing details by id; inactive listings are hidden
	g.GET("/listings/:id", l.GetListing)
}

// RegisterPartnerConnect registers the partner onboarding endpoint.  It is
// unauthenticated by design: the connect code itself is the credential.
func RegisterPartnerConnect(e *echo.Echo, p *handler.PartnerHandler) {
	e.POST("/v1/partners/connect", p.Connect)
}

// RegisterBooking registers the requester-facing booking endpoints.  All
// of them require a USER token minted by the chat frontend; submission is
// additionally rate limited so one user cannot flood partners.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string, ratelimit echo.MiddlewareFunc) {
	g := e.Group("/v1/bookings")
	g.Use(middleware.JWTAuth(jwtSecret))

	user := g.Group("")
	user.Use(middleware.RequireRole(middleware.RoleUser))
	if ratelimit != nil {
		user.POST("", b.CreateBooking, ratelimit)
	} else {
		user.POST("", b.CreateBooking)
	}
	user.GET("", b.ListMyBookings)

	// Lookup is shared: requesters see their own bookings, partners see
	// bookings dispatched to them.  Ownership is enforced in the handler.
	both := g.Group("")
	both.Use(middleware.RequireRole(middleware.RoleUser, middleware.RolePartner))
	both.GET("/:id", b.GetBooking)
}

// RegisterPartner registers the partner-facing endpoints: the decision
// submission and the partner's own listing inventory.
func RegisterPartner(e *echo.Echo, d *handler.DecisionHandler, l *handler.ListingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(middleware.RolePartner))
	g.POST("/bookings/:id/decision", d.SubmitDecision)
	g.GET("/partners/me/listings", l.GetMyListings)
}
