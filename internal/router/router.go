package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/wedding-guests/internal/handler"    // import the handlers that implement the directory endpoints
	"github.com/iliyamo/wedding-guests/internal/middleware" // import middleware for admin auth, caching and rate limiting
	"github.com/iliyamo/wedding-guests/internal/utils"
)

// RegisterRoutes registers routes that do not depend on any backend on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring poll this to verify the process is up.
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated read endpoints.  The cache
// middleware is applied per route so only the guest list and manifest are
// cached; it is a pass-through when Redis is not configured.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	e.GET("/guests", p.ListGuests, cache)
	e.GET("/manifest/all", p.Manifest, cache)
}

// AdminLimits are the rate limiters of the admin endpoints.  A nil limiter
// is skipped.
type AdminLimits struct {
	Session echo.MiddlewareFunc // per client address, see middleware.ScopeSession
	Write   echo.MiddlewareFunc // per admin subject, see middleware.ScopeWrite
}

// RegisterAdmin registers the admin endpoints.  The session endpoint checks
// the secret itself.  The write endpoint runs AdminAuth and RequireRole
// before its limiter and the handler so a bad secret never reaches the
// database or storage, and the limiter can count per subject.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, s *handler.SessionHandler, auth middleware.AdminAuthConfig, limits AdminLimits) {
	g := e.Group("/admin")
	g.POST("/session", s.Create, present(limits.Session)...)
	write := append([]echo.MiddlewareFunc{middleware.AdminAuth(auth), middleware.RequireRole(utils.RoleAdmin)}, present(limits.Write)...)
	g.POST("/guest", a.SaveGuest, write...)
}

func present(mw ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mw))
	for _, m := range mw {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// RegisterMedia registers the media proxy.
func RegisterMedia(e *echo.Echo, m *handler.MediaHandler) {
	e.GET("/media/:bucket/*", m.Serve)
}
