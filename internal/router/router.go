package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/stockify/stockify-server/internal/handler"    // handlers that implement the endpoint logic
	"github.com/stockify/stockify-server/internal/middleware" // middleware for authentication and role enforcement
	"github.com/stockify/stockify-server/internal/model"
)

// RegisterRoutes registers routes that require no authentication on
// the provided Echo instance. Currently it exposes only a health
// check, used by load balancers and monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// Deps bundles everything the API routes need. Auth is the bearer
// authentication middleware; Cache decorates hot read endpoints and
// may be a pass-through when Redis is unavailable.
type Deps struct {
	SyncSecret string

	Users     *handler.UserHandler
	Webhook   *handler.WebhookHandler
	Products  *handler.ProductHandler
	Expenses  *handler.ExpenseHandler
	Dashboard *handler.DashboardHandler

	Auth  echo.MiddlewareFunc
	Cache echo.MiddlewareFunc
}

// RegisterAPI registers the application routes and their access gates.
func RegisterAPI(e *echo.Echo, d Deps) {
	// Webhook deliveries authenticate with a signature over the raw
	// body, not a bearer token, so the route stays outside the
	// authenticated groups.
	e.POST("/webhooks/clerk", d.Webhook.Handle)

	u := e.Group("/users")
	// Listing and deletion expose every account; both are ADMIN only.
	u.GET("", d.Users.GetUsers, d.Auth, middleware.RequireRole(model.RoleAdmin))
	u.DELETE("/:userId", d.Users.DeleteUser, d.Auth, middleware.RequireRole(model.RoleAdmin))
	u.PATCH("/:userId/role", d.Users.UpdateUserRole, d.Auth, middleware.RequireRole(model.RoleAdmin))
	// Any authenticated user may read their own record.
	u.GET("/me", d.Users.GetCurrentUser, d.Auth)
	// The mirror endpoint is server-to-server and gated by the shared
	// secret header instead of a bearer token.
	u.POST("", d.Users.SyncUser, middleware.RequireSyncSecret(d.SyncSecret))

	// The cache runs after authentication so an unauthenticated
	// request can never be served a cached body.
	e.GET("/products", d.Products.GetProducts, d.Auth, d.Cache)
	e.POST("/products", d.Products.CreateProduct, d.Auth, middleware.RequireRole(model.RoleAdmin, model.RoleStaff))
	e.GET("/expenses", d.Expenses.GetExpensesByCategory, d.Auth, middleware.RequireRole(model.RoleAdmin, model.RoleManager))
	e.GET("/dashboard", d.Dashboard.GetDashboardMetrics, d.Auth, d.Cache)
}
