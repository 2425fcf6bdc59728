package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gc-digital-net/crosspost/app/controllers"
	"github.com/gc-digital-net/crosspost/internal/pkg/middleware"
	"github.com/gc-digital-net/crosspost/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// OAuth connect flow. The callback must stay reachable without the
	// RequireAuth redirect: it reports session problems via its own error
	// code instead of bouncing the provider redirect to /login.
	app.Get("/connect/:platform", middleware.RequireAuth, controllers.HandleConnectInitiate)
	app.Get("/connect/:platform/callback", controllers.HandleConnectCallback)
	app.Post("/connect/:platform/disconnect", middleware.RequireAuth, controllers.HandleDisconnect)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
