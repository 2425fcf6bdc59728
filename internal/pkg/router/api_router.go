package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/gc-digital-net/crosspost/app/controllers"
	"github.com/gc-digital-net/crosspost/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "crosspost api",
		})
	})

	v1 := api.Group("/v1", middleware.RequireAPISessionAuth)
	v1.Get("/connections", controllers.HandleListConnections)
	v1.Post("/posts", controllers.HandleCreatePost)
	v1.Get("/posts", controllers.HandleListPosts)
	v1.Post("/posts/:uuid/entries/:id/cancel", controllers.HandleCancelEntry)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
