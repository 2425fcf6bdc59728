package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/gc-digital-net/crosspost/app/controllers"
	"github.com/gc-digital-net/crosspost/app/repository"
	"github.com/gc-digital-net/crosspost/internal/pkg/cache"
	"github.com/gc-digital-net/crosspost/internal/pkg/connect"
	"github.com/gc-digital-net/crosspost/internal/pkg/database"
	"github.com/gc-digital-net/crosspost/internal/pkg/env"
	"github.com/gc-digital-net/crosspost/internal/pkg/publish"
	"github.com/gc-digital-net/crosspost/internal/pkg/router"
	"github.com/gc-digital-net/crosspost/internal/pkg/scheduler"
)

func main() {
	app, dispatcher := NewApplication()
	dispatcher.Start()

	// stop the dispatch loop cleanly before the process exits
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		dispatcher.Stop()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() (*fiber.App, *scheduler.Dispatcher) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalRepositories()

	manager := connect.NewManager(connect.BuildProviders(), connect.NewPendingStore(), repos.Connection)
	service := scheduler.NewService(repos.Post, repos.QueueEntry)
	dispatcher := scheduler.NewDispatcher(repos.Post, repos.QueueEntry, manager, publish.NewRegistry())
	controllers.SetServices(manager, service)

	// Find the correct base path
	basePath := ""
	for _, path := range []string{"./", "../../", "../../../"} {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}
	if basePath == "" {
		panic("Could not find project root directory")
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 1048576, // 1 MiB, posts are text plus media URLs
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app, dispatcher
}
