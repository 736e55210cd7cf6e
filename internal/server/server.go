package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/planbiir/gthin/internal/config"
	"github.com/planbiir/gthin/internal/store"
	"github.com/planbiir/gthin/internal/tracks"
)

type Server struct {
	App   *fiber.App
	Cfg   config.Config
	Redis *redis.Client
}

// NewServer builds the app. Without a Redis client only /health and /thin
// are served.
func NewServer(cfg config.Config, redisClient *redis.Client) *Server {
	fiberCfg := fiber.Config{AppName: "gthin"}
	if cfg.BodyLimit > 0 {
		fiberCfg.BodyLimit = cfg.BodyLimit
	}

	app := fiber.New(fiberCfg)
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:   app,
		Cfg:   cfg,
		Redis: redisClient,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	var st tracks.Store
	if s.Redis != nil {
		st = store.New(s.Redis, s.Cfg.TrackTTL)
	}
	svc := tracks.NewService(st)

	tracks.RegisterThinRoute(s.App, svc)
	if st != nil {
		tracks.RegisterRoutes(s.App.Group("/tracks"), svc)
	}
}
