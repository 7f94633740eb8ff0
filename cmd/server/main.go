package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tablebook/cafe-reservation/internal/config"
	"github.com/tablebook/cafe-reservation/internal/database"
	"github.com/tablebook/cafe-reservation/internal/handler"
	"github.com/tablebook/cafe-reservation/internal/middleware"
	"github.com/tablebook/cafe-reservation/internal/outbox"
	"github.com/tablebook/cafe-reservation/internal/repository"
	"github.com/tablebook/cafe-reservation/internal/router"
	"github.com/tablebook/cafe-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories
	users := repository.NewUserRepo(db)
	cafes := repository.NewCafeRepo(db)
	tables := repository.NewTableRepo(db)
	slots := repository.NewSlotRepo(db)
	bookings := repository.NewBookingRepo(db)
	promotions := repository.NewPromotionRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Outbox: publisher for the HTTP path, consumer goroutine for
	// delivery.  The mailer is nil when SMTP is not configured; the
	// consumer still logs every notification.
	pub := outbox.NewPublisher()
	consumer := &outbox.Consumer{Users: users, Mailer: outbox.NewMailerFromEnv()}
	go consumer.Start()

	// Services
	userSvc := service.NewUserService(users, cfg.BcryptCost)
	cafeSvc := service.NewCafeService(cafes, users)
	tableSvc := service.NewTableService(tables, cafes)
	slotSvc := service.NewSlotService(slots, cafes)
	bookingSvc := service.NewBookingService(bookings, cafes, tables, slots, pub, nil)
	promotionSvc := service.NewPromotionService(promotions, cafes, pub)

	e := echo.New()

	// Redis-backed rate limiting and response caching; both degrade to
	// pass-through when Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: cache and rate limit disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userSvc, users, tokens), cfg.JWTSecret)
	router.RegisterAPI(e, router.APIHandlers{
		Users:      handler.NewUserHandler(userSvc, users),
		Cafes:      handler.NewCafeHandler(cafeSvc, users),
		Tables:     handler.NewTableHandler(tableSvc, users),
		Slots:      handler.NewSlotHandler(slotSvc, users),
		Bookings:   handler.NewBookingHandler(bookingSvc, users),
		Promotions: handler.NewPromotionHandler(promotionSvc, users),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
