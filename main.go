package main

import (
	"log"
	"time"

	"github.com/Eursukkul/bitboletos/config"
	"github.com/Eursukkul/bitboletos/internal/consumer"
	"github.com/Eursukkul/bitboletos/internal/handler"
	"github.com/Eursukkul/bitboletos/internal/middleware"
	"github.com/Eursukkul/bitboletos/internal/models"
	"github.com/Eursukkul/bitboletos/internal/repository"
	"github.com/Eursukkul/bitboletos/internal/service"
	"github.com/Eursukkul/bitboletos/internal/session"
	"github.com/Eursukkul/bitboletos/pkg/database"
	"github.com/Eursukkul/bitboletos/pkg/mailer"
	"github.com/Eursukkul/bitboletos/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	db := database.Open(cfg.DBDriver, cfg.DSN())

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, rabbitmq.FavoritesQueue, rabbitmq.FavoritesBinding)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	// Sessions live in Redis so sign-out is visible to every instance.
	var store session.Keystore
	if rdb := database.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		defer rdb.Close()
		store = session.NewRedisKeystore(rdb, "bitboletos:")
	} else {
		log.Printf("[Session] falling back to in-memory keystore")
		store = session.NewMemoryKeystore()
	}

	sessions := session.NewManager(store, cfg.JWTSecret, cfg.SessionTTL)
	unsubscribe := sessions.Subscribe(func(c session.Change) {
		routingKey := rabbitmq.RoutingSignedIn
		switch c.Kind {
		case session.SignedOut:
			routingKey = rabbitmq.RoutingSignedOut
		case session.TokenRefreshed:
			return
		}
		msg := models.SessionChanged{
			UserID:    c.Session.UserID,
			SessionID: c.Session.ID,
			Kind:      string(c.Kind),
			At:        time.Now().UTC(),
		}
		if err := publisher.Publish(routingKey, msg); err != nil {
			log.Printf("[Session] publish %s: %v", routingKey, err)
		}
	})
	defer unsubscribe()

	var verificationMailer service.VerificationMailer
	if cfg.SMTPHost != "" {
		verificationMailer = mailer.New(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.FromEmail,
			FromName: cfg.FromName,
			BaseURL:  cfg.BaseURL,
		})
	}

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	refRepo := repository.NewReferenceRepository(db)
	favRepo := repository.NewFavoriteRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	userRepo := repository.NewUserRepository(db)
	ticketRepo := repository.NewTicketRepository(db)

	// Services
	catalogSvc := service.NewCatalogService(eventRepo, publisher, cfg.CatalogLimit)
	homeSvc := service.NewHomeService(refRepo, catalogSvc)
	favoriteSvc := service.NewFavoriteService(favRepo, eventRepo, publisher)
	profileSvc := service.NewProfileService(profileRepo, publisher)
	ticketSvc := service.NewTicketService(ticketRepo)
	authSvc := service.NewAuthService(userRepo, profileSvc, sessions, verificationMailer, cfg.RequireEmailVerification)

	consumer.NewFavoriteConsumer(favoriteSvc).Start(msgs)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "bitboletos"})
	})

	auth := middleware.Authenticate(sessions)
	limit := middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)

	handler.NewEventHandler(catalogSvc, homeSvc).RegisterRoutes(e, auth)
	handler.NewFavoriteHandler(favoriteSvc).RegisterRoutes(e, auth, limit)
	handler.NewAuthHandler(authSvc).RegisterRoutes(e, limit)
	handler.NewProfileHandler(profileSvc).RegisterRoutes(e, auth)
	handler.NewTicketHandler(ticketSvc).RegisterRoutes(e, auth)

	log.Printf("BitBoletos API starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
