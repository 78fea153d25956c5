package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	_ "restobill/docs"
	"restobill/internal/caching"
	"restobill/internal/common"
	"restobill/internal/config"
	"restobill/internal/events"
	"restobill/internal/handlers"
	"restobill/internal/jobs/background"
	"restobill/internal/logging"
	"restobill/internal/middleware"
	"restobill/internal/models"
	"restobill/internal/repositories"
	"restobill/internal/services"
	"restobill/internal/websocket"
	"restobill/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

func newCache(cfg *config.Config, logger *logrus.Logger) caching.Cache {
	timeout := time.Duration(cfg.Cache.RequestTimeoutMillis) * time.Millisecond
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		return caching.NewRedisCache(cfg.Cache.RedisURL, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, logger)
	case config.CacheBackendUpstash:
		return caching.NewUpstashCache(cfg.Cache.UpstashURL, cfg.Cache.UpstashToken, timeout)
	default:
		return caching.NewNoopCache()
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores
	mongoClient, db, err := database.ConnectMongo(ctx, cfg.Mongo.URL, cfg.Mongo.Database)
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background())
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.WithError(err).Warn("failed to ensure indexes")
	}
	mongoPing := handlers.PingFunc(func(ctx context.Context) error {
		return mongoClient.Ping(ctx, readpref.Primary())
	})

	cache := newCache(cfg, logger)
	aside := caching.NewAside(cache, logger, time.Duration(cfg.Cache.RequestTimeoutMillis)*time.Millisecond)
	logger.WithField("backend", cache.Backend()).Info("cache configured")

	userRepo := repositories.NewUserRepo(db)
	orderRepo := repositories.NewOrderRepo(db)
	tableRepo := repositories.NewTableRepo(db)
	menuRepo := repositories.NewMenuRepo(db)
	paymentRepo := repositories.NewPaymentRepo(db)
	ticketRepo := repositories.NewSupportTicketRepo(db)

	auditSvc := services.NewNoopAuditLogsService()
	if cfg.Audit.DatabaseURL != "" {
		pool, err := database.NewPool(ctx, cfg.Audit.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to audit database: %w", err)
		}
		defer pool.Close()
		auditRepo := repositories.NewAuditLogsRepo(pool)
		if err := auditRepo.EnsureSchema(ctx); err != nil {
			return err
		}
		auditSvc = services.NewAuditLogsService(auditRepo, logger)
	}

	// Live feed and events
	var publisher events.OrderEventPublisher = events.NewNoopPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic, logger)
		if err != nil {
			return err
		}
		publisher = kafka
	}
	defer publisher.Close()

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)
	notifier := services.NewOrderNotifier(publisher, hub, logger)

	var menuImages services.MenuImageStore
	if cfg.Storage.Endpoint != "" {
		store, err := services.NewMinioImageStore(services.ImageStoreOptions{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Region:    cfg.Storage.Region,
			Bucket:    cfg.Storage.Bucket,
			URLExpiry: time.Duration(cfg.Storage.ImageURLHours) * time.Hour,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			logger.WithError(err).Warn("menu image bucket unavailable")
		}
		menuImages = store
	}

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = random.String(32)
		logger.Warn("JWT_SECRET not set, using a generated secret; tokens will not survive a restart")
	}
	authSvc, err := services.NewAuthService(jwtSecret, time.Duration(cfg.Auth.JWTTTLHours)*time.Hour, services.IdentityProvider{
		JWKSURL:  cfg.SuperAdmin.JWKSURL,
		Issuer:   cfg.SuperAdmin.JWTIssuer,
		Audience: cfg.SuperAdmin.JWTAudience,
	}, logger)
	if err != nil {
		return err
	}
	defer authSvc.Close()

	// Services
	policy, err := models.ParseActiveOrdersPolicy(cfg.Orders.ActiveOrdersPolicy)
	if err != nil {
		return err
	}
	orderSvc := services.NewOrderService(orderRepo, tableRepo, aside, notifier, services.OrderCacheTTLs{
		ActiveOrders: config.TTL(cfg.Cache.ActiveOrdersTTL),
		TodayBills:   config.TTL(cfg.Cache.TodayBillsTTL),
	}, policy, logger)
	paymentSvc := services.NewPaymentService(paymentRepo, orderRepo, aside, notifier)
	tableSvc := services.NewTableService(tableRepo, aside, config.TTL(cfg.Cache.TablesTTL))
	menuSvc := services.NewMenuService(menuRepo, aside, config.TTL(cfg.Cache.MenuTTL), menuImages, logger)
	userSvc := services.NewUserService(userRepo, authSvc, aside, cfg.Auth.TrialDays, logger)
	ticketSvc := services.NewTicketService(ticketRepo)
	superAdminSvc := services.NewSuperAdminService(services.SuperAdminRepos{
		Users:    userRepo,
		Orders:   orderRepo,
		Tables:   tableRepo,
		Menu:     menuRepo,
		Payments: paymentRepo,
		Tickets:  ticketRepo,
	}, orderSvc, authSvc, auditSvc, aside, config.TTL(cfg.Cache.SuperAdminTTL), services.SuperAdminCredentials{
		Username: cfg.SuperAdmin.Username,
		Password: cfg.SuperAdmin.Password,
	}, logger)

	scheduler, err := background.NewJobScheduler(background.JobDependencies{
		Database:      mongoPing,
		Cache:         cache,
		Orders:        orderRepo,
		Subscriptions: superAdminSvc,
	}, logger)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP
	e := echo.New()
	e.HideBanner = true
	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())

	healthHandlers := handlers.NewHealthHandlers(mongoPing, cache, version)
	e.GET("/health", healthHandlers.LivenessCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/detailed", healthHandlers.DetailedHealthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	jwtMW := middleware.JWTMiddleware(authSvc)
	auditMW := middleware.NewAuditMiddleware(auditSvc, logger).AuditRequest()
	tenantMW := []echo.MiddlewareFunc{jwtMW, middleware.RequireOrganization(), auditMW}

	api := e.Group("/api")

	authHandlers := handlers.NewAuthHandlers(userSvc)
	auth := api.Group("/auth")
	auth.POST("/register", authHandlers.Register)
	auth.POST("/login", authHandlers.Login)
	auth.GET("/me", authHandlers.Me, jwtMW)

	orderHandlers := handlers.NewOrderHandlers(orderSvc, services.NewReceiptService(), userSvc)
	paymentHandlers := handlers.NewPaymentHandlers(paymentSvc)
	orders := api.Group("/orders", tenantMW...)
	orders.GET("", orderHandlers.ListOrders)
	orders.POST("", orderHandlers.CreateOrder)
	orders.GET("/active", orderHandlers.ListActiveOrders)
	orders.GET("/today-bills", orderHandlers.ListTodayBills)
	orders.GET("/:id", orderHandlers.GetOrder)
	orders.PUT("/:id", orderHandlers.UpdateOrder)
	orders.PUT("/:id/status", orderHandlers.UpdateOrderStatus)
	orders.DELETE("/:id", orderHandlers.DeleteOrder)
	orders.GET("/:id/receipt", orderHandlers.GetReceipt)
	orders.POST("/:id/payments", paymentHandlers.RecordPayment)
	api.GET("/payments", paymentHandlers.ListPayments, tenantMW...)

	tableHandlers := handlers.NewTableHandlers(tableSvc)
	tables := api.Group("/tables", tenantMW...)
	tables.GET("", tableHandlers.ListTables)
	tables.POST("", tableHandlers.CreateTable)
	tables.GET("/:id", tableHandlers.GetTable)
	tables.PUT("/:id", tableHandlers.UpdateTable)
	tables.DELETE("/:id", tableHandlers.DeleteTable)

	menuHandlers := handlers.NewMenuHandlers(menuSvc)
	menu := api.Group("/menu", tenantMW...)
	menu.GET("", menuHandlers.ListMenu)
	menu.POST("", menuHandlers.CreateMenuItem)
	menu.GET("/:id", menuHandlers.GetMenuItem)
	menu.PUT("/:id", menuHandlers.UpdateMenuItem)
	menu.DELETE("/:id", menuHandlers.DeleteMenuItem)
	menu.POST("/:id/image", menuHandlers.UploadMenuImage, echoMiddleware.BodyLimit("6M"))

	userHandlers := handlers.NewUserHandlers(userSvc)
	staff := api.Group("/staff", append(tenantMW, middleware.RequireRoles(common.RoleAdmin))...)
	staff.GET("", userHandlers.ListStaff)
	staff.POST("", userHandlers.CreateStaff)
	staff.DELETE("/:id", userHandlers.DeleteStaff)

	ticketHandlers := handlers.NewTicketHandlers(ticketSvc)
	tickets := api.Group("/support-tickets", tenantMW...)
	tickets.GET("", ticketHandlers.ListTickets)
	tickets.POST("", ticketHandlers.CreateTicket)

	wsHandlers := handlers.NewWebsocketHandlers(hub)
	api.GET("/ws/orders", wsHandlers.OrdersFeed, jwtMW, middleware.RequireOrganization())

	// Super-admin panel
	vm := middleware.NewVersionMiddleware(cfg.SuperAdmin.PanelVersion, cfg.SuperAdmin)
	superAdminHandlers := handlers.NewSuperAdminHandlers(superAdminSvc, ticketSvc, scheduler)
	auditHandlers := handlers.NewAuditLogsHandlers(auditSvc)

	panel := api.Group("/super-admin", vm.VersionHeader())
	panel.POST("/login", superAdminHandlers.Login)

	operator := []echo.MiddlewareFunc{jwtMW, middleware.RequireRoles(common.RoleSuperAdmin), auditMW}
	feature := func(name string) []echo.MiddlewareFunc {
		return append(append([]echo.MiddlewareFunc{}, operator...), vm.Feature(name))
	}
	panel.GET("/dashboard", superAdminHandlers.Dashboard, feature("dashboard")...)
	panel.GET("/users", superAdminHandlers.ListUsers, feature("users")...)
	panel.GET("/users/:id", superAdminHandlers.GetUser, feature("users")...)
	panel.DELETE("/users/:id", superAdminHandlers.DeleteUser, feature("users")...)
	panel.PUT("/users/:id/subscription", superAdminHandlers.UpdateSubscription, feature("subscriptions")...)
	panel.GET("/organizations/:id/active-orders", superAdminHandlers.OrganizationActiveOrders, feature("diagnostics")...)
	panel.GET("/organizations/:id/today-bills", superAdminHandlers.OrganizationTodayBills, feature("diagnostics")...)
	panel.GET("/system-metrics", superAdminHandlers.SystemMetrics, feature("metrics")...)
	panel.GET("/tickets", superAdminHandlers.ListTickets, feature("tickets")...)
	panel.PUT("/tickets/:id", superAdminHandlers.UpdateTicket, feature("tickets")...)
	panel.GET("/audit-logs", auditHandlers.ListAuditLogs, feature("audit")...)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.WithField("addr", addr).Info("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
