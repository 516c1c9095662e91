package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/farellandr/eventpass/config"
	"github.com/farellandr/eventpass/internal/delivery"
	"github.com/farellandr/eventpass/internal/handlers"
	"github.com/farellandr/eventpass/internal/live"
	"github.com/farellandr/eventpass/internal/middleware"
	"github.com/farellandr/eventpass/internal/render"
	"github.com/farellandr/eventpass/internal/repository"
	"github.com/farellandr/eventpass/internal/scan"
	"github.com/farellandr/eventpass/internal/services"
)

// Roles allowed to run the check-in scanner.
var scannerRoles = []string{services.RoleAdmin, "organizer", "staff", "volunteer"}

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	logger, err := config.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	var store repository.Store
	if cfg.DBHost == "" && !cfg.Production() {
		logger.Warn("DB_HOST not set, using the in-memory store")
		store = repository.NewMemoryStore()
	} else {
		db, err := config.InitDatabase(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %v", err)
		}
		store = repository.NewGormStore(db)
	}

	var sessions scan.SessionStore
	if cfg.RedisURL != "" {
		client, err := config.InitRedis(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %v", err)
		}
		defer client.Close()
		sessions = scan.NewRedisStore(client, cfg.ScanSessionTTL)
	} else {
		logger.Warn("REDIS_URL not set, scan sessions are kept in memory")
		sessions = scan.NewMemoryStore(cfg.ScanSessionTTL)
	}

	var publisher delivery.Publisher
	if cfg.RabbitMQURL != "" {
		conn, ch, err := config.InitAMQP(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize rabbitmq: %v", err)
		}
		defer conn.Close()
		defer ch.Close()
		publisher = delivery.NewAMQPPublisher(ch, cfg.DeliveryQueue)
	} else {
		logger.Warn("RABBITMQ_URL not set, ticket deliveries are only logged")
		publisher = delivery.NewLogPublisher(logger)
	}

	hub := live.NewHub(logger.Named("live"), cfg.CORSAllowOrigins)
	defer hub.Close()

	svc := services.New(services.Options{
		Store:        store,
		Sessions:     sessions,
		Renderer:     render.NewRenderer(render.NewHTTPFetcher(cfg.AssetFetchTimeout)),
		Delivery:     publisher,
		Live:         hub,
		Logger:       logger,
		PinAttempts:  cfg.PinIssueAttempts,
		HistoryLimit: cfg.DesignHistoryLimit,
	})

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := NewRouter(cfg, svc, hub, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func NewRouter(cfg *config.Config, svc *services.Services, hub *live.Hub, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	setupRoutes(r, cfg, svc, hub)
	return r
}

func setupRoutes(r *gin.Engine, cfg *config.Config, svc *services.Services, hub *live.Hub) {
	r.Use(middleware.ServicesMiddleware(svc))

	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/v1")
	{
		public.POST("/events/:id/lookup", handlers.LookupTicket)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		eventProtected := protected.Group("/events")
		{
			eventProtected.POST("", handlers.CreateEvent)
			eventProtected.GET("", handlers.ListEvents)
			eventProtected.GET("/:id", handlers.GetEvent)
			eventProtected.PUT("/:id", handlers.UpdateEvent)
			eventProtected.DELETE("/:id", handlers.DeleteEvent)

			eventProtected.POST("/:id/credentials", handlers.PreviewCredentials)
			eventProtected.POST("/:id/tickets", handlers.CreateTicket)
			eventProtected.GET("/:id/tickets", handlers.ListTickets)
			eventProtected.POST("/:id/scan-sessions", middleware.RequireRole(scannerRoles...), handlers.StartScanSession)
			eventProtected.GET("/:id/live", handlers.LiveFeed(hub))
		}

		ticketProtected := protected.Group("/tickets")
		{
			ticketProtected.GET("/:id", handlers.GetTicket)
			ticketProtected.PATCH("/:id", handlers.UpdateTicket)
			ticketProtected.DELETE("/:id", handlers.DeleteTicket)
			ticketProtected.POST("/:id/deactivate", handlers.DeactivateTicket)
			ticketProtected.POST("/:id/verify-pin", middleware.RequireRole(scannerRoles...), handlers.VerifyPin)
			ticketProtected.POST("/:id/redeem", middleware.RequireRole(scannerRoles...), handlers.RedeemBenefit)
			ticketProtected.GET("/:id/qr", handlers.TicketQR)
			ticketProtected.GET("/:id/image", handlers.TicketImage)
			ticketProtected.POST("/:id/deliver", handlers.DeliverTicket)
		}

		scanProtected := protected.Group("/scan-sessions")
		scanProtected.Use(middleware.RequireRole(scannerRoles...))
		{
			scanProtected.GET("/:sid", handlers.GetScanSession)
			scanProtected.POST("/:sid/decode", handlers.DecodeScan)
			scanProtected.POST("/:sid/pin", handlers.SubmitScanPin)
			scanProtected.POST("/:sid/redeem", handlers.RedeemScan)
			scanProtected.POST("/:sid/reset", handlers.ResetScanSession)
			scanProtected.DELETE("/:sid", handlers.CloseScanSession)
		}

		templateProtected := protected.Group("/templates")
		{
			templateProtected.GET("", handlers.ListTemplates)
			templateProtected.POST("", handlers.CreateTemplate)
			templateProtected.GET("/:id", handlers.GetTemplate)
			templateProtected.DELETE("/:id", handlers.DeleteTemplate)
			templateProtected.POST("/:id/edits", handlers.EditTemplate)
			templateProtected.GET("/:id/preview", handlers.PreviewTemplate)
		}
	}
}
