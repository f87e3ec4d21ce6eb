// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"sparkhub-service/internal/cache"
	"sparkhub-service/internal/config"
	"sparkhub-service/internal/db"
	customerHandler "sparkhub-service/internal/handlers/customer"
	planHandler "sparkhub-service/internal/handlers/plan"
	reportHandler "sparkhub-service/internal/handlers/report"
	sessionHandler "sparkhub-service/internal/handlers/session"
	subscriptionHandler "sparkhub-service/internal/handlers/subscription"
	"sparkhub-service/internal/middleware"
	"sparkhub-service/internal/pkg/jwt"
	"sparkhub-service/internal/repository/postgres"
	auditUsecase "sparkhub-service/internal/service/audit"
	customersvc "sparkhub-service/internal/service/customer"
	plansvc "sparkhub-service/internal/service/plan"
	playsvc "sparkhub-service/internal/service/playsession"
	reportsvc "sparkhub-service/internal/service/report"
	subscriptionUsecase "sparkhub-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	http   *http.Server
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start(ctx context.Context) error {
	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- Migrations -----
	if err := db.RunMigrations(s.cfg.DatabaseURL, s.cfg.MigrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("redis connected", zap.String("addr", s.cfg.RedisAddr))

	// ----- JWT Verifier -----
	verifier, err := jwt.Load(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT verifier: %w", err)
	}

	// ----- Repositories -----
	customerRepo := postgres.NewCustomerRepository(pool)
	planRepo := postgres.NewSubscriptionPlanRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)

	// ----- Cache -----
	listCache := cache.New(redisClient, s.cfg.CacheTTL, logger)

	// ----- Services -----
	recorder := auditUsecase.NewRecorder(auditRepo, logger)
	customerService := customersvc.NewCustomerService(customerRepo, listCache, logger)
	planService := plansvc.NewPlanService(planRepo, listCache, logger)
	subscriptionService := subscriptionUsecase.NewSubscriptionService(
		subscriptionRepo,
		planRepo,
		customerRepo,
		recorder,
		logger,
	)
	coordinator := playsvc.NewCoordinator(
		sessionRepo,
		customerRepo,
		planRepo,
		subscriptionRepo,
		recorder,
		s.cfg.DefaultBranch,
		logger,
	)
	reportService := reportsvc.NewReportService(sessionRepo, auditRepo, logger)

	// ----- Handlers -----
	customerHandlerInst := customerHandler.NewCustomerHandler(customerService)
	planHandlerInst := planHandler.NewPlanHandler(planService)
	subscriptionHandlerInst := subscriptionHandler.NewSubscriptionHandler(subscriptionService)
	sessionHandlerInst := sessionHandler.NewSessionHandler(coordinator)
	reportHandlerInst := reportHandler.NewReportHandler(reportService, recorder)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		CustomerHandler:     customerHandlerInst,
		PlanHandler:         planHandlerInst,
		SubscriptionHandler: subscriptionHandlerInst,
		SessionHandler:      sessionHandlerInst,
		ReportHandler:       reportHandlerInst,
		AuthMiddleware:      authMiddleware,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	s.http = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests before the process exits.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
