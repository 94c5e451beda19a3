// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"studiodesk-service/internal/config"
	"studiodesk-service/internal/db"
	authHandler "studiodesk-service/internal/handlers/auth"
	leadHandler "studiodesk-service/internal/handlers/lead"
	pipelineHandler "studiodesk-service/internal/handlers/pipeline"
	wsHandler "studiodesk-service/internal/handlers/websocket"
	"studiodesk-service/internal/middleware"
	"studiodesk-service/internal/pkg/jwt"
	"studiodesk-service/internal/pkg/session"
	"studiodesk-service/internal/repository"
	"studiodesk-service/internal/repository/postgres"
	authUsecase "studiodesk-service/internal/service/auth"
	pipelineUsecase "studiodesk-service/internal/service/pipeline"
	"studiodesk-service/internal/websocket"
	wsHandlers "studiodesk-service/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg     config.AppConfig
	engine  *gin.Engine
	httpSrv *http.Server
	logger  *zap.Logger

	pool    *pgxpool.Pool
	redis   redis.UniversalClient
	stopHub context.CancelFunc
	authSvc *authUsecase.AuthService
}

func NewServer() (*Server, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	engine := gin.New()
	return &Server{cfg: config.Load(), engine: engine, logger: logger}, nil
}

// Start wires the stores, services and routes. It must return before Serve
// and Shutdown are called.
func (s *Server) Start() error {
	ctx := context.Background()
	logger := s.logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, db.PostgresConfig{URL: s.cfg.DatabaseURL, MaxConns: s.cfg.DBMaxConns})
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool

	dbWrapper := postgres.NewDB(pool)
	if err := dbWrapper.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to prepare schema: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addresses: []string{s.cfg.RedisAddr},
		Password:  s.cfg.RedisPass,
		PoolSize:  10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	s.redis = redisClient
	logger.Info("connected to stores", zap.String("redis", s.cfg.RedisAddr))

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- Session Manager & Rate Limiter -----
	sessionManager := session.NewManager(redisClient)
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- Repositories -----
	staffRepo := postgres.NewStaffRepository(pool)
	store := repository.NewLeadStore(
		postgres.NewLeadRepository(pool, dbWrapper),
		postgres.NewLeadSourceRepository(pool),
		postgres.NewUserRepository(pool),
		postgres.NewStatusHistoryRepository(pool),
		redisClient,
		s.cfg.LeadSourceCacheTTL,
		logger,
	)

	// ----- Auth & WebSocket Hub -----
	authService := authUsecase.NewAuthService(staffRepo, jwtManager, sessionManager, rateLimiter, nil, logger)
	s.authSvc = authService

	hub := websocket.NewHub(authService, logger)
	authService.SetNotifier(hub)

	hubCtx, stopHub := context.WithCancel(context.Background())
	s.stopHub = stopHub
	go hub.Run(hubCtx)

	// ----- Pipeline -----
	controller := pipelineUsecase.NewController(store, hub, logger)
	hub.SetSnapshotSource(controller.Board)
	hub.RegisterHandler(wsHandlers.NewBoardHandler(controller, logger))

	if err := controller.Load(ctx); err != nil {
		// the board starts empty and fills on the next reload
		logger.Error("initial board load failed", zap.Error(err))
	}

	if err := s.initializeOwner(); err != nil {
		logger.Error("failed to initialize owner account", zap.Error(err))
	}

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RequestIDMiddleware(),
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.MetricsMiddleware(),
		middleware.CORSMiddleware(s.cfg.CORSAllowedOrigins),
	)

	// ----- Router -----
	SetupRouter(s.engine, &Handlers{
		AuthHandler:     authHandler.NewAuthHandler(authService, logger),
		LeadHandler:     leadHandler.NewLeadHandler(controller, logger),
		PipelineHandler: pipelineHandler.NewPipelineHandler(controller, logger),
		WSHandler:       wsHandler.NewWebSocketHandler(hub, s.cfg.CORSAllowedOrigins, logger),
		AuthMiddleware:  middleware.NewAuthMiddleware(authService),
	})

	s.httpSrv = s.newHTTPServer()
	return nil
}

func (s *Server) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Serve blocks on HTTP until Shutdown is called.
func (s *Server) Serve() error {
	s.logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains HTTP, closes sockets and releases the stores.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
	}
	if s.stopHub != nil {
		s.stopHub()
	}
	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil {
			s.logger.Warn("failed to close redis", zap.Error(cerr))
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
	_ = s.logger.Sync()
	return err
}

// initializeOwner creates the first owner account from OWNER_* variables.
func (s *Server) initializeOwner() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.cfg.OwnerPassword != "" && len(s.cfg.OwnerPassword) < 8 {
		return fmt.Errorf("owner password must be at least 8 characters")
	}

	return s.authSvc.EnsureOwnerExists(ctx, s.cfg.OwnerEmail, s.cfg.OwnerPassword, s.cfg.OwnerName)
}
