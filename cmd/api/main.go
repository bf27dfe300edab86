package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sis-mentoria-api/api/swagger"
	"github.com/noah-isme/sis-mentoria-api/internal/auth"
	"github.com/noah-isme/sis-mentoria-api/internal/handler"
	"github.com/noah-isme/sis-mentoria-api/internal/repository"
	"github.com/noah-isme/sis-mentoria-api/internal/server"
	"github.com/noah-isme/sis-mentoria-api/internal/service"
	"github.com/noah-isme/sis-mentoria-api/pkg/cache"
	"github.com/noah-isme/sis-mentoria-api/pkg/config"
	"github.com/noah-isme/sis-mentoria-api/pkg/database"
	"github.com/noah-isme/sis-mentoria-api/pkg/logger"
	"github.com/noah-isme/sis-mentoria-api/pkg/ratelimit"
)

// @title SIS Mentoria API
// @version 1.0.0
// @description Authentication and student registration for the mentoring platform
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.Database.URL()); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	groups, err := repository.NewGroupRepository(db).List(ctx)
	if err != nil {
		logr.Fatal("failed to load user groups", zap.Error(err))
	}
	roles := auth.NewRoleRegistry(groups)

	limiter, closeLimiter := buildLimiter(ctx, cfg, logr)
	defer closeLimiter()

	router := buildRouter(cfg, logr, db, roles, limiter)

	srv := server.NewHTTPServer(fmt.Sprintf(":%d", cfg.Port), router)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("token_scheme", cfg.Auth.TokenScheme))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, roles *auth.RoleRegistry, limiter ratelimit.Limiter) *gin.Engine {
	users := repository.NewUserRepository(db)
	infos := repository.NewAlunoInfoRepository(db)
	tx := repository.NewTxManager(db)

	metrics := service.NewMetricsService()
	validate := service.NewValidator()
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptRounds)
	codec := auth.NewCodec(cfg.Auth)

	authSvc := service.NewAuthService(users, tx, roles, hasher, codec, metrics, validate, logr.Named("auth"))
	alunoSvc := service.NewAlunoService(users, infos, tx, roles, hasher, metrics, validate, logr.Named("alunos"))
	userSvc := service.NewUserService(users, infos, roles, logr.Named("usuarios"))

	return server.NewRouter(server.Options{
		Env:             cfg.Env,
		APIPrefix:       cfg.APIPrefix,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		CheckActive:     cfg.Auth.CheckActive,
		RateLimitWindow: cfg.RateLimit.Window,
		Logger:          logr,
		Metrics:         metrics,
		Limiter:         limiter,
		Verifier:        authSvc,
		Auth:            handler.NewAuthHandler(authSvc),
		Alunos:          handler.NewAlunoHandler(alunoSvc),
		Users:           handler.NewUserHandler(userSvc),
		Observability:   handler.NewMetricsHandler(metrics, db),
	})
}

func buildLimiter(ctx context.Context, cfg *config.Config, logr *zap.Logger) (ratelimit.Limiter, func()) {
	if !cfg.RateLimit.Enabled {
		return nil, func() {}
	}
	limits := ratelimit.Config{Window: cfg.RateLimit.Window, Max: cfg.RateLimit.Max}

	if cfg.RateLimit.Backend == config.RateLimitBackendRedis {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err == nil {
			return ratelimit.NewRedisLimiter(client, limits), func() { _ = client.Close() }
		}
		logr.Warn("redis unavailable, rate limiting in memory", zap.Error(err))
	}

	mem := ratelimit.NewMemoryLimiter(limits)
	return mem, mem.Stop
}
