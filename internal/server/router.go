// Package server assembles the HTTP surface.
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sis-mentoria-api/internal/auth"
	"github.com/noah-isme/sis-mentoria-api/internal/handler"
	"github.com/noah-isme/sis-mentoria-api/internal/middleware"
	"github.com/noah-isme/sis-mentoria-api/internal/models"
	"github.com/noah-isme/sis-mentoria-api/internal/service"
	"github.com/noah-isme/sis-mentoria-api/pkg/config"
	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
	"github.com/noah-isme/sis-mentoria-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sis-mentoria-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sis-mentoria-api/pkg/middleware/requestid"
	"github.com/noah-isme/sis-mentoria-api/pkg/ratelimit"
	"github.com/noah-isme/sis-mentoria-api/pkg/response"
)

// Options carries everything the router mounts.
type Options struct {
	Env             string
	APIPrefix       string
	AllowedOrigins  []string
	CheckActive     bool
	RateLimitWindow time.Duration

	Logger   *zap.Logger
	Metrics  *service.MetricsService
	Limiter  ratelimit.Limiter
	Verifier middleware.TokenVerifier

	Auth          *handler.AuthHandler
	Alunos        *handler.AlunoHandler
	Users         *handler.UserHandler
	Observability *handler.MetricsHandler
}

// NewRouter builds the gin engine with every route of the service.
func NewRouter(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	prefix := "/" + strings.Trim(opts.APIPrefix, "/")
	if prefix == "/" {
		prefix = "/api"
	}

	r := gin.New()
	r.Use(middleware.Recovery(opts.Logger))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics))

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "Rota "+c.Request.URL.Path+" não encontrada"))
	})

	r.GET("/health", opts.Observability.Health)
	r.GET("/ready", opts.Observability.Ready)
	r.GET("/metrics", opts.Observability.Prometheus)
	if opts.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	limit := middleware.RateLimit(opts.Limiter, opts.RateLimitWindow, opts.Metrics, opts.Logger)
	authenticate := middleware.Authenticate(opts.Verifier, opts.CheckActive, opts.Metrics)
	adminOnly := middleware.RequireRole(models.RoleAdministrador)

	api := r.Group(prefix)
	api.GET("/health", opts.Observability.Health)
	api.POST("/alunos", limit, opts.Alunos.Create)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", limit, opts.Auth.Login)
	authGroup.POST("/cadastrarUsuario", limit, opts.Auth.Register)
	authGroup.POST("/validar", opts.Auth.Validate)
	authGroup.GET("/teste", opts.Auth.Test)

	session := authGroup.Group("", authenticate)
	session.GET("/me", opts.Auth.Me)
	session.POST("/logout", opts.Auth.Logout)
	session.POST("/alterar-senha", opts.Auth.ChangePassword)
	session.POST("/personificar/encerrar", opts.Auth.StopImpersonation)
	session.POST("/personificar/:id", adminOnly, middleware.RequirePermission(auth.PermImpersonateAluno), middleware.Audit(opts.Logger, "impersonate", "aluno"), opts.Auth.Impersonate)
	session.GET("/usuarios/:id", middleware.RequireOwnerOrRole("id", models.RoleAdministrador), opts.Users.Get)

	admin := session.Group("", adminOnly)
	admin.GET("/alunos", opts.Users.ListAlunos)
	admin.GET("/alunos/exportar", opts.Users.ExportAlunos)
	admin.DELETE("/alunos/:id", middleware.Audit(opts.Logger, "deactivate", "aluno"), opts.Users.DeactivateAluno)
	admin.PATCH("/usuarios/:id/situacao", middleware.Audit(opts.Logger, "update_situacao", "usuario"), opts.Users.UpdateSituacao)
	admin.GET("/metricas", opts.Observability.Snapshot)

	return r
}

// NewHTTPServer wraps the router with the timeouts used in every environment.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
