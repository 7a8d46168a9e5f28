package httptransport

import (
	"log/slog"

	"github.com/carematch/carematch/internal/domain"
	"github.com/carematch/carematch/internal/repository"
	"github.com/carematch/carematch/internal/transport/http/handler"
	"github.com/carematch/carematch/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type RouterConfig struct {
	JWTSecret      []byte
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(
	logger *slog.Logger,
	jobHandler *handler.JobHandler,
	confirmationHandler *handler.ConfirmationHandler,
	profileRepo repository.ProfileRepository,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	authMW := middleware.Auth(cfg.JWTSecret)
	ensureProfile := middleware.EnsureProfile(profileRepo, logger)
	clientOnly := middleware.RequireRole(domain.RoleClient)
	freelancerOnly := middleware.RequireRole(domain.RoleFreelancer)

	jobs := r.Group("/jobs", authMW, ensureProfile)
	jobs.POST("", clientOnly, jobHandler.Create)
	jobs.GET("", clientOnly, jobHandler.List)
	jobs.GET("/:id", jobHandler.GetByID)
	jobs.GET("/:id/confirmed", clientOnly, confirmationHandler.ListConfirmed)
	jobs.POST("/:id/select", clientOnly, jobHandler.Select)
	jobs.POST("/:id/decline", clientOnly, confirmationHandler.Decline)
	jobs.POST("/:id/restart", clientOnly, jobHandler.Restart)
	jobs.POST("/:id/confirm", freelancerOnly, confirmationHandler.Confirm)
	jobs.POST("/:id/accept-open-job", freelancerOnly, confirmationHandler.AcceptOpenJob)
	jobs.POST("/:id/notifications/:nid/open", freelancerOnly, confirmationHandler.OpenNotification)

	notifications := r.Group("/notifications", authMW, ensureProfile, freelancerOnly)
	notifications.GET("", confirmationHandler.ListNotifications)

	conversations := r.Group("/conversations", authMW, ensureProfile)
	conversations.GET("/:id", jobHandler.GetConversation)

	return r
}
