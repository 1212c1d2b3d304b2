package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	appsvc "iga-community/internal/app"
	"iga-community/internal/bootstrap"
	"iga-community/internal/cache"
	"iga-community/internal/mailer"
	"iga-community/internal/repository"
	"iga-community/internal/transport/http/handler"
	"iga-community/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     app.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	cfg := app.Config
	logger := app.Logger

	userRepo := repository.NewUserRepository(app.DB)
	eventRepo := repository.NewEventRepository(app.DB)
	resetStore := cache.NewResetTokenStore(app.Redis, time.Duration(cfg.Auth.ResetExpireMinute)*time.Minute)

	authService := appsvc.NewAuthService(
		userRepo,
		resetStore,
		mailer.NewLogMailer(logger, cfg.App.ContactEmail),
		appsvc.AuthConfig{
			JWTSecret:       cfg.Auth.JWTSecret,
			JWTExpiration:   time.Duration(cfg.Auth.JWTExpireMinute) * time.Minute,
			ResetExpiration: time.Duration(cfg.Auth.ResetExpireMinute) * time.Minute,
			PublicURL:       cfg.App.PublicURL,
		},
		logger,
	)
	eventService := appsvc.NewEventService(eventRepo, app.Catalog)
	chatService := appsvc.NewChatService(app.LLM, app.LLM, app.VectorStore, cfg.Vector.TopK, logger)
	mentorService := appsvc.NewMentorService(app.Catalog, cfg.App.ContactEmail)
	quizService := appsvc.NewQuizService(app.Catalog)
	dashboardService := appsvc.NewDashboardService(app.Catalog)
	statisticsService := appsvc.NewStatisticsService(userRepo)

	Register(router.Group("/api"), Handlers{
		Auth:       handler.NewAuthHandler(authService, logger),
		Events:     handler.NewEventHandler(eventService, logger),
		Chat:       handler.NewChatHandler(chatService, logger),
		Mentors:    handler.NewMentorHandler(mentorService),
		Quiz:       handler.NewQuizHandler(quizService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
		Statistics: handler.NewStatisticsHandler(statisticsService, logger),
		Ingest:     handler.NewIngestHandler(app.Ingest, logger),
	}, cfg.Auth.JWTSecret, cfg.IsAdmin)

	return router
}

type Handlers struct {
	Auth       *handler.AuthHandler
	Events     *handler.EventHandler
	Chat       *handler.ChatHandler
	Mentors    *handler.MentorHandler
	Quiz       *handler.QuizHandler
	Dashboard  *handler.DashboardHandler
	Statistics *handler.StatisticsHandler
	Ingest     *handler.IngestHandler
}

// Register mounts every API route on api.
func Register(api *gin.RouterGroup, h Handlers, jwtSecret string, isAdmin func(string) bool) {
	auth := middleware.AuthJWT(jwtSecret)

	api.POST("/signup", h.Auth.Signup)
	api.POST("/login", h.Auth.Login)
	api.POST("/forgot-password", h.Auth.ForgotPassword)
	api.POST("/password/update", h.Auth.UpdatePassword)
	api.GET("/me", auth, h.Auth.Me)

	api.GET("/events", h.Events.List)
	api.POST("/events", h.Events.Signup)

	api.POST("/chat", h.Chat.Reply)

	api.GET("/mentors", h.Mentors.List)
	api.GET("/mentors/:id", h.Mentors.Get)
	api.POST("/mentors/requests", h.Mentors.RequestSession)

	api.GET("/quiz", h.Quiz.Get)
	api.POST("/quiz/recommend", h.Quiz.Recommend)

	dashboard := api.Group("/dashboard")
	dashboard.GET("/rewards", h.Dashboard.Rewards)
	dashboard.POST("/check-in", h.Dashboard.CheckIn)
	dashboard.POST("/award", h.Dashboard.Award)
	dashboard.POST("/claim", h.Dashboard.Claim)

	api.GET("/statistics", h.Statistics.Summary)

	admin := api.Group("/admin", auth, middleware.RequireAdmin(isAdmin))
	admin.POST("/ingest", h.Ingest.Enqueue)
}
