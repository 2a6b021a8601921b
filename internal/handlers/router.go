package handlers

import (
	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/metrics"
	"github.com/SAP-F-2025/quiz-service/internal/middleware"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the HTTP-level settings the routes need.
type RouterConfig struct {
	AllowedOrigins []string
	MaxUploadBytes int64
}

type HandlerManager struct {
	quizHandler       *QuizHandler
	questionHandler   *QuestionHandler
	submissionHandler *SubmissionHandler
	authHandler       *AuthHandler
	userHandler       *UserHandler
	classHandler      *ClassHandler
	uploadHandler     *UploadHandler
	healthHandler     *HealthHandler

	tokens      *auth.TokenManager
	authLimiter *middleware.RateLimiter
	cfg         RouterConfig
	logger      utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	db Pinger,
	tokens *auth.TokenManager,
	authLimiter *middleware.RateLimiter,
	cfg RouterConfig,
	logger utils.Logger,
) *HandlerManager {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = services.DefaultMaxUploadBytes
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = middleware.DefaultAllowedOrigins
	}

	return &HandlerManager{
		quizHandler:       NewQuizHandler(serviceManager.Quiz(), serviceManager.ImportExport(), cfg.MaxUploadBytes, logger),
		questionHandler:   NewQuestionHandler(serviceManager.Question(), logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), logger),
		authHandler:       NewAuthHandler(serviceManager.Auth(), logger),
		userHandler:       NewUserHandler(serviceManager.User(), serviceManager.Admin(), logger),
		classHandler:      NewClassHandler(serviceManager.Class(), logger),
		uploadHandler:     NewUploadHandler(serviceManager.Media(), cfg.MaxUploadBytes, logger),
		healthHandler:     NewHealthHandler(db),

		tokens:      tokens,
		authLimiter: authLimiter,
		cfg:         cfg,
		logger:      logger,
	}
}

// SetupRoutes installs the global middleware and every API route
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		utils.LoggerMiddleware(hm.logger),
		metrics.MetricsMiddleware(),
		middleware.CORS(hm.cfg.AllowedOrigins),
	)

	router.GET("/health", hm.healthHandler.HealthCheck)
	router.GET("/metrics", metrics.PrometheusHandler())

	api := router.Group("/api")

	// Public routes
	authRoutes := api.Group("/auth")
	if hm.authLimiter != nil {
		authRoutes.Use(hm.authLimiter.Middleware())
	}
	{
		authRoutes.POST("/signup", hm.authHandler.Signup)
		authRoutes.POST("/login", hm.authHandler.Login)
	}
	api.GET("/quiz/:id/public", hm.quizHandler.GetPublicQuiz)
	api.GET("/quiz/:id/leaderboard", hm.submissionHandler.GetLeaderboard)
	if hm.authLimiter != nil {
		api.POST("/quiz/:id/validate-password", hm.authLimiter.Middleware(), hm.quizHandler.ValidateQuizPassword)
	} else {
		api.POST("/quiz/:id/validate-password", hm.quizHandler.ValidateQuizPassword)
	}

	protected := api.Group("")
	protected.Use(middleware.Authenticate(hm.tokens))
	{
		protected.GET("/auth/me", hm.authHandler.Me)

		teacherOnly := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)

		// Quiz routes
		quizzes := protected.Group("/quiz")
		{
			quizzes.POST("", teacherOnly, hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/attempted", hm.submissionHandler.GetAttemptedQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.GET("/:id/metadata", hm.quizHandler.GetQuizMetadata)
			quizzes.PUT("/:id", hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)

			quizzes.POST("/:id/questions", hm.questionHandler.AddQuestion)
			quizzes.POST("/:id/submit", hm.submissionHandler.SubmitQuiz)
			quizzes.GET("/:id/responses", hm.submissionHandler.GetResponses)

			quizzes.GET("/:id/export", hm.quizHandler.ExportResponses)
			quizzes.POST("/:id/import", hm.quizHandler.ImportQuestions)
		}

		questions := protected.Group("/questions")
		{
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
		}

		// User routes
		users := protected.Group("/users")
		{
			users.GET("/profile", hm.userHandler.GetProfile)
			users.PUT("/profile", hm.userHandler.UpdateProfile)
			users.PUT("/password", hm.userHandler.ChangePassword)
			users.GET("/stats", hm.userHandler.GetStats)
			users.GET("/subjects", hm.userHandler.GetSubjects)
			users.GET("/grades", hm.userHandler.GetGrades)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/users", hm.userHandler.ListUsers)
			admin.POST("/users", hm.userHandler.CreateUser)
			admin.PUT("/users/:id", hm.userHandler.UpdateUser)
			admin.DELETE("/users/:id", hm.userHandler.DeleteUser)
		}

		// Class routes
		classes := protected.Group("/classes")
		{
			classes.POST("", teacherOnly, hm.classHandler.CreateClass)
			classes.GET("/teaching", teacherOnly, hm.classHandler.TeachingClasses)
			classes.GET("/enrolled", hm.classHandler.EnrolledClasses)
			classes.POST("/join", hm.classHandler.JoinClass)
			classes.PUT("/:id", hm.classHandler.UpdateClass)
			classes.DELETE("/:id", hm.classHandler.DeleteClass)
		}

		// Upload routes
		uploads := protected.Group("/uploads")
		{
			uploads.POST("/quizzes/:id/image", hm.uploadHandler.UploadQuizImage)
			uploads.DELETE("/quiz-images/:id", hm.uploadHandler.DeleteQuizImage)
			uploads.POST("/questions/:id/image", hm.uploadHandler.UploadQuestionImage)
			uploads.DELETE("/question-images/:id", hm.uploadHandler.DeleteQuestionImage)
			uploads.POST("/resource-materials", teacherOnly, hm.uploadHandler.UploadResourceMaterial)
			uploads.DELETE("/resource-materials/:id", hm.uploadHandler.DeleteResourceMaterial)
		}
	}
}
