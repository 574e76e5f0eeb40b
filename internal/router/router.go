package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vigilo-labs/vigil-backend/internal/config"
	"github.com/vigilo-labs/vigil-backend/internal/handler"
	"github.com/vigilo-labs/vigil-backend/internal/middleware"
	"github.com/vigilo-labs/vigil-backend/internal/response"
	"github.com/vigilo-labs/vigil-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Student *handler.StudentHandler
	Test    *handler.TestHandler
	Proctor *handler.ProctorHandler
	Live    *handler.LiveHandler
	AI      *handler.AIHandler
	Support *handler.SupportHandler
	Billing *handler.BillingHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "Stripe-Signature"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/verify-otp", handlers.Auth.VerifyOTP)
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/forgot-password", handlers.Auth.ForgotPassword)
		auth.POST("/reset-password", handlers.Auth.ResetPassword)

		// Authenticated session management
		auth.POST("/logout", middleware.RequireAnyJWT(authService), handlers.Auth.Logout)
		auth.POST("/change-password", middleware.RequireAnyJWT(authService), handlers.Auth.ChangePassword)
		auth.GET("/me", middleware.RequireAnyJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Student Group (Student JWT) ────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.POST("/give-test", handlers.Student.GiveTest)
		studentAPI.POST("/test", handlers.Student.TestAction)
		studentAPI.GET("/history", handlers.Student.History)
	}

	// ─── 3. Proctor Group ──────────────────────────────────────────────
	// Ingestion is student-side; monitoring views are professor-side.
	proctorAPI := router.Group("/api/v1/proctor")
	{
		proctorAPI.POST("/video-feed", middleware.RequireStudentJWT(authService), handlers.Proctor.VideoFeed)
		proctorAPI.POST("/window-event", middleware.RequireStudentJWT(authService), handlers.Proctor.WindowEvent)
		proctorAPI.GET("/logs/:test_id", middleware.RequireProfessorJWT(authService), handlers.Proctor.Logs)
		proctorAPI.GET("/violations/:test_id", middleware.RequireProfessorJWT(authService), handlers.Proctor.ViolationCounts)
	}

	// ─── 4. WebSocket Group (Professor WS Auth) ────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireProfessorWSAuth(authService))
	{
		ws.GET("/proctor/tests/:test_id/stream", handlers.Live.Stream)
	}

	// ─── 5. Tests Group (Professor JWT) ────────────────────────────────
	testsAPI := router.Group("/api/v1/tests")
	testsAPI.Use(middleware.RequireProfessorJWT(authService))
	{
		testsAPI.POST("/create-test-lqa", handlers.Test.CreateObjective)
		testsAPI.POST("/create-test-csv", handlers.Test.CreateObjectiveCSV)
		testsAPI.POST("/create-test-subjective", handlers.Test.CreateSubjective)
		testsAPI.POST("/create-test-practical", handlers.Test.CreatePractical)
		testsAPI.GET("/history", handlers.Test.History)
		testsAPI.GET("/:test_id/questions", handlers.Test.Questions)
		testsAPI.PUT("/:test_id/questions", handlers.Test.ReplaceQuestions)
		testsAPI.DELETE("/:test_id/questions/:qid", handlers.Test.DeleteQuestion)
		testsAPI.GET("/:test_id/students", handlers.Test.Students)
		testsAPI.POST("/share", handlers.Test.Share)
		testsAPI.POST("/marks", handlers.Test.UploadMarks)
		testsAPI.GET("/:test_id/answers", handlers.Test.Answers)
		testsAPI.POST("/:test_id/grade", handlers.Test.GradeSubjective)
		testsAPI.GET("/:test_id/results", handlers.Test.ViewResults)
		testsAPI.POST("/:test_id/publish-results", handlers.Test.PublishResults)
	}

	// ─── 6. AI Group (Professor JWT) ───────────────────────────────────
	aiAPI := router.Group("/api/v1/ai")
	aiAPI.Use(middleware.RequireProfessorJWT(authService))
	{
		aiAPI.POST("/generate-questions", handlers.AI.GenerateQuestions)
		aiAPI.POST("/report", handlers.AI.Report)
	}

	// ─── 7. Billing Group ──────────────────────────────────────────────
	// The webhook is unauthenticated: Stripe signs the body instead.
	billingAPI := router.Group("/api/v1/billing")
	{
		billingAPI.POST("/create-checkout-session", middleware.RequireProfessorJWT(authService), handlers.Billing.CreateCheckoutSession)
		billingAPI.GET("/balance", middleware.RequireProfessorJWT(authService), handlers.Billing.Balance)
		billingAPI.POST("/webhook", handlers.Billing.Webhook)
	}

	// ─── 8. Support Group (Any JWT) ────────────────────────────────────
	supportAPI := router.Group("/api/v1/support")
	supportAPI.Use(middleware.RequireAnyJWT(authService))
	{
		supportAPI.POST("/contact", handlers.Support.Contact)
		supportAPI.POST("/report", handlers.Support.Report)
	}

	return router
}
