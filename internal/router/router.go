package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "medvault/docs"
	"medvault/internal/handler"
	"medvault/internal/middleware"
	"medvault/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	corsOrigins []string,
	authH *handler.AuthHandler,
	fileH *handler.FileHandler,
	cardH *handler.CardHandler,
	shareH *handler.ShareHandler,
	terminologyH *handler.TerminologyHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Share recipients, before verification
	public := v1.Group("/public/shares")
	public.POST("/:token/otp", shareH.RequestOTP)
	public.POST("/:token/verify", shareH.VerifyOTP)

	// Share recipients, after verification
	shared := v1.Group("/shared")
	shared.Use(middleware.ShareAuthMiddleware(authSvc))
	shared.GET("/dashboard", shareH.Dashboard)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	protected.GET("/me", authH.Me)

	// File routes
	files := protected.Group("/files")
	files.POST("/upload", fileH.Upload)
	files.GET("", fileH.List)
	files.GET("/:id", fileH.GetByID)
	files.DELETE("/:id", fileH.Delete)

	// Insurance cards
	cards := protected.Group("/cards")
	cards.POST("/parse", cardH.Parse)
	cards.POST("/scans", cardH.CreateScan)
	cards.GET("/scans", cardH.ListScans)
	cards.POST("/scans/upload", cardH.UploadScan)
	cards.GET("/scans/export", cardH.Export)
	cards.GET("/scans/:id", cardH.GetScan)
	cards.DELETE("/scans/:id", cardH.DeleteScan)
	cards.PUT("/scans/:id/confirm", cardH.Confirm)
	cards.POST("/scans/:id/discard", cardH.Discard)
	cards.POST("/scans/:id/reparse", cardH.Reparse)

	// Shares
	shares := protected.Group("/shares")
	shares.POST("", shareH.Create)
	shares.GET("", shareH.List)
	shares.DELETE("/:id", shareH.Revoke)

	// Terminology autocomplete
	terminology := protected.Group("/terminology")
	terminology.GET("", terminologyH.Sources)
	terminology.GET("/:source/search", terminologyH.Search)

	return r
}
