package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/campushq/event-portal-api/config"
	"github.com/campushq/event-portal-api/database"
	"github.com/campushq/event-portal-api/handlers"
	admin_handlers "github.com/campushq/event-portal-api/handlers/admin"
	auth_handlers "github.com/campushq/event-portal-api/handlers/auth"
	event_handlers "github.com/campushq/event-portal-api/handlers/event"
	"github.com/campushq/event-portal-api/services/email"
	"github.com/campushq/event-portal-api/services/roster"
	"github.com/campushq/event-portal-api/services/storage"
	"github.com/campushq/event-portal-api/utils/auth"
	"github.com/campushq/event-portal-api/utils/cache"
	"github.com/campushq/event-portal-api/utils/middleware"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	env, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load configuration")
	}

	if env.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := env.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "event-portal-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: env.JWT_SECRET,
		Issuer: jwtIssuer,
	})

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis cache for brute force protection
	redisURL := env.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	emailService := email.NewService(env)

	storageClient, err := storage.NewClient(env)
	if err != nil {
		log.Printf("Warning: Failed to create storage client: %v. Check image uploads will be disabled.", err)
	}

	rosterService := roster.NewService(db)

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection, emailService)
	eventHandler := event_handlers.NewEventHandler(db, rosterService, storageClient)

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    env.APP_URL,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)

	// Sign-in with brute force lockout
	if bruteForceProtection != nil {
		authGroup.Post("/signin", bruteForceProtection.CheckLocked(), authHandler.Login)
	} else {
		authGroup.Post("/signin", authHandler.Login)
	}

	authGroup.Get("/verify-email", authHandler.VerifyEmail)
	authGroup.Post("/verify-email", authHandler.VerifyEmail)
	authGroup.Post("/resend-verification", authHandler.ResendVerification)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Event routes
	events := api.Group("/events")
	events.Get("/", authMiddleware.Required(), eventHandler.List)
	events.Get("/mine", authMiddleware.Required(), eventHandler.MyEvents)
	events.Get("/:id", authMiddleware.Required(), eventHandler.Get)
	events.Post("/", authMiddleware.RequireAdmin(), eventHandler.Create)      // Admin only
	events.Put("/:id", authMiddleware.RequireAdmin(), eventHandler.Update)    // Admin only
	events.Delete("/:id", authMiddleware.RequireAdmin(), eventHandler.Delete) // Admin only

	// Self-service participation
	events.Post("/:id/join", authMiddleware.Required(), eventHandler.Join)
	events.Post("/:id/leave", authMiddleware.Required(), eventHandler.Leave)
	events.Post("/:id/attend", authMiddleware.Required(), eventHandler.Attend)

	// Browser-facing pages resolve the session from the access_token cookie
	// set at sign-in; unauthenticated browsers are redirected to the sign-in
	// page instead of getting a JSON 401.
	signinURL := env.APP_URL + "/signin"
	web := app.Group("/portal", authMiddleware.RequiredWeb(signinURL))
	web.Get("/profile", authHandler.GetProfile)
	web.Get("/events", eventHandler.List)
	web.Get("/events/mine", eventHandler.MyEvents)
	web.Get("/events/:id", eventHandler.Get)

	// Admin routes
	adminGroup := api.Group("/admin", authMiddleware.RequireAdmin())

	adminGroup.Get("/users", func(c *fiber.Ctx) error { return admin_handlers.ListUsers(c, store) })
	adminGroup.Post("/users", func(c *fiber.Ctx) error { return admin_handlers.CreateUser(c, store) })
	adminGroup.Get("/users/:id", func(c *fiber.Ctx) error { return admin_handlers.GetUser(c, store) })
	adminGroup.Put("/users/:id", func(c *fiber.Ctx) error { return admin_handlers.UpdateUser(c, store) })
	adminGroup.Delete("/users/:id", func(c *fiber.Ctx) error { return admin_handlers.DeleteUser(c, store) })

	adminGroup.Get("/events/:id/participants", func(c *fiber.Ctx) error { return admin_handlers.GetRoster(c, rosterService) })
	adminGroup.Post("/events/:id/participants", func(c *fiber.Ctx) error { return admin_handlers.BulkAddParticipants(c, rosterService) })
	adminGroup.Delete("/events/:id/participants/:userId", func(c *fiber.Ctx) error { return admin_handlers.RemoveParticipant(c, rosterService) })
	adminGroup.Get("/events/:id/candidates", func(c *fiber.Ctx) error { return admin_handlers.ListCandidates(c, rosterService) })
}
