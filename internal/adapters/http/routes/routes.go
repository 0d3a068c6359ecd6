package routes

import (
	"time"

	"bloodlink/internal/adapters/http/handlers"
	"bloodlink/internal/adapters/http/middleware"
	"bloodlink/internal/adapters/persistence/repositories"
	"bloodlink/internal/config"
	"bloodlink/internal/core/services"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Services groups the constructed core services so main can reuse them
// for startup tasks and cron scheduling.
type Services struct {
	Auth      *services.AuthService
	User      *services.UserService
	Inventory *services.InventoryService
	Donation  *services.DonationService
	Location  *services.LocationService
}

// Setup configures all routes for the application and returns the services
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *Services {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	inventoryRepo := repositories.NewInventoryRepository(db)
	donationRepo := repositories.NewDonationRepository(db)
	locationRepo := repositories.NewLocationRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	inventoryService := services.NewInventoryService(inventoryRepo)
	locationService := services.NewLocationService(locationRepo)
	donationService := services.NewDonationService(donationRepo, userRepo, locationRepo, inventoryService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	donationHandler := handlers.NewDonationHandler(donationService)
	locationHandler := handlers.NewLocationHandler(locationService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler,
		inventoryHandler, donationHandler, locationHandler, cfg)

	return &Services{
		Auth:      authService,
		User:      userService,
		Inventory: inventoryService,
		Donation:  donationService,
		Location:  locationService,
	}
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	inventoryHandler *handlers.InventoryHandler,
	donationHandler *handlers.DonationHandler,
	locationHandler *handlers.LocationHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User management routes (Admin only)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)

	// Profile routes (Authenticated users)
	profileRoutes := router.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	setupProfileRoutes(profileRoutes, userHandler)

	// Inventory routes (Authenticated users; mutations staff only)
	inventoryRoutes := router.Group("/inventory")
	inventoryRoutes.Use(middleware.AuthMiddleware(cfg))
	setupInventoryRoutes(inventoryRoutes, inventoryHandler)

	// Donation routes (Authenticated users)
	donationRoutes := router.Group("/donations")
	donationRoutes.Use(middleware.AuthMiddleware(cfg))
	setupDonationRoutes(donationRoutes, donationHandler)

	// Location routes (public reads, admin writes)
	locationRoutes := router.Group("/locations")
	setupLocationRoutes(locationRoutes, locationHandler, cfg)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Get("/donors/search", handler.SearchDonors)
	router.Get("/donors/stats", handler.GetDonorStats)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
	router.Delete("/:id", handler.DeleteUser)
}

// setupProfileRoutes configures profile routes (Authenticated)
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
	router.Put("/password", handler.ChangePassword)
}

// setupInventoryRoutes configures blood stock routes.
// Donor-reachable routes register before the staff group so its middleware
// never intercepts them; fixed paths register before parameterized ones.
func setupInventoryRoutes(router fiber.Router, handler *handlers.InventoryHandler) {
	// Readable by all authenticated users (donors get summaries)
	router.Get("/", handler.ListInventory)
	router.Get("/alerts", middleware.StaffOnly(), handler.GetAlerts)
	router.Get("/stats", middleware.StaffOnly(), handler.GetStats)
	router.Get("/:bloodType", handler.GetInventory)

	// Staff mutations
	staffRoutes := router.Group("")
	staffRoutes.Use(middleware.StaffOnly())

	staffRoutes.Post("/reset-daily", middleware.AdminOnly(), handler.ResetDailyCounters)
	staffRoutes.Post("/:bloodType/add", handler.AddStock)
	staffRoutes.Post("/:bloodType/remove", handler.RemoveStock)
	staffRoutes.Post("/:bloodType/reserve", handler.ReserveStock)
	staffRoutes.Post("/:bloodType/release", handler.ReleaseStock)
	staffRoutes.Post("/:bloodType/expire", handler.MarkExpired)
	staffRoutes.Post("/:bloodType/dispose", handler.DisposeExpired)
	staffRoutes.Put("/:bloodType", middleware.AdminOnly(), handler.SetStock)
}

// setupDonationRoutes configures donation lifecycle routes.
// Donor-reachable routes register before the staff group; the handlers
// enforce ownership for donors.
func setupDonationRoutes(router fiber.Router, handler *handlers.DonationHandler) {
	router.Post("/", handler.RecordDonation)
	router.Get("/my", handler.MyDonations)
	router.Get("/stats", middleware.StaffOnly(), handler.GetStats)
	router.Get("/:id", handler.GetDonation)
	router.Post("/:id/cancel", handler.CancelDonation)

	// Staff routes
	staffRoutes := router.Group("")
	staffRoutes.Use(middleware.StaffOnly())

	staffRoutes.Get("/", handler.ListDonations)
	staffRoutes.Put("/:id", handler.UpdateDonation)
	staffRoutes.Post("/:id/complete", handler.CompleteDonation)
}

// setupLocationRoutes configures donation center routes
func setupLocationRoutes(router fiber.Router, handler *handlers.LocationHandler, cfg *config.Config) {
	// Public reads, cached
	router.Get("/", middleware.OptionalAuth(cfg), middleware.PublicCache(5*time.Minute), handler.ListLocations)
	router.Get("/:id", middleware.PublicCache(5*time.Minute), handler.GetLocation)

	// Admin writes
	adminRoutes := router.Group("")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())

	adminRoutes.Post("/", handler.CreateLocation)
	adminRoutes.Put("/:id", handler.UpdateLocation)
	adminRoutes.Delete("/:id", handler.DeactivateLocation)
}
