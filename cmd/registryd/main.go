package main

import (
	"fmt"
	"log"
	"os"
	"time"

	// Import Swagger docs
	_ "github.com/LTPPPP/did-trust-registry/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/joho/godotenv"

	"github.com/LTPPPP/did-trust-registry/api"
	"github.com/LTPPPP/did-trust-registry/config"
	"github.com/LTPPPP/did-trust-registry/db"
	"github.com/LTPPPP/did-trust-registry/did"
	"github.com/LTPPPP/did-trust-registry/docref"
	"github.com/LTPPPP/did-trust-registry/middleware"
	"github.com/LTPPPP/did-trust-registry/offchainsig"
	"github.com/LTPPPP/did-trust-registry/runtime"
	"github.com/LTPPPP/did-trust-registry/trustregistry"
)

// @title DID Trust Registry API
// @version 1.0
// @description Decentralized identifier registry, off-chain BBS/BBS+/PS signature parameter store, and trust registry
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token (operator/admin API only; DID-authenticated writes are signed, not bearer-tokened).
func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default environment variables")
	}

	// Load configuration
	cfg := config.GetConfig()

	i18n, err := middleware.NewI18n(cfg.DefaultLang, cfg.LocalesDir)
	if err != nil {
		log.Fatalf("Failed to load locales: %v", err)
	}

	// Initialize database connection
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	didEvents := runtime.NewEventBus()
	offchainEvents := runtime.NewEventBus()
	trustEvents := runtime.NewEventBus()

	audit := db.NewAuditLog()
	audit.Attach(didEvents)
	audit.Attach(offchainEvents)
	audit.Attach(trustEvents)

	clock := runtime.NewBlockClock(cfg.GenesisBlockNumber)
	registry := did.NewRegistry(runtime.DefaultVerifiers(), didEvents, clock.Next)
	offchainSigs := offchainsig.NewStore(registry, offchainEvents)
	trustRegistries := trustregistry.NewStore(registry, trustEvents)
	docRefs := docref.NewResolver()

	deps := &api.Deps{
		DIDs:            registry,
		OffchainSigs:    offchainSigs,
		TrustRegistries: trustRegistries,
		DocRefs:         docRefs,
	}

	// Create a new Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "did-trust-registry",
		ErrorHandler: api.ErrorHandler,
		ReadTimeout:  time.Duration(cfg.ServerTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.ServerTimeout) * time.Second,
	})

	// Use global middlewares
	app.Use(recover.New())
	app.Use(middleware.I18nMiddleware(i18n))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.RateLimitMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-DID, X-DID-Proof, X-DID-Timestamp",
		AllowCredentials: true,
	}))

	// Setup Swagger
	app.Get("/swagger/*", swagger.New(swagger.Config{
		URL:         "/swagger/doc.json",
		DeepLinking: true,
	}))

	// Setup API routes
	api.SetupRoutes(app, deps)

	// Print startup message
	startupMessage(cfg)

	// Start the server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}

// startupMessage prints a startup message with the server configuration
func startupMessage(cfg *config.Config) {
	fmt.Println("┌─────────────────────────────────────────────────────┐")
	fmt.Println("│                 DID Trust Registry                   │")
	fmt.Println("├─────────────────────────────────────────────────────┤")
	fmt.Println("│ DIDs, off-chain signature params, and trust registry│")
	fmt.Println("│ Built with Go and Fiber                             │")
	fmt.Println("├─────────────────────────────────────────────────────┤")
	fmt.Printf("│ HTTP Server running on port %-24s │\n", cfg.ServerPort)
	fmt.Printf("│ Swagger UI available at http://localhost:%s/swagger  │\n", cfg.ServerPort)
	fmt.Println("├─────────────────────────────────────────────────────┤")
	fmt.Printf("│ Environment: %-38s │\n", os.Getenv("GO_ENV"))
	fmt.Println("└─────────────────────────────────────────────────────┘")
}
