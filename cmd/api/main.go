package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/handlers"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

// multipartOverhead leaves room for form boundaries and the job description.
const multipartOverhead = 1 << 20

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// The API still starts without a database; /upload and /resumes answer 503.
	var resumeRepo repositories.ResumeRepository
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Printf("⚠️  Database unavailable, persistence disabled: %v\n", err)
	} else {
		resumeRepo = repositories.NewResumeRepository(db)
		log.Println("✅ Repositories initialized successfully")
	}

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	textExtractor := services.NewTextExtractor()
	log.Println("✅ Services initialized successfully")

	// Without Gemini every analysis carries llm_error instead of failing the upload.
	var geminiService services.GeminiService
	if gs, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model); err != nil {
		log.Printf("⚠️  Gemini AI unavailable, analyses will report an error: %v\n", err)
	} else {
		geminiService = gs
		log.Println("✅ Gemini AI initialized successfully")
	}

	analyzer := services.NewResumeAnalyzer(geminiService, textExtractor, cfg.Gemini.RetryMaxAttempts)
	log.Println("✅ Resume analyzer initialized")

	// Initialize Handlers
	uploadHandler := handlers.NewUploadHandler(
		resumeRepo,
		storageService,
		analyzer,
		cfg.Storage.MaxFileSize,
	)
	resumeHandler := handlers.NewResumeHandler(resumeRepo)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Analyzer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + multipartOverhead,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	handlers.RegisterAPIRoutes(app, uploadHandler, resumeHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
