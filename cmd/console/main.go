package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/resume-analyzer/internal/apiclient"
	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/console"
	"alfredoptarigan/resume-analyzer/internal/handlers"
)

const multipartOverhead = 1 << 20

func main() {
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	page, err := console.NewPage()
	if err != nil {
		log.Fatalf("❌ Failed to load console page: %v", err)
	}

	loop := console.NewEventLoop(page)
	loop.Start()
	log.Println("✅ Event loop started")

	client := apiclient.New(cfg.Console.BackendURL, cfg.Console.BackendTimeout)
	controller := console.NewController(loop, client, cfg.DisplayLocation())

	// A failed first load is already rendered in the history list.
	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := controller.Init(initCtx); err != nil {
		log.Printf("⚠️  Initial history load failed: %v\n", err)
	}
	cancel()

	consoleHandler := handlers.NewConsoleHandler(controller)

	app := fiber.New(fiber.Config{
		AppName:      "Resume Analyzer Console",
		ReadTimeout:  30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + multipartOverhead,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	handlers.RegisterConsoleRoutes(app, consoleHandler)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down console...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Console forced to shutdown: %v", err)
		}
		loop.Stop()
	}()

	addr := fmt.Sprintf(":%s", cfg.Console.Port)
	log.Printf("🚀 Console starting on %s (backend %s)\n", addr, cfg.Console.BackendURL)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start console: %v", err)
	}
}
