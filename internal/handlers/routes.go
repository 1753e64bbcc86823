package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterAPIRoutes mounts the analysis backend.
func RegisterAPIRoutes(app *fiber.App, uploadHandler *UploadHandler, resumeHandler *ResumeHandler) {
	app.Get("/health", healthCheck)

	app.Post("/upload", uploadHandler.HandleUpload)
	app.Get("/resumes", resumeHandler.HandleList)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Analyzer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /upload",
				"GET /resumes",
			},
		})
	})
}

// RegisterConsoleRoutes mounts the upload and history page.
func RegisterConsoleRoutes(app *fiber.App, consoleHandler *ConsoleHandler) {
	app.Get("/health", healthCheck)

	app.Get("/", consoleHandler.HandlePage)
	app.Post("/console/upload", consoleHandler.HandleUpload)
	app.Post("/console/history/refresh", consoleHandler.HandleRefresh)
}

func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now(),
	})
}

// ErrorHandler renders every unhandled error as {"error": ..., "code": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
