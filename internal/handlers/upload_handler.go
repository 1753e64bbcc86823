package handlers

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type UploadHandler struct {
	resumeRepo     repositories.ResumeRepository
	storageService services.StorageService
	analyzer       services.ResumeAnalyzer
	maxFileSize    int64
}

// NewUploadHandler wires POST /upload. A nil resumeRepo means the database is
// unavailable and every upload is answered with 503.
func NewUploadHandler(
	resumeRepo repositories.ResumeRepository,
	storageService services.StorageService,
	analyzer services.ResumeAnalyzer,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		resumeRepo:     resumeRepo,
		storageService: storageService,
		analyzer:       analyzer,
		maxFileSize:    maxFileSize,
	}
}

func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	if h.resumeRepo == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Database service unavailable.",
		})
	}

	file, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file part in the request",
		})
	}

	if file.Filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No selected file",
		})
	}

	if !services.AllowedFile(file.Filename) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("File type not allowed. Allowed: %s", strings.Join(services.AllowedExtensions, ", ")),
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	originalFilename := services.SecureFilename(file.Filename)
	if originalFilename == "" {
		originalFilename = "resume" + strings.ToLower(filepath.Ext(file.Filename))
	}

	storedName, filePath, err := h.storageService.SaveFile(file)
	if err != nil {
		log.Printf("❌ Failed to save %s: %v\n", originalFilename, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error during processing.",
		})
	}
	defer func() {
		if err := h.storageService.DeleteFile(storedName); err != nil {
			log.Printf("⚠️  Could not remove temporary file %s: %v\n", storedName, err)
		}
	}()

	jobDescription := strings.TrimSpace(c.FormValue("job_description"))

	analysis := h.analyzer.AnalyzeResume(c.UserContext(), filePath, jobDescription)
	if failure, failed := analysis.Failure(); failed {
		log.Printf("⚠️  Analysis of %s completed with error: %s\n", originalFilename, failure)
	}

	resume := models.Resume{
		ID:                     uuid.New(),
		OriginalFilename:       originalFilename,
		Analysis:               analysis,
		JobDescriptionProvided: jobDescription != "",
		UploadTimestamp:        time.Now().UTC(),
	}

	if err := h.resumeRepo.Create(&resume); err != nil {
		log.Printf("❌ Failed to store analysis for %s: %v\n", originalFilename, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error during processing.",
		})
	}

	log.Printf("✅ Stored analysis %s for %s\n", resume.ID, originalFilename)

	return c.Status(fiber.StatusOK).JSON(resume.ToRecord())
}
