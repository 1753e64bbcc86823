package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

type ResumeHandler struct {
	resumeRepo repositories.ResumeRepository
}

func NewResumeHandler(resumeRepo repositories.ResumeRepository) *ResumeHandler {
	return &ResumeHandler{
		resumeRepo: resumeRepo,
	}
}

// HandleList serves GET /resumes, newest first.
func (h *ResumeHandler) HandleList(c *fiber.Ctx) error {
	if h.resumeRepo == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Database service unavailable.",
		})
	}

	resumes, err := h.resumeRepo.FindAll()
	if err != nil {
		log.Printf("❌ Failed to load resume history: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve resume history.",
		})
	}

	records := make([]models.ResumeRecord, 0, len(resumes))
	for i := range resumes {
		records = append(records, resumes[i].ToRecord())
	}

	return c.JSON(records)
}
