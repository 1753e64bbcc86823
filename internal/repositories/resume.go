package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/resume-analyzer/internal/models"
)

type ResumeRepository interface {
	Create(resume *models.Resume) error
	FindAll() ([]models.Resume, error)
}

type resumeRepository struct {
	db *gorm.DB
}

// Create implements ResumeRepository.
func (r *resumeRepository) Create(resume *models.Resume) error {
	if err := r.db.Create(resume).Error; err != nil {
		return fmt.Errorf("failed to create resume: %w", err)
	}

	return nil
}

// FindAll returns every stored analysis, newest first.
func (r *resumeRepository) FindAll() ([]models.Resume, error) {
	var resumes []models.Resume
	if err := r.db.Order("upload_timestamp DESC").Find(&resumes).Error; err != nil {
		return nil, fmt.Errorf("failed to find resumes: %w", err)
	}

	return resumes, nil
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}
