package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"alfredoptarigan/resume-analyzer/internal/models"
)

const (
	analysisTemperature = 0.2
	defaultMatchScore   = 50.0
	minResumeChars      = 30
)

// ResumeAnalyzer turns a stored resume into an analysis. Failures are reported
// through AnalysisResult.LLMError rather than as errors.
type ResumeAnalyzer interface {
	AnalyzeResume(ctx context.Context, filePath, jobDescription string) models.AnalysisResult
}

type resumeAnalyzer struct {
	geminiService GeminiService
	extractor     TextExtractor
	promptBuilder *PromptBuilder
	maxRetries    int
}

// NewResumeAnalyzer creates an analyzer. A nil geminiService means the LLM is
// not configured.
func NewResumeAnalyzer(geminiService GeminiService, extractor TextExtractor, maxRetries int) ResumeAnalyzer {
	return &resumeAnalyzer{
		geminiService: geminiService,
		extractor:     extractor,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

func failedAnalysis(message string) models.AnalysisResult {
	score := 0.0
	return models.AnalysisResult{
		MatchScore: &score,
		LLMError:   &message,
	}
}

func (a *resumeAnalyzer) AnalyzeResume(ctx context.Context, filePath, jobDescription string) models.AnalysisResult {
	name := filepath.Base(filePath)

	if a.geminiService == nil {
		log.Println("❌ LLM analysis skipped: Gemini client not configured")
		return failedAnalysis("LLM service not available.")
	}

	log.Printf("📄 Extracting text from %s\n", name)
	resumeText, err := a.extractor.ExtractText(filePath)
	if err != nil {
		log.Printf("❌ Text extraction failed for %s: %v\n", name, err)
		return failedAnalysis(fmt.Sprintf("Text extraction failed: %v", err))
	}
	if len(strings.TrimSpace(resumeText)) < minResumeChars {
		log.Printf("⚠️  Extracted text from %s seems empty or short\n", name)
	}
	log.Printf("✅ Text extracted from %s: %d characters\n", name, len(resumeText))

	if jobDescription != "" {
		log.Printf("🤖 Analyzing %s against the provided job description\n", name)
	} else {
		log.Printf("🤖 Analyzing %s without a job description\n", name)
	}

	prompt := a.promptBuilder.BuildResumeAnalysisPrompt(resumeText, jobDescription)
	response, err := a.geminiService.GenerateTextWithRetry(ctx, prompt, analysisTemperature, a.maxRetries)
	if err != nil {
		log.Printf("❌ Gemini call failed for %s: %v\n", name, err)
		return failedAnalysis(fmt.Sprintf("LLM analysis failed: %v", err))
	}

	result, err := parseAnalysis(response)
	if err != nil {
		log.Printf("❌ Could not parse Gemini response for %s: %v\n", name, err)
		return failedAnalysis(fmt.Sprintf("LLM analysis failed: %v", err))
	}

	if result.Skills == nil {
		result.Skills = models.StringList{}
	}
	if jobDescription != "" && result.MatchingKeywords == nil {
		result.MatchingKeywords = models.StringList{}
	}
	if result.MatchScore == nil {
		log.Printf("⚠️  Gemini did not provide match_score for %s, using default\n", name)
		score := defaultMatchScore
		result.MatchScore = &score
	}

	return result
}

func parseAnalysis(response string) (models.AnalysisResult, error) {
	var result models.AnalysisResult

	jsonStr, ok := extractJSONObject(response)
	if !ok {
		return result, fmt.Errorf("LLM response did not contain a valid JSON object")
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	// A successful parse clears any error the model echoed back.
	result.LLMError = nil
	return result, nil
}

// extractJSONObject cuts the text between the first '{' and the last '}'.
func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
