package services

import (
	"fmt"
	"strings"
)

const (
	maxResumeChars         = 20000
	maxJobDescriptionChars = 5000
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildResumeAnalysisPrompt asks for the extraction fields and, when a job
// description is given, a JD-relative score plus matching keywords.
func (pb *PromptBuilder) BuildResumeAnalysisPrompt(resumeText, jobDescription string) string {
	outputKeys := []string{
		`"extracted_name": Candidate's full name (string, null if not found).`,
		`"extracted_email": Candidate's primary email address (string, null if not found).`,
		`"extracted_phone": Candidate's primary phone number (string, null if not found).`,
		`"skills": List of key technical/soft skills (list of strings, [] if none).`,
		`"experience_summary": Concise summary (max 3 sentences) of work experience (string, null if not found).`,
		`"education_summary": Concise summary (max 2 sentences) of education (string, null if not found).`,
	}

	task := "Analyze the following resume text."
	jdSection := ""

	if jobDescription != "" {
		task = "Analyze the following resume text in the context of the provided Job Description."
		jdSection = fmt.Sprintf("Job Description Context:\n---\n%s\n---\n", truncateRunes(jobDescription, maxJobDescriptionChars))
		outputKeys = append(outputKeys,
			`"match_score": An estimated score (0-100) indicating how well the resume matches the Job Description (integer, null if cannot determine).`,
			`"matching_keywords": List of keywords/skills from the resume that strongly match the Job Description requirements (list of strings, [] if none).`,
		)
	} else {
		outputKeys = append(outputKeys,
			`"match_score": A general score (0-100) based on overall quality/clarity (integer, null if cannot determine).`,
		)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Extract the specified information precisely.\n", task)
	b.WriteString(jdSection)
	fmt.Fprintf(&b, "Resume Text:\n---\n%s\n---\n\n", truncateRunes(resumeText, maxResumeChars))
	b.WriteString("Respond ONLY with a valid JSON object containing these keys:\n")
	for _, key := range outputKeys {
		fmt.Fprintf(&b, "- %s\n", key)
	}
	b.WriteString("\nImportant: Use JSON `null` for missing strings, `[]` for missing lists. No text outside the single JSON object.\nJSON Output:\n")

	return b.String()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
