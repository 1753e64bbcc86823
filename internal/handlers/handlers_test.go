package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type fakeRepo struct {
	created []models.Resume
	stored  []models.Resume
	err     error
}

func (r *fakeRepo) Create(resume *models.Resume) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, *resume)
	return nil
}

func (r *fakeRepo) FindAll() ([]models.Resume, error) {
	return r.stored, r.err
}

type fakeAnalyzer struct {
	paths           []string
	jobDescriptions []string
	result          models.AnalysisResult
}

func (a *fakeAnalyzer) AnalyzeResume(_ context.Context, filePath, jobDescription string) models.AnalysisResult {
	a.paths = append(a.paths, filePath)
	a.jobDescriptions = append(a.jobDescriptions, jobDescription)
	if _, err := os.Stat(filePath); err != nil {
		msg := "file missing during analysis"
		return models.AnalysisResult{LLMError: &msg}
	}
	return a.result
}

func newAPIApp(t *testing.T, repo *fakeRepo, analyzer *fakeAnalyzer) *fiber.App {
	t.Helper()
	storage := services.NewStorageService(t.TempDir())

	var r repositories.ResumeRepository
	if repo != nil {
		r = repo
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterAPIRoutes(app,
		NewUploadHandler(r, storage, analyzer, 1024),
		NewResumeHandler(r),
	)
	return app
}

func multipartBody(t *testing.T, field, filename, content string, values map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range values {
		require.NoError(t, w.WriteField(k, v))
	}
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error
}

func TestUploadStoresAnalysis(t *testing.T) {
	score := 77.0
	repo := &fakeRepo{}
	analyzer := &fakeAnalyzer{result: models.AnalysisResult{MatchScore: &score, Skills: models.StringList{"Go"}}}
	app := newAPIApp(t, repo, analyzer)

	body, contentType := multipartBody(t, "resume", "My CV.pdf", "%PDF-1.4", map[string]string{"job_description": "  Go developer  "})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var record models.ResumeRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	assert.Equal(t, "My_CV.pdf", record.OriginalFilename)
	assert.True(t, record.JobDescriptionProvided)
	assert.Equal(t, 77.0, *record.Analysis.MatchScore)
	_, err = uuid.Parse(record.ID)
	assert.NoError(t, err)
	_, err = time.Parse(time.RFC3339Nano, record.UploadTimestamp.Text)
	assert.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, []string{"Go developer"}, analyzer.jobDescriptions)

	// The stored upload is removed once analysed.
	_, err = os.Stat(analyzer.paths[0])
	assert.True(t, os.IsNotExist(err))
}

func TestUploadStoresFailedAnalysis(t *testing.T) {
	msg := "LLM service not available."
	score := 0.0
	repo := &fakeRepo{}
	app := newAPIApp(t, repo, &fakeAnalyzer{result: models.AnalysisResult{MatchScore: &score, LLMError: &msg}})

	body, contentType := multipartBody(t, "resume", "cv.txt", "hello", nil)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, repo.created, 1)
	assert.False(t, repo.created[0].JobDescriptionProvided)
	assert.Equal(t, msg, *repo.created[0].Analysis.LLMError)
}

func TestUploadRejections(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		filename string
		content  string
		repo     *fakeRepo
		status   int
		message  string
	}{
		{name: "no database", field: "resume", filename: "cv.pdf", status: http.StatusServiceUnavailable, message: "Database service unavailable."},
		{name: "no file part", repo: &fakeRepo{}, status: http.StatusBadRequest, message: "No file part in the request"},
		{name: "wrong field", field: "cv", filename: "cv.pdf", repo: &fakeRepo{}, status: http.StatusBadRequest, message: "No file part in the request"},
		{name: "bad extension", field: "resume", filename: "cv.exe", repo: &fakeRepo{}, status: http.StatusBadRequest, message: "File type not allowed. Allowed: pdf, docx, txt"},
		{name: "too large", field: "resume", filename: "cv.txt", content: string(make([]byte, 2048)), repo: &fakeRepo{}, status: http.StatusBadRequest, message: "File too large. Max size: 1024 bytes"},
		{name: "store failure", field: "resume", filename: "cv.txt", content: "x", repo: &fakeRepo{err: errors.New("db down")}, status: http.StatusInternalServerError, message: "Internal server error during processing."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newAPIApp(t, tt.repo, &fakeAnalyzer{})

			body, contentType := multipartBody(t, tt.field, tt.filename, tt.content, map[string]string{"job_description": ""})
			req := httptest.NewRequest(http.MethodPost, "/upload", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.message, decodeError(t, resp))
		})
	}
}

func TestListResumes(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{stored: []models.Resume{{
		ID:               id,
		OriginalFilename: "cv.pdf",
		UploadTimestamp:  time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC),
	}}}
	app := newAPIApp(t, repo, &fakeAnalyzer{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/resumes", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records []models.ResumeRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, id.String(), records[0].ID)
	assert.Equal(t, models.TimestampText("2024-03-05T14:07:09Z"), records[0].UploadTimestamp)
}

func TestListResumesEmptyIsArray(t *testing.T) {
	app := newAPIApp(t, &fakeRepo{}, &fakeAnalyzer{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/resumes", nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(raw))
}

func TestListResumesFailures(t *testing.T) {
	app := newAPIApp(t, &fakeRepo{err: errors.New("connection reset")}, &fakeAnalyzer{})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/resumes", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to retrieve resume history.", decodeError(t, resp))

	app = newAPIApp(t, nil, &fakeAnalyzer{})
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/resumes", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	app := newAPIApp(t, &fakeRepo{}, &fakeAnalyzer{})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
