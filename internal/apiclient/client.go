package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"alfredoptarigan/resume-analyzer/internal/models"
)

const (
	uploadPath  = "/upload"
	resumesPath = "/resumes"

	FieldResume         = "resume"
	FieldJobDescription = "job_description"
)

// APIError is a non-2xx answer from the analysis backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the analysis backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL. A zero timeout keeps the transport defaults.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// UploadResume posts the file under "resume" and, when non-empty, the job description
// under "job_description". The caller is expected to pass an already trimmed description.
func (c *Client) UploadResume(ctx context.Context, filename string, content io.Reader, jobDescription string) (*models.ResumeRecord, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile(FieldResume, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read resume file: %w", err)
	}

	if jobDescription != "" {
		if err := writer.WriteField(FieldJobDescription, jobDescription); err != nil {
			return nil, fmt.Errorf("failed to write job description: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	payload, err := c.do(req, "Upload failed with status: %d")
	if err != nil {
		return nil, err
	}

	var record models.ResumeRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	return &record, nil
}

// ListResumes fetches the analysis history. A successful answer that is not a JSON
// array yields an empty history.
func (c *Client) ListResumes(ctx context.Context) ([]models.ResumeRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+resumesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	payload, err := c.do(req, "Failed to fetch history: %d")
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("failed to decode history response: invalid JSON")
		}
		return nil, nil
	}

	var records []models.ResumeRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("failed to decode history response: %w", err)
	}

	return records, nil
}

// do executes req and returns the body of a 2xx answer. Other statuses become an
// *APIError carrying the server's "error" field or statusFormat filled with the code.
func (c *Client) do(req *http.Request, statusFormat string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf(statusFormat, resp.StatusCode),
		}
		var errResp models.ErrorResponse
		if err := json.Unmarshal(payload, &errResp); err == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
		}
		return nil, apiErr
	}

	return payload, nil
}
