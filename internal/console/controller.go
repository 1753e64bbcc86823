package console

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"alfredoptarigan/resume-analyzer/internal/models"
)

// AllowedExtensions are matched case-insensitively against the uploaded file name.
var AllowedExtensions = []string{".pdf", ".docx", ".txt"}

const (
	msgNoFile          = "Please select a resume file to upload."
	msgUnexpectedError = "An unexpected error occurred during upload or analysis."
)

var (
	ErrNoFile          = errors.New("no resume file selected")
	ErrInvalidFileType = errors.New("invalid resume file type")
)

// Backend is the analysis service the console talks to.
type Backend interface {
	UploadResume(ctx context.Context, filename string, content io.Reader, jobDescription string) (*models.ResumeRecord, error)
	ListResumes(ctx context.Context) ([]models.ResumeRecord, error)
}

// Upload is the file picked in the upload form.
type Upload struct {
	Filename string
	Content  io.Reader
}

// Submission is one submit of the upload form. File is nil when nothing was picked.
type Submission struct {
	File           *Upload
	JobDescription string
}

// Controller drives the upload form, the result pane and the history list of a
// single page. Construct it once at startup.
type Controller struct {
	loop     *EventLoop
	backend  Backend
	location *time.Location

	historySeq atomic.Uint64
}

func NewController(loop *EventLoop, backend Backend, location *time.Location) *Controller {
	if location == nil {
		location = time.Local
	}
	return &Controller{
		loop:     loop,
		backend:  backend,
		location: location,
	}
}

// Init loads the history for the first render.
func (c *Controller) Init(ctx context.Context) error {
	return c.RefreshHistory(ctx)
}

// AllowedFile reports whether filename carries one of AllowedExtensions.
func AllowedFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Submit validates the picked file, uploads it, renders the analysis and refreshes
// the history. Every failure is also shown on the page.
func (c *Controller) Submit(ctx context.Context, sub Submission) error {
	// The textarea keeps what the user typed across submits.
	if err := c.loop.Do(ctx, func(p *Page) { p.SetJobDescription(sub.JobDescription) }); err != nil {
		return err
	}

	if sub.File == nil || sub.File.Filename == "" {
		c.displayError(ctx, msgNoFile)
		return ErrNoFile
	}

	if !AllowedFile(sub.File.Filename) {
		c.displayError(ctx, fmt.Sprintf("Invalid file type. Allowed types: %s", strings.Join(AllowedExtensions, ", ")))
		return fmt.Errorf("%w: %s", ErrInvalidFileType, sub.File.Filename)
	}

	jobDescription := strings.TrimSpace(sub.JobDescription)

	record, err := c.upload(ctx, sub.File, jobDescription)
	if err != nil {
		log.Printf("❌ Upload of %s failed: %v\n", sub.File.Filename, err)
		message := err.Error()
		if message == "" {
			message = msgUnexpectedError
		}
		c.displayError(ctx, message)
		return err
	}

	log.Printf("✅ Analysis received for %s (id %s)\n", record.OriginalFilename, record.ID)

	fragment, err := RenderResult(record)
	if err != nil {
		c.displayError(ctx, err.Error())
		return err
	}
	warning, _ := record.Analysis.Failure()

	if err := c.loop.Do(ctx, func(p *Page) {
		p.ShowAnalysis(fragment, warning)
		p.ClearFileInput()
	}); err != nil {
		return err
	}

	if err := c.refreshHistory(ctx, false); err != nil {
		log.Printf("⚠️  History refresh after upload failed: %v\n", err)
	}

	return nil
}

// RefreshHistory re-fetches the history list.
func (c *Controller) RefreshHistory(ctx context.Context) error {
	return c.refreshHistory(ctx, true)
}

// upload holds the busy state for exactly the duration of the request.
func (c *Controller) upload(ctx context.Context, file *Upload, jobDescription string) (*models.ResumeRecord, error) {
	release, err := c.acquireBusy(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if jobDescription != "" {
		log.Printf("📎 Uploading %s with a job description\n", file.Filename)
	} else {
		log.Printf("📎 Uploading %s\n", file.Filename)
	}

	return c.backend.UploadResume(ctx, file.Filename, file.Content, jobDescription)
}

// acquireBusy disables the submit control and shows the loading indicator. The
// returned release must run on every exit path; it ignores cancellation of ctx.
func (c *Controller) acquireBusy(ctx context.Context) (func(), error) {
	if err := c.loop.Do(ctx, (*Page).ShowLoading); err != nil {
		return nil, err
	}

	releaseCtx := context.WithoutCancel(ctx)
	return func() {
		if err := c.loop.Do(releaseCtx, (*Page).HideLoading); err != nil {
			log.Printf("⚠️  Failed to restore upload controls: %v\n", err)
		}
	}, nil
}

// refreshHistory applies the answer only if no newer refresh started meanwhile.
func (c *Controller) refreshHistory(ctx context.Context, clearError bool) error {
	seq := c.historySeq.Add(1)

	if err := c.loop.Do(ctx, func(p *Page) {
		p.SetHistory(loadingHistory)
		if clearError {
			p.HideError()
		}
	}); err != nil {
		return err
	}

	records, fetchErr := c.backend.ListResumes(ctx)

	var fragment template.HTML
	if fetchErr == nil {
		fragment, fetchErr = RenderHistory(records, c.location)
	}
	if fetchErr != nil {
		log.Printf("❌ Failed to fetch history: %v\n", fetchErr)
		fragment = renderHistoryError(fetchErr.Error())
	}

	stale := false
	if err := c.loop.Do(context.WithoutCancel(ctx), func(p *Page) {
		if c.historySeq.Load() != seq {
			stale = true
			return
		}
		p.SetHistory(fragment)
	}); err != nil {
		return err
	}

	if stale {
		log.Printf("⚠️  Discarded history response #%d, a newer refresh is pending\n", seq)
		return nil
	}

	return fetchErr
}

func (c *Controller) displayError(ctx context.Context, message string) {
	if err := c.loop.Do(ctx, func(p *Page) { p.DisplayError(message) }); err != nil {
		log.Printf("⚠️  Failed to display error %q: %v\n", message, err)
	}
}

// Render returns the current page markup.
func (c *Controller) Render(ctx context.Context) (string, error) {
	var (
		html      string
		renderErr error
	)
	if err := c.loop.Do(ctx, func(p *Page) { html, renderErr = p.HTML() }); err != nil {
		return "", err
	}
	return html, renderErr
}
