package console

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Element ids the page must expose.
const (
	IDUploadForm     = "upload-form"
	IDResumeFile     = "resume-file"
	IDJobDescription = "job-description"
	IDUploadButton   = "upload-button"
	IDLoading        = "loading"
	IDAnalysisResult = "analysis-result"
	IDResultContent  = "result-content"
	IDErrorMessage   = "error-message"
	IDHistorySection = "history-section"
	IDHistoryList    = "history-list"
	IDRefreshHistory = "refresh-history-button"
)

const (
	hiddenClass       = "hidden"
	uploadButtonLabel = "Upload & Analyze"
	busyButtonLabel   = "Analyzing..."
)

//go:embed templates/index.html
var indexHTML string

// Page is the console document with every element the controller drives bound
// by id. It is not safe for concurrent use; mutate it through an EventLoop.
type Page struct {
	doc *goquery.Document

	uploadForm     *goquery.Selection
	fileInput      *goquery.Selection
	jobDescription *goquery.Selection
	uploadButton   *goquery.Selection
	loading        *goquery.Selection
	analysisResult *goquery.Selection
	resultContent  *goquery.Selection
	errorMessage   *goquery.Selection
	historySection *goquery.Selection
	historyList    *goquery.Selection
	refreshButton  *goquery.Selection
}

// NewPage binds the built-in console markup.
func NewPage() (*Page, error) {
	return ParsePage(strings.NewReader(indexHTML))
}

// ParsePage binds markup read from r. It fails when any required id is missing.
func ParsePage(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	p := &Page{doc: doc}
	bindings := []struct {
		id  string
		sel **goquery.Selection
	}{
		{IDUploadForm, &p.uploadForm},
		{IDResumeFile, &p.fileInput},
		{IDJobDescription, &p.jobDescription},
		{IDUploadButton, &p.uploadButton},
		{IDLoading, &p.loading},
		{IDAnalysisResult, &p.analysisResult},
		{IDResultContent, &p.resultContent},
		{IDErrorMessage, &p.errorMessage},
		{IDHistorySection, &p.historySection},
		{IDHistoryList, &p.historyList},
		{IDRefreshHistory, &p.refreshButton},
	}

	var missing []string
	for _, b := range bindings {
		sel := doc.Find("#" + b.id)
		if sel.Length() == 0 {
			missing = append(missing, b.id)
			continue
		}
		*b.sel = sel.First()
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("page is missing elements: %s", strings.Join(missing, ", "))
	}

	return p, nil
}

// ShowLoading marks the upload as in flight.
func (p *Page) ShowLoading() {
	p.loading.RemoveClass(hiddenClass)
	p.uploadButton.SetAttr("disabled", "disabled")
	p.uploadButton.SetText(busyButtonLabel)
	p.errorMessage.AddClass(hiddenClass)
	p.analysisResult.AddClass(hiddenClass)
}

// HideLoading restores the submit control.
func (p *Page) HideLoading() {
	p.loading.AddClass(hiddenClass)
	p.uploadButton.RemoveAttr("disabled")
	p.uploadButton.SetText(uploadButtonLabel)
}

// DisplayError shows "Error: message" and hides the result pane.
func (p *Page) DisplayError(message string) {
	p.errorMessage.SetText("Error: " + message)
	p.errorMessage.RemoveClass(hiddenClass)
	p.analysisResult.AddClass(hiddenClass)
}

func (p *Page) HideError() {
	p.errorMessage.AddClass(hiddenClass)
}

// ShowAnalysis replaces the result pane. A non-empty warning is shown in the error
// region while the result stays visible.
func (p *Page) ShowAnalysis(fragment template.HTML, warning string) {
	p.resultContent.SetHtml("")
	p.errorMessage.AddClass(hiddenClass)

	if warning != "" {
		p.DisplayError("Analysis partially failed: " + warning)
	}

	p.resultContent.SetHtml(string(fragment))
	p.analysisResult.RemoveClass(hiddenClass)
}

func (p *Page) SetHistory(fragment template.HTML) {
	p.historyList.SetHtml(string(fragment))
}

func (p *Page) ClearFileInput() {
	p.fileInput.RemoveAttr("value")
}

func (p *Page) SetJobDescription(text string) {
	p.jobDescription.SetText(text)
}

// HTML renders the whole document.
func (p *Page) HTML() (string, error) {
	html, err := p.doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	return html, nil
}
