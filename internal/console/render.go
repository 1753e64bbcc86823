package console

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"alfredoptarigan/resume-analyzer/internal/models"
)

const (
	notCalculated     = "Not Calculated"
	notFound          = "Not Found"
	notAvailable      = "N/A"
	unknownFilename   = "Unknown Filename"
	timestampLayout   = "1/2/2006, 3:04:05 PM"
	loadingHistory    = template.HTML(`<p>Loading history...</p>`)
	emptyHistory      = template.HTML(`<p>No analysis history found.</p>`)
	jdMatchLabel      = " (Job Description Match)"
	generalLabel      = " (General Analysis)"
	historyMatchLabel = " (JD Match)"
)

// All values pass through html/template, so scalar fields and list items are
// escaped the same way.
var resultTmpl = template.Must(template.New("result").Parse(`
<h3>Analysis for: {{.Filename}}</h3>
<p><strong>Database ID:</strong> {{.ID}}</p>
<p><strong>Match Score:</strong> {{.Score}}</p>
<hr>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Phone:</strong> {{.Phone}}</p>
<p><strong>Experience Summary:</strong></p>
<div class="summary-block">{{.Experience}}</div>
<p><strong>Education Summary:</strong></p>
<div class="summary-block">{{.Education}}</div>
<p><strong>Detected Skills:</strong></p>
{{if .Skills}}<ul class="skills-list">{{range .Skills}}<li>{{.}}</li>{{end}}</ul>{{else}}<p>No specific skills extracted.</p>{{end}}
<p><strong>Keywords Matched from JD:</strong></p>
{{if .Keywords}}<ul class="skills-list keywords-list">{{range .Keywords}}<li>{{.}}</li>{{end}}</ul>{{else}}<p>No matching keywords extracted.</p>{{end}}
`))

var historyTmpl = template.Must(template.New("history").Parse(`{{range .}}
<div class="history-item">
<h3>{{.Filename}}</h3>
<span class="timestamp">Analyzed on: {{.Timestamp}}</span>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Match Score:</strong> {{.Score}}</p>
<p><strong>Skills:</strong></p>
{{if .Skills}}<ul class="skills-list">{{range .Skills}}<li>{{.}}</li>{{end}}</ul>{{else}}<p>No specific skills extracted.</p>{{end}}
{{with .Warning}}<p class="llm-warning"><small><em>Note: {{.}}</em></small></p>{{end}}
<p><small><em>DB ID: {{.ID}}</em></small></p>
</div>{{end}}
`))

var historyErrorTmpl = template.Must(template.New("history-error").Parse(
	`<p class="error">Failed to load history: {{.}}</p>`))

type resultView struct {
	Filename   string
	ID         string
	Score      string
	Name       string
	Email      string
	Phone      string
	Experience string
	Education  string
	Skills     []string
	Keywords   []string
}

type historyItemView struct {
	Filename  string
	Timestamp string
	Name      string
	Score     string
	Skills    []string
	Warning   string
	ID        string
}

// jdAware reports whether the score was computed against a job description.
func jdAware(a models.AnalysisResult, jdProvided bool) bool {
	return jdProvided || a.HasScoreDetails()
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64) + "%"
}

// ResultScoreText resolves the score line of a single analysis.
func ResultScoreText(a models.AnalysisResult, jdProvided bool) string {
	if a.MatchScore == nil {
		return notCalculated
	}
	if jdAware(a, jdProvided) {
		return formatScore(*a.MatchScore) + jdMatchLabel
	}
	return formatScore(*a.MatchScore) + generalLabel
}

// HistoryScoreText resolves the shorter score line used in history cards.
func HistoryScoreText(a models.AnalysisResult, jdProvided bool) string {
	if a.MatchScore == nil {
		return notAvailable
	}
	if jdAware(a, jdProvided) {
		return formatScore(*a.MatchScore) + historyMatchLabel
	}
	return formatScore(*a.MatchScore)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

var dateOnlyLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006",
}

// FormatTimestamp renders ts in loc. Numeric timestamps are epoch milliseconds;
// string values that do not parse are returned verbatim.
func FormatTimestamp(ts models.Timestamp, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	if ts.Millis != nil {
		return time.UnixMilli(int64(*ts.Millis)).In(loc).Format(timestampLayout)
	}

	raw := strings.TrimSpace(ts.Text)
	if raw == "" {
		return notAvailable
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.In(loc).Format(timestampLayout)
		}
	}

	// Date-only forms, down to a bare year, are UTC midnight.
	for _, layout := range dateOnlyLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(loc).Format(timestampLayout)
		}
	}

	return raw
}

// RenderResult builds the result pane for a freshly analyzed resume.
func RenderResult(rec *models.ResumeRecord) (template.HTML, error) {
	a := rec.Analysis
	view := resultView{
		Filename:   rec.OriginalFilename,
		ID:         rec.ID,
		Score:      ResultScoreText(a, rec.JobDescriptionProvided),
		Name:       models.StringOr(a.ExtractedName, notFound),
		Email:      models.StringOr(a.ExtractedEmail, notFound),
		Phone:      models.StringOr(a.ExtractedPhone, notFound),
		Experience: models.StringOr(a.ExperienceSummary, notFound),
		Education:  models.StringOr(a.EducationSummary, notFound),
		Skills:     a.Skills,
		Keywords:   a.MatchingKeywords,
	}
	if view.Filename == "" {
		view.Filename = notAvailable
	}
	if view.ID == "" {
		view.ID = notAvailable
	}

	var buf bytes.Buffer
	if err := resultTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render result: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// RenderHistory builds one card per record, or the empty-history placeholder.
func RenderHistory(records []models.ResumeRecord, loc *time.Location) (template.HTML, error) {
	if len(records) == 0 {
		return emptyHistory, nil
	}

	items := make([]historyItemView, 0, len(records))
	for _, rec := range records {
		a := rec.Analysis
		item := historyItemView{
			Filename:  rec.OriginalFilename,
			Timestamp: FormatTimestamp(rec.UploadTimestamp, loc),
			Name:      models.StringOr(a.ExtractedName, notAvailable),
			Score:     HistoryScoreText(a, rec.JobDescriptionProvided),
			Skills:    a.Skills,
			ID:        rec.ID,
		}
		if item.Filename == "" {
			item.Filename = unknownFilename
		}
		if item.ID == "" {
			item.ID = notAvailable
		}
		item.Warning, _ = a.Failure()
		items = append(items, item)
	}

	var buf bytes.Buffer
	if err := historyTmpl.Execute(&buf, items); err != nil {
		return "", fmt.Errorf("failed to render history: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func renderHistoryError(message string) template.HTML {
	var buf bytes.Buffer
	if err := historyErrorTmpl.Execute(&buf, message); err != nil {
		return template.HTML(`<p class="error">Failed to load history.</p>`)
	}
	return template.HTML(buf.String())
}
