package console

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageBindsAllElements(t *testing.T) {
	p, err := NewPage()
	require.NoError(t, err)

	assert.True(t, p.loading.HasClass(hiddenClass))
	assert.True(t, p.analysisResult.HasClass(hiddenClass))
	assert.True(t, p.errorMessage.HasClass(hiddenClass))
	assert.Equal(t, uploadButtonLabel, p.uploadButton.Text())
}

func TestParsePageReportsMissingElements(t *testing.T) {
	_, err := ParsePage(strings.NewReader(`<html><body><form id="upload-form"></form></body></html>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resume-file")
	assert.Contains(t, err.Error(), "refresh-history-button")
	assert.NotContains(t, err.Error(), "upload-form,")
}

func TestPageLoadingCycle(t *testing.T) {
	p, err := NewPage()
	require.NoError(t, err)

	p.ShowLoading()
	assert.False(t, p.loading.HasClass(hiddenClass))
	_, disabled := p.uploadButton.Attr("disabled")
	assert.True(t, disabled)
	assert.Equal(t, busyButtonLabel, p.uploadButton.Text())

	p.HideLoading()
	assert.True(t, p.loading.HasClass(hiddenClass))
	_, disabled = p.uploadButton.Attr("disabled")
	assert.False(t, disabled)
	assert.Equal(t, uploadButtonLabel, p.uploadButton.Text())
}

func TestPageDisplayErrorEscapesText(t *testing.T) {
	p, err := NewPage()
	require.NoError(t, err)

	p.DisplayError("<b>boom</b>")

	assert.Equal(t, "Error: <b>boom</b>", p.errorMessage.Text())
	assert.Equal(t, 0, p.errorMessage.Find("b").Length())
	assert.False(t, p.errorMessage.HasClass(hiddenClass))

	html, err := p.HTML()
	require.NoError(t, err)
	assert.Contains(t, html, "Error: &lt;b&gt;boom&lt;/b&gt;")
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
}

func TestPageShowAnalysisWithWarning(t *testing.T) {
	p, err := NewPage()
	require.NoError(t, err)

	p.ShowAnalysis(`<h3>Analysis for: cv.pdf</h3>`, "quota exceeded")

	assert.False(t, p.analysisResult.HasClass(hiddenClass))
	assert.False(t, p.errorMessage.HasClass(hiddenClass))
	assert.Equal(t, "Error: Analysis partially failed: quota exceeded", p.errorMessage.Text())
	assert.Equal(t, "Analysis for: cv.pdf", p.resultContent.Find("h3").Text())

	p.ShowAnalysis(`<h3>Analysis for: next.pdf</h3>`, "")
	assert.True(t, p.errorMessage.HasClass(hiddenClass))
	assert.Equal(t, 1, p.resultContent.Find("h3").Length())
}
