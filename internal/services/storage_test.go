package services

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("resume", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["resume"][0]
}

func TestAllowedFile(t *testing.T) {
	for _, name := range []string{"cv.pdf", "CV.PDF", "cv.docx", "notes.TxT"} {
		assert.True(t, AllowedFile(name), name)
	}
	for _, name := range []string{"cv", "cv.doc", "cv.pdf.exe", ".pdf.", ""} {
		assert.False(t, AllowedFile(name), name)
	}
}

func TestSecureFilename(t *testing.T) {
	tests := map[string]string{
		"My Resume.pdf":             "My_Resume.pdf",
		"../../etc/passwd":          "passwd",
		`C:\Users\ada\cv final.docx`: "cv_final.docx",
		"résumé.txt":                "rsum.txt",
		"..":                        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, SecureFilename(in), in)
	}
}

func TestStorageSaveAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	storage := NewStorageService(dir)
	require.NoError(t, storage.EnsureUploadDir())

	name, path, err := storage.SaveFile(fileHeader(t, "cv.PDF", "%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "resume_"))
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.Equal(t, storage.GetFilePath(name), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(content))

	require.NoError(t, storage.DeleteFile(name))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Error(t, storage.DeleteFile(name))
}

func TestStorageRejectsDisallowedExtension(t *testing.T) {
	storage := NewStorageService(t.TempDir())
	_, _, err := storage.SaveFile(fileHeader(t, "payload.exe", "MZ"))
	assert.Error(t, err)
}
