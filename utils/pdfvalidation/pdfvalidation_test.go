package pdfvalidation

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a real multipart.FileHeader around the given content
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 10240)
	require.NoError(t, err)

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestValidatePDFFileRejectsOversized(t *testing.T) {
	// Size is checked before the file is opened
	header := &multipart.FileHeader{
		Filename: "huge.pdf",
		Size:     int64(BrochureLimits.MaxFileSizeMB+1) * 1024 * 1024,
	}

	result, err := ValidatePDFFile(header, BrochureLimits)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "exceeds maximum allowed size")
}

func TestValidatePDFFileRejectsWrongExtension(t *testing.T) {
	header := fileHeader(t, "brochure.docx", []byte("%PDF-1.4 not really"))

	result, err := ValidatePDFFile(header, BrochureLimits)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Only PDF files are supported", result.Error)
}

func TestValidatePDFFileRejectsMissingHeader(t *testing.T) {
	header := fileHeader(t, "brochure.pdf", []byte("this is not a pdf at all"))

	result, err := ValidatePDFFile(header, BrochureLimits)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Invalid PDF file: missing PDF header", result.Error)
}

func TestValidatePDFFileRejectsCorruptBody(t *testing.T) {
	header := fileHeader(t, "brochure.pdf", []byte("%PDF-1.4\ngarbage without structure"))

	result, err := ValidatePDFFile(header, BrochureLimits)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Error)
}

func TestSanitizePDFTrimsTrailingGarbage(t *testing.T) {
	content := []byte("%PDF-1.4\nbody\n%%EOF\nTRAILING GARBAGE")
	cleaned := sanitizePDF(content)
	assert.True(t, bytes.HasSuffix(cleaned, []byte("%%EOF\n")))
	assert.False(t, bytes.Contains(cleaned, []byte("GARBAGE")))
}

func TestSanitizePDFLeavesNonPDFAlone(t *testing.T) {
	content := []byte("not a pdf")
	assert.Equal(t, content, sanitizePDF(content))
}
