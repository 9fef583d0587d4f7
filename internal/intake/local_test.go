package intake

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestOpenLocalImage(t *testing.T) {
	content := []byte("\x89PNG not really")
	path := writeFile(t, "receipt.PNG", content)

	doc, err := OpenLocal(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "receipt.PNG", doc.Name)
	assert.Equal(t, "image/png", doc.MediaType)
	assert.Equal(t, int64(len(content)), doc.Size)
	assert.Equal(t, NewDocument("x", "", content).SHA256, doc.SHA256)
	assert.Zero(t, doc.Pages)

	rc, err := doc.Open()
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestOpenLocalBrokenPDFStillLoads(t *testing.T) {
	path := writeFile(t, "invoice.pdf", []byte("%PDF-1.4 truncated"))

	doc, err := OpenLocal(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.MediaType)
	assert.Zero(t, doc.Pages)
	assert.True(t, Validate(doc.CandidateFile).Admitted)
}

func TestOpenLocalUnsupportedTypeIsNotRejected(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("hello"))

	doc, err := OpenLocal(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", doc.MediaType)

	out := Validate(doc.CandidateFile)
	assert.False(t, out.Admitted)
	assert.Equal(t, ReasonUnsupportedType, out.RejectionReason)
}

func TestOpenLocalErrors(t *testing.T) {
	_, err := OpenLocal(filepath.Join(t.TempDir(), "missing.pdf"), nil)
	assert.Error(t, err)

	_, err = OpenLocal(t.TempDir(), nil)
	assert.Error(t, err)
}

func TestMediaTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", MediaTypeFor("a.PDF"))
	assert.Equal(t, "image/jpeg", MediaTypeFor("a.jpeg"))
	assert.Equal(t, "image/gif", MediaTypeFor("a.gif"))
	assert.Equal(t, "application/octet-stream", MediaTypeFor("a.unknownext"))
}
