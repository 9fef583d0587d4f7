package intake

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/invoice-intake/constants"
)

func init() {
	// page counting must not create a pdfcpu config dir under $HOME
	api.DisableConfigDir()
}

// Document is a candidate plus a way to read its bytes at submit time.
type Document struct {
	CandidateFile
	Open   func() (io.ReadCloser, error)
	SHA256 string
	Pages  int
}

// NewDocument wraps in-memory content, mostly for tests and piped input.
func NewDocument(name, mediaType string, content []byte) Document {
	sum := sha256.Sum256(content)
	return Document{
		CandidateFile: CandidateFile{Name: name, MediaType: mediaType, Size: int64(len(content))},
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
		SHA256: hex.EncodeToString(sum[:]),
	}
}

// OpenLocal builds a Document from a path on disk. It never rejects a file on
// type or size; that is Validate's job.
func OpenLocal(path string, logger *slog.Logger) (Document, error) {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, fmt.Errorf("abs path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Document{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Document{}, fmt.Errorf("%s is a directory", path)
	}

	sum, err := hashFile(abs)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		CandidateFile: CandidateFile{
			Name:      filepath.Base(abs),
			MediaType: MediaTypeFor(abs),
			Size:      info.Size(),
		},
		Open: func() (io.ReadCloser, error) {
			return os.Open(abs)
		},
		SHA256: sum,
	}

	if doc.IsPDF() {
		n, err := api.PageCountFile(abs)
		if err != nil {
			logger.Debug("intake.pdf.pagecount.failed", "path", abs, "err", err)
		} else {
			doc.Pages = n
		}
	}

	logger.Debug("intake.opened",
		"name", doc.Name,
		"media_type", doc.MediaType,
		"size", doc.Size,
		"sha256", doc.SHA256,
		"pages", doc.Pages,
	)
	return doc, nil
}

// MediaTypeFor derives the declared media type from the file extension.
// Unknown extensions yield application/octet-stream.
func MediaTypeFor(path string) string {
	ext := filepath.Ext(path)
	if mt := constants.MediaTypeForExt(ext); mt != "" {
		return mt
	}
	if mt := mime.TypeByExtension(strings.ToLower(ext)); mt != "" {
		if base, _, err := mime.ParseMediaType(mt); err == nil {
			return base
		}
		return mt
	}
	return "application/octet-stream"
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			slog.Warn("intake.close.failed", "path", path, "err", err)
		}
	}(f)

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
