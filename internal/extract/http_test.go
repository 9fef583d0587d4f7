package extract

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	filename    string
	contentType string
	content     []byte
	requestID   string
}

func newExtractionServer(t *testing.T, status int, body string, got *received) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post(ExtractPath, func(w http.ResponseWriter, req *http.Request) {
		if got != nil {
			got.requestID = req.Header.Get("X-Request-ID")
			file, hdr, err := req.FormFile("file")
			if err == nil {
				got.filename = hdr.Filename
				got.contentType = hdr.Header.Get("Content-Type")
				got.content, _ = io.ReadAll(file)
				_ = file.Close()
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSubmitSuccess(t *testing.T) {
	var got received
	srv := newExtractionServer(t, http.StatusOK, `{"invoiceId":"inv-42","status":"processed"}`, &got)
	c := NewClient(NewHTTPTransport(srv.URL+"/", nil, nil), 0, nil)

	res := c.Submit(context.Background(), pdfDoc())

	assert.Equal(t, Success{RecordID: "inv-42"}, res)
	assert.Equal(t, "invoice.pdf", got.filename)
	assert.Equal(t, "application/pdf", got.contentType)
	assert.Equal(t, []byte("%PDF-1.7 body"), got.content)
	assert.NotEmpty(t, got.requestID)
}

func TestHTTPSubmitResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Result
	}{
		{"snake case id", `{"invoice_id":"abc"}`, Success{RecordID: "abc"}},
		{"bare id", `{"id":"abc"}`, Success{RecordID: "abc"}},
		{"numeric id", `{"invoiceId":1234}`, Success{RecordID: "1234"}},
		{"data envelope", `{"data":{"invoiceId":"abc"}}`, Success{RecordID: "abc"}},
		{"padded id", `{"invoiceId":"  abc "}`, Success{RecordID: "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newExtractionServer(t, http.StatusOK, tt.body, nil)
			res := NewClient(NewHTTPTransport(srv.URL, nil, nil), 0, nil).Submit(context.Background(), pdfDoc())
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestHTTPSubmitMalformedResponses(t *testing.T) {
	for _, body := range []string{
		`not json`,
		`{}`,
		`{"invoiceId":""}`,
		`{"invoiceId":"   "}`,
		`{"invoiceId":null}`,
		`{"invoiceId":{"nested":true}}`,
		`null`,
	} {
		t.Run(body, func(t *testing.T) {
			srv := newExtractionServer(t, http.StatusOK, body, nil)
			res := NewClient(NewHTTPTransport(srv.URL, nil, nil), 0, nil).Submit(context.Background(), pdfDoc())

			f, ok := res.(Failure)
			require.True(t, ok, "got %#v", res)
			assert.Equal(t, KindUnexpected, f.Kind)
			assert.Contains(t, f.Message, "unexpected response from extraction service: ")
		})
	}
}

func TestHTTPSubmitServiceErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"detail string", http.StatusBadRequest, `{"detail":"Only PDF files are supported"}`, "Only PDF files are supported"},
		{"message key", http.StatusUnprocessableEntity, `{"message":"Could not parse document"}`, "Could not parse document"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"}]}`, "field required"},
		{"plain text", http.StatusInternalServerError, `upstream model timeout`, "upstream model timeout"},
		{"html page", http.StatusBadGateway, `<html>bad gateway</html>`, "extraction service returned status 502"},
		{"empty body", http.StatusServiceUnavailable, ``, "extraction service returned status 503"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newExtractionServer(t, tt.status, tt.body, nil)
			res := NewClient(NewHTTPTransport(srv.URL, nil, nil), 0, nil).Submit(context.Background(), pdfDoc())

			f, ok := res.(Failure)
			require.True(t, ok)
			assert.Equal(t, KindService, f.Kind)
			assert.Equal(t, tt.message, f.Message)
			assert.Equal(t, tt.status, f.Status)
		})
	}
}

func TestHTTPSubmitUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := NewClient(NewHTTPTransport(url, nil, nil), 0, nil).Submit(context.Background(), pdfDoc())

	f, ok := res.(Failure)
	require.True(t, ok)
	assert.Equal(t, KindConnectivity, f.Kind)
	assert.Contains(t, f.Message, "could not reach extraction service: ")
}
