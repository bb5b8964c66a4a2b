package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-review/internal/shared/server/middleware"
	"resume-review/internal/shared/server/respond"
)

const testBrowserID = "browser-1"

func newHandlerRouter(f serviceFixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Identity())
	NewHandler(f.svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func multipartUpload(t *testing.T, fileName, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, w.FormDataContentType()
}

func doUpload(t *testing.T, r *gin.Engine, fileName, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartUpload(t, fileName, contentType, data)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-Client-Id", testBrowserID)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-Client-Id", testBrowserID)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeUploadResponse(t *testing.T, resp *httptest.ResponseRecorder) UploadResponse {
	t.Helper()
	var out UploadResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, resp.Body.String())
	}
	return out
}

func TestUploadEndpointReturnsEnvelope(t *testing.T) {
	f := newServiceFixture(&countingProvider{rec: sampleAnalysis()})
	r := newHandlerRouter(f)

	resp := doUpload(t, r, "resume.pdf", "application/pdf", pdfBytes(2048))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	out := decodeUploadResponse(t, resp)
	if !out.Success || out.Message != messageUploadOK || out.Code != "" {
		t.Fatalf("unexpected envelope: %+v", out)
	}
	if out.Data == nil || out.Data.ID == "" || out.Data.FileName != "resume.pdf" {
		t.Fatalf("expected stored record in data, got %+v", out.Data)
	}
	if out.Data.RatingBand != BandStrong {
		t.Fatalf("expected strong band for 8.5, got %q", out.Data.RatingBand)
	}
	if f.state(t) != "done" {
		t.Fatalf("expected done state, got %q", f.state(t))
	}
}

func TestUploadEndpointFailures(t *testing.T) {
	tests := []struct {
		name        string
		provider    *countingProvider
		setup       func(f serviceFixture)
		contentType string
		data        []byte
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "not a pdf",
			provider:    &countingProvider{rec: sampleAnalysis()},
			contentType: "image/png",
			data:        []byte("png"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantMessage: "Please upload a PDF file only",
		},
		{
			name:        "too large",
			provider:    &countingProvider{rec: sampleAnalysis()},
			contentType: "application/pdf",
			data:        pdfBytes(12 << 20),
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantCode:    ErrorCodeFileTooLarge,
			wantMessage: "File size must be less than 10MB",
		},
		{
			name:     "already uploading",
			provider: &countingProvider{rec: sampleAnalysis()},
			setup: func(f serviceFixture) {
				_ = f.tracker.Begin(context.Background(), testClient)
			},
			contentType: "application/pdf",
			data:        pdfBytes(1024),
			wantStatus:  http.StatusConflict,
			wantCode:    ErrorCodeUploadInProgress,
			wantMessage: messageInFlight,
		},
		{
			name:        "provider timeout",
			provider:    &countingProvider{err: &ProviderError{Kind: ProviderTimeout, Err: context.DeadlineExceeded}},
			contentType: "application/pdf",
			data:        pdfBytes(1024),
			wantStatus:  http.StatusGatewayTimeout,
			wantCode:    ErrorCodeProvider,
			wantMessage: messageUploadFailed,
		},
		{
			name:        "provider unreadable",
			provider:    &countingProvider{err: &ProviderError{Kind: ProviderUnreadable, Err: errBoom}},
			contentType: "application/pdf",
			data:        pdfBytes(1024),
			wantStatus:  http.StatusBadGateway,
			wantCode:    ErrorCodeProvider,
			wantMessage: messageUploadFailed,
		},
		{
			name:     "store write failure",
			provider: &countingProvider{rec: sampleAnalysis()},
			setup: func(f serviceFixture) {
				f.repo.createErr = errBoom
			},
			contentType: "application/pdf",
			data:        pdfBytes(1024),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    ErrorCodeStoreWrite,
			wantMessage: messageUploadFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(tt.provider)
			if tt.setup != nil {
				tt.setup(f)
			}
			r := newHandlerRouter(f)

			resp := doUpload(t, r, "resume.pdf", tt.contentType, tt.data)
			if resp.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, resp.Code, resp.Body.String())
			}
			out := decodeUploadResponse(t, resp)
			if out.Success || out.Code != tt.wantCode || out.Message != tt.wantMessage || out.Data != nil {
				t.Fatalf("unexpected envelope: %+v", out)
			}
			list, _ := f.repo.List(context.Background())
			if len(list) != 0 {
				t.Fatalf("expected nothing stored, got %d records", len(list))
			}
		})
	}
}

func TestUploadEndpointRequiresFile(t *testing.T) {
	f := newServiceFixture(&countingProvider{rec: sampleAnalysis()})
	r := newHandlerRouter(f)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if f.provider.Calls() != 0 {
		t.Fatalf("provider must not be called without a file")
	}
}

func TestHistoryEndpoint(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		f := newServiceFixture(&countingProvider{})
		resp := doGet(newHandlerRouter(f), "/api/v1/resumes")
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		if got := bytes.TrimSpace(resp.Body.Bytes()); string(got) != "[]" {
			t.Fatalf("expected empty array, got %s", got)
		}
	})

	t.Run("store unavailable", func(t *testing.T) {
		f := newServiceFixture(&countingProvider{})
		f.repo.listErr = errBoom
		resp := doGet(newHandlerRouter(f), "/api/v1/resumes")
		if resp.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", resp.Code)
		}
		var body respond.ErrorResponse
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Error.Code != ErrorCodeHistory {
			t.Fatalf("expected %s, got %q", ErrorCodeHistory, body.Error.Code)
		}
	})

	t.Run("records with bands", func(t *testing.T) {
		f := newServiceFixture(&countingProvider{})
		weak := sampleRecord()
		weak.AIFeedback.Rating = 4
		if _, err := f.repo.Create(context.Background(), weak); err != nil {
			t.Fatalf("seed: %v", err)
		}
		resp := doGet(newHandlerRouter(f), "/api/v1/resumes")
		var views []RecordView
		if err := json.Unmarshal(resp.Body.Bytes(), &views); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(views) != 1 || views[0].RatingBand != BandWeak {
			t.Fatalf("unexpected history: %+v", views)
		}
	})
}

func TestGetEndpoint(t *testing.T) {
	f := newServiceFixture(&countingProvider{})
	stored, err := f.repo.Create(context.Background(), sampleRecord())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	r := newHandlerRouter(f)

	resp := doGet(r, "/api/v1/resumes/"+stored.ID)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var view RecordView
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.ID != stored.ID || view.RatingBand != BandStrong {
		t.Fatalf("unexpected record: %+v", view)
	}

	if resp := doGet(r, "/api/v1/resumes/missing"); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestSourceEndpointStreamsArchivedPDF(t *testing.T) {
	f := newServiceFixture(&countingProvider{rec: sampleAnalysis()})
	r := newHandlerRouter(f)
	data := pdfBytes(4096)

	up := doUpload(t, r, "cv.pdf", "application/pdf", data)
	if up.Code != http.StatusCreated {
		t.Fatalf("upload failed: %d %s", up.Code, up.Body.String())
	}
	id := decodeUploadResponse(t, up).Data.ID

	resp := doGet(r, "/api/v1/resumes/"+id+"/source")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != ContentTypePDF {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); cd != `inline; filename=cv.pdf` {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if !bytes.Equal(resp.Body.Bytes(), data) {
		t.Fatalf("streamed body differs from upload")
	}

	seeded, _ := f.repo.Create(context.Background(), sampleRecord())
	if resp := doGet(r, "/api/v1/resumes/"+seeded.ID+"/source"); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for record without source, got %d", resp.Code)
	}
}
