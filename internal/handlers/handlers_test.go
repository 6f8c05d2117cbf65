package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/soundbite/internal/common"
	"github.com/ternarybob/soundbite/internal/models"
	"github.com/ternarybob/soundbite/internal/services/vision"
)

// mockSoundService implements interfaces.SoundService for testing
type mockSoundService struct {
	describeFunc func(ctx context.Context, dataURL string) (string, error)
	searchFunc   func(ctx context.Context, query string, limit int, threshold float64) ([]models.RankedSoundBite, error)
	matchFunc    func(ctx context.Context, dataURL string, limit int, threshold float64) (*models.MatchResult, error)
	uploadFunc   func(ctx context.Context, sound *models.NewSoundBite) (*models.SoundBite, error)
	schemaFunc   func(ctx context.Context) (*models.Schema, error)
	readyErr     error
}

func (m *mockSoundService) Describe(ctx context.Context, dataURL string) (string, error) {
	if m.describeFunc != nil {
		return m.describeFunc(ctx, dataURL)
	}
	return "", nil
}

func (m *mockSoundService) Search(ctx context.Context, query string, limit int, threshold float64) ([]models.RankedSoundBite, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query, limit, threshold)
	}
	return []models.RankedSoundBite{}, nil
}

func (m *mockSoundService) MatchImage(ctx context.Context, dataURL string, limit int, threshold float64) (*models.MatchResult, error) {
	if m.matchFunc != nil {
		return m.matchFunc(ctx, dataURL, limit, threshold)
	}
	return &models.MatchResult{Results: []models.RankedSoundBite{}}, nil
}

func (m *mockSoundService) Upload(ctx context.Context, sound *models.NewSoundBite) (*models.SoundBite, error) {
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, sound)
	}
	return sound.WithID("new-id"), nil
}

func (m *mockSoundService) Schema(ctx context.Context) (*models.Schema, error) {
	if m.schemaFunc != nil {
		return m.schemaFunc(ctx)
	}
	return &models.Schema{Classes: []models.SchemaClass{}}, nil
}

func (m *mockSoundService) Ready(ctx context.Context) error {
	return m.readyErr
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func testConfig() *common.Config {
	return common.NewDefaultConfig()
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
	return body
}

func postJSON(handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func postImage(t *testing.T, handler http.HandlerFunc, path string, image []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if image != nil {
		part, err := mw.CreateFormFile("image", "photo.png")
		if err != nil {
			t.Fatal(err)
		}
		part.Write(image)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("Expected status %d, got %d (%s)", status, rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["success"] != false {
		t.Errorf("Expected success=false, got %v", body["success"])
	}
	if body["error"] != message {
		t.Errorf("Expected error %q, got %q", message, body["error"])
	}
}

func TestSearchSoundsHandler_NonStringQuery(t *testing.T) {
	cfg := testConfig()
	handler := NewSoundHandler(&mockSoundService{}, cfg.Search, arbor.NewLogger())

	for _, body := range []string{`{}`, `{"query": 42}`, `{"query": ""}`} {
		rr := postJSON(handler.SearchSoundsHandler, "/api/search-sounds", body)
		expectError(t, rr, http.StatusBadRequest, "Query is required and must be a string")
	}
}

func TestSearchSoundsHandler_BlankQuery(t *testing.T) {
	cfg := testConfig()
	svc := &mockSoundService{
		searchFunc: func(ctx context.Context, query string, limit int, threshold float64) ([]models.RankedSoundBite, error) {
			_, err := models.NewSearchParams(query, limit, threshold)
			return nil, err
		},
	}
	handler := NewSoundHandler(svc, cfg.Search, arbor.NewLogger())

	rr := postJSON(handler.SearchSoundsHandler, "/api/search-sounds", `{"query": "   "}`)
	expectError(t, rr, http.StatusBadRequest, "Query cannot be empty")
}

func TestSearchSoundsHandler_AppliesDefaults(t *testing.T) {
	cfg := testConfig()
	var gotLimit int
	var gotThreshold float64
	svc := &mockSoundService{
		searchFunc: func(ctx context.Context, query string, limit int, threshold float64) ([]models.RankedSoundBite, error) {
			gotLimit, gotThreshold = limit, threshold
			return []models.RankedSoundBite{
				{SoundBite: models.SoundBite{ID: "a", Title: "Rain", Tags: []string{}}, Confidence: 90},
			}, nil
		},
	}
	handler := NewSoundHandler(svc, cfg.Search, arbor.NewLogger())

	rr := postJSON(handler.SearchSoundsHandler, "/api/search-sounds", `{"query": "rain"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	if gotLimit != 10 || gotThreshold != 0.7 {
		t.Errorf("Expected defaults limit=10 threshold=0.7, got %d %v", gotLimit, gotThreshold)
	}

	body := decodeBody(t, rr)
	if body["success"] != true {
		t.Errorf("Expected success=true")
	}
	if body["totalCount"] != float64(1) {
		t.Errorf("Expected totalCount 1, got %v", body["totalCount"])
	}
	results := body["results"].([]interface{})
	first := results[0].(map[string]interface{})
	if first["confidence"] != float64(90) || first["audioUrl"] != "" {
		t.Errorf("Unexpected result shape: %v", first)
	}
	if _, ok := body["processingTime"]; !ok {
		t.Errorf("Expected processingTime in response")
	}
}

func TestSearchSoundsHandler_ClampsLimit(t *testing.T) {
	cfg := testConfig()
	var gotLimit int
	svc := &mockSoundService{
		searchFunc: func(ctx context.Context, query string, limit int, threshold float64) ([]models.RankedSoundBite, error) {
			gotLimit = limit
			return []models.RankedSoundBite{}, nil
		},
	}
	handler := NewSoundHandler(svc, cfg.Search, arbor.NewLogger())

	postJSON(handler.SearchSoundsHandler, "/api/search-sounds", `{"query": "rain", "limit": 5000, "threshold": 0}`)
	if gotLimit != cfg.Search.MaxLimit {
		t.Errorf("Expected limit clamped to %d, got %d", cfg.Search.MaxLimit, gotLimit)
	}
}

func TestSearchSoundsHandler_ExternalFailure(t *testing.T) {
	cfg := testConfig()
	svc := &mockSoundService{
		searchFunc: func(ctx context.Context, query string, limit int, threshold float64) ([]models.RankedSoundBite, error) {
			return nil, fmt.Errorf("failed to search sounds: %w", errors.New("connection refused"))
		},
	}
	handler := NewSoundHandler(svc, cfg.Search, arbor.NewLogger())

	rr := postJSON(handler.SearchSoundsHandler, "/api/search-sounds", `{"query": "rain"}`)
	expectError(t, rr, http.StatusInternalServerError, "Failed to search sounds: connection refused")
}

func TestSearchSoundsHandler_MethodNotAllowed(t *testing.T) {
	cfg := testConfig()
	handler := NewSoundHandler(&mockSoundService{}, cfg.Search, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/search-sounds", nil)
	rr := httptest.NewRecorder()
	handler.SearchSoundsHandler(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rr.Code)
	}
}

func TestUploadSoundHandler(t *testing.T) {
	cfg := testConfig()
	svc := &mockSoundService{
		uploadFunc: func(ctx context.Context, sound *models.NewSoundBite) (*models.SoundBite, error) {
			if err := sound.Validate(); err != nil {
				return nil, err
			}
			return sound.WithID("id-123"), nil
		},
	}
	handler := NewSoundHandler(svc, cfg.Search, arbor.NewLogger())

	rr := postJSON(handler.UploadSoundHandler, "/api/upload-sound",
		`{"title":"Dog","description":"barking","audioUrl":"https://example.com/dog.mp3","tags":"a, b ,c","duration":"25"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}

	body := decodeBody(t, rr)
	data := body["data"].(map[string]interface{})
	if data["id"] != "id-123" {
		t.Errorf("Expected id-123, got %v", data["id"])
	}
	tags := data["tags"].([]interface{})
	if len(tags) != 3 || tags[0] != "a" || tags[1] != "b" || tags[2] != "c" {
		t.Errorf("Expected tags [a b c], got %v", tags)
	}
	if data["duration"] != float64(25) {
		t.Errorf("Expected duration 25, got %v", data["duration"])
	}
}

func TestUploadSoundHandler_Validation(t *testing.T) {
	cfg := testConfig()
	svc := &mockSoundService{
		uploadFunc: func(ctx context.Context, sound *models.NewSoundBite) (*models.SoundBite, error) {
			return nil, sound.Validate()
		},
	}
	handler := NewSoundHandler(svc, cfg.Search, arbor.NewLogger())

	rr := postJSON(handler.UploadSoundHandler, "/api/upload-sound",
		`{"title":"Dog","description":"barking","audioUrl":"u","duration":-5}`)
	expectError(t, rr, http.StatusBadRequest, "Duration must be a positive number")

	rr = postJSON(handler.UploadSoundHandler, "/api/upload-sound",
		`{"title":"Dog","description":"barking","audioUrl":"u","duration":"Infinity"}`)
	expectError(t, rr, http.StatusBadRequest, "Duration must be a positive number")

	rr = postJSON(handler.UploadSoundHandler, "/api/upload-sound", `{"title":"Dog"}`)
	expectError(t, rr, http.StatusBadRequest, "Missing required fields: title, description, audioUrl, duration")
}

func TestUploadSoundHandler_ExternalFailure(t *testing.T) {
	cfg := testConfig()
	svc := &mockSoundService{
		uploadFunc: func(ctx context.Context, sound *models.NewSoundBite) (*models.SoundBite, error) {
			return nil, errors.New("failed to upload sound bite: 401")
		},
	}
	handler := NewSoundHandler(svc, cfg.Search, arbor.NewLogger())

	rr := postJSON(handler.UploadSoundHandler, "/api/upload-sound",
		`{"title":"Dog","description":"barking","audioUrl":"u","duration":5}`)
	expectError(t, rr, http.StatusInternalServerError, "Failed to upload sound bite")
}

func TestAnalyzeImageHandler(t *testing.T) {
	cfg := testConfig()
	var gotURL string
	svc := &mockSoundService{
		describeFunc: func(ctx context.Context, dataURL string) (string, error) {
			gotURL = dataURL
			return "A startled cat. Cue the record scratch.", nil
		},
	}
	handler := NewImageHandler(svc, cfg.Upload, cfg.Search, arbor.NewLogger())

	rr := postImage(t, handler.AnalyzeImageHandler, "/api/analyze-image", pngBytes, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	if gotURL != vision.EncodeDataURL("image/png", pngBytes) {
		t.Errorf("Unexpected data URL passed to service: %s", gotURL)
	}
	body := decodeBody(t, rr)
	if body["description"] != "A startled cat. Cue the record scratch." {
		t.Errorf("Unexpected description: %v", body["description"])
	}
}

func TestAnalyzeImageHandler_MissingImage(t *testing.T) {
	cfg := testConfig()
	handler := NewImageHandler(&mockSoundService{}, cfg.Upload, cfg.Search, arbor.NewLogger())

	rr := postImage(t, handler.AnalyzeImageHandler, "/api/analyze-image", nil, map[string]string{"other": "x"})
	expectError(t, rr, http.StatusBadRequest, "No image file provided")
}

func TestAnalyzeImageHandler_UnsupportedFormat(t *testing.T) {
	cfg := testConfig()
	handler := NewImageHandler(&mockSoundService{}, cfg.Upload, cfg.Search, arbor.NewLogger())

	rr := postImage(t, handler.AnalyzeImageHandler, "/api/analyze-image", []byte("plain text"), nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
	if !strings.HasPrefix(decodeBody(t, rr)["error"].(string), "Unsupported file format") {
		t.Errorf("Unexpected error: %s", rr.Body.String())
	}
}

func TestAnalyzeImageHandler_NoDescription(t *testing.T) {
	cfg := testConfig()
	svc := &mockSoundService{
		describeFunc: func(ctx context.Context, dataURL string) (string, error) {
			return "", vision.ErrNoDescription
		},
	}
	handler := NewImageHandler(svc, cfg.Upload, cfg.Search, arbor.NewLogger())

	rr := postImage(t, handler.AnalyzeImageHandler, "/api/analyze-image", pngBytes, nil)
	expectError(t, rr, http.StatusInternalServerError, "No description generated")
}

func TestAnalyzeImageHandler_ProviderFailure(t *testing.T) {
	cfg := testConfig()
	svc := &mockSoundService{
		describeFunc: func(ctx context.Context, dataURL string) (string, error) {
			return "", errors.New("failed to analyze image: quota exceeded")
		},
	}
	handler := NewImageHandler(svc, cfg.Upload, cfg.Search, arbor.NewLogger())

	rr := postImage(t, handler.AnalyzeImageHandler, "/api/analyze-image", pngBytes, nil)
	expectError(t, rr, http.StatusInternalServerError, "Failed to analyze image: quota exceeded")
}

func TestMatchImageHandler(t *testing.T) {
	cfg := testConfig()
	var gotLimit int
	var gotThreshold float64
	svc := &mockSoundService{
		matchFunc: func(ctx context.Context, dataURL string, limit int, threshold float64) (*models.MatchResult, error) {
			gotLimit, gotThreshold = limit, threshold
			return &models.MatchResult{
				Description: "rain on a window",
				Results: []models.RankedSoundBite{
					{SoundBite: models.SoundBite{ID: "r", Tags: []string{}}, Confidence: 88},
				},
			}, nil
		},
	}
	handler := NewImageHandler(svc, cfg.Upload, cfg.Search, arbor.NewLogger())

	rr := postImage(t, handler.MatchImageHandler, "/api/match-image", pngBytes,
		map[string]string{"limit": "3", "threshold": "0.5"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	if gotLimit != 3 || gotThreshold != 0.5 {
		t.Errorf("Expected limit=3 threshold=0.5, got %d %v", gotLimit, gotThreshold)
	}
	body := decodeBody(t, rr)
	if body["description"] != "rain on a window" || body["totalCount"] != float64(1) {
		t.Errorf("Unexpected body: %v", body)
	}
}

func TestMatchImageHandler_InvalidLimit(t *testing.T) {
	cfg := testConfig()
	handler := NewImageHandler(&mockSoundService{}, cfg.Upload, cfg.Search, arbor.NewLogger())

	rr := postImage(t, handler.MatchImageHandler, "/api/match-image", pngBytes, map[string]string{"limit": "ten"})
	expectError(t, rr, http.StatusBadRequest, "Limit must be a positive integer")
}

func TestGetSchemaHandler(t *testing.T) {
	svc := &mockSoundService{
		schemaFunc: func(ctx context.Context) (*models.Schema, error) {
			return &models.Schema{Classes: []models.SchemaClass{{Class: "SoundBite", ObjectCount: 10, Properties: []models.SchemaProperty{}}}}, nil
		},
	}
	handler := NewSchemaHandler(svc, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/schema", nil)
	rr := httptest.NewRecorder()
	handler.GetSchemaHandler(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	body := decodeBody(t, rr)
	classes := body["schema"].(map[string]interface{})["classes"].([]interface{})
	if classes[0].(map[string]interface{})["objectCount"] != float64(10) {
		t.Errorf("Expected objectCount 10, got %v", classes[0])
	}
}

func TestGetSchemaHandler_Failure(t *testing.T) {
	svc := &mockSoundService{
		schemaFunc: func(ctx context.Context) (*models.Schema, error) {
			return nil, errors.New("failed to fetch schema: timeout")
		},
	}
	handler := NewSchemaHandler(svc, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/schema", nil)
	rr := httptest.NewRecorder()
	handler.GetSchemaHandler(rr, req)
	expectError(t, rr, http.StatusInternalServerError, "Failed to fetch schema")
}

func TestHealthHandler(t *testing.T) {
	handler := NewAPIHandler(&mockSoundService{}, arbor.NewLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	handler.HealthHandler(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rr.Code)
	}

	handler = NewAPIHandler(&mockSoundService{readyErr: errors.New("down")}, arbor.NewLogger())
	rr = httptest.NewRecorder()
	handler.HealthHandler(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rr.Code)
	}
}

func TestVersionHandler(t *testing.T) {
	handler := NewAPIHandler(&mockSoundService{}, arbor.NewLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.VersionHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["version"] != common.GetVersion() {
		t.Errorf("Expected version %q, got %q", common.GetVersion(), body["version"])
	}
}

func TestNotFoundHandler(t *testing.T) {
	handler := NewAPIHandler(&mockSoundService{}, arbor.NewLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rr := httptest.NewRecorder()
	handler.NotFoundHandler(rr, req)
	expectError(t, rr, http.StatusNotFound, "Not Found")
}
