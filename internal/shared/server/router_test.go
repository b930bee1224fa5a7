package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ayalaw/clickjob/internal/shared/config"
	"github.com/ayalaw/clickjob/internal/shared/server"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		Port:             "0",
		CORSAllowOrigin:  []string{"http://localhost:5173"},
		Env:              "dev",
		UploadsDir:       t.TempDir(),
		NaiveSearchLimit: 100,
	}
	return server.NewRouter(cfg)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	resp := doJSON(t, router, http.MethodGet, "/api/v1/health", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var payload struct {
		OK    bool   `json:"ok"`
		Store string `json:"store"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.OK || payload.Store != "memory" {
		t.Fatalf("unexpected health payload: %+v", payload)
	}
}

func TestCandidateCreateAndMerge(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/candidates", map[string]any{
		"firstName": "דנה",
		"lastName":  "לוי",
		"email":     "dana@example.com",
		"mobile":    "050-1234567",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		Candidate struct {
			ID              string `json:"id"`
			CandidateNumber int64  `json:"candidateNumber"`
		} `json:"candidate"`
		Merged bool `json:"merged"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Candidate.CandidateNumber < 100 {
		t.Fatalf("expected assigned number, got %d", created.Candidate.CandidateNumber)
	}
	if created.Merged {
		t.Fatal("first create must not merge")
	}

	// Same phone in international form resolves to the same profile.
	resp = doJSON(t, router, http.MethodPost, "/api/v1/candidates", map[string]any{
		"mobile": "+972-50-1234567",
		"city":   "חיפה",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on merge, got %d: %s", resp.Code, resp.Body.String())
	}
	var merged struct {
		Candidate struct {
			ID string `json:"id"`
		} `json:"candidate"`
		Merged bool `json:"merged"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&merged); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !merged.Merged || merged.Candidate.ID != created.Candidate.ID {
		t.Fatalf("expected merge into %s, got %+v", created.Candidate.ID, merged)
	}
}

func TestUploadCVAndSearch(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/candidates", map[string]any{
		"email": "dev@example.com",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var created struct {
		Candidate struct {
			ID string `json:"id"`
		} `json:"candidate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", "cv.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write([]byte("מפתח Java בכיר, ניסיון ב-Spring")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/candidates/%s/cv", created.Candidate.ID), body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	uploadResp := httptest.NewRecorder()
	router.ServeHTTP(uploadResp, req)
	if uploadResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", uploadResp.Code, uploadResp.Body.String())
	}

	// Naive keyword search finds the CV content.
	searchResp := doJSON(t, router, http.MethodGet, "/api/v1/search/cv?pos=java", nil)
	if searchResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", searchResp.Code)
	}
	var naive struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(searchResp.Body).Decode(&naive); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if naive.Count != 1 {
		t.Fatalf("expected one naive hit, got %d", naive.Count)
	}

	// Indexed search over the cached search text.
	indexedResp := doJSON(t, router, http.MethodGet, "/api/v1/search/candidates?q=java+spring", nil)
	if indexedResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", indexedResp.Code)
	}
	var indexed struct {
		Total int `json:"total"`
	}
	if err := json.NewDecoder(indexedResp.Body).Decode(&indexed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if indexed.Total != 1 {
		t.Fatalf("expected one indexed hit, got %d", indexed.Total)
	}
}

func TestApplicationDuplicateConflict(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/candidates", map[string]any{
		"email": "dana@example.com",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create candidate: %d", resp.Code)
	}
	var cand struct {
		Candidate struct {
			ID string `json:"id"`
		} `json:"candidate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cand); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/jobs", map[string]any{
		"title": "מפתח/ת גו",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create job: %d", resp.Code)
	}
	var job struct {
		ID      string `json:"id"`
		JobCode int64  `json:"jobCode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if job.JobCode < 1000 {
		t.Fatalf("job codes must start at 1000, got %d", job.JobCode)
	}

	apply := map[string]any{"candidateId": cand.Candidate.ID, "jobId": job.ID}
	resp = doJSON(t, router, http.MethodPost, "/api/v1/applications", apply)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/applications", apply)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d: %s", resp.Code, resp.Body.String())
	}
	var conflict struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				ID string `json:"id"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&conflict); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if conflict.Error.Code != "duplicate_application" {
		t.Fatalf("expected duplicate_application, got %q", conflict.Error.Code)
	}
	if conflict.Error.Details.ID == "" {
		t.Fatal("conflict must carry the existing application")
	}
}

func TestSearchCVRequiresKeywords(t *testing.T) {
	router := newTestRouter(t)
	resp := doJSON(t, router, http.MethodGet, "/api/v1/search/cv", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestParseCVPreview(t *testing.T) {
	router := newTestRouter(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", "cv.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write([]byte("test@example.com\n050-1234567")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/candidates/parse-cv", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		Extracted struct {
			Email  string `json:"email"`
			Mobile string `json:"mobile"`
		} `json:"extracted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Extracted.Email != "test@example.com" {
		t.Fatalf("expected extracted email, got %q", payload.Extracted.Email)
	}

	// Nothing persisted by the preview.
	listResp := doJSON(t, router, http.MethodGet, "/api/v1/candidates", nil)
	var list struct {
		Total int `json:"total"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 0 {
		t.Fatalf("parse-cv must not persist, got %d candidates", list.Total)
	}
}
