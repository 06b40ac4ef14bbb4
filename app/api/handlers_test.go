package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chweng/bike-radar/app/database"
	"github.com/chweng/bike-radar/app/ingest"
	"github.com/chweng/bike-radar/app/stations"
)

// mockStationRepo implements database.StationRepository for testing
type mockStationRepo struct {
	stations []database.Station
	err      error

	lastLimit  int
	lastOffset int
}

func (m *mockStationRepo) UpsertStations(s []database.StationUpsert) error {
	return nil
}

func (m *mockStationRepo) FindStationsNearby(latitude, longitude, distanceMeters float64, limit, offset int) ([]database.Station, error) {
	m.lastLimit = limit
	m.lastOffset = offset
	if m.err != nil {
		return nil, m.err
	}
	return m.stations, nil
}

func (m *mockStationRepo) GetStationCount() (int, error) {
	return len(m.stations), nil
}

// mockStatusRepo implements database.StatusRepository for testing
type mockStatusRepo struct {
	snapshots []database.StatusSnapshot
	err       error
}

func (m *mockStatusRepo) InsertStationStatus(s []database.StatusInsert) error {
	return nil
}

func (m *mockStatusRepo) GetSnapshotCount() (int, error) {
	return len(m.snapshots), nil
}

func (m *mockStatusRepo) GetLatestSnapshots(stationSno string, limit int) ([]database.StatusSnapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshots, nil
}

// mockLogRepo implements database.LogRepository for testing
type mockLogRepo struct {
	logs []database.IngestLog
	err  error
}

func (m *mockLogRepo) InsertIngestLog(entry database.IngestLogEntry) error {
	return nil
}

func (m *mockLogRepo) GetRecentLogs(limit int) ([]database.IngestLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.logs, nil
}

// mockPipeline implements IngestRunnerInterface for testing
type mockPipeline struct {
	result ingest.Result
	err    error
}

func (m *mockPipeline) Run(ctx context.Context) (ingest.Result, error) {
	if m.err != nil {
		return ingest.Result{}, m.err
	}
	return m.result, nil
}

func newTestServer(pipeline *mockPipeline, stationRepo *mockStationRepo,
	statusRepo *mockStatusRepo, logRepo *mockLogRepo, accessKey string) http.Handler {
	nearby := stations.NewNearbyQuery(stationRepo)
	handler := NewHandler(pipeline, nearby, stationRepo, statusRepo, logRepo)
	return NewServer(handler, accessKey)
}

func defaultTestServer() (http.Handler, *mockStationRepo) {
	stationRepo := &mockStationRepo{
		stations: []database.Station{{Sno: "500101001", NameEn: "Station A"}},
	}
	server := newTestServer(&mockPipeline{}, stationRepo, &mockStatusRepo{}, &mockLogRepo{}, "")
	return server, stationRepo
}

func doRequest(t *testing.T, server http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	msg, _ := body["error"].(string)
	return msg
}

func TestGetNearbyStationsSuccess(t *testing.T) {
	server, repo := defaultTestServer()

	w := doRequest(t, server, "GET", "/stations/nearby?lat=25.0&lon=121.5&dist=500", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result []database.Station
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(result) != 1 || result[0].Sno != "500101001" {
		t.Errorf("Unexpected result: %v", result)
	}

	// Defaults: page=1 limit=10 -> offset=0
	if repo.lastLimit != 10 || repo.lastOffset != 0 {
		t.Errorf("Expected limit=10 offset=0, got limit=%d offset=%d", repo.lastLimit, repo.lastOffset)
	}
}

func TestGetNearbyStationsPagination(t *testing.T) {
	server, repo := defaultTestServer()

	w := doRequest(t, server, "GET", "/stations/nearby?lat=25.0&lon=121.5&dist=500&page=2&limit=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if repo.lastLimit != 10 || repo.lastOffset != 10 {
		t.Errorf("Expected limit=10 offset=10, got limit=%d offset=%d", repo.lastLimit, repo.lastOffset)
	}
}

func TestGetNearbyStationsMissingParameters(t *testing.T) {
	server, _ := defaultTestServer()

	cases := []struct {
		path    string
		message string
	}{
		{"/stations/nearby?lon=121.5&dist=500", "Query parameter 'lat' is missing."},
		{"/stations/nearby?lat=25.0&dist=500", "Query parameter 'lon' is missing."},
		{"/stations/nearby?lat=25.0&lon=121.5", "Query parameter 'dist' is missing."},
	}

	for _, c := range cases {
		w := doRequest(t, server, "GET", c.path, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", c.path, w.Code)
		}
		if msg := decodeError(t, w); msg != c.message {
			t.Errorf("%s: expected %q, got %q", c.path, c.message, msg)
		}
	}
}

func TestGetNearbyStationsNonNumericParameters(t *testing.T) {
	server, _ := defaultTestServer()

	w := doRequest(t, server, "GET", "/stations/nearby?lat=abc&lon=121.5&dist=500", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	if msg := decodeError(t, w); !strings.Contains(msg, "'lat' must be a valid number") {
		t.Errorf("Unexpected message: %q", msg)
	}
}

func TestGetNearbyStationsValidationErrors(t *testing.T) {
	server, _ := defaultTestServer()

	cases := []struct {
		path    string
		message string
	}{
		{"/stations/nearby?lat=200&lon=121.5&dist=500", "invalid latitude provided"},
		{"/stations/nearby?lat=25.0&lon=200&dist=500", "invalid longitude provided"},
		{"/stations/nearby?lat=25.0&lon=121.5&dist=-1", "distance must be a positive number"},
		{"/stations/nearby?lat=25.0&lon=121.5&dist=500&page=0", "page must be a positive number"},
		{"/stations/nearby?lat=25.0&lon=121.5&dist=500&limit=0", "limit must be a positive number"},
	}

	for _, c := range cases {
		w := doRequest(t, server, "GET", c.path, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", c.path, w.Code)
		}
		if msg := decodeError(t, w); msg != c.message {
			t.Errorf("%s: expected %q, got %q", c.path, c.message, msg)
		}
	}
}

func TestGetNearbyStationsRepositoryError(t *testing.T) {
	stationRepo := &mockStationRepo{err: errors.New("connection refused")}
	server := newTestServer(&mockPipeline{}, stationRepo, &mockStatusRepo{}, &mockLogRepo{}, "")

	w := doRequest(t, server, "GET", "/stations/nearby?lat=25.0&lon=121.5&dist=500", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
	if msg := decodeError(t, w); msg != "An internal server error occurred." {
		t.Errorf("Internal details must not leak, got %q", msg)
	}
}

func TestPostIngestSuccess(t *testing.T) {
	pipeline := &mockPipeline{result: ingest.Result{Status: ingest.StatusSuccess, Inserted: 42}}
	server := newTestServer(pipeline, &mockStationRepo{}, &mockStatusRepo{}, &mockLogRepo{}, "")

	w := doRequest(t, server, "POST", "/ingest", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result ingest.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Status != ingest.StatusSuccess || result.Inserted != 42 {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestPostIngestFailure(t *testing.T) {
	pipeline := &mockPipeline{err: errors.New("API Error")}
	server := newTestServer(pipeline, &mockStationRepo{}, &mockStatusRepo{}, &mockLogRepo{}, "")

	w := doRequest(t, server, "POST", "/ingest", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
	if msg := decodeError(t, w); msg != "API Error" {
		t.Errorf("Expected original error message, got %q", msg)
	}
}

func TestPostIngestAuthentication(t *testing.T) {
	pipeline := &mockPipeline{result: ingest.Result{Status: ingest.StatusSuccess, Inserted: 1}}
	server := newTestServer(pipeline, &mockStationRepo{}, &mockStatusRepo{}, &mockLogRepo{}, "secret-key")

	// No key
	w := doRequest(t, server, "POST", "/ingest", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", w.Code)
	}

	// Wrong key
	w = doRequest(t, server, "POST", "/ingest", map[string]string{"X-API-Key": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong key, got %d", w.Code)
	}

	// Correct key via X-API-Key
	w = doRequest(t, server, "POST", "/ingest", map[string]string{"X-API-Key": "secret-key"})
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with correct key, got %d", w.Code)
	}

	// Correct key via Authorization bearer
	w = doRequest(t, server, "POST", "/ingest", map[string]string{"Authorization": "Bearer secret-key"})
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with bearer token, got %d", w.Code)
	}
}

func TestGetLogs(t *testing.T) {
	msg := "API Error"
	logRepo := &mockLogRepo{logs: []database.IngestLog{
		{ID: 1, Status: ingest.StatusFailure, ErrorMessage: &msg},
	}}
	server := newTestServer(&mockPipeline{}, &mockStationRepo{}, &mockStatusRepo{}, logRepo, "")

	w := doRequest(t, server, "GET", "/logs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var body struct {
		Logs  []database.IngestLog `json:"logs"`
		Total int                  `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Total != 1 || len(body.Logs) != 1 {
		t.Fatalf("Expected 1 log, got %+v", body)
	}
	if body.Logs[0].ErrorMessage == nil || *body.Logs[0].ErrorMessage != msg {
		t.Errorf("Expected error message %q in log", msg)
	}
}

func TestGetHealth(t *testing.T) {
	server, _ := defaultTestServer()

	w := doRequest(t, server, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if _, ok := body["timestamp"]; !ok {
		t.Error("Expected timestamp in health response")
	}
	if _, ok := body["stations"]; !ok {
		t.Error("Expected station count in health response")
	}
}
