package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jmehdipour/dialer/internal/config"
	"github.com/jmehdipour/dialer/internal/interpreter"
	"github.com/jmehdipour/dialer/internal/logstore"
	"github.com/jmehdipour/dialer/internal/telephony"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	verified    []string
	verifiedErr error
	callErr     error
	placed      []string
}

func (f *fakeProvider) PlaceCall(_ context.Context, to string) (string, error) {
	f.placed = append(f.placed, to)
	if f.callErr != nil {
		return "", f.callErr
	}
	return "CA-" + to, nil
}

func (f *fakeProvider) ListVerifiedNumbers(context.Context) ([]string, error) {
	return f.verified, f.verifiedErr
}

func newTestServer(prov *fakeProvider, store logstore.Store) *Server {
	return NewServer(Deps{
		Config:   config.Config{},
		Provider: prov,
		Store:    store,
		Commands: interpreter.NewChain(interpreter.RegexResolver{}),
	})
}

func doForm(s *Server, method, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCallEndpointDispatchesNormalizedNumbers(t *testing.T) {
	prov := &fakeProvider{verified: []string{"+919895431875"}}
	store := logstore.NewMemoryStore()
	s := newTestServer(prov, store)

	rec := doForm(s, http.MethodPost, "/call", url.Values{
		"numbers": {"9895431875\n+18001234567"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"+919895431875", "+18001234567"}, prov.placed)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["total"])

	logged, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, logged, 2)
}

func TestCallEndpointNoNumbers(t *testing.T) {
	s := newTestServer(&fakeProvider{}, logstore.NewMemoryStore())

	rec := doForm(s, http.MethodPost, "/call", url.Values{"numbers": {" \n , "}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "no valid phone numbers provided", body["error"])
}

func TestCallEndpointAllCandidatesTooShort(t *testing.T) {
	s := newTestServer(&fakeProvider{}, logstore.NewMemoryStore())

	rec := doForm(s, http.MethodPost, "/call", url.Values{"numbers": {"123, 456"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["dropped"])
}

func TestCallEndpointMergesFileUpload(t *testing.T) {
	prov := &fakeProvider{}
	s := newTestServer(prov, logstore.NewMemoryStore())

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("numbers", "+15550000001"))
	fw, err := w.CreateFormFile("file", "numbers.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("+15550000002\n+15550000001"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/call", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// text source first, file second, duplicate dropped
	assert.Equal(t, []string{"+15550000001", "+15550000002"}, prov.placed)
}

func TestCallEndpointVerifiedLookupFailureDegradesToDefault(t *testing.T) {
	prov := &fakeProvider{verifiedErr: &telephony.ProviderError{Message: "auth failed"}}
	s := newTestServer(prov, logstore.NewMemoryStore())

	rec := doForm(s, http.MethodPost, "/call", url.Values{"numbers": {"9895431875"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"+19895431875"}, prov.placed)
}

func TestAICommandCallSingle(t *testing.T) {
	prov := &fakeProvider{}
	s := newTestServer(prov, logstore.NewMemoryStore())

	rec := doForm(s, http.MethodPost, "/ai-command", url.Values{"command": {"Call 9876543210"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"+19876543210"}, prov.placed)

	body := decodeBody(t, rec)
	assert.Equal(t, "call_single", body["action"])
	assert.Equal(t, "fallback", body["resolver"])
}

func TestAICommandCallAll(t *testing.T) {
	prov := &fakeProvider{}
	s := newTestServer(prov, logstore.NewMemoryStore())

	rec := doForm(s, http.MethodPost, "/ai-command", url.Values{
		"command": {"Start calling all numbers"},
		"numbers": {"+15550000001,+15550000002"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, prov.placed, 2)
}

func TestAICommandCallAllWithoutNumbers(t *testing.T) {
	s := newTestServer(&fakeProvider{}, logstore.NewMemoryStore())

	rec := doForm(s, http.MethodPost, "/ai-command", url.Values{"command": {"Start calling all numbers"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "no phone numbers available to call", body["error"])
}

func TestAICommandNotUnderstood(t *testing.T) {
	s := newTestServer(&fakeProvider{}, logstore.NewMemoryStore())

	rec := doForm(s, http.MethodPost, "/ai-command", url.Values{"command": {"asdkjasd"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "command not understood", body["error"])
}

func TestAICommandEmpty(t *testing.T) {
	s := newTestServer(&fakeProvider{}, logstore.NewMemoryStore())

	rec := doForm(s, http.MethodPost, "/ai-command", url.Values{"command": {"  "}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPILogs(t *testing.T) {
	prov := &fakeProvider{}
	store := logstore.NewMemoryStore()
	s := newTestServer(prov, store)

	doForm(s, http.MethodPost, "/call", url.Values{"numbers": {"+15550000001"}})

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	logs, ok := body["logs"].([]any)
	require.True(t, ok)
	assert.Len(t, logs, 1)
}

func TestCleanupLogsEndpoint(t *testing.T) {
	prov := &fakeProvider{callErr: &telephony.ProviderError{Message: "Twilio returned the following information: number unverified. More information may be available here: https://x"}}
	store := logstore.NewMemoryStore()
	s := newTestServer(prov, store)

	doForm(s, http.MethodPost, "/call", url.Values{"numbers": {"+15550000001"}})

	req := httptest.NewRequest(http.MethodPost, "/api/cleanup-logs", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["count"])

	logged, err := store.All(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, logged[0].Error, "More information")
}

func TestCheckVerification(t *testing.T) {
	prov := &fakeProvider{verified: []string{"+919895431875"}}
	s := newTestServer(prov, logstore.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/api/check-verification/9895431875", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["is_verified"])
	assert.Equal(t, "+919895431875", body["phone_number"])

	req = httptest.NewRequest(http.MethodGet, "/api/check-verification/5551234567", nil)
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, false, body["is_verified"])
}

func TestAPIKeyGuard(t *testing.T) {
	prov := &fakeProvider{}
	s := NewServer(Deps{
		Config:   config.Config{HTTP: config.HTTPConfig{APIKey: "secret"}},
		Provider: prov,
		Store:    logstore.NewMemoryStore(),
		Commands: interpreter.NewChain(interpreter.RegexResolver{}),
	})

	rec := doForm(s, http.MethodPost, "/call", url.Values{"numbers": {"+15550000001"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/call", strings.NewReader(url.Values{"numbers": {"+15550000001"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// reads stay open
	req = httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogsPageRenders(t *testing.T) {
	s := newTestServer(&fakeProvider{}, logstore.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/logs", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No calls yet")
}
