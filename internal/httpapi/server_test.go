package httpapi

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snaplist/internal/listing"
	"snaplist/internal/storage"
	"snaplist/internal/vision"
)

type stubAnalyzer struct {
	analysis *vision.Analysis
	err      error
}

func (s *stubAnalyzer) Annotate(ctx context.Context, imageData string) (*vision.Analysis, error) {
	return s.analysis, s.err
}

func lampAnalysis() *vision.Analysis {
	return &vision.Analysis{
		Labels: []vision.Label{
			{Description: "Lamp", Score: 0.95},
			{Description: "Brass", Score: 0.8},
		},
		Objects: []vision.Object{},
		Texts:   []vision.Text{},
	}
}

func newTestServer(t *testing.T, analyzer vision.Analyzer, store storage.Store) *httptest.Server {
	t.Helper()
	det := listing.NewDeterministicGenerator(listing.NewPriceEstimator(rand.New(rand.NewSource(1))))
	pipeline := listing.NewPipeline(analyzer, nil, det)
	ts := httptest.NewServer(NewServer(pipeline, store).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestCreateListing(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{analysis: lampAnalysis()}, nil)

	res, err := http.Post(ts.URL+"/api/listings", "application/json",
		strings.NewReader(`{"imageData": "aGVsbG8="}`))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))

	var result listing.Result
	require.NoError(t, json.NewDecoder(res.Body).Decode(&result))
	assert.True(t, strings.HasPrefix(result.Title, "Lamp"))
	assert.Equal(t, "Home & Garden", result.Category)
	assert.Equal(t, listing.MethodDeterministic, result.AnalysisMethod)
	assert.Equal(t, 0.95, result.Confidence)
}

func TestCreateListingMissingImageData(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{analysis: lampAnalysis()}, nil)

	for _, body := range []string{`{}`, `{"imageData": ""}`, `not json`} {
		res, err := http.Post(ts.URL+"/api/listings", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, "body: %s", body)

		var errRes struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.NewDecoder(res.Body).Decode(&errRes))
		res.Body.Close()
		assert.Equal(t, "No image data provided", errRes.Error)
	}
}

func TestCreateListingMissingVisionCredential(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	res, err := http.Post(ts.URL+"/api/listings", "application/json",
		strings.NewReader(`{"imageData": "aGVsbG8="}`))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

	var errRes struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&errRes))
	assert.Contains(t, errRes.Error, "credential")
}

func TestCreateListingVisionFailure(t *testing.T) {
	analyzer := &stubAnalyzer{err: &vision.ServiceError{StatusCode: 403, Body: "denied"}}
	ts := newTestServer(t, analyzer, nil)

	res, err := http.Post(ts.URL+"/api/listings", "application/json",
		strings.NewReader(`{"imageData": "aGVsbG8="}`))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestPreflight(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{analysis: lampAnalysis()}, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/listings", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, res.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{analysis: lampAnalysis()}, nil)

	res, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestCreateListingSavesHistory(t *testing.T) {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	ts := newTestServer(t, &stubAnalyzer{analysis: lampAnalysis()}, store)

	res, err := http.Post(ts.URL+"/api/listings", "application/json",
		strings.NewReader(`{"imageData": "aGVsbG8="}`))
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(ts.URL + "/api/listings/recent")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var records []storage.ListingRecord
	require.NoError(t, json.NewDecoder(res.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, "Home & Garden", records[0].Category)
	assert.Equal(t, listing.MethodDeterministic, records[0].Method)
}
