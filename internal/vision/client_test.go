package vision

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotateNormalizesResponse(t *testing.T) {
	var gotBody annotateRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"responses": [{
				"labelAnnotations": [
					{"description": "Lamp", "score": 0.95},
					{"description": "Brass", "score": 0.8}
				],
				"localizedObjectAnnotations": [{"name": "Lamp", "score": 0.9}],
				"textAnnotations": [{"description": "ACME Lighting"}]
			}]
		}`)
	}))
	defer ts.Close()

	client := NewClient(ClientOpts{BaseURL: ts.URL, APIKey: "test-key"})
	analysis, err := client.Annotate(context.Background(), "data:image/jpeg;base64,aGVsbG8=")
	require.NoError(t, err)

	// data URI prefix is stripped before transmission
	require.Len(t, gotBody.Requests, 1)
	assert.Equal(t, "aGVsbG8=", gotBody.Requests[0].Image.Content)
	assert.Len(t, gotBody.Requests[0].Features, 6)

	assert.Equal(t, []Label{
		{Description: "Lamp", Score: 0.95},
		{Description: "Brass", Score: 0.8},
	}, analysis.Labels)
	assert.Equal(t, []Object{{Name: "Lamp", Score: 0.9}}, analysis.Objects)
	assert.Equal(t, []Text{{Content: "ACME Lighting"}}, analysis.Texts)

	// absent annotation arrays normalize to empty slices, never nil
	assert.NotNil(t, analysis.Faces)
	assert.Empty(t, analysis.Faces)
	assert.NotNil(t, analysis.Landmarks)
	assert.Empty(t, analysis.Landmarks)
}

func TestAnnotateAcceptsBareBase64(t *testing.T) {
	var content string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body annotateRequest
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		content = body.Requests[0].Image.Content
		io.WriteString(w, `{"responses": [{}]}`)
	}))
	defer ts.Close()

	client := NewClient(ClientOpts{BaseURL: ts.URL, APIKey: "k"})
	analysis, err := client.Annotate(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", content)
	assert.Empty(t, analysis.Labels)
	assert.NotNil(t, analysis.Labels)
}

func TestAnnotateServiceError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error": {"message": "API key not valid"}}`)
	}))
	defer ts.Close()

	client := NewClient(ClientOpts{BaseURL: ts.URL, APIKey: "bad-key"})
	_, err := client.Annotate(context.Background(), "aGVsbG8=")
	require.Error(t, err)

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusForbidden, svcErr.StatusCode)
	assert.Contains(t, svcErr.Body, "API key not valid")
}

func TestAnnotateEmptyResponses(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"responses": []}`)
	}))
	defer ts.Close()

	client := NewClient(ClientOpts{BaseURL: ts.URL, APIKey: "k"})
	_, err := client.Annotate(context.Background(), "aGVsbG8=")
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
}
