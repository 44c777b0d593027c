package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const ApiBaseUrl = "https://vision.googleapis.com"

var dataUriPrefix = regexp.MustCompile(`^data:image/[a-zA-Z0-9.+-]+;base64,`)

// ServiceError is returned when the vision service responds with a
// non-success status. It carries the upstream status code and raw body so
// operators can diagnose quota or auth problems from the log.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("vision service request failed (status: %d): %s", e.StatusCode, e.Body)
}

type annotateRequest struct {
	Requests []annotateImageRequest `json:"requests"`
}

type annotateImageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	Content string `json:"content"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type annotateResponse struct {
	Responses []imageAnnotations `json:"responses"`
}

// imageAnnotations mirrors one result entry of the annotate response. Every
// array may be absent; normalization to empty slices happens exactly once, in
// Annotate.
type imageAnnotations struct {
	LabelAnnotations           []Label           `json:"labelAnnotations"`
	LocalizedObjectAnnotations []Object          `json:"localizedObjectAnnotations"`
	TextAnnotations            []textAnnotation  `json:"textAnnotations"`
	FaceAnnotations            []json.RawMessage `json:"faceAnnotations"`
	LandmarkAnnotations        []json.RawMessage `json:"landmarkAnnotations"`
	SafeSearchAnnotation       json.RawMessage   `json:"safeSearchAnnotation"`
}

type textAnnotation struct {
	Description string `json:"description"`
}

// The fixed feature set requested on every call, regardless of which
// annotations the caller ends up consuming.
var annotateFeatures = []feature{
	{Type: "LABEL_DETECTION", MaxResults: 15},
	{Type: "OBJECT_LOCALIZATION", MaxResults: 15},
	{Type: "TEXT_DETECTION", MaxResults: 10},
	{Type: "FACE_DETECTION", MaxResults: 5},
	{Type: "LANDMARK_DETECTION", MaxResults: 5},
	{Type: "SAFE_SEARCH_DETECTION", MaxResults: 1},
}

type ClientOpts struct {
	BaseURL string
	APIKey  string
}

// Client calls the vision service's annotate endpoint and normalizes the
// heterogeneous response into an Analysis.
type Client struct {
	httpClient *resty.Client
	apiKey     string
}

func NewClient(opts ClientOpts) *Client {
	baseURL := ApiBaseUrl
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	c := &Client{apiKey: opts.APIKey}
	c.httpClient = resty.New().
		SetDebug(false).
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json")
	return c
}

// Annotate implements the Analyzer interface. It strips a data-URI prefix
// from imageData if present and requests the full fixed feature set.
func (c *Client) Annotate(ctx context.Context, imageData string) (*Analysis, error) {
	content := dataUriPrefix.ReplaceAllString(imageData, "")

	body := annotateRequest{
		Requests: []annotateImageRequest{
			{
				Image:    imageContent{Content: content},
				Features: annotateFeatures,
			},
		},
	}

	result := &annotateResponse{}
	res, err := c.httpClient.
		NewRequest().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(body).
		SetResult(result).
		Post("/v1/images:annotate")
	if err != nil {
		return nil, fmt.Errorf("vision annotate request failed: %w", err)
	}
	if res.IsError() {
		return nil, &ServiceError{StatusCode: res.StatusCode(), Body: string(res.Body())}
	}

	if len(result.Responses) == 0 {
		return nil, &ServiceError{StatusCode: res.StatusCode(), Body: "no responses in annotate result"}
	}

	analysis := normalize(result.Responses[0])
	log.Debug().
		Int("labels", len(analysis.Labels)).
		Int("objects", len(analysis.Objects)).
		Int("texts", len(analysis.Texts)).
		Msg("vision analysis complete")

	return analysis, nil
}

// normalize converts the first annotate result entry to an Analysis with
// every slice field non-nil.
func normalize(a imageAnnotations) *Analysis {
	analysis := &Analysis{
		Labels:     a.LabelAnnotations,
		Objects:    a.LocalizedObjectAnnotations,
		Texts:      make([]Text, 0, len(a.TextAnnotations)),
		Faces:      a.FaceAnnotations,
		Landmarks:  a.LandmarkAnnotations,
		SafeSearch: a.SafeSearchAnnotation,
	}
	if analysis.Labels == nil {
		analysis.Labels = []Label{}
	}
	if analysis.Objects == nil {
		analysis.Objects = []Object{}
	}
	for _, t := range a.TextAnnotations {
		analysis.Texts = append(analysis.Texts, Text{Content: t.Description})
	}
	if analysis.Faces == nil {
		analysis.Faces = []json.RawMessage{}
	}
	if analysis.Landmarks == nil {
		analysis.Landmarks = []json.RawMessage{}
	}
	return analysis
}
