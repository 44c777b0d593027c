package listing

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snaplist/internal/vision"
)

type fakeAnalyzer struct {
	analysis *vision.Analysis
	err      error
}

func (f *fakeAnalyzer) Annotate(ctx context.Context, imageData string) (*vision.Analysis, error) {
	return f.analysis, f.err
}

func newTestPipeline(analyzer vision.Analyzer, generator *fakeTextGenerator) *Pipeline {
	det := NewDeterministicGenerator(NewPriceEstimator(rand.New(rand.NewSource(1))))
	var llmGen *LLMGenerator
	if generator != nil {
		llmGen = NewLLMGenerator(generator)
	}
	return NewPipeline(analyzer, llmGen, det)
}

func TestRunMissingImageData(t *testing.T) {
	p := newTestPipeline(&fakeAnalyzer{}, nil)
	_, err := p.Run(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrMissingImageData)
}

func TestRunMissingVisionCredential(t *testing.T) {
	p := newTestPipeline(nil, nil)
	_, err := p.Run(context.Background(), "aGVsbG8=", "")
	assert.ErrorIs(t, err, ErrMissingVisionCredential)
}

func TestRunVisionFailureIsTerminal(t *testing.T) {
	analyzer := &fakeAnalyzer{err: &vision.ServiceError{StatusCode: 500, Body: "boom"}}
	p := newTestPipeline(analyzer, &fakeTextGenerator{})
	_, err := p.Run(context.Background(), "aGVsbG8=", "")
	require.Error(t, err)
	var svcErr *vision.ServiceError
	assert.ErrorAs(t, err, &svcErr)
}

func TestRunDeterministicWithoutGenerationCredential(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: lampAnalysis()}
	p := newTestPipeline(analyzer, nil)

	result, err := p.Run(context.Background(), "aGVsbG8=", "")
	require.NoError(t, err)

	assert.Equal(t, MethodDeterministic, result.AnalysisMethod)
	assert.True(t, strings.HasPrefix(result.Title, "Lamp"))
	assert.Equal(t, "Home & Garden", result.Category)
	assert.Contains(t, []string{"$15", "$35", "$65", "$100"}, result.Price)
	assert.Equal(t, 0.95, result.Confidence)
}

func TestRunUsesLLMDraft(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: lampAnalysis()}
	generator := &fakeTextGenerator{
		reply: "```json\n{\"title\": \"Brass Lamp\", \"description\": \"Lovely.\", \"category\": \"Home & Garden\", \"estimatedPrice\": \"$45\"}\n```",
	}
	p := newTestPipeline(analyzer, generator)

	result, err := p.Run(context.Background(), "aGVsbG8=", "")
	require.NoError(t, err)

	assert.Equal(t, MethodLLM, result.AnalysisMethod)
	assert.Equal(t, "Brass Lamp", result.Title)
	assert.Equal(t, "$45", result.Price)
}

func TestRunFallsBackOnGenerationFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: lampAnalysis()}
	generator := &fakeTextGenerator{err: errors.New("service unavailable")}
	p := newTestPipeline(analyzer, generator)

	result, err := p.Run(context.Background(), "aGVsbG8=", "")
	require.NoError(t, err)
	assert.Equal(t, MethodDeterministic, result.AnalysisMethod)
	assert.NotEmpty(t, result.Title)
	assert.NotEmpty(t, result.Description)
}

func TestRunFallsBackOnIncompleteReply(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: lampAnalysis()}
	generator := &fakeTextGenerator{
		reply: `{"title": "Lamp", "description": "Nice.", "category": "Home & Garden"}`,
	}
	p := newTestPipeline(analyzer, generator)

	result, err := p.Run(context.Background(), "aGVsbG8=", "")
	require.NoError(t, err)
	assert.Equal(t, MethodDeterministic, result.AnalysisMethod)
}

func TestRunDefaultConfidenceWithoutLabels(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: &vision.Analysis{
		Labels: []vision.Label{},
		Texts:  []vision.Text{},
	}}
	p := newTestPipeline(analyzer, nil)

	result, err := p.Run(context.Background(), "aGVsbG8=", "")
	require.NoError(t, err)
	assert.Equal(t, 0.8, result.Confidence)
	assert.Contains(t, result.Title, "Item")
}

func TestRunReturnsCompleteDraft(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: lampAnalysis()}
	p := newTestPipeline(analyzer, nil)

	result, err := p.Run(context.Background(), "aGVsbG8=", "")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Title)
	assert.NotEmpty(t, result.Description)
	assert.NotEmpty(t, result.Price)
	assert.True(t, ValidCategory(result.Category))
}
