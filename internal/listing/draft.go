package listing

// Analysis methods recorded on a Result.
const (
	MethodLLM           = "llm"
	MethodDeterministic = "deterministic"
)

// Draft is the canonical output of any listing generator. Every field is
// populated; a generator either fills the whole draft or its result is
// discarded in favor of the fallback.
type Draft struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Price         string   `json:"price"`
	DetectedItems []string `json:"detectedItems"`
}

// Result is what the pipeline returns to its caller: the draft plus metadata
// about how it was produced.
type Result struct {
	Draft
	Confidence     float64 `json:"confidence"`
	AnalysisMethod string  `json:"analysisMethod"`
}
