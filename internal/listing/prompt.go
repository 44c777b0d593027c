package listing

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/samber/lo"

	"snaplist/internal/vision"
)

const (
	promptMaxLabels  = 10
	promptMaxObjects = 8
)

var promptInstructions = strings.TrimSpace(dedent.Dedent(`
	Write a marketplace listing for this item. Mention that pickup and delivery
	options can be discussed. Be honest about the condition based on what is
	visible. Choose the category from this exact list: %s.
`))

// BuildPrompt serializes a vision analysis into the natural-language
// instruction payload for the generation service. Pure function, no I/O.
// userHint is a free-text description supplied by the seller; it is carried
// through unchanged when present.
func BuildPrompt(analysis *vision.Analysis, userHint string) string {
	var b strings.Builder

	b.WriteString("Item analysis from photo:\n")

	labels := lo.Slice(analysis.Labels, 0, promptMaxLabels)
	if len(labels) > 0 {
		b.WriteString("Detected labels:\n")
		for _, l := range labels {
			fmt.Fprintf(&b, "- %s (%.0f%% confidence)\n", l.Description, l.Score*100)
		}
	}

	objects := lo.Slice(analysis.Objects, 0, promptMaxObjects)
	if len(objects) > 0 {
		b.WriteString("Detected objects: ")
		b.WriteString(strings.Join(lo.Map(objects, func(o vision.Object, _ int) string {
			return o.Name
		}), ", "))
		b.WriteString("\n")
	}

	var detectedText string
	if len(analysis.Texts) > 0 {
		detectedText = analysis.Texts[0].Content
	}
	if detectedText != "" {
		fmt.Fprintf(&b, "Text visible in image: %s\n", strings.TrimSpace(detectedText))
	}

	labelTexts := lo.Map(analysis.Labels, func(l vision.Label, _ int) string {
		return l.Description
	})
	if brands := ExtractBrands(append([]string{detectedText}, labelTexts...)); len(brands) > 0 {
		fmt.Fprintf(&b, "Possible brands: %s\n", strings.Join(brands, ", "))
	}
	if colors := ExtractColors(analysis.Labels); len(colors) > 0 {
		fmt.Fprintf(&b, "Colors: %s\n", strings.Join(colors, ", "))
	}
	if materials := ExtractMaterials(labelTexts); len(materials) > 0 {
		fmt.Fprintf(&b, "Materials: %s\n", strings.Join(materials, ", "))
	}

	if userHint != "" {
		fmt.Fprintf(&b, "Seller's note: %s\n", userHint)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, promptInstructions, strings.Join(Categories(), ", "))

	return b.String()
}
