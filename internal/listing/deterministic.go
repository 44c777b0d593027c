package listing

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"snaplist/internal/vision"
)

// DeterministicGenerator composes a listing from vision analysis alone,
// without calling any generation service. It cannot fail: empty analysis
// still yields a complete draft.
type DeterministicGenerator struct {
	prices *PriceEstimator
}

func NewDeterministicGenerator(prices *PriceEstimator) *DeterministicGenerator {
	return &DeterministicGenerator{prices: prices}
}

// Generate builds a rule-based draft from the analysis.
func (g *DeterministicGenerator) Generate(analysis *vision.Analysis) *Draft {
	detectedItems := lo.Map(lo.Slice(analysis.Labels, 0, 5), func(l vision.Label, _ int) string {
		return l.Description
	})

	mainItem := "Item"
	if len(analysis.Labels) > 0 {
		mainItem = analysis.Labels[0].Description
	}

	// Brand is looked for in the full detected-text block only; labels
	// rarely carry brand names and the text block is where logos end up.
	var brand string
	if len(analysis.Texts) > 0 {
		if brands := ExtractBrands([]string{analysis.Texts[0].Content}); len(brands) > 0 {
			brand = brands[0]
		}
	}

	var title string
	if brand != "" {
		title = fmt.Sprintf("%s %s - Great Condition", brand, mainItem)
	} else {
		title = fmt.Sprintf("%s - Great Condition - Must See!", mainItem)
	}

	category := ClassifyCategory(detectedItems)

	return &Draft{
		Title:         title,
		Description:   g.buildDescription(analysis, mainItem, brand),
		Category:      category,
		Price:         g.prices.Estimate(category),
		DetectedItems: detectedItems,
	}
}

func (g *DeterministicGenerator) buildDescription(analysis *vision.Analysis, mainItem, brand string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Up for sale: %s in good condition.", mainItem)

	if extra := lo.Slice(analysis.Labels, 1, 4); len(extra) > 0 && len(analysis.Labels)-1 <= 3 {
		features := lo.Map(extra, func(l vision.Label, _ int) string { return l.Description })
		fmt.Fprintf(&b, " Notable features: %s.", strings.Join(features, ", "))
	}

	if brand != "" {
		fmt.Fprintf(&b, " Brand: %s.", brand)
	}

	if clause := conditionClause(analysis.Labels); clause != "" {
		b.WriteString(clause)
	}

	b.WriteString(" From a smoke-free home. Open to questions and reasonable offers. Pickup or public meet-up available.")
	return b.String()
}

// conditionClause derives a confidence statement from the mean score of the
// top 3 labels. Below 0.7 we say nothing rather than undersell the item.
func conditionClause(labels []vision.Label) string {
	if len(labels) == 0 {
		return ""
	}
	top := lo.Slice(labels, 0, 3)
	var sum float64
	for _, l := range top {
		sum += l.Score
	}
	mean := sum / float64(len(top))
	switch {
	case mean >= 0.9:
		return " Appears to be in excellent condition."
	case mean >= 0.7:
		return " Appears to be in good condition."
	default:
		return ""
	}
}
