package listing

import (
	"math/rand"
	"time"
)

// priceTiers maps each category to four price strings, low to high. The
// estimator picks uniformly among the tiers of the resolved category.
var priceTiers = map[string][]string{
	"Baby & Kids":   {"$10", "$25", "$45", "$80"},
	"Electronics":   {"$50", "$120", "$250", "$400"},
	"Home & Garden": {"$15", "$35", "$65", "$100"},
	"Clothing":      {"$10", "$20", "$35", "$60"},
	"Sports":        {"$20", "$45", "$85", "$150"},
	"Books & Media": {"$5", "$10", "$20", "$35"},
	"Vehicles":      {"$500", "$1500", "$3500", "$6000"},
	"Tools":         {"$25", "$60", "$110", "$200"},
	"Collectibles":  {"$20", "$50", "$120", "$250"},
}

// PriceEstimator picks a price tier for a category. The random source is
// injected so tests can use a fixed seed.
type PriceEstimator struct {
	rand *rand.Rand
}

// NewPriceEstimator creates an estimator with the given source. A nil r
// falls back to a time-seeded source.
func NewPriceEstimator(r *rand.Rand) *PriceEstimator {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &PriceEstimator{rand: r}
}

// Estimate returns one of the four tier prices for category, using the
// DefaultCategory table when the category has no tier entry.
func (p *PriceEstimator) Estimate(category string) string {
	tiers, ok := priceTiers[category]
	if !ok {
		tiers = priceTiers[DefaultCategory]
	}
	return tiers[p.rand.Intn(len(tiers))]
}

// PriceTiers returns the tier table for a category (DefaultCategory table if
// absent). Exposed for tests asserting tier membership.
func PriceTiers(category string) []string {
	tiers, ok := priceTiers[category]
	if !ok {
		tiers = priceTiers[DefaultCategory]
	}
	return tiers
}
