package listing

import (
	"strings"

	"snaplist/internal/vision"
)

// Keyword tables for brand, color and material extraction. Matching is
// case-insensitive; order is first-seen in the input, not table order.

var knownBrands = []string{
	"Apple", "Samsung", "Sony", "LG", "Panasonic", "Nintendo", "Microsoft",
	"Dell", "HP", "Lenovo", "Asus", "Canon", "Nikon", "Bose", "JBL",
	"Nike", "Adidas", "Puma", "Levi's", "Gap", "Zara", "H&M", "Patagonia",
	"North Face", "Columbia", "IKEA", "KitchenAid", "Dyson", "Cuisinart",
	"DeWalt", "Makita", "Bosch", "Milwaukee", "Ryobi", "Craftsman",
	"Lego", "Fisher-Price", "Graco", "Chicco", "Trek", "Specialized",
	"Schwinn", "Coleman", "Yeti", "Wilson", "Callaway", "Rolex", "Casio",
	"Seiko", "Fossil", "Coach", "Michael Kors", "Gucci", "Prada",
}

// Pure color words. Metallic-looking colors stay in the list; the adjacency
// check in ExtractColors suppresses them when they describe a finish.
var colorWords = []string{
	"black", "white", "red", "blue", "green", "yellow", "orange", "purple",
	"pink", "brown", "gray", "grey", "beige", "navy", "teal", "turquoise",
	"maroon", "burgundy", "tan", "cream", "ivory", "gold", "silver",
}

// Finish terms that disqualify an adjacent color word. "Metallic silver" or
// "chrome gold" describes a finish, not a color.
var metallicFinishTerms = []string{
	"metallic", "chrome", "chromed", "plated", "brushed", "anodized",
	"metal", "steel", "brass",
}

var materialWords = []string{
	"leather", "wood", "wooden", "metal", "plastic", "glass", "ceramic",
	"cotton", "wool", "linen", "silk", "denim", "suede", "velvet", "canvas",
	"rubber", "steel", "brass", "aluminum", "bamboo", "rattan", "wicker",
	"marble", "stone", "fabric",
}

const colorScoreThreshold = 0.6

// ExtractBrands returns brand names found in any of the given texts via
// case-insensitive substring match. Order follows the brand table; output is
// deduplicated.
func ExtractBrands(texts []string) []string {
	var found []string
	seen := map[string]bool{}
	for _, brand := range knownBrands {
		lower := strings.ToLower(brand)
		for _, text := range texts {
			if strings.Contains(strings.ToLower(text), lower) && !seen[brand] {
				seen[brand] = true
				found = append(found, brand)
				break
			}
		}
	}
	return found
}

// ExtractColors scans labels with confidence >= 0.6 for pure color words.
// A color matches only as a whole token or as the start of a compound token,
// and is discarded when an immediately adjacent token is a metallic finish
// term. Output is deduplicated, capped at 3, first-seen order.
func ExtractColors(labels []vision.Label) []string {
	var colors []string
	seen := map[string]bool{}
	for _, label := range labels {
		if label.Score < colorScoreThreshold {
			continue
		}
		tokens := tokenize(label.Description)
		for i, token := range tokens {
			for _, color := range colorWords {
				if token != color && !strings.HasPrefix(token, color) {
					continue
				}
				if adjacentToFinish(tokens, i) {
					continue
				}
				if !seen[color] {
					seen[color] = true
					colors = append(colors, color)
				}
			}
		}
	}
	if len(colors) > 3 {
		colors = colors[:3]
	}
	return colors
}

// ExtractMaterials returns material words contained in any of the given
// texts, case-insensitive, deduplicated.
func ExtractMaterials(texts []string) []string {
	var found []string
	seen := map[string]bool{}
	for _, material := range materialWords {
		for _, text := range texts {
			if strings.Contains(strings.ToLower(text), material) && !seen[material] {
				seen[material] = true
				found = append(found, material)
				break
			}
		}
	}
	return found
}

// tokenize lowercases and splits on any non-letter run.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r < 'a' || r > 'z'
	})
}

func adjacentToFinish(tokens []string, i int) bool {
	for _, j := range []int{i - 1, i + 1} {
		if j < 0 || j >= len(tokens) {
			continue
		}
		for _, term := range metallicFinishTerms {
			if tokens[j] == term {
				return true
			}
		}
	}
	return false
}
