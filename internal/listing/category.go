package listing

import "strings"

const DefaultCategory = "Home & Garden"

type categoryEntry struct {
	name     string
	keywords []string
}

// categoryTable maps detected item labels to marketplace categories. Order
// matters: the first entry with any keyword match wins, so more specific
// categories come before broad ones.
var categoryTable = []categoryEntry{
	{"Baby & Kids", []string{
		"baby", "infant", "toddler", "stroller", "crib", "diaper",
		"toy", "doll", "kid", "child",
	}},
	{"Electronics", []string{
		"phone", "smartphone", "laptop", "computer", "tablet", "camera",
		"television", "tv", "monitor", "headphone", "speaker", "console",
		"keyboard", "mouse", "printer", "router", "electronic", "gadget",
	}},
	{"Home & Garden", []string{
		"furniture", "chair", "table", "sofa", "couch", "lamp", "rug",
		"curtain", "shelf", "cabinet", "dresser", "mattress", "pillow",
		"plant", "pot", "vase", "garden", "kitchen", "cookware", "appliance",
		"decor", "mirror", "clock",
	}},
	{"Clothing", []string{
		"shirt", "t-shirt", "pants", "jeans", "dress", "skirt", "jacket",
		"coat", "sweater", "hoodie", "shoe", "sneaker", "boot", "sandal",
		"hat", "scarf", "clothing", "apparel", "handbag", "purse",
	}},
	{"Sports", []string{
		"bicycle", "bike", "ball", "racket", "racquet", "golf", "ski",
		"snowboard", "skate", "skateboard", "surfboard", "dumbbell",
		"treadmill", "fitness", "helmet", "tent", "kayak", "sport",
	}},
	{"Books & Media", []string{
		"book", "novel", "magazine", "comic", "dvd", "blu-ray", "vinyl",
		"record", "cassette", "cd",
	}},
	{"Vehicles", []string{
		"car", "truck", "motorcycle", "moped", "scooter", "van", "trailer",
		"vehicle", "tire", "wheel",
	}},
	{"Tools", []string{
		"drill", "saw", "hammer", "wrench", "screwdriver", "sander",
		"grinder", "toolbox", "tool",
	}},
	{"Collectibles", []string{
		"antique", "vintage", "coin", "stamp", "figurine", "trading card",
		"memorabilia", "collectible",
	}},
}

// Categories is the closed set of category names accepted in a Draft, in
// table order.
func Categories() []string {
	names := make([]string, len(categoryTable))
	for i, entry := range categoryTable {
		names[i] = entry.name
	}
	return names
}

// ValidCategory reports whether name is in the closed category set.
func ValidCategory(name string) bool {
	for _, entry := range categoryTable {
		if entry.name == name {
			return true
		}
	}
	return false
}

// ClassifyCategory maps detected item labels to the first category whose
// keyword list has a case-insensitive substring match against any item.
// Falls back to DefaultCategory when nothing matches.
func ClassifyCategory(items []string) string {
	for _, entry := range categoryTable {
		for _, item := range items {
			lower := strings.ToLower(item)
			for _, keyword := range entry.keywords {
				if strings.Contains(lower, keyword) {
					return entry.name
				}
			}
		}
	}
	return DefaultCategory
}
