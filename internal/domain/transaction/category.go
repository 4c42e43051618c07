package transaction

import "strings"

// FormatCategoryName converts a detailed personal-finance category code
// into a display label. When the code is prefixed by the primary category
// the prefix is stripped first, so ("FOOD_AND_DRINK_COFFEE",
// "FOOD_AND_DRINK") yields "Coffee" while ("TRAVEL_FLIGHTS", "") yields
// "Travel Flights".
func FormatCategoryName(detailed, primary string) string {
	code := detailed
	if primary != "" && strings.HasPrefix(detailed, primary+"_") {
		code = detailed[len(primary)+1:]
	}
	return titleCaseCode(code)
}

// FormatPrimaryCategory converts a bare primary code like "FOOD_AND_DRINK"
// to "Food And Drink". Used when no detailed enrichment is available.
func FormatPrimaryCategory(primary string) string {
	return titleCaseCode(primary)
}

func titleCaseCode(code string) string {
	if code == "" {
		return ""
	}
	words := strings.Split(code, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
