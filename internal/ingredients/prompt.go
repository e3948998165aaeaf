package ingredients

import "strings"

// Prompt instructs a text or vision model to answer in the pipe-delimited
// line format DecodeResponse reads.
var Prompt = `
Analyze this recipe and format ONLY the ingredients as follows:
decimal_quantity | unit | item | prep_notes | category

Rules:
1. DO NOT add any bullet points, dashes, or additional formatting
2. Convert ALL fractions to decimals (½ → 0.5, ¾ → 0.75, etc.)
3. For items without units, leave the unit field empty but keep the pipe
4. If no prep notes, leave that field empty but keep the pipe
5. Each line should have exactly 4 pipes (|)
6. If a unit seems odd (like c.) use your best judgement to assign an appropriate unit (cup)
7. For ingredients without specified quantities (like garnishes or "to taste" items), use 0.0 as the quantity
8. When ranges of quantities are provided (like 5-6), use the largest quantity
9. When encountering quantities with letters (like 100g orange juice), this typically indicates a quantity and a unit
10. When multiple units are provided, use grams
11. The category must be exactly one of: ` + categoryList() + `

Example output format:
0.5 | cup | onion | minced | Produce
1.0 | pound | ground beef | | Meat & Seafood
2.0 | | eggs | beaten | Dairy & Eggs
1.0 | (14 ounce) can | diced tomatoes | | Canned Goods
0.0 | | fresh parsley | for garnish | Herbs & Spices
0.0 | | salt | to taste | Herbs & Spices
100 | g | orange juice | | Beverages
`

// TextPrompt is the full message sent alongside pasted ingredient text.
func TextPrompt(text string) string {
	return Prompt + "\n\nIngredients text to parse:\n" + text
}

func categoryList() string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
