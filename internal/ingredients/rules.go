package ingredients

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	optionalRe = regexp.MustCompile(`(?i)\(?optional\)?`)
	toTasteRe  = regexp.MustCompile(`(?i)to taste`)

	// [qty] (size unit) [can] item, e.g. "1 (14 ounce) can diced tomatoes"
	cannedRe = regexp.MustCompile(`^(\d+)?\s*\((\d+(?:\.\d+)?)\s*(\w+)\)\s*(can)?\s*(.+)$`)

	quantityRe   = regexp.MustCompile(`^\d|/`)
	mixedPartRe  = regexp.MustCompile(`^\d+(?:/\d+)?(?:-\d+(?:/\d+)?)?$`)
	rangeSplitRe = regexp.MustCompile(`-| to `)
)

const saltAndPepper = "salt and pepper to taste"

var units = map[string]bool{
	"cup":         true,
	"cups":        true,
	"tablespoon":  true,
	"tablespoons": true,
	"teaspoon":    true,
	"teaspoons":   true,
	"pound":       true,
	"pounds":      true,
	"ounce":       true,
	"ounces":      true,
	"gram":        true,
	"grams":       true,
	"kg":          true,
	"ml":          true,
	"pinch":       true,
	"can":         true,
	"cans":        true,
}

// ParseWithRules parses each line of text on its own. Blank lines produce
// nothing and "salt and pepper to taste" produces two records; every other
// line produces exactly one, however malformed.
func ParseWithRules(text string) []ParsedIngredient {
	var out []ParsedIngredient
	for _, line := range strings.Split(text, "\n") {
		out = append(out, ParseLine(line)...)
	}
	return out
}

// ParseLine parses a single ingredient line.
//
// Notes are extracted in three passes (text after the first comma, an
// "optional" marker, "to taste"). The optional marker is appended to comma
// notes but "to taste" replaces whatever came before it.
func ParseLine(line string) []ParsedIngredient {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if strings.Contains(strings.ToLower(line), saltAndPepper) {
		return []ParsedIngredient{
			{Item: "salt", Notes: "to taste", Category: HerbsSpices},
			{Item: "pepper", Notes: "to taste", Category: HerbsSpices},
		}
	}

	var notes string
	if i := strings.Index(line, ","); i != -1 {
		notes = strings.TrimSpace(line[i+1:])
		line = strings.TrimSpace(line[:i])
	}

	if strings.Contains(strings.ToLower(line), "optional") {
		if notes != "" {
			notes += " "
		}
		notes += "(Optional)"
		line = strings.TrimSpace(removeFirst(optionalRe, line))
	}

	if strings.Contains(strings.ToLower(line), "to taste") {
		notes = "to taste"
		line = strings.TrimSpace(removeFirst(toTasteRe, line))
	}

	if m := cannedRe.FindStringSubmatch(line); m != nil {
		qty := m[1]
		if qty == "" {
			qty = "1"
		}
		item := strings.TrimSpace(m[5])
		return []ParsedIngredient{{
			Quantity: ParseQuantity(qty),
			Unit:     "(" + m[2] + " " + m[3] + ") can",
			Item:     item,
			Notes:    notes,
			Category: GuessCategory(item),
		}}
	}

	parts := strings.Fields(line)
	quantity := ""
	if len(parts) > 0 && isQuantityToken(parts[0]) {
		quantity = expandFractions(parts[0])
		parts = parts[1:]
		// only a bare number or fraction continues the quantity ("1 1/2",
		// "1 1/2-2"); "2 14-ounce cans" stops after the 2
		if len(parts) > 0 {
			if next := expandFractions(parts[0]); mixedPartRe.MatchString(next) {
				quantity += " " + next
				parts = parts[1:]
			}
		}
	}

	var unit string
	if len(parts) > 0 && units[strings.ToLower(parts[0])] {
		unit = strings.ToLower(parts[0])
		parts = parts[1:]
	}

	item := strings.TrimSpace(strings.Join(parts, " "))
	return []ParsedIngredient{{
		Quantity: ParseQuantity(quantity),
		Unit:     unit,
		Item:     item,
		Notes:    notes,
		Category: GuessCategory(item),
	}}
}

func removeFirst(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}

func isQuantityToken(tok string) bool {
	if quantityRe.MatchString(tok) {
		return true
	}
	return strings.ContainsFunc(tok, isVulgarFraction)
}

// ½ and friends decompose under NFKC to digits around U+2044.
func isVulgarFraction(r rune) bool {
	if !unicode.Is(unicode.No, r) {
		return false
	}
	return strings.ContainsRune(norm.NFKC.String(string(r)), '⁄')
}

// expandFractions rewrites vulgar fraction glyphs as ascii fractions, split
// from any leading whole number: "1½" becomes "1 1/2". The "Â½" mojibake that
// shows up in pasted text is treated as "½".
func expandFractions(tok string) string {
	tok = strings.ReplaceAll(tok, "Â½", "½")
	if !strings.ContainsFunc(tok, isVulgarFraction) {
		return tok
	}
	var b strings.Builder
	for _, r := range tok {
		if !isVulgarFraction(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.ReplaceAll(norm.NFKC.String(string(r)), "⁄", "/"))
	}
	return b.String()
}

// ParseQuantity converts a quantity string to a number. Ranges ("2-3",
// "2 to 3") resolve to the larger bound, mixed numbers ("1 1/2") are summed
// and anything unparseable is 0.
func ParseQuantity(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.Contains(s, "-") || strings.Contains(s, " to ") {
		best := math.Inf(-1)
		for _, part := range rangeSplitRe.Split(s, -1) {
			best = math.Max(best, mixedNumber(part))
		}
		return best
	}
	return mixedNumber(s)
}

func mixedNumber(s string) float64 {
	var total float64
	for _, part := range strings.Fields(s) {
		total += fraction(part)
	}
	return total
}

func fraction(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return number(s)
	}
	d := number(den)
	if d == 0 {
		return 0
	}
	return number(num) / d
}

func number(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
