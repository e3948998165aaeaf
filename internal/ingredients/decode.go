package ingredients

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// DecodeResponse reads model output in the "quantity | unit | item | notes
// [| category]" format. Preamble lines and lines that do not have 4 or 5
// columns with a numeric quantity are dropped, so a response with no usable
// lines decodes to an empty slice rather than an error.
func DecodeResponse(content string) []ParsedIngredient {
	out := []ParsedIngredient{}
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Here") || strings.HasPrefix(line, "I") {
			continue
		}
		if !strings.Contains(line, "|") {
			continue
		}
		ing, ok := decodeLine(line)
		if !ok {
			slog.Debug("dropping malformed ingredient line", "line", line)
			continue
		}
		out = append(out, ing)
	}
	return out
}

func decodeLine(line string) (ParsedIngredient, bool) {
	cols := strings.Split(line, "|")
	if len(cols) != 4 && len(cols) != 5 {
		return ParsedIngredient{}, false
	}
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	qty, err := strconv.ParseFloat(cols[0], 64)
	if err != nil || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return ParsedIngredient{}, false
	}

	ing := ParsedIngredient{
		Quantity: qty,
		Unit:     cols[1],
		Item:     cols[2],
		Notes:    cols[3],
	}
	if len(cols) == 5 {
		if c, ok := ParseCategory(cols[4]); ok {
			ing.Category = c
		}
	}
	if ing.Category == "" {
		ing.Category = GuessCategory(ing.Item)
	}
	return ing, true
}
