// Package ingredients turns free-text ingredient lists into structured
// records. It holds the shared record shape, the category classifier, the
// rule-based parser and the decoder for prompt-driven parser responses.
package ingredients

import (
	"context"
	"errors"
)

// ParsedIngredient is one structured line of an ingredient list. Notes and
// Category are empty when absent; callers should default Category to Other
// and may discard records with an empty Item.
type ParsedIngredient struct {
	Quantity float64  `json:"quantity"`
	Unit     string   `json:"unit"`
	Item     string   `json:"item"`
	Notes    string   `json:"notes,omitempty"`
	Category Category `json:"category,omitempty"`
}

var (
	// ErrParseFailed is what users get told when an import could not complete.
	ErrParseFailed = errors.New("failed to parse ingredients, please try again")
	// ErrMissingAPIKey means a prompt-driven parser has no credentials.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrInvalidResponse means the upstream answer had no usable content.
	ErrInvalidResponse = errors.New("invalid API response")
	// ErrUnreadableImage means image data could not be read or is not an image.
	ErrUnreadableImage = errors.New("unreadable image")
)

// TextParser turns raw ingredient text into records.
type TextParser interface {
	Parse(ctx context.Context, text string) ([]ParsedIngredient, error)
}

// ImageParser extracts records from a photographed or scanned ingredient list.
type ImageParser interface {
	ParseImage(ctx context.Context, img Image) ([]ParsedIngredient, error)
}

// TextParserFunc adapts a function to TextParser.
type TextParserFunc func(ctx context.Context, text string) ([]ParsedIngredient, error)

func (f TextParserFunc) Parse(ctx context.Context, text string) ([]ParsedIngredient, error) {
	return f(ctx, text)
}

// Image is encoded image data with its detected MIME type.
type Image struct {
	Data     []byte
	MIMEType string
}

// RuleParser is the offline parser. It never fails.
type RuleParser struct{}

var _ TextParser = RuleParser{}

func (RuleParser) Parse(_ context.Context, text string) ([]ParsedIngredient, error) {
	return ParseWithRules(text), nil
}

// WithoutEmptyItems drops records that have no item name.
func WithoutEmptyItems(in []ParsedIngredient) []ParsedIngredient {
	out := make([]ParsedIngredient, 0, len(in))
	for _, ing := range in {
		if ing.Item != "" {
			out = append(out, ing)
		}
	}
	return out
}
