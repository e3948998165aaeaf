package paritycheck

import (
	"context"
	"errors"
	"fmt"

	"mealplanner/internal/ingredients"

	"golang.org/x/sync/errgroup"
)

const (
	rulesName    = "rule-based"
	expectedName = "expected"
)

// Comparison is the outcome for one input.
type Comparison struct {
	Input    string                         `json:"input"`
	Rules    []ingredients.ParsedIngredient `json:"rules"`
	Prompt   []ingredients.ParsedIngredient `json:"prompt"`
	Parsers  Diff                           `json:"parsers"`
	Expected *Diff                          `json:"expected,omitempty"`
	Error    string                         `json:"error,omitempty"`
}

// Report collects every comparison of a run.
type Report struct {
	Comparisons []Comparison `json:"comparisons"`
}

// Differences counts diverging indexes across all comparisons.
func (r *Report) Differences() int {
	n := 0
	for _, c := range r.Comparisons {
		n += len(c.Parsers.Indexes)
	}
	return n
}

// Harness runs the rule-based and a prompt-driven parser side by side.
type Harness struct {
	Rules      ingredients.TextParser
	Prompt     ingredients.TextParser
	PromptName string
	Sink       Sink
	Cases      []Case
}

// New returns a harness over the builtin cases.
func New(prompt ingredients.TextParser, promptName string, sink Sink) *Harness {
	return &Harness{
		Rules:      ingredients.RuleParser{},
		Prompt:     prompt,
		PromptName: promptName,
		Sink:       sink,
		Cases:      BuiltinCases(),
	}
}

// Run compares the parsers on customInput, or on every case when customInput
// is empty. A prompt parser failure is recorded on its comparison and the
// run continues; the failures are joined into the returned error.
func (h *Harness) Run(ctx context.Context, customInput string) (*Report, error) {
	cases := h.Cases
	if customInput != "" {
		cases = []Case{{Input: customInput}}
	} else {
		h.sink().Log(ctx, "Running standard test cases...", "cases", len(cases))
	}

	report := &Report{}
	var errs []error
	for _, tc := range cases {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		c, err := h.compare(ctx, tc)
		report.Comparisons = append(report.Comparisons, c)
		if err != nil {
			errs = append(errs, fmt.Errorf("input %q: %w", tc.Input, err))
		}
	}
	return report, errors.Join(errs...)
}

func (h *Harness) compare(ctx context.Context, tc Case) (Comparison, error) {
	sink := h.sink()
	c := Comparison{Input: tc.Input}
	sink.Log(ctx, "Testing input", "input", tc.Input)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := h.Rules.Parse(gctx, tc.Input)
		c.Rules = out
		return err
	})
	g.Go(func() error {
		out, err := h.Prompt.Parse(gctx, tc.Input)
		c.Prompt = out
		return err
	})
	err := g.Wait()

	sink.Log(ctx, "Rule-based output", "ingredients", c.Rules)
	if tc.Expected != nil {
		d := Compare(rulesName, c.Rules, expectedName, tc.Expected)
		c.Expected = &d
		logDiff(ctx, sink, d)
	}
	if err != nil {
		c.Error = err.Error()
		sink.Log(ctx, "Parser failed", "parser", h.promptName(), "error", err)
		return c, err
	}

	sink.Log(ctx, "Prompt output", "parser", h.promptName(), "ingredients", c.Prompt)
	c.Parsers = Compare(rulesName, c.Rules, h.promptName(), c.Prompt)
	logDiff(ctx, sink, c.Parsers)
	return c, nil
}

func logDiff(ctx context.Context, sink Sink, d Diff) {
	sink.Log(ctx, "Differences", "left", d.Left, "right", d.Right)
	if d.LengthMismatch {
		sink.Log(ctx, fmt.Sprintf("Length mismatch: %s (%d) vs %s (%d)", d.Left, d.LeftLen, d.Right, d.RightLen))
	}
	for _, idx := range d.Indexes {
		if idx.MissingIn != "" {
			sink.Log(ctx, fmt.Sprintf("Index %d: missing in %s", idx.Index, idx.MissingIn))
			continue
		}
		sink.Log(ctx, fmt.Sprintf("Index %d differences", idx.Index), "fields", idx.Fields)
	}
}

func (h *Harness) sink() Sink {
	if h.Sink == nil {
		return SlogSink{}
	}
	return h.Sink
}

func (h *Harness) promptName() string {
	if h.PromptName == "" {
		return "prompt"
	}
	return h.PromptName
}
