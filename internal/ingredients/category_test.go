package ingredients

import (
	"strings"
	"testing"
)

func TestGuessCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want Category
	}{
		{"flour", Pantry},
		{"Chicken Breast", MeatSeafood},
		{"large eggs", DairyEggs},
		{"diced tomatoes", Produce},
		{"black beans", CannedGoods},
		{"soy sauce", International},
		{"chocolate chips", Baking},
		{"dragonfruit", Other},
		{"", Other},
	}
	for _, tc := range tests {
		if got := GuessCategory(tc.name); got != tc.want {
			t.Errorf("GuessCategory(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestGuessCategoryExactMatchWins(t *testing.T) {
	t.Parallel()

	// substring scanning alone would hit "pea" and "pepper" before these.
	if got := GuessCategory("peanut butter"); got != CondimentsSauces {
		t.Fatalf("peanut butter = %q, want %q", got, CondimentsSauces)
	}
	if got := GuessCategory("Bell Pepper"); got != Produce {
		t.Fatalf("bell pepper = %q, want %q", got, Produce)
	}
}

func TestGuessCategoryIsTotalAndStable(t *testing.T) {
	t.Parallel()

	inputs := []string{"", " ", "SALT", "ünïcödé", "1 (14 ounce) can", strings.Repeat("x", 1000), "pea soup", "nut"}
	for _, in := range inputs {
		first := GuessCategory(in)
		if !first.Valid() {
			t.Errorf("GuessCategory(%q) returned unknown category %q", in, first)
		}
		if again := GuessCategory(in); again != first {
			t.Errorf("GuessCategory(%q) not stable: %q then %q", in, first, again)
		}
	}
}

func TestKeywordTable(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, k := range keywords {
		if !k.Category.Valid() {
			t.Errorf("keyword %q maps to unknown category %q", k.Keyword, k.Category)
		}
		if k.Keyword != strings.ToLower(k.Keyword) {
			t.Errorf("keyword %q is not lowercase", k.Keyword)
		}
		if seen[k.Keyword] {
			t.Errorf("keyword %q listed twice", k.Keyword)
		}
		seen[k.Keyword] = true
	}
}

func TestCategories(t *testing.T) {
	t.Parallel()

	all := Categories()
	if len(all) != 17 {
		t.Fatalf("expected 17 categories, got %d", len(all))
	}
	if all[0] != Produce || all[len(all)-1] != Other {
		t.Fatalf("unexpected order: %v", all)
	}

	all[0] = "mutated"
	if Categories()[0] != Produce {
		t.Fatal("Categories must return a copy")
	}

	c, ok := ParseCategory("  dairy & eggs ")
	if !ok || c != DairyEggs {
		t.Fatalf("ParseCategory = %q, %v", c, ok)
	}
	if _, ok := ParseCategory("Vegetables"); ok {
		t.Fatal("Vegetables is not a category")
	}
	if Category("").OrOther() != Other {
		t.Fatal("empty category should default to Other")
	}
	if Category("Vegetables").OrOther() != Other {
		t.Fatal("unknown category should default to Other")
	}
	if Produce.OrOther() != Produce {
		t.Fatal("known category should be kept")
	}
}
