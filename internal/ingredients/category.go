package ingredients

import "strings"

// Category is a shopping list section. The set is closed; see Categories.
type Category string

const (
	Produce          Category = "Produce"
	MeatSeafood      Category = "Meat & Seafood"
	DairyEggs        Category = "Dairy & Eggs"
	Bakery           Category = "Bakery"
	Pantry           Category = "Pantry"
	CannedGoods      Category = "Canned Goods"
	FrozenFoods      Category = "Frozen Foods"
	CondimentsSauces Category = "Condiments & Sauces"
	HerbsSpices      Category = "Herbs & Spices"
	OilsVinegars     Category = "Oils & Vinegars"
	Snacks           Category = "Snacks"
	Beverages        Category = "Beverages"
	Baking           Category = "Baking"
	PastaRice        Category = "Pasta & Rice"
	NutsSeeds        Category = "Nuts & Seeds"
	International    Category = "International"
	Other            Category = "Other"
)

// display order
var categories = []Category{
	Produce,
	MeatSeafood,
	DairyEggs,
	Bakery,
	Pantry,
	CannedGoods,
	FrozenFoods,
	CondimentsSauces,
	HerbsSpices,
	OilsVinegars,
	Snacks,
	Beverages,
	Baking,
	PastaRice,
	NutsSeeds,
	International,
	Other,
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// OrOther returns c, or Other when c is empty or not a known category.
func (c Category) OrOther() Category {
	if !c.Valid() {
		return Other
	}
	return c
}

type keyword struct {
	Keyword  string
	Category Category
}

// keywords is scanned in order for substring matches, so the first entry
// contained in a name decides its category.
var keywords = []keyword{
	{"apple", Produce},
	{"banana", Produce},
	{"orange", Produce},
	{"lemon", Produce},
	{"lime", Produce},
	{"lettuce", Produce},
	{"spinach", Produce},
	{"kale", Produce},
	{"carrot", Produce},
	{"potato", Produce},
	{"onion", Produce},
	{"garlic", Produce},
	{"tomato", Produce},
	{"cucumber", Produce},
	{"bell pepper", Produce},
	{"broccoli", Produce},
	{"cauliflower", Produce},
	{"zucchini", Produce},
	{"squash", Produce},
	{"mushroom", Produce},
	{"avocado", Produce},
	{"corn", Produce},
	{"green bean", Produce},
	{"pea", Produce},
	{"celery", Produce},
	{"ginger", Produce},

	{"chicken", MeatSeafood},
	{"beef", MeatSeafood},
	{"pork", MeatSeafood},
	{"lamb", MeatSeafood},
	{"turkey", MeatSeafood},
	{"ground beef", MeatSeafood},
	{"ground turkey", MeatSeafood},
	{"sausage", MeatSeafood},
	{"bacon", MeatSeafood},
	{"ham", MeatSeafood},
	{"steak", MeatSeafood},
	{"fish", MeatSeafood},
	{"salmon", MeatSeafood},
	{"tuna", MeatSeafood},
	{"shrimp", MeatSeafood},
	{"crab", MeatSeafood},
	{"lobster", MeatSeafood},
	{"scallop", MeatSeafood},

	{"milk", DairyEggs},
	{"cream", DairyEggs},
	{"half and half", DairyEggs},
	{"butter", DairyEggs},
	{"cheese", DairyEggs},
	{"cheddar", DairyEggs},
	{"mozzarella", DairyEggs},
	{"parmesan", DairyEggs},
	{"feta", DairyEggs},
	{"yogurt", DairyEggs},
	{"sour cream", DairyEggs},
	{"cream cheese", DairyEggs},
	{"egg", DairyEggs},

	{"bread", Bakery},
	{"roll", Bakery},
	{"bun", Bakery},
	{"bagel", Bakery},
	{"pita", Bakery},
	{"tortilla", Bakery},
	{"croissant", Bakery},
	{"muffin", Bakery},

	{"flour", Pantry},
	{"sugar", Pantry},
	{"brown sugar", Pantry},
	{"powdered sugar", Pantry},
	{"honey", Pantry},
	{"maple syrup", Pantry},
	{"cereal", Pantry},
	{"oatmeal", Pantry},
	{"pancake mix", Pantry},
	// chocolate chips were historically listed under both Pantry and Baking;
	// Baking won, at this position.
	{"chocolate chip", Baking},
	{"broth", Pantry},
	{"beef broth", Pantry},
	{"chicken broth", Pantry},
	{"vegetable broth", Pantry},
	{"stock", Pantry},

	{"canned tomato", CannedGoods},
	{"tomato sauce", CannedGoods},
	{"tomato paste", CannedGoods},
	{"canned bean", CannedGoods},
	{"kidney bean", CannedGoods},
	{"black bean", CannedGoods},
	{"chickpea", CannedGoods},
	{"canned corn", CannedGoods},
	{"canned tuna", CannedGoods},
	{"canned soup", CannedGoods},

	{"frozen vegetable", FrozenFoods},
	{"frozen fruit", FrozenFoods},
	{"ice cream", FrozenFoods},
	{"frozen pizza", FrozenFoods},
	{"frozen meal", FrozenFoods},

	{"ketchup", CondimentsSauces},
	{"mustard", CondimentsSauces},
	{"mayonnaise", CondimentsSauces},
	// same story as chocolate chips: International won.
	{"soy sauce", International},
	{"hot sauce", CondimentsSauces},
	{"bbq sauce", CondimentsSauces},
	{"salsa", CondimentsSauces},
	{"jam", CondimentsSauces},
	{"jelly", CondimentsSauces},
	{"peanut butter", CondimentsSauces},

	{"salt", HerbsSpices},
	{"pepper", HerbsSpices},
	{"basil", HerbsSpices},
	{"oregano", HerbsSpices},
	{"thyme", HerbsSpices},
	{"rosemary", HerbsSpices},
	{"cinnamon", HerbsSpices},
	{"nutmeg", HerbsSpices},
	{"paprika", HerbsSpices},
	{"cumin", HerbsSpices},
	{"chili powder", HerbsSpices},
	{"bay leaf", HerbsSpices},

	{"olive oil", OilsVinegars},
	{"vegetable oil", OilsVinegars},
	{"canola oil", OilsVinegars},
	{"coconut oil", OilsVinegars},
	{"sesame oil", OilsVinegars},
	{"vinegar", OilsVinegars},
	{"balsamic vinegar", OilsVinegars},
	{"red wine vinegar", OilsVinegars},
	{"apple cider vinegar", OilsVinegars},

	{"chip", Snacks},
	{"cracker", Snacks},
	{"pretzel", Snacks},
	{"popcorn", Snacks},
	{"nut", Snacks},
	{"candy", Snacks},
	{"chocolate", Snacks},

	{"water", Beverages},
	{"soda", Beverages},
	{"juice", Beverages},
	{"coffee", Beverages},
	{"tea", Beverages},
	{"wine", Beverages},
	{"beer", Beverages},

	{"baking powder", Baking},
	{"baking soda", Baking},
	{"yeast", Baking},
	{"vanilla extract", Baking},
	{"cocoa powder", Baking},

	{"pasta", PastaRice},
	{"spaghetti", PastaRice},
	{"penne", PastaRice},
	{"macaroni", PastaRice},
	{"rice", PastaRice},
	{"brown rice", PastaRice},
	{"white rice", PastaRice},
	{"quinoa", PastaRice},
	{"couscous", PastaRice},

	{"almond", NutsSeeds},
	{"walnut", NutsSeeds},
	{"pecan", NutsSeeds},
	{"cashew", NutsSeeds},
	{"peanut", NutsSeeds},
	{"sunflower seed", NutsSeeds},
	{"pumpkin seed", NutsSeeds},
	{"chia seed", NutsSeeds},
	{"flax seed", NutsSeeds},

	{"curry paste", International},
	{"curry powder", International},
	{"fish sauce", International},
	{"hoisin sauce", International},
	{"sriracha", International},
	{"tahini", International},
	{"miso", International},
	{"coconut milk", International},
}

var exactKeywords = func() map[string]Category {
	m := make(map[string]Category, len(keywords))
	for _, k := range keywords {
		if _, dup := m[k.Keyword]; !dup {
			m[k.Keyword] = k.Category
		}
	}
	return m
}()

// GuessCategory maps an ingredient name to a category: an exact keyword match
// wins, then the first keyword contained in the name, then Other.
func GuessCategory(name string) Category {
	lower := strings.ToLower(name)
	if c, ok := exactKeywords[lower]; ok {
		return c
	}
	for _, k := range keywords {
		if strings.Contains(lower, k.Keyword) {
			return k.Category
		}
	}
	return Other
}
